package handlers

import (
	"net/http"

	"taskhive/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the latest dependency snapshot.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"message":      "Hi, I'm TaskHive",
		"dependencies": status,
	})
}
