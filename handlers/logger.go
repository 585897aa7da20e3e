package handlers

import (
	"taskhive/middleware"
	"taskhive/models"
	"taskhive/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger retrieves the request-scoped logger from the Gin context, or the global one.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger()
}

// mustActor returns the authenticated caller or writes a 401.
func mustActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		utils.RespondError(c, utils.Unauthorized("authentication required"))
	}
	return actor, ok
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondError(c, utils.Validation("invalid request body", map[string]any{"body": err.Error()}))
		return false
	}
	return true
}
