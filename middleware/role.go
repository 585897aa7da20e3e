package middleware

import (
	"taskhive/models"
	"taskhive/utils"

	"github.com/gin-gonic/gin"
)

// RequireRole only admits callers holding one of roles. It must run after
// RequireAuth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			utils.RespondError(c, utils.Unauthorized("authentication required"))
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		utils.RespondError(c, utils.Forbidden("insufficient role for this operation"))
	}
}
