// middleware/auth.go
package middleware

import (
	"context"
	"strings"

	"taskhive/models"
	"taskhive/utils"

	"github.com/gin-gonic/gin"
)

// Authenticator resolves a bearer token to the calling actor.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.Actor, error)
}

// BearerToken extracts the token from the Authorization header, falling back
// to the "token" query parameter browsers use for websocket upgrades.
func BearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return c.Query("token")
}

// RequireAuth rejects requests without a valid, unrevoked bearer token and
// stores userID, role and token on the context.
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			utils.RespondError(c, utils.Unauthorized("missing or invalid Authorization header"))
			return
		}
		actor, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.Set("userID", actor.ID)
		c.Set("role", actor.Role)
		c.Set("token", token)
		c.Next()
	}
}

// ActorFrom returns the caller set by RequireAuth.
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	id := c.GetString("userID")
	role, _ := c.Get("role")
	r, ok := role.(models.Role)
	if id == "" || !ok {
		return models.Actor{}, false
	}
	return models.Actor{ID: id, Role: r}, true
}
