package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/beyondbeauty/press/web/entity"
	"github.com/beyondbeauty/press/web/session"
)

// RequireRole lets the request through only if the signed-in role is one of
// roles. It must run after AuthRequired.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool)
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims := session.GetLoginClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.Msg{Msg: "authentication required"})
			return
		}
		if !allowed[claims.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, entity.Msg{Msg: "forbidden"})
			return
		}
		c.Next()
	}
}
