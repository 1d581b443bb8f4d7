package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/beyondbeauty/press/logger"
	"github.com/beyondbeauty/press/web/entity"
	"github.com/beyondbeauty/press/web/session"
)

// AccountGate re-checks an account on each protected request.
type AccountGate interface {
	IsAccountActive(id int) bool
}

// AuthRequired accepts a request only with a valid bearer token. When gate is
// non-nil the token's account must also still be active.
func AuthRequired(issuer *session.Issuer, gate AccountGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			unauthorized(c)
			return
		}
		claims, err := issuer.Validate(token)
		if err != nil {
			unauthorized(c)
			return
		}
		if gate != nil && !gate.IsAccountActive(claims.AccountId) {
			logger.Warningf("token for inactive account %d refused", claims.AccountId)
			unauthorized(c)
			return
		}
		session.SetLoginClaims(c, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, entity.Msg{Success: false, Msg: "authentication required"})
}
