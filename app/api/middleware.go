package api

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/joefazee/categorical/internal/security"
)

const (
	AuthorizationHeaderKey  = "Authorization"
	AuthorizationTypeBearer = "Bearer"

	callerKey = "caller"
	scopeKey  = "scope"
)

// AuthMiddleware resolves the calling account from a bearer token
func AuthMiddleware(tokenMaker security.Maker) gin.HandlerFunc {
	return func(c *gin.Context) {
		fields := strings.Fields(c.GetHeader(AuthorizationHeaderKey))
		if len(fields) < 2 || fields[0] != AuthorizationTypeBearer {
			UnauthorizedResponse(c)
			c.Abort()
			return
		}

		payload, err := tokenMaker.VerifyToken(fields[1])
		if err != nil {
			UnauthorizedResponse(c)
			c.Abort()
			return
		}

		c.Set(callerKey, payload.Subject)
		c.Set(scopeKey, payload.Scope)
		c.Next()
	}
}

// RequireScope rejects tokens issued for a different scope
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(scopeKey) != scope {
			ForbiddenResponse(c, "Access Denied: token scope does not allow this operation")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Caller returns the account resolved by AuthMiddleware
func Caller(c *gin.Context) (common.Address, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return common.Address{}, false
	}
	addr, ok := v.(common.Address)
	return addr, ok
}

// SetCaller stores the calling account on the request context
func SetCaller(c *gin.Context, caller common.Address) {
	c.Set(callerKey, caller)
}
