package api

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

var allowedHeaders = "Content-Type, " +
	"Content-Length, " +
	"Accept-Encoding, " +
	"Authorization, " +
	"accept, origin, " +
	"Cache-Control, " +
	"X-Requested-With"

func CorsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// HealthCheck reports the service status and the number of registered markets
func HealthCheck(env string, marketCount func() int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"environment": env,
			"markets":     marketCount(),
		})
	}
}

// ParseAddress reads a hex account or market address from a path parameter
func ParseAddress(c *gin.Context, param string) (common.Address, bool) {
	raw := c.Param(param)
	if !common.IsHexAddress(raw) {
		BadRequestResponse(c, "Invalid "+param+" address")
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

// RequireCaller reads the authenticated caller or writes a 401
func RequireCaller(c *gin.Context) (common.Address, bool) {
	caller, ok := Caller(c)
	if !ok {
		UnauthorizedResponse(c)
		return common.Address{}, false
	}
	return caller, true
}

// BindJSON binds the request body or writes a 400
func BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		BadRequestResponse(c, err.Error())
		return false
	}
	return true
}
