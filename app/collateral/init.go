package collateral

import (
	"github.com/gin-gonic/gin"
)

// Dependencies represents the dependencies needed for the token routes
type Dependencies struct {
	Service Service
	Auth    gin.HandlerFunc
}

// Init mounts the token routes. Reads are public; writes require Auth.
func Init(r *gin.RouterGroup, deps Dependencies) {
	if deps.Service == nil {
		panic("collateral: token service is required")
	}

	handler := NewHandler(deps.Service)

	tokenGroup := r.Group("/token")
	tokenGroup.GET("", handler.GetToken)
	tokenGroup.GET("/balances/:account", handler.GetBalance)
	tokenGroup.GET("/allowances/:owner/:spender", handler.GetAllowance)

	writes := tokenGroup.Group("")
	if deps.Auth != nil {
		writes.Use(deps.Auth)
	}
	writes.POST("/transfer", handler.Transfer)
	writes.POST("/transfer-from", handler.TransferFrom)
	writes.POST("/approve", handler.Approve)
	writes.POST("/mint", handler.Mint)
	writes.POST("/burn", handler.Burn)
	writes.POST("/ownership", handler.TransferOwnership)
	writes.POST("/ownership/renounce", handler.RenounceOwnership)
}
