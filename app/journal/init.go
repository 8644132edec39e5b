package journal

import (
	"github.com/gin-gonic/gin"
)

// Dependencies represents the dependencies needed for the journal routes
type Dependencies struct {
	Service Service
}

// Init mounts the read-only journal routes
func Init(r *gin.RouterGroup, deps Dependencies) {
	if deps.Service == nil {
		panic("journal: service is required")
	}

	handler := NewHandler(deps.Service)

	journalGroup := r.Group("/journal")
	journalGroup.GET("", handler.List)
	journalGroup.GET("/markets/:market", handler.ListByMarket)
	journalGroup.GET("/accounts/:account", handler.ListByAccount)
}
