package social

import (
	"github.com/gin-gonic/gin"
)

// Dependencies represents the dependencies needed for the social routes
type Dependencies struct {
	Service Service
	Auth    gin.HandlerFunc
}

// Init mounts the social routes. Reads are public; writes require Auth.
func Init(r *gin.RouterGroup, deps Dependencies) {
	if deps.Service == nil {
		panic("social: service is required")
	}

	handler := NewHandler(deps.Service)

	socialGroup := r.Group("/social")
	socialGroup.GET("/leaderboard", handler.GetLeaderboard)
	socialGroup.GET("/users/:user/stats", handler.GetUserStats)
	socialGroup.GET("/users/:user/predictions", handler.GetUserPredictionHistory)
	socialGroup.GET("/markets/:market/predictions/:user", handler.GetUserPrediction)
	socialGroup.GET("/markets/:market/comments", handler.GetMarketComments)
	socialGroup.GET("/markets/:market/comments/:comment/votes/:voter", handler.HasVoted)

	writes := socialGroup.Group("")
	if deps.Auth != nil {
		writes.Use(deps.Auth)
	}
	writes.POST("/markets/:market/predictions", handler.MakePrediction)
	writes.POST("/markets/:market/comments", handler.PostComment)
	writes.POST("/markets/:market/comments/:comment/votes", handler.VoteOnComment)
	writes.POST("/predictions/results", handler.UpdatePredictionResult)
	writes.POST("/ownership", handler.TransferOwnership)
	writes.POST("/ownership/renounce", handler.RenounceOwnership)
}
