package markets

import (
	"github.com/gin-gonic/gin"
	"github.com/joefazee/categorical/internal/sanitizer"
)

// Dependencies represents the dependencies needed for the markets module
type Dependencies struct {
	Service   Service
	Auth      gin.HandlerFunc
	Admin     gin.HandlerFunc
	Sanitizer sanitizer.HTMLStripperer
}

// Init mounts the market and factory routes. Reads are public; writes require Auth.
func Init(r *gin.RouterGroup, deps Dependencies) {
	if deps.Service == nil {
		panic("markets: service is required")
	}

	handler := NewHandler(deps.Service, deps.Sanitizer)
	auth := chain(deps.Auth)

	marketsGroup := r.Group("/markets")
	marketsGroup.GET("", handler.ListMarkets)
	marketsGroup.GET("/recent", handler.GetRecentMarkets)
	marketsGroup.GET("/status/:status", handler.GetMarketsByStatus)
	marketsGroup.GET("/:market", handler.GetMarket)
	marketsGroup.GET("/:market/summary", handler.GetMarketSummary)
	marketsGroup.GET("/:market/positions/:user", handler.GetPosition)
	marketsGroup.GET("/:market/simulate/buy", handler.SimulateBuy)
	marketsGroup.GET("/:market/simulate/sell", handler.SimulateSell)
	marketsGroup.GET("/:market/arbitrage", handler.CheckArbitrage)

	marketsGroup.POST("", append(auth, handler.CreateMarket)...)
	marketsGroup.POST("/:market/buy", append(auth, handler.BuyShares)...)
	marketsGroup.POST("/:market/sell", append(auth, handler.SellShares)...)
	marketsGroup.POST("/:market/complete-sets/mint", append(auth, handler.MintCompleteSet)...)
	marketsGroup.POST("/:market/complete-sets/burn", append(auth, handler.BurnCompleteSet)...)
	marketsGroup.POST("/:market/liquidity/add", append(auth, handler.AddLiquidity)...)
	marketsGroup.POST("/:market/liquidity/remove", append(auth, handler.RemoveLiquidity)...)
	marketsGroup.POST("/:market/resolve", append(auth, handler.ResolveMarket)...)
	marketsGroup.POST("/:market/claim", append(auth, handler.ClaimWinnings)...)

	admin := chain(deps.Auth, deps.Admin)
	factoryGroup := r.Group("/factory")
	factoryGroup.GET("", handler.GetFactoryConfig)
	factoryGroup.POST("/admin", append(admin, handler.SetAdmin)...)
	factoryGroup.POST("/oracle", append(admin, handler.SetOracle)...)
	factoryGroup.POST("/fee-policy", append(admin, handler.SetDefaultFeePolicy)...)
	factoryGroup.POST("/ownership", append(admin, handler.TransferOwnership)...)
	factoryGroup.POST("/ownership/renounce", append(admin, handler.RenounceOwnership)...)
}

func chain(middleware ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(middleware))
	for _, m := range middleware {
		if m != nil {
			out = append(out, m)
		}
	}
	// full slice expression so every append copies
	return out[:len(out):len(out)]
}
