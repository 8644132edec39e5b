package markets

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/joefazee/categorical/app/api"
	"github.com/joefazee/categorical/internal/sanitizer"
	"github.com/joefazee/categorical/internal/validator"
	"github.com/joefazee/categorical/models"
	"github.com/shopspring/decimal"
)

// Handler handles HTTP requests for markets
type Handler struct {
	service   Service
	sanitizer sanitizer.HTMLStripperer
}

// NewHandler creates a new market handler
func NewHandler(service Service, sanitizer sanitizer.HTMLStripperer) *Handler {
	return &Handler{
		service:   service,
		sanitizer: sanitizer,
	}
}

func queryInt(c *gin.Context, key string, fallback int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		api.BadRequestResponse(c, "Invalid "+key)
		return 0, false
	}
	return v, true
}

func queryDecimal(c *gin.Context, key string) (decimal.Decimal, bool) {
	v, err := decimal.NewFromString(c.Query(key))
	if err != nil {
		api.BadRequestResponse(c, "Invalid "+key)
		return decimal.Zero, false
	}
	return v, true
}

// ListMarkets returns a page of market summaries
// @Summary      List markets
// @Description  Returns a page of market summaries.
// @Tags         Markets
// @Produce      json
// @Param        offset   query int false "Window offset" default(0)
// @Param        limit    query int false "Window size" default(20)
// @Success      200  {object}  api.Response{data=[]models.MarketSummary}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      500  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/markets [get]
func (h *Handler) ListMarkets(c *gin.Context) {
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 20)
	if !ok {
		return
	}

	summaries, total, err := h.service.GetMarketSummaries(offset, limit)
	if err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.OffsetResponse(c, "Markets retrieved successfully", summaries, api.NewOffsetMeta(offset, limit, total))
}

// GetMarketsByStatus returns the markets in one lifecycle state
// @Summary      List markets by status
// @Description  Returns the markets in one lifecycle state.
// @Tags         Markets
// @Produce      json
// @Param        status   path string true "Lifecycle status" Enums(active, resolved, cancelled)
// @Success      200  {object}  api.Response{data=AddressListResponse}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/markets/status/{status} [get]
func (h *Handler) GetMarketsByStatus(c *gin.Context) {
	status := models.MarketStatus(c.Param("status"))
	if !status.IsValid() {
		api.BadRequestResponse(c, "Invalid market status")
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Markets retrieved successfully", AddressListResponse{
		Markets: h.service.GetMarketsByStatus(status),
	})
}

// GetRecentMarkets returns the newest markets
// @Summary      List recent markets
// @Description  Returns the newest markets.
// @Tags         Markets
// @Produce      json
// @Param        count    query int false "Number of markets"
// @Success      200  {object}  api.Response{data=AddressListResponse}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/markets/recent [get]
func (h *Handler) GetRecentMarkets(c *gin.Context) {
	count, ok := queryInt(c, "count", 0)
	if !ok {
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Markets retrieved successfully", AddressListResponse{
		Markets: h.service.GetRecentMarkets(count),
	})
}

// GetFactoryConfig returns the factory configuration
// @Summary      Get factory configuration
// @Description  Returns the factory configuration.
// @Tags         Factory
// @Produce      json
// @Success      200  {object}  api.Response{data=models.FactoryConfig}
// @Router       /api/v1/factory [get]
func (h *Handler) GetFactoryConfig(c *gin.Context) {
	api.SuccessResponse(c, http.StatusOK, "Factory configuration retrieved successfully", h.service.GetFactoryConfig())
}

// GetMarket returns a market's full state
// @Summary      Get market state
// @Description  Returns a market's full state.
// @Tags         Markets
// @Produce      json
// @Param        market   path string true "Market address"
// @Success      200  {object}  api.Response{data=models.MarketState}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      404  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/markets/{market} [get]
func (h *Handler) GetMarket(c *gin.Context) {
	market, ok := api.ParseAddress(c, "market")
	if !ok {
		return
	}

	state, err := h.service.GetMarketState(market)
	if err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Market retrieved successfully", state)
}

// GetMarketSummary returns a market's discovery summary
// @Summary      Get market summary
// @Description  Returns a market's discovery summary.
// @Tags         Markets
// @Produce      json
// @Param        market   path string true "Market address"
// @Success      200  {object}  api.Response{data=models.MarketSummary}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      404  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/markets/{market}/summary [get]
func (h *Handler) GetMarketSummary(c *gin.Context) {
	market, ok := api.ParseAddress(c, "market")
	if !ok {
		return
	}

	summary, err := h.service.GetMarketSummary(market)
	if err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Market summary retrieved successfully", summary)
}

// GetPosition returns a holder's position in a market
// @Summary      Get position
// @Description  Returns a holder's position in a market.
// @Tags         Markets
// @Produce      json
// @Param        market   path string true "Market address"
// @Param        user     path string true "Holder address"
// @Success      200  {object}  api.Response{data=models.UserPosition}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      404  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/markets/{market}/positions/{user} [get]
func (h *Handler) GetPosition(c *gin.Context) {
	market, ok := api.ParseAddress(c, "market")
	if !ok {
		return
	}
	user, ok := api.ParseAddress(c, "user")
	if !ok {
		return
	}

	pos, err := h.service.GetPosition(market, user)
	if err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Position retrieved successfully", pos)
}

// SimulateBuy quotes a buy without trading
// @Summary      Simulate buy
// @Description  Quotes a buy without trading.
// @Tags         Markets
// @Produce      json
// @Param        market   path string true "Market address"
// @Param        outcome  query int true "Outcome index"
// @Param        budget   query string true "Collateral budget"
// @Success      200  {object}  api.Response{data=models.SimulateBuyResult}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      404  {object}  api.Response{error=api.ErrorInfo}
// @Failure      422  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/markets/{market}/simulate/buy [get]
func (h *Handler) SimulateBuy(c *gin.Context) {
	market, ok := api.ParseAddress(c, "market")
	if !ok {
		return
	}
	outcome, ok := queryInt(c, "outcome", -1)
	if !ok {
		return
	}
	budget, ok := queryDecimal(c, "budget")
	if !ok {
		return
	}

	quote, err := h.service.SimulateBuy(market, outcome, budget)
	if err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Buy simulated", quote)
}

// SimulateSell quotes a sell without trading
// @Summary      Simulate sell
// @Description  Quotes a sell without trading.
// @Tags         Markets
// @Produce      json
// @Param        market   path string true "Market address"
// @Param        outcome  query int true "Outcome index"
// @Param        shares   query string true "Shares to sell"
// @Success      200  {object}  api.Response{data=models.SimulateSellResult}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      404  {object}  api.Response{error=api.ErrorInfo}
// @Failure      422  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/markets/{market}/simulate/sell [get]
func (h *Handler) SimulateSell(c *gin.Context) {
	market, ok := api.ParseAddress(c, "market")
	if !ok {
		return
	}
	outcome, ok := queryInt(c, "outcome", -1)
	if !ok {
		return
	}
	shares, ok := queryDecimal(c, "shares")
	if !ok {
		return
	}

	quote, err := h.service.SimulateSell(market, outcome, shares)
	if err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Sell simulated", quote)
}

// CheckArbitrage reports whether prices drift from summing to one
// @Summary      Check arbitrage
// @Description  Reports whether prices drift from summing to one.
// @Tags         Markets
// @Produce      json
// @Param        market   path string true "Market address"
// @Success      200  {object}  api.Response{data=models.ArbitrageCheck}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      404  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/markets/{market}/arbitrage [get]
func (h *Handler) CheckArbitrage(c *gin.Context) {
	market, ok := api.ParseAddress(c, "market")
	if !ok {
		return
	}

	check, err := h.service.CheckArbitrage(market)
	if err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Arbitrage checked", check)
}

// CreateMarket creates and funds a new market
// @Summary      Create market
// @Description  Creates and funds a new market.
// @Tags         Markets
// @Accept       json
// @Produce      json
// @Param        request  body  CreateMarketRequest  true  "Create market Request"
// @Security     BearerAuth
// @Success      201  {object}  api.Response{data=models.MarketSummary}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      422  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/markets [post]
func (h *Handler) CreateMarket(c *gin.Context) {
	caller, ok := api.RequireCaller(c)
	if !ok {
		return
	}
	var req CreateMarketRequest
	if !api.BindJSON(c, &req) {
		return
	}

	if h.sanitizer != nil {
		req.MetadataURI = h.sanitizer.StripHTML(req.MetadataURI)
	}

	v := validator.New()
	v.Check(validator.NotBlank(req.MetadataURI), "metadata_uri", "Metadata URI is required")
	v.Check(validator.IsURI(req.MetadataURI), "metadata_uri", "Metadata URI must be an absolute URI")
	v.Check(validator.IsPositiveAmount(req.InitialLiquidity), "initial_liquidity", "Initial liquidity must be a positive amount")
	v.Check(req.FeeKind == "" || validator.In(req.FeeKind, FeeKindPercentage, FeeKindFlat, FeeKindNone), "fee_kind", "Unknown fee kind")
	if !v.Valid() {
		api.ValidationErrorResponse(c, v.Errors)
		return
	}

	params, err := req.ToCreateMarketParams()
	if err != nil {
		api.HandleEngineError(c, err)
		return
	}

	summary, err := h.service.CreateMarket(c.Request.Context(), caller, params)
	if err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.CreatedResponse(c, "Market created successfully", summary)
}

// BuyShares buys shares of one outcome
// @Summary      Buy shares
// @Description  Buys shares of one outcome.
// @Tags         Markets
// @Accept       json
// @Produce      json
// @Param        market   path string true "Market address"
// @Param        request  body  BuySharesRequest  true  "Buy shares Request"
// @Security     BearerAuth
// @Success      200  {object}  api.Response{data=models.SimulateBuyResult}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      404  {object}  api.Response{error=api.ErrorInfo}
// @Failure      409  {object}  api.Response{error=api.ErrorInfo}
// @Failure      422  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/markets/{market}/buy [post]
func (h *Handler) BuyShares(c *gin.Context) {
	market, ok := api.ParseAddress(c, "market")
	if !ok {
		return
	}
	caller, ok := api.RequireCaller(c)
	if !ok {
		return
	}
	var req BuySharesRequest
	if !api.BindJSON(c, &req) {
		return
	}

	result, err := h.service.BuyShares(c.Request.Context(), market, caller, *req.Outcome, req.MinShares, req.MaxCost)
	if err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Shares bought", result)
}

// SellShares sells shares of one outcome
// @Summary      Sell shares
// @Description  Sells shares of one outcome.
// @Tags         Markets
// @Accept       json
// @Produce      json
// @Param        market   path string true "Market address"
// @Param        request  body  SellSharesRequest  true  "Sell shares Request"
// @Security     BearerAuth
// @Success      200  {object}  api.Response{data=models.SimulateSellResult}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      404  {object}  api.Response{error=api.ErrorInfo}
// @Failure      409  {object}  api.Response{error=api.ErrorInfo}
// @Failure      422  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/markets/{market}/sell [post]
func (h *Handler) SellShares(c *gin.Context) {
	market, ok := api.ParseAddress(c, "market")
	if !ok {
		return
	}
	caller, ok := api.RequireCaller(c)
	if !ok {
		return
	}
	var req SellSharesRequest
	if !api.BindJSON(c, &req) {
		return
	}

	result, err := h.service.SellShares(c.Request.Context(), market, caller, *req.Outcome, req.Shares, req.MinPayout)
	if err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Shares sold", result)
}

// MintCompleteSet exchanges collateral for a complete set of outcome shares
// @Summary      Mint complete set
// @Description  Exchanges collateral for a complete set of outcome shares.
// @Tags         Markets
// @Accept       json
// @Produce      json
// @Param        market   path string true "Market address"
// @Param        request  body  AmountRequest  true  "Mint complete set Request"
// @Security     BearerAuth
// @Success      200  {object}  api.Response{data=models.UserPosition}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      404  {object}  api.Response{error=api.ErrorInfo}
// @Failure      409  {object}  api.Response{error=api.ErrorInfo}
// @Failure      422  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/markets/{market}/complete-sets/mint [post]
func (h *Handler) MintCompleteSet(c *gin.Context) {
	h.withAmount(c, func(req marketCall, amount decimal.Decimal) {
		if err := h.service.MintCompleteSet(c.Request.Context(), req.market, req.caller, amount); err != nil {
			api.HandleEngineError(c, err)
			return
		}
		api.SuccessResponse(c, http.StatusOK, "Complete set minted", h.position(req))
	})
}

// BurnCompleteSet exchanges a complete set back for collateral
// @Summary      Burn complete set
// @Description  Exchanges a complete set back for collateral.
// @Tags         Markets
// @Accept       json
// @Produce      json
// @Param        market   path string true "Market address"
// @Param        request  body  AmountRequest  true  "Burn complete set Request"
// @Security     BearerAuth
// @Success      200  {object}  api.Response{data=models.UserPosition}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      404  {object}  api.Response{error=api.ErrorInfo}
// @Failure      409  {object}  api.Response{error=api.ErrorInfo}
// @Failure      422  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/markets/{market}/complete-sets/burn [post]
func (h *Handler) BurnCompleteSet(c *gin.Context) {
	h.withAmount(c, func(req marketCall, amount decimal.Decimal) {
		if err := h.service.BurnCompleteSet(c.Request.Context(), req.market, req.caller, amount); err != nil {
			api.HandleEngineError(c, err)
			return
		}
		api.SuccessResponse(c, http.StatusOK, "Complete set burned", h.position(req))
	})
}

// AddLiquidity deposits collateral for LP shares
// @Summary      Add liquidity
// @Description  Deposits collateral for LP shares.
// @Tags         Liquidity
// @Accept       json
// @Produce      json
// @Param        market   path string true "Market address"
// @Param        request  body  AmountRequest  true  "Add liquidity Request"
// @Security     BearerAuth
// @Success      200  {object}  api.Response{data=LiquidityResponse}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      404  {object}  api.Response{error=api.ErrorInfo}
// @Failure      409  {object}  api.Response{error=api.ErrorInfo}
// @Failure      422  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/markets/{market}/liquidity/add [post]
func (h *Handler) AddLiquidity(c *gin.Context) {
	h.withAmount(c, func(req marketCall, amount decimal.Decimal) {
		minted, err := h.service.AddLiquidity(c.Request.Context(), req.market, req.caller, amount)
		if err != nil {
			api.HandleEngineError(c, err)
			return
		}
		api.SuccessResponse(c, http.StatusOK, "Liquidity added", LiquidityResponse{Market: req.market, LPShares: minted, Payout: decimal.Zero})
	})
}

// RemoveLiquidity burns LP shares for collateral
// @Summary      Remove liquidity
// @Description  Burns LP shares for collateral.
// @Tags         Liquidity
// @Accept       json
// @Produce      json
// @Param        market   path string true "Market address"
// @Param        request  body  AmountRequest  true  "Remove liquidity Request"
// @Security     BearerAuth
// @Success      200  {object}  api.Response{data=LiquidityResponse}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      404  {object}  api.Response{error=api.ErrorInfo}
// @Failure      409  {object}  api.Response{error=api.ErrorInfo}
// @Failure      422  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/markets/{market}/liquidity/remove [post]
func (h *Handler) RemoveLiquidity(c *gin.Context) {
	h.withAmount(c, func(req marketCall, amount decimal.Decimal) {
		payout, err := h.service.RemoveLiquidity(c.Request.Context(), req.market, req.caller, amount)
		if err != nil {
			api.HandleEngineError(c, err)
			return
		}
		api.SuccessResponse(c, http.StatusOK, "Liquidity removed", LiquidityResponse{Market: req.market, LPShares: amount, Payout: payout})
	})
}

// ResolveMarket records the winning outcome
// @Summary      Resolve market
// @Description  Records the winning outcome.
// @Tags         Markets
// @Accept       json
// @Produce      json
// @Param        market   path string true "Market address"
// @Param        request  body  ResolveMarketRequest  true  "Resolve market Request"
// @Security     BearerAuth
// @Success      200  {object}  api.Response
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      403  {object}  api.Response{error=api.ErrorInfo}
// @Failure      404  {object}  api.Response{error=api.ErrorInfo}
// @Failure      409  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/markets/{market}/resolve [post]
func (h *Handler) ResolveMarket(c *gin.Context) {
	market, ok := api.ParseAddress(c, "market")
	if !ok {
		return
	}
	caller, ok := api.RequireCaller(c)
	if !ok {
		return
	}
	var req ResolveMarketRequest
	if !api.BindJSON(c, &req) {
		return
	}

	if err := h.service.ResolveMarket(c.Request.Context(), market, caller, *req.WinningOutcome); err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Market resolved", nil)
}

// ClaimWinnings pays out the caller's winning shares
// @Summary      Claim winnings
// @Description  Pays out the caller's winning shares.
// @Tags         Markets
// @Produce      json
// @Param        market   path string true "Market address"
// @Security     BearerAuth
// @Success      200  {object}  api.Response{data=ClaimResponse}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      404  {object}  api.Response{error=api.ErrorInfo}
// @Failure      409  {object}  api.Response{error=api.ErrorInfo}
// @Failure      422  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/markets/{market}/claim [post]
func (h *Handler) ClaimWinnings(c *gin.Context) {
	market, ok := api.ParseAddress(c, "market")
	if !ok {
		return
	}
	caller, ok := api.RequireCaller(c)
	if !ok {
		return
	}

	payout, err := h.service.ClaimWinnings(c.Request.Context(), market, caller)
	if err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Winnings claimed", ClaimResponse{Market: market, Payout: payout})
}

// SetAdmin appoints the factory admin
// @Summary      Set factory admin (Admin)
// @Description  Appoints the factory admin.
// @Tags         Factory
// @Accept       json
// @Produce      json
// @Param        request  body  AddressRequest  true  "Set factory admin (Admin) Request"
// @Security     BearerAuth
// @Success      200  {object}  api.Response{data=models.FactoryConfig}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      403  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/factory/admin [post]
func (h *Handler) SetAdmin(c *gin.Context) {
	h.withAddress(c, h.service.SetAdmin, "Admin updated")
}

// SetOracle changes the resolver for new markets
// @Summary      Set oracle (Admin)
// @Description  Changes the resolver for new markets.
// @Tags         Factory
// @Accept       json
// @Produce      json
// @Param        request  body  AddressRequest  true  "Set oracle (Admin) Request"
// @Security     BearerAuth
// @Success      200  {object}  api.Response{data=models.FactoryConfig}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      403  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/factory/oracle [post]
func (h *Handler) SetOracle(c *gin.Context) {
	h.withAddress(c, h.service.SetOracle, "Oracle updated")
}

// TransferOwnership hands the factory to a new owner
// @Summary      Transfer factory ownership (Admin)
// @Description  Hands the factory to a new owner.
// @Tags         Factory
// @Accept       json
// @Produce      json
// @Param        request  body  AddressRequest  true  "Transfer factory ownership (Admin) Request"
// @Security     BearerAuth
// @Success      200  {object}  api.Response{data=models.FactoryConfig}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      403  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/factory/ownership [post]
func (h *Handler) TransferOwnership(c *gin.Context) {
	h.withAddress(c, h.service.TransferOwnership, "Ownership transferred")
}

// SetDefaultFeePolicy changes the fee policy for new markets
// @Summary      Set default fee policy (Admin)
// @Description  Changes the fee policy for new markets.
// @Tags         Factory
// @Accept       json
// @Produce      json
// @Param        request  body  FeePolicyRequest  true  "Set default fee policy (Admin) Request"
// @Security     BearerAuth
// @Success      200  {object}  api.Response{data=models.FactoryConfig}
// @Failure      400  {object}  api.Response{error=api.ErrorInfo}
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      403  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/factory/fee-policy [post]
func (h *Handler) SetDefaultFeePolicy(c *gin.Context) {
	caller, ok := api.RequireCaller(c)
	if !ok {
		return
	}
	var req FeePolicyRequest
	if !api.BindJSON(c, &req) {
		return
	}

	policy, err := ParseFeePolicy(req.Kind, req.Value)
	if err != nil {
		api.HandleEngineError(c, err)
		return
	}
	if err := h.service.SetDefaultFeePolicy(c.Request.Context(), caller, policy); err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Fee policy updated", h.service.GetFactoryConfig())
}

// RenounceOwnership leaves the factory without an owner
// @Summary      Renounce factory ownership (Admin)
// @Description  Leaves the factory without an owner.
// @Tags         Factory
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  api.Response
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      403  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/factory/ownership/renounce [post]
func (h *Handler) RenounceOwnership(c *gin.Context) {
	caller, ok := api.RequireCaller(c)
	if !ok {
		return
	}
	if err := h.service.RenounceOwnership(c.Request.Context(), caller); err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.SuccessResponse(c, http.StatusOK, "Ownership renounced", nil)
}

type marketCall struct {
	market common.Address
	caller common.Address
}

func (h *Handler) withAmount(c *gin.Context, run func(req marketCall, amount decimal.Decimal)) {
	market, ok := api.ParseAddress(c, "market")
	if !ok {
		return
	}
	caller, ok := api.RequireCaller(c)
	if !ok {
		return
	}
	var req AmountRequest
	if !api.BindJSON(c, &req) {
		return
	}
	run(marketCall{market: market, caller: caller}, req.Amount)
}

func (h *Handler) withAddress(c *gin.Context, run func(ctx context.Context, caller, target common.Address) error, message string) {
	caller, ok := api.RequireCaller(c)
	if !ok {
		return
	}
	var req AddressRequest
	if !api.BindJSON(c, &req) {
		return
	}
	if !validator.IsAddress(req.Address) {
		api.BadRequestResponse(c, "Invalid address")
		return
	}

	if err := run(c.Request.Context(), caller, common.HexToAddress(req.Address)); err != nil {
		api.HandleEngineError(c, err)
		return
	}
	api.SuccessResponse(c, http.StatusOK, message, h.service.GetFactoryConfig())
}

// position is best effort; the write already succeeded.
func (h *Handler) position(req marketCall) *models.UserPosition {
	pos, err := h.service.GetPosition(req.market, req.caller)
	if err != nil {
		return nil
	}
	return pos
}
