package markets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/joefazee/categorical/app/api"
	"github.com/joefazee/categorical/internal/sanitizer"
	"github.com/joefazee/categorical/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CreateMarket(ctx context.Context, caller common.Address, params CreateMarketParams) (*models.MarketSummary, error) {
	args := m.Called(ctx, caller, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MarketSummary), args.Error(1)
}

func (m *MockService) GetMarketState(market common.Address) (*models.MarketState, error) {
	args := m.Called(market)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MarketState), args.Error(1)
}

func (m *MockService) GetMarketSummary(market common.Address) (*models.MarketSummary, error) {
	args := m.Called(market)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MarketSummary), args.Error(1)
}

func (m *MockService) GetMarketSummaries(offset, limit int) ([]models.MarketSummary, int, error) {
	args := m.Called(offset, limit)
	return args.Get(0).([]models.MarketSummary), args.Int(1), args.Error(2)
}

func (m *MockService) GetMarketsByStatus(status models.MarketStatus) []common.Address {
	return m.Called(status).Get(0).([]common.Address)
}

func (m *MockService) GetRecentMarkets(count int) []common.Address {
	return m.Called(count).Get(0).([]common.Address)
}

func (m *MockService) GetFactoryConfig() models.FactoryConfig {
	return m.Called().Get(0).(models.FactoryConfig)
}

func (m *MockService) GetMarketCount() int {
	return m.Called().Int(0)
}

func (m *MockService) GetPosition(market, user common.Address) (*models.UserPosition, error) {
	args := m.Called(market, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserPosition), args.Error(1)
}

func (m *MockService) SimulateBuy(market common.Address, outcome int, budget decimal.Decimal) (*models.SimulateBuyResult, error) {
	args := m.Called(market, outcome, budget)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SimulateBuyResult), args.Error(1)
}

func (m *MockService) SimulateSell(market common.Address, outcome int, shares decimal.Decimal) (*models.SimulateSellResult, error) {
	args := m.Called(market, outcome, shares)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SimulateSellResult), args.Error(1)
}

func (m *MockService) CheckArbitrage(market common.Address) (*models.ArbitrageCheck, error) {
	args := m.Called(market)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ArbitrageCheck), args.Error(1)
}

func (m *MockService) BuyShares(ctx context.Context, market, caller common.Address, outcome int, minShares, maxCost decimal.Decimal) (*models.SimulateBuyResult, error) {
	args := m.Called(ctx, market, caller, outcome, minShares, maxCost)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SimulateBuyResult), args.Error(1)
}

func (m *MockService) SellShares(ctx context.Context, market, caller common.Address, outcome int, shares, minPayout decimal.Decimal) (*models.SimulateSellResult, error) {
	args := m.Called(ctx, market, caller, outcome, shares, minPayout)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SimulateSellResult), args.Error(1)
}

func (m *MockService) MintCompleteSet(ctx context.Context, market, caller common.Address, amount decimal.Decimal) error {
	return m.Called(ctx, market, caller, amount).Error(0)
}

func (m *MockService) BurnCompleteSet(ctx context.Context, market, caller common.Address, amount decimal.Decimal) error {
	return m.Called(ctx, market, caller, amount).Error(0)
}

func (m *MockService) AddLiquidity(ctx context.Context, market, caller common.Address, amount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, market, caller, amount)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockService) RemoveLiquidity(ctx context.Context, market, caller common.Address, lpAmount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, market, caller, lpAmount)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockService) ResolveMarket(ctx context.Context, market, caller common.Address, winningOutcome int) error {
	return m.Called(ctx, market, caller, winningOutcome).Error(0)
}

func (m *MockService) ClaimWinnings(ctx context.Context, market, caller common.Address) (decimal.Decimal, error) {
	args := m.Called(ctx, market, caller)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockService) SetAdmin(ctx context.Context, caller, admin common.Address) error {
	return m.Called(ctx, caller, admin).Error(0)
}

func (m *MockService) SetOracle(ctx context.Context, caller, oracle common.Address) error {
	return m.Called(ctx, caller, oracle).Error(0)
}

func (m *MockService) SetDefaultFeePolicy(ctx context.Context, caller common.Address, policy FeePolicy) error {
	return m.Called(ctx, caller, policy).Error(0)
}

func (m *MockService) TransferOwnership(ctx context.Context, caller, newOwner common.Address) error {
	return m.Called(ctx, caller, newOwner).Error(0)
}

func (m *MockService) RenounceOwnership(ctx context.Context, caller common.Address) error {
	return m.Called(ctx, caller).Error(0)
}

// amount matches a decimal argument by value rather than representation.
func amount(raw string) interface{} {
	want := decimal.RequireFromString(raw)
	return mock.MatchedBy(func(got decimal.Decimal) bool { return got.Equal(want) })
}

func isFlatFee(policy FeePolicy, want decimal.Decimal) bool {
	f, ok := policy.(FlatFee)
	return ok && f.Amount.Equal(want)
}

type MarketHandlerTestSuite struct {
	suite.Suite
	service *MockService
	router  *gin.Engine
	caller  common.Address
}

func TestMarketHandler(t *testing.T) {
	suite.Run(t, new(MarketHandlerTestSuite))
}

func (s *MarketHandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *MarketHandlerTestSuite) SetupTest() {
	s.service = new(MockService)
	s.caller = alice

	s.router = gin.New()
	Init(s.router.Group("/api/v1"), Dependencies{
		Service:   s.service,
		Sanitizer: sanitizer.NewHTMLStripper(),
		Auth: func(c *gin.Context) {
			api.SetCaller(c, s.caller)
			c.Next()
		},
	})
}

func (s *MarketHandlerTestSuite) TearDownTest() {
	s.service.AssertExpectations(s.T())
}

func (s *MarketHandlerTestSuite) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *MarketHandlerTestSuite) decode(w *httptest.ResponseRecorder) api.Response {
	var resp api.Response
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func marketPath(suffix string) string {
	return "/api/v1/markets/" + marketA.Hex() + suffix
}

func (s *MarketHandlerTestSuite) TestListMarkets() {
	s.service.On("GetMarketSummaries", 20, 10).Return([]models.MarketSummary{{Market: marketA, NumOutcomes: 2}}, 21, nil)

	w := s.do(http.MethodGet, "/api/v1/markets?offset=20&limit=10", nil)
	s.Equal(http.StatusOK, w.Code)
	resp := s.decode(w)
	s.True(resp.Success)
	meta := resp.Meta.(map[string]interface{})
	s.Equal(float64(21), meta["total"])
	s.Equal(false, meta["has_more"])
}

func (s *MarketHandlerTestSuite) TestListMarkets_BadQuery() {
	w := s.do(http.MethodGet, "/api/v1/markets?limit=ten", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *MarketHandlerTestSuite) TestGetMarketsByStatus() {
	s.service.On("GetMarketsByStatus", models.MarketStatusResolved).Return([]common.Address{marketA})

	w := s.do(http.MethodGet, "/api/v1/markets/status/resolved", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), marketA.Hex())

	w = s.do(http.MethodGet, "/api/v1/markets/status/paused", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *MarketHandlerTestSuite) TestGetRecentMarkets() {
	s.service.On("GetRecentMarkets", 5).Return([]common.Address{marketA})

	w := s.do(http.MethodGet, "/api/v1/markets/recent?count=5", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *MarketHandlerTestSuite) TestGetMarket() {
	s.service.On("GetMarketState", marketA).Return(&models.MarketState{
		Info:   models.MarketInfo{Address: marketA, NumOutcomes: 2, Status: models.MarketStatusActive},
		Prices: []decimal.Decimal{d("0.5"), d("0.5")},
	}, nil)

	w := s.do(http.MethodGet, marketPath(""), nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"0.5"`)
}

func (s *MarketHandlerTestSuite) TestGetMarket_NotFound() {
	s.service.On("GetMarketState", marketA).Return(nil, models.ErrMarketNotFound)

	w := s.do(http.MethodGet, marketPath(""), nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *MarketHandlerTestSuite) TestGetMarket_InvalidAddress() {
	w := s.do(http.MethodGet, "/api/v1/markets/not-an-address", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *MarketHandlerTestSuite) TestGetPosition() {
	s.service.On("GetPosition", marketA, bob).Return(&models.UserPosition{Balances: []decimal.Decimal{d("3"), decimal.Zero}}, nil)

	w := s.do(http.MethodGet, marketPath("/positions/"+bob.Hex()), nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *MarketHandlerTestSuite) TestSimulateBuy() {
	s.service.On("SimulateBuy", marketA, 1, amount("10")).Return(&models.SimulateBuyResult{Shares: d("19.6")}, nil)

	w := s.do(http.MethodGet, marketPath("/simulate/buy?outcome=1&budget=10"), nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"19.6"`)

	w = s.do(http.MethodGet, marketPath("/simulate/buy?outcome=1&budget=lots"), nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *MarketHandlerTestSuite) TestSimulateSell() {
	s.service.On("SimulateSell", marketA, 0, amount("2")).Return(nil, models.ErrMarketNotActive)

	w := s.do(http.MethodGet, marketPath("/simulate/sell?outcome=0&shares=2"), nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("MARKET_NOT_ACTIVE", s.decode(w).Error.Code)
}

func (s *MarketHandlerTestSuite) TestCheckArbitrage() {
	s.service.On("CheckArbitrage", marketA).Return(&models.ArbitrageCheck{CostDifference: decimal.Zero}, nil)

	w := s.do(http.MethodGet, marketPath("/arbitrage"), nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *MarketHandlerTestSuite) TestCreateMarket() {
	resolution := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	s.service.On("CreateMarket", mock.Anything, alice, mock.MatchedBy(func(p CreateMarketParams) bool {
		return p.MetadataURI == "ipfs://question" &&
			p.NumOutcomes == 3 &&
			p.ResolutionTime.Equal(resolution) &&
			p.InitialLiquidity.Equal(d("100")) &&
			isFlatFee(p.FeePolicy, d("0.5"))
	})).Return(&models.MarketSummary{Market: marketA, NumOutcomes: 3}, nil)

	w := s.do(http.MethodPost, "/api/v1/markets", CreateMarketRequest{
		MetadataURI:      "  <b>ipfs://question</b> ",
		NumOutcomes:      3,
		ResolutionTime:   resolution,
		InitialLiquidity: d("100"),
		FeeKind:          FeeKindFlat,
		FeeValue:         d("0.5"),
	})
	s.Equal(http.StatusCreated, w.Code)
}

func (s *MarketHandlerTestSuite) TestCreateMarket_Validation() {
	tests := map[string]CreateMarketRequest{
		"relative uri":       {MetadataURI: "question", NumOutcomes: 2, ResolutionTime: time.Now(), InitialLiquidity: d("100")},
		"zero liquidity":     {MetadataURI: "ipfs://q", NumOutcomes: 2, ResolutionTime: time.Now(), InitialLiquidity: decimal.Zero},
		"sub-grid liquidity": {MetadataURI: "ipfs://q", NumOutcomes: 2, ResolutionTime: time.Now(), InitialLiquidity: d("1.0000000000000000001")},
		"unknown fee kind":   {MetadataURI: "ipfs://q", NumOutcomes: 2, ResolutionTime: time.Now(), InitialLiquidity: d("100"), FeeKind: "tiered"},
	}
	for name, req := range tests {
		s.Run(name, func() {
			w := s.do(http.MethodPost, "/api/v1/markets", req)
			s.Equal(http.StatusBadRequest, w.Code)
			s.Equal("VALIDATION_ERROR", s.decode(w).Error.Code)
		})
	}

	w := s.do(http.MethodPost, "/api/v1/markets", map[string]interface{}{"metadata_uri": "ipfs://q", "num_outcomes": 1})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *MarketHandlerTestSuite) TestBuyShares() {
	s.service.On("BuyShares", mock.Anything, marketA, alice, 1, amount("5"), amount("10")).
		Return(&models.SimulateBuyResult{Shares: d("6"), TotalCost: d("9"), Fee: d("0.09")}, nil)

	w := s.do(http.MethodPost, marketPath("/buy"), map[string]interface{}{"outcome": 1, "min_shares": "5", "max_cost": "10"})
	s.Equal(http.StatusOK, w.Code)
}

func (s *MarketHandlerTestSuite) TestBuyShares_Slippage() {
	s.service.On("BuyShares", mock.Anything, marketA, alice, 0, amount("50"), amount("10")).
		Return(nil, fmt.Errorf("%w: wanted 50", models.ErrExceedsSlippage))

	w := s.do(http.MethodPost, marketPath("/buy"), map[string]interface{}{"outcome": 0, "min_shares": "50", "max_cost": "10"})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("EXCEEDS_SLIPPAGE", s.decode(w).Error.Code)
}

func (s *MarketHandlerTestSuite) TestBuyShares_MissingOutcome() {
	w := s.do(http.MethodPost, marketPath("/buy"), map[string]interface{}{"max_cost": "10"})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *MarketHandlerTestSuite) TestSellShares() {
	s.service.On("SellShares", mock.Anything, marketA, alice, 0, amount("2"), amount("0")).
		Return(nil, models.ErrInsufficientBalance)

	w := s.do(http.MethodPost, marketPath("/sell"), map[string]interface{}{"outcome": 0, "shares": "2", "min_payout": "0"})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *MarketHandlerTestSuite) TestMintCompleteSet() {
	s.service.On("MintCompleteSet", mock.Anything, marketA, alice, amount("5")).Return(nil)
	s.service.On("GetPosition", marketA, alice).Return(&models.UserPosition{Balances: []decimal.Decimal{d("5"), d("5")}}, nil)

	w := s.do(http.MethodPost, marketPath("/complete-sets/mint"), AmountRequest{Amount: d("5")})
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"balances":["5","5"]`)
}

func (s *MarketHandlerTestSuite) TestBurnCompleteSet_PositionUnavailable() {
	s.service.On("BurnCompleteSet", mock.Anything, marketA, alice, amount("1")).Return(nil)
	s.service.On("GetPosition", marketA, alice).Return(nil, models.ErrMarketNotFound)

	w := s.do(http.MethodPost, marketPath("/complete-sets/burn"), AmountRequest{Amount: d("1")})
	s.Equal(http.StatusOK, w.Code)
}

func (s *MarketHandlerTestSuite) TestLiquidity() {
	s.service.On("AddLiquidity", mock.Anything, marketA, alice, amount("50")).Return(d("50"), nil)
	s.service.On("RemoveLiquidity", mock.Anything, marketA, alice, amount("20")).Return(d("21.5"), nil)

	w := s.do(http.MethodPost, marketPath("/liquidity/add"), AmountRequest{Amount: d("50")})
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPost, marketPath("/liquidity/remove"), AmountRequest{Amount: d("20")})
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"payout":"21.5"`)
}

func (s *MarketHandlerTestSuite) TestResolveMarket() {
	s.caller = oracle
	s.service.On("ResolveMarket", mock.Anything, marketA, oracle, 1).Return(nil)

	w := s.do(http.MethodPost, marketPath("/resolve"), map[string]interface{}{"winning_outcome": 1})
	s.Equal(http.StatusOK, w.Code)
}

func (s *MarketHandlerTestSuite) TestResolveMarket_Errors() {
	s.service.On("ResolveMarket", mock.Anything, marketA, alice, 0).Return(models.ErrUnauthorized).Once()
	s.service.On("ResolveMarket", mock.Anything, marketA, alice, 1).Return(models.ErrTooEarly).Once()

	w := s.do(http.MethodPost, marketPath("/resolve"), map[string]interface{}{"winning_outcome": 0})
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, marketPath("/resolve"), map[string]interface{}{"winning_outcome": 1})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("TOO_EARLY", s.decode(w).Error.Code)
}

func (s *MarketHandlerTestSuite) TestClaimWinnings() {
	s.service.On("ClaimWinnings", mock.Anything, marketA, alice).Return(d("12"), nil).Once()
	s.service.On("ClaimWinnings", mock.Anything, marketA, alice).Return(decimal.Zero, models.ErrAlreadyClaimed).Once()

	w := s.do(http.MethodPost, marketPath("/claim"), nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"payout":"12"`)

	w = s.do(http.MethodPost, marketPath("/claim"), nil)
	s.Equal(http.StatusConflict, w.Code)
}

func (s *MarketHandlerTestSuite) TestFactoryAdmin() {
	newOracle := common.HexToAddress("0x00000000000000000000000000000000000000e1")
	s.service.On("SetOracle", mock.Anything, alice, newOracle).Return(nil)
	s.service.On("SetDefaultFeePolicy", mock.Anything, alice, PercentageFee{Rate: d("0.02")}).Return(nil)
	s.service.On("TransferOwnership", mock.Anything, alice, bob).Return(models.ErrUnauthorized)
	s.service.On("RenounceOwnership", mock.Anything, alice).Return(nil)
	s.service.On("GetFactoryConfig").Return(models.FactoryConfig{OracleResolver: newOracle})

	w := s.do(http.MethodPost, "/api/v1/factory/oracle", AddressRequest{Address: newOracle.Hex()})
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/v1/factory/oracle", AddressRequest{Address: "0x123"})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/factory/fee-policy", FeePolicyRequest{Kind: FeeKindPercentage, Value: d("0.02")})
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/v1/factory/fee-policy", FeePolicyRequest{Kind: "tiered", Value: d("1")})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/factory/ownership", AddressRequest{Address: bob.Hex()})
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/v1/factory/ownership/renounce", nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/v1/factory", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), newOracle.Hex())
}

func (s *MarketHandlerTestSuite) TestWritesRequireCaller() {
	router := gin.New()
	Init(router.Group("/api/v1"), Dependencies{Service: s.service})

	req := httptest.NewRequest(http.MethodPost, marketPath("/claim"), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	s.Equal(http.StatusUnauthorized, w.Code)
}
