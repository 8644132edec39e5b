package markets

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joefazee/categorical/models"
	"github.com/shopspring/decimal"
)

// service implements the Service interface on top of a Factory
type service struct {
	factory *Factory
}

// NewService creates a new market service
func NewService(factory *Factory) Service {
	return &service{factory: factory}
}

func (s *service) CreateMarket(ctx context.Context, caller common.Address, params CreateMarketParams) (*models.MarketSummary, error) {
	m, err := s.factory.CreateMarket(ctx, caller, params)
	if err != nil {
		return nil, err
	}
	return m.Summary()
}

func (s *service) GetMarketState(market common.Address) (*models.MarketState, error) {
	m, err := s.factory.Market(market)
	if err != nil {
		return nil, err
	}
	return m.State()
}

func (s *service) GetMarketSummary(market common.Address) (*models.MarketSummary, error) {
	return s.factory.GetMarketSummary(market)
}

func (s *service) GetMarketSummaries(offset, limit int) ([]models.MarketSummary, int, error) {
	return s.factory.GetMarketSummaries(offset, limit)
}

func (s *service) GetMarketsByStatus(status models.MarketStatus) []common.Address {
	return s.factory.GetMarketsByStatus(status)
}

func (s *service) GetRecentMarkets(count int) []common.Address {
	return s.factory.GetRecentMarkets(count)
}

func (s *service) GetFactoryConfig() models.FactoryConfig {
	return s.factory.GetFactoryConfig()
}

func (s *service) GetMarketCount() int {
	return s.factory.GetMarketCount()
}

func (s *service) GetPosition(market, user common.Address) (*models.UserPosition, error) {
	m, err := s.factory.Market(market)
	if err != nil {
		return nil, err
	}
	return m.Position(user)
}

func (s *service) SimulateBuy(market common.Address, outcome int, budget decimal.Decimal) (*models.SimulateBuyResult, error) {
	m, err := s.factory.Market(market)
	if err != nil {
		return nil, err
	}
	return m.SimulateBuy(outcome, budget)
}

func (s *service) SimulateSell(market common.Address, outcome int, shares decimal.Decimal) (*models.SimulateSellResult, error) {
	m, err := s.factory.Market(market)
	if err != nil {
		return nil, err
	}
	return m.SimulateSell(outcome, shares)
}

func (s *service) CheckArbitrage(market common.Address) (*models.ArbitrageCheck, error) {
	m, err := s.factory.Market(market)
	if err != nil {
		return nil, err
	}
	return m.CheckArbitrage()
}

func (s *service) BuyShares(ctx context.Context, market, caller common.Address, outcome int, minShares, maxCost decimal.Decimal) (*models.SimulateBuyResult, error) {
	m, err := s.factory.Market(market)
	if err != nil {
		return nil, err
	}
	return m.BuyShares(ctx, caller, outcome, minShares, maxCost)
}

func (s *service) SellShares(ctx context.Context, market, caller common.Address, outcome int, shares, minPayout decimal.Decimal) (*models.SimulateSellResult, error) {
	m, err := s.factory.Market(market)
	if err != nil {
		return nil, err
	}
	return m.SellShares(ctx, caller, outcome, shares, minPayout)
}

func (s *service) MintCompleteSet(ctx context.Context, market, caller common.Address, amount decimal.Decimal) error {
	m, err := s.factory.Market(market)
	if err != nil {
		return err
	}
	return m.MintCompleteSet(ctx, caller, amount)
}

func (s *service) BurnCompleteSet(ctx context.Context, market, caller common.Address, amount decimal.Decimal) error {
	m, err := s.factory.Market(market)
	if err != nil {
		return err
	}
	return m.BurnCompleteSet(ctx, caller, amount)
}

func (s *service) AddLiquidity(ctx context.Context, market, caller common.Address, amount decimal.Decimal) (decimal.Decimal, error) {
	m, err := s.factory.Market(market)
	if err != nil {
		return decimal.Zero, err
	}
	return m.AddLiquidity(ctx, caller, amount)
}

func (s *service) RemoveLiquidity(ctx context.Context, market, caller common.Address, lpAmount decimal.Decimal) (decimal.Decimal, error) {
	m, err := s.factory.Market(market)
	if err != nil {
		return decimal.Zero, err
	}
	return m.RemoveLiquidity(ctx, caller, lpAmount)
}

func (s *service) ResolveMarket(ctx context.Context, market, caller common.Address, winningOutcome int) error {
	m, err := s.factory.Market(market)
	if err != nil {
		return err
	}
	return m.ResolveMarket(ctx, caller, winningOutcome)
}

func (s *service) ClaimWinnings(ctx context.Context, market, caller common.Address) (decimal.Decimal, error) {
	m, err := s.factory.Market(market)
	if err != nil {
		return decimal.Zero, err
	}
	return m.ClaimWinnings(ctx, caller)
}

func (s *service) SetAdmin(ctx context.Context, caller, admin common.Address) error {
	return s.factory.SetAdmin(ctx, caller, admin)
}

func (s *service) SetOracle(ctx context.Context, caller, oracle common.Address) error {
	return s.factory.SetOracle(ctx, caller, oracle)
}

func (s *service) SetDefaultFeePolicy(ctx context.Context, caller common.Address, policy FeePolicy) error {
	return s.factory.SetDefaultFeePolicy(ctx, caller, policy)
}

func (s *service) TransferOwnership(ctx context.Context, caller, newOwner common.Address) error {
	return s.factory.TransferOwnership(ctx, caller, newOwner)
}

func (s *service) RenounceOwnership(ctx context.Context, caller common.Address) error {
	return s.factory.RenounceOwnership(ctx, caller)
}
