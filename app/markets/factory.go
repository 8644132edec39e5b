package markets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joefazee/categorical/app/lmsr"
	"github.com/joefazee/categorical/internal/logger"
	"github.com/joefazee/categorical/models"
	"github.com/shopspring/decimal"
)

// CreateMarketParams describes a market requested from the factory. A nil
// FeePolicy selects the factory default.
type CreateMarketParams struct {
	MetadataURI      string
	NumOutcomes      int
	ResolutionTime   time.Time
	InitialLiquidity decimal.Decimal
	FeePolicy        FeePolicy
}

// Factory creates markets and indexes them for discovery. Creators approve
// the factory to spend their initial liquidity.
type Factory struct {
	address    common.Address
	config     *Config
	collateral CollateralLedger
	engine     lmsr.PricingEngine
	logger     logger.Logger
	now        func() time.Time
	social     common.Address

	// creating serializes CreateMarket so handles are registered in nonce
	// order and a failed creation leaves the nonce unused
	creating sync.Mutex

	mu         sync.RWMutex
	owner      common.Address
	admin      common.Address
	oracle     common.Address
	defaultFee FeePolicy
	nonce      uint64
	markets    []*Market
	byAddress  map[common.Address]*Market
	listeners  []Listener
}

// FactoryOption configures a Factory
type FactoryOption func(*Factory)

// WithFactoryClock overrides the clock used by the factory and its markets
func WithFactoryClock(now func() time.Time) FactoryOption {
	return func(f *Factory) {
		f.now = now
	}
}

// WithFactoryListener registers a listener on every market the factory creates
func WithFactoryListener(l Listener) FactoryOption {
	return func(f *Factory) {
		f.listeners = append(f.listeners, l)
	}
}

// WithSocialLedger records the social ledger handle reported in the factory config
func WithSocialLedger(addr common.Address) FactoryOption {
	return func(f *Factory) {
		f.social = addr
	}
}

// NewFactory creates a market factory settling in the given collateral
func NewFactory(config *Config, collateral CollateralLedger, engine lmsr.PricingEngine, log logger.Logger, opts ...FactoryOption) *Factory {
	if config == nil {
		config = GetDefaultConfig()
	}
	if log == nil {
		log = logger.NewNullLogger()
	}

	owner := config.OwnerAddress()
	f := &Factory{
		address:    crypto.CreateAddress(owner, 1),
		config:     config,
		collateral: collateral,
		engine:     engine,
		logger:     log,
		now:        time.Now,
		owner:      owner,
		admin:      config.AdminAddress(),
		oracle:     config.OracleAddress(),
		defaultFee: PercentageFee{Rate: config.DefaultFeeRate},
		byAddress:  make(map[common.Address]*Market),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Subscribe registers a listener for markets created from now on
func (f *Factory) Subscribe(l Listener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, l)
}

// Address returns the factory handle
func (f *Factory) Address() common.Address { return f.address }

// CreateMarket validates the request, derives the market handles and
// initializes the market with the factory's current oracle.
func (f *Factory) CreateMarket(ctx context.Context, caller common.Address, params CreateMarketParams) (*Market, error) {
	if caller == (common.Address{}) {
		return nil, fmt.Errorf("%w: creator is required", models.ErrInvalidParameters)
	}

	f.creating.Lock()
	defer f.creating.Unlock()

	f.mu.RLock()
	fees := params.FeePolicy
	if fees == nil {
		fees = f.defaultFee
	}
	oracle := f.oracle
	nonce := f.nonce + 1
	opts := []MarketOption{WithDeployer(f.address), WithMarketClock(f.now)}
	for _, l := range f.listeners {
		opts = append(opts, WithMarketListener(l))
	}
	f.mu.RUnlock()

	if err := validateCreation(f.config, f.now(), params.NumOutcomes, params.ResolutionTime, params.InitialLiquidity, params.MetadataURI, fees); err != nil {
		return nil, err
	}
	if oracle == (common.Address{}) {
		return nil, fmt.Errorf("%w: factory has no oracle resolver", models.ErrInvalidParameters)
	}

	address := crypto.CreateAddress(f.address, nonce)
	market := NewMarket(address, f.config, f.collateral, f.engine, f.logger, opts...)
	err := market.Initialize(ctx, f.address, InitializeParams{
		Creator:          caller,
		Oracle:           oracle,
		MetadataURI:      params.MetadataURI,
		NumOutcomes:      params.NumOutcomes,
		ResolutionTime:   params.ResolutionTime,
		InitialLiquidity: params.InitialLiquidity,
		FeePolicy:        fees,
		OutcomeToken:     crypto.CreateAddress(address, 1),
		LPToken:          crypto.CreateAddress(address, 2),
	})
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.nonce = nonce
	f.markets = append(f.markets, market)
	f.byAddress[address] = market
	f.mu.Unlock()

	f.logger.Info("market created", map[string]interface{}{
		"market":  address.Hex(),
		"creator": caller.Hex(),
		"oracle":  oracle.Hex(),
		"fees":    fees.Name(),
	})
	return market, nil
}

// Market returns a registered market
func (f *Factory) Market(address common.Address) (*Market, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	m, ok := f.byAddress[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrMarketNotFound, address.Hex())
	}
	return m, nil
}

// MarketInfo returns a registered market's state
func (f *Factory) MarketInfo(address common.Address) (models.MarketInfo, error) {
	m, err := f.Market(address)
	if err != nil {
		return models.MarketInfo{}, err
	}
	return m.Info()
}

// IsMarket reports whether address was created by this factory
func (f *Factory) IsMarket(address common.Address) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.byAddress[address]
	return ok
}

// GetMarketCount returns the number of markets created
func (f *Factory) GetMarketCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.markets)
}

// MarketAt returns the i-th market in creation order
func (f *Factory) MarketAt(i int) (common.Address, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if i < 0 || i >= len(f.markets) {
		return common.Address{}, fmt.Errorf("%w: index %d out of range", models.ErrInvalidParameters, i)
	}
	return f.markets[i].Address(), nil
}

// GetAllMarkets returns every market in creation order
func (f *Factory) GetAllMarkets() []common.Address {
	all := f.registered()
	out := make([]common.Address, len(all))
	for i, m := range all {
		out[i] = m.Address()
	}
	return out
}

// GetActiveMarkets returns the markets still trading
func (f *Factory) GetActiveMarkets() []common.Address {
	return f.GetMarketsByStatus(models.MarketStatusActive)
}

// GetMarketsByStatus returns the markets in one lifecycle state
func (f *Factory) GetMarketsByStatus(status models.MarketStatus) []common.Address {
	out := make([]common.Address, 0)
	for _, m := range f.registered() {
		if info, err := m.Info(); err == nil && info.Status == status {
			out = append(out, m.Address())
		}
	}
	return out
}

// GetRecentMarkets returns up to count markets, newest first
func (f *Factory) GetRecentMarkets(count int) []common.Address {
	all := f.registered()
	if count <= 0 || count > f.config.RecentMarketsLimit {
		count = f.config.RecentMarketsLimit
	}
	if count > len(all) {
		count = len(all)
	}

	out := make([]common.Address, 0, count)
	for i := len(all) - 1; i >= len(all)-count; i-- {
		out = append(out, all[i].Address())
	}
	return out
}

// GetMarketSummaries pages through summaries in creation order. It returns
// the page and the total number of markets.
func (f *Factory) GetMarketSummaries(offset, limit int) ([]models.MarketSummary, int, error) {
	if offset < 0 {
		return nil, 0, fmt.Errorf("%w: negative offset", models.ErrInvalidParameters)
	}
	if limit <= 0 || limit > f.config.MaxPageSize {
		limit = f.config.MaxPageSize
	}

	all := f.registered()
	total := len(all)
	if offset >= total {
		return []models.MarketSummary{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	out := make([]models.MarketSummary, 0, end-offset)
	for _, m := range all[offset:end] {
		s, err := m.Summary()
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *s)
	}
	return out, total, nil
}

// GetMarketSummary returns one market's summary
func (f *Factory) GetMarketSummary(address common.Address) (*models.MarketSummary, error) {
	m, err := f.Market(address)
	if err != nil {
		return nil, err
	}
	return m.Summary()
}

// GetOutcomeToken returns the outcome-share handle of a market
func (f *Factory) GetOutcomeToken(address common.Address) (common.Address, error) {
	info, err := f.MarketInfo(address)
	if err != nil {
		return common.Address{}, err
	}
	return info.OutcomeToken, nil
}

// GetLPToken returns the LP-share handle of a market
func (f *Factory) GetLPToken(address common.Address) (common.Address, error) {
	info, err := f.MarketInfo(address)
	if err != nil {
		return common.Address{}, err
	}
	return info.LPToken, nil
}

// GetFactoryConfig returns the factory-level configuration
func (f *Factory) GetFactoryConfig() models.FactoryConfig {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return models.FactoryConfig{
		Factory:             f.address,
		CollateralToken:     f.collateral.Address(),
		SocialPredictions:   f.social,
		OracleResolver:      f.oracle,
		Admin:               f.admin,
		Owner:               f.owner,
		DefaultFeePolicy:    f.defaultFee.Name(),
		MaxOutcomes:         f.config.MaxOutcomes,
		MinInitialLiquidity: f.config.MinInitialLiquidity,
		MinMarketDuration:   f.config.MinMarketDuration,
	}
}

// SetAdmin appoints the factory admin. Owner only.
func (f *Factory) SetAdmin(_ context.Context, caller, admin common.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.isOwner(caller) {
		return fmt.Errorf("%w: only the factory owner can set the admin", models.ErrUnauthorized)
	}
	f.admin = admin
	f.logger.Info("factory admin changed", map[string]interface{}{"admin": admin.Hex()})
	return nil
}

// SetOracle changes the resolver for markets created afterwards
func (f *Factory) SetOracle(_ context.Context, caller, oracle common.Address) error {
	if oracle == (common.Address{}) {
		return fmt.Errorf("%w: oracle is the zero address", models.ErrInvalidParameters)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.isOwnerOrAdmin(caller) {
		return fmt.Errorf("%w: only the owner or admin can set the oracle", models.ErrUnauthorized)
	}
	f.oracle = oracle
	f.logger.Info("factory oracle changed", map[string]interface{}{"oracle": oracle.Hex()})
	return nil
}

// SetDefaultFeePolicy changes the fee policy for markets created afterwards
func (f *Factory) SetDefaultFeePolicy(_ context.Context, caller common.Address, policy FeePolicy) error {
	if err := ValidateFeePolicy(policy, f.config.MaxFeeRate); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.isOwnerOrAdmin(caller) {
		return fmt.Errorf("%w: only the owner or admin can set the fee policy", models.ErrUnauthorized)
	}
	f.defaultFee = policy
	return nil
}

// TransferOwnership hands the factory to another owner
func (f *Factory) TransferOwnership(_ context.Context, caller, newOwner common.Address) error {
	if newOwner == (common.Address{}) {
		return fmt.Errorf("%w: new owner is the zero address", models.ErrInvalidParameters)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.isOwner(caller) {
		return fmt.Errorf("%w: caller is not the factory owner", models.ErrUnauthorized)
	}
	f.owner = newOwner
	f.logger.Info("factory ownership transferred", map[string]interface{}{"owner": newOwner.Hex()})
	return nil
}

// RenounceOwnership leaves the factory without an owner
func (f *Factory) RenounceOwnership(_ context.Context, caller common.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.isOwner(caller) {
		return fmt.Errorf("%w: caller is not the factory owner", models.ErrUnauthorized)
	}
	f.owner = common.Address{}
	f.logger.Warn("factory ownership renounced", nil)
	return nil
}

func (f *Factory) isOwner(caller common.Address) bool {
	return f.owner != (common.Address{}) && caller == f.owner
}

func (f *Factory) isOwnerOrAdmin(caller common.Address) bool {
	return f.isOwner(caller) || (f.admin != (common.Address{}) && caller == f.admin)
}

func (f *Factory) registered() []*Market {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*Market, len(f.markets))
	copy(out, f.markets)
	return out
}
