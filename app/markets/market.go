package markets

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joefazee/categorical/app/lmsr"
	"github.com/joefazee/categorical/internal/logger"
	"github.com/joefazee/categorical/models"
	"github.com/shopspring/decimal"
)

// Market is a single categorical LMSR market.
//
// Writes are serialized by mu. Each write works on a clone of the committed
// snapshot, moves collateral at most once as its last fallible step and then
// publishes the clone, so a rejected write leaves nothing behind. Reads load
// the published snapshot and never block on writers.
type Market struct {
	address    common.Address
	deployer   common.Address
	config     *Config
	collateral CollateralLedger
	engine     lmsr.PricingEngine
	logger     logger.Logger
	now        func() time.Time

	mu        sync.Mutex
	listeners []Listener
	state     atomic.Pointer[snapshot]
	holders   sync.Map // common.Address -> *atomic.Pointer[holding]
}

// snapshot is immutable once published.
type snapshot struct {
	info       models.MarketInfo
	quantities []decimal.Decimal
	prices     []decimal.Decimal
	cost       decimal.Decimal
	fees       FeePolicy
}

func (s *snapshot) clone() *snapshot {
	next := *s
	next.quantities = cloneAmounts(s.quantities)
	next.prices = nil
	return &next
}

func (s *snapshot) requireActive() error {
	if !s.info.IsActive() {
		return fmt.Errorf("%w: market is %s", models.ErrMarketNotActive, s.info.Status)
	}
	return nil
}

func (s *snapshot) requireOutcome(outcome int) error {
	if outcome < 0 || outcome >= s.info.NumOutcomes {
		return fmt.Errorf("%w: outcome %d out of range [0, %d)", models.ErrInvalidParameters, outcome, s.info.NumOutcomes)
	}
	return nil
}

// holding is one holder's position. Immutable once published.
type holding struct {
	balances  []decimal.Decimal
	lp        decimal.Decimal
	costBasis decimal.Decimal
	claimed   bool
}

// change is a staged write awaiting commit.
type change struct {
	next    *snapshot
	holder  common.Address
	holding *holding
	pull    decimal.Decimal
	push    decimal.Decimal
	event   Event
}

// MarketOption configures a Market
type MarketOption func(*Market)

// WithDeployer makes the deployer the only account allowed to initialize the
// market and the spender used to pull the initial funding.
func WithDeployer(deployer common.Address) MarketOption {
	return func(m *Market) {
		m.deployer = deployer
	}
}

// WithMarketClock overrides the market's time source
func WithMarketClock(now func() time.Time) MarketOption {
	return func(m *Market) {
		m.now = now
	}
}

// WithMarketListener registers a listener for committed market events
func WithMarketListener(l Listener) MarketOption {
	return func(m *Market) {
		m.listeners = append(m.listeners, l)
	}
}

// InitializeParams describes a market at creation
type InitializeParams struct {
	Creator          common.Address
	Oracle           common.Address
	MetadataURI      string
	NumOutcomes      int
	ResolutionTime   time.Time
	InitialLiquidity decimal.Decimal
	FeePolicy        FeePolicy
	OutcomeToken     common.Address
	LPToken          common.Address
}

// NewMarket creates an uninitialized market at address
func NewMarket(address common.Address, config *Config, collateral CollateralLedger, engine lmsr.PricingEngine, log logger.Logger, opts ...MarketOption) *Market {
	if config == nil {
		config = GetDefaultConfig()
	}
	if log == nil {
		log = logger.NewNullLogger()
	}

	m := &Market{
		address:    address,
		config:     config,
		collateral: collateral,
		engine:     engine,
		logger:     log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Subscribe registers a listener after construction
func (m *Market) Subscribe(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Address returns the market handle
func (m *Market) Address() common.Address { return m.address }

// Initialize funds the market, sets its liquidity parameter and mints LP
// shares 1:1 to the creator. It succeeds at most once.
func (m *Market) Initialize(ctx context.Context, caller common.Address, params InitializeParams) error {
	if params.Creator == (common.Address{}) {
		params.Creator = caller
	}
	if m.deployer != (common.Address{}) && caller != m.deployer {
		return fmt.Errorf("%w: only the deployer can initialize this market", models.ErrUnauthorized)
	}
	if params.FeePolicy == nil {
		params.FeePolicy = PercentageFee{Rate: m.config.DefaultFeeRate}
	}
	now := m.now()
	if err := validateCreation(m.config, now, params.NumOutcomes, params.ResolutionTime, params.InitialLiquidity, params.MetadataURI, params.FeePolicy); err != nil {
		return err
	}
	if params.Oracle == (common.Address{}) {
		return fmt.Errorf("%w: oracle resolver is required", models.ErrInvalidParameters)
	}

	b, err := m.engine.LiquidityForFunding(params.InitialLiquidity, params.NumOutcomes)
	if err != nil {
		return err
	}
	subsidy, err := m.engine.MaxLoss(b, params.NumOutcomes)
	if err != nil {
		return err
	}
	if subsidy.GreaterThan(params.InitialLiquidity) {
		return fmt.Errorf("%w: worst-case loss %s exceeds funding %s", models.ErrInvariantViolation, subsidy, params.InitialLiquidity)
	}

	m.mu.Lock()
	if m.state.Load() != nil {
		m.mu.Unlock()
		return fmt.Errorf("%w: market %s is already initialized", models.ErrInvalidParameters, m.address.Hex())
	}

	c := &change{
		next: &snapshot{
			info: models.MarketInfo{
				Address:            m.address,
				Creator:            params.Creator,
				MetadataURI:        params.MetadataURI,
				NumOutcomes:        params.NumOutcomes,
				LiquidityParameter: b,
				TotalCollateral:    params.InitialLiquidity,
				LPTotalSupply:      params.InitialLiquidity,
				TotalVolume:        decimal.Zero,
				TotalFees:          decimal.Zero,
				ResolutionTime:     params.ResolutionTime,
				CreatedAt:          now,
				Status:             models.MarketStatusActive,
				WinningOutcome:     models.NoWinner,
				OracleResolver:     params.Oracle,
				OutcomeToken:       params.OutcomeToken,
				LPToken:            params.LPToken,
				FeePolicy:          params.FeePolicy.Name(),
			},
			quantities: zeroAmounts(params.NumOutcomes),
			fees:       params.FeePolicy,
		},
		holder: params.Creator,
		holding: &holding{
			balances:  zeroAmounts(params.NumOutcomes),
			lp:        params.InitialLiquidity,
			costBasis: decimal.Zero,
		},
		pull: params.InitialLiquidity,
		event: Event{
			Kind:    EventInitialized,
			Actor:   params.Creator,
			Outcome: models.NoWinner,
			Shares:  params.InitialLiquidity,
			Amount:  params.InitialLiquidity,
		},
	}
	err = m.commit(ctx, c)
	listeners := m.snapshotListeners()
	m.mu.Unlock()

	if err != nil {
		return err
	}

	m.logger.Info("market initialized", map[string]interface{}{
		"market":      m.address.Hex(),
		"creator":     params.Creator.Hex(),
		"outcomes":    params.NumOutcomes,
		"liquidity":   params.InitialLiquidity.String(),
		"b":           b.String(),
		"resolves_at": params.ResolutionTime,
	})
	m.emit(ctx, listeners, c.event)
	return nil
}

// BuyShares spends at most maxCost, fee included, on one outcome.
func (m *Market) BuyShares(ctx context.Context, caller common.Address, outcome int, minShares, maxCost decimal.Decimal) (*models.SimulateBuyResult, error) {
	if err := requirePositive("max cost", maxCost); err != nil {
		return nil, err
	}
	if err := requireNonNegative("min shares", minShares); err != nil {
		return nil, err
	}

	var result *models.SimulateBuyResult
	err := m.write(ctx, func(cur *snapshot) (*change, error) {
		if err := cur.requireActive(); err != nil {
			return nil, err
		}
		if err := cur.requireOutcome(outcome); err != nil {
			return nil, err
		}

		quote, err := m.quoteBuy(cur, outcome, maxCost)
		if err != nil {
			return nil, err
		}
		if quote.Shares.IsZero() || quote.Shares.LessThan(minShares) {
			return nil, fmt.Errorf("%w: %s shares for %s, wanted at least %s", models.ErrExceedsSlippage, quote.Shares, maxCost, minShares)
		}

		total := quote.TotalCost.Add(quote.Fee)
		if total.GreaterThan(maxCost) {
			return nil, fmt.Errorf("%w: cost %s exceeds %s", models.ErrExceedsSlippage, total, maxCost)
		}

		next := cur.clone()
		next.quantities[outcome] = next.quantities[outcome].Add(quote.Shares)
		next.info.TotalCollateral = next.info.TotalCollateral.Add(total)
		next.info.TotalVolume = next.info.TotalVolume.Add(quote.TotalCost)
		next.info.TotalFees = next.info.TotalFees.Add(quote.Fee)

		h := m.mutableHolding(caller, cur.info.NumOutcomes)
		h.balances[outcome] = h.balances[outcome].Add(quote.Shares)
		h.costBasis = h.costBasis.Add(total)

		result = quote
		return &change{
			next:    next,
			holder:  caller,
			holding: h,
			pull:    total,
			event: Event{
				Kind:    EventSharesBought,
				Actor:   caller,
				Outcome: outcome,
				Shares:  quote.Shares,
				Amount:  total,
				Fee:     quote.Fee,
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SellShares sells shares of one outcome back to the market maker.
func (m *Market) SellShares(ctx context.Context, caller common.Address, outcome int, shares, minPayout decimal.Decimal) (*models.SimulateSellResult, error) {
	if err := requirePositive("shares", shares); err != nil {
		return nil, err
	}
	if err := requireNonNegative("min payout", minPayout); err != nil {
		return nil, err
	}

	var result *models.SimulateSellResult
	err := m.write(ctx, func(cur *snapshot) (*change, error) {
		if err := cur.requireActive(); err != nil {
			return nil, err
		}
		if err := cur.requireOutcome(outcome); err != nil {
			return nil, err
		}

		h := m.mutableHolding(caller, cur.info.NumOutcomes)
		if h.balances[outcome].LessThan(shares) {
			return nil, fmt.Errorf("%w: holding %s shares of outcome %d, selling %s", models.ErrInsufficientBalance, h.balances[outcome], outcome, shares)
		}

		quote, err := m.quoteSell(cur, outcome, shares)
		if err != nil {
			return nil, err
		}
		if !quote.Payout.IsPositive() || quote.Payout.LessThan(minPayout) {
			return nil, fmt.Errorf("%w: payout %s, wanted at least %s", models.ErrExceedsSlippage, quote.Payout, minPayout)
		}

		next := cur.clone()
		next.quantities[outcome] = next.quantities[outcome].Sub(shares)
		next.info.TotalCollateral = next.info.TotalCollateral.Sub(quote.Payout)
		next.info.TotalVolume = next.info.TotalVolume.Add(quote.Payout)
		next.info.TotalFees = next.info.TotalFees.Add(quote.Fee)

		h.balances[outcome] = h.balances[outcome].Sub(shares)
		h.costBasis = h.costBasis.Sub(quote.Payout)

		result = quote
		return &change{
			next:    next,
			holder:  caller,
			holding: h,
			push:    quote.Payout,
			event: Event{
				Kind:    EventSharesSold,
				Actor:   caller,
				Outcome: outcome,
				Shares:  shares,
				Amount:  quote.Payout,
				Fee:     quote.Fee,
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MintCompleteSet exchanges collateral for one share of every outcome per unit.
func (m *Market) MintCompleteSet(ctx context.Context, caller common.Address, amount decimal.Decimal) error {
	if err := requirePositive("amount", amount); err != nil {
		return err
	}

	return m.write(ctx, func(cur *snapshot) (*change, error) {
		if err := cur.requireActive(); err != nil {
			return nil, err
		}

		next := cur.clone()
		h := m.mutableHolding(caller, cur.info.NumOutcomes)
		for i := range next.quantities {
			next.quantities[i] = next.quantities[i].Add(amount)
			h.balances[i] = h.balances[i].Add(amount)
		}
		next.info.TotalCollateral = next.info.TotalCollateral.Add(amount)
		h.costBasis = h.costBasis.Add(amount)

		return &change{
			next:    next,
			holder:  caller,
			holding: h,
			pull:    amount,
			event: Event{
				Kind:    EventCompleteSetMinted,
				Actor:   caller,
				Outcome: models.NoWinner,
				Shares:  amount,
				Amount:  amount,
			},
		}, nil
	})
}

// BurnCompleteSet returns one share of every outcome per unit of collateral.
func (m *Market) BurnCompleteSet(ctx context.Context, caller common.Address, amount decimal.Decimal) error {
	if err := requirePositive("amount", amount); err != nil {
		return err
	}

	return m.write(ctx, func(cur *snapshot) (*change, error) {
		if err := cur.requireActive(); err != nil {
			return nil, err
		}

		next := cur.clone()
		h := m.mutableHolding(caller, cur.info.NumOutcomes)
		for i := range next.quantities {
			if h.balances[i].LessThan(amount) {
				return nil, fmt.Errorf("%w: holding %s shares of outcome %d, burning %s", models.ErrInsufficientBalance, h.balances[i], i, amount)
			}
			next.quantities[i] = next.quantities[i].Sub(amount)
			h.balances[i] = h.balances[i].Sub(amount)
		}
		next.info.TotalCollateral = next.info.TotalCollateral.Sub(amount)
		h.costBasis = h.costBasis.Sub(amount)

		return &change{
			next:    next,
			holder:  caller,
			holding: h,
			push:    amount,
			event: Event{
				Kind:    EventCompleteSetBurned,
				Actor:   caller,
				Outcome: models.NoWinner,
				Shares:  amount,
				Amount:  amount,
			},
		}, nil
	})
}

// AddLiquidity deepens the market and mints LP shares against the pool value.
func (m *Market) AddLiquidity(ctx context.Context, caller common.Address, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := requirePositive("amount", amount); err != nil {
		return decimal.Zero, err
	}

	var minted decimal.Decimal
	err := m.write(ctx, func(cur *snapshot) (*change, error) {
		if err := cur.requireActive(); err != nil {
			return nil, err
		}

		extra, err := m.engine.LiquidityForFunding(amount, cur.info.NumOutcomes)
		if err != nil {
			return nil, err
		}
		if !cur.info.LiquidityPool.IsPositive() {
			return nil, fmt.Errorf("%w: pool value %s", models.ErrInvariantViolation, cur.info.LiquidityPool)
		}
		minted = mulDivFloor(amount, cur.info.LPTotalSupply, cur.info.LiquidityPool)
		if !minted.IsPositive() {
			return nil, fmt.Errorf("%w: %s mints no LP shares", models.ErrInvalidParameters, amount)
		}

		next := cur.clone()
		next.info.LiquidityParameter = next.info.LiquidityParameter.Add(extra)
		next.info.TotalCollateral = next.info.TotalCollateral.Add(amount)
		next.info.LPTotalSupply = next.info.LPTotalSupply.Add(minted)

		h := m.mutableHolding(caller, cur.info.NumOutcomes)
		h.lp = h.lp.Add(minted)

		return &change{
			next:    next,
			holder:  caller,
			holding: h,
			pull:    amount,
			event: Event{
				Kind:    EventLiquidityAdded,
				Actor:   caller,
				Outcome: models.NoWinner,
				Shares:  minted,
				Amount:  amount,
			},
		}, nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return minted, nil
}

// RemoveLiquidity burns LP shares for their slice of the pool value, the
// same valuation AddLiquidity mints against. While the market trades the
// liquidity parameter shrinks proportionally and the last LP shares cannot
// leave; after resolution the whole surplus is claimable.
func (m *Market) RemoveLiquidity(ctx context.Context, caller common.Address, lpAmount decimal.Decimal) (decimal.Decimal, error) {
	if err := requirePositive("lp amount", lpAmount); err != nil {
		return decimal.Zero, err
	}

	var payout decimal.Decimal
	err := m.write(ctx, func(cur *snapshot) (*change, error) {
		h := m.mutableHolding(caller, cur.info.NumOutcomes)
		if h.lp.LessThan(lpAmount) {
			return nil, fmt.Errorf("%w: holding %s LP shares, removing %s", models.ErrInsufficientBalance, h.lp, lpAmount)
		}

		supply := cur.info.LPTotalSupply
		payout = mulDivFloor(lpAmount, cur.info.LiquidityPool, supply)
		next := cur.clone()

		switch cur.info.Status {
		case models.MarketStatusActive:
			if lpAmount.Equal(supply) {
				return nil, fmt.Errorf("%w: the last LP shares stay until resolution", models.ErrInvalidParameters)
			}
			b := mulDivFloor(cur.info.LiquidityParameter, supply.Sub(lpAmount), supply)
			if !b.IsPositive() {
				return nil, fmt.Errorf("%w: removal leaves no liquidity", models.ErrInvalidParameters)
			}
			cost, err := m.engine.Cost(cur.quantities, b)
			if err != nil {
				return nil, err
			}
			// cost rounds up, so the shrunk book may need the last base unit
			if rest := cur.info.TotalCollateral.Sub(cost); payout.GreaterThan(rest) {
				payout = decimal.Max(rest, decimal.Zero)
			}
			next.info.LiquidityParameter = b
		case models.MarketStatusResolved:
		default:
			return nil, fmt.Errorf("%w: market is %s", models.ErrMarketNotActive, cur.info.Status)
		}

		next.info.TotalCollateral = next.info.TotalCollateral.Sub(payout)
		next.info.LPTotalSupply = supply.Sub(lpAmount)
		h.lp = h.lp.Sub(lpAmount)

		return &change{
			next:    next,
			holder:  caller,
			holding: h,
			push:    payout,
			event: Event{
				Kind:    EventLiquidityRemoved,
				Actor:   caller,
				Outcome: models.NoWinner,
				Shares:  lpAmount,
				Amount:  payout,
			},
		}, nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return payout, nil
}

// ResolveMarket freezes the winning outcome. Only the oracle may resolve, and
// only once the resolution time has passed.
func (m *Market) ResolveMarket(ctx context.Context, caller common.Address, winningOutcome int) error {
	err := m.write(ctx, func(cur *snapshot) (*change, error) {
		if caller != cur.info.OracleResolver {
			return nil, fmt.Errorf("%w: only the oracle resolver can resolve", models.ErrUnauthorized)
		}
		if now := m.now(); now.Before(cur.info.ResolutionTime) {
			return nil, fmt.Errorf("%w: resolvable from %s", models.ErrTooEarly, cur.info.ResolutionTime.Format(time.RFC3339))
		}
		if err := cur.requireActive(); err != nil {
			return nil, err
		}
		if err := cur.requireOutcome(winningOutcome); err != nil {
			return nil, err
		}

		next := cur.clone()
		next.info.Status = models.MarketStatusResolved
		next.info.WinningOutcome = winningOutcome

		return &change{
			next: next,
			event: Event{
				Kind:    EventResolved,
				Actor:   caller,
				Outcome: winningOutcome,
				Shares:  cur.quantities[winningOutcome],
			},
		}, nil
	})
	if err != nil {
		return err
	}

	m.logger.Info("market resolved", map[string]interface{}{
		"market":  m.address.Hex(),
		"outcome": winningOutcome,
	})
	return nil
}

// ClaimWinnings pays out the caller's winning shares. A holder with no
// winning shares may still claim; the claim pays nothing and is recorded.
func (m *Market) ClaimWinnings(ctx context.Context, caller common.Address) (decimal.Decimal, error) {
	var payout decimal.Decimal
	err := m.write(ctx, func(cur *snapshot) (*change, error) {
		if !cur.info.IsResolved() {
			return nil, fmt.Errorf("%w: market is %s", models.ErrMarketNotResolved, cur.info.Status)
		}

		h := m.mutableHolding(caller, cur.info.NumOutcomes)
		if h.claimed {
			return nil, fmt.Errorf("%w: %s", models.ErrAlreadyClaimed, caller.Hex())
		}

		winner := cur.info.WinningOutcome
		payout = h.balances[winner]

		next := cur.clone()
		next.quantities[winner] = next.quantities[winner].Sub(payout)
		next.info.TotalCollateral = next.info.TotalCollateral.Sub(payout)

		basis := h.costBasis
		h.balances[winner] = decimal.Zero
		h.claimed = true

		return &change{
			next:    next,
			holder:  caller,
			holding: h,
			push:    payout,
			event: Event{
				Kind:      EventClaimed,
				Actor:     caller,
				Outcome:   winner,
				Shares:    payout,
				Amount:    payout,
				CostBasis: basis,
			},
		}, nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return payout, nil
}

// write runs build against the committed snapshot under the market lock and
// commits the staged change. Listeners are notified after the lock is released.
func (m *Market) write(ctx context.Context, build func(cur *snapshot) (*change, error)) error {
	m.mu.Lock()
	cur := m.state.Load()
	if cur == nil {
		m.mu.Unlock()
		return fmt.Errorf("%w: market %s is not initialized", models.ErrMarketNotActive, m.address.Hex())
	}

	c, err := build(cur)
	if err == nil {
		err = m.commit(ctx, c)
	}
	listeners := m.snapshotListeners()
	m.mu.Unlock()

	if err != nil {
		return err
	}
	m.emit(ctx, listeners, c.event)
	return nil
}

// commit must be called with mu held.
func (m *Market) commit(ctx context.Context, c *change) error {
	if err := m.finalize(c.next); err != nil {
		return err
	}
	if err := checkSolvency(c.next); err != nil {
		m.logger.Error(err, map[string]interface{}{
			"market": m.address.Hex(),
			"op":     string(c.event.Kind),
		})
		return err
	}

	switch {
	case c.pull.IsPositive():
		if err := m.collateral.TransferFrom(ctx, m.spender(), c.holder, m.address, c.pull); err != nil {
			return err
		}
	case c.push.IsPositive():
		if err := m.collateral.Transfer(ctx, m.address, c.holder, c.push); err != nil {
			return err
		}
	}

	if c.holding != nil {
		m.storeHolding(c.holder, c.holding)
	}
	m.state.Store(c.next)
	return nil
}

// finalize derives prices, rounded cost and pool value for a staged snapshot.
// The pool value is what LPs can withdraw: collateral beyond the largest
// liability any outcome can still claim.
func (m *Market) finalize(s *snapshot) error {
	info := &s.info
	if info.IsResolved() {
		s.prices = zeroAmounts(info.NumOutcomes)
		s.prices[info.WinningOutcome] = one
		info.LiquidityPool = info.TotalCollateral.Sub(s.quantities[info.WinningOutcome])
		return nil
	}

	cost, err := m.engine.Cost(s.quantities, info.LiquidityParameter)
	if err != nil {
		return err
	}
	prices, err := m.engine.Prices(s.quantities, info.LiquidityParameter)
	if err != nil {
		return err
	}
	s.cost = cost
	s.prices = prices
	info.LiquidityPool = info.TotalCollateral.Sub(maxAmount(s.quantities))
	return nil
}

// checkSolvency verifies the market can always honour its liabilities: the
// worst-case cost while trading, the winning shares once resolved.
func checkSolvency(s *snapshot) error {
	for i, q := range s.quantities {
		if q.IsNegative() {
			return fmt.Errorf("%w: negative quantity for outcome %d", models.ErrInvariantViolation, i)
		}
	}

	liability := s.cost
	if s.info.IsResolved() {
		liability = s.quantities[s.info.WinningOutcome]
	}
	if s.info.TotalCollateral.LessThan(liability) {
		return fmt.Errorf("%w: collateral %s below liability %s", models.ErrInvariantViolation, s.info.TotalCollateral, liability)
	}
	return nil
}

func (m *Market) spender() common.Address {
	if m.deployer != (common.Address{}) {
		return m.deployer
	}
	return m.address
}

func (m *Market) loadHolding(holder common.Address) *holding {
	p, ok := m.holders.Load(holder)
	if !ok {
		return nil
	}
	return p.(*atomic.Pointer[holding]).Load()
}

// mutableHolding returns a private copy of the holder's position.
func (m *Market) mutableHolding(holder common.Address, numOutcomes int) *holding {
	h := m.loadHolding(holder)
	if h == nil {
		return &holding{balances: zeroAmounts(numOutcomes), lp: decimal.Zero, costBasis: decimal.Zero}
	}
	cp := *h
	cp.balances = cloneAmounts(h.balances)
	return &cp
}

func (m *Market) storeHolding(holder common.Address, h *holding) {
	p, _ := m.holders.LoadOrStore(holder, new(atomic.Pointer[holding]))
	p.(*atomic.Pointer[holding]).Store(h)
}

func (m *Market) snapshotListeners() []Listener {
	if len(m.listeners) == 0 {
		return nil
	}
	out := make([]Listener, len(m.listeners))
	copy(out, m.listeners)
	return out
}

func (m *Market) emit(ctx context.Context, listeners []Listener, event Event) {
	event.Market = m.address
	event.At = m.now()

	m.logger.Debug("market "+string(event.Kind), map[string]interface{}{
		"market":  m.address.Hex(),
		"actor":   event.Actor.Hex(),
		"outcome": event.Outcome,
		"shares":  event.Shares.String(),
		"amount":  event.Amount.String(),
	})

	for _, l := range listeners {
		l.OnMarketEvent(ctx, event)
	}
}

// validateCreation checks market parameters before anything is allocated.
func validateCreation(config *Config, now time.Time, numOutcomes int, resolutionTime time.Time, liquidity decimal.Decimal, metadataURI string, fees FeePolicy) error {
	if numOutcomes < 2 || numOutcomes > config.MaxOutcomes {
		return fmt.Errorf("%w: outcomes must be between 2 and %d, got %d", models.ErrInvalidParameters, config.MaxOutcomes, numOutcomes)
	}
	if err := requirePositive("initial liquidity", liquidity); err != nil {
		return err
	}
	if liquidity.LessThan(config.MinInitialLiquidity) {
		return fmt.Errorf("%w: initial liquidity %s below minimum %s", models.ErrInvalidParameters, liquidity, config.MinInitialLiquidity)
	}
	if earliest := now.Add(config.MinMarketDuration); resolutionTime.Before(earliest) {
		return fmt.Errorf("%w: resolution time must be at or after %s", models.ErrInvalidParameters, earliest.Format(time.RFC3339))
	}
	if strings.TrimSpace(metadataURI) == "" || len(metadataURI) > config.MaxMetadataLength {
		return fmt.Errorf("%w: metadata URI must be 1 to %d bytes", models.ErrInvalidParameters, config.MaxMetadataLength)
	}
	return ValidateFeePolicy(fees, config.MaxFeeRate)
}
