package markets

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joefazee/categorical/app/lmsr"
	"github.com/joefazee/categorical/models"
	"github.com/shopspring/decimal"
)

func (m *Market) loaded() (*snapshot, error) {
	s := m.state.Load()
	if s == nil {
		return nil, fmt.Errorf("%w: market %s is not initialized", models.ErrMarketNotFound, m.address.Hex())
	}
	return s, nil
}

// Info returns the market-wide state
func (m *Market) Info() (models.MarketInfo, error) {
	s, err := m.loaded()
	if err != nil {
		return models.MarketInfo{}, err
	}
	return s.info, nil
}

// State returns the market-wide state with prices and outcome quantities
func (m *Market) State() (*models.MarketState, error) {
	s, err := m.loaded()
	if err != nil {
		return nil, err
	}
	return &models.MarketState{
		Info:       s.info,
		Prices:     cloneAmounts(s.prices),
		Quantities: cloneAmounts(s.quantities),
	}, nil
}

// Prices returns the current outcome prices
func (m *Market) Prices() ([]decimal.Decimal, error) {
	s, err := m.loaded()
	if err != nil {
		return nil, err
	}
	return cloneAmounts(s.prices), nil
}

// FeePolicy returns the market's fee policy
func (m *Market) FeePolicy() FeePolicy {
	if s := m.state.Load(); s != nil {
		return s.fees
	}
	return nil
}

// Summary returns the discovery projection of the market
func (m *Market) Summary() (*models.MarketSummary, error) {
	s, err := m.loaded()
	if err != nil {
		return nil, err
	}
	return &models.MarketSummary{
		Market:         s.info.Address,
		OutcomeToken:   s.info.OutcomeToken,
		LPToken:        s.info.LPToken,
		MetadataURI:    s.info.MetadataURI,
		NumOutcomes:    s.info.NumOutcomes,
		ResolutionTime: s.info.ResolutionTime,
		Status:         s.info.Status,
		TotalLiquidity: s.info.LiquidityPool,
		Prices:         cloneAmounts(s.prices),
	}, nil
}

// Position returns a holder's balances and their value at current prices.
// Once resolved the position is worth its winning shares.
func (m *Market) Position(user common.Address) (*models.UserPosition, error) {
	s, err := m.loaded()
	if err != nil {
		return nil, err
	}

	h := m.loadHolding(user)
	if h == nil {
		h = &holding{balances: zeroAmounts(s.info.NumOutcomes), lp: decimal.Zero, costBasis: decimal.Zero}
	}

	pos := &models.UserPosition{
		Balances:  cloneAmounts(h.balances),
		LPShares:  h.lp,
		CostBasis: h.costBasis,
		Claimed:   h.claimed,
	}

	if s.info.IsResolved() {
		pos.CurrentValue = h.balances[s.info.WinningOutcome]
		pos.PotentialWinnings = pos.CurrentValue
		return pos, nil
	}

	value := decimal.Zero
	best := decimal.Zero
	for i, bal := range h.balances {
		value = value.Add(bal.Mul(s.prices[i]))
		if bal.GreaterThan(best) {
			best = bal
		}
	}
	pos.CurrentValue = value.RoundFloor(lmsr.Scale)
	pos.PotentialWinnings = best
	return pos, nil
}

// HasClaimed reports whether user has claimed on a resolved market
func (m *Market) HasClaimed(user common.Address) bool {
	h := m.loadHolding(user)
	return h != nil && h.claimed
}

// LPBalance returns a holder's LP shares
func (m *Market) LPBalance(user common.Address) decimal.Decimal {
	if h := m.loadHolding(user); h != nil {
		return h.lp
	}
	return decimal.Zero
}

// SimulateBuy quotes spending budget, fee included, on one outcome
func (m *Market) SimulateBuy(outcome int, budget decimal.Decimal) (*models.SimulateBuyResult, error) {
	s, err := m.loaded()
	if err != nil {
		return nil, err
	}
	if err := s.requireActive(); err != nil {
		return nil, err
	}
	if err := s.requireOutcome(outcome); err != nil {
		return nil, err
	}
	if err := requireNonNegative("budget", budget); err != nil {
		return nil, err
	}
	return m.quoteBuy(s, outcome, budget)
}

// SimulateSell quotes selling shares of one outcome
func (m *Market) SimulateSell(outcome int, shares decimal.Decimal) (*models.SimulateSellResult, error) {
	s, err := m.loaded()
	if err != nil {
		return nil, err
	}
	if err := s.requireActive(); err != nil {
		return nil, err
	}
	if err := s.requireOutcome(outcome); err != nil {
		return nil, err
	}
	if err := requirePositive("shares", shares); err != nil {
		return nil, err
	}
	return m.quoteSell(s, outcome, shares)
}

// CheckArbitrage reports how far the current prices drift from summing to one
func (m *Market) CheckArbitrage() (*models.ArbitrageCheck, error) {
	s, err := m.loaded()
	if err != nil {
		return nil, err
	}
	check := m.engine.ArbitrageCheck(s.prices)
	return &check, nil
}

func (m *Market) quoteBuy(s *snapshot, outcome int, budget decimal.Decimal) (*models.SimulateBuyResult, error) {
	empty := &models.SimulateBuyResult{Shares: decimal.Zero, TotalCost: decimal.Zero, Fee: decimal.Zero, PriceImpact: decimal.Zero}

	notional := s.fees.MaxNotional(budget)
	if !notional.IsPositive() {
		return empty, nil
	}

	b := s.info.LiquidityParameter
	shares, err := m.engine.SharesForCost(s.quantities, b, outcome, notional)
	if err != nil {
		return nil, err
	}
	if shares.IsZero() {
		return empty, nil
	}

	cost, err := m.engine.BuyQuote(s.quantities, b, outcome, shares)
	if err != nil {
		return nil, err
	}

	after := cloneAmounts(s.quantities)
	after[outcome] = after[outcome].Add(shares)
	price, err := m.engine.MarginalPrice(after, b, outcome)
	if err != nil {
		return nil, err
	}

	return &models.SimulateBuyResult{
		Shares:      shares,
		TotalCost:   cost,
		Fee:         s.fees.Fee(cost),
		PriceImpact: price.Sub(s.prices[outcome]),
	}, nil
}

func (m *Market) quoteSell(s *snapshot, outcome int, shares decimal.Decimal) (*models.SimulateSellResult, error) {
	b := s.info.LiquidityParameter
	gross, err := m.engine.SellQuote(s.quantities, b, outcome, shares)
	if err != nil {
		return nil, err
	}

	fee := s.fees.Fee(gross)
	if fee.GreaterThan(gross) {
		fee = gross
	}

	after := cloneAmounts(s.quantities)
	after[outcome] = after[outcome].Sub(shares)
	price, err := m.engine.MarginalPrice(after, b, outcome)
	if err != nil {
		return nil, err
	}

	return &models.SimulateSellResult{
		Payout:      gross.Sub(fee),
		Fee:         fee,
		PriceImpact: s.prices[outcome].Sub(price),
	}, nil
}
