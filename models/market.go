package models

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// MarketStatus represents the lifecycle state of a categorical market
type MarketStatus string

const (
	MarketStatusActive    MarketStatus = "active"
	MarketStatusResolved  MarketStatus = "resolved"
	MarketStatusCancelled MarketStatus = "cancelled"
)

// IsValid reports whether s is a known market status.
func (s MarketStatus) IsValid() bool {
	switch s {
	case MarketStatusActive, MarketStatusResolved, MarketStatusCancelled:
		return true
	}
	return false
}

// NoWinner marks WinningOutcome on a market that has not been resolved.
const NoWinner = -1

// MarketInfo is the market-wide part of a market's committed state.
type MarketInfo struct {
	Address            common.Address  `json:"address"`
	Creator            common.Address  `json:"creator"`
	MetadataURI        string          `json:"metadata_uri"`
	NumOutcomes        int             `json:"num_outcomes"`
	LiquidityParameter decimal.Decimal `json:"liquidity_parameter"`
	TotalCollateral    decimal.Decimal `json:"total_collateral"`
	LiquidityPool      decimal.Decimal `json:"liquidity_pool"`
	LPTotalSupply      decimal.Decimal `json:"lp_total_supply"`
	TotalVolume        decimal.Decimal `json:"total_volume"`
	TotalFees          decimal.Decimal `json:"total_fees"`
	ResolutionTime     time.Time       `json:"resolution_time"`
	CreatedAt          time.Time       `json:"created_at"`
	Status             MarketStatus    `json:"status"`
	WinningOutcome     int             `json:"winning_outcome"`
	OracleResolver     common.Address  `json:"oracle_resolver"`
	OutcomeToken       common.Address  `json:"outcome_token"`
	LPToken            common.Address  `json:"lp_token"`
	FeePolicy          string          `json:"fee_policy"`
}

// IsActive reports whether the market accepts trades.
func (m *MarketInfo) IsActive() bool {
	return m.Status == MarketStatusActive
}

// IsResolved reports whether the market has a frozen winning outcome.
func (m *MarketInfo) IsResolved() bool {
	return m.Status == MarketStatusResolved
}

// MarketState is the full read projection of a market.
type MarketState struct {
	Info       MarketInfo        `json:"info"`
	Prices     []decimal.Decimal `json:"prices"`
	Quantities []decimal.Decimal `json:"quantities"`
}

// MarketSummary is the discovery projection returned by the factory.
type MarketSummary struct {
	Market         common.Address    `json:"market"`
	OutcomeToken   common.Address    `json:"outcome_token"`
	LPToken        common.Address    `json:"lp_token"`
	MetadataURI    string            `json:"metadata_uri"`
	NumOutcomes    int               `json:"num_outcomes"`
	ResolutionTime time.Time         `json:"resolution_time"`
	Status         MarketStatus      `json:"status"`
	TotalLiquidity decimal.Decimal   `json:"total_liquidity"`
	Prices         []decimal.Decimal `json:"prices"`
}

// UserPosition is a holder's derived position in one market.
type UserPosition struct {
	Balances          []decimal.Decimal `json:"balances"`
	CurrentValue      decimal.Decimal   `json:"current_value"`
	PotentialWinnings decimal.Decimal   `json:"potential_winnings"`
	LPShares          decimal.Decimal   `json:"lp_shares"`
	CostBasis         decimal.Decimal   `json:"cost_basis"`
	Claimed           bool              `json:"claimed"`
}

// SimulateBuyResult is the quote for spending a collateral budget on one outcome.
type SimulateBuyResult struct {
	Shares      decimal.Decimal `json:"shares"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	Fee         decimal.Decimal `json:"fee"`
	PriceImpact decimal.Decimal `json:"price_impact"`
}

// SimulateSellResult is the quote for selling shares of one outcome.
type SimulateSellResult struct {
	Payout      decimal.Decimal `json:"payout"`
	Fee         decimal.Decimal `json:"fee"`
	PriceImpact decimal.Decimal `json:"price_impact"`
}

// ArbitrageCheck reports how far the outcome prices drift from summing to one.
type ArbitrageCheck struct {
	HasArbitrage   bool            `json:"has_arbitrage"`
	CostDifference decimal.Decimal `json:"cost_difference"`
}

// FactoryConfig is the factory-level configuration visible to clients.
type FactoryConfig struct {
	Factory             common.Address  `json:"factory"`
	CollateralToken     common.Address  `json:"collateral_token"`
	SocialPredictions   common.Address  `json:"social_predictions"`
	OracleResolver      common.Address  `json:"oracle_resolver"`
	Admin               common.Address  `json:"admin"`
	Owner               common.Address  `json:"owner"`
	DefaultFeePolicy    string          `json:"default_fee_policy"`
	MaxOutcomes         int             `json:"max_outcomes"`
	MinInitialLiquidity decimal.Decimal `json:"min_initial_liquidity"`
	MinMarketDuration   time.Duration   `json:"min_market_duration"`
}
