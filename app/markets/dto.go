package markets

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// CreateMarketRequest represents the request to create a market
type CreateMarketRequest struct {
	MetadataURI      string          `json:"metadata_uri" binding:"required"`
	NumOutcomes      int             `json:"num_outcomes" binding:"required,min=2"`
	ResolutionTime   time.Time       `json:"resolution_time" binding:"required"`
	InitialLiquidity decimal.Decimal `json:"initial_liquidity"`
	// FeeKind is one of percentage, flat or none. Empty uses the factory default.
	FeeKind  string          `json:"fee_kind,omitempty"`
	FeeValue decimal.Decimal `json:"fee_value"`
}

// BuySharesRequest spends at most MaxCost on one outcome
type BuySharesRequest struct {
	Outcome   *int            `json:"outcome" binding:"required,min=0"`
	MinShares decimal.Decimal `json:"min_shares"`
	MaxCost   decimal.Decimal `json:"max_cost"`
}

// SellSharesRequest sells shares of one outcome
type SellSharesRequest struct {
	Outcome   *int            `json:"outcome" binding:"required,min=0"`
	Shares    decimal.Decimal `json:"shares"`
	MinPayout decimal.Decimal `json:"min_payout"`
}

// AmountRequest carries a single collateral or LP amount
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// ResolveMarketRequest names the winning outcome
type ResolveMarketRequest struct {
	WinningOutcome *int `json:"winning_outcome" binding:"required,min=0"`
}

// AddressRequest carries an account address for admin operations
type AddressRequest struct {
	Address string `json:"address" binding:"required"`
}

// FeePolicyRequest selects the default fee policy
type FeePolicyRequest struct {
	Kind  string          `json:"kind" binding:"required"`
	Value decimal.Decimal `json:"value"`
}

// LiquidityResponse reports LP shares minted or collateral paid out
type LiquidityResponse struct {
	Market   common.Address  `json:"market"`
	LPShares decimal.Decimal `json:"lp_shares"`
	Payout   decimal.Decimal `json:"payout"`
}

// ClaimResponse reports a claim payout
type ClaimResponse struct {
	Market common.Address  `json:"market"`
	Payout decimal.Decimal `json:"payout"`
}

// AddressListResponse is a list of market handles
type AddressListResponse struct {
	Markets []common.Address `json:"markets"`
}

// ToCreateMarketParams converts a request into factory parameters
func (r *CreateMarketRequest) ToCreateMarketParams() (CreateMarketParams, error) {
	params := CreateMarketParams{
		MetadataURI:      r.MetadataURI,
		NumOutcomes:      r.NumOutcomes,
		ResolutionTime:   r.ResolutionTime,
		InitialLiquidity: r.InitialLiquidity,
	}
	if r.FeeKind != "" {
		policy, err := ParseFeePolicy(r.FeeKind, r.FeeValue)
		if err != nil {
			return CreateMarketParams{}, err
		}
		params.FeePolicy = policy
	}
	return params, nil
}
