package lmsr

import (
	"github.com/joefazee/categorical/models"
	"github.com/shopspring/decimal"
)

// PricingEngine prices a categorical market with the logarithmic market scoring
// rule. Implementations are stateless and deterministic: the same inputs
// always produce the same 18-place outputs.
type PricingEngine interface {
	// Cost returns b·ln Σ exp(qᵢ/b), rounded up to the amount grid.
	Cost(quantities []decimal.Decimal, b decimal.Decimal) (decimal.Decimal, error)

	// Prices returns the softmax of q/b, one price per outcome.
	Prices(quantities []decimal.Decimal, b decimal.Decimal) ([]decimal.Decimal, error)

	// MarginalPrice returns the instantaneous price of one outcome.
	MarginalPrice(quantities []decimal.Decimal, b decimal.Decimal, outcome int) (decimal.Decimal, error)

	// BuyQuote returns the collateral needed to add shares to an outcome.
	BuyQuote(quantities []decimal.Decimal, b decimal.Decimal, outcome int, shares decimal.Decimal) (decimal.Decimal, error)

	// SellQuote returns the collateral released by removing shares from an outcome.
	SellQuote(quantities []decimal.Decimal, b decimal.Decimal, outcome int, shares decimal.Decimal) (decimal.Decimal, error)

	// SharesForCost returns the largest share amount whose BuyQuote fits the budget.
	SharesForCost(quantities []decimal.Decimal, b decimal.Decimal, outcome int, budget decimal.Decimal) (decimal.Decimal, error)

	// ArbitrageCheck flags prices whose sum drifts from one by more than epsilon.
	ArbitrageCheck(prices []decimal.Decimal) models.ArbitrageCheck

	// LiquidityForFunding returns the largest b whose worst-case loss fits the funding.
	LiquidityForFunding(funding decimal.Decimal, numOutcomes int) (decimal.Decimal, error)

	// MaxLoss returns the market maker's worst-case subsidy b·ln(n), rounded up.
	MaxLoss(b decimal.Decimal, numOutcomes int) (decimal.Decimal, error)
}
