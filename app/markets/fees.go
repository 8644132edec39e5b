package markets

import (
	"fmt"
	"strings"

	"github.com/joefazee/categorical/app/lmsr"
	"github.com/joefazee/categorical/models"
	"github.com/shopspring/decimal"
)

// FeePolicy prices the trading fee charged on top of buys and deducted from
// sells. Fees stay in the market's collateral and accrue to liquidity providers.
type FeePolicy interface {
	Name() string
	// Fee returns the fee owed on a trade of the given notional.
	Fee(notional decimal.Decimal) decimal.Decimal
	// MaxNotional returns the largest notional whose notional+fee fits budget.
	MaxNotional(budget decimal.Decimal) decimal.Decimal
}

// Fee policy kinds accepted by ParseFeePolicy
const (
	FeeKindPercentage = "percentage"
	FeeKindFlat       = "flat"
	FeeKindNone       = "none"
)

// PercentageFee charges Rate of the notional, rounded up to the grid.
type PercentageFee struct {
	Rate decimal.Decimal
}

func (p PercentageFee) Name() string {
	return FeeKindPercentage + ":" + p.Rate.String()
}

func (p PercentageFee) Fee(notional decimal.Decimal) decimal.Decimal {
	if !notional.IsPositive() || !p.Rate.IsPositive() {
		return decimal.Zero
	}
	return notional.Mul(p.Rate).RoundCeil(lmsr.Scale)
}

func (p PercentageFee) MaxNotional(budget decimal.Decimal) decimal.Decimal {
	if !budget.IsPositive() {
		return decimal.Zero
	}
	n := budget.DivRound(one.Add(p.Rate), 2*lmsr.Scale).RoundFloor(lmsr.Scale)
	for n.IsPositive() && n.Add(p.Fee(n)).GreaterThan(budget) {
		n = n.Sub(unit)
	}
	return n
}

// FlatFee charges a fixed Amount on every trade.
type FlatFee struct {
	Amount decimal.Decimal
}

func (f FlatFee) Name() string {
	return FeeKindFlat + ":" + f.Amount.String()
}

func (f FlatFee) Fee(notional decimal.Decimal) decimal.Decimal {
	if !notional.IsPositive() {
		return decimal.Zero
	}
	return f.Amount
}

func (f FlatFee) MaxNotional(budget decimal.Decimal) decimal.Decimal {
	n := budget.Sub(f.Amount)
	if !n.IsPositive() {
		return decimal.Zero
	}
	return n
}

// NoFee charges nothing.
type NoFee struct{}

func (NoFee) Name() string { return FeeKindNone }
func (NoFee) Fee(decimal.Decimal) decimal.Decimal { return decimal.Zero }

func (NoFee) MaxNotional(b decimal.Decimal) decimal.Decimal {
	if b.IsNegative() {
		return decimal.Zero
	}
	return b
}

// ParseFeePolicy builds a policy from its kind and parameter
func ParseFeePolicy(kind string, value decimal.Decimal) (FeePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case FeeKindPercentage:
		return PercentageFee{Rate: value}, nil
	case FeeKindFlat:
		return FlatFee{Amount: value}, nil
	case FeeKindNone, "":
		return NoFee{}, nil
	}
	return nil, fmt.Errorf("%w: unknown fee policy %q", models.ErrInvalidParameters, kind)
}

// ValidateFeePolicy checks a policy against the configured ceiling
func ValidateFeePolicy(policy FeePolicy, maxRate decimal.Decimal) error {
	switch p := policy.(type) {
	case PercentageFee:
		if p.Rate.IsNegative() || p.Rate.GreaterThan(maxRate) {
			return fmt.Errorf("%w: fee rate %s outside [0, %s]", models.ErrInvalidFeeRate, p.Rate, maxRate)
		}
	case FlatFee:
		if err := requireNonNegative("flat fee", p.Amount); err != nil {
			return err
		}
	case NoFee:
	case nil:
		return fmt.Errorf("%w: fee policy is required", models.ErrInvalidParameters)
	}
	return nil
}
