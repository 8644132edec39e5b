package markets

import (
	"fmt"
	"math/big"

	"github.com/joefazee/categorical/app/lmsr"
	"github.com/joefazee/categorical/models"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// unit is the smallest amount on the grid.
var unit = decimal.New(1, -lmsr.Scale)

func onGrid(x decimal.Decimal) bool {
	return x.Equal(x.Truncate(lmsr.Scale))
}

func requirePositive(name string, x decimal.Decimal) error {
	if !x.IsPositive() {
		return fmt.Errorf("%w: %s must be positive", models.ErrInvalidParameters, name)
	}
	if !onGrid(x) {
		return fmt.Errorf("%w: %s %s has more than %d decimals", models.ErrInvalidParameters, name, x, lmsr.Scale)
	}
	return nil
}

func requireNonNegative(name string, x decimal.Decimal) error {
	if x.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative", models.ErrInvalidParameters, name)
	}
	if !onGrid(x) {
		return fmt.Errorf("%w: %s %s has more than %d decimals", models.ErrInvalidParameters, name, x, lmsr.Scale)
	}
	return nil
}

// mulDivFloor returns floor(x·y/z) on the grid using integer base units, so
// proportional payouts never round in the holder's favour.
func mulDivFloor(x, y, z decimal.Decimal) decimal.Decimal {
	num := new(big.Int).Mul(units(x), units(y))
	q := num.Quo(num, units(z))
	return decimal.NewFromBigInt(q, -lmsr.Scale)
}

func units(x decimal.Decimal) *big.Int {
	return x.Shift(lmsr.Scale).BigInt()
}

func maxAmount(xs []decimal.Decimal) decimal.Decimal {
	out := decimal.Zero
	for _, x := range xs {
		out = decimal.Max(out, x)
	}
	return out
}

func cloneAmounts(xs []decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(xs))
	copy(out, xs)
	return out
}

func zeroAmounts(n int) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	for i := range out {
		out[i] = decimal.Zero
	}
	return out
}
