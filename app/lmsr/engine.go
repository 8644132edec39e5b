package lmsr

import (
	"fmt"
	"math/big"

	"github.com/cockroachdb/apd/v3"
	"github.com/joefazee/categorical/models"
	"github.com/shopspring/decimal"
)

var (
	minExp = apd.New(-maxExpArg, 0)
	maxExp = apd.New(maxExpArg, 0)
)

type pricingEngine struct {
	config *Config
	ctx    *apd.Context
	ceil   *apd.Context
	floor  *apd.Context
	even   *apd.Context
}

// NewPricingEngine creates a new LMSR pricing engine
func NewPricingEngine(config *Config) PricingEngine {
	if config == nil {
		config = GetDefaultConfig()
	}

	ctx := apd.BaseContext.WithPrecision(config.Precision)
	ceil, floor, even := *ctx, *ctx, *ctx
	ceil.Rounding = apd.RoundCeiling
	floor.Rounding = apd.RoundFloor
	even.Rounding = apd.RoundHalfEven

	return &pricingEngine{
		config: config,
		ctx:    ctx,
		ceil:   &ceil,
		floor:  &floor,
		even:   &even,
	}
}

// logSumExp holds exp((qᵢ − m)/b) for every outcome, shifted by m = max q.
type logSumExp struct {
	b      *apd.Decimal
	max    *apd.Decimal
	maxDec decimal.Decimal
	terms  []*apd.Decimal
	sum    *apd.Decimal
}

// Cost calculates the scoring-rule cost of a quantity vector
func (e *pricingEngine) Cost(quantities []decimal.Decimal, b decimal.Decimal) (decimal.Decimal, error) {
	l, err := e.evaluate(quantities, b)
	if err != nil {
		return decimal.Zero, err
	}

	raw, err := e.rawCost(l)
	if err != nil {
		return decimal.Zero, err
	}
	return e.quantize(raw, e.ceil)
}

// Prices calculates the marginal price of every outcome
func (e *pricingEngine) Prices(quantities []decimal.Decimal, b decimal.Decimal) ([]decimal.Decimal, error) {
	l, err := e.evaluate(quantities, b)
	if err != nil {
		return nil, err
	}

	prices := make([]decimal.Decimal, len(l.terms))
	for i, term := range l.terms {
		p := new(apd.Decimal)
		if _, err := e.ctx.Quo(p, term, l.sum); err != nil {
			return nil, arithmeticError(err)
		}
		if prices[i], err = e.quantize(p, e.even); err != nil {
			return nil, err
		}
	}
	return prices, nil
}

// MarginalPrice calculates the price of a single outcome
func (e *pricingEngine) MarginalPrice(quantities []decimal.Decimal, b decimal.Decimal, outcome int) (decimal.Decimal, error) {
	if err := validateOutcome(quantities, outcome); err != nil {
		return decimal.Zero, err
	}

	prices, err := e.Prices(quantities, b)
	if err != nil {
		return decimal.Zero, err
	}
	return prices[outcome], nil
}

// BuyQuote calculates the cost of adding shares to one outcome
func (e *pricingEngine) BuyQuote(quantities []decimal.Decimal, b decimal.Decimal, outcome int, shares decimal.Decimal) (decimal.Decimal, error) {
	if err := validateOutcome(quantities, outcome); err != nil {
		return decimal.Zero, err
	}
	if shares.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative share amount", models.ErrInvalidParameters)
	}

	before, err := e.Cost(quantities, b)
	if err != nil {
		return decimal.Zero, err
	}
	after, err := e.Cost(withDelta(quantities, outcome, shares), b)
	if err != nil {
		return decimal.Zero, err
	}
	return after.Sub(before), nil
}

// SellQuote calculates the collateral released by removing shares from one outcome
func (e *pricingEngine) SellQuote(quantities []decimal.Decimal, b decimal.Decimal, outcome int, shares decimal.Decimal) (decimal.Decimal, error) {
	if err := validateOutcome(quantities, outcome); err != nil {
		return decimal.Zero, err
	}
	if shares.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative share amount", models.ErrInvalidParameters)
	}
	if shares.GreaterThan(quantities[outcome]) {
		return decimal.Zero, fmt.Errorf("%w: cannot sell %s shares of outcome %d, only %s outstanding",
			models.ErrInvalidParameters, shares, outcome, quantities[outcome])
	}

	before, err := e.Cost(quantities, b)
	if err != nil {
		return decimal.Zero, err
	}
	after, err := e.Cost(withDelta(quantities, outcome, shares.Neg()), b)
	if err != nil {
		return decimal.Zero, err
	}
	return before.Sub(after), nil
}

// SharesForCost inverts BuyQuote: it finds the largest share amount on the
// amount grid whose cost does not exceed the budget.
func (e *pricingEngine) SharesForCost(quantities []decimal.Decimal, b decimal.Decimal, outcome int, budget decimal.Decimal) (decimal.Decimal, error) {
	if err := validateOutcome(quantities, outcome); err != nil {
		return decimal.Zero, err
	}
	if budget.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative budget", models.ErrInvalidParameters)
	}

	base, err := e.Cost(quantities, b)
	if err != nil {
		return decimal.Zero, err
	}

	budget = budget.RoundFloor(Scale)
	if !budget.IsPositive() {
		return decimal.Zero, nil
	}

	fits := func(units *big.Int) (bool, error) {
		if units.Sign() == 0 {
			return true, nil
		}
		c, err := e.Cost(withDelta(quantities, outcome, fromUnits(units)), b)
		if err != nil {
			return false, err
		}
		return c.Sub(base).LessThanOrEqual(budget), nil
	}

	est, err := e.estimateShares(quantities, b, outcome, base.Add(budget))
	if err != nil {
		return decimal.Zero, err
	}

	lo, hi, err := bracket(est, fits)
	if err != nil {
		return decimal.Zero, err
	}

	one := big.NewInt(1)
	for new(big.Int).Sub(hi, lo).Cmp(one) > 0 {
		mid := new(big.Int).Add(lo, hi)
		mid.Rsh(mid, 1)

		ok, err := fits(mid)
		if err != nil {
			return decimal.Zero, err
		}
		if ok {
			lo = mid
		} else {
			hi = mid
		}
	}

	return fromUnits(lo), nil
}

// ArbitrageCheck reports whether the prices sum to one within epsilon
func (e *pricingEngine) ArbitrageCheck(prices []decimal.Decimal) models.ArbitrageCheck {
	sum := decimal.Zero
	for _, p := range prices {
		sum = sum.Add(p)
	}

	diff := sum.Sub(decimal.NewFromInt(1))
	return models.ArbitrageCheck{
		HasArbitrage:   diff.Abs().GreaterThan(e.config.ArbitrageEpsilon),
		CostDifference: diff,
	}
}

// LiquidityForFunding calculates floor(funding / ln n)
func (e *pricingEngine) LiquidityForFunding(funding decimal.Decimal, numOutcomes int) (decimal.Decimal, error) {
	if numOutcomes < 2 {
		return decimal.Zero, fmt.Errorf("%w: need at least two outcomes, got %d", models.ErrInvalidParameters, numOutcomes)
	}
	if !funding.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: funding must be positive", models.ErrInvalidParameters)
	}

	lnN, err := e.lnInt(numOutcomes)
	if err != nil {
		return decimal.Zero, err
	}
	f, err := toAPD(funding)
	if err != nil {
		return decimal.Zero, err
	}

	b := new(apd.Decimal)
	if _, err := e.ctx.Quo(b, f, lnN); err != nil {
		return decimal.Zero, arithmeticError(err)
	}

	out, err := e.quantize(b, e.floor)
	if err != nil {
		return decimal.Zero, err
	}
	if !out.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: funding %s too small", models.ErrInvalidParameters, funding)
	}
	return out, nil
}

// MaxLoss calculates b·ln(n) rounded up
func (e *pricingEngine) MaxLoss(b decimal.Decimal, numOutcomes int) (decimal.Decimal, error) {
	if numOutcomes < 2 {
		return decimal.Zero, fmt.Errorf("%w: need at least two outcomes, got %d", models.ErrInvalidParameters, numOutcomes)
	}
	if !b.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: liquidity parameter must be positive", models.ErrInvalidParameters)
	}

	lnN, err := e.lnInt(numOutcomes)
	if err != nil {
		return decimal.Zero, err
	}
	bd, err := toAPD(b)
	if err != nil {
		return decimal.Zero, err
	}

	loss := new(apd.Decimal)
	if _, err := e.ctx.Mul(loss, bd, lnN); err != nil {
		return decimal.Zero, arithmeticError(err)
	}
	return e.quantize(loss, e.ceil)
}

func (e *pricingEngine) evaluate(quantities []decimal.Decimal, b decimal.Decimal) (*logSumExp, error) {
	if err := validateState(quantities, b); err != nil {
		return nil, err
	}

	m := quantities[0]
	for _, q := range quantities[1:] {
		if q.GreaterThan(m) {
			m = q
		}
	}

	bd, err := toAPD(b)
	if err != nil {
		return nil, err
	}
	md, err := toAPD(m)
	if err != nil {
		return nil, err
	}

	l := &logSumExp{
		b:      bd,
		max:    md,
		maxDec: m,
		terms:  make([]*apd.Decimal, len(quantities)),
		sum:    apd.New(0, 0),
	}

	for i, q := range quantities {
		term, err := e.expOver(q.Sub(m), bd)
		if err != nil {
			return nil, err
		}
		l.terms[i] = term

		sum := new(apd.Decimal)
		if _, err := e.ctx.Add(sum, l.sum, term); err != nil {
			return nil, arithmeticError(err)
		}
		l.sum = sum
	}
	return l, nil
}

// rawCost returns m + b·ln Σ exp((qᵢ − m)/b) at full working precision.
func (e *pricingEngine) rawCost(l *logSumExp) (*apd.Decimal, error) {
	ln := new(apd.Decimal)
	if _, err := e.ctx.Ln(ln, l.sum); err != nil {
		return nil, arithmeticError(err)
	}
	scaled := new(apd.Decimal)
	if _, err := e.ctx.Mul(scaled, ln, l.b); err != nil {
		return nil, arithmeticError(err)
	}
	out := new(apd.Decimal)
	if _, err := e.ctx.Add(out, scaled, l.max); err != nil {
		return nil, arithmeticError(err)
	}
	return out, nil
}

// estimateShares solves C(q + Δeᵢ) = target in closed form:
// Δ = m + b·ln(exp((target − m)/b) − Σⱼ≠ᵢ exp((qⱼ − m)/b)) − qᵢ.
func (e *pricingEngine) estimateShares(quantities []decimal.Decimal, b decimal.Decimal, outcome int, target decimal.Decimal) (*big.Int, error) {
	l, err := e.evaluate(quantities, b)
	if err != nil {
		return nil, err
	}

	x, err := toAPD(target.Sub(l.maxDec))
	if err != nil {
		return nil, err
	}
	arg := new(apd.Decimal)
	if _, err := e.ctx.Quo(arg, x, l.b); err != nil {
		return nil, arithmeticError(err)
	}
	if arg.Cmp(maxExp) > 0 {
		// the other outcomes vanish at this scale; target − qᵢ bounds Δ from above
		return toUnits(target.Sub(quantities[outcome])), nil
	}

	ex := new(apd.Decimal)
	if _, err := e.ctx.Exp(ex, arg); err != nil {
		return nil, arithmeticError(err)
	}
	rest := new(apd.Decimal)
	if _, err := e.ctx.Sub(rest, l.sum, l.terms[outcome]); err != nil {
		return nil, arithmeticError(err)
	}
	inner := new(apd.Decimal)
	if _, err := e.ctx.Sub(inner, ex, rest); err != nil {
		return nil, arithmeticError(err)
	}
	if inner.Sign() <= 0 {
		return big.NewInt(0), nil
	}

	ln := new(apd.Decimal)
	if _, err := e.ctx.Ln(ln, inner); err != nil {
		return nil, arithmeticError(err)
	}
	scaled := new(apd.Decimal)
	if _, err := e.ctx.Mul(scaled, ln, l.b); err != nil {
		return nil, arithmeticError(err)
	}
	next := new(apd.Decimal)
	if _, err := e.ctx.Add(next, scaled, l.max); err != nil {
		return nil, arithmeticError(err)
	}

	nextQ, err := e.quantize(next, e.floor)
	if err != nil {
		return nil, err
	}
	return toUnits(nextQ.Sub(quantities[outcome])), nil
}

// expOver returns exp(x/b), with the exponent clamped at -maxExpArg.
func (e *pricingEngine) expOver(x decimal.Decimal, b *apd.Decimal) (*apd.Decimal, error) {
	num, err := toAPD(x)
	if err != nil {
		return nil, err
	}

	arg := new(apd.Decimal)
	if _, err := e.ctx.Quo(arg, num, b); err != nil {
		return nil, arithmeticError(err)
	}
	if arg.Cmp(minExp) < 0 {
		arg.Set(minExp)
	}

	out := new(apd.Decimal)
	if _, err := e.ctx.Exp(out, arg); err != nil {
		return nil, arithmeticError(err)
	}
	return out, nil
}

func (e *pricingEngine) lnInt(n int) (*apd.Decimal, error) {
	out := new(apd.Decimal)
	if _, err := e.ctx.Ln(out, apd.New(int64(n), 0)); err != nil {
		return nil, arithmeticError(err)
	}
	return out, nil
}

// quantize rounds d onto the 18-place grid with the rounding of ctx.
func (e *pricingEngine) quantize(d *apd.Decimal, ctx *apd.Context) (decimal.Decimal, error) {
	q := new(apd.Decimal)
	if _, err := ctx.Quantize(q, d, -Scale); err != nil {
		return decimal.Zero, fmt.Errorf("%w: value %s exceeds working precision", models.ErrInvalidParameters, d.Text('g'))
	}
	return decimal.NewFromString(q.Text('f'))
}

// bracket finds lo < hi around the largest fitting grid point, galloping
// outward from the estimate.
func bracket(est *big.Int, fits func(*big.Int) (bool, error)) (*big.Int, *big.Int, error) {
	ok, err := fits(est)
	if err != nil {
		return nil, nil, err
	}

	step := big.NewInt(1)
	if ok {
		lo := est
		for {
			cand := new(big.Int).Add(lo, step)
			ok, err := fits(cand)
			if err != nil {
				return nil, nil, err
			}
			if !ok {
				return lo, cand, nil
			}
			lo = cand
			step = new(big.Int).Lsh(step, 1)
		}
	}

	hi := est
	for {
		cand := new(big.Int).Sub(hi, step)
		if cand.Sign() <= 0 {
			return big.NewInt(0), hi, nil
		}
		ok, err := fits(cand)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			return cand, hi, nil
		}
		hi = cand
		step = new(big.Int).Lsh(step, 1)
	}
}

func validateState(quantities []decimal.Decimal, b decimal.Decimal) error {
	if len(quantities) < 2 {
		return fmt.Errorf("%w: need at least two outcomes, got %d", models.ErrInvalidParameters, len(quantities))
	}
	if !b.IsPositive() {
		return fmt.Errorf("%w: liquidity parameter must be positive", models.ErrInvalidParameters)
	}
	for i, q := range quantities {
		if q.IsNegative() {
			return fmt.Errorf("%w: negative quantity for outcome %d", models.ErrInvalidParameters, i)
		}
	}
	return nil
}

func validateOutcome(quantities []decimal.Decimal, outcome int) error {
	if outcome < 0 || outcome >= len(quantities) {
		return fmt.Errorf("%w: outcome index %d out of range", models.ErrInvalidParameters, outcome)
	}
	return nil
}

func withDelta(quantities []decimal.Decimal, outcome int, delta decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(quantities))
	copy(out, quantities)
	out[outcome] = out[outcome].Add(delta)
	return out
}

func toAPD(x decimal.Decimal) (*apd.Decimal, error) {
	d, _, err := apd.NewFromString(x.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidParameters, err)
	}
	return d, nil
}

// toUnits converts a grid amount into an integer count of 1e-18 units.
func toUnits(x decimal.Decimal) *big.Int {
	if !x.IsPositive() {
		return big.NewInt(0)
	}
	return x.Shift(Scale).BigInt()
}

func fromUnits(u *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(u, -Scale)
}

func arithmeticError(err error) error {
	return fmt.Errorf("%w: arithmetic: %v", models.ErrInvalidParameters, err)
}
