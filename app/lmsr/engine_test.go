package lmsr

import (
	"errors"
	"testing"

	"github.com/joefazee/categorical/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ulp = decimal.New(1, -Scale)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func zeros(n int) []decimal.Decimal {
	q := make([]decimal.Decimal, n)
	for i := range q {
		q[i] = decimal.Zero
	}
	return q
}

func assertClose(t *testing.T, expected, actual decimal.Decimal, tolerance string) {
	t.Helper()
	diff := expected.Sub(actual).Abs()
	assert.True(t, diff.LessThanOrEqual(d(tolerance)), "Expected %s, got %s", expected, actual)
}

func sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

func TestPricingEngine_Cost(t *testing.T) {
	engine := NewPricingEngine(nil)
	b := decimal.NewFromInt(100)

	t.Run("zero quantities cost b ln n", func(t *testing.T) {
		cost, err := engine.Cost(zeros(2), b)
		require.NoError(t, err)
		assertClose(t, d("69.314718055994530942"), cost, "0.000000000000000001")

		cost3, err := engine.Cost(zeros(3), b)
		require.NoError(t, err)
		assertClose(t, d("109.861228866810969140"), cost3, "0.000000000000000001")
	})

	t.Run("binary scenario", func(t *testing.T) {
		q := []decimal.Decimal{decimal.NewFromInt(10), decimal.Zero}

		quote, err := engine.BuyQuote(zeros(2), b, 0, decimal.NewFromInt(10))
		require.NoError(t, err)
		// 100·ln((e^0.1 + 1)/2)
		assertClose(t, d("5.124947951362558542"), quote, "0.000000000000000002")

		prices, err := engine.Prices(q, b)
		require.NoError(t, err)
		assertClose(t, d("0.5250"), prices[0], "0.0001")
		assertClose(t, d("0.4750"), prices[1], "0.0001")
	})

	t.Run("results sit on the amount grid", func(t *testing.T) {
		cost, err := engine.Cost([]decimal.Decimal{d("3.5"), d("1.25"), decimal.Zero}, d("7.5"))
		require.NoError(t, err)
		assert.True(t, cost.Equal(cost.Truncate(Scale)))
	})

	t.Run("cost is strictly increasing along each axis", func(t *testing.T) {
		q := []decimal.Decimal{d("5"), d("12"), d("0")}
		base, err := engine.Cost(q, b)
		require.NoError(t, err)

		for i := range q {
			next, err := engine.Cost(withDelta(q, i, d("0.5")), b)
			require.NoError(t, err)
			assert.True(t, next.GreaterThan(base), "outcome %d: %s <= %s", i, next, base)
		}
	})

	t.Run("large quantity spread stays finite", func(t *testing.T) {
		q := []decimal.Decimal{d("1000000"), decimal.Zero}
		cost, err := engine.Cost(q, decimal.NewFromInt(1))
		require.NoError(t, err)
		assertClose(t, d("1000000"), cost, "0.000000000000000001")

		prices, err := engine.Prices(q, decimal.NewFromInt(1))
		require.NoError(t, err)
		assert.True(t, prices[0].Equal(decimal.NewFromInt(1)))
		assert.True(t, prices[1].IsZero())
	})

	t.Run("invalid inputs", func(t *testing.T) {
		_, err := engine.Cost(zeros(1), b)
		assert.True(t, errors.Is(err, models.ErrInvalidParameters))

		_, err = engine.Cost(zeros(2), decimal.Zero)
		assert.True(t, errors.Is(err, models.ErrInvalidParameters))

		_, err = engine.Cost([]decimal.Decimal{d("-1"), decimal.Zero}, b)
		assert.True(t, errors.Is(err, models.ErrInvalidParameters))
	})
}

func TestPricingEngine_Prices(t *testing.T) {
	engine := NewPricingEngine(nil)

	t.Run("uniform at zero", func(t *testing.T) {
		prices, err := engine.Prices(zeros(2), decimal.NewFromInt(100))
		require.NoError(t, err)
		assert.True(t, d("0.5").Equal(prices[0]))
		assert.True(t, d("0.5").Equal(prices[1]))
	})

	vectors := [][]decimal.Decimal{
		{d("10"), d("0")},
		{d("1"), d("2"), d("3")},
		{d("250.5"), d("0"), d("17"), d("999")},
		{d("0"), d("0"), d("0"), d("0"), d("0"), d("0"), d("0")},
	}

	for _, q := range vectors {
		prices, err := engine.Prices(q, d("42"))
		require.NoError(t, err)
		assertClose(t, decimal.NewFromInt(1), sum(prices), "0.00000000000000001")

		check := engine.ArbitrageCheck(prices)
		assert.False(t, check.HasArbitrage, "prices %v", prices)

		for _, p := range prices {
			assert.True(t, p.IsPositive() && p.LessThan(decimal.NewFromInt(1)))
		}
	}

	t.Run("marginal price", func(t *testing.T) {
		p, err := engine.MarginalPrice([]decimal.Decimal{d("10"), d("0")}, decimal.NewFromInt(100), 1)
		require.NoError(t, err)
		assertClose(t, d("0.475020812521060014"), p, "0.000000000000000001")

		_, err = engine.MarginalPrice(zeros(2), decimal.NewFromInt(100), 2)
		assert.True(t, errors.Is(err, models.ErrInvalidParameters))
	})
}

func TestPricingEngine_Quotes(t *testing.T) {
	engine := NewPricingEngine(nil)
	b := decimal.NewFromInt(50)
	q := []decimal.Decimal{d("12"), d("3"), d("40")}

	t.Run("sell after buy returns the buy cost exactly", func(t *testing.T) {
		for i := range q {
			delta := d("7.25")
			buy, err := engine.BuyQuote(q, b, i, delta)
			require.NoError(t, err)

			sell, err := engine.SellQuote(withDelta(q, i, delta), b, i, delta)
			require.NoError(t, err)
			assert.True(t, buy.Equal(sell), "outcome %d: buy %s sell %s", i, buy, sell)
		}
	})

	t.Run("sell never exceeds buy at the same state", func(t *testing.T) {
		delta := d("2")
		buy, err := engine.BuyQuote(q, b, 0, delta)
		require.NoError(t, err)
		sell, err := engine.SellQuote(q, b, 0, delta)
		require.NoError(t, err)
		assert.True(t, sell.LessThanOrEqual(buy))
	})

	t.Run("buy quote is increasing in size", func(t *testing.T) {
		small, err := engine.BuyQuote(q, b, 1, d("1"))
		require.NoError(t, err)
		large, err := engine.BuyQuote(q, b, 1, d("2"))
		require.NoError(t, err)
		assert.True(t, large.GreaterThan(small))
	})

	t.Run("zero size quotes zero", func(t *testing.T) {
		quote, err := engine.BuyQuote(q, b, 1, decimal.Zero)
		require.NoError(t, err)
		assert.True(t, quote.IsZero())
	})

	t.Run("cannot sell more than outstanding", func(t *testing.T) {
		_, err := engine.SellQuote(q, b, 1, d("3.000000000000000001"))
		assert.True(t, errors.Is(err, models.ErrInvalidParameters))
	})

	t.Run("rejects negative sizes and bad index", func(t *testing.T) {
		_, err := engine.BuyQuote(q, b, 0, d("-1"))
		assert.True(t, errors.Is(err, models.ErrInvalidParameters))
		_, err = engine.SellQuote(q, b, -1, d("1"))
		assert.True(t, errors.Is(err, models.ErrInvalidParameters))
	})
}

func TestPricingEngine_SharesForCost(t *testing.T) {
	engine := NewPricingEngine(nil)
	b := decimal.NewFromInt(100)

	cases := []struct {
		name    string
		q       []decimal.Decimal
		outcome int
		budget  decimal.Decimal
	}{
		{"binary from zero", zeros(2), 0, d("5.124947951362558542")},
		{"skewed market cheap side", []decimal.Decimal{d("300"), d("0")}, 1, d("1")},
		{"skewed market expensive side", []decimal.Decimal{d("300"), d("0")}, 0, d("25")},
		{"many outcomes", zeros(8), 5, d("0.333")},
		{"budget far beyond depth", zeros(2), 1, d("1000000")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			shares, err := engine.SharesForCost(tc.q, b, tc.outcome, tc.budget)
			require.NoError(t, err)
			require.True(t, shares.IsPositive())

			cost, err := engine.BuyQuote(tc.q, b, tc.outcome, shares)
			require.NoError(t, err)
			assert.True(t, cost.LessThanOrEqual(tc.budget), "cost %s over budget %s", cost, tc.budget)

			over, err := engine.BuyQuote(tc.q, b, tc.outcome, shares.Add(ulp))
			require.NoError(t, err)
			assert.True(t, over.GreaterThan(tc.budget), "shares %s not maximal", shares)
		})
	}

	t.Run("binary scenario recovers ten shares", func(t *testing.T) {
		shares, err := engine.SharesForCost(zeros(2), b, 0, d("5.124947951362558542"))
		require.NoError(t, err)
		assertClose(t, decimal.NewFromInt(10), shares, "0.00000000000001")
	})

	t.Run("zero budget buys nothing", func(t *testing.T) {
		shares, err := engine.SharesForCost(zeros(2), b, 0, decimal.Zero)
		require.NoError(t, err)
		assert.True(t, shares.IsZero())
	})

	t.Run("negative budget", func(t *testing.T) {
		_, err := engine.SharesForCost(zeros(2), b, 0, d("-1"))
		assert.True(t, errors.Is(err, models.ErrInvalidParameters))
	})
}

func TestPricingEngine_Liquidity(t *testing.T) {
	engine := NewPricingEngine(nil)

	t.Run("liquidity for funding", func(t *testing.T) {
		b, err := engine.LiquidityForFunding(decimal.NewFromInt(100), 2)
		require.NoError(t, err)
		assertClose(t, d("144.269504088896340735"), b, "0.000000000000000001")

		loss, err := engine.MaxLoss(b, 2)
		require.NoError(t, err)
		assert.True(t, loss.LessThanOrEqual(decimal.NewFromInt(100)), "loss %s", loss)
	})

	t.Run("max loss equals cost at zero", func(t *testing.T) {
		b := d("910.239226626837393614")
		loss, err := engine.MaxLoss(b, 3)
		require.NoError(t, err)
		cost, err := engine.Cost(zeros(3), b)
		require.NoError(t, err)
		assertClose(t, cost, loss, "0.000000000000000001")
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := engine.LiquidityForFunding(decimal.Zero, 2)
		assert.True(t, errors.Is(err, models.ErrInvalidParameters))
		_, err = engine.LiquidityForFunding(decimal.NewFromInt(1), 1)
		assert.True(t, errors.Is(err, models.ErrInvalidParameters))
		_, err = engine.MaxLoss(decimal.Zero, 2)
		assert.True(t, errors.Is(err, models.ErrInvalidParameters))
	})
}

func TestPricingEngine_ArbitrageCheck(t *testing.T) {
	engine := NewPricingEngine(nil)

	check := engine.ArbitrageCheck([]decimal.Decimal{d("0.5"), d("0.5")})
	assert.False(t, check.HasArbitrage)
	assert.True(t, check.CostDifference.IsZero())

	check = engine.ArbitrageCheck([]decimal.Decimal{d("0.6"), d("0.5")})
	assert.True(t, check.HasArbitrage)
	assert.True(t, d("0.1").Equal(check.CostDifference))
}

func TestConfig(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.NoError(t, cfg.Validate())

	tests := []struct {
		name   string
		modify func(*Config)
		err    error
	}{
		{"precision too low", func(c *Config) { c.Precision = 20 }, models.ErrInvalidPrecision},
		{"precision too high", func(c *Config) { c.Precision = 500 }, models.ErrInvalidPrecision},
		{"zero epsilon", func(c *Config) { c.ArbitrageEpsilon = decimal.Zero }, models.ErrInvalidArbitrageEpsilon},
		{"epsilon of one", func(c *Config) { c.ArbitrageEpsilon = decimal.NewFromInt(1) }, models.ErrInvalidArbitrageEpsilon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := GetDefaultConfig()
			tt.modify(c)
			assert.Equal(t, tt.err, c.Validate())
		})
	}
}
