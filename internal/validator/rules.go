package validator

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// amountScale is the number of fractional digits an amount may carry.
const amountScale = 18

// NotBlank returns true if a string is not empty or contains only whitespace.
func NotBlank(value string) bool {
	return strings.TrimSpace(value) != ""
}

// MaxRunes returns true if a string is less than or equal to a maximum number of n
func MaxRunes(value string, n int) bool {
	return utf8.RuneCountInString(value) <= n
}

// In returns true if a value is in a list of values.
func In[T comparable](value T, list ...T) bool {
	for i := range list {
		if value == list[i] {
			return true
		}
	}
	return false
}

// IsURI returns true if a string is an absolute URI such as https://… or ipfs://….
func IsURI(value string) bool {
	u, err := url.Parse(value)
	if err != nil {
		return false
	}

	return u.Scheme != "" && (u.Host != "" || u.Opaque != "")
}

// IsAddress returns true if a string is a 20-byte hex account address.
func IsAddress(value string) bool {
	return common.IsHexAddress(value)
}

// IsAmount returns true if x is non-negative and fits the 18-decimal grid.
func IsAmount(x decimal.Decimal) bool {
	return !x.IsNegative() && x.Equal(x.Truncate(amountScale))
}

// IsPositiveAmount returns true if x is a strictly positive grid amount.
func IsPositiveAmount(x decimal.Decimal) bool {
	return x.IsPositive() && IsAmount(x)
}
