package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNotBlank(t *testing.T) {
	assert.True(t, NotBlank("ipfs://comment"))
	assert.False(t, NotBlank(""))
	assert.False(t, NotBlank(" \t\n"))
}

func TestRunes(t *testing.T) {
	assert.True(t, MaxRunes("héllo", 5))
	assert.False(t, MaxRunes("héllo!", 5))
}

func TestIn(t *testing.T) {
	assert.True(t, In("flat", "percentage", "flat", "none"))
	assert.False(t, In(4, 1, 2, 3))
}

func TestIsURI(t *testing.T) {
	assert.True(t, IsURI("ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"))
	assert.True(t, IsURI("https://example.com/markets/1.json"))
	assert.True(t, IsURI("data:application/json,{}"))
	assert.False(t, IsURI("just some words"))
	assert.False(t, IsURI("/relative/path"))
}

func TestIsAddress(t *testing.T) {
	assert.True(t, IsAddress("0x00000000000000000000000000000000000000a1"))
	assert.False(t, IsAddress("0x1234"))
	assert.False(t, IsAddress("not an address"))
}

func TestIsAmount(t *testing.T) {
	assert.True(t, IsAmount(decimal.Zero))
	assert.True(t, IsAmount(decimal.RequireFromString("0.000000000000000001")))
	assert.False(t, IsAmount(decimal.RequireFromString("0.0000000000000000001")))
	assert.False(t, IsAmount(decimal.NewFromInt(-1)))

	assert.False(t, IsPositiveAmount(decimal.Zero))
	assert.True(t, IsPositiveAmount(decimal.NewFromInt(5)))
}
