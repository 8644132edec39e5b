package collateral

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Service is the fungible-balance ledger every market settles against
type Service interface {
	Address() common.Address
	Name() string
	Symbol() string
	Decimals() int
	TotalSupply() decimal.Decimal
	Owner() common.Address

	BalanceOf(account common.Address) decimal.Decimal
	Allowance(owner, spender common.Address) decimal.Decimal

	Transfer(ctx context.Context, from, to common.Address, amount decimal.Decimal) error
	TransferFrom(ctx context.Context, spender, from, to common.Address, amount decimal.Decimal) error
	Approve(ctx context.Context, owner, spender common.Address, amount decimal.Decimal) error
	Mint(ctx context.Context, caller, to common.Address, amount decimal.Decimal) error
	Burn(ctx context.Context, caller common.Address, amount decimal.Decimal) error

	TransferOwnership(ctx context.Context, caller, newOwner common.Address) error
	RenounceOwnership(ctx context.Context, caller common.Address) error
}

// EventKind names a committed token operation
type EventKind string

const (
	EventTransfer          EventKind = "transfer"
	EventApproval          EventKind = "approval"
	EventMint              EventKind = "mint"
	EventBurn              EventKind = "burn"
	EventOwnershipTransfer EventKind = "ownership_transferred"
)

// Event is emitted after a token operation commits
type Event struct {
	Kind   EventKind
	Token  common.Address
	From   common.Address
	To     common.Address
	Amount decimal.Decimal
	At     time.Time
}

// Listener observes committed token operations
type Listener interface {
	OnTokenEvent(ctx context.Context, event Event)
}
