package collateral

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joefazee/categorical/internal/logger"
	"github.com/joefazee/categorical/models"
	"github.com/shopspring/decimal"
)

// Token is an in-process fungible balance ledger. All balance and allowance
// updates for one operation happen under a single lock, so every operation
// either applies completely or not at all.
type Token struct {
	address common.Address
	name    string
	symbol  string
	logger  logger.Logger
	now     func() time.Time

	mu         sync.RWMutex
	owner      common.Address
	supply     decimal.Decimal
	balances   map[common.Address]decimal.Decimal
	allowances map[common.Address]map[common.Address]decimal.Decimal
	listeners  []Listener
}

var _ Service = (*Token)(nil)

// Option configures a Token
type Option func(*Token)

// WithListener registers a listener for committed token events
func WithListener(l Listener) Option {
	return func(t *Token) {
		t.listeners = append(t.listeners, l)
	}
}

// WithClock overrides the event timestamp source
func WithClock(now func() time.Time) Option {
	return func(t *Token) {
		t.now = now
	}
}

// NewToken creates a collateral token owned by the configured owner. The token
// handle is derived from the owner the same way a contract address is derived
// from its deployer.
func NewToken(config *Config, log logger.Logger, opts ...Option) *Token {
	if config == nil {
		config = GetDefaultConfig()
	}
	if log == nil {
		log = logger.NewNullLogger()
	}

	owner := config.OwnerAddress()
	t := &Token{
		address:    crypto.CreateAddress(owner, 0),
		name:       config.Name,
		symbol:     config.Symbol,
		logger:     log,
		now:        time.Now,
		owner:      owner,
		supply:     decimal.Zero,
		balances:   make(map[common.Address]decimal.Decimal),
		allowances: make(map[common.Address]map[common.Address]decimal.Decimal),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Subscribe registers a listener after construction
func (t *Token) Subscribe(l Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, l)
}

func (t *Token) Address() common.Address { return t.address }
func (t *Token) Name() string            { return t.name }
func (t *Token) Symbol() string          { return t.symbol }
func (t *Token) Decimals() int           { return Decimals }

func (t *Token) TotalSupply() decimal.Decimal {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.supply
}

func (t *Token) Owner() common.Address {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.owner
}

// BalanceOf returns the balance of an account
func (t *Token) BalanceOf(account common.Address) decimal.Decimal {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.balanceOf(account)
}

// Allowance returns how much spender may move on behalf of owner
func (t *Token) Allowance(owner, spender common.Address) decimal.Decimal {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.allowanceOf(owner, spender)
}

// Transfer moves amount from the caller to another account
func (t *Token) Transfer(ctx context.Context, from, to common.Address, amount decimal.Decimal) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if to == (common.Address{}) {
		return fmt.Errorf("%w: transfer to the zero address", models.ErrInvalidParameters)
	}

	t.mu.Lock()
	if err := t.move(from, to, amount); err != nil {
		t.mu.Unlock()
		return err
	}
	listeners := t.snapshotListeners()
	t.mu.Unlock()

	t.emit(ctx, listeners, Event{Kind: EventTransfer, From: from, To: to, Amount: amount})
	return nil
}

// TransferFrom moves amount from one account to another against the
// spender's allowance
func (t *Token) TransferFrom(ctx context.Context, spender, from, to common.Address, amount decimal.Decimal) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if to == (common.Address{}) {
		return fmt.Errorf("%w: transfer to the zero address", models.ErrInvalidParameters)
	}

	t.mu.Lock()
	allowance := t.allowanceOf(from, spender)
	if allowance.LessThan(amount) {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s approved, %s requested", models.ErrInsufficientAllowance, allowance, amount)
	}
	if err := t.move(from, to, amount); err != nil {
		t.mu.Unlock()
		return err
	}
	t.setAllowance(from, spender, allowance.Sub(amount))
	listeners := t.snapshotListeners()
	t.mu.Unlock()

	t.emit(ctx, listeners, Event{Kind: EventTransfer, From: from, To: to, Amount: amount})
	return nil
}

// Approve sets the amount spender may move on behalf of owner
func (t *Token) Approve(ctx context.Context, owner, spender common.Address, amount decimal.Decimal) error {
	if amount.IsNegative() || !onGrid(amount) {
		return fmt.Errorf("%w: invalid allowance %s", models.ErrInvalidParameters, amount)
	}
	if spender == (common.Address{}) {
		return fmt.Errorf("%w: approve to the zero address", models.ErrInvalidParameters)
	}

	t.mu.Lock()
	t.setAllowance(owner, spender, amount)
	listeners := t.snapshotListeners()
	t.mu.Unlock()

	t.emit(ctx, listeners, Event{Kind: EventApproval, From: owner, To: spender, Amount: amount})
	return nil
}

// Mint creates new tokens. Only the owner may mint.
func (t *Token) Mint(ctx context.Context, caller, to common.Address, amount decimal.Decimal) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if to == (common.Address{}) {
		return fmt.Errorf("%w: mint to the zero address", models.ErrInvalidParameters)
	}

	t.mu.Lock()
	if !t.isOwner(caller) {
		t.mu.Unlock()
		return fmt.Errorf("%w: only the token owner can mint", models.ErrUnauthorized)
	}
	t.balances[to] = t.balanceOf(to).Add(amount)
	t.supply = t.supply.Add(amount)
	listeners := t.snapshotListeners()
	t.mu.Unlock()

	t.emit(ctx, listeners, Event{Kind: EventMint, To: to, Amount: amount})
	return nil
}

// Burn destroys tokens from the caller's own balance
func (t *Token) Burn(ctx context.Context, caller common.Address, amount decimal.Decimal) error {
	if err := validateAmount(amount); err != nil {
		return err
	}

	t.mu.Lock()
	balance := t.balanceOf(caller)
	if balance.LessThan(amount) {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s held, %s requested", models.ErrInsufficientBalance, balance, amount)
	}
	t.setBalance(caller, balance.Sub(amount))
	t.supply = t.supply.Sub(amount)
	listeners := t.snapshotListeners()
	t.mu.Unlock()

	t.emit(ctx, listeners, Event{Kind: EventBurn, From: caller, Amount: amount})
	return nil
}

// TransferOwnership hands the minting role to another account
func (t *Token) TransferOwnership(ctx context.Context, caller, newOwner common.Address) error {
	if newOwner == (common.Address{}) {
		return fmt.Errorf("%w: new owner is the zero address", models.ErrInvalidParameters)
	}
	return t.changeOwner(ctx, caller, newOwner)
}

// RenounceOwnership leaves the token without an owner; nobody can mint afterwards
func (t *Token) RenounceOwnership(ctx context.Context, caller common.Address) error {
	return t.changeOwner(ctx, caller, common.Address{})
}

func (t *Token) changeOwner(ctx context.Context, caller, newOwner common.Address) error {
	t.mu.Lock()
	if !t.isOwner(caller) {
		t.mu.Unlock()
		return fmt.Errorf("%w: caller is not the token owner", models.ErrUnauthorized)
	}
	previous := t.owner
	t.owner = newOwner
	listeners := t.snapshotListeners()
	t.mu.Unlock()

	t.logger.Info("collateral ownership changed", map[string]interface{}{
		"previous": previous.Hex(),
		"owner":    newOwner.Hex(),
	})
	t.emit(ctx, listeners, Event{Kind: EventOwnershipTransfer, From: previous, To: newOwner})
	return nil
}

// move must be called with mu held.
func (t *Token) move(from, to common.Address, amount decimal.Decimal) error {
	balance := t.balanceOf(from)
	if balance.LessThan(amount) {
		return fmt.Errorf("%w: %s held, %s requested", models.ErrInsufficientBalance, balance, amount)
	}
	t.setBalance(from, balance.Sub(amount))
	t.balances[to] = t.balanceOf(to).Add(amount)
	return nil
}

func (t *Token) isOwner(caller common.Address) bool {
	return t.owner != (common.Address{}) && caller == t.owner
}

func (t *Token) balanceOf(account common.Address) decimal.Decimal {
	if b, ok := t.balances[account]; ok {
		return b
	}
	return decimal.Zero
}

func (t *Token) setBalance(account common.Address, amount decimal.Decimal) {
	if amount.IsZero() {
		delete(t.balances, account)
		return
	}
	t.balances[account] = amount
}

func (t *Token) allowanceOf(owner, spender common.Address) decimal.Decimal {
	if a, ok := t.allowances[owner][spender]; ok {
		return a
	}
	return decimal.Zero
}

func (t *Token) setAllowance(owner, spender common.Address, amount decimal.Decimal) {
	byOwner, ok := t.allowances[owner]
	if !ok {
		byOwner = make(map[common.Address]decimal.Decimal)
		t.allowances[owner] = byOwner
	}
	if amount.IsZero() {
		delete(byOwner, spender)
		return
	}
	byOwner[spender] = amount
}

func (t *Token) snapshotListeners() []Listener {
	if len(t.listeners) == 0 {
		return nil
	}
	out := make([]Listener, len(t.listeners))
	copy(out, t.listeners)
	return out
}

func (t *Token) emit(ctx context.Context, listeners []Listener, event Event) {
	event.Token = t.address
	event.At = t.now()

	t.logger.Debug("collateral "+string(event.Kind), map[string]interface{}{
		"from":   event.From.Hex(),
		"to":     event.To.Hex(),
		"amount": event.Amount.String(),
	})

	for _, l := range listeners {
		l.OnTokenEvent(ctx, event)
	}
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", models.ErrInvalidParameters)
	}
	if !onGrid(amount) {
		return fmt.Errorf("%w: amount %s has more than %d decimals", models.ErrInvalidParameters, amount, Decimals)
	}
	return nil
}

func onGrid(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(Decimals))
}
