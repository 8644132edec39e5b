package markets

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joefazee/categorical/models"
	"github.com/shopspring/decimal"
)

// CollateralLedger is the part of the collateral token a market settles against.
type CollateralLedger interface {
	Address() common.Address
	Transfer(ctx context.Context, from, to common.Address, amount decimal.Decimal) error
	TransferFrom(ctx context.Context, spender, from, to common.Address, amount decimal.Decimal) error
}

// EventKind names a committed market operation
type EventKind string

const (
	EventInitialized       EventKind = "initialized"
	EventSharesBought      EventKind = "shares_bought"
	EventSharesSold        EventKind = "shares_sold"
	EventCompleteSetMinted EventKind = "complete_set_minted"
	EventCompleteSetBurned EventKind = "complete_set_burned"
	EventLiquidityAdded    EventKind = "liquidity_added"
	EventLiquidityRemoved  EventKind = "liquidity_removed"
	EventResolved          EventKind = "resolved"
	EventClaimed           EventKind = "claimed"
)

// Event describes one committed market write. Outcome is models.NoWinner for
// operations that do not target a single outcome.
type Event struct {
	Kind    EventKind
	Market  common.Address
	Actor   common.Address
	Outcome int
	// Shares is outcome shares for trades and sets, LP shares for liquidity.
	Shares decimal.Decimal
	// Amount is the collateral that moved between the actor and the market.
	Amount    decimal.Decimal
	Fee       decimal.Decimal
	CostBasis decimal.Decimal
	At        time.Time
}

// Listener receives market events after the market lock is released.
type Listener interface {
	OnMarketEvent(ctx context.Context, event Event)
}

// Service defines the interface for market business logic exposed over HTTP
type Service interface {
	CreateMarket(ctx context.Context, caller common.Address, params CreateMarketParams) (*models.MarketSummary, error)
	GetMarketState(market common.Address) (*models.MarketState, error)
	GetMarketSummary(market common.Address) (*models.MarketSummary, error)
	GetMarketSummaries(offset, limit int) ([]models.MarketSummary, int, error)
	GetMarketsByStatus(status models.MarketStatus) []common.Address
	GetRecentMarkets(count int) []common.Address
	GetFactoryConfig() models.FactoryConfig
	GetMarketCount() int

	GetPosition(market, user common.Address) (*models.UserPosition, error)
	SimulateBuy(market common.Address, outcome int, budget decimal.Decimal) (*models.SimulateBuyResult, error)
	SimulateSell(market common.Address, outcome int, shares decimal.Decimal) (*models.SimulateSellResult, error)
	CheckArbitrage(market common.Address) (*models.ArbitrageCheck, error)

	BuyShares(ctx context.Context, market, caller common.Address, outcome int, minShares, maxCost decimal.Decimal) (*models.SimulateBuyResult, error)
	SellShares(ctx context.Context, market, caller common.Address, outcome int, shares, minPayout decimal.Decimal) (*models.SimulateSellResult, error)
	MintCompleteSet(ctx context.Context, market, caller common.Address, amount decimal.Decimal) error
	BurnCompleteSet(ctx context.Context, market, caller common.Address, amount decimal.Decimal) error
	AddLiquidity(ctx context.Context, market, caller common.Address, amount decimal.Decimal) (decimal.Decimal, error)
	RemoveLiquidity(ctx context.Context, market, caller common.Address, lpAmount decimal.Decimal) (decimal.Decimal, error)
	ResolveMarket(ctx context.Context, market, caller common.Address, winningOutcome int) error
	ClaimWinnings(ctx context.Context, market, caller common.Address) (decimal.Decimal, error)

	SetAdmin(ctx context.Context, caller, admin common.Address) error
	SetOracle(ctx context.Context, caller, oracle common.Address) error
	SetDefaultFeePolicy(ctx context.Context, caller common.Address, policy FeePolicy) error
	TransferOwnership(ctx context.Context, caller, newOwner common.Address) error
	RenounceOwnership(ctx context.Context, caller common.Address) error
}
