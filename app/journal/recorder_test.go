package journal

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joefazee/categorical/app/collateral"
	"github.com/joefazee/categorical/app/lmsr"
	"github.com/joefazee/categorical/app/markets"
	"github.com/joefazee/categorical/internal/logger"
	"github.com/joefazee/categorical/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var (
	owner  = common.HexToAddress("0x00000000000000000000000000000000000000f1")
	oracle = common.HexToAddress("0x00000000000000000000000000000000000000f2")
	trader = common.HexToAddress("0x00000000000000000000000000000000000000f3")
	market = common.HexToAddress("0x00000000000000000000000000000000000000f4")
)

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateBatch(ctx context.Context, entries []*models.JournalEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context, filter Filter) ([]models.JournalEntry, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.JournalEntry), args.Get(1).(int64), args.Error(2)
}

// runUntil starts Run, calls fn, cancels and waits for the drain
func runUntil(t *testing.T, r *Recorder, fn func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.Run(gctx) })
	fn()
	cancel()
	require.NoError(t, g.Wait())
}

func TestRecorderMapsEvents(t *testing.T) {
	repo := NewMemoryRepository()
	rec := NewRecorder(nil, repo, logger.NewNullLogger())
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	rec.OnMarketEvent(context.Background(), markets.Event{
		Kind:    markets.EventSharesBought,
		Market:  market,
		Actor:   trader,
		Outcome: 1,
		Shares:  decimal.NewFromInt(3),
		Amount:  decimal.RequireFromString("1.6"),
		Fee:     decimal.RequireFromString("0.016"),
		At:      at,
	})
	rec.OnMarketEvent(context.Background(), markets.Event{
		Kind:    markets.EventLiquidityAdded,
		Market:  market,
		Actor:   trader,
		Outcome: models.NoWinner,
		Amount:  decimal.NewFromInt(10),
		At:      at,
	})
	rec.OnTokenEvent(context.Background(), collateral.Event{
		Kind:   collateral.EventTransfer,
		Token:  owner,
		From:   trader,
		To:     market,
		Amount: decimal.NewFromInt(5),
		At:     at,
	})

	runUntil(t, rec, func() {})

	entries, total, err := repo.List(context.Background(), Filter{})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)

	transfer, liquidity, buy := entries[0], entries[1], entries[2]

	assert.Equal(t, models.JournalSourceToken, transfer.Source)
	assert.Equal(t, owner.Hex(), transfer.Subject)
	assert.Equal(t, trader.Hex(), transfer.Actor)
	assert.Equal(t, market.Hex(), transfer.Counterparty)
	assert.Nil(t, transfer.Outcome)

	assert.Equal(t, "liquidity_added", liquidity.Kind)
	assert.Nil(t, liquidity.Outcome)

	assert.Equal(t, models.JournalSourceMarket, buy.Source)
	assert.Equal(t, market.Hex(), buy.Subject)
	require.NotNil(t, buy.Outcome)
	assert.Equal(t, 1, *buy.Outcome)
	assert.Equal(t, "0.016", buy.Fee.String())
	assert.Equal(t, at, buy.OccurredAt)
}

func TestRecorderDropsWhenFull(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.BufferSize = 1
	repo := NewMemoryRepository()
	rec := NewRecorder(cfg, repo, logger.NewNullLogger())

	for i := 0; i < 3; i++ {
		rec.OnTokenEvent(context.Background(), collateral.Event{Kind: collateral.EventMint, Token: owner, To: trader, Amount: decimal.NewFromInt(1)})
	}
	assert.Equal(t, uint64(2), rec.Dropped())

	runUntil(t, rec, func() {})
	_, total, err := repo.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestRecorderCountsEntriesAfterStop(t *testing.T) {
	repo := NewMemoryRepository()
	rec := NewRecorder(nil, repo, logger.NewNullLogger())
	mint := collateral.Event{Kind: collateral.EventMint, Token: owner, To: trader, Amount: decimal.NewFromInt(1)}

	runUntil(t, rec, func() {
		rec.OnTokenEvent(context.Background(), mint)
	})
	rec.OnTokenEvent(context.Background(), mint)

	assert.Equal(t, uint64(1), rec.Dropped())
	_, total, err := repo.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Empty(t, rec.queue)
}

func TestRecorderSkipsInvalidEntries(t *testing.T) {
	repo := NewMemoryRepository()
	rec := NewRecorder(nil, repo, logger.NewNullLogger())

	rec.OnTokenEvent(context.Background(), collateral.Event{Kind: "", Token: owner})
	rec.OnMarketEvent(context.Background(), markets.Event{Kind: markets.EventSharesSold, Market: market, Amount: decimal.NewFromInt(-1)})
	runUntil(t, rec, func() {})

	_, total, err := repo.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, rec.Dropped())
}

func TestRecorderBatchesAndSurvivesStoreErrors(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.BatchSize = 2
	repo := new(MockRepository)
	repo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(b []*models.JournalEntry) bool {
		return len(b) <= 2
	})).Return(assert.AnError)

	rec := NewRecorder(cfg, repo, logger.NewNullLogger())
	for i := 0; i < 5; i++ {
		rec.OnTokenEvent(context.Background(), collateral.Event{Kind: collateral.EventMint, Token: owner, To: trader, Amount: decimal.NewFromInt(1)})
	}
	runUntil(t, rec, func() {})

	written := 0
	for _, call := range repo.Calls {
		written += len(call.Arguments.Get(1).([]*models.JournalEntry))
	}
	assert.Equal(t, 5, written)
	repo.AssertExpectations(t)
}

// TestRecorderFollowsEngine journals a real token and factory
func TestRecorderFollowsEngine(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	repo := NewMemoryRepository()
	rec := NewRecorder(nil, repo, logger.NewNullLogger())

	tokenCfg := collateral.GetDefaultConfig()
	tokenCfg.Owner = owner.Hex()
	token := collateral.NewToken(tokenCfg, logger.NewNullLogger(), collateral.WithListener(rec), collateral.WithClock(clock))

	marketCfg := markets.GetDefaultConfig()
	marketCfg.Owner = owner.Hex()
	marketCfg.Oracle = oracle.Hex()
	factory := markets.NewFactory(marketCfg, token, lmsr.NewPricingEngine(nil), logger.NewNullLogger(),
		markets.WithFactoryClock(clock), markets.WithFactoryListener(rec))

	var m *markets.Market
	runUntil(t, rec, func() {
		require.NoError(t, token.Mint(ctx, owner, trader, decimal.NewFromInt(1_000)))
		require.NoError(t, token.Approve(ctx, trader, factory.Address(), decimal.NewFromInt(1_000)))

		var err error
		m, err = factory.CreateMarket(ctx, trader, markets.CreateMarketParams{
			MetadataURI:      "ipfs://q",
			NumOutcomes:      3,
			ResolutionTime:   now.Add(time.Hour),
			InitialLiquidity: decimal.NewFromInt(100),
		})
		require.NoError(t, err)
		require.NoError(t, token.Approve(ctx, trader, m.Address(), decimal.NewFromInt(1_000)))
		_, err = m.BuyShares(ctx, trader, 2, decimal.Zero, decimal.NewFromInt(10))
		require.NoError(t, err)
	})

	marketEntries, _, err := repo.List(ctx, Filter{Source: models.JournalSourceMarket, Subject: m.Address().Hex()})
	require.NoError(t, err)
	kinds := make([]string, 0, len(marketEntries))
	for _, e := range marketEntries {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []string{"shares_bought", "initialized"}, kinds)

	mints, _, err := repo.List(ctx, Filter{Source: models.JournalSourceToken, Kind: "mint"})
	require.NoError(t, err)
	require.Len(t, mints, 1)
	assert.Equal(t, token.Address().Hex(), mints[0].Subject)
	assert.Equal(t, now, mints[0].OccurredAt)

	_, transfers, err := repo.List(ctx, Filter{Source: models.JournalSourceToken, Kind: "transfer"})
	require.NoError(t, err)
	assert.Positive(t, transfers)
	assert.Zero(t, rec.Dropped())
}
