package social

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
	"github.com/stretchr/testify/suite"
)

var (
	owner   = common.HexToAddress("0x0000000000000000000000000000000000000a00")
	oracle  = common.HexToAddress("0x00000000000000000000000000000000000000e0")
	alice   = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob     = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	carol   = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	marketA = common.HexToAddress("0x00000000000000000000000000000000000000d1")
	marketB = common.HexToAddress("0x00000000000000000000000000000000000000d2")

	streakMarkets = []common.Address{
		common.HexToAddress("0x00000000000000000000000000000000000000f1"),
		common.HexToAddress("0x00000000000000000000000000000000000000f2"),
		common.HexToAddress("0x00000000000000000000000000000000000000f3"),
	}
)

type MockMarketReader struct {
	mock.Mock
}

func (m *MockMarketReader) MarketInfo(market common.Address) (models.MarketInfo, error) {
	args := m.Called(market)
	return args.Get(0).(models.MarketInfo), args.Error(1)
}

func activeMarket(address common.Address, outcomes int) models.MarketInfo {
	return models.MarketInfo{Address: address, NumOutcomes: outcomes, Status: models.MarketStatusActive, WinningOutcome: models.NoWinner}
}

type LedgerTestSuite struct {
	suite.Suite
	ctx    context.Context
	reader *MockMarketReader
	config *Config
	ledger *Ledger
}

func TestLedger(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}

func (s *LedgerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.reader = new(MockMarketReader)
	s.reader.On("MarketInfo", marketA).Return(activeMarket(marketA, 3), nil).Maybe()
	s.reader.On("MarketInfo", marketB).Return(models.MarketInfo{Address: marketB, NumOutcomes: 2, Status: models.MarketStatusResolved}, nil).Maybe()
	for _, m := range streakMarkets {
		s.reader.On("MarketInfo", m).Return(activeMarket(m, 2), nil).Maybe()
	}
	s.reader.On("MarketInfo", mock.Anything).Return(models.MarketInfo{}, models.ErrMarketNotFound).Maybe()

	s.config = GetDefaultConfig()
	s.config.Owner = owner.Hex()
	s.config.MaxLeaderboardSize = 2
	s.ledger = NewLedger(s.config, s.reader, nil, logger.NewNullLogger(),
		WithClock(func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }))
}

func (s *LedgerTestSuite) resolve(market common.Address, winner int) {
	s.ledger.OnMarketEvent(s.ctx, markets.Event{Kind: markets.EventResolved, Market: market, Outcome: winner})
}

func (s *LedgerTestSuite) TestMakePrediction() {
	p, err := s.ledger.MakePrediction(s.ctx, alice, marketA, 2, 80, "<i>ipfs://why</i>")
	s.Require().NoError(err)
	s.Equal(2, p.PredictedOutcome)
	s.Equal("ipfs://why", p.MetadataURI)
	s.False(p.Scored)

	_, err = s.ledger.MakePrediction(s.ctx, alice, marketA, 1, 50, "")
	s.ErrorIs(err, models.ErrAlreadyPredicted)

	stored, err := s.ledger.GetUserPrediction(alice, marketA)
	s.Require().NoError(err)
	s.Equal(80, stored.Confidence)

	stats := s.ledger.GetUserStats(alice)
	s.Equal(uint64(1), stats.TotalPredictions)
	s.Equal(1, stats.Rank)
}

func (s *LedgerTestSuite) TestMakePrediction_Rejections() {
	tests := []struct {
		name       string
		market     common.Address
		outcome    int
		confidence int
		want       error
	}{
		{"zero confidence", marketA, 0, 0, models.ErrInvalidParameters},
		{"confidence above 100", marketA, 0, 101, models.ErrInvalidParameters},
		{"outcome out of range", marketA, 3, 50, models.ErrInvalidParameters},
		{"resolved market", marketB, 0, 50, models.ErrMarketNotActive},
		{"unknown market", carol, 0, 50, models.ErrMarketNotFound},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.ledger.MakePrediction(s.ctx, alice, tt.market, tt.outcome, tt.confidence, "")
			s.ErrorIs(err, tt.want)
		})
	}

	_, err := s.ledger.GetUserPrediction(alice, marketA)
	s.ErrorIs(err, models.ErrRecordNotFound)
	s.Equal(uint64(0), s.ledger.GetUserStats(alice).TotalPredictions)
}

func (s *LedgerTestSuite) TestMakePrediction_ResolvedDuringLookup() {
	reader := new(MockMarketReader)
	ledger := NewLedger(s.config, reader, nil, logger.NewNullLogger())
	reader.On("MarketInfo", marketA).Return(activeMarket(marketA, 3), nil).Run(func(mock.Arguments) {
		ledger.OnMarketEvent(s.ctx, markets.Event{Kind: markets.EventResolved, Market: marketA, Outcome: 2})
	}).Once()

	_, err := ledger.MakePrediction(s.ctx, alice, marketA, 2, 80, "")
	s.ErrorIs(err, models.ErrMarketNotActive)

	_, err = ledger.GetUserPrediction(alice, marketA)
	s.ErrorIs(err, models.ErrRecordNotFound)
	s.Equal(uint64(0), ledger.GetUserStats(alice).TotalPredictions)
	reader.AssertExpectations(s.T())
}

func (s *LedgerTestSuite) TestResolutionScoresPredictions() {
	_, err := s.ledger.MakePrediction(s.ctx, alice, marketA, 1, 90, "")
	s.Require().NoError(err)
	_, err = s.ledger.MakePrediction(s.ctx, bob, marketA, 0, 30, "")
	s.Require().NoError(err)

	s.resolve(marketA, 1)

	a := s.ledger.GetUserStats(alice)
	s.Equal(uint64(1), a.CorrectPredictions)
	s.Equal(uint64(19), a.Reputation, "reward 10 plus 90/10")
	s.Equal(int64(1), a.Streak)
	s.Equal(uint64(10000), a.WinRate)
	s.Equal(1, a.Rank)

	b := s.ledger.GetUserStats(bob)
	s.Equal(uint64(0), b.Reputation, "penalty floors at zero")
	s.Equal(int64(-1), b.Streak)
	s.Equal(uint64(0), b.WinRate)
	s.Equal(2, b.Rank)

	p, err := s.ledger.GetUserPrediction(bob, marketA)
	s.Require().NoError(err)
	s.True(p.Scored)
	s.False(p.Correct)

	// a repeated event does not score twice
	s.resolve(marketA, 0)
	s.Equal(uint64(19), s.ledger.GetUserStats(alice).Reputation)
}

func (s *LedgerTestSuite) TestStreaks() {
	for i, m := range streakMarkets {
		_, err := s.ledger.MakePrediction(s.ctx, alice, m, 0, 10, "")
		s.Require().NoError(err)
		winner := 0
		if i == 2 {
			winner = 1
		}
		s.resolve(m, winner)
	}

	stats := s.ledger.GetUserStats(alice)
	s.Equal(int64(-1), stats.Streak)
	s.Equal(uint64(11+11-5), stats.Reputation)
	s.Equal(uint64(6666), stats.WinRate)

	history := s.ledger.GetUserPredictionHistory(alice, 2)
	s.Require().Len(history, 2)
	s.Equal(streakMarkets[2], history[0].Market)
	s.Equal(streakMarkets[1], history[1].Market)
}

func (s *LedgerTestSuite) TestLeaderboardIsBoundedAndOrdered() {
	for _, user := range []common.Address{carol, bob, alice} {
		_, err := s.ledger.MakePrediction(s.ctx, user, marketA, 0, 50, "")
		s.Require().NoError(err)
	}
	s.resolve(marketA, 0)

	board := s.ledger.GetLeaderboard(10)
	s.Require().Len(board, 2)
	// equal reputation and record fall back to address order
	s.Equal(alice, board[0].User)
	s.Equal(bob, board[1].User)
	s.Equal(uint64(15), board[0].Reputation)
	s.Equal(0, s.ledger.GetUserStats(carol).Rank)

	s.Len(s.ledger.GetLeaderboard(1), 1)
}

func (s *LedgerTestSuite) TestClaimRecordsProfitAndLoss() {
	s.ledger.OnMarketEvent(s.ctx, markets.Event{Kind: markets.EventClaimed, Market: marketA, Actor: alice, Amount: decimal.NewFromInt(30), CostBasis: decimal.NewFromInt(12)})
	s.ledger.OnMarketEvent(s.ctx, markets.Event{Kind: markets.EventClaimed, Market: marketB, Actor: alice, Amount: decimal.Zero, CostBasis: decimal.NewFromInt(5)})

	stats := s.ledger.GetUserStats(alice)
	s.True(decimal.NewFromInt(18).Equal(stats.TotalProfit))
	s.True(decimal.NewFromInt(5).Equal(stats.TotalLoss))
	s.Equal(0, stats.Rank, "claimers without predictions are unranked")

	// trades do not touch the ledger
	s.ledger.OnMarketEvent(s.ctx, markets.Event{Kind: markets.EventSharesBought, Market: marketA, Actor: bob, Amount: decimal.NewFromInt(3)})
	s.True(s.ledger.GetUserStats(bob).TotalLoss.IsZero())
}

func (s *LedgerTestSuite) TestComments() {
	first, err := s.ledger.PostComment(s.ctx, alice, marketA, "ipfs://first")
	s.Require().NoError(err)
	s.Equal(uint64(0), first.ID)
	second, err := s.ledger.PostComment(s.ctx, bob, marketA, "ipfs://second")
	s.Require().NoError(err)
	s.Equal(uint64(1), second.ID)

	_, err = s.ledger.PostComment(s.ctx, alice, marketA, "<script>alert(1)</script>")
	s.ErrorIs(err, models.ErrInvalidParameters)
	_, err = s.ledger.PostComment(s.ctx, alice, carol, "ipfs://nowhere")
	s.ErrorIs(err, models.ErrMarketNotFound)

	// comments stay open on resolved markets
	_, err = s.ledger.PostComment(s.ctx, alice, marketB, "ipfs://after")
	s.NoError(err)

	s.Require().NoError(s.ledger.VoteOnComment(s.ctx, bob, marketA, 0, true))
	s.Require().NoError(s.ledger.VoteOnComment(s.ctx, carol, marketA, 0, false))
	s.Require().NoError(s.ledger.VoteOnComment(s.ctx, bob, marketA, 1, false))
	s.ErrorIs(s.ledger.VoteOnComment(s.ctx, bob, marketA, 0, false), models.ErrAlreadyVoted)
	s.ErrorIs(s.ledger.VoteOnComment(s.ctx, bob, marketA, 7, true), models.ErrCommentNotFound)
	s.ErrorIs(s.ledger.VoteOnComment(s.ctx, bob, marketB, 1, true), models.ErrCommentNotFound)

	s.True(s.ledger.HasVoted(bob, marketA, 0))
	s.False(s.ledger.HasVoted(alice, marketA, 0))

	page, total, err := s.ledger.GetMarketComments(marketA, 0, 10)
	s.Require().NoError(err)
	s.Equal(2, total)
	s.Equal(uint64(1), page[0].Upvotes)
	s.Equal(uint64(1), page[0].Downvotes)
	s.Equal(int64(-1), page[1].Score())

	page, _, err = s.ledger.GetMarketComments(marketA, 1, 10)
	s.Require().NoError(err)
	s.Len(page, 1)
	page, _, err = s.ledger.GetMarketComments(marketA, 5, 10)
	s.Require().NoError(err)
	s.Empty(page)
	_, _, err = s.ledger.GetMarketComments(marketA, -1, 10)
	s.ErrorIs(err, models.ErrInvalidParameters)
}

func (s *LedgerTestSuite) TestUpdatePredictionResult() {
	_, err := s.ledger.MakePrediction(s.ctx, alice, marketA, 2, 50, "")
	s.Require().NoError(err)

	s.ErrorIs(s.ledger.UpdatePredictionResult(s.ctx, alice, alice, marketA, 2, decimal.NewFromInt(4)), models.ErrUnauthorized)
	s.ErrorIs(s.ledger.UpdatePredictionResult(s.ctx, owner, bob, marketA, 2, decimal.Zero), models.ErrRecordNotFound)

	s.Require().NoError(s.ledger.UpdatePredictionResult(s.ctx, owner, alice, marketA, 2, decimal.NewFromInt(4)))
	stats := s.ledger.GetUserStats(alice)
	s.Equal(uint64(15), stats.Reputation)
	s.True(decimal.NewFromInt(4).Equal(stats.TotalProfit))

	s.ErrorIs(s.ledger.UpdatePredictionResult(s.ctx, owner, alice, marketA, 2, decimal.Zero), models.ErrInvalidParameters)
}

func (s *LedgerTestSuite) TestOwnership() {
	s.Equal(owner, s.ledger.Owner())
	s.ErrorIs(s.ledger.TransferOwnership(s.ctx, alice, bob), models.ErrUnauthorized)
	s.ErrorIs(s.ledger.TransferOwnership(s.ctx, owner, common.Address{}), models.ErrInvalidParameters)
	s.Require().NoError(s.ledger.TransferOwnership(s.ctx, owner, bob))
	s.Require().NoError(s.ledger.RenounceOwnership(s.ctx, bob))
	s.Equal(common.Address{}, s.ledger.Owner())
	s.ErrorIs(s.ledger.RenounceOwnership(s.ctx, bob), models.ErrUnauthorized)
}

// TestFactoryEvents drives the ledger from a real factory: resolution and
// claims arrive as market events.
func TestFactoryEvents(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	tokenCfg := collateral.GetDefaultConfig()
	tokenCfg.Owner = owner.Hex()
	token := collateral.NewToken(tokenCfg, logger.NewNullLogger())

	marketCfg := markets.GetDefaultConfig()
	marketCfg.Owner = owner.Hex()
	marketCfg.Oracle = oracle.Hex()
	factory := markets.NewFactory(marketCfg, token, lmsr.NewPricingEngine(nil), logger.NewNullLogger(), markets.WithFactoryClock(clock))

	ledger := NewLedger(GetDefaultConfig(), factory, nil, logger.NewNullLogger(), WithClock(clock))
	factory.Subscribe(ledger)

	for _, acct := range []common.Address{alice, bob} {
		require.NoError(t, token.Mint(ctx, owner, acct, decimal.NewFromInt(1_000)))
	}
	require.NoError(t, token.Approve(ctx, alice, factory.Address(), decimal.NewFromInt(1_000)))

	m, err := factory.CreateMarket(ctx, alice, markets.CreateMarketParams{
		MetadataURI:      "ipfs://q",
		NumOutcomes:      2,
		ResolutionTime:   now.Add(2 * time.Hour),
		InitialLiquidity: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	require.NoError(t, token.Approve(ctx, bob, m.Address(), decimal.NewFromInt(1_000)))

	_, err = ledger.MakePrediction(ctx, bob, m.Address(), 0, 100, "")
	require.NoError(t, err)
	trade, err := m.BuyShares(ctx, bob, 0, decimal.Zero, decimal.NewFromInt(10))
	require.NoError(t, err)

	now = now.Add(3 * time.Hour)
	require.NoError(t, m.ResolveMarket(ctx, oracle, 0))
	payout, err := m.ClaimWinnings(ctx, bob)
	require.NoError(t, err)

	stats := ledger.GetUserStats(bob)
	assert.Equal(t, uint64(20), stats.Reputation)
	assert.Equal(t, 1, stats.Rank)
	spent := trade.TotalCost.Add(trade.Fee)
	assert.True(t, payout.Sub(spent).Equal(stats.TotalProfit), "payout %s spent %s profit %s", payout, spent, stats.TotalProfit)
}
