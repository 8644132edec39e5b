package collateral

import (
	"context"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joefazee/categorical/internal/logger"
	"github.com/joefazee/categorical/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

var (
	owner   = common.HexToAddress("0x00000000000000000000000000000000000000a0")
	alice   = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob     = common.HexToAddress("0x00000000000000000000000000000000000000b0")
	spender = common.HexToAddress("0x00000000000000000000000000000000000000c0")
)

type recordingListener struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingListener) OnTokenEvent(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

type TokenTestSuite struct {
	suite.Suite
	token    *Token
	listener *recordingListener
	ctx      context.Context
}

func TestToken(t *testing.T) {
	suite.Run(t, new(TokenTestSuite))
}

func (s *TokenTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.listener = &recordingListener{}
	cfg := GetDefaultConfig()
	cfg.Owner = owner.Hex()
	s.token = NewToken(cfg, logger.NewNullLogger(), WithListener(s.listener))
	s.Require().NoError(s.token.Mint(s.ctx, owner, alice, decimal.NewFromInt(100)))
}

func (s *TokenTestSuite) TestMetadata() {
	s.Equal("Wrapped DAG", s.token.Name())
	s.Equal("wDAG", s.token.Symbol())
	s.Equal(18, s.token.Decimals())
	s.Equal(owner, s.token.Owner())
	s.NotEqual(common.Address{}, s.token.Address())
	s.True(decimal.NewFromInt(100).Equal(s.token.TotalSupply()))
}

func (s *TokenTestSuite) TestTransfer() {
	s.Require().NoError(s.token.Transfer(s.ctx, alice, bob, decimal.NewFromInt(40)))

	s.True(decimal.NewFromInt(60).Equal(s.token.BalanceOf(alice)))
	s.True(decimal.NewFromInt(40).Equal(s.token.BalanceOf(bob)))
	s.True(decimal.NewFromInt(100).Equal(s.token.TotalSupply()))

	last := s.listener.events[len(s.listener.events)-1]
	s.Equal(EventTransfer, last.Kind)
	s.Equal(alice, last.From)
	s.Equal(bob, last.To)
}

func (s *TokenTestSuite) TestTransfer_Rejections() {
	err := s.token.Transfer(s.ctx, alice, bob, decimal.NewFromInt(101))
	s.ErrorIs(err, models.ErrInsufficientBalance)

	err = s.token.Transfer(s.ctx, alice, bob, decimal.Zero)
	s.ErrorIs(err, models.ErrInvalidParameters)

	err = s.token.Transfer(s.ctx, alice, common.Address{}, decimal.NewFromInt(1))
	s.ErrorIs(err, models.ErrInvalidParameters)

	err = s.token.Transfer(s.ctx, alice, bob, decimal.RequireFromString("0.0000000000000000001"))
	s.ErrorIs(err, models.ErrInvalidParameters)

	s.True(decimal.NewFromInt(100).Equal(s.token.BalanceOf(alice)))
	s.True(s.token.BalanceOf(bob).IsZero())
}

func (s *TokenTestSuite) TestTransferFrom() {
	s.Require().NoError(s.token.Approve(s.ctx, alice, spender, decimal.NewFromInt(30)))
	s.True(decimal.NewFromInt(30).Equal(s.token.Allowance(alice, spender)))

	err := s.token.TransferFrom(s.ctx, spender, alice, bob, decimal.NewFromInt(31))
	s.ErrorIs(err, models.ErrInsufficientAllowance)

	s.Require().NoError(s.token.TransferFrom(s.ctx, spender, alice, bob, decimal.NewFromInt(25)))
	s.True(decimal.NewFromInt(5).Equal(s.token.Allowance(alice, spender)))
	s.True(decimal.NewFromInt(25).Equal(s.token.BalanceOf(bob)))
}

func (s *TokenTestSuite) TestTransferFrom_BalanceCheckedAfterAllowance() {
	s.Require().NoError(s.token.Approve(s.ctx, alice, spender, decimal.NewFromInt(500)))

	err := s.token.TransferFrom(s.ctx, spender, alice, bob, decimal.NewFromInt(200))
	s.ErrorIs(err, models.ErrInsufficientBalance)
	s.True(decimal.NewFromInt(500).Equal(s.token.Allowance(alice, spender)), "allowance must be untouched")
}

func (s *TokenTestSuite) TestApprove_ZeroRevokes() {
	s.Require().NoError(s.token.Approve(s.ctx, alice, spender, decimal.NewFromInt(10)))
	s.Require().NoError(s.token.Approve(s.ctx, alice, spender, decimal.Zero))
	s.True(s.token.Allowance(alice, spender).IsZero())

	s.ErrorIs(s.token.Approve(s.ctx, alice, spender, decimal.NewFromInt(-1)), models.ErrInvalidParameters)
}

func (s *TokenTestSuite) TestMintAndBurn() {
	err := s.token.Mint(s.ctx, alice, alice, decimal.NewFromInt(1))
	s.ErrorIs(err, models.ErrUnauthorized)

	s.Require().NoError(s.token.Burn(s.ctx, alice, decimal.NewFromInt(10)))
	s.True(decimal.NewFromInt(90).Equal(s.token.BalanceOf(alice)))
	s.True(decimal.NewFromInt(90).Equal(s.token.TotalSupply()))

	s.ErrorIs(s.token.Burn(s.ctx, bob, decimal.NewFromInt(1)), models.ErrInsufficientBalance)
}

func (s *TokenTestSuite) TestOwnership() {
	s.ErrorIs(s.token.TransferOwnership(s.ctx, alice, bob), models.ErrUnauthorized)
	s.ErrorIs(s.token.TransferOwnership(s.ctx, owner, common.Address{}), models.ErrInvalidParameters)

	s.Require().NoError(s.token.TransferOwnership(s.ctx, owner, bob))
	s.Equal(bob, s.token.Owner())
	s.ErrorIs(s.token.Mint(s.ctx, owner, owner, decimal.NewFromInt(1)), models.ErrUnauthorized)
	s.Require().NoError(s.token.Mint(s.ctx, bob, bob, decimal.NewFromInt(1)))

	s.Require().NoError(s.token.RenounceOwnership(s.ctx, bob))
	s.Equal(common.Address{}, s.token.Owner())
	s.ErrorIs(s.token.Mint(s.ctx, bob, bob, decimal.NewFromInt(1)), models.ErrUnauthorized)
	s.ErrorIs(s.token.Mint(s.ctx, common.Address{}, bob, decimal.NewFromInt(1)), models.ErrUnauthorized)
}

func (s *TokenTestSuite) TestConcurrentTransfersConserveSupply() {
	s.Require().NoError(s.token.Mint(s.ctx, owner, bob, decimal.NewFromInt(100)))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.token.Transfer(s.ctx, alice, bob, decimal.NewFromInt(1))
		}()
		go func() {
			defer wg.Done()
			_ = s.token.Transfer(s.ctx, bob, alice, decimal.NewFromInt(1))
		}()
	}
	wg.Wait()

	total := s.token.BalanceOf(alice).Add(s.token.BalanceOf(bob))
	s.True(decimal.NewFromInt(200).Equal(total))
}

func TestConfig(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, common.Address{}, cfg.OwnerAddress())

	cfg.Owner = "not-an-address"
	assert.ErrorIs(t, cfg.Validate(), models.ErrInvalidTokenMetadata)

	cfg = GetDefaultConfig()
	cfg.Symbol = " "
	assert.ErrorIs(t, cfg.Validate(), models.ErrInvalidTokenMetadata)
}
