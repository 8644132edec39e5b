package social

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joefazee/categorical/models"
	"github.com/shopspring/decimal"
)

// MarketReader looks up market state. The factory satisfies it.
type MarketReader interface {
	MarketInfo(market common.Address) (models.MarketInfo, error)
}

// Service defines the social ledger operations exposed over HTTP
type Service interface {
	Address() common.Address
	Owner() common.Address

	MakePrediction(ctx context.Context, user, market common.Address, outcome, confidence int, metadataURI string) (*models.Prediction, error)
	PostComment(ctx context.Context, author, market common.Address, metadataURI string) (*models.Comment, error)
	VoteOnComment(ctx context.Context, voter, market common.Address, commentID uint64, isUpvote bool) error
	UpdatePredictionResult(ctx context.Context, caller, user, market common.Address, winningOutcome int, profit decimal.Decimal) error

	GetLeaderboard(limit int) []models.LeaderboardEntry
	GetUserStats(user common.Address) models.UserStatsWithRank
	GetMarketComments(market common.Address, offset, limit int) ([]models.Comment, int, error)
	GetUserPrediction(user, market common.Address) (*models.Prediction, error)
	GetUserPredictionHistory(user common.Address, limit int) []models.Prediction
	HasVoted(voter, market common.Address, commentID uint64) bool

	TransferOwnership(ctx context.Context, caller, newOwner common.Address) error
	RenounceOwnership(ctx context.Context, caller common.Address) error
}
