package models

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Prediction is a user's non-binding outcome guess on a market.
type Prediction struct {
	User             common.Address `json:"user"`
	Market           common.Address `json:"market"`
	PredictedOutcome int            `json:"predicted_outcome"`
	Confidence       int            `json:"confidence"`
	MetadataURI      string         `json:"metadata_uri"`
	Timestamp        time.Time      `json:"timestamp"`
	Scored           bool           `json:"scored"`
	Correct          bool           `json:"correct"`
}

// Comment is an append-only note attached to a market.
type Comment struct {
	ID          uint64         `json:"id"`
	Author      common.Address `json:"author"`
	Market      common.Address `json:"market"`
	MetadataURI string         `json:"metadata_uri"`
	Timestamp   time.Time      `json:"timestamp"`
	Upvotes     uint64         `json:"upvotes"`
	Downvotes   uint64         `json:"downvotes"`
}

// Score returns upvotes minus downvotes.
func (c *Comment) Score() int64 {
	return int64(c.Upvotes) - int64(c.Downvotes)
}

// UserStats aggregates a user's prediction record.
type UserStats struct {
	TotalPredictions   uint64          `json:"total_predictions"`
	CorrectPredictions uint64          `json:"correct_predictions"`
	TotalProfit        decimal.Decimal `json:"total_profit"`
	TotalLoss          decimal.Decimal `json:"total_loss"`
	Reputation         uint64          `json:"reputation"`
	// Streak is positive for consecutive correct predictions and negative for
	// consecutive misses.
	Streak int64 `json:"streak"`
}

// WinRate returns correct predictions over predictions made, in basis points.
func (s *UserStats) WinRate() uint64 {
	if s.TotalPredictions == 0 {
		return 0
	}
	return s.CorrectPredictions * 10000 / s.TotalPredictions
}

// UserStatsWithRank adds the derived win rate and leaderboard rank (0 = unranked).
type UserStatsWithRank struct {
	UserStats
	WinRate uint64 `json:"win_rate"`
	Rank    int    `json:"rank"`
}

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	User       common.Address `json:"user"`
	Reputation uint64         `json:"reputation"`
	WinRate    uint64         `json:"win_rate"`
}
