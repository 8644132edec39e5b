package social

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joefazee/categorical/models"
	"github.com/shopspring/decimal"
)

// GetLeaderboard returns up to limit ranked users
func (l *Ledger) GetLeaderboard(limit int) []models.LeaderboardEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit <= 0 || limit > len(l.leaderboard) {
		limit = len(l.leaderboard)
	}
	out := make([]models.LeaderboardEntry, limit)
	for i, user := range l.leaderboard[:limit] {
		s := l.stats[user]
		out[i] = models.LeaderboardEntry{User: user, Reputation: s.Reputation, WinRate: s.WinRate()}
	}
	return out
}

// GetUserStats returns user's aggregate record. Rank is 1-based, 0 when the
// user is not on the leaderboard.
func (l *Ledger) GetUserStats(user common.Address) models.UserStatsWithRank {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := models.UserStatsWithRank{
		UserStats: models.UserStats{TotalProfit: decimal.Zero, TotalLoss: decimal.Zero},
	}
	if s, ok := l.stats[user]; ok {
		out.UserStats = *s
		out.WinRate = s.WinRate()
	}
	for i, ranked := range l.leaderboard {
		if ranked == user {
			out.Rank = i + 1
			break
		}
	}
	return out
}

// GetMarketComments pages through a market's comments in posting order and
// returns the total count.
func (l *Ledger) GetMarketComments(market common.Address, offset, limit int) ([]models.Comment, int, error) {
	if offset < 0 {
		return nil, 0, fmt.Errorf("%w: negative offset", models.ErrInvalidParameters)
	}
	if limit <= 0 || limit > l.config.MaxPageSize {
		limit = l.config.MaxPageSize
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	thread := l.comments[market]
	total := len(thread)
	if offset >= total {
		return []models.Comment{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	out := make([]models.Comment, 0, end-offset)
	for _, c := range thread[offset:end] {
		out = append(out, *c)
	}
	return out, total, nil
}

// GetUserPrediction returns user's prediction on a market
func (l *Ledger) GetUserPrediction(user, market common.Address) (*models.Prediction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.predictions[predictionKey{user: user, market: market}]
	if !ok {
		return nil, fmt.Errorf("%w: no prediction by %s on %s", models.ErrRecordNotFound, user.Hex(), market.Hex())
	}
	out := *p
	return &out, nil
}

// GetUserPredictionHistory returns user's latest predictions, newest first
func (l *Ledger) GetUserPredictionHistory(user common.Address, limit int) []models.Prediction {
	if limit <= 0 || limit > l.config.MaxHistory {
		limit = l.config.MaxHistory
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	markets := l.history[user]
	out := make([]models.Prediction, 0, min(limit, len(markets)))
	for i := len(markets) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *l.predictions[predictionKey{user: user, market: markets[i]}])
	}
	return out
}

// HasVoted reports whether voter already voted on a comment
func (l *Ledger) HasVoted(voter, market common.Address, commentID uint64) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.votes[voteKey{voter: voter, market: market, comment: commentID}]
}
