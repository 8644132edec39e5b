package social

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joefazee/categorical/app/markets"
	"github.com/joefazee/categorical/internal/logger"
	"github.com/joefazee/categorical/internal/sanitizer"
	"github.com/joefazee/categorical/internal/validator"
	"github.com/joefazee/categorical/models"
	"github.com/shopspring/decimal"
)

type predictionKey struct {
	user   common.Address
	market common.Address
}

type voteKey struct {
	voter   common.Address
	market  common.Address
	comment uint64
}

// Ledger records predictions, comments and reputation. It never gates
// trading: market state reaches it only through resolution and claim events.
type Ledger struct {
	mu        sync.RWMutex
	address   common.Address
	owner     common.Address
	config    *Config
	markets   MarketReader
	sanitizer sanitizer.HTMLStripperer
	logger    logger.Logger
	now       func() time.Time

	predictions map[predictionKey]*models.Prediction
	// predictors and history keep insertion order for scoring and reads
	predictors  map[common.Address][]common.Address
	history     map[common.Address][]common.Address
	comments    map[common.Address][]*models.Comment
	votes       map[voteKey]bool
	resolved    map[common.Address]bool
	stats       map[common.Address]*models.UserStats
	leaderboard []common.Address
}

var (
	_ Service          = (*Ledger)(nil)
	_ markets.Listener = (*Ledger)(nil)
)

// Option configures a Ledger
type Option func(*Ledger)

// WithClock overrides the ledger's time source
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// LedgerAddress is the handle of the ledger deployed by owner
func LedgerAddress(owner common.Address) common.Address {
	return crypto.CreateAddress(owner, 2)
}

// NewLedger creates a social ledger reading market state from reader
func NewLedger(config *Config, reader MarketReader, strip sanitizer.HTMLStripperer, log logger.Logger, opts ...Option) *Ledger {
	if config == nil {
		config = GetDefaultConfig()
	}
	if log == nil {
		log = logger.NewNullLogger()
	}
	if strip == nil {
		strip = sanitizer.NewHTMLStripper()
	}

	owner := config.OwnerAddress()
	l := &Ledger{
		address:     LedgerAddress(owner),
		owner:       owner,
		config:      config,
		markets:     reader,
		sanitizer:   strip,
		logger:      log,
		now:         time.Now,
		predictions: make(map[predictionKey]*models.Prediction),
		predictors:  make(map[common.Address][]common.Address),
		history:     make(map[common.Address][]common.Address),
		comments:    make(map[common.Address][]*models.Comment),
		votes:       make(map[voteKey]bool),
		resolved:    make(map[common.Address]bool),
		stats:       make(map[common.Address]*models.UserStats),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Address returns the ledger handle
func (l *Ledger) Address() common.Address { return l.address }

// Owner returns the ledger owner, or the zero address once renounced
func (l *Ledger) Owner() common.Address {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.owner
}

// MakePrediction records user's guess on an active market. One per market.
func (l *Ledger) MakePrediction(_ context.Context, user, market common.Address, outcome, confidence int, metadataURI string) (*models.Prediction, error) {
	if user == (common.Address{}) {
		return nil, fmt.Errorf("%w: user is required", models.ErrInvalidParameters)
	}
	if confidence < 1 || confidence > 100 {
		return nil, fmt.Errorf("%w: confidence must be between 1 and 100", models.ErrInvalidParameters)
	}
	metadataURI, err := l.cleanMetadata(metadataURI, false)
	if err != nil {
		return nil, err
	}

	info, err := l.markets.MarketInfo(market)
	if err != nil {
		return nil, err
	}
	if !info.IsActive() {
		return nil, fmt.Errorf("%w: market %s is %s", models.ErrMarketNotActive, market.Hex(), info.Status)
	}
	if outcome < 0 || outcome >= info.NumOutcomes {
		return nil, fmt.Errorf("%w: outcome %d out of range", models.ErrInvalidParameters, outcome)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// the market may have resolved since the lookup
	if l.resolved[market] {
		return nil, fmt.Errorf("%w: market %s is %s", models.ErrMarketNotActive, market.Hex(), models.MarketStatusResolved)
	}

	key := predictionKey{user: user, market: market}
	if _, ok := l.predictions[key]; ok {
		return nil, fmt.Errorf("%w: %s on %s", models.ErrAlreadyPredicted, user.Hex(), market.Hex())
	}

	p := &models.Prediction{
		User:             user,
		Market:           market,
		PredictedOutcome: outcome,
		Confidence:       confidence,
		MetadataURI:      metadataURI,
		Timestamp:        l.now(),
	}
	l.predictions[key] = p
	l.predictors[market] = append(l.predictors[market], user)
	l.history[user] = append(l.history[user], market)
	l.statsFor(user).TotalPredictions++
	l.rank()

	out := *p
	return &out, nil
}

// PostComment appends a comment to a market's thread
func (l *Ledger) PostComment(_ context.Context, author, market common.Address, metadataURI string) (*models.Comment, error) {
	if author == (common.Address{}) {
		return nil, fmt.Errorf("%w: author is required", models.ErrInvalidParameters)
	}
	metadataURI, err := l.cleanMetadata(metadataURI, true)
	if err != nil {
		return nil, err
	}
	if _, err := l.markets.MarketInfo(market); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	c := &models.Comment{
		ID:          uint64(len(l.comments[market])),
		Author:      author,
		Market:      market,
		MetadataURI: metadataURI,
		Timestamp:   l.now(),
	}
	l.comments[market] = append(l.comments[market], c)

	out := *c
	return &out, nil
}

// VoteOnComment counts one vote per voter on a comment
func (l *Ledger) VoteOnComment(_ context.Context, voter, market common.Address, commentID uint64, isUpvote bool) error {
	if voter == (common.Address{}) {
		return fmt.Errorf("%w: voter is required", models.ErrInvalidParameters)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	thread := l.comments[market]
	if commentID >= uint64(len(thread)) {
		return fmt.Errorf("%w: comment %d on %s", models.ErrCommentNotFound, commentID, market.Hex())
	}
	key := voteKey{voter: voter, market: market, comment: commentID}
	if l.votes[key] {
		return fmt.Errorf("%w: %s on comment %d", models.ErrAlreadyVoted, voter.Hex(), commentID)
	}

	l.votes[key] = true
	if isUpvote {
		thread[commentID].Upvotes++
	} else {
		thread[commentID].Downvotes++
	}
	return nil
}

// UpdatePredictionResult scores one prediction by hand and records its
// profit. Owner only; used when a resolution event was missed.
func (l *Ledger) UpdatePredictionResult(_ context.Context, caller, user, market common.Address, winningOutcome int, profit decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.isOwner(caller) {
		return fmt.Errorf("%w: only the ledger owner can update results", models.ErrUnauthorized)
	}
	p, ok := l.predictions[predictionKey{user: user, market: market}]
	if !ok {
		return fmt.Errorf("%w: no prediction by %s on %s", models.ErrRecordNotFound, user.Hex(), market.Hex())
	}
	if p.Scored {
		return fmt.Errorf("%w: prediction already scored", models.ErrInvalidParameters)
	}

	l.score(p, winningOutcome)
	l.recordProfit(user, profit)
	l.rank()
	return nil
}

// OnMarketEvent scores predictions when a market resolves and books profit
// or loss when a holder claims.
func (l *Ledger) OnMarketEvent(_ context.Context, e markets.Event) {
	switch e.Kind {
	case markets.EventResolved:
		l.mu.Lock()
		l.resolved[e.Market] = true
		scored := 0
		for _, user := range l.predictors[e.Market] {
			p := l.predictions[predictionKey{user: user, market: e.Market}]
			if p.Scored {
				continue
			}
			l.score(p, e.Outcome)
			scored++
		}
		l.rank()
		l.mu.Unlock()

		l.logger.Info("predictions scored", map[string]interface{}{
			"market":  e.Market.Hex(),
			"outcome": e.Outcome,
			"scored":  scored,
		})
	case markets.EventClaimed:
		l.mu.Lock()
		l.recordProfit(e.Actor, e.Amount.Sub(e.CostBasis))
		l.mu.Unlock()
	}
}

// score must be called with l.mu held.
func (l *Ledger) score(p *models.Prediction, winningOutcome int) {
	p.Scored = true
	p.Correct = p.PredictedOutcome == winningOutcome

	s := l.statsFor(p.User)
	if p.Correct {
		s.CorrectPredictions++
		s.Reputation += l.config.CorrectReward + uint64(p.Confidence)/l.config.ConfidenceDivisor
		if s.Streak < 0 {
			s.Streak = 0
		}
		s.Streak++
		return
	}

	if s.Reputation > l.config.WrongPenalty {
		s.Reputation -= l.config.WrongPenalty
	} else {
		s.Reputation = 0
	}
	if s.Streak > 0 {
		s.Streak = 0
	}
	s.Streak--
}

func (l *Ledger) recordProfit(user common.Address, profit decimal.Decimal) {
	s := l.statsFor(user)
	if profit.IsNegative() {
		s.TotalLoss = s.TotalLoss.Add(profit.Neg())
		return
	}
	s.TotalProfit = s.TotalProfit.Add(profit)
}

func (l *Ledger) statsFor(user common.Address) *models.UserStats {
	s, ok := l.stats[user]
	if !ok {
		s = &models.UserStats{TotalProfit: decimal.Zero, TotalLoss: decimal.Zero}
		l.stats[user] = s
	}
	return s
}

// rank rebuilds the bounded leaderboard: reputation desc, then correct
// predictions desc, then address asc. Only predictors are ranked.
func (l *Ledger) rank() {
	users := make([]common.Address, 0, len(l.stats))
	for user, s := range l.stats {
		if s.TotalPredictions > 0 {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		a, b := l.stats[users[i]], l.stats[users[j]]
		if a.Reputation != b.Reputation {
			return a.Reputation > b.Reputation
		}
		if a.CorrectPredictions != b.CorrectPredictions {
			return a.CorrectPredictions > b.CorrectPredictions
		}
		return bytes.Compare(users[i][:], users[j][:]) < 0
	})
	if len(users) > l.config.MaxLeaderboardSize {
		users = users[:l.config.MaxLeaderboardSize]
	}
	l.leaderboard = users
}

func (l *Ledger) cleanMetadata(raw string, required bool) (string, error) {
	clean := l.sanitizer.StripHTML(raw)
	if required && !validator.NotBlank(clean) {
		return "", fmt.Errorf("%w: metadata URI is required", models.ErrInvalidParameters)
	}
	if !validator.MaxRunes(clean, l.config.MaxMetadataLength) {
		return "", fmt.Errorf("%w: metadata URI longer than %d characters", models.ErrInvalidParameters, l.config.MaxMetadataLength)
	}
	return clean, nil
}

// TransferOwnership hands the ledger to another owner
func (l *Ledger) TransferOwnership(_ context.Context, caller, newOwner common.Address) error {
	if newOwner == (common.Address{}) {
		return fmt.Errorf("%w: new owner is the zero address", models.ErrInvalidParameters)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.isOwner(caller) {
		return fmt.Errorf("%w: caller is not the ledger owner", models.ErrUnauthorized)
	}
	l.owner = newOwner
	return nil
}

// RenounceOwnership leaves the ledger without an owner
func (l *Ledger) RenounceOwnership(_ context.Context, caller common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.isOwner(caller) {
		return fmt.Errorf("%w: caller is not the ledger owner", models.ErrUnauthorized)
	}
	l.owner = common.Address{}
	l.logger.Warn("social ledger ownership renounced", nil)
	return nil
}

func (l *Ledger) isOwner(caller common.Address) bool {
	return l.owner != (common.Address{}) && caller == l.owner
}
