package journal

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/joefazee/categorical/app/collateral"
	"github.com/joefazee/categorical/app/markets"
	"github.com/joefazee/categorical/internal/logger"
	"github.com/joefazee/categorical/models"
)

// Recorder turns committed market and token events into journal entries.
// Entries are queued and written behind by Run so listeners never block on
// storage; a full queue drops the entry and counts it, as does an entry
// that arrives after Run has stopped.
type Recorder struct {
	repo      Repository
	logger    logger.Logger
	queue     chan *models.JournalEntry
	batchSize int
	dropped   atomic.Uint64

	// mu orders enqueues against the stop in Run
	mu      sync.RWMutex
	stopped bool
}

var (
	_ markets.Listener    = (*Recorder)(nil)
	_ collateral.Listener = (*Recorder)(nil)
)

// NewRecorder creates a recorder writing to repo
func NewRecorder(config *Config, repo Repository, log logger.Logger) *Recorder {
	if config == nil {
		config = GetDefaultConfig()
	}
	if log == nil {
		log = logger.NewNullLogger()
	}
	return &Recorder{
		repo:      repo,
		logger:    log,
		queue:     make(chan *models.JournalEntry, config.BufferSize),
		batchSize: config.BatchSize,
	}
}

// OnMarketEvent queues a market operation
func (r *Recorder) OnMarketEvent(_ context.Context, e markets.Event) {
	entry := &models.JournalEntry{
		Source:     models.JournalSourceMarket,
		Kind:       string(e.Kind),
		Subject:    e.Market.Hex(),
		Actor:      e.Actor.Hex(),
		Shares:     e.Shares,
		Amount:     e.Amount,
		Fee:        e.Fee,
		OccurredAt: e.At,
	}
	if e.Outcome != models.NoWinner {
		outcome := e.Outcome
		entry.Outcome = &outcome
	}
	r.enqueue(entry)
}

// OnTokenEvent queues a token operation
func (r *Recorder) OnTokenEvent(_ context.Context, e collateral.Event) {
	r.enqueue(&models.JournalEntry{
		Source:       models.JournalSourceToken,
		Kind:         string(e.Kind),
		Subject:      e.Token.Hex(),
		Actor:        e.From.Hex(),
		Counterparty: e.To.Hex(),
		Amount:       e.Amount,
		OccurredAt:   e.At,
	})
}

// Dropped returns how many entries were discarded on a full queue or after stop
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

func (r *Recorder) enqueue(entry *models.JournalEntry) {
	if err := entry.Validate(); err != nil {
		r.logger.Error(err, map[string]interface{}{"kind": entry.Kind, "subject": entry.Subject})
		return
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.stopped {
		r.drop(entry, "journal stopped, entry dropped")
		return
	}
	select {
	case r.queue <- entry:
	default:
		r.drop(entry, "journal queue full, entry dropped")
	}
}

func (r *Recorder) drop(entry *models.JournalEntry, msg string) {
	r.dropped.Add(1)
	r.logger.Warn(msg, map[string]interface{}{
		"kind":    entry.Kind,
		"subject": entry.Subject,
	})
}

// Run writes queued entries in batches until ctx is cancelled, then drains
// whatever is still queued and returns.
func (r *Recorder) Run(ctx context.Context) error {
	batch := make([]*models.JournalEntry, 0, r.batchSize)
	for {
		select {
		case <-ctx.Done():
			r.mu.Lock()
			r.stopped = true
			r.mu.Unlock()
			r.drain(context.WithoutCancel(ctx), batch)
			return nil
		case entry := <-r.queue:
			batch = r.fill(append(batch, entry))
			r.flush(ctx, batch)
			batch = batch[:0]
		}
	}
}

// fill tops the batch up from the queue without blocking
func (r *Recorder) fill(batch []*models.JournalEntry) []*models.JournalEntry {
	for len(batch) < r.batchSize {
		select {
		case entry := <-r.queue:
			batch = append(batch, entry)
		default:
			return batch
		}
	}
	return batch
}

func (r *Recorder) drain(ctx context.Context, batch []*models.JournalEntry) {
	for {
		batch = r.fill(batch)
		if len(batch) == 0 {
			return
		}
		r.flush(ctx, batch)
		batch = batch[:0]
	}
}

func (r *Recorder) flush(ctx context.Context, batch []*models.JournalEntry) {
	if len(batch) == 0 {
		return
	}
	// repositories may retain the slice
	out := make([]*models.JournalEntry, len(batch))
	copy(out, batch)
	if err := r.repo.CreateBatch(ctx, out); err != nil {
		r.logger.Error(err, map[string]interface{}{"entries": len(out)})
	}
}
