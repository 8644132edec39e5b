package journal

import (
	"context"

	"github.com/joefazee/categorical/models"
)

// Filter narrows a journal listing. Empty fields match everything.
type Filter struct {
	Source  models.JournalSource
	Subject string
	Actor   string
	Kind    string
	Offset  int
	Limit   int
}

// Repository persists journal entries
type Repository interface {
	CreateBatch(ctx context.Context, entries []*models.JournalEntry) error
	List(ctx context.Context, filter Filter) ([]models.JournalEntry, int64, error)
}

// Service defines the journal reads exposed over HTTP
type Service interface {
	List(ctx context.Context, filter Filter) ([]models.JournalEntry, int64, error)
}
