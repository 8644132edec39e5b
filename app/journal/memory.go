package journal

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/joefazee/categorical/models"
)

// MemoryRepository keeps entries in process, for tests and single-node runs
type MemoryRepository struct {
	mu      sync.RWMutex
	entries []models.JournalEntry
}

// NewMemoryRepository creates an empty in-memory journal
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// CreateBatch appends entries
func (m *MemoryRepository) CreateBatch(_ context.Context, entries []*models.JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		m.entries = append(m.entries, *e)
	}
	return nil
}

// List returns one page of entries, newest first, with the total match count
func (m *MemoryRepository) List(_ context.Context, filter Filter) ([]models.JournalEntry, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []models.JournalEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if e := m.entries[i]; matches(e, filter) {
			matched = append(matched, e)
		}
	}

	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return []models.JournalEntry{}, total, nil
	}
	end := len(matched)
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}
	return matched[filter.Offset:end], total, nil
}

func matches(e models.JournalEntry, f Filter) bool {
	return (f.Source == "" || e.Source == f.Source) &&
		(f.Subject == "" || e.Subject == f.Subject) &&
		(f.Actor == "" || e.Actor == f.Actor) &&
		(f.Kind == "" || e.Kind == f.Kind)
}
