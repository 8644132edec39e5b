package journal

import (
	"context"

	"gorm.io/gorm"

	"github.com/joefazee/categorical/models"
)

// repository implements the Repository interface using GORM
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new postgres journal repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

// CreateBatch inserts entries in one statement
func (r *repository) CreateBatch(ctx context.Context, entries []*models.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

// List returns one page of entries, newest first, with the total match count
func (r *repository) List(ctx context.Context, filter Filter) ([]models.JournalEntry, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.JournalEntry
	err := r.filtered(ctx, filter).
		Order("occurred_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&entries).Error
	return entries, total, err
}

func (r *repository) filtered(ctx context.Context, filter Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.JournalEntry{})
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.Subject != "" {
		query = query.Where("subject = ?", filter.Subject)
	}
	if filter.Actor != "" {
		query = query.Where("actor = ?", filter.Actor)
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	return query
}
