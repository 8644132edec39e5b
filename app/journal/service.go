package journal

import (
	"context"
	"fmt"

	"github.com/joefazee/categorical/models"
)

type service struct {
	repo   Repository
	config *Config
}

// NewService creates a new journal read service
func NewService(repo Repository, config *Config) Service {
	if config == nil {
		config = GetDefaultConfig()
	}
	return &service{repo: repo, config: config}
}

// List clamps the page to the configured size before querying the store
func (s *service) List(ctx context.Context, filter Filter) ([]models.JournalEntry, int64, error) {
	if filter.Offset < 0 {
		return nil, 0, fmt.Errorf("%w: negative offset", models.ErrInvalidParameters)
	}
	if filter.Limit <= 0 || filter.Limit > s.config.MaxPageSize {
		filter.Limit = s.config.MaxPageSize
	}
	return s.repo.List(ctx, filter)
}
