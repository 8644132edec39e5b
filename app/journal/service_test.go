package journal

import (
	"context"
	"testing"

	"github.com/joefazee/categorical/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestServiceList(t *testing.T) {
	ctx := context.Background()
	cfg := GetDefaultConfig()
	cfg.MaxPageSize = 10

	tests := []struct {
		name      string
		filter    Filter
		wantLimit int
	}{
		{name: "zero limit uses page size", filter: Filter{}, wantLimit: 10},
		{name: "oversized limit is clamped", filter: Filter{Limit: 500}, wantLimit: 10},
		{name: "limit within bounds", filter: Filter{Limit: 3, Offset: 2}, wantLimit: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			want := tt.filter
			want.Limit = tt.wantLimit
			repo.On("List", mock.Anything, want).Return([]models.JournalEntry{}, int64(0), nil)

			_, _, err := NewService(repo, cfg).List(ctx, tt.filter)
			require.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}

	t.Run("negative offset", func(t *testing.T) {
		repo := new(MockRepository)
		_, _, err := NewService(repo, cfg).List(ctx, Filter{Offset: -1})
		assert.ErrorIs(t, err, models.ErrInvalidParameters)
		repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("store errors pass through", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("List", mock.Anything, mock.Anything).Return(nil, int64(0), assert.AnError)
		_, _, err := NewService(repo, nil).List(ctx, Filter{})
		assert.ErrorIs(t, err, assert.AnError)
	})
}
