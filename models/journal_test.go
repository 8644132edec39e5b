package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestJournalEntry(t *testing.T) {
	t.Run("TableName", func(t *testing.T) {
		j := JournalEntry{}
		assert.Equal(t, "journal_entries", j.TableName())
	})

	t.Run("BeforeCreate", func(t *testing.T) {
		j := JournalEntry{}
		assert.Equal(t, uuid.Nil, j.ID)

		err := j.BeforeCreate(nil)
		assert.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, j.ID)

		existingID := uuid.New()
		j2 := JournalEntry{ID: existingID}
		err = j2.BeforeCreate(nil)
		assert.NoError(t, err)
		assert.Equal(t, existingID, j2.ID)
	})

	t.Run("Validate", func(t *testing.T) {
		valid := JournalEntry{
			Source: JournalSourceMarket,
			Kind:   "traded",
			Amount: decimal.NewFromInt(10),
		}
		assert.NoError(t, valid.Validate())

		tests := []struct {
			name   string
			modify func(*JournalEntry)
			err    error
		}{
			{"Unknown source", func(j *JournalEntry) { j.Source = "wallet" }, ErrInvalidJournalSource},
			{"Blank kind", func(j *JournalEntry) { j.Kind = "  " }, ErrInvalidJournalKind},
			{"Negative amount", func(j *JournalEntry) { j.Amount = decimal.NewFromInt(-1) }, ErrInvalidParameters},
			{"Negative fee", func(j *JournalEntry) { j.Fee = decimal.NewFromInt(-1) }, ErrInvalidParameters},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				entry := valid
				tt.modify(&entry)
				assert.Equal(t, tt.err, entry.Validate())
			})
		}
	})
}
