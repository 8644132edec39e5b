package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// JournalSource identifies which ledger produced a journal entry
type JournalSource string

const (
	JournalSourceMarket JournalSource = "market"
	JournalSourceToken  JournalSource = "token"
)

// JournalEntry is one committed engine operation, recorded for audit.
type JournalEntry struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Source       JournalSource   `gorm:"type:varchar(16);not null;index" json:"source"`
	Kind         string          `gorm:"type:varchar(32);not null" json:"kind"`
	Subject      string          `gorm:"type:varchar(42);not null;index" json:"subject"`
	Actor        string          `gorm:"type:varchar(42);not null;index" json:"actor"`
	Counterparty string          `gorm:"type:varchar(42)" json:"counterparty,omitempty"`
	Outcome      *int            `json:"outcome,omitempty"`
	Shares       decimal.Decimal `gorm:"type:numeric(78,18)" json:"shares"`
	Amount       decimal.Decimal `gorm:"type:numeric(78,18)" json:"amount"`
	Fee          decimal.Decimal `gorm:"type:numeric(78,18)" json:"fee"`
	OccurredAt   time.Time       `gorm:"not null;index" json:"occurred_at"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for JournalEntry model
func (*JournalEntry) TableName() string {
	return "journal_entries"
}

// BeforeCreate sets up the model before creation
func (j *JournalEntry) BeforeCreate(_ *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// Validate checks the entry before it is written
func (j *JournalEntry) Validate() error {
	if j.Source != JournalSourceMarket && j.Source != JournalSourceToken {
		return ErrInvalidJournalSource
	}
	if strings.TrimSpace(j.Kind) == "" {
		return ErrInvalidJournalKind
	}
	if j.Shares.IsNegative() || j.Amount.IsNegative() || j.Fee.IsNegative() {
		return ErrInvalidParameters
	}
	return nil
}
