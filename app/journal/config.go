package journal

import (
	"github.com/joefazee/categorical/models"
)

// Journal store backends
const (
	MemoryBackend   = "memory"
	PostgresBackend = "postgres"
)

// Config represents the configuration for the journal
type Config struct {
	Backend     string `env:"JOURNAL_BACKEND"`
	BufferSize  int    `env:"JOURNAL_BUFFER_SIZE"`
	BatchSize   int    `env:"JOURNAL_BATCH_SIZE"`
	MaxPageSize int    `env:"JOURNAL_MAX_PAGE_SIZE"`
}

// Validate validates the journal configuration
func (c *Config) Validate() error {
	if c.Backend != MemoryBackend && c.Backend != PostgresBackend {
		return models.ErrInvalidJournalBackend
	}
	if c.BufferSize <= 0 || c.BatchSize <= 0 {
		return models.ErrInvalidJournalBuffer
	}
	if c.MaxPageSize <= 0 {
		return models.ErrInvalidPageSize
	}
	return nil
}

// GetDefaultConfig returns the default configuration
func GetDefaultConfig() *Config {
	return &Config{
		Backend:     MemoryBackend,
		BufferSize:  1024,
		BatchSize:   64,
		MaxPageSize: 100,
	}
}
