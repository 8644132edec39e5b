package database

import (
	"testing"

	"github.com/joefazee/categorical/models"
	"github.com/stretchr/testify/assert"
)

func TestConfig(t *testing.T) {
	full := Config{Host: "db", User: "engine", Password: "pw", Database: "categorical"}

	t.Run("empty is valid but unusable", func(t *testing.T) {
		var c Config
		assert.False(t, c.Configured())
		assert.NoError(t, c.Validate())

		_, err := New(&c)
		assert.ErrorIs(t, err, models.ErrDatabaseCredentialNotConfigured)
	})

	t.Run("partial is rejected", func(t *testing.T) {
		c := Config{Host: "db"}
		assert.ErrorIs(t, c.Validate(), models.ErrDatabaseCredentialNotConfigured)
	})

	t.Run("dsn", func(t *testing.T) {
		assert.NoError(t, full.Validate())
		assert.Equal(t, "host=db user=engine password=pw dbname=categorical port=5432 sslmode=disable", full.DSN())

		tls := full
		tls.UseSSL = true
		tls.Port = "6543"
		assert.Contains(t, tls.DSN(), "port=6543 sslmode=require")
	})
}
