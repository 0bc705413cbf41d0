package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_InvalidConnString(t *testing.T) {
	_, err := NewDB(context.Background(), "not-a-dsn://%%")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create connection pool")
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "0001_create_run_history.sql", entries[0].Name())
}
