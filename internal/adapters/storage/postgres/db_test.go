package postgres

import (
	"database/sql"
	"errors"
	"testing"

	"pet-adoption-hub/internal/adapters/storage/postgres/migrations"
	"pet-adoption-hub/internal/platform/apperr"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	assert.NoError(t, classify("pet", "p1", nil))

	err := classify("pet", "p1", sql.ErrNoRows)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Contains(t, err.Error(), "p1")

	err = classify("favorite", "u/p", &pgconn.PgError{Code: uniqueViolation})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	other := errors.New("connection reset")
	assert.Equal(t, other, classify("pet", "p1", other))
}

func TestMigrationsAreEmbedded(t *testing.T) {
	entries, err := migrations.Migrations.ReadDir(".")
	assert.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "00001_init.sql", entries[0].Name())
}
