package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/JonMunkholm/procspec/internal/core"
	"github.com/JonMunkholm/procspec/internal/storage/storetest"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore connects to TEST_DATABASE_URL and empties the table.
// Tests run sequentially against the shared database.
func newTestStore(t *testing.T) core.Store {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	s, err := Open(ctx, dsn, Options{MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.EnsureSchema(ctx))
	_, err = s.pool.Exec(ctx, "TRUNCATE processors RESTART IDENTITY")
	require.NoError(t, err)
	return s
}

func TestStoreConformance(t *testing.T) {
	storetest.Run(t, newTestStore)
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantNotFound  bool
		wantTransient bool
		wantInvalid   bool
	}{
		{"no rows", pgx.ErrNoRows, true, false, false},
		{"connection failure", &pgconn.PgError{Code: "08006"}, false, true, false},
		{"serialization", &pgconn.PgError{Code: "40001"}, false, true, false},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, false, true, false},
		{"string too long", &pgconn.PgError{Code: "22001", ColumnName: "product"}, false, false, true},
		{"not null", &pgconn.PgError{Code: "23502", ColumnName: "product"}, false, false, true},
		{"syntax error", &pgconn.PgError{Code: "42601"}, false, false, false},
		{"deadline", context.DeadlineExceeded, false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translate("op", tt.err)
			require.Error(t, err)
			assert.Equal(t, tt.wantNotFound, errors.Is(err, core.ErrNotFound))
			assert.Equal(t, tt.wantTransient, core.IsTransient(err))
			assert.Equal(t, tt.wantInvalid, core.IsValidation(err))
		})
	}

	assert.NoError(t, translate("op", nil))
}

func TestNew_BuildsStatements(t *testing.T) {
	s := New(nil)
	assert.Contains(t, s.insertSQL, "INSERT INTO processors (product, status")
	assert.Contains(t, s.insertSQL, "$16)")
	assert.Contains(t, s.insertSQL, "RETURNING id, product")
}
