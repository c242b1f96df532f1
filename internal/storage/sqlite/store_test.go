package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/JonMunkholm/procspec/internal/core"
	"github.com/JonMunkholm/procspec/internal/storage/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) core.Store {
	t.Helper()

	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "processors.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.EnsureSchema(context.Background()))
	return s
}

func TestStoreConformance(t *testing.T) {
	storetest.Run(t, newTestStore)
}

func TestOpen_InMemory(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.EnsureSchema(ctx))
	got, err := s.Create(ctx, storetest.Xeon())
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
}

func TestArgs_DereferencesNullable(t *testing.T) {
	rec := storetest.Xeon()
	rec.Status = nil

	vals := args(rec)
	require.Len(t, vals, len(core.Columns()))
	assert.Equal(t, "Intel Xeon E5-2690", vals[0])
	assert.Nil(t, vals[1])
	assert.Equal(t, int64(8), vals[4])
	assert.Equal(t, 3.8, vals[7])
}

func TestTranslate(t *testing.T) {
	assert.ErrorIs(t, translate("get", sql.ErrNoRows), core.ErrNotFound)
	assert.ErrorIs(t, translate("get", context.DeadlineExceeded), context.DeadlineExceeded)
	assert.True(t, core.IsTransient(translate("get", context.DeadlineExceeded)))
	assert.Nil(t, translate("get", nil))
}
