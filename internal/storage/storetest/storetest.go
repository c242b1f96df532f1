// Package storetest holds behavior tests shared by every core.Store
// implementation.
package storetest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/JonMunkholm/procspec/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store with its schema in place. The store is
// closed by the test through t.Cleanup.
type Factory func(t *testing.T) core.Store

func strPtr(s string) *string     { return &s }
func intPtr(n int32) *int32       { return &n }
func floatPtr(f float64) *float64 { return &f }

// Xeon returns the reference record used across store tests.
func Xeon() core.ProcessorRecord {
	return core.ProcessorRecord{
		Product:      "Intel Xeon E5-2690",
		Status:       strPtr("Launched"),
		ReleaseDate:  strPtr("Q1'12"),
		CodeName:     strPtr("Sandy Bridge EP"),
		Cores:        intPtr(8),
		Threads:      intPtr(16),
		Lithography:  floatPtr(32),
		MaxTurboFreq: floatPtr(3.8),
		BaseFreq:     floatPtr(2.9),
		TDP:          intPtr(135),
		Cache:        floatPtr(20),
		CacheInfo:    strPtr("Intel Smart Cache"),
	}
}

// Run executes the conformance suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("CreateAssignsID", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		got, err := s.Create(ctx, Xeon())
		require.NoError(t, err)
		assert.Positive(t, got.ID)

		fetched, err := s.GetByID(ctx, got.ID)
		require.NoError(t, err)
		assert.Equal(t, got, fetched)
	})

	t.Run("CreatePreservesNulls", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		got, err := s.Create(ctx, core.ProcessorRecord{Product: "Intel Core i3-1005G1"})
		require.NoError(t, err)

		fetched, err := s.GetByID(ctx, got.ID)
		require.NoError(t, err)
		assert.Equal(t, "Intel Core i3-1005G1", fetched.Product)
		assert.Nil(t, fetched.TDP)
		assert.Nil(t, fetched.Status)
		assert.Nil(t, fetched.Cache)
	})

	t.Run("CreateRejectsLongProduct", func(t *testing.T) {
		s := newStore(t)
		rec := Xeon()
		rec.Product = strings.Repeat("x", core.MaxTextLength+1)

		_, err := s.Create(context.Background(), rec)
		require.Error(t, err)
		assert.True(t, core.IsValidation(err))
	})

	t.Run("GetByIDMissing", func(t *testing.T) {
		s := newStore(t)

		_, err := s.GetByID(context.Background(), 999999)
		assert.True(t, errors.Is(err, core.ErrNotFound))
	})

	t.Run("BulkCreateAllOrNothing", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		bad := Xeon()
		bad.Product = strings.Repeat("x", core.MaxTextLength+1)
		_, err := s.BulkCreate(ctx, []core.ProcessorRecord{Xeon(), bad})
		require.Error(t, err)
		assert.True(t, core.IsValidation(err))

		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		inserted, err := s.BulkCreate(ctx, []core.ProcessorRecord{Xeon(), Xeon(), Xeon()})
		require.NoError(t, err)
		assert.Equal(t, int64(3), inserted)

		n, err = s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("NegativeNumbersStored", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		rec := Xeon()
		rec.Cores = intPtr(-1)
		rec.Cache = floatPtr(-2.5)
		got, err := s.Create(ctx, rec)
		require.NoError(t, err)

		fetched, err := s.GetByID(ctx, got.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched.Cores)
		assert.Equal(t, int32(-1), *fetched.Cores)
		require.NotNil(t, fetched.Cache)
		assert.Equal(t, -2.5, *fetched.Cache)
	})

	t.Run("BulkCreateEmpty", func(t *testing.T) {
		s := newStore(t)

		n, err := s.BulkCreate(context.Background(), nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("ListPagination", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		var recs []core.ProcessorRecord
		for _, name := range []string{"A", "B", "C", "D", "E"} {
			recs = append(recs, core.ProcessorRecord{Product: name})
		}
		_, err := s.BulkCreate(ctx, recs)
		require.NoError(t, err)

		page, err := s.List(ctx, 1, 2)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "B", page[0].Product)
		assert.Equal(t, "C", page[1].Product)
		assert.Less(t, page[0].ID, page[1].ID)

		all, err := s.List(ctx, 0, 100)
		require.NoError(t, err)
		assert.Len(t, all, 5)

		empty, err := s.List(ctx, 10, 100)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("GetByNameFirstInsertWins", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		first := Xeon()
		second := Xeon()
		second.TDP = intPtr(150)
		_, err := s.BulkCreate(ctx, []core.ProcessorRecord{first, second})
		require.NoError(t, err)

		got, err := s.GetByName(ctx, "Intel Xeon E5-2690")
		require.NoError(t, err)
		require.NotNil(t, got.TDP)
		assert.Equal(t, int32(135), *got.TDP)
	})

	t.Run("GetByNameIsExact", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Create(ctx, Xeon())
		require.NoError(t, err)

		_, err = s.GetByName(ctx, "intel xeon e5-2690")
		assert.True(t, errors.Is(err, core.ErrNotFound))

		_, err = s.GetByName(ctx, "Intel Xeon")
		assert.True(t, errors.Is(err, core.ErrNotFound))
	})

	t.Run("EnsureSchemaIdempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Create(ctx, Xeon())
		require.NoError(t, err)
		require.NoError(t, s.EnsureSchema(ctx))

		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("Ping", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(context.Background()))
	})
}
