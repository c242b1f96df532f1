package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string   { return &s }
func i32(n int32) *int32     { return &n }
func f64(f float64) *float64 { return &f }

func catalog() []ProcessorRecord {
	return []ProcessorRecord{
		{Product: "Intel Xeon E5-2690", Status: str("Launched"), ReleaseDate: str("Q1'12"), CodeName: str("Sandy Bridge EP"), Cores: i32(8), Threads: i32(16), Lithography: f64(32)},
		{Product: "Intel Core i7-8700K", Status: str("Launched"), ReleaseDate: str("Q4'17"), CodeName: str("Coffee Lake"), Cores: i32(6), Threads: i32(12), Lithography: f64(14)},
		{Product: "Intel Core i5-8400", Status: str("Discontinued"), ReleaseDate: str("Q4'17"), CodeName: str("Coffee Lake"), Cores: i32(6), Threads: i32(6), Lithography: f64(14)},
		{Product: "Intel Core i3-1005G1"},
	}
}

func TestReleaseYear(t *testing.T) {
	tests := []struct {
		input *string
		want  string
	}{
		{nil, ""},
		{str("Q1'12"), "2012"},
		{str("Q3 2021"), "2021"},
		{str("2019"), "2019"},
		{str("  Q2'09 "), "2009"},
		{str("Launched"), ""},
		{str("Q1'2"), ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ReleaseYear(tt.input), "ReleaseYear(%v)", tt.input)
	}
}

func TestProcessorFilter_Match(t *testing.T) {
	tests := []struct {
		name   string
		filter ProcessorFilter
		want   []string
	}{
		{"empty matches all", ProcessorFilter{}, []string{"Intel Xeon E5-2690", "Intel Core i7-8700K", "Intel Core i5-8400", "Intel Core i3-1005G1"}},
		{"year", ProcessorFilter{Year: "2017"}, []string{"Intel Core i7-8700K", "Intel Core i5-8400"}},
		{"status", ProcessorFilter{Status: "Discontinued"}, []string{"Intel Core i5-8400"}},
		{"code name", ProcessorFilter{CodeName: "Coffee Lake"}, []string{"Intel Core i7-8700K", "Intel Core i5-8400"}},
		{"cores and threads", ProcessorFilter{Cores: i32(6), Threads: i32(12)}, []string{"Intel Core i7-8700K"}},
		{"lithography", ProcessorFilter{Lithography: f64(32)}, []string{"Intel Xeon E5-2690"}},
		{"null never matches a set filter", ProcessorFilter{Status: "Launched", Cores: i32(2)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, rec := range catalog() {
				if tt.filter.Match(rec) {
					got = append(got, rec.Product)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBrowseProcessors(t *testing.T) {
	store := &memStore{}
	_, err := store.BulkCreate(context.Background(), catalog())
	require.NoError(t, err)

	b, err := BrowseProcessors(context.Background(), store, ProcessorFilter{CodeName: "Coffee Lake"}, 100)
	require.NoError(t, err)

	assert.Equal(t, 4, b.Total)
	require.Len(t, b.Matches, 2)
	assert.Equal(t, "Intel Core i7-8700K", b.Matches[0].Product)

	assert.Equal(t, []string{"2012", "2017"}, b.Options.Years)
	assert.Equal(t, []string{"Discontinued", "Launched"}, b.Options.Statuses)
	assert.Equal(t, []string{"Coffee Lake", "Sandy Bridge EP"}, b.Options.CodeNames)
	assert.Equal(t, []int32{6, 8}, b.Options.Cores)
	assert.Equal(t, []int32{6, 12, 16}, b.Options.Threads)
	assert.Equal(t, []float64{14, 32}, b.Options.Lithographies)
}

func TestBrowseProcessors_LimitKeepsTotal(t *testing.T) {
	store := &memStore{}
	var recs []ProcessorRecord
	for i := range 2500 {
		recs = append(recs, ProcessorRecord{Product: fmt.Sprintf("p%d", i)})
	}
	_, err := store.BulkCreate(context.Background(), recs)
	require.NoError(t, err)

	b, err := BrowseProcessors(context.Background(), store, ProcessorFilter{}, 10)
	require.NoError(t, err)
	assert.Len(t, b.Matches, 10)
	assert.Equal(t, 2500, b.Total, "every page is read")
}

func TestEachPage_StopsOnError(t *testing.T) {
	store := &memStore{}
	_, err := store.BulkCreate(context.Background(), catalog())
	require.NoError(t, err)

	boom := errors.New("boom")
	calls := 0
	_, err = EachPage(context.Background(), store, 1, func([]ProcessorRecord) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
