package core

// filter.go backs the processor list page. Filtering happens over pages
// read from Store.List, so it works the same on every backend.

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"unicode"
)

// ListPageSize is the page size used when walking the whole table.
const ListPageSize = 1000

// ProcessorFilter selects records by exact field values. Zero-valued
// fields match everything.
type ProcessorFilter struct {
	Year        string
	Status      string
	CodeName    string
	Cores       *int32
	Threads     *int32
	Lithography *float64
}

// Match reports whether rec satisfies every set field of f.
func (f ProcessorFilter) Match(rec ProcessorRecord) bool {
	if f.Year != "" && ReleaseYear(rec.ReleaseDate) != f.Year {
		return false
	}
	if f.Status != "" && (rec.Status == nil || *rec.Status != f.Status) {
		return false
	}
	if f.CodeName != "" && (rec.CodeName == nil || *rec.CodeName != f.CodeName) {
		return false
	}
	if f.Cores != nil && (rec.Cores == nil || *rec.Cores != *f.Cores) {
		return false
	}
	if f.Threads != nil && (rec.Threads == nil || *rec.Threads != *f.Threads) {
		return false
	}
	if f.Lithography != nil && (rec.Lithography == nil || *rec.Lithography != *f.Lithography) {
		return false
	}
	return true
}

// ReleaseYear extracts a four-digit year from an Intel release date.
// "Q1'12" gives "2012", "2021" and "Q3 2021" give "2021". Anything else
// gives "".
func ReleaseYear(date *string) string {
	if date == nil {
		return ""
	}
	s := strings.TrimSpace(*date)

	if len(s) >= 4 && allDigits(s[len(s)-4:]) {
		return s[len(s)-4:]
	}
	if i := strings.LastIndexByte(s, '\''); i >= 0 && len(s)-i == 3 && allDigits(s[i+1:]) {
		return "20" + s[i+1:]
	}
	return ""
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

// FilterOptions lists the distinct values offered by each filter.
type FilterOptions struct {
	Years         []string
	Statuses      []string
	CodeNames     []string
	Cores         []int32
	Threads       []int32
	Lithographies []float64
}

// optionSet collects distinct values in sorted order.
type optionSet[T cmp.Ordered] map[T]struct{}

func (s optionSet[T]) add(v T) { s[v] = struct{}{} }

func (s optionSet[T]) sorted() []T {
	out := make([]T, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Browse is the result of filtering the whole table.
type Browse struct {
	Matches []ProcessorRecord
	Total   int
	Options FilterOptions
}

// BrowseProcessors walks every record, keeping the ones f matches and the
// distinct values of each filterable field. At most limit matches are
// kept; Total still counts every record.
func BrowseProcessors(ctx context.Context, store Store, f ProcessorFilter, limit int) (Browse, error) {
	var (
		b        Browse
		years    = optionSet[string]{}
		statuses = optionSet[string]{}
		codes    = optionSet[string]{}
		cores    = optionSet[int32]{}
		threads  = optionSet[int32]{}
		litho    = optionSet[float64]{}
	)

	total, err := EachPage(ctx, store, ListPageSize, func(page []ProcessorRecord) error {
		for _, rec := range page {
			if y := ReleaseYear(rec.ReleaseDate); y != "" {
				years.add(y)
			}
			if rec.Status != nil && *rec.Status != "" {
				statuses.add(*rec.Status)
			}
			if rec.CodeName != nil && *rec.CodeName != "" {
				codes.add(*rec.CodeName)
			}
			if rec.Cores != nil {
				cores.add(*rec.Cores)
			}
			if rec.Threads != nil {
				threads.add(*rec.Threads)
			}
			if rec.Lithography != nil {
				litho.add(*rec.Lithography)
			}
			if len(b.Matches) < limit && f.Match(rec) {
				b.Matches = append(b.Matches, rec)
			}
		}
		return nil
	})
	if err != nil {
		return Browse{}, err
	}

	b.Total = total
	b.Options = FilterOptions{
		Years:         years.sorted(),
		Statuses:      statuses.sorted(),
		CodeNames:     codes.sorted(),
		Cores:         cores.sorted(),
		Threads:       threads.sorted(),
		Lithographies: litho.sorted(),
	}
	return b, nil
}

// EachPage calls fn with successive pages of records in id order and
// returns the number of records seen.
func EachPage(ctx context.Context, store Store, pageSize int, fn func([]ProcessorRecord) error) (int, error) {
	total := 0
	for {
		page, err := store.List(ctx, total, pageSize)
		if err != nil {
			return total, err
		}
		if len(page) == 0 {
			return total, nil
		}
		if err := fn(page); err != nil {
			return total, err
		}
		total += len(page)
		if len(page) < pageSize {
			return total, nil
		}
	}
}
