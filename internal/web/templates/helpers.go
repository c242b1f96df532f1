// Package templates holds the templ components for the HTML pages.
package templates

import (
	"fmt"

	"github.com/JonMunkholm/procspec/internal/core"
	"github.com/spf13/cast"
)

// SelectOption is one choice of a filter dropdown.
type SelectOption struct {
	Value string
	Label string
}

// FilterSelect is a dropdown bound to query parameter Name.
type FilterSelect struct {
	Name     string
	AllLabel string
	Selected string
	Options  []SelectOption
}

// ProcessorListParams feeds the ProcessorList page.
type ProcessorListParams struct {
	Selects []FilterSelect
	Rows    []core.ProcessorRecord
	Total   int
	Limit   int
}

// Summary describes how many rows are shown.
func (p ProcessorListParams) Summary() string {
	if len(p.Rows) >= p.Limit && p.Limit > 0 {
		return fmt.Sprintf("Showing the first %d matching processors of %d", len(p.Rows), p.Total)
	}
	return fmt.Sprintf("Showing %d of %d processors", len(p.Rows), p.Total)
}

func isLaunched(status *string) bool {
	return status != nil && *status == "Launched"
}

func text(s *string) string {
	if s == nil {
		return "N/A"
	}
	return *s
}

func integer(n *int32, unit string) string {
	if n == nil {
		return "N/A"
	}
	return cast.ToString(*n) + unit
}

func decimal(f *float64, unit string) string {
	if f == nil {
		return "N/A"
	}
	return cast.ToString(*f) + unit
}
