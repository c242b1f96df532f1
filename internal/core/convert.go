package core

// convert.go turns raw spreadsheet cells into typed values.
//
// The processor CSVs mix several conventions for the same column:
//   - "N/A", "NA", "NULL" or an empty cell for unknown values
//   - unit suffixes on numbers ("3.50 GHz", "14 nm", "45W")
//   - integers written as floats ("8.0")
//
// All conversions are total: a cell that cannot be read yields an
// invalid Value rather than an error, so one bad cell never rejects a row.

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// FieldType is the target type of a schema column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldInt
	FieldFloat
)

func (t FieldType) String() string {
	switch t {
	case FieldInt:
		return "integer"
	case FieldFloat:
		return "float"
	default:
		return "text"
	}
}

// Value is a normalized cell. Valid is false for null.
type Value struct {
	Type  FieldType
	Valid bool
	Text  string
	Int   int32
	Float float64
}

// sentinels are the tokens that mean "no data", compared case-insensitively.
var sentinels = map[string]struct{}{
	"":     {},
	"n/a":  {},
	"na":   {},
	"null": {},
	`""`:   {},
}

// unitSuffixes are stripped from numeric cells. Longer suffixes come first so
// "MHz" is not mistaken for a bare unit ending in "Hz".
var unitSuffixes = []string{"ghz", "mhz", "nm", "mb", "gb", "w"}

// IsSentinel reports whether raw denotes a missing value.
func IsSentinel(raw string) bool {
	_, ok := sentinels[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// Normalize converts raw to the given type.
func Normalize(raw string, t FieldType) Value {
	if IsSentinel(raw) {
		return Value{Type: t}
	}

	switch t {
	case FieldInt:
		f, ok := parseNumber(raw)
		if !ok {
			return Value{Type: t}
		}
		f = math.Trunc(f)
		if f > math.MaxInt32 || f < math.MinInt32 {
			return Value{Type: t}
		}
		return Value{Type: t, Valid: true, Int: int32(f)}

	case FieldFloat:
		f, ok := parseNumber(raw)
		if !ok {
			return Value{Type: t}
		}
		return Value{Type: t, Valid: true, Float: f}

	default:
		return Value{Type: t, Valid: true, Text: strings.TrimSpace(raw)}
	}
}

// ToText normalizes raw as a nullable string.
func ToText(raw string) *string {
	v := Normalize(raw, FieldText)
	if !v.Valid {
		return nil
	}
	return &v.Text
}

// ToInt normalizes raw as a nullable integer.
func ToInt(raw string) *int32 {
	v := Normalize(raw, FieldInt)
	if !v.Valid {
		return nil
	}
	return &v.Int
}

// ToFloat normalizes raw as a nullable float.
func ToFloat(raw string) *float64 {
	v := Normalize(raw, FieldFloat)
	if !v.Valid {
		return nil
	}
	return &v.Float
}

// StripUnit removes one recognized unit suffix and surrounding whitespace.
func StripUnit(raw string) string {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)
	for _, unit := range unitSuffixes {
		if strings.HasSuffix(lower, unit) {
			return strings.TrimSpace(s[:len(s)-len(unit)])
		}
	}
	return s
}

// parseNumber reads a finite decimal number after unit stripping.
func parseNumber(raw string) (float64, bool) {
	s := StripUnit(raw)
	if s == "" {
		return 0, false
	}
	f, err := cast.ToFloat64E(s)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// CleanCell removes common CSV artifacts from a header label:
// surrounding whitespace, the Excel formula prefix (="...") and quotes.
// Data cells use DataCell instead.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

// DataCell trims a data cell. Quotes and a leading '=' are part of the
// value, except for an Excel text wrapper ="..." enclosing the whole cell.
func DataCell(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 3 && strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		return s[2 : len(s)-1]
	}
	return s
}
