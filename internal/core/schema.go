package core

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cast"
)

// MaxTextLength bounds the VARCHAR columns of the processors table.
const MaxTextLength = 255

// FieldSpec binds one CSV header label to a schema column.
type FieldSpec struct {
	Header   string    // Label as it appears in the source spreadsheets
	DBColumn string    // Column in the processors table
	Type     FieldType // Target type for normalization
}

// ProcessorFields is the fixed schema, in column order.
var ProcessorFields = []FieldSpec{
	{Header: "Product", DBColumn: "product", Type: FieldText},
	{Header: "Status", DBColumn: "status", Type: FieldText},
	{Header: "Release Date", DBColumn: "release_date", Type: FieldText},
	{Header: "Code Name", DBColumn: "code_name", Type: FieldText},
	{Header: "Cores", DBColumn: "cores", Type: FieldInt},
	{Header: "Threads", DBColumn: "threads", Type: FieldInt},
	{Header: "Lithography(nm)", DBColumn: "lithography", Type: FieldFloat},
	{Header: "Max. Turbo Freq.(GHz)", DBColumn: "max_turbo_freq", Type: FieldFloat},
	{Header: "Base Freq.(GHz)", DBColumn: "base_freq", Type: FieldFloat},
	{Header: "TDP(W)", DBColumn: "tdp", Type: FieldInt},
	{Header: "Cache(MB)", DBColumn: "cache", Type: FieldFloat},
	{Header: "Cache Info", DBColumn: "cache_info", Type: FieldText},
	{Header: "Max Memory Size(GB)", DBColumn: "max_memory_size", Type: FieldInt},
	{Header: "Memory Types", DBColumn: "memory_types", Type: FieldText},
	{Header: "Max Memory Speed(MHz)", DBColumn: "max_memory_speed", Type: FieldInt},
	{Header: "Integrated Graphics", DBColumn: "integrated_graphics", Type: FieldText},
}

// Headers returns the CSV header row in schema order.
func Headers() []string {
	h := make([]string, len(ProcessorFields))
	for i, f := range ProcessorFields {
		h[i] = f.Header
	}
	return h
}

// Columns returns the insertable database columns in schema order.
func Columns() []string {
	c := make([]string, len(ProcessorFields))
	for i, f := range ProcessorFields {
		c[i] = f.DBColumn
	}
	return c
}

// headerLookup maps lowercased header labels and column names to columns.
var headerLookup = func() map[string]string {
	m := make(map[string]string, len(ProcessorFields)*2)
	for _, f := range ProcessorFields {
		m[strings.ToLower(f.Header)] = f.DBColumn
		m[f.DBColumn] = f.DBColumn
	}
	return m
}()

// HeaderIndex maps schema columns to their position in a CSV row.
type HeaderIndex map[string]int

// MakeHeaderIndex resolves a CSV header row against the fixed schema.
// Unknown headers are returned so callers can log them. The first
// occurrence of a duplicated header wins.
func MakeHeaderIndex(header []string) (HeaderIndex, []string) {
	idx := make(HeaderIndex, len(ProcessorFields))
	var unknown []string
	for i, h := range header {
		label := CleanCell(h)
		if i == 0 {
			label = strings.TrimPrefix(label, "\ufeff")
		}
		col, ok := headerLookup[strings.ToLower(label)]
		if !ok {
			if label != "" {
				unknown = append(unknown, label)
			}
			continue
		}
		if _, dup := idx[col]; !dup {
			idx[col] = i
		}
	}
	return idx, unknown
}

// RequireProduct rejects header rows that cannot identify a processor.
func (idx HeaderIndex) RequireProduct() error {
	if _, ok := idx["product"]; !ok {
		return &ValidationError{Field: "Product", Line: 1, Reason: "missing required column"}
	}
	return nil
}

// cell returns the raw value for column, or "" when the file lacks it.
func (idx HeaderIndex) cell(row []string, column string) string {
	pos, ok := idx[column]
	if !ok || pos >= len(row) {
		return ""
	}
	return DataCell(row[pos])
}

// BuildRecord normalizes every field of one CSV row.
func BuildRecord(row []string, idx HeaderIndex) ProcessorRecord {
	rec := ProcessorRecord{
		Status:             ToText(idx.cell(row, "status")),
		ReleaseDate:        ToText(idx.cell(row, "release_date")),
		CodeName:           ToText(idx.cell(row, "code_name")),
		Cores:              ToInt(idx.cell(row, "cores")),
		Threads:            ToInt(idx.cell(row, "threads")),
		Lithography:        ToFloat(idx.cell(row, "lithography")),
		MaxTurboFreq:       ToFloat(idx.cell(row, "max_turbo_freq")),
		BaseFreq:           ToFloat(idx.cell(row, "base_freq")),
		TDP:                ToInt(idx.cell(row, "tdp")),
		Cache:              ToFloat(idx.cell(row, "cache")),
		CacheInfo:          ToText(idx.cell(row, "cache_info")),
		MaxMemorySize:      ToInt(idx.cell(row, "max_memory_size")),
		MemoryTypes:        ToText(idx.cell(row, "memory_types")),
		MaxMemorySpeed:     ToInt(idx.cell(row, "max_memory_speed")),
		IntegratedGraphics: ToText(idx.cell(row, "integrated_graphics")),
	}
	if p := ToText(idx.cell(row, "product")); p != nil {
		rec.Product = *p
	}
	return rec
}

// Row renders rec as CSV cells in schema order. Nulls become "N/A".
func (rec ProcessorRecord) Row() []string {
	return []string{
		rec.Product,
		textCell(rec.Status),
		textCell(rec.ReleaseDate),
		textCell(rec.CodeName),
		intCell(rec.Cores),
		intCell(rec.Threads),
		floatCell(rec.Lithography),
		floatCell(rec.MaxTurboFreq),
		floatCell(rec.BaseFreq),
		intCell(rec.TDP),
		floatCell(rec.Cache),
		textCell(rec.CacheInfo),
		intCell(rec.MaxMemorySize),
		textCell(rec.MemoryTypes),
		intCell(rec.MaxMemorySpeed),
		textCell(rec.IntegratedGraphics),
	}
}

// Values returns the insertable column values in schema order.
func (rec ProcessorRecord) Values() []any {
	return []any{
		rec.Product, rec.Status, rec.ReleaseDate, rec.CodeName,
		rec.Cores, rec.Threads, rec.Lithography, rec.MaxTurboFreq,
		rec.BaseFreq, rec.TDP, rec.Cache, rec.CacheInfo,
		rec.MaxMemorySize, rec.MemoryTypes, rec.MaxMemorySpeed, rec.IntegratedGraphics,
	}
}

// ScanTargets returns pointers for scanning "id" followed by Columns().
func (rec *ProcessorRecord) ScanTargets() []any {
	return []any{
		&rec.ID,
		&rec.Product, &rec.Status, &rec.ReleaseDate, &rec.CodeName,
		&rec.Cores, &rec.Threads, &rec.Lithography, &rec.MaxTurboFreq,
		&rec.BaseFreq, &rec.TDP, &rec.Cache, &rec.CacheInfo,
		&rec.MaxMemorySize, &rec.MemoryTypes, &rec.MaxMemorySpeed, &rec.IntegratedGraphics,
	}
}

// Validate checks the record against the column constraints: text length
// and finite floats. Numeric sign and range are not constrained.
func (rec ProcessorRecord) Validate() error {
	texts := []struct {
		column string
		value  *string
	}{
		{"product", &rec.Product},
		{"status", rec.Status},
		{"release_date", rec.ReleaseDate},
		{"code_name", rec.CodeName},
		{"memory_types", rec.MemoryTypes},
		{"integrated_graphics", rec.IntegratedGraphics},
	}
	for _, t := range texts {
		if t.value != nil && utf8.RuneCountInString(*t.value) > MaxTextLength {
			return &ValidationError{Field: t.column, Reason: fmt.Sprintf("longer than %d characters", MaxTextLength)}
		}
	}

	floats := []struct {
		column string
		value  *float64
	}{
		{"lithography", rec.Lithography},
		{"max_turbo_freq", rec.MaxTurboFreq},
		{"base_freq", rec.BaseFreq},
		{"cache", rec.Cache},
	}
	for _, f := range floats {
		if f.value == nil {
			continue
		}
		if math.IsNaN(*f.value) || math.IsInf(*f.value, 0) {
			return &ValidationError{Field: f.column, Reason: "must be a finite number"}
		}
	}

	return nil
}

func textCell(s *string) string {
	if s == nil {
		return "N/A"
	}
	return *s
}

func intCell(n *int32) string {
	if n == nil {
		return "N/A"
	}
	return cast.ToString(*n)
}

func floatCell(f *float64) string {
	if f == nil {
		return "N/A"
	}
	return cast.ToString(*f)
}
