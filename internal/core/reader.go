package core

import (
	"encoding/csv"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewCSVReader wraps r for reading spreadsheet exports. A UTF-8 or UTF-16
// byte order mark is honored and dropped, and invalid UTF-8 sequences are
// replaced with U+FFFD so a stray byte never aborts a file.
func NewCSVReader(r io.Reader) *csv.Reader {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = false
	return cr
}

// isEmptyRow reports whether every cell of row is blank.
func isEmptyRow(row []string) bool {
	for _, v := range row {
		if CleanCell(v) != "" {
			return false
		}
	}
	return true
}
