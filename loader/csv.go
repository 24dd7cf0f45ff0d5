package loader

import (
	"encoding/csv"
	"io"
	"strings"
)

// ============================================================================
// CSV — delimited text, first row is the header
// ============================================================================
// Quotes are parsed leniently and short rows are padded with missing cells
// by dataset.FromRecords. Values past the header width are an error.
// ============================================================================

const utf8BOM = "\ufeff"

func readCSV(source string, r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, malformed(source, "invalid CSV", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}
	return splitHeader(source, rows)
}
