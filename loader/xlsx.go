package loader

import (
	"io"

	"github.com/xuri/excelize/v2"
)

// ============================================================================
// XLSX — first worksheet, first row is the header
// ============================================================================

func readXLSX(source string, r io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, malformed(source, "invalid workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, malformed(source, "workbook has no sheets", nil)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, malformed(source, "cannot read sheet "+sheets[0], err)
	}

	// Formatting often leaves blank rows behind; they carry no data.
	kept := rows[:0]
	for i, row := range rows {
		if i > 0 && isBlank(row) {
			continue
		}
		kept = append(kept, row)
	}
	return splitHeader(source, kept)
}
