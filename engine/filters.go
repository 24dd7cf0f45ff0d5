package engine

import (
	"strings"

	"github.com/spektr-org/marksheet/dataset"
)

// ============================================================================
// FILTERS — Row selection by column value
// ============================================================================
// Single pass over the column; the result is a new dataset holding the
// matching rows in their original order.
// ============================================================================

// FilterRows returns the rows whose column equals value. Numbers compare
// numerically, text case-insensitively after trimming.
func (a *Analyzer) FilterRows(column, value string) (*dataset.Dataset, error) {
	if err := a.column(column); err != nil {
		return nil, err
	}
	want := dataset.Parse(value)
	keep := make([]int, 0, a.data.Len())
	for r := 0; r < a.data.Len(); r++ {
		if matches(a.data.Value(r, column), want, strings.EqualFold) {
			keep = append(keep, r)
		}
	}
	return a.data.Select(keep), nil
}

// UniqueValues returns the distinct non-missing values of a column in
// first-appearance order.
func (a *Analyzer) UniqueValues(column string) ([]string, error) {
	if err := a.column(column); err != nil {
		return nil, err
	}
	col, _ := a.data.Column(column)
	seen := make(map[string]bool)
	var result []string
	for _, v := range col.Values {
		if v.Missing {
			continue
		}
		s := v.String()
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	return result, nil
}

// matches compares a cell with a wanted value: numerically when both are
// numbers, otherwise by trimmed text using eq.
func matches(cell, want dataset.Value, eq func(a, b string) bool) bool {
	if cell.Missing || want.Missing {
		return cell.Missing && want.Missing
	}
	if cell.Numeric && want.Numeric {
		return cell.Num == want.Num
	}
	return eq(strings.TrimSpace(cell.Raw), strings.TrimSpace(want.Raw))
}

func exact(a, b string) bool { return a == b }
