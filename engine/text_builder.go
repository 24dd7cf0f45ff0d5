package engine

import (
	"fmt"
	"strings"

	"github.com/spektr-org/marksheet/dataset"
)

// ============================================================================
// TEXT BUILDER — One-line summaries
// ============================================================================

// Insights returns one sentence per column that has data, e.g.
// "Maths: mean 58.33, median 50, min 30, max 95, std 32.53 (3 values)".
func (a *Analyzer) Insights(columns []string) ([]string, error) {
	cols, err := a.columns(columns)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(cols))
	for _, c := range cols {
		s := Summarize(c, dataset.Floats(a.data, c))
		if s.Count == 0 {
			continue
		}
		lines = append(lines, InsightLine(s))
	}
	return lines, nil
}

// InsightLine formats one column's statistics as a sentence.
func InsightLine(s ColumnStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: mean %s, median %s, min %s, max %s, std %s",
		s.Column, s.Mean, s.Median, s.Min, s.Max, s.Std)
	if s.Count == 1 {
		b.WriteString(" (1 value)")
	} else {
		fmt.Fprintf(&b, " (%s values)", FormatInt(s.Count))
	}
	return b.String()
}

// InsightsTable wraps insight lines in a one-column table.
func InsightsTable(lines []string) *Table {
	t := NewTable("Insights", "Insight")
	for _, l := range lines {
		t.AddRow(dataset.Text(l))
	}
	return t
}
