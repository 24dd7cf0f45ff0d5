package engine

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/spektr-org/marksheet/dataset"
)

// ============================================================================
// AGGREGATORS — Grouping, counting and formatting
// ============================================================================
// Grouping produces SubViews (index lists into the dataset); nothing is
// copied until a result table is built.
// ============================================================================

// Group is one distinct key with the rows that carry it.
type Group struct {
	Key  dataset.Value
	View *dataset.SubView
}

// groupRows groups the view by column. Missing keys are dropped. Keys sort
// numerically when every key is a number, otherwise lexicographically.
func groupRows(view dataset.View, column string) []Group {
	index := make(map[string]int)
	var groups []Group
	var members [][]int
	allNumeric := true

	for i := 0; i < view.Len(); i++ {
		key := view.Value(i, column)
		if key.Missing {
			continue
		}
		k := key.String()
		g, ok := index[k]
		if !ok {
			g = len(groups)
			index[k] = g
			groups = append(groups, Group{Key: key})
			members = append(members, nil)
			allNumeric = allNumeric && key.Numeric
		}
		members[g] = append(members[g], i)
	}
	for g := range groups {
		groups[g].View = dataset.NewSubView(view, members[g])
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if allNumeric {
			return groups[i].Key.Num < groups[j].Key.Num
		}
		return groups[i].Key.String() < groups[j].Key.String()
	})
	return groups
}

// TrendByGroup returns the per-group mean of each column. When groupColumn
// does not exist the result is a single-cell Error table, not an error.
func (a *Analyzer) TrendByGroup(groupColumn string, columns []string) (*Table, error) {
	if groupColumn == "" {
		return nil, fmt.Errorf("%w: group column", ErrSelectionRequired)
	}
	if !a.data.HasColumn(groupColumn) {
		t := NewTable("Trend", "Error")
		t.AddRow(dataset.Text(groupColumn + " column not found."))
		return t, nil
	}
	cols, err := a.columns(columns)
	if err != nil {
		return nil, err
	}

	t := NewTable(fmt.Sprintf("Trend by %s", groupColumn), cols...)
	t.IndexName = groupColumn
	for _, g := range groupRows(a.data, groupColumn) {
		row := make([]dataset.Value, len(cols))
		for i, c := range cols {
			row[i] = meanOf(dataset.Floats(g.View, c)).AsValue()
		}
		t.AddLabeledRow(g.Key.String(), row...)
	}
	return t, nil
}

func meanOf(values []float64) Metric {
	if len(values) == 0 {
		return Metric{}
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return Some(sum / float64(len(values)))
}

// ============================================================================
// VALUE COUNTS
// ============================================================================

type valueCount struct {
	label string
	count int
}

// countValues counts distinct non-missing values, count-descending with ties
// in first-appearance order.
func countValues(values []dataset.Value) []valueCount {
	index := make(map[string]int)
	var out []valueCount
	for _, v := range values {
		if v.Missing {
			continue
		}
		k := v.String()
		if i, ok := index[k]; ok {
			out[i].count++
			continue
		}
		index[k] = len(out)
		out = append(out, valueCount{label: k, count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].count > out[j].count })
	return out
}

// ValueCounts counts the distinct values of a column.
func (a *Analyzer) ValueCounts(column string) (*Table, error) {
	if err := a.column(column); err != nil {
		return nil, err
	}
	col, _ := a.data.Column(column)
	t := NewTable(fmt.Sprintf("Value Counts: %s", column), column, "Count")
	for _, vc := range countValues(col.Values) {
		t.AddRow(dataset.Parse(vc.label), dataset.Number(float64(vc.count)))
	}
	return t, nil
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatScore prints a score without trailing zeros, rounded to 2 decimals.
func FormatScore(v float64) string {
	return strconv.FormatFloat(RoundTo2(v), 'f', -1, 64)
}

// FormatInt formats an integer with thousands separators.
func FormatInt(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

// LabelFor turns an operation or column key into a title-cased label:
// "pass-rates" → "Pass Rates".
func LabelFor(key string) string {
	key = strings.NewReplacer("-", " ", "_", " ").Replace(key)
	return cases.Title(language.English).String(strings.Join(strings.Fields(key), " "))
}
