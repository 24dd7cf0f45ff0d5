package engine

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/spektr-org/marksheet/dataset"
)

// ============================================================================
// STATISTICS — per-column descriptive statistics
// ============================================================================
// Missing and non-numeric cells are ignored. A column with no usable cells
// yields undefined metrics; the standard deviation is the sample one (n−1)
// and needs at least two values.
// ============================================================================

// ColumnStats holds the descriptive statistics of one column.
type ColumnStats struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
	Mean   Metric `json:"mean"`
	Median Metric `json:"median"`
	Min    Metric `json:"min"`
	Max    Metric `json:"max"`
	Std    Metric `json:"std"`
}

// Stats is the result of ColumnStatistics / ExtendedColumnStatistics.
type Stats struct {
	Extended bool          `json:"extended"`
	Columns  []ColumnStats `json:"columns"`
}

// Column returns the statistics of one column.
func (s *Stats) Column(name string) (ColumnStats, bool) {
	for _, c := range s.Columns {
		if c.Column == name {
			return c, true
		}
	}
	return ColumnStats{}, false
}

// Table lays statistics out with one row per measure and one column per
// input column.
func (s *Stats) Table() *Table {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Column
	}
	title := "Column Statistics"
	measures := []string{"mean", "min", "max"}
	if s.Extended {
		title = "Extended Statistics"
		measures = []string{"mean", "median", "min", "max", "std"}
	}
	t := NewTable(title, names...)
	t.IndexName = "Statistic"
	for _, m := range measures {
		row := make([]dataset.Value, len(s.Columns))
		for i, c := range s.Columns {
			row[i] = c.metric(m).AsValue()
		}
		t.AddLabeledRow(m, row...)
	}
	return t
}

func (c ColumnStats) metric(name string) Metric {
	switch name {
	case "mean":
		return c.Mean
	case "median":
		return c.Median
	case "min":
		return c.Min
	case "max":
		return c.Max
	case "std":
		return c.Std
	}
	return Metric{}
}

// ColumnStatistics returns mean, min and max per column.
func (a *Analyzer) ColumnStatistics(columns []string) (*Stats, error) {
	return a.statistics(columns, false)
}

// ExtendedColumnStatistics adds median and standard deviation.
func (a *Analyzer) ExtendedColumnStatistics(columns []string) (*Stats, error) {
	return a.statistics(columns, true)
}

func (a *Analyzer) statistics(columns []string, extended bool) (*Stats, error) {
	cols, err := a.columns(columns)
	if err != nil {
		return nil, err
	}
	out := &Stats{Extended: extended, Columns: make([]ColumnStats, len(cols))}
	for i, c := range cols {
		out.Columns[i] = Summarize(c, dataset.Floats(a.data, c))
	}
	return out, nil
}

// Summarize computes the statistics of values.
func Summarize(column string, values []float64) ColumnStats {
	s := ColumnStats{Column: column, Count: len(values)}
	if len(values) == 0 {
		return s
	}
	s.Mean = Some(stat.Mean(values, nil))
	s.Min = Some(floats.Min(values))
	s.Max = Some(floats.Max(values))
	s.Median = Some(Median(values))
	if len(values) > 1 {
		s.Std = Some(stat.StdDev(values, nil))
	}
	return s
}

// Median returns the middle value, averaging the two middle values of an
// even-length input. values is not modified.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// ============================================================================
// CORRELATION — pairwise Pearson
// ============================================================================

// Correlation returns the Pearson correlation matrix of columns, computed per
// pair over rows where both cells are present. Pairs with fewer than two
// such rows, or with a constant side, are undefined.
func (a *Analyzer) Correlation(columns []string) (*Table, error) {
	cols, err := a.columns(columns)
	if err != nil {
		return nil, err
	}
	t := NewTable("Correlation", cols...)
	t.IndexName = "Column"
	for _, ci := range cols {
		row := make([]dataset.Value, len(cols))
		for j, cj := range cols {
			row[j] = a.pearson(ci, cj).AsValue()
		}
		t.AddLabeledRow(ci, row...)
	}
	return t, nil
}

func (a *Analyzer) pearson(x, y string) Metric {
	xs := make([]float64, 0, a.data.Len())
	ys := make([]float64, 0, a.data.Len())
	for r := 0; r < a.data.Len(); r++ {
		xv, okx := a.data.Value(r, x).Float()
		yv, oky := a.data.Value(r, y).Float()
		if okx && oky {
			xs = append(xs, xv)
			ys = append(ys, yv)
		}
	}
	if len(xs) < 2 || stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return Metric{}
	}
	if x == y {
		return Some(1)
	}
	return Some(stat.Correlation(xs, ys, nil))
}
