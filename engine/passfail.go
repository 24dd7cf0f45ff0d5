package engine

import (
	"fmt"
	"strconv"

	"github.com/spektr-org/marksheet/dataset"
)

// ============================================================================
// PASS / FAIL
// ============================================================================
// ClassifyPassFail: Pass iff every selected value ≥ threshold (inclusive).
// WeakStudents:     any selected value < threshold.
// A missing value fails both tests, so every Fail row is weak.
// SubjectPassFailRates uses the fixed PassMark, never the threshold.
// ============================================================================

// PassMark is the fixed per-subject pass mark.
const PassMark = 40.0

// Status labels written to the Pass column.
const (
	StatusPass = "Pass"
	StatusFail = "Fail"
)

// PassColumn is the name of the derived classification column.
const PassColumn = "Pass"

// Classification is the outcome of ClassifyPassFail.
type Classification struct {
	Threshold float64
	Columns   []string
	Labels    []string         // one per row
	Data      *dataset.Dataset // the bound dataset plus the Pass column
}

// Summary counts the classification's labels.
func (c *Classification) Summary() *Table {
	return statusSummary(c.Data)
}

// Passed returns the number of passing rows.
func (c *Classification) Passed() int {
	n := 0
	for _, l := range c.Labels {
		if l == StatusPass {
			n++
		}
	}
	return n
}

// CleanData drops exact duplicate rows, coerces each selected column to
// numbers (non-numeric cells become missing) and drops rows with a missing
// selected value. The bound dataset is unchanged.
func (a *Analyzer) CleanData(columns []string) (*dataset.Dataset, error) {
	cols, err := a.columns(columns)
	if err != nil {
		return nil, err
	}
	ds := a.data.DropDuplicates()
	for _, name := range cols {
		col, _ := ds.Column(name)
		values := make([]dataset.Value, len(col.Values))
		for i, v := range col.Values {
			values[i] = v.Coerce()
		}
		coerced := &dataset.Column{Name: name, Kind: dataset.KindNumeric, Values: values}
		if ds, err = ds.WithColumn(coerced); err != nil {
			return nil, err
		}
	}

	keep := make([]int, 0, ds.Len())
	for r := 0; r < ds.Len(); r++ {
		complete := true
		for _, name := range cols {
			if ds.Value(r, name).Missing {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, r)
		}
	}
	a.log.Debug("clean", "rows_in", a.data.Len(), "deduplicated", ds.Len(), "rows_out", len(keep))
	if len(keep) == ds.Len() {
		return ds, nil
	}
	return ds.Select(keep), nil
}

// ClassifyPassFail labels each row Pass or Fail against threshold.
func (a *Analyzer) ClassifyPassFail(threshold float64, columns []string) (*Classification, error) {
	cols, err := a.columns(columns)
	if err != nil {
		return nil, err
	}
	labels := make([]string, a.data.Len())
	values := make([]dataset.Value, a.data.Len())
	for r := range labels {
		labels[r] = StatusPass
		for _, c := range cols {
			f, ok := a.data.Value(r, c).Float()
			if !ok || f < threshold {
				labels[r] = StatusFail
				break
			}
		}
		values[r] = dataset.Text(labels[r])
	}
	ds, err := a.data.WithColumn(dataset.NewColumn(PassColumn, values))
	if err != nil {
		return nil, err
	}
	return &Classification{Threshold: threshold, Columns: cols, Labels: labels, Data: ds}, nil
}

// PassFailSummary counts the bound dataset's Pass column. Without one the
// result is an empty Status/Count table.
func (a *Analyzer) PassFailSummary() *Table {
	return statusSummary(a.data)
}

func statusSummary(ds *dataset.Dataset) *Table {
	t := NewTable("Pass/Fail Summary", "Status", "Count")
	col, ok := ds.Column(PassColumn)
	if !ok {
		return t
	}
	for _, vc := range countValues(col.Values) {
		t.AddRow(dataset.Text(vc.label), dataset.Number(float64(vc.count)))
	}
	return t
}

// WeakStudents returns the rows where any selected value is below threshold
// or missing. Row labels are the original row positions.
func (a *Analyzer) WeakStudents(threshold float64, columns []string, name ColumnRef) (*Table, error) {
	cols, err := a.columns(columns)
	if err != nil {
		return nil, err
	}
	name = a.resolve(name, "name")

	var rows []int
	for r := 0; r < a.data.Len(); r++ {
		for _, c := range cols {
			f, ok := a.data.Value(r, c).Float()
			if !ok || f < threshold {
				rows = append(rows, r)
				break
			}
		}
	}

	header := cols
	if name.Present() {
		header = append([]string{name.Name()}, cols...)
	}
	t := NewTable(fmt.Sprintf("Students Below %s", FormatScore(threshold)), header...)
	t.IndexName = "Row"
	for _, r := range rows {
		cells := make([]dataset.Value, len(header))
		for i, c := range header {
			cells[i] = a.data.Value(r, c)
		}
		t.AddLabeledRow(strconv.Itoa(r), cells...)
	}
	return t, nil
}

// SubjectPassFailRates returns, per column, the percentage of all rows
// scoring at least PassMark. Missing cells count against the rate.
func (a *Analyzer) SubjectPassFailRates(columns []string) (*Table, error) {
	cols, err := a.columns(columns)
	if err != nil {
		return nil, err
	}
	t := NewTable("Subject Pass Rates", "Pass Rate (%)")
	t.IndexName = "Subject"
	n := a.data.Len()
	for _, c := range cols {
		if n == 0 {
			t.AddLabeledRow(c, dataset.Missing())
			continue
		}
		passed := 0
		for r := 0; r < n; r++ {
			if f, ok := a.data.Value(r, c).Float(); ok && f >= PassMark {
				passed++
			}
		}
		t.AddLabeledRow(c, dataset.Number(float64(passed)*100/float64(n)))
	}
	return t, nil
}
