package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spektr-org/marksheet/dataset"
	"github.com/spektr-org/marksheet/schema"
)

// ============================================================================
// TABLE BUILDER — Row projections
// ============================================================================
// Row labels are the original row positions so that a projected row can be
// traced back to the loaded file.
// ============================================================================

// TopPerformers returns the n rows with the highest Percentage over columns,
// highest first. Ties keep row order; rows with no Percentage rank last.
// Output columns: the name column when present, Percentage, then columns.
func (a *Analyzer) TopPerformers(n int, columns []string, name ColumnRef) (*Table, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: top performer count %d", ErrInvalidArgument, n)
	}
	cols, err := a.columns(columns)
	if err != nil {
		return nil, err
	}
	name = a.resolve(name, "name")

	pct := a.percentages(cols)
	order := make([]int, len(pct))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		pi, pj := pct[order[i]], pct[order[j]]
		if pi.Valid != pj.Valid {
			return pi.Valid
		}
		return pi.Valid && pi.Value > pj.Value
	})
	if n < len(order) {
		order = order[:n]
	}

	var header []string
	if name.Present() {
		header = append(header, name.Name())
	}
	header = append(header, "Percentage")
	header = append(header, cols...)

	t := NewTable(fmt.Sprintf("Top %d Performers", n), header...)
	t.IndexName = "Row"
	for _, r := range order {
		cells := make([]dataset.Value, 0, len(header))
		if name.Present() {
			cells = append(cells, a.data.Value(r, name.Name()))
		}
		cells = append(cells, pct[r].AsValue())
		for _, c := range cols {
			cells = append(cells, a.data.Value(r, c))
		}
		t.AddLabeledRow(strconv.Itoa(r), cells...)
	}
	return t, nil
}

// CompareRows projects rows and columns into a table for side-by-side
// inspection. Every index must be inside the dataset.
func (a *Analyzer) CompareRows(rows []int, columns []string) (*Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows to compare", ErrSelectionRequired)
	}
	for _, r := range rows {
		if r < 0 || r >= a.data.Len() {
			return nil, fmt.Errorf("%w: row %d (dataset has %d rows)", ErrRowOutOfRange, r, a.data.Len())
		}
	}
	cols, err := a.columns(columns)
	if err != nil {
		return nil, err
	}
	return a.project("Row Comparison", "Row", rows, nil, cols), nil
}

func (a *Analyzer) project(title, index string, rows []int, labels []string, cols []string) *Table {
	t := NewTable(title, cols...)
	t.IndexName = index
	for i, r := range rows {
		cells := make([]dataset.Value, len(cols))
		for j, c := range cols {
			cells[j] = a.data.Value(r, c)
		}
		label := strconv.Itoa(r)
		if labels != nil {
			label = labels[i]
		}
		t.AddLabeledRow(label, cells...)
	}
	return t
}

// Record is one dataset row found by key.
type Record struct {
	Index   int
	Columns []string
	Values  []dataset.Value
}

// Get returns the record's cell for column.
func (r *Record) Get(column string) (dataset.Value, bool) {
	for i, c := range r.Columns {
		if c == column {
			return r.Values[i], true
		}
	}
	return dataset.Missing(), false
}

// Table shows the record as a Field/Value table.
func (r *Record) Table() *Table {
	t := NewTable(fmt.Sprintf("Row %d", r.Index), "Value")
	t.IndexName = "Field"
	for i, c := range r.Columns {
		t.AddLabeledRow(c, r.Values[i])
	}
	return t
}

// LookupByKey returns the first row whose keyColumn equals key: numerically
// when both sides are numbers, otherwise as exact trimmed text. An empty
// keyColumn uses the configured default. ok is false when no row matches or
// the key column does not exist.
func (a *Analyzer) LookupByKey(key, keyColumn string) (*Record, bool) {
	if keyColumn == "" {
		keyColumn = a.cfg.KeyColumn
	}
	r, ok := a.findKey(key, keyColumn)
	if !ok {
		return nil, false
	}
	return &Record{Index: r, Columns: a.data.ColumnNames(), Values: a.data.Row(r)}, true
}

func (a *Analyzer) findKey(key, keyColumn string) (int, bool) {
	if !a.data.HasColumn(keyColumn) {
		a.log.Debug("key column absent", "column", keyColumn)
		return 0, false
	}
	want := dataset.Parse(key)
	if want.Missing {
		return 0, false
	}
	for r := 0; r < a.data.Len(); r++ {
		if matches(a.data.Value(r, keyColumn), want, exact) {
			return r, true
		}
	}
	return 0, false
}

// CompareByKey looks up each key and projects the selected columns, one row
// per key labelled by the key.
func (a *Analyzer) CompareByKey(keys []string, keyColumn string, columns []string) (*Table, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no keys to compare", ErrSelectionRequired)
	}
	if keyColumn == "" {
		keyColumn = a.cfg.KeyColumn
	}
	if !a.data.HasColumn(keyColumn) {
		return nil, fmt.Errorf("%w: key column %q", ErrColumnNotFound, keyColumn)
	}
	cols, err := a.columns(columns)
	if err != nil {
		return nil, err
	}
	rows := make([]int, len(keys))
	for i, k := range keys {
		r, ok := a.findKey(k, keyColumn)
		if !ok {
			return nil, fmt.Errorf("%w: %s = %q", ErrKeyNotFound, keyColumn, k)
		}
		rows[i] = r
	}
	return a.project("Student Comparison", keyColumn, rows, keys, cols), nil
}

// DatasetTable renders a whole dataset as a table labelled by row position.
func DatasetTable(title string, ds *dataset.Dataset) *Table {
	t := NewTable(title, ds.ColumnNames()...)
	t.IndexName = "Row"
	for r := 0; r < ds.Len(); r++ {
		t.AddLabeledRow(strconv.Itoa(r), ds.Row(r)...)
	}
	return t
}

// ProfileTable lists every described column with its kind, role and
// cardinality.
func ProfileTable(cfg *schema.Config) *Table {
	t := NewTable("Columns", "Kind", "Role", "Unique", "Missing", "Samples")
	t.IndexName = "Column"
	for _, c := range cfg.Columns {
		t.AddLabeledRow(c.Name,
			dataset.Text(c.Kind.String()),
			dataset.Text(string(c.Role)),
			dataset.Number(float64(c.UniqueCount)),
			dataset.Number(float64(c.MissingCount)),
			dataset.Text(strings.Join(c.SampleValues, ", ")),
		)
	}
	return t
}

// SkippedTable lists the columns discovery flagged, or nil when none were.
func SkippedTable(cfg *schema.Config) *Table {
	if len(cfg.SkippedColumns) == 0 {
		return nil
	}
	t := NewTable("Skipped Columns", "Reason", "Recoverable")
	t.IndexName = "Column"
	for _, s := range cfg.SkippedColumns {
		recoverable := "no"
		if s.Recoverable {
			recoverable = "yes"
		}
		t.AddLabeledRow(s.Column, dataset.Text(s.Reason), dataset.Text(recoverable))
	}
	return t
}
