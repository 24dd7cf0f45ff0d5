package engine

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/spektr-org/marksheet/dataset"
)

// ============================================================================
// ENGINE TYPES — Render-ready outputs
// ============================================================================
// Every operation produces a Table. Surfaces turn Tables into terminal
// tables, CSV/XLSX bytes and JSON; ChartConfig carries the series a chart
// renderer draws.
// ============================================================================

// NoData is how an undefined aggregate or missing cell is shown to people.
const NoData = "no data"

// ============================================================================
// METRIC — an aggregate that may be undefined
// ============================================================================

// Metric is a computed number that is undefined when there was nothing to
// aggregate (an all-missing column, a one-value standard deviation).
type Metric struct {
	Value float64
	Valid bool
}

// Some wraps a computed value. NaN and infinities become undefined.
func Some(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Metric{}
	}
	return Metric{Value: v, Valid: true}
}

func (m Metric) String() string {
	if !m.Valid {
		return NoData
	}
	return strconv.FormatFloat(RoundTo2(m.Value), 'f', -1, 64)
}

// MarshalJSON encodes an undefined metric as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// AsValue converts the metric to a table cell.
func (m Metric) AsValue() dataset.Value {
	if !m.Valid {
		return dataset.Missing()
	}
	return dataset.Number(m.Value)
}

// ============================================================================
// TABLE
// ============================================================================

// Table is the universal output shape: optional row labels under IndexName,
// named columns and one row of cells per label.
type Table struct {
	Title     string
	IndexName string
	RowLabels []string
	Columns   []string
	Rows      [][]dataset.Value
}

// NewTable creates an empty table with the given columns.
func NewTable(title string, columns ...string) *Table {
	return &Table{Title: title, Columns: columns}
}

// AddRow appends an unlabelled row.
func (t *Table) AddRow(values ...dataset.Value) {
	t.Rows = append(t.Rows, values)
}

// AddLabeledRow appends a row with a row label.
func (t *Table) AddLabeledRow(label string, values ...dataset.Value) {
	t.RowLabels = append(t.RowLabels, label)
	t.Rows = append(t.Rows, values)
}

// Len returns the row count.
func (t *Table) Len() int { return len(t.Rows) }

// Labeled reports whether rows carry labels.
func (t *Table) Labeled() bool { return len(t.RowLabels) > 0 && len(t.RowLabels) == len(t.Rows) }

// Header returns the column headers, led by the index name for labelled
// tables.
func (t *Table) Header() []string {
	if !t.Labeled() {
		return append([]string(nil), t.Columns...)
	}
	index := t.IndexName
	if index == "" {
		index = "Index"
	}
	return append([]string{index}, t.Columns...)
}

// Cell returns the cell at (row, column); unknown references read as missing.
func (t *Table) Cell(row int, column string) dataset.Value {
	if row < 0 || row >= len(t.Rows) {
		return dataset.Missing()
	}
	for i, c := range t.Columns {
		if c == column && i < len(t.Rows[row]) {
			return t.Rows[row][i]
		}
	}
	return dataset.Missing()
}

// Records returns the header-less rows as plain strings for CSV and XLSX:
// missing cells are empty and numbers keep full precision.
func (t *Table) Records() [][]string {
	return t.render(func(v dataset.Value) string { return v.String() })
}

// Display returns the rows formatted for people: missing cells read
// "no data" and numbers are rounded to two decimals.
func (t *Table) Display() [][]string {
	return t.render(FormatCell)
}

func (t *Table) render(cell func(dataset.Value) string) [][]string {
	out := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		line := make([]string, 0, len(t.Columns)+1)
		if t.Labeled() {
			line = append(line, t.RowLabels[r])
		}
		for c := range t.Columns {
			if c < len(row) {
				line = append(line, cell(row[c]))
			} else {
				line = append(line, cell(dataset.Missing()))
			}
		}
		out[r] = line
	}
	return out
}

// FormatCell renders one cell for display.
func FormatCell(v dataset.Value) string {
	switch {
	case v.Missing:
		return NoData
	case v.Numeric:
		return strconv.FormatFloat(RoundTo2(v.Num), 'f', -1, 64)
	default:
		return v.Raw
	}
}

type tableJSON struct {
	Title     string          `json:"title"`
	IndexName string          `json:"indexName,omitempty"`
	RowLabels []string        `json:"rowLabels,omitempty"`
	Columns   []string        `json:"columns"`
	Rows      [][]interface{} `json:"rows"`
}

// MarshalJSON encodes cells as numbers, strings or null.
func (t *Table) MarshalJSON() ([]byte, error) {
	out := tableJSON{
		Title:     t.Title,
		IndexName: t.IndexName,
		RowLabels: t.RowLabels,
		Columns:   t.Columns,
		Rows:      make([][]interface{}, len(t.Rows)),
	}
	if out.Columns == nil {
		out.Columns = []string{}
	}
	for r, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for c, v := range row {
			cells[c] = cellJSON(v)
		}
		out.Rows[r] = cells
	}
	return json.Marshal(out)
}

func cellJSON(v dataset.Value) interface{} {
	switch {
	case v.Missing:
		return nil
	case v.Numeric:
		return v.Num
	default:
		return v.Raw
	}
}

// Maps returns one column→cell map per row, label included under the index
// name. Used for YAML output.
func (t *Table) Maps() []map[string]interface{} {
	out := make([]map[string]interface{}, len(t.Rows))
	header := t.Header()
	for r, row := range t.Rows {
		m := make(map[string]interface{}, len(header))
		offset := 0
		if t.Labeled() {
			m[header[0]] = t.RowLabels[r]
			offset = 1
		}
		for c, v := range row {
			if c+offset < len(header) {
				m[header[c+offset]] = cellJSON(v)
			}
		}
		out[r] = m
	}
	return out
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType  string        `json:"chartType"` // "bar", "line", "pie"
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point. Missing marks a gap.
type ChartPoint struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Missing bool    `json:"missing,omitempty"`
}

// ============================================================================
// RESULT — dispatcher output
// ============================================================================

// Result is what Execute returns for one Request.
type Result struct {
	Operation string       `json:"operation"`
	Title     string       `json:"title"`
	Table     *Table       `json:"table"`
	Chart     *ChartConfig `json:"chart,omitempty"`
	Lines     []string     `json:"lines,omitempty"`

	// Data is the derived dataset for operations that produce one
	// (clean, passfail).
	Data *dataset.Dataset `json:"-"`
}
