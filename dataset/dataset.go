// Package dataset holds the in-memory table marksheet analyses: ordered,
// named columns of equal length with a declared value kind per column.
package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrShape is returned when columns disagree on length or names collide.
var ErrShape = errors.New("invalid dataset shape")

// Column is a named sequence of cells aligned by row position.
type Column struct {
	Name   string  `json:"name"`
	Kind   Kind    `json:"kind"`
	Values []Value `json:"values"`
}

// NewColumn builds a column and infers its kind from the cells.
func NewColumn(name string, values []Value) *Column {
	return &Column{Name: name, Kind: InferKind(values), Values: values}
}

// Floats returns the usable numeric cells of the column, skipping missing
// and non-numeric ones.
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if f, ok := v.Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

// Dataset is an immutable table. Operations that derive data return a new
// Dataset and leave the receiver untouched.
type Dataset struct {
	name    string
	columns []*Column
	index   map[string]int
	rows    int
}

// New assembles a dataset from columns. All columns must share one length
// and have distinct names.
func New(name string, columns ...*Column) (*Dataset, error) {
	d := &Dataset{
		name:    name,
		columns: make([]*Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if c == nil {
			return nil, fmt.Errorf("%w: column %d is nil", ErrShape, i)
		}
		if i == 0 {
			d.rows = len(c.Values)
		} else if len(c.Values) != d.rows {
			return nil, fmt.Errorf("%w: column %q has %d values, want %d", ErrShape, c.Name, len(c.Values), d.rows)
		}
		if _, dup := d.index[c.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrShape, c.Name)
		}
		d.index[c.Name] = len(d.columns)
		d.columns = append(d.columns, c)
	}
	return d, nil
}

// FromRecords builds a dataset from a header row and raw string records,
// the shape every loader produces. Short records are padded with missing
// cells and cells past the header are ignored, so loaders reject records
// carrying values there; header names are made unique.
func FromRecords(name string, header []string, records [][]string) (*Dataset, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrShape)
	}
	names := UniqueHeaders(header)
	columns := make([]*Column, len(names))
	for c, h := range names {
		values := make([]Value, len(records))
		for r, rec := range records {
			if c < len(rec) {
				values[r] = Parse(rec[c])
			} else {
				values[r] = Missing()
			}
		}
		columns[c] = NewColumn(h, values)
	}
	return New(name, columns...)
}

// UniqueHeaders trims header names, names blank ones "Unnamed: <i>" and
// suffixes repeats with ".1", ".2", ...
func UniqueHeaders(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	suffix := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for used[name] {
			suffix[h]++
			name = fmt.Sprintf("%s.%d", h, suffix[h])
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// Name returns the dataset name (usually the source file name).
func (d *Dataset) Name() string { return d.name }

// Len returns the row count.
func (d *Dataset) Len() int { return d.rows }

// Width returns the column count.
func (d *Dataset) Width() int { return len(d.columns) }

// ColumnNames returns the column names in order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name
	}
	return names
}

// Columns returns the columns in order. Callers must not modify them.
func (d *Dataset) Columns() []*Column { return d.columns }

// Column looks up a column by name.
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.columns[i], true
}

// HasColumn reports whether a column exists.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// ColumnsOfKind returns, in order, the names of columns of the given kind.
func (d *Dataset) ColumnsOfKind(k Kind) []string {
	var names []string
	for _, c := range d.columns {
		if c.Kind == k {
			names = append(names, c.Name)
		}
	}
	return names
}

// Value returns the cell at (row, column); out-of-range or unknown
// references read as missing.
func (d *Dataset) Value(row int, column string) Value {
	c, ok := d.Column(column)
	if !ok || row < 0 || row >= d.rows {
		return Missing()
	}
	return c.Values[row]
}

// Row returns every cell of a row in column order.
func (d *Dataset) Row(row int) []Value {
	out := make([]Value, len(d.columns))
	for i, c := range d.columns {
		if row >= 0 && row < d.rows {
			out[i] = c.Values[row]
		} else {
			out[i] = Missing()
		}
	}
	return out
}

// WithColumn returns a copy of the dataset with col appended, or replacing
// the existing column of the same name in place.
func (d *Dataset) WithColumn(col *Column) (*Dataset, error) {
	columns := make([]*Column, len(d.columns), len(d.columns)+1)
	copy(columns, d.columns)
	if i, ok := d.index[col.Name]; ok {
		columns[i] = col
	} else {
		columns = append(columns, col)
	}
	return New(d.name, columns...)
}

// Select returns a new dataset holding the given rows, in the given order.
// Out-of-range indices are the caller's responsibility and panic.
func (d *Dataset) Select(rows []int) *Dataset {
	columns := make([]*Column, len(d.columns))
	for i, c := range d.columns {
		values := make([]Value, len(rows))
		for j, r := range rows {
			values[j] = c.Values[r]
		}
		columns[i] = &Column{Name: c.Name, Kind: c.Kind, Values: values}
	}
	out, _ := New(d.name, columns...)
	return out
}

// DropDuplicates returns the dataset without rows that exactly repeat an
// earlier row across every column. The first occurrence is kept.
func (d *Dataset) DropDuplicates() *Dataset {
	seen := make(map[string]bool, d.rows)
	keep := make([]int, 0, d.rows)
	for r := 0; r < d.rows; r++ {
		key := d.rowKey(r)
		if seen[key] {
			continue
		}
		seen[key] = true
		keep = append(keep, r)
	}
	if len(keep) == d.rows {
		return d
	}
	return d.Select(keep)
}

func (d *Dataset) rowKey(r int) string {
	var b strings.Builder
	for _, c := range d.columns {
		v := c.Values[r]
		switch {
		case v.Missing:
			b.WriteString("\x00")
		case v.Numeric:
			b.WriteString("n:")
			b.WriteString(FormatNumber(v.Num))
		default:
			b.WriteString("s:")
			b.WriteString(v.Raw)
		}
		b.WriteByte(0x1f)
	}
	return b.String()
}
