// Package engine is marksheet's analysis engine: descriptive statistics,
// pass/fail classification, grade distributions and comparison views over
// an immutable dataset.Dataset.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/spektr-org/marksheet/dataset"
	"github.com/spektr-org/marksheet/logging"
	"github.com/spektr-org/marksheet/schema"
)

// ============================================================================
// ANALYZER — Binds one dataset; every operation is read-only
// ============================================================================
// Column selection rules shared by every operation:
//   nil           → the numeric column set computed by New
//   unknown name  → ErrColumnNotFound
//   empty result  → ErrSelectionRequired
//
// Derived values (Percentage, Pass, Grade) are computed per call and
// returned; nothing is written back to the bound dataset.
// ============================================================================

// Analyzer runs analyses over one dataset. Safe for concurrent use.
type Analyzer struct {
	data    *dataset.Dataset
	numeric []string
	cfg     *config
	log     *slog.Logger
}

// New binds ds and computes its numeric column set.
func New(ds *dataset.Dataset, opts ...Option) *Analyzer {
	cfg := applyOptions(opts)
	log := cfg.Logger
	if log == nil {
		log = logging.Logger()
	}
	a := &Analyzer{
		data:    ds,
		numeric: ds.ColumnsOfKind(dataset.KindNumeric),
		cfg:     cfg,
		log:     log,
	}
	log.Debug("analyzer ready", "dataset", ds.Name(), "rows", ds.Len(), "numeric", a.numeric)
	return a
}

// Data returns the bound dataset.
func (a *Analyzer) Data() *dataset.Dataset { return a.data }

// NumericColumns returns the default operand set.
func (a *Analyzer) NumericColumns() []string {
	return append([]string(nil), a.numeric...)
}

// KeyColumn returns the configured default lookup column.
func (a *Analyzer) KeyColumn() string { return a.cfg.KeyColumn }

// TopN returns the configured default top-performer count.
func (a *Analyzer) TopN() int { return a.cfg.TopN }

// Describe profiles the bound dataset.
func (a *Analyzer) Describe() *schema.Config {
	return schema.Discover(a.data)
}

// SelectColumns resolves a column selection the way every operation does:
// nil means the numeric columns, unknown names and empty results are errors.
func (a *Analyzer) SelectColumns(selection []string) ([]string, error) {
	return a.columns(selection)
}

func (a *Analyzer) columns(selection []string) ([]string, error) {
	if selection == nil {
		selection = a.numeric
	}
	for _, name := range selection {
		if !a.data.HasColumn(name) {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
		}
	}
	if len(selection) == 0 {
		return nil, ErrSelectionRequired
	}
	return append([]string(nil), selection...), nil
}

// column resolves one required column name.
func (a *Analyzer) column(name string) error {
	if name == "" {
		return ErrSelectionRequired
	}
	if !a.data.HasColumn(name) {
		return fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return nil
}

// ============================================================================
// COLUMN REFERENCES — optional name/group columns
// ============================================================================

// ColumnRef is an optional column reference. The zero value is NoColumn.
type ColumnRef struct {
	name string
}

// NoColumn is the absent reference.
var NoColumn = ColumnRef{}

// Col references a column by name; an empty name is NoColumn.
func Col(name string) ColumnRef { return ColumnRef{name: name} }

// Present reports whether the reference names a column.
func (r ColumnRef) Present() bool { return r.name != "" }

// Name returns the referenced column name, "" when absent.
func (r ColumnRef) Name() string { return r.name }

// resolve checks an optional reference once; a name the dataset lacks is
// treated as absent.
func (a *Analyzer) resolve(ref ColumnRef, role string) ColumnRef {
	if !ref.Present() {
		return NoColumn
	}
	if !a.data.HasColumn(ref.name) {
		a.log.Debug("optional column absent, ignoring", "role", role, "column", ref.name)
		return NoColumn
	}
	return ref
}

// ============================================================================
// PERCENTAGE — per-row mean over a column set
// ============================================================================

// Percentages returns each row's mean over columns, skipping missing cells.
// A row with no usable cell has an undefined Percentage.
func (a *Analyzer) Percentages(columns []string) ([]Metric, error) {
	cols, err := a.columns(columns)
	if err != nil {
		return nil, err
	}
	return a.percentages(cols), nil
}

func (a *Analyzer) percentages(cols []string) []Metric {
	out := make([]Metric, a.data.Len())
	for r := range out {
		var sum float64
		n := 0
		for _, c := range cols {
			if f, ok := a.data.Value(r, c).Float(); ok {
				sum += f
				n++
			}
		}
		if n > 0 {
			out[r] = Some(sum / float64(n))
		}
	}
	return out
}
