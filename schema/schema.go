package schema

import "github.com/spektr-org/marksheet/dataset"

// ============================================================================
// SCHEMA — Describes the shape of a loaded dataset
// ============================================================================
// Discovered from a dataset.Dataset. Surfaces use it to populate column
// pickers, to suggest name/key/group columns and to explain why a column
// cannot take part in numeric analysis.
// ============================================================================

// Role is how a column is expected to be used in analysis.
type Role string

const (
	RoleScore      Role = "score"      // numeric, aggregated
	RoleIdentifier Role = "identifier" // unique per row (roll number, name)
	RoleGroup      Role = "group"      // low cardinality, used for trends and pies
	RoleLabel      Role = "label"      // free text
)

// Config describes the complete shape of a dataset.
type Config struct {
	Name    string       `json:"name" yaml:"name"`
	Rows    int          `json:"rows" yaml:"rows"`
	Columns []ColumnMeta `json:"columns" yaml:"columns"`

	DiscoveredAt string `json:"discoveredAt,omitempty" yaml:"discoveredAt,omitempty"`

	// Columns that cannot take part in any operation
	SkippedColumns []SkippedColumn `json:"skippedColumns,omitempty" yaml:"skippedColumns,omitempty"`
}

// ColumnMeta describes one column.
type ColumnMeta struct {
	Name            string       `json:"name" yaml:"name"`
	Key             string       `json:"key" yaml:"key"`
	DisplayName     string       `json:"displayName" yaml:"displayName"`
	Kind            dataset.Kind `json:"kind" yaml:"kind"`
	Role            Role         `json:"role" yaml:"role"`
	SampleValues    []string     `json:"sampleValues" yaml:"sampleValues"`
	UniqueCount     int          `json:"uniqueCount" yaml:"uniqueCount"`
	MissingCount    int          `json:"missingCount" yaml:"missingCount"`
	CardinalityHint string       `json:"cardinalityHint,omitempty" yaml:"cardinalityHint,omitempty"` // "low", "medium", "high"
}

// SkippedColumn records why a column was excluded during discovery.
type SkippedColumn struct {
	Column      string `json:"column" yaml:"column"`
	Reason      string `json:"reason" yaml:"reason"`
	Recoverable bool   `json:"recoverable" yaml:"recoverable"` // usable after clean coerces it
}

// ColumnNames returns every described column name in dataset order.
func (c Config) ColumnNames() []string {
	names := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		names[i] = col.Name
	}
	return names
}

// ColumnsWithRole returns the names of columns playing the given role.
func (c Config) ColumnsWithRole(role Role) []string {
	var names []string
	for _, col := range c.Columns {
		if col.Role == role {
			names = append(names, col.Name)
		}
	}
	return names
}

// ScoreColumns returns the numeric columns, the default operand set.
func (c Config) ScoreColumns() []string { return c.ColumnsWithRole(RoleScore) }

// GroupColumns returns candidate trend/group columns.
func (c Config) GroupColumns() []string { return c.ColumnsWithRole(RoleGroup) }

// SuggestedNameColumn returns the first text identifier column, or "".
func (c Config) SuggestedNameColumn() string {
	for _, col := range c.Columns {
		if col.Role == RoleIdentifier && col.Kind == dataset.KindText {
			return col.Name
		}
	}
	return ""
}

// Column finds a column description by name.
func (c Config) Column(name string) (ColumnMeta, bool) {
	for _, col := range c.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return ColumnMeta{}, false
}
