package dataset

// ============================================================================
// VIEW — read access to rows without copying
// ============================================================================
// The engine reads through View so that grouping and row projection can hand
// out index lists into the parent instead of materialising new datasets.
//
// Implementations:
//   *Dataset  — the full table
//   SubView   — a subset of rows (indices into a parent view)
// ============================================================================

// View provides indexed access to a table.
type View interface {
	Len() int
	Value(row int, column string) Value
	ColumnNames() []string
}

var _ View = (*Dataset)(nil)

// SubView is a row subset of a parent View.
type SubView struct {
	parent  View
	indices []int
}

// NewSubView wraps parent, exposing only the given rows in the given order.
func NewSubView(parent View, indices []int) *SubView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Value(i int, column string) Value {
	if i < 0 || i >= len(v.indices) {
		return Missing()
	}
	return v.parent.Value(v.indices[i], column)
}

func (v *SubView) ColumnNames() []string { return v.parent.ColumnNames() }

// Index returns the parent row position behind row i of the view.
func (v *SubView) Index(i int) int { return v.indices[i] }

// Floats collects the usable numeric cells of one column across a view.
func Floats(view View, column string) []float64 {
	out := make([]float64, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		if f, ok := view.Value(i, column).Float(); ok {
			out = append(out, f)
		}
	}
	return out
}
