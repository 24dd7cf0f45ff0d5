package engine

import (
	"fmt"

	"github.com/spektr-org/marksheet/dataset"
)

// ============================================================================
// GRADES — fixed band table
// ============================================================================
//   [0,40)→F  [40,60)→D  [60,80)→C  [80,90)→B  [90,100]→A
// Lower bounds are inclusive; 100 closes the top band. Scores below 0, above
// 100 or missing are ungraded and tallied separately.
// ============================================================================

// Grade is a letter grade.
type Grade string

const (
	GradeF Grade = "F"
	GradeD Grade = "D"
	GradeC Grade = "C"
	GradeB Grade = "B"
	GradeA Grade = "A"
)

// Ungraded labels scores outside the band table.
const Ungraded = "Ungraded"

// Grades lists the grades in canonical output order.
var Grades = []Grade{GradeF, GradeD, GradeC, GradeB, GradeA}

type gradeBand struct {
	lower, upper float64
	grade        Grade
}

var gradeBands = []gradeBand{
	{0, 40, GradeF},
	{40, 60, GradeD},
	{60, 80, GradeC},
	{80, 90, GradeB},
	{90, 100, GradeA},
}

// GradeFor bins a score. ok is false for scores outside [0,100].
func GradeFor(score float64) (Grade, bool) {
	if score == 100 {
		return GradeA, true
	}
	for _, b := range gradeBands {
		if score >= b.lower && score < b.upper {
			return b.grade, true
		}
	}
	return "", false
}

// GradeCounts is a grade distribution.
type GradeCounts struct {
	Subject  string
	Counts   map[Grade]int
	Ungraded int
}

func newGradeCounts(subject string) *GradeCounts {
	counts := make(map[Grade]int, len(Grades))
	for _, g := range Grades {
		counts[g] = 0
	}
	return &GradeCounts{Subject: subject, Counts: counts}
}

func (g *GradeCounts) add(score float64, ok bool) {
	if !ok {
		g.Ungraded++
		return
	}
	grade, graded := GradeFor(score)
	if !graded {
		g.Ungraded++
		return
	}
	g.Counts[grade]++
}

// Graded returns the number of scores that fell into a band.
func (g *GradeCounts) Graded() int {
	total := 0
	for _, n := range g.Counts {
		total += n
	}
	return total
}

// Table lists counts in F, D, C, B, A order, followed by an Ungraded row
// when any score was ungraded.
func (g *GradeCounts) Table() *Table {
	title := "Grade Distribution"
	if g.Subject != "" {
		title = fmt.Sprintf("Grade Distribution: %s", g.Subject)
	}
	t := NewTable(title, "Count")
	t.IndexName = "Grade"
	for _, grade := range Grades {
		t.AddLabeledRow(string(grade), dataset.Number(float64(g.Counts[grade])))
	}
	if g.Ungraded > 0 {
		t.AddLabeledRow(Ungraded, dataset.Number(float64(g.Ungraded)))
	}
	return t
}

// GradeDistribution grades each row's Percentage over columns.
func (a *Analyzer) GradeDistribution(columns []string) (*GradeCounts, error) {
	cols, err := a.columns(columns)
	if err != nil {
		return nil, err
	}
	counts := newGradeCounts("")
	for _, p := range a.percentages(cols) {
		counts.add(p.Value, p.Valid)
	}
	return counts, nil
}

// WithGrades returns a new dataset carrying Percentage and Grade columns
// computed over columns. Ungraded rows have a missing Grade.
func (a *Analyzer) WithGrades(columns []string) (*dataset.Dataset, error) {
	cols, err := a.columns(columns)
	if err != nil {
		return nil, err
	}
	pct := a.percentages(cols)
	percentage := make([]dataset.Value, len(pct))
	grade := make([]dataset.Value, len(pct))
	for i, p := range pct {
		percentage[i] = p.AsValue()
		grade[i] = dataset.Missing()
		if g, ok := GradeFor(p.Value); ok && p.Valid {
			grade[i] = dataset.Text(string(g))
		}
	}
	ds, err := a.data.WithColumn(dataset.NewColumn("Percentage", percentage))
	if err != nil {
		return nil, err
	}
	return ds.WithColumn(dataset.NewColumn("Grade", grade))
}

// SubjectGrades bins one column's values.
func (a *Analyzer) SubjectGrades(column string) (*GradeCounts, error) {
	if err := a.column(column); err != nil {
		return nil, err
	}
	counts := newGradeCounts(column)
	for r := 0; r < a.data.Len(); r++ {
		counts.add(a.data.Value(r, column).Float())
	}
	return counts, nil
}

// GradeComparison lays SubjectGrades for several columns side by side, one
// column per subject and one row per grade.
func (a *Analyzer) GradeComparison(columns ...string) (*Table, error) {
	if len(columns) == 0 {
		columns = nil
	}
	cols, err := a.columns(columns)
	if err != nil {
		return nil, err
	}
	t := NewTable("Grade Comparison", cols...)
	t.IndexName = "Grade"
	per := make([]*GradeCounts, len(cols))
	ungraded := false
	for i, c := range cols {
		if per[i], err = a.SubjectGrades(c); err != nil {
			return nil, err
		}
		ungraded = ungraded || per[i].Ungraded > 0
	}
	for _, grade := range Grades {
		row := make([]dataset.Value, len(cols))
		for i := range cols {
			row[i] = dataset.Number(float64(per[i].Counts[grade]))
		}
		t.AddLabeledRow(string(grade), row...)
	}
	if ungraded {
		row := make([]dataset.Value, len(cols))
		for i := range cols {
			row[i] = dataset.Number(float64(per[i].Ungraded))
		}
		t.AddLabeledRow(Ungraded, row...)
	}
	return t, nil
}
