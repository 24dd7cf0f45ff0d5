package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradeFor_Boundaries(t *testing.T) {
	tests := []struct {
		score  float64
		want   Grade
		graded bool
	}{
		{0, GradeF, true},
		{39.99, GradeF, true},
		{40, GradeD, true},
		{59.99, GradeD, true},
		{60, GradeC, true},
		{79.99, GradeC, true},
		{80, GradeB, true},
		{89.999, GradeB, true},
		{90, GradeA, true},
		{99.99, GradeA, true},
		{100, GradeA, true},
		{100.01, "", false},
		{-0.5, "", false},
	}
	for _, tt := range tests {
		got, ok := GradeFor(tt.score)
		assert.Equal(t, tt.graded, ok, "score %v", tt.score)
		assert.Equal(t, tt.want, got, "score %v", tt.score)
	}
}

func TestGradeDistribution(t *testing.T) {
	a := classAnalyzer(t)

	g, err := a.GradeDistribution(scores)
	require.NoError(t, err)
	assert.Equal(t, map[Grade]int{GradeF: 0, GradeD: 3, GradeC: 0, GradeB: 1, GradeA: 1}, g.Counts)
	assert.Equal(t, 5, g.Graded())

	table := g.Table()
	assert.Equal(t, []string{"F", "D", "C", "B", "A"}, table.RowLabels)
	assert.Equal(t, "Grade", table.IndexName)
	assert.Equal(t, [][]string{{"F", "0"}, {"D", "3"}, {"C", "0"}, {"B", "1"}, {"A", "1"}}, table.Records())
}

func TestGradeDistribution_Ungraded(t *testing.T) {
	a := newAnalyzer(t, []string{"Maths", "Bonus"}, [][]string{
		{"100", "110"},
		{"", ""},
		{"90", "90"},
		{"-10", "0"},
	})

	g, err := a.GradeDistribution(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Counts[GradeA])
	assert.Equal(t, 3, g.Ungraded)
	assert.Equal(t, 1, g.Graded())

	table := g.Table()
	assert.Equal(t, []string{"F", "D", "C", "B", "A", Ungraded}, table.RowLabels)
}

func TestGradeDistribution_SumsToDefinedRows(t *testing.T) {
	a := classAnalyzer(t)
	for _, cols := range [][]string{{"Maths"}, {"Science"}, scores} {
		g, err := a.GradeDistribution(cols)
		require.NoError(t, err)

		defined := 0
		pct, err := a.Percentages(cols)
		require.NoError(t, err)
		for _, p := range pct {
			if p.Valid {
				defined++
			}
		}
		assert.Equal(t, defined, g.Graded(), "%v", cols)
	}
}

func TestWithGrades(t *testing.T) {
	a := classAnalyzer(t)

	ds, err := a.WithGrades(scores)
	require.NoError(t, err)
	assert.Equal(t, "B", ds.Value(0, "Grade").String())
	assert.Equal(t, "D", ds.Value(3, "Grade").String())
	assert.Equal(t, 40.0, ds.Value(3, "Percentage").Num)
	assert.False(t, a.Data().HasColumn("Grade"))
}

func TestSubjectGrades(t *testing.T) {
	a := classAnalyzer(t)

	g, err := a.SubjectGrades("Science")
	require.NoError(t, err)
	assert.Equal(t, "Science", g.Subject)
	assert.Equal(t, map[Grade]int{GradeF: 1, GradeD: 0, GradeC: 1, GradeB: 2, GradeA: 0}, g.Counts)
	assert.Equal(t, 1, g.Ungraded)
	assert.Equal(t, "Grade Distribution: Science", g.Table().Title)

	_, err = a.SubjectGrades("History")
	assert.ErrorIs(t, err, ErrColumnNotFound)
	_, err = a.SubjectGrades("")
	assert.ErrorIs(t, err, ErrSelectionRequired)
}

func TestGradeComparison(t *testing.T) {
	a := classAnalyzer(t)

	cmp, err := a.GradeComparison("Maths", "English")
	require.NoError(t, err)
	assert.Equal(t, []string{"Maths", "English"}, cmp.Columns)
	assert.Equal(t, []string{"F", "D", "C", "B", "A"}, cmp.RowLabels)
	// Maths 78,45,95,30,60 → C,D,A,F,C; English 90,60,100,50,40 → A,C,A,D,D
	assert.Equal(t, [][]string{
		{"F", "1", "0"},
		{"D", "1", "2"},
		{"C", "2", "1"},
		{"B", "0", "0"},
		{"A", "1", "2"},
	}, cmp.Records())

	withMissing, err := a.GradeComparison("Science")
	require.NoError(t, err)
	assert.Equal(t, Ungraded, withMissing.RowLabels[5])

	_, err = a.GradeComparison("Maths", "Art")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}
