package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/marksheet/dataset"
	"github.com/spektr-org/marksheet/internal/testutil"
)

var scores = []string{"Maths", "Science", "English"}

func newAnalyzer(t *testing.T, header []string, records [][]string) *Analyzer {
	t.Helper()
	ds, err := dataset.FromRecords("test.csv", header, records)
	require.NoError(t, err)
	return New(ds, WithLogger(testutil.NewTestLogger(t)))
}

// classAnalyzer: Percentages over scores are 83, 46.67, 94.33, 40, 56.67.
func classAnalyzer(t *testing.T) *Analyzer {
	return newAnalyzer(t,
		[]string{"Roll Number", "Name", "Section", "Maths", "Science", "English"},
		[][]string{
			{"1", "Asha", "A", "78", "81", "90"},
			{"2", "Bilal", "B", "45", "35", "60"},
			{"3", "Chen", "A", "95", "88", "100"},
			{"4", "Dara", "B", "30", "NA", "50"},
			{"5", "Eli", "A", "60", "70", "40"},
		})
}

func TestNew_NumericColumns(t *testing.T) {
	a := classAnalyzer(t)
	assert.Equal(t, []string{"Roll Number", "Maths", "Science", "English"}, a.NumericColumns())
	assert.Equal(t, DefaultKeyColumn, a.KeyColumn())
	assert.Equal(t, DefaultTopN, a.TopN())

	b := New(a.Data(), WithKeyColumn("Name"), WithTopN(3))
	assert.Equal(t, "Name", b.KeyColumn())
	assert.Equal(t, 3, b.TopN())
}

func TestColumnSelection(t *testing.T) {
	a := classAnalyzer(t)

	_, err := a.ColumnStatistics([]string{"Maths", "History"})
	assert.ErrorIs(t, err, ErrColumnNotFound)
	assert.Contains(t, err.Error(), `"History"`)

	_, err = a.ColumnStatistics([]string{})
	assert.ErrorIs(t, err, ErrSelectionRequired)

	textOnly := newAnalyzer(t, []string{"Name"}, [][]string{{"Asha"}})
	_, err = textOnly.GradeDistribution(nil)
	assert.ErrorIs(t, err, ErrSelectionRequired)
}

func TestColumnStatistics(t *testing.T) {
	a := classAnalyzer(t)

	s, err := a.ColumnStatistics([]string{"Maths", "Science"})
	require.NoError(t, err)
	assert.False(t, s.Extended)

	maths, ok := s.Column("Maths")
	require.True(t, ok)
	assert.InDelta(t, 61.6, maths.Mean.Value, 1e-9)
	assert.Equal(t, 30.0, maths.Min.Value)
	assert.Equal(t, 95.0, maths.Max.Value)

	science, _ := s.Column("Science")
	assert.Equal(t, 4, science.Count)
	assert.InDelta(t, 68.5, science.Mean.Value, 1e-9)

	table := s.Table()
	assert.Equal(t, []string{"mean", "min", "max"}, table.RowLabels)
	assert.Equal(t, []string{"Maths", "Science"}, table.Columns)
	assert.Equal(t, "Statistic", table.IndexName)
}

func TestExtendedColumnStatistics(t *testing.T) {
	a := classAnalyzer(t)

	s, err := a.ExtendedColumnStatistics([]string{"Maths", "Science"})
	require.NoError(t, err)

	maths, _ := s.Column("Maths")
	assert.Equal(t, 60.0, maths.Median.Value)
	assert.InDelta(t, 25.7934, maths.Std.Value, 1e-4)

	science, _ := s.Column("Science")
	assert.Equal(t, 75.5, science.Median.Value)

	assert.Equal(t, []string{"mean", "median", "min", "max", "std"}, s.Table().RowLabels)
}

func TestStatistics_NoData(t *testing.T) {
	a := newAnalyzer(t, []string{"Maths", "Blank", "Single"}, [][]string{
		{"50", "", "7"},
		{"70", "NA", ""},
	})

	s, err := a.ExtendedColumnStatistics(nil)
	require.NoError(t, err)

	blank, _ := s.Column("Blank")
	assert.False(t, blank.Mean.Valid)
	assert.False(t, blank.Median.Valid)
	assert.Equal(t, NoData, blank.Mean.String())

	single, _ := s.Column("Single")
	assert.True(t, single.Mean.Valid)
	assert.False(t, single.Std.Valid)

	table := s.Table()
	assert.True(t, table.Cell(0, "Blank").Missing)
	assert.Equal(t, NoData, table.Display()[0][2])
}

func TestClassifyPassFail(t *testing.T) {
	a := classAnalyzer(t)

	c, err := a.ClassifyPassFail(40, scores)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pass", "Fail", "Pass", "Fail", "Pass"}, c.Labels)
	assert.Equal(t, 3, c.Passed())
	assert.Equal(t, "Fail", c.Data.Value(3, PassColumn).String())
	assert.False(t, a.Data().HasColumn(PassColumn), "bound dataset must stay untouched")

	summary := c.Summary()
	assert.Equal(t, []string{"Status", "Count"}, summary.Columns)
	require.Equal(t, 2, summary.Len())
	assert.Equal(t, "Pass", summary.Rows[0][0].String())
	assert.Equal(t, 3.0, summary.Rows[0][1].Num)
	assert.Equal(t, "Fail", summary.Rows[1][0].String())
	assert.Equal(t, 2.0, summary.Rows[1][1].Num)
}

func TestPassFailSummary_CountsMatchRows(t *testing.T) {
	a := classAnalyzer(t)
	for _, threshold := range []float64{0, 30, 40, 60, 90, 101} {
		c, err := a.ClassifyPassFail(threshold, scores)
		require.NoError(t, err)

		total := 0.0
		for _, row := range New(c.Data).PassFailSummary().Rows {
			total += row[1].Num
		}
		assert.Equal(t, float64(a.Data().Len()), total, "threshold %v", threshold)
	}
}

func TestPassFailSummary_WithoutPassColumn(t *testing.T) {
	summary := classAnalyzer(t).PassFailSummary()
	assert.Equal(t, []string{"Status", "Count"}, summary.Columns)
	assert.Equal(t, 0, summary.Len())
}

func TestPassFail_Example(t *testing.T) {
	a := newAnalyzer(t, []string{"Math"}, [][]string{{"30"}, {"50"}, {"95"}})

	c, err := a.ClassifyPassFail(40, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fail", "Pass", "Pass"}, c.Labels)

	g, err := a.GradeDistribution([]string{"Math"})
	require.NoError(t, err)
	assert.Equal(t, map[Grade]int{GradeF: 1, GradeD: 1, GradeC: 0, GradeB: 0, GradeA: 1}, g.Counts)
	assert.Equal(t, 0, g.Ungraded)
}

func TestWeakStudents(t *testing.T) {
	a := classAnalyzer(t)

	weak, err := a.WeakStudents(40, scores, Col("Name"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Maths", "Science", "English"}, weak.Columns)
	assert.Equal(t, []string{"1", "3"}, weak.RowLabels)
	assert.Equal(t, "Dara", weak.Cell(1, "Name").String())

	noName, err := a.WeakStudents(40, scores, Col("Student"))
	require.NoError(t, err)
	assert.Equal(t, scores, noName.Columns)
}

func TestWeakStudents_AnyColumn(t *testing.T) {
	a := newAnalyzer(t, []string{"Math", "Sci"}, [][]string{{"30", "90"}, {"50", "30"}})

	weak, err := a.WeakStudents(40, []string{"Math", "Sci"}, NoColumn)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1"}, weak.RowLabels)
}

func TestWeakStudents_ContainsEveryFail(t *testing.T) {
	a := classAnalyzer(t)
	for _, threshold := range []float64{35, 40, 50, 80, 95} {
		c, err := a.ClassifyPassFail(threshold, scores)
		require.NoError(t, err)
		weak, err := a.WeakStudents(threshold, scores, NoColumn)
		require.NoError(t, err)

		weakRows := map[string]bool{}
		for _, l := range weak.RowLabels {
			weakRows[l] = true
		}
		for r, label := range c.Labels {
			if label == StatusFail {
				assert.True(t, weakRows[itoa(r)], "row %d fails at %v but is not weak", r, threshold)
			}
		}
	}
}

func TestTopPerformers(t *testing.T) {
	a := classAnalyzer(t)

	top, err := a.TopPerformers(3, scores, Col("Name"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Percentage", "Maths", "Science", "English"}, top.Columns)
	assert.Equal(t, []string{"2", "0", "4"}, top.RowLabels)
	assert.Equal(t, "Chen", top.Cell(0, "Name").String())
	assert.InDelta(t, 94.333, top.Cell(0, "Percentage").Num, 1e-3)
	assert.False(t, a.Data().HasColumn("Percentage"))

	all, err := a.TopPerformers(50, scores, NoColumn)
	require.NoError(t, err)
	assert.Equal(t, 5, all.Len())
	assert.Equal(t, "Percentage", all.Columns[0])

	none, err := a.TopPerformers(0, scores, NoColumn)
	require.NoError(t, err)
	assert.Equal(t, 0, none.Len())

	_, err = a.TopPerformers(-1, scores, NoColumn)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTopPerformers_TiesAndUndefined(t *testing.T) {
	a := newAnalyzer(t, []string{"Maths", "Science"}, [][]string{
		{"", ""},
		{"70", "70"},
		{"60", "80"},
		{"90", ""},
		{"50", "90"},
	})

	top, err := a.TopPerformers(5, nil, NoColumn)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1", "2", "4", "0"}, top.RowLabels)
	assert.True(t, top.Cell(4, "Percentage").Missing)
}

func TestTopPerformers_ColumnSubsetIsNotCached(t *testing.T) {
	a := classAnalyzer(t)

	first, err := a.TopPerformers(1, []string{"Maths"}, NoColumn)
	require.NoError(t, err)
	second, err := a.TopPerformers(1, []string{"English"}, NoColumn)
	require.NoError(t, err)

	assert.Equal(t, 95.0, first.Cell(0, "Percentage").Num)
	assert.Equal(t, 100.0, second.Cell(0, "Percentage").Num)
}

func TestSubjectPassFailRates(t *testing.T) {
	a := classAnalyzer(t)

	rates, err := a.SubjectPassFailRates(scores)
	require.NoError(t, err)
	assert.Equal(t, scores, rates.RowLabels)
	assert.Equal(t, 80.0, rates.Rows[0][0].Num)
	assert.Equal(t, 60.0, rates.Rows[1][0].Num)
	assert.Equal(t, 100.0, rates.Rows[2][0].Num)
}

func TestTrendByGroup(t *testing.T) {
	a := classAnalyzer(t)

	trend, err := a.TrendByGroup("Section", []string{"Maths"})
	require.NoError(t, err)
	assert.Equal(t, "Section", trend.IndexName)
	assert.Equal(t, []string{"A", "B"}, trend.RowLabels)
	assert.InDelta(t, 77.667, trend.Rows[0][0].Num, 1e-3)
	assert.Equal(t, 37.5, trend.Rows[1][0].Num)

	missing, err := a.TrendByGroup("Term", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Error"}, missing.Columns)
	assert.Equal(t, "Term column not found.", missing.Rows[0][0].String())

	_, err = a.TrendByGroup("", nil)
	assert.ErrorIs(t, err, ErrSelectionRequired)
}

func TestTrendByGroup_KeyOrder(t *testing.T) {
	a := newAnalyzer(t, []string{"Year", "Maths"}, [][]string{
		{"100", "10"},
		{"9", "20"},
		{"", "99"},
		{"10", "30"},
		{"9", "40"},
	})

	trend, err := a.TrendByGroup("Year", []string{"Maths"})
	require.NoError(t, err)
	assert.Equal(t, []string{"9", "10", "100"}, trend.RowLabels)
	assert.Equal(t, 30.0, trend.Rows[0][0].Num)
}

func TestCompareRows(t *testing.T) {
	a := classAnalyzer(t)

	first, err := a.CompareRows([]int{2, 0}, []string{"Maths", "English"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "0"}, first.RowLabels)
	assert.Equal(t, 95.0, first.Cell(0, "Maths").Num)

	second, err := a.CompareRows([]int{2, 0}, []string{"Maths", "English"})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = a.CompareRows([]int{0, 5}, nil)
	assert.ErrorIs(t, err, ErrRowOutOfRange)
	_, err = a.CompareRows([]int{-1}, nil)
	assert.ErrorIs(t, err, ErrRowOutOfRange)
	_, err = a.CompareRows(nil, nil)
	assert.ErrorIs(t, err, ErrSelectionRequired)
}

func TestLookupByKey(t *testing.T) {
	a := classAnalyzer(t)

	tests := []struct {
		name      string
		key       string
		keyColumn string
		wantRow   int
		wantOK    bool
	}{
		{"default column", "3", "", 2, true},
		{"numeric equality", "3.0", "", 2, true},
		{"text key", "Chen", "Name", 2, true},
		{"text is exact", "chen", "Name", 0, false},
		{"absent key", "42", "", 0, false},
		{"absent column", "1", "Student ID", 0, false},
		{"blank key", " ", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := a.LookupByKey(tt.key, tt.keyColumn)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantRow, rec.Index)
				name, _ := rec.Get("Name")
				assert.Equal(t, "Chen", name.String())
			}
		})
	}
}

func TestCompareByKey(t *testing.T) {
	a := classAnalyzer(t)

	cmp, err := a.CompareByKey([]string{"1", "3"}, "", []string{"Maths"})
	require.NoError(t, err)
	assert.Equal(t, "Roll Number", cmp.IndexName)
	assert.Equal(t, []string{"1", "3"}, cmp.RowLabels)
	assert.Equal(t, 78.0, cmp.Rows[0][0].Num)
	assert.Equal(t, 95.0, cmp.Rows[1][0].Num)

	_, err = a.CompareByKey([]string{"1", "9"}, "", []string{"Maths"})
	assert.ErrorIs(t, err, ErrKeyNotFound)
	_, err = a.CompareByKey([]string{"1"}, "", []string{})
	assert.ErrorIs(t, err, ErrSelectionRequired)
	_, err = a.CompareByKey([]string{"1"}, "ID", nil)
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestCorrelation(t *testing.T) {
	a := newAnalyzer(t, []string{"X", "Y", "Z", "C"}, [][]string{
		{"1", "2", "9", "5"},
		{"2", "4", "7", "5"},
		{"3", "6", "", "5"},
		{"4", "8", "1", "5"},
	})

	corr, err := a.Correlation(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y", "Z", "C"}, corr.RowLabels)
	assert.Equal(t, 1.0, corr.Cell(0, "X").Num)
	assert.InDelta(t, 1.0, corr.Cell(0, "Y").Num, 1e-12)
	assert.InDelta(t, corr.Cell(2, "X").Num, corr.Cell(0, "Z").Num, 1e-12)
	assert.Less(t, corr.Cell(0, "Z").Num, 0.0)
	assert.True(t, corr.Cell(3, "C").Missing)
	assert.True(t, corr.Cell(0, "C").Missing)
}

func TestValueCountsAndUniqueValues(t *testing.T) {
	a := classAnalyzer(t)

	counts, err := a.ValueCounts("Section")
	require.NoError(t, err)
	assert.Equal(t, []string{"Section", "Count"}, counts.Columns)
	assert.Equal(t, [][]string{{"A", "3"}, {"B", "2"}}, counts.Records())

	values, err := a.UniqueValues("Section")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, values)

	_, err = a.ValueCounts("Term")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestFilterRows(t *testing.T) {
	a := classAnalyzer(t)

	b, err := a.FilterRows("Section", " b ")
	require.NoError(t, err)
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, "Bilal", b.Value(0, "Name").String())

	byScore, err := a.FilterRows("Maths", "95.0")
	require.NoError(t, err)
	assert.Equal(t, 1, byScore.Len())
	assert.Equal(t, 5, a.Data().Len())
}

func TestCleanData(t *testing.T) {
	a := newAnalyzer(t, []string{"Name", "Maths", "Science"}, [][]string{
		{"Asha", "70", "80"},
		{"Asha", "70", "80"},
		{"Bilal", "abc", "50"},
		{"Chen", "60", "NA"},
		{"Dara", "55", "65"},
	})
	require.Equal(t, []string{"Science"}, a.NumericColumns())

	cleaned, err := a.CleanData([]string{"Maths", "Science"})
	require.NoError(t, err)
	assert.Equal(t, 2, cleaned.Len())
	assert.Equal(t, "Dara", cleaned.Value(1, "Name").String())
	maths, _ := cleaned.Column("Maths")
	assert.Equal(t, dataset.KindNumeric, maths.Kind)

	original, _ := a.Data().Column("Maths")
	assert.Equal(t, dataset.KindUndetermined, original.Kind)
	assert.Equal(t, 5, a.Data().Len())

	defaults, err := a.CleanData(nil)
	require.NoError(t, err)
	assert.Equal(t, 3, defaults.Len())
}

func TestInsights(t *testing.T) {
	a := newAnalyzer(t, []string{"Maths", "Blank"}, [][]string{{"30", ""}, {"50", ""}, {"95", ""}})

	lines, err := a.Insights(nil)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Maths: mean 58.33, median 50, min 30, max 95, std 33.29 (3 values)", lines[0])
}

func TestDescribe(t *testing.T) {
	profile := classAnalyzer(t).Describe()
	assert.Equal(t, 5, profile.Rows)
	assert.Equal(t, "Name", profile.SuggestedNameColumn())

	tbl := ProfileTable(profile)
	assert.Equal(t, []string{"Roll Number", "Name", "Section", "Maths", "Science", "English"}, tbl.RowLabels)
	assert.Equal(t, "identifier", tbl.Cell(0, "Role").String())
	assert.Equal(t, "group", tbl.Cell(2, "Role").String())
	assert.Equal(t, "numeric", tbl.Cell(4, "Kind").String())
	assert.Equal(t, "1", tbl.Cell(4, "Missing").String())
	assert.Equal(t, "A, B", tbl.Cell(2, "Samples").String())
	assert.Nil(t, SkippedTable(profile))
}

func TestSkippedTable(t *testing.T) {
	a := newAnalyzer(t, []string{"Maths", "Mixed", "Empty"}, [][]string{
		{"50", "7", ""},
		{"60", "absent", "NA"},
	})
	tbl := SkippedTable(a.Describe())
	require.NotNil(t, tbl)
	assert.Equal(t, []string{"Mixed", "Empty"}, tbl.RowLabels)
	assert.Equal(t, "yes", tbl.Cell(0, "Recoverable").String())
	assert.Equal(t, "no", tbl.Cell(1, "Recoverable").String())
}

func itoa(i int) string {
	return dataset.FormatNumber(float64(i))
}
