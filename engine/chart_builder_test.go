package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildChart_CompareRows(t *testing.T) {
	a := classAnalyzer(t)
	table, err := a.CompareRows([]int{0, 3}, scores)
	require.NoError(t, err)

	chart := BuildChart(OpCompare, table)
	require.NotNil(t, chart)
	assert.Equal(t, "bar", chart.ChartType)
	assert.Equal(t, "Columns", chart.XAxis)
	require.Len(t, chart.Series, 2)
	assert.Equal(t, "0", chart.Series[0].Name)
	assert.Equal(t, []ChartPoint{
		{Label: "Maths", Value: 30},
		{Label: "Science", Missing: true},
		{Label: "English", Value: 50},
	}, chart.Series[1].Data)
	assert.Len(t, chart.Colors, 2)
}

func TestBuildChart_GradesSkipUngraded(t *testing.T) {
	a := classAnalyzer(t)
	g, err := a.SubjectGrades("Science")
	require.NoError(t, err)
	require.Equal(t, 6, g.Table().Len())

	chart := BuildChart(OpSubjectGrades, g.Table())
	require.NotNil(t, chart)
	require.Len(t, chart.Series, 1)
	labels := make([]string, 0, 5)
	for _, p := range chart.Series[0].Data {
		labels = append(labels, p.Label)
	}
	assert.Equal(t, []string{"F", "D", "C", "B", "A"}, labels)
	assert.Equal(t, "Number of Students", chart.YAxis)
}

func TestBuildChart_TrendAndTop(t *testing.T) {
	a := classAnalyzer(t)

	trend, err := a.TrendByGroup("Section", []string{"Maths", "English"})
	require.NoError(t, err)
	chart := BuildChart(OpTrend, trend)
	require.NotNil(t, chart)
	assert.Equal(t, "line", chart.ChartType)
	assert.Equal(t, "Section", chart.XAxis)
	require.Len(t, chart.Series, 2)
	assert.Equal(t, "English", chart.Series[1].Name)
	assert.Equal(t, ChartPoint{Label: "B", Value: 55}, chart.Series[1].Data[1])

	top, err := a.TopPerformers(2, scores, Col("Name"))
	require.NoError(t, err)
	chart = BuildChart(OpTop, top)
	require.NotNil(t, chart)
	assert.Equal(t, []ChartPoint{{Label: "Chen", Value: 94.33}, {Label: "Asha", Value: 83}}, chart.Series[0].Data)
}

func TestBuildChart_NoChart(t *testing.T) {
	a := classAnalyzer(t)
	stats, err := a.ColumnStatistics(nil)
	require.NoError(t, err)

	assert.Nil(t, BuildChart(OpStats, stats.Table()))
	assert.Nil(t, BuildChart(OpCompare, nil))
	assert.Nil(t, BuildChart(OpPassFailSummary, a.PassFailSummary()))
}
