package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRequest(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Stats", OpStats},
		{" pass_fail ", OpPassFail},
		{"top-performers", OpTop},
		{"corr", OpCorrelation},
		{"Value_Counts", OpValueCounts},
		{"grade-comparison", OpGradeComparison},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			req := NormalizeRequest(Request{Operation: tt.in})
			assert.Equal(t, tt.want, req.Operation)
			require.NotNil(t, req.Threshold)
			assert.Equal(t, DefaultThreshold, *req.Threshold)
		})
	}

	req := NormalizeRequest(Request{Columns: []string{" Maths ", "", "Science"}, Keys: []string{" 7 "}})
	assert.Equal(t, []string{"Maths", "Science"}, req.Columns)
	assert.Equal(t, []string{"7"}, req.Keys)

	assert.Nil(t, NormalizeRequest(Request{}).Columns)
	assert.NotNil(t, NormalizeRequest(Request{Columns: []string{}}).Columns)
}

func TestExecute_Operations(t *testing.T) {
	a := classAnalyzer(t)
	threshold := 50.0

	tests := []struct {
		name      string
		req       Request
		title     string
		rows      int
		chartType string
	}{
		{"stats", Request{Operation: OpStats, Columns: scores}, "Column Statistics", 3, ""},
		{"extended", Request{Operation: OpExtendedStats, Columns: scores}, "Extended Statistics", 5, ""},
		{"passfail", Request{Operation: OpPassFail, Columns: scores, Threshold: &threshold}, "Pass/Fail Classification", 5, "pie"},
		{"summary", Request{Operation: OpPassFailSummary, Columns: scores, Threshold: &threshold}, "Pass/Fail Summary", 2, "pie"},
		{"top default n", Request{Operation: OpTop, Columns: scores, NameColumn: "Name"}, "Top 5 Performers", 5, "bar"},
		{"top", Request{Operation: OpTop, Columns: scores, TopN: 2}, "Top 2 Performers", 2, "bar"},
		{"grades", Request{Operation: OpGrades, Columns: scores}, "Grade Distribution", 5, "bar"},
		{"subject grades", Request{Operation: OpSubjectGrades, Columns: []string{"Maths"}}, "Grade Distribution: Maths", 5, "bar"},
		{"grade comparison", Request{Operation: OpGradeComparison, Columns: []string{"Maths", "English"}}, "Grade Comparison", 5, "bar"},
		{"weak", Request{Operation: OpWeak, Columns: scores}, "Students Below 40", 2, ""},
		{"rates", Request{Operation: "rates", Columns: scores}, "Subject Pass Rates", 3, "bar"},
		{"trend", Request{Operation: OpTrend, GroupColumn: "Section", Columns: scores}, "Trend by Section", 2, "line"},
		{"trend missing group", Request{Operation: OpTrend, GroupColumn: "Term"}, "Trend", 1, ""},
		{"compare", Request{Operation: OpCompare, Rows: []int{0, 1}, Columns: scores}, "Row Comparison", 2, "bar"},
		{"compare keys", Request{Operation: OpCompareKeys, Keys: []string{"1", "2"}, Columns: scores}, "Student Comparison", 2, "bar"},
		{"lookup", Request{Operation: OpLookup, Keys: []string{"2"}}, "Row 1", 6, ""},
		{"correlation", Request{Operation: OpCorrelation, Columns: scores}, "Correlation", 3, "heatmap"},
		{"value counts", Request{Operation: OpValueCounts, Column: "Section"}, "Value Counts: Section", 2, "pie"},
		{"insights", Request{Operation: OpInsights, Columns: scores}, "Insights", 3, ""},
		{"clean", Request{Operation: OpClean, Columns: scores}, "Cleaned Data", 4, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Execute(a, tt.req)
			require.NoError(t, err)
			require.NotNil(t, res.Table)
			assert.Equal(t, tt.title, res.Title)
			assert.Equal(t, tt.rows, res.Table.Len())
			if tt.chartType == "" {
				assert.Nil(t, res.Chart)
			} else {
				require.NotNil(t, res.Chart)
				assert.Equal(t, tt.chartType, res.Chart.ChartType)
			}
		})
	}
}

func TestExecute_PassFailChartUsesSummary(t *testing.T) {
	res, err := Execute(classAnalyzer(t), Request{Operation: OpPassFail, Columns: scores})
	require.NoError(t, err)

	require.NotNil(t, res.Data)
	assert.True(t, res.Data.HasColumn(PassColumn))
	assert.Equal(t, []string{"3 of 5 rows pass at threshold 40"}, res.Lines)
	require.Len(t, res.Chart.Series, 1)
	assert.Equal(t, []ChartPoint{{Label: "Pass", Value: 3}, {Label: "Fail", Value: 2}}, res.Chart.Series[0].Data)
}

func TestExecute_PassFailSummaryClassifies(t *testing.T) {
	a := classAnalyzer(t)

	classified, err := Execute(a, Request{Operation: OpPassFail, Columns: scores})
	require.NoError(t, err)
	assert.Equal(t, 5, classified.Table.Len())

	res, err := Execute(a, Request{Operation: OpPassFailSummary, Columns: scores})
	require.NoError(t, err)
	counts := map[string]float64{}
	var total float64
	for _, row := range res.Table.Rows {
		n, ok := row[1].Float()
		require.True(t, ok)
		counts[row[0].String()] = n
		total += n
	}
	assert.Equal(t, float64(a.Data().Len()), total)
	assert.Equal(t, map[string]float64{StatusPass: 3, StatusFail: 2}, counts)

	// A dataset that already carries a Pass column is counted as is.
	res, err = Execute(New(classified.Data), Request{Operation: OpPassFailSummary, Threshold: new(float64)})
	require.NoError(t, err)
	assert.Equal(t, StatusPass, res.Table.Rows[0][0].String())
	n, _ := res.Table.Rows[0][1].Float()
	assert.Equal(t, 3.0, n)
}

func TestExecute_Errors(t *testing.T) {
	a := classAnalyzer(t)

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{"unknown operation", Request{Operation: "forecast"}, ErrUnknownOperation},
		{"negative top", Request{Operation: OpTop, TopN: -1}, ErrInvalidArgument},
		{"unknown column", Request{Operation: OpStats, Columns: []string{"Art"}}, ErrColumnNotFound},
		{"empty columns", Request{Operation: OpStats, Columns: []string{}}, ErrSelectionRequired},
		{"row out of range", Request{Operation: OpCompare, Rows: []int{7}}, ErrRowOutOfRange},
		{"no rows", Request{Operation: OpCompare}, ErrSelectionRequired},
		{"lookup missing", Request{Operation: OpLookup, Keys: []string{"99"}}, ErrKeyNotFound},
		{"lookup no key", Request{Operation: OpLookup}, ErrSelectionRequired},
		{"value counts no column", Request{Operation: OpValueCounts}, ErrSelectionRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Execute(a, tt.req)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := Execute(a, Request{Operation: OpTop, TopN: -1})
	assert.EqualError(t, err, "top: invalid argument: top performer count -1")
}

func TestResult_JSON(t *testing.T) {
	res, err := Execute(classAnalyzer(t), Request{Operation: OpExtendedStats, Columns: []string{"Science"}})
	require.NoError(t, err)

	out, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded struct {
		Operation string `json:"operation"`
		Table     struct {
			IndexName string          `json:"indexName"`
			RowLabels []string        `json:"rowLabels"`
			Columns   []string        `json:"columns"`
			Rows      [][]interface{} `json:"rows"`
		} `json:"table"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, OpExtendedStats, decoded.Operation)
	assert.Equal(t, "Statistic", decoded.Table.IndexName)
	assert.Equal(t, []string{"Science"}, decoded.Table.Columns)
	assert.Equal(t, 68.5, decoded.Table.Rows[0][0])
}
