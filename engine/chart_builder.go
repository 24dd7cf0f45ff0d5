package engine

import "github.com/spektr-org/marksheet/dataset"

// ============================================================================
// CHART BUILDER — Produces ChartConfig from result tables
// ============================================================================
//   compare, compare-keys     → bar, one series per row over columns
//   grades, subject-grades    → bar, one series over grades
//   grade-comparison          → bar, one series per subject over grades
//   trend                     → line, one series per column over groups
//   pass-rates, top           → bar, one series
//   passfail*, value-counts   → pie
//   correlation               → heatmap, one series per row
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#1F77B4", "#FF7F0E", "#2CA02C", "#D62728", "#9467BD",
	"#8C564B", "#E377C2", "#7F7F7F", "#BCBD22", "#17BECF",
}

// Pass/fail pie colours (light green, light coral).
var passFailColors = []string{"#90EE90", "#F08080"}

// BuildChart produces chart data for an operation's result table, or nil
// when the operation has no natural chart or the table is empty.
func BuildChart(operation string, t *Table) *ChartConfig {
	if t == nil || t.Len() == 0 {
		return nil
	}

	config := &ChartConfig{
		ChartType:  "bar",
		Title:      t.Title,
		ShowLegend: true,
		ShowGrid:   true,
	}

	switch operation {
	case OpCompare, OpCompareKeys:
		config.XAxis, config.YAxis = "Columns", "Values"
		config.Series = seriesPerRow(t)
	case OpGrades, OpSubjectGrades:
		config.XAxis, config.YAxis = "Grade", "Number of Students"
		config.ShowLegend = false
		config.Series = seriesPerColumn(t, Ungraded)
	case OpGradeComparison:
		config.XAxis, config.YAxis = "Grade", "Number of Students"
		config.Series = seriesPerColumn(t, Ungraded)
	case OpTrend:
		if !t.Labeled() {
			return nil
		}
		config.ChartType = "line"
		config.XAxis, config.YAxis = t.IndexName, "Average"
		config.Series = seriesPerColumn(t)
	case OpPassRates:
		config.XAxis, config.YAxis = "Subject", "Pass Rate (%)"
		config.ShowLegend = false
		config.Series = seriesPerColumn(t)
	case OpTop:
		config.XAxis, config.YAxis = "Student", "Percentage"
		config.ShowLegend = false
		config.Series = []ChartSeries{topSeries(t)}
	case OpPassFail, OpPassFailSummary:
		config.ChartType = "pie"
		config.ShowGrid = false
		config.Series = []ChartSeries{pieSeries(t)}
		config.Colors = passFailColors
		return config
	case OpValueCounts:
		config.ChartType = "pie"
		config.ShowGrid = false
		config.Series = []ChartSeries{pieSeries(t)}
	case OpCorrelation:
		config.ChartType = "heatmap"
		config.XAxis, config.YAxis = "Columns", "Columns"
		config.ShowLegend = false
		config.Series = seriesPerRow(t)
	default:
		return nil
	}

	config.Colors = assignColors(len(config.Series))
	if config.ChartType == "pie" && len(config.Series) > 0 {
		config.Colors = assignColors(len(config.Series[0].Data))
	}
	return config
}

// ============================================================================
// SERIES BUILDERS
// ============================================================================

func point(label string, v dataset.Value) ChartPoint {
	f, ok := v.Float()
	if !ok {
		return ChartPoint{Label: label, Missing: true}
	}
	return ChartPoint{Label: label, Value: RoundTo2(f)}
}

func rowLabel(t *Table, r int) string {
	if t.Labeled() {
		return t.RowLabels[r]
	}
	return ""
}

// seriesPerRow builds one series per table row, with a point per column.
func seriesPerRow(t *Table) []ChartSeries {
	series := make([]ChartSeries, 0, t.Len())
	for r, row := range t.Rows {
		points := make([]ChartPoint, 0, len(t.Columns))
		for c, name := range t.Columns {
			points = append(points, point(name, row[c]))
		}
		series = append(series, ChartSeries{
			Name:  rowLabel(t, r),
			Data:  points,
			Color: defaultColors[r%len(defaultColors)],
		})
	}
	return series
}

// seriesPerColumn builds one series per table column, with a point per row
// label. Rows whose label is in skip are left out.
func seriesPerColumn(t *Table, skip ...string) []ChartSeries {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[s] = true
	}
	series := make([]ChartSeries, 0, len(t.Columns))
	for c, name := range t.Columns {
		points := make([]ChartPoint, 0, t.Len())
		for r, row := range t.Rows {
			label := rowLabel(t, r)
			if skipped[label] {
				continue
			}
			points = append(points, point(label, row[c]))
		}
		series = append(series, ChartSeries{
			Name:  name,
			Data:  points,
			Color: defaultColors[c%len(defaultColors)],
		})
	}
	return series
}

// pieSeries reads label/count pairs from the first two columns.
func pieSeries(t *Table) ChartSeries {
	s := ChartSeries{Name: t.Title}
	if len(t.Columns) < 2 {
		return s
	}
	for _, row := range t.Rows {
		s.Data = append(s.Data, point(row[0].String(), row[1]))
	}
	return s
}

// topSeries plots Percentage, labelled by the name column when the table
// has one and by row position otherwise.
func topSeries(t *Table) ChartSeries {
	s := ChartSeries{Name: "Percentage", Color: defaultColors[0]}
	pct := -1
	for c, name := range t.Columns {
		if name == "Percentage" {
			pct = c
			break
		}
	}
	if pct < 0 {
		return s
	}
	for r, row := range t.Rows {
		label := rowLabel(t, r)
		if pct > 0 && !row[0].Missing {
			label = row[0].String()
		}
		s.Data = append(s.Data, point(label, row[pct]))
	}
	return s
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
