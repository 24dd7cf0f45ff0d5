package engine

import (
	"fmt"
	"strings"
)

// ============================================================================
// EXECUTOR — Request dispatcher
// ============================================================================
// Entry point: Execute(analyzer, request)
//
// Pipeline:
//   1. NormalizeRequest → canonical operation name, trimmed column names,
//      default threshold
//   2. Dispatch to the Analyzer operation
//   3. BuildChart on the result table
//   4. Return Result
//
// The CLI, the web API and the MCP server all go through Execute.
// ============================================================================

// Operation names accepted by Execute.
const (
	OpStats           = "stats"
	OpExtendedStats   = "extended-stats"
	OpPassFail        = "passfail"
	OpPassFailSummary = "passfail-summary"
	OpTop             = "top"
	OpGrades          = "grades"
	OpSubjectGrades   = "subject-grades"
	OpGradeComparison = "grade-comparison"
	OpWeak            = "weak"
	OpPassRates       = "pass-rates"
	OpTrend           = "trend"
	OpCompare         = "compare"
	OpCompareKeys     = "compare-keys"
	OpLookup          = "lookup"
	OpCorrelation     = "correlation"
	OpValueCounts     = "value-counts"
	OpInsights        = "insights"
	OpClean           = "clean"
)

// Operations lists every operation name in display order.
var Operations = []string{
	OpStats, OpExtendedStats, OpPassFail, OpPassFailSummary, OpTop, OpGrades,
	OpSubjectGrades, OpGradeComparison, OpWeak, OpPassRates, OpTrend,
	OpCompare, OpCompareKeys, OpLookup, OpCorrelation, OpValueCounts,
	OpInsights, OpClean,
}

var operationAliases = map[string]string{
	"statistics":       OpStats,
	"describe":         OpStats,
	"extended":         OpExtendedStats,
	"pass-fail":        OpPassFail,
	"summary":          OpPassFailSummary,
	"top-performers":   OpTop,
	"distribution":     OpGrades,
	"weak-students":    OpWeak,
	"rates":            OpPassRates,
	"compare-rows":     OpCompare,
	"compare-students": OpCompareKeys,
	"corr":             OpCorrelation,
	"counts":           OpValueCounts,
}

// Request names an operation and its arguments.
type Request struct {
	Operation   string   `json:"operation"`
	Columns     []string `json:"columns,omitempty"`
	Threshold   *float64 `json:"threshold,omitempty"`
	TopN        int      `json:"topN,omitempty"`
	NameColumn  string   `json:"nameColumn,omitempty"`
	GroupColumn string   `json:"groupColumn,omitempty"`
	Column      string   `json:"column,omitempty"`
	Rows        []int    `json:"rows,omitempty"`
	Keys        []string `json:"keys,omitempty"`
	KeyColumn   string   `json:"keyColumn,omitempty"`
}

// ThresholdValue returns the request threshold or DefaultThreshold.
func (r Request) ThresholdValue() float64 {
	if r.Threshold == nil {
		return DefaultThreshold
	}
	return *r.Threshold
}

// NormalizeRequest canonicalises the operation name, trims column names and
// keys, and fills the default threshold. A non-nil Columns stays non-nil so
// that an explicit empty selection is still reported.
func NormalizeRequest(req Request) Request {
	op := strings.ToLower(strings.TrimSpace(req.Operation))
	op = strings.ReplaceAll(op, "_", "-")
	if alias, ok := operationAliases[op]; ok {
		op = alias
	}
	req.Operation = op

	if req.Columns != nil {
		req.Columns = trimAll(req.Columns)
	}
	req.Keys = trimAll(req.Keys)
	req.NameColumn = strings.TrimSpace(req.NameColumn)
	req.GroupColumn = strings.TrimSpace(req.GroupColumn)
	req.Column = strings.TrimSpace(req.Column)
	req.KeyColumn = strings.TrimSpace(req.KeyColumn)
	if req.Threshold == nil {
		t := DefaultThreshold
		req.Threshold = &t
	}
	return req
}

func trimAll(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Execute runs req against a and returns a render-ready Result.
func Execute(a *Analyzer, req Request) (*Result, error) {
	req = NormalizeRequest(req)
	if req.TopN == 0 {
		req.TopN = a.cfg.TopN
	}
	if req.KeyColumn == "" {
		req.KeyColumn = a.cfg.KeyColumn
	}
	a.log.Debug("execute", "operation", req.Operation, "columns", req.Columns)

	result := &Result{Operation: req.Operation}
	var chartTable *Table
	var err error

	switch req.Operation {
	case OpStats, OpExtendedStats:
		var s *Stats
		if req.Operation == OpStats {
			s, err = a.ColumnStatistics(req.Columns)
		} else {
			s, err = a.ExtendedColumnStatistics(req.Columns)
		}
		if err == nil {
			result.Table = s.Table()
		}

	case OpPassFail:
		var c *Classification
		if c, err = a.ClassifyPassFail(req.ThresholdValue(), req.Columns); err == nil {
			result.Table = DatasetTable("Pass/Fail Classification", c.Data)
			result.Data = c.Data
			chartTable = c.Summary()
			result.Lines = []string{fmt.Sprintf("%s of %s rows pass at threshold %s",
				FormatInt(c.Passed()), FormatInt(len(c.Labels)), FormatScore(c.Threshold))}
		}

	case OpPassFailSummary:
		if a.data.HasColumn(PassColumn) {
			result.Table = a.PassFailSummary()
			break
		}
		// Nothing classified yet: classify with the request's threshold.
		var c *Classification
		if c, err = a.ClassifyPassFail(req.ThresholdValue(), req.Columns); err == nil {
			result.Table = c.Summary()
		}

	case OpTop:
		result.Table, err = a.TopPerformers(req.TopN, req.Columns, Col(req.NameColumn))

	case OpGrades:
		var g *GradeCounts
		if g, err = a.GradeDistribution(req.Columns); err == nil {
			result.Table = g.Table()
		}

	case OpSubjectGrades:
		var g *GradeCounts
		if g, err = a.SubjectGrades(singleColumn(req)); err == nil {
			result.Table = g.Table()
		}

	case OpGradeComparison:
		result.Table, err = a.GradeComparison(req.Columns...)

	case OpWeak:
		result.Table, err = a.WeakStudents(req.ThresholdValue(), req.Columns, Col(req.NameColumn))

	case OpPassRates:
		result.Table, err = a.SubjectPassFailRates(req.Columns)

	case OpTrend:
		result.Table, err = a.TrendByGroup(req.GroupColumn, req.Columns)

	case OpCompare:
		result.Table, err = a.CompareRows(req.Rows, req.Columns)

	case OpCompareKeys:
		result.Table, err = a.CompareByKey(req.Keys, req.KeyColumn, req.Columns)

	case OpLookup:
		if len(req.Keys) == 0 {
			err = fmt.Errorf("%w: no key to look up", ErrSelectionRequired)
			break
		}
		rec, ok := a.LookupByKey(req.Keys[0], req.KeyColumn)
		if !ok {
			err = fmt.Errorf("%w: %s = %q", ErrKeyNotFound, req.KeyColumn, req.Keys[0])
			break
		}
		result.Table = rec.Table()

	case OpCorrelation:
		result.Table, err = a.Correlation(req.Columns)

	case OpValueCounts:
		result.Table, err = a.ValueCounts(singleColumn(req))

	case OpInsights:
		if result.Lines, err = a.Insights(req.Columns); err == nil {
			result.Table = InsightsTable(result.Lines)
		}

	case OpClean:
		if result.Data, err = a.CleanData(req.Columns); err == nil {
			result.Table = DatasetTable("Cleaned Data", result.Data)
			result.Lines = []string{fmt.Sprintf("kept %s of %s rows",
				FormatInt(result.Data.Len()), FormatInt(a.data.Len()))}
		}

	default:
		return nil, fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownOperation, req.Operation, strings.Join(Operations, ", "))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.Operation, err)
	}

	result.Title = result.Table.Title
	if chartTable == nil {
		chartTable = result.Table
	}
	result.Chart = BuildChart(req.Operation, chartTable)
	return result, nil
}

// singleColumn picks the one column an operation needs: Column, or the only
// entry of Columns.
func singleColumn(req Request) string {
	if req.Column != "" {
		return req.Column
	}
	if len(req.Columns) == 1 {
		return req.Columns[0]
	}
	return ""
}
