package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/spektr-org/marksheet/dataset"
)

// ============================================================================
// AUTO-DISCOVERY — Heuristic Column Classification
// ============================================================================
// Inspects a loaded dataset and describes every column.
//
// Classification pipeline per column:
//   1. Count missing and distinct cells, collect samples
//   2. Kind (decided at load time) + cardinality → role
//   3. All-missing and mixed columns are reported as skipped
// ============================================================================

const maxSamples = 10

var identifierHint = regexp.MustCompile(`(?i)\b(roll|id|no|number|code|key)\b`)

// Discover generates a Config describing ds.
func Discover(ds *dataset.Dataset) *Config {
	config := &Config{
		Name:         ds.Name(),
		Rows:         ds.Len(),
		Columns:      make([]ColumnMeta, 0, ds.Width()),
		DiscoveredAt: time.Now().Format(time.RFC3339),
	}
	if config.Name == "" {
		config.Name = "Auto-discovered Dataset"
	}

	for _, c := range ds.Columns() {
		col, skipped := analyzeColumn(c, ds.Len())
		config.Columns = append(config.Columns, col)
		if skipped != nil {
			config.SkippedColumns = append(config.SkippedColumns, *skipped)
		}
	}
	return config
}

// ============================================================================
// COLUMN ANALYSIS
// ============================================================================

func analyzeColumn(c *dataset.Column, totalRows int) (ColumnMeta, *SkippedColumn) {
	col := ColumnMeta{
		Name:        c.Name,
		Key:         toSnakeCase(c.Name),
		DisplayName: toDisplayName(c.Name),
		Kind:        c.Kind,
	}

	uniqueSet := make(map[string]bool)
	integral := true
	for _, v := range c.Values {
		if v.Missing {
			col.MissingCount++
			continue
		}
		uniqueSet[v.String()] = true
		if v.Numeric && v.Num != float64(int64(v.Num)) {
			integral = false
		}
	}
	col.UniqueCount = len(uniqueSet)
	col.SampleValues = collectSamples(uniqueSet, maxSamples)
	col.CardinalityHint = cardinalityHint(col.UniqueCount)

	present := totalRows - col.MissingCount
	uniquePerRow := present > 0 && col.UniqueCount == present

	if present == 0 {
		col.Role = RoleScore
		return col, &SkippedColumn{
			Column: c.Name,
			Reason: "All values are empty/null",
		}
	}

	switch c.Kind {
	case dataset.KindNumeric:
		col.Role = RoleScore
		if uniquePerRow && integral && identifierHint.MatchString(c.Name) {
			col.Role = RoleIdentifier
		}
	case dataset.KindText:
		switch {
		case uniquePerRow && present > 1:
			col.Role = RoleIdentifier
		case col.UniqueCount <= maxSamples || col.UniqueCount*2 <= present:
			col.Role = RoleGroup
		default:
			col.Role = RoleLabel
		}
	default:
		col.Role = RoleLabel
		return col, &SkippedColumn{
			Column:      c.Name,
			Reason:      fmt.Sprintf("Mixed numeric and text values (%d distinct); clean coerces text cells to missing", col.UniqueCount),
			Recoverable: true,
		}
	}
	return col, nil
}

func cardinalityHint(unique int) string {
	switch {
	case unique <= 10:
		return "low"
	case unique <= 100:
		return "medium"
	default:
		return "high"
	}
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

// toSnakeCase converts "Column Name" or "columnName" → "column_name".
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			prev := rune(s[i-1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				result.WriteRune('_')
			}
		}
		result.WriteRune(r)
	}

	s = strings.ToLower(result.String())
	s = strings.NewReplacer(" ", "_", "-", "_", ".", "_").Replace(s)
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.Trim(s, "_")
}

// toDisplayName cleans a header for human display.
// "maths_score" → "Maths Score", "Roll Number" → "Roll Number"
func toDisplayName(s string) string {
	if strings.Contains(s, " ") {
		return strings.TrimSpace(s)
	}
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return cases.Title(language.English).String(strings.Join(strings.Fields(s), " "))
}

// collectSamples picks up to maxSamples representative values.
func collectSamples(uniqueSet map[string]bool, max int) []string {
	samples := make([]string, 0, len(uniqueSet))
	for v := range uniqueSet {
		samples = append(samples, v)
	}
	sort.Strings(samples)
	if len(samples) > max {
		samples = samples[:max]
	}
	return samples
}
