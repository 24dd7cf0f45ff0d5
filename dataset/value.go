package dataset

import (
	"math"
	"strconv"
	"strings"
)

// ============================================================================
// VALUE — one cell of a dataset
// ============================================================================
// A cell keeps the raw text it was loaded from plus its numeric reading.
// Missing cells (empty, NA, NaN, null...) carry Missing=true and never
// participate in aggregates.
// ============================================================================

// Value is a single cell.
type Value struct {
	Raw     string  `json:"raw"`
	Num     float64 `json:"num"`
	Numeric bool    `json:"numeric"`
	Missing bool    `json:"missing"`
}

// missingTokens are the cell spellings read as "no value".
var missingTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"n/a":  true,
	"NaN":  true,
	"nan":  true,
	"null": true,
	"NULL": true,
	"None": true,
}

// Parse reads raw cell text into a Value.
func Parse(raw string) Value {
	s := strings.TrimSpace(raw)
	if missingTokens[s] {
		return Missing()
	}
	if f, ok := parseNumber(s); ok {
		return Value{Raw: s, Num: f, Numeric: true}
	}
	return Value{Raw: s}
}

// Number builds a numeric Value. NaN becomes a missing Value.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Missing()
	}
	return Value{Raw: strconv.FormatFloat(f, 'f', -1, 64), Num: f, Numeric: true}
}

// Text builds a non-numeric Value.
func Text(s string) Value {
	return Value{Raw: s}
}

// Missing builds a missing Value.
func Missing() Value {
	return Value{Missing: true}
}

// Float returns the numeric reading and whether it is usable.
func (v Value) Float() (float64, bool) {
	if v.Missing || !v.Numeric {
		return 0, false
	}
	return v.Num, true
}

// Coerce returns the numeric form of v; anything not numeric becomes missing.
func (v Value) Coerce() Value {
	if v.Missing {
		return v
	}
	if v.Numeric {
		return v
	}
	if f, ok := parseNumber(strings.TrimSpace(v.Raw)); ok {
		return Value{Raw: v.Raw, Num: f, Numeric: true}
	}
	return Missing()
}

// String renders the cell for tables and exports.
func (v Value) String() string {
	if v.Missing {
		return ""
	}
	if v.Numeric {
		return FormatNumber(v.Num)
	}
	return v.Raw
}

// Equal reports whether two cells hold the same value. Numbers compare
// numerically, everything else by text.
func (v Value) Equal(o Value) bool {
	if v.Missing || o.Missing {
		return v.Missing && o.Missing
	}
	if v.Numeric && o.Numeric {
		return v.Num == o.Num
	}
	return v.Raw == o.Raw
}

// FormatNumber prints whole numbers without decimals and everything else
// with the shortest representation that round-trips.
func FormatNumber(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
