package dataset

import (
	"encoding/json"
	"fmt"
)

// ============================================================================
// KIND DETECTION
// ============================================================================
// A column's kind is decided once, from its cells:
//   every non-missing cell numeric  → Numeric (an all-missing column counts)
//   every non-missing cell text     → Text
//   a mix of both                   → Undetermined (numeric only once coerced)
// ============================================================================

// Kind is the declared value kind of a column.
type Kind int

const (
	KindUndetermined Kind = iota
	KindNumeric
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindText:
		return "text"
	default:
		return "undetermined"
	}
}

// MarshalJSON encodes the kind by name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// MarshalYAML encodes the kind by name.
func (k Kind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// UnmarshalJSON decodes a kind name.
func (k *Kind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "numeric":
		*k = KindNumeric
	case "text":
		*k = KindText
	case "undetermined":
		*k = KindUndetermined
	default:
		return fmt.Errorf("unknown column kind %q", s)
	}
	return nil
}

// InferKind inspects cells to determine a column kind.
func InferKind(values []Value) Kind {
	numCount, textCount := 0, 0
	for _, v := range values {
		switch {
		case v.Missing:
		case v.Numeric:
			numCount++
		default:
			textCount++
		}
	}
	switch {
	case textCount == 0:
		return KindNumeric
	case numCount == 0:
		return KindText
	default:
		return KindUndetermined
	}
}
