package sdmx

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// CellString converts a raw cell to a string. Missing cells, NaN numbers
// and strings the mapping treats as "no data" return false.
//
// Some JSON sources wrap single values into one-element lists, those are
// unwrapped. Longer lists are joined with ", ".
func CellString(m *ColumnMapping, v any) (string, bool) {
	if v == nil {
		return "", false
	}
	switch t := v.(type) {
	case []any:
		return listString(m, t)
	case []string:
		vals := make([]any, len(t))
		for i := range t {
			vals[i] = t[i]
		}
		return listString(m, vals)
	case float64:
		if math.IsNaN(t) {
			return "", false
		}
	case float32:
		if math.IsNaN(float64(t)) {
			return "", false
		}
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" || (m != nil && m.IsNA(s)) {
		return "", false
	}
	return s, true
}

func listString(m *ColumnMapping, vals []any) (string, bool) {
	var parts []string
	for _, v := range vals {
		if s, ok := CellString(m, v); ok {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, ", "), true
}
