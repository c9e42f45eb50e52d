package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/m-g-d-c/crba-etl/pkg/sdmx"
)

var (
	termRe = regexp.MustCompile(
		`^\s*\(?\s*([A-Za-z][A-Za-z0-9_]*)\s*(==|!=)\s*(?:"([^"]*)"|'([^']*)')\s*\)?\s*`,
	)
	joinRe = regexp.MustCompile(`^(?:&&?|(?i:and)\s)\s*`)
)

type term struct {
	col string
	val string
	neg bool
}

// Filter selects the dimension slice of a frame that is normalized
// together. It is a conjunction of column equalities and inequalities.
type Filter struct {
	src   string
	terms []term
}

// ParseFilter reads a filter of terms like `DIM_SEX == "_T"` or
// `DIM_AGE != '_T'` joined by '&' or 'and'. An empty string selects all
// rows.
func ParseFilter(s string) (*Filter, error) {
	res := &Filter{src: strings.TrimSpace(s)}
	rest := res.src
	for rest != "" {
		m := termRe.FindStringSubmatch(rest)
		if m == nil {
			return nil, FilterError(s, fmt.Errorf("cannot parse '%s'", rest))
		}
		col := m[1]
		switch sdmx.RoleOf(col) {
		case sdmx.RoleUnknown, sdmx.RoleValue:
			return nil, FilterError(s, fmt.Errorf("cannot filter by '%s'", col))
		}
		val := m[3]
		if val == "" {
			val = m[4]
		}
		res.terms = append(res.terms, term{col: col, val: val, neg: m[2] == "!="})

		rest = rest[len(m[0]):]
		if rest == "" {
			break
		}
		j := joinRe.FindString(rest)
		if j == "" {
			return nil, FilterError(s, fmt.Errorf("expected '&' before '%s'", rest))
		}
		rest = rest[len(j):]
		if rest == "" {
			return nil, FilterError(s, fmt.Errorf("dangling '&'"))
		}
	}
	return res, nil
}

// Match checks if an observation belongs to the slice. Dimensions absent
// from the observation are totals.
func (f *Filter) Match(o *sdmx.Observation) bool {
	for _, t := range f.terms {
		eq := value(o, t.col) == t.val
		if eq == t.neg {
			return false
		}
	}
	return true
}

// IsEmpty is true for a filter that selects everything.
func (f *Filter) IsEmpty() bool {
	return len(f.terms) == 0
}

func (f *Filter) String() string {
	return f.src
}

func value(o *sdmx.Observation, col string) string {
	switch sdmx.RoleOf(col) {
	case sdmx.RoleCountry:
		return o.Country.Get(col)
	case sdmx.RoleTime:
		return strconv.Itoa(o.Time)
	case sdmx.RoleDimension:
		if v, ok := o.Dims[col]; ok && v != "" {
			return v
		}
		return sdmx.Total
	case sdmx.RoleAttribute:
		return o.Attrs[col]
	}
	return ""
}
