package encode

import "strings"

// Predicate decides if a rule applies to a value.
type Predicate func(string) bool

// Output produces the result of a rule from the matched value.
type Output func(string) string

// Rule pairs a predicate with an output.
type Rule struct {
	When Predicate
	Then Output
}

// Rules is an ordered list of rules with a default. The first rule whose
// predicate is true produces the result, the default is used when none
// applies.
type Rules struct {
	List    []Rule
	Default Output
}

// Apply evaluates rules against a value.
func (rs Rules) Apply(v string) string {
	for _, r := range rs.List {
		if r.When(v) {
			return r.Then(v)
		}
	}
	if rs.Default == nil {
		return v
	}
	return rs.Default(v)
}

// Add appends a rule.
func (rs *Rules) Add(when Predicate, then Output) {
	rs.List = append(rs.List, Rule{When: when, Then: then})
}

// Equals matches a value after trimming surrounding whitespace.
func Equals(s string) Predicate {
	return func(v string) bool {
		return strings.TrimSpace(v) == s
	}
}

// EqualFold matches a value ignoring case and surrounding whitespace.
func EqualFold(s string) Predicate {
	return func(v string) bool {
		return strings.EqualFold(strings.TrimSpace(v), s)
	}
}

// Blank matches empty or whitespace-only values.
func Blank() Predicate {
	return func(v string) bool {
		return strings.TrimSpace(v) == ""
	}
}

// InMap matches values that are keys of m.
func InMap(m map[string]string) Predicate {
	return func(v string) bool {
		_, ok := m[strings.TrimSpace(v)]
		return ok
	}
}

// Const always outputs s.
func Const(s string) Output {
	return func(string) string {
		return s
	}
}

// FromMap outputs the value stored in m for the matched key.
func FromMap(m map[string]string) Output {
	return func(v string) string {
		return m[strings.TrimSpace(v)]
	}
}

// Identity outputs the matched value unchanged.
func Identity() Output {
	return func(v string) string {
		return v
	}
}
