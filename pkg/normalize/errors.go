package normalize

import (
	"fmt"
	"strings"

	"github.com/gnames/gn"
	"github.com/m-g-d-c/crba-etl/pkg/errcode"
)

// FilterError is returned for a dimension filter that cannot be parsed.
func FilterError(filter string, err error) error {
	msg := `Cannot parse dimension filter <em>%s</em>

<em>Expected format:</em> DIM_SEX == "_T" & DIM_AGE != "_T"`

	return &gn.Error{
		Code: errcode.NormalizeFilterError,
		Msg:  msg,
		Vars: []any{filter},
		Err:  fmt.Errorf("dimension filter %q: %w", filter, err),
	}
}

// InversionFlagError is returned for an unknown inversion flag of a
// continuous variable.
func InversionFlagError(flag string) error {
	msg := `Unknown inversion flag <em>%s</em>

Use "%s" or "%s"`

	return &gn.Error{
		Code: errcode.NormalizeInversionFlagError,
		Msg:  msg,
		Vars: []any{flag, Inverted, NotInverted},
		Err:  fmt.Errorf("unknown inversion flag %q", flag),
	}
}

// DuplicateCountryError is returned when countries appear more than once
// in a normalization slice, so the score bounds would be wrong.
func DuplicateCountryError(sourceID string, iso3 []string) error {
	msg := `Source <em>%s</em> has several rows for <em>%s</em> in the normalized slice

Check the dimension filter of the source`

	codes := strings.Join(iso3, ", ")
	return &gn.Error{
		Code: errcode.NormalizeDuplicateCountryError,
		Msg:  msg,
		Vars: []any{sourceID, codes},
		Err: fmt.Errorf(
			"source %s: duplicate countries in slice: %s", sourceID, codes,
		),
	}
}
