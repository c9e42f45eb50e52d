package sdmx

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/m-g-d-c/crba-etl/pkg/errcode"
)

// CountryListError is returned when the master country list is invalid.
func CountryListError(err error) error {
	msg := `Invalid master country list

<em>Reason:</em> %s

<em>How to fix:</em>
  Every row needs a unique ISO3 code (COUNTRY_ISO_3 column).`

	return &gn.Error{
		Code: errcode.ReferenceCountriesError,
		Msg:  msg,
		Vars: []any{err.Error()},
		Err:  fmt.Errorf("invalid country list: %w", err),
	}
}

// VariantsError is returned when the country name variants table is
// invalid.
func VariantsError(err error) error {
	msg := `Invalid country name variants table

<em>Reason:</em> %s`

	return &gn.Error{
		Code: errcode.ReferenceVariantsError,
		Msg:  msg,
		Vars: []any{err.Error()},
		Err:  fmt.Errorf("invalid country variants: %w", err),
	}
}

// MappingError is returned when the column mapping is invalid.
func MappingError(err error) error {
	msg := `Invalid column mapping (columns.yaml)

<em>Reason:</em> %s`

	return &gn.Error{
		Code: errcode.ReferenceMappingError,
		Msg:  msg,
		Vars: []any{err.Error()},
		Err:  fmt.Errorf("invalid column mapping: %w", err),
	}
}
