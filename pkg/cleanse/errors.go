package cleanse

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/m-g-d-c/crba-etl/pkg/errcode"
)

// DuplicateObservationError is returned when two different observations
// share country, dimensions and time period after the latest observations
// are selected.
func DuplicateObservationError(sourceID, key string, year int) error {
	msg := `Source <em>%s</em> has conflicting observations for <em>%s</em> in %d

Check column and value mappings of the source dimensions`

	return &gn.Error{
		Code: errcode.CleanseDuplicateObservationError,
		Msg:  msg,
		Vars: []any{sourceID, key, year},
		Err: fmt.Errorf(
			"source %s: duplicate observation %q for %d", sourceID, key, year,
		),
	}
}

// ReconcileError is returned when the country identifier of a source
// cannot be classified or does not match its column.
func ReconcileError(sourceID string, err error) error {
	msg := `Cannot reconcile countries of source <em>%s</em>

Set <em>country_key</em> of the source to iso2, iso3 or name`

	return &gn.Error{
		Code: errcode.ReconcileCountryKeyError,
		Msg:  msg,
		Vars: []any{sourceID},
		Err:  fmt.Errorf("source %s: country reconciliation: %w", sourceID, err),
	}
}

// MissingCountryColumnError is returned when a source has no country
// column usable as a join key.
func MissingCountryColumnError(sourceID, col string) error {
	msg := `Source <em>%s</em> has no country column <em>%s</em>`
	if col == "" {
		col = "of any kind"
	}

	return &gn.Error{
		Code: errcode.ReconcileMissingColumnError,
		Msg:  msg,
		Vars: []any{sourceID, col},
		Err:  fmt.Errorf("source %s: no country column %s", sourceID, col),
	}
}
