package aggregate

import (
	"errors"

	"github.com/gnames/gn"
	"github.com/m-g-d-c/crba-etl/pkg/errcode"
)

// EmptyError is returned when there are no scored indicators to
// aggregate.
func EmptyError() error {
	msg := `Nothing to aggregate, no source produced indicator scores`

	return &gn.Error{
		Code: errcode.AggregateEmptyError,
		Msg:  msg,
		Err:  errors.New("no indicator rows to aggregate"),
	}
}
