package iometrics

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/m-g-d-c/crba-etl/pkg/errcode"
)

// WriteError is returned when metrics cannot be saved.
func WriteError(path string, err error) error {
	msg := "Cannot write metrics to <em>%s</em>"

	return &gn.Error{
		Code: errcode.ExportMetricsError,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("cannot write metrics %s: %w", path, err),
	}
}
