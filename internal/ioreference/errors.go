package ioreference

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/m-g-d-c/crba-etl/pkg/errcode"
)

// ReferenceFileError is returned when a reference file has a wrong
// structure.
func ReferenceFileError(path string, err error) error {
	msg := `Cannot parse reference file <em>%s</em>

<em>Reason:</em> %s`

	return &gn.Error{
		Code: errcode.ReferenceFileError,
		Msg:  msg,
		Vars: []any{path, err.Error()},
		Err:  fmt.Errorf("cannot parse %s: %w", path, err),
	}
}
