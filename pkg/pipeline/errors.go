package pipeline

import (
	"errors"
	"fmt"

	"github.com/gnames/gn"
	"github.com/m-g-d-c/crba-etl/pkg/errcode"
)

// SourceError wraps a failure of one source. The original error stays
// reachable with errors.As.
func SourceError(sourceID string, err error) error {
	msg := `Source <em>%s</em> failed

<em>Reason:</em> %s`

	reason := err.Error()
	var gnErr *gn.Error
	if errors.As(err, &gnErr) && gnErr.Err != nil {
		reason = gnErr.Err.Error()
	}

	return &gn.Error{
		Code: errcode.RunSourceError,
		Msg:  msg,
		Vars: []any{sourceID, reason},
		Err:  fmt.Errorf("source %s: %w", sourceID, err),
	}
}

// SourceID returns the source of a SourceError, or an empty string.
func SourceID(err error) string {
	var gnErr *gn.Error
	if !errors.As(err, &gnErr) || gnErr.Code != errcode.RunSourceError {
		return ""
	}
	if len(gnErr.Vars) == 0 {
		return ""
	}
	res, _ := gnErr.Vars[0].(string)
	return res
}
