package iorun

import (
	"fmt"
	"strings"

	"github.com/gnames/gn"
	"github.com/m-g-d-c/crba-etl/pkg/errcode"
)

// NoSourcesError creates an error for when no sources match the
// requested IDs.
func NoSourcesError(requestedIDs []string, err error) error {
	msg := `No sources found matching requested IDs

<em>Requested IDs:</em> %s

<em>How to fix:</em>
  1. Check available sources: review sources.yaml
  2. Verify source IDs or ranges (e.g. S-1..S-20) are correct`

	ids := strings.Join(requestedIDs, ", ")

	return &gn.Error{
		Code: errcode.RunNoSourcesError,
		Msg:  msg,
		Vars: []any{ids},
		Err:  fmt.Errorf("no sources found matching IDs %s: %w", ids, err),
	}
}

// CancelledError is returned when a run is interrupted.
func CancelledError(err error) error {
	msg := "Run was cancelled"

	return &gn.Error{
		Code: errcode.RunCancelledError,
		Msg:  msg,
		Err:  fmt.Errorf("run cancelled: %w", err),
	}
}

// AllSourcesFailedError creates an error for when all
// sources fail to process.
func AllSourcesFailedError(count int) error {
	msg := `Failed number of sources: <em>%d</em>`

	vars := []any{count}

	plural := "s"
	if count == 1 {
		plural = ""
	}

	return &gn.Error{
		Code: errcode.RunAllSourcesFailedError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("%d source%s failed to process", count, plural),
	}
}
