package ioextract

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/m-g-d-c/crba-etl/pkg/errcode"
)

// UnsupportedFormatError is returned for a format without a reader.
func UnsupportedFormatError(sourceID, format string) error {
	msg := `Source <em>%s</em>: unsupported file format <em>%s</em>

<em>How to fix:</em>
  Use csv, json or sqlite in the <em>format</em> field of sources.yaml`

	return &gn.Error{
		Code: errcode.ExtractUnsupportedFormatError,
		Msg:  msg,
		Vars: []any{sourceID, format},
		Err:  fmt.Errorf("unsupported format %q", format),
	}
}

// ReadError is returned when a raw file cannot be read.
func ReadError(sourceID, path string, err error) error {
	msg := `Source <em>%s</em>: cannot read raw file

<em>File:</em> %s

<em>Possible causes:</em>
  - File was not downloaded
  - Wrong format, delimiter, records path or table`

	return &gn.Error{
		Code: errcode.ExtractReadError,
		Msg:  msg,
		Vars: []any{sourceID, path},
		Err:  fmt.Errorf("cannot read %s: %w", path, err),
	}
}
