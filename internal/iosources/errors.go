package iosources

import (
	"errors"
	"fmt"

	"github.com/gnames/gn"
	"github.com/m-g-d-c/crba-etl/pkg/errcode"
)

// SourcesConfigError creates an error for when sources.yaml
// cannot be loaded.
func SourcesConfigError(path string, err error) error {
	msg := `Cannot load sources configuration

<em>Configuration file:</em> %s

<em>Possible causes:</em>
  - Invalid YAML format
  - Invalid source entry
  - Permission denied

<em>How to fix:</em>
  1. Check the file: <em>less %s</em>
  2. Validate YAML syntax and source fields`

	vars := []any{path, path}

	return &gn.Error{
		Code: errcode.SourcesConfigError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to load sources config: %w", err),
	}
}

// SourcesNotFoundError is returned when sources.yaml does not exist.
func SourcesNotFoundError(path string) error {
	msg := `Sources configuration <em>%s</em> does not exist

<em>How to fix:</em>
  Run <em>crba run</em> once to create an example, then describe
  your raw files in it.`

	return &gn.Error{
		Code: errcode.SourcesNotFoundError,
		Msg:  msg,
		Vars: []any{path},
		Err:  errors.New("sources config not found"),
	}
}
