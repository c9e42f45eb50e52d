package encode

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/m-g-d-c/crba-etl/pkg/errcode"
)

// SpecError is returned when an encoding spec cannot be parsed.
func SpecError(spec string, err error) error {
	msg := `Cannot parse encoding <em>%s</em>

<em>Expected format:</em> "Label=Code; Label=Code", codes are integers`

	return &gn.Error{
		Code: errcode.EncodeSpecError,
		Msg:  msg,
		Vars: []any{spec},
		Err:  fmt.Errorf("bad encoding spec %q: %w", spec, err),
	}
}

// TreatyBodyError is returned for treaty bodies without an encoding.
func TreatyBodyError(body string) error {
	msg := `Unknown treaty body <em>%s</em>

<em>Supported bodies:</em> %s, %s, %s`

	return &gn.Error{
		Code: errcode.EncodeTreatyBodyError,
		Msg:  msg,
		Vars: []any{body, BodyUN, BodyILO, BodyRC},
		Err:  fmt.Errorf("unknown treaty body %q", body),
	}
}
