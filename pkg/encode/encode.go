// Package encode turns categorical raw values into small integer codes.
//
// Encodings are declared per source with a string of "Label=Code" pairs
// separated by semicolons. Conditional substitutions are expressed as an
// ordered list of rules with a default, the same engine is used for value
// harmonization in the cleanse package.
package encode

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m-g-d-c/crba-etl/pkg/sdmx"
)

const (
	// Unmapped replaces raw values that have no entry in the encoding.
	Unmapped = "VALUE WITHOUT MAPPING - PLEASE MAP"

	// DefaultNACode is the code of missing raw values.
	DefaultNACode = "0"

	// Continuous is the encoding spec of sources without encoding.
	Continuous = "Continuous variable"
)

// Pair is one entry of an encoding spec.
type Pair struct {
	Label string
	Code  string
}

// Stats counts the outcome of an encoding.
type Stats struct {
	Encoded  int
	NA       int
	Unmapped int
}

// Parse reads an encoding spec of "Label=Code" pairs separated by ';'.
// Whitespace around labels and codes is removed. Codes have to be
// integers. A pair with a non-integer right side but an integer left side
// is read as "Code=Label".
func Parse(spec string) ([]Pair, error) {
	var res []Pair
	for _, part := range strings.Split(spec, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		left, right, found := strings.Cut(part, "=")
		if !found {
			return nil, SpecError(spec, fmt.Errorf("'%s' has no '='", part))
		}
		left = strings.TrimSpace(left)
		right = strings.TrimSpace(right)
		if left == "" || right == "" {
			return nil, SpecError(spec, fmt.Errorf("'%s' is incomplete", part))
		}
		switch {
		case isInt(right):
			res = append(res, Pair{Label: left, Code: right})
		case isInt(left):
			res = append(res, Pair{Label: right, Code: left})
		default:
			return nil, SpecError(spec,
				fmt.Errorf("'%s' has no integer code", part))
		}
	}
	if len(res) == 0 {
		return nil, SpecError(spec, fmt.Errorf("no pairs found"))
	}
	return res, nil
}

// IsContinuous checks if an encoding spec means "no encoding".
func IsContinuous(spec string) bool {
	spec = strings.TrimSpace(spec)
	return spec == "" || strings.EqualFold(spec, Continuous)
}

// NewRules builds encoding rules from pairs: missing values become
// naCode, labels become their codes and everything else becomes the
// Unmapped sentinel.
func NewRules(pairs []Pair, naCode string) Rules {
	var rs Rules
	rs.Add(Blank(), Const(naCode))
	for _, p := range pairs {
		rs.Add(Equals(p.Label), Const(p.Code))
	}
	rs.Default = Const(Unmapped)
	return rs
}

// Encode replaces raw values of a frame with codes of the encoding spec.
// Sources with a continuous spec are returned unchanged. The spec is kept
// on every row as ATTR_ENCODING_LABELS.
func Encode(
	f *sdmx.Frame,
	spec string,
	naCode string,
) (*sdmx.Frame, Stats, error) {
	var stats Stats
	if IsContinuous(spec) {
		return f, stats, nil
	}
	if naCode == "" {
		naCode = DefaultNACode
	}

	pairs, err := Parse(spec)
	if err != nil {
		return nil, stats, err
	}
	rules := NewRules(pairs, naCode)

	res := f.Clone()
	res.AddAttrCol(sdmx.ColEncodingLabels)
	for i := range res.Rows {
		row := &res.Rows[i]
		code := rules.Apply(row.Raw.String)
		switch code {
		case naCode:
			stats.NA++
		case Unmapped:
			stats.Unmapped++
		default:
			stats.Encoded++
		}
		row.Raw = sql.NullString{String: code, Valid: true}
		row.Attrs[sdmx.ColEncodingLabels] = spec
	}

	if stats.Unmapped > 0 {
		slog.Warn("Raw values without encoding",
			"source_id", f.SourceID,
			"unmapped", stats.Unmapped,
			"encoding", spec,
		)
	}
	return res, stats, nil
}

func isInt(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}
