package encode

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/m-g-d-c/crba-etl/pkg/sdmx"
)

// Treaty bodies with dedicated encodings.
const (
	BodyUN  = "UN Treaties"
	BodyILO = "ILO NORMLEX"
	BodyRC  = "ICRC"
)

const (
	treatyYes = "2"
	treatyNo  = "1"

	// InForce is the ILO NORMLEX status of a ratified convention.
	InForce = "In Force"
)

var dateSuffixRe = regexp.MustCompile(`^(.*\d)\s*([^\d]*)$`)

// TreatyLabels describes the encoding of treaty data for a body.
func TreatyLabels(body string) string {
	q := "has the country ratified the treaty?"
	if body == BodyILO {
		q = "is the convention in force in the country?"
	}
	return fmt.Sprintf("%s=Yes; %s=No; as answer to the following question: %s",
		treatyYes, treatyNo, q)
}

// TreatyRules returns the yes/no rules of a treaty body. UN and ICRC data
// count as ratified when a ratification date is present, ILO data when
// the status is "In Force".
func TreatyRules(body string) (Rules, error) {
	var rs Rules
	switch body {
	case BodyUN, BodyRC:
		rs.Add(Blank(), Const(treatyNo))
		rs.Default = Const(treatyYes)
	case BodyILO:
		rs.Add(EqualFold(InForce), Const(treatyYes))
		rs.Default = Const(treatyNo)
	default:
		return rs, TreatyBodyError(body)
	}
	return rs, nil
}

// EncodeTreaty derives yes/no codes of treaty ratification data. The
// ratification date or status is read from ATTR_RATIFICATION_DATE or
// ATTR_TREATY_STATUS, falling back to the raw value. Countries without
// any record count as not ratified.
func EncodeTreaty(f *sdmx.Frame, body string) (*sdmx.Frame, Stats, error) {
	var stats Stats
	rules, err := TreatyRules(body)
	if err != nil {
		return nil, stats, err
	}
	labels := TreatyLabels(body)

	res := f.Clone()
	res.AddAttrCol(sdmx.ColEncodingLabels)
	for i := range res.Rows {
		row := &res.Rows[i]
		var val string
		switch body {
		case BodyILO:
			val = treatyValue(row, sdmx.ColTreatyStatus)
			if val != "" {
				row.Attrs[sdmx.ColTreatyStatus] = val
				res.AddAttrCol(sdmx.ColTreatyStatus)
			}
		default:
			date, details := splitRatification(treatyValue(row, sdmx.ColRatificationDate))
			if date != "" {
				row.Attrs[sdmx.ColRatificationDate] = date
				res.AddAttrCol(sdmx.ColRatificationDate)
			}
			if details != "" {
				row.Attrs[sdmx.ColRatificationDetails] = details
				res.AddAttrCol(sdmx.ColRatificationDetails)
			}
			val = date
		}

		code := rules.Apply(val)
		if code == treatyYes {
			stats.Encoded++
		} else {
			stats.NA++
		}
		row.Raw = sql.NullString{String: code, Valid: true}
		row.Attrs[sdmx.ColEncodingLabels] = labels
	}
	return res, stats, nil
}

func treatyValue(row *sdmx.Observation, col string) string {
	if v := strings.TrimSpace(row.Attrs[col]); v != "" {
		return v
	}
	if row.Raw.Valid {
		return strings.TrimSpace(row.Raw.String)
	}
	return ""
}

// splitRatification removes brackets from a ratification date and splits
// off a trailing non-numeric remark, like "a" for accession.
func splitRatification(s string) (string, string) {
	s = strings.NewReplacer("[", "", "]", "").Replace(s)
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}
	m := dateSuffixRe.FindStringSubmatch(s)
	if m == nil {
		return s, ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}
