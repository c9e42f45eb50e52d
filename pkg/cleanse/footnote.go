package cleanse

import (
	"cmp"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/m-g-d-c/crba-etl/pkg/sdmx"
)

// DecomposeFootnote splits country cells that carry a footnote next to
// the country name, as ILO NORMLEX tables do. The longest known name
// contained in the cell becomes the country name ("Niger" is inside
// "Nigeria"), the rest of the cell goes to ATTR_FOOTNOTE_OF_SOURCE.
// Cells without any known name get an empty name.
func DecomposeFootnote(f *sdmx.Frame, names []string) *sdmx.Frame {
	res := f.Clone()
	if !res.HasCountryCol(sdmx.ColName) {
		return res
	}

	names = slices.Clone(names)
	slices.SortFunc(names, func(a, b string) int {
		la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
		if c := cmp.Compare(lb, la); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	var noMatch int
	for i := range res.Rows {
		row := &res.Rows[i]
		cell := sdmx.NormalizeName(row.Country.Name)
		if cell == "" {
			continue
		}

		var name string
		for _, v := range names {
			if v != "" && strings.Contains(cell, v) {
				name = v
				break
			}
		}
		if name == "" {
			noMatch++
		}
		row.Country.Name = name

		note := cell
		if name != "" {
			note = strings.Replace(cell, name, "", 1)
		}
		note = strings.TrimSpace(note)
		if note != "" {
			row.Attrs[sdmx.ColFootnote] = note
			res.AddAttrCol(sdmx.ColFootnote)
		}
	}

	if noMatch > 0 {
		slog.Info("Country cells without a known name",
			"source_id", f.SourceID,
			"rows", noMatch,
		)
	}
	return res
}

var footnoteNumberRe = regexp.MustCompile(`\s\d+.*$`)

// StripFootnoteNumbers removes footnote numbers that follow country
// names in UN treaty tables: "Germany 2, 3" becomes "Germany". Everything
// from the first whitespace followed by a digit is dropped.
func StripFootnoteNumbers(f *sdmx.Frame) *sdmx.Frame {
	res := f.Clone()
	if !res.HasCountryCol(sdmx.ColName) {
		return res
	}
	for i := range res.Rows {
		row := &res.Rows[i]
		row.Country.Name = footnoteNumberRe.ReplaceAllString(row.Country.Name, "")
	}
	return res
}
