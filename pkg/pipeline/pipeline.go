// Package pipeline chains the cleansing, encoding and normalization
// stages that turn one raw source into a scored frame.
package pipeline

import (
	"log/slog"
	"time"

	"github.com/m-g-d-c/crba-etl/pkg/cleanse"
	"github.com/m-g-d-c/crba-etl/pkg/encode"
	"github.com/m-g-d-c/crba-etl/pkg/normalize"
	"github.com/m-g-d-c/crba-etl/pkg/sdmx"
	"github.com/m-g-d-c/crba-etl/pkg/sources"
)

// categorical is the variable type given to treaty sources that do not
// name one.
const categorical = "Categorical"

// Reference is read-only data shared by all sources of a run.
type Reference struct {
	Countries *sdmx.CountryList
	Variants  *sdmx.Variants
	Mapping   *sdmx.ColumnMapping
}

// Stats collect what every stage did to a source. They end up in the run
// report.
type Stats struct {
	RawRows       int             `json:"rawRows"`
	Mapped        []string        `json:"mappedColumns"`
	Dropped       []string        `json:"droppedColumns,omitempty"`
	RelabeledISO2 bool            `json:"relabeledIso2,omitempty"`
	BadTime       int             `json:"badTime,omitempty"`
	NoValue       int             `json:"noValue,omitempty"`
	Older         int             `json:"older,omitempty"`
	Collapsed     int             `json:"collapsed,omitempty"`
	CountryKey    string          `json:"countryKey,omitempty"`
	Matched       int             `json:"matched"`
	Unmatched     int             `json:"unmatched,omitempty"`
	Discarded     int             `json:"discarded,omitempty"`
	Padded        int             `json:"padded"`
	Unmapped      map[string]int  `json:"unmappedValues,omitempty"`
	Encoding      encode.Stats    `json:"encoding"`
	Summary       cleanse.Summary `json:"summary"`
	Normalization normalize.Stats `json:"normalization"`
	Duration      time.Duration   `json:"duration"`
}

// Result is a processed source.
type Result struct {
	SourceID string
	Frame    *sdmx.Frame
	Stats    Stats
}

// Process runs a raw frame of a source through all stages:
//
//	Map, DecomposeFootnote (sources with footnotes), StripFootnoteNumbers
//	(UN treaties), Latest (all but treaties), Reconcile, Fill, MapValues,
//	Encode or EncodeTreaty, Report, Normalize.
//
// Every error is returned as SourceError. The result carries the
// statistics gathered before a failure.
func Process(
	rc *sdmx.RunContext,
	src *sources.SourceConfig,
	raw *sdmx.RawFrame,
	ref *Reference,
) (res Result, err error) {
	start := time.Now()
	res.SourceID = src.ID
	st := &res.Stats
	st.RawRows = raw.Len()
	defer func() { res.Stats.Duration = time.Since(start) }()

	f, ms := cleanse.Map(ref.Mapping, src.ID, raw)
	st.Mapped = ms.Mapped
	st.Dropped = ms.Dropped
	st.RelabeledISO2 = ms.RelabeledISO2
	st.BadTime = ms.BadTime

	if src.Footnotes {
		f = cleanse.DecomposeFootnote(f, ref.Variants.Names())
	}
	if src.TreatyBody == encode.BodyUN {
		f = cleanse.StripFootnoteNumbers(f)
	}

	// treaty tables have one row per country and keep their ratification
	// data in attributes, there is no observation to select
	if !src.IsTreaty() {
		var ls cleanse.LatestStats
		f, ls, err = cleanse.Latest(f)
		st.NoValue = ls.NoValue
		st.Older = ls.Older
		st.Collapsed = ls.Collapsed
		if err != nil {
			return res, SourceError(src.ID, err)
		}
	}

	f, rs, err := cleanse.Reconcile(f, src.CountryKey, ref.Variants, ref.Countries)
	st.CountryKey = rs.Key.String()
	st.Matched = rs.Matched
	st.Unmatched = rs.Unmatched
	st.Discarded = rs.Discarded
	st.Padded = rs.Padded
	if err != nil {
		return res, SourceError(src.ID, err)
	}

	f = cleanse.Fill(rc, f, src.Indicator())

	f, vs := cleanse.MapValues(ref.Mapping, f)
	if len(vs.Unmapped) > 0 {
		st.Unmapped = vs.Unmapped
	}

	opts := normalize.Options{
		Filter:       src.DimensionFilter,
		VariableType: src.VariableType,
		Inversion:    src.Inverted,
	}
	if src.IsTreaty() {
		f, st.Encoding, err = encode.EncodeTreaty(f, src.TreatyBody)
		if encode.IsContinuous(opts.VariableType) {
			opts.VariableType = categorical
		}
	} else {
		f, st.Encoding, err = encode.Encode(f, src.Encoding, src.NACode)
	}
	if err != nil {
		return res, SourceError(src.ID, err)
	}

	f, st.Summary = cleanse.Report(f)

	f, st.Normalization, err = normalize.Normalize(rc, f, opts)
	if err != nil {
		return res, SourceError(src.ID, err)
	}
	res.Frame = f

	slog.Info("Source processed",
		"source_id", src.ID,
		"rows", f.Len(),
		"scored", st.Normalization.Scored,
		"na_share", st.Summary.NAShare,
	)
	return res, nil
}
