package sdmx

import (
	"database/sql"
	"maps"
	"math"
	"slices"
	"strings"
)

// RawFrame is a table as it comes from a source file: arbitrary column
// names and loosely typed cells. A nil cell is a missing value.
type RawFrame struct {
	Header  []string
	Records [][]any
}

// Len returns the number of records.
func (r *RawFrame) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Records)
}

// Observation is one measured fact for one country and time period.
type Observation struct {
	// Country keeps whatever identifiers the source provided until the
	// country reconciliation replaces them with the master list entry.
	Country Country

	// Time is the year of the observation, zero when unknown.
	Time int

	// Raw is the observation value as a string, possibly missing.
	Raw sql.NullString

	// Scaled is the normalized score, NaN means no data.
	Scaled float64

	// ObsStatus is "O" when there is no observation.
	ObsStatus string

	// Dims maps present dimension columns to their values.
	Dims map[string]string

	// Attrs maps present attribute columns to their values.
	Attrs map[string]string

	// SourceID and Indicator are attached by the fill-in step. Indicator
	// is shared between rows and must not be modified.
	SourceID  string
	Indicator *Indicator
}

// NewObservation returns an empty observation with no score.
func NewObservation() Observation {
	return Observation{
		Scaled: math.NaN(),
		Dims:   make(map[string]string),
		Attrs:  make(map[string]string),
	}
}

// Clone returns a deep copy of the observation.
func (o Observation) Clone() Observation {
	res := o
	res.Dims = maps.Clone(o.Dims)
	if res.Dims == nil {
		res.Dims = make(map[string]string)
	}
	res.Attrs = maps.Clone(o.Attrs)
	if res.Attrs == nil {
		res.Attrs = make(map[string]string)
	}
	return res
}

// HasScore is true when the observation has a normalized score.
func (o Observation) HasScore() bool {
	return !math.IsNaN(o.Scaled)
}

// Key builds a grouping key out of the given country and dimension
// columns.
func (o Observation) Key(countryCols, dimCols []string) string {
	parts := make([]string, 0, len(countryCols)+len(dimCols))
	for _, v := range countryCols {
		parts = append(parts, o.Country.Get(v))
	}
	for _, v := range dimCols {
		parts = append(parts, o.Dims[v])
	}
	return strings.Join(parts, "\x1f")
}

// Frame is a set of observations of one source in the canonical schema.
// Stages of the pipeline never change a frame they receive, they return
// a modified clone.
type Frame struct {
	// SourceID identifies the source the frame came from.
	SourceID string

	// Indicator is the metadata attached to every row.
	Indicator *Indicator

	// CountryCols are the country columns present in the source.
	CountryCols []string

	// DimCols are the dimension columns present, sorted.
	DimCols []string

	// AttrCols are the attribute columns present, sorted.
	AttrCols []string

	// HasTime is false when the source has no time column.
	HasTime bool

	// HasValue is false when the source has no observation value column.
	HasValue bool

	Rows []Observation
}

// NewFrame creates an empty frame for a source.
func NewFrame(sourceID string) *Frame {
	return &Frame{SourceID: sourceID}
}

// Len returns number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	res := f.CloneEmpty()
	res.Rows = make([]Observation, len(f.Rows))
	for i := range f.Rows {
		res.Rows[i] = f.Rows[i].Clone()
	}
	return res
}

// CloneEmpty copies everything but the rows.
func (f *Frame) CloneEmpty() *Frame {
	res := *f
	res.CountryCols = slices.Clone(f.CountryCols)
	res.DimCols = slices.Clone(f.DimCols)
	res.AttrCols = slices.Clone(f.AttrCols)
	if f.Indicator != nil {
		ind := *f.Indicator
		res.Indicator = &ind
	}
	res.Rows = nil
	return &res
}

// HasCountryCol checks if a country column is present.
func (f *Frame) HasCountryCol(col string) bool {
	return slices.Contains(f.CountryCols, col)
}

// AddCountryCol registers a country column.
func (f *Frame) AddCountryCol(col string) {
	if !f.HasCountryCol(col) {
		f.CountryCols = append(f.CountryCols, col)
	}
}

// AddDimCol registers a dimension column keeping DimCols sorted.
func (f *Frame) AddDimCol(col string) {
	f.DimCols = addSorted(f.DimCols, col)
}

// AddAttrCol registers an attribute column keeping AttrCols sorted.
func (f *Frame) AddAttrCol(col string) {
	f.AttrCols = addSorted(f.AttrCols, col)
}

// Concat joins frames into one. Column sets are merged. The result has no
// single source, so SourceID and Indicator are empty.
func Concat(frames ...*Frame) *Frame {
	res := NewFrame("")
	for _, f := range frames {
		if f == nil {
			continue
		}
		for _, v := range f.CountryCols {
			res.AddCountryCol(v)
		}
		for _, v := range f.DimCols {
			res.AddDimCol(v)
		}
		for _, v := range f.AttrCols {
			res.AddAttrCol(v)
		}
		res.HasTime = res.HasTime || f.HasTime
		res.HasValue = res.HasValue || f.HasValue
		res.Rows = append(res.Rows, f.Rows...)
	}
	return res
}

func addSorted(ss []string, s string) []string {
	i, found := slices.BinarySearch(ss, s)
	if found {
		return ss
	}
	return slices.Insert(ss, i, s)
}
