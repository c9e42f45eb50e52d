// Package sdmx describes the canonical SDMX-like table every source is
// harmonized into: column names and their roles, observation frames,
// countries, indicator metadata, the column mapping configuration and the
// run context shared by all stages of the pipeline.
package sdmx

import "strings"

// Country columns.
const (
	ColISO2 = "COUNTRY_ISO_2"
	ColISO3 = "COUNTRY_ISO_3"
	ColName = "COUNTRY_NAME"
)

// Time, value and status columns.
const (
	ColTime      = "TIME_PERIOD"
	ColRaw       = "RAW_OBS_VALUE"
	ColScaled    = "SCALED_OBS_VALUE"
	ColObsStatus = "OBS_STATUS"
)

// Attributes written by the pipeline itself.
const (
	ColCoverageTime        = "ATTR_COVERAGE_TIME"
	ColEncodingLabels      = "ATTR_ENCODING_LABELS"
	ColFootnote            = "ATTR_FOOTNOTE_OF_SOURCE"
	ColRatificationDate    = "ATTR_RATIFICATION_DATE"
	ColRatificationDetails = "ATTR_RATIFICATION_DETAILS"
	ColTreatyStatus        = "ATTR_TREATY_STATUS"
)

// Indicator metadata columns, constant within a source.
const (
	ColIndicatorName        = "INDICATOR_NAME"
	ColIndicatorIndex       = "INDICATOR_INDEX"
	ColIndicatorIssue       = "INDICATOR_ISSUE"
	ColIndicatorCategory    = "INDICATOR_CATEGORY"
	ColIndicatorCode        = "INDICATOR_CODE"
	ColSource               = "ATTR_SOURCE"
	ColSourceBody           = "ATTR_SOURCE_BODY"
	ColIndicatorDescription = "ATTR_INDICATOR_DESCRIPTION"
	ColIndicatorExplanation = "ATTR_INDICATOR_EXPLANATION"
	ColExtractionMethod     = "ATTR_DATA_EXTRACTION_METHDOLOGY"
	ColSourceTitle          = "ATTR_SOURCE_TITLE"
	ColEndpointURL          = "ATTR_API_ENDPOINT_URL"
	ColUnitMeasure          = "ATTR_UNIT_MEASURE"
	ColReleaseYear          = "CRBA_RELEASE_YEAR"
)

const (
	// Total is the dimension value for "total, not broken down".
	Total = "_T"

	// ObsStatusMissing marks rows without an observation.
	ObsStatusMissing = "O"

	dimPrefix  = "DIM_"
	attrPrefix = "ATTR_"
)

// Role is the part a canonical column plays in an observation.
type Role int

const (
	RoleUnknown Role = iota
	RoleCountry
	RoleTime
	RoleValue
	RoleDimension
	RoleAttribute
)

func (r Role) String() string {
	switch r {
	case RoleCountry:
		return "country"
	case RoleTime:
		return "time"
	case RoleValue:
		return "value"
	case RoleDimension:
		return "dimension"
	case RoleAttribute:
		return "attribute"
	default:
		return "unknown"
	}
}

// RoleOf returns the role of a canonical column name. Names outside the
// canonical schema get RoleUnknown.
func RoleOf(col string) Role {
	switch col {
	case ColISO2, ColISO3, ColName:
		return RoleCountry
	case ColTime:
		return RoleTime
	case ColRaw:
		return RoleValue
	}
	switch {
	case strings.HasPrefix(col, dimPrefix) && len(col) > len(dimPrefix):
		return RoleDimension
	case strings.HasPrefix(col, attrPrefix) && len(col) > len(attrPrefix):
		return RoleAttribute
	}
	return RoleUnknown
}

// CountryColumns lists country columns in order of preference.
var CountryColumns = []string{ColISO3, ColISO2, ColName}
