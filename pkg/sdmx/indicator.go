package sdmx

import "strconv"

// Indicator is the descriptive metadata of a source. It is attached to
// every row of the source as constant columns.
type Indicator struct {
	Code        string
	Name        string
	Index       string
	Issue       string
	Category    string
	Address     string
	SourceBody  string
	Description string
	Explanation string
	Methodology string
	SourceTitle string
	EndpointURL string
	Unit        string
	ReleaseYear int
}

// IndicatorColumns lists metadata columns in export order.
var IndicatorColumns = []string{
	ColIndicatorName,
	ColIndicatorIndex,
	ColIndicatorIssue,
	ColIndicatorCategory,
	ColIndicatorCode,
	ColSource,
	ColSourceBody,
	ColIndicatorDescription,
	ColIndicatorExplanation,
	ColExtractionMethod,
	ColSourceTitle,
	ColEndpointURL,
	ColUnitMeasure,
	ColReleaseYear,
}

// Get returns the value of a metadata column.
func (i *Indicator) Get(col string) string {
	if i == nil {
		return ""
	}
	switch col {
	case ColIndicatorName:
		return i.Name
	case ColIndicatorIndex:
		return i.Index
	case ColIndicatorIssue:
		return i.Issue
	case ColIndicatorCategory:
		return i.Category
	case ColIndicatorCode:
		return i.Code
	case ColSource:
		return i.Address
	case ColSourceBody:
		return i.SourceBody
	case ColIndicatorDescription:
		return i.Description
	case ColIndicatorExplanation:
		return i.Explanation
	case ColExtractionMethod:
		return i.Methodology
	case ColSourceTitle:
		return i.SourceTitle
	case ColEndpointURL:
		return i.EndpointURL
	case ColUnitMeasure:
		return i.Unit
	case ColReleaseYear:
		if i.ReleaseYear == 0 {
			return ""
		}
		return strconv.Itoa(i.ReleaseYear)
	}
	return ""
}
