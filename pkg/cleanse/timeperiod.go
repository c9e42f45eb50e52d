package cleanse

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	periodRe = regexp.MustCompile(`^(\d{4})\s*-\s*(\d{4})$`)
	yearRe   = regexp.MustCompile(`^(\d{4})`)
)

// ParseTimePeriod converts a time cell to a year. A period like
// "2012 - 2014" becomes its mean year (2013) and is also returned as
// coverage. Otherwise the leading four-digit year is used.
func ParseTimePeriod(s string) (year int, coverage string, ok bool) {
	s = strings.TrimSpace(s)
	if m := periodRe.FindStringSubmatch(s); m != nil {
		start, _ := strconv.Atoi(m[1])
		end, _ := strconv.Atoi(m[2])
		return (start + end) / 2, s, true
	}
	if m := yearRe.FindStringSubmatch(s); m != nil {
		year, _ = strconv.Atoi(m[1])
		return year, "", true
	}
	return 0, "", false
}
