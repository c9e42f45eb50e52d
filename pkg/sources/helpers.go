package sources

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var idNumRe = regexp.MustCompile(`^(.*?)(\d+)$`)

// IsValidURL checks if a string is a valid URL.
func IsValidURL(str string) bool {
	u, err := url.Parse(str)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// Filter selects sources by ID. Returns filtered sources, warnings (for
// user display), and error (for fatal issues). Sources keep their
// sources.yaml order.
//
// Every item of ids is either a source ID or a range of IDs that share a
// prefix and end with a number:
//   - "S-12": the source S-12
//   - "S-180..S-208": sources from S-180 to S-208 (inclusive)
//   - "S-197..": sources from S-197 to the end
//   - "..S-10": sources up to S-10
//   - empty list: all sources
func (c *SourcesConfig) Filter(
	ids []string,
) ([]SourceConfig, []string, error) {
	var items []string
	for _, v := range ids {
		for _, item := range strings.Split(v, ",") {
			item = strings.TrimSpace(item)
			if item != "" {
				items = append(items, item)
			}
		}
	}

	// No filter - return all sources
	if len(items) == 0 {
		return c.Sources, nil, nil
	}

	requested := make(map[string]bool)
	explicit := make(map[string]bool)
	var warnings []string

	for _, item := range items {
		if !strings.Contains(item, "..") {
			requested[item] = true
			explicit[item] = true
			continue
		}

		rng, err := parseRange(item)
		if err != nil {
			return nil, nil, fmt.Errorf(
				"failed to parse range '%s': %w", item, err,
			)
		}
		var matched bool
		for _, src := range c.Sources {
			if rng.contains(src.ID) {
				requested[src.ID] = true
				matched = true
			}
		}
		if !matched {
			warnings = append(warnings,
				fmt.Sprintf("range '%s' matched no sources", item))
		}
	}

	var filtered []SourceConfig
	found := make(map[string]bool)
	for _, src := range c.Sources {
		if requested[src.ID] {
			filtered = append(filtered, src)
			found[src.ID] = true
		}
	}

	for _, item := range items {
		if explicit[item] && !found[item] {
			warnings = append(warnings,
				fmt.Sprintf("source ID '%s' not found in configuration", item))
		}
	}

	if len(filtered) == 0 {
		filter := strings.Join(items, ",")
		if len(warnings) > 0 {
			return nil, warnings, fmt.Errorf(
				"no sources matched filter '%s': %s",
				filter,
				strings.Join(warnings, "; "),
			)
		}
		return nil, nil, fmt.Errorf("no sources matched filter '%s'", filter)
	}

	return filtered, warnings, nil
}

type idRange struct {
	prefix     string
	start, end int
}

func (r idRange) contains(id string) bool {
	prefix, num, ok := splitID(id)
	if !ok || prefix != r.prefix {
		return false
	}
	return num >= r.start && num <= r.end
}

// parseRange parses a range string like "S-180..S-208", "..S-10" or
// "S-197..".
func parseRange(s string) (idRange, error) {
	var res idRange
	startStr, endStr, _ := strings.Cut(s, "..")
	startStr = strings.TrimSpace(startStr)
	endStr = strings.TrimSpace(endStr)
	if startStr == "" && endStr == "" {
		return res, fmt.Errorf("invalid format: expected 'X..Y', '..Y', or 'X..'")
	}

	res.end = int(^uint(0) >> 1)
	if startStr != "" {
		prefix, num, ok := splitID(startStr)
		if !ok {
			return res, fmt.Errorf("start '%s' does not end with a number", startStr)
		}
		res.prefix, res.start = prefix, num
	}
	if endStr != "" {
		prefix, num, ok := splitID(endStr)
		if !ok {
			return res, fmt.Errorf("end '%s' does not end with a number", endStr)
		}
		if startStr != "" && prefix != res.prefix {
			return res, fmt.Errorf(
				"start and end have different prefixes '%s' and '%s'",
				res.prefix, prefix,
			)
		}
		res.prefix, res.end = prefix, num
	}

	if res.start > res.end {
		return res, fmt.Errorf("start (%d) must be <= end (%d)", res.start, res.end)
	}
	return res, nil
}

func splitID(id string) (string, int, bool) {
	m := idNumRe.FindStringSubmatch(id)
	if m == nil {
		return "", 0, false
	}
	num, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], num, true
}
