package sdmx

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gnames/gnlib"
	"golang.org/x/text/unicode/norm"
)

// CountryKey tells which identifier a source uses for countries.
type CountryKey int

const (
	// KeyUnknown means the key has to be detected from the data.
	KeyUnknown CountryKey = iota
	KeyISO2
	KeyISO3
	KeyName
)

// ParseCountryKey converts 'iso2', 'iso3' or 'name' to a CountryKey.
// An empty string is KeyUnknown.
func ParseCountryKey(s string) (CountryKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return KeyUnknown, nil
	case "iso2", "iso_2", ColISO2:
		return KeyISO2, nil
	case "iso3", "iso_3", ColISO3:
		return KeyISO3, nil
	case "name", ColName:
		return KeyName, nil
	}
	return KeyUnknown, fmt.Errorf("unknown country key '%s'", s)
}

func (k CountryKey) String() string {
	switch k {
	case KeyISO2:
		return "iso2"
	case KeyISO3:
		return "iso3"
	case KeyName:
		return "name"
	default:
		return ""
	}
}

// Column returns the canonical column of the key.
func (k CountryKey) Column() string {
	switch k {
	case KeyISO2:
		return ColISO2
	case KeyISO3:
		return ColISO3
	case KeyName:
		return ColName
	default:
		return ""
	}
}

// KeyOfColumn is the reverse of Column.
func KeyOfColumn(col string) CountryKey {
	switch col {
	case ColISO2:
		return KeyISO2
	case ColISO3:
		return KeyISO3
	case ColName:
		return KeyName
	default:
		return KeyUnknown
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k CountryKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *CountryKey) UnmarshalText(text []byte) error {
	res, err := ParseCountryKey(string(text))
	if err != nil {
		return err
	}
	*k = res
	return nil
}

// Country has three alternative identifiers.
type Country struct {
	ISO2 string
	ISO3 string
	Name string
}

// Get returns the value of a country column.
func (c Country) Get(col string) string {
	switch col {
	case ColISO2:
		return c.ISO2
	case ColISO3:
		return c.ISO3
	case ColName:
		return c.Name
	default:
		return ""
	}
}

// Set assigns the value of a country column.
func (c *Country) Set(col, val string) {
	switch col {
	case ColISO2:
		c.ISO2 = val
	case ColISO3:
		c.ISO3 = val
	case ColName:
		c.Name = val
	}
}

// CountryList is the master list of countries every indicator table has
// to cover. It is read-only after creation.
type CountryList struct {
	countries []Country
	byISO3    map[string]int
	byISO2    map[string]int
}

// NewCountryList validates and indexes the master list. ISO3 codes must
// be present and unique, ISO2 codes unique when present.
func NewCountryList(cc []Country) (*CountryList, error) {
	res := CountryList{
		byISO3: make(map[string]int, len(cc)),
		byISO2: make(map[string]int, len(cc)),
	}
	for i, v := range cc {
		v.ISO2 = strings.ToUpper(strings.TrimSpace(v.ISO2))
		v.ISO3 = strings.ToUpper(strings.TrimSpace(v.ISO3))
		v.Name = NormalizeName(v.Name)
		if v.ISO3 == "" {
			return nil, CountryListError(
				fmt.Errorf("row %d has no ISO3 code", i+1),
			)
		}
		if _, ok := res.byISO3[v.ISO3]; ok {
			return nil, CountryListError(
				fmt.Errorf("ISO3 code '%s' is not unique", v.ISO3),
			)
		}
		if v.ISO2 != "" {
			if _, ok := res.byISO2[v.ISO2]; ok {
				return nil, CountryListError(
					fmt.Errorf("ISO2 code '%s' is not unique", v.ISO2),
				)
			}
			res.byISO2[v.ISO2] = len(res.countries)
		}
		res.byISO3[v.ISO3] = len(res.countries)
		res.countries = append(res.countries, v)
	}
	if len(res.countries) == 0 {
		return nil, CountryListError(fmt.Errorf("country list is empty"))
	}
	return &res, nil
}

// Len returns the number of countries.
func (l *CountryList) Len() int {
	return len(l.countries)
}

// Countries returns a copy of the list in its original order.
func (l *CountryList) Countries() []Country {
	return slices.Clone(l.countries)
}

// ByISO3 finds a country by ISO3 code.
func (l *CountryList) ByISO3(code string) (Country, bool) {
	i, ok := l.byISO3[code]
	if !ok {
		return Country{}, false
	}
	return l.countries[i], true
}

// ByISO2 finds a country by ISO2 code.
func (l *CountryList) ByISO2(code string) (Country, bool) {
	i, ok := l.byISO2[code]
	if !ok {
		return Country{}, false
	}
	return l.countries[i], true
}

// Lookup finds a country by a code of the given key. Names are not
// looked up here, they need the variants table.
func (l *CountryList) Lookup(key CountryKey, val string) (Country, bool) {
	switch key {
	case KeyISO3:
		return l.ByISO3(val)
	case KeyISO2:
		return l.ByISO2(val)
	default:
		return Country{}, false
	}
}

// Column returns the values of a country column of the list.
func (l *CountryList) Column(col string) []string {
	res := make([]string, 0, len(l.countries))
	for _, v := range l.countries {
		res = append(res, v.Get(col))
	}
	return res
}

// Variants maps every known spelling of a country name to its codes.
type Variants struct {
	byName map[string]Country
}

// NewVariants indexes name variants. A name pointing to two different
// ISO3 codes is an error, repeated identical rows are fine.
func NewVariants(cc []Country) (*Variants, error) {
	res := Variants{byName: make(map[string]Country, len(cc))}
	for i, v := range cc {
		name := NormalizeName(v.Name)
		if name == "" {
			continue
		}
		v.ISO2 = strings.ToUpper(strings.TrimSpace(v.ISO2))
		v.ISO3 = strings.ToUpper(strings.TrimSpace(v.ISO3))
		v.Name = name
		if v.ISO3 == "" {
			return nil, VariantsError(
				fmt.Errorf("row %d (%s) has no ISO3 code", i+1, name),
			)
		}
		if prev, ok := res.byName[name]; ok && prev.ISO3 != v.ISO3 {
			return nil, VariantsError(
				fmt.Errorf("name '%s' maps to both %s and %s",
					name, prev.ISO3, v.ISO3),
			)
		}
		res.byName[name] = v
	}
	return &res, nil
}

// Lookup finds codes of a country name variant.
func (v *Variants) Lookup(name string) (Country, bool) {
	res, ok := v.byName[NormalizeName(name)]
	return res, ok
}

// Names returns all known name variants.
func (v *Variants) Names() []string {
	res := make([]string, 0, len(v.byName))
	for k := range v.byName {
		res = append(res, k)
	}
	slices.Sort(res)
	return res
}

// NormalizeName prepares a country name for exact matching: broken UTF-8
// is repaired, the string is NFC normalized and surrounding whitespace is
// removed.
func NormalizeName(s string) string {
	s = gnlib.FixUtf8(s)
	s = norm.NFC.String(s)
	return strings.TrimSpace(s)
}
