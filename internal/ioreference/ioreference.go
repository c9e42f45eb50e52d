// Package ioreference reads the data shared by all sources of a run: the
// master country list, country name variants and the column mapping.
package ioreference

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/m-g-d-c/crba-etl/internal/iofs"
	"github.com/m-g-d-c/crba-etl/pkg/config"
	"github.com/m-g-d-c/crba-etl/pkg/pipeline"
	"github.com/m-g-d-c/crba-etl/pkg/sdmx"
	"gopkg.in/yaml.v3"
)

// Load reads reference data of a run. Country tables are found in the
// input directory, the column mapping in the config directory.
//
// The master list may lack ISO2 codes, they are taken from the variants
// table then.
func Load(cfg *config.Config) (*pipeline.Reference, error) {
	variantsPath := cfg.ResolvePath(cfg.Reference.VariantsFile)
	vv, err := ReadCountries(variantsPath)
	if err != nil {
		return nil, err
	}
	variants, err := sdmx.NewVariants(vv)
	if err != nil {
		return nil, err
	}

	countriesPath := cfg.ResolvePath(cfg.Reference.CountriesFile)
	cc, err := ReadCountries(countriesPath)
	if err != nil {
		return nil, err
	}
	fillISO2(cc, vv)
	master, err := sdmx.NewCountryList(cc)
	if err != nil {
		return nil, err
	}

	mapping, err := LoadMapping(config.ColumnsFilePath(cfg.HomeDir))
	if err != nil {
		return nil, err
	}

	gn.Info(
		"Loaded <em>%s</em> countries and <em>%s</em> name variants",
		humanize.Comma(int64(master.Len())),
		humanize.Comma(int64(len(variants.Names()))),
	)
	slog.Info("Reference data loaded",
		"countries", master.Len(),
		"variants", len(variants.Names()),
		"mapped_columns", len(mapping.Columns),
	)

	return &pipeline.Reference{
		Countries: master,
		Variants:  variants,
		Mapping:   mapping,
	}, nil
}

// LoadMapping reads and validates a column mapping file.
func LoadMapping(path string) (*sdmx.ColumnMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, iofs.ReadFileError(path, err)
	}

	var res sdmx.ColumnMapping
	if err = yaml.Unmarshal(data, &res); err != nil {
		return nil, ReferenceFileError(path, err)
	}
	if err = res.Validate(); err != nil {
		return nil, err
	}
	return &res, nil
}

// ReadCountries reads a country table. The delimiter (',' or ';') is
// taken from the header line. Columns are found by their names
// COUNTRY_ISO_3, COUNTRY_ISO_2 and COUNTRY_NAME, case-insensitive. Only
// COUNTRY_ISO_3 is required.
func ReadCountries(path string) ([]sdmx.Country, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, iofs.ReadFileError(path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	first, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, iofs.ReadFileError(path, err)
	}

	r := csv.NewReader(br)
	r.Comma = sniffDelimiter(string(first))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, ReferenceFileError(path, fmt.Errorf("cannot read header: %w", err))
	}
	idx := make(map[string]int)
	for i, v := range header {
		v = strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(v, "\ufeff")))
		idx[v] = i
	}
	iso3, ok := idx[sdmx.ColISO3]
	if !ok {
		return nil, ReferenceFileError(path,
			fmt.Errorf("column %s not found", sdmx.ColISO3))
	}
	iso2, hasISO2 := idx[sdmx.ColISO2]
	name, hasName := idx[sdmx.ColName]

	var res []sdmx.Country
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, ReferenceFileError(path, err)
		}
		c := sdmx.Country{ISO3: field(rec, iso3)}
		if c.ISO3 == "" {
			continue
		}
		if hasISO2 {
			c.ISO2 = field(rec, iso2)
		}
		if hasName {
			c.Name = field(rec, name)
		}
		res = append(res, c)
	}
	return res, nil
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func sniffDelimiter(s string) rune {
	line, _, _ := strings.Cut(s, "\n")
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}

func fillISO2(cc, variants []sdmx.Country) {
	iso2 := make(map[string]string, len(variants))
	for _, v := range variants {
		k := strings.ToUpper(v.ISO3)
		if _, ok := iso2[k]; !ok && v.ISO2 != "" {
			iso2[k] = v.ISO2
		}
	}
	for i := range cc {
		if cc[i].ISO2 == "" {
			cc[i].ISO2 = iso2[strings.ToUpper(cc[i].ISO3)]
		}
	}
}
