package ioextract_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/gnames/gn"
	"github.com/m-g-d-c/crba-etl/internal/ioextract"
	"github.com/m-g-d-c/crba-etl/pkg/errcode"
	"github.com/m-g-d-c/crba-etl/pkg/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)
	return path
}

func TestExtractCSV(t *testing.T) {
	tests := []struct {
		msg     string
		content string
		delim   string
		header  []string
		records [][]any
	}{
		{
			msg:     "comma",
			content: "REF_AREA,TIME_PERIOD,OBS_VALUE\nDEU,2019,5\nFRA,2020,\n",
			header:  []string{"REF_AREA", "TIME_PERIOD", "OBS_VALUE"},
			records: [][]any{{"DEU", "2019", "5"}, {"FRA", "2020", nil}},
		},
		{
			msg:     "semicolon with bom",
			content: "\ufeffCountry; Value\nGermany;1\nFrance\n",
			delim:   ";",
			header:  []string{"Country", "Value"},
			records: [][]any{{"Germany", "1"}, {"France", nil}},
		},
	}

	for _, v := range tests {
		path := writeFile(t, "raw.csv", v.content)
		src := sources.SourceConfig{
			ID: "S-1", File: path, Format: sources.FormatCSV, Delimiter: v.delim,
		}
		res, err := ioextract.Extract(context.Background(), &src)
		require.NoError(t, err, v.msg)
		assert.Equal(t, v.header, res.Header, v.msg)
		assert.Equal(t, v.records, res.Records, v.msg)
	}
}

func TestExtractJSON(t *testing.T) {
	doc := `[
  {"page": 1, "pages": 1},
  [
    {"country": {"id": "DE", "value": "Germany"}, "date": "2019", "value": 12.5},
    {"country": {"id": "FR", "value": "France"}, "date": "2020", "value": null,
     "tags": ["a"]}
  ]
]`
	path := writeFile(t, "raw.json", doc)
	src := sources.SourceConfig{
		ID: "S-2", File: path, Format: sources.FormatJSON, Records: "1",
	}
	res, err := ioextract.Extract(context.Background(), &src)
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"country.id", "country.value", "date", "value", "tags"},
		res.Header,
	)
	require.Len(t, res.Records, 2)
	assert.Equal(t, []any{"DE", "Germany", "2019", "12.5", nil}, res.Records[0])
	assert.Equal(t, []any{"FR", "France", "2020", nil, `["a"]`}, res.Records[1])
}

func TestExtractJSONPath(t *testing.T) {
	doc := `{"data": {"rows": [{"a": 1}, {"b": true}]}}`
	path := writeFile(t, "raw.json", doc)

	tests := []struct {
		msg     string
		records string
		hasErr  bool
	}{
		{"nested path", "data.rows", false},
		{"missing key", "data.cols", true},
		{"not a list", "data", true},
		{"bad index", "data.rows.x", true},
	}
	for _, v := range tests {
		src := sources.SourceConfig{
			ID: "S-3", File: path, Format: sources.FormatJSON, Records: v.records,
		}
		res, err := ioextract.Extract(context.Background(), &src)
		if v.hasErr {
			assert.Error(t, err, v.msg)
			continue
		}
		require.NoError(t, err, v.msg)
		assert.Equal(t, []string{"a", "b"}, res.Header, v.msg)
		assert.Equal(t, [][]any{{"1", nil}, {nil, true}}, res.Records, v.msg)
	}
}

func TestExtractSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.sqlite")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE "ratifications" (
  "Country" TEXT, "Status" TEXT, "Year" INTEGER)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO "ratifications" VALUES
  ('Germany', 'Ratified', 1992), ('France', NULL, 1990)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	src := sources.SourceConfig{
		ID: "S-4", File: path, Format: sources.FormatSQLite, Table: "ratifications",
	}
	res, err := ioextract.Extract(context.Background(), &src)
	require.NoError(t, err)
	assert.Equal(t, []string{"Country", "Status", "Year"}, res.Header)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "Germany", res.Records[0][0])
	assert.Equal(t, "Ratified", res.Records[0][1])
	assert.EqualValues(t, 1992, res.Records[0][2])
	assert.Nil(t, res.Records[1][1])

	src.Table = "missing"
	_, err = ioextract.Extract(context.Background(), &src)
	assert.Error(t, err)
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		msg  string
		src  sources.SourceConfig
		code gn.ErrorCode
	}{
		{
			"unsupported format",
			sources.SourceConfig{ID: "S-1", File: "raw.xlsx", Format: "xlsx"},
			errcode.ExtractUnsupportedFormatError,
		},
		{
			"missing csv",
			sources.SourceConfig{ID: "S-1", File: "/nonexistent/raw.csv", Format: "csv"},
			errcode.ExtractReadError,
		},
		{
			"missing sqlite",
			sources.SourceConfig{
				ID: "S-1", File: "/nonexistent/raw.db", Format: "sqlite", Table: "t",
			},
			errcode.ExtractReadError,
		},
	}

	for _, v := range tests {
		_, err := ioextract.Extract(context.Background(), &v.src)
		require.Error(t, err, v.msg)
		gnErr, ok := err.(*gn.Error)
		require.True(t, ok, v.msg)
		assert.Equal(t, v.code, gnErr.Code, v.msg)
		assert.Equal(t, "S-1", gnErr.Vars[0], v.msg)
	}
}
