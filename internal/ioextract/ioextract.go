// Package ioextract reads already downloaded raw files into loosely typed
// tables. CSV, JSON and SQLite files are supported.
package ioextract

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/m-g-d-c/crba-etl/pkg/sdmx"
	"github.com/m-g-d-c/crba-etl/pkg/sources"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Extract reads the raw file of a source. File has to be resolved
// already.
func Extract(ctx context.Context, src *sources.SourceConfig) (*sdmx.RawFrame, error) {
	var res *sdmx.RawFrame
	var err error

	switch src.Format {
	case sources.FormatCSV, "":
		res, err = readCSV(src.File, src.Delimiter)
	case sources.FormatJSON:
		res, err = readJSON(src.File, src.Records)
	case sources.FormatSQLite:
		res, err = readSQLite(ctx, src.File, src.Table)
	default:
		return nil, UnsupportedFormatError(src.ID, src.Format)
	}
	if err != nil {
		return nil, ReadError(src.ID, src.File, err)
	}
	return res, nil
}

func readCSV(path, delim string) (*sdmx.RawFrame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	if delim != "" {
		r.Comma, _ = utf8.DecodeRuneInString(delim)
	}

	header, err := r.Read()
	if err == io.EOF {
		return nil, errors.New("file is empty")
	}
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	res := &sdmx.RawFrame{Header: header}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rec := make([]any, len(header))
		for i := range rec {
			if i < len(row) && row[i] != "" {
				rec[i] = row[i]
			}
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

func readJSON(path, records string) (*sdmx.RawFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()
	var doc any
	if err = dec.Decode(&doc); err != nil {
		return nil, err
	}

	node, err := walk(doc, records)
	if err != nil {
		return nil, err
	}
	list, ok := node.([]any)
	if !ok {
		return nil, fmt.Errorf("records path '%s' does not point to a list", records)
	}

	res := &sdmx.RawFrame{}
	index := make(map[string]int)
	var flat []map[string]any
	for _, v := range list {
		obj, ok := v.(map[string]any)
		if !ok {
			continue
		}
		row := make(map[string]any)
		keys := flatten("", obj, row, nil)
		for _, k := range keys {
			if _, ok := index[k]; !ok {
				index[k] = len(res.Header)
				res.Header = append(res.Header, k)
			}
		}
		flat = append(flat, row)
	}

	for _, row := range flat {
		rec := make([]any, len(res.Header))
		for k, v := range row {
			rec[index[k]] = v
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

// walk follows a dot-separated path, numeric segments index into lists.
func walk(doc any, path string) (any, error) {
	if path == "" {
		return doc, nil
	}
	node := doc
	for _, seg := range strings.Split(path, ".") {
		switch n := node.(type) {
		case map[string]any:
			v, ok := n[seg]
			if !ok {
				return nil, fmt.Errorf("key '%s' not found", seg)
			}
			node = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(n) {
				return nil, fmt.Errorf("bad list index '%s'", seg)
			}
			node = n[i]
		default:
			return nil, fmt.Errorf("cannot descend into '%s'", seg)
		}
	}
	return node, nil
}

// flatten turns nested objects into "parent.child" keys and returns the
// keys sorted within every object. Lists stay as their JSON text.
func flatten(
	prefix string,
	obj map[string]any,
	row map[string]any,
	keys []string,
) []string {
	for _, k := range slices.Sorted(maps.Keys(obj)) {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch v := obj[k].(type) {
		case map[string]any:
			keys = flatten(key, v, row, keys)
		case []any:
			bs, _ := json.Marshal(v)
			row[key] = string(bs)
			keys = append(keys, key)
		case json.Number:
			row[key] = v.String()
			keys = append(keys, key)
		case nil:
			keys = append(keys, key)
		default:
			row[key] = v
			keys = append(keys, key)
		}
	}
	return keys
}

func readSQLite(ctx context.Context, path, table string) (*sdmx.RawFrame, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	q := fmt.Sprintf("SELECT * FROM %q", table)
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	res := &sdmx.RawFrame{Header: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err = rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			if bs, ok := v.([]byte); ok {
				vals[i] = string(bs)
			}
		}
		res.Records = append(res.Records, vals)
	}
	return res, rows.Err()
}
