package ioexport

import (
	"context"
	"encoding/csv"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/m-g-d-c/crba-etl/pkg/aggregate"
	"github.com/m-g-d-c/crba-etl/pkg/lifecycle"
	"github.com/m-g-d-c/crba-etl/pkg/sdmx"
)

// Columns of aggregated scores.
const (
	ColCategoryIssueScore = "CATEGORY_ISSUE_SCORE"
	ColIssueIndexScore    = "ISSUE_INDEX_SCORE"
	ColIssueIndexRisk     = "ISSUE_INDEX_RISK"
	ColIndexScore         = "INDEX_SCORE"
	ColIndexRisk          = "INDEX_RISK"
	ColOverallScore       = "OVERALL_SCORE"
	ColOverallRisk        = "OVERALL_RISK"
	ColSourceID           = "SOURCE_ID"
)

var scoreColumns = []string{
	ColCategoryIssueScore,
	ColIssueIndexScore,
	ColIssueIndexRisk,
	ColIndexScore,
	ColIndexRisk,
	ColOverallScore,
	ColOverallRisk,
}

type csvExporter struct{}

func (e *csvExporter) Format() string {
	return FormatCSV
}

// Export writes the combined table, aggregated scores and the final
// table as ';' separated files.
func (e *csvExporter) Export(
	_ context.Context,
	dir string,
	out *lifecycle.Output,
) error {
	header := combinedHeader(out.Combined)
	rows := make([][]string, 0, out.Combined.Len())
	for _, v := range out.Combined.Rows {
		rows = append(rows, combinedRecord(out.Combined, v))
	}
	if err := writeCSV(filepath.Join(dir, CombinedFile), header, rows); err != nil {
		return err
	}

	sHeader := append([]string{
		sdmx.ColISO3, sdmx.ColName,
		sdmx.ColIndicatorIndex, sdmx.ColIndicatorIssue, sdmx.ColIndicatorCategory,
	}, scoreColumns...)
	sRows := make([][]string, 0, len(out.Scores))
	for _, v := range out.Scores {
		rec := []string{v.Country.ISO3, v.Country.Name, v.Index, v.Issue, v.Category}
		sRows = append(sRows, append(rec, scoreRecord(&v)...))
	}
	if err := writeCSV(filepath.Join(dir, ScoresFile), sHeader, sRows); err != nil {
		return err
	}

	fHeader := slices.Concat(header, scoreColumns)
	fRows := make([][]string, 0, len(out.Final))
	for _, v := range out.Final {
		rec := combinedRecord(out.Combined, v.Observation)
		fRows = append(fRows, append(rec, scoreRecord(v.Score)...))
	}
	if err := writeCSV(filepath.Join(dir, FinalFile), fHeader, fRows); err != nil {
		return err
	}

	slog.Info("CSV files written",
		"dir", dir,
		"observations", humanize.Comma(int64(len(rows))),
		"scores", humanize.Comma(int64(len(sRows))),
	)
	return nil
}

func combinedHeader(f *sdmx.Frame) []string {
	res := []string{ColSourceID}
	res = append(res, sdmx.CountryColumns...)
	res = append(res, sdmx.ColTime, sdmx.ColRaw, sdmx.ColScaled, sdmx.ColObsStatus)
	res = append(res, f.DimCols...)
	res = append(res, f.AttrCols...)
	res = append(res, sdmx.IndicatorColumns...)
	return res
}

func combinedRecord(f *sdmx.Frame, o sdmx.Observation) []string {
	res := make([]string, 0, 8+len(f.DimCols)+len(f.AttrCols)+
		len(sdmx.IndicatorColumns))
	res = append(res, o.SourceID)
	for _, v := range sdmx.CountryColumns {
		res = append(res, o.Country.Get(v))
	}

	var tm, raw string
	if o.Time > 0 {
		tm = strconv.Itoa(o.Time)
	}
	if o.Raw.Valid {
		raw = o.Raw.String
	}
	res = append(res, tm, raw, formatFloat(o.Scaled), o.ObsStatus)

	// dimensions of other sources count as totals
	for _, v := range f.DimCols {
		dim, ok := o.Dims[v]
		if !ok {
			dim = sdmx.Total
		}
		res = append(res, dim)
	}
	for _, v := range f.AttrCols {
		res = append(res, o.Attrs[v])
	}
	for _, v := range sdmx.IndicatorColumns {
		res = append(res, o.Indicator.Get(v))
	}
	return res
}

func scoreRecord(s *aggregate.Score) []string {
	if s == nil {
		return make([]string, len(scoreColumns))
	}
	return []string{
		formatFloat(s.CategoryIssueScore),
		formatFloat(s.IssueIndexScore),
		s.IssueIndexRisk,
		formatFloat(s.IndexScore),
		s.IndexRisk,
		formatFloat(s.OverallScore),
		s.OverallRisk,
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return CSVError(path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = csvDelimiter
	if err = w.Write(header); err != nil {
		return CSVError(path, err)
	}
	if err = w.WriteAll(rows); err != nil {
		return CSVError(path, err)
	}
	return nil
}
