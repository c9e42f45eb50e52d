package ioexport

import (
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gnames/gnfmt"
	"github.com/m-g-d-c/crba-etl/pkg/aggregate"
	"github.com/m-g-d-c/crba-etl/pkg/pipeline"
	"github.com/m-g-d-c/crba-etl/pkg/schema"
)

// Report is the summary of a run written to run_report.json.
type Report struct {
	RunID     string    `json:"runId"`
	Year      int       `json:"year"`
	StartedAt time.Time `json:"startedAt"`
	Duration  string    `json:"duration"`

	// Sources is the number of processed sources.
	Sources   int      `json:"sources"`
	Succeeded int      `json:"succeeded"`
	Failed    []string `json:"failed"`

	Observations int `json:"observations"`
	Scores       int `json:"scores"`

	// Thresholds of risk labels per aggregation level. Levels without
	// scores have no bounds.
	Thresholds map[string]Bounds `json:"thresholds,omitempty"`

	Formats       []string       `json:"formats"`
	SourceReports []SourceReport `json:"sourceReports"`
}

// Bounds are JSON-safe risk thresholds.
type Bounds struct {
	Lower *float64 `json:"lower,omitempty"`
	Upper *float64 `json:"upper,omitempty"`
}

// SourceReport is the outcome of one source.
type SourceReport struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Error  string         `json:"error,omitempty"`
	Stats  pipeline.Stats `json:"stats"`
}

// NewSourceReport creates a report of a source. A non-nil err marks the
// source as failed.
func NewSourceReport(id string, st pipeline.Stats, err error) SourceReport {
	res := SourceReport{ID: id, Status: schema.StatusOK, Stats: st}
	if err != nil {
		res.Status = schema.StatusFailed
		res.Error = err.Error()
	}
	return res
}

// SetThresholds converts risk thresholds into their JSON-safe form.
func (r *Report) SetThresholds(lv aggregate.Levels) {
	r.Thresholds = map[string]Bounds{
		"issueIndex": newBounds(lv.IssueIndex),
		"index":      newBounds(lv.Index),
		"overall":    newBounds(lv.Overall),
	}
}

func newBounds(t aggregate.Thresholds) Bounds {
	var res Bounds
	if !math.IsNaN(t.Lower) {
		res.Lower = &t.Lower
	}
	if !math.IsNaN(t.Upper) {
		res.Upper = &t.Upper
	}
	return res
}

// WriteReport saves the report as run_report.json in dir.
func WriteReport(dir string, r *Report) error {
	path := filepath.Join(dir, ReportFile)
	enc := gnfmt.GNjson{Pretty: true}
	bs, err := enc.Encode(r)
	if err != nil {
		return ReportError(path, err)
	}
	if err = os.WriteFile(path, bs, 0644); err != nil {
		return ReportError(path, err)
	}
	return nil
}
