package sdmx

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/m-g-d-c/crba-etl/pkg/config"
)

// RunContext carries the state of one pipeline run. It is created once at
// the start of a run and passed to every stage. Stages must not modify it.
type RunContext struct {
	// RunID names the run and its output directory.
	RunID string

	// Year is the processing year.
	Year int

	// WhiskerFactor is the IQR multiplier for outlier bounds.
	WhiskerFactor float64

	// MaxScore is the upper bound of scores.
	MaxScore float64

	// RecencyYears sets the oldest year still scored to Year-RecencyYears.
	RecencyYears int

	// DuplicateTolerant lists ISO3 codes that may appear twice in a slice.
	DuplicateTolerant []string
}

// NewRunContext creates a run context from run settings. A zero year
// means the current calendar year.
func NewRunContext(cfg config.RunConfig) *RunContext {
	year := cfg.Year
	if year <= 0 {
		year = time.Now().Year()
	}
	return &RunContext{
		RunID:             uuid.NewString(),
		Year:              year,
		WhiskerFactor:     cfg.WhiskerFactor,
		MaxScore:          cfg.MaxScore,
		RecencyYears:      cfg.RecencyYears,
		DuplicateTolerant: slices.Clone(cfg.DuplicateTolerant),
	}
}

// OldestYear returns the earliest year that still counts for scoring.
func (rc *RunContext) OldestYear() int {
	return rc.Year - rc.RecencyYears
}
