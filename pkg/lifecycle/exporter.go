package lifecycle

import (
	"context"

	"github.com/m-g-d-c/crba-etl/pkg/aggregate"
	"github.com/m-g-d-c/crba-etl/pkg/schema"
	"github.com/m-g-d-c/crba-etl/pkg/sdmx"
)

// Output is everything a run produced.
type Output struct {
	// RC is the context of the run.
	RC *sdmx.RunContext

	// Combined holds the scored observations of all successful sources
	// in sources.yaml order.
	Combined *sdmx.Frame

	// Scores are aggregated scores, one per country and indicator
	// classification.
	Scores []aggregate.Score

	// Levels are risk thresholds of the aggregation levels.
	Levels aggregate.Levels

	// Final is the combined table with aggregated scores attached.
	Final []aggregate.FinalRow

	// Runs record the outcome of every processed source.
	Runs []schema.SourceRun
}

// Exporter writes the output of a run in one format.
type Exporter interface {
	// Format returns the name of the format as used in
	// export.formats.
	Format() string

	// Export writes the output. Files go to dir, the output directory
	// of the run.
	Export(ctx context.Context, dir string, out *Output) error
}
