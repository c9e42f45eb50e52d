package lifecycle

import "context"

// Summary tells what a finished run did.
type Summary struct {
	// RunID identifies the run, results are saved to OutputDir/RunID.
	RunID string

	// Dir is the output directory of the run.
	Dir string

	// Succeeded lists IDs of processed sources in sources.yaml order.
	Succeeded []string

	// Failed lists IDs of sources that failed.
	Failed []string

	// Observations is the number of rows in the combined table.
	Observations int

	// Scores is the number of aggregated score rows.
	Scores int
}

// Runner runs the whole pipeline: extraction and processing of every
// selected source, aggregation and export.
type Runner interface {
	// Run processes sources concurrently. A failure of one source does
	// not stop the others. Run returns an error when nothing could be
	// processed, when the context is cancelled or when results cannot
	// be saved.
	Run(ctx context.Context) (*Summary, error)
}
