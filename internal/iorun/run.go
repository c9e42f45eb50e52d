// Package iorun runs the whole pipeline: it extracts and processes the
// selected sources concurrently, aggregates their scores and saves the
// results in every configured format.
package iorun

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/m-g-d-c/crba-etl/internal/ioexport"
	"github.com/m-g-d-c/crba-etl/internal/ioextract"
	"github.com/m-g-d-c/crba-etl/internal/iofs"
	"github.com/m-g-d-c/crba-etl/internal/iometrics"
	"github.com/m-g-d-c/crba-etl/internal/ioreference"
	"github.com/m-g-d-c/crba-etl/internal/iosources"
	"github.com/m-g-d-c/crba-etl/pkg/aggregate"
	"github.com/m-g-d-c/crba-etl/pkg/config"
	"github.com/m-g-d-c/crba-etl/pkg/lifecycle"
	"github.com/m-g-d-c/crba-etl/pkg/pipeline"
	"github.com/m-g-d-c/crba-etl/pkg/schema"
	"github.com/m-g-d-c/crba-etl/pkg/sdmx"
	"github.com/m-g-d-c/crba-etl/pkg/sources"
	"golang.org/x/sync/errgroup"
)

type runner struct {
	cfg     *config.Config
	rc      *sdmx.RunContext
	metrics *iometrics.Metrics
}

// outcome of one source.
type outcome struct {
	res pipeline.Result
	err error
}

// New creates a Runner for cfg.
func New(cfg *config.Config) lifecycle.Runner {
	return &runner{cfg: cfg}
}

func (r *runner) Run(ctx context.Context) (*lifecycle.Summary, error) {
	startTime := time.Now()
	r.rc = sdmx.NewRunContext(r.cfg.Run)
	r.metrics = iometrics.New(r.rc.RunID)
	slog.Info("Starting run",
		"run_id", r.rc.RunID,
		"year", r.rc.Year,
	)

	// exporters are created first, a wrong format fails before any work
	exporters, err := ioexport.NewAll(r.cfg)
	if err != nil {
		return nil, err
	}

	ref, err := ioreference.Load(r.cfg)
	if err != nil {
		return nil, err
	}

	sourcesConfig, err := iosources.New(r.cfg).Load()
	if err != nil {
		return nil, err
	}
	for _, w := range sourcesConfig.Warnings {
		gn.Warn("Source <em>%s</em>, %s: %s", w.SourceID, w.Field, w.Message)
	}

	srcs, err := r.collectSources(sourcesConfig)
	if err != nil {
		return nil, err
	}

	outcomes, err := r.processSources(ctx, srcs, ref)
	if err != nil {
		return nil, err
	}

	dir := ioexport.RunDir(r.cfg, r.rc.RunID)
	if err = iofs.TouchDir(dir); err != nil {
		return nil, err
	}

	res := &lifecycle.Summary{RunID: r.rc.RunID, Dir: dir}
	report := ioexport.Report{
		RunID:     r.rc.RunID,
		Year:      r.rc.Year,
		StartedAt: startTime,
		Sources:   len(srcs),
		Formats:   r.cfg.Export.Formats,
	}
	out := &lifecycle.Output{RC: r.rc}
	var frames []*sdmx.Frame
	for i, v := range outcomes {
		id := srcs[i].ID
		var rows int
		if v.err == nil {
			frames = append(frames, v.res.Frame)
			rows = v.res.Frame.Len()
			res.Succeeded = append(res.Succeeded, id)
		} else {
			res.Failed = append(res.Failed, id)
		}
		out.Runs = append(out.Runs,
			schema.NewSourceRun(r.rc, id, v.res.Stats, rows, v.err))
		report.SourceReports = append(report.SourceReports,
			ioexport.NewSourceReport(id, v.res.Stats, v.err))
	}
	report.Succeeded = len(res.Succeeded)
	report.Failed = res.Failed

	if len(res.Succeeded) == 0 {
		report.Duration = gnfmt.TimeString(time.Since(startTime).Seconds())
		if err = ioexport.WriteReport(dir, &report); err != nil {
			return nil, err
		}
		return nil, AllSourcesFailedError(len(res.Failed))
	}

	out.Combined = sdmx.Concat(frames...)
	out.Scores, out.Levels, err = aggregate.Aggregate(out.Combined, ref.Countries)
	if err != nil {
		return nil, err
	}
	out.Final = aggregate.Join(out.Combined, out.Scores)
	res.Observations = out.Combined.Len()
	res.Scores = len(out.Scores)

	for _, exp := range exporters {
		if err = ctx.Err(); err != nil {
			return nil, CancelledError(err)
		}
		gn.Info("Exporting results as <em>%s</em>", exp.Format())
		if err = exp.Export(ctx, dir, out); err != nil {
			return nil, err
		}
	}

	r.metrics.SetTotals(res.Observations, res.Scores)
	if err = r.metrics.Write(filepath.Join(dir, ioexport.MetricsFile)); err != nil {
		return nil, err
	}

	totalDuration := time.Since(startTime)
	report.Observations = res.Observations
	report.Scores = res.Scores
	report.Duration = gnfmt.TimeString(totalDuration.Seconds())
	report.SetThresholds(out.Levels)
	if err = ioexport.WriteReport(dir, &report); err != nil {
		return nil, err
	}

	slog.Info("Run complete",
		"run_id", r.rc.RunID,
		"success", len(res.Succeeded),
		"errors", len(res.Failed),
		"observations", res.Observations,
		"scores", res.Scores,
		"duration", gnfmt.TimeString(totalDuration.Seconds()),
	)
	gn.Info(`Run complete
Sources succeded: %d, failed %d, total %d.
Observations: <em>%s</em>, aggregated scores: <em>%s</em>.
Results: <em>%s</em>
Elapsed time: <em>%s</em>
`,
		len(res.Succeeded),
		len(res.Failed),
		len(srcs),
		humanize.Comma(int64(res.Observations)),
		humanize.Comma(int64(res.Scores)),
		dir,
		gnfmt.TimeString(totalDuration.Seconds()),
	)

	if len(res.Failed) > 0 {
		slog.Warn("Some sources failed to process",
			"failed", res.Failed,
			"succeeded", len(res.Succeeded))
	}
	return res, nil
}

func (r *runner) collectSources(
	sourcesConfig *sources.SourcesConfig,
) ([]sources.SourceConfig, error) {
	ids := r.cfg.Run.SourceIDs
	res, warnings, err := sourcesConfig.Filter(ids)
	for _, w := range warnings {
		gn.Warn("%s", w)
	}
	if err != nil {
		return nil, NoSourcesError(ids, err)
	}

	if len(ids) == 0 {
		slog.Info("Processing all sources", "count", len(res))
	}
	noun := "source"
	if len(res) > 1 {
		noun += "s"
	}
	gn.Info("Processing <em>%d</em> %s", len(res), noun)
	return res, nil
}

// processSources runs sources through the pipeline concurrently.
// Outcomes keep the order of srcs. Only cancellation of ctx is an
// error, failed sources are reported in their outcomes.
func (r *runner) processSources(
	ctx context.Context,
	srcs []sources.SourceConfig,
	ref *pipeline.Reference,
) ([]outcome, error) {
	res := make([]outcome, len(srcs))
	bar := newProgressBar(len(srcs), "sources ")
	defer bar.Finish()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.cfg.JobsNumber, 1))
	for i := range srcs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res[i] = r.processSource(gctx, &srcs[i], ref)
			bar.Increment()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, CancelledError(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, CancelledError(err)
	}
	return res, nil
}

// processSource extracts and processes one source. Errors are logged
// and returned in the outcome.
func (r *runner) processSource(
	ctx context.Context,
	src *sources.SourceConfig,
	ref *pipeline.Reference,
) outcome {
	start := time.Now()
	slog.Info("Processing source",
		"source_id", src.ID,
		"code", src.Code,
		"file", src.File,
	)

	var res outcome
	raw, err := ioextract.Extract(ctx, src)
	if err != nil {
		res.res.SourceID = src.ID
		res.err = pipeline.SourceError(src.ID, err)
	} else {
		res.res, res.err = pipeline.Process(r.rc, src, raw, ref)
	}

	duration := time.Since(start)
	st := res.res.Stats
	r.metrics.AddRows("raw", st.RawRows)
	r.metrics.AddRows("matched", st.Matched)
	r.metrics.AddRows("unmatched", st.Unmatched)
	r.metrics.AddRows("padded", st.Padded)

	if res.err != nil {
		r.metrics.ObserveSource(schema.StatusFailed, duration)
		slog.Error("Failed to process source",
			"source_id", src.ID,
			"code", src.Code,
			"error", res.err,
		)
		return res
	}

	r.metrics.ObserveSource(schema.StatusOK, duration)
	r.metrics.AddRows("scored", st.Normalization.Scored)
	slog.Info("Source processed successfully",
		"source_id", src.ID,
		"rows", res.res.Frame.Len(),
		"duration", gnfmt.TimeString(duration.Seconds()),
	)
	return res
}
