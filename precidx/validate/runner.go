package validate

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/iter"

	"github.com/precidx/precidx/precidx/ports"
	"github.com/precidx/precidx/precidx/transcript"
)

// Runner drives schema validation over batches of transcript folders.
// Files are independent, so they are fanned out over a bounded worker pool;
// results keep file order regardless of completion order. A failure inside
// one file is logged and isolates to that file, never aborting the batch.
type Runner struct {
	validator *Validator
	workers   int
	logger    zerolog.Logger
	tracer    ports.Tracer
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithWorkers bounds the per-batch concurrency. 1 reproduces strictly
// sequential processing.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// WithTracer attaches a tracer.
func WithTracer(tracer ports.Tracer) RunnerOption {
	return func(r *Runner) { r.tracer = tracer }
}

// NewRunner creates a runner around a validator.
func NewRunner(v *Validator, opts ...RunnerOption) *Runner {
	r := &Runner{
		validator: v,
		workers:   1,
		logger:    zerolog.Nop(),
		tracer:    nopTracer{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run validates every transcript in the given folders. Folders that do not
// exist are skipped with a warning, matching the per-file isolation policy.
func (r *Runner) Run(ctx context.Context, folders []string) (*Report, error) {
	ctx, finish := r.tracer.StartSpan(ctx, "validate_batch", map[string]any{
		"folders": len(folders),
	})

	var files []string
	for _, folder := range folders {
		if _, err := os.Stat(folder); err != nil {
			r.logger.Warn().Str("folder", folder).Msg("data folder missing, skipping")
			continue
		}
		list, err := transcript.ListRunFiles(folder)
		if err != nil {
			r.logger.Warn().Err(err).Str("folder", folder).Msg("folder scan failed, skipping")
			continue
		}
		files = append(files, list...)
	}

	mapper := iter.Mapper[string, *FileResult]{MaxGoroutines: r.workers}
	results := mapper.Map(files, func(file *string) *FileResult {
		fr, err := r.processFile(*file)
		if err != nil {
			r.tracer.Event(ctx, "file_skipped", map[string]any{"file": *file})
			r.logger.Warn().Err(err).Str("file", *file).Msg("transcript processing failed, skipping file")
			return nil
		}
		return fr
	})

	report := &Report{}
	for _, fr := range results {
		if fr != nil {
			report.PerFileResults = append(report.PerFileResults, *fr)
		}
	}
	report.finalize()

	finish(nil)
	return report, nil
}

func (r *Runner) processFile(file string) (*FileResult, error) {
	doc, err := transcript.Load(file)
	if err != nil {
		return nil, err
	}

	fr := &FileResult{File: file, CallsDetails: []Verdict{}}
	for _, rec := range doc.Calls(0) {
		verdict := r.validator.ValidateCall(rec)
		fr.CallsDetails = append(fr.CallsDetails, verdict)

		fr.TotalCalls++
		if verdict.ActionValid {
			fr.ActionValidCalls++
		}
		if verdict.ObservationValid {
			fr.ObservationValidCalls++
		}
		if verdict.Valid() {
			fr.ValidCalls++
		}
	}

	fr.InvalidCalls = fr.TotalCalls - fr.ValidCalls
	if fr.TotalCalls > 0 {
		fr.AccSchema = float64(fr.ValidCalls) / float64(fr.TotalCalls)
	}
	return fr, nil
}

type nopTracer struct{}

func (nopTracer) StartSpan(ctx context.Context, _ string, _ map[string]any) (context.Context, func(error)) {
	return ctx, func(error) {}
}

func (nopTracer) Event(context.Context, string, map[string]any) {}
