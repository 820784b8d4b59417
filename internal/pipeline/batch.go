package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of URLs checked at once by default.
const DefaultConcurrency = 10

// BatchProcessor checks many URLs concurrently, one fresh Pipeline per URL.
// It uses errgroup to run the pipelines and to cap how many run at once.
//
// Batching lives outside Pipeline: a Pipeline checks exactly one URL, and
// the processor decides how many of them run and in which order results are
// handed back.
//
// A failed URL never stops the batch. Only the end of ctx does, and URLs
// that had not started by then are reported as cancelled.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each URL.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent checks.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent checks.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// pipelineFactory is called once per URL. Each URL gets its own Pipeline,
// so nothing a step records about one URL is seen by another.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch checks every URL and returns their outcomes in input order.
// It respects the configured concurrency limit and context cancellation.
//
// errgroup.SetLimit bounds the goroutines: every URL gets one, but only
// concurrency of them run at the same time.
//
// Failed URLs are recorded in their Outcome and do not stop the batch.
// The returned error is non-nil only when ctx ended; outcomes of URLs that
// never started are marked Cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, urls []string) ([]*Outcome, error) {
	bp.logger.Info("starting batch processing",
		"total_urls", len(urls),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Each goroutine writes only its own index.
	outcomes := make([]*Outcome, len(urls))
	for i, u := range urls {
		outcomes[i] = NewOutcome(u)
	}

	err := bp.run(ctx, urls, func(outcome *Outcome, index int) {
		outcomes[index] = outcome
	})

	for _, o := range outcomes {
		if err != nil && o.Result == nil && o.Err == nil {
			o.Cancelled = true
			o.Err = err
		}
	}

	bp.logger.Info("batch processing complete",
		"total_urls", len(urls),
		"failed", countFailed(outcomes),
		"elapsed", time.Since(startTime),
	)

	return outcomes, err
}

// ProcessBatchWithCallback checks every URL and calls callback as each one
// completes. This is how results are streamed to the terminal.
//
// callback receives the outcome and the index of its URL in urls. It runs
// on the goroutine that finished the check, so it must be safe for
// concurrent use. URLs that never started because ctx ended get no
// callback; the returned error tells the caller that happened.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	urls []string,
	callback func(outcome *Outcome, index int),
) error {
	bp.logger.Info("starting batch processing with callback",
		"total_urls", len(urls),
		"concurrency", bp.concurrency,
	)

	return bp.run(ctx, urls, callback)
}

// run executes one pipeline per URL under the concurrency limit.
func (bp *BatchProcessor) run(ctx context.Context, urls []string, done func(*Outcome, int)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, u := range urls {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			outcome := NewOutcome(u)
			if err := bp.pipelineFactory().Execute(ctx, outcome); err != nil {
				bp.logger.Warn("check failed",
					"url", u,
					"index", i+1,
					"total", len(urls),
					"error", err,
				)
			}

			done(outcome, i)

			// A failed URL is data, not a batch failure.
			return nil
		})
	}

	return g.Wait()
}

// countFailed returns the number of failed outcomes.
func countFailed(outcomes []*Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Failed() {
			n++
		}
	}
	return n
}
