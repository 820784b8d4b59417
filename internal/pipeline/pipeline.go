package pipeline

import (
	"context"
	"log/slog"
)

// Step is one stage of checking a URL.
type Step interface {
	// Do executes the step against outcome.
	// Returning an error marks the URL as failed.
	Do(ctx context.Context, outcome *Outcome) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in sequence. Cancellation is checked before each
// step; a step is expected to honor ctx itself while it runs.
//
// Execution stops at the first failing step, since every later step
// depends on the lookup result. The error is also stored in outcome.Err.
func (p *Pipeline) Execute(ctx context.Context, outcome *Outcome) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"url", outcome.URL,
				"reason", err,
			)
			outcome.Cancelled = true
			if outcome.Err == nil {
				outcome.Err = err
			}
			return err
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"url", outcome.URL,
		)

		if err := step.Do(ctx, outcome); err != nil {
			p.logger.Warn("step failed",
				"step", step.Name(),
				"url", outcome.URL,
				"error", err,
			)

			if outcome.Err == nil {
				outcome.Err = err
			}
			outcome.PerformedSteps = append(outcome.PerformedSteps, step.Name())
			return err
		}

		outcome.PerformedSteps = append(outcome.PerformedSteps, step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
