package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nao1215/catchphish/internal/model"
)

// ErrNoResult is returned by SaveStep when there is nothing to save.
var ErrNoResult = errors.New("no lookup result to save")

// Searcher performs a single URL lookup.
type Searcher interface {
	Lookup(ctx context.Context, rawURL string) (*model.LookupResult, error)
}

// Store persists lookup results.
type Store interface {
	SaveLookup(ctx context.Context, submitted string, result *model.LookupResult) (int64, error)
}

// LookupStep asks the service to classify the URL.
type LookupStep struct {
	searcher Searcher
	logger   *slog.Logger
}

// NewLookupStep creates a LookupStep.
func NewLookupStep(searcher Searcher, logger *slog.Logger) *LookupStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &LookupStep{searcher: searcher, logger: logger}
}

// Name implements Step.
func (s *LookupStep) Name() string {
	return "lookup"
}

// Do implements Step.
func (s *LookupStep) Do(ctx context.Context, outcome *Outcome) error {
	result, err := s.searcher.Lookup(ctx, outcome.URL)
	if err != nil {
		return err
	}
	outcome.Result = result

	s.logger.Debug("lookup classified",
		"url", outcome.URL,
		"label", result.Label(),
		"probability", result.PredictionProb,
	)
	return nil
}

// SaveStep records the result in the history store.
type SaveStep struct {
	store Store
}

// NewSaveStep creates a SaveStep.
func NewSaveStep(store Store) *SaveStep {
	return &SaveStep{store: store}
}

// Name implements Step.
func (s *SaveStep) Name() string {
	return "save"
}

// Do implements Step.
func (s *SaveStep) Do(ctx context.Context, outcome *Outcome) error {
	if outcome.Result == nil {
		return ErrNoResult
	}
	id, err := s.store.SaveLookup(ctx, outcome.URL, outcome.Result)
	if err != nil {
		return err
	}
	outcome.SavedID = id
	return nil
}

// DefaultPipeline builds the check pipeline: lookup, then save when store
// is non-nil.
func DefaultPipeline(searcher Searcher, store Store, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddStep(NewLookupStep(searcher, p.logger))
	if store != nil {
		p.AddStep(NewSaveStep(store))
	}
	return p
}
