package view

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/nao1215/catchphish/internal/model"
)

// Searcher performs a single URL lookup.
// *lookup.Client satisfies Searcher.
type Searcher interface {
	Lookup(ctx context.Context, rawURL string) (*model.LookupResult, error)
}

// View holds the state of one search box and issues lookups through a Searcher.
// All methods are safe for concurrent use.
//
// Every change goes through Reduce, so the View itself only owns what a pure
// function cannot: the lock, the goroutine of each lookup and the cancel
// function of each outstanding request. Front ends (the terminal UI and the
// line-based mode) drive a View and read its State; WithOnChange tells them
// when to redraw.
//
// Lookups carry a generation number. Under LatestOnly a new search cancels
// every outstanding one, and completions of older generations are logged at
// debug level and dropped. Under LastWriteWins each completion is applied
// in the order it arrives.
type View struct {
	mu    sync.Mutex
	state State

	searcher Searcher
	policy   StalePolicy
	logger   *slog.Logger
	onChange func(State)

	// cancels holds the cancel function of every outstanding request by generation.
	cancels map[uint64]context.CancelFunc

	wg sync.WaitGroup
}

// Option configures a View.
type Option func(*View)

// WithStalePolicy sets how superseded responses are treated.
// The default is LastWriteWins.
func WithStalePolicy(policy StalePolicy) Option {
	return func(v *View) {
		v.policy = policy
	}
}

// WithLogger sets the logger that receives lookup failures.
func WithLogger(logger *slog.Logger) Option {
	return func(v *View) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithOnChange registers fn to be called with the new state after every
// transition. fn runs while the view is locked and must not call back into
// the View.
func WithOnChange(fn func(State)) Option {
	return func(v *View) {
		v.onChange = fn
	}
}

// New creates a View in the Idle phase with an empty query.
func New(searcher Searcher, opts ...Option) *View {
	v := &View{
		searcher: searcher,
		policy:   LastWriteWins,
		logger:   slog.Default(),
		cancels:  make(map[uint64]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// State returns a snapshot of the current state.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Policy returns the stale-response policy in use.
func (v *View) Policy() StalePolicy {
	return v.policy
}

// OnQueryTextChange replaces the query text. It never starts a search.
func (v *View) OnQueryTextChange(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.apply(QueryChanged{Text: text})
}

// SubmitSearch issues a lookup for the current query and returns without
// waiting for it. A query that is empty after trimming whitespace is a
// no-op and SubmitSearch returns false. The untrimmed query is what gets
// sent.
//
// Under LatestOnly the previous outstanding request is cancelled.
func (v *View) SubmitSearch(ctx context.Context) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	query := v.state.Query
	if strings.TrimSpace(query) == "" {
		return false
	}

	if v.policy == LatestOnly {
		for _, cancel := range v.cancels {
			cancel()
		}
	}

	gen := v.state.Generation + 1
	reqCtx, cancel := context.WithCancel(ctx)
	v.cancels[gen] = cancel
	v.apply(SearchStarted{Generation: gen})

	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		result, err := v.searcher.Lookup(reqCtx, query)
		v.finish(gen, query, result, err)
	}()

	return true
}

// finish applies the completion of generation gen.
func (v *View) finish(gen uint64, query string, result *model.LookupResult, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if cancel, ok := v.cancels[gen]; ok {
		cancel()
		delete(v.cancels, gen)
	}

	if v.policy == LatestOnly && gen != v.state.Generation {
		v.logger.Debug("dropping stale lookup",
			"url", query,
			"generation", gen,
			"latest", v.state.Generation,
			"error", err,
		)
	} else if err != nil {
		v.logger.Warn("lookup failed",
			"url", query,
			"generation", gen,
			"error", err,
		)
	}

	if err != nil {
		v.apply(SearchFailed{Generation: gen, Err: err})
		return
	}
	v.apply(SearchSucceeded{Generation: gen, Result: result})
}

// apply runs Reduce and notifies the change callback. v.mu must be held.
func (v *View) apply(ev Event) {
	v.state = Reduce(v.state, ev, v.policy)
	if v.onChange != nil {
		v.onChange(v.state)
	}
}

// Wait blocks until every issued search has completed.
func (v *View) Wait() {
	v.wg.Wait()
}

// Close cancels outstanding requests and waits for them to finish.
func (v *View) Close() {
	v.mu.Lock()
	for _, cancel := range v.cancels {
		cancel()
	}
	v.mu.Unlock()
	v.wg.Wait()
}

// ClassifyLabel maps a prediction code to its display label.
func ClassifyLabel(code int) string {
	return model.ClassifyLabel(code)
}
