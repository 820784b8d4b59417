package view

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/catchphish/internal/model"
)

// searcherFunc adapts a function to Searcher.
type searcherFunc func(ctx context.Context, rawURL string) (*model.LookupResult, error)

func (f searcherFunc) Lookup(ctx context.Context, rawURL string) (*model.LookupResult, error) {
	return f(ctx, rawURL)
}

// pendingCall is a lookup held open by scriptedSearcher until answered.
type pendingCall struct {
	url   string
	ctx   context.Context
	reply chan reply
}

type reply struct {
	result *model.LookupResult
	err    error
}

func (c pendingCall) succeed(result *model.LookupResult) {
	c.reply <- reply{result: result}
}

// scriptedSearcher blocks every lookup until the test answers it or its
// context is cancelled.
type scriptedSearcher struct {
	calls chan pendingCall
}

func newScriptedSearcher() *scriptedSearcher {
	return &scriptedSearcher{calls: make(chan pendingCall, 16)}
}

func (s *scriptedSearcher) Lookup(ctx context.Context, rawURL string) (*model.LookupResult, error) {
	call := pendingCall{url: rawURL, ctx: ctx, reply: make(chan reply, 1)}
	s.calls <- call
	select {
	case r := <-call.reply:
		return r.result, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// next returns the next issued lookup.
func (s *scriptedSearcher) next(t *testing.T) pendingCall {
	t.Helper()
	select {
	case call := <-s.calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a lookup")
		return pendingCall{}
	}
}

// waitForState polls v until cond holds.
func waitForState(t *testing.T, v *View, cond func(State) bool) State {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s := v.State(); cond(s) {
			return s
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met, state: %+v", v.State())
	return State{}
}

// exampleResult is the documented example response.
func exampleResult() *model.LookupResult {
	return &model.LookupResult{
		URL:                  "http://example.com",
		PredictionResult:     1,
		PredictionProb:       0.92,
		IPAddress:            "1.2.3.4",
		Country:              "US",
		Region:               "CA",
		ISPName:              "ISP Co",
		IsVPN:                true,
		URLBasedFeatures:     []string{"f1", "f2"},
		ContentBasedFeatures: []string{},
		DomainBasedFeatures:  []string{"d1"},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// TestSubmitSearchBlankQuery tests that blank queries issue no lookup.
func TestSubmitSearchBlankQuery(t *testing.T) {
	t.Parallel()

	for _, query := range []string{"", " ", "\t", " \n\t "} {
		t.Run("query "+strings.ReplaceAll(query, "\n", "\\n"), func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			v := New(searcherFunc(func(context.Context, string) (*model.LookupResult, error) {
				calls.Add(1)
				return exampleResult(), nil
			}))
			v.OnQueryTextChange(query)
			before := v.State()

			if v.SubmitSearch(context.Background()) {
				t.Error("expected SubmitSearch to report no search")
			}
			v.Wait()

			if calls.Load() != 0 {
				t.Errorf("expected no lookup, got %d", calls.Load())
			}
			after := v.State()
			if after.Query != before.Query || after.Loading || after.Phase != PhaseIdle || after.Generation != 0 {
				t.Errorf("expected unchanged state, got %+v", after)
			}
		})
	}
}

// TestSubmitSearchSuccess tests the documented example lookup.
func TestSubmitSearchSuccess(t *testing.T) {
	t.Parallel()

	var gotURL string
	v := New(searcherFunc(func(_ context.Context, rawURL string) (*model.LookupResult, error) {
		gotURL = rawURL
		return exampleResult(), nil
	}), WithLogger(discardLogger()))

	v.OnQueryTextChange("http://example.com")
	if !v.SubmitSearch(context.Background()) {
		t.Fatal("expected a search to be issued")
	}
	v.Wait()

	if gotURL != "http://example.com" {
		t.Errorf("expected query sent verbatim, got %q", gotURL)
	}

	s := v.State()
	if s.Loading {
		t.Error("expected loading cleared")
	}
	if !s.HasResult() {
		t.Fatal("expected a result")
	}
	if s.Phase != PhaseResolved {
		t.Errorf("expected resolved, got %s", s.Phase)
	}
	if s.Result.Label() != "not reliable site" {
		t.Errorf("expected not reliable site, got %q", s.Result.Label())
	}
	if s.Result.Status() != "Danger" {
		t.Errorf("expected Danger, got %q", s.Result.Status())
	}
	lines := s.Result.FeatureLines()
	if lines[1] != "" {
		t.Errorf("expected empty content line, got %q", lines[1])
	}
	if lines[2] != "d1" {
		t.Errorf("expected d1, got %q", lines[2])
	}

	var out bytes.Buffer
	if err := Render(&out, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out.String(), LoadingText) {
		t.Error("expected no loading indicator")
	}
	if !strings.Contains(out.String(), "not reliable site") {
		t.Error("expected label rendered")
	}
}

// TestSubmitSearchFailure tests a rejected lookup.
func TestSubmitSearchFailure(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	refused := errors.New("connection refused")

	v := New(searcherFunc(func(context.Context, string) (*model.LookupResult, error) {
		return nil, refused
	}), WithLogger(logger))

	v.OnQueryTextChange("http://example.com")
	v.SubmitSearch(context.Background())
	v.Wait()

	s := v.State()
	if s.Loading {
		t.Error("expected loading cleared")
	}
	if s.HasResult() {
		t.Error("expected no result")
	}
	if s.Phase != PhaseFailed {
		t.Errorf("expected failed, got %s", s.Phase)
	}
	if !errors.Is(s.LastErr, refused) {
		t.Errorf("expected LastErr to carry the cause, got %v", s.LastErr)
	}
	if s.Query != "http://example.com" {
		t.Error("expected query to remain editable and unchanged")
	}

	var out bytes.Buffer
	if err := Render(&out, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected nothing rendered, got %q", out.String())
	}

	if !strings.Contains(logs.String(), "lookup failed") || !strings.Contains(logs.String(), "connection refused") {
		t.Errorf("expected failure logged, got %q", logs.String())
	}
}

// TestSubmitSearchLabels tests the label shown for each prediction.
func TestSubmitSearchLabels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		prediction int
		expected   string
	}{
		{"reliable", -1, "reliable site"},
		{"suspicious", 0, "suspicious site"},
		{"unexpected value", 7, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := New(searcherFunc(func(context.Context, string) (*model.LookupResult, error) {
				return &model.LookupResult{URL: "http://example.com", PredictionResult: tt.prediction}, nil
			}))
			v.OnQueryTextChange("http://example.com")
			v.SubmitSearch(context.Background())
			v.Wait()

			if got := v.State().Result.Label(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

// TestLoadingIndicator tests rendering while a search is in flight.
func TestLoadingIndicator(t *testing.T) {
	t.Parallel()

	searcher := newScriptedSearcher()
	v := New(searcher)
	defer v.Close()

	v.OnQueryTextChange("http://example.com")
	v.SubmitSearch(context.Background())
	call := searcher.next(t)

	s := v.State()
	if !s.Loading || s.Phase != PhaseSearching {
		t.Fatalf("expected searching, got %+v", s)
	}

	var out bytes.Buffer
	if err := Render(&out, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), LoadingText) {
		t.Error("expected loading indicator")
	}

	// Typing while a search is in flight does not disturb it.
	v.OnQueryTextChange("http://other.example")
	if !v.State().Loading {
		t.Error("expected loading to survive a query change")
	}

	call.succeed(exampleResult())
	waitForState(t, v, func(s State) bool { return !s.Loading })
}

// TestOverlappingSearchesLastWriteWins tests completion-order application.
func TestOverlappingSearchesLastWriteWins(t *testing.T) {
	t.Parallel()

	searcher := newScriptedSearcher()
	v := New(searcher, WithLogger(discardLogger()))
	defer v.Close()

	v.OnQueryTextChange("http://first.example")
	v.SubmitSearch(context.Background())
	first := searcher.next(t)

	v.OnQueryTextChange("http://second.example")
	v.SubmitSearch(context.Background())
	second := searcher.next(t)

	if first.url != "http://first.example" || second.url != "http://second.example" {
		t.Fatalf("unexpected lookup order: %q, %q", first.url, second.url)
	}
	if first.ctx.Err() != nil {
		t.Fatal("first request must not be cancelled under last-write-wins")
	}

	second.succeed(&model.LookupResult{URL: second.url, PredictionResult: -1})
	waitForState(t, v, func(s State) bool { return s.InFlight == 1 })

	first.succeed(&model.LookupResult{URL: first.url, PredictionResult: 1})
	s := waitForState(t, v, func(s State) bool { return s.InFlight == 0 })

	if s.Result.URL != "http://first.example" {
		t.Errorf("expected the last completion to win, got %q", s.Result.URL)
	}
	if s.Loading {
		t.Error("expected loading cleared")
	}
}

// TestOverlappingSearchesLatestOnly tests that superseded searches are
// cancelled and their completions dropped.
func TestOverlappingSearchesLatestOnly(t *testing.T) {
	t.Parallel()

	searcher := newScriptedSearcher()
	v := New(searcher, WithStalePolicy(LatestOnly), WithLogger(discardLogger()))
	defer v.Close()

	if v.Policy() != LatestOnly {
		t.Fatalf("expected latest-only, got %s", v.Policy())
	}

	v.OnQueryTextChange("http://first.example")
	v.SubmitSearch(context.Background())
	first := searcher.next(t)

	v.OnQueryTextChange("http://second.example")
	v.SubmitSearch(context.Background())
	second := searcher.next(t)

	select {
	case <-first.ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("expected the superseded request to be cancelled")
	}

	s := waitForState(t, v, func(s State) bool { return s.InFlight == 1 })
	if !s.Loading || s.Phase != PhaseSearching || s.LastErr != nil {
		t.Errorf("expected the stale cancellation to be ignored, got %+v", s)
	}

	second.succeed(&model.LookupResult{URL: second.url, PredictionResult: 0})
	s = waitForState(t, v, func(s State) bool { return s.InFlight == 0 })

	if s.Result == nil || s.Result.URL != "http://second.example" {
		t.Errorf("expected the latest result, got %+v", s.Result)
	}
	if s.Loading || s.Phase != PhaseResolved {
		t.Errorf("expected resolved, got %+v", s)
	}
}

// TestOnChange tests that every transition is reported.
func TestOnChange(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var phases []Phase

	v := New(searcherFunc(func(context.Context, string) (*model.LookupResult, error) {
		return exampleResult(), nil
	}), WithOnChange(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		phases = append(phases, s.Phase)
	}))

	v.OnQueryTextChange("http://example.com")
	v.SubmitSearch(context.Background())
	v.Wait()

	mu.Lock()
	defer mu.Unlock()
	expected := []Phase{PhaseIdle, PhaseSearching, PhaseResolved}
	if len(phases) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, phases)
	}
	for i := range expected {
		if phases[i] != expected[i] {
			t.Errorf("transition %d: expected %s, got %s", i, expected[i], phases[i])
		}
	}
}

// TestClose tests that Close cancels outstanding searches.
func TestClose(t *testing.T) {
	t.Parallel()

	searcher := newScriptedSearcher()
	v := New(searcher, WithLogger(discardLogger()))

	v.OnQueryTextChange("http://example.com")
	v.SubmitSearch(context.Background())
	call := searcher.next(t)

	v.Close()

	if call.ctx.Err() == nil {
		t.Error("expected request context cancelled")
	}
	s := v.State()
	if s.Loading || s.Phase != PhaseFailed {
		t.Errorf("expected failed after close, got %+v", s)
	}
}

// TestClassifyLabel tests the label mapping over a range of codes.
func TestClassifyLabel(t *testing.T) {
	t.Parallel()

	known := map[int]string{1: "not reliable site", 0: "suspicious site", -1: "reliable site"}
	for code := -100; code <= 100; code++ {
		expected, ok := known[code]
		if !ok {
			expected = "unknown"
		}
		if got := ClassifyLabel(code); got != expected {
			t.Errorf("ClassifyLabel(%d) = %q, expected %q", code, got, expected)
		}
	}
}
