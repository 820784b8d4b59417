package view

import "github.com/nao1215/catchphish/internal/model"

// Event is an input to Reduce.
type Event interface {
	event()
}

// QueryChanged replaces the search box text.
type QueryChanged struct {
	Text string
}

// SearchStarted marks a search as issued.
type SearchStarted struct {
	Generation uint64
}

// SearchSucceeded delivers the result of a search.
type SearchSucceeded struct {
	Generation uint64
	Result     *model.LookupResult
}

// SearchFailed delivers the failure of a search.
type SearchFailed struct {
	Generation uint64
	Err        error
}

func (QueryChanged) event()    {}
func (SearchStarted) event()   {}
func (SearchSucceeded) event() {}
func (SearchFailed) event()    {}

// Reduce returns the state that follows s after ev under policy.
// It has no side effects.
func Reduce(s State, ev Event, policy StalePolicy) State {
	switch ev := ev.(type) {
	case QueryChanged:
		s.Query = ev.Text

	case SearchStarted:
		s.Generation = ev.Generation
		s.InFlight++
		s.Loading = true
		s.Phase = PhaseSearching

	case SearchSucceeded:
		s = complete(s)
		if stale(s, ev.Generation, policy) {
			return s
		}
		s.Result = ev.Result
		s.LastErr = nil
		s.Loading = false
		s.Phase = PhaseResolved

	case SearchFailed:
		s = complete(s)
		if stale(s, ev.Generation, policy) {
			return s
		}
		s.Result = nil
		s.LastErr = ev.Err
		s.Loading = false
		s.Phase = PhaseFailed
	}

	return s
}

// complete accounts for one finished request.
func complete(s State) State {
	if s.InFlight > 0 {
		s.InFlight--
	}
	return s
}

// stale reports whether a completion of generation gen must be dropped.
func stale(s State, gen uint64, policy StalePolicy) bool {
	return policy == LatestOnly && gen != s.Generation
}
