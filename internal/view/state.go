package view

import "github.com/nao1215/catchphish/internal/model"

// Phase is the position of the view in the search lifecycle.
type Phase int

const (
	// PhaseIdle means no search has been issued yet.
	PhaseIdle Phase = iota

	// PhaseSearching means at least one search is in flight.
	PhaseSearching

	// PhaseResolved means the last applied search succeeded.
	PhaseResolved

	// PhaseFailed means the last applied search failed.
	PhaseFailed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSearching:
		return "searching"
	case PhaseResolved:
		return "resolved"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StalePolicy decides how responses of superseded searches are treated.
type StalePolicy int

const (
	// LastWriteWins applies every completion in completion order, whichever
	// search it belongs to. Any completion clears Loading.
	LastWriteWins StalePolicy = iota

	// LatestOnly applies only the completion of the most recently issued
	// search. Older completions are dropped.
	LatestOnly
)

// String returns the policy name.
func (p StalePolicy) String() string {
	switch p {
	case LastWriteWins:
		return "last-write-wins"
	case LatestOnly:
		return "latest-only"
	default:
		return "unknown"
	}
}

// State is the complete interaction state of the view.
type State struct {
	// Query is the current text of the search box.
	Query string

	// Loading is true while a search whose completion will be applied is outstanding.
	Loading bool

	// Result is the last applied successful lookup, or nil.
	Result *model.LookupResult

	// Phase is the lifecycle position.
	Phase Phase

	// Generation is the number of the most recently issued search.
	Generation uint64

	// InFlight counts issued searches that have not completed.
	InFlight int

	// LastErr is the cause of the last applied failure. It is never rendered.
	LastErr error
}

// HasResult reports whether a result should be displayed.
func (s State) HasResult() bool {
	return s.Result != nil
}
