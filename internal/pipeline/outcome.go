package pipeline

import "github.com/nao1215/catchphish/internal/model"

// Outcome is the result of checking one URL.
type Outcome struct {
	// URL is the URL as submitted.
	URL string

	// Result is the decoded lookup, or nil if the lookup failed.
	Result *model.LookupResult

	// Err is the first step error, or nil.
	Err error

	// SavedID is the history row id, or 0 if the result was not saved.
	SavedID int64

	// PerformedSteps lists the steps that ran, in order.
	PerformedSteps []string

	// Cancelled is true when the context ended before every step ran.
	Cancelled bool
}

// NewOutcome creates an empty Outcome for url.
func NewOutcome(url string) *Outcome {
	return &Outcome{URL: url}
}

// Failed reports whether the URL could not be checked.
func (o *Outcome) Failed() bool {
	return o.Err != nil || o.Result == nil
}
