package view

import (
	"fmt"
	"io"

	"github.com/nao1215/catchphish/internal/report"
)

// LoadingText is shown while a search is in flight.
const LoadingText = "Loading..."

// Render writes the observable output of s: the loading indicator while
// Loading, then the classification and details panel when a result is
// present. A failed search renders nothing beyond the loading indicator
// of any other outstanding search.
func Render(w io.Writer, s State) error {
	if s.Loading {
		if _, err := fmt.Fprintln(w, LoadingText); err != nil {
			return err
		}
	}
	if s.Result == nil {
		return nil
	}
	_, err := report.NewSimpleWriter(w).Write(s.Result)
	return err
}
