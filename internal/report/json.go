package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/catchphish/internal/model"
)

// JSONWriter outputs results in JSON format.
// This format is designed for tool integration and programmatic processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (one object per line).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONResult is the lookup result together with the fields derived from it.
// The embedded result's fields are flattened into the object.
type JSONResult struct {
	*model.LookupResult

	// Label is the classification label.
	Label string `json:"label"`

	// Status is the IP score status box text.
	Status string `json:"status"`

	// Host is present only for internationalized hosts.
	Host *model.HostInfo `json:"host,omitempty"`
}

// NewJSONResult derives a JSONResult from result.
func NewJSONResult(result *model.LookupResult) *JSONResult {
	out := &JSONResult{
		LookupResult: result,
		Label:        result.Label(),
		Status:       result.Status(),
	}
	if host, ok := hostOf(result); ok && host.IsInternationalized() {
		out.Host = &host
	}
	return out
}

// Write outputs the result in JSON format.
func (w *JSONWriter) Write(result *model.LookupResult) (int, error) {
	return w.writeJSON(NewJSONResult(result))
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONReport wraps a result with the tool version and the check time.
type JSONReport struct {
	// Version is the catchphish version that produced this report.
	Version string `json:"version"`

	// CheckedAt is when the result was written.
	CheckedAt time.Time `json:"checked_at"`

	// Result is the lookup result.
	Result *JSONResult `json:"result"`
}

// FullJSONWriter outputs results with a metadata wrapper.
type FullJSONWriter struct {
	*JSONWriter

	// version is the catchphish version string.
	version string

	// now returns the current time.
	now func() time.Time
}

// NewFullJSONWriter creates a writer for results with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
		now:        time.Now,
	}
}

// Write outputs the result wrapped with metadata.
func (w *FullJSONWriter) Write(result *model.LookupResult) (int, error) {
	return w.writeJSON(&JSONReport{
		Version:   w.version,
		CheckedAt: w.now().UTC(),
		Result:    NewJSONResult(result),
	})
}
