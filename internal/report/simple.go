package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/catchphish/internal/model"
)

// ruleWidth is the width of the separator lines.
const ruleWidth = 70

// SimpleWriter outputs human-readable text for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose always shows the host line, not only for internationalized hosts.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the result in human-readable format.
func (w *SimpleWriter) Write(result *model.LookupResult) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, result)
	w.writeAbout(&sb, result)
	w.writeReasons(&sb, result)

	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the URL and its classification label.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, result *model.LookupResult) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                        CATCHPHISH RESULT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("URL:    %s\n", result.URL))
	sb.WriteString(fmt.Sprintf("Result: %s\n", result.Label()))

	if host, ok := hostOf(result); ok {
		switch {
		case host.IsInternationalized():
			sb.WriteString(fmt.Sprintf("Host:   %s (punycode: %s)\n", host.Unicode, host.ASCII))
		case w.verbose:
			sb.WriteString(fmt.Sprintf("Host:   %s\n", host.ASCII))
		}
	}
	sb.WriteString("\n")
}

// writeAbout writes the IP score status box and the enrichment fields.
func (w *SimpleWriter) writeAbout(sb *strings.Builder, result *model.LookupResult) {
	writeSection(sb, "ABOUT")

	sb.WriteString(fmt.Sprintf("  [%s] IP Score\n\n", result.Status()))
	for _, row := range aboutRows(result) {
		sb.WriteString(fmt.Sprintf("  %-22s %s\n", row[0]+":", row[1]))
	}
	sb.WriteString("\n")
}

// writeReasons writes the three feature lines.
func (w *SimpleWriter) writeReasons(sb *strings.Builder, result *model.LookupResult) {
	writeSection(sb, "REASON & SUMMARY")

	lines := result.FeatureLines()
	for i, name := range featureNames {
		sb.WriteString(fmt.Sprintf("  %-22s %s\n", name+":", lines[i]))
	}
	sb.WriteString("\n")
}

// writeSection writes a titled section separator.
func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

// featureNames are the display names of the feature lines, in order.
var featureNames = []string{"URL based", "Content based", "Domain based"}

// aboutRows returns the details panel fields in display order.
func aboutRows(result *model.LookupResult) [][2]string {
	return [][2]string{
		{"IP Address", result.IPAddress},
		{"Country", result.Country},
		{"Region", result.Region},
		{"Phishing Prediction", strconv.Itoa(result.PredictionResult)},
		{"Phishing Probability", formatProb(result.PredictionProb)},
		{"ISP Name", result.ISPName},
		{"VPN Usage", result.VPNUsage()},
	}
}

// formatProb formats a probability with the shortest exact representation.
func formatProb(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
