package report

import (
	"fmt"
	"io"

	"github.com/nao1215/catchphish/internal/model"
	"github.com/nao1215/markdown"
)

// MarkdownWriter outputs results in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the result in Markdown format.
func (w *MarkdownWriter) Write(result *model.LookupResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeAlert(md, result)
	w.writeAbout(md, result)
	w.writeReasons(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and the URL table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.LookupResult) {
	md.H1("CatchPhish Result")
	md.PlainText("")

	rows := [][]string{
		{"URL", "`" + result.URL + "`"},
		{"Result", "**" + result.Label() + "**"},
	}
	if host, ok := hostOf(result); ok && host.IsInternationalized() {
		rows = append(rows, []string{"Host", host.Unicode + " (punycode `" + host.ASCII + "`)"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeAlert writes an alert matching the classification.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, result *model.LookupResult) {
	switch result.Prediction() {
	case model.PredictionNotReliable:
		md.Cautionf("%s is classified as a %s.", result.URL, result.Label())
	case model.PredictionSuspicious:
		md.Warningf("%s is classified as a %s.", result.URL, result.Label())
	case model.PredictionReliable:
		md.Tip("No phishing indicators strong enough to flag this site.")
	default:
		md.Note(fmt.Sprintf("The service returned an unexpected prediction (%d).", result.PredictionResult))
	}
	md.PlainText("")
}

// writeAbout writes the IP score and enrichment table.
func (w *MarkdownWriter) writeAbout(md *markdown.Markdown, result *model.LookupResult) {
	md.H2("About")
	md.PlainText("")

	rows := [][]string{{"IP Score", result.Status()}}
	for _, row := range aboutRows(result) {
		rows = append(rows, []string{row[0], orDash(row[1])})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Field", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeReasons writes the feature lines as a bullet list.
func (w *MarkdownWriter) writeReasons(md *markdown.Markdown, result *model.LookupResult) {
	md.H2("Reason & Summary")
	md.PlainText("")

	lines := result.FeatureLines()
	items := make([]string, len(featureNames))
	for i, name := range featureNames {
		items[i] = "**" + name + "**: " + lines[i]
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by [CatchPhish](https://github.com/nao1215/catchphish)*")
}

// orDash returns "-" for an empty table cell.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
