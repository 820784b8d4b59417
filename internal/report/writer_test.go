package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/catchphish/internal/model"
)

// createTestResult returns the result of the documented example lookup.
func createTestResult() *model.LookupResult {
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

// TestSimpleWriter tests the human-readable writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes label and details", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
		}

		output := buf.String()
		for _, want := range []string{
			"CATCHPHISH RESULT",
			"URL:    http://example.com",
			"Result: not reliable site",
			"[Danger] IP Score",
			"1.2.3.4",
			"ISP Co",
			"0.92",
			"VPN Usage:",
			"REASON & SUMMARY",
			"f1, f2",
			"d1",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
		if strings.Contains(output, model.NotAvailable) {
			t.Error("empty feature list must not render the fallback")
		}
		if strings.Contains(output, "Host:") {
			t.Error("ASCII host must not produce a host line without verbose")
		}
	})

	t.Run("absent feature list renders fallback", func(t *testing.T) {
		t.Parallel()

		result := createTestResult()
		result.ContentBasedFeatures = nil

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), model.NotAvailable) {
			t.Errorf("expected N/A content line\n%s", buf.String())
		}
	})

	t.Run("safe status without vpn", func(t *testing.T) {
		t.Parallel()

		result := createTestResult()
		result.IsVPN = false
		result.PredictionResult = -1

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "[Safe] IP Score") {
			t.Error("expected Safe status")
		}
		if !strings.Contains(output, "Result: reliable site") {
			t.Error("expected reliable site label")
		}
	})

	t.Run("internationalized host shows punycode", func(t *testing.T) {
		t.Parallel()

		result := createTestResult()
		result.URL = "http://bücher.de/login"

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "punycode: xn--bcher-kva.de") {
			t.Errorf("expected punycode hint\n%s", buf.String())
		}
	})

	t.Run("verbose shows ascii host", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Host:   example.com") {
			t.Errorf("expected host line\n%s", buf.String())
		}
	})
}

// TestMarkdownWriter tests the Markdown writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# CatchPhish Result",
			"## About",
			"## Reason & Summary",
			"not reliable site",
			"[!CAUTION]",
			"**Domain based**: d1",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
	})

	tests := []struct {
		name       string
		prediction int
		alert      string
	}{
		{"suspicious is a warning", 0, "[!WARNING]"},
		{"reliable is a tip", -1, "[!TIP]"},
		{"unknown is a note", 7, "[!NOTE]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := createTestResult()
			result.PredictionResult = tt.prediction

			var buf bytes.Buffer
			if _, err := NewMarkdownWriter(&buf).Write(result); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(buf.String(), tt.alert) {
				t.Errorf("expected %s alert\n%s", tt.alert, buf.String())
			}
		})
	}
}

// TestJSONWriter tests the JSON writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("outputs valid JSON with derived fields", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded["label"] != model.LabelNotReliable {
			t.Errorf("expected label %q, got %v", model.LabelNotReliable, decoded["label"])
		}
		if decoded["status"] != model.StatusDanger {
			t.Errorf("expected status Danger, got %v", decoded["status"])
		}
		if decoded["url"] != "http://example.com" {
			t.Errorf("expected flattened url, got %v", decoded["url"])
		}
		if _, ok := decoded["host"]; ok {
			t.Error("expected no host for ASCII URL")
		}
	})

	t.Run("compact output by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("expected single-line output")
		}
	})

	t.Run("pretty print with indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"url\"") {
			t.Error("expected indented output")
		}
	})

	t.Run("output decodes back to the result", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result, err := model.DecodeLookupResult(buf.Bytes())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.ContentBasedFeatures == nil {
			t.Error("expected empty content list to stay non-nil")
		}
	})

	t.Run("internationalized host included", func(t *testing.T) {
		t.Parallel()

		result := createTestResult()
		result.URL = "https://bücher.de"

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded JSONResult
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if decoded.Host == nil || decoded.Host.ASCII != "xn--bcher-kva.de" {
			t.Errorf("expected punycode host, got %+v", decoded.Host)
		}
	})
}

// TestFullJSONWriter tests the metadata wrapper.
func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewFullJSONWriter(&buf, "v1.2.3")
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	if _, err := w.Write(createTestResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded struct {
		Version   string         `json:"version"`
		CheckedAt time.Time      `json:"checked_at"`
		Result    map[string]any `json:"result"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.Version != "v1.2.3" {
		t.Errorf("expected version v1.2.3, got %q", decoded.Version)
	}
	if !decoded.CheckedAt.Equal(fixed) {
		t.Errorf("expected %v, got %v", fixed, decoded.CheckedAt)
	}
	if decoded.Result["label"] != model.LabelNotReliable {
		t.Errorf("expected label in result, got %v", decoded.Result["label"])
	}
}

// failingWriter fails every write.
type failingWriter struct{}

func (failingWriter) Write(*model.LookupResult) (int, error) {
	return 0, errors.New("write failed")
}

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var text, js bytes.Buffer
		m := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))

		n, err := m.Write(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != text.Len()+js.Len() {
			t.Errorf("expected %d bytes, got %d", text.Len()+js.Len(), n)
		}
		if text.Len() == 0 || js.Len() == 0 {
			t.Error("expected both writers to receive output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var js bytes.Buffer
		m := NewMultiWriter(failingWriter{}, NewJSONWriter(&js))

		if _, err := m.Write(createTestResult()); err == nil {
			t.Error("expected error")
		}
		if js.Len() != 0 {
			t.Error("expected later writers to be skipped")
		}
	})
}
