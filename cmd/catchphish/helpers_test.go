package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/catchphish/internal/lookup"
)

const phishingBody = `{
	"url": "http://paypa1.example/login",
	"prediction_result": 1,
	"prediction_prob": 0.97,
	"ip_address": "203.0.113.7",
	"country": "NL",
	"region": "North Holland",
	"isp_name": "Example Hosting",
	"is_vpn": true,
	"url_based_feature_list": ["look-alike domain"],
	"content_based_feature_list": ["password form"],
	"domain_based_feature_list": ["registered 3 days ago"]
}`

// newLookupServer starts a service that answers every lookup with body,
// except URLs listed in fail, which get a 500.
func newLookupServer(t *testing.T, body string, fail ...string) *httptest.Server {
	t.Helper()

	failing := make(map[string]bool, len(fail))
	for _, f := range fail {
		failing[f] = true
	}

	mux := http.NewServeMux()
	mux.HandleFunc(lookup.DetailedPath, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			URL string `json:"url"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if failing[req.URL] {
			http.Error(w, "classifier error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// emptyConfigFile writes an empty configuration file so tests never pick
// up a .catchphish from the home directory.
func emptyConfigFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catchphish.yaml")
	if err := os.WriteFile(path, []byte("defaults: {}\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// executeRoot runs the root command with args and returns stdout and stderr.
func executeRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(bytes.NewReader(nil))

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// discardLogger returns a logger that drops everything.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
