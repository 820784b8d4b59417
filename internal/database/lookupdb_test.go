package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/catchphish/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *LookupDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func testResult(url string, prediction int) *model.LookupResult {
	return &model.LookupResult{
		URL:                  url,
		PredictionResult:     prediction,
		PredictionProb:       0.92,
		IPAddress:            "1.2.3.4",
		Country:              "US",
		Region:               "CA",
		ISPName:              "ISP Co",
		IsVPN:                true,
		URLBasedFeatures:     []string{"f1", "f2"},
		ContentBasedFeatures: []string{},
	}
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		dbPath := filepath.Join(dbDir, FileName)
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != dbPath {
			t.Errorf("expected path %q, got %q", dbPath, db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		_ = db.Close()

		db, err = Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		_ = db.Close()
	})
}

// TestSaveLookup tests storing and retrieving lookups.
func TestSaveLookup(t *testing.T) {
	t.Parallel()

	t.Run("round trips the result", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		id, err := db.SaveLookup(ctx, "http://example.com", testResult("http://example.com", 1))
		if err != nil {
			t.Fatalf("failed to save lookup: %v", err)
		}
		if id <= 0 {
			t.Errorf("expected positive id, got %d", id)
		}

		got, err := db.GetLatestLookup(ctx, "http://example.com")
		if err != nil {
			t.Fatalf("failed to get lookup: %v", err)
		}
		if got == nil {
			t.Fatal("expected a stored lookup")
		}
		if got.Label() != model.LabelNotReliable {
			t.Errorf("expected %q, got %q", model.LabelNotReliable, got.Label())
		}
		if got.ContentBasedFeatures == nil {
			t.Error("expected empty feature list to stay non-nil")
		}
		if got.DomainBasedFeatures != nil {
			t.Error("expected absent feature list to stay nil")
		}

		byID, err := db.GetLookupByID(ctx, id)
		if err != nil {
			t.Fatalf("failed to get lookup by id: %v", err)
		}
		if byID == nil || byID.ISPName != "ISP Co" {
			t.Errorf("unexpected lookup by id: %+v", byID)
		}
	})

	t.Run("nil result is rejected", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		if _, err := db.SaveLookup(context.Background(), "http://example.com", nil); err == nil {
			t.Error("expected error for nil result")
		}
	})

	t.Run("unknown url returns nil", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		got, err := db.GetLatestLookup(context.Background(), "http://never.example")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Error("expected nil for unknown url")
		}

		byID, err := db.GetLookupByID(context.Background(), 999)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if byID != nil {
			t.Error("expected nil for unknown id")
		}
	})

	t.Run("latest lookup wins", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		if _, err := db.SaveLookup(ctx, "http://example.com", testResult("http://example.com", 0)); err != nil {
			t.Fatalf("failed to save lookup: %v", err)
		}
		if _, err := db.SaveLookup(ctx, "http://example.com", testResult("http://example.com", -1)); err != nil {
			t.Fatalf("failed to save lookup: %v", err)
		}

		got, err := db.GetLatestLookup(ctx, "http://example.com")
		if err != nil {
			t.Fatalf("failed to get lookup: %v", err)
		}
		if got.PredictionResult != -1 {
			t.Errorf("expected latest prediction -1, got %d", got.PredictionResult)
		}
	})
}

// TestGetLookupHistory tests history listing.
func TestGetLookupHistory(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	for _, prediction := range []int{1, 0, -1} {
		if _, err := db.SaveLookup(ctx, "http://example.com", testResult("http://example.com", prediction)); err != nil {
			t.Fatalf("failed to save lookup: %v", err)
		}
	}
	if _, err := db.SaveLookup(ctx, "http://other.example", testResult("http://other.example", 1)); err != nil {
		t.Fatalf("failed to save lookup: %v", err)
	}

	history, err := db.GetLookupHistory(ctx, "http://example.com")
	if err != nil {
		t.Fatalf("failed to get history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 records, got %d", len(history))
	}

	if history[0].PredictionResult != -1 || history[0].Label != model.LabelReliable {
		t.Errorf("expected newest first, got %+v", history[0])
	}
	if history[2].PredictionResult != 1 {
		t.Errorf("expected oldest last, got %+v", history[2])
	}
	for _, rec := range history {
		if rec.URL != "http://example.com" {
			t.Errorf("unexpected url %q in history", rec.URL)
		}
		if rec.Timestamp.IsZero() {
			t.Error("expected timestamp to be parsed")
		}
		if rec.PredictionProb != 0.92 {
			t.Errorf("expected probability 0.92, got %v", rec.PredictionProb)
		}
	}

	empty, err := db.GetLookupHistory(ctx, "http://never.example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty history, got %d", len(empty))
	}
}

// TestListCheckedURLs tests listing distinct URLs.
func TestListCheckedURLs(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	for _, u := range []string{"http://b.example", "http://a.example", "http://b.example"} {
		if _, err := db.SaveLookup(ctx, u, testResult(u, 0)); err != nil {
			t.Fatalf("failed to save lookup: %v", err)
		}
	}

	urls, err := db.ListCheckedURLs(ctx)
	if err != nil {
		t.Fatalf("failed to list urls: %v", err)
	}
	if len(urls) != 2 || urls[0] != "http://a.example" || urls[1] != "http://b.example" {
		t.Errorf("expected sorted distinct urls, got %v", urls)
	}
}

// TestHashURL tests the URL digest.
func TestHashURL(t *testing.T) {
	t.Parallel()

	h := HashURL("http://example.com")
	if len(h) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(h))
	}
	if h != HashURL("http://example.com") {
		t.Error("expected deterministic hash")
	}
	if h == HashURL("http://example.com/") {
		t.Error("expected different URLs to hash differently")
	}
}

// TestParseTimestamp tests timestamp parsing across formats.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	expected := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	tests := []struct {
		name  string
		input string
	}{
		{"sqlite default", "2026-03-04 05:06:07"},
		{"iso with Z", "2026-03-04T05:06:07Z"},
		{"iso without zone", "2026-03-04T05:06:07"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parseTimestamp(tt.input); !got.Equal(expected) {
				t.Errorf("parseTimestamp(%q) = %v, expected %v", tt.input, got, expected)
			}
		})
	}

	t.Run("garbage returns zero time", func(t *testing.T) {
		t.Parallel()
		if got := parseTimestamp("not a time"); !got.IsZero() {
			t.Errorf("expected zero time, got %v", got)
		}
	})
}
