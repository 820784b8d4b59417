package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/catchphish/internal/model"
	"golang.org/x/crypto/sha3"
)

// FileName is the name of the database file inside the data directory.
const FileName = "catchphish.db"

// LookupDB stores lookup results in SQLite.
type LookupDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures LookupDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a LookupDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*LookupDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ldb := &LookupDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := ldb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return ldb, nil
}

// Path returns the database file path.
func (ldb *LookupDB) Path() string {
	return ldb.dbPath
}

// Close closes the database connection.
func (ldb *LookupDB) Close() error {
	return ldb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (ldb *LookupDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS lookups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		url_hash TEXT NOT NULL,
		prediction_result INTEGER NOT NULL,
		prediction_prob REAL,
		label TEXT NOT NULL,
		result_json TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_lookups_url_hash ON lookups(url_hash);
	CREATE INDEX IF NOT EXISTS idx_lookups_timestamp ON lookups(timestamp);
	`

	_, err := ldb.db.ExecContext(context.Background(), schema)
	return err
}

// HashURL returns the hex SHA3-256 digest used to index a submitted URL.
func HashURL(rawURL string) string {
	sum := sha3.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])
}

// LookupRecord summarizes a stored lookup without its full result.
type LookupRecord struct {
	// ID is the unique identifier of the lookup in the database.
	ID int64

	// URL is the URL as it was submitted.
	URL string

	// PredictionResult is the raw classifier output.
	PredictionResult int

	// PredictionProb is the classifier's phishing probability.
	PredictionProb float64

	// Label is the classification label at the time of the check.
	Label string

	// Timestamp is when the lookup was saved.
	Timestamp time.Time
}

// SaveLookup stores result as the answer for the submitted URL and returns
// the new row id.
func (ldb *LookupDB) SaveLookup(ctx context.Context, submitted string, result *model.LookupResult) (int64, error) {
	if result == nil {
		return 0, errors.New("cannot save nil lookup result")
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize lookup result: %w", err)
	}

	query := `
	INSERT INTO lookups (url, url_hash, prediction_result, prediction_prob, label, result_json)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	res, err := ldb.db.ExecContext(ctx, query,
		submitted,
		HashURL(submitted),
		result.PredictionResult,
		result.PredictionProb,
		result.Label(),
		string(resultJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save lookup: %w", err)
	}

	return res.LastInsertId()
}

// GetLatestLookup returns the most recent result for the submitted URL, or
// nil if the URL was never saved.
func (ldb *LookupDB) GetLatestLookup(ctx context.Context, submitted string) (*model.LookupResult, error) {
	query := `
	SELECT result_json FROM lookups
	WHERE url_hash = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	return ldb.queryResult(ctx, query, HashURL(submitted))
}

// GetLookupByID returns the result stored under id, or nil if there is none.
func (ldb *LookupDB) GetLookupByID(ctx context.Context, id int64) (*model.LookupResult, error) {
	query := `
	SELECT result_json FROM lookups
	WHERE id = ?
	`

	return ldb.queryResult(ctx, query, id)
}

// queryResult runs a single-row query selecting result_json.
func (ldb *LookupDB) queryResult(ctx context.Context, query string, arg any) (*model.LookupResult, error) {
	var resultJSON string
	err := ldb.db.QueryRowContext(ctx, query, arg).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lookup: %w", err)
	}

	result, err := model.DecodeLookupResult([]byte(resultJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored lookup: %w", err)
	}

	return result, nil
}

// GetLookupHistory returns every saved lookup of the submitted URL, newest first.
func (ldb *LookupDB) GetLookupHistory(ctx context.Context, submitted string) ([]LookupRecord, error) {
	query := `
	SELECT id, url, prediction_result, prediction_prob, label, timestamp
	FROM lookups
	WHERE url_hash = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := ldb.db.QueryContext(ctx, query, HashURL(submitted))
	if err != nil {
		return nil, fmt.Errorf("failed to get lookup history: %w", err)
	}
	defer rows.Close()

	var records []LookupRecord
	for rows.Next() {
		var rec LookupRecord
		var prob sql.NullFloat64
		var timestamp string

		if err := rows.Scan(&rec.ID, &rec.URL, &rec.PredictionResult, &prob, &rec.Label, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan lookup: %w", err)
		}
		rec.PredictionProb = prob.Float64
		rec.Timestamp = parseTimestamp(timestamp)

		records = append(records, rec)
	}

	return records, rows.Err()
}

// ListCheckedURLs returns every distinct submitted URL, sorted.
func (ldb *LookupDB) ListCheckedURLs(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT url FROM lookups
	ORDER BY url
	`

	rows, err := ldb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan url: %w", err)
		}
		urls = append(urls, u)
	}

	return urls, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp parses s with the first matching format, or returns the
// zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
