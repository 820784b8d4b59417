package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/catchphish/internal/config"
	"github.com/nao1215/catchphish/internal/database"
	"github.com/nao1215/catchphish/internal/model"
	"github.com/nao1215/catchphish/internal/report"
	"github.com/spf13/cobra"
)

// errLookupNotFound is returned when a requested history entry does not exist.
var errLookupNotFound = errors.New("lookup not found in history")

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "Show saved lookup results",
		Long: `History shows lookups saved by 'catchphish check'.

Examples:
  # List every URL that has been checked
  catchphish history --list-urls

  # List the saved lookups of a URL, newest first
  catchphish history http://paypa1.example/login

  # Show the latest saved result of a URL
  catchphish history --latest http://paypa1.example/login

  # Show a saved result by ID as JSON
  catchphish history --id 5 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-urls", "L", false,
		"List every URL in the history database")
	cmd.Flags().Int64P("id", "i", 0,
		"Show the saved result with this ID")
	cmd.Flags().Bool("latest", false,
		"Show the latest saved result of the URL")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// historyOptions holds the parsed history flags.
type historyOptions struct {
	listURLs bool
	id       int64
	latest   bool
	json     bool
	dbDir    string
	url      string
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	var opts historyOptions
	var err error

	if opts.listURLs, err = cmd.Flags().GetBool("list-urls"); err != nil {
		return err
	}
	if opts.id, err = cmd.Flags().GetInt64("id"); err != nil {
		return err
	}
	if opts.latest, err = cmd.Flags().GetBool("latest"); err != nil {
		return err
	}
	if opts.json, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if opts.dbDir, err = cmd.Flags().GetString("db-dir"); err != nil {
		return err
	}
	if len(args) > 0 {
		opts.url = args[0]
	}

	// Validate before opening the database.
	if !opts.listURLs && opts.id == 0 && opts.url == "" {
		return errors.New("a URL is required (use --list-urls to see checked URLs)")
	}

	db, err := database.Open(opts.dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return runHistory(cmd.Context(), db, opts, cmd.OutOrStdout())
}

// runHistory dispatches to the requested history view.
func runHistory(ctx context.Context, db *database.LookupDB, opts historyOptions, w io.Writer) error {
	switch {
	case opts.listURLs:
		return listCheckedURLs(ctx, db, opts.json, w)
	case opts.id != 0:
		result, err := db.GetLookupByID(ctx, opts.id)
		if err != nil {
			return fmt.Errorf("failed to get lookup: %w", err)
		}
		if result == nil {
			return fmt.Errorf("%w: id %d", errLookupNotFound, opts.id)
		}
		return writeStoredResult(result, opts.json, w)
	case opts.latest:
		result, err := db.GetLatestLookup(ctx, opts.url)
		if err != nil {
			return fmt.Errorf("failed to get lookup: %w", err)
		}
		if result == nil {
			return fmt.Errorf("%w: %s", errLookupNotFound, opts.url)
		}
		return writeStoredResult(result, opts.json, w)
	default:
		return listLookupHistory(ctx, db, opts.url, opts.json, w)
	}
}

// writeStoredResult prints a saved result in the requested format.
func writeStoredResult(result *model.LookupResult, jsonOutput bool, w io.Writer) error {
	var writer report.Writer = report.NewSimpleWriter(w)
	if jsonOutput {
		writer = report.NewJSONWriter(w, report.WithPrettyPrint())
	}
	_, err := writer.Write(result)
	return err
}

// listCheckedURLs prints every URL that has a saved lookup.
func listCheckedURLs(ctx context.Context, db *database.LookupDB, jsonOutput bool, w io.Writer) error {
	urls, err := db.ListCheckedURLs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list URLs: %w", err)
	}

	if jsonOutput {
		if urls == nil {
			urls = []string{}
		}
		return writeJSON(w, urls)
	}

	if len(urls) == 0 {
		fmt.Fprintln(w, "No checked URLs found in the database.")
		fmt.Fprintln(w, "\nUse 'catchphish check <url>' to check a URL.")
		return nil
	}

	fmt.Fprintf(w, "Checked URLs (%d):\n\n", len(urls))
	for _, u := range urls {
		fmt.Fprintf(w, "  • %s\n", u)
	}
	fmt.Fprintln(w, "\nUse 'catchphish history <url>' to see the lookups of a URL.")
	return nil
}

// historyEntry is the JSON form of a LookupRecord.
type historyEntry struct {
	ID               int64   `json:"id"`
	URL              string  `json:"url"`
	PredictionResult int     `json:"prediction_result"`
	PredictionProb   float64 `json:"prediction_prob"`
	Label            string  `json:"label"`
	Timestamp        string  `json:"timestamp"`
}

// listLookupHistory prints the saved lookups of rawURL, newest first.
func listLookupHistory(ctx context.Context, db *database.LookupDB, rawURL string, jsonOutput bool, w io.Writer) error {
	records, err := db.GetLookupHistory(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("failed to get lookup history: %w", err)
	}

	if jsonOutput {
		entries := make([]historyEntry, 0, len(records))
		for _, r := range records {
			entries = append(entries, historyEntry{
				ID:               r.ID,
				URL:              r.URL,
				PredictionResult: r.PredictionResult,
				PredictionProb:   r.PredictionProb,
				Label:            r.Label,
				Timestamp:        r.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
			})
		}
		return writeJSON(w, entries)
	}

	if len(records) == 0 {
		fmt.Fprintf(w, "No lookup history found for %s\n", rawURL)
		fmt.Fprintln(w, "\nUse 'catchphish check' to check this URL.")
		return nil
	}

	fmt.Fprintf(w, "Lookup history for %s (%d lookups):\n\n", rawURL, len(records))
	fmt.Fprintf(w, "  %-6s  %-20s  %-18s  %s\n", "ID", "Date", "Result", "Probability")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 60))

	for _, r := range records {
		fmt.Fprintf(w, "  %-6d  %-20s  %-18s  %s\n",
			r.ID,
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Label,
			strconv.FormatFloat(r.PredictionProb, 'f', -1, 64),
		)
	}

	fmt.Fprintln(w, "\nUse 'catchphish history --id <id>' to show a saved result.")
	return nil
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
