package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/catchphish/internal/config"
	"github.com/nao1215/catchphish/internal/database"
	"github.com/nao1215/catchphish/internal/lookup"
	"github.com/nao1215/catchphish/internal/pipeline"
	"github.com/nao1215/catchphish/internal/report"
	"github.com/spf13/cobra"
)

// errAllFailed is returned when no URL could be checked.
var errAllFailed = errors.New("all lookups failed")

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [url...]",
		Short: "Check one or more URLs and print a report",
		Long: `Check sends each URL to the classification service and prints a report
with the verdict, the hosting details and the features behind it.

URLs are sent exactly as given. Successful lookups are saved to the history
database (~/.local/share/catchphish on Linux) unless --no-save is set.

Examples:
  # Check a single URL
  catchphish check http://paypa1.example/login

  # Check every URL in a file (one per line, # starts a comment)
  catchphish check --list urls.txt

  # Write a Markdown report
  catchphish check --markdown -o report.md http://paypa1.example/login

  # Use a remote service through Tor
  catchphish check --tor -e https://phish.example http://paypa1.example/login`,
		Args: cobra.ArbitraryArgs,
		RunE: runCheckCmd,
	}

	addConnectionFlags(cmd)

	cmd.Flags().StringP("list", "l", "",
		"File with URLs to check, one per line")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent lookups")
	cmd.Flags().Bool("tor", false,
		"Start an embedded Tor daemon and send lookups through it")
	cmd.Flags().DurationP("tor-timeout", "T", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")
	cmd.Flags().Bool("no-save", false,
		"Do not save results to the history database")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCheckConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.ValidateTargets(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	return runCheck(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// buildCheckConfig creates a Config from the config file, environment and flags.
func buildCheckConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := buildConnectionConfig(cmd)
	if err != nil {
		return nil, err
	}

	if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.UseTor, err = cmd.Flags().GetBool("tor"); err != nil {
		return nil, err
	}
	if cfg.TorStartupTimeout, err = cmd.Flags().GetDuration("tor-timeout"); err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}

	listFile, err := cmd.Flags().GetString("list")
	if err != nil {
		return nil, err
	}

	cfg.Targets = append(cfg.Targets, args...)
	if listFile != "" {
		listed, err := readTargetList(listFile)
		if err != nil {
			return nil, err
		}
		cfg.Targets = append(cfg.Targets, listed...)
	}

	return cfg, nil
}

// readTargetList reads URLs from path, one per line. Blank lines and lines
// starting with # are skipped.
func readTargetList(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided list path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open URL list: %w", err)
	}
	defer f.Close()

	var targets []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL list: %w", err)
	}
	return targets, nil
}

// runCheck checks every target and writes the reports.
func runCheck(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout, stderr io.Writer) error {
	logger.Info("starting check",
		"targets", len(cfg.Targets),
		"endpoint", cfg.Endpoint,
		"batchSize", cfg.BatchSize,
		"useTor", cfg.UseTor,
		"saveToDB", cfg.SaveToDB,
	)

	var extra []lookup.Option
	if cfg.UseTor {
		embeddedTor, opt, err := startEmbeddedTor(ctx, cfg, logger, stderr)
		if err != nil {
			return err
		}
		defer func() {
			logger.Info("stopping embedded Tor daemon...")
			if err := embeddedTor.Stop(); err != nil {
				logger.Error("failed to stop embedded Tor", "error", err)
			}
		}()
		extra = append(extra, opt)
	} else if err := checkProxy(ctx, cfg, logger); err != nil {
		return err
	}

	client, err := newLookupClient(cfg, logger, extra...)
	if err != nil {
		return err
	}

	// A typed nil *LookupDB must not reach DefaultPipeline.
	var store pipeline.Store
	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
		store = db
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline(client, store, pipeline.WithLogger(logger))
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	startTime := time.Now()
	var outcomes []*pipeline.Outcome
	var batchErr error
	if cfg.ReportFile == "" {
		// Reports reach the terminal as each URL completes.
		outcomes, batchErr = streamReports(ctx, bp, cfg, stdout, stderr)
	} else {
		// A report file keeps the input order.
		outcomes, batchErr = bp.ProcessBatch(ctx, cfg.Targets)
		if err := outputReports(cfg, outcomes, stdout); err != nil {
			return err
		}
		for _, o := range outcomes {
			printOutcome(stderr, o)
		}
	}
	logger.Info("check completed", "elapsed", time.Since(startTime).Round(time.Millisecond))

	failed := 0
	for _, o := range outcomes {
		if o.Result == nil {
			failed++
		}
	}

	if batchErr != nil {
		return batchErr
	}
	if failed > 0 && failed == len(outcomes) {
		return fmt.Errorf("%w (%d of %d)", errAllFailed, failed, len(outcomes))
	}
	return nil
}

// streamReports checks every target and writes each report to stdout as soon
// as its lookup completes. The returned outcomes are in input order; targets
// that never started are marked cancelled.
func streamReports(ctx context.Context, bp *pipeline.BatchProcessor, cfg *config.Config, stdout, stderr io.Writer) ([]*pipeline.Outcome, error) {
	writer := newReportWriter(cfg, stdout)
	outcomes := make([]*pipeline.Outcome, len(cfg.Targets))

	var mu sync.Mutex
	var writeErr error
	err := bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(o *pipeline.Outcome, index int) {
		mu.Lock()
		defer mu.Unlock()

		outcomes[index] = o
		if o.Result != nil && writeErr == nil {
			if _, err := writer.Write(o.Result); err != nil {
				writeErr = fmt.Errorf("failed to write report for %s: %w", o.URL, err)
			}
		}
		printOutcome(stderr, o)
	})

	for i, o := range outcomes {
		if o != nil {
			continue
		}
		o = pipeline.NewOutcome(cfg.Targets[i])
		o.Cancelled = true
		o.Err = err
		outcomes[i] = o
		printOutcome(stderr, o)
	}

	if writeErr != nil {
		return outcomes, writeErr
	}
	return outcomes, err
}

// printOutcome reports a failed, cancelled or unsaved lookup on stderr.
func printOutcome(stderr io.Writer, o *pipeline.Outcome) {
	switch {
	case o.Result != nil && o.Err != nil:
		fmt.Fprintf(stderr, "Warning: %s was checked but not saved: %v\n", o.URL, o.Err)
	case o.Result != nil:
	case o.Cancelled:
		fmt.Fprintf(stderr, "Lookup cancelled for %s\n", o.URL)
	default:
		fmt.Fprintf(stderr, "Lookup failed for %s: %v\n", o.URL, o.Err)
	}
}

// newReportWriter returns the writer for the requested format.
func newReportWriter(cfg *config.Config, w io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(w, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(cfg.Verbose))
	}
}

// outputReports writes one report per outcome with a result, in input order.
func outputReports(cfg *config.Config, outcomes []*pipeline.Outcome, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	writer := newReportWriter(cfg, output)
	for _, o := range outcomes {
		if o.Result == nil {
			continue
		}
		if _, err := writer.Write(o.Result); err != nil {
			return fmt.Errorf("failed to write report for %s: %w", o.URL, err)
		}
	}
	return nil
}

// startEmbeddedTor starts an embedded Tor daemon and returns the proxy
// option that routes lookups through it.
func startEmbeddedTor(ctx context.Context, cfg *config.Config, logger *slog.Logger, stderr io.Writer) (*lookup.EmbeddedTor, lookup.Option, error) {
	fmt.Fprintln(stderr, "Starting embedded Tor daemon...")
	fmt.Fprintf(stderr, "This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")

	embeddedTor := lookup.NewEmbeddedTor(lookup.WithStartupTimeout(cfg.TorStartupTimeout))
	if err := embeddedTor.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to start embedded Tor: %w", err)
	}

	logger.Info("embedded Tor daemon started", "socksAddr", embeddedTor.SocksAddr())

	opt, err := embeddedTor.ProxyOption()
	if err != nil {
		_ = embeddedTor.Stop() //nolint:errcheck // Best effort cleanup
		return nil, nil, err
	}

	if status := lookup.CheckProxy(ctx, embeddedTor.SocksAddr()); status != lookup.ProxyStatusOK {
		_ = embeddedTor.Stop() //nolint:errcheck // Best effort cleanup
		return nil, nil, fmt.Errorf("embedded Tor proxy check failed: %s", status)
	}

	return embeddedTor, opt, nil
}
