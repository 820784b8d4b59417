package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/nao1215/catchphish/internal/config"
	"github.com/nao1215/catchphish/internal/log"
	"github.com/nao1215/catchphish/internal/tui"
	"github.com/nao1215/catchphish/internal/view"
	"github.com/spf13/cobra"
)

// NewUICmd creates the ui command.
func NewUICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Look up URLs interactively",
		Long: `UI opens an interactive lookup view. Type a URL, press Enter and the
verdict appears below the input together with the hosting details and the
features behind it. Press Esc or Ctrl+C to quit.

A new search may be started while another is still running. By default the
response that arrives last is shown; with --latest-only superseded searches
are cancelled and their responses ignored.

When stdin is not a terminal, or with --plain, URLs are read line by line and
each result is printed as plain text.

Examples:
  # Interactive view against a local service
  catchphish ui

  # Check URLs from a pipe
  cat urls.txt | catchphish ui --plain`,
		Args: cobra.NoArgs,
		RunE: runUICmd,
	}

	addConnectionFlags(cmd)

	cmd.Flags().Bool("latest-only", false,
		"Cancel superseded searches and ignore their responses")
	cmd.Flags().Bool("plain", false,
		"Read URLs line by line from stdin instead of opening the interactive view")

	return cmd
}

// runUICmd executes the ui command.
func runUICmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConnectionConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.LatestOnly, err = cmd.Flags().GetBool("latest-only"); err != nil {
		return err
	}
	plain, err := cmd.Flags().GetBool("plain")
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	interactive := !plain && isTerminal(cmd.InOrStdin())

	// The terminal belongs to the interactive view; log to a file instead.
	logger := setupLogger(cmd)
	if interactive {
		logFile, err := openUILog(config.XDGStateDir())
		if err != nil {
			return err
		}
		defer logFile.Close()
		logger = log.NewSecureLogger(logFile, cfg.Verbose)
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if err := checkProxy(ctx, cfg, logger); err != nil {
		return err
	}

	client, err := newLookupClient(cfg, logger)
	if err != nil {
		return err
	}

	policy := view.LastWriteWins
	if cfg.LatestOnly {
		policy = view.LatestOnly
	}

	if !interactive {
		return runPlain(ctx, client, policy, logger, cmd.InOrStdin(), cmd.OutOrStdout())
	}

	return tui.Run(ctx, client,
		tui.WithStalePolicy(policy),
		tui.WithLogger(logger),
	)
}

// uiLogFile is the name of the interactive view's log inside the state directory.
const uiLogFile = "ui.log"

// openUILog opens the interactive view's log for appending.
func openUILog(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, uiLogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// runPlain drives a view.View from line-based input. Each line is a query;
// the loading indicator is printed when the search starts and the result
// when it finishes. A failed search prints nothing.
func runPlain(ctx context.Context, searcher view.Searcher, policy view.StalePolicy, logger *slog.Logger, in io.Reader, out io.Writer) error {
	v := view.New(searcher,
		view.WithStalePolicy(policy),
		view.WithLogger(logger),
	)
	defer v.Close()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		v.OnQueryTextChange(scanner.Text())
		if !v.SubmitSearch(ctx) {
			continue
		}
		if _, err := fmt.Fprintln(out, view.LoadingText); err != nil {
			return err
		}

		v.Wait()
		if err := view.Render(out, v.State()); err != nil {
			return err
		}
	}
	return scanner.Err()
}
