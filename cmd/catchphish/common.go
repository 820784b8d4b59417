package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/catchphish/internal/config"
	"github.com/nao1215/catchphish/internal/log"
	"github.com/nao1215/catchphish/internal/lookup"
	"github.com/spf13/cobra"
)

// addConnectionFlags registers the flags shared by every command that
// talks to the service.
func addConnectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("endpoint", "e", config.DefaultEndpoint,
		"Base URL of the classification service")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout of a single lookup request (0 disables it)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .catchphish in current or home directory)")
	cmd.Flags().StringP("profile", "P", "",
		"Profile to use from the configuration file")
	cmd.Flags().StringP("proxy", "x", "",
		"Route lookups through a SOCKS5 proxy (e.g., 127.0.0.1:9050)")
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the redacting logger for the given verbosity.
func setupLogger(cmd *cobra.Command) *slog.Logger {
	return log.NewSecureLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))
}

// buildConnectionConfig loads the config file and environment, then applies
// the connection flags the user actually set.
func buildConnectionConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	profile, err := cmd.Flags().GetString("profile")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath, profile, os.LookupEnv)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.Verbose = getVerboseFlag(cmd)

	if cmd.Flags().Changed("endpoint") {
		if cfg.Endpoint, err = cmd.Flags().GetString("endpoint"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("timeout") {
		if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("proxy") {
		if cfg.ProxyAddress, err = cmd.Flags().GetString("proxy"); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// newLookupClient creates the lookup client described by cfg. extra options
// are applied last, so a Tor proxy option overrides cfg.ProxyAddress.
func newLookupClient(cfg *config.Config, logger *slog.Logger, extra ...lookup.Option) (*lookup.Client, error) {
	opts := []lookup.Option{
		lookup.WithTimeout(cfg.Timeout),
		lookup.WithUserAgent(cfg.UserAgent),
		lookup.WithMaxBodySize(cfg.MaxBodySize),
		lookup.WithLogger(logger),
	}
	if cfg.ProxyAddress != "" {
		opts = append(opts, lookup.WithProxy(cfg.ProxyAddress))
	}
	if cfg.Cookie != "" {
		opts = append(opts, lookup.WithCookie(cfg.Cookie))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, lookup.WithHeaders(cfg.Headers))
	}
	opts = append(opts, extra...)

	client, err := lookup.New(cfg.Endpoint, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup client: %w", err)
	}
	return client, nil
}

// checkProxy verifies a configured SOCKS5 proxy before any lookup is sent.
func checkProxy(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.ProxyAddress == "" {
		return nil
	}
	status := lookup.CheckProxy(ctx, cfg.ProxyAddress)
	if status != lookup.ProxyStatusOK {
		return fmt.Errorf("proxy check failed: %s (make sure a SOCKS5 proxy is running at %s)",
			status, cfg.ProxyAddress)
	}
	logger.Info("proxy connection verified", "address", cfg.ProxyAddress)
	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
