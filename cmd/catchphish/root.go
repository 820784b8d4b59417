package main

import (
	"fmt"
	"os"

	"github.com/nao1215/catchphish/internal/config"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for catchphish.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catchphish",
		Short: "Check URLs against a phishing classification service",
		Long: `catchphish asks a phishing classification service whether a URL is
reliable, suspicious or not reliable, and shows the details behind the verdict:
where the site is hosted, whether it sits behind a VPN and which URL, content
and domain features the classifier flagged.

The service endpoint defaults to http://localhost:8000 and can be set with
--endpoint, the CATCHPHISH_ENDPOINT environment variable (also read from .env)
or a .catchphish configuration file.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return config.LoadDotEnv(config.DefaultDotEnvFile)
		},
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewUICmd())
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
