package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"ragops/ragdoctor/pkg/cli"
	"ragops/ragdoctor/pkg/config"
	"ragops/ragdoctor/pkg/diagnose"
	"ragops/ragdoctor/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile      string
	verbose      bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "ragdoctor",
	Short: "ragdoctor - diagnostics for RAG deployments",
	Long: `ragdoctor checks a multi-service RAG deployment the way an operator
would by hand:

  - validates env files (RERANKER_TYPE, API keys, public URLs)
  - probes service health endpoints with bounded timeouts
  - greps container logs for known failure signatures
  - smoke-tests the APRAG query path

Reports go to stdout, logs to stderr. The exit status is non-zero when any
check fails.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "ragdoctor.yaml", "config file path (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output and debug logging")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "o", "text", "output format (text, json)")
}

// loadConfig loads the configuration and installs the default logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if _, err := cli.ParseFormat(outputFormat); err != nil {
		return nil, err
	}

	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.FromConfig(cfg.Telemetry.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger.Slog())

	return cfg, nil
}

// render writes data to stdout in the selected format.
func render(cmd *cobra.Command, data any) error {
	format, err := cli.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), data)
}

// report prints run and turns its failures into the exit status.
func report(cmd *cobra.Command, run diagnose.Run) error {
	if err := render(cmd, cli.RunReport{Run: run, Verbose: verbose}); err != nil {
		return cli.NewCommandError(cmd.Name(), err)
	}
	return cli.NewCheckFailedError(cmd.CommandPath(), run.Failures)
}
