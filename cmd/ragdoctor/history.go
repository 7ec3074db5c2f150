package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ragops/ragdoctor/pkg/cli"
	"ragops/ragdoctor/pkg/config"
	"ragops/ragdoctor/pkg/diagnose"
	"ragops/ragdoctor/pkg/history"
)

var historyFlags struct {
	kind      string
	since     time.Duration
	limit     int
	olderThan time.Duration
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded runs",
	Long: `Inspect the runs recorded in the history store.

Runs are recorded when history.enabled is true in the config file or
RAGDOCTOR_HISTORY_ENABLED=true is set.

Subcommands:
  list   - List recent runs, newest first
  show   - Print one run's full report
  prune  - Delete runs older than a cutoff`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	Long: `List recent runs, newest first.

Examples:
  # The last 20 runs
  ragdoctor history list

  # Failed probe runs from the last hour
  ragdoctor history list --kind probe --since 1h`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old runs",
	Long: `Delete runs that started before the cutoff. The default cutoff is the
configured retention.

Examples:
  ragdoctor history prune --older-than 72h`,
	Args: cobra.NoArgs,
	RunE: runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyPruneCmd)

	historyListCmd.Flags().StringVar(&historyFlags.kind, "kind", "", "only runs of this kind (doctor, env, probe, logs, smoke, monitor)")
	historyListCmd.Flags().DurationVar(&historyFlags.since, "since", 0, "only runs started within this long")
	historyListCmd.Flags().IntVar(&historyFlags.limit, "limit", 20, "maximum number of runs")

	historyPruneCmd.Flags().DurationVar(&historyFlags.olderThan, "older-than", 0, "delete runs older than this (default: history.retention)")
}

// openStore opens the configured history store regardless of
// history.enabled, so past runs stay readable after recording is turned off.
func openStore(cmd *cobra.Command) (*config.Config, *history.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	store, err := openHistory(cfg.History)
	if err != nil {
		return nil, nil, cli.NewCommandError(cmd.CommandPath(), err)
	}
	return cfg, store, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	_, store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	filter := history.Filter{Kind: historyFlags.kind, Limit: historyFlags.limit}
	if historyFlags.since > 0 {
		filter.Since = time.Now().Add(-historyFlags.since)
	}

	records, err := store.List(cmd.Context(), filter)
	if err != nil {
		return cli.NewCommandError(cmd.CommandPath(), err)
	}
	return render(cmd, cli.RecordList(records))
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	_, store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Get(cmd.Context(), args[0])
	if errors.Is(err, history.ErrNotFound) {
		return fmt.Errorf("no run with id %s", args[0])
	}
	if err != nil {
		return cli.NewCommandError(cmd.CommandPath(), err)
	}

	run, err := diagnose.FromRecord(rec)
	if err != nil {
		return cli.NewCommandError(cmd.CommandPath(), err)
	}
	return render(cmd, cli.RunReport{Run: run, Verbose: verbose})
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	cfg, store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	age := historyFlags.olderThan
	if age <= 0 {
		age = cfg.History.Retention
	}
	if age <= 0 {
		return cli.NewConfigError("older-than", "no cutoff given and history.retention is not set")
	}

	deleted, err := store.Prune(cmd.Context(), time.Now().Add(-age))
	if err != nil {
		return cli.NewCommandError(cmd.CommandPath(), err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d run(s) older than %s\n", deleted, age)
	return nil
}
