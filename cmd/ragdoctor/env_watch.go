package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"ragops/ragdoctor/pkg/cli"
	"ragops/ragdoctor/pkg/watch"
)

var envWatchFlags struct {
	debounce time.Duration
}

var envWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-check env files whenever they change",
	Long: `Check the env files, then re-check every time one of them is saved.

Runs until interrupted. Editors that save by replacing the file are handled.

Examples:
  ragdoctor env watch --file .env.production`,
	RunE: runEnvWatch,
}

func init() {
	envCmd.AddCommand(envWatchCmd)

	envWatchCmd.Flags().DurationVar(&envWatchFlags.debounce, "debounce", watch.DefaultDebounce, "quiet period before re-checking")
}

func runEnvWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyEnvFlags(cmd, &cfg.Env)

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	return watchEnv(ctx, cmd, cfg.Env.Files, envWatchFlags.debounce, func(ctx context.Context) {
		s := openSession(cfg, sessionOptions{})
		defer s.Close()

		if err := report(cmd, s.doctor.CheckEnv(ctx)); err != nil && !cli.IsCheckFailed(err) {
			slog.ErrorContext(ctx, "failed to print report", "error", err)
		}
	})
}

// watchEnv runs check once, then again after every change to files, until
// ctx is done.
func watchEnv(ctx context.Context, cmd *cobra.Command, files []string, debounce time.Duration, check func(ctx context.Context)) error {
	fw, err := watch.NewFileWatcher(watch.Config{
		Files:    files,
		Debounce: debounce,
	}, slog.Default())
	if err != nil {
		return cli.NewCommandError("env watch", err)
	}
	defer fw.Stop()

	check(ctx)

	return fw.Watch(ctx, func(path string) {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s changed\n", path)
		check(ctx)
	})
}
