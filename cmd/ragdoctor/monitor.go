package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"ragops/ragdoctor/pkg/cli"
	"ragops/ragdoctor/pkg/monitor"
	"ragops/ragdoctor/pkg/telemetry/health"
)

var monitorFlags struct {
	listenAddress string
	schedule      string
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Probe on a schedule and serve metrics",
	Long: `Run the env check and health probes on a schedule until interrupted.

The latest results are served over HTTP:

  GET /metrics   Prometheus metrics (probe_up, probe_duration_seconds, ...)
  GET /health    liveness
  GET /ready     readiness, degraded when the schedule has stalled
  GET /version   build information
  GET /report    the latest run as JSON

Runs are recorded to the history store when history is enabled.

Examples:
  # Probe every minute on the default address
  ragdoctor monitor

  # Probe every 15 seconds and listen on all interfaces
  ragdoctor monitor --schedule "@every 15s" --listen 0.0.0.0:9109`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().StringVarP(&monitorFlags.listenAddress, "listen", "l", "", "override listen address")
	monitorCmd.Flags().StringVar(&monitorFlags.schedule, "schedule", "", "override schedule (cron expression or @every)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if monitorFlags.listenAddress != "" {
		cfg.Monitor.ListenAddress = monitorFlags.listenAddress
	}
	if monitorFlags.schedule != "" {
		cfg.Monitor.Schedule = monitorFlags.schedule
	}

	s := openSession(cfg, sessionOptions{})
	defer s.Close()

	m, err := monitor.New(monitor.Config{
		Schedule:      cfg.Monitor.Schedule,
		ListenAddress: cfg.Monitor.ListenAddress,
		Version:       Version,
		Commit:        GitCommit,
		BuildTime:     BuildDate,
	}, s.doctor, nil)
	if err != nil {
		return cli.NewConfigError("monitor.schedule", err.Error())
	}
	if s.store != nil {
		m.AddCheck("history", health.Ping(s.store))
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "ragdoctor monitor on http://%s (schedule %s)\n",
		cfg.Monitor.ListenAddress, cfg.Monitor.Schedule)
	slog.InfoContext(ctx, "monitor starting", "schedule", cfg.Monitor.Schedule, "history", s.store != nil)

	if err := m.Start(ctx); err != nil {
		return cli.NewCommandError("monitor", err)
	}
	return nil
}
