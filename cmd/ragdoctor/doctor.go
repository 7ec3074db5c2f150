package main

import (
	"github.com/spf13/cobra"

	"ragops/ragdoctor/pkg/cli"
	"ragops/ragdoctor/pkg/diagnose"
)

var doctorFlags struct {
	skipLogs bool
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run every check in order",
	Long: `Run the env check, health probes, reranker /info checks and the
configured log greps, in that order. A failing check never stops the ones
after it; the exit status reflects all of them.

Examples:
  ragdoctor doctor
  ragdoctor doctor --format json > report.json`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().BoolVar(&doctorFlags.skipLogs, "skip-logs", false, "do not read container logs")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	s := openSession(cfg, sessionOptions{
		logs: !doctorFlags.skipLogs,
		adjust: func(dc *diagnose.Config) {
			if doctorFlags.skipLogs {
				dc.Watches = nil
			}
		},
	})
	defer s.Close()

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	return report(cmd, s.doctor.Run(ctx))
}
