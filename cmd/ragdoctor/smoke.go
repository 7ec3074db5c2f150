package main

import (
	"github.com/spf13/cobra"

	"ragops/ragdoctor/pkg/cli"
	"ragops/ragdoctor/pkg/smoke"
)

var smokeFlags struct {
	session string
	user    string
	query   string
	repeat  int
	rate    float64
}

var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Smoke-test the APRAG query path",
	Long: `Issue the calls an operator makes by hand after a deploy:

  POST {aprag_url}/api/aprag/hybrid-rag/query
  GET  {document_url}/sessions/{session}/chunks
  GET  {document_url}/admin/stats

Every call runs even if an earlier one fails. With --repeat only the query
is sent, paced by --rate, to reproduce intermittent timeouts.

Examples:
  # One pass with a fresh session id
  ragdoctor smoke

  # Query an existing session
  ragdoctor smoke --session 6f1c... --query "What is RAG?"

  # Send 20 queries, two per second
  ragdoctor smoke --repeat 20 --rate 2`,
	RunE: runSmoke,
}

func init() {
	rootCmd.AddCommand(smokeCmd)

	smokeCmd.Flags().StringVar(&smokeFlags.session, "session", "", "session id (default: new UUID)")
	smokeCmd.Flags().StringVar(&smokeFlags.user, "user", "", "user id (default from config)")
	smokeCmd.Flags().StringVarP(&smokeFlags.query, "query", "q", "", "query text (default from config)")
	smokeCmd.Flags().IntVarP(&smokeFlags.repeat, "repeat", "n", 0, "send the query this many times (default from config)")
	smokeCmd.Flags().Float64Var(&smokeFlags.rate, "rate", 0, "queries per second when repeating, 0 for no pacing (default from config)")
}

func runSmoke(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	repeat, rate := cfg.Smoke.Repeat, cfg.Smoke.Rate
	if cmd.Flags().Changed("repeat") {
		repeat = smokeFlags.repeat
	}
	if cmd.Flags().Changed("rate") {
		rate = smokeFlags.rate
	}

	s := openSession(cfg, sessionOptions{})
	defer s.Close()

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	// The bar goes to stderr and is skipped when logs are being written there.
	var progress cli.ProgressReporter
	if repeat > 1 && !verbose {
		progress = cli.NewProgressReporter(cmd.ErrOrStderr(), "req")
		progress.Start(int64(repeat))
		s.smoke.SetProgress(func(done, total int) {
			progress.Update(int64(done))
		})
	}

	run := s.doctor.Smoke(ctx, smoke.Request{
		UserID:    smokeFlags.user,
		SessionID: smokeFlags.session,
		Query:     smokeFlags.query,
	}, repeat, rate)

	if progress != nil {
		progress.Finish()
	}

	return report(cmd, run)
}
