package main

import (
	"time"

	"github.com/spf13/cobra"

	"ragops/ragdoctor/pkg/cli"
	"ragops/ragdoctor/pkg/diagnose"
	"ragops/ragdoctor/pkg/probe"
)

var probeFlags struct {
	targets []string
	timeout time.Duration
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Probe service health endpoints",
	Long: `Send one GET to each configured health endpoint and report whether it
was reachable, timed out or returned an error status. Probes are never
retried.

Targets that declare an info_url also have their /info document compared
with RERANKER_TYPE from the env files.

Examples:
  # Probe every configured target
  ragdoctor probe

  # Probe only the reranker with a longer timeout
  ragdoctor probe --target reranker --timeout 30s`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().StringSliceVarP(&probeFlags.targets, "target", "t", nil, "only probe the named targets (repeatable)")
	probeCmd.Flags().DurationVar(&probeFlags.timeout, "timeout", 0, "override every target's timeout")
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if len(probeFlags.targets) > 0 && len(probe.Filter(probe.TargetsFromConfig(cfg.Probe.Targets), probeFlags.targets)) == 0 {
		return cli.NewConfigError("target", "no configured target matches")
	}

	s := openSession(cfg, sessionOptions{
		adjust: func(dc *diagnose.Config) {
			dc.Targets = overrideTimeout(probe.Filter(dc.Targets, probeFlags.targets), probeFlags.timeout)
			dc.InfoTargets = overrideTimeout(probe.Filter(dc.InfoTargets, probeFlags.targets), probeFlags.timeout)
		},
	})
	defer s.Close()

	return report(cmd, s.doctor.Probe(cmd.Context()))
}

func overrideTimeout(targets []probe.Target, timeout time.Duration) []probe.Target {
	if timeout <= 0 {
		return targets
	}
	out := make([]probe.Target, len(targets))
	for i, t := range targets {
		t.Timeout = timeout
		out[i] = t
	}
	return out
}
