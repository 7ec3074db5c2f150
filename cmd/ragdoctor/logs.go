package main

import (
	"github.com/spf13/cobra"

	"ragops/ragdoctor/pkg/diagnose"
	"ragops/ragdoctor/pkg/logscan"
)

var logsFlags struct {
	tail     int
	keywords []string
}

var logsCmd = &cobra.Command{
	Use:   "logs [container...]",
	Short: "Grep recent container logs",
	Long: `Read the last lines of each container's log and print the lines that
contain any keyword, ignoring case, most recent last.

Without arguments the configured watches are checked, e.g. reranker-service
for "reorder" and "error". Matching lines are shown for inspection; only an
unreadable log fails the command.

Examples:
  # Check the configured watches
  ragdoctor logs

  # Look for reorder messages in the last 500 reranker lines
  ragdoctor logs reranker-service --keyword reorder --tail 500`,
	RunE: runLogs,
}

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().IntVar(&logsFlags.tail, "tail", 0, "number of recent lines to scan (default from config)")
	logsCmd.Flags().StringSliceVarP(&logsFlags.keywords, "keyword", "k", nil, "keyword to match (repeatable)")
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("tail") {
		cfg.Logs.Tail = logsFlags.tail
	}

	s := openSession(cfg, sessionOptions{logs: true})
	defer s.Close()

	queries := logQueries(diagnose.Watches(cfg.Logs), args, logsFlags.keywords, cfg.Logs.Tail)
	return report(cmd, s.doctor.Logs(cmd.Context(), queries...))
}

// logQueries builds the queries for the named containers. A container with
// no keywords on the command line uses its configured watch keywords. With
// no containers named it returns the watches, with keywords overridden when
// given.
func logQueries(watches []logscan.Query, containers, keywords []string, tail int) []logscan.Query {
	if len(containers) == 0 {
		if len(keywords) == 0 {
			return watches
		}
		out := make([]logscan.Query, len(watches))
		for i, w := range watches {
			w.Keywords = keywords
			out[i] = w
		}
		return out
	}

	configured := make(map[string][]string, len(watches))
	for _, w := range watches {
		configured[w.Container] = w.Keywords
	}

	queries := make([]logscan.Query, 0, len(containers))
	for _, c := range containers {
		kw := keywords
		if len(kw) == 0 {
			kw = configured[c]
		}
		queries = append(queries, logscan.Query{Container: c, Tail: tail, Keywords: kw})
	}
	return queries
}
