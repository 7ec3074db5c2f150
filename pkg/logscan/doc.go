// Package logscan greps the recent log output of containers.
//
// An Inspector tails a container through a Source and keeps the lines that
// contain any keyword, case-insensitively, most recent last. Log lines are
// treated as plain text; no structured fields are parsed.
//
//	src, err := logscan.NewDockerSource()
//	if err != nil {
//	    return err
//	}
//	defer src.Close()
//
//	res, err := logscan.NewInspector(src).Inspect(ctx, logscan.Query{
//	    Container: "reranker-service",
//	    Tail:      200,
//	    Keywords:  []string{"reorder", "error"},
//	})
package logscan
