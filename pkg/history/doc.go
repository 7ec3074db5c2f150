// Package history keeps a local record of diagnostic runs.
//
// Runs are stored in a single SQLite table. Two drivers are supported:
// "sqlite" (modernc.org/sqlite, pure Go, the default) and "sqlite3"
// (github.com/mattn/go-sqlite3, requires cgo). Both share one schema, and
// timestamps are stored as Unix nanoseconds so either driver can read a file
// written by the other.
//
//	store, err := history.Open(history.Config{Path: "ragdoctor.db"})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	runs, err := store.List(ctx, history.Filter{Kind: "doctor", Limit: 10})
package history
