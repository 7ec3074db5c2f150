// Package smoke exercises the APRAG query path end to end.
//
// A Run posts a hybrid RAG query for a session, lists the chunks the
// document-processing service holds for that session and fetches its admin
// statistics. Each call is bounded by the configured timeout and classified
// with the same reachable/timeout/error outcomes as package probe.
//
//	runner := smoke.NewRunner(nil, smoke.Config{
//	    APRAGURL:    "http://localhost:8007",
//	    DocumentURL: "http://localhost:8003",
//	    UserID:      "ragdoctor",
//	    Query:       "What topics does this course cover?",
//	    Timeout:     60 * time.Second,
//	})
//	report := runner.Run(ctx, smoke.Request{})
//
// RunRepeated repeats only the query, paced by a token-bucket limiter, which
// is how intermittent query timeouts are usually reproduced.
package smoke
