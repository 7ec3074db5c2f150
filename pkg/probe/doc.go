// Package probe checks service reachability with bounded-timeout HTTP GETs.
//
// Each target is probed exactly once and classified as reachable (2xx),
// timeout (deadline expired) or error (any other status or transport
// failure). Results keep the input order and failures are reported, never
// retried or escalated.
//
//	prober := probe.NewProber(nil, 5*time.Second)
//	for _, r := range prober.ProbeAll(ctx, targets) {
//	    fmt.Printf("%-20s %s\n", r.Name, r)
//	}
//
// Info fetches a service's /info document; CheckRerankerInfo compares the
// backend the reranker reports with the configured RERANKER_TYPE.
package probe
