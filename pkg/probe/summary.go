package probe

// Summary counts probe outcomes.
type Summary struct {
	Total     int `json:"total"`
	Reachable int `json:"reachable"`
	Timeout   int `json:"timeout"`
	Error     int `json:"error"`
}

// Summarize counts the outcomes in results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Outcome {
		case OutcomeReachable:
			s.Reachable++
		case OutcomeTimeout:
			s.Timeout++
		default:
			s.Error++
		}
	}
	return s
}

// Failed returns the number of targets that were not reachable.
func (s Summary) Failed() int {
	return s.Timeout + s.Error
}

// AllReachable reports whether every probed target was reachable.
func (s Summary) AllReachable() bool {
	return s.Failed() == 0
}
