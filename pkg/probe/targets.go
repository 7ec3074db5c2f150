package probe

import "ragops/ragdoctor/pkg/config"

// TargetsFromConfig converts configured targets to health probe targets,
// keeping their order.
func TargetsFromConfig(cfgs []config.TargetConfig) []Target {
	targets := make([]Target, 0, len(cfgs))
	for _, c := range cfgs {
		targets = append(targets, Target{Name: c.Name, URL: c.URL, Timeout: c.Timeout})
	}
	return targets
}

// InfoTargetsFromConfig returns the /info targets of configured services that
// declare one.
func InfoTargetsFromConfig(cfgs []config.TargetConfig) []Target {
	var targets []Target
	for _, c := range cfgs {
		if c.InfoURL == "" {
			continue
		}
		targets = append(targets, Target{Name: c.Name, URL: c.InfoURL, Timeout: c.Timeout})
	}
	return targets
}

// Filter keeps the targets whose names are listed. An empty list keeps all.
func Filter(targets []Target, names []string) []Target {
	if len(names) == 0 {
		return targets
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	var out []Target
	for _, t := range targets {
		if wanted[t.Name] {
			out = append(out, t)
		}
	}
	return out
}
