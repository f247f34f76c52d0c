package rules

import "threatsnap/pkg/models"

// Engine decides whether an alert matches a suppression rule.
type Engine interface {
	Match(alert models.Alert) (string, bool)
}

// NoopEngine matches nothing.
type NoopEngine struct{}

// Match never matches.
func (n *NoopEngine) Match(alert models.Alert) (string, bool) {
	return "", false
}

// Suppress removes alerts matched by the engine, keeping input order.
// It returns the kept alerts and the number removed per rule.
func Suppress(engine Engine, alerts []models.Alert) ([]models.Alert, map[string]int) {
	if engine == nil {
		return alerts, nil
	}
	kept := make([]models.Alert, 0, len(alerts))
	var byRule map[string]int
	for _, alert := range alerts {
		rule, ok := engine.Match(alert)
		if !ok {
			kept = append(kept, alert)
			continue
		}
		if byRule == nil {
			byRule = make(map[string]int)
		}
		byRule[rule]++
	}
	return kept, byRule
}
