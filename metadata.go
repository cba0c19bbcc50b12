package modelsearch

// ObjectiveMetadata ranks trials by a single recorded metric. It is the default Metadata
// implementation; deployments with an external tuning service supply their own.
type ObjectiveMetadata struct {
	// MetricName is the key into Trial.Metrics, typically "loss" or "accuracy".
	MetricName string

	// Maximize flips the objective; by default lower is better.
	Maximize bool
}

// BestTrial returns the best trial by the configured objective, or nil for an empty set.
// Trials missing the metric are ignored; ties break toward the lower trial id so that ranking
// stays deterministic across identical histories.
func (m ObjectiveMetadata) BestTrial(trials []Trial) *Trial {
	var best *Trial
	for i := range trials {
		t := &trials[i]
		v, ok := t.Metrics[m.MetricName]
		if !ok {
			continue
		}

		if best == nil {
			best = t
			continue
		}

		bv := best.Metrics[m.MetricName]
		better := v < bv
		if m.Maximize {
			better = v > bv
		}
		if better || (v == bv && t.ID < best.ID) {
			best = t
		}
	}

	if best == nil {
		return nil
	}
	out := *best
	return &out
}
