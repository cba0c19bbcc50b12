package modelsearch

// DecisionKind is the disposition an ensembling discipline assigns to one trial.
type DecisionKind string

const (
	// DecisionStop means the ensemble has reached its target cardinality; the generator
	// contributes zero towers from here on.
	DecisionStop DecisionKind = "STOP"

	// DecisionSkip means this trial is an exploitation trial; searching is skipped and zero
	// towers are contributed.
	DecisionSkip DecisionKind = "SKIP"

	// DecisionSearch means the search algorithm should run over Relevant.
	DecisionSearch DecisionKind = "SEARCH"
)

// Decision is the result of applying an ensembling discipline to one trial.
type Decision struct {
	Kind DecisionKind

	// Relevant is the subset of the history the search algorithm may see. Only set for
	// DecisionSearch.
	Relevant []Trial
}

// chooseEnsembleAction applies the configured ensembling discipline to trial myID. It is a pure
// function of its inputs; trials is treated as a frozen snapshot.
//
// Dispositions:
//   - NONADAPTIVE: stop searching unconditionally.
//   - ADAPTIVE / RESIDUAL: search within a sliding window that resets every IncreaseWidthEvery
//     trials (the full history when the knob is zero).
//   - INTERMIXED: every TryEnsemblingEvery-th trial is an exploitation trial (skip); all others
//     search over the history with exploitation trials excluded.
//
// Any other tag, including the unset one, is an UnsupportedConfigError: requesting ensembling
// with an unknown discipline is never silently defaulted.
func chooseEnsembleAction(myID int, trials []Trial, spec EnsembleSpec) (Decision, error) {
	switch spec.SearchType {
	case EnsembleNonAdaptive:
		return Decision{Kind: DecisionStop}, nil

	case EnsembleAdaptive, EnsembleResidual:
		relevant := trials
		if every := spec.IncreaseWidthEvery; every > 0 {
			floor := myID / every * every
			relevant = nil
			for _, t := range trials {
				if t.ID >= floor {
					relevant = append(relevant, t)
				}
			}
		}
		return Decision{Kind: DecisionSearch, Relevant: relevant}, nil

	case EnsembleIntermixed:
		every := spec.TryEnsemblingEvery
		if every <= 0 {
			return Decision{}, UnsupportedConfigError{
				Field: "intermixed try_ensembling_every",
				Value: "0",
			}
		}

		if myID%every == 0 {
			return Decision{Kind: DecisionSkip}, nil
		}

		var relevant []Trial
		for _, t := range trials {
			if t.ID%every != 0 {
				relevant = append(relevant, t)
			}
		}
		return Decision{Kind: DecisionSearch, Relevant: relevant}, nil

	default:
		return Decision{}, UnsupportedConfigError{
			Field: "ensemble search type",
			Value: string(spec.SearchType),
		}
	}
}

// intermixedTrials returns the trials a distillation trial may clone from under the intermixed
// discipline: exploration trials only, with user-suggestion trials excluded.
func intermixedTrials(trials []Trial, every, numSuggestions int) []Trial {
	var out []Trial
	for _, t := range trials {
		if t.ID%every == 0 {
			continue
		}
		if t.ID <= numSuggestions {
			continue
		}
		out = append(out, t)
	}
	return out
}
