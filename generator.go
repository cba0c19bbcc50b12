package modelsearch

import (
	"log"

	"github.com/pkg/errors"
)

// NewTowerFn builds a tower for the given architecture. prevTrial is the id of the trial whose
// latest checkpoint the tower's weights should be initialized from via snapshot transfer, or 0
// for fresh weights. Tower construction itself (translating block tags into executable layers)
// is external to this package.
type NewTowerFn func(arch Architecture, prevTrial int) (Tower, error)

// GenerateArgs are the per-trial inputs to SearchCandidateGenerator.Generate.
type GenerateArgs struct {
	// MyID is the current trial id, >= 1.
	MyID int

	TrialMode TrialMode

	// ModelDir is the current trial's model directory; architecture and tower-count records
	// are written there.
	ModelDir string

	// HParams are passed through to the search algorithm.
	HParams map[string]float64

	// Trials is the full trial history, treated as a frozen snapshot for this decision.
	Trials []Trial

	NewTower NewTowerFn
}

// GeneratorResult is one generator's contribution to the current trial. NumTowers is threaded
// explicitly so downstream aggregation never has to fetch it from shared state; the same count
// is also persisted in the trial's registry for later trials to read.
type GeneratorResult struct {
	Towers    []Tower
	NumTowers int
}

// SearchCandidateGenerator generates candidate towers via search algorithms. It is responsible
// for the architecture optimization, not the weights.
type SearchCandidateGenerator struct {
	spec Spec
	algo SearchAlgorithm
	meta Metadata

	// user suggestions, canonicalized once at construction
	suggestions []Architecture
}

// NewSearchCandidateGenerator builds a generator for the given spec. The search algorithm is
// constructed by the caller (see the subpackage "search") so that this package stays agnostic
// of concrete strategies; meta is the external trial-ranking collaborator.
func NewSearchCandidateGenerator(spec Spec, algo SearchAlgorithm, meta Metadata) *SearchCandidateGenerator {
	suggestions := make([]Architecture, len(spec.UserSuggestions))
	for i, s := range spec.UserSuggestions {
		suggestions[i] = NewArchitecture(s...)
	}

	return &SearchCandidateGenerator{
		spec:        spec,
		algo:        algo,
		meta:        meta,
		suggestions: suggestions,
	}
}

// Name returns the generator's name, under which its tower counts are recorded.
func (g *SearchCandidateGenerator) Name() string {
	return "search_generator"
}

func trialFromID(trials []Trial, id int) *Trial {
	for i := range trials {
		if trials[i].ID == id {
			return &trials[i]
		}
	}
	return nil
}

// createNewArchitecture persists the chosen architecture, builds the tower, and records the
// tower count. Snapshot lineage is only applied when the spec's transfer-learning mode selects
// it and the parent trial exists in the history.
func (g *SearchCandidateGenerator) createNewArchitecture(args GenerateArgs, arch Architecture, prevTrial int) (GeneratorResult, error) {
	log.Printf("Creating new architecture: %v", arch)

	if err := SaveArchitecture(args.ModelDir, args.MyID, arch); err != nil {
		return GeneratorResult{}, err
	}

	applySnapshot := g.spec.TransferLearning == TransferSnapshot
	if prevTrial > 0 && !applySnapshot {
		prevTrial = 0
	}

	tower, err := args.NewTower(arch, prevTrial)
	if err != nil {
		return GeneratorResult{}, errors.Wrapf(err, "Couldn't build tower for trial %d", args.MyID)
	}
	if tower.Name == "" {
		tower.Name = g.Name() + "_0"
	}
	if prevTrial > 0 {
		if prev := trialFromID(args.Trials, prevTrial); prev != nil {
			tower.PreviousModelDir = prev.ModelDir
		}
	}

	if err := SetNumberOfTowers(args.ModelDir, g.Name(), 1); err != nil {
		return GeneratorResult{}, err
	}
	return GeneratorResult{Towers: []Tower{tower}, NumTowers: 1}, nil
}

// suggestAndCreate runs the search algorithm over the relevant trials and builds the suggested
// architecture.
func (g *SearchCandidateGenerator) suggestAndCreate(args GenerateArgs, relevant []Trial) (GeneratorResult, error) {
	arch, prevTrial, err := g.algo.Suggest(relevant, args.HParams, args.MyID, args.ModelDir)
	if err != nil {
		return GeneratorResult{}, errors.Wrapf(err, "Search algorithm %q failed for trial %d", g.algo.TypeString(), args.MyID)
	}
	return g.createNewArchitecture(args, arch, prevTrial)
}

// emitNoTowers records a zero tower count for this trial and returns the empty result.
func (g *SearchCandidateGenerator) emitNoTowers(args GenerateArgs) (GeneratorResult, error) {
	if err := SetNumberOfTowers(args.ModelDir, g.Name(), 0); err != nil {
		return GeneratorResult{}, err
	}
	return GeneratorResult{}, nil
}

// Generate makes the architecture decision for one trial. One decision per trial; the branches,
// in priority order:
//
//	(1) user suggestions, consumed strictly in order by trial id, with fresh weights;
//	(2) ensemble search, dispatched on the configured discipline;
//	(3) intermixed distillation, cloning the best previous exploration tower;
//	(4) otherwise, search over the entire history. Under non-intermixed distillation the
//	    resulting tower serves as the student model.
func (g *SearchCandidateGenerator) Generate(args GenerateArgs) (GeneratorResult, error) {
	if args.MyID < 1 {
		return GeneratorResult{}, ErrNegativeTrial
	}

	// First, try out user suggestions.
	if args.MyID <= len(g.suggestions) {
		return g.createNewArchitecture(args, copyArch(g.suggestions[args.MyID-1]), 0)
	}

	if args.TrialMode == TrialEnsembleSearch {
		decision, err := chooseEnsembleAction(args.MyID, args.Trials, g.spec.Ensemble)
		if err != nil {
			return GeneratorResult{}, err
		}

		switch decision.Kind {
		case DecisionStop, DecisionSkip:
			return g.emitNoTowers(args)
		default:
			return g.suggestAndCreate(args, decision.Relevant)
		}
	}

	if args.TrialMode == TrialDistillation && g.spec.Ensemble.SearchType == EnsembleIntermixed {
		every := g.spec.Ensemble.TryEnsemblingEvery
		if every <= 0 {
			return GeneratorResult{}, UnsupportedConfigError{
				Field: "intermixed try_ensembling_every",
				Value: "0",
			}
		}

		relevant := intermixedTrials(args.Trials, every, len(g.suggestions))
		if best := g.meta.BestTrial(relevant); best != nil {
			n, err := GetNumberOfTowers(best.ModelDir, g.Name())
			if err != nil {
				return GeneratorResult{}, errors.Wrapf(err, "Can't distill from trial %d", best.ID)
			}
			if n != 1 {
				return GeneratorResult{}, InvariantError{
					Msg: "distillation source trial must have exactly one tower",
				}
			}

			tower, err := LoadTower(*best, args.ModelDir, args.MyID, g.Name()+"_0")
			if err != nil {
				return GeneratorResult{}, err
			}
			if err := SetNumberOfTowers(args.ModelDir, g.Name(), 1); err != nil {
				return GeneratorResult{}, err
			}
			return GeneratorResult{Towers: []Tower{tower}, NumTowers: 1}, nil
		}
		// No relevant trial to distill from; fall through to a fresh search.
	}

	// If no ensembling search method is specified, or this is a distillation trial without
	// intermixed ensemble search, get a new tower from the search algorithm over the entire
	// history.
	return g.suggestAndCreate(args, args.Trials)
}
