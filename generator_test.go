package modelsearch

import (
	"path/filepath"
	"strconv"
	"testing"
)

// fakeAlgo records what it was asked and suggests a fixed architecture.
type fakeAlgo struct {
	arch Architecture
	prev int

	called      bool
	gotRelevant []Trial
}

func (f *fakeAlgo) TypeString() string { return "fake" }

func (f *fakeAlgo) Suggest(relevant []Trial, hparams map[string]float64, myID int, modelDir string) (Architecture, int, error) {
	f.called = true
	f.gotRelevant = relevant
	return copyArch(f.arch), f.prev, nil
}

func passthroughTower(got *int) NewTowerFn {
	return func(arch Architecture, prevTrial int) (Tower, error) {
		if got != nil {
			*got = prevTrial
		}
		return Tower{Architecture: arch}, nil
	}
}

func testGenerator(t *testing.T, spec Spec, algo SearchAlgorithm) *SearchCandidateGenerator {
	t.Helper()
	return NewSearchCandidateGenerator(spec, algo, ObjectiveMetadata{MetricName: "loss"})
}

func TestGenerateRejectsBadTrialID(t *testing.T) {
	gen := testGenerator(t, Spec{}, &fakeAlgo{})
	_, err := gen.Generate(GenerateArgs{MyID: 0, ModelDir: t.TempDir(), NewTower: passthroughTower(nil)})
	if err != ErrNegativeTrial {
		t.Fatalf("Generate(id=0) returned %v, want ErrNegativeTrial", err)
	}
}

func TestGenerateUserSuggestions(t *testing.T) {
	spec := Spec{
		UserSuggestions: []Architecture{
			// not canonical on purpose
			{BlockFullyConnected64, BlockConvolution3x3},
			{BlockFullyConnected128},
		},
	}
	algo := &fakeAlgo{}
	gen := testGenerator(t, spec, algo)

	wants := []Architecture{
		{BlockConvolution3x3, BlockFlatten, BlockFullyConnected64},
		{BlockFullyConnected128},
	}

	for id := 1; id <= 2; id++ {
		dir := t.TempDir()
		res, err := gen.Generate(GenerateArgs{MyID: id, ModelDir: dir, NewTower: passthroughTower(nil)})
		if err != nil {
			t.Fatalf("Generate(id=%d) failed: %v", id, err)
		}

		if res.NumTowers != 1 || len(res.Towers) != 1 {
			t.Fatalf("Generate(id=%d) produced %d towers, want 1", id, res.NumTowers)
		}
		if !res.Towers[0].Architecture.Equal(wants[id-1]) {
			t.Fatalf("suggestion %d = %v, want %v", id, res.Towers[0].Architecture, wants[id-1])
		}
		if algo.called {
			t.Fatalf("search algorithm ran during a user-suggestion trial")
		}

		saved, err := LoadArchitecture(dir, id)
		if err != nil {
			t.Fatalf("suggestion %d wasn't persisted: %v", id, err)
		}
		if !saved.Equal(wants[id-1]) {
			t.Fatalf("persisted suggestion %d = %v, want %v", id, saved, wants[id-1])
		}
		if n, err := GetNumberOfTowers(dir, gen.Name()); err != nil || n != 1 {
			t.Fatalf("tower count = %d, %v; want 1, nil", n, err)
		}
	}
}

func TestGenerateDefaultTowerName(t *testing.T) {
	spec := Spec{UserSuggestions: []Architecture{{BlockFullyConnected64}}}
	gen := testGenerator(t, spec, &fakeAlgo{})

	res, err := gen.Generate(GenerateArgs{MyID: 1, ModelDir: t.TempDir(), NewTower: passthroughTower(nil)})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got := res.Towers[0].Name; got != "search_generator_0" {
		t.Fatalf("tower name = %q, want %q", got, "search_generator_0")
	}
}

func TestGenerateEnsembleStopAndSkip(t *testing.T) {
	tests := []struct {
		name string
		spec EnsembleSpec
		myID int
	}{
		{name: "nonadaptive stop", spec: EnsembleSpec{SearchType: EnsembleNonAdaptive}, myID: 4},
		{name: "intermixed skip", spec: EnsembleSpec{SearchType: EnsembleIntermixed, TryEnsemblingEvery: 2}, myID: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			algo := &fakeAlgo{arch: Architecture{BlockFullyConnected64}}
			gen := testGenerator(t, Spec{Ensemble: tt.spec}, algo)

			dir := t.TempDir()
			res, err := gen.Generate(GenerateArgs{
				MyID:      tt.myID,
				TrialMode: TrialEnsembleSearch,
				ModelDir:  dir,
				NewTower:  passthroughTower(nil),
			})
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}

			if res.NumTowers != 0 || len(res.Towers) != 0 {
				t.Fatalf("got %d towers, want 0", res.NumTowers)
			}
			if algo.called {
				t.Fatalf("search algorithm ran on a zero-tower trial")
			}
			if n, err := GetNumberOfTowers(dir, gen.Name()); err != nil || n != 0 {
				t.Fatalf("tower count = %d, %v; want 0, nil", n, err)
			}
		})
	}
}

func TestGenerateEnsembleSearchWindow(t *testing.T) {
	spec := Spec{Ensemble: EnsembleSpec{SearchType: EnsembleAdaptive, IncreaseWidthEvery: 4}}
	algo := &fakeAlgo{arch: Architecture{BlockFullyConnected64}}
	gen := testGenerator(t, spec, algo)

	res, err := gen.Generate(GenerateArgs{
		MyID:      10,
		TrialMode: TrialEnsembleSearch,
		ModelDir:  t.TempDir(),
		Trials:    history(1, 2, 3, 4, 5, 6, 7, 8, 9),
		NewTower:  passthroughTower(nil),
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if res.NumTowers != 1 {
		t.Fatalf("got %d towers, want 1", res.NumTowers)
	}

	ids := make([]int, len(algo.gotRelevant))
	for i, tr := range algo.gotRelevant {
		ids[i] = tr.ID
	}
	if !sameIDs(ids, []int{8, 9}) {
		t.Fatalf("search algorithm saw trials %v, want [8 9]", ids)
	}
}

func TestGenerateEnsembleRejectsUnknownDiscipline(t *testing.T) {
	gen := testGenerator(t, Spec{}, &fakeAlgo{})
	_, err := gen.Generate(GenerateArgs{
		MyID:      3,
		TrialMode: TrialEnsembleSearch,
		ModelDir:  t.TempDir(),
		NewTower:  passthroughTower(nil),
	})
	if _, ok := err.(UnsupportedConfigError); !ok {
		t.Fatalf("Generate returned %v, want UnsupportedConfigError", err)
	}
}

func TestGenerateDefaultSearchesFullHistory(t *testing.T) {
	algo := &fakeAlgo{arch: Architecture{BlockFullyConnected64}}
	gen := testGenerator(t, Spec{}, algo)

	_, err := gen.Generate(GenerateArgs{
		MyID:     4,
		ModelDir: t.TempDir(),
		Trials:   history(1, 2, 3),
		NewTower: passthroughTower(nil),
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	ids := make([]int, len(algo.gotRelevant))
	for i, tr := range algo.gotRelevant {
		ids[i] = tr.ID
	}
	if !sameIDs(ids, []int{1, 2, 3}) {
		t.Fatalf("search algorithm saw trials %v, want the full history", ids)
	}
}

func TestGenerateSnapshotLineage(t *testing.T) {
	parentDir := t.TempDir()
	trials := []Trial{{ID: 2, ModelDir: parentDir}}

	tests := []struct {
		name        string
		transfer    TransferLearningType
		wantPrev    int
		wantLineage string
	}{
		{name: "snapshot transfers the parent", transfer: TransferSnapshot, wantPrev: 2, wantLineage: parentDir},
		{name: "no transfer starts fresh", transfer: TransferNone, wantPrev: 0, wantLineage: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			algo := &fakeAlgo{arch: Architecture{BlockFullyConnected64}, prev: 2}
			gen := testGenerator(t, Spec{TransferLearning: tt.transfer}, algo)

			var gotPrev int
			res, err := gen.Generate(GenerateArgs{
				MyID:     3,
				ModelDir: t.TempDir(),
				Trials:   trials,
				NewTower: passthroughTower(&gotPrev),
			})
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}

			if gotPrev != tt.wantPrev {
				t.Fatalf("tower builder got prevTrial = %d, want %d", gotPrev, tt.wantPrev)
			}
			if res.Towers[0].PreviousModelDir != tt.wantLineage {
				t.Fatalf("lineage = %q, want %q", res.Towers[0].PreviousModelDir, tt.wantLineage)
			}
		})
	}
}

// distillationHistory persists a few exploration trials (odd ids under every=2) with one tower
// each, scoring trial 3 best.
func distillationHistory(t *testing.T, gen *SearchCandidateGenerator) []Trial {
	t.Helper()

	base := t.TempDir()
	var trials []Trial
	for _, id := range []int{1, 2, 3, 4, 5} {
		dir := filepath.Join(base, strconv.Itoa(id))
		tr := Trial{ID: id, ModelDir: dir, Metrics: map[string]float64{"loss": float64(10 - id)}}

		if id%2 != 0 {
			arch := Architecture{BlockConvolution3x3, BlockFlatten, BlockFullyConnected64}
			if id == 3 {
				tr.Metrics["loss"] = 0.1
				arch = Architecture{BlockFullyConnected128}
			}
			if err := SaveArchitecture(dir, id, arch); err != nil {
				t.Fatalf("SaveArchitecture failed: %v", err)
			}
			if err := SetNumberOfTowers(dir, gen.Name(), 1); err != nil {
				t.Fatalf("SetNumberOfTowers failed: %v", err)
			}
		}
		trials = append(trials, tr)
	}
	return trials
}

func TestGenerateDistillationClonesBestExploration(t *testing.T) {
	spec := Spec{Ensemble: EnsembleSpec{SearchType: EnsembleIntermixed, TryEnsemblingEvery: 2}}
	algo := &fakeAlgo{arch: Architecture{BlockFullyConnected64}}
	gen := testGenerator(t, spec, algo)

	trials := distillationHistory(t, gen)
	dir := t.TempDir()

	res, err := gen.Generate(GenerateArgs{
		MyID:      6,
		TrialMode: TrialDistillation,
		ModelDir:  dir,
		Trials:    trials,
		NewTower:  passthroughTower(nil),
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if algo.called {
		t.Fatalf("search algorithm ran during a distillation clone")
	}
	if res.NumTowers != 1 {
		t.Fatalf("got %d towers, want 1", res.NumTowers)
	}

	want := Architecture{BlockFullyConnected128}
	if !res.Towers[0].Architecture.Equal(want) {
		t.Fatalf("cloned architecture = %v, want %v (trial 3)", res.Towers[0].Architecture, want)
	}
	if res.Towers[0].PreviousModelDir != trials[2].ModelDir {
		t.Fatalf("clone lineage = %q, want trial 3's directory", res.Towers[0].PreviousModelDir)
	}

	if saved, err := LoadArchitecture(dir, 6); err != nil || !saved.Equal(want) {
		t.Fatalf("clone wasn't re-persisted: %v, %v", saved, err)
	}
	if n, err := GetNumberOfTowers(dir, gen.Name()); err != nil || n != 1 {
		t.Fatalf("tower count = %d, %v; want 1, nil", n, err)
	}
}

func TestGenerateDistillationRequiresSingleTower(t *testing.T) {
	spec := Spec{Ensemble: EnsembleSpec{SearchType: EnsembleIntermixed, TryEnsemblingEvery: 2}}
	gen := testGenerator(t, spec, &fakeAlgo{})

	srcDir := t.TempDir()
	if err := SetNumberOfTowers(srcDir, gen.Name(), 2); err != nil {
		t.Fatalf("SetNumberOfTowers failed: %v", err)
	}
	trials := []Trial{{ID: 1, ModelDir: srcDir, Metrics: map[string]float64{"loss": 0.5}}}

	_, err := gen.Generate(GenerateArgs{
		MyID:      4,
		TrialMode: TrialDistillation,
		ModelDir:  t.TempDir(),
		Trials:    trials,
		NewTower:  passthroughTower(nil),
	})
	if _, ok := err.(InvariantError); !ok {
		t.Fatalf("Generate returned %v, want InvariantError", err)
	}
}

func TestGenerateDistillationFallsThroughToSearch(t *testing.T) {
	spec := Spec{Ensemble: EnsembleSpec{SearchType: EnsembleIntermixed, TryEnsemblingEvery: 2}}
	algo := &fakeAlgo{arch: Architecture{BlockFullyConnected64}}
	gen := testGenerator(t, spec, algo)

	// the only past trials are exploitation trials, so there is nothing to distill from
	_, err := gen.Generate(GenerateArgs{
		MyID:      5,
		TrialMode: TrialDistillation,
		ModelDir:  t.TempDir(),
		Trials:    history(2, 4),
		NewTower:  passthroughTower(nil),
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !algo.called {
		t.Fatalf("fallthrough didn't reach the search algorithm")
	}
}

func TestGenerateDistillationWithoutIntermixedSearches(t *testing.T) {
	spec := Spec{Ensemble: EnsembleSpec{SearchType: EnsembleAdaptive}}
	algo := &fakeAlgo{arch: Architecture{BlockFullyConnected64}}
	gen := testGenerator(t, spec, algo)

	res, err := gen.Generate(GenerateArgs{
		MyID:      3,
		TrialMode: TrialDistillation,
		ModelDir:  t.TempDir(),
		Trials:    history(1, 2),
		NewTower:  passthroughTower(nil),
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !algo.called || res.NumTowers != 1 {
		t.Fatalf("non-intermixed distillation should search the full history")
	}
}
