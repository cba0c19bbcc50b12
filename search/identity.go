package search

import (
	ms "github.com/maxxd5/model-search"
)

type identity struct {
	seed ms.Architecture
}

// Identity returns the search algorithm that always suggests the seed architecture, unchanged
// and with fresh weights. Useful for replaying a known architecture through the trial
// machinery.
func Identity(seed ms.Architecture) *identity {
	return &identity{seed: ms.NewArchitecture(seed...)}
}

func (s *identity) TypeString() string {
	return "identity"
}

func (s *identity) Suggest(relevantTrials []ms.Trial, hparams map[string]float64, myID int, modelDir string) (ms.Architecture, int, error) {
	out := make(ms.Architecture, len(s.seed))
	copy(out, s.seed)
	return out, 0, nil
}
