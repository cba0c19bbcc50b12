package search

import (
	"github.com/pkg/errors"

	ms "github.com/maxxd5/model-search"
)

type coordinateDescent struct {
	spec ms.Spec
	meta ms.Metadata
}

// CoordinateDescent returns the coordinate-descent search algorithm: each suggestion is a
// single-block mutation of the best relevant trial's persisted architecture, inheriting that
// trial's weights. With no relevant history it falls back to the spec's initial architecture
// with fresh weights.
//
// Mutation is a deterministic function of the trial id (and the optional "new_block" hparam),
// so replaying the same history reproduces the same suggestion.
func CoordinateDescent(spec ms.Spec, meta ms.Metadata) *coordinateDescent {
	return &coordinateDescent{spec: spec, meta: meta}
}

func (s *coordinateDescent) TypeString() string {
	return "coordinate-descent"
}

func (s *coordinateDescent) Suggest(relevantTrials []ms.Trial, hparams map[string]float64, myID int, modelDir string) (ms.Architecture, int, error) {
	best := s.meta.BestTrial(relevantTrials)
	if best == nil {
		return ms.NewArchitecture(s.spec.InitialArchitecture...), 0, nil
	}

	arch, err := ms.LoadArchitecture(best.ModelDir, best.ID)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "Can't mutate architecture of trial %d", best.ID)
	}

	return s.mutate(arch, hparams, myID), best.ID, nil
}

// mutate grows the architecture by one block while below MaximumDepth, and swaps one block
// otherwise. The result is re-canonicalized, so the phase ordering invariant holds regardless
// of where the mutation lands.
func (s *coordinateDescent) mutate(arch ms.Architecture, hparams map[string]float64, myID int) ms.Architecture {
	candidates := mutationBlocks()

	pick := myID
	if v, ok := hparams["new_block"]; ok && v >= 0 {
		pick = int(v)
	}
	block := candidates[pick%len(candidates)]

	depth := 0
	for _, b := range arch {
		if b != ms.BlockFlatten {
			depth++
		}
	}

	if s.spec.MaximumDepth <= 0 || depth < s.spec.MaximumDepth {
		return ms.NewArchitecture(append(arch, block)...)
	}

	out := make(ms.Architecture, len(arch))
	copy(out, arch)

	pos := myID % len(out)
	for out[pos] == ms.BlockFlatten {
		pos = (pos + 1) % len(out)
	}
	if out[pos] == block {
		block = candidates[(pick+1)%len(candidates)]
	}
	out[pos] = block

	return ms.NewArchitecture(out...)
}
