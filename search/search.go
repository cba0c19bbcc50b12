// Package search provides the concrete search algorithms dispatched on a spec's SearchType.
// The set of recognized types is closed; an unrecognized tag is an error, never a silent
// default.
package search

import (
	ms "github.com/maxxd5/model-search"
)

// New returns the search algorithm selected by the given type tag. meta is the external
// trial-ranking collaborator; the identity strategy ignores it.
func New(t ms.SearchType, spec ms.Spec, meta ms.Metadata) (ms.SearchAlgorithm, error) {
	switch t {
	case ms.SearchIdentity:
		return Identity(spec.InitialArchitecture), nil
	case ms.SearchCoordinateDescent:
		return CoordinateDescent(spec, meta), nil
	default:
		return nil, ms.UnsupportedConfigError{Field: "search type", Value: string(t)}
	}
}

// mutationBlocks is the cycle of tags a mutation may introduce. FLATTEN is excluded; the phase
// separator is re-derived by canonicalization, never chosen.
func mutationBlocks() []ms.BlockType {
	var out []ms.BlockType
	for _, b := range ms.BlockTypes() {
		if b != ms.BlockFlatten {
			out = append(out, b)
		}
	}
	return out
}
