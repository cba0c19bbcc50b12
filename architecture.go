package modelsearch

import (
	"strings"

	"github.com/pkg/errors"
)

// BlockType is the tag of one network block. The enumeration is closed; architectures are
// ordered sequences of these tags, and order is semantically significant.
type BlockType string

const (
	BlockConvolution3x3        BlockType = "CONVOLUTION_3X3"
	BlockConvolution5x5        BlockType = "CONVOLUTION_5X5"
	BlockDownsampleConvolution BlockType = "DOWNSAMPLE_CONVOLUTION_3X3"
	BlockFlatten               BlockType = "FLATTEN"
	BlockFullyConnected64      BlockType = "FIXED_OUTPUT_FULLY_CONNECTED_64"
	BlockFullyConnected128     BlockType = "FIXED_OUTPUT_FULLY_CONNECTED_128"
	BlockFullyConnected256     BlockType = "FIXED_OUTPUT_FULLY_CONNECTED_256"
	BlockFullyConnected512     BlockType = "FIXED_OUTPUT_FULLY_CONNECTED_512"
)

// blockTypes lists every recognized tag, in a stable order used by search mutation.
var blockTypes = []BlockType{
	BlockConvolution3x3,
	BlockConvolution5x5,
	BlockDownsampleConvolution,
	BlockFlatten,
	BlockFullyConnected64,
	BlockFullyConnected128,
	BlockFullyConnected256,
	BlockFullyConnected512,
}

// BlockTypes returns every recognized block tag, in the stable order search mutation cycles
// through.
func BlockTypes() []BlockType {
	out := make([]BlockType, len(blockTypes))
	copy(out, blockTypes)
	return out
}

// ParseBlockType converts a persisted tag name back into a BlockType. Unknown names are an
// error; they are never silently defaulted.
func ParseBlockType(s string) (BlockType, error) {
	for _, b := range blockTypes {
		if string(b) == s {
			return b, nil
		}
	}
	return "", UnsupportedConfigError{Field: "block type", Value: s}
}

// isDense reports whether the block belongs to the fully-connected phase of an architecture.
func isDense(b BlockType) bool {
	return strings.HasPrefix(string(b), "FIXED_OUTPUT_FULLY_CONNECTED")
}

// Architecture is an ordered sequence of block tags representing one candidate network
// structure. Construct with NewArchitecture so that the canonical ordering rule is applied
// exactly once; an Architecture is never mutated afterwards.
type Architecture []BlockType

// NewArchitecture canonicalizes the given blocks into a valid Architecture:
//   - convolutional blocks keep their relative order, before all dense blocks
//   - dense blocks keep their relative order, after all convolutional blocks
//   - exactly one FLATTEN block separates the phases when both are present
//
// This mirrors how block ordering is fixed once at suggestion time; decoding a persisted
// architecture does not re-canonicalize.
func NewArchitecture(blocks ...BlockType) Architecture {
	var conv, dense Architecture
	for _, b := range blocks {
		switch {
		case b == BlockFlatten:
			// re-inserted below at the phase boundary
		case isDense(b):
			dense = append(dense, b)
		default:
			conv = append(conv, b)
		}
	}

	if len(conv) == 0 && len(dense) == 0 {
		return Architecture{}
	}

	out := make(Architecture, 0, len(conv)+len(dense)+1)
	out = append(out, conv...)
	if len(conv) > 0 && len(dense) > 0 {
		out = append(out, BlockFlatten)
	}
	out = append(out, dense...)
	return out
}

// Equal reports whether two architectures hold the identical ordered tag sequence.
func (a Architecture) Equal(b Architecture) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (a Architecture) String() string {
	strs := make([]string, len(a))
	for i, b := range a {
		strs[i] = string(b)
	}
	return "[" + strings.Join(strs, " ") + "]"
}

// copyArch returns an independent copy, so callers can hand architectures out without aliasing
// the stored sequence.
func copyArch(a Architecture) Architecture {
	out := make(Architecture, len(a))
	copy(out, a)
	return out
}

// decodeArchitecture parses one persisted tag sequence, preserving order exactly.
func decodeArchitecture(lines []string) (Architecture, error) {
	arch := make(Architecture, 0, len(lines))
	for i, line := range lines {
		b, err := ParseBlockType(line)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't decode architecture, bad tag on line %d", i+1)
		}
		arch = append(arch, b)
	}
	return arch, nil
}
