package initializers

import (
	"math"
	"math/rand"
)

type varianceScaling struct {
	// either: "in", "out", "avg"
	mode   string
	factor float64
	seed   int64
}

const defaultVarianceMode string = "avg"

// VarianceScaling returns the variance scaling initializer, which has 3 modes and a
// user-defined scaling factor. The three modes can be set by In, Out, and Avg. It defaults to
// Avg. Initialization is deterministic for a given seed.
func VarianceScaling() *varianceScaling {
	return &varianceScaling{defaultVarianceMode, defaultValue["varscl-factor"], defaultSeed}
}

// Factor sets the scaling factor to be used for the Initializer. The default factor can be set
// by SetDefault("varscl-factor").
func (v *varianceScaling) Factor(f float64) *varianceScaling {
	v.factor = f
	return v
}

// In sets the scaling to be based on the number of input values to the layer.
func (v *varianceScaling) In() *varianceScaling {
	v.mode = "in"
	return v
}

// Out sets the scaling to be based on the number of output values of the layer.
func (v *varianceScaling) Out() *varianceScaling {
	v.mode = "out"
	return v
}

// Avg sets the scaling to be based on the average of the numbers of input and output values.
func (v *varianceScaling) Avg() *varianceScaling {
	v.mode = "avg"
	return v
}

// Seed sets the RNG seed, returning the same Initializer.
func (v *varianceScaling) Seed(seed int64) *varianceScaling {
	v.seed = seed
	return v
}

func (v *varianceScaling) TypeString() string {
	return "variance-scaling"
}

func (v *varianceScaling) Init(fanIn, fanOut int) [][]float64 {
	var n float64
	switch v.mode {
	case "in":
		n = float64(fanIn)
	case "out":
		n = float64(fanOut)
	default:
		n = float64(fanIn+fanOut) / 2
	}

	scale := math.Sqrt(v.factor / math.Max(n, 1))
	rng := rand.New(rand.NewSource(v.seed))

	ws := make([][]float64, fanIn)
	for i := range ws {
		ws[i] = make([]float64, fanOut)
		for j := range ws[i] {
			ws[i][j] = rng.NormFloat64() * scale
		}
	}
	return ws
}
