package initializers

import "math/rand"

type uniform struct {
	lower, upper float64
	seed         int64
}

// Uniform returns an Initializer that draws from a uniform random sample within a range, which
// can be set by Range. Initialization is deterministic for a given seed, so that projection
// layers are reproducible across re-builds of the same trial.
//
// Uniform is the default Initializer.
func Uniform() *uniform {
	return &uniform{defaultValue["uniform-lower"], defaultValue["uniform-upper"], defaultSeed}
}

// Range sets the range of a Uniform Initializer, returning the same Initializer.
func (u *uniform) Range(lower, upper float64) *uniform {
	u.lower = lower
	u.upper = upper
	return u
}

// Seed sets the RNG seed, returning the same Initializer.
func (u *uniform) Seed(seed int64) *uniform {
	u.seed = seed
	return u
}

func (u *uniform) TypeString() string {
	return "uniform"
}

func (u *uniform) Init(fanIn, fanOut int) [][]float64 {
	rng := rand.New(rand.NewSource(u.seed))

	ws := make([][]float64, fanIn)
	for i := range ws {
		ws[i] = make([]float64, fanOut)
		for j := range ws[i] {
			ws[i][j] = rng.Float64()*(u.upper-u.lower) + u.lower
		}
	}
	return ws
}
