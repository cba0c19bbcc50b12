package initializers

// defaultSeed keeps initialization reproducible when callers don't pick a seed themselves.
const defaultSeed int64 = 1

var defaultValue = map[string]float64{
	"uniform-lower": -0.1,
	"uniform-upper": 0.1,
	"varscl-factor": 2.0,
}

// SetDefault changes a package-level default. The recognized keys are "uniform-lower",
// "uniform-upper", and "varscl-factor". Unknown keys are ignored.
func SetDefault(key string, value float64) {
	if _, ok := defaultValue[key]; ok {
		defaultValue[key] = value
	}
}
