package hyperparams

import (
	"encoding/json"
	"math"
	"os"

	"github.com/pkg/errors"
)

type exponential struct {
	Base  float64
	Rate  float64
	Steps int
}

// Exponential returns an exponentially decaying schedule keyed by global step:
//
//	value(step) = base * rate^(step/steps)
//
// The exponent is continuous (not staircased), so the value shrinks smoothly by a factor of
// 'rate' every 'steps' steps.
func Exponential(base, rate float64, steps int) *exponential {
	return &exponential{Base: base, Rate: rate, Steps: steps}
}

func (e *exponential) TypeString() string {
	return "exponential"
}

func (e *exponential) Value(step int) float64 {
	if e.Steps <= 0 {
		return e.Base
	}

	return e.Base * math.Pow(e.Rate, float64(step)/float64(e.Steps))
}

func (e *exponential) Save(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0700); err != nil {
		return errors.Errorf("Failed to create directory %q", dirPath)
	}

	f, err := os.Create(dirPath + "/exponential.txt")
	if err != nil {
		return errors.Errorf("Failed to create file %q in %q", "exponential.txt", dirPath)
	}

	defer f.Close()

	enc := json.NewEncoder(f)
	if err = enc.Encode(e); err != nil {
		return errors.Errorf("Failed to encode JSON to file %q in %q", "exponential.txt", dirPath)
	}

	return nil
}

func (e *exponential) Load(dirPath string) error {
	f, err := os.Open(dirPath + "/exponential.txt")
	if err != nil {
		return errors.Errorf("Failed to open file %q in %q", "exponential.txt", dirPath)
	}

	defer f.Close()

	dec := json.NewDecoder(f)
	if err = dec.Decode(e); err != nil {
		return errors.Wrapf(err, "Failed to decode JSON from file %q in %q", "exponential.txt", dirPath)
	}

	return nil
}
