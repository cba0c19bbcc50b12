package costfuncs

import (
	"github.com/pkg/errors"

	ms "github.com/maxxd5/model-search"
)

// Tuning for the parallel batch loops.
const (
	opsPerThread  = 64
	threadsPerCPU = 1
)

// FromString returns a fresh cost function for the given TypeString, so that a loss can be
// picked from configuration.
func FromString(name string) (ms.CostFunction, error) {
	switch name {
	case CrossEntropy().TypeString():
		return CrossEntropy(), nil
	case MSE().TypeString():
		return MSE(), nil
	case Abs().TypeString():
		return Abs(), nil
	case Huber(1).TypeString():
		return Huber(1), nil
	default:
		return nil, errors.Errorf("No cost function with TypeString %q", name)
	}
}

// checkBatch validates the batch shape shared by every cost function and fills in unit weights
// when none were given.
func checkBatch(logits [][]float64, labels, weights []float64) ([]float64, error) {
	if len(labels) != len(logits) {
		return nil, errors.Errorf("Batch sizes of logits and labels differ (%d != %d)", len(logits), len(labels))
	}
	if weights == nil {
		weights = make([]float64, len(logits))
		for i := range weights {
			weights[i] = 1
		}
	} else if len(weights) != len(logits) {
		return nil, errors.Errorf("Batch sizes of logits and weights differ (%d != %d)", len(logits), len(weights))
	}
	return weights, nil
}

// scalarOuts flattens single-logit rows for the regression cost functions, which compare one
// output per example against its label.
func scalarOuts(logits [][]float64) ([]float64, error) {
	outs := make([]float64, len(logits))
	for i, row := range logits {
		if len(row) != 1 {
			return nil, errors.Errorf("Regression cost requires one logit per example, example %d has %d", i, len(row))
		}
		outs[i] = row[0]
	}
	return outs, nil
}
