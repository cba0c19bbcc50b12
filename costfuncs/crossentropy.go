package costfuncs

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/atomic"

	ms "github.com/maxxd5/model-search"
	"github.com/maxxd5/model-search/utils"
)

type crossEntropy bool

// CrossEntropy returns the softmax cross-entropy cost function, which implements
// modelsearch.CostFunction. Labels are class indices; logits are one row of class scores per
// example.
func CrossEntropy() *crossEntropy {
	c := crossEntropy(false)
	return &c
}

// NegativeLog is a proxy for CrossEntropy
func NegativeLog() *crossEntropy {
	return CrossEntropy()
}

func (c *crossEntropy) TypeString() string {
	return "cross-entropy"
}

func (c *crossEntropy) PrintOuts() *crossEntropy {
	*c = crossEntropy(true)
	return c
}

func (c *crossEntropy) NoPrint() *crossEntropy {
	*c = crossEntropy(false)
	return c
}

func (c *crossEntropy) Cost(logits [][]float64, labels, weights []float64) (float64, error) {
	weights, err := checkBatch(logits, labels, weights)
	if err != nil {
		return 0, err
	}

	sum := atomic.NewFloat64(0)
	wSum := atomic.NewFloat64(0)

	utils.MultiThread(0, len(logits), func(i int) {
		ps := softmax(logits[i])
		t := int(labels[i])
		if t < 0 || t >= len(ps) {
			// surfaced after the parallel section
			return
		}

		sum.Add(-weights[i] * math.Log(math.Max(ps[t], 1e-12)))
		wSum.Add(weights[i])
	}, opsPerThread, threadsPerCPU)

	if err := checkClassRange(logits, labels); err != nil {
		return 0, err
	}

	if bool(*c) {
		fmt.Println(labels, logits)
	}

	if wSum.Load() == 0 {
		return 0, nil
	}
	return sum.Load() / wSum.Load(), nil
}

// Derivs returns the flattened gradient with respect to the logits, one block of class scores
// per example: softmax(logits) minus the one-hot target, scaled by the example's weight.
func (c *crossEntropy) Derivs(logits [][]float64, labels, weights []float64) ([]float64, error) {
	weights, err := checkBatch(logits, labels, weights)
	if err != nil {
		return nil, err
	}
	if err := checkClassRange(logits, labels); err != nil {
		return nil, err
	}

	if len(logits) == 0 {
		return nil, nil
	}
	dim := len(logits[0])
	ds := make([]float64, len(logits)*dim)

	utils.MultiThread(0, len(logits), func(i int) {
		ps := softmax(logits[i])
		t := int(labels[i])
		for j := range ps {
			d := ps[j]
			if j == t {
				d -= 1
			}
			ds[i*dim+j] = weights[i] * d
		}
	}, opsPerThread, threadsPerCPU)

	return ds, nil
}

func softmax(row []float64) []float64 {
	max := math.Inf(-1)
	for _, v := range row {
		if v > max {
			max = v
		}
	}

	ps := make([]float64, len(row))
	var sum float64
	for i, v := range row {
		ps[i] = math.Exp(v - max)
		sum += ps[i]
	}
	for i := range ps {
		ps[i] /= sum
	}
	return ps
}

func checkClassRange(logits [][]float64, labels []float64) error {
	for i := range logits {
		t := int(labels[i])
		if t < 0 || t >= len(logits[i]) {
			return errors.Errorf("Label %v of example %d is outside the %d classes", labels[i], i, len(logits[i]))
		}
	}
	return nil
}

var _ ms.CostFunction = CrossEntropy()
