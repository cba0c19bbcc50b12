package costfuncs

import (
	"fmt"
	"math"

	"go.uber.org/atomic"

	"github.com/maxxd5/model-search/utils"
)

type abs bool

// Abs returns the Absolute Value cost function, which implements modelsearch.CostFunction.
func Abs() *abs {
	a := abs(false)
	return &a
}

// L1 is a proxy for Abs
func L1() *abs {
	return Abs()
}

func (a *abs) TypeString() string {
	return "abs"
}

func (a *abs) PrintOuts() *abs {
	*a = abs(true)
	return a
}

func (a *abs) NoPrint() *abs {
	*a = abs(false)
	return a
}

func (a *abs) Cost(logits [][]float64, labels, weights []float64) (float64, error) {
	weights, err := checkBatch(logits, labels, weights)
	if err != nil {
		return 0, err
	}
	outs, err := scalarOuts(logits)
	if err != nil {
		return 0, err
	}

	sum := atomic.NewFloat64(0)
	wSum := atomic.NewFloat64(0)

	utils.MultiThread(0, len(outs), func(i int) {
		sum.Add(weights[i] * math.Abs(outs[i]-labels[i]))
		wSum.Add(weights[i])
	}, opsPerThread, threadsPerCPU)

	if bool(*a) {
		fmt.Println(labels, outs)
	}

	if wSum.Load() == 0 {
		return 0, nil
	}
	return sum.Load() / wSum.Load(), nil
}

func (a *abs) Derivs(logits [][]float64, labels, weights []float64) ([]float64, error) {
	weights, err := checkBatch(logits, labels, weights)
	if err != nil {
		return nil, err
	}
	outs, err := scalarOuts(logits)
	if err != nil {
		return nil, err
	}

	ds := make([]float64, len(outs))
	utils.MultiThread(0, len(outs), func(i int) {
		ds[i] = weights[i] * math.Copysign(1, outs[i]-labels[i])
	}, opsPerThread, threadsPerCPU)

	return ds, nil
}

