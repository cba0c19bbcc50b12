package costfuncs

import (
	"fmt"

	"go.uber.org/atomic"

	"github.com/maxxd5/model-search/utils"
)

type mse bool

// MSE returns the mean squared error cost function, which implements modelsearch.CostFunction.
// It compares one logit per example against the example's label.
func MSE() *mse {
	m := mse(false)
	return &m
}

// L2 is a proxy for MSE
func L2() *mse {
	return MSE()
}

func (m *mse) TypeString() string {
	return "mse"
}

func (m *mse) PrintOuts() *mse {
	*m = mse(true)
	return m
}

func (m *mse) NoPrint() *mse {
	*m = mse(false)
	return m
}

func (m *mse) Cost(logits [][]float64, labels, weights []float64) (float64, error) {
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
		d := outs[i] - labels[i]
		sum.Add(weights[i] * 0.5 * d * d)
		wSum.Add(weights[i])
	}, opsPerThread, threadsPerCPU)

	if bool(*m) {
		fmt.Println(labels, outs)
	}

	if wSum.Load() == 0 {
		return 0, nil
	}
	return sum.Load() / wSum.Load(), nil
}

func (m *mse) Derivs(logits [][]float64, labels, weights []float64) ([]float64, error) {
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
		ds[i] = weights[i] * (outs[i] - labels[i])
	}, opsPerThread, threadsPerCPU)

	return ds, nil
}

