package costfuncs

import (
	"fmt"
	"math"

	"go.uber.org/atomic"

	"github.com/maxxd5/model-search/utils"
)

type huber struct {
	δ     float64
	print bool
}

// Huber returns the Huber cost function, which implements modelsearch.CostFunction. δ controls
// the bounds of the transition between MSE and Absolute Value.
func Huber(δ float64) *huber {
	h := huber{δ: δ}
	return &h
}

func (h *huber) TypeString() string {
	return "huber"
}

func (h *huber) PrintOuts() *huber {
	h.print = true
	return h
}

func (h *huber) NoPrint() *huber {
	h.print = false
	return h
}

func (h *huber) Cost(logits [][]float64, labels, weights []float64) (float64, error) {
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
		d := math.Abs(outs[i] - labels[i])
		if d <= h.δ {
			sum.Add(weights[i] * 0.5 * d * d)
		} else {
			sum.Add(weights[i] * (h.δ*d - 0.5*h.δ*h.δ))
		}
		wSum.Add(weights[i])
	}, opsPerThread, threadsPerCPU)

	if h.print {
		fmt.Println(labels, outs)
	}

	if wSum.Load() == 0 {
		return 0, nil
	}
	return sum.Load() / wSum.Load(), nil
}

func (h *huber) Derivs(logits [][]float64, labels, weights []float64) ([]float64, error) {
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
		d := outs[i] - labels[i]
		if !(d < -h.δ || d > h.δ) {
			ds[i] = weights[i] * d
		} else {
			ds[i] = weights[i] * h.δ * math.Copysign(1, d)
		}
	}, opsPerThread, threadsPerCPU)

	return ds, nil
}

