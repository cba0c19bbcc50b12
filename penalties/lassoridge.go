// Package penalties provides weight-regularization penalties. A Penalty contributes a scalar
// term to a loss from a set of trainable weights, and the matching per-weight gradient term.
package penalties

import (
	"math"
)

// Penalty is one weight-regularization scheme.
type Penalty interface {
	// TypeString returns the string corresponding to the type of the Penalty.
	TypeString() string

	// Loss returns the penalty term to add to a loss, summed over all weights.
	Loss(weights [][]float64) float64

	// Grad returns the penalty's contribution to the gradient of a single weight.
	Grad(w float64) float64
}

// **********************************************
// L1 (Lasso)
// **********************************************

type l1 float64

// λ is a small value close to 0 where λ > 0
func L1(λ float64) *l1 {
	p := l1(λ)
	return &p
}

// λ is a small value close to 0 where λ > 0
func Lasso(λ float64) *l1 {
	return L1(λ)
}

func (p *l1) TypeString() string {
	return "l1-lasso"
}

func (p *l1) Loss(weights [][]float64) float64 {
	λ := float64(*p)
	var sum float64
	for _, row := range weights {
		for _, w := range row {
			sum += math.Abs(w)
		}
	}
	return λ * sum
}

func (p *l1) Grad(w float64) float64 {
	return float64(*p) * math.Copysign(1, w)
}

// **********************************************
// L2 (Ridge)
// **********************************************

type l2 float64

// λ is a small value close to 0 where λ > 0
func L2(λ float64) *l2 {
	p := l2(λ)
	return &p
}

// λ is a small value close to 0 where λ > 0
func Ridge(λ float64) *l2 {
	return L2(λ)
}

func (p *l2) TypeString() string {
	return "l2-ridge"
}

func (p *l2) Loss(weights [][]float64) float64 {
	λ := float64(*p)
	var sum float64
	for _, row := range weights {
		for _, w := range row {
			sum += w * w
		}
	}
	return λ * sum
}

func (p *l2) Grad(w float64) float64 {
	return 2 * float64(*p) * w
}
