package modelsearch

import (
	"math"

	"github.com/maxxd5/model-search/hyperparams"
	"github.com/maxxd5/model-search/penalties"
)

// Node names recorded by the optimizer-shaping transforms. Tests assert presence and absence
// of these signatures, so they are part of the package's observable surface.
const (
	nodeL2WeightLoss     = "l2_weight_loss"
	nodeClipByGlobalNorm = "clip_by_global_norm"
	nodeExponentialDecay = "exponential_decay"
	nodeGradientsAddN    = "gradients_add_n"
)

// applyLearningRateSpec runs the ordered optimizer-shaping transforms over one optimization
// scope. Transforms are independently optional; each one activates if and only if its
// triggering field is set, and an inactive transform leaves the computation (and the Graph)
// untouched. The fixed order:
//
//	(1) L2 regularization: adds l2 * sum(w^2) over trainable weights to the loss.
//	(2) Gradient clipping: rescales the gradient vector so its global norm does not exceed
//	    GradientMaxNorm.
//	(3) Learning-rate decay: replaces the scalar rate with an exponential schedule keyed by
//	    the global step.
//
// Gradients are mutated in place and returned.
func applyLearningRateSpec(g *Graph, scope string, spec LearningRateSpec, loss float64, grads []float64, weights [][]float64, step int) TrainOp {
	if spec.L2Regularization != 0 {
		g.AddNode(scoped(scope, nodeL2WeightLoss))
		loss += penalties.Ridge(spec.L2Regularization).Loss(weights)
	}

	if spec.GradientMaxNorm != 0 {
		g.AddNode(scoped(scope, nodeClipByGlobalNorm))

		var norm float64
		for _, d := range grads {
			norm += d * d
		}
		norm = math.Sqrt(norm)

		if norm > spec.GradientMaxNorm {
			scale := spec.GradientMaxNorm / norm
			for i := range grads {
				grads[i] *= scale
			}
		}
	}

	rate := spec.LearningRate
	if spec.ExponentialDecaySteps > 0 && spec.ExponentialDecayRate != 0 {
		g.AddNode(scoped(scope, nodeExponentialDecay))
		rate = hyperparams.Exponential(spec.LearningRate, spec.ExponentialDecayRate, spec.ExponentialDecaySteps).Value(step)
	}

	return TrainOp{
		Scope:        scope,
		Loss:         loss,
		Gradients:    grads,
		LearningRate: rate,
	}
}
