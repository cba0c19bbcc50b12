package modelsearch

import (
	"strconv"

	"github.com/pkg/errors"
)

const nodeMaybeProj = "maybe_proj"

// meanLogits combines the logits of one or more towers into the single logits matrix a task
// consumes. With one tower this is the tower's logits unchanged; with several it is their
// element-wise mean (anything smarter than a mean belongs to the ensembler, which sits outside
// this package).
func meanLogits(towers []Tower) ([][]float64, error) {
	var with []Tower
	for _, t := range towers {
		if len(t.Logits) > 0 {
			with = append(with, t)
		}
	}
	if len(with) == 0 {
		return nil, errors.Errorf("Can't build model spec, no tower has logits")
	}
	if len(with) == 1 {
		return with[0].Logits, nil
	}

	first := with[0].Logits
	out := make([][]float64, len(first))
	for i := range out {
		out[i] = make([]float64, len(first[i]))
	}

	for _, t := range with {
		if len(t.Logits) != len(out) {
			return nil, errors.Errorf("Can't build model spec, towers disagree on batch size (%d != %d)", len(t.Logits), len(out))
		}
		for i, row := range t.Logits {
			if len(row) != len(out[i]) {
				return nil, errors.Errorf("Can't build model spec, towers disagree on logits dimension")
			}
			for j, v := range row {
				out[i][j] += v
			}
		}
	}

	n := float64(len(with))
	for i := range out {
		for j := range out[i] {
			out[i][j] /= n
		}
	}
	return out, nil
}

// projectLogits applies a linear output projection when the logits' trailing dimension differs
// from the task's number of classes, and records the projection node so its presence can be
// asserted by dimension match. Returns the (possibly projected) logits and the projection
// weights, nil when no projection was needed.
func projectLogits(g *Graph, scope string, logits [][]float64, numClasses int, init Initializer) ([][]float64, [][]float64) {
	if numClasses <= 0 || len(logits) == 0 || len(logits[0]) == numClasses {
		return logits, nil
	}

	dim := len(logits[0])
	g.AddNode(scoped(scope, nodeMaybeProj))

	ws := init.Init(dim, numClasses)
	out := make([][]float64, len(logits))
	for i, row := range logits {
		out[i] = make([]float64, numClasses)
		for j := 0; j < numClasses; j++ {
			var sum float64
			for k, v := range row {
				sum += v * ws[k][j]
			}
			out[i][j] = sum
		}
	}
	return out, ws
}

// resolveWeights routes the per-example weight vector for one task. Routing is a configuration
// contract: the key is looked up in exactly the mapping WeightIsAFeature selects, and a missing
// key surfaces immediately as a MissingKeyError rather than falling back to the other mapping.
func resolveWeights(cfg TaskConfig, features map[string][]float64, labels Labels) ([]float64, error) {
	if cfg.WeightFeatureName == "" {
		return nil, nil
	}

	if cfg.WeightIsAFeature {
		w, ok := features[cfg.WeightFeatureName]
		if !ok {
			return nil, MissingKeyError{Key: cfg.WeightFeatureName, In: "features"}
		}
		return w, nil
	}

	w, ok := labels.lookup(cfg.WeightFeatureName)
	if !ok {
		return nil, MissingKeyError{Key: cfg.WeightFeatureName, In: "labels"}
	}
	return w, nil
}

// recordTaskTower records the structural nodes of a task-specific tower override, named the way
// the external layer builder scopes them: "<label>_<i>_<generator>/<n>_<BLOCK>".
func recordTaskTower(g *Graph, label, generatorName string, towerIndex int, arch Architecture) {
	towerScope := label + "_" + strconv.Itoa(towerIndex) + "_" + generatorName
	for n, b := range arch {
		g.AddNode(towerScope + "/" + strconv.Itoa(n+1) + "_" + string(b))
	}
}
