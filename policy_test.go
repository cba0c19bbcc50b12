package modelsearch

import (
	"math"
	"testing"
)

func TestApplyLearningRateSpecAllActive(t *testing.T) {
	g := NewGraph()
	spec := LearningRateSpec{
		LearningRate:          0.1,
		L2Regularization:      0.5,
		GradientMaxNorm:       1,
		ExponentialDecaySteps: 100,
		ExponentialDecayRate:  0.5,
	}

	grads := []float64{1, 1, 1, 1}
	weights := [][]float64{{2}, {1}}

	op := applyLearningRateSpec(g, "", spec, 1, grads, weights, 100)

	// 1 + 0.5 * (4 + 1)
	if op.Loss != 3.5 {
		t.Fatalf("loss = %v, want 3.5", op.Loss)
	}

	// global norm was 2, clipped to 1
	for _, d := range op.Gradients {
		if math.Abs(d-0.5) > 1e-12 {
			t.Fatalf("clipped gradients = %v, want all 0.5", op.Gradients)
		}
	}

	// one full decay period
	if math.Abs(op.LearningRate-0.05) > 1e-12 {
		t.Fatalf("decayed rate = %v, want 0.05", op.LearningRate)
	}

	for _, n := range []string{nodeL2WeightLoss, nodeClipByGlobalNorm, nodeExponentialDecay} {
		if !g.Contains(n) {
			t.Fatalf("transform node %q wasn't recorded", n)
		}
	}
}

func TestApplyLearningRateSpecAllInactive(t *testing.T) {
	g := NewGraph()
	spec := LearningRateSpec{LearningRate: 0.1}

	grads := []float64{3, 4}
	op := applyLearningRateSpec(g, "", spec, 2, grads, nil, 50)

	if op.Loss != 2 {
		t.Fatalf("loss = %v, want 2 untouched", op.Loss)
	}
	if op.Gradients[0] != 3 || op.Gradients[1] != 4 {
		t.Fatalf("gradients = %v, want untouched", op.Gradients)
	}
	if op.LearningRate != 0.1 {
		t.Fatalf("rate = %v, want 0.1 untouched", op.LearningRate)
	}
	if len(g.Nodes()) != 0 {
		t.Fatalf("inactive transforms recorded nodes: %v", g.Nodes())
	}
}

func TestApplyLearningRateSpecOneTransformAtATime(t *testing.T) {
	tests := []struct {
		name     string
		spec     LearningRateSpec
		wantNode string
	}{
		{
			name:     "l2 only",
			spec:     LearningRateSpec{LearningRate: 0.001, L2Regularization: 0.01},
			wantNode: nodeL2WeightLoss,
		},
		{
			name:     "clip only",
			spec:     LearningRateSpec{LearningRate: 0.001, GradientMaxNorm: 3},
			wantNode: nodeClipByGlobalNorm,
		},
		{
			name:     "decay only",
			spec:     LearningRateSpec{LearningRate: 0.001, ExponentialDecaySteps: 100, ExponentialDecayRate: 0.7},
			wantNode: nodeExponentialDecay,
		},
	}

	all := []string{nodeL2WeightLoss, nodeClipByGlobalNorm, nodeExponentialDecay}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraph()
			applyLearningRateSpec(g, "", tt.spec, 1, []float64{1}, [][]float64{{1}}, 10)

			for _, n := range all {
				if n == tt.wantNode && !g.Contains(n) {
					t.Fatalf("node %q missing; nodes: %v", n, g.Nodes())
				}
				if n != tt.wantNode && g.Contains(n) {
					t.Fatalf("node %q present without its knob; nodes: %v", n, g.Nodes())
				}
			}
		})
	}
}

func TestApplyLearningRateSpecClipBelowNorm(t *testing.T) {
	g := NewGraph()
	spec := LearningRateSpec{LearningRate: 0.1, GradientMaxNorm: 10}

	op := applyLearningRateSpec(g, "", spec, 0, []float64{3, 4}, nil, 0)

	// norm 5 is under the cap; the node is built but the values pass through
	if !g.Contains(nodeClipByGlobalNorm) {
		t.Fatalf("clip node wasn't recorded")
	}
	if op.Gradients[0] != 3 || op.Gradients[1] != 4 {
		t.Fatalf("gradients = %v, want untouched below the cap", op.Gradients)
	}
}

func TestApplyLearningRateSpecScopesNodes(t *testing.T) {
	g := NewGraph()
	spec := LearningRateSpec{LearningRate: 0.1, GradientMaxNorm: 1}

	applyLearningRateSpec(g, "label1", spec, 0, []float64{5}, nil, 0)

	if !g.Contains("label1/" + nodeClipByGlobalNorm) {
		t.Fatalf("scoped clip node missing; nodes: %v", g.Nodes())
	}
}

func TestApplyLearningRateSpecDecayNeedsBothKnobs(t *testing.T) {
	tests := []struct {
		name string
		spec LearningRateSpec
	}{
		{name: "steps without rate", spec: LearningRateSpec{LearningRate: 0.1, ExponentialDecaySteps: 10}},
		{name: "rate without steps", spec: LearningRateSpec{LearningRate: 0.1, ExponentialDecayRate: 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraph()
			op := applyLearningRateSpec(g, "", tt.spec, 0, nil, nil, 100)
			if g.Contains(nodeExponentialDecay) {
				t.Fatalf("decay node recorded with an incomplete schedule")
			}
			if op.LearningRate != 0.1 {
				t.Fatalf("rate = %v, want 0.1 untouched", op.LearningRate)
			}
		})
	}
}
