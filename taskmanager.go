package modelsearch

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/maxxd5/model-search/initializers"
)

// Labels carries the training targets for either a single-task or a multi-task problem. The
// two forms are distinct constructors rather than a dynamically-typed argument, and are
// resolved exactly once, at the TaskManager boundary. The multi-task mapping may also carry
// per-example weight vectors when a task routes its weights through the labels.
type Labels struct {
	single []float64
	byName map[string][]float64
}

func SingleLabels(values []float64) Labels {
	return Labels{single: values}
}

func MultiLabels(byName map[string][]float64) Labels {
	return Labels{byName: byName}
}

func (l Labels) forTask(label string) ([]float64, error) {
	if l.byName != nil {
		v, ok := l.byName[label]
		if !ok {
			return nil, MissingKeyError{Key: label, In: "labels"}
		}
		return v, nil
	}
	return l.single, nil
}

func (l Labels) lookup(key string) ([]float64, bool) {
	if l.byName == nil {
		return nil, false
	}
	v, ok := l.byName[key]
	return v, ok
}

// LossFns selects the cost function per task: one shared function, or a mapping keyed by label
// name.
type LossFns struct {
	single CostFunction
	byName map[string]CostFunction
}

func SingleLoss(fn CostFunction) LossFns {
	return LossFns{single: fn}
}

func PerTaskLoss(byName map[string]CostFunction) LossFns {
	return LossFns{byName: byName}
}

func (fns LossFns) forTask(label string) (CostFunction, error) {
	if fns.byName != nil {
		fn, ok := fns.byName[label]
		if !ok {
			return nil, MissingKeyError{Key: label, In: "loss functions"}
		}
		return fn, nil
	}
	if fns.single == nil {
		return nil, errors.Errorf("No loss function configured")
	}
	return fns.single, nil
}

// PredictionsFns selects the prediction function per task, mirroring LossFns.
type PredictionsFns struct {
	single PredictionsFunction
	byName map[string]PredictionsFunction
}

func SinglePredictions(fn PredictionsFunction) PredictionsFns {
	return PredictionsFns{single: fn}
}

func PerTaskPredictions(byName map[string]PredictionsFunction) PredictionsFns {
	return PredictionsFns{byName: byName}
}

func (fns PredictionsFns) forTask(label string) (PredictionsFunction, error) {
	if fns.byName != nil {
		fn, ok := fns.byName[label]
		if !ok {
			return nil, MissingKeyError{Key: label, In: "prediction functions"}
		}
		return fn, nil
	}
	if fns.single == nil {
		return nil, errors.Errorf("No prediction function configured")
	}
	return fns.single, nil
}

// TaskManager assembles the full multi-task model specification from the towers of one trial.
// The assembled ModelSpec is request-scoped: it is rebuilt every trial and owned by the caller
// once returned.
type TaskManager struct {
	spec     Spec
	losses   LossFns
	preds    PredictionsFns
	projInit Initializer
}

func NewTaskManager(spec Spec, losses LossFns, preds PredictionsFns) *TaskManager {
	return &TaskManager{
		spec:     spec,
		losses:   losses,
		preds:    preds,
		projInit: initializers.VarianceScaling(),
	}
}

// ProjectionInitializer changes the Initializer used for output projections, returning the same
// TaskManager.
func (tm *TaskManager) ProjectionInitializer(init Initializer) *TaskManager {
	if init == nil {
		panic(errors.Errorf("Initializer is nil"))
	}
	tm.projInit = init
	return tm
}

// ModelSpecArgs are the per-trial inputs to CreateModelSpec, a proxy for the optional arguments
// available in other languages.
type ModelSpecArgs struct {
	// Features maps feature names to per-example vectors. Only weight vectors are consulted
	// here; the input features themselves were consumed by the external tower builder.
	Features map[string][]float64

	Labels Labels

	// Towers holds each generator's towers for this trial, keyed by generator name.
	Towers map[string][]Tower

	Mode Mode

	LearningRate LearningRateSpec

	// GlobalStep drives the learning-rate decay schedule.
	GlobalStep int
}

// perTask is one task's assembled fragment, kept until the aggregation decision at the end.
type perTask struct {
	scope   string
	loss    float64
	grads   []float64
	weights [][]float64
}

// CreateModelSpec composes per-task losses, optional output projections, the optimizer-shaping
// transforms, and namespaced prediction outputs into one ModelSpec.
//
// Prediction outputs always number exactly 3*max(1, number of tasks): namespaced
// "<kind>/<label>" in multi-task mode (two or more tasks), un-namespaced otherwise. The loss is
// nil in predict mode and concrete in train/eval; optimizer-shaping transforms run only in
// train mode, once over the merged loss when MergeLosses is set, per task otherwise.
func (tm *TaskManager) CreateModelSpec(args ModelSpecArgs) (*ModelSpec, error) {
	g := NewGraph()

	towers := flattenTowers(args.Towers)
	logits, err := meanLogits(towers)
	if err != nil {
		return nil, err
	}

	configs := tm.spec.MultiTask
	if len(configs) == 0 {
		// implicit single task
		configs = []TaskConfig{{}}
	}
	multi := len(configs) >= 2

	out := &ModelSpec{
		Predictions: make(map[string][][]float64, 3*len(configs)),
		Graph:       g,
	}

	var tasks []perTask
	for _, cfg := range configs {
		scope := ""
		if multi {
			scope = cfg.LabelName
		}

		if len(cfg.Architecture) > 0 {
			recordTowerOverrides(g, cfg, args.Towers)
		}

		taskLogits, projW := projectLogits(g, scope, logits, cfg.NumberOfClasses, tm.projInit)

		predsFn, err := tm.preds.forTask(cfg.LabelName)
		if err != nil {
			return nil, err
		}
		for kind, v := range predsFn.Predict(taskLogits, args.Mode) {
			key := kind
			if multi {
				key = kind + "/" + cfg.LabelName
			}
			out.Predictions[key] = v
		}

		if args.Mode == ModePredict {
			continue
		}

		labels, err := args.Labels.forTask(cfg.LabelName)
		if err != nil {
			return nil, err
		}
		weights, err := resolveWeights(cfg, args.Features, args.Labels)
		if err != nil {
			return nil, err
		}
		lossFn, err := tm.losses.forTask(cfg.LabelName)
		if err != nil {
			return nil, err
		}

		loss, err := lossFn.Cost(taskLogits, labels, weights)
		if err != nil {
			return nil, errors.Wrapf(err, "Loss for task %q failed", cfg.LabelName)
		}

		t := perTask{scope: scope, loss: loss, weights: projW}
		if args.Mode == ModeTrain {
			grads, err := lossFn.Derivs(taskLogits, labels, weights)
			if err != nil {
				return nil, errors.Wrapf(err, "Loss gradient for task %q failed", cfg.LabelName)
			}
			t.grads = grads
		}
		tasks = append(tasks, t)
	}

	if want := 3 * len(configs); len(out.Predictions) != want {
		return nil, InvariantError{Msg: "prediction mapping has the wrong cardinality"}
	}

	if args.Mode == ModePredict {
		return out, nil
	}

	if args.Mode == ModeEval {
		var total float64
		for _, t := range tasks {
			total += t.loss
		}
		out.Loss = &total
		return out, nil
	}

	// ModeTrain: run the optimizer-shaping transforms.
	if tm.spec.MergeLosses && len(tasks) > 1 {
		var loss float64
		var grads []float64
		var weights [][]float64
		for _, t := range tasks {
			loss += t.loss
			grads = append(grads, t.grads...)
			weights = append(weights, t.weights...)
		}
		g.AddNode(nodeGradientsAddN)

		op := applyLearningRateSpec(g, "", args.LearningRate, loss, grads, weights, args.GlobalStep)
		op.Scope = "merged"
		out.TrainOps = []TrainOp{op}
		out.Loss = &op.Loss
		return out, nil
	}

	var total float64
	for _, t := range tasks {
		op := applyLearningRateSpec(g, t.scope, args.LearningRate, t.loss, t.grads, t.weights, args.GlobalStep)
		out.TrainOps = append(out.TrainOps, op)
		total += op.Loss
	}
	out.Loss = &total
	return out, nil
}

// flattenTowers orders every generator's towers deterministically by generator name.
func flattenTowers(byGenerator map[string][]Tower) []Tower {
	names := make([]string, 0, len(byGenerator))
	for name := range byGenerator {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Tower
	for _, name := range names {
		out = append(out, byGenerator[name]...)
	}
	return out
}

// recordTowerOverrides records the structural nodes of a task's architecture override against
// every contributing tower.
func recordTowerOverrides(g *Graph, cfg TaskConfig, byGenerator map[string][]Tower) {
	names := make([]string, 0, len(byGenerator))
	for name := range byGenerator {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for i := range byGenerator[name] {
			recordTaskTower(g, cfg.LabelName, name, i, cfg.Architecture)
		}
	}
}
