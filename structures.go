package modelsearch

// Trial is one completed (or in-progress) training attempt. Trials are owned by the external
// persistence layer; this package only ever reads them. Identity is the ID.
type Trial struct {
	ID       int
	ModelDir string
	Metrics  map[string]float64
}

// Mode is the phase the model specification is being built for.
type Mode string

const (
	ModeTrain   Mode = "TRAIN"
	ModeEval    Mode = "EVAL"
	ModePredict Mode = "PREDICT"
)

// TrialMode is external context supplied per trial; it is never derived internally.
type TrialMode string

const (
	TrialNoPrior        TrialMode = "NO_PRIOR"
	TrialEnsembleSearch TrialMode = "ENSEMBLE_SEARCH"
	TrialDistillation   TrialMode = "DISTILLATION"
)

// EnsembleSearchType selects the ensembling discipline: the policy governing which past trials'
// towers are combined and how relevance is computed for the search algorithm.
type EnsembleSearchType string

const (
	EnsembleNone        EnsembleSearchType = "NONE"
	EnsembleNonAdaptive EnsembleSearchType = "NONADAPTIVE"
	EnsembleAdaptive    EnsembleSearchType = "ADAPTIVE"
	EnsembleResidual    EnsembleSearchType = "RESIDUAL"
	EnsembleIntermixed  EnsembleSearchType = "INTERMIXED"
)

// EnsembleSpec configures the ensembling discipline. Only the field matching SearchType is
// consulted: IncreaseWidthEvery for adaptive/residual, TryEnsemblingEvery for intermixed.
type EnsembleSpec struct {
	SearchType EnsembleSearchType

	// IncreaseWidthEvery resets the adaptive/residual relevance window every this many trials.
	// Zero means the full history is always relevant.
	IncreaseWidthEvery int

	// TryEnsemblingEvery makes every n-th trial an exploitation (ensembling) trial under the
	// intermixed discipline. Must be > 0 when SearchType is EnsembleIntermixed.
	TryEnsemblingEvery int
}

// TransferLearningType selects whether a parent trial's checkpoint is loaded into a new tower.
type TransferLearningType string

const (
	TransferNone     TransferLearningType = "NO_TRANSFER"
	TransferSnapshot TransferLearningType = "SNAPSHOT"
)

// SearchType is the tag selecting a SearchAlgorithm implementation. The set of recognized tags
// is closed; dispatch happens in the subpackage "search".
type SearchType string

const (
	SearchIdentity          SearchType = "IDENTITY"
	SearchCoordinateDescent SearchType = "COORDINATE_DESCENT"
)

// TaskConfig describes one task of a multi-task problem. Zero TaskConfigs means the implicit
// single-task mode.
type TaskConfig struct {
	LabelName       string
	NumberOfClasses int

	// WeightFeatureName is the key of the per-example weight vector. If empty, examples are
	// unweighted. WeightIsAFeature selects which mapping the key is looked up in: the features
	// mapping when true, the labels mapping when false.
	WeightFeatureName string
	WeightIsAFeature  bool

	// Architecture optionally overrides the searched architecture for this task's tower.
	Architecture Architecture
}

// LearningRateSpec shapes the optimization of the aggregated loss. Fields are independently
// optional: presence (a non-zero value), not a mode flag, selects which transforms activate.
type LearningRateSpec struct {
	LearningRate float64

	L2Regularization float64
	GradientMaxNorm  float64

	ExponentialDecaySteps int
	ExponentialDecayRate  float64
}

// Spec is the full configuration surface consumed by generators and the TaskManager.
type Spec struct {
	SearchType SearchType

	Ensemble         EnsembleSpec
	TransferLearning TransferLearningType

	// UserSuggestions are seed architectures, consumed strictly in order by trial id. They are
	// canonicalized once when the generator is constructed.
	UserSuggestions []Architecture

	// InitialArchitecture seeds search algorithms that need a starting point.
	InitialArchitecture Architecture

	// MultiTask lists the tasks of a multi-task problem; empty means single-task mode.
	MultiTask []TaskConfig

	// MergeLosses sums all per-task losses into one scalar before the optimizer-shaping
	// transforms run, so gradients flow jointly through a single optimization step.
	MergeLosses bool

	MaximumDepth int
}

// Tower is one task- or ensemble-member-specific sub-network with its own logits output.
// Towers are produced externally; this package composes them.
type Tower struct {
	Name         string
	Architecture Architecture

	// Logits holds the tower's output, one row per example.
	Logits [][]float64

	// PreviousModelDir records snapshot/transfer-learning lineage: the model directory whose
	// latest checkpoint this tower's weights were initialized from. Empty for fresh weights.
	PreviousModelDir string
}

// TrainOp is the optimization step produced for one scope (a task label, or "merged").
type TrainOp struct {
	Scope        string
	Loss         float64
	Gradients    []float64
	LearningRate float64
}

// ModelSpec is the assembled model specification for one trial, rebuilt every trial and consumed
// by the external training/evaluation driver.
//
// Predictions always holds exactly 3*max(1, number of tasks) entries: the three kinds
// "predictions", "probabilities" and "log_probabilities" per task, namespaced "<kind>/<label>"
// in multi-task mode and un-namespaced otherwise.
type ModelSpec struct {
	// Loss is nil in predict mode and concrete in train/eval.
	Loss *float64

	Predictions map[string][][]float64

	// TrainOps holds one op per task, or a single merged op. Empty outside train mode.
	TrainOps []TrainOp

	// Graph records the named computation nodes constructed while assembling the spec.
	Graph *Graph
}
