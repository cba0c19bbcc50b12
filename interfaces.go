package modelsearch

// SearchAlgorithm is a pluggable architecture-search strategy. Implementations must be pure
// functions of their declared inputs (no hidden global state), so that trial scheduling remains
// reproducible given identical persisted history.
type SearchAlgorithm interface {
	// TypeString returns the string corresponding to the type of the SearchAlgorithm.
	// For example: the identity strategy returns "identity".
	TypeString() string

	// Suggest returns a candidate architecture for trial myID, given the relevant trial
	// history. The second return is the id of a parent trial whose latest checkpoint the new
	// architecture should inherit weights from (via snapshot transfer), or 0 for fresh
	// weights.
	Suggest(relevantTrials []Trial, hparams map[string]float64, myID int, modelDir string) (Architecture, int, error)
}

// Metadata is the external ranking collaborator over persisted trials.
type Metadata interface {
	// BestTrial returns the best-scoring trial of the given set, or nil if the set is empty.
	BestTrial(trials []Trial) *Trial
}

// CostFunction computes a task's loss and its gradient with respect to the logits.
//
// For all methods, logits rows and labels have the same length, and weights is either nil
// (unweighted) or of the same length as labels.
type CostFunction interface {
	// TypeString returns the string corresponding to the type of the CostFunction.
	TypeString() string

	// Cost returns the scalar loss. labels holds one target class index per example.
	Cost(logits [][]float64, labels []float64, weights []float64) (float64, error)

	// Derivs returns the derivative of the cost with respect to every logit, flattened
	// row-major. Will only be run after Cost() has been run.
	Derivs(logits [][]float64, labels []float64, weights []float64) ([]float64, error)
}

// PredictionsFunction converts logits into the three prediction outputs: the raw predicted
// class per example, the normalized probability distribution, and the log-probability
// distribution, keyed KeyPredictions, KeyProbabilities and KeyLogProbabilities respectively.
type PredictionsFunction interface {
	// TypeString returns the string corresponding to the type of the PredictionsFunction.
	TypeString() string

	Predict(logits [][]float64, mode Mode) map[string][][]float64
}

// The three prediction kinds every PredictionsFunction must produce.
const (
	KeyPredictions      = "predictions"
	KeyProbabilities    = "probabilities"
	KeyLogProbabilities = "log_probabilities"
)

// HyperParameter is a scalar training parameter that may change over global steps.
type HyperParameter interface {
	// TypeString returns the string corresponding to the type of the HyperParameter.
	TypeString() string

	// Value returns the parameter's value at the given global step.
	Value(step int) float64
}

// Initializer produces deterministically seeded initial weights for a fanIn by fanOut layer.
type Initializer interface {
	// TypeString returns the string corresponding to the type of the Initializer.
	TypeString() string

	Init(fanIn, fanOut int) [][]float64
}
