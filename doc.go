// Package modelsearch provides a framework for automated neural architecture search across a
// sequence of independent training trials, and for assembling the multi-task training
// specification (losses, predictions, optimization policy) from the towers each trial produces.
//
// Trials and Generators
//
// Each trial is one complete training attempt with a fixed candidate architecture and its own
// model directory. The SearchCandidateGenerator decides, per trial, which architecture to try:
//
//		gen := ms.NewSearchCandidateGenerator(spec, algo, meta)
//		res, err := gen.Generate(ms.GenerateArgs{
//			MyID:      trialID,
//			TrialMode: ms.TrialNoPrior,
//			ModelDir:  dir,
//			Trials:    history,
//			NewTower:  buildTower,
//		})
//
// For brevity, modelsearch is abbreviated 'ms'.
//
// User-supplied seed architectures always run first, one per trial id. After that, the ensembling
// discipline configured in the EnsembleSpec decides which historical trials are relevant to the
// search algorithm, or whether the generator should contribute no tower at all for this trial.
// Search algorithms live in the subpackage "search" and satisfy the SearchAlgorithm interface.
//
// All architecture decisions are persisted to the trial's model directory, and read back by later
// trials. The history passed to Generate is treated as a frozen snapshot; generation itself is
// synchronous and deterministic given its inputs.
//
// Assembling Model Specs
//
// Once towers exist for a trial, the TaskManager composes the full model specification:
//
//		tm := ms.NewTaskManager(spec, ms.SingleLoss(costfuncs.CrossEntropy()),
//			ms.SinglePredictions(predictions.Classifier()))
//		model, err := tm.CreateModelSpec(ms.ModelSpecArgs{
//			Towers: towers,
//			Labels: ms.SingleLabels(labels),
//			Mode:   ms.ModeTrain,
//			LearningRate: ms.LearningRateSpec{LearningRate: 0.001, L2Regularization: 0.01},
//		})
//
// Each task gets a loss, an optional output projection, and three prediction outputs. The
// learning-rate spec selects, by field presence alone, which optimizer-shaping transforms run:
// L2 regularization, gradient clipping by global norm, and exponential learning-rate decay, in
// that fixed order. Loss functions can be found in the subpackage "costfuncs", prediction
// functions in "predictions", learning-rate schedules in "hyperparams", and so forth.
package modelsearch
