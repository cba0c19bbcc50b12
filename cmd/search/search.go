package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	ms "github.com/maxxd5/model-search"
	"github.com/maxxd5/model-search/costfuncs"
	"github.com/maxxd5/model-search/initializers"
	"github.com/maxxd5/model-search/predictions"
	"github.com/maxxd5/model-search/search"
)

const (
	numTrials  int = 12
	numClasses int = 2
	batchSize  int = 64

	lossName string = "cross-entropy"

	// where trial registries are written
	path string = "search run"
)

// makeDataset builds a toy two-class problem: points around (±1, ±1), labeled by the sign of
// the product of their coordinates.
func makeDataset(rng *rand.Rand) (features [][]float64, labels []float64) {
	features = make([][]float64, batchSize)
	labels = make([]float64, batchSize)

	for i := range features {
		x := rng.NormFloat64()*0.3 + float64(1-2*(i%2))
		y := rng.NormFloat64()*0.3 + float64(1-2*((i/2)%2))
		features[i] = []float64{x, y}
		if x*y < 0 {
			labels[i] = 1
		}
	}
	return
}

// buildTower stands in for an external trainer: a linear readout whose weights are seeded by
// the architecture, so deeper candidates genuinely score differently across trials.
func buildTower(features [][]float64) ms.NewTowerFn {
	return func(arch ms.Architecture, prevTrial int) (ms.Tower, error) {
		seed := int64(len(arch)*31 + prevTrial)
		ws := initializers.Uniform().Range(-1, 1).Seed(seed).Init(2, numClasses)

		logits := make([][]float64, len(features))
		for i, x := range features {
			logits[i] = make([]float64, numClasses)
			for j := 0; j < numClasses; j++ {
				logits[i][j] = x[0]*ws[0][j] + x[1]*ws[1][j]
			}
		}

		return ms.Tower{Architecture: arch, Logits: logits}, nil
	}
}

func main() {
	spec := ms.Spec{
		SearchType: ms.SearchCoordinateDescent,
		Ensemble: ms.EnsembleSpec{
			SearchType:         ms.EnsembleAdaptive,
			IncreaseWidthEvery: 5,
		},
		TransferLearning: ms.TransferSnapshot,
		UserSuggestions: []ms.Architecture{
			{ms.BlockConvolution3x3, ms.BlockFullyConnected64},
		},
		InitialArchitecture: ms.Architecture{ms.BlockFullyConnected64},
		MaximumDepth:        6,
	}

	meta := ms.ObjectiveMetadata{MetricName: "loss"}

	algo, err := search.New(spec.SearchType, spec, meta)
	if err != nil {
		panic(err.Error())
	}
	gen := ms.NewSearchCandidateGenerator(spec, algo, meta)

	lossFn, err := costfuncs.FromString(lossName)
	if err != nil {
		panic(err.Error())
	}
	tm := ms.NewTaskManager(spec, ms.SingleLoss(lossFn), ms.SinglePredictions(predictions.Classifier()))

	rng := rand.New(rand.NewSource(1))
	features, labels := makeDataset(rng)

	if err := os.MkdirAll(path, 0700); err != nil {
		panic(err.Error())
	}

	fmt.Println("Trial, Architecture, Train Loss, Eval Loss")

	var trials []ms.Trial
	for id := 1; id <= numTrials; id++ {
		dir := filepath.Join(path, strconv.Itoa(id))

		result, err := gen.Generate(ms.GenerateArgs{
			MyID:      id,
			TrialMode: ms.TrialEnsembleSearch,
			ModelDir:  dir,
			Trials:    trials,
			NewTower:  buildTower(features),
		})
		if err != nil {
			panic(err.Error())
		}

		if result.NumTowers == 0 {
			fmt.Printf("%d, (no towers this trial)\n", id)
			trials = append(trials, ms.Trial{ID: id, ModelDir: dir})
			continue
		}

		args := ms.ModelSpecArgs{
			Labels: ms.SingleLabels(labels),
			Towers: map[string][]ms.Tower{gen.Name(): result.Towers},
			Mode:   ms.ModeTrain,
			LearningRate: ms.LearningRateSpec{
				LearningRate:     0.1,
				L2Regularization: 1e-4,
				GradientMaxNorm:  5,
			},
			GlobalStep: id * 100,
		}

		trained, err := tm.CreateModelSpec(args)
		if err != nil {
			panic(err.Error())
		}

		args.Mode = ms.ModeEval
		evaled, err := tm.CreateModelSpec(args)
		if err != nil {
			panic(err.Error())
		}

		fmt.Printf("%d, %v, %v, %v\n", id, result.Towers[0].Architecture, *trained.Loss, *evaled.Loss)

		trials = append(trials, ms.Trial{
			ID:       id,
			ModelDir: dir,
			Metrics:  map[string]float64{"loss": *evaled.Loss},
		})
	}

	if best := meta.BestTrial(trials); best != nil {
		arch, err := ms.LoadArchitecture(best.ModelDir, best.ID)
		if err != nil {
			panic(err.Error())
		}
		fmt.Printf("Best trial: %d with architecture %v\n", best.ID, arch)
	}
	fmt.Println("Done!")
}
