// Package predictions provides prediction functions for use with the root package. Each one
// maps a task's logits to the three standard output kinds: predictions, probabilities, and
// log_probabilities.
package predictions

import (
	"math"

	ms "github.com/maxxd5/model-search"
)

type classifier struct {
	temperature float64
}

// Classifier returns the standard classification prediction function, which implements
// modelsearch.PredictionsFunction. The predicted class is the argmax of the logits;
// probabilities are the softmax of the logits.
func Classifier() *classifier {
	return &classifier{temperature: 1}
}

// Temperature sets the softmax temperature applied when serving, returning the same prediction
// function. Values above 1 soften the served distribution; the temperature is ignored outside
// predict mode so that training and evaluation always see the unscaled probabilities.
func (c *classifier) Temperature(t float64) *classifier {
	c.temperature = t
	return c
}

func (c *classifier) TypeString() string {
	return "classifier"
}

func (c *classifier) Predict(logits [][]float64, mode ms.Mode) map[string][][]float64 {
	t := 1.0
	if mode == ms.ModePredict && c.temperature > 0 {
		t = c.temperature
	}

	preds := make([][]float64, len(logits))
	probs := make([][]float64, len(logits))
	logProbs := make([][]float64, len(logits))

	for i, row := range logits {
		max := math.Inf(-1)
		argmax := 0
		for j, v := range row {
			if v > max {
				max, argmax = v, j
			}
		}
		preds[i] = []float64{float64(argmax)}

		probs[i] = make([]float64, len(row))
		logProbs[i] = make([]float64, len(row))

		var sum float64
		for j, v := range row {
			probs[i][j] = math.Exp((v - max) / t)
			sum += probs[i][j]
		}
		for j := range row {
			probs[i][j] /= sum
			logProbs[i][j] = math.Log(probs[i][j])
		}
	}

	return map[string][][]float64{
		ms.KeyPredictions:      preds,
		ms.KeyProbabilities:    probs,
		ms.KeyLogProbabilities: logProbs,
	}
}

var _ ms.PredictionsFunction = Classifier()
