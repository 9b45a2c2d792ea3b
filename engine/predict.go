package engine

import (
	"math"

	"github.com/branchml/forest/forest"
)

// Prediction is the generic inference result: a single score for
// regression/ranking, or a probability distribution plus its argmax
// label for classification (for RF, the label is set only when the
// model is winner-take-all).
type Prediction struct {
	Task                forest.Task
	Score               float64   // regression/ranking
	ClassProbabilities  []float64 // classification, indexed by class id
	ClassLabel          int32     // winner-take-all argmax; only meaningful when set
}

// Predict runs ex through every tree of model and applies the per-loss
// (GBT) or per-vote (RF) post-processing appropriate to the model's
// task. Exactly one of model.GBT/model.RF is non-nil.
func Predict(model *forest.Model, ex forest.Example) (*Prediction, error) {
	switch {
	case model.GBT != nil:
		return predictGBT(model, ex)
	case model.RF != nil:
		return predictRF(model, ex)
	default:
		return nil, Newf(Internal, "engine: model has neither a GBT nor an RF header")
	}
}

func predictGBT(model *forest.Model, ex forest.Example) (*Prediction, error) {
	k := model.GBT.NumTreesPerIter
	sums := make([]float64, k)
	copy(sums, model.GBT.InitialPredictions)
	for i, t := range model.Trees {
		leaf, err := t.Leaf(ex)
		if err != nil {
			return nil, Wrap(Internal, err)
		}
		sums[i%k] += leaf.TopValue
	}

	switch model.GBT.Loss {
	case forest.BinomialLogLikelihood:
		p := sigmoid(sums[0])
		return &Prediction{Task: model.Header.Task, ClassProbabilities: []float64{1 - p, p}, ClassLabel: argmaxLabel([]float64{1 - p, p})}, nil
	case forest.MultinomialLogLikelihood:
		probs := softmaxRestVsAll(sums)
		return &Prediction{Task: model.Header.Task, ClassProbabilities: probs, ClassLabel: argmaxLabel(probs)}, nil
	default: // SquaredError, LambdaMARTNDCG5, XENDCGMART: identity sum
		return &Prediction{Task: model.Header.Task, Score: sums[0]}, nil
	}
}

func predictRF(model *forest.Model, ex forest.Example) (*Prediction, error) {
	if model.RF.NumClasses > 0 {
		dist := make([]float64, model.RF.NumClasses)
		var voters float64
		for _, t := range model.Trees {
			leaf, err := t.Leaf(ex)
			if err != nil {
				return nil, Wrap(Internal, err)
			}
			if leaf.ClassDistribution == nil {
				continue
			}
			for c, p := range leaf.ClassDistribution {
				dist[c] += p
			}
			voters++
		}
		if voters > 0 {
			for c := range dist {
				dist[c] /= voters
			}
		}
		pred := &Prediction{Task: model.Header.Task, ClassProbabilities: dist}
		if model.RF.WinnerTakeAll {
			pred.ClassLabel = argmaxLabel(dist)
		}
		return pred, nil
	}

	var sum, voters float64
	for _, t := range model.Trees {
		leaf, err := t.Leaf(ex)
		if err != nil {
			return nil, Wrap(Internal, err)
		}
		sum += leaf.TopValue
		voters++
	}
	score := 0.0
	if voters > 0 {
		score = sum / voters
	}
	return &Prediction{Task: model.Header.Task, Score: score}, nil
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

// softmaxRestVsAll mirrors loss.Multinomial's rest-vs-all layout: class 0
// is implicit (exp(0)=1), classes 1..K-1 map to channels 0..K-2.
func softmaxRestVsAll(channels []float64) []float64 {
	exp := make([]float64, len(channels))
	sum := 1.0
	for i, f := range channels {
		exp[i] = math.Exp(f)
		sum += exp[i]
	}
	probs := make([]float64, len(channels)+1)
	probs[0] = 1 / sum
	for i, e := range exp {
		probs[i+1] = e / sum
	}
	return probs
}

func argmaxLabel(p []float64) int32 {
	best, bestP := 0, -math.MaxFloat64
	for i, v := range p {
		if v > bestP {
			best, bestP = i, v
		}
	}
	return int32(best)
}
