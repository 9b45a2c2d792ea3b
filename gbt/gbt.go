// Package gbt implements the gradient-boosted-trees learner's outer
// iteration loop: sampling, gradient computation, one tree grown per
// output channel, prediction updates, validation evaluation, and early
// stopping.
package gbt

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/branchml/forest/dataset"
	"github.com/branchml/forest/dataspec"
	"github.com/branchml/forest/forest"
	"github.com/branchml/forest/grower"
	"github.com/branchml/forest/loss"
	"github.com/branchml/forest/split"
)

// SamplingMethod selects how each boosting iteration subsets the
// training rows before computing gradients.
type SamplingMethod int

const (
	NoSampling SamplingMethod = iota
	RandomSampling
	GOSS
	SELGB
)

// ForestExtraction selects whether boosting uses plain additive trees or
// DART dropout.
type ForestExtraction int

const (
	PlainAdditive ForestExtraction = iota
	DART
)

// EarlyStoppingPolicy selects how GBT watches validation loss.
type EarlyStoppingPolicy int

const (
	NoEarlyStopping EarlyStoppingPolicy = iota
	LossIncrease
	MinLossFinal
)

// Config holds every GBT hyper-parameter.
type Config struct {
	NumTrees  int
	Loss      loss.Kind
	Shrinkage float64

	SamplingMethod  SamplingMethod
	Subsample       float64 // RANDOM sampling rate
	GOSSAlpha       float64
	GOSSBeta        float64
	SELGBRatio      float64

	Extraction  ForestExtraction
	DartDropout float64

	ValidationSetRatio              float64
	EarlyStopping                    EarlyStoppingPolicy
	EarlyStoppingNumTreesLookAhead   int

	MaximumTrainingDuration                time.Duration
	AdaptSubsampleForMaximumTrainingDuration bool

	RandomSeed int64
	NumClasses int // 0 for regression/ranking tasks

	Grower *grower.Config
	Leaf   loss.LeafConfig
}

// Learner trains one GBT model, satisfying registry.Learner.
type Learner struct {
	Config *Config
}

func (l *Learner) Name() string { return "GRADIENT_BOOSTED_TREES" }

// ModelKind names the model kind Train produces, satisfying
// registry.Model so the registry can confirm "GRADIENT_BOOSTED_TREES"
// is a supported model kind independently of whether a Learner for it
// is also registered.
type ModelKind struct{}

func (ModelKind) Name() string { return "GRADIENT_BOOSTED_TREES" }

// trainState is the per-iteration mutable state the learner's main
// thread owns exclusively: predictions, the running forest, and the
// iteration counter. Workers (tree growers) only ever read from
// ds/spec/target and write into their own tree's node arena.
type trainState struct {
	predictions []float64
	trees       []*forest.Tree
	treeScale   []float64 // per-tree DART scaling factor, parallel to trees
}

// Train runs the outer boosting loop and returns a populated
// *forest.Model. labels holds one target per row as the loss reads it:
// the numerical label for regression, the relevance for ranking, or the
// class value for classification. weights may be nil (unit weights).
// groupKey, when non-nil, assigns each row to a ranking group.
func Train(ctx context.Context, ds *dataset.Dataset, spec *dataspec.Dataspec, header forest.Header, labels []float64, weights []float64, groupKey []int32, cfg *Config) (*forest.Model, error) {
	l, err := loss.ByKind(cfg.Loss, cfg.NumClasses)
	if err != nil {
		return nil, err
	}
	numTreesPerIter := l.NumTreesPerIter(cfg.NumClasses)

	n := ds.N
	trainIdx, validIdx := splitValidation(n, cfg.ValidationSetRatio, cfg.RandomSeed)

	var groups []loss.RankingGroup
	if groupKey != nil {
		groups, err = loss.BuildRankingGroups(groupKey, labels)
		if err != nil {
			return nil, errors.Wrap(err, "gbt: building ranking groups")
		}
	}

	initial := l.InitialPredictions(gather(labels, trainIdx), gatherWeights(weights, trainIdx), cfg.NumClasses)
	predictions := make([]float64, n*numTreesPerIter)
	for i := 0; i < n; i++ {
		copy(predictions[i*numTreesPerIter:(i+1)*numTreesPerIter], initial)
	}

	state := &trainState{predictions: predictions}
	presort := split.BuildPresortIndex(ds)
	rng := rand.New(rand.NewSource(cfg.RandomSeed))

	var logs []forest.TrainingLogEntry
	var validationHistory []float64
	bestValidIter := -1
	bestValidLoss := math.Inf(1)

	deadline := time.Time{}
	if cfg.MaximumTrainingDuration > 0 {
		deadline = time.Now().Add(cfg.MaximumTrainingDuration)
	}
	subsample := cfg.Subsample
	startTime := time.Now()

	for iter := 0; iter < cfg.NumTrees; iter++ {
		if err := ctx.Err(); err != nil {
			break
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}

		sampled, weightScale := sampleRows(rng, trainIdx, labels, predictions, numTreesPerIter, cfg, subsample, groups)

		// target's slices are indexed by dataset row id, matching the
		// convention split.FindBestSplit uses throughout; sampled (not
		// these slices) is what restricts training to a row subset.
		target := &split.Target{Weights: weights}
		if len(weightScale) > 0 {
			target.Weights = scaledWeights(weights, weightScale, n)
		}
		var dropped []int32
		if cfg.Extraction == DART && len(state.trees) > 0 {
			dropped = dropoutTrees(rng, len(state.trees), cfg.DartDropout)
			applyDropout(state, ds, numTreesPerIter, dropped)
		}

		for k := 0; k < numTreesPerIter; k++ {
			g, h := l.Gradients(labels, predictions, weights, groups, k, numTreesPerIter, rng)
			target.Gradients = g
			target.Hessians = h

			leafSetter := newtonLeafSetter(l, target, cfg.Leaf)
			tree := grower.Grow(rng, ds, spec, header.InputFeatures, sampled, target, cfg.Grower, presort, leafSetter)
			scale := 1.0
			if cfg.Extraction == DART && len(dropped) > 0 {
				scale = 1 / float64(1+len(dropped))
			}
			state.trees = append(state.trees, tree)
			state.treeScale = append(state.treeScale, scale)
			addTreeContribution(predictions, ds, tree, k, numTreesPerIter, scale)
		}
		if cfg.Extraction == DART {
			undoDropout(state, ds, numTreesPerIter, dropped)
		}

		trainLbls, trainPreds, trainWts, trainGroups := lossInputs(labels, predictions, weights, trainIdx, groups, numTreesPerIter)
		trainLoss, trainSecondary := l.Value(trainLbls, trainPreds, trainWts, trainGroups, numTreesPerIter)
		entry := forest.TrainingLogEntry{Iteration: iter, NumTrees: len(state.trees), TrainingLoss: trainLoss, SecondaryTrain: mapToSlice(trainSecondary, l.SecondaryMetricNames())}

		if len(validIdx) > 0 {
			validLbls, validPreds, validWts, validGroups := lossInputs(labels, predictions, weights, validIdx, groups, numTreesPerIter)
			validLoss, validSecondary := l.Value(validLbls, validPreds, validWts, validGroups, numTreesPerIter)
			entry.ValidationLoss = validLoss
			entry.SecondaryValid = mapToSlice(validSecondary, l.SecondaryMetricNames())
			validationHistory = append(validationHistory, validLoss)
			if validLoss < bestValidLoss {
				bestValidLoss = validLoss
				bestValidIter = iter
			}
			if cfg.EarlyStopping == LossIncrease && shouldStopOnLossIncrease(validationHistory, cfg.EarlyStoppingNumTreesLookAhead) {
				logs = append(logs, entry)
				break
			}
		}
		logs = append(logs, entry)

		if cfg.MaximumTrainingDuration > 0 && cfg.AdaptSubsampleForMaximumTrainingDuration {
			subsample = adaptSubsample(subsample, startTime, cfg.MaximumTrainingDuration, iter+1, cfg.NumTrees)
		}
	}

	if cfg.EarlyStopping == MinLossFinal && bestValidIter >= 0 {
		keep := (bestValidIter + 1) * numTreesPerIter
		if keep < len(state.trees) {
			state.trees = state.trees[:keep]
		}
	}

	forestLoss := forestLossFromKind(cfg.Loss)
	model := &forest.Model{
		Dataspec: spec,
		Header:   header,
		Trees:    state.trees,
		GBT: &forest.GBTHeader{
			Loss:               forestLoss,
			NumTreesPerIter:    numTreesPerIter,
			InitialPredictions: initial,
			ValidationLoss:     bestValidLoss,
			TrainingLogs:       logs,
		},
	}
	return model, nil
}

func forestLossFromKind(k loss.Kind) forest.Loss {
	return forest.Loss(k)
}

func mapToSlice(m map[string]float64, names []string) []float64 {
	out := make([]float64, len(names))
	for i, n := range names {
		out[i] = m[n]
	}
	return out
}
