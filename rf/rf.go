// Package rf implements bagged CART trees grown independently over
// bootstrap samples, with out-of-bag evaluation and permutation
// variable importance layered on top of plain bagging.
package rf

import (
	"context"
	"math/rand"
	"sync"

	"github.com/branchml/forest/dataset"
	"github.com/branchml/forest/dataspec"
	"github.com/branchml/forest/forest"
	"github.com/branchml/forest/grower"
	"github.com/branchml/forest/split"
)

// Config holds the random-forest hyper-parameters.
type Config struct {
	NumTrees           int
	BootstrapSizeRatio float64 // defaults to 1.0 (sample-with-replacement, same size as the training set)
	WinnerTakeAll      bool
	NumClasses         int // 0 for regression
	NumWorkers         int
	RandomSeed         int64

	Grower *grower.Config
}

func (c *Config) bootstrapRatio() float64 {
	if c.BootstrapSizeRatio > 0 {
		return c.BootstrapSizeRatio
	}
	return 1.0
}

func (c *Config) numWorkers() int {
	if c.NumWorkers > 0 {
		return c.NumWorkers
	}
	return 1
}

// Learner trains one random-forest model, satisfying registry.Learner.
type Learner struct {
	Config *Config
}

func (l *Learner) Name() string { return "RANDOM_FOREST" }

// ModelKind names the model kind Train produces, satisfying
// registry.Model.
type ModelKind struct{}

func (ModelKind) Name() string { return "RANDOM_FOREST" }

// treeResult is what one worker hands back to the merge step: the grown
// tree plus the OOB row set it was never trained on.
type treeResult struct {
	tree *forest.Tree
	oob  []int32
}

// Train grows cfg.NumTrees bootstrap-sampled trees in parallel and
// assembles a *forest.Model with an OOB-evaluated RFHeader. Exactly one
// of labels (regression) or classLabels (classification, 0-indexed
// against cfg.NumClasses) is populated.
func Train(ctx context.Context, ds *dataset.Dataset, spec *dataspec.Dataspec, header forest.Header, labels []float64, classLabels []int32, weights []float64, cfg *Config) (*forest.Model, error) {
	n := ds.N
	if classLabels != nil {
		cfg.Grower.Split.NumClasses = cfg.NumClasses
	}
	results := make([]treeResult, cfg.NumTrees)
	presort := split.BuildPresortIndex(ds) // read-only; safe to share across the tree-growing goroutines below

	var wg sync.WaitGroup
	sem := make(chan struct{}, cfg.numWorkers())
	for t := 0; t < cfg.NumTrees; t++ {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(t int) {
			defer wg.Done()
			defer func() { <-sem }()
			rng := rand.New(rand.NewSource(cfg.RandomSeed + int64(t)))
			in, oob := bootstrapSample(rng, n, cfg.bootstrapRatio())

			target := &split.Target{Weights: weights}
			var setLeaf grower.LeafSetter
			if classLabels != nil {
				target.ClassLabels = classLabels
				setLeaf = classificationLeafSetter(classLabels, cfg.NumClasses, cfg.WinnerTakeAll)
			} else {
				target.Gradients = labels
				setLeaf = regressionLeafSetter(labels, weights)
			}

			tree := grower.Grow(rng, ds, spec, header.InputFeatures, in, target, cfg.Grower, presort, setLeaf)
			results[t] = treeResult{tree: tree, oob: oob}
		}(t)
	}
	wg.Wait()

	trees := make([]*forest.Tree, 0, len(results))
	var oobSets [][]int32
	for _, r := range results {
		if r.tree == nil {
			continue // the run was cancelled before this tree started
		}
		trees = append(trees, r.tree)
		oobSets = append(oobSets, r.oob)
	}

	rfHeader := &forest.RFHeader{
		WinnerTakeAll: cfg.WinnerTakeAll,
		NumClasses:    cfg.NumClasses,
	}
	if classLabels != nil {
		rfHeader.OOBAccuracy = oobAccuracy(ds, trees, oobSets, classLabels, cfg.NumClasses)
		rfHeader.VariableImportance = permutationImportanceClassification(ds, trees, oobSets, classLabels, cfg.NumClasses, header.InputFeatures)
	} else {
		rfHeader.OOBRMSE = oobRMSE(ds, trees, oobSets, labels)
		rfHeader.VariableImportance = permutationImportanceRegression(ds, trees, oobSets, labels, header.InputFeatures)
	}

	return &forest.Model{
		Dataspec: spec,
		Header:   header,
		Trees:    trees,
		RF:       rfHeader,
	}, nil
}
