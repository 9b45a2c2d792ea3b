package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchml/forest/forest"
)

func oneLeafTree(value float64) *forest.Tree {
	t := forest.NewTree()
	t.SetLeaf(t.Root, &forest.Leaf{TopValue: value})
	return t
}

func TestPredictBinomialAppliesSigmoid(t *testing.T) {
	model := &forest.Model{
		Header: forest.Header{Task: forest.Classification},
		Trees:  []*forest.Tree{oneLeafTree(2)},
		GBT: &forest.GBTHeader{
			Loss:               forest.BinomialLogLikelihood,
			NumTreesPerIter:    1,
			InitialPredictions: []float64{0},
		},
	}
	pred, err := Predict(model, forest.NewMapExample())
	require.NoError(t, err)
	require.Len(t, pred.ClassProbabilities, 2)
	assert.InDelta(t, sigmoid(2), pred.ClassProbabilities[1], 1e-9)
	assert.Equal(t, int32(1), pred.ClassLabel)
}

func TestPredictRegressionSumsTreesPlusInitial(t *testing.T) {
	model := &forest.Model{
		Header: forest.Header{Task: forest.Regression},
		Trees:  []*forest.Tree{oneLeafTree(1), oneLeafTree(2), oneLeafTree(3)},
		GBT: &forest.GBTHeader{
			Loss:               forest.SquaredError,
			NumTreesPerIter:    1,
			InitialPredictions: []float64{10},
		},
	}
	pred, err := Predict(model, forest.NewMapExample())
	require.NoError(t, err)
	assert.InDelta(t, 16, pred.Score, 1e-9)
}

func TestPredictRFClassificationAveragesVotes(t *testing.T) {
	treeA := forest.NewTree()
	treeA.SetLeaf(treeA.Root, &forest.Leaf{ClassDistribution: []float64{0.2, 0.8}})
	treeB := forest.NewTree()
	treeB.SetLeaf(treeB.Root, &forest.Leaf{ClassDistribution: []float64{0.6, 0.4}})

	model := &forest.Model{
		Header: forest.Header{Task: forest.Classification},
		Trees:  []*forest.Tree{treeA, treeB},
		RF:     &forest.RFHeader{WinnerTakeAll: true, NumClasses: 2},
	}
	pred, err := Predict(model, forest.NewMapExample())
	require.NoError(t, err)
	assert.InDelta(t, 0.4, pred.ClassProbabilities[0], 1e-9)
	assert.InDelta(t, 0.6, pred.ClassProbabilities[1], 1e-9)
	assert.Equal(t, int32(1), pred.ClassLabel)
}

func TestPredictRFRegressionAveragesLeaves(t *testing.T) {
	model := &forest.Model{
		Header: forest.Header{Task: forest.Regression},
		Trees:  []*forest.Tree{oneLeafTree(4), oneLeafTree(6)},
		RF:     &forest.RFHeader{},
	}
	pred, err := Predict(model, forest.NewMapExample())
	require.NoError(t, err)
	assert.InDelta(t, 5, pred.Score, 1e-9)
}
