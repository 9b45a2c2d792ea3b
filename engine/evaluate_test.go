package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchml/forest/forest"
)

func splitTreeOnColumnZero(threshold float64, left, right float64) *forest.Tree {
	t := forest.NewTree()
	cond := forest.NewNumericalCondition(0, threshold)
	l, r := t.Split(t.Root, cond, false, 0)
	t.SetLeaf(l, &forest.Leaf{TopValue: left})
	t.SetLeaf(r, &forest.Leaf{TopValue: right})
	return t
}

func exampleWithX(x float32) *forest.MapExample {
	ex := forest.NewMapExample()
	ex.Numerical[0] = x
	return ex
}

func TestEvaluateRegressionComputesRMSE(t *testing.T) {
	model := &forest.Model{
		Header: forest.Header{Task: forest.Regression},
		Trees:  []*forest.Tree{splitTreeOnColumnZero(0.5, 0, 2)},
		GBT: &forest.GBTHeader{
			Loss:               forest.SquaredError,
			NumTreesPerIter:    1,
			InitialPredictions: []float64{0},
		},
	}
	rows := []forest.Example{exampleWithX(0), exampleWithX(1)}
	labels := []float64{0, 2} // predictions exactly match labels
	metrics, err := Evaluate(model, rows, labels, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0, metrics["rmse"], 1e-9)
}

func TestEvaluateClassificationComputesAccuracy(t *testing.T) {
	model := &forest.Model{
		Header: forest.Header{Task: forest.Classification},
		Trees:  []*forest.Tree{splitTreeOnColumnZero(0.5, -5, 5)},
		GBT: &forest.GBTHeader{
			Loss:               forest.BinomialLogLikelihood,
			NumTreesPerIter:    1,
			InitialPredictions: []float64{0},
		},
	}
	rows := []forest.Example{exampleWithX(0), exampleWithX(1)}
	labels := []float64{0, 1}
	metrics, err := Evaluate(model, rows, labels, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1, metrics["accuracy"], 1e-9)
}

func TestEvaluateRankingComputesNDCG(t *testing.T) {
	model := &forest.Model{
		Header: forest.Header{Task: forest.Ranking},
		Trees:  []*forest.Tree{splitTreeOnColumnZero(1.5, 0, 10)},
		GBT: &forest.GBTHeader{
			Loss:               forest.LambdaMARTNDCG5,
			NumTreesPerIter:    1,
			InitialPredictions: []float64{0},
		},
	}
	rows := []forest.Example{exampleWithX(0), exampleWithX(1), exampleWithX(2)}
	relevance := []float64{0, 1, 2}
	groupKey := []int32{0, 0, 0}
	metrics, err := Evaluate(model, rows, relevance, groupKey)
	require.NoError(t, err)
	assert.InDelta(t, 1, metrics["ndcg@5"], 1e-9)
}
