package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchml/forest/forest"
	"github.com/branchml/forest/internal/cache"
)

func TestCachedPredictorReturnsSameResultAsPredict(t *testing.T) {
	model := &forest.Model{
		Header: forest.Header{Task: forest.Regression, InputFeatures: []int{0}},
		Trees:  []*forest.Tree{oneLeafTree(3)},
		GBT: &forest.GBTHeader{
			Loss:               forest.SquaredError,
			NumTreesPerIter:    1,
			InitialPredictions: []float64{1},
		},
	}
	c, err := cache.NewLRU(16)
	require.NoError(t, err)
	cp := NewCachedPredictor(model, c)

	ex := exampleWithX(5)
	first, err := cp.Predict(ex)
	require.NoError(t, err)
	second, err := cp.Predict(ex)
	require.NoError(t, err)
	assert.Equal(t, first.Score, second.Score)
	assert.InDelta(t, 4, second.Score, 1e-9)
}
