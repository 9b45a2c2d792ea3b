package loss

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinomialInitialPredictionIsZeroForBalancedLabels(t *testing.T) {
	b := &Binomial{}
	preds := b.InitialPredictions([]float64{0, 0, 1, 1}, nil, 0)
	assert.InDelta(t, 0, preds[0], 1e-9)
}

func TestBinomialGradientMatchesResidual(t *testing.T) {
	b := &Binomial{}
	g, h := b.Gradients([]float64{1, 0}, []float64{0, 0}, nil, nil, 0, 1, nil)
	assert.InDelta(t, 0.5, g[0], 1e-9)
	assert.InDelta(t, -0.5, g[1], 1e-9)
	assert.Greater(t, h[0], 0.0)
}

func TestSquaredErrorLeafValueMatchesWeightedResidualMean(t *testing.T) {
	s := &SquaredErrorLoss{}
	cfg := LeafConfig{Shrinkage: 1}
	v := s.LeafValue(4, 0, 2, cfg)
	assert.InDelta(t, 2.0, v, 1e-9)
}

func TestBuildRankingGroupsOrdersByDescendingRelevance(t *testing.T) {
	groups, err := BuildRankingGroups([]int32{0, 0, 0}, []float64{2, 4, 0})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []float64{4, 2, 0}, groups[0].Relevances)
}

func TestBuildRankingGroupsRejectsOversizedGroup(t *testing.T) {
	key := make([]int32, MaxItemsInRankingGroup+1)
	rel := make([]float64, MaxItemsInRankingGroup+1)
	_, err := BuildRankingGroups(key, rel)
	require.Error(t, err)
}

func TestLambdaMARTZeroGradientForSingletonGroup(t *testing.T) {
	l := &LambdaMART{}
	groups := []RankingGroup{{Indices: []int32{0}, Relevances: []float64{3}}}
	g, h := l.Gradients([]float64{3}, []float64{0}, nil, groups, 0, 1, rand.New(rand.NewSource(1)))
	assert.Equal(t, 0.0, g[0])
	_ = h
}

func TestOrderByPredictedScoreShufflesTiesWhenRNGGiven(t *testing.T) {
	indices := []int32{0, 1, 2, 3}
	predictions := []float64{0, 0, 0, 0}

	firstTie := orderByPredictedScore(rand.New(rand.NewSource(1)), indices, predictions)
	secondTie := orderByPredictedScore(rand.New(rand.NewSource(2)), indices, predictions)
	assert.NotEqual(t, firstTie, secondTie)

	deterministic := orderByPredictedScore(nil, indices, predictions)
	assert.Equal(t, []int32{3, 2, 1, 0}, deterministic)
}

func TestLambdaMARTGradientsUsesRNGForTieBreak(t *testing.T) {
	l := &LambdaMART{}
	groups := []RankingGroup{{Indices: []int32{0, 1, 2}, Relevances: []float64{2, 1, 0}}}
	labels := []float64{2, 1, 0}
	predictions := []float64{0, 0, 0}
	g1, _ := l.Gradients(labels, predictions, nil, groups, 0, 1, rand.New(rand.NewSource(1)))
	g2, _ := l.Gradients(labels, predictions, nil, groups, 0, 1, rand.New(rand.NewSource(42)))
	assert.NotEqual(t, g1, g2)
}

func TestXENDCGGradientsFavorsHigherRelevanceRow(t *testing.T) {
	x := &XENDCG{}
	groups := []RankingGroup{{Indices: []int32{0, 1}, Relevances: []float64{1, 0}}}
	labels := []float64{1, 0}
	predictions := []float64{0, 0}
	g, h := x.Gradients(labels, predictions, nil, groups, 0, 1, nil)
	assert.Greater(t, g[0], g[1])
	assert.Greater(t, h[0], 0.0)
}

func TestXENDCGGradientsJitterVariesWithRNG(t *testing.T) {
	x := &XENDCG{}
	groups := []RankingGroup{{Indices: []int32{0, 1, 2}, Relevances: []float64{2, 1, 0}}}
	labels := []float64{2, 1, 0}
	predictions := []float64{0, 0, 0}
	g1, _ := x.Gradients(labels, predictions, nil, groups, 0, 1, rand.New(rand.NewSource(1)))
	g2, _ := x.Gradients(labels, predictions, nil, groups, 0, 1, rand.New(rand.NewSource(42)))
	assert.NotEqual(t, g1, g2)

	deterministic1, _ := x.Gradients(labels, predictions, nil, groups, 0, 1, nil)
	deterministic2, _ := x.Gradients(labels, predictions, nil, groups, 0, 1, nil)
	assert.Equal(t, deterministic1, deterministic2)
}

func TestXENDCGValueIsDeterministic(t *testing.T) {
	x := &XENDCG{}
	groups := []RankingGroup{{Indices: []int32{0, 1}, Relevances: []float64{1, 0}}}
	labels := []float64{1, 0}
	predictions := []float64{0.5, -0.5}
	v1, secondary1 := x.Value(labels, predictions, nil, groups, 1)
	v2, secondary2 := x.Value(labels, predictions, nil, groups, 1)
	assert.Equal(t, v1, v2)
	assert.Equal(t, secondary1, secondary2)
}

func TestMultinomialNumTreesPerIter(t *testing.T) {
	m := &Multinomial{NumClasses: 3}
	assert.Equal(t, 2, m.NumTreesPerIter(3))
}

func TestClampLeafLogit(t *testing.T) {
	v := clampLeaf(10, LeafConfig{ClampLeafLogit: 2})
	assert.Equal(t, 2.0, v)
	assert.True(t, math.Abs(clampLeaf(-10, LeafConfig{ClampLeafLogit: 2})-(-2)) < 1e-9)
}
