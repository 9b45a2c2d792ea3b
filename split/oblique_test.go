package split

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchml/forest/dataspec"
	"github.com/branchml/forest/dataset"
	"github.com/branchml/forest/forest"
)

func buildTwoColumnDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	spec := dataspec.New()
	spec.AddColumn(&dataspec.Column{Name: "x", Type: dataspec.Numerical, Numerical: &dataspec.NumericalSpec{}})
	spec.AddColumn(&dataspec.Column{Name: "y", Type: dataspec.Numerical, Numerical: &dataspec.NumericalSpec{}})
	spec.Freeze()

	ds := dataset.New(spec, 4)
	xs := []float32{0, 1, 2, 3}
	ys := []float32{3, 2, 1, 0}
	for i := range xs {
		ds.SetNumerical(0, i, xs[i])
		ds.SetNumerical(1, i, ys[i])
	}
	return ds
}

func TestObliqueCandidatesFindsProjectionSplit(t *testing.T) {
	ds := buildTwoColumnDataset(t)
	target := &Target{Gradients: []float64{0, 0, 10, 10}, Weights: []float64{1, 1, 1, 1}}
	cfg := &Config{MinExamples: 1, NumProjectionsExponent: 2, ProjectionDensityFactor: 4}
	rng := rand.New(rand.NewSource(3))

	cs := ObliqueCandidates(rng, ds, []int{0, 1}, []int32{0, 1, 2, 3}, target, cfg)
	require.NotNil(t, cs)
	assert.Equal(t, forest.ObliqueSparse, cs.condition.Type)
	assert.NotEmpty(t, cs.condition.Weights)
}

func TestObliqueSplitWrapsResult(t *testing.T) {
	ds := buildTwoColumnDataset(t)
	target := &Target{Gradients: []float64{0, 0, 10, 10}, Weights: []float64{1, 1, 1, 1}}
	cfg := &Config{MinExamples: 1, NumProjectionsExponent: 2, ProjectionDensityFactor: 4}
	rng := rand.New(rand.NewSource(3))

	result := ObliqueSplit(rng, ds, []int{0, 1}, []int32{0, 1, 2, 3}, target, cfg)
	require.True(t, result.Found)
	assert.Equal(t, forest.ObliqueSparse, result.Condition.Type)
	assert.NotEmpty(t, result.LeftIndices)
	assert.NotEmpty(t, result.RightIndices)
}

func TestObliqueCandidatesNilWithoutNumericalColumns(t *testing.T) {
	ds := buildTwoColumnDataset(t)
	target := &Target{Gradients: []float64{0, 0, 10, 10}, Weights: []float64{1, 1, 1, 1}}
	cfg := &Config{MinExamples: 1}
	rng := rand.New(rand.NewSource(3))

	cs := ObliqueCandidates(rng, ds, nil, []int32{0, 1, 2, 3}, target, cfg)
	assert.Nil(t, cs)
}
