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

func buildRegressionDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	spec := dataspec.New()
	spec.AddColumn(&dataspec.Column{Name: "x", Type: dataspec.Numerical, Numerical: &dataspec.NumericalSpec{}})
	spec.Freeze()

	ds := dataset.New(spec, 4)
	xs := []float32{0, 1, 2, 3}
	for i, x := range xs {
		ds.SetNumerical(0, i, x)
	}
	return ds
}

func TestFindBestSplitNumericalSeparatesHighLowTargets(t *testing.T) {
	ds := buildRegressionDataset(t)
	target := &Target{
		Gradients: []float64{0, 0, 10, 10},
		Weights:   []float64{1, 1, 1, 1},
	}
	cfg := &Config{MinExamples: 1}
	indices := []int32{0, 1, 2, 3}
	rng := rand.New(rand.NewSource(1))

	result := FindBestSplit(rng, ds, ds.Spec, []int{0}, indices, target, cfg, nil)
	require.True(t, result.Found)
	require.Equal(t, forest.NumericalHigherThanThreshold, result.Condition.Type)
	assert.InDelta(t, 1.5, result.Condition.Threshold, 1e-9)
	assert.ElementsMatch(t, []int32{0, 1}, result.LeftIndices)
	assert.ElementsMatch(t, []int32{2, 3}, result.RightIndices)
}

func TestFindBestSplitUsesPresortIndex(t *testing.T) {
	ds := buildRegressionDataset(t)
	presort := BuildPresortIndex(ds)
	target := &Target{Gradients: []float64{0, 0, 10, 10}, Weights: []float64{1, 1, 1, 1}}
	cfg := &Config{MinExamples: 1, NumericalSplitStrategy: Presort}
	rng := rand.New(rand.NewSource(1))

	result := FindBestSplit(rng, ds, ds.Spec, []int{0}, []int32{0, 1, 2, 3}, target, cfg, presort)
	require.True(t, result.Found)
	assert.InDelta(t, 1.5, result.Condition.Threshold, 1e-9)
}

func TestNewtonGainPrefersBalancedHighGradientSplit(t *testing.T) {
	gain := newtonGain(10, 1, -10, 1, 0, 2, 0, 0, 0)
	assert.Greater(t, gain, 0.0)
}

func TestCategoricalCARTSplit(t *testing.T) {
	spec := dataspec.New()
	dict := dataspec.NewDictionary()
	a := dict.Add("a")
	b := dict.Add("b")
	spec.AddColumn(&dataspec.Column{Name: "y", Type: dataspec.Categorical, Categorical: &dataspec.CategoricalSpec{Dictionary: dict}})
	spec.Freeze()

	ds := dataset.New(spec, 4)
	ds.SetCategorical(0, 0, a)
	ds.SetCategorical(0, 1, a)
	ds.SetCategorical(0, 2, b)
	ds.SetCategorical(0, 3, b)

	target := &Target{Gradients: []float64{0, 0, 10, 10}, Weights: []float64{1, 1, 1, 1}}
	cfg := &Config{MinExamples: 1}
	rng := rand.New(rand.NewSource(2))
	result := FindBestSplit(rng, ds, ds.Spec, []int{0}, []int32{0, 1, 2, 3}, target, cfg, nil)
	require.True(t, result.Found)
	assert.Equal(t, forest.CategoricalInMask, result.Condition.Type)
}
