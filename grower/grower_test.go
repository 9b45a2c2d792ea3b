package grower

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchml/forest/dataspec"
	"github.com/branchml/forest/dataset"
	"github.com/branchml/forest/forest"
	"github.com/branchml/forest/split"
)

func buildDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	spec := dataspec.New()
	spec.AddColumn(&dataspec.Column{Name: "x", Type: dataspec.Numerical, Numerical: &dataspec.NumericalSpec{}})
	spec.Freeze()
	ds := dataset.New(spec, 4)
	for i, x := range []float32{0, 1, 2, 3} {
		ds.SetNumerical(0, i, x)
	}
	return ds
}

func meanLeafSetter(target *split.Target) LeafSetter {
	return func(indices []int32) *forest.Leaf {
		var sumW, sumG float64
		for _, i := range indices {
			w := 1.0
			if target.Weights != nil {
				w = target.Weights[i]
			}
			sumW += w
			sumG += w * target.Gradients[i]
		}
		value := 0.0
		if sumW > 0 {
			value = sumG / sumW
		}
		return &forest.Leaf{TopValue: value, SumWeights: sumW, SumGradients: sumG}
	}
}

func TestGrowLocalSplitsOnHighLowTargets(t *testing.T) {
	ds := buildDataset(t)
	target := &split.Target{Gradients: []float64{0, 0, 10, 10}, Weights: []float64{1, 1, 1, 1}}
	cfg := &Config{MaxDepth: 2, Strategy: Local, Split: &split.Config{MinExamples: 1}}
	rng := rand.New(rand.NewSource(1))

	tree := Grow(rng, ds, ds.Spec, []int{0}, []int32{0, 1, 2, 3}, target, cfg, nil, meanLeafSetter(target))
	require.NoError(t, tree.Validate())
	assert.Equal(t, 2, tree.NumLeaves())
}

func TestGrowLocalUsesObliqueSplitWhenEnabled(t *testing.T) {
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

	target := &split.Target{Gradients: []float64{0, 0, 10, 10}, Weights: []float64{1, 1, 1, 1}}
	cfg := &Config{MaxDepth: 2, Strategy: Local, Split: &split.Config{
		MinExamples:             1,
		EnableObliqueSplits:     true,
		NumProjectionsExponent:  2,
		ProjectionDensityFactor: 4,
	}}
	rng := rand.New(rand.NewSource(1))

	tree := Grow(rng, ds, ds.Spec, []int{0, 1}, []int32{0, 1, 2, 3}, target, cfg, nil, meanLeafSetter(target))
	require.NoError(t, tree.Validate())
	assert.Equal(t, 2, tree.NumLeaves())
}

func TestGrowBestFirstRespectsMaxNumNodes(t *testing.T) {
	ds := buildDataset(t)
	target := &split.Target{Gradients: []float64{0, 0, 10, 10}, Weights: []float64{1, 1, 1, 1}}
	cfg := &Config{MaxDepth: 10, MaxNumNodes: 3, Strategy: BestFirst, Split: &split.Config{MinExamples: 1}}
	rng := rand.New(rand.NewSource(1))

	tree := Grow(rng, ds, ds.Spec, []int{0}, []int32{0, 1, 2, 3}, target, cfg, nil, meanLeafSetter(target))
	require.NoError(t, tree.Validate())
	assert.LessOrEqual(t, len(tree.Nodes), 3)
}
