package rf

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchml/forest/dataset"
	"github.com/branchml/forest/dataspec"
	"github.com/branchml/forest/forest"
	"github.com/branchml/forest/grower"
	"github.com/branchml/forest/split"
)

func buildClassificationDataset(t *testing.T) (*dataset.Dataset, []int32) {
	t.Helper()
	spec := dataspec.New()
	spec.AddColumn(&dataspec.Column{Name: "x", Type: dataspec.Numerical, Numerical: &dataspec.NumericalSpec{}})
	spec.Freeze()

	n := 40
	ds := dataset.New(spec, n)
	labels := make([]int32, n)
	for i := 0; i < n; i++ {
		ds.SetNumerical(0, i, float32(i))
		if i < n/2 {
			labels[i] = 0
		} else {
			labels[i] = 1
		}
	}
	return ds, labels
}

func TestTrainClassificationProducesValidModelWithOOBAccuracy(t *testing.T) {
	ds, labels := buildClassificationDataset(t)
	header := forest.Header{Name: "m", Task: forest.Classification, InputFeatures: []int{0}, GroupColumn: -1}
	cfg := &Config{
		NumTrees:           15,
		BootstrapSizeRatio: 1.0,
		WinnerTakeAll:      true,
		NumClasses:         2,
		NumWorkers:         4,
		RandomSeed:         3,
		Grower: &grower.Config{
			MaxDepth: 4,
			Strategy: grower.Local,
			Split:    &split.Config{MinExamples: 1},
		},
	}

	model, err := Train(context.Background(), ds, ds.Spec, header, nil, labels, nil, cfg)
	require.NoError(t, err)
	require.NoError(t, model.Validate())
	assert.Equal(t, 15, len(model.Trees))
	require.NotNil(t, model.RF)
	assert.Greater(t, model.RF.OOBAccuracy, 0.5)
	assert.Contains(t, model.RF.VariableImportance, "x")
}

func buildRegressionDataset(t *testing.T) (*dataset.Dataset, []float64) {
	t.Helper()
	spec := dataspec.New()
	spec.AddColumn(&dataspec.Column{Name: "x", Type: dataspec.Numerical, Numerical: &dataspec.NumericalSpec{}})
	spec.Freeze()

	n := 30
	ds := dataset.New(spec, n)
	labels := make([]float64, n)
	for i := 0; i < n; i++ {
		ds.SetNumerical(0, i, float32(i))
		labels[i] = float64(i)
	}
	return ds, labels
}

func TestTrainRegressionProducesValidModelWithOOBRMSE(t *testing.T) {
	ds, labels := buildRegressionDataset(t)
	header := forest.Header{Name: "m", Task: forest.Regression, InputFeatures: []int{0}, GroupColumn: -1}
	cfg := &Config{
		NumTrees:           10,
		BootstrapSizeRatio: 1.0,
		NumWorkers:         2,
		RandomSeed:         5,
		Grower: &grower.Config{
			MaxDepth: 5,
			Strategy: grower.Local,
			Split:    &split.Config{MinExamples: 1},
		},
	}

	model, err := Train(context.Background(), ds, ds.Spec, header, labels, nil, nil, cfg)
	require.NoError(t, err)
	require.NoError(t, model.Validate())
	require.NotNil(t, model.RF)
	assert.GreaterOrEqual(t, model.RF.OOBRMSE, 0.0)
}

func TestBootstrapSampleSizeMatchesRatio(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	sample, oob := bootstrapSample(rng, 100, 0.5)
	assert.Len(t, sample, 50)
	assert.Greater(t, len(oob), 0)
}
