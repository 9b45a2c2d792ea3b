package gbt

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
	"github.com/branchml/forest/loss"
	"github.com/branchml/forest/split"
)

func buildRegressionDataset(t *testing.T) (*dataset.Dataset, []float64) {
	t.Helper()
	spec := dataspec.New()
	spec.AddColumn(&dataspec.Column{Name: "x", Type: dataspec.Numerical, Numerical: &dataspec.NumericalSpec{}})
	spec.Freeze()

	ds := dataset.New(spec, 8)
	labels := make([]float64, 8)
	for i := 0; i < 8; i++ {
		ds.SetNumerical(0, i, float32(i))
		labels[i] = float64(i) * 2
	}
	return ds, labels
}

func baseConfig() *Config {
	return &Config{
		NumTrees:   5,
		Loss:       loss.SquaredError,
		Shrinkage:  0.3,
		RandomSeed: 7,
		Grower: &grower.Config{
			MaxDepth: 2,
			Strategy: grower.Local,
			Split:    &split.Config{MinExamples: 1},
		},
		Leaf: loss.LeafConfig{Shrinkage: 0.3},
	}
}

func TestTrainProducesValidModelThatReducesResiduals(t *testing.T) {
	ds, labels := buildRegressionDataset(t)
	header := forest.Header{Name: "m", Task: forest.Regression, InputFeatures: []int{0}, GroupColumn: -1}

	model, err := Train(context.Background(), ds, ds.Spec, header, labels, nil, nil, baseConfig())
	require.NoError(t, err)
	require.NoError(t, model.Validate())
	assert.Equal(t, 5, len(model.Trees))
	assert.Equal(t, 1, model.GBT.NumTreesPerIter)
	assert.Len(t, model.GBT.TrainingLogs, 5)
	for i := 1; i < len(model.GBT.TrainingLogs); i++ {
		assert.LessOrEqual(t, model.GBT.TrainingLogs[i].TrainingLoss, model.GBT.TrainingLogs[i-1].TrainingLoss+1e-6)
	}
}

func TestTrainRespectsContextCancellation(t *testing.T) {
	ds, labels := buildRegressionDataset(t)
	header := forest.Header{Name: "m", Task: forest.Regression, InputFeatures: []int{0}, GroupColumn: -1}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := baseConfig()
	cfg.NumTrees = 100
	model, err := Train(ctx, ds, ds.Spec, header, labels, nil, nil, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, len(model.Trees))
}

func TestTrainWithValidationSplitRecordsValidationLoss(t *testing.T) {
	ds, labels := buildRegressionDataset(t)
	header := forest.Header{Name: "m", Task: forest.Regression, InputFeatures: []int{0}, GroupColumn: -1}

	cfg := baseConfig()
	cfg.ValidationSetRatio = 0.5
	model, err := Train(context.Background(), ds, ds.Spec, header, labels, nil, nil, cfg)
	require.NoError(t, err)
	require.NoError(t, model.Validate())
	for _, e := range model.GBT.TrainingLogs {
		assert.GreaterOrEqual(t, e.ValidationLoss, 0.0)
	}
}

func TestShouldStopOnLossIncreaseTriggersAfterLookAhead(t *testing.T) {
	history := []float64{1.0, 0.9, 0.95, 1.0, 1.1}
	assert.True(t, shouldStopOnLossIncrease(history, 2))
	assert.False(t, shouldStopOnLossIncrease(history[:2], 2))
}

func TestBootstrapRandomSubsetRespectsRate(t *testing.T) {
	idx := []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	out := randomSubset(nil, idx, 2) // rate >= 1 returns the input unchanged
	assert.Equal(t, idx, out)
}

func TestGossSubsetReweightsSampledLowGradientRows(t *testing.T) {
	idx := []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	labels := make([]float64, 10)
	predictions := make([]float64, 10)
	for i := range labels {
		labels[i] = float64(i) // ascending |gradient|
	}
	cfg := &Config{GOSSAlpha: 0.2, GOSSBeta: 1} // beta=1 always keeps every low-gradient row
	rng := rand.New(rand.NewSource(1))

	sampled, weightScale := gossSubset(rng, idx, labels, predictions, 1, cfg)
	assert.Len(t, sampled, 10) // top 20% kept outright, remaining 80% all drawn at beta=1
	assert.NotEmpty(t, weightScale)
	for _, row := range sampled[2:] { // everything past the top-alpha fraction was reweighted
		scale, ok := weightScale[row]
		require.True(t, ok)
		assert.InDelta(t, cfg.GOSSAlpha/(1-cfg.GOSSAlpha), scale, 1e-9)
	}
	for _, row := range sampled[:2] {
		_, ok := weightScale[row]
		assert.False(t, ok) // top-alpha rows are kept outright, never reweighted
	}
}

func TestSampleRowsDispatchesSELGBPerGroupEvenForRankingTasks(t *testing.T) {
	groups := []loss.RankingGroup{
		{Indices: []int32{0, 1, 2, 3}, Relevances: []float64{2, 0, 0, 0}},
	}
	trainIdx := []int32{0, 1, 2, 3}
	labels := []float64{2, 0, 0, 0}
	predictions := []float64{0, 5, 1, 0} // row 1 has the largest residual among the negatives
	cfg := &Config{SamplingMethod: SELGB, SELGBRatio: 0.5}

	sampled, weightScale := sampleRows(nil, trainIdx, labels, predictions, 1, cfg, 0, groups)
	assert.Nil(t, weightScale)
	assert.Contains(t, sampled, int32(0))  // the positive-relevance row is always kept
	assert.Contains(t, sampled, int32(1))  // hardest negative by squared residual
	assert.NotContains(t, sampled, int32(3))
}

func TestSampleRowsIgnoresSamplingMethodForNonSELGBRankingTasks(t *testing.T) {
	groups := []loss.RankingGroup{{Indices: []int32{0, 1}, Relevances: []float64{1, 0}}}
	trainIdx := []int32{0, 1}
	cfg := &Config{SamplingMethod: RandomSampling}

	sampled, weightScale := sampleRows(rand.New(rand.NewSource(1)), trainIdx, nil, nil, 1, cfg, 0.1, groups)
	assert.Equal(t, trainIdx, sampled)
	assert.Nil(t, weightScale)
}
