package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchml/forest/forest"
	"github.com/branchml/forest/gbt"
	"github.com/branchml/forest/loss"
	"github.com/branchml/forest/split"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTrainingConfigDecodesGBTFields(t *testing.T) {
	path := writeTempFile(t, `
learner: GRADIENT_BOOSTED_TREES
label: y
random_seed: 7
num_trees: 50
shrinkage: 0.1
loss: SQUARED_ERROR
sampling_method: GOSS
goss_alpha: 0.3
`)
	cfg, err := LoadTrainingConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "GRADIENT_BOOSTED_TREES", cfg.Learner)
	assert.Equal(t, int64(7), cfg.RandomSeed)

	gbtCfg, err := cfg.ToGBTConfig()
	require.NoError(t, err)
	assert.Equal(t, 50, gbtCfg.NumTrees)
	assert.Equal(t, loss.SquaredError, gbtCfg.Loss)
	assert.Equal(t, gbt.GOSS, gbtCfg.SamplingMethod)
	assert.InDelta(t, 0.3, gbtCfg.GOSSAlpha, 1e-9)
}

func TestToSplitConfigThreadsEveryKnob(t *testing.T) {
	path := writeTempFile(t, `
learner: GRADIENT_BOOSTED_TREES
label: y
min_examples: 5
num_candidate_attributes_ratio: 0.5
categorical_split_strategy: ONE_HOT
numerical_split_strategy: PRESORT
missing_value_policy: LOCAL_IMPUTATION
allow_na_conditions: true
l1_regularization: 0.1
l2_regularization: 0.2
gamma: 0.3
enable_oblique_splits: true
num_projections_exponent: 0.75
projection_density_factor: 3
oblique_normalization: STANDARD_DEVIATION
`)
	cfg, err := LoadTrainingConfig(path)
	require.NoError(t, err)

	splitCfg, err := cfg.ToSplitConfig(true)
	require.NoError(t, err)
	assert.Equal(t, 5, splitCfg.MinExamples)
	assert.InDelta(t, 0.5, splitCfg.NumCandidateAttributesRatio, 1e-9)
	assert.Equal(t, split.OneHot, splitCfg.CategoricalSplitStrategy)
	assert.Equal(t, split.Presort, splitCfg.NumericalSplitStrategy)
	assert.Equal(t, split.LocalImputation, splitCfg.MissingValuePolicy)
	assert.True(t, splitCfg.AllowNAConditions)
	assert.True(t, splitCfg.UseHessianGain)
	assert.InDelta(t, 0.1, splitCfg.L1, 1e-9)
	assert.InDelta(t, 0.2, splitCfg.L2, 1e-9)
	assert.InDelta(t, 0.3, splitCfg.Gamma, 1e-9)
	assert.True(t, splitCfg.EnableObliqueSplits)
	assert.InDelta(t, 0.75, splitCfg.NumProjectionsExponent, 1e-9)
	assert.InDelta(t, 3, splitCfg.ProjectionDensityFactor, 1e-9)
	assert.Equal(t, forest.StandardDeviationNormalization, splitCfg.ObliqueNormalization)

	rfSplitCfg, err := cfg.ToSplitConfig(false)
	require.NoError(t, err)
	assert.False(t, rfSplitCfg.UseHessianGain)
}

func TestToSplitConfigRejectsUnknownStrategy(t *testing.T) {
	path := writeTempFile(t, `
learner: RANDOM_FOREST
label: y
categorical_split_strategy: NOT_A_STRATEGY
`)
	cfg, err := LoadTrainingConfig(path)
	require.NoError(t, err)

	_, err = cfg.ToSplitConfig(false)
	require.Error(t, err)
}

func TestLoadDeploymentConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadDeploymentConfig("")
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.NumThreads)
	assert.Equal(t, "LOCAL", cfg.Execution)

	path := writeTempFile(t, "cache_path: /tmp/cache\n")
	cfg, err = LoadDeploymentConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.NumThreads)
	assert.Equal(t, "/tmp/cache", cfg.CachePath)
}

func TestLoadGuideCompilesPatterns(t *testing.T) {
	path := writeTempFile(t, `
entries:
  - pattern: "^cat_"
    type: CATEGORICAL
    max_vocab_count: 100
`)
	guide, err := LoadGuide(path)
	require.NoError(t, err)
	require.Len(t, guide.Entries, 1)
	e := guide.Match("cat_color")
	require.NotNil(t, e)
	assert.Equal(t, 100, e.Overrides.MaxVocabCount)
}
