// Package config decodes the textual key/value configuration documents
// a training run needs: training config, deployment config, and the
// dataspec guide. It unmarshals into a loosely-typed struct with
// gopkg.in/yaml.v2, then validates/converts field by field, rather than
// trusting yaml.v2's defaults to produce a ready-to-use value.
package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"

	"github.com/branchml/forest/engine"
	"github.com/branchml/forest/forest"
	"github.com/branchml/forest/gbt"
	"github.com/branchml/forest/loss"
	"github.com/branchml/forest/rf"
	"github.com/branchml/forest/split"
)

// HyperParamValue is one of the generic-hyperparameter value kinds:
// string, integer, real, or categorical-list. yaml.v2 decodes YAML
// scalars/sequences into the matching Go type already, so this is just
// a documented alias rather than a custom union type.
type HyperParamValue interface{}

// HyperParam is one (name, value) pair of the generic hyper-parameter
// form. The list is decoded into TrainingConfig.HyperParameters, but no
// To*Config conversion reads it, so its entries have no effect on
// training.
type HyperParam struct {
	Name  string
	Value HyperParamValue
}

// TrainingConfig is the decoded form of a training config file: learner
// selection plus every learner's hyper-parameters, all optional (an
// absent field keeps the learner's documented default) plus a generic
// hyperparameter list that is decoded but not applied (see HyperParam).
type TrainingConfig struct {
	Learner     string `yaml:"learner"`
	Label       string `yaml:"label"`
	GroupColumn string `yaml:"group_column"`
	Weights     string `yaml:"weights"`
	RandomSeed  int64  `yaml:"random_seed"`
	Loss        string `yaml:"loss"`
	NumClasses  int    `yaml:"num_classes"`

	// Tree-growing knobs shared by GBT and RF.
	MaxDepth        int     `yaml:"max_depth"`
	MaxNumNodes     int     `yaml:"max_num_nodes"`
	GrowingStrategy string  `yaml:"growing_strategy"`
	MinExamples     int     `yaml:"min_examples"`
	ValidationRatio float64 `yaml:"validation_ratio"`
	NumThreadsHint  int     `yaml:"num_threads"`

	// Split-search knobs, threaded into split.Config for every node's
	// condition search.
	NumCandidateAttributes      int     `yaml:"num_candidate_attributes"`
	NumCandidateAttributesRatio float64 `yaml:"num_candidate_attributes_ratio"`
	InSplitMinExamplesCheck     bool    `yaml:"in_split_min_examples_check"`
	AllowNAConditions           bool    `yaml:"allow_na_conditions"`
	MissingValuePolicy          string  `yaml:"missing_value_policy"`
	NumericalSplitStrategy      string  `yaml:"numerical_split_strategy"`
	CategoricalSplitStrategy    string  `yaml:"categorical_split_strategy"`
	MaxNumTrials                int     `yaml:"max_num_trials"`
	MinFrequency                int64   `yaml:"min_frequency"`
	L2CategoricalRegularization float64 `yaml:"l2_categorical_regularization"`

	// Oblique projections; EnableObliqueSplits defaults to off since
	// axis-aligned CART is the common case.
	EnableObliqueSplits     bool    `yaml:"enable_oblique_splits"`
	NumProjectionsExponent  float64 `yaml:"num_projections_exponent"`
	ProjectionDensityFactor float64 `yaml:"projection_density_factor"`
	ObliqueNormalization    string  `yaml:"oblique_normalization"`

	// CategoricalSet greedy selection.
	CategoricalSetGreedySampling float64 `yaml:"categorical_set_greedy_sampling"`
	CategoricalSetMaxNumItems    int     `yaml:"categorical_set_max_num_items"`

	// GBT-specific.
	NumTrees                        int     `yaml:"num_trees"`
	Shrinkage                       float64 `yaml:"shrinkage"`
	SamplingMethod                  string  `yaml:"sampling_method"`
	Subsample                       float64 `yaml:"subsample"`
	GOSSAlpha                       float64 `yaml:"goss_alpha"`
	GOSSBeta                        float64 `yaml:"goss_beta"`
	SELGBRatio                      float64 `yaml:"selgb_ratio"`
	Extraction                      string  `yaml:"extraction"`
	DartDropout                     float64 `yaml:"dart_dropout"`
	EarlyStopping                   string  `yaml:"early_stopping"`
	EarlyStoppingNumTreesLookAhead  int     `yaml:"early_stopping_num_trees_look_ahead"`
	MaximumTrainingDurationSeconds  float64 `yaml:"maximum_training_duration_seconds"`
	AdaptSubsampleForMaxDuration    bool    `yaml:"adapt_subsample_for_maximum_training_duration"`
	L1                              float64 `yaml:"l1_regularization"`
	L2                              float64 `yaml:"l2_regularization"`
	Gamma                           float64 `yaml:"gamma"`
	ClampLeafLogit                  float64 `yaml:"clamp_leaf_logit"`

	// RF-specific.
	BootstrapSizeRatio float64 `yaml:"bootstrap_size_ratio"`
	WinnerTakeAll      bool    `yaml:"winner_take_all"`

	HyperParameters []HyperParam `yaml:"hyperparameters"`
}

// DeploymentConfig is the decoded form of a deployment config file.
type DeploymentConfig struct {
	NumThreads int    `yaml:"num_threads"`
	CachePath  string `yaml:"cache_path"`
	Execution  string `yaml:"execution"`
}

// Defaulted returns a copy of d with its defaults applied:
// num_threads=6, execution=LOCAL.
func (d DeploymentConfig) Defaulted() DeploymentConfig {
	if d.NumThreads <= 0 {
		d.NumThreads = 6
	}
	if d.Execution == "" {
		d.Execution = "LOCAL"
	}
	return d
}

// LoadTrainingConfig reads and decodes a training config YAML file.
func LoadTrainingConfig(path string) (*TrainingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, engine.Wrap(engine.NotFound, err)
	}
	cfg := &TrainingConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, engine.Wrap(engine.InvalidArgument, fmt.Errorf("parsing training config %s: %w", path, err))
	}
	return cfg, nil
}

// LoadDeploymentConfig reads and decodes a deployment config YAML file,
// applying its defaults. A missing path is not an error: the caller
// gets an all-defaults DeploymentConfig, since --deployment is optional
// on the train CLI subcommand.
func LoadDeploymentConfig(path string) (*DeploymentConfig, error) {
	if path == "" {
		d := DeploymentConfig{}.Defaulted()
		return &d, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, engine.Wrap(engine.NotFound, err)
	}
	cfg := &DeploymentConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, engine.Wrap(engine.InvalidArgument, fmt.Errorf("parsing deployment config %s: %w", path, err))
	}
	*cfg = cfg.Defaulted()
	return cfg, nil
}

// lossByName maps the training config's string loss field to a
// loss.Kind from the closed set of supported losses.
func lossByName(name string) (loss.Kind, error) {
	switch name {
	case "", "BINOMIAL_LOG_LIKELIHOOD":
		return loss.BinomialLogLikelihood, nil
	case "MULTINOMIAL_LOG_LIKELIHOOD":
		return loss.MultinomialLogLikelihood, nil
	case "SQUARED_ERROR":
		return loss.SquaredError, nil
	case "LAMBDA_MART_NDCG5":
		return loss.LambdaMARTNDCG5, nil
	case "XE_NDCG_MART":
		return loss.XENDCGMART, nil
	default:
		return 0, engine.Newf(engine.InvalidArgument, "config: unknown loss %q", name)
	}
}

// samplingMethodByName maps the training config's string sampling_method
// field to a gbt.SamplingMethod.
func samplingMethodByName(name string) (gbt.SamplingMethod, error) {
	switch name {
	case "", "NONE":
		return gbt.NoSampling, nil
	case "RANDOM":
		return gbt.RandomSampling, nil
	case "GOSS":
		return gbt.GOSS, nil
	case "SELGB":
		return gbt.SELGB, nil
	default:
		return 0, engine.Newf(engine.InvalidArgument, "config: unknown sampling_method %q", name)
	}
}

// extractionByName maps the training config's string extraction field to
// a gbt.ForestExtraction.
func extractionByName(name string) (gbt.ForestExtraction, error) {
	switch name {
	case "", "PLAIN_ADDITIVE":
		return gbt.PlainAdditive, nil
	case "DART":
		return gbt.DART, nil
	default:
		return 0, engine.Newf(engine.InvalidArgument, "config: unknown extraction %q", name)
	}
}

// earlyStoppingByName maps the training config's string early_stopping
// field to a gbt.EarlyStoppingPolicy.
func earlyStoppingByName(name string) (gbt.EarlyStoppingPolicy, error) {
	switch name {
	case "", "NONE":
		return gbt.NoEarlyStopping, nil
	case "LOSS_INCREASE":
		return gbt.LossIncrease, nil
	case "MIN_LOSS_FINAL":
		return gbt.MinLossFinal, nil
	default:
		return 0, engine.Newf(engine.InvalidArgument, "config: unknown early_stopping %q", name)
	}
}

// ToGBTConfig converts a decoded training config into a *gbt.Config,
// applying the named-constant conversions above. It does not resolve
// Grower (the grower.Config is shared structural wiring the train
// subcommand builds once and threads into both learners).
func (c *TrainingConfig) ToGBTConfig() (*gbt.Config, error) {
	k, err := lossByName(c.Loss)
	if err != nil {
		return nil, err
	}
	sampling, err := samplingMethodByName(c.SamplingMethod)
	if err != nil {
		return nil, err
	}
	extraction, err := extractionByName(c.Extraction)
	if err != nil {
		return nil, err
	}
	earlyStopping, err := earlyStoppingByName(c.EarlyStopping)
	if err != nil {
		return nil, err
	}
	return &gbt.Config{
		NumTrees:           c.NumTrees,
		Loss:               k,
		Shrinkage:          c.Shrinkage,
		SamplingMethod:     sampling,
		Subsample:          c.Subsample,
		GOSSAlpha:          c.GOSSAlpha,
		GOSSBeta:           c.GOSSBeta,
		SELGBRatio:         c.SELGBRatio,
		Extraction:         extraction,
		DartDropout:        c.DartDropout,
		ValidationSetRatio: c.ValidationRatio,
		EarlyStopping:      earlyStopping,
		EarlyStoppingNumTreesLookAhead:            c.EarlyStoppingNumTreesLookAhead,
		MaximumTrainingDuration:                   secondsToDuration(c.MaximumTrainingDurationSeconds),
		AdaptSubsampleForMaximumTrainingDuration:  c.AdaptSubsampleForMaxDuration,
		RandomSeed: c.RandomSeed,
		NumClasses: c.NumClasses,
		Leaf: loss.LeafConfig{
			L1:             c.L1,
			L2:             c.L2,
			Shrinkage:      c.Shrinkage,
			ClampLeafLogit: c.ClampLeafLogit,
		},
	}, nil
}

func secondsToDuration(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}

// missingValuePolicyByName maps the training config's string
// missing_value_policy field to a split.MissingValuePolicy.
func missingValuePolicyByName(name string) (split.MissingValuePolicy, error) {
	switch name {
	case "", "GLOBAL_IMPUTATION":
		return split.GlobalImputation, nil
	case "LOCAL_IMPUTATION":
		return split.LocalImputation, nil
	case "RANDOM_LOCAL_IMPUTATION":
		return split.RandomLocalImputation, nil
	default:
		return 0, engine.Newf(engine.InvalidArgument, "config: unknown missing_value_policy %q", name)
	}
}

// numericalSplitStrategyByName maps the training config's string
// numerical_split_strategy field to a split.NumericalStrategy.
func numericalSplitStrategyByName(name string) (split.NumericalStrategy, error) {
	switch name {
	case "", "IN_NODE":
		return split.InNode, nil
	case "PRESORT":
		return split.Presort, nil
	default:
		return 0, engine.Newf(engine.InvalidArgument, "config: unknown numerical_split_strategy %q", name)
	}
}

// categoricalSplitStrategyByName maps the training config's string
// categorical_split_strategy field to a split.CategoricalStrategy.
func categoricalSplitStrategyByName(name string) (split.CategoricalStrategy, error) {
	switch name {
	case "", "CART":
		return split.CART, nil
	case "ONE_HOT":
		return split.OneHot, nil
	case "RANDOM":
		return split.Random, nil
	default:
		return 0, engine.Newf(engine.InvalidArgument, "config: unknown categorical_split_strategy %q", name)
	}
}

// obliqueNormalizationByName maps the training config's string
// oblique_normalization field to a forest.ObliqueNormalization.
func obliqueNormalizationByName(name string) (forest.ObliqueNormalization, error) {
	switch name {
	case "", "NONE":
		return forest.NoNormalization, nil
	case "MIN_MAX":
		return forest.MinMaxNormalization, nil
	case "STANDARD_DEVIATION":
		return forest.StandardDeviationNormalization, nil
	default:
		return 0, engine.Newf(engine.InvalidArgument, "config: unknown oblique_normalization %q", name)
	}
}

// ToSplitConfig converts a decoded training config into the
// *split.Config every tree node's condition search reads.
// useHessianGain is supplied by the caller since only GBT's Newton-gain
// split search wants it; RF always scores by variance/Gini.
func (c *TrainingConfig) ToSplitConfig(useHessianGain bool) (*split.Config, error) {
	missingPolicy, err := missingValuePolicyByName(c.MissingValuePolicy)
	if err != nil {
		return nil, err
	}
	numericalStrategy, err := numericalSplitStrategyByName(c.NumericalSplitStrategy)
	if err != nil {
		return nil, err
	}
	categoricalStrategy, err := categoricalSplitStrategyByName(c.CategoricalSplitStrategy)
	if err != nil {
		return nil, err
	}
	obliqueNorm, err := obliqueNormalizationByName(c.ObliqueNormalization)
	if err != nil {
		return nil, err
	}
	return &split.Config{
		NumCandidateAttributes:      c.NumCandidateAttributes,
		NumCandidateAttributesRatio: c.NumCandidateAttributesRatio,
		MinExamples:                 c.MinExamples,
		InSplitMinExamplesCheck:     c.InSplitMinExamplesCheck,
		AllowNAConditions:           c.AllowNAConditions,
		MissingValuePolicy:          missingPolicy,
		NumericalSplitStrategy:      numericalStrategy,
		CategoricalSplitStrategy:    categoricalStrategy,
		MaxNumTrials:                c.MaxNumTrials,
		MinFrequency:                c.MinFrequency,
		L2CategoricalRegularization: c.L2CategoricalRegularization,
		UseHessianGain:              useHessianGain,
		L1:                          c.L1,
		L2:                          c.L2,
		Gamma:                       c.Gamma,
		EnableObliqueSplits:         c.EnableObliqueSplits,
		NumProjectionsExponent:      c.NumProjectionsExponent,
		ProjectionDensityFactor:     c.ProjectionDensityFactor,
		ObliqueNormalization:        obliqueNorm,
		CategoricalSetGreedySampling: c.CategoricalSetGreedySampling,
		CategoricalSetMaxNumItems:    c.CategoricalSetMaxNumItems,
		NumClasses:                   c.NumClasses,
	}, nil
}

// ToRFConfig converts a decoded training config into a *rf.Config.
func (c *TrainingConfig) ToRFConfig() *rf.Config {
	return &rf.Config{
		NumTrees:           c.NumTrees,
		BootstrapSizeRatio: c.BootstrapSizeRatio,
		WinnerTakeAll:      c.WinnerTakeAll,
		NumClasses:         c.NumClasses,
		RandomSeed:         c.RandomSeed,
	}
}
