package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/branchml/forest/config"
	"github.com/branchml/forest/dataset"
	"github.com/branchml/forest/dataspec"
	"github.com/branchml/forest/engine"
	"github.com/branchml/forest/forest"
	"github.com/branchml/forest/gbt"
	"github.com/branchml/forest/grower"
	"github.com/branchml/forest/rf"
	"github.com/branchml/forest/serialize"
)

type trainCmdConfig struct {
	*rootCmdConfig
	dataset    string
	dataspec   string
	configPath string
	output     string
	deployment string
}

func trainCmd(rootConfig *rootCmdConfig) *cobra.Command {
	cfg := &trainCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a model from a dataset and a training config",
		Run: func(cmd *cobra.Command, args []string) {
			if err := runTrain(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", engine.KindOf(err), err)
				os.Exit(exitCodeFor(err))
			}
		},
	}
	cmd.Flags().StringVar(&cfg.dataset, "dataset", "", "typed path to the training dataset (required)")
	cmd.Flags().StringVar(&cfg.dataspec, "dataspec", "", "path to the dataspec describing the dataset (required)")
	cmd.Flags().StringVar(&cfg.configPath, "config", "", "path to the training config YAML file (required)")
	cmd.Flags().StringVar(&cfg.output, "output", "", "path to the model directory to write (required)")
	cmd.Flags().StringVar(&cfg.deployment, "deployment", "", "path to a deployment config YAML file")
	return cmd
}

func runTrain(cmdCfg *trainCmdConfig) error {
	if cmdCfg.dataset == "" || cmdCfg.dataspec == "" || cmdCfg.configPath == "" || cmdCfg.output == "" {
		return engine.Newf(engine.InvalidArgument, "train: --dataset, --dataspec, --config and --output are required")
	}
	log := cmdCfg.Logger()

	spec, err := readDataspecFile(cmdCfg.dataspec)
	if err != nil {
		return err
	}
	trainingCfg, err := config.LoadTrainingConfig(cmdCfg.configPath)
	if err != nil {
		return err
	}
	deploymentCfg, err := config.LoadDeploymentConfig(cmdCfg.deployment)
	if err != nil {
		return err
	}

	shards, err := openTypedPath(cmdCfg.dataset)
	if err != nil {
		return err
	}
	ctx := context.Background()
	numWorkers := deploymentCfg.NumThreads
	log.Info().Str("dataset", cmdCfg.dataset).Int("shards", len(shards)).Msg("loading dataset")
	ds, err := dataset.Load(ctx, spec, shards, numWorkers)
	if err != nil {
		return engine.Wrap(engine.Internal, err)
	}

	labelCol, err := columnIndexByName(spec, trainingCfg.Label)
	if err != nil {
		return err
	}
	if labelCol < 0 {
		return engine.Newf(engine.InvalidArgument, "train: label column is required")
	}
	groupCol, err := columnIndexByName(spec, trainingCfg.GroupColumn)
	if err != nil {
		return err
	}
	weightsCol, err := columnIndexByName(spec, trainingCfg.Weights)
	if err != nil {
		return err
	}

	task := taskFor(trainingCfg, spec, labelCol, groupCol)
	header := forest.Header{
		Name:          trainingCfg.Learner,
		Task:          task,
		LabelColumn:   labelCol,
		GroupColumn:   groupCol,
		InputFeatures: inputFeatureColumns(spec, labelCol, groupCol, weightsCol),
	}
	if weightsCol >= 0 {
		header.Weights = &forest.WeightsDefinition{Column: weightsCol}
	}

	var weights []float64
	if weightsCol >= 0 {
		weights = toFloat64s(ds.NumericalColumn(weightsCol))
	}
	var groupKey []int32
	if groupCol >= 0 {
		groupKey = ds.CategoricalColumn(groupCol)
	}

	log.Info().Str("learner", trainingCfg.Learner).Str("task", task.String()).Msg("training")
	var model *forest.Model
	switch trainingCfg.Learner {
	case "", "GRADIENT_BOOSTED_TREES":
		splitCfg, err := trainingCfg.ToSplitConfig(true)
		if err != nil {
			return err
		}
		growerCfg := &grower.Config{
			MaxDepth:    trainingCfg.MaxDepth,
			MaxNumNodes: trainingCfg.MaxNumNodes,
			Strategy:    growingStrategyFor(trainingCfg.GrowingStrategy),
			Split:       splitCfg,
		}
		gbtCfg, err := trainingCfg.ToGBTConfig()
		if err != nil {
			return err
		}
		gbtCfg.Grower = growerCfg
		labels := labelsForGBT(ds, spec, labelCol, task)
		model, err = gbt.Train(ctx, ds, spec, header, labels, weights, groupKey, gbtCfg)
		if err != nil {
			return engine.Wrap(engine.Internal, err)
		}
	case "RANDOM_FOREST":
		splitCfg, err := trainingCfg.ToSplitConfig(false)
		if err != nil {
			return err
		}
		growerCfg := &grower.Config{
			MaxDepth:    trainingCfg.MaxDepth,
			MaxNumNodes: trainingCfg.MaxNumNodes,
			Strategy:    growingStrategyFor(trainingCfg.GrowingStrategy),
			Split:       splitCfg,
		}
		rfCfg := trainingCfg.ToRFConfig()
		rfCfg.Grower = growerCfg
		rfCfg.NumWorkers = numWorkers
		var labels []float64
		var classLabels []int32
		if task == forest.Classification {
			classLabels = ds.CategoricalColumn(labelCol)
			if rfCfg.NumClasses == 0 {
				rfCfg.NumClasses = spec.Columns[labelCol].NumUniqueValues()
			}
		} else {
			labels = toFloat64s(ds.NumericalColumn(labelCol))
		}
		model, err = rf.Train(ctx, ds, spec, header, labels, classLabels, weights, rfCfg)
		if err != nil {
			return engine.Wrap(engine.Internal, err)
		}
	default:
		return engine.Newf(engine.InvalidArgument, "train: unknown learner %q", trainingCfg.Learner)
	}

	if err := serialize.Save(cmdCfg.output, model); err != nil {
		return err
	}
	log.Info().Int("trees", len(model.Trees)).Str("output", cmdCfg.output).Msg("wrote model")
	return nil
}

// taskFor decides the forest.Task a training config implies, since the
// config file names a learner and a loss/num_classes rather than the
// task directly.
func taskFor(cfg *config.TrainingConfig, spec *dataspec.Dataspec, labelCol, groupCol int) forest.Task {
	if groupCol >= 0 {
		return forest.Ranking
	}
	switch cfg.Learner {
	case "RANDOM_FOREST":
		if cfg.NumClasses > 0 || spec.Columns[labelCol].Type == dataspec.Categorical || spec.Columns[labelCol].Type == dataspec.Boolean {
			return forest.Classification
		}
		return forest.Regression
	default:
		switch cfg.Loss {
		case "", "BINOMIAL_LOG_LIKELIHOOD", "MULTINOMIAL_LOG_LIKELIHOOD":
			return forest.Classification
		case "LAMBDA_MART_NDCG5", "XE_NDCG_MART":
			return forest.Ranking
		default:
			return forest.Regression
		}
	}
}

// labelsForGBT returns the float64 label slice gbt.Train expects:
// the class's dictionary index for classification, or the raw numerical
// value for regression/ranking (per loss.Binomial/Multinomial's
// documented convention of reading the class index out of labels[i]).
func labelsForGBT(ds *dataset.Dataset, spec *dataspec.Dataspec, labelCol int, task forest.Task) []float64 {
	if task == forest.Classification {
		cats := ds.CategoricalColumn(labelCol)
		out := make([]float64, len(cats))
		for i, c := range cats {
			out[i] = float64(c)
		}
		return out
	}
	return toFloat64s(ds.NumericalColumn(labelCol))
}

// growingStrategyFor maps the training config's string growing_strategy
// field to a grower.Strategy, defaulting to single-pass, node-by-node
// local CART growth.
func growingStrategyFor(name string) grower.Strategy {
	switch name {
	case "BEST_FIRST_GLOBAL":
		return grower.BestFirst
	default:
		return grower.Local
	}
}

func toFloat64s(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
