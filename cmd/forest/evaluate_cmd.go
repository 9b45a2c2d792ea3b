package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/branchml/forest/dataset"
	"github.com/branchml/forest/engine"
	"github.com/branchml/forest/forest"
	"github.com/branchml/forest/serialize"
)

type evaluateCmdConfig struct {
	*rootCmdConfig
	model   string
	dataset string
	options string
}

func evaluateCmd(rootConfig *rootCmdConfig) *cobra.Command {
	cfg := &evaluateCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a trained model against a labeled dataset",
		Run: func(cmd *cobra.Command, args []string) {
			if err := runEvaluate(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", engine.KindOf(err), err)
				os.Exit(exitCodeFor(err))
			}
		},
	}
	cmd.Flags().StringVar(&cfg.model, "model", "", "path to the model directory (required)")
	cmd.Flags().StringVar(&cfg.dataset, "dataset", "", "typed path to a labeled dataset (required)")
	cmd.Flags().StringVar(&cfg.options, "options", "", "unused: reserved for evaluation-options files named in the CLI surface")
	return cmd
}

func runEvaluate(cmdCfg *evaluateCmdConfig) error {
	if cmdCfg.model == "" || cmdCfg.dataset == "" {
		return engine.Newf(engine.InvalidArgument, "evaluate: --model and --dataset are required")
	}
	model, err := serialize.Load(cmdCfg.model)
	if err != nil {
		return err
	}
	shards, err := openTypedPath(cmdCfg.dataset)
	if err != nil {
		return err
	}
	ctx := context.Background()
	ds, err := dataset.Load(ctx, model.Dataspec, shards, 1)
	if err != nil {
		return engine.Wrap(engine.Internal, err)
	}

	rows := rowsAndExamples(ds)
	labels, groupKey := evaluationTargets(ds, model.Header)
	metrics, err := engine.Evaluate(model, rows, labels, groupKey)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s: %g\n", name, metrics[name])
	}
	return nil
}

// evaluationTargets reads the label (and, for ranking, the group key)
// columns the model's own header names back out of ds, the same columns
// train wrote there in the first place.
func evaluationTargets(ds *dataset.Dataset, header forest.Header) (labels []float64, groupKey []int32) {
	switch header.Task {
	case forest.Classification:
		cats := ds.CategoricalColumn(header.LabelColumn)
		labels = make([]float64, len(cats))
		for i, c := range cats {
			labels[i] = float64(c)
		}
	default:
		labels = toFloat64s(ds.NumericalColumn(header.LabelColumn))
	}
	if header.Task == forest.Ranking {
		groupKey = ds.CategoricalColumn(header.GroupColumn)
	}
	return
}
