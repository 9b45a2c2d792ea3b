package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/branchml/forest/dataset"
	"github.com/branchml/forest/dataset/io/csv"
	"github.com/branchml/forest/engine"
	"github.com/branchml/forest/forest"
	"github.com/branchml/forest/serialize"
)

type predictCmdConfig struct {
	*rootCmdConfig
	model   string
	dataset string
	output  string
}

func predictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	cfg := &predictCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Run a trained model over a dataset and write its predictions",
		Run: func(cmd *cobra.Command, args []string) {
			if err := runPredict(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", engine.KindOf(err), err)
				os.Exit(exitCodeFor(err))
			}
		},
	}
	cmd.Flags().StringVar(&cfg.model, "model", "", "path to the model directory (required)")
	cmd.Flags().StringVar(&cfg.dataset, "dataset", "", "typed path to the dataset to predict over (required)")
	cmd.Flags().StringVar(&cfg.output, "output", "", "typed path to write predictions to; only the csv format is supported (required)")
	return cmd
}

func runPredict(cmdCfg *predictCmdConfig) error {
	if cmdCfg.model == "" || cmdCfg.dataset == "" || cmdCfg.output == "" {
		return engine.Newf(engine.InvalidArgument, "predict: --model, --dataset and --output are required")
	}
	log := cmdCfg.Logger()
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
	log.Info().Int("rows", ds.N).Msg("running predictions")

	outFormat, outPath, ok := strings.Cut(cmdCfg.output, ":")
	if !ok || outFormat != "csv" {
		return engine.Newf(engine.InvalidArgument, "predict: --output must be a csv: typed path")
	}
	rows := make([][]string, ds.N)
	for i := 0; i < ds.N; i++ {
		pred, err := engine.Predict(model, ds.Row(i))
		if err != nil {
			return err
		}
		rows[i] = predictionRow(model.Header.Task, pred)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return engine.Wrap(engine.Internal, err)
	}
	defer f.Close()
	if err := csv.WriteRows(f, predictionColumns(model.Header.Task), rows); err != nil {
		return engine.Wrap(engine.Internal, err)
	}
	return nil
}

func predictionColumns(task forest.Task) []string {
	switch task {
	case forest.Classification:
		return []string{"class_label", "class_probabilities"}
	default:
		return []string{"score"}
	}
}

func predictionRow(task forest.Task, pred *engine.Prediction) []string {
	switch task {
	case forest.Classification:
		probs := make([]string, len(pred.ClassProbabilities))
		for i, p := range pred.ClassProbabilities {
			probs[i] = strconv.FormatFloat(p, 'g', -1, 64)
		}
		return []string{strconv.Itoa(int(pred.ClassLabel)), strings.Join(probs, ";")}
	default:
		return []string{strconv.FormatFloat(pred.Score, 'g', -1, 64)}
	}
}
