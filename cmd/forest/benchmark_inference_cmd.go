package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/branchml/forest/dataset"
	"github.com/branchml/forest/engine"
	"github.com/branchml/forest/serialize"
)

type benchmarkInferenceCmdConfig struct {
	*rootCmdConfig
	model   string
	dataset string
}

func benchmarkInferenceCmd(rootConfig *rootCmdConfig) *cobra.Command {
	cfg := &benchmarkInferenceCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "benchmark_inference",
		Short: "Time how long a model takes to run over a dataset",
		Run: func(cmd *cobra.Command, args []string) {
			if err := runBenchmarkInference(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", engine.KindOf(err), err)
				os.Exit(exitCodeFor(err))
			}
		},
	}
	cmd.Flags().StringVar(&cfg.model, "model", "", "path to the model directory (required)")
	cmd.Flags().StringVar(&cfg.dataset, "dataset", "", "typed path to the dataset to benchmark against (required)")
	return cmd
}

func runBenchmarkInference(cmdCfg *benchmarkInferenceCmdConfig) error {
	if cmdCfg.model == "" || cmdCfg.dataset == "" {
		return engine.Newf(engine.InvalidArgument, "benchmark_inference: --model and --dataset are required")
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

	start := time.Now()
	for i := 0; i < ds.N; i++ {
		if _, err := engine.Predict(model, ds.Row(i)); err != nil {
			return err
		}
	}
	elapsed := time.Since(start)
	fmt.Printf("rows: %d\n", ds.N)
	fmt.Printf("elapsed: %s\n", elapsed)
	if ds.N > 0 {
		fmt.Printf("per_row: %s\n", elapsed/time.Duration(ds.N))
	}
	return nil
}
