package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/branchml/forest/config"
	"github.com/branchml/forest/dataspec"
	"github.com/branchml/forest/engine"
)

type inferDataspecCmdConfig struct {
	*rootCmdConfig
	dataset string
	output  string
	guide   string
}

func inferDataspecCmd(rootConfig *rootCmdConfig) *cobra.Command {
	cfg := &inferDataspecCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "infer_dataspec",
		Short: "Infer a dataspec from a dataset",
		Run: func(cmd *cobra.Command, args []string) {
			if err := runInferDataspec(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", engine.KindOf(err), err)
				os.Exit(exitCodeFor(err))
			}
		},
	}
	cmd.Flags().StringVar(&cfg.dataset, "dataset", "", "typed path to the dataset to infer a dataspec from (required)")
	cmd.Flags().StringVar(&cfg.output, "output", "", "path to write the inferred dataspec to (required)")
	cmd.Flags().StringVar(&cfg.guide, "guide", "", "path to a dataspec guide YAML file")
	return cmd
}

func runInferDataspec(cfg *inferDataspecCmdConfig) error {
	if cfg.dataset == "" || cfg.output == "" {
		return engine.Newf(engine.InvalidArgument, "infer_dataspec: --dataset and --output are required")
	}
	log := cfg.Logger()
	shards, err := openTypedPath(cfg.dataset)
	if err != nil {
		return err
	}
	var guide *dataspec.Guide
	if cfg.guide != "" {
		guide, err = config.LoadGuide(cfg.guide)
		if err != nil {
			return err
		}
	}
	log.Info().Str("dataset", cfg.dataset).Msg("inferring dataspec")
	spec, err := dataspec.Infer(context.Background(), &multiSource{shards: shards}, guide)
	if err != nil {
		return engine.Wrap(engine.Internal, err)
	}
	if err := writeDataspecFile(cfg.output, spec); err != nil {
		return err
	}
	log.Info().Int("columns", len(spec.Columns)).Str("output", cfg.output).Msg("wrote dataspec")
	return nil
}
