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
	"github.com/branchml/forest/dataspec"
	"github.com/branchml/forest/engine"
)

type convertDatasetCmdConfig struct {
	*rootCmdConfig
	input    string
	output   string
	dataspec string
}

func convertDatasetCmd(rootConfig *rootCmdConfig) *cobra.Command {
	cfg := &convertDatasetCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "convert_dataset",
		Short: "Convert a dataset from one typed-path format to another",
		Run: func(cmd *cobra.Command, args []string) {
			if err := runConvertDataset(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", engine.KindOf(err), err)
				os.Exit(exitCodeFor(err))
			}
		},
	}
	cmd.Flags().StringVar(&cfg.input, "input", "", "typed path to the dataset to convert (required)")
	cmd.Flags().StringVar(&cfg.output, "output", "", "typed path to write the converted dataset to; only csv is supported (required)")
	cmd.Flags().StringVar(&cfg.dataspec, "dataspec", "", "path to the dataspec describing the input dataset (required)")
	return cmd
}

func runConvertDataset(cmdCfg *convertDatasetCmdConfig) error {
	if cmdCfg.input == "" || cmdCfg.output == "" || cmdCfg.dataspec == "" {
		return engine.Newf(engine.InvalidArgument, "convert_dataset: --input, --output and --dataspec are required")
	}
	spec, err := readDataspecFile(cmdCfg.dataspec)
	if err != nil {
		return err
	}
	shards, err := openTypedPath(cmdCfg.input)
	if err != nil {
		return err
	}
	ctx := context.Background()
	ds, err := dataset.Load(ctx, spec, shards, 1)
	if err != nil {
		return engine.Wrap(engine.Internal, err)
	}

	outFormat, outPath, ok := strings.Cut(cmdCfg.output, ":")
	if !ok || outFormat != "csv" {
		return engine.Newf(engine.InvalidArgument, "convert_dataset: --output must be a csv: typed path")
	}
	colNames := make([]string, len(spec.Columns))
	for _, c := range spec.Columns {
		colNames[c.Index] = c.Name
	}
	rows := make([][]string, ds.N)
	for i := 0; i < ds.N; i++ {
		row := make([]string, len(spec.Columns))
		for _, c := range spec.Columns {
			row[c.Index] = formatColumnValue(ds, c, i)
		}
		rows[i] = row
	}
	f, err := os.Create(outPath)
	if err != nil {
		return engine.Wrap(engine.Internal, err)
	}
	defer f.Close()
	if err := csv.WriteRows(f, colNames, rows); err != nil {
		return engine.Wrap(engine.Internal, err)
	}
	return nil
}

func formatColumnValue(ds *dataset.Dataset, c *dataspec.Column, row int) string {
	switch c.Type {
	case dataspec.Numerical:
		v := ds.NumericalColumn(c.Index)[row]
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case dataspec.Categorical, dataspec.Boolean:
		idx := ds.CategoricalColumn(c.Index)[row]
		if idx < 0 {
			return ""
		}
		return c.Categorical.Dictionary.Item(idx)
	case dataspec.CategoricalSet:
		idxs := ds.CategoricalSetColumn(c.Index)[row]
		tokens := make([]string, len(idxs))
		for i, idx := range idxs {
			tokens[i] = c.Categorical.Dictionary.Item(idx)
		}
		return strings.Join(tokens, dataspec.CategoricalSetSeparator)
	default:
		return ""
	}
}
