package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/branchml/forest/engine"
)

type showDataspecCmdConfig struct {
	*rootCmdConfig
	dataspec string
}

func showDataspecCmd(rootConfig *rootCmdConfig) *cobra.Command {
	cfg := &showDataspecCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "show_dataspec",
		Short: "Print a dataspec in human-readable form",
		Run: func(cmd *cobra.Command, args []string) {
			if err := runShowDataspec(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", engine.KindOf(err), err)
				os.Exit(exitCodeFor(err))
			}
		},
	}
	cmd.Flags().StringVar(&cfg.dataspec, "dataspec", "", "path to the dataspec file to print (required)")
	return cmd
}

func runShowDataspec(cfg *showDataspecCmdConfig) error {
	if cfg.dataspec == "" {
		return engine.Newf(engine.InvalidArgument, "show_dataspec: --dataspec is required")
	}
	spec, err := readDataspecFile(cfg.dataspec)
	if err != nil {
		return err
	}
	for _, c := range spec.Columns {
		fmt.Printf("%s\n", c)
		if c.Numerical != nil {
			fmt.Printf("  mean=%g stddev=%g min=%g max=%g\n", c.Numerical.Mean, c.Numerical.StdDev, c.Numerical.Min, c.Numerical.Max)
		}
		if c.Categorical != nil {
			fmt.Printf("  vocabulary=%d missing=%d\n", c.NumUniqueValues(), c.NumMissing)
		}
	}
	return nil
}
