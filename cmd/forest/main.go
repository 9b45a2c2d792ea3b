package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/branchml/forest/engine"
)

type rootCmdConfig struct {
	verbose  bool
	logLevel string
	logFile  string
}

func main() {
	if err := cliParser().Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func cliParser() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "forest",
		Short: "forest trains and serves axis-aligned decision-forest models",
		Long:  `A tool to infer dataspecs, train gradient-boosted-tree and random-forest models, and run them against new data.`,
	}
	config := &rootCmdConfig{}
	rootCmd.PersistentFlags().BoolVarP(&config.verbose, "verbose", "v", false, "log at debug level instead of info")
	rootCmd.PersistentFlags().StringVar(&config.logFile, "log-file", "", "path to a file to log to (defaults to stderr)")
	rootCmd.AddCommand(
		versionCmd(),
		inferDataspecCmd(config),
		showDataspecCmd(config),
		trainCmd(config),
		showModelCmd(config),
		predictCmd(config),
		evaluateCmd(config),
		benchmarkInferenceCmd(config),
		convertDatasetCmd(config),
	)
	registerDatasetFormats()
	registerLearnersAndModels()
	return rootCmd
}

// exitCodeFor maps an error's engine.Kind to a process exit code instead
// of fixed per-callsite magic numbers: every subcommand here reports its
// errors through the same kind taxonomy, so one mapping suffices.
func exitCodeFor(err error) int {
	switch engine.KindOf(err) {
	case engine.InvalidArgument:
		return 2
	case engine.NotFound:
		return 3
	case engine.FailedPrecondition:
		return 4
	case engine.ResourceExhausted:
		return 5
	case engine.Cancelled:
		return 130
	default:
		return 1
	}
}
