package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/branchml/forest/engine"
	"github.com/branchml/forest/serialize"
)

type showModelCmdConfig struct {
	*rootCmdConfig
	model          string
	engines        bool
	fullDefinition bool
}

func showModelCmd(rootConfig *rootCmdConfig) *cobra.Command {
	cfg := &showModelCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "show_model",
		Short: "Print a trained model's header in human-readable form",
		Run: func(cmd *cobra.Command, args []string) {
			if err := runShowModel(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", engine.KindOf(err), err)
				os.Exit(exitCodeFor(err))
			}
		},
	}
	cmd.Flags().StringVar(&cfg.model, "model", "", "path to the model directory (required)")
	cmd.Flags().BoolVar(&cfg.engines, "engines", false, "print the inference engines this model can run on")
	cmd.Flags().BoolVar(&cfg.fullDefinition, "full_definition", false, "print each tree's node count")
	return cmd
}

func runShowModel(cfg *showModelCmdConfig) error {
	if cfg.model == "" {
		return engine.Newf(engine.InvalidArgument, "show_model: --model is required")
	}
	model, err := serialize.Load(cfg.model)
	if err != nil {
		return err
	}
	fmt.Printf("name: %s\n", model.Header.Name)
	fmt.Printf("task: %s\n", model.Header.Task)
	fmt.Printf("trees: %d\n", len(model.Trees))
	fmt.Printf("input features: %d\n", len(model.Header.InputFeatures))
	if model.GBT != nil {
		fmt.Printf("loss: %s\n", model.GBT.Loss)
		fmt.Printf("num_trees_per_iter: %d\n", model.GBT.NumTreesPerIter)
		fmt.Printf("validation_loss: %g\n", model.GBT.ValidationLoss)
		fmt.Printf("training_iterations: %d\n", len(model.GBT.TrainingLogs))
	}
	if model.RF != nil {
		fmt.Printf("winner_take_all: %v\n", model.RF.WinnerTakeAll)
		if model.RF.NumClasses > 0 {
			fmt.Printf("oob_accuracy: %g\n", model.RF.OOBAccuracy)
		} else {
			fmt.Printf("oob_rmse: %g\n", model.RF.OOBRMSE)
		}
	}
	if cfg.engines {
		fmt.Println("engines: generic (the only inference engine this build registers)")
	}
	if cfg.fullDefinition {
		for i, t := range model.Trees {
			fmt.Printf("tree %d: %d nodes\n", i, len(t.Nodes))
		}
	}
	return nil
}
