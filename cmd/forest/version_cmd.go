package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	versionMajor = 0
	versionMinor = 1
	versionPatch = 0
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of forest",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("forest v%d.%d.%d\n", versionMajor, versionMinor, versionPatch)
		},
	}
}
