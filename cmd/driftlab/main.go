package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "driftlab",
		Short:         "Drift scoring and impact deformation sandbox",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCommand(), newConfigCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "driftlab:", err)
		os.Exit(1)
	}
}
