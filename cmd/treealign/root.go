package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "treealign",
	Short: "Treealign assigns profiled single cells to clonal lineage tree nodes",
	Long: `Treealign walks a clonal lineage tree top-down, running probabilistic
inference at each clade to place single cells on the clone that best
explains their expression and allele profiles.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "treealign.yaml", "Path to the run configuration file")
}
