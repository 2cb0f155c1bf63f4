package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/molonc/treealign/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a full tree traversal and assignment",
	Long: `Loads the tree and profile matrices named in the configuration file,
walks the tree, and writes the clone assignments to the output directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		outputDir, _ := cmd.Flags().GetString("output")

		opts := cli.RunOptions{
			ConfigPath: configPath,
			OutputDir:  outputDir,
		}
		if err := cli.RunAssignment(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("output", "o", "", "Directory for the assignment output files")
}
