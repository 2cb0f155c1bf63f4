package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/molonc/treealign"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of treealign",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("treealign version %s\n", strings.TrimSpace(treealign.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
