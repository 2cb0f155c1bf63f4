package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/molonc/treealign/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the results HTTP server",
	Long: `Starts a read-only JSON API over stored traversal results, backed by
the Redis store named in the configuration file.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		port, _ := cmd.Flags().GetString("port")

		opts := cli.ServeOptions{
			ConfigPath: configPath,
			Port:       port,
		}
		if err := cli.Serve(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
