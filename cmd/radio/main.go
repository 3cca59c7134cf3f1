package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "radio",
	Short:         "radio serves static pages and audio",
	Long:          "radio serves the home and controller pages plus static and audio files from a local directory or an S3 bucket.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	// Diagnostics
	rootCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(pagesCheckCmd)
}
