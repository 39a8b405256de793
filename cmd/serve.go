package cmd

import "github.com/spf13/cobra"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the schedule API and render rules periodically",
	RunE:  run,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
