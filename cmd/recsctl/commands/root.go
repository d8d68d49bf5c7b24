package commands

import (
	"github.com/spf13/cobra"
)

// verbose enables command logging; set by the persistent --verbose flag.
var verbose bool

// NewRootCmd assembles the recsctl command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "recsctl",
		Short: "Operations tool for the recommendation service",
		Long:  "CLI tool for training the model, analyzing user behavior, and inspecting recommendations",
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log service activity to the console")

	rootCmd.AddCommand(NewTrainCmd())
	rootCmd.AddCommand(NewAnalyzeCmd())
	rootCmd.AddCommand(NewBatchAnalyzeCmd())
	rootCmd.AddCommand(NewProfileCmd())
	rootCmd.AddCommand(NewRecommendCmd())
	rootCmd.AddCommand(NewKeywordsCmd())

	return rootCmd
}
