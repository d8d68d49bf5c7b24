package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the single-user analysis command.
func NewAnalyzeCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "analyze <user-id>",
		Short: "Analyze one user's behavior and store their profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, cleanup, err := newService()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := service.AnalyzeUser(context.Background(), args[0], days); err != nil {
				return fmt.Errorf("analyze user: %w", err)
			}
			fmt.Printf("Analyzed user %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Analysis window in days (0 = service default)")
	return cmd
}

// NewBatchAnalyzeCmd creates the batch analysis command.
func NewBatchAnalyzeCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "batch-analyze <user-id>...",
		Short: "Analyze many users, continuing past per-user failures",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, cleanup, err := newService()
			if err != nil {
				return err
			}
			defer cleanup()

			summary := service.BatchAnalyze(context.Background(), args, days)
			fmt.Println(summary)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Analysis window in days (0 = service default)")
	return cmd
}
