package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewTrainCmd creates the model training command.
func NewTrainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Train the recommendation model from stored user actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, cleanup, err := newService()
			if err != nil {
				return err
			}
			defer cleanup()

			summary, err := service.TrainModel(context.Background())
			if err != nil {
				return fmt.Errorf("train model: %w", err)
			}
			fmt.Println(summary)
			return nil
		},
	}
}
