package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewRecommendCmd creates the product recommendation command.
func NewRecommendCmd() *cobra.Command {
	var topN int
	cmd := &cobra.Command{
		Use:   "recommend <user-id>",
		Short: "Print the top ranked unseen product ids for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, cleanup, err := newService()
			if err != nil {
				return err
			}
			defer cleanup()

			productIDs, err := service.RecommendProducts(context.Background(), args[0], topN)
			if err != nil {
				return fmt.Errorf("recommend products: %w", err)
			}

			for _, id := range productIDs {
				fmt.Println(id)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&topN, "top-n", 10, "Number of products to return")
	return cmd
}

// NewKeywordsCmd creates the keyword recommendation command.
func NewKeywordsCmd() *cobra.Command {
	var topN int
	cmd := &cobra.Command{
		Use:   "keywords <user-id>",
		Short: "Print the top recommended keywords for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, cleanup, err := newService()
			if err != nil {
				return err
			}
			defer cleanup()

			keywords, err := service.RecommendKeywords(context.Background(), args[0], topN)
			if err != nil {
				return fmt.Errorf("recommend keywords: %w", err)
			}

			for _, kw := range keywords {
				fmt.Println(kw)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&topN, "top-n", 10, "Number of keywords to return")
	return cmd
}
