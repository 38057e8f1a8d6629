package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seybold/bankdesk/banking"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Initialize the demo banking database",
	Long: `Create (or reset) the banking database with a demo customer, account
history, trades and market quotes. Dates are anchored to today so same-day
business rules can be exercised.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := banking.Open(ctx, cfg.Banking)
		if err != nil {
			return fmt.Errorf("open banking store: %w", err)
		}
		defer store.Close()

		if err := store.Seed(ctx, time.Now()); err != nil {
			return err
		}

		fmt.Println("Demo database seeded. Chat as customer U1000 with: bankdesk chat --user U1000")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
