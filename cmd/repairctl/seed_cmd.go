package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Upsert the built-in wizard documents",
		Long: `Upsert the built-in step groups, steps, garments, repair types, pricing and
site settings into the configured content backend (CONTENT_BACKEND=sanity or mysql).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			module, _, cleanup, err := contentModule(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			n, err := module.Seeder.Seed(ctx)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Upserted %d documents\n", n)
			return nil
		},
	}
}
