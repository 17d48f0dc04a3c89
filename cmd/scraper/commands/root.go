package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"product-scraper/internal/app"
	"product-scraper/internal/config"
	logx "product-scraper/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "scraper",
	Short:         "Scrapes a paginated product listing into a CSV file.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		logx.Info().Str("category", cfg.CategoryURL).Msg("extracting products from the website")

		result, err := app.Run(cmd.Context(), cfg)
		if err != nil {
			if result != nil {
				logx.Warn().Int("products", len(result.Products)).Int("last_page", result.LastPage).Msg("run ended early")
			}
			return err
		}
		return nil
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
