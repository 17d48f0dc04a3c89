package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"product-scraper/internal/app"
	"product-scraper/internal/config"
	"product-scraper/pkg/scraperapi"
)

func init() {
	rootCmd.AddCommand(accountCmd)
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Shows the request usage of the configured ScraperAPI key.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		client, err := app.NewProxyClient(cfg)
		if err != nil {
			return err
		}

		account, err := client.Account(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderAccount(account))
		return nil
	},
}

func renderAccount(account *scraperapi.Account) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Requests used", account.RequestCount},
		{"Request limit", account.RequestLimit},
		{"Requests left", account.Remaining()},
		{"Failed requests", account.FailedRequestCount},
		{"Concurrent requests", account.ConcurrentRequests},
		{"Concurrency limit", account.ConcurrencyLimit},
	})
	if account.SubscriptionDate != "" {
		t.AppendRow(table.Row{"Subscription date", account.SubscriptionDate})
	}
	t.SetStyle(table.StyleRounded)
	return t.Render()
}
