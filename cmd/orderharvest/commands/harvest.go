package commands

import (
	"fmt"
	"log/slog"
	"net/url"
	"orderharvest/cmd/orderharvest/globals"
	"orderharvest/cmd/orderharvest/utils"
	"orderharvest/internal/harvest"
	"orderharvest/internal/report"
	"orderharvest/internal/scrapers/storefront"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	harvestStart    *string
	harvestMaxPages *int
	harvestExport   *string
	harvestOut      *string
	harvestDumpHTTP *string
)

func init() {
	harvestStart = harvestCmd.Flags().String("start", "", "Listing URL to start from, defaults to the locale's start_url.")
	harvestMaxPages = harvestCmd.Flags().Int("max-pages", 0, "Stop without saving after this many listing pages, 0 means no limit.")
	harvestExport = harvestCmd.Flags().String("export", "", "Export the history after harvesting (json or csv).")
	harvestOut = harvestCmd.Flags().String("out", "", "Path the export is written to, - for stdout.")
	harvestDumpHTTP = harvestCmd.Flags().String("dump-http", "", "Directory every fetched page is written to, for debugging the parsers.")
	rootCmd.AddCommand(harvestCmd)
}

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Walk the order listing, fetch the details of new orders and save the merged history.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		value := globals.Get(cmd.Context())

		_, locale, err := value.Config.ResolveLocale(value.Locale)
		if err != nil {
			return err
		}

		var exportFormat report.Format
		if *harvestExport != "" {
			exportFormat, err = report.ParseFormat(*harvestExport)
			if err != nil {
				return err
			}
		}

		start := *harvestStart
		if start == "" {
			start = locale.StartURL
		}
		if start == "" {
			return fmt.Errorf("locale %q has no start_url, pass --start", value.Locale)
		}
		initial, err := url.Parse(start)
		if err != nil {
			return fmt.Errorf("parse start url: %w", err)
		}

		opts, err := value.Config.StorefrontOptions(locale)
		if err != nil {
			return err
		}
		opts.DumpDir = *harvestDumpHTTP
		client, err := storefront.NewClient(opts, value.Tel)
		if err != nil {
			return fmt.Errorf("create storefront client: %w", err)
		}

		s, err := openStore(cmd.Context(), value)
		if err != nil {
			return err
		}

		engine := harvest.NewEngine(s, client, client, harvest.Options{
			MaxPages: *harvestMaxPages,
			OnPage: func(p harvest.PageProgress) {
				slog.Info("listing page done", "page", p.Page, "visited", p.Visited, "rows", p.Rows)
			},
		}, value.Tel)

		result, err := engine.Run(cmd.Context(), initial)
		if err != nil {
			return err
		}

		t := utils.NewTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Slot", "Pages", "Rows", "New", "Updated", "Details fetched", "Detail failures", "Stored"})
		t.AppendRow(table.Row{
			s.Slot(),
			result.Pages,
			result.Rows,
			result.Inserted,
			result.Updated,
			result.DetailsFetched,
			result.DetailFailures,
			s.Len(),
		})
		t.Render()

		if result.DetailFailures > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d order details could not be fetched, they will be retried on the next harvest\n", result.DetailFailures)
		}

		if exportFormat != "" {
			return exportTo(cmd, s.Orders(), exportFormat, *harvestOut)
		}
		return nil
	},
}
