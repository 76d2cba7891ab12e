package commands

import (
	"fmt"
	"io"
	"orderharvest/cmd/orderharvest/globals"
	"orderharvest/internal/orders"
	"orderharvest/internal/report"
	"os"

	"github.com/spf13/cobra"
)

var (
	exportFormat *string
	exportOut    *string
)

func init() {
	exportFormat = exportCmd.Flags().String("format", "json", "Export format, json or csv.")
	exportOut = exportCmd.Flags().String("out", "", "Path the export is written to, - for stdout. Defaults to purchase_history.<format>.")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the stored history as JSON or CSV.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		value := globals.Get(cmd.Context())

		format, err := report.ParseFormat(*exportFormat)
		if err != nil {
			return err
		}
		s, err := openStore(cmd.Context(), value)
		if err != nil {
			return err
		}
		return exportTo(cmd, s.Orders(), format, *exportOut)
	},
}

func exportTo(cmd *cobra.Command, list []orders.Order, format report.Format, out string) error {
	if len(list) == 0 {
		// checked before the file is created so that no empty file is left behind
		return report.Write(io.Discard, format, list)
	}

	if out == "-" {
		return report.Write(cmd.OutOrStdout(), format, list)
	}
	if out == "" {
		out = "purchase_history." + format.Extension()
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	err = report.Write(f, format, list)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "exported %d orders to %s\n", len(list), out)
	return nil
}
