package commands

import (
	"fmt"
	"orderharvest/cmd/orderharvest/globals"
	"orderharvest/cmd/orderharvest/utils"
	"orderharvest/internal/report"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <keyword...>",
	Short: "Find purchased products whose name contains the keyword (case-sensitive).",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value := globals.Get(cmd.Context())

		s, err := openStore(cmd.Context(), value)
		if err != nil {
			return err
		}

		list := s.Orders()
		query := strings.Join(args, " ")
		matches, err := report.Locate(list, query)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(matches) == 0 {
			fmt.Fprintf(out, "no products matching %q\n", strings.TrimSpace(query))
			suggestions := report.Suggest(list, query, 5)
			if len(suggestions) > 0 {
				fmt.Fprintln(out, "did you mean:")
				for _, name := range suggestions {
					fmt.Fprintf(out, "  %s\n", name)
				}
			}
			return nil
		}

		t := utils.NewTable(out)
		t.AppendHeader(table.Row{"Order", "Date", "Product", "Variant", "Quantity", "Total"})
		for _, m := range matches {
			t.AppendRow(table.Row{m.OrderKey, m.Date, m.Item.ProductName, m.Item.Variant, m.Item.Quantity, m.Item.LineTotal})
		}
		t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d matches", len(matches))})
		t.Render()
		return nil
	},
}
