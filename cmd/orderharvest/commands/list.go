package commands

import (
	"orderharvest/cmd/orderharvest/globals"
	"orderharvest/cmd/orderharvest/utils"
	"orderharvest/internal/orders"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the stored orders.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		value := globals.Get(cmd.Context())

		s, err := openStore(cmd.Context(), value)
		if err != nil {
			return err
		}
		if s.Len() == 0 {
			return &orders.UserInputError{Reason: "no order history has been collected yet, run `orderharvest harvest` first"}
		}

		t := utils.NewTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Order", "Date", "Payment", "Shipping", "Total", "Currency", "Items"})
		for _, o := range s.Orders() {
			items := "-"
			if o.Detail != nil {
				items = fmtItemCount(len(o.Detail.LineItems))
			}
			t.AppendRow(table.Row{o.Key, o.Date, o.PaymentStatus, o.ShippingStatus, o.TotalAmount, o.Currency, items})
		}
		t.Render()
		return nil
	},
}

func fmtItemCount(n int) string {
	if n == 1 {
		return "1 item"
	}
	return strconv.Itoa(n) + " items"
}
