package commands

import (
	"orderharvest/cmd/orderharvest/globals"
	"orderharvest/cmd/orderharvest/utils"
	"orderharvest/internal/snapshot"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(slotsCmd)
}

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "Show every stored snapshot with its size and when it was saved.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		value := globals.Get(cmd.Context())

		infos, err := snapshot.List(cmd.Context(), value.Qry)
		if err != nil {
			return err
		}

		t := utils.NewTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Slot", "Orders", "Saved at"})
		for _, info := range infos {
			t.AppendRow(table.Row{info.Slot, info.OrderCount, info.SavedAt.In(value.Clock.Now().Location()).Format(time.DateTime)})
		}
		t.Render()
		return nil
	},
}
