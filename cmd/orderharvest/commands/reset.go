package commands

import (
	"fmt"
	"orderharvest/cmd/orderharvest/globals"
	"orderharvest/internal/orders"
	"orderharvest/internal/snapshot"
	"orderharvest/internal/store"

	"github.com/spf13/cobra"
)

var resetYes *bool

func init() {
	resetYes = resetCmd.Flags().Bool("yes", false, "Confirm that the stored history should be deleted.")
	rootCmd.AddCommand(resetCmd)
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the stored history of the selected locale.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		value := globals.Get(cmd.Context())

		_, locale, err := value.Config.ResolveLocale(value.Locale)
		if err != nil {
			return err
		}
		if !*resetYes {
			return &orders.UserInputError{Reason: fmt.Sprintf("this deletes the stored history in %q, pass --yes to confirm", locale.Slot)}
		}

		// not loaded first, a corrupt snapshot has to be clearable
		slot := snapshot.NewDBSlot(locale.Slot, value.Qry, value.MakeTx, value.Clock, value.Tel)
		err = store.New(slot, value.Tel).Clear(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", locale.Slot)
		return nil
	},
}
