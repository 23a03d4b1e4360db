package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/onotes"
	"github.com/aretw0/onotes/pkg/notify"
	"github.com/aretw0/onotes/pkg/reminders"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the state of the store and of a dry-run scheduling pass",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}

		// A reconcile against a discarded log shows what `run` would do now
		// without delivering anything anywhere.
		engine := reminders.NewEngine(notify.NewLog(), nil)
		engine.Reconcile(store.Snapshot())
		defer engine.Stop()

		return printJSON(map[string]any{
			"version":             strings.TrimSpace(onotes.Version),
			store.ComponentType():  store.State(),
			engine.ComponentType(): engine.State(),
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
