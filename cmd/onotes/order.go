package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Show or change the custom note order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(strings.Join(store.Snapshot().Order, "\n"))
		return nil
	},
}

var orderSetCmd = &cobra.Command{
	Use:   "set <id>...",
	Short: "Replace the whole custom order",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		return store.SetOrder(ctx, args)
	},
}

var orderMoveCmd = &cobra.Command{
	Use:   "reorder <id>...",
	Short: "Reorder a subset of notes, keeping the others in place",
	Long: `Reorder the given notes among the slots they already occupy.
Notes not named keep their positions, as when dragging inside a filtered view.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		merged, err := store.ReorderVisible(ctx, args)
		if err != nil {
			return err
		}
		fmt.Println(strings.Join(merged, "\n"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(orderCmd)
	orderCmd.AddCommand(orderSetCmd, orderMoveCmd)
}
