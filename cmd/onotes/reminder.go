package main

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/onotes/pkg/core"
)

var (
	remindAt      string
	remindTarget  string
	remindOffsets []string
	remindCustom  string
	remindBody    string
	remindTitle   string
	remindAll     bool
)

var reminderCmd = &cobra.Command{
	Use:     "reminder",
	Aliases: []string{"rem"},
	Short:   "Manage standalone reminders",
}

var reminderAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create reminders at a time or relative to a target date",
	Long: `Create a standalone reminder.

Either pass --at for a single instant, or --target with one or more
--offset presets (week, day, event, custom). Instants already in the past
are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := core.ReminderInput{Body: remindBody}
		if len(args) == 1 {
			in.Title = args[0]
		}

		times, err := plannedTimes(&in, time.Now())
		if err != nil {
			return err
		}
		if len(times) == 0 {
			return errors.New("no reminder time lies in the future")
		}

		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		created, err := store.AddReminders(ctx, in, times)
		if err != nil {
			return err
		}
		printReminders(created, nil, time.Now())
		return nil
	},
}

// plannedTimes resolves the --at / --target flags into reminder instants.
func plannedTimes(in *core.ReminderInput, now time.Time) ([]time.Time, error) {
	if remindAt != "" {
		when, err := core.ParseInstant(remindAt)
		if err != nil {
			return nil, err
		}
		return core.PlanReminders(when, []core.Offset{core.OffsetEvent}, nil, now), nil
	}
	if remindTarget == "" {
		return nil, errors.New("pass --at or --target")
	}

	target, err := core.ParseInstant(remindTarget)
	if err != nil {
		return nil, err
	}
	in.TargetDate = target

	var custom *time.Time
	if remindCustom != "" {
		t, err := core.ParseInstant(remindCustom)
		if err != nil {
			return nil, err
		}
		custom = &t
	}

	var offsets []core.Offset
	for _, s := range remindOffsets {
		o, err := core.ParseOffset(s)
		if err != nil {
			return nil, err
		}
		offsets = append(offsets, o)
	}
	if custom != nil && !slices.Contains(offsets, core.OffsetCustom) {
		offsets = append(offsets, core.OffsetCustom)
	}
	return core.PlanReminders(target, offsets, custom, now), nil
}

var reminderEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the title or time of a standalone reminder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		r, ok := store.Reminder(args[0])
		if !ok || !r.Standalone() {
			return fmt.Errorf("standalone reminder %s: %w", args[0], core.ErrNotFound)
		}
		if cmd.Flags().Changed("title") {
			r.Title = remindTitle
		}
		if cmd.Flags().Changed("body") {
			r.Body = remindBody
		}
		if remindAt != "" {
			when, err := core.ParseInstant(remindAt)
			if err != nil {
				return err
			}
			r.When = core.At(when)
		}
		updated, err := store.UpdateReminder(ctx, r)
		if err != nil {
			return err
		}
		if updated.ID != args[0] {
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], updated.ID)
		}
		return nil
	},
}

var reminderRmCmd = &cobra.Command{
	Use:     "rm <id>...",
	Aliases: []string{"delete"},
	Short:   "Delete standalone reminders",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		for _, id := range args {
			if err := store.DeleteReminder(ctx, id); err != nil {
				return err
			}
		}
		return nil
	},
}

var reminderListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List upcoming reminders, standalone and embedded in notes",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		snap := store.Snapshot()
		now := time.Now()

		var out []core.Reminder
		for _, r := range core.Upcoming(snap) {
			if remindAll || !r.When.Valid() || r.When.Time().After(now) {
				out = append(out, r)
			}
		}
		if listJSON {
			return printJSON(out)
		}
		printReminders(out, noteTitles(snap), now)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reminderCmd)
	reminderCmd.AddCommand(reminderAddCmd, reminderEditCmd, reminderRmCmd, reminderListCmd)

	for _, c := range []*cobra.Command{reminderAddCmd, reminderEditCmd} {
		c.Flags().StringVar(&remindAt, "at", "", "Reminder time, e.g. 2025-06-01T09:00")
		c.Flags().StringVarP(&remindBody, "body", "b", "", "Reminder body")
	}
	reminderAddCmd.Flags().StringVar(&remindTarget, "target", "", "Event date the offsets are relative to")
	reminderAddCmd.Flags().StringSliceVar(&remindOffsets, "offset", []string{string(core.OffsetEvent)}, "Offsets: week, day, event, custom")
	reminderAddCmd.Flags().StringVar(&remindCustom, "custom", "", "Instant used by the custom offset")
	reminderEditCmd.Flags().StringVar(&remindTitle, "title", "", "New title")

	reminderListCmd.Flags().BoolVar(&remindAll, "all", false, "Include past reminders")
	reminderListCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
}
