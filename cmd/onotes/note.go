package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/onotes/pkg/core"
)

var (
	noteBody     string
	noteFolder   string
	noteSize     string
	noteTodos    []string
	noteRemind   []string
	noteTitle    string
	listFolder   string
	listSort     string
	listJSON     bool
	resizeGrow   bool
	resizeShrink bool
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage notes",
}

var noteAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a note",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}

		in := core.NoteInput{
			Body:   noteBody,
			Folder: noteFolder,
			Size:   core.Size(noteSize),
			Todos:  noteTodos,
		}
		if len(args) == 1 {
			in.Title = args[0]
		}
		if in.Size != "" && !in.Size.Valid() {
			return fmt.Errorf("invalid size %q (want s, m or l)", noteSize)
		}
		for _, s := range noteRemind {
			when, err := core.ParseInstant(s)
			if err != nil {
				return err
			}
			in.Reminders = append(in.Reminders, when)
		}

		n, err := store.AddNote(ctx, in)
		if err != nil {
			return err
		}
		printNote(n)
		return nil
	},
}

var noteEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the title, body or folder of a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		n, ok := store.Note(args[0])
		if !ok {
			return fmt.Errorf("note %s: %w", args[0], core.ErrNotFound)
		}

		if cmd.Flags().Changed("title") {
			n.Title = noteTitle
		}
		if cmd.Flags().Changed("body") {
			n.Body = noteBody
		}
		if cmd.Flags().Changed("folder") {
			n.Folder = noteFolder
		}
		if cmd.Flags().Changed("remind") {
			for _, s := range noteRemind {
				when, err := core.ParseInstant(s)
				if err != nil {
					return err
				}
				n.Reminders = append(n.Reminders, core.Reminder{When: core.At(when)})
			}
		}
		if err := store.UpdateNote(ctx, n); err != nil {
			return err
		}
		n, _ = store.Note(n.ID)
		printNote(n)
		return nil
	},
}

var noteRmCmd = &cobra.Command{
	Use:     "rm <id>...",
	Aliases: []string{"delete"},
	Short:   "Delete notes and their reminders",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		for _, id := range args {
			if err := store.DeleteNote(ctx, id); err != nil {
				return err
			}
		}
		return nil
	},
}

var noteListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List notes",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		snap := store.Snapshot()
		notes := core.FilterNotes(snap.Notes, listFolder)
		notes = core.SortNotes(notes, core.SortMode(listSort), snap.Order)

		if listJSON {
			return printJSON(notes)
		}
		printNotes(notes)
		return nil
	},
}

var noteShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a note with its todos and reminders",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		n, ok := store.Note(args[0])
		if !ok {
			return fmt.Errorf("note %s: %w", args[0], core.ErrNotFound)
		}
		if listJSON {
			return printJSON(n)
		}
		printNote(n)
		return nil
	},
}

var noteFoldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "List folders in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		for _, f := range core.Folders(store.Snapshot().Notes) {
			fmt.Println(f)
		}
		return nil
	},
}

var noteTodoCmd = &cobra.Command{
	Use:   "todo <note-id> <text>",
	Short: "Add a todo to a note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		td, err := store.AddTodo(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println(td.ID)
		return nil
	},
}

var noteCheckCmd = &cobra.Command{
	Use:   "check <note-id> <todo-id>",
	Short: "Toggle a todo",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		return store.ToggleTodo(ctx, args[0], args[1])
	},
}

var noteResizeCmd = &cobra.Command{
	Use:   "resize <id>",
	Short: "Grow or shrink a note's display size",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if resizeGrow == resizeShrink {
			return fmt.Errorf("pass exactly one of --grow or --shrink")
		}
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		size, err := store.ResizeNote(ctx, args[0], resizeGrow)
		if err != nil {
			return err
		}
		fmt.Println(size)
		return nil
	},
}

var noteUnremindCmd = &cobra.Command{
	Use:   "unremind <note-id> <reminder-id>",
	Short: "Remove a reminder from a note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		return store.RemoveNoteReminder(ctx, args[0], args[1])
	},
}

var noteRemindCmd = &cobra.Command{
	Use:   "remind <note-id> <when>",
	Short: "Attach a reminder to a note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		when, err := core.ParseInstant(args[1])
		if err != nil {
			return err
		}
		if !when.After(time.Now()) {
			return fmt.Errorf("reminder time %s is not in the future", when.Format(timeLayout))
		}
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		r, err := store.AddNoteReminder(ctx, args[0], when)
		if err != nil {
			return err
		}
		fmt.Println(r.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(noteCmd)
	noteCmd.AddCommand(noteAddCmd, noteEditCmd, noteRmCmd, noteListCmd, noteShowCmd,
		noteFoldersCmd, noteTodoCmd, noteCheckCmd, noteResizeCmd, noteRemindCmd, noteUnremindCmd)

	for _, c := range []*cobra.Command{noteAddCmd, noteEditCmd} {
		c.Flags().StringVarP(&noteBody, "body", "b", "", "Note body")
		c.Flags().StringVarP(&noteFolder, "folder", "f", "", "Folder (default General)")
		c.Flags().StringArrayVarP(&noteRemind, "remind", "r", nil, "Reminder time, e.g. 2025-06-01T09:00 (repeatable)")
	}
	noteAddCmd.Flags().StringVarP(&noteSize, "size", "s", "", "Size: s, m or l")
	noteAddCmd.Flags().StringArrayVarP(&noteTodos, "todo", "t", nil, "Todo text (repeatable)")
	noteEditCmd.Flags().StringVar(&noteTitle, "title", "", "New title")

	noteListCmd.Flags().StringVarP(&listFolder, "folder", "f", "all", "Folder glob, e.g. 'Work/**'")
	noteListCmd.Flags().StringVar(&listSort, "sort", string(core.SortCustom), "Sort: created, alpha or custom")
	noteListCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	noteShowCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")

	noteResizeCmd.Flags().BoolVar(&resizeGrow, "grow", false, "Next larger size")
	noteResizeCmd.Flags().BoolVar(&resizeShrink, "shrink", false, "Next smaller size")
}
