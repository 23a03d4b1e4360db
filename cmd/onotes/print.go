package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/aretw0/onotes/pkg/core"
	"github.com/aretw0/onotes/pkg/notify"
)

const timeLayout = "Mon 02 Jan 15:04"

var (
	header = color.New(color.Bold, color.Underline)
	faint  = color.New(color.Faint)
	due    = color.New(color.FgHiYellow, color.Bold)
	done   = color.New(color.Faint, color.CrossedOut)
)

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func printNotes(notes []core.Note) {
	if len(notes) == 0 {
		_, _ = fmt.Fprintln(color.Output, faint.Sprint("no notes"))
		return
	}

	tbl := uitable.New()
	tbl.MaxColWidth = 48
	tbl.AddRow(header.Sprint("ID"), header.Sprint("TITLE"), header.Sprint("FOLDER"), header.Sprint("SIZE"), header.Sprint("TODOS"), header.Sprint("REMINDERS"))
	for _, n := range notes {
		open := 0
		for _, td := range n.Todos {
			if !td.Done {
				open++
			}
		}
		tbl.AddRow(n.ID, n.Title, n.Folder, n.Size, fmt.Sprintf("%d/%d", open, len(n.Todos)), len(n.Reminders))
	}
	_, _ = fmt.Fprintln(color.Output, tbl)
}

func printNote(n core.Note) {
	_, _ = fmt.Fprintln(color.Output, header.Sprint(n.Title), faint.Sprintf("[%s] %s", n.Folder, n.ID))
	if n.Body != "" {
		_, _ = fmt.Fprintln(color.Output, n.Body)
	}
	for _, td := range n.Todos {
		if td.Done {
			_, _ = fmt.Fprintln(color.Output, "  [x]", done.Sprint(td.Text), faint.Sprint(td.ID))
		} else {
			_, _ = fmt.Fprintln(color.Output, "  [ ]", td.Text, faint.Sprint(td.ID))
		}
	}
	for _, r := range n.Reminders {
		_, _ = fmt.Fprintln(color.Output, "  @", formatInstant(r.When, time.Now()), faint.Sprint(r.ID))
	}
}

func printReminders(rs []core.Reminder, titles map[string]string, now time.Time) {
	if len(rs) == 0 {
		_, _ = fmt.Fprintln(color.Output, faint.Sprint("no reminders"))
		return
	}

	tbl := uitable.New()
	tbl.MaxColWidth = 48
	tbl.AddRow(header.Sprint("ID"), header.Sprint("WHEN"), header.Sprint("TITLE"), header.Sprint("NOTE"))
	for _, r := range rs {
		title := r.Title
		note := ""
		if r.NoteID != "" {
			note = titles[r.NoteID]
			if title == "" {
				title = note
			}
		}
		tbl.AddRow(r.ID, formatInstant(r.When, now), title, note)
	}
	_, _ = fmt.Fprintln(color.Output, tbl)
}

func printNotifications(items []notify.Notification) {
	if len(items) == 0 {
		_, _ = fmt.Fprintln(color.Output, faint.Sprint("no notifications"))
		return
	}
	tbl := uitable.New()
	tbl.AddRow(header.Sprint("ID"), header.Sprint("DUE"), header.Sprint("TITLE"))
	for _, n := range items {
		tbl.AddRow(n.ID, n.DeliveredFor.Local().Format(timeLayout), n.Title)
	}
	_, _ = fmt.Fprintln(color.Output, tbl)
}

func printNotification(n notify.Notification) {
	late := ""
	if d := n.DeliveredAt.Sub(n.DeliveredFor); d > time.Minute {
		late = faint.Sprintf(" (%s late)", d.Round(time.Minute))
	}
	_, _ = fmt.Fprintf(color.Output, "%s %s%s %s\n",
		due.Sprint("⏰"), n.Title, late, faint.Sprint(n.ID))
}

func formatInstant(i core.Instant, now time.Time) string {
	if !i.Valid() {
		return color.RedString("invalid (%s)", strings.TrimSpace(i.Raw()))
	}
	t := i.Time()
	s := t.Format(timeLayout)
	if t.Before(now) {
		return faint.Sprint(s)
	}
	return s
}

// noteTitles maps note ids to titles for reminder listings.
func noteTitles(snap core.Snapshot) map[string]string {
	titles := make(map[string]string, len(snap.Notes))
	for _, n := range snap.Notes {
		titles[n.ID] = n.Title
	}
	return titles
}
