package core

import (
	"cmp"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// MergeOrder folds a reordered visible subset back into the full order.
//
// Walking full, every id that belongs to the visible set is replaced, in turn,
// by the next id of visible; ids outside the set keep their positions. Ids of
// all that end up missing are appended in all order. Unknown and duplicate
// ids are dropped. When full is empty, all is used as the base order.
//
//	MergeOrder([A B C D E], [D B], all) == [A D C B E]
func MergeOrder(full, visible, all []string) []string {
	known := make(map[string]bool, len(all))
	for _, id := range all {
		known[id] = true
	}

	base := full
	if len(base) == 0 {
		base = all
	}

	inVisible := make(map[string]bool, len(visible))
	for _, id := range visible {
		inVisible[id] = true
	}
	queue := slices.Clone(visible)

	merged := make([]string, 0, len(all))
	seen := make(map[string]bool, len(all))
	push := func(id string) {
		if known[id] && !seen[id] {
			seen[id] = true
			merged = append(merged, id)
		}
	}

	for _, id := range base {
		if inVisible[id] {
			if len(queue) == 0 {
				continue
			}
			id, queue = queue[0], queue[1:]
		}
		push(id)
	}
	for _, id := range all {
		push(id)
	}
	return merged
}

// SortMode selects how notes are listed.
type SortMode string

const (
	SortCreated SortMode = "created"
	SortAlpha   SortMode = "alpha"
	SortCustom  SortMode = "custom"
)

// SortNotes returns a sorted copy of notes.
// In custom mode notes follow order (or storage order when order is empty);
// notes absent from it are appended in their original order.
func SortNotes(notes []Note, mode SortMode, order []string) []Note {
	out := slices.Clone(notes)
	switch mode {
	case SortAlpha:
		slices.SortStableFunc(out, func(a, b Note) int {
			return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		})
	case SortCustom:
		pos := make(map[string]int, len(order))
		for i, id := range order {
			if _, dup := pos[id]; !dup {
				pos[id] = i
			}
		}
		rank := func(n Note) int {
			if p, ok := pos[n.ID]; ok {
				return p
			}
			return len(order)
		}
		slices.SortStableFunc(out, func(a, b Note) int {
			return cmp.Compare(rank(a), rank(b))
		})
	default:
		slices.SortStableFunc(out, func(a, b Note) int {
			return cmp.Compare(a.CreatedAt.UnixMilli(), b.CreatedAt.UnixMilli())
		})
	}
	return out
}

// FilterNotes keeps the notes whose folder matches pattern, a doublestar glob
// (e.g. "Work/**"). An empty pattern or "all" matches every note.
func FilterNotes(notes []Note, pattern string) []Note {
	if pattern == "" || pattern == "all" {
		return slices.Clone(notes)
	}
	var out []Note
	for _, n := range notes {
		folder := n.Folder
		if folder == "" {
			folder = DefaultFolder
		}
		if ok, err := doublestar.Match(pattern, folder); err == nil && ok {
			out = append(out, n)
		}
	}
	return out
}

// Folders returns the distinct folders in use, sorted.
func Folders(notes []Note) []string {
	var out []string
	for _, n := range notes {
		folder := n.Folder
		if folder == "" {
			folder = DefaultFolder
		}
		if !slices.Contains(out, folder) {
			out = append(out, folder)
		}
	}
	slices.Sort(out)
	return out
}

// Upcoming lists every reminder of the snapshot, standalone and embedded,
// sorted by instant. Reminders with an invalid instant sort last.
func Upcoming(snap Snapshot) []Reminder {
	out := slices.Clone(snap.Reminders)
	for _, n := range snap.Notes {
		for _, r := range n.Reminders {
			r.NoteID = n.ID
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b Reminder) int {
		switch {
		case a.When.Valid() && !b.When.Valid():
			return -1
		case !a.When.Valid() && b.When.Valid():
			return 1
		}
		return cmp.Compare(a.When.UnixMilli(), b.When.UnixMilli())
	})
	return out
}
