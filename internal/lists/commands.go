package lists

import (
	"slices"

	"github.com/mmcdole/marquee/internal/domain"
)

// Command is a requested change to the user's lists. The set is closed:
// Seed, Create, Rename, Remove, AddItem and RemoveItem.
type Command interface {
	command()
	// Target is the slug the command mutates, empty for Seed and Create
	Target() string
}

// Seed installs pre-fetched lists
type Seed struct{ Lists []domain.List }

// Create makes a new list; the server derives its slug
type Create struct{ Name string }

// Rename changes a list's display name; the slug is stable
type Rename struct {
	Slug string
	Name string
}

// Remove deletes a list
type Remove struct{ Slug string }

// AddItem adds a catalog reference to a list
type AddItem struct {
	Slug string
	Item domain.ListItem
}

// RemoveItem removes a catalog reference from a list
type RemoveItem struct {
	Slug string
	Item domain.ListItem
}

func (Seed) command()       {}
func (Create) command()     {}
func (Rename) command()     {}
func (Remove) command()     {}
func (AddItem) command()    {}
func (RemoveItem) command() {}

func (Seed) Target() string         { return "" }
func (Create) Target() string       { return "" }
func (c Rename) Target() string     { return c.Slug }
func (c Remove) Target() string     { return c.Slug }
func (c AddItem) Target() string    { return c.Slug }
func (c RemoveItem) Target() string { return c.Slug }

// Event is a server-confirmed change. Each event maps to exactly one
// transition in Reduce.
type Event interface{ event() }

// Seeded carries the initial lists
type Seeded struct{ Lists []domain.List }

// Created carries the list as the server stored it
type Created struct{ List domain.List }

// Renamed carries the renamed list
type Renamed struct{ List domain.List }

// Removed names the deleted list
type Removed struct{ Slug string }

// MembershipChanged carries a list with the server's item set
type MembershipChanged struct{ List domain.List }

func (Seeded) event()            {}
func (Created) event()           {}
func (Renamed) event()           {}
func (Removed) event()           {}
func (MembershipChanged) event() {}

// State is the reducer state
type State struct {
	Lists  []domain.List
	Seeded bool
}

// Reduce applies one confirmed event and returns the next state. It never
// mutates s, so callers may keep earlier states around.
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case Seeded:
		if s.Seeded || len(s.Lists) > 0 {
			return s
		}
		next := State{Seeded: true, Lists: make([]domain.List, 0, len(e.Lists))}
		for _, l := range e.Lists {
			next.Lists = upsert(next.Lists, l)
		}
		return next

	case Created:
		return State{Seeded: s.Seeded, Lists: upsert(cloneLists(s.Lists), e.List)}

	case Renamed:
		return replace(s, e.List)

	case MembershipChanged:
		return replace(s, e.List)

	case Removed:
		next := State{Seeded: s.Seeded, Lists: make([]domain.List, 0, len(s.Lists))}
		for _, l := range s.Lists {
			if l.Slug != e.Slug {
				next.Lists = append(next.Lists, l.Clone())
			}
		}
		return next

	default:
		return s
	}
}

// replace swaps the list with the same slug for l. Unknown slugs leave the
// state unchanged.
func replace(s State, l domain.List) State {
	i := indexOf(s.Lists, l.Slug)
	if i < 0 {
		return s
	}
	next := State{Seeded: s.Seeded, Lists: cloneLists(s.Lists)}
	next.Lists[i] = l.Clone()
	return next
}

// upsert appends l, or replaces an existing list with the same slug so slugs
// stay unique.
func upsert(lists []domain.List, l domain.List) []domain.List {
	if i := indexOf(lists, l.Slug); i >= 0 {
		lists[i] = l.Clone()
		return lists
	}
	return append(lists, l.Clone())
}

func indexOf(lists []domain.List, slug string) int {
	return slices.IndexFunc(lists, func(l domain.List) bool { return l.Slug == slug })
}

func cloneLists(lists []domain.List) []domain.List {
	out := make([]domain.List, len(lists))
	for i, l := range lists {
		out[i] = l.Clone()
	}
	return out
}
