// Package modal drives the single, globally shared "add to list" modal.
package modal

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/lists"
)

// ErrHidden is returned when a row is toggled while the modal is hidden
var ErrHidden = errors.New("list modal is not visible")

// Command is a modal transition request: Show or Hide
type Command interface{ modalCommand() }

// Show opens the modal for item, replacing whatever is visible
type Show struct {
	Mode domain.ModalMode
	Item domain.ListItem
}

// Hide closes the modal
type Hide struct{}

func (Show) modalCommand() {}
func (Hide) modalCommand() {}

// Transition is the pure state function of the modal. Show always wins over
// the current state; there is no queue.
func Transition(s domain.ListModalState, cmd Command) domain.ListModalState {
	switch c := cmd.(type) {
	case Show:
		item := c.Item
		return domain.ListModalState{Visible: true, Mode: c.Mode, Item: &item}
	case Hide:
		return domain.ListModalState{}
	default:
		return s
	}
}

// Row is one list as presented by the modal
type Row struct {
	List    domain.List
	Checked bool  // The item is a member of this list
	Busy    bool  // A mutation for this list is outstanding
	Err     error // Failure of the last toggle, shown inline
}

// Controller wraps Transition with the list store it reads from. It holds the
// session's store itself, never a copy of its lists.
type Controller struct {
	store  *lists.Store
	logger *slog.Logger

	state  domain.ListModalState
	scope  map[string]bool // Lists offered in remove mode, fixed at Show
	errs   map[string]error
	filter string
}

// NewController creates a hidden modal controller bound to store
func NewController(store *lists.Store, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{store: store, logger: logger, errs: make(map[string]error)}
}

// Show opens the modal for item in the given mode
func (c *Controller) Show(mode domain.ModalMode, item domain.ListItem) {
	c.state = Transition(c.state, Show{Mode: mode, Item: item})
	c.errs = make(map[string]error)
	c.filter = ""
	c.scope = nil
	if mode == domain.ModeRemove {
		c.scope = make(map[string]bool)
		for slug, member := range c.store.Membership(item) {
			if member {
				c.scope[slug] = true
			}
		}
	}
	c.logger.Debug("list modal shown", "mode", mode.String(), "item", item.Key())
}

// Hide closes the modal
func (c *Controller) Hide() {
	c.state = Transition(c.state, Hide{})
	c.errs = make(map[string]error)
	c.filter = ""
	c.scope = nil
}

// State returns the modal state
func (c *Controller) State() domain.ListModalState { return c.state }

// Visible reports whether the modal is shown
func (c *Controller) Visible() bool { return c.state.Visible }

// Item returns the item being managed
func (c *Controller) Item() (domain.ListItem, bool) {
	if !c.state.Visible || c.state.Item == nil {
		return domain.ListItem{}, false
	}
	return *c.state.Item, true
}

// SetFilter narrows the rows to lists whose names fuzzily match query
func (c *Controller) SetFilter(query string) {
	c.filter = strings.TrimSpace(query)
}

// Filter returns the active row filter
func (c *Controller) Filter() string { return c.filter }

// Rows returns every current list from the store with its checkbox state
func (c *Controller) Rows() []Row {
	item, ok := c.Item()
	if !ok {
		return nil
	}

	all := c.store.Lists()
	rows := make([]Row, 0, len(all))
	for _, l := range all {
		if c.scope != nil && !c.scope[l.Slug] {
			continue
		}
		if c.filter != "" && !fuzzy.MatchFold(c.filter, l.Name) {
			continue
		}
		rows = append(rows, Row{
			List:    l,
			Checked: l.Contains(item),
			Busy:    c.store.Busy(l.Slug),
			Err:     c.errs[l.Slug],
		})
	}
	return rows
}

// Creating reports whether a new list is being created from the modal's
// create row or elsewhere. Only one create may be outstanding.
func (c *Controller) Creating() bool { return c.store.Creating() }

// Toggle starts the add or remove mutation for one list and returns the
// ticket to execute. The list is marked busy until Complete is called.
func (c *Controller) Toggle(slug string) (lists.Ticket, error) {
	item, ok := c.Item()
	if !ok {
		return lists.Ticket{}, ErrHidden
	}

	var cmd lists.Command
	if c.store.Membership(item)[slug] {
		cmd = lists.RemoveItem{Slug: slug, Item: item}
	} else {
		cmd = lists.AddItem{Slug: slug, Item: item}
	}

	t, err := c.store.Begin(cmd)
	if err != nil {
		c.errs[slug] = err
		return lists.Ticket{}, err
	}
	delete(c.errs, slug)
	return t, nil
}

// Complete finishes a toggle started by Toggle. A failure is shown inline on
// the row and the modal stays open. Toggles from an ended session are dropped.
func (c *Controller) Complete(t lists.Ticket, ev lists.Event, err error) {
	if !c.store.Finish(t, ev, err) {
		return
	}
	c.Resolve(t.Command, err)
}

// Resolve records the outcome of cmd on its row. Outcomes for an item the
// modal no longer shows are ignored.
func (c *Controller) Resolve(cmd lists.Command, err error) {
	item, ok := c.Item()
	if !ok || !item.SameEntry(commandItem(cmd)) {
		return
	}
	if err != nil {
		c.errs[cmd.Target()] = err
		return
	}
	delete(c.errs, cmd.Target())
}

func commandItem(cmd lists.Command) domain.ListItem {
	switch c := cmd.(type) {
	case lists.AddItem:
		return c.Item
	case lists.RemoveItem:
		return c.Item
	default:
		return domain.ListItem{}
	}
}
