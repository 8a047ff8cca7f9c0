// Package lists keeps a user's named lists consistent with the server.
// Nothing is applied until the server confirms it.
package lists

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mmcdole/marquee/internal/domain"
)

// createKey marks an outstanding Create, which has no slug yet
const createKey = "\x00create"

// Epoch numbers a session of the store. Reset starts a new one.
type Epoch uint64

// Ticket is a command started by Begin, stamped with the session it belongs to
type Ticket struct {
	Epoch   Epoch
	Command Command
}

// Store orchestrates the list client and the confirmed list state.
type Store struct {
	client domain.ListClient
	logger *slog.Logger

	mu       sync.RWMutex
	epoch    Epoch
	state    State
	inflight map[string]bool
}

// NewStore creates an empty, unseeded store.
func NewStore(client domain.ListClient, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{client: client, logger: logger, inflight: make(map[string]bool)}
}

// Epoch returns the current session
func (s *Store) Epoch() Epoch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// Seed installs pre-fetched lists into the current session. It is accepted
// only once per session and only while the store is empty; a repeat is
// ignored and reports false.
func (s *Store) Seed(lists []domain.List) bool {
	return s.SeedAt(s.Epoch(), lists)
}

// SeedAt is Seed for lists fetched during the given session. Lists fetched
// before the last Reset are dropped.
func (s *Store) SeedAt(epoch Epoch, lists []domain.List) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		s.logger.Debug("dropping lists of an ended session", "epoch", epoch, "current", s.epoch)
		return false
	}
	before := s.state
	s.state = Reduce(s.state, Seeded{Lists: lists})
	if !s.state.Seeded || before.Seeded || len(before.Lists) > 0 {
		s.logger.Debug("ignoring repeated seed", "count", len(lists))
		return false
	}
	s.logger.Debug("seeded lists", "count", len(lists))
	return true
}

// Load fetches the user's lists and seeds the store with them
func (s *Store) Load(ctx context.Context, credential string) ([]domain.List, error) {
	epoch := s.Epoch()
	lists, err := s.client.GetAll(ctx, credential)
	if err != nil {
		s.logger.Error("failed to fetch lists", "error", err)
		return nil, domain.AsAPIError(err)
	}
	s.SeedAt(epoch, lists)
	s.logger.Debug("fetched lists", "count", len(lists))
	return lists, nil
}

// Begin validates cmd against the current state and marks its list as busy.
// A second mutation for a list that is still busy fails with
// domain.ErrMutationInFlight. The returned ticket is handed to Finish.
func (s *Store) Begin(cmd Command) (Ticket, error) {
	if c, ok := cmd.(Create); ok && strings.TrimSpace(c.Name) == "" {
		return Ticket{}, domain.ErrInvalidName
	}
	if c, ok := cmd.(Rename); ok && strings.TrimSpace(c.Name) == "" {
		return Ticket{}, domain.ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := Ticket{Epoch: s.epoch, Command: cmd}
	if _, ok := cmd.(Seed); ok {
		return t, nil
	}
	if cmd.Target() != "" && indexOf(s.state.Lists, cmd.Target()) < 0 {
		return Ticket{}, fmt.Errorf("%w: %s", domain.ErrListNotFound, cmd.Target())
	}
	key := inflightKey(cmd)
	if s.inflight[key] {
		return Ticket{}, domain.ErrMutationInFlight
	}
	s.inflight[key] = true
	return t, nil
}

// Execute performs the remote call for cmd and returns the confirmed event.
// It does not touch the store and may run on any goroutine.
func (s *Store) Execute(ctx context.Context, cmd Command) (Event, error) {
	var (
		list domain.List
		err  error
	)
	switch c := cmd.(type) {
	case Seed:
		return Seeded{Lists: c.Lists}, nil
	case Create:
		if list, err = s.client.Create(ctx, strings.TrimSpace(c.Name)); err == nil {
			return Created{List: list}, nil
		}
	case Rename:
		if list, err = s.client.Update(ctx, c.Slug, strings.TrimSpace(c.Name)); err == nil {
			return Renamed{List: list}, nil
		}
	case Remove:
		if err = s.client.Delete(ctx, c.Slug); err == nil {
			return Removed{Slug: c.Slug}, nil
		}
	case AddItem:
		if list, err = s.client.AddItem(ctx, c.Slug, c.Item); err == nil {
			return MembershipChanged{List: list}, nil
		}
	case RemoveItem:
		if list, err = s.client.RemoveItem(ctx, c.Slug, c.Item); err == nil {
			return MembershipChanged{List: list}, nil
		}
	default:
		err = fmt.Errorf("unknown list command %T", cmd)
	}
	return nil, domain.AsAPIError(err)
}

// Finish clears the busy mark for the ticket's command and, when err is nil,
// applies ev. On failure the state is left exactly as it was before Begin.
// Tickets from before the last Reset change nothing and report false.
func (s *Store) Finish(t Ticket, ev Event, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd := t.Command
	if t.Epoch != s.epoch {
		s.logger.Debug("dropping list command of an ended session", "command", describe(cmd), "epoch", t.Epoch, "current", s.epoch)
		return false
	}
	delete(s.inflight, inflightKey(cmd))

	if err != nil {
		s.logger.Error("list command failed", "error", err, "command", describe(cmd), "slug", cmd.Target())
		return true
	}
	if ev == nil {
		return true
	}
	s.state = Reduce(s.state, ev)
	s.logger.Info("list command applied", "command", describe(cmd), "slug", cmd.Target())
	return true
}

// Dispatch runs cmd to completion on the calling goroutine
func (s *Store) Dispatch(ctx context.Context, cmd Command) (Event, error) {
	t, err := s.Begin(cmd)
	if err != nil {
		return nil, err
	}
	ev, err := s.Execute(ctx, cmd)
	if !s.Finish(t, ev, err) && err == nil {
		return nil, fmt.Errorf("%w: session ended", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// Create makes a new list and returns it as the server stored it
func (s *Store) Create(ctx context.Context, name string) (domain.List, error) {
	ev, err := s.Dispatch(ctx, Create{Name: name})
	if err != nil {
		return domain.List{}, err
	}
	return ev.(Created).List, nil
}

// Rename changes a list's name
func (s *Store) Rename(ctx context.Context, slug, name string) (domain.List, error) {
	ev, err := s.Dispatch(ctx, Rename{Slug: slug, Name: name})
	if err != nil {
		return domain.List{}, err
	}
	return ev.(Renamed).List, nil
}

// Remove deletes a list
func (s *Store) Remove(ctx context.Context, slug string) error {
	_, err := s.Dispatch(ctx, Remove{Slug: slug})
	return err
}

// AddItem adds item to the list
func (s *Store) AddItem(ctx context.Context, slug string, item domain.ListItem) (domain.List, error) {
	ev, err := s.Dispatch(ctx, AddItem{Slug: slug, Item: item})
	if err != nil {
		return domain.List{}, err
	}
	return ev.(MembershipChanged).List, nil
}

// RemoveItem removes item from the list
func (s *Store) RemoveItem(ctx context.Context, slug string, item domain.ListItem) (domain.List, error) {
	ev, err := s.Dispatch(ctx, RemoveItem{Slug: slug, Item: item})
	if err != nil {
		return domain.List{}, err
	}
	return ev.(MembershipChanged).List, nil
}

// Lists returns a copy of the confirmed lists
func (s *Store) Lists() []domain.List {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneLists(s.state.Lists)
}

// Get returns the list with the given slug
func (s *Store) Get(slug string) (domain.List, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.state.Lists, slug); i >= 0 {
		return s.state.Lists[i].Clone(), true
	}
	return domain.List{}, false
}

// Membership maps each list slug to whether it holds the item's catalog entry
func (s *Store) Membership(item domain.ListItem) map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	membership := make(map[string]bool, len(s.state.Lists))
	for _, l := range s.state.Lists {
		membership[l.Slug] = l.Contains(item)
	}
	return membership
}

// Busy reports whether slug has an outstanding mutation
func (s *Store) Busy(slug string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight[slug]
}

// Creating reports whether a Create is outstanding
func (s *Store) Creating() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight[createKey]
}

// Seeded reports whether the store has received its initial lists
func (s *Store) Seeded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Seeded
}

// Reset drops all lists at a session boundary and starts a new session, so
// the next Seed is accepted and work started before the reset is dropped
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.state = State{}
	s.inflight = make(map[string]bool)
	s.logger.Debug("reset lists", "epoch", s.epoch)
}

func inflightKey(cmd Command) string {
	if _, ok := cmd.(Create); ok {
		return createKey
	}
	return cmd.Target()
}

func describe(cmd Command) string {
	switch cmd.(type) {
	case Seed:
		return "seed"
	case Create:
		return "create"
	case Rename:
		return "rename"
	case Remove:
		return "remove"
	case AddItem:
		return "addItem"
	case RemoveItem:
		return "removeItem"
	default:
		return "unknown"
	}
}
