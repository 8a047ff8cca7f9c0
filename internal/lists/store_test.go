package lists

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/marquee/internal/domain"
)

// fakeListClient behaves like the account server: slugs derived from names,
// membership deduplicated, every mutation returning the stored list.
type fakeListClient struct {
	lists map[string]domain.List
	err   error
	calls int
}

func newFakeListClient(lists ...domain.List) *fakeListClient {
	f := &fakeListClient{lists: make(map[string]domain.List)}
	for _, l := range lists {
		f.lists[l.Slug] = l.Clone()
	}
	return f
}

func (f *fakeListClient) GetAll(ctx context.Context, credential string) ([]domain.List, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.List, 0, len(f.lists))
	for _, l := range f.lists {
		out = append(out, l.Clone())
	}
	return out, nil
}

func (f *fakeListClient) Create(ctx context.Context, name string) (domain.List, error) {
	f.calls++
	if f.err != nil {
		return domain.List{}, f.err
	}
	l := domain.List{ID: name, Slug: name, Name: name}
	f.lists[l.Slug] = l
	return l.Clone(), nil
}

func (f *fakeListClient) Update(ctx context.Context, slug, name string) (domain.List, error) {
	f.calls++
	if f.err != nil {
		return domain.List{}, f.err
	}
	l, ok := f.lists[slug]
	if !ok {
		return domain.List{}, domain.NewAPIError(404, "list not found")
	}
	l.Name = name
	f.lists[slug] = l
	return l.Clone(), nil
}

func (f *fakeListClient) Delete(ctx context.Context, slug string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	delete(f.lists, slug)
	return nil
}

func (f *fakeListClient) AddItem(ctx context.Context, slug string, item domain.ListItem) (domain.List, error) {
	f.calls++
	if f.err != nil {
		return domain.List{}, f.err
	}
	l := f.lists[slug]
	if !l.Contains(item) {
		l.Items = append(l.Items, item)
	}
	f.lists[slug] = l
	return l.Clone(), nil
}

func (f *fakeListClient) RemoveItem(ctx context.Context, slug string, item domain.ListItem) (domain.List, error) {
	f.calls++
	if f.err != nil {
		return domain.List{}, f.err
	}
	l := f.lists[slug]
	kept := l.Items[:0:0]
	for _, it := range l.Items {
		if !it.SameEntry(item) {
			kept = append(kept, it)
		}
	}
	l.Items = kept
	f.lists[slug] = l
	return l.Clone(), nil
}

var fightClub = domain.ListItem{TmdbID: 550, Type: domain.CategoryMovie, Title: "Fight Club"}

func TestSeedIsIdempotent(t *testing.T) {
	s := NewStore(newFakeListClient(), nil)

	first := []domain.List{{Slug: "favorites", Name: "Favorites"}}
	second := []domain.List{{Slug: "other", Name: "Other"}}

	assert.True(t, s.Seed(first))
	assert.False(t, s.Seed(second))
	assert.Equal(t, first, s.Lists())
}

func TestSeedEmptyThenRepeat(t *testing.T) {
	s := NewStore(newFakeListClient(), nil)

	assert.True(t, s.Seed(nil))
	assert.False(t, s.Seed([]domain.List{{Slug: "late"}}))
	assert.Empty(t, s.Lists())

	s.Reset()
	assert.True(t, s.Seed([]domain.List{{Slug: "late"}}))
	assert.Len(t, s.Lists(), 1)
}

func TestFailedMutationLeavesStateUntouched(t *testing.T) {
	seed := []domain.List{{Slug: "favorites", Name: "Favorites"}}
	client := newFakeListClient(seed...)
	s := NewStore(client, nil)
	s.Seed(seed)

	client.err = domain.NewAPIError(500, "boom")

	_, err := s.AddItem(context.Background(), "favorites", fightClub)
	require.Error(t, err)

	var apiErr *domain.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 500, apiErr.Status)
	assert.Equal(t, seed, s.Lists())
	assert.False(t, s.Busy("favorites"))

	_, err = s.Create(context.Background(), "Watch later")
	require.Error(t, err)
	assert.Equal(t, seed, s.Lists())
	assert.False(t, s.Creating())
}

func TestMutationNotVisibleBeforeConfirmation(t *testing.T) {
	seed := []domain.List{{Slug: "favorites", Name: "Favorites"}}
	s := NewStore(newFakeListClient(seed...), nil)
	s.Seed(seed)

	cmd := AddItem{Slug: "favorites", Item: fightClub}
	ticket, err := s.Begin(cmd)
	require.NoError(t, err)
	assert.True(t, s.Busy("favorites"))

	ev, err := s.Execute(context.Background(), cmd)
	require.NoError(t, err)

	// Confirmed by the server but not yet finished on the event loop
	assert.False(t, s.Membership(fightClub)["favorites"])

	assert.True(t, s.Finish(ticket, ev, nil))
	assert.True(t, s.Membership(fightClub)["favorites"])
	assert.False(t, s.Busy("favorites"))
}

func TestOneMutationPerList(t *testing.T) {
	seed := []domain.List{{Slug: "a", Name: "A"}, {Slug: "b", Name: "B"}}
	s := NewStore(newFakeListClient(seed...), nil)
	s.Seed(seed)

	ticket, err := s.Begin(AddItem{Slug: "a", Item: fightClub})
	require.NoError(t, err)
	_, err = s.Begin(RemoveItem{Slug: "a", Item: fightClub})
	assert.ErrorIs(t, err, domain.ErrMutationInFlight)
	_, err = s.Begin(AddItem{Slug: "b", Item: fightClub})
	assert.NoError(t, err)

	s.Finish(ticket, nil, errors.New("failed"))
	_, err = s.Begin(RemoveItem{Slug: "a", Item: fightClub})
	assert.NoError(t, err)
}

func TestBeginRejectsUnknownSlugAndEmptyName(t *testing.T) {
	s := NewStore(newFakeListClient(), nil)
	s.Seed(nil)

	_, err := s.Begin(Remove{Slug: "missing"})
	assert.ErrorIs(t, err, domain.ErrListNotFound)
	_, err = s.Begin(Create{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
	_, err = s.Begin(Rename{Slug: "missing", Name: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestFinishAfterResetIsDropped(t *testing.T) {
	seed := []domain.List{{Slug: "favorites", Name: "Favorites"}}
	s := NewStore(newFakeListClient(seed...), nil)
	s.Seed(seed)

	cmd := Create{Name: "Watch later"}
	ticket, err := s.Begin(cmd)
	require.NoError(t, err)
	assert.True(t, s.Creating())

	ev, err := s.Execute(context.Background(), cmd)
	require.NoError(t, err)

	// Signed out while the create was on the wire
	s.Reset()
	assert.False(t, s.Creating())
	assert.False(t, s.Finish(ticket, ev, nil))
	assert.Empty(t, s.Lists())

	// The next user's lists are still accepted
	next := []domain.List{{Slug: "mine", Name: "Mine"}}
	assert.True(t, s.Seed(next))
	assert.Equal(t, next, s.Lists())
}

func TestFinishAfterResetKeepsNewSessionBusyMarks(t *testing.T) {
	seed := []domain.List{{Slug: "favorites", Name: "Favorites"}}
	s := NewStore(newFakeListClient(seed...), nil)
	s.Seed(seed)

	old, err := s.Begin(AddItem{Slug: "favorites", Item: fightClub})
	require.NoError(t, err)

	s.Reset()
	s.Seed(seed)
	_, err = s.Begin(AddItem{Slug: "favorites", Item: fightClub})
	require.NoError(t, err)

	s.Finish(old, nil, errors.New("late"))
	assert.True(t, s.Busy("favorites"))
}

func TestSeedAtRejectsEndedSession(t *testing.T) {
	s := NewStore(newFakeListClient(), nil)
	epoch := s.Epoch()

	s.Reset()
	assert.False(t, s.SeedAt(epoch, []domain.List{{Slug: "theirs"}}))
	assert.False(t, s.Seeded())

	assert.True(t, s.SeedAt(s.Epoch(), []domain.List{{Slug: "mine"}}))
	assert.Len(t, s.Lists(), 1)
}

func TestAddItemTwiceKeepsSingleEntry(t *testing.T) {
	seed := []domain.List{{Slug: "favorites", Name: "Favorites"}}
	s := NewStore(newFakeListClient(seed...), nil)
	s.Seed(seed)

	ctx := context.Background()
	_, err := s.AddItem(ctx, "favorites", fightClub)
	require.NoError(t, err)
	l, err := s.AddItem(ctx, "favorites", fightClub)
	require.NoError(t, err)

	assert.Len(t, l.Items, 1)
	got, ok := s.Get("favorites")
	require.True(t, ok)
	assert.Equal(t, []domain.ListItem{fightClub}, got.Items)
}

func TestCrudRoundTrip(t *testing.T) {
	client := newFakeListClient()
	s := NewStore(client, nil)
	ctx := context.Background()

	_, err := s.Load(ctx, "token")
	require.NoError(t, err)

	created, err := s.Create(ctx, "weekend")
	require.NoError(t, err)
	assert.Equal(t, "weekend", created.Slug)

	renamed, err := s.Rename(ctx, "weekend", "Weekend picks")
	require.NoError(t, err)
	assert.Equal(t, "weekend", renamed.Slug)
	assert.Equal(t, "Weekend picks", renamed.Name)

	_, err = s.RemoveItem(ctx, "weekend", fightClub)
	require.NoError(t, err)

	require.NoError(t, s.Remove(ctx, "weekend"))
	_, ok := s.Get("weekend")
	assert.False(t, ok)
}

func TestLoadFailureIsAPIError(t *testing.T) {
	client := newFakeListClient()
	client.err = errors.New("dial tcp: connection refused")
	s := NewStore(client, nil)

	_, err := s.Load(context.Background(), "token")
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.False(t, s.Seeded())
}
