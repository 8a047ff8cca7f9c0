package modal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/lists"
)

type fakeListClient struct {
	lists map[string]domain.List
	err   error
}

func (f *fakeListClient) GetAll(ctx context.Context, credential string) ([]domain.List, error) {
	return nil, nil
}

func (f *fakeListClient) Create(ctx context.Context, name string) (domain.List, error) {
	return domain.List{}, nil
}

func (f *fakeListClient) Update(ctx context.Context, slug, name string) (domain.List, error) {
	return domain.List{}, nil
}

func (f *fakeListClient) Delete(ctx context.Context, slug string) error { return nil }

func (f *fakeListClient) AddItem(ctx context.Context, slug string, item domain.ListItem) (domain.List, error) {
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
	if f.err != nil {
		return domain.List{}, f.err
	}
	l := f.lists[slug]
	var kept []domain.ListItem
	for _, it := range l.Items {
		if !it.SameEntry(item) {
			kept = append(kept, it)
		}
	}
	l.Items = kept
	f.lists[slug] = l
	return l.Clone(), nil
}

var (
	fightClub = domain.ListItem{TmdbID: 550, Type: domain.CategoryMovie, Title: "Fight Club"}
	// Same id, different category: must not count as a member
	tv550 = domain.ListItem{TmdbID: 550, Type: domain.CategoryTvShow, Title: "Other"}
)

func setup(t *testing.T) (*Controller, *fakeListClient) {
	c, client, _ := setupStore(t)
	return c, client
}

func setupStore(t *testing.T) (*Controller, *fakeListClient, *lists.Store) {
	t.Helper()
	seed := []domain.List{
		{Slug: "favorites", Name: "Favorites", Items: []domain.ListItem{fightClub}},
		{Slug: "watch-later", Name: "Watch later"},
	}
	client := &fakeListClient{lists: map[string]domain.List{}}
	for _, l := range seed {
		client.lists[l.Slug] = l.Clone()
	}
	store := lists.NewStore(client, nil)
	require.True(t, store.Seed(seed))
	return NewController(store, nil), client, store
}

// toggle runs one toggle the way the event loop does: begin, execute off the
// loop, then complete
func toggle(t *testing.T, c *Controller, store *lists.Store, slug string) error {
	t.Helper()
	ticket, err := c.Toggle(slug)
	if err != nil {
		return err
	}
	ev, err := store.Execute(context.Background(), ticket.Command)
	c.Complete(ticket, ev, err)
	return err
}

func TestTransitionLastCallerWins(t *testing.T) {
	s := Transition(domain.ListModalState{}, Show{Mode: domain.ModeAdd, Item: fightClub})
	s = Transition(s, Show{Mode: domain.ModeRemove, Item: tv550})

	assert.True(t, s.Visible)
	assert.Equal(t, domain.ModeRemove, s.Mode)
	require.NotNil(t, s.Item)
	assert.Equal(t, tv550, *s.Item)

	assert.Equal(t, domain.ListModalState{}, Transition(s, Hide{}))
}

func TestRowsReflectCategoryMembership(t *testing.T) {
	c, _ := setup(t)

	c.Show(domain.ModeAdd, fightClub)
	rows := c.Rows()
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Checked)
	assert.False(t, rows[1].Checked)

	c.Show(domain.ModeAdd, tv550)
	for _, r := range c.Rows() {
		assert.False(t, r.Checked, r.List.Slug)
	}
}

func TestToggleAddsThenRemoves(t *testing.T) {
	c, _, store := setupStore(t)

	c.Show(domain.ModeAdd, fightClub)
	require.NoError(t, toggle(t, c, store, "watch-later"))
	assert.True(t, c.Rows()[1].Checked)

	require.NoError(t, toggle(t, c, store, "watch-later"))
	assert.False(t, c.Rows()[1].Checked)
	assert.True(t, c.Visible())
}

func TestToggleFailureIsInline(t *testing.T) {
	c, client, store := setupStore(t)
	client.err = domain.NewAPIError(500, "server error")

	c.Show(domain.ModeAdd, fightClub)
	err := toggle(t, c, store, "watch-later")
	require.Error(t, err)

	assert.True(t, c.Visible())
	rows := c.Rows()
	assert.False(t, rows[1].Checked)
	assert.Error(t, rows[1].Err)
	assert.NoError(t, rows[0].Err)
}

func TestToggleWhileBusy(t *testing.T) {
	c, _ := setup(t)
	c.Show(domain.ModeAdd, fightClub)

	cmd, err := c.Toggle("watch-later")
	require.NoError(t, err)
	assert.True(t, c.Rows()[1].Busy)

	_, err = c.Toggle("watch-later")
	assert.ErrorIs(t, err, domain.ErrMutationInFlight)

	c.Complete(cmd, lists.MembershipChanged{List: domain.List{Slug: "watch-later", Name: "Watch later", Items: []domain.ListItem{fightClub}}}, nil)
	rows := c.Rows()
	assert.False(t, rows[1].Busy)
	assert.True(t, rows[1].Checked)
	assert.NoError(t, rows[1].Err)
}

func TestToggleHidden(t *testing.T) {
	c, _ := setup(t)
	_, err := c.Toggle("favorites")
	assert.ErrorIs(t, err, ErrHidden)
	assert.Nil(t, c.Rows())
}

func TestRemoveModeKeepsRowsFixed(t *testing.T) {
	c, _, store := setupStore(t)
	c.Show(domain.ModeRemove, fightClub)

	rows := c.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "favorites", rows[0].List.Slug)

	require.NoError(t, toggle(t, c, store, "favorites"))
	rows = c.Rows()
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Checked)
}

func TestFilterRows(t *testing.T) {
	c, _ := setup(t)
	c.Show(domain.ModeAdd, fightClub)

	c.SetFilter("wl")
	rows := c.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "watch-later", rows[0].List.Slug)

	c.Show(domain.ModeAdd, fightClub)
	assert.Len(t, c.Rows(), 2)
}

func TestStaleCompletionIgnoredAfterReshow(t *testing.T) {
	c, client := setup(t)
	client.err = domain.NewAPIError(500, "server error")

	c.Show(domain.ModeAdd, fightClub)
	cmd, err := c.Toggle("watch-later")
	require.NoError(t, err)

	c.Show(domain.ModeAdd, tv550)
	c.Complete(cmd, nil, client.err)

	for _, r := range c.Rows() {
		assert.NoError(t, r.Err)
		assert.False(t, r.Busy)
	}
}

func TestCompletionAfterResetIsDropped(t *testing.T) {
	c, client, store := setupStore(t)
	client.err = domain.NewAPIError(500, "server error")

	c.Show(domain.ModeAdd, fightClub)
	ticket, err := c.Toggle("watch-later")
	require.NoError(t, err)

	store.Reset()
	c.Complete(ticket, nil, client.err)

	assert.False(t, store.Busy("watch-later"))
	assert.Empty(t, c.Rows())
}

func TestCreatingFollowsStore(t *testing.T) {
	c, _, store := setupStore(t)
	assert.False(t, c.Creating())

	ticket, err := store.Begin(lists.Create{Name: "Weekend"})
	require.NoError(t, err)
	assert.True(t, c.Creating())

	store.Finish(ticket, nil, domain.NewAPIError(500, "server error"))
	assert.False(t, c.Creating())
}
