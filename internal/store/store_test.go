package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/marquee/internal/domain"
)

var _ domain.SessionStore = (*SessionStore)(nil)

func TestCredentialPersists(t *testing.T) {
	dir := t.TempDir()

	s, err := NewSessionStore(dir, "https://lists.example.com/")
	require.NoError(t, err)
	_, ok := s.Credential()
	assert.False(t, ok)

	require.NoError(t, s.SaveCredential("tok-1"))
	require.NoError(t, s.Close())

	s, err = NewSessionStore(dir, "https://LISTS.example.com")
	require.NoError(t, err)
	defer s.Close()

	token, ok := s.Credential()
	require.True(t, ok, "same endpoint maps to the same database")
	assert.Equal(t, "tok-1", token)

	require.NoError(t, s.ClearCredential())
	_, ok = s.Credential()
	assert.False(t, ok)
}

func TestEndpointsAreIsolated(t *testing.T) {
	dir := t.TempDir()

	a, err := NewSessionStore(dir, "https://a.example")
	require.NoError(t, err)
	defer a.Close()
	b, err := NewSessionStore(dir, "https://b.example")
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.SaveCredential("tok-a"))
	_, ok := b.Credential()
	assert.False(t, ok)
}

func TestRecentQueries(t *testing.T) {
	s, err := NewSessionStore("", "")
	require.NoError(t, err)

	for _, q := range []string{"alien", "batman", " ", "Alien"} {
		require.NoError(t, s.PushRecentQuery(q))
	}
	assert.Equal(t, []string{"Alien", "batman"}, s.RecentQueries())

	for i := 0; i < MaxRecentQueries+5; i++ {
		require.NoError(t, s.PushRecentQuery(fmt.Sprintf("q%d", i)))
	}
	got := s.RecentQueries()
	assert.Len(t, got, MaxRecentQueries)
	assert.Equal(t, fmt.Sprintf("q%d", MaxRecentQueries+4), got[0])

	require.NoError(t, s.ClearHistory())
	assert.Empty(t, s.RecentQueries())
}
