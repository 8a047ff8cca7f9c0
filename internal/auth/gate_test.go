package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/marquee/internal/domain"
)

type fakeAuthClient struct {
	users      map[string]domain.User
	resolveErr error
	signOutErr error
	signedOut  bool
}

func (f *fakeAuthClient) Resolve(ctx context.Context, credential string) (domain.AuthUser, error) {
	if f.resolveErr != nil {
		return domain.AuthUser{}, f.resolveErr
	}
	u, ok := f.users[credential]
	if !ok {
		return domain.Anonymous(), nil
	}
	return domain.Authenticated(u), nil
}

func (f *fakeAuthClient) SignOut(ctx context.Context) error {
	f.signedOut = true
	return f.signOutErr
}

type memSession struct {
	credential string
}

func (m *memSession) Credential() (string, bool)        { return m.credential, m.credential != "" }
func (m *memSession) SaveCredential(token string) error { m.credential = token; return nil }
func (m *memSession) ClearCredential() error            { m.credential = ""; return nil }
func (m *memSession) RecentQueries() []string           { return nil }
func (m *memSession) PushRecentQuery(string) error      { return nil }
func (m *memSession) Close() error                      { return nil }

var alice = domain.User{ID: "u1", Email: "alice@example.com", Name: "Alice"}

func TestRefresh(t *testing.T) {
	tests := []struct {
		name       string
		credential string
		resolveErr error
		wantAuth   bool
	}{
		{name: "no credential", wantAuth: false},
		{name: "valid credential", credential: "tok", wantAuth: true},
		{name: "unknown credential", credential: "bogus", wantAuth: false},
		{name: "resolution fails open", credential: "tok", resolveErr: errors.New("offline"), wantAuth: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeAuthClient{users: map[string]domain.User{"tok": alice}, resolveErr: tt.resolveErr}
			g := NewGate(client, &memSession{credential: tt.credential}, nil)

			user := g.Refresh(context.Background())
			assert.Equal(t, tt.wantAuth, user.Auth)
			assert.Equal(t, tt.wantAuth, g.Authenticated())
			if !tt.wantAuth {
				assert.Nil(t, user.User)
			}
		})
	}
}

func TestGuard(t *testing.T) {
	client := &fakeAuthClient{users: map[string]domain.User{"tok": alice}}
	session := &memSession{}
	g := NewGate(client, session, nil)
	g.Refresh(context.Background())

	route, ok := g.Guard(RequireAuth)
	assert.False(t, ok)
	assert.Equal(t, domain.RouteHome, route)

	_, ok = g.Guard(RequireAnon)
	assert.True(t, ok)
	_, ok = g.Guard(Public)
	assert.True(t, ok)

	_, err := g.Establish(context.Background(), "tok")
	require.NoError(t, err)

	_, ok = g.Guard(RequireAuth)
	assert.True(t, ok)
	route, ok = g.Guard(RequireAnon)
	assert.False(t, ok)
	assert.Equal(t, domain.RouteHome, route)
}

func TestEstablishRejectsUnknownCredential(t *testing.T) {
	session := &memSession{}
	g := NewGate(&fakeAuthClient{}, session, nil)
	_, err := g.Establish(context.Background(), "bogus")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.False(t, g.Authenticated())

	_, ok := g.Credential()
	assert.False(t, ok)
	assert.Empty(t, session.credential)

	// Nothing left behind for the next start to resolve
	assert.False(t, g.Refresh(context.Background()).Auth)
}

func TestEstablishKeepsAcceptedCredential(t *testing.T) {
	session := &memSession{}
	g := NewGate(&fakeAuthClient{users: map[string]domain.User{"tok": alice}}, session, nil)

	user, err := g.Establish(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, &alice, user.User)
	assert.Equal(t, "tok", session.credential)
}

func TestSignOutClearsStateEvenOnFailure(t *testing.T) {
	client := &fakeAuthClient{users: map[string]domain.User{"tok": alice}, signOutErr: errors.New("offline")}
	session := &memSession{credential: "tok"}
	g := NewGate(client, session, nil)
	g.Refresh(context.Background())
	require.True(t, g.Authenticated())

	reset := 0
	g.OnSignOut(func() { reset++ })

	err := g.SignOut(context.Background())
	assert.Error(t, err)
	assert.True(t, client.signedOut)
	assert.False(t, g.Authenticated())
	assert.Equal(t, 1, reset)

	_, ok := g.Credential()
	assert.False(t, ok)
	assert.Empty(t, session.credential)
}
