// Package auth holds the process-wide authentication state and the route
// guard evaluated before any screen requests data.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmcdole/marquee/internal/domain"
)

// Access is the authentication requirement of a screen
type Access int

const (
	// Public screens render for everyone
	Public Access = iota
	// RequireAuth screens redirect anonymous users to the landing route
	RequireAuth
	// RequireAnon screens (sign-in) redirect signed-in users away
	RequireAnon
)

// Landing is the public route guarded screens redirect to
const Landing = domain.RouteHome

// Gate resolves the user strictly from the credential held by the session
// store. A failed resolution counts as anonymous.
type Gate struct {
	client  domain.AuthClient
	session domain.SessionStore
	logger  *slog.Logger

	mu        sync.RWMutex
	user      domain.AuthUser
	onSignOut []func()
}

// NewGate creates an anonymous gate
func NewGate(client domain.AuthClient, session domain.SessionStore, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{client: client, session: session, logger: logger}
}

// Refresh re-resolves the user from the stored credential. Called once per
// top-level navigation.
func (g *Gate) Refresh(ctx context.Context) domain.AuthUser {
	user := domain.Anonymous()

	if credential, ok := g.session.Credential(); ok {
		resolved, err := g.client.Resolve(ctx, credential)
		switch {
		case err != nil:
			g.logger.Warn("failed to resolve session, continuing anonymously", "error", err)
		case resolved.Auth && resolved.User != nil:
			user = resolved
		}
	}

	g.mu.Lock()
	g.user = user
	g.mu.Unlock()
	return user
}

// Establish stores a freshly issued credential and resolves it. A credential
// that does not resolve to a user is not kept.
func (g *Gate) Establish(ctx context.Context, credential string) (domain.AuthUser, error) {
	if err := g.session.SaveCredential(credential); err != nil {
		return domain.Anonymous(), fmt.Errorf("save credential: %w", err)
	}
	user := g.Refresh(ctx)
	if !user.Auth {
		if err := g.session.ClearCredential(); err != nil {
			g.logger.Error("failed to clear rejected credential", "error", err)
		}
		return user, domain.ErrUnauthorized
	}
	g.logger.Info("signed in", "user", user.User.Email)
	return user, nil
}

// SignOut ends the session. Local state is cleared and the sign-out
// callbacks run even when the remote call fails; its error is returned.
func (g *Gate) SignOut(ctx context.Context) error {
	err := g.client.SignOut(ctx)
	if err != nil {
		g.logger.Error("failed to sign out remotely", "error", err)
	}
	if cerr := g.session.ClearCredential(); cerr != nil {
		g.logger.Error("failed to clear credential", "error", cerr)
		if err == nil {
			err = cerr
		}
	}

	g.mu.Lock()
	g.user = domain.Anonymous()
	callbacks := append([]func(){}, g.onSignOut...)
	g.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
	g.logger.Info("signed out")
	return err
}

// OnSignOut registers fn to reset session-scoped state at sign-out
func (g *Gate) OnSignOut(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onSignOut = append(g.onSignOut, fn)
}

// User returns the current AuthUser
func (g *Gate) User() domain.AuthUser {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.user
}

// Authenticated reports whether a user is signed in
func (g *Gate) Authenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.user.Auth
}

// Credential returns the stored credential of a signed-in user
func (g *Gate) Credential() (string, bool) {
	if !g.Authenticated() {
		return "", false
	}
	return g.session.Credential()
}

// Guard decides whether a screen with the given access may render. When it
// may not, the returned route is where to go instead.
func (g *Gate) Guard(access Access) (domain.Route, bool) {
	authed := g.Authenticated()
	switch access {
	case RequireAuth:
		if !authed {
			return Landing, false
		}
	case RequireAnon:
		if authed {
			return Landing, false
		}
	}
	return "", true
}
