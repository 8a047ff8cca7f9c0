// Package account selects the list and session backend from configuration.
package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmcdole/marquee/internal/account/local"
	"github.com/mmcdole/marquee/internal/account/remote"
	"github.com/mmcdole/marquee/internal/config"
	"github.com/mmcdole/marquee/internal/domain"
)

// Backend combines everything an account backend must implement: list
// persistence, credential resolution and credential issue.
type Backend interface {
	domain.ListClient
	domain.AuthClient

	SignIn(ctx context.Context, email, password string) (string, error)
	SignUp(ctx context.Context, email, name, password string) (string, error)
	Close() error
}

var (
	_ Backend = (*local.Backend)(nil)
	_ Backend = (*remote.Client)(nil)
)

// New creates the Backend named by cfg.Account.Backend
func New(cfg *config.Config, session domain.SessionStore, logger *slog.Logger) (Backend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if session == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Account.Backend {
	case config.BackendLocal:
		if cfg.Account.DBPath == "" {
			return nil, fmt.Errorf("database path is required")
		}
		return local.NewBackend(cfg.Account.DBPath, session, logger)

	case config.BackendRemote:
		if cfg.Account.URL == "" {
			return nil, fmt.Errorf("account URL is required")
		}
		return remote.NewClient(cfg.Account.URL, session, logger), nil

	default:
		return nil, fmt.Errorf("unknown account backend: %s", cfg.Account.Backend)
	}
}
