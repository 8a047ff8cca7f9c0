package domain

import "context"

// SearchClient provides the remote catalog search operations, one per category
// plus the trending feed. Implemented by the tmdb client.
type SearchClient interface {
	SearchMulti(ctx context.Context, query string, page int) (ResultPage, error)
	SearchMovie(ctx context.Context, query string, page int) (ResultPage, error)
	SearchTv(ctx context.Context, query string, page int) (ResultPage, error)
	SearchPerson(ctx context.Context, query string, page int) (ResultPage, error)

	// Trending takes no query or page; category filters have no effect on it
	Trending(ctx context.Context) (ResultPage, error)
}

// DetailClient resolves detail screens by catalog id
type DetailClient interface {
	Movie(ctx context.Context, id int) (Detail, error)
	Tv(ctx context.Context, id int) (Detail, error)
	Person(ctx context.Context, id int) (Detail, error)
}

// CatalogClient combines search and detail lookups
type CatalogClient interface {
	SearchClient
	DetailClient
}

// ListClient is the remote list persistence API. Every mutation returns the
// server-confirmed state; all failures are *APIError values.
type ListClient interface {
	GetAll(ctx context.Context, credential string) ([]List, error)
	Create(ctx context.Context, name string) (List, error)
	Update(ctx context.Context, slug, name string) (List, error)
	Delete(ctx context.Context, slug string) error
	AddItem(ctx context.Context, slug string, item ListItem) (List, error)
	RemoveItem(ctx context.Context, slug string, item ListItem) (List, error)
}

// AuthClient resolves a credential into an AuthUser
type AuthClient interface {
	Resolve(ctx context.Context, credential string) (AuthUser, error)
	SignOut(ctx context.Context) error
}

// SessionStore persists the session credential and search history between runs
type SessionStore interface {
	Credential() (string, bool)
	SaveCredential(token string) error
	ClearCredential() error

	RecentQueries() []string
	PushRecentQuery(query string) error

	Close() error
}
