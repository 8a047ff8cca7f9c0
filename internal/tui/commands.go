package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/marquee/internal/account"
	"github.com/mmcdole/marquee/internal/auth"
	"github.com/mmcdole/marquee/internal/browser"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/envelope"
	"github.com/mmcdole/marquee/internal/lists"
	"github.com/mmcdole/marquee/internal/search"
)

// Command factories for async operations. None of them touch model state;
// their results come back to Update as messages.

// FetchSearchCmd performs one search request
func FetchSearchCmd(client domain.SearchClient, req search.Request) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return SearchResultMsg{Result: search.Fetch(ctx, client, req)}
	}
}

// RecordQueryCmd saves a submitted query to the search history
func RecordQueryCmd(session domain.SessionStore, query string) tea.Cmd {
	return func() tea.Msg {
		if err := session.PushRecentQuery(query); err != nil {
			return ErrMsg{Err: err, Context: "saving search history"}
		}
		return nil
	}
}

// RunListCmd executes a list mutation already started with Store.Begin
func RunListCmd(store *lists.Store, ticket lists.Ticket, fromModal bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		ev, err := store.Execute(ctx, ticket.Command)
		return ListEventMsg{Ticket: ticket, Event: ev, Err: err, FromModal: fromModal}
	}
}

// LoadListsCmd fetches the lists of the signed-in user during the given
// list store session
func LoadListsCmd(client domain.ListClient, epoch lists.Epoch, credential string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		all, err := client.GetAll(ctx, credential)
		if err != nil {
			return ListsLoadedMsg{Epoch: epoch, Err: domain.AsAPIError(err)}
		}
		return ListsLoadedMsg{Epoch: epoch, Lists: all}
	}
}

// LoadDetailCmd looks up the detail record behind item
func LoadDetailCmd(client domain.DetailClient, ticket envelope.Ticket, item domain.ListItem) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var (
			d   domain.Detail
			err error
		)
		switch item.Type {
		case domain.CategoryMovie:
			d, err = client.Movie(ctx, item.TmdbID)
		case domain.CategoryTvShow:
			d, err = client.Tv(ctx, item.TmdbID)
		case domain.CategoryPerson:
			d, err = client.Person(ctx, item.TmdbID)
		default:
			err = domain.ErrInvalidID
		}
		return DetailLoadedMsg{Ticket: ticket, Detail: d, Err: err}
	}
}

// NavigateCmd refreshes the auth state for a top-level navigation
func NavigateCmd(gate *auth.Gate, route domain.Route) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return NavigatedMsg{Route: route, User: gate.Refresh(ctx)}
	}
}

// SignInCmd exchanges credentials for a session and establishes it
func SignInCmd(backend account.Backend, gate *auth.Gate, creds Credentials) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var (
			token string
			err   error
		)
		if creds.SignUp {
			token, err = backend.SignUp(ctx, creds.Email, creds.Name, creds.Password)
		} else {
			token, err = backend.SignIn(ctx, creds.Email, creds.Password)
		}
		if err != nil {
			return SignedInMsg{User: domain.Anonymous(), Err: err}
		}
		user, err := gate.Establish(ctx, token)
		return SignedInMsg{User: user, Err: err}
	}
}

// SignOutCmd ends the session
func SignOutCmd(gate *auth.Gate) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return SignedOutMsg{Err: gate.SignOut(ctx)}
	}
}

// OpenInBrowserCmd opens the website page of item
func OpenInBrowserCmd(opener *browser.Opener, item domain.ListItem) tea.Cmd {
	return func() tea.Msg {
		return OpenedMsg{Title: item.Title, Err: opener.OpenItem(item)}
	}
}

// ClearStatusCmd clears the status message after a delay
func ClearStatusCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
