package tui

import (
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/envelope"
	"github.com/mmcdole/marquee/internal/lists"
	"github.com/mmcdole/marquee/internal/search"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// SearchResultMsg carries the completion of a search fetch. It may belong to a
// superseded intent, in which case the orchestrator drops it.
type SearchResultMsg struct {
	Result search.Result
}

// ListEventMsg carries the completion of a list mutation
type ListEventMsg struct {
	Ticket    lists.Ticket
	Event     lists.Event
	Err       error
	FromModal bool // Started from a list modal row
}

// ListsLoadedMsg carries the user's lists fetched after a navigation
type ListsLoadedMsg struct {
	Epoch lists.Epoch // Store session the fetch was started in
	Lists []domain.List
	Err   error
}

// DetailLoadedMsg carries the completion of a detail lookup
type DetailLoadedMsg struct {
	Ticket envelope.Ticket
	Detail domain.Detail
	Err    error
}

// NavigatedMsg is delivered once the auth state has been refreshed for a
// top-level navigation
type NavigatedMsg struct {
	Route domain.Route
	User  domain.AuthUser
}

// SignedInMsg signals the end of a sign-in or sign-up attempt
type SignedInMsg struct {
	User domain.AuthUser
	Err  error
}

// SignedOutMsg signals that the session has ended
type SignedOutMsg struct {
	Err error
}

// OpenedMsg signals that a page was handed to the browser
type OpenedMsg struct {
	Title string
	Err   error
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}
