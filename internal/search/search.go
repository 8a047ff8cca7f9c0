package search

import (
	"context"
	"log/slog"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/envelope"
	"github.com/mmcdole/marquee/internal/format"
)

// MaxPages is the deepest page the catalog API will serve
const MaxPages = 500

// Operation is the remote call an intent resolves to
type Operation int

const (
	OpTrending Operation = iota
	OpSearchMulti
	OpSearchMovie
	OpSearchTv
	OpSearchPerson
)

func (op Operation) String() string {
	switch op {
	case OpTrending:
		return "trending"
	case OpSearchMulti:
		return "searchMulti"
	case OpSearchMovie:
		return "searchMovie"
	case OpSearchTv:
		return "searchTv"
	case OpSearchPerson:
		return "searchPerson"
	default:
		return "unknown"
	}
}

// OperationFor selects the remote operation for an intent. An empty query
// always means trending, whatever the tab.
func OperationFor(intent domain.SearchIntent) Operation {
	if intent.IsTrending() {
		return OpTrending
	}
	switch intent.Tab {
	case domain.CategoryMovie:
		return OpSearchMovie
	case domain.CategoryTvShow:
		return OpSearchTv
	case domain.CategoryPerson:
		return OpSearchPerson
	default:
		return OpSearchMulti
	}
}

// Canonical maps an intent to the call it actually performs. Every trending
// intent collapses to {"", All, 1} since tab and page have no effect on it.
func Canonical(intent domain.SearchIntent) domain.SearchIntent {
	intent = intent.Normalize()
	if intent.IsTrending() {
		return domain.SearchIntent{Tab: domain.CategoryAll, Page: 1}
	}
	return intent
}

// Request is one issued fetch
type Request struct {
	Intent          domain.SearchIntent
	Ticket          envelope.Ticket
	ScrollToResults bool // true when the query changed, false for tab/page changes
}

// Result is the completion of a Request
type Result struct {
	Intent domain.SearchIntent
	Ticket envelope.Ticket
	Page   domain.ResultPage
	Err    error
}

// Fetch performs the remote call for req. It touches no orchestrator state and
// is safe to run off the event loop; failures come back as *domain.APIError.
func Fetch(ctx context.Context, client domain.SearchClient, req Request) Result {
	res := Result{Intent: req.Intent, Ticket: req.Ticket}

	q := Canonical(req.Intent)
	var err error
	switch OperationFor(q) {
	case OpTrending:
		res.Page, err = client.Trending(ctx)
	case OpSearchMovie:
		res.Page, err = client.SearchMovie(ctx, q.Query, q.Page)
	case OpSearchTv:
		res.Page, err = client.SearchTv(ctx, q.Query, q.Page)
	case OpSearchPerson:
		res.Page, err = client.SearchPerson(ctx, q.Query, q.Page)
	default:
		res.Page, err = client.SearchMulti(ctx, q.Query, q.Page)
	}
	if err != nil {
		res.Err = domain.AsAPIError(err)
		res.Page = domain.ResultPage{}
	}
	return res
}

// Orchestrator turns a stream of SearchIntents into a single result envelope,
// applying only the completion of the most recently submitted intent.
// All methods must be called from the same goroutine (the UI event loop).
type Orchestrator struct {
	logger *slog.Logger

	intent  domain.SearchIntent
	started bool

	env        envelope.Envelope[domain.ResultPage]
	items      []domain.ListItem
	totalPages int
}

// NewOrchestrator creates an orchestrator in the Idle state
func NewOrchestrator(logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{logger: logger}
}

// Hydrate installs a pre-fetched first state. Until the intent changes,
// Submit with the same intent is a no-op so the pre-fetched page is not
// immediately re-fetched.
func (o *Orchestrator) Hydrate(intent domain.SearchIntent, page domain.ResultPage, err error) bool {
	if o.started {
		return false
	}
	intent = intent.Normalize()
	if err != nil {
		if !o.env.Reject(err) {
			return false
		}
	} else {
		if !o.env.Resolve(page) {
			return false
		}
		o.items = format.Results(resultCategory(intent), page.Results)
		o.totalPages = page.TotalPages
	}
	o.intent = intent
	o.started = true
	o.logger.Debug("hydrated search", "query", intent.Query, "tab", intent.Tab, "page", intent.Page, "error", err)
	return true
}

// Submit commits a new intent. When it differs from the current one the
// envelope goes Pending before the returned Request is issued.
func (o *Orchestrator) Submit(intent domain.SearchIntent) (Request, bool) {
	intent = intent.Normalize()
	if o.started && intent == o.intent {
		return Request{}, false
	}

	queryChanged := !o.started || intent.Query != o.intent.Query
	o.intent = intent
	o.started = true

	ticket := o.env.Begin()
	o.logger.Debug("search intent", "query", intent.Query, "tab", intent.Tab, "page", intent.Page,
		"op", OperationFor(intent).String(), "generation", ticket)

	return Request{Intent: intent, Ticket: ticket, ScrollToResults: queryChanged}, true
}

// Retry re-issues the current intent, e.g. after a rejection
func (o *Orchestrator) Retry() Request {
	ticket := o.env.Begin()
	return Request{Intent: o.intent, Ticket: ticket}
}

// Apply commits a completion. Results of superseded intents are dropped
// silently and Apply reports false.
func (o *Orchestrator) Apply(res Result) bool {
	if res.Err != nil {
		if !o.env.Fail(res.Ticket, res.Err) {
			o.logger.Debug("discarding stale search error", "generation", res.Ticket, "current", o.env.Generation())
			return false
		}
		o.items = nil
		o.logger.Warn("search failed", "query", res.Intent.Query, "error", res.Err)
		return true
	}

	if !o.env.Succeed(res.Ticket, res.Page) {
		o.logger.Debug("discarding stale search result", "generation", res.Ticket, "current", o.env.Generation())
		return false
	}
	o.items = format.Results(resultCategory(res.Intent), res.Page.Results)
	o.totalPages = res.Page.TotalPages
	o.logger.Debug("search complete", "query", res.Intent.Query, "results", len(o.items), "pages", res.Page.TotalPages)
	return true
}

// Intent returns the current intent
func (o *Orchestrator) Intent() domain.SearchIntent { return o.intent }

// State returns the envelope variant
func (o *Orchestrator) State() envelope.State { return o.env.State() }

// Page returns the resolved result page
func (o *Orchestrator) Page() (domain.ResultPage, bool) { return o.env.Data() }

// Err returns the rejection of the current intent, if any
func (o *Orchestrator) Err() *domain.APIError { return o.env.Err() }

// Items returns the formatted display list of the current result
func (o *Orchestrator) Items() []domain.ListItem {
	if o.env.State() != envelope.Resolved {
		return nil
	}
	return o.items
}

// Generation returns the generation of the most recent intent
func (o *Orchestrator) Generation() uint64 { return o.env.Generation() }

// ControlsEnabled reports whether tab and page controls apply; they are inert
// while showing trending.
func (o *Orchestrator) ControlsEnabled() bool {
	return !o.intent.IsTrending()
}

// PageCount returns the number of navigable pages of the last known result
func (o *Orchestrator) PageCount() int {
	if !o.ControlsEnabled() {
		return 1
	}
	return min(max(o.totalPages, 1), MaxPages)
}

// Pages returns the current page and the page count for the pagination control
func (o *Orchestrator) Pages() (current, total int) {
	return max(o.intent.Page, 1), o.PageCount()
}

// CanPage reports whether page p may be requested from the current result
func (o *Orchestrator) CanPage(p int) bool {
	return o.ControlsEnabled() && p >= 1 && p <= o.PageCount()
}

// resultCategory picks how a page of records must be formatted. Trending
// returns mixed records whatever tab is selected.
func resultCategory(intent domain.SearchIntent) domain.Category {
	if intent.IsTrending() {
		return domain.CategoryAll
	}
	return intent.Tab
}
