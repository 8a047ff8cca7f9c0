package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/marquee/internal/account"
	"github.com/mmcdole/marquee/internal/auth"
	"github.com/mmcdole/marquee/internal/browser"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/envelope"
	"github.com/mmcdole/marquee/internal/lists"
	"github.com/mmcdole/marquee/internal/modal"
	"github.com/mmcdole/marquee/internal/search"
	"github.com/mmcdole/marquee/internal/store"
	"github.com/mmcdole/marquee/internal/tui/components"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// ApplicationState is the overlay state on top of the current route
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateHelp
	StateConfirmSignOut
	StateConfirmDelete
)

// inputPurpose says what the input modal's value is for
type inputPurpose int

const (
	inputNone inputPurpose = iota
	inputCreate
	inputRename
)

// Vertical chrome: header, tabs, blank line and the footer
const ChromeHeight = 5

// routeAccess maps each screen to the auth state it requires
var routeAccess = map[domain.Route]auth.Access{
	domain.RouteHome:   auth.Public,
	domain.RouteDetail: auth.Public,
	domain.RouteLists:  auth.RequireAuth,
	domain.RouteSignIn: auth.RequireAnon,
}

// Deps are the session-scoped services the UI drives
type Deps struct {
	Catalog  domain.CatalogClient
	Backend  account.Backend
	Session  domain.SessionStore
	Gate     *auth.Gate
	Search   *search.Orchestrator
	Lists    *lists.Store
	Modal    *modal.Controller
	Opener   *browser.Opener
	Logger   *slog.Logger
	Poster   func(path string) string // Poster link builder; nil hides posters
	Initial  domain.SearchIntent      // Intent of the pre-rendered first page
	Prefetch bool                     // Search and Lists were hydrated before start
}

// Model is the main Bubble Tea model for the application
type Model struct {
	State ApplicationState
	Route domain.Route
	Ready bool

	deps Deps

	// Search screen
	SearchBar    components.SearchBar
	Results      components.Results
	Pager        components.Pager
	Spinner      spinner.Model
	resultsFocus bool
	history      []string

	// Lists screen
	ListsView    components.ListsView
	InputModal   components.InputModal
	inputPurpose inputPurpose
	inputSlug    string
	listsLoading bool

	// Detail screen
	Detail     components.DetailView
	detail     envelope.Envelope[domain.Detail]
	detailItem domain.ListItem
	backRoute  domain.Route

	// Sign-in screen
	signIn *signInForm

	// Global list modal
	ListModal components.ListModal

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg   string
	StatusIsErr bool
}

// NewModel creates a new application model
func NewModel(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.SpinnerStyle))

	m := Model{
		State:      StateBrowsing,
		Route:      domain.RouteHome,
		deps:       deps,
		SearchBar:  components.NewSearchBar(),
		Results:    components.NewResults(),
		Pager:      components.NewPager(),
		Spinner:    sp,
		ListsView:  components.NewListsView(),
		InputModal: components.NewInputModal(),
		Detail:     components.NewDetailView(),
		ListModal:  components.NewListModal(deps.Modal),
		backRoute:  domain.RouteHome,
	}
	m.history = deps.Session.RecentQueries()
	m.SearchBar.SetValue(deps.Initial.Query)
	m.SearchBar.SetHistory(m.history)
	m.syncResults(true)
	m.ListsView.SetLists(deps.Lists.Lists())
	m.Detail.SetPosterURL(deps.Poster)
	return m
}

// Init starts the first fetch unless the first page was pre-rendered
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.Spinner.Tick}
	if req, ok := m.deps.Search.Submit(m.deps.Initial); ok {
		cmds = append(cmds, FetchSearchCmd(m.deps.Catalog, req))
	}
	if !m.deps.Prefetch {
		cmds = append(cmds, NavigateCmd(m.deps.Gate, domain.RouteHome))
	}
	return tea.Batch(cmds...)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		// Nothing to animate once every fetch has settled
		if !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case SearchResultMsg:
		if !m.deps.Search.Apply(msg.Result) {
			return m, nil
		}
		m.syncResults(false)
		return m, nil

	case NavigatedMsg:
		return m.enterRoute(msg.Route)

	case ListsLoadedMsg:
		m.listsLoading = false
		if msg.Epoch != m.deps.Lists.Epoch() {
			m.deps.Logger.Debug("dropping lists of an ended session")
			return m, nil
		}
		if msg.Err != nil {
			m.deps.Logger.Error("failed to load lists", "error", msg.Err)
			return m, m.status("Could not load lists: "+domain.AsAPIError(msg.Err).Message, true)
		}
		m.deps.Lists.SeedAt(msg.Epoch, msg.Lists)
		m.ListsView.SetLists(m.deps.Lists.Lists())
		return m, nil

	case ListEventMsg:
		return m.handleListEvent(msg)

	case DetailLoadedMsg:
		return m.handleDetailLoaded(msg)

	case SignedInMsg:
		if msg.Err != nil {
			email := ""
			if m.signIn != nil {
				email = m.signIn.email
			}
			m.signIn = newSignInForm(email)
			m.signIn.errMsg = signInError(msg.Err)
			return m, m.signIn.Init()
		}
		m.signIn = nil
		m.deps.Lists.Reset()
		m.ListsView.Reset()
		return m, tea.Batch(m.navigate(domain.RouteLists), m.status("Signed in as "+msg.User.User.Name, false))

	case SignedOutMsg:
		m.ListModal.Close()
		m.ListsView.Reset()
		m.State = StateBrowsing
		if msg.Err != nil {
			return m, tea.Batch(m.navigate(domain.RouteHome), m.status("Signed out locally: "+msg.Err.Error(), true))
		}
		return m, tea.Batch(m.navigate(domain.RouteHome), m.status("Signed out", false))

	case OpenedMsg:
		if msg.Err != nil {
			return m, m.status("Could not open browser: "+msg.Err.Error(), true)
		}
		return m, m.status("Opened "+msg.Title+" in browser", false)

	case ErrMsg:
		m.deps.Logger.Error("command failed", "context", msg.Context, "error", msg.Err)
		return m, m.status(msg.Error(), true)

	case StatusMsg:
		return m, m.status(msg.Message, msg.IsError)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	if m.Route == domain.RouteSignIn && m.signIn != nil {
		return m.updateSignIn(msg)
	}
	return m, nil
}

// status shows a temporary status line and returns the command clearing it
func (m *Model) status(text string, isErr bool) tea.Cmd {
	m.StatusMsg = text
	m.StatusIsErr = isErr
	if isErr {
		return ClearStatusCmd(5 * time.Second)
	}
	return ClearStatusCmd(3 * time.Second)
}

// submitIntent commits an intent to the orchestrator and issues its fetch
func (m Model) submitIntent(intent domain.SearchIntent) (tea.Model, tea.Cmd) {
	req, ok := m.deps.Search.Submit(intent)
	if !ok {
		return m, nil
	}
	if req.ScrollToResults {
		m.resultsFocus = true
		m.SearchBar.Blur()
	}
	m.syncResults(req.ScrollToResults)

	cmds := []tea.Cmd{FetchSearchCmd(m.deps.Catalog, req), m.Spinner.Tick}
	if req.ScrollToResults && !req.Intent.IsTrending() {
		cmds = append(cmds, RecordQueryCmd(m.deps.Session, req.Intent.Query))
		m.history = remember(m.history, req.Intent.Query)
		m.SearchBar.SetHistory(m.history)
	}
	return m, tea.Batch(cmds...)
}

// syncResults copies the orchestrator's display state into the components
func (m *Model) syncResults(reset bool) {
	m.Results.SetItems(m.deps.Search.Items(), reset)
	m.Pager.Set(m.deps.Search.Pages())
}

// navigate starts a top-level navigation. The auth state is refreshed first;
// the route is entered once NavigatedMsg arrives.
func (m Model) navigate(route domain.Route) tea.Cmd {
	return NavigateCmd(m.deps.Gate, route)
}

// enterRoute applies the auth guard and then requests the route's data
func (m Model) enterRoute(route domain.Route) (tea.Model, tea.Cmd) {
	if redirect, ok := m.deps.Gate.Guard(routeAccess[route]); !ok {
		m.deps.Logger.Debug("route guarded", "route", route, "redirect", redirect)
		route = redirect
	}
	if m.Route == domain.RouteDetail && route != domain.RouteDetail {
		m.leaveDetail()
	}
	m.Route = route

	switch route {
	case domain.RouteLists:
		if !m.deps.Lists.Seeded() {
			m.listsLoading = true
			return m, tea.Batch(m.loadLists(), m.Spinner.Tick)
		}
		m.ListsView.SetLists(m.deps.Lists.Lists())
	case domain.RouteSignIn:
		if m.signIn == nil {
			m.signIn = newSignInForm("")
		}
		return m, m.signIn.Init()
	case domain.RouteHome:
		// Lists feed the saved markers of search results
		if m.deps.Gate.Authenticated() && !m.deps.Lists.Seeded() {
			return m, m.loadLists()
		}
	}
	return m, nil
}

// loadLists fetches the signed-in user's lists for the current session
func (m Model) loadLists() tea.Cmd {
	credential, _ := m.deps.Gate.Credential()
	return LoadListsCmd(m.deps.Backend, m.deps.Lists.Epoch(), credential)
}

// leaveDetail drops the detail screen and supersedes its lookup
func (m *Model) leaveDetail() {
	m.Detail.Clear()
	m.detail.Begin()
}

// loading reports whether any fetch shown with a spinner is outstanding
func (m Model) loading() bool {
	switch m.deps.Search.State() {
	case envelope.Idle, envelope.Pending:
		return true
	}
	return m.listsLoading || (m.Route == domain.RouteDetail && m.detail.IsPending())
}

// openDetail shows the detail screen for item and starts its lookup
func (m Model) openDetail(item domain.ListItem) (tea.Model, tea.Cmd) {
	if m.Route != domain.RouteDetail {
		m.backRoute = m.Route
	}
	m.Route = domain.RouteDetail
	m.detailItem = item
	m.Detail.Clear()
	ticket := m.detail.Begin()
	return m, tea.Batch(LoadDetailCmd(m.deps.Catalog, ticket, item), m.Spinner.Tick)
}

func (m Model) handleDetailLoaded(msg DetailLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if !m.detail.Fail(msg.Ticket, msg.Err) || m.Route != domain.RouteDetail {
			return m, nil
		}
		// Missing ids and failed lookups both go back to the landing page
		m.deps.Logger.Warn("detail lookup failed", "item", m.detailItem.Key(), "error", msg.Err)
		m.Detail.Clear()
		text := "Could not load " + m.detailItem.Title
		if domain.IsNotFound(msg.Err) {
			text = m.detailItem.Title + " was not found"
		}
		return m, tea.Batch(m.navigate(domain.RouteHome), m.status(text, true))
	}
	if !m.detail.Succeed(msg.Ticket, msg.Detail) {
		return m, nil
	}
	m.Detail.SetDetail(msg.Detail)
	return m, nil
}

func (m Model) handleListEvent(msg ListEventMsg) (tea.Model, tea.Cmd) {
	command := msg.Ticket.Command
	if msg.Ticket.Epoch != m.deps.Lists.Epoch() {
		// Started by a user who has since signed out
		m.deps.Lists.Finish(msg.Ticket, msg.Event, msg.Err)
		return m, nil
	}
	if msg.FromModal {
		m.deps.Modal.Complete(msg.Ticket, msg.Event, msg.Err)
	} else {
		m.deps.Lists.Finish(msg.Ticket, msg.Event, msg.Err)
	}
	m.ListsView.SetLists(m.deps.Lists.Lists())

	if msg.Err != nil {
		apiErr := domain.AsAPIError(msg.Err)
		if errors.Is(msg.Err, domain.ErrUnauthorized) {
			return m, m.status("Your session has expired; sign in again", true)
		}
		if msg.FromModal {
			return m, nil
		}
		if m.fromInputModal(command) {
			m.InputModal.SetError(apiErr.Message)
			return m, nil
		}
		if slug := command.Target(); slug != "" {
			m.ListsView.SetError(slug, apiErr)
			return m, nil
		}
		return m, m.status(apiErr.Message, true)
	}

	m.ListsView.SetError(command.Target(), nil)
	switch ev := msg.Event.(type) {
	case lists.Created:
		if m.inputPurpose == inputCreate {
			m.InputModal.Hide()
			m.inputPurpose = inputNone
		}
		return m, m.status("Created "+ev.List.Name, false)
	case lists.Renamed:
		if m.inputPurpose == inputRename && m.inputSlug == ev.List.Slug {
			m.InputModal.Hide()
			m.inputPurpose = inputNone
		}
		return m, m.status("Renamed to "+ev.List.Name, false)
	case lists.Removed:
		return m, m.status("Deleted list", false)
	}
	return m, nil
}

// startListCommand begins a mutation and returns the command executing it
func (m Model) startListCommand(cmd lists.Command) (tea.Model, tea.Cmd) {
	ticket, err := m.deps.Lists.Begin(cmd)
	if err != nil {
		if m.fromInputModal(cmd) {
			m.InputModal.SetError(err.Error())
			return m, nil
		}
		if slug := cmd.Target(); slug != "" {
			m.ListsView.SetError(slug, err)
			return m, nil
		}
		return m, m.status(err.Error(), true)
	}
	return m, RunListCmd(m.deps.Lists, ticket, false)
}

// fromInputModal reports whether cmd was submitted from the open name modal
func (m Model) fromInputModal(cmd lists.Command) bool {
	if !m.InputModal.IsVisible() {
		return false
	}
	switch c := cmd.(type) {
	case lists.Create:
		return m.inputPurpose == inputCreate
	case lists.Rename:
		return m.inputPurpose == inputRename && c.Slug == m.inputSlug
	}
	return false
}

func (m Model) updateSignIn(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd, submitted := m.signIn.Update(msg)
	if !submitted {
		return m, cmd
	}
	return m, tea.Batch(cmd, SignInCmd(m.deps.Backend, m.deps.Gate, m.signIn.Credentials()))
}

// savedAnywhere reports whether item is a member of any of the user's lists
func (m Model) savedAnywhere(item domain.ListItem) bool {
	for _, member := range m.deps.Lists.Membership(item) {
		if member {
			return true
		}
	}
	return false
}

func (m *Model) updateLayout() {
	bodyHeight := max(m.Height-ChromeHeight, 3)
	m.SearchBar.SetWidth(m.Width)
	m.Results.SetSize(m.Width, bodyHeight-2)
	m.ListsView.SetSize(m.Width, bodyHeight)
	m.Detail.SetSize(m.Width, bodyHeight)
	m.ListModal.SetSize(m.Width, m.Height)
}

func signInError(err error) string {
	apiErr := domain.AsAPIError(err)
	if errors.Is(err, domain.ErrServerOffline) {
		return "The account service is unreachable"
	}
	if apiErr.Status > 0 {
		return apiErr.Message
	}
	return fmt.Sprintf("Sign in failed: %v", err)
}

// remember puts query at the front of the search history
func remember(history []string, query string) []string {
	out := []string{query}
	for _, q := range history {
		if !strings.EqualFold(q, query) {
			out = append(out, q)
		}
	}
	if len(out) > store.MaxRecentQueries {
		out = out[:store.MaxRecentQueries]
	}
	return out
}
