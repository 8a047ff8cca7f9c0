package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/envelope"
	"github.com/mmcdole/marquee/internal/lists"
	"github.com/mmcdole/marquee/internal/tui/components"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Handle state-specific keys
	switch m.State {
	case StateHelp:
		if key.Matches(msg, Keys.Escape, Keys.Help, Keys.Quit) {
			m.State = StateBrowsing
		}
		return m, nil

	case StateConfirmSignOut:
		switch {
		case key.Matches(msg, Keys.Confirm):
			m.State = StateBrowsing
			return m, SignOutCmd(m.deps.Gate)
		case key.Matches(msg, Keys.Deny):
			m.State = StateBrowsing
		}
		return m, nil

	case StateConfirmDelete:
		switch {
		case key.Matches(msg, Keys.Confirm):
			m.State = StateBrowsing
			return m.startListCommand(lists.Remove{Slug: m.inputSlug})
		case key.Matches(msg, Keys.Deny):
			m.State = StateBrowsing
		}
		return m, nil
	}

	// Route to active modal if any
	if m.ListModal.IsVisible() {
		return m.handleListModalKey(msg)
	}
	if m.InputModal.IsVisible() {
		return m.handleInputModalKey(msg)
	}

	// Screens that own text input get the key before global bindings
	switch {
	case m.Route == domain.RouteSignIn:
		if key.Matches(msg, Keys.Escape) {
			return m, m.navigate(domain.RouteHome)
		}
		if m.signIn != nil {
			return m.updateSignIn(msg)
		}
		return m, nil
	case m.Route == domain.RouteHome && m.SearchBar.Focused():
		return m.handleSearchBarKey(msg)
	case m.Route == domain.RouteLists && m.ListsView.IsFiltering():
		m.ListsView.HandleKeyMsg(msg)
		return m, nil
	}

	// Global keys
	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Home):
		return m, m.navigate(domain.RouteHome)

	case key.Matches(msg, Keys.Lists):
		return m, m.navigate(domain.RouteLists)

	case key.Matches(msg, Keys.Auth):
		if m.deps.Gate.Authenticated() {
			m.State = StateConfirmSignOut
			return m, nil
		}
		return m, m.navigate(domain.RouteSignIn)
	}

	switch m.Route {
	case domain.RouteHome:
		return m.handleHomeKey(msg)
	case domain.RouteLists:
		return m.handleListsKey(msg)
	case domain.RouteDetail:
		return m.handleDetailKey(msg)
	}
	return m, nil
}

func (m Model) handleSearchBarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, Keys.Escape) {
		m.SearchBar.Blur()
		m.resultsFocus = true
		return m, nil
	}

	bar, cmd, submitted := m.SearchBar.Update(msg)
	m.SearchBar = bar
	if !submitted {
		return m, cmd
	}

	m.SearchBar.Blur()
	m.resultsFocus = true
	current := m.deps.Search.Intent()
	next, fetch := m.submitIntent(domain.SearchIntent{Query: m.SearchBar.Value(), Tab: current.Tab, Page: 1})
	return next, tea.Batch(cmd, fetch)
}

func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	current := m.deps.Search.Intent()

	switch {
	case key.Matches(msg, Keys.Search):
		m.resultsFocus = false
		return m, m.SearchBar.Focus()

	case key.Matches(msg, Keys.Up):
		m.Results.MoveUp()
		return m, nil

	case key.Matches(msg, Keys.Down):
		m.Results.MoveDown()
		return m, nil

	case key.Matches(msg, Keys.Enter):
		if item, ok := m.Results.Selected(); ok {
			return m.openDetail(item)
		}
		return m, nil

	case key.Matches(msg, Keys.NextTab, Keys.PrevTab):
		// Tabs are inert while showing trending
		if !m.deps.Search.ControlsEnabled() {
			return m, nil
		}
		step := 1
		if key.Matches(msg, Keys.PrevTab) {
			step = len(domain.Categories) - 1
		}
		tab := domain.Categories[(int(current.Tab)+step)%len(domain.Categories)]
		return m.submitIntent(domain.SearchIntent{Query: current.Query, Tab: tab, Page: 1})

	case key.Matches(msg, Keys.NextPage, Keys.PrevPage):
		page := current.Page + 1
		if key.Matches(msg, Keys.PrevPage) {
			page = current.Page - 1
		}
		if !m.deps.Search.CanPage(page) {
			return m, nil
		}
		return m.submitIntent(domain.SearchIntent{Query: current.Query, Tab: current.Tab, Page: page})

	case key.Matches(msg, Keys.Retry):
		if m.deps.Search.State() != envelope.Rejected {
			return m, nil
		}
		req := m.deps.Search.Retry()
		m.syncResults(false)
		return m, tea.Batch(FetchSearchCmd(m.deps.Catalog, req), m.Spinner.Tick)

	case key.Matches(msg, Keys.AddToList):
		if item, ok := m.Results.Selected(); ok {
			return m.openListModal(domain.ModeAdd, item)
		}
		return m, nil

	case key.Matches(msg, Keys.RemoveFrom):
		if item, ok := m.Results.Selected(); ok {
			return m.openListModal(domain.ModeRemove, item)
		}
		return m, nil

	case key.Matches(msg, Keys.Open):
		if item, ok := m.Results.Selected(); ok {
			return m, OpenInBrowserCmd(m.deps.Opener, item)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleListsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, Keys.Enter) && m.ListsView.Pane() == components.PaneItems {
		if item, ok := m.ListsView.SelectedItem(); ok {
			return m.openDetail(item)
		}
		return m, nil
	}
	if key.Matches(msg, Keys.Enter) {
		msg = tea.KeyMsg{Type: tea.KeyRight}
	}
	if m.ListsView.HandleKeyMsg(msg) {
		return m, nil
	}

	selected, hasSelected := m.ListsView.Selected()

	switch {
	case key.Matches(msg, Keys.New):
		m.inputPurpose = inputCreate
		m.InputModal.Show("New list", "")
		return m, nil

	case key.Matches(msg, Keys.Rename):
		if !hasSelected {
			return m, nil
		}
		m.inputPurpose = inputRename
		m.inputSlug = selected.Slug
		m.InputModal.Show("Rename list", selected.Name)
		return m, nil

	case key.Matches(msg, Keys.Delete):
		if !hasSelected {
			return m, nil
		}
		if m.ListsView.Pane() == components.PaneItems {
			if item, ok := m.ListsView.SelectedItem(); ok {
				return m.startListCommand(lists.RemoveItem{Slug: selected.Slug, Item: item})
			}
			return m, nil
		}
		m.inputSlug = selected.Slug
		m.State = StateConfirmDelete
		return m, nil

	case key.Matches(msg, Keys.AddToList):
		if item, ok := m.ListsView.SelectedItem(); ok && m.ListsView.Pane() == components.PaneItems {
			return m.openListModal(domain.ModeAdd, item)
		}
		return m, nil

	case key.Matches(msg, Keys.Open):
		if item, ok := m.ListsView.SelectedItem(); ok && m.ListsView.Pane() == components.PaneItems {
			return m, OpenInBrowserCmd(m.deps.Opener, item)
		}
		return m, nil

	case key.Matches(msg, Keys.Escape, Keys.Back):
		return m, m.navigate(domain.RouteHome)
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Escape, Keys.Back):
		m.leaveDetail()
		return m, m.navigate(m.backRoute)

	case key.Matches(msg, Keys.Up):
		m.Detail.MoveUp()
		return m, nil

	case key.Matches(msg, Keys.Down):
		m.Detail.MoveDown()
		return m, nil

	case key.Matches(msg, Keys.PageUp, Keys.PageDown):
		var cmd tea.Cmd
		m.Detail, cmd = m.Detail.Update(msg)
		return m, cmd

	case key.Matches(msg, Keys.Enter):
		rel, ok := m.Detail.SelectedRelated()
		if !ok {
			return m, nil
		}
		if rel.TmdbID <= 0 {
			return m, m.status("No details for "+rel.Title, true)
		}
		return m.openDetail(rel)

	case key.Matches(msg, Keys.AddToList):
		return m.openListModal(domain.ModeAdd, m.detailItem)

	case key.Matches(msg, Keys.RemoveFrom):
		return m.openListModal(domain.ModeRemove, m.detailItem)

	case key.Matches(msg, Keys.Open):
		return m, OpenInBrowserCmd(m.deps.Opener, m.detailItem)
	}
	return m, nil
}

// openListModal shows the shared list modal for item. Lists belong to a
// signed-in user, so anonymous users are told to sign in instead.
func (m Model) openListModal(mode domain.ModalMode, item domain.ListItem) (tea.Model, tea.Cmd) {
	if !m.deps.Gate.Authenticated() {
		return m, m.status("Sign in (L) to save titles to lists", true)
	}
	m.ListModal.Open(mode, item)
	m.ListModal.SetSize(m.Width, m.Height)
	if !m.deps.Lists.Seeded() {
		return m, m.loadLists()
	}
	return m, nil
}

func (m Model) handleListModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	res := m.ListModal.HandleKeyMsg(msg)
	switch res.Action {
	case components.ModalClose:
		m.ListModal.Close()
	case components.ModalToggle:
		ticket, err := m.deps.Modal.Toggle(res.Slug)
		if err != nil {
			// Recorded inline on the row
			return m, nil
		}
		return m, RunListCmd(m.deps.Lists, ticket, true)
	case components.ModalCreate:
		return m.startListCommand(lists.Create{Name: res.Name})
	}
	return m, nil
}

func (m Model) handleInputModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	modal, cmd, submitted := m.InputModal.Update(msg)
	m.InputModal = modal
	if !m.InputModal.IsVisible() {
		m.inputPurpose = inputNone
		return m, cmd
	}
	if !submitted {
		return m, cmd
	}

	name := strings.TrimSpace(m.InputModal.Value())
	switch m.inputPurpose {
	case inputCreate:
		return m.startListCommand(lists.Create{Name: name})
	case inputRename:
		return m.startListCommand(lists.Rename{Slug: m.inputSlug, Name: name})
	}
	return m, cmd
}
