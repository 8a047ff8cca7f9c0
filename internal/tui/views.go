package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/envelope"
	"github.com/mmcdole/marquee/internal/tui/components"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	var body string
	switch m.Route {
	case domain.RouteLists:
		body = m.renderLists()
	case domain.RouteDetail:
		body = m.renderDetail()
	case domain.RouteSignIn:
		body = m.renderSignIn()
	default:
		body = m.renderSearch()
	}

	bodyHeight := max(m.Height-2, 1)
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)
	screen := lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())

	switch {
	case m.State == StateHelp:
		return m.overlay(m.renderHelp())
	case m.State == StateConfirmSignOut:
		return m.overlay(renderConfirm("Sign out?"))
	case m.State == StateConfirmDelete:
		name := m.inputSlug
		if l, ok := m.deps.Lists.Get(m.inputSlug); ok {
			name = l.Name
		}
		return m.overlay(renderConfirm("Delete list \"" + name + "\"?"))
	case m.ListModal.IsVisible():
		return m.overlay(m.ListModal.View())
	case m.InputModal.IsVisible():
		return m.overlay(m.InputModal.View())
	}
	return screen
}

func (m Model) overlay(content string) string {
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderHeader() string {
	title := styles.TitleStyle.Render("marquee")

	nav := []string{}
	for _, r := range []struct {
		route domain.Route
		label string
	}{{domain.RouteHome, "1 Search"}, {domain.RouteLists, "2 Lists"}} {
		if m.Route == r.route {
			nav = append(nav, styles.ActiveTabStyle.Render(r.label))
		} else {
			nav = append(nav, styles.InactiveTabStyle.Render(r.label))
		}
	}

	user := styles.DimStyle.Render("not signed in")
	if u := m.deps.Gate.User(); u.Auth && u.User != nil {
		user = styles.AccentStyle.Render(u.User.Name)
	}

	left := lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", strings.Join(nav, " "))
	gap := max(m.Width-lipgloss.Width(left)-lipgloss.Width(user), 1)
	return left + strings.Repeat(" ", gap) + user
}

func (m Model) renderFooter() string {
	if m.StatusMsg != "" {
		text := styles.Truncate(m.StatusMsg, max(m.Width-2, 1))
		if m.StatusIsErr {
			return styles.ErrorStyle.Render(text)
		}
		return styles.SuccessStyle.Render(text)
	}

	var bindings []key.Binding
	switch m.Route {
	case domain.RouteHome:
		bindings = []key.Binding{Keys.Search, Keys.Enter, Keys.AddToList, Keys.NextTab, Keys.NextPage, Keys.PrevPage, Keys.Open}
	case domain.RouteLists:
		bindings = []key.Binding{Keys.New, Keys.Rename, Keys.Delete, Keys.Filter, Keys.Enter}
	case domain.RouteDetail:
		bindings = []key.Binding{Keys.Back, Keys.AddToList, Keys.RemoveFrom, Keys.Open}
	case domain.RouteSignIn:
		bindings = []key.Binding{Keys.Escape}
	}
	bindings = append(bindings, Keys.Auth, Keys.Help, Keys.Quit)
	return renderBindings(bindings, m.Width)
}

func renderBindings(bindings []key.Binding, width int) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, styles.HelpKeyStyle.Render(h.Key)+" "+styles.HelpDescStyle.Render(h.Desc))
	}
	line := strings.Join(parts, "  ")
	if lipgloss.Width(line) > width && width > 0 {
		// Drop hints from the right until the line fits
		for len(parts) > 1 && lipgloss.Width(strings.Join(parts, "  ")) > width {
			parts = parts[:len(parts)-1]
		}
		line = strings.Join(parts, "  ")
	}
	return line
}

func (m Model) renderSearch() string {
	orch := m.deps.Search
	intent := orch.Intent()

	lines := []string{m.SearchBar.View()}

	if orch.ControlsEnabled() {
		lines = append(lines, components.RenderTabs(intent.Tab, true))
	} else {
		lines = append(lines, styles.AccentStyle.Render("Trending today"))
	}
	lines = append(lines, "")

	switch orch.State() {
	case envelope.Idle, envelope.Pending:
		lines = append(lines, "  "+m.Spinner.View()+" Searching...")
	case envelope.Rejected:
		msg := "Search failed"
		if err := orch.Err(); err != nil {
			msg = err.Message
		}
		lines = append(lines,
			"  "+styles.ErrorStyle.Render(styles.Wrap(msg, max(m.Width-4, 10))),
			"  "+styles.DimStyle.Render("Press r to retry"))
	case envelope.Resolved:
		lines = append(lines, m.Results.View(m.resultsFocus && !m.SearchBar.Focused(), m.savedAnywhere))
		if orch.ControlsEnabled() && orch.PageCount() > 1 {
			lines = append(lines, "", m.Pager.View())
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderLists() string {
	if m.listsLoading && !m.deps.Lists.Seeded() {
		return "  " + m.Spinner.View() + " Loading lists..."
	}
	return m.ListsView.View(m.deps.Lists.Busy)
}

func (m Model) renderDetail() string {
	switch {
	case m.detail.State() == envelope.Resolved:
		return m.Detail.View()
	case m.detail.IsPending():
		return "  " + m.Spinner.View() + " Loading " + m.detailItem.Title + "..."
	default:
		return ""
	}
}

func (m Model) renderSignIn() string {
	if m.signIn == nil {
		return ""
	}
	lines := []string{styles.TitleStyle.Render("Sign in to manage your lists"), ""}
	if m.signIn.errMsg != "" {
		lines = append(lines, styles.ErrorStyle.Render(m.signIn.errMsg), "")
	}
	if m.signIn.pending {
		lines = append(lines, "  "+m.Spinner.View()+" Signing in...")
	} else {
		lines = append(lines, m.signIn.View())
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(lines, "\n"))
}

func (m Model) renderHelp() string {
	groups := [][]key.Binding{
		{Keys.Search, Keys.Up, Keys.Down, Keys.Enter, Keys.Back},
		{Keys.NextTab, Keys.PrevTab, Keys.NextPage, Keys.PrevPage, Keys.Retry},
		{Keys.AddToList, Keys.RemoveFrom, Keys.Open, Keys.New, Keys.Rename, Keys.Delete, Keys.Filter},
		{Keys.Home, Keys.Lists, Keys.Auth, Keys.Help, Keys.Quit},
	}

	var lines []string
	lines = append(lines, styles.ModalTitleStyle.Render("Keys"))
	for i, g := range groups {
		if i > 0 {
			lines = append(lines, "")
		}
		for _, b := range g {
			h := b.Help()
			lines = append(lines, styles.HelpKeyStyle.Render(styles.Pad(h.Key, 10))+styles.HelpDescStyle.Render(h.Desc))
		}
	}
	return styles.ModalStyle.Render(strings.Join(lines, "\n"))
}

func renderConfirm(question string) string {
	content := styles.ModalTitleStyle.Render(question) + "\n" +
		styles.HelpKeyStyle.Render("y") + styles.HelpDescStyle.Render(" confirm  ") +
		styles.HelpKeyStyle.Render("n") + styles.HelpDescStyle.Render(" cancel")
	return styles.ModalStyle.Render(content)
}
