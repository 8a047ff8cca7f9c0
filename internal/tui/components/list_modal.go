package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/modal"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// ModalAction is what the app must do after a key in the list modal
type ModalAction int

const (
	ModalNone   ModalAction = iota
	ModalClose              // Hide the modal
	ModalToggle             // Toggle membership of Slug
	ModalCreate             // Create a list named Name
)

// ModalResult is returned by ListModal.HandleKeyMsg
type ModalResult struct {
	Action ModalAction
	Slug   string
	Name   string
}

// ListModal renders the shared list modal. Visibility, rows and inline
// errors all come from the controller; the component only owns the cursor
// and the text inputs.
type ListModal struct {
	ctrl *modal.Controller

	cursor     int
	filtering  bool
	filter     textinput.Model
	createMode bool
	newName    textinput.Model

	width  int
	height int
}

// NewListModal creates a modal view over ctrl
func NewListModal(ctrl *modal.Controller) ListModal {
	filter := textinput.New()
	filter.Placeholder = "Filter lists..."
	filter.Prompt = "/ "
	filter.CharLimit = 50

	name := textinput.New()
	name.Placeholder = "List name..."
	name.Prompt = "> "
	name.CharLimit = 60

	return ListModal{ctrl: ctrl, filter: filter, newName: name}
}

// Open shows the modal for item
func (m *ListModal) Open(mode domain.ModalMode, item domain.ListItem) {
	m.ctrl.Show(mode, item)
	m.cursor = 0
	m.filtering = false
	m.filter.SetValue("")
	m.filter.Blur()
	m.createMode = false
	m.newName.SetValue("")
	m.newName.Blur()
}

// Close hides the modal
func (m *ListModal) Close() {
	m.ctrl.Hide()
	m.filtering = false
	m.filter.Blur()
	m.createMode = false
	m.newName.Blur()
}

// IsVisible returns whether the modal is shown
func (m ListModal) IsVisible() bool {
	return m.ctrl.Visible()
}

// SetSize sets the modal dimensions
func (m *ListModal) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// canCreate reports whether the "create new list" row is offered
func (m ListModal) canCreate() bool {
	return m.ctrl.State().Mode == domain.ModeAdd
}

// startCreate focuses the new list name unless a create is already running
func (m *ListModal) startCreate() {
	if !m.canCreate() || m.ctrl.Creating() {
		return
	}
	m.createMode = true
	m.newName.Focus()
}

func (m ListModal) rowCount(rows []modal.Row) int {
	if m.canCreate() {
		return len(rows) + 1
	}
	return len(rows)
}

// HandleKeyMsg processes a key while the modal is visible
func (m *ListModal) HandleKeyMsg(msg tea.KeyMsg) ModalResult {
	if !m.IsVisible() {
		return ModalResult{}
	}

	key := msg.String()

	if m.createMode {
		switch key {
		case "esc":
			m.createMode = false
			m.newName.Blur()
			m.newName.SetValue("")
		case "enter":
			name := strings.TrimSpace(m.newName.Value())
			if name == "" {
				return ModalResult{}
			}
			m.createMode = false
			m.newName.Blur()
			m.newName.SetValue("")
			return ModalResult{Action: ModalCreate, Name: name}
		default:
			m.newName, _ = m.newName.Update(msg)
		}
		return ModalResult{}
	}

	if m.filtering {
		switch key {
		case "esc":
			m.filtering = false
			m.filter.Blur()
			m.filter.SetValue("")
			m.ctrl.SetFilter("")
		case "enter":
			m.filtering = false
			m.filter.Blur()
		default:
			m.filter, _ = m.filter.Update(msg)
			m.ctrl.SetFilter(m.filter.Value())
			m.cursor = 0
		}
		return ModalResult{}
	}

	rows := m.ctrl.Rows()
	switch key {
	case "j", "down":
		if m.cursor < m.rowCount(rows)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case " ", "enter":
		if m.cursor < len(rows) {
			return ModalResult{Action: ModalToggle, Slug: rows[m.cursor].List.Slug}
		}
		m.startCreate()
	case "c":
		m.startCreate()
	case "/", "f":
		m.filtering = true
		m.filter.Focus()
	case "esc", "q":
		return ModalResult{Action: ModalClose}
	}
	return ModalResult{}
}

// View renders the list modal
func (m ListModal) View() string {
	if !m.IsVisible() {
		return ""
	}

	modalWidth := 44
	if m.width > 0 && m.width < 64 {
		modalWidth = max(m.width-10, 20)
	}
	inner := modalWidth - 4

	var lines []string

	title := "Add to list"
	if m.ctrl.State().Mode == domain.ModeRemove {
		title = "Remove from list"
	}
	lines = append(lines, styles.ModalTitleStyle.Render(title))
	if item, ok := m.ctrl.Item(); ok {
		lines = append(lines, styles.SubtitleStyle.Render(styles.Truncate(item.Title, inner)))
	}
	lines = append(lines, "")

	if m.filtering || m.ctrl.Filter() != "" {
		lines = append(lines, "  "+m.filter.View(), "")
	}

	rows := m.ctrl.Rows()
	if len(rows) == 0 {
		empty := "No lists yet"
		if m.ctrl.Filter() != "" {
			empty = "No matching lists"
		}
		lines = append(lines, "  "+styles.DimStyle.Render(empty))
	}

	for i, row := range rows {
		checkbox := "[ ]"
		switch {
		case row.Busy:
			checkbox = "[" + styles.BusyChar + "]"
		case row.Checked:
			checkbox = "[x]"
		}
		line := styles.Pad(checkbox+" "+row.List.Name, inner)

		switch {
		case i == m.cursor:
			line = lipgloss.NewStyle().Foreground(styles.White).Background(styles.SlateLight).Render(line)
		case row.Checked:
			line = lipgloss.NewStyle().Foreground(styles.Accent).Render(line)
		default:
			line = lipgloss.NewStyle().Foreground(styles.LightGray).Render(line)
		}
		lines = append(lines, "  "+line)

		if row.Err != nil {
			msg := styles.Truncate(domain.AsAPIError(row.Err).Message, inner-4)
			lines = append(lines, "      "+styles.ErrorStyle.Render(msg))
		}
	}

	if m.canCreate() {
		createLine := "[+] Create new list..."
		switch {
		case m.ctrl.Creating():
			createLine = "[" + styles.BusyChar + "] Creating list..."
		case m.createMode:
			createLine = m.newName.View()
		}
		if m.cursor == len(rows) && !m.createMode {
			createLine = lipgloss.NewStyle().
				Foreground(styles.White).
				Background(styles.SlateLight).
				Render(styles.Pad(createLine, inner))
		} else if !m.createMode {
			createLine = styles.DimStyle.Render(styles.Pad(createLine, inner))
		}
		lines = append(lines, "", "  "+createLine)
	}

	lines = append(lines, "", styles.DimStyle.Render("Space: Toggle  c: New  /: Filter  Esc: Done"))

	return styles.ModalStyle.Width(modalWidth).Render(strings.Join(lines, "\n"))
}
