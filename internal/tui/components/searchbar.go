package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/marquee/internal/search"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

const maxSuggestions = 5

// SearchBar is the free-text query box with suggestions from recent queries
type SearchBar struct {
	input       textinput.Model
	history     []string
	suggestions []string
	cursor      int // -1 when no suggestion is selected
	width       int
}

// NewSearchBar creates an unfocused search bar
func NewSearchBar() SearchBar {
	ti := textinput.New()
	ti.Placeholder = "Search movies, TV shows and people..."
	ti.Prompt = "/ "
	ti.CharLimit = 200
	ti.PromptStyle = styles.AccentStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return SearchBar{input: ti, cursor: -1}
}

// Focus gives the search bar keyboard input
func (s *SearchBar) Focus() tea.Cmd {
	s.refresh()
	return s.input.Focus()
}

// Blur removes keyboard input and hides suggestions
func (s *SearchBar) Blur() {
	s.input.Blur()
	s.suggestions = nil
	s.cursor = -1
}

// Focused reports whether the search bar has keyboard input
func (s SearchBar) Focused() bool {
	return s.input.Focused()
}

// Value returns the typed query
func (s SearchBar) Value() string {
	return s.input.Value()
}

// SetValue replaces the typed query
func (s *SearchBar) SetValue(v string) {
	s.input.SetValue(v)
	s.input.CursorEnd()
	s.refresh()
}

// SetHistory sets the recent queries offered as suggestions
func (s *SearchBar) SetHistory(history []string) {
	s.history = history
	s.refresh()
}

// Suggestions returns the suggestions for the current input
func (s SearchBar) Suggestions() []string {
	return s.suggestions
}

// SetWidth sets the rendered width
func (s *SearchBar) SetWidth(width int) {
	s.width = width
	s.input.Width = max(width-4, 10)
}

// Update handles input while focused. submitted is true when the user
// pressed enter; the query to run is Value().
func (s SearchBar) Update(msg tea.Msg) (SearchBar, tea.Cmd, bool) {
	if !s.input.Focused() {
		return s, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			if s.cursor >= 0 && s.cursor < len(s.suggestions) {
				s.SetValue(s.suggestions[s.cursor])
			}
			s.suggestions = nil
			s.cursor = -1
			return s, nil, true
		case "down", "ctrl+n":
			if len(s.suggestions) > 0 {
				s.cursor = min(s.cursor+1, len(s.suggestions)-1)
			}
			return s, nil, false
		case "up", "ctrl+p":
			if s.cursor >= 0 {
				s.cursor--
			}
			return s, nil, false
		case "tab":
			if len(s.suggestions) > 0 {
				pick := max(s.cursor, 0)
				s.SetValue(s.suggestions[pick])
			}
			return s, nil, false
		}
	}

	var cmd tea.Cmd
	before := s.input.Value()
	s.input, cmd = s.input.Update(msg)
	if s.input.Value() != before {
		s.refresh()
	}
	return s, cmd, false
}

func (s *SearchBar) refresh() {
	s.cursor = -1
	if !s.input.Focused() {
		s.suggestions = nil
		return
	}
	s.suggestions = search.Suggest(s.input.Value(), s.history, maxSuggestions)
}

// View renders the input line followed by any suggestions
func (s SearchBar) View() string {
	lines := []string{s.input.View()}
	for i, sug := range s.suggestions {
		text := styles.Truncate(sug, max(s.width-6, 1))
		if i == s.cursor {
			lines = append(lines, "  "+styles.HighlightStyle.Render(text))
		} else {
			lines = append(lines, "  "+styles.DimStyle.Render(" "+text))
		}
	}
	return strings.Join(lines, "\n")
}
