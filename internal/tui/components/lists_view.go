package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/search"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// ListsPane identifies the focused half of the lists screen
type ListsPane int

const (
	PaneLists ListsPane = iota
	PaneItems
)

// ListsView is the list management screen: the user's lists on the left,
// the items of the selected list on the right
type ListsView struct {
	lists   []domain.List
	results []search.FilterResult

	pane       ListsPane
	cursor     int
	itemCursor int

	filtering bool
	filter    textinput.Model

	errs map[string]error // Inline failure per slug

	width  int
	height int
}

// NewListsView creates an empty lists screen
func NewListsView() ListsView {
	ti := textinput.New()
	ti.Placeholder = "Filter lists..."
	ti.Prompt = "/ "
	ti.CharLimit = 50
	ti.PromptStyle = styles.AccentStyle

	return ListsView{filter: ti, errs: make(map[string]error)}
}

// SetLists replaces the lists shown, keeping the selection on the same slug
// when it still exists
func (v *ListsView) SetLists(lists []domain.List) {
	prev, hadPrev := v.Selected()
	v.lists = lists
	v.refilter()
	if hadPrev {
		for i, r := range v.results {
			if r.List.Slug == prev.Slug {
				v.cursor = i
				break
			}
		}
	}
	v.clamp()
}

// Reset clears lists, errors and the filter
func (v *ListsView) Reset() {
	v.lists = nil
	v.results = nil
	v.pane = PaneLists
	v.cursor = 0
	v.itemCursor = 0
	v.filtering = false
	v.filter.SetValue("")
	v.filter.Blur()
	v.errs = make(map[string]error)
}

// SetError records an inline failure for slug; nil clears it
func (v *ListsView) SetError(slug string, err error) {
	if err == nil {
		delete(v.errs, slug)
		return
	}
	v.errs[slug] = err
}

// Err returns the inline failure recorded for slug
func (v ListsView) Err(slug string) error {
	return v.errs[slug]
}

// SetSize sets the rendered dimensions
func (v *ListsView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Pane returns the focused pane
func (v ListsView) Pane() ListsPane { return v.pane }

// IsFiltering reports whether the filter input has keyboard focus
func (v ListsView) IsFiltering() bool { return v.filtering }

// Selected returns the list under the cursor
func (v ListsView) Selected() (domain.List, bool) {
	if v.cursor < 0 || v.cursor >= len(v.results) {
		return domain.List{}, false
	}
	return v.results[v.cursor].List, true
}

// SelectedItem returns the item under the cursor in the items pane
func (v ListsView) SelectedItem() (domain.ListItem, bool) {
	l, ok := v.Selected()
	if !ok || v.itemCursor < 0 || v.itemCursor >= len(l.Items) {
		return domain.ListItem{}, false
	}
	return l.Items[v.itemCursor], true
}

func (v *ListsView) refilter() {
	v.results = search.FilterLists(v.filter.Value(), v.lists)
}

func (v *ListsView) clamp() {
	v.cursor = min(v.cursor, len(v.results)-1)
	v.cursor = max(v.cursor, 0)
	n := 0
	if l, ok := v.Selected(); ok {
		n = len(l.Items)
	}
	v.itemCursor = max(min(v.itemCursor, n-1), 0)
	if n == 0 {
		v.pane = PaneLists
	}
}

// HandleKeyMsg handles navigation and filtering keys. It reports whether the
// key was consumed.
func (v *ListsView) HandleKeyMsg(msg tea.KeyMsg) bool {
	key := msg.String()

	if v.filtering {
		switch key {
		case "esc":
			v.filtering = false
			v.filter.Blur()
			v.filter.SetValue("")
		case "enter":
			v.filtering = false
			v.filter.Blur()
			return true
		default:
			v.filter, _ = v.filter.Update(msg)
		}
		v.cursor = 0
		v.refilter()
		v.clamp()
		return true
	}

	switch key {
	case "j", "down":
		if v.pane == PaneItems {
			v.itemCursor++
		} else {
			v.cursor++
			v.itemCursor = 0
		}
	case "k", "up":
		if v.pane == PaneItems {
			v.itemCursor--
		} else {
			v.cursor--
			v.itemCursor = 0
		}
	case "l", "right":
		if l, ok := v.Selected(); ok && len(l.Items) > 0 {
			v.pane = PaneItems
		}
	case "h", "left":
		if v.pane != PaneItems {
			return false
		}
		v.pane = PaneLists
	case "/", "f":
		v.filtering = true
		v.filter.Focus()
	default:
		return false
	}
	v.clamp()
	return true
}

// View renders both panes. busy reports lists with an outstanding mutation.
func (v ListsView) View(busy func(slug string) bool) string {
	leftWidth := max(v.width*2/5, 20)
	rightWidth := max(v.width-leftWidth-2, 20)

	var left []string
	if v.filtering || v.filter.Value() != "" {
		left = append(left, v.filter.View(), "")
	}
	if len(v.results) == 0 {
		if len(v.lists) == 0 {
			left = append(left, styles.DimStyle.Render("  No lists yet. Press c to create one."))
		} else {
			left = append(left, styles.DimStyle.Render("  No matching lists"))
		}
	}
	for i, r := range v.results {
		selected := i == v.cursor && v.pane == PaneLists
		name := highlight(r.List.Name, r.MatchedIndexes, selected)
		count := fmt.Sprintf(" %d", len(r.List.Items))
		parts := []styles.RowPart{{Text: name}, {Text: styles.DimStyle.Render(count)}}
		if busy != nil && busy(r.List.Slug) {
			parts = append(parts, styles.RowPart{Text: " " + styles.BusyChar})
		}
		left = append(left, styles.RenderListRow(parts, selected, leftWidth))
		if err := v.errs[r.List.Slug]; err != nil {
			msg := styles.Truncate(domain.AsAPIError(err).Message, leftWidth-6)
			left = append(left, "    "+styles.ErrorStyle.Render(msg))
		}
	}

	var right []string
	if l, ok := v.Selected(); ok {
		right = append(right, styles.TitleStyle.Render(styles.Truncate(l.Name, rightWidth)), "")
		if len(l.Items) == 0 {
			right = append(right, styles.DimStyle.Render("Empty list. Add titles from search with a."))
		}
		for i, item := range l.Items {
			right = append(right, RenderItemRow(item, v.pane == PaneItems && i == v.itemCursor, false, rightWidth))
		}
	}

	leftCol := lipgloss.NewStyle().Width(leftWidth).Height(v.height).Render(strings.Join(left, "\n"))
	rightCol := lipgloss.NewStyle().Width(rightWidth).Height(v.height).PaddingLeft(2).Render(strings.Join(right, "\n"))
	return lipgloss.JoinHorizontal(lipgloss.Top, leftCol, rightCol)
}

// highlight renders name with the matched rune positions emphasized
func highlight(name string, matched []int, selected bool) string {
	if len(matched) == 0 {
		return name
	}
	hl := styles.MatchHighlightStyle
	if selected {
		hl = styles.MatchHighlightSelectedStyle
	}
	set := make(map[int]bool, len(matched))
	for _, i := range matched {
		set[i] = true
	}

	var b strings.Builder
	for i, r := range []rune(name) {
		if set[i] {
			b.WriteString(hl.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
