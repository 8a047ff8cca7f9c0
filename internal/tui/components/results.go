package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// Results is the scrollable list of formatted search results
type Results struct {
	items  []domain.ListItem
	cursor int
	offset int
	width  int
	height int
}

// NewResults creates an empty result list
func NewResults() Results {
	return Results{}
}

// SetItems replaces the displayed items. With reset the cursor returns to
// the top; otherwise it stays where it was, clamped to the new length.
func (r *Results) SetItems(items []domain.ListItem, reset bool) {
	r.items = items
	if reset {
		r.cursor = 0
		r.offset = 0
	}
	r.clamp()
}

// Items returns the displayed items
func (r Results) Items() []domain.ListItem { return r.items }

// SetSize sets the rendered dimensions
func (r *Results) SetSize(width, height int) {
	r.width = width
	r.height = max(height, 1)
	r.clamp()
}

// Cursor returns the selected index
func (r Results) Cursor() int { return r.cursor }

// Selected returns the item under the cursor
func (r Results) Selected() (domain.ListItem, bool) {
	if r.cursor < 0 || r.cursor >= len(r.items) {
		return domain.ListItem{}, false
	}
	return r.items[r.cursor], true
}

// MoveUp moves the cursor up one row
func (r *Results) MoveUp() {
	r.cursor--
	r.clamp()
}

// MoveDown moves the cursor down one row
func (r *Results) MoveDown() {
	r.cursor++
	r.clamp()
}

// clamp keeps the cursor inside the items. An empty list (e.g. while a page
// is pending) leaves the position alone so a page change does not jump.
func (r *Results) clamp() {
	if len(r.items) == 0 {
		return
	}
	if r.cursor >= len(r.items) {
		r.cursor = len(r.items) - 1
	}
	if r.cursor < 0 {
		r.cursor = 0
	}
	if r.cursor < r.offset {
		r.offset = r.cursor
	}
	if r.height > 0 && r.cursor >= r.offset+r.height {
		r.offset = r.cursor - r.height + 1
	}
}

// View renders the visible rows. inList marks items saved in any list.
func (r Results) View(focused bool, inList func(domain.ListItem) bool) string {
	if len(r.items) == 0 {
		return styles.DimStyle.Render("  No results")
	}

	end := min(r.offset+r.height, len(r.items))
	lines := make([]string, 0, end-r.offset)
	for i := r.offset; i < end; i++ {
		lines = append(lines, RenderItemRow(r.items[i], focused && i == r.cursor, inList != nil && inList(r.items[i]), r.width))
	}
	return strings.Join(lines, "\n")
}

// RenderItemRow renders one catalog item as a list row
func RenderItemRow(item domain.ListItem, selected, saved bool, width int) string {
	mark := styles.UncheckedChar
	if saved {
		mark = styles.CheckedChar
	}
	markColor := styles.Green

	title := item.Title
	if item.SubTitle != nil {
		title += " as " + *item.SubTitle
	}
	title = styles.Truncate(title, max(width-10, 1))

	return styles.RenderListRow([]styles.RowPart{
		{Text: Badge(item.Type) + " "},
		{Text: title + " "},
		{Text: mark, Foreground: &markColor},
	}, selected, width)
}

// Badge renders a short category label
func Badge(c domain.Category) string {
	switch c {
	case domain.CategoryMovie:
		return styles.MovieBadge
	case domain.CategoryTvShow:
		return styles.TvBadge
	case domain.CategoryPerson:
		return styles.PersonBadge
	default:
		return "   "
	}
}

// RenderTabs renders the category selector. Disabled tabs are shown dimmed
// and none is highlighted.
func RenderTabs(current domain.Category, enabled bool) string {
	parts := make([]string, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		switch {
		case !enabled:
			parts = append(parts, styles.DisabledTabStyle.Render(c.Label()))
		case c == current:
			parts = append(parts, styles.ActiveTabStyle.Render(c.Label()))
		default:
			parts = append(parts, styles.InactiveTabStyle.Render(c.Label()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// Pager wraps the paginator control for result pages
type Pager struct {
	model paginator.Model
}

// NewPager creates a pager showing "current/total"
func NewPager() Pager {
	p := paginator.New()
	p.Type = paginator.Arabic
	p.PerPage = 1
	p.ArabicFormat = "page %d of %d"
	return Pager{model: p}
}

// Set updates the current page (1-based) and the page count
func (p *Pager) Set(current, total int) {
	p.model.SetTotalPages(max(total, 1))
	p.model.Page = min(max(current, 1), p.model.TotalPages) - 1
}

// View renders the pager, with the available directions
func (p Pager) View() string {
	var b strings.Builder
	if !p.model.OnFirstPage() {
		b.WriteString(styles.HelpKeyStyle.Render("[ "))
	} else {
		b.WriteString("  ")
	}
	b.WriteString(styles.SubtitleStyle.Render(p.model.View()))
	if !p.model.OnLastPage() {
		b.WriteString(styles.HelpKeyStyle.Render(" ]"))
	}
	return b.String()
}

// Label returns the plain "page x of y" text
func (p Pager) Label() string {
	return fmt.Sprintf(p.model.ArabicFormat, p.model.Page+1, p.model.TotalPages)
}
