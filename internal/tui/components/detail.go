package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// relatedRows is how many cast or credit rows are listed under the overview
const relatedRows = 8

// DetailView shows one movie, TV show or person. The overview is rendered
// as markdown in a scrollable viewport; cast (or known-for credits) form a
// selectable list below it.
type DetailView struct {
	detail    *domain.Detail
	posterURL func(path string) string // nil hides posters
	viewport  viewport.Model
	cursor    int
	width     int
	height    int
}

// NewDetailView creates an empty detail view
func NewDetailView() DetailView {
	return DetailView{viewport: viewport.New(0, 0)}
}

// SetPosterURL sets how poster paths become links. nil hides posters.
func (d *DetailView) SetPosterURL(fn func(path string) string) {
	d.posterURL = fn
	d.render()
}

// SetDetail replaces the shown record
func (d *DetailView) SetDetail(detail domain.Detail) {
	d.detail = &detail
	d.cursor = 0
	d.render()
	d.viewport.GotoTop()
}

// Clear removes the shown record
func (d *DetailView) Clear() {
	d.detail = nil
	d.cursor = 0
	d.viewport.SetContent("")
}

// Detail returns the shown record
func (d DetailView) Detail() (domain.Detail, bool) {
	if d.detail == nil {
		return domain.Detail{}, false
	}
	return *d.detail, true
}

// SetSize sets the rendered dimensions
func (d *DetailView) SetSize(width, height int) {
	d.width = width
	d.height = height
	d.viewport.Width = width
	d.viewport.Height = max(height-relatedRows-2, 3)
	d.render()
}

// Related returns the cast of a title or the credits of a person
func (d DetailView) Related() []domain.ListItem {
	if d.detail == nil {
		return nil
	}
	if d.detail.Item.Type == domain.CategoryPerson {
		return d.detail.KnownFor
	}
	return d.detail.Cast
}

// SelectedRelated returns the related entry under the cursor
func (d DetailView) SelectedRelated() (domain.ListItem, bool) {
	rel := d.Related()
	if d.cursor < 0 || d.cursor >= len(rel) {
		return domain.ListItem{}, false
	}
	return rel[d.cursor], true
}

// MoveUp moves the related cursor up
func (d *DetailView) MoveUp() {
	if d.cursor > 0 {
		d.cursor--
	}
}

// MoveDown moves the related cursor down
func (d *DetailView) MoveDown() {
	if d.cursor < len(d.Related())-1 {
		d.cursor++
	}
}

// Update scrolls the overview viewport
func (d DetailView) Update(msg tea.Msg) (DetailView, tea.Cmd) {
	var cmd tea.Cmd
	d.viewport, cmd = d.viewport.Update(msg)
	return d, cmd
}

func (d *DetailView) render() {
	if d.detail == nil || d.width <= 0 {
		return
	}
	poster := ""
	if d.posterURL != nil && d.detail.Item.Poster != nil {
		poster = d.posterURL(*d.detail.Item.Poster)
	}
	md := Markdown(*d.detail, poster)

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(d.width-4, 20)),
	)
	if err != nil {
		d.viewport.SetContent(styles.Wrap(md, d.width))
		return
	}
	out, err := r.Render(md)
	if err != nil {
		out = styles.Wrap(md, d.width)
	}
	d.viewport.SetContent(out)
}

// Markdown formats a detail record as a markdown document. poster is the
// image link shown under the facts, if any.
func Markdown(d domain.Detail, poster string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Item.Title)

	var facts []string
	if d.Date != "" {
		facts = append(facts, d.Date)
	}
	if len(d.Genres) > 0 {
		facts = append(facts, strings.Join(d.Genres, ", "))
	}
	if d.Runtime > 0 {
		facts = append(facts, fmt.Sprintf("%dh %02dm", d.Runtime/60, d.Runtime%60))
	}
	if d.Seasons > 0 {
		facts = append(facts, fmt.Sprintf("%d seasons", d.Seasons))
	}
	if d.Rating > 0 {
		facts = append(facts, fmt.Sprintf("★ %.1f", d.Rating))
	}
	if len(facts) > 0 {
		fmt.Fprintf(&b, "*%s*\n\n", strings.Join(facts, " · "))
	}
	if poster != "" {
		fmt.Fprintf(&b, "Poster: %s\n\n", poster)
	}

	if d.Overview != "" {
		b.WriteString(d.Overview)
	} else {
		b.WriteString("No overview available.")
	}
	b.WriteString("\n")
	return b.String()
}

// View renders the overview followed by the related list
func (d DetailView) View() string {
	if d.detail == nil {
		return ""
	}

	lines := []string{d.viewport.View()}

	rel := d.Related()
	heading := "Cast"
	if d.detail.Item.Type == domain.CategoryPerson {
		heading = "Known for"
	}
	if len(rel) > 0 {
		lines = append(lines, styles.AccentStyle.Render(heading))
	}

	start := 0
	if d.cursor >= relatedRows {
		start = d.cursor - relatedRows + 1
	}
	end := min(start+relatedRows, len(rel))
	for i := start; i < end; i++ {
		lines = append(lines, RenderItemRow(rel[i], i == d.cursor, false, d.width))
	}
	return strings.Join(lines, "\n")
}
