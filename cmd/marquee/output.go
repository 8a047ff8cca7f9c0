package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/format"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

const defaultWidth = 80

// output writes plain, column-aligned text for the scriptable commands
type output struct {
	w      io.Writer
	width  int
	poster func(path string) string // nil hides poster links
}

func newOutput(w io.Writer) *output {
	return &output{w: w, width: terminalWidth(w)}
}

// terminalWidth returns the width of w when it is a terminal
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}

func (o *output) printf(msg string, args ...any) {
	fmt.Fprintf(o.w, msg, args...)
}

// printResults prints one page of search results
func (o *output) printResults(intent domain.SearchIntent, page domain.ResultPage) {
	category := intent.Tab
	if intent.IsTrending() {
		category = domain.CategoryAll
		o.printf("Trending today\n\n")
	}

	items := format.Results(category, page.Results)
	if len(items) == 0 {
		o.printf("No results\n")
		return
	}
	o.printItems(items)

	if !intent.IsTrending() && page.TotalPages > 1 {
		o.printf("\npage %d of %d\n", intent.Page, page.TotalPages)
	}
}

// printItems prints one row per item: type, id, title and subtitle
func (o *output) printItems(items []domain.ListItem) {
	idWidth := 0
	for _, it := range items {
		idWidth = max(idWidth, len(strconv.Itoa(it.TmdbID)))
	}

	titleWidth := max((o.width-8-idWidth)*3/5, 10)
	for _, it := range items {
		row := styles.Pad(it.Type.String(), 7) + styles.Pad(strconv.Itoa(it.TmdbID), idWidth+1)
		if it.SubTitle != nil {
			row += styles.Pad(it.Title, titleWidth) + " " + *it.SubTitle
		} else {
			row += it.Title
		}
		o.printf("%s\n", styles.Truncate(row, o.width))
		o.printPoster(it, 8+idWidth)
	}
}

// printPoster prints the item's poster link under its row
func (o *output) printPoster(it domain.ListItem, indent int) {
	if o.poster == nil || it.Poster == nil {
		return
	}
	if url := o.poster(*it.Poster); url != "" {
		o.printf("%s%s\n", strings.Repeat(" ", indent), url)
	}
}

// printLists prints each list with its size
func (o *output) printLists(lists []domain.List) {
	if len(lists) == 0 {
		o.printf("No lists yet. Create one with `marquee lists create <name>`\n")
		return
	}
	slugWidth := 0
	for _, l := range lists {
		slugWidth = max(slugWidth, len(l.Slug))
	}
	for _, l := range lists {
		row := styles.Pad(l.Slug, slugWidth+2) + l.Name + " (" + plural(len(l.Items), "title") + ")"
		o.printf("%s\n", styles.Truncate(row, o.width))
	}
}

// printList prints a list's name followed by its titles
func (o *output) printList(l domain.List) {
	o.printf("%s (%s)\n\n", l.Name, plural(len(l.Items), "title"))
	if len(l.Items) == 0 {
		return
	}
	o.printItems(l.Items)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
