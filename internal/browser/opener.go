// Package browser opens catalog pages in a web browser.
package browser

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"

	"github.com/mmcdole/marquee/internal/domain"
)

// WebBaseURL is the public TMDB website
const WebBaseURL = "https://www.themoviedb.org"

// candidateBrowsers defines the preferred browser order for each platform
// when no browser is configured and the system opener is missing
var candidateBrowsers = map[string][]string{
	"darwin":  {},
	"linux":   {"firefox", "chromium", "google-chrome", "brave-browser"},
	"windows": {},
}

// runner starts an external command; replaced in tests
type runner func(name string, args ...string) error

func startCommand(name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return err
	}
	return exec.Command(name, args...).Start()
}

// Opener launches URLs in the configured browser or the system default
type Opener struct {
	command string
	logger  *slog.Logger
	run     runner
}

// NewOpener creates an Opener. An empty command uses the system default.
func NewOpener(command string, logger *slog.Logger) *Opener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Opener{command: command, logger: logger, run: startCommand}
}

// PageURL returns the website page for a catalog entry
func PageURL(item domain.ListItem) (string, error) {
	if item.TmdbID <= 0 {
		return "", domain.ErrInvalidID
	}
	switch item.Type {
	case domain.CategoryMovie, domain.CategoryTvShow, domain.CategoryPerson:
		return fmt.Sprintf("%s/%s/%d", WebBaseURL, item.Type, item.TmdbID), nil
	default:
		return "", fmt.Errorf("no page for category %s", item.Type)
	}
}

// OpenItem opens the website page for item
func (o *Opener) OpenItem(item domain.ListItem) error {
	url, err := PageURL(item)
	if err != nil {
		return err
	}
	return o.Open(url)
}

// Open launches url
func (o *Opener) Open(url string) error {
	// Tier 1: User configured a specific browser
	if o.command != "" {
		fields := strings.Fields(o.command)
		args := append(fields[1:], url)
		o.logger.Info("using configured browser", "command", fields[0], "url", url)
		return o.run(fields[0], args...)
	}

	// Tier 2: System default (open/xdg-open/start)
	name, args := systemOpener(url)
	err := o.run(name, args...)
	if err == nil {
		o.logger.Info("launched with system default", "os", runtime.GOOS, "url", url)
		return nil
	}
	o.logger.Debug("system opener not available", "command", name, "error", err)

	// Tier 3: Known browsers in PATH
	for _, candidate := range candidateBrowsers[runtime.GOOS] {
		if err := o.run(candidate, url); err == nil {
			o.logger.Info("launched with detected browser", "browser", candidate)
			return nil
		}
	}
	return fmt.Errorf("no browser found to open %s", url)
}

func systemOpener(url string) (string, []string) {
	switch runtime.GOOS {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "cmd", []string{"/c", "start", "", url}
	default:
		return "xdg-open", []string{url}
	}
}
