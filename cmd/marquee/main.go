package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/marquee/internal/account"
	"github.com/mmcdole/marquee/internal/auth"
	"github.com/mmcdole/marquee/internal/browser"
	"github.com/mmcdole/marquee/internal/config"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/lists"
	"github.com/mmcdole/marquee/internal/log"
	"github.com/mmcdole/marquee/internal/modal"
	"github.com/mmcdole/marquee/internal/search"
	"github.com/mmcdole/marquee/internal/store"
	"github.com/mmcdole/marquee/internal/tmdb"
	"github.com/mmcdole/marquee/internal/tui"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

// posterSize is the image width requested for poster links
const posterSize = "w342"

var errNotConfigured = errors.New("marquee is not configured yet; run `marquee` to set it up")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the services shared by every command
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	session *store.SessionStore
	backend account.Backend
	catalog *tmdb.Client
	gate    *auth.Gate
	lists   *lists.Store
	opener  *browser.Opener
}

// loadConfig reads the configuration and sets up logging
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// openApp creates the clients and stores for a configured installation
func openApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	if !cfg.IsConfigured() {
		return nil, errNotConfigured
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	session, err := store.NewSessionStore(config.DataDir(), cfg.Endpoint())
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	backend, err := account.New(cfg, session, logger)
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to create account backend: %w", err)
	}

	catalog := tmdb.NewClient(cfg.TMDB.BaseURL, cfg.TMDB.APIKey, logger,
		tmdb.WithLanguage(cfg.TMDB.Language),
		tmdb.WithTimeout(cfg.TMDB.Timeout),
		tmdb.WithImageBaseURL(cfg.TMDB.ImageBaseURL),
	)

	a := &app{
		cfg:     cfg,
		logger:  logger,
		session: session,
		backend: backend,
		catalog: catalog,
		gate:    auth.NewGate(backend, session, logger),
		lists:   lists.NewStore(backend, logger),
		opener:  browser.NewOpener(cfg.UI.Browser, logger),
	}
	// Lists belong to the session that fetched them
	a.gate.OnSignOut(a.lists.Reset)
	return a, nil
}

// posterURL returns the poster link builder, or nil when posters are hidden
func (a *app) posterURL() func(path string) string {
	if !a.cfg.UI.ShowPosters {
		return nil
	}
	return func(path string) string {
		return a.catalog.ImageURL(path, posterSize)
	}
}

// output creates a printer for w honoring the poster setting
func (a *app) output(w io.Writer) *output {
	o := newOutput(w)
	o.poster = a.posterURL()
	return o
}

// Close releases the backend and session store
func (a *app) Close() {
	if err := a.backend.Close(); err != nil {
		a.logger.Warn("failed to close account backend", "error", err)
	}
	if err := a.session.Close(); err != nil {
		a.logger.Warn("failed to close session store", "error", err)
	}
}

// runTUI resolves the session and the first page of results, then hands
// both to the TUI so its first frame needs no fetch.
func runTUI(a *app, intent domain.SearchIntent) error {
	a.logger.Info("starting marquee", "version", Version)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	user := a.gate.Refresh(ctx)

	orchestrator := search.NewOrchestrator(a.logger)
	res := fetchWithSpinner(ctx, a.catalog, intent)
	orchestrator.Hydrate(intent, res.Page, res.Err)

	if user.Auth {
		credential, _ := a.gate.Credential()
		if _, err := a.lists.Load(ctx, credential); err != nil {
			a.logger.Warn("failed to prefetch lists", "error", err)
		}
	}
	cancel()

	model := tui.NewModel(tui.Deps{
		Catalog:  a.catalog,
		Backend:  a.backend,
		Session:  a.session,
		Gate:     a.gate,
		Search:   orchestrator,
		Lists:    a.lists,
		Modal:    modal.NewController(a.lists, a.logger),
		Opener:   a.opener,
		Logger:   a.logger,
		Poster:   a.posterURL(),
		Initial:  intent,
		Prefetch: true,
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	a.logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	a.logger.Info("shutting down")
	return nil
}

// runSetupFlow asks for the catalog API key and saves it once it works
func runSetupFlow(cfg *config.Config, logger *slog.Logger) error {
	fmt.Println()
	fmt.Println("Welcome to Marquee!")
	fmt.Println()
	fmt.Println("Marquee needs a TMDB API key (https://www.themoviedb.org/settings/api).")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("Enter your API key or read access token: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		key := strings.TrimSpace(input)
		if key == "" {
			fmt.Println("API key cannot be empty. Please try again.")
			continue
		}

		catalog := tmdb.NewClient(cfg.TMDB.BaseURL, key, logger, tmdb.WithTimeout(15*time.Second))
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		fmt.Println()
		res := fetchWithSpinner(ctx, catalog, domain.SearchIntent{Tab: domain.CategoryAll, Page: 1})
		cancel()
		if res.Err != nil {
			fmt.Printf("✗ The key was not accepted: %s\n", domain.AsAPIError(res.Err).Message)
			fmt.Println("Please check the key and try again.")
			fmt.Println()
			continue
		}
		fmt.Println("✓ Connected to TMDB")

		cfg.TMDB.APIKey = key
		break
	}

	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run marquee again to start the application.")
	return nil
}

// fetchWithSpinner performs one search with a visual spinner on a terminal
func fetchWithSpinner(ctx context.Context, client domain.SearchClient, intent domain.SearchIntent) search.Result {
	req := search.Request{Intent: intent.Normalize()}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return search.Fetch(ctx, client, req)
	}

	resultCh := make(chan search.Result, 1)
	go func() {
		resultCh <- search.Fetch(ctx, client, req)
	}()

	label := "Loading trending titles..."
	if !req.Intent.IsTrending() {
		label = fmt.Sprintf("Searching for %q...", req.Intent.Query)
	}

	frame := 0
	fmt.Printf("\r%s %s", styles.SpinnerFrames[frame], label)

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case res := <-resultCh:
			fmt.Print(clearSpinnerLine)
			return res
		case <-ticker.C:
			frame++
			fmt.Printf("\r%s %s", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)], label)
		}
	}
}
