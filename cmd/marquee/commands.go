package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/search"
)

// withApp loads the configuration and runs fn with an open app
func withApp(fn func(a *app) error) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := openApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, 30*time.Second)
}

func newRootCmd() *cobra.Command {
	var (
		query string
		tab   string
		page  int
	)

	cmd := &cobra.Command{
		Use:          "marquee",
		Short:        "Browse movies, TV shows and people from your terminal",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI on today's trending titles
  marquee

  # Start on a search
  marquee --search "blade runner" --tab movie

  # Scriptable commands
  marquee search alien
  marquee lists ls
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			intent, err := parseIntent(query, tab, page)
			if err != nil {
				return err
			}

			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.IsConfigured() {
				return runSetupFlow(cfg, logger)
			}
			if !cmd.Flags().Changed("tab") {
				if def, err := domain.ParseCategory(cfg.UI.DefaultTab); err == nil {
					intent.Tab = def
				}
			}

			a, err := openApp(cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()
			return runTUI(a, intent)
		},
	}

	cmd.Flags().StringVarP(&query, "search", "s", "", "Start with a search query")
	cmd.Flags().StringVarP(&tab, "tab", "t", "all", "Category tab: all, movie, tv or person")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Results page")

	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newListsCmd())
	cmd.AddCommand(newSignInCmd())
	cmd.AddCommand(newSignUpCmd())
	cmd.AddCommand(newSignOutCmd())
	cmd.AddCommand(newOpenCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// parseIntent builds the SearchIntent named by command-line flags
func parseIntent(query, tab string, page int) (domain.SearchIntent, error) {
	category, err := domain.ParseCategory(tab)
	if err != nil {
		return domain.SearchIntent{}, err
	}
	if page < 1 || page > search.MaxPages {
		return domain.SearchIntent{}, fmt.Errorf("page must be between 1 and %d", search.MaxPages)
	}
	return domain.SearchIntent{Query: query, Tab: category, Page: page}.Normalize(), nil
}

// parseItemRef parses a "<type> <id>" pair naming one catalog entry
func parseItemRef(kind, id string) (domain.Category, int, error) {
	category, err := domain.ParseCategory(kind)
	if err != nil {
		return 0, 0, err
	}
	if category == domain.CategoryAll {
		return 0, 0, fmt.Errorf("type must be movie, tv or person")
	}
	n, err := strconv.Atoi(id)
	if err != nil || n <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", domain.ErrInvalidID, id)
	}
	return category, n, nil
}

func newSearchCmd() *cobra.Command {
	var (
		tab  string
		page int
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the catalog (no query lists today's trending titles)",
		RunE: func(cmd *cobra.Command, args []string) error {
			intent, err := parseIntent(strings.Join(args, " "), tab, page)
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				ctx, cancel := commandContext(cmd)
				defer cancel()

				res := search.Fetch(ctx, a.catalog, search.Request{Intent: intent})
				if res.Err != nil {
					return res.Err
				}
				if intent.Query != "" {
					if err := a.session.PushRecentQuery(intent.Query); err != nil {
						a.logger.Warn("failed to save search history", "error", err)
					}
				}

				a.output(cmd.OutOrStdout()).printResults(intent, res.Page)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&tab, "tab", "t", "all", "Category: all, movie, tv or person")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Results page")
	return cmd
}

func newListsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "Manage your lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListsLs(cmd)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "Show your lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListsLs(cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <slug>",
		Short: "Show the titles in a list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLists(cmd, func(ctx context.Context, a *app, o *output) error {
				l, ok := a.lists.Get(args[0])
				if !ok {
					return fmt.Errorf("%w: %s", domain.ErrListNotFound, args[0])
				}
				o.printList(l)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLists(cmd, func(ctx context.Context, a *app, o *output) error {
				l, err := a.lists.Create(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				o.printf("Created %s (%s)\n", l.Name, l.Slug)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rename <slug> <name>",
		Short: "Rename a list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLists(cmd, func(ctx context.Context, a *app, o *output) error {
				l, err := a.lists.Rename(ctx, args[0], strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				o.printf("Renamed %s to %s\n", l.Slug, l.Name)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "rm <slug>",
		Aliases: []string{"delete"},
		Short:   "Delete a list",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLists(cmd, func(ctx context.Context, a *app, o *output) error {
				if err := a.lists.Remove(ctx, args[0]); err != nil {
					return err
				}
				o.printf("Deleted %s\n", args[0])
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add <slug> <movie|tv|person> <id>",
		Short: "Add a title to a list",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, id, err := parseItemRef(args[1], args[2])
			if err != nil {
				return err
			}
			return withLists(cmd, func(ctx context.Context, a *app, o *output) error {
				// The stored reference carries the catalog's own title
				detail, err := a.catalog.Detail(ctx, category, id)
				if err != nil {
					return err
				}
				l, err := a.lists.AddItem(ctx, args[0], detail.Item)
				if err != nil {
					return err
				}
				o.printf("Added %s to %s\n", detail.Item.Title, l.Name)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <slug> <movie|tv|person> <id>",
		Short: "Remove a title from a list",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, id, err := parseItemRef(args[1], args[2])
			if err != nil {
				return err
			}
			return withLists(cmd, func(ctx context.Context, a *app, o *output) error {
				item := domain.ListItem{TmdbID: id, Type: category}
				l, err := a.lists.RemoveItem(ctx, args[0], item)
				if err != nil {
					return err
				}
				o.printf("Removed %s %d from %s\n", category, id, l.Name)
				return nil
			})
		},
	})
	return cmd
}

// withLists runs fn for a signed-in user with the store seeded
func withLists(cmd *cobra.Command, fn func(ctx context.Context, a *app, o *output) error) error {
	return withApp(func(a *app) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		if !a.gate.Refresh(ctx).Auth {
			return fmt.Errorf("%w: run `marquee signin` first", domain.ErrUnauthorized)
		}
		credential, _ := a.gate.Credential()
		if _, err := a.lists.Load(ctx, credential); err != nil {
			return err
		}
		return fn(ctx, a, a.output(cmd.OutOrStdout()))
	})
}

func runListsLs(cmd *cobra.Command) error {
	return withLists(cmd, func(ctx context.Context, a *app, o *output) error {
		o.printLists(a.lists.Lists())
		return nil
	})
}

func newSignInCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in to manage your lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Email").
						Value(&email).
						Validate(requireEmail),
					huh.NewInput().
						Title("Password").
						EchoMode(huh.EchoModePassword).
						Value(&password).
						Validate(requireValue("password")),
				),
			)
			if err := form.Run(); err != nil {
				return err
			}
			return withApp(func(a *app) error {
				ctx, cancel := commandContext(cmd)
				defer cancel()

				token, err := a.backend.SignIn(ctx, strings.TrimSpace(email), password)
				if err != nil {
					return err
				}
				return establish(ctx, cmd, a, token)
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	return cmd
}

func newSignUpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var email, name, password string
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Email").
						Value(&email).
						Validate(requireEmail),
					huh.NewInput().
						Title("Name").
						Value(&name).
						Validate(requireValue("name")),
					huh.NewInput().
						Title("Password").
						Description("At least 8 characters").
						EchoMode(huh.EchoModePassword).
						Value(&password).
						Validate(func(s string) error {
							if len(s) < 8 {
								return fmt.Errorf("password must be at least 8 characters")
							}
							return nil
						}),
				),
			)
			if err := form.Run(); err != nil {
				return err
			}
			return withApp(func(a *app) error {
				ctx, cancel := commandContext(cmd)
				defer cancel()

				token, err := a.backend.SignUp(ctx, strings.TrimSpace(email), strings.TrimSpace(name), password)
				if err != nil {
					return err
				}
				return establish(ctx, cmd, a, token)
			})
		},
	}
	return cmd
}

func establish(ctx context.Context, cmd *cobra.Command, a *app, token string) error {
	user, err := a.gate.Establish(ctx, token)
	if err != nil {
		return err
	}
	newOutput(cmd.OutOrStdout()).printf("Signed in as %s <%s>\n", user.User.Name, user.User.Email)
	return nil
}

func newSignOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				ctx, cancel := commandContext(cmd)
				defer cancel()

				if !a.gate.Refresh(ctx).Auth {
					newOutput(cmd.OutOrStdout()).printf("Not signed in\n")
					return nil
				}
				if err := a.gate.SignOut(ctx); err != nil {
					return fmt.Errorf("signed out locally: %w", err)
				}
				newOutput(cmd.OutOrStdout()).printf("Signed out\n")
				return nil
			})
		},
	}
}

func newOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <movie|tv|person> <id>",
		Short: "Open a title's page in the browser",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, id, err := parseItemRef(args[0], args[1])
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				ctx, cancel := commandContext(cmd)
				defer cancel()

				item := domain.ListItem{TmdbID: id, Type: category, Title: fmt.Sprintf("%s %d", category, id)}
				if d, err := a.catalog.Detail(ctx, category, id); err != nil {
					a.logger.Warn("failed to look up title", "item", item.Key(), "error", err)
				} else {
					item = d.Item
				}
				if err := a.opener.OpenItem(item); err != nil {
					return err
				}
				o := a.output(cmd.OutOrStdout())
				o.printf("Opened %s\n", item.Title)
				o.printPoster(item, 2)
				return nil
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "marquee %s\n", Version)
		},
	}
}

func requireEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("email is required")
	}
	if !strings.Contains(s, "@") {
		return fmt.Errorf("not an email address")
	}
	return nil
}

func requireValue(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}
