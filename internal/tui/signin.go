package tui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

const (
	modeSignIn = "signin"
	modeSignUp = "signup"
)

// Credentials is what the sign-in form collects
type Credentials struct {
	Email    string
	Name     string
	Password string
	SignUp   bool
}

// signInForm wraps the huh form of the sign-in screen. It is held by pointer
// because the form writes through pointers to its fields.
type signInForm struct {
	form *huh.Form

	mode     string
	email    string
	name     string
	password string

	pending bool
	errMsg  string
}

func newSignInForm(email string) *signInForm {
	f := &signInForm{mode: modeSignIn, email: email}
	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Account").
				Options(
					huh.NewOption("Sign in", modeSignIn),
					huh.NewOption("Create an account", modeSignUp),
				).
				Value(&f.mode),
			huh.NewInput().
				Title("Email").
				Value(&f.email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Name").
				Description("Shown on your lists; new accounts only").
				Value(&f.name),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.password).
				Validate(validatePassword),
		),
	).WithShowHelp(true).WithTheme(huh.ThemeBase())
	return f
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("email is required")
	}
	if !strings.Contains(s, "@") {
		return errors.New("not an email address")
	}
	return nil
}

func validatePassword(s string) error {
	if len(s) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

func (f *signInForm) Init() tea.Cmd {
	return f.form.Init()
}

// Update forwards msg to the form. submitted is true once the form completes.
func (f *signInForm) Update(msg tea.Msg) (tea.Cmd, bool) {
	if f.pending {
		return nil, false
	}
	model, cmd := f.form.Update(msg)
	if form, ok := model.(*huh.Form); ok {
		f.form = form
	}
	if f.form.State == huh.StateCompleted {
		f.pending = true
		f.errMsg = ""
		return cmd, true
	}
	return cmd, false
}

// Credentials returns the collected values
func (f *signInForm) Credentials() Credentials {
	return Credentials{
		Email:    strings.TrimSpace(f.email),
		Name:     strings.TrimSpace(f.name),
		Password: f.password,
		SignUp:   f.mode == modeSignUp,
	}
}

func (f *signInForm) View() string {
	return f.form.View()
}
