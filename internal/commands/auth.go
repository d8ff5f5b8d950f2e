package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/diogo/ayurchat/internal/config"
	"github.com/diogo/ayurchat/internal/models"
	"github.com/diogo/ayurchat/internal/render"
	"github.com/diogo/ayurchat/internal/session"
	"github.com/diogo/ayurchat/internal/widget"
)

// NewLoginCmd creates the login command
func NewLoginCmd(deps *Dependencies) *cobra.Command {
	var email, name string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with an email and name",
		Long: `Log in to the backend and mark this session as logged in.

The backend session cookie is kept for later chat and ask commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings()
			if err != nil {
				return err
			}
			return runLogin(cmd.Context(), deps, cfg, email, name)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	return cmd
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings()
			if err != nil {
				return err
			}
			return runLogout(cmd.Context(), deps, cfg)
		},
	}
}

// NewStatusCmd creates the status command
func NewStatusCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether this session is logged in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings()
			if err != nil {
				return err
			}
			return runStatus(deps, cfg)
		},
	}
}

// consoleWidget wires a widget to a console view over the configured backend
func consoleWidget(deps *Dependencies, cfg config.Config) (*widget.Widget, SessionStore, func(), error) {
	store, client, err := deps.backend(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	view := newConsoleView(deps.Stdout, render.OptionsFromConfig(cfg.Markdown), getTerminalWidth())
	w := widget.New(view, client, client, store,
		widget.WithLogger(log.Logger.With().Str("component", "widget").Logger()))

	done := func() {
		w.Wait()
		persistCookies(store, client)
		client.Close()
	}
	return w, store, done, nil
}

func runLogin(ctx context.Context, deps *Dependencies, cfg config.Config, email, name string) error {
	w, _, done, err := consoleWidget(deps, cfg)
	if err != nil {
		return err
	}
	defer done()

	if err := w.Login(ctx, email, name); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	return nil
}

func runLogout(ctx context.Context, deps *Dependencies, cfg config.Config) error {
	w, _, done, err := consoleWidget(deps, cfg)
	if err != nil {
		return err
	}
	defer done()

	w.Logout(ctx)
	return nil
}

func runStatus(deps *Dependencies, cfg config.Config) error {
	w, store, done, err := consoleWidget(deps, cfg)
	if err != nil {
		return err
	}
	defer done()

	w.CheckInitialState()

	_, hasSession := session.Lookup(store.Cookies(), models.SessionCookie)
	_, hasCSRF := session.Lookup(store.Cookies(), cfg.CSRFCookieName)

	var sb strings.Builder
	fmt.Fprintf(&sb, "  Backend:        %s\n", cfg.BaseURL)
	fmt.Fprintf(&sb, "  Session cookie: %s\n", yesNo(hasSession))
	fmt.Fprintf(&sb, "  CSRF cookie:    %s\n", yesNo(hasCSRF))
	if fs, ok := store.(interface{ Path() string }); ok {
		fmt.Fprintf(&sb, "  Session file:   %s\n", fs.Path())
	}
	fmt.Fprint(deps.Stdout, dimStyle().Render(sb.String()))
	fmt.Fprintln(deps.Stdout)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
