package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"

	"github.com/diogo/ayurchat/internal/api"
	"github.com/diogo/ayurchat/internal/browser"
	"github.com/diogo/ayurchat/internal/config"
	"github.com/diogo/ayurchat/internal/session"
	"github.com/diogo/ayurchat/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	Run(ctx context.Context, ctrl tui.Controller, view *tui.ProgramView, opts ...tui.Option) error
}

// SessionStore holds the logged-in flag and the backend cookies.
type SessionStore interface {
	session.Store
	session.CookieStore
}

// CookieExtractor reads backend cookies out of a local browser.
type CookieExtractor func(ctx context.Context, b browser.SupportedBrowser, host string, names ...string) (*browser.ExtractResult, error)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// Client is used instead of building one from the config when set.
	Client api.BackendClient

	// Store is used instead of the session file when set.
	Store SessionStore

	// TUI is the terminal user interface.
	TUI TUIInterface

	ExtractCookies CookieExtractor
	Clipboard      func(string) error

	// StdoutIsTTY decides between decorated and raw answers.
	StdoutIsTTY func() bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) Run(ctx context.Context, ctrl tui.Controller, view *tui.ProgramView, opts ...tui.Option) error {
	return tui.Run(ctx, ctrl, view, opts...)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		TUI:            &DefaultTUI{},
		ExtractCookies: browser.ExtractSessionCookies,
		Clipboard:      clipboard.WriteAll,
		StdoutIsTTY:    isStdoutTTY,
		Stdin:          os.Stdin,
		Stdout:         os.Stdout,
		Stderr:         os.Stderr,
	}
}

func (d *Dependencies) stdoutIsTTY() bool {
	if d.StdoutIsTTY == nil {
		return isStdoutTTY()
	}
	return d.StdoutIsTTY()
}

// openStore returns the injected store or the per-user session file
func (d *Dependencies) openStore() (SessionStore, error) {
	if d.Store != nil {
		return d.Store, nil
	}
	store, err := session.OpenFileStore(session.DefaultPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	return store, nil
}

// newClient returns the injected client or one built from cfg, seeded with
// the persisted backend cookies.
func (d *Dependencies) newClient(cfg config.Config, cookies []session.Cookie) (api.BackendClient, error) {
	if d.Client != nil {
		return d.Client, nil
	}

	client, err := api.NewClient(cfg.BaseURL,
		api.WithPaths(api.Paths{
			Index:  cfg.IndexPath,
			Chat:   cfg.ChatPath,
			Login:  cfg.LoginPath,
			Logout: cfg.LogoutPath,
		}),
		api.WithCSRFNames(cfg.CSRFCookieName, cfg.CSRFHeaderName),
		api.WithTimeout(cfg.TimeoutSeconds),
		api.WithCookies(cookies),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// backend opens the session store and a client seeded from it
func (d *Dependencies) backend(cfg config.Config) (SessionStore, api.BackendClient, error) {
	store, err := d.openStore()
	if err != nil {
		return nil, nil, err
	}
	client, err := d.newClient(cfg, store.Cookies())
	if err != nil {
		return nil, nil, err
	}
	return store, client, nil
}

// persistCookies saves the client's current backend cookies so the next
// invocation reuses the session.
func persistCookies(store session.CookieStore, client api.BackendClient) {
	if err := store.SetCookies(client.Cookies()); err != nil {
		logger().Warn().Err(err).Msg("failed to persist session cookies")
	}
}
