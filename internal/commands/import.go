package commands

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/ayurchat/internal/browser"
	"github.com/diogo/ayurchat/internal/config"
	"github.com/diogo/ayurchat/internal/models"
	"github.com/diogo/ayurchat/internal/session"
)

// NewImportSessionCmd creates the import-session command
func NewImportSessionCmd(deps *Dependencies) *cobra.Command {
	var browserName, file string
	var list bool

	cmd := &cobra.Command{
		Use:   "import-session",
		Short: "Reuse a backend session from a browser or a cookie file",
		Long: `Import the backend's session and CSRF cookies.

By default the cookies are read from the local browsers' cookie stores for
the configured backend host. With --file they are read from a JSON export
instead, either a list [{"name": "sessionid", "value": "..."}] or a
dictionary {"sessionid": "..."}.

Importing a session does not mark this terminal session as logged in;
run 'ayurchat login' for that.

Supported browsers: ` + supportedBrowsersHelp(),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				return listBrowsers(cmd.Context(), deps)
			}

			cfg, err := loadSettings()
			if err != nil {
				return err
			}
			return runImportSession(cmd.Context(), deps, cfg, browserName, file)
		},
	}

	cmd.Flags().StringVarP(&browserName, "browser", "b", "auto", "Browser to read cookies from")
	cmd.Flags().StringVar(&file, "file", "", "Import from a JSON cookie export instead")
	cmd.Flags().BoolVar(&list, "list", false, "List browsers with cookie stores")
	return cmd
}

func runImportSession(ctx context.Context, deps *Dependencies, cfg config.Config, browserName, file string) error {
	store, err := deps.openStore()
	if err != nil {
		return err
	}

	var cookies []session.Cookie
	source := file

	if file != "" {
		cookies, err = session.ImportCookies(store, file)
		if err != nil {
			return fmt.Errorf("failed to import cookies: %w", err)
		}
	} else {
		b, err := browser.ParseBrowser(browserName)
		if err != nil {
			return err
		}

		host, err := backendHost(cfg.BaseURL)
		if err != nil {
			return err
		}

		spin := newSpinner(deps.Stderr, "Reading browser cookies for "+host)
		spin.start()
		result, err := deps.ExtractCookies(ctx, b, host, models.SessionCookie, cfg.CSRFCookieName)
		if err != nil {
			spin.stopWithError()
			return fmt.Errorf("failed to extract cookies: %w", err)
		}
		spin.stopWithSuccess("Found session in " + result.BrowserName)

		cookies = result.Cookies
		source = result.BrowserName
		if err := store.SetCookies(cookies); err != nil {
			return fmt.Errorf("failed to save cookies: %w", err)
		}
	}

	fmt.Fprintln(deps.Stdout, successStyle().Render(fmt.Sprintf("✓ Imported %d cookies from %s", len(cookies), source)))
	for _, c := range cookies {
		fmt.Fprintln(deps.Stdout, dimStyle().Render(fmt.Sprintf("  %s = %s...", c.Name, truncateValue(c.Value, 8))))
	}
	return nil
}

func listBrowsers(ctx context.Context, deps *Dependencies) error {
	browsers := browser.ListAvailableBrowsers(ctx)

	if len(browsers) == 0 {
		fmt.Fprintln(deps.Stdout, "No browsers with cookie stores found.")
		fmt.Fprintln(deps.Stdout)
		fmt.Fprintln(deps.Stdout, "Supported browsers: "+supportedBrowsersHelp())
		return nil
	}

	fmt.Fprintln(deps.Stdout, "Available browsers with cookie stores:")
	for _, b := range browsers {
		fmt.Fprintf(deps.Stdout, "  - %s\n", b)
	}
	fmt.Fprintln(deps.Stdout)
	fmt.Fprintln(deps.Stdout, "Use 'ayurchat import-session -b <browser>' to read a specific browser.")
	return nil
}

// backendHost returns the hostname cookies are looked up for
func backendHost(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return "", fmt.Errorf("invalid base URL %q", baseURL)
	}
	return u.Hostname(), nil
}

func truncateValue(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// supportedBrowsersHelp returns the accepted --browser values
func supportedBrowsersHelp() string {
	browsers := browser.AllSupportedBrowsers()
	names := make([]string, 0, len(browsers)+1)
	names = append(names, string(browser.BrowserAuto))
	for _, b := range browsers {
		names = append(names, string(b))
	}
	return strings.Join(names, ", ")
}
