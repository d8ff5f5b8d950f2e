// Package browser imports the chat backend's session cookies from a local
// web browser, so a login made on the website also authenticates the terminal.
package browser

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/chrome"
	_ "github.com/browserutils/kooky/browser/chromium"
	_ "github.com/browserutils/kooky/browser/edge"
	_ "github.com/browserutils/kooky/browser/firefox"
	_ "github.com/browserutils/kooky/browser/opera"

	"github.com/diogo/ayurchat/internal/session"
)

// SupportedBrowser represents a supported browser type
type SupportedBrowser string

const (
	BrowserAuto     SupportedBrowser = "auto"
	BrowserChrome   SupportedBrowser = "chrome"
	BrowserChromium SupportedBrowser = "chromium"
	BrowserFirefox  SupportedBrowser = "firefox"
	BrowserEdge     SupportedBrowser = "edge"
	BrowserOpera    SupportedBrowser = "opera"
)

// AllSupportedBrowsers returns the browsers tried by BrowserAuto, in order
func AllSupportedBrowsers() []SupportedBrowser {
	return []SupportedBrowser{
		BrowserChrome,
		BrowserFirefox,
		BrowserEdge,
		BrowserChromium,
		BrowserOpera,
	}
}

func (b SupportedBrowser) String() string {
	return string(b)
}

// ParseBrowser parses a browser string into a SupportedBrowser
func ParseBrowser(s string) (SupportedBrowser, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto", "":
		return BrowserAuto, nil
	case "chrome", "google-chrome":
		return BrowserChrome, nil
	case "chromium":
		return BrowserChromium, nil
	case "firefox", "mozilla", "mozilla-firefox":
		return BrowserFirefox, nil
	case "edge", "microsoft-edge", "msedge":
		return BrowserEdge, nil
	case "opera":
		return BrowserOpera, nil
	default:
		return "", fmt.Errorf("unsupported browser: %s. Supported: chrome, chromium, firefox, edge, opera", s)
	}
}

// ExtractResult contains the result of cookie extraction
type ExtractResult struct {
	Cookies     []session.Cookie
	BrowserName string
}

// ExtractSessionCookies finds the named cookies for host in the given browser.
// At least the first name must be present for the result to count; the
// rest are taken when available.
func ExtractSessionCookies(ctx context.Context, browser SupportedBrowser, host string, names ...string) (*ExtractResult, error) {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("at least one cookie name is required")
	}

	if browser == BrowserAuto {
		return extractFromAllBrowsers(ctx, host, names)
	}
	return extractFromBrowser(ctx, browser, host, names)
}

func extractFromAllBrowsers(ctx context.Context, host string, names []string) (*ExtractResult, error) {
	var lastErr error
	for _, browser := range AllSupportedBrowsers() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := extractFromBrowser(ctx, browser, host, names)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return nil, fmt.Errorf("could not find %s cookies in any browser: %w", host, lastErr)
	}
	return nil, fmt.Errorf("could not find %s cookies in any supported browser", host)
}

// extractFromBrowser tries every profile of one browser until the cookies turn up
func extractFromBrowser(ctx context.Context, browser SupportedBrowser, host string, names []string) (*ExtractResult, error) {
	var matching []kooky.CookieStore
	for _, store := range kooky.FindAllCookieStores(ctx) {
		if matchesBrowser(store.Browser(), browser) {
			matching = append(matching, store)
		} else {
			store.Close()
		}
	}
	defer func() {
		for _, store := range matching {
			store.Close()
		}
	}()

	if len(matching) == 0 {
		return nil, fmt.Errorf("browser %s not found or no cookie store available", browser)
	}

	var lastErr error
	for _, store := range matching {
		displayName := store.Browser()
		if profile := store.Profile(); profile != "" {
			displayName = fmt.Sprintf("%s (profile: %s)", displayName, profile)
		}

		onlyCookies := store.TraverseCookies(kooky.Valid, kooky.DomainContains(host)).OnlyCookies()
		cookies := func(yield func(*kooky.Cookie) bool) {
			for cookie := range onlyCookies {
				if !yield(cookie) {
					return
				}
			}
		}
		found, err := collectSessionCookies(ctx, cookies, host, names)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", displayName, err)
			continue
		}
		return &ExtractResult{Cookies: found, BrowserName: displayName}, nil
	}

	return nil, lastErr
}

// collectSessionCookies picks the wanted cookies from a browser's cookie stream.
// A cookie set for exactly host wins over one set for a parent domain.
func collectSessionCookies(ctx context.Context, cookies iter.Seq[*kooky.Cookie], host string, names []string) ([]session.Cookie, error) {
	type pick struct {
		value string
		exact bool
	}
	picked := make(map[string]pick, len(names))
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	for cookie := range cookies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if cookie == nil || !wanted[cookie.Name] || !domainMatches(cookie.Domain, host) {
			continue
		}

		exact := strings.TrimPrefix(strings.ToLower(cookie.Domain), ".") == host
		if prev, ok := picked[cookie.Name]; !ok || (exact && !prev.exact) {
			picked[cookie.Name] = pick{value: cookie.Value, exact: exact}
		}
	}

	if _, ok := picked[names[0]]; !ok {
		return nil, fmt.Errorf("cookie %s not found for %s. Please log in on the website first", names[0], host)
	}

	out := make([]session.Cookie, 0, len(picked))
	for _, n := range names {
		if p, ok := picked[n]; ok {
			out = append(out, session.Cookie{Name: n, Value: p.value})
		}
	}
	return out, nil
}

// domainMatches applies cookie domain matching: the domain equals host or is a parent of it.
func domainMatches(domain, host string) bool {
	domain = strings.TrimPrefix(strings.ToLower(domain), ".")
	if domain == "" {
		return false
	}
	return domain == host || strings.HasSuffix(host, "."+domain)
}

// matchesBrowser checks if a browser name matches the target browser
func matchesBrowser(browserName string, target SupportedBrowser) bool {
	browserName = strings.ToLower(browserName)

	switch target {
	case BrowserChrome:
		return strings.Contains(browserName, "chrome") && !strings.Contains(browserName, "chromium")
	case BrowserChromium:
		return strings.Contains(browserName, "chromium")
	case BrowserFirefox:
		return strings.Contains(browserName, "firefox")
	case BrowserEdge:
		return strings.Contains(browserName, "edge")
	case BrowserOpera:
		return strings.Contains(browserName, "opera")
	default:
		return false
	}
}

// ListAvailableBrowsers returns the names of browsers that have cookie stores
func ListAvailableBrowsers(ctx context.Context) []string {
	var browsers []string
	seen := make(map[string]bool)
	for _, store := range kooky.FindAllCookieStores(ctx) {
		name := store.Browser()
		if !seen[name] {
			browsers = append(browsers, name)
			seen[name] = true
		}
		store.Close()
	}
	return browsers
}
