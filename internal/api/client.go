package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	apierrors "github.com/diogo/ayurchat/internal/errors"
	"github.com/diogo/ayurchat/internal/models"
	"github.com/diogo/ayurchat/internal/session"
)

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 4 << 20

// BackendClient is the surface of Client used by the widget and commands.
type BackendClient interface {
	Ask(ctx context.Context, question string) (*models.ChatResponse, error)
	Login(ctx context.Context, email, name string) (*models.LoginResponse, error)
	Logout(ctx context.Context) error
	Index(ctx context.Context) (string, error)
	Cookies() []session.Cookie
	BaseURL() string
	Close()
}

// Client talks to the chat and auth endpoints of the backend.
// It keeps the backend's cookies in a jar and echoes the CSRF cookie
// back in a header on every mutating request. It never retries.
type Client struct {
	httpClient     tls_client.HttpClient
	baseURL        *url.URL
	paths          Paths
	csrfCookie     string
	csrfHeader     string
	timeoutSeconds int
	seed           []session.Cookie
	logger         zerolog.Logger
	mu             sync.RWMutex
	closed         bool
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithPaths overrides the endpoint paths. Empty fields keep their default.
func WithPaths(p Paths) ClientOption {
	return func(c *Client) {
		if p.Index != "" {
			c.paths.Index = p.Index
		}
		if p.Chat != "" {
			c.paths.Chat = p.Chat
		}
		if p.Login != "" {
			c.paths.Login = p.Login
		}
		if p.Logout != "" {
			c.paths.Logout = p.Logout
		}
	}
}

// WithCSRFNames sets the cookie the CSRF token is read from and the header it is echoed in
func WithCSRFNames(cookie, header string) ClientOption {
	return func(c *Client) {
		if cookie != "" {
			c.csrfCookie = cookie
		}
		if header != "" {
			c.csrfHeader = header
		}
	}
}

// WithTimeout bounds each request. 0 leaves requests unbounded.
func WithTimeout(seconds int) ClientOption {
	return func(c *Client) {
		c.timeoutSeconds = seconds
	}
}

// WithHTTPClient replaces the underlying HTTP client (used in tests)
func WithHTTPClient(hc tls_client.HttpClient) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithCookies seeds the cookie jar, e.g. with a persisted backend session
func WithCookies(cookies []session.Cookie) ClientOption {
	return func(c *Client) {
		c.seed = cookies
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Client for the backend at baseURL
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: expected http(s)://host[:port][/prefix]", baseURL)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return nil, fmt.Errorf("invalid base URL %q: query and fragment are not allowed", baseURL)
	}

	client := &Client{
		baseURL: u,
		paths: Paths{
			Index:  models.DefaultIndexPath,
			Chat:   models.DefaultChatPath,
			Login:  models.DefaultLoginPath,
			Logout: models.DefaultLogoutPath,
		},
		csrfCookie: models.DefaultCSRFCookie,
		csrfHeader: models.DefaultCSRFHeader,
		logger:     log.Logger.With().Str("component", "api").Logger(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(client.timeoutSeconds),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithCookieJar(tls_client.NewCookieJar()),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	if len(client.seed) > 0 {
		jarCookies := make([]*http.Cookie, 0, len(client.seed))
		for _, ck := range client.seed {
			jarCookies = append(jarCookies, &http.Cookie{Name: ck.Name, Value: ck.Value, Path: "/"})
		}
		client.httpClient.SetCookies(client.baseURL, jarCookies)
	}

	return client, nil
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Close releases idle connections. Requests after Close fail.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.httpClient.CloseIdleConnections()
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Cookies returns the jar's cookies for the backend, for persisting the session
func (c *Client) Cookies() []session.Cookie {
	jarCookies := c.httpClient.GetCookies(c.baseURL)
	cookies := make([]session.Cookie, 0, len(jarCookies))
	for _, ck := range jarCookies {
		cookies = append(cookies, session.Cookie{Name: ck.Name, Value: ck.Value})
	}
	return cookies
}

// csrfToken returns the current CSRF cookie value, or "" when the backend hasn't set one
func (c *Client) csrfToken() string {
	for _, ck := range c.httpClient.GetCookies(c.baseURL) {
		if ck.Name == c.csrfCookie {
			return ck.Value
		}
	}
	return ""
}

// endpoint appends path to the base URL, keeping any prefix it was mounted under
func (c *Client) endpoint(path string) string {
	u := *c.baseURL
	u.RawPath = ""
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + "/" + strings.TrimLeft(path, "/")
	return u.String()
}

// origin is the scheme and host of the backend, without any path prefix
func (c *Client) origin() string {
	return c.baseURL.Scheme + "://" + c.baseURL.Host
}

// do sends one request and returns the status code and the (capped) body.
// Transport failures come back as NetworkError; status handling is the caller's.
func (c *Client) do(ctx context.Context, method, path string, payload any, operation string) (int, []byte, error) {
	if c.IsClosed() {
		return 0, nil, fmt.Errorf("client is closed")
	}

	var body io.Reader
	headers := models.DefaultHeaders()
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode %s request: %w", operation, err)
		}
		body = bytes.NewReader(raw)
		headers = models.JSONHeaders()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create %s request: %w", operation, err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	req.Header.Set("Origin", c.origin())
	req.Header.Set("Referer", c.baseURL.String()+"/")

	requestID := uuid.NewString()
	req.Header.Set(models.RequestIDHeader, requestID)

	if method != http.MethodGet {
		if token := c.csrfToken(); token != "" {
			req.Header.Set(c.csrfHeader, token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("request_id", requestID).Str("op", operation).Msg("request failed")
		return 0, nil, apierrors.NewNetworkError(operation, path, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, nil, apierrors.NewNetworkError(operation, path, fmt.Errorf("failed to read response: %w", err))
	}

	c.logger.Debug().
		Str("request_id", requestID).
		Str("op", operation).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request completed")

	return resp.StatusCode, raw, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
