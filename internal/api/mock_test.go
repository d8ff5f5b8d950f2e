package api

import (
	"bytes"
	"errors"
	"io"
	"net/url"
	"sync"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/bandwidth"
)

// recordedRequest is what fakeHTTPClient saw for one Do call
type recordedRequest struct {
	Method string
	URL    string
	Header fhttp.Header
	Body   []byte
}

// fakeResponse is one scripted reply
type fakeResponse struct {
	Status     int
	Body       string
	SetCookies []*fhttp.Cookie
	Err        error
}

// fakeHTTPClient is a tls_client.HttpClient backed by a real cookie jar.
// Responses are served in order; the last one repeats once the script runs out.
type fakeHTTPClient struct {
	mu        sync.Mutex
	jar       tls_client.CookieJar
	responses []fakeResponse
	requests  []recordedRequest
	closed    int
}

var _ tls_client.HttpClient = (*fakeHTTPClient)(nil)

func newFakeHTTPClient(responses ...fakeResponse) *fakeHTTPClient {
	return &fakeHTTPClient{
		jar:       tls_client.NewCookieJar(),
		responses: responses,
	}
}

func (f *fakeHTTPClient) Do(req *fhttp.Request) (*fhttp.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}
	rec := recordedRequest{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header.Clone(),
		Body:   body,
	}
	f.requests = append(f.requests, rec)

	if len(f.responses) == 0 {
		return nil, errors.New("no scripted response")
	}
	next := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}

	if next.Err != nil {
		return nil, next.Err
	}
	if len(next.SetCookies) > 0 {
		f.jar.SetCookies(req.URL, next.SetCookies)
	}

	return &fhttp.Response{
		StatusCode: next.Status,
		Body:       io.NopCloser(bytes.NewReader([]byte(next.Body))),
		Header:     make(fhttp.Header),
		Request:    req,
	}, nil
}

func (f *fakeHTTPClient) lastRequest() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return recordedRequest{}
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeHTTPClient) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeHTTPClient) GetCookies(u *url.URL) []*fhttp.Cookie {
	return f.jar.Cookies(u)
}

func (f *fakeHTTPClient) SetCookies(u *url.URL, cookies []*fhttp.Cookie) {
	f.jar.SetCookies(u, cookies)
}

func (f *fakeHTTPClient) SetCookieJar(jar fhttp.CookieJar) {}

func (f *fakeHTTPClient) GetCookieJar() fhttp.CookieJar {
	return f.jar
}

func (f *fakeHTTPClient) SetProxy(proxyUrl string) error {
	return nil
}

func (f *fakeHTTPClient) GetProxy() string {
	return ""
}

func (f *fakeHTTPClient) SetFollowRedirect(followRedirect bool) {}

func (f *fakeHTTPClient) GetFollowRedirect() bool {
	return false
}

func (f *fakeHTTPClient) CloseIdleConnections() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
}

func (f *fakeHTTPClient) Get(url string) (*fhttp.Response, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeHTTPClient) Head(url string) (*fhttp.Response, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeHTTPClient) Post(url, contentType string, body io.Reader) (*fhttp.Response, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeHTTPClient) GetBandwidthTracker() bandwidth.BandwidthTracker {
	return nil
}
