// Package http provides the static sitecrawl.Fetcher and the HTTP API server.
// The fetcher returns pages as served, without executing JavaScript, and can
// honor robots.txt rules.
package http

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/fwojciec/sitecrawl"
	"github.com/temoto/robotstxt"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
// Kept consistent with rod.DefaultFetchTimeout.
const DefaultFetchTimeout = 30 * time.Second

// DefaultMaxBodyBytes caps how much of a response body is read.
const DefaultMaxBodyBytes = 10 << 20

// Ensure Fetcher implements sitecrawl.Fetcher at compile time.
var _ sitecrawl.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves pages using plain HTTP requests. The strategy argument
// of Fetch is ignored.
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	userAgent    string
	maxBodyBytes int64

	obeyRobots bool
	mu         sync.Mutex
	robots     map[string]*robotstxt.RobotsData
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
// Defaults to sitecrawl.DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithRobots makes the fetcher refuse URLs disallowed by the site's
// robots.txt for the configured user agent. Rules are fetched once per host.
func WithRobots() Option {
	return func(f *Fetcher) {
		f.obeyRobots = true
	}
}

// WithMaxBodyBytes limits how much of each response body is read.
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodyBytes = n
	}
}

// WithClient replaces the underlying HTTP client. The timeout option does
// not apply to a replaced client.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		userAgent:    sitecrawl.DefaultUserAgent,
		maxBodyBytes: DefaultMaxBodyBytes,
		robots:       make(map[string]*robotstxt.RobotsData),
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{
			Timeout: f.timeout,
		}
	}

	return f
}

// Fetch implements sitecrawl.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, _ sitecrawl.Strategy) (*sitecrawl.Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &sitecrawl.FetchError{Kind: sitecrawl.FetchNetwork, Message: err.Error()}
	}

	if f.obeyRobots {
		allowed, err := f.allowed(ctx, u)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, &sitecrawl.FetchError{Kind: sitecrawl.FetchRobots, Message: "disallowed by robots.txt: " + rawURL}
		}
	}

	resp, body, err := f.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &sitecrawl.FetchError{
			Kind:       sitecrawl.FetchStatus,
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	return &sitecrawl.Response{
		StatusCode: resp.StatusCode,
		FinalURL:   resp.Request.URL.String(),
		Header:     resp.Header,
		Body:       string(body),
	}, nil
}

// get performs a GET request and reads the limited body.
func (f *Fetcher) get(ctx context.Context, rawURL string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, &sitecrawl.FetchError{Kind: sitecrawl.FetchNetwork, Message: err.Error()}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil, classify(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return nil, nil, classify(ctx, err)
	}
	return resp, body, nil
}

// allowed reports whether robots.txt permits fetching u. Hosts whose
// robots.txt cannot be retrieved are allowed.
func (f *Fetcher) allowed(ctx context.Context, u *url.URL) (bool, error) {
	origin := u.Scheme + "://" + u.Host

	f.mu.Lock()
	data, ok := f.robots[origin]
	f.mu.Unlock()

	if !ok {
		resp, body, err := f.get(ctx, origin+"/robots.txt")
		if err != nil {
			if ctx.Err() != nil {
				return false, err
			}
			return true, nil
		}
		data, err = robotstxt.FromStatusAndBytes(resp.StatusCode, body)
		if err != nil {
			data = nil
		}
		f.mu.Lock()
		f.robots[origin] = data
		f.mu.Unlock()
	}

	if data == nil {
		return true, nil
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return data.TestAgent(path, f.userAgent), nil
}

// classify converts a transport error into a *sitecrawl.FetchError.
func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return &sitecrawl.FetchError{Kind: sitecrawl.FetchCanceled, Message: ctx.Err().Error()}
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &sitecrawl.FetchError{Kind: sitecrawl.FetchTimeout, Message: err.Error()}
	}
	return &sitecrawl.FetchError{Kind: sitecrawl.FetchNetwork, Message: err.Error()}
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
