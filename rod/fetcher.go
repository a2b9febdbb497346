// Package rod provides the rendered sitecrawl.Fetcher. Pages are loaded in
// headless Chrome and the DOM is captured after scripts have run.
package rod

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fwojciec/sitecrawl"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds navigation, load and capture of one page.
const DefaultFetchTimeout = 30 * time.Second

// Ensure Fetcher implements sitecrawl.Fetcher at compile time.
var _ sitecrawl.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager   *BrowserManager
	timeout   time.Duration
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-page timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides the browser's User-Agent.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a Fetcher backed by manager. The Fetcher closes the
// manager on Close.
func NewFetcher(manager *BrowserManager, opts ...Option) *Fetcher {
	f := &Fetcher{
		manager:   manager,
		timeout:   DefaultFetchTimeout,
		userAgent: sitecrawl.DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch implements sitecrawl.Fetcher. The status code is that of the main
// document response; the strategy argument is ignored.
func (f *Fetcher) Fetch(ctx context.Context, url string, _ sitecrawl.Strategy) (*sitecrawl.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, &sitecrawl.FetchError{Kind: sitecrawl.FetchCanceled, Message: err.Error()}
	}

	page, err := f.manager.NewPage()
	if err != nil {
		return nil, &sitecrawl.FetchError{Kind: sitecrawl.FetchNetwork, Message: err.Error()}
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(f.timeout)
	defer page.CancelTimeout()

	if f.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.userAgent}); err != nil {
			return nil, classify(ctx, err)
		}
	}

	var doc proto.NetworkResponseReceived
	waitDocument := page.WaitEvent(&doc)

	if err := page.Navigate(url); err != nil {
		return nil, classify(ctx, err)
	}
	waitDocument()
	if doc.Response == nil {
		return nil, classify(ctx, context.DeadlineExceeded)
	}
	if doc.Response.Status < 200 || doc.Response.Status > 299 {
		return nil, &sitecrawl.FetchError{
			Kind:       sitecrawl.FetchStatus,
			StatusCode: doc.Response.Status,
			Message:    doc.Response.StatusText,
		}
	}

	if err := page.WaitLoad(); err != nil {
		return nil, classify(ctx, err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, classify(ctx, err)
	}

	finalURL := doc.Response.URL
	if info, err := page.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}

	return &sitecrawl.Response{
		StatusCode: doc.Response.Status,
		FinalURL:   finalURL,
		Header:     http.Header{"Content-Type": []string{doc.Response.MIMEType}},
		Body:       html,
	}, nil
}

// classify converts a browser error into a *sitecrawl.FetchError.
func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return &sitecrawl.FetchError{Kind: sitecrawl.FetchCanceled, Message: ctx.Err().Error()}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &sitecrawl.FetchError{Kind: sitecrawl.FetchTimeout, Message: err.Error()}
	}
	var navErr *rod.NavigationError
	if errors.As(err, &navErr) {
		return &sitecrawl.FetchError{Kind: sitecrawl.FetchNetwork, Message: navErr.Reason}
	}
	return &sitecrawl.FetchError{Kind: sitecrawl.FetchNetwork, Message: err.Error()}
}

// Close releases browser resources.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
