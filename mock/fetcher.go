package mock

import (
	"context"

	"github.com/fwojciec/sitecrawl"
)

var _ sitecrawl.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of sitecrawl.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string, strategy sitecrawl.Strategy) (*sitecrawl.Response, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string, strategy sitecrawl.Strategy) (*sitecrawl.Response, error) {
	return f.FetchFn(ctx, url, strategy)
}
