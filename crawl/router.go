package crawl

import (
	"context"

	"github.com/fwojciec/sitecrawl"
)

var _ sitecrawl.Fetcher = (*StrategyRouter)(nil)

// StrategyRouter dispatches fetches to the fetcher for the requested
// strategy. Rendered requests fall back to Static when no rendered fetcher
// is configured.
type StrategyRouter struct {
	Static   sitecrawl.Fetcher
	Rendered sitecrawl.Fetcher
}

// Fetch implements sitecrawl.Fetcher.
func (r *StrategyRouter) Fetch(ctx context.Context, url string, strategy sitecrawl.Strategy) (*sitecrawl.Response, error) {
	if strategy == sitecrawl.StrategyRendered && r.Rendered != nil {
		return r.Rendered.Fetch(ctx, url, strategy)
	}
	return r.Static.Fetch(ctx, url, sitecrawl.StrategyStatic)
}
