package sitecrawl

import "context"

// SitemapService discovers page URLs from website sitemaps.
type SitemapService interface {
	// DiscoverURLs finds sitemap documents for baseURL (meta tag, then
	// robots.txt, then well-known paths) and expands them recursively into
	// normalized, deduplicated page URLs in document order.
	//
	// Unreachable or malformed sitemaps are skipped. Only context
	// cancellation is returned as an error.
	DiscoverURLs(ctx context.Context, baseURL string) ([]string, error)
}
