// Package etree resolves website sitemaps. Sitemap documents are located
// from the page's meta tags, robots.txt or well-known paths and parsed with
// etree.
package etree

import (
	"bufio"
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/beevik/etree"
	"github.com/fwojciec/sitecrawl"
)

// fallbackPaths are probed when neither a meta tag nor robots.txt names a sitemap.
var fallbackPaths = []string{"/sitemap.xml", "/sitemap_index.xml", "/sitemaps.xml"}

// Ensure SitemapResolver implements sitecrawl.SitemapService.
var _ sitecrawl.SitemapService = (*SitemapResolver)(nil)

// SitemapResolver discovers page URLs from website sitemaps.
type SitemapResolver struct {
	fetcher sitecrawl.Fetcher
	logger  *slog.Logger
}

// NewSitemapResolver creates a SitemapResolver that retrieves documents
// with fetcher. A nil logger discards skip notices.
func NewSitemapResolver(fetcher sitecrawl.Fetcher, logger *slog.Logger) *SitemapResolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SitemapResolver{fetcher: fetcher, logger: logger}
}

// DiscoverURLs implements sitecrawl.SitemapService.
func (r *SitemapResolver) DiscoverURLs(ctx context.Context, baseURL string) ([]string, error) {
	sitemaps, err := r.Discover(ctx, baseURL)
	if err != nil {
		return nil, err
	}
	return r.Expand(ctx, sitemaps)
}

// Discover returns the sitemap document URLs for baseURL: the page's
// <meta name="sitemap">, else the first Sitemap line of robots.txt, else
// every well-known sitemap path at the site root.
func (r *SitemapResolver) Discover(ctx context.Context, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, sitecrawl.Errorf(sitecrawl.EINVALID, "invalid base URL: %q", baseURL)
	}
	root := base.Scheme + "://" + base.Host

	if sitemap, err := r.fromMeta(ctx, baseURL); err != nil {
		return nil, err
	} else if sitemap != "" {
		return []string{sitemap}, nil
	}

	if sitemap, err := r.fromRobots(ctx, root+"/robots.txt"); err != nil {
		return nil, err
	} else if sitemap != "" {
		return []string{sitemap}, nil
	}

	urls := make([]string, 0, len(fallbackPaths))
	for _, p := range fallbackPaths {
		urls = append(urls, root+p)
	}
	return urls, nil
}

// fromMeta returns the absolute sitemap URL declared by the base page.
func (r *SitemapResolver) fromMeta(ctx context.Context, pageURL string) (string, error) {
	body, err := r.fetch(ctx, pageURL)
	if err != nil || body == "" {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", nil
	}

	var sitemap string
	doc.Find("meta[name]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.EqualFold(strings.TrimSpace(s.AttrOr("name", "")), "sitemap") {
			return true
		}
		content := strings.TrimSpace(s.AttrOr("content", ""))
		if sitecrawl.IsHTTP(content) {
			sitemap = content
			return false
		}
		return true
	})
	return sitemap, nil
}

// fromRobots returns the first absolute http(s) Sitemap directive of robots.txt.
func (r *SitemapResolver) fromRobots(ctx context.Context, robotsURL string) (string, error) {
	body, err := r.fetch(ctx, robotsURL)
	if err != nil || body == "" {
		return "", err
	}

	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Case-insensitive check for Sitemap: directive
		if !strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			continue
		}
		sitemapURL := strings.TrimSpace(line[len("sitemap:"):])
		if sitecrawl.IsHTTP(sitemapURL) {
			return sitemapURL, nil
		}
	}
	return "", nil
}

// Expand fetches each sitemap and returns the normalized, deduplicated page
// URLs they list, in document order. Sitemap indexes are followed to any
// depth; a sitemap is fetched at most once.
func (r *SitemapResolver) Expand(ctx context.Context, sitemapURLs []string) ([]string, error) {
	e := &expansion{
		resolver: r,
		visited:  make(map[string]bool),
		seen:     make(map[string]bool),
		urls:     []string{},
	}
	for _, u := range sitemapURLs {
		if err := e.process(ctx, u); err != nil {
			return e.urls, err
		}
	}
	return e.urls, nil
}

// expansion is the state of one Expand call.
type expansion struct {
	resolver *SitemapResolver
	visited  map[string]bool
	seen     map[string]bool
	urls     []string
}

// process fetches and parses a sitemap, handling both urlset and sitemapindex.
func (e *expansion) process(ctx context.Context, sitemapURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := sitemapURL
	if n, err := sitecrawl.Normalize(sitemapURL); err == nil {
		key = n
	}
	// Avoid processing the same sitemap twice
	if e.visited[key] {
		return nil
	}
	e.visited[key] = true

	body, err := e.resolver.fetch(ctx, sitemapURL)
	if err != nil {
		return err
	}
	if body == "" {
		return nil
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(body); err != nil {
		e.resolver.logger.Warn("skipping malformed sitemap", "url", sitemapURL, "err", err)
		return nil
	}
	root := doc.Root()
	if root == nil {
		e.resolver.logger.Warn("skipping empty sitemap", "url", sitemapURL)
		return nil
	}

	switch root.Tag {
	case "sitemapindex":
		for _, loc := range locs(root, "sitemap") {
			if err := e.process(ctx, loc); err != nil {
				return err
			}
		}
	case "urlset":
		for _, loc := range locs(root, "url") {
			n, err := sitecrawl.Normalize(loc)
			if err != nil || !sitecrawl.IsHTTP(n) || e.seen[n] {
				continue
			}
			e.seen[n] = true
			e.urls = append(e.urls, n)
		}
	default:
		e.resolver.logger.Warn("skipping unknown sitemap document", "url", sitemapURL, "root", root.Tag)
	}
	return nil
}

// locs returns the trimmed non-empty <loc> values of root's tag children.
func locs(root *etree.Element, tag string) []string {
	var out []string
	for _, el := range root.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// fetch returns the body of u. Failures other than context cancellation are
// logged and reported as an empty body.
func (r *SitemapResolver) fetch(ctx context.Context, u string) (string, error) {
	resp, err := r.fetcher.Fetch(ctx, u, sitecrawl.StrategyStatic)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		r.logger.Debug("skipping unreachable sitemap source", "url", u, "err", err)
		return "", nil
	}
	return resp.Body, nil
}
