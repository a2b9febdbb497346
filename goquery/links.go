package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sitecrawl"
)

var _ sitecrawl.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor audits the anchors and robots directives of HTML pages.
type LinkExtractor struct{}

// NewLinkExtractor creates a new LinkExtractor.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{}
}

// ExtractLinks implements sitecrawl.LinkExtractor. Anchors whose href
// cannot be resolved are skipped.
func (e *LinkExtractor) ExtractLinks(html, pageURL string, scope sitecrawl.Scope) []sitecrawl.LinkRecord {
	doc, err := parse(html)
	if err != nil {
		return nil
	}

	var links []sitecrawl.LinkRecord
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" {
			return
		}
		resolved, err := sitecrawl.Resolve(pageURL, href)
		if err != nil {
			return
		}

		link := sitecrawl.LinkRecord{
			URL:          resolved,
			AnchorText:   strings.TrimSpace(sel.Text()),
			FollowPolicy: sitecrawl.Follow,
			Category:     sitecrawl.External,
			Target:       sel.AttrOr("target", ""),
		}
		if hasToken(sel.AttrOr("rel", ""), "nofollow") {
			link.FollowPolicy = sitecrawl.NoFollow
		}
		if scope.Contains(resolved) {
			link.Category = sitecrawl.Internal
		}
		links = append(links, link)
	})
	return links
}

// RobotsMeta implements sitecrawl.LinkExtractor. Absent directives default
// to index and follow.
func (e *LinkExtractor) RobotsMeta(html string) (sitecrawl.IndexPolicy, sitecrawl.FollowPolicy) {
	index, follow := sitecrawl.Index, sitecrawl.Follow
	doc, err := parse(html)
	if err != nil {
		return index, follow
	}

	robots := strings.ToLower(metaContent(doc, "robots"))
	if strings.Contains(robots, "noindex") {
		index = sitecrawl.NoIndex
	}
	if strings.Contains(robots, "nofollow") {
		follow = sitecrawl.NoFollow
	}
	return index, follow
}

// FollowableLinks implements sitecrawl.LinkExtractor.
func (e *LinkExtractor) FollowableLinks(html, pageURL string) []string {
	doc, err := parse(html)
	if err != nil {
		return nil
	}
	return anchorURLs(doc, pageURL, func(string) bool { return true })
}

// anchorURLs returns the distinct resolved http(s) anchor targets accepted
// by keep, in document order.
func anchorURLs(doc *goquery.Document, pageURL string, keep func(string) bool) []string {
	seen := make(map[string]bool)
	var urls []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		resolved, err := sitecrawl.Resolve(pageURL, href)
		if err != nil || !sitecrawl.IsHTTP(resolved) || seen[resolved] || !keep(resolved) {
			return
		}
		seen[resolved] = true
		urls = append(urls, resolved)
	})
	return urls
}

func parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, sitecrawl.Errorf(sitecrawl.EPARSE, "failed to parse HTML: %v", err)
	}
	return doc, nil
}

// hasToken reports whether the space-separated list contains token, ignoring case.
func hasToken(list, token string) bool {
	for _, t := range strings.Fields(list) {
		if strings.EqualFold(t, token) {
			return true
		}
	}
	return false
}
