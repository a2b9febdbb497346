package goquery

import (
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sitecrawl"
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

var (
	noReplyMarkers     = []string{"noreply", "no-reply", "donotreply", "do-not-reply"}
	placeholderDomains = []string{"example", "domain", "test"}
)

var _ sitecrawl.ContactExtractor = (*ContactExtractor)(nil)

// ContactExtractor finds contact pages and email addresses in HTML pages.
type ContactExtractor struct{}

// NewContactExtractor creates a new ContactExtractor.
func NewContactExtractor() *ContactExtractor {
	return &ContactExtractor{}
}

// FindContactPages implements sitecrawl.ContactExtractor.
func (e *ContactExtractor) FindContactPages(html, pageURL string, scope sitecrawl.Scope, keywords []string) []string {
	doc, err := parse(html)
	if err != nil {
		return nil
	}

	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}

	return anchorURLs(doc, pageURL, func(u string) bool {
		if !scope.Contains(u) {
			return false
		}
		u = strings.ToLower(u)
		for _, k := range lowered {
			if strings.Contains(u, k) {
				return true
			}
		}
		return false
	})
}

// ExtractEmails implements sitecrawl.ContactExtractor. Addresses come from
// mailto links and from the visible text.
func (e *ContactExtractor) ExtractEmails(html string) []string {
	doc, err := parse(html)
	if err != nil {
		return nil
	}

	set := make(map[string]bool)
	add := func(addr string) {
		addr = strings.ToLower(strings.TrimSpace(addr))
		if validEmail(addr) {
			set[addr] = true
		}
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if len(href) < len("mailto:") || !strings.EqualFold(href[:len("mailto:")], "mailto:") {
			return
		}
		target := href[len("mailto:"):]
		if i := strings.IndexByte(target, '?'); i >= 0 {
			target = target[:i]
		}
		if unescaped, err := url.PathUnescape(target); err == nil {
			target = unescaped
		}
		for _, addr := range strings.Split(target, ",") {
			add(addr)
		}
	})

	for _, addr := range emailPattern.FindAllString(Text(doc.Selection), -1) {
		add(addr)
	}

	emails := make([]string, 0, len(set))
	for addr := range set {
		emails = append(emails, addr)
	}
	slices.Sort(emails)
	return emails
}

// VisibleText implements sitecrawl.ContactExtractor.
func (e *ContactExtractor) VisibleText(html string) string {
	doc, err := parse(html)
	if err != nil {
		return ""
	}
	return Text(doc.Selection)
}

// validEmail rejects malformed, no-reply and placeholder addresses.
func validEmail(addr string) bool {
	local, domain, ok := strings.Cut(addr, "@")
	if !ok || local == "" || !strings.Contains(domain, ".") || strings.Contains(domain, "@") {
		return false
	}
	for _, m := range noReplyMarkers {
		if strings.Contains(local, m) {
			return false
		}
	}
	for _, m := range placeholderDomains {
		if strings.Contains(domain, m) {
			return false
		}
	}
	return true
}
