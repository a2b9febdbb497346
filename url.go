package sitecrawl

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Normalize returns the canonical form of an absolute URL used for frontier
// membership. Scheme and host are lower-cased, the fragment and default port
// are dropped, and trailing slashes are stripped from the path. The query
// string is preserved. Opaque URLs (mailto:, tel:) only get their scheme
// lower-cased.
func Normalize(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", Errorf(EINVALID, "invalid URL %q: %v", raw, err)
	}
	normalizeURL(u)
	return u.String(), nil
}

// Resolve resolves href against base and normalizes the result.
func Resolve(base, href string) (string, error) {
	b, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", Errorf(EINVALID, "invalid base URL %q: %v", base, err)
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", Errorf(EINVALID, "invalid reference %q: %v", href, err)
	}
	u := b.ResolveReference(ref)
	normalizeURL(u)
	return u.String(), nil
}

func normalizeURL(u *url.URL) {
	u.Scheme = strings.ToLower(u.Scheme)
	u.Fragment = ""
	u.RawFragment = ""
	if u.Opaque != "" {
		return
	}

	host := strings.ToLower(u.Host)
	switch {
	case u.Scheme == "http" && strings.HasSuffix(host, ":80"):
		host = strings.TrimSuffix(host, ":80")
	case u.Scheme == "https" && strings.HasSuffix(host, ":443"):
		host = strings.TrimSuffix(host, ":443")
	}
	u.Host = host

	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = strings.TrimRight(u.RawPath, "/")
}

// Domain returns the lower-cased hostname of raw, without port.
// Returns an empty string if raw cannot be parsed.
func Domain(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// SameSite reports whether two hostnames belong to the same site. Hosts are
// compared exactly unless includeSubdomains is set, in which case they are
// compared by registrable domain (eTLD+1).
func SameSite(a, b string, includeSubdomains bool) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	if !includeSubdomains {
		return false
	}
	ra, err := publicsuffix.EffectiveTLDPlusOne(a)
	if err != nil {
		return false
	}
	rb, err := publicsuffix.EffectiveTLDPlusOne(b)
	if err != nil {
		return false
	}
	return ra == rb
}

// Scope restricts a crawl job to one site.
type Scope struct {
	Domain            string
	IncludeSubdomains bool
}

// Contains reports whether rawURL is an http(s) URL on the scope's site.
func (s Scope) Contains(rawURL string) bool {
	if !IsHTTP(rawURL) {
		return false
	}
	return SameSite(Domain(rawURL), s.Domain, s.IncludeSubdomains)
}

// IsHTTP reports whether rawURL has an http or https scheme.
func IsHTTP(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// NormalizeSeed prepares a user-supplied seed URL. A missing scheme defaults
// to https. Returns EINVALID if the seed is empty or not an http(s) URL.
func NormalizeSeed(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", Errorf(EINVALID, "seed URL required")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	normalized, err := Normalize(raw)
	if err != nil {
		return "", err
	}
	if !IsHTTP(normalized) {
		return "", Errorf(EINVALID, "seed URL must be http or https: %q", raw)
	}
	return normalized, nil
}
