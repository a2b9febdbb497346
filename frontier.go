package sitecrawl

import (
	"context"
	"time"
)

// URLFrontier manages a crawl queue with deduplication and exclusion.
type URLFrontier interface {
	// Push claims url and enqueues it in one step.
	// Returns false if the URL was already claimed or is excluded.
	Push(url string) bool

	// Claim marks url as visited without enqueueing it.
	// Returns false if it was already claimed.
	Claim(url string) bool

	// Pop returns the next URL for which ready returns true.
	// Returns false if no such URL is queued.
	Pop(ready func(url string) bool) (string, bool)

	// Len returns the number of URLs in the queue.
	Len() int

	// Excluded returns true if the URL matches an exact or path exclusion.
	Excluded(url string) bool
}

// DomainLimiter provides per-domain politeness delays.
type DomainLimiter interface {
	// Wait blocks until the delay allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error

	// Observe feeds a completed request back into the domain's adaptive delay.
	Observe(domain string, latency time.Duration, failed bool)
}
