package crawl

import (
	"strings"
	"sync"

	"github.com/fwojciec/sitecrawl"
	"github.com/fwojciec/sitecrawl/bloom"
)

// Compile-time interface verification.
var _ sitecrawl.URLFrontier = (*Frontier)(nil)

// Frontier is an in-memory FIFO URL frontier with exclusion lists.
// Membership is exact; a Bloom filter answers the common "never seen" case
// without touching the visited map. It is safe for concurrent use.
type Frontier struct {
	mu        sync.Mutex
	prefilter *bloom.Filter
	visited   map[string]struct{}
	queue     []string

	excluded       map[string]struct{}
	pathExclusions []string
}

// NewFrontier creates a Frontier sized for n expected URLs with the given
// Bloom false positive rate. Exclusions are normalized before use.
func NewFrontier(n uint, fpRate float64, exclude, excludePaths []string) *Frontier {
	f := &Frontier{
		prefilter: bloom.NewFilter(n, fpRate),
		visited:   make(map[string]struct{}),
		excluded:  make(map[string]struct{}, len(exclude)),
	}
	for _, u := range exclude {
		if n, err := sitecrawl.Normalize(u); err == nil && n != "" {
			f.excluded[n] = struct{}{}
		}
	}
	for _, p := range excludePaths {
		if n, err := sitecrawl.Normalize(p); err == nil && n != "" {
			f.pathExclusions = append(f.pathExclusions, n)
		}
	}
	return f
}

// Push claims url and enqueues it in one step.
// Returns false if the URL was already claimed or is excluded.
func (f *Frontier) Push(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.excludedLocked(url) || !f.claimLocked(url) {
		return false
	}
	f.queue = append(f.queue, url)
	return true
}

// Claim marks url as visited without enqueueing it.
// Returns false if it was already claimed.
func (f *Frontier) Claim(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.claimLocked(url)
}

// Pop removes and returns the first queued URL for which ready returns true.
// A nil ready accepts any URL.
func (f *Frontier) Pop(ready func(url string) bool) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, u := range f.queue {
		if ready != nil && !ready(u) {
			continue
		}
		f.queue = append(f.queue[:i], f.queue[i+1:]...)
		return u, true
	}
	return "", false
}

// Len returns the number of URLs in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Excluded returns true if url is on the exact skip list, or equals or is
// nested under a path exclusion.
func (f *Frontier) Excluded(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.excludedLocked(url)
}

// claimLocked consults the exact set only when the prefilter reports a
// possible hit.
func (f *Frontier) claimLocked(url string) bool {
	if f.prefilter.TestAndAdd(url) {
		if _, ok := f.visited[url]; ok {
			return false
		}
	}
	f.visited[url] = struct{}{}
	return true
}

func (f *Frontier) excludedLocked(url string) bool {
	if _, ok := f.excluded[url]; ok {
		return true
	}
	for _, p := range f.pathExclusions {
		if url == p || strings.HasPrefix(url, p+"/") {
			return true
		}
	}
	return false
}
