// Package bloom provides a probabilistic prefilter for crawl frontier membership.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter is a Bloom filter keyed by normalized URL.
// It is not safe for concurrent use; callers serialize access.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected URLs
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add records url in the filter.
func (f *Filter) Add(url string) {
	f.f.AddString(url)
}

// Test returns true if url might be in the filter.
// A false result is definitive.
func (f *Filter) Test(url string) bool {
	return f.f.TestString(url)
}

// TestAndAdd records url and reports whether it might have been present before.
func (f *Filter) TestAndAdd(url string) bool {
	return f.f.TestAndAddString(url)
}
