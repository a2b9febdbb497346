package mock

import (
	"context"
	"time"

	"github.com/fwojciec/sitecrawl"
)

var _ sitecrawl.URLFrontier = (*URLFrontier)(nil)

// URLFrontier is a mock implementation of sitecrawl.URLFrontier.
type URLFrontier struct {
	PushFn     func(url string) bool
	ClaimFn    func(url string) bool
	PopFn      func(ready func(url string) bool) (string, bool)
	LenFn      func() int
	ExcludedFn func(url string) bool
}

func (f *URLFrontier) Push(url string) bool {
	return f.PushFn(url)
}

func (f *URLFrontier) Claim(url string) bool {
	return f.ClaimFn(url)
}

func (f *URLFrontier) Pop(ready func(url string) bool) (string, bool) {
	return f.PopFn(ready)
}

func (f *URLFrontier) Len() int {
	return f.LenFn()
}

func (f *URLFrontier) Excluded(url string) bool {
	return f.ExcludedFn(url)
}

var _ sitecrawl.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of sitecrawl.DomainLimiter.
type DomainLimiter struct {
	WaitFn    func(ctx context.Context, domain string) error
	ObserveFn func(domain string, latency time.Duration, failed bool)
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}

func (l *DomainLimiter) Observe(domain string, latency time.Duration, failed bool) {
	l.ObserveFn(domain, latency, failed)
}
