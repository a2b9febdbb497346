package crawl

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/fwojciec/sitecrawl"
	"golang.org/x/time/rate"
)

var _ sitecrawl.DomainLimiter = (*DomainLimiter)(nil)

// DefaultJitter is the maximum fraction added on top of each domain delay.
const DefaultJitter = 0.5

// DomainLimiter enforces a minimum delay between requests to the same domain.
// Each domain gets a token bucket with a burst of 1 whose interval adapts to
// observed responses: slow or failed responses double it, fast ones decay it
// toward the floor. A random jitter of up to Jitter×delay is added per request.
type DomainLimiter struct {
	mu      sync.Mutex
	domains map[string]*domainDelay

	floor   time.Duration
	ceiling time.Duration
	initial time.Duration

	// Jitter is the maximum fraction of the current delay added to each wait.
	Jitter float64

	// Sleep waits for d or until ctx is done. Tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

type domainDelay struct {
	limiter *rate.Limiter
	delay   time.Duration
}

// NewDomainLimiter creates a DomainLimiter starting at initial and bounded
// by floor and ceiling. A zero initial delay disables waiting.
func NewDomainLimiter(initial, floor, ceiling time.Duration) *DomainLimiter {
	if ceiling < floor {
		ceiling = floor
	}
	return &DomainLimiter{
		domains: make(map[string]*domainDelay),
		floor:   floor,
		ceiling: ceiling,
		initial: clamp(initial, floor, ceiling),
		Jitter:  DefaultJitter,
		Sleep:   sleepContext,
	}
}

// Wait blocks until the rate limit allows a request to the domain.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	d.mu.Lock()
	state := d.stateLocked(domain)
	delay := state.delay
	d.mu.Unlock()

	if err := state.limiter.Wait(ctx); err != nil {
		return err
	}
	if delay <= 0 || d.Jitter <= 0 {
		return ctx.Err()
	}
	extra := time.Duration(rand.Float64() * d.Jitter * float64(delay))
	return d.Sleep(ctx, extra)
}

// Observe adjusts the domain delay after a request completed.
func (d *DomainLimiter) Observe(domain string, latency time.Duration, failed bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	state := d.stateLocked(domain)
	if state.delay <= 0 && d.ceiling <= 0 {
		return
	}

	next := state.delay
	if failed || latency > state.delay {
		next = max(state.delay*2, latency)
	} else {
		next = (state.delay + latency) / 2
	}
	next = clamp(next, d.floor, d.ceiling)
	if next == state.delay {
		return
	}
	state.delay = next
	state.limiter.SetLimit(every(next))
}

// Delay returns the current base delay for domain.
func (d *DomainLimiter) Delay(domain string) time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stateLocked(domain).delay
}

func (d *DomainLimiter) stateLocked(domain string) *domainDelay {
	state, ok := d.domains[domain]
	if !ok {
		state = &domainDelay{
			limiter: rate.NewLimiter(every(d.initial), 1),
			delay:   d.initial,
		}
		d.domains[domain] = state
	}
	return state
}

func every(d time.Duration) rate.Limit {
	if d <= 0 {
		return rate.Inf
	}
	return rate.Every(d)
}

func clamp(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
