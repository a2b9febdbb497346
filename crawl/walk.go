package crawl

import (
	"context"

	"github.com/fwojciec/sitecrawl"
	"golang.org/x/sync/errgroup"
)

// pageResult is what a worker reports back for one dequeued URL.
type pageResult struct {
	url        string
	domain     string
	finalURL   string
	records    []sitecrawl.Record
	discovered []string
}

// walk runs the coordinator loop until the frontier drains or ctx is done.
// The coordinator is the only goroutine that appends records or enqueues
// discovered URLs. Workers run under an errgroup bounded by the global
// concurrency limit; the per-domain limit is enforced at dispatch.
//
// It returns true if the job drained. When ctx is done it returns false
// immediately without waiting for in-flight workers; their results are
// discarded.
func (s *Scheduler) walk(ctx context.Context, j *job) bool {
	resultCh := make(chan pageResult)
	done := make(chan struct{})
	defer close(done)

	var g errgroup.Group
	g.SetLimit(j.opts.Concurrency)

	pending := 0
	inflight := make(map[string]int)
	ready := func(u string) bool {
		return inflight[sitecrawl.Domain(u)] < j.opts.ConcurrencyPerDomain
	}

	for {
		if ctx.Err() != nil {
			return false
		}

		// Dispatch as much work as the limits allow.
		for pending < j.opts.Concurrency {
			u, ok := j.frontier.Pop(ready)
			if !ok {
				break
			}
			if j.frontier.Excluded(u) {
				continue
			}
			domain := sitecrawl.Domain(u)
			inflight[domain]++
			pending++
			g.Go(func() error {
				r := j.process(ctx, j, u)
				r.url, r.domain = u, domain
				select {
				case resultCh <- r:
				case <-done:
				}
				return nil
			})
		}

		if pending == 0 {
			_ = g.Wait()
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case r := <-resultCh:
			pending--
			inflight[r.domain]--
			s.handle(j, &r)
		}
	}
}

// handle folds one worker result into the job.
func (s *Scheduler) handle(j *job, r *pageResult) {
	if r.finalURL != "" && r.finalURL != r.url && !j.frontier.Claim(r.finalURL) {
		j.logger.Debug("redirect target already visited", "url", r.url, "final", r.finalURL)
		return
	}

	for _, rec := range r.records {
		j.addRecord(rec)
	}

	var queued int
	for _, raw := range r.discovered {
		u, err := sitecrawl.Normalize(raw)
		if err != nil || !j.follows(u) {
			continue
		}
		if j.frontier.Push(u) {
			queued++
		}
	}
	if queued > 0 {
		j.logger.Debug("links queued", "url", r.url, "queued", queued, "frontier", j.frontier.Len())
	}
}
