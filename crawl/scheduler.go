// Package crawl drives crawl jobs. It owns the URL frontier, applies
// politeness and retry policy, and dispatches fetched pages to one of the
// sitemap, links or contact extraction modes.
package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/fwojciec/sitecrawl"
	"github.com/google/uuid"
)

// Frontier sizing for one job.
const (
	// frontierExpectedURLs is the expected number of URLs for Bloom filter sizing.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the acceptable false positive rate of the prefilter.
	frontierFalsePositiveRate = 0.01
)

var _ sitecrawl.Crawler = (*Scheduler)(nil)

// Scheduler runs crawl jobs. A Scheduler holds no per-job state and may run
// several jobs concurrently.
type Scheduler struct {
	Fetcher  sitecrawl.Fetcher
	Sitemaps sitecrawl.SitemapService
	Cleaner  sitecrawl.ContentCleaner
	Links    sitecrawl.LinkExtractor
	Contacts sitecrawl.ContactExtractor
	Phones   sitecrawl.PhoneExtractor

	// Converter renders page content as markdown when Options.Markdown is set.
	// Optional.
	Converter sitecrawl.Converter

	// Logger receives job lifecycle and warning logs. Nil discards them.
	Logger *slog.Logger

	// NewLimiter builds the politeness limiter for a job. Defaults to an
	// adaptive DomainLimiter configured from the job options.
	NewLimiter func(opts sitecrawl.Options) sitecrawl.DomainLimiter

	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

// job is the state of one Run call. Only the coordinator goroutine touches
// records and state; the frontier is shared with workers.
type job struct {
	id       string
	mode     sitecrawl.Mode
	seed     string
	opts     sitecrawl.Options
	scope    sitecrawl.Scope
	frontier *Frontier
	limiter  sitecrawl.DomainLimiter
	process  processor
	progress sitecrawl.ProgressFunc
	logger   *slog.Logger

	state   sitecrawl.JobState
	records []sitecrawl.Record
	deny    map[string]bool
}

// Run executes req and returns its result. Only request validation errors
// are returned; page failures are recorded in the result and timeouts or
// cancellation return the records accumulated so far.
func (s *Scheduler) Run(ctx context.Context, req sitecrawl.CrawlRequest) (*sitecrawl.Result, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if err := req.Validate(); err != nil {
		logger.Warn("crawl rejected", "state", sitecrawl.StateFailed, "seed", req.SeedURL, "err", err)
		return nil, err
	}
	seed, err := sitecrawl.NormalizeSeed(req.SeedURL)
	if err != nil {
		return nil, err
	}

	opts := req.Options.WithDefaults()
	j := &job{
		id:   s.newID(),
		mode: req.Mode,
		seed: seed,
		opts: opts,
		scope: sitecrawl.Scope{
			Domain:            sitecrawl.Domain(seed),
			IncludeSubdomains: opts.IncludeSubdomains,
		},
		frontier: NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate, opts.Exclude, opts.ExcludePaths),
		limiter:  s.newLimiter(opts),
		process:  s.processorFor(req.Mode),
		progress: req.Progress,
		deny:     make(map[string]bool, len(opts.DenyExtensions)),
	}
	for _, ext := range opts.DenyExtensions {
		j.deny[strings.ToLower(ext)] = true
	}
	j.logger = logger.With("job", j.id, "mode", j.mode)

	result := &sitecrawl.Result{
		ID:        j.id,
		Mode:      j.mode,
		SeedURL:   seed,
		StartedAt: s.now(),
	}

	jobCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	j.transition(sitecrawl.StateSeeding)
	s.seed(jobCtx, j)

	j.transition(sitecrawl.StateRunning)
	drained := s.walk(jobCtx, j)

	switch {
	case drained:
		j.transition(sitecrawl.StateDrained)
		result.Status = sitecrawl.StatusCompleted
	case ctx.Err() != nil:
		j.transition(sitecrawl.StateCanceled)
		result.Status = sitecrawl.StatusCanceled
	default:
		j.transition(sitecrawl.StateTimedOut)
		result.Status = sitecrawl.StatusTimedOut
	}
	result.State = j.state
	result.Records = j.records
	result.FinishedAt = s.now()

	j.logger.Info("crawl finished",
		"seed", seed,
		"status", result.Status,
		"records", len(result.Records),
		"duration", result.FinishedAt.Sub(result.StartedAt))
	j.transition(sitecrawl.StateClosed)

	return result, nil
}

// seed fills the frontier with the mode's starting URLs.
func (s *Scheduler) seed(ctx context.Context, j *job) {
	j.frontier.Push(j.seed)
	if j.mode != sitecrawl.ModeSitemap || s.Sitemaps == nil {
		return
	}

	urls, err := s.Sitemaps.DiscoverURLs(ctx, j.seed)
	if err != nil {
		j.logger.Warn("sitemap discovery interrupted", "err", err)
	}
	var added int
	for _, u := range urls {
		n, err := sitecrawl.Normalize(u)
		if err != nil || !j.scope.Contains(n) {
			continue
		}
		if j.frontier.Push(n) {
			added++
		}
	}
	j.logger.Debug("seeded from sitemaps", "urls", len(urls), "queued", added)
}

// follows reports whether a discovered URL may be enqueued.
func (j *job) follows(rawURL string) bool {
	if !j.scope.Contains(rawURL) {
		return false
	}
	if j.mode != sitecrawl.ModeSitemap {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return !j.deny[strings.ToLower(path.Ext(u.Path))]
}

func (j *job) addRecord(rec sitecrawl.Record) {
	j.records = append(j.records, rec)
	if j.progress != nil {
		j.progress(rec)
	}
}

func (j *job) transition(state sitecrawl.JobState) {
	j.logger.Debug("job state", "from", j.state, "to", state)
	j.state = state
}

func (s *Scheduler) newLimiter(opts sitecrawl.Options) sitecrawl.DomainLimiter {
	if s.NewLimiter != nil {
		return s.NewLimiter(opts)
	}
	return NewDomainLimiter(opts.Delay, opts.MinDelay, opts.MaxDelay)
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Scheduler) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}
