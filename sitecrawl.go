// Package sitecrawl crawls a website and produces structured records: full-site
// page content discovered through sitemaps and link-following, a link audit of a
// single page, or contact details found on heuristically identified contact pages.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, etree/, rod/, sqlite/).
package sitecrawl

import (
	"context"
	"time"
)

// Mode selects one of the three crawl behaviors.
type Mode string

// Supported crawl modes.
const (
	ModeSitemap Mode = "sitemap"
	ModeLinks   Mode = "links"
	ModeContact Mode = "contact"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeSitemap, ModeLinks, ModeContact:
		return true
	}
	return false
}

// JobStatus is the overall outcome reported to the caller.
type JobStatus string

// Job statuses.
const (
	StatusCompleted JobStatus = "completed"
	StatusTimedOut  JobStatus = "timed_out"
	StatusCanceled  JobStatus = "canceled"
)

// JobState is a state of the crawl job state machine.
type JobState string

// Job states.
const (
	StateSeeding  JobState = "seeding"
	StateRunning  JobState = "running"
	StateDrained  JobState = "drained"
	StateTimedOut JobState = "timed_out"
	StateCanceled JobState = "canceled"
	StateFailed   JobState = "failed"
	StateClosed   JobState = "closed"
)

// ProgressFunc receives each record as it is appended to a job's result.
type ProgressFunc func(Record)

// CrawlRequest identifies one crawl invocation.
type CrawlRequest struct {
	Mode    Mode
	SeedURL string
	Options Options

	// Progress, if set, is called from the job's coordinator for every
	// appended record. It must not block.
	Progress ProgressFunc
}

// Validate returns an EINVALID error if the request cannot start a job.
func (r *CrawlRequest) Validate() error {
	if !r.Mode.Valid() {
		return Errorf(EINVALID, "unknown crawl mode %q", r.Mode)
	}
	if _, err := NormalizeSeed(r.SeedURL); err != nil {
		return err
	}
	switch r.Options.Strategy {
	case "", StrategyStatic, StrategyRendered:
	default:
		return Errorf(EINVALID, "unknown fetch strategy %q", r.Options.Strategy)
	}
	return nil
}

// Result is the finalized output of a crawl job.
type Result struct {
	ID         string    `json:"id"`
	Mode       Mode      `json:"mode"`
	SeedURL    string    `json:"seedUrl"`
	Status     JobStatus `json:"status"`
	State      JobState  `json:"state"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Records    []Record  `json:"data"`
}

// Crawler runs crawl jobs to completion.
type Crawler interface {
	// Run executes the request and returns the finalized result.
	// Only seed validation failures are returned as errors; page-level
	// failures are recorded in the result.
	Run(ctx context.Context, req CrawlRequest) (*Result, error)
}

// ResultService persists finished crawl results.
type ResultService interface {
	// CreateResult stores a result and all of its records.
	CreateResult(ctx context.Context, result *Result) error

	// FindResultByID retrieves a stored result.
	// Returns ENOTFOUND if the result does not exist.
	FindResultByID(ctx context.Context, id string) (*Result, error)

	// FindResults retrieves stored results matching the filter, most
	// recently started first.
	FindResults(ctx context.Context, filter ResultFilter) ([]*Result, error)

	// DeleteResult removes a result and its records.
	// Returns ENOTFOUND if the result does not exist.
	DeleteResult(ctx context.Context, id string) error
}

// PageExporter writes the page records of a result outside the result store.
type PageExporter interface {
	// ExportPages writes every PageRecord of result and returns how many
	// were written.
	ExportPages(ctx context.Context, result *Result) (int, error)
}

// ResultFilter represents a filter passed to FindResults.
type ResultFilter struct {
	ID      *string
	Mode    *Mode
	SeedURL *string

	// Restrict to subset of results.
	Offset int
	Limit  int
}
