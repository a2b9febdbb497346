// Package slog provides logging decorators for sitecrawl services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitecrawl"
)

// Ensure LoggingCrawler implements sitecrawl.Crawler.
var _ sitecrawl.Crawler = (*LoggingCrawler)(nil)

// LoggingCrawler wraps a Crawler and logs one line per job.
type LoggingCrawler struct {
	next   sitecrawl.Crawler
	logger *slog.Logger
}

// NewLoggingCrawler creates a new LoggingCrawler.
func NewLoggingCrawler(next sitecrawl.Crawler, logger *slog.Logger) *LoggingCrawler {
	return &LoggingCrawler{next: next, logger: logger}
}

// Run delegates to the wrapped crawler and logs the outcome.
func (c *LoggingCrawler) Run(ctx context.Context, req sitecrawl.CrawlRequest) (result *sitecrawl.Result, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"mode", req.Mode,
			"seed", req.SeedURL,
			"duration", time.Since(begin),
		}
		if result != nil {
			attrs = append(attrs, "id", result.ID, "status", result.Status, "records", len(result.Records))
		}
		if err != nil {
			attrs = append(attrs, "err", err)
			c.logger.Warn("crawl", attrs...)
			return
		}
		c.logger.Info("crawl", attrs...)
	}(time.Now())
	return c.next.Run(ctx, req)
}
