package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitecrawl"
)

// FetchFunc is the signature for a single fetch attempt.
type FetchFunc func(ctx context.Context, url string) (*sitecrawl.Response, error)

// FetchWithRetryDelays attempts fetch up to len(delays)+1 times, sleeping
// delays[i] before attempt i+2. Only retryable failures (server errors,
// 408, 429, network and timeout errors) are retried; anything else is
// returned immediately.
func FetchWithRetryDelays(ctx context.Context, url string, fetch FetchFunc, logger *slog.Logger, delays []time.Duration) (*sitecrawl.Response, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := fetch(ctx, url)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !sitecrawl.IsRetryable(err) || attempt >= maxAttempts-1 {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if logger != nil {
			logger.Debug("retrying fetch", "url", url, "attempt", attempt+2, "delay", delays[attempt], "err", err)
		}

		if err := sleepContext(ctx, delays[attempt]); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}
