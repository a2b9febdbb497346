package main_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/sitecrawl"
	main "github.com/fwojciec/sitecrawl/cmd/sitecrawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("reads fetch settings and inline crawl options", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `
user_agent: "testbot/2.0"
obey_robots: true
fetch_timeout: 15s
addr: ":8080"
concurrency: 8
delay: 500ms
retry_delays: [100ms, 200ms]
strategy: rendered
exclude_paths:
  - https://example.com/admin
contact_keywords: [kontakt, impressum]
phone_region: DE
markdown: true
`)

		cfg, err := main.LoadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, "testbot/2.0", cfg.UserAgent)
		assert.True(t, cfg.ObeyRobots)
		assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, 8, cfg.Options.Concurrency)
		assert.Equal(t, 500*time.Millisecond, cfg.Options.Delay)
		assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, cfg.Options.RetryDelays)
		assert.Equal(t, sitecrawl.StrategyRendered, cfg.Options.Strategy)
		assert.Equal(t, []string{"https://example.com/admin"}, cfg.Options.ExcludePaths)
		assert.Equal(t, []string{"kontakt", "impressum"}, cfg.Options.ContactKeywords)
		assert.Equal(t, "DE", cfg.Options.PhoneRegion)
		assert.True(t, cfg.Options.Markdown)
	})

	t.Run("returns ENOTFOUND for a missing explicit path", func(t *testing.T) {
		t.Parallel()

		_, err := main.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))

		assert.Equal(t, sitecrawl.ENOTFOUND, sitecrawl.ErrorCode(err))
	})

	t.Run("returns EINVALID for malformed YAML", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "concurrency: [unterminated\n")

		_, err := main.LoadConfig(path)

		assert.Equal(t, sitecrawl.EINVALID, sitecrawl.ErrorCode(err))
	})

	t.Run("returns EINVALID for a bad duration", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "delay: soon\n")

		_, err := main.LoadConfig(path)

		assert.Equal(t, sitecrawl.EINVALID, sitecrawl.ErrorCode(err))
	})
}
