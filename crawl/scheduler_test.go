package crawl_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/sitecrawl"
	"github.com/fwojciec/sitecrawl/crawl"
	"github.com/fwojciec/sitecrawl/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testMocks exposes the collaborators of a test scheduler.
type testMocks struct {
	Fetcher  *mock.Fetcher
	Sitemaps *mock.SitemapService
	Cleaner  *mock.ContentCleaner
	Links    *mock.LinkExtractor
	Contacts *mock.ContactExtractor
	Phones   *mock.PhoneExtractor
}

// newTestScheduler returns a scheduler whose collaborators serve a fake site:
// every fetch succeeds, and links maps a page URL to the URLs it links to.
func newTestScheduler(links map[string][]string) (*crawl.Scheduler, *testMocks) {
	m := &testMocks{
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string, _ sitecrawl.Strategy) (*sitecrawl.Response, error) {
				return okResponse(url), nil
			},
		},
		Sitemaps: &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, _ string) ([]string, error) {
				return nil, nil
			},
		},
		Cleaner: &mock.ContentCleaner{
			CleanFn: func(_ string) (*sitecrawl.CleanResult, error) {
				return &sitecrawl.CleanResult{
					Title:     "Title",
					HTML:      "<p>hello world</p>",
					Text:      "hello world",
					WordCount: 2,
				}, nil
			},
		},
		Links: &mock.LinkExtractor{
			FollowableLinksFn: func(_ string, pageURL string) []string {
				return links[pageURL]
			},
			ExtractLinksFn: func(_ string, _ string, _ sitecrawl.Scope) []sitecrawl.LinkRecord {
				return nil
			},
			RobotsMetaFn: func(_ string) (sitecrawl.IndexPolicy, sitecrawl.FollowPolicy) {
				return sitecrawl.Index, sitecrawl.Follow
			},
		},
		Contacts: &mock.ContactExtractor{
			FindContactPagesFn: func(_ string, pageURL string, _ sitecrawl.Scope, _ []string) []string {
				return links[pageURL]
			},
			ExtractEmailsFn: func(_ string) []string { return nil },
			VisibleTextFn:   func(_ string) string { return "" },
		},
		Phones: &mock.PhoneExtractor{
			ExtractPhoneNumbersFn: func(_, _ string) ([]string, error) { return nil, nil },
		},
	}
	s := &crawl.Scheduler{
		Fetcher:  m.Fetcher,
		Sitemaps: m.Sitemaps,
		Cleaner:  m.Cleaner,
		Links:    m.Links,
		Contacts: m.Contacts,
		Phones:   m.Phones,
	}
	return s, m
}

func okResponse(url string) *sitecrawl.Response {
	return &sitecrawl.Response{
		StatusCode: http.StatusOK,
		FinalURL:   url,
		Header:     http.Header{"Content-Type": {"text/html; charset=utf-8"}},
		Body:       "<html><body><p>hello world</p></body></html>",
	}
}

// fastOptions disables politeness delays and shortens retries.
func fastOptions() sitecrawl.Options {
	return sitecrawl.Options{
		NoDelay:     true,
		RetryDelays: []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond},
		Timeout:     5 * time.Second,
	}
}

func recordsOfType[T sitecrawl.Record](records []sitecrawl.Record) []T {
	var out []T
	for _, r := range records {
		if v, ok := r.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// fetchCounter counts fetches per URL.
type fetchCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *fetchCounter) inc(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[url]++
}

func (c *fetchCounter) snapshot() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

func TestScheduler_Run(t *testing.T) {
	t.Parallel()

	t.Run("implements sitecrawl.Crawler interface", func(t *testing.T) {
		t.Parallel()
		var _ sitecrawl.Crawler = &crawl.Scheduler{}
	})

	t.Run("rejects invalid seeds without running", func(t *testing.T) {
		t.Parallel()

		s, m := newTestScheduler(nil)
		m.Fetcher.FetchFn = func(_ context.Context, _ string, _ sitecrawl.Strategy) (*sitecrawl.Response, error) {
			t.Fatal("fetch must not be called")
			return nil, nil
		}

		result, err := s.Run(context.Background(), sitecrawl.CrawlRequest{Mode: sitecrawl.ModeSitemap, SeedURL: ""})

		assert.Nil(t, result)
		assert.Equal(t, sitecrawl.EINVALID, sitecrawl.ErrorCode(err))
	})

	t.Run("fetches each URL at most once under concurrent discovery", func(t *testing.T) {
		t.Parallel()

		pages := []string{
			"https://acme.com/a", "https://acme.com/b", "https://acme.com/c",
			"https://acme.com/d", "https://acme.com/e",
		}
		links := map[string][]string{"https://acme.com": pages}
		for _, p := range pages {
			// Every page links to every other page, a shared page, and back to the seed.
			links[p] = append(append([]string{"https://acme.com/shared", "https://acme.com/"}, pages...), p+"/")
		}

		s, m := newTestScheduler(links)
		var counter fetchCounter
		m.Fetcher.FetchFn = func(_ context.Context, url string, _ sitecrawl.Strategy) (*sitecrawl.Response, error) {
			counter.inc(url)
			time.Sleep(5 * time.Millisecond)
			return okResponse(url), nil
		}
		m.Sitemaps.DiscoverURLsFn = func(_ context.Context, _ string) ([]string, error) {
			return []string{"https://acme.com/a", "https://acme.com/shared/"}, nil
		}

		opts := fastOptions()
		opts.Concurrency = 4
		opts.ConcurrencyPerDomain = 4
		result, err := s.Run(context.Background(), sitecrawl.CrawlRequest{
			Mode:    sitecrawl.ModeSitemap,
			SeedURL: "https://acme.com",
			Options: opts,
		})

		require.NoError(t, err)
		assert.Equal(t, sitecrawl.StateDrained, result.State)
		counts := counter.snapshot()
		assert.Len(t, counts, 7)
		for url, n := range counts {
			assert.Equal(t, 1, n, "fetched %s more than once", url)
		}
		assert.Len(t, recordsOfType[sitecrawl.PageRecord](result.Records), 7)
	})

	t.Run("retries 503 and records the eventual success", func(t *testing.T) {
		t.Parallel()

		s, m := newTestScheduler(nil)
		var calls atomic.Int32
		m.Fetcher.FetchFn = func(_ context.Context, url string, _ sitecrawl.Strategy) (*sitecrawl.Response, error) {
			if calls.Add(1) <= 3 {
				return nil, &sitecrawl.FetchError{Kind: sitecrawl.FetchStatus, StatusCode: 503}
			}
			return okResponse(url), nil
		}

		result, err := s.Run(context.Background(), sitecrawl.CrawlRequest{
			Mode:    sitecrawl.ModeSitemap,
			SeedURL: "https://acme.com",
			Options: fastOptions(),
		})

		require.NoError(t, err)
		assert.Equal(t, int32(4), calls.Load())
		require.Len(t, result.Records, 1)
		page, ok := result.Records[0].(sitecrawl.PageRecord)
		require.True(t, ok, "expected a page record, got %T", result.Records[0])
		assert.Equal(t, 200, page.StatusCode)
	})

	t.Run("records 404 as an error without retrying", func(t *testing.T) {
		t.Parallel()

		s, m := newTestScheduler(nil)
		var calls atomic.Int32
		m.Fetcher.FetchFn = func(_ context.Context, _ string, _ sitecrawl.Strategy) (*sitecrawl.Response, error) {
			calls.Add(1)
			return nil, &sitecrawl.FetchError{Kind: sitecrawl.FetchStatus, StatusCode: 404}
		}

		result, err := s.Run(context.Background(), sitecrawl.CrawlRequest{
			Mode:    sitecrawl.ModeSitemap,
			SeedURL: "https://acme.com",
			Options: fastOptions(),
		})

		require.NoError(t, err)
		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, sitecrawl.StatusCompleted, result.Status)
		require.Len(t, result.Records, 1)
		assert.Equal(t, sitecrawl.ErrorRecord{
			URL:          "https://acme.com",
			StatusCode:   404,
			ErrorMessage: "fetch failed: HTTP 404",
		}, result.Records[0])
	})

	t.Run("isolated seed drains with one page record", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestScheduler(nil)

		result, err := s.Run(context.Background(), sitecrawl.CrawlRequest{
			Mode:    sitecrawl.ModeSitemap,
			SeedURL: "https://acme.com",
			Options: fastOptions(),
		})

		require.NoError(t, err)
		assert.Equal(t, sitecrawl.StateDrained, result.State)
		assert.Equal(t, sitecrawl.StatusCompleted, result.Status)
		require.Len(t, result.Records, 1)
		page := result.Records[0].(sitecrawl.PageRecord)
		assert.Equal(t, "https://acme.com", page.URL)
		assert.Equal(t, "Title", page.Title)
		assert.Equal(t, "hello world", page.ContentText)
		assert.Equal(t, 2, page.WordCount)
		assert.Equal(t, crawl.ComputeHash("hello world"), page.ContentHash)
		assert.Empty(t, page.ContentHTML, "HTML is opt-in")
	})

	t.Run("isolated seed drains with one contact record", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestScheduler(nil)

		result, err := s.Run(context.Background(), sitecrawl.CrawlRequest{
			Mode:    sitecrawl.ModeContact,
			SeedURL: "https://acme.com",
			Options: fastOptions(),
		})

		require.NoError(t, err)
		assert.Equal(t, sitecrawl.StateDrained, result.State)
		assert.Equal(t, []sitecrawl.Record{sitecrawl.ContactRecord{
			URL:           "https://acme.com",
			SourcePageURL: "https://acme.com",
			Emails:        []string{},
			PhoneNumbers:  []string{},
			Status:        sitecrawl.ContactNotFound,
		}}, result.Records)
	})

	t.Run("isolated seed drains with page info and one summary", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestScheduler(nil)

		result, err := s.Run(context.Background(), sitecrawl.CrawlRequest{
			Mode:    sitecrawl.ModeLinks,
			SeedURL: "https://acme.com",
			Options: fastOptions(),
		})

		require.NoError(t, err)
		assert.Equal(t, sitecrawl.StateDrained, result.State)
		require.Len(t, result.Records, 2)
		assert.IsType(t, sitecrawl.PageInfoRecord{}, result.Records[0])
		assert.Equal(t, sitecrawl.SummaryRecord{}, result.Records[1])
	})

	t.Run("times out and returns partial records", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		t.Cleanup(func() { close(release) })

		s, m := newTestScheduler(map[string][]string{
			"https://acme.com": {"https://acme.com/slow1", "https://acme.com/slow2"},
		})
		m.Fetcher.FetchFn = func(_ context.Context, url string, _ sitecrawl.Strategy) (*sitecrawl.Response, error) {
			if url != "https://acme.com" {
				<-release // never completes within the job
			}
			return okResponse(url), nil
		}

		opts := fastOptions()
		opts.Timeout = 100 * time.Millisecond

		start := time.Now()
		result, err := s.Run(context.Background(), sitecrawl.CrawlRequest{
			Mode:    sitecrawl.ModeSitemap,
			SeedURL: "https://acme.com",
			Options: opts,
		})

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 2*time.Second)
		assert.Equal(t, sitecrawl.StateTimedOut, result.State)
		assert.Equal(t, sitecrawl.StatusTimedOut, result.Status)
		require.Len(t, result.Records, 1)
		assert.Equal(t, "https://acme.com", result.Records[0].(sitecrawl.PageRecord).URL)
	})

	t.Run("caller cancellation stops the job", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		s, m := newTestScheduler(nil)
		m.Fetcher.FetchFn = func(ctx context.Context, _ string, _ sitecrawl.Strategy) (*sitecrawl.Response, error) {
			cancel()
			<-ctx.Done()
			return nil, &sitecrawl.FetchError{Kind: sitecrawl.FetchCanceled, Message: ctx.Err().Error()}
		}

		result, err := s.Run(ctx, sitecrawl.CrawlRequest{
			Mode:    sitecrawl.ModeLinks,
			SeedURL: "https://acme.com",
			Options: fastOptions(),
		})

		require.NoError(t, err)
		assert.Equal(t, sitecrawl.StateCanceled, result.State)
		assert.Equal(t, sitecrawl.StatusCanceled, result.Status)
	})

	t.Run("never fetches excluded URLs", func(t *testing.T) {
		t.Parallel()

		s, m := newTestScheduler(map[string][]string{
			"https://acme.com": {
				"https://acme.com/blog",
				"https://acme.com/private",
				"https://acme.com/private/report",
				"https://acme.com/skip",
			},
		})
		var counter fetchCounter
		m.Fetcher.FetchFn = func(_ context.Context, url string, _ sitecrawl.Strategy) (*sitecrawl.Response, error) {
			counter.inc(url)
			return okResponse(url), nil
		}
		m.Sitemaps.DiscoverURLsFn = func(_ context.Context, _ string) ([]string, error) {
			return []string{"https://acme.com/private/from-sitemap"}, nil
		}

		opts := fastOptions()
		opts.Exclude = []string{"https://acme.com/skip/"}
		opts.ExcludePaths = []string{"https://acme.com/private"}
		_, err := s.Run(context.Background(), sitecrawl.CrawlRequest{
			Mode:    sitecrawl.ModeSitemap,
			SeedURL: "https://acme.com",
			Options: opts,
		})

		require.NoError(t, err)
		assert.Equal(t, map[string]int{"https://acme.com": 1, "https://acme.com/blog": 1}, counter.snapshot())
	})

	t.Run("skips off-site links and denied extensions", func(t *testing.T) {
		t.Parallel()

		s, m := newTestScheduler(map[string][]string{
			"https://acme.com": {
				"https://partner.com/page",
				"https://blog.acme.com/post",
				"https://acme.com/report.PDF",
				"https://acme.com/about",
			},
		})
		var counter fetchCounter
		m.Fetcher.FetchFn = func(_ context.Context, url string, _ sitecrawl.Strategy) (*sitecrawl.Response, error) {
			counter.inc(url)
			return okResponse(url), nil
		}

		_, err := s.Run(context.Background(), sitecrawl.CrawlRequest{
			Mode:    sitecrawl.ModeSitemap,
			SeedURL: "https://acme.com",
			Options: fastOptions(),
		})

		require.NoError(t, err)
		assert.Equal(t, map[string]int{"https://acme.com": 1, "https://acme.com/about": 1}, counter.snapshot())
	})

	t.Run("follows subdomains when enabled", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestScheduler(map[string][]string{
			"https://acme.com": {"https://blog.acme.com/post"},
		})

		opts := fastOptions()
		opts.IncludeSubdomains = true
		result, err := s.Run(context.Background(), sitecrawl.CrawlRequest{
			Mode:    sitecrawl.ModeSitemap,
			SeedURL: "https://acme.com",
			Options: opts,
		})

		require.NoError(t, err)
		assert.Len(t, result.Records, 2)
	})

	t.Run("respects the per-domain concurrency limit", func(t *testing.T) {
		t.Parallel()

		var pages []string
		for _, p := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
			pages = append(pages, "https://acme.com/"+p)
		}
		s, m := newTestScheduler(map[string][]string{"https://acme.com": pages})

		var current, peak atomic.Int32
		m.Fetcher.FetchFn = func(_ context.Context, url string, _ sitecrawl.Strategy) (*sitecrawl.Response, error) {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			current.Add(-1)
			return okResponse(url), nil
		}

		opts := fastOptions()
		opts.Concurrency = 4
		opts.ConcurrencyPerDomain = 2
		result, err := s.Run(context.Background(), sitecrawl.CrawlRequest{
			Mode:    sitecrawl.ModeSitemap,
			SeedURL: "https://acme.com",
			Options: opts,
		})

		require.NoError(t, err)
		assert.Len(t, result.Records, 9)
		assert.LessOrEqual(t, peak.Load(), int32(2))
		assert.Equal(t, int32(2), peak.Load(), "should use the full per-domain allowance")
	})

	t.Run("uses the final URL after redirects", func(t *testing.T) {
		t.Parallel()

		s, m := newTestScheduler(map[string][]string{
			"https://acme.com":       {"https://acme.com/old", "https://acme.com/new"},
			"https://acme.com/other": nil,
		})
		var counter fetchCounter
		m.Fetcher.FetchFn = func(_ context.Context, url string, _ sitecrawl.Strategy) (*sitecrawl.Response, error) {
			counter.inc(url)
			if url == "https://acme.com/old" {
				return okResponse("https://acme.com/new/"), nil
			}
			return okResponse(url), nil
		}

		opts := fastOptions()
		opts.Concurrency = 1
		result, err := s.Run(context.Background(), sitecrawl.CrawlRequest{
			Mode:    sitecrawl.ModeSitemap,
			SeedURL: "https://acme.com",
			Options: opts,
		})

		require.NoError(t, err)
		var urls []string
		for _, p := range recordsOfType[sitecrawl.PageRecord](result.Records) {
			urls = append(urls, p.URL)
		}
		assert.ElementsMatch(t, []string{"https://acme.com", "https://acme.com/new"}, urls)
	})

	t.Run("links mode emits page info, links and summary in order", func(t *testing.T) {
		t.Parallel()

		s, m := newTestScheduler(nil)
		m.Links.RobotsMetaFn = func(_ string) (sitecrawl.IndexPolicy, sitecrawl.FollowPolicy) {
			return sitecrawl.NoIndex, sitecrawl.Follow
		}
		m.Links.ExtractLinksFn = func(_ string, _ string, scope sitecrawl.Scope) []sitecrawl.LinkRecord {
			assert.Equal(t, "acme.com", scope.Domain)
			return []sitecrawl.LinkRecord{
				{URL: "https://acme.com/about", Category: sitecrawl.Internal, FollowPolicy: sitecrawl.Follow},
				{URL: "https://partner.com", Category: sitecrawl.External, FollowPolicy: sitecrawl.NoFollow},
			}
		}

		result, err := s.Run(context.Background(), sitecrawl.CrawlRequest{
			Mode:    sitecrawl.ModeLinks,
			SeedURL: "acme.com",
			Options: fastOptions(),
		})

		require.NoError(t, err)
		require.Len(t, result.Records, 4)
		info := result.Records[0].(sitecrawl.PageInfoRecord)
		assert.Equal(t, sitecrawl.NoIndex, info.IndexStatus)
		assert.Equal(t, "Title", info.Title)
		assert.Equal(t, sitecrawl.RecordLink, result.Records[1].RecordType())
		assert.Equal(t, sitecrawl.RecordLink, result.Records[2].RecordType())
		assert.Equal(t, sitecrawl.SummaryRecord{
			TotalLinks:    2,
			InternalLinks: 1,
			ExternalLinks: 1,
			FollowLinks:   1,
			NofollowLinks: 1,
		}, result.Records[3])
	})

	t.Run("contact mode visits contact pages found on the seed", func(t *testing.T) {
		t.Parallel()

		s, m := newTestScheduler(map[string][]string{
			"https://acme.com":         {"https://acme.com/contact", "https://acme.com/about"},
			"https://acme.com/contact": {"https://acme.com/contact/sales"},
		})
		m.Fetcher.FetchFn = func(_ context.Context, url string, _ sitecrawl.Strategy) (*sitecrawl.Response, error) {
			if url == "https://acme.com/about" {
				return nil, &sitecrawl.FetchError{Kind: sitecrawl.FetchStatus, StatusCode: 404}
			}
			resp := okResponse(url)
			resp.Body = url
			return resp, nil
		}
		m.Contacts.ExtractEmailsFn = func(html string) []string {
			if html == "https://acme.com/contact" {
				return []string{"sales@acme.co"}
			}
			return nil
		}
		m.Contacts.VisibleTextFn = func(html string) string { return html }
		m.Phones.ExtractPhoneNumbersFn = func(text, region string) ([]string, error) {
			assert.Equal(t, "US", region)
			if text == "https://acme.com/contact" {
				return []string{"+14155550100"}, nil
			}
			return nil, nil
		}

		result, err := s.Run(context.Background(), sitecrawl.CrawlRequest{
			Mode:    sitecrawl.ModeContact,
			SeedURL: "https://acme.com",
			Options: fastOptions(),
		})

		require.NoError(t, err)
		contacts := recordsOfType[sitecrawl.ContactRecord](result.Records)
		require.Len(t, contacts, 3, "seed plus two contact pages; contact pages are not expanded")

		bySource := make(map[string]sitecrawl.ContactRecord)
		for _, c := range contacts {
			assert.Equal(t, "https://acme.com", c.URL)
			bySource[c.SourcePageURL] = c
		}
		assert.Equal(t, sitecrawl.ContactNotFound, bySource["https://acme.com"].Status)
		assert.Equal(t, sitecrawl.ContactFound, bySource["https://acme.com/contact"].Status)
		assert.Equal(t, []string{"sales@acme.co"}, bySource["https://acme.com/contact"].Emails)
		assert.Equal(t, []string{"+14155550100"}, bySource["https://acme.com/contact"].PhoneNumbers)
		assert.Equal(t, sitecrawl.ContactError, bySource["https://acme.com/about"].Status)
		assert.Equal(t, "fetch failed: HTTP 404", bySource["https://acme.com/about"].ErrorMessage)
	})

	t.Run("contact mode treats phone extraction failures as warnings", func(t *testing.T) {
		t.Parallel()

		s, m := newTestScheduler(nil)
		m.Contacts.ExtractEmailsFn = func(_ string) []string { return []string{"info@acme.co"} }
		m.Phones.ExtractPhoneNumbersFn = func(_, _ string) ([]string, error) {
			return nil, errors.New("matcher panicked")
		}

		result, err := s.Run(context.Background(), sitecrawl.CrawlRequest{
			Mode:    sitecrawl.ModeContact,
			SeedURL: "https://acme.com",
			Options: fastOptions(),
		})

		require.NoError(t, err)
		require.Len(t, result.Records, 1)
		c := result.Records[0].(sitecrawl.ContactRecord)
		assert.Equal(t, sitecrawl.ContactFound, c.Status)
		assert.Empty(t, c.PhoneNumbers)
	})

	t.Run("adds html and markdown on request", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestScheduler(nil)
		s.Converter = &mock.Converter{
			ConvertFn: func(html string) (string, error) {
				assert.Equal(t, "<p>hello world</p>", html)
				return "hello world", nil
			},
		}

		opts := fastOptions()
		opts.IncludeHTML = true
		opts.Markdown = true
		result, err := s.Run(context.Background(), sitecrawl.CrawlRequest{
			Mode:    sitecrawl.ModeSitemap,
			SeedURL: "https://acme.com",
			Options: opts,
		})

		require.NoError(t, err)
		page := result.Records[0].(sitecrawl.PageRecord)
		assert.Equal(t, "<p>hello world</p>", page.ContentHTML)
		assert.Equal(t, "hello world", page.ContentMarkdown)
	})

	t.Run("non-HTML responses produce empty extraction", func(t *testing.T) {
		t.Parallel()

		s, m := newTestScheduler(nil)
		m.Fetcher.FetchFn = func(_ context.Context, url string, _ sitecrawl.Strategy) (*sitecrawl.Response, error) {
			resp := okResponse(url)
			resp.Header.Set("Content-Type", "application/json")
			return resp, nil
		}

		result, err := s.Run(context.Background(), sitecrawl.CrawlRequest{
			Mode:    sitecrawl.ModeSitemap,
			SeedURL: "https://acme.com",
			Options: fastOptions(),
		})

		require.NoError(t, err)
		page := result.Records[0].(sitecrawl.PageRecord)
		assert.Equal(t, 200, page.StatusCode)
		assert.Empty(t, page.Title)
		assert.Empty(t, page.ContentText)
	})

	t.Run("reports every record through the progress callback", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestScheduler(map[string][]string{
			"https://acme.com": {"https://acme.com/a", "https://acme.com/b"},
		})

		var seen []sitecrawl.Record
		result, err := s.Run(context.Background(), sitecrawl.CrawlRequest{
			Mode:     sitecrawl.ModeSitemap,
			SeedURL:  "https://acme.com",
			Options:  fastOptions(),
			Progress: func(r sitecrawl.Record) { seen = append(seen, r) },
		})

		require.NoError(t, err)
		assert.Equal(t, result.Records, seen)
	})

	t.Run("passes the configured strategy to the fetcher", func(t *testing.T) {
		t.Parallel()

		s, m := newTestScheduler(nil)
		var got sitecrawl.Strategy
		m.Fetcher.FetchFn = func(_ context.Context, url string, strategy sitecrawl.Strategy) (*sitecrawl.Response, error) {
			got = strategy
			return okResponse(url), nil
		}

		opts := fastOptions()
		opts.Strategy = sitecrawl.StrategyRendered
		_, err := s.Run(context.Background(), sitecrawl.CrawlRequest{
			Mode:    sitecrawl.ModeLinks,
			SeedURL: "https://acme.com",
			Options: opts,
		})

		require.NoError(t, err)
		assert.Equal(t, sitecrawl.StrategyRendered, got)
	})

	t.Run("assigns job identity and timestamps", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestScheduler(nil)
		now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		s.Now = func() time.Time { return now }
		s.NewID = func() string { return "job-1" }

		result, err := s.Run(context.Background(), sitecrawl.CrawlRequest{
			Mode:    sitecrawl.ModeLinks,
			SeedURL: "https://ACME.com/",
			Options: fastOptions(),
		})

		require.NoError(t, err)
		assert.Equal(t, "job-1", result.ID)
		assert.Equal(t, "https://acme.com", result.SeedURL)
		assert.Equal(t, sitecrawl.ModeLinks, result.Mode)
		assert.Equal(t, now, result.StartedAt)
		assert.Equal(t, now, result.FinishedAt)
	})
}
