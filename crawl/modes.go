package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/sitecrawl"
)

// processor fetches one URL and extracts the records for a crawl mode.
// It runs on a worker goroutine and must not touch job records.
type processor func(ctx context.Context, j *job, url string) pageResult

func (s *Scheduler) processorFor(mode sitecrawl.Mode) processor {
	switch mode {
	case sitecrawl.ModeLinks:
		return s.processLinks
	case sitecrawl.ModeContact:
		return s.processContact
	default:
		return s.processPage
	}
}

// fetch applies politeness and retry policy to a single URL.
func (s *Scheduler) fetch(ctx context.Context, j *job, url string) (*sitecrawl.Response, error) {
	domain := sitecrawl.Domain(url)
	attempt := func(ctx context.Context, u string) (*sitecrawl.Response, error) {
		if err := j.limiter.Wait(ctx, domain); err != nil {
			return nil, &sitecrawl.FetchError{Kind: sitecrawl.FetchCanceled, Message: err.Error()}
		}
		begin := time.Now()
		resp, err := s.Fetcher.Fetch(ctx, u, j.opts.Strategy)
		j.limiter.Observe(domain, time.Since(begin), sitecrawl.IsRetryable(err))
		return resp, err
	}
	return FetchWithRetryDelays(ctx, url, attempt, j.logger, j.opts.RetryDelays)
}

// processPage produces a PageRecord and the page's followable links.
func (s *Scheduler) processPage(ctx context.Context, j *job, url string) pageResult {
	var r pageResult
	resp, err := s.fetch(ctx, j, url)
	if err != nil {
		r.records = []sitecrawl.Record{errorRecord(url, err)}
		return r
	}

	r.finalURL = finalURL(resp, url)
	rec := sitecrawl.PageRecord{URL: r.finalURL, StatusCode: resp.StatusCode}
	if resp.IsHTML() {
		cleaned := s.clean(j, r.finalURL, resp.Body)
		rec.Title = cleaned.Title
		rec.Description = cleaned.Description
		rec.H1 = cleaned.H1
		rec.ContentText = cleaned.Text
		rec.WordCount = cleaned.WordCount
		if j.opts.IncludeHTML {
			rec.ContentHTML = cleaned.HTML
		}
		if j.opts.Markdown && s.Converter != nil && cleaned.HTML != "" {
			md, err := s.Converter.Convert(cleaned.HTML)
			if err != nil {
				j.logger.Warn("markdown conversion failed", "url", r.finalURL, "err", err)
			}
			rec.ContentMarkdown = md
		}
		r.discovered = s.Links.FollowableLinks(resp.Body, r.finalURL)
	}
	rec.ContentHash = ComputeHash(rec.ContentText)
	r.records = []sitecrawl.Record{rec}
	return r
}

// processLinks audits one page: page info, one record per anchor, and a summary.
func (s *Scheduler) processLinks(ctx context.Context, j *job, url string) pageResult {
	var r pageResult
	resp, err := s.fetch(ctx, j, url)
	if err != nil {
		r.records = []sitecrawl.Record{errorRecord(url, err)}
		return r
	}

	r.finalURL = finalURL(resp, url)
	info := sitecrawl.PageInfoRecord{
		URL:          r.finalURL,
		StatusCode:   resp.StatusCode,
		IndexStatus:  sitecrawl.Index,
		FollowStatus: sitecrawl.Follow,
	}
	var links []sitecrawl.LinkRecord
	if resp.IsHTML() {
		cleaned := s.clean(j, r.finalURL, resp.Body)
		info.Title = cleaned.Title
		info.Description = cleaned.Description
		info.IndexStatus, info.FollowStatus = s.Links.RobotsMeta(resp.Body)
		links = s.Links.ExtractLinks(resp.Body, r.finalURL, j.scope)
	}

	r.records = make([]sitecrawl.Record, 0, len(links)+2)
	r.records = append(r.records, info)
	for _, l := range links {
		r.records = append(r.records, l)
	}
	r.records = append(r.records, sitecrawl.Summarize(links))
	return r
}

// processContact extracts emails and phone numbers from one page. The seed
// page additionally yields the contact pages to visit next.
func (s *Scheduler) processContact(ctx context.Context, j *job, url string) pageResult {
	var r pageResult
	rec := sitecrawl.ContactRecord{
		URL:           j.seed,
		SourcePageURL: url,
		Emails:        []string{},
		PhoneNumbers:  []string{},
	}

	resp, err := s.fetch(ctx, j, url)
	if err != nil {
		rec.Status = sitecrawl.ContactError
		rec.ErrorMessage = err.Error()
		r.records = []sitecrawl.Record{rec}
		return r
	}

	r.finalURL = finalURL(resp, url)
	rec.SourcePageURL = r.finalURL
	if resp.IsHTML() {
		if emails := s.Contacts.ExtractEmails(resp.Body); len(emails) > 0 {
			rec.Emails = emails
		}
		phones, err := s.Phones.ExtractPhoneNumbers(s.Contacts.VisibleText(resp.Body), j.opts.PhoneRegion)
		if err != nil {
			j.logger.Warn("phone extraction failed", "url", r.finalURL, "err", err)
		} else if len(phones) > 0 {
			rec.PhoneNumbers = phones
		}
		if url == j.seed {
			r.discovered = s.Contacts.FindContactPages(resp.Body, r.finalURL, j.scope, j.opts.ContactKeywords)
		}
	}

	rec.Status = sitecrawl.ContactNotFound
	if len(rec.Emails) > 0 || len(rec.PhoneNumbers) > 0 {
		rec.Status = sitecrawl.ContactFound
	}
	r.records = []sitecrawl.Record{rec}
	return r
}

// clean runs the content cleaner, degrading to empty extraction on failure.
func (s *Scheduler) clean(j *job, url, html string) *sitecrawl.CleanResult {
	cleaned, err := s.Cleaner.Clean(html)
	if err != nil || cleaned == nil {
		j.logger.Warn("content extraction failed", "url", url, "err", err)
		return &sitecrawl.CleanResult{}
	}
	return cleaned
}

func errorRecord(url string, err error) sitecrawl.ErrorRecord {
	return sitecrawl.ErrorRecord{
		URL:          url,
		StatusCode:   sitecrawl.FetchErrorStatus(err),
		ErrorMessage: err.Error(),
	}
}

// finalURL returns the normalized post-redirect URL, or requested if the
// response does not carry a usable one.
func finalURL(resp *sitecrawl.Response, requested string) string {
	if resp.FinalURL == "" {
		return requested
	}
	n, err := sitecrawl.Normalize(resp.FinalURL)
	if err != nil {
		return requested
	}
	return n
}
