package mock

import "github.com/fwojciec/sitecrawl"

var _ sitecrawl.ContentCleaner = (*ContentCleaner)(nil)

// ContentCleaner is a mock implementation of sitecrawl.ContentCleaner.
type ContentCleaner struct {
	CleanFn func(html string) (*sitecrawl.CleanResult, error)
}

func (c *ContentCleaner) Clean(html string) (*sitecrawl.CleanResult, error) {
	return c.CleanFn(html)
}

var _ sitecrawl.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of sitecrawl.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn    func(html, pageURL string, scope sitecrawl.Scope) []sitecrawl.LinkRecord
	RobotsMetaFn      func(html string) (sitecrawl.IndexPolicy, sitecrawl.FollowPolicy)
	FollowableLinksFn func(html, pageURL string) []string
}

func (e *LinkExtractor) ExtractLinks(html, pageURL string, scope sitecrawl.Scope) []sitecrawl.LinkRecord {
	return e.ExtractLinksFn(html, pageURL, scope)
}

func (e *LinkExtractor) RobotsMeta(html string) (sitecrawl.IndexPolicy, sitecrawl.FollowPolicy) {
	return e.RobotsMetaFn(html)
}

func (e *LinkExtractor) FollowableLinks(html, pageURL string) []string {
	return e.FollowableLinksFn(html, pageURL)
}

var _ sitecrawl.ContactExtractor = (*ContactExtractor)(nil)

// ContactExtractor is a mock implementation of sitecrawl.ContactExtractor.
type ContactExtractor struct {
	FindContactPagesFn func(html, pageURL string, scope sitecrawl.Scope, keywords []string) []string
	ExtractEmailsFn    func(html string) []string
	VisibleTextFn      func(html string) string
}

func (e *ContactExtractor) FindContactPages(html, pageURL string, scope sitecrawl.Scope, keywords []string) []string {
	return e.FindContactPagesFn(html, pageURL, scope, keywords)
}

func (e *ContactExtractor) ExtractEmails(html string) []string {
	return e.ExtractEmailsFn(html)
}

func (e *ContactExtractor) VisibleText(html string) string {
	return e.VisibleTextFn(html)
}

var _ sitecrawl.PhoneExtractor = (*PhoneExtractor)(nil)

// PhoneExtractor is a mock implementation of sitecrawl.PhoneExtractor.
type PhoneExtractor struct {
	ExtractPhoneNumbersFn func(text, region string) ([]string, error)
}

func (e *PhoneExtractor) ExtractPhoneNumbers(text, region string) ([]string, error) {
	return e.ExtractPhoneNumbersFn(text, region)
}

var _ sitecrawl.Converter = (*Converter)(nil)

// Converter is a mock implementation of sitecrawl.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
