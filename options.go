package sitecrawl

import "time"

// Default crawl settings.
const (
	DefaultConcurrency          = 4
	DefaultConcurrencyPerDomain = 2
	DefaultDelay                = 1 * time.Second
	DefaultMaxDelay             = 10 * time.Second
	DefaultTimeout              = 180 * time.Second
	DefaultPhoneRegion          = "US"
	DefaultUserAgent            = "Mozilla/5.0 (compatible; sitecrawl/1.0)"
)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// DefaultContactKeywords returns the URL substrings that mark a contact page.
func DefaultContactKeywords() []string {
	return []string{
		"contact", "contactus", "contact-us", "about", "aboutus", "about-us",
		"get-in-touch", "connect", "support", "help", "info", "reach-us",
		"getintouch", "contact-form", "reach-out", "customer-service",
	}
}

// DefaultDenyExtensions returns file extensions never followed in sitemap mode.
func DefaultDenyExtensions() []string {
	return []string{".pdf", ".doc", ".docx", ".jpg", ".jpeg", ".png", ".gif", ".zip"}
}

// Options tunes a crawl job. Zero values are replaced by defaults in WithDefaults.
type Options struct {
	// Concurrency caps in-flight fetches across the whole job.
	Concurrency int `yaml:"concurrency"`

	// ConcurrencyPerDomain caps in-flight fetches to a single host.
	ConcurrencyPerDomain int `yaml:"concurrency_per_domain"`

	// Delay is the starting per-domain delay between requests.
	Delay time.Duration `yaml:"delay"`

	// MinDelay is the floor of the adaptive delay. Defaults to Delay.
	MinDelay time.Duration `yaml:"min_delay"`

	// MaxDelay is the ceiling of the adaptive delay.
	MaxDelay time.Duration `yaml:"max_delay"`

	// NoDelay disables politeness delays entirely; useful against local servers.
	NoDelay bool `yaml:"no_delay"`

	// Timeout is the job-wide wall-clock budget.
	Timeout time.Duration `yaml:"timeout"`

	// RetryDelays are the waits between attempts; len+1 attempts are made.
	RetryDelays []time.Duration `yaml:"retry_delays"`

	// Strategy selects static or script-rendered fetching for page requests.
	Strategy Strategy `yaml:"strategy"`

	// Exclude lists URLs skipped by exact (normalized) match.
	Exclude []string `yaml:"exclude"`

	// ExcludePaths lists URL prefixes; the prefix itself and anything nested under it is skipped.
	ExcludePaths []string `yaml:"exclude_paths"`

	// ContactKeywords overrides DefaultContactKeywords in contact mode.
	ContactKeywords []string `yaml:"contact_keywords"`

	// DenyExtensions overrides DefaultDenyExtensions in sitemap mode.
	DenyExtensions []string `yaml:"deny_extensions"`

	// IncludeSubdomains scopes by registrable domain instead of exact host.
	IncludeSubdomains bool `yaml:"include_subdomains"`

	// IncludeHTML adds cleaned content HTML to page records.
	IncludeHTML bool `yaml:"include_html"`

	// Markdown adds a markdown rendering of the cleaned content to page records.
	Markdown bool `yaml:"markdown"`

	// PhoneRegion is the region assumed for phone numbers written without a country code.
	PhoneRegion string `yaml:"phone_region"`
}

// WithDefaults returns a copy of o with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.ConcurrencyPerDomain <= 0 {
		o.ConcurrencyPerDomain = DefaultConcurrencyPerDomain
	}
	if o.ConcurrencyPerDomain > o.Concurrency {
		o.ConcurrencyPerDomain = o.Concurrency
	}
	if o.NoDelay {
		o.Delay, o.MinDelay, o.MaxDelay = 0, 0, 0
	} else {
		if o.Delay <= 0 {
			o.Delay = DefaultDelay
		}
		if o.MinDelay <= 0 {
			o.MinDelay = o.Delay
		}
		if o.MaxDelay <= 0 {
			o.MaxDelay = DefaultMaxDelay
		}
		if o.MaxDelay < o.MinDelay {
			o.MaxDelay = o.MinDelay
		}
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.RetryDelays == nil {
		o.RetryDelays = DefaultRetryDelays()
	}
	if o.Strategy == "" {
		o.Strategy = StrategyStatic
	}
	if len(o.ContactKeywords) == 0 {
		o.ContactKeywords = DefaultContactKeywords()
	}
	if o.DenyExtensions == nil {
		o.DenyExtensions = DefaultDenyExtensions()
	}
	if o.PhoneRegion == "" {
		o.PhoneRegion = DefaultPhoneRegion
	}
	return o
}
