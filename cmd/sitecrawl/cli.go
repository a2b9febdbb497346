package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/sitecrawl"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Config  Config
	Crawler sitecrawl.Crawler
	Results sitecrawl.ResultService
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose   bool   `short:"v" help:"Log debug output to stderr"`
	Config    string `type:"path" env:"SITECRAWL_CONFIG" help:"YAML config file (default: search XDG config dirs)"`
	DB        string `type:"path" env:"SITECRAWL_DB" default:"${db}" help:"Results database"`
	UserAgent string `name:"user-agent" help:"User-Agent header for all requests"`
	Robots    bool   `help:"Honor robots.txt disallow rules"`

	Sitemap SitemapCmd `cmd:"" help:"Crawl a whole site through its sitemaps and links"`
	Links   LinksCmd   `cmd:"" help:"Audit the links of a single page"`
	Contact ContactCmd `cmd:"" help:"Find emails and phone numbers on contact pages"`
	Serve   ServeCmd   `cmd:"" help:"Serve the crawl modes over HTTP"`
	Show    ShowCmd    `cmd:"" help:"Print a stored result"`
	List    ListCmd    `cmd:"" help:"List stored results"`
	Delete  DeleteCmd  `cmd:"" help:"Delete a stored result"`
}

// CrawlFlags are the per-job options shared by the crawl commands and serve.
// Zero values keep the configured or default setting.
type CrawlFlags struct {
	Concurrency int           `short:"c" help:"Maximum concurrent fetches"`
	PerDomain   int           `name:"per-domain" help:"Maximum concurrent fetches per host"`
	Delay       time.Duration `help:"Starting delay between requests to one host"`
	MaxDelay    time.Duration `name:"max-delay" help:"Ceiling of the adaptive delay"`
	NoDelay     bool          `name:"no-delay" help:"Disable politeness delays"`
	Timeout     time.Duration `help:"Job time budget"`
	Rendered    bool          `help:"Render pages in headless Chrome"`
	Exclude     []string      `sep:"none" help:"Skip this exact URL (repeatable)"`
	ExcludePath []string      `name:"exclude-path" sep:"none" help:"Skip URLs under this prefix (repeatable)"`
	Keyword     []string      `sep:"none" help:"Contact page URL keyword, replaces the defaults (repeatable)"`
	Subdomains  bool          `help:"Treat subdomains as part of the site"`
	HTML        bool          `name:"html" help:"Include cleaned HTML in page records"`
	Markdown    bool          `help:"Include markdown in page records"`
	Region      string        `help:"Region for phone numbers without a country code"`
}

// Apply returns o with every set flag applied.
func (f CrawlFlags) Apply(o sitecrawl.Options) sitecrawl.Options {
	if f.Concurrency > 0 {
		o.Concurrency = f.Concurrency
	}
	if f.PerDomain > 0 {
		o.ConcurrencyPerDomain = f.PerDomain
	}
	if f.Delay > 0 {
		o.Delay = f.Delay
	}
	if f.MaxDelay > 0 {
		o.MaxDelay = f.MaxDelay
	}
	if f.NoDelay {
		o.NoDelay = true
	}
	if f.Timeout > 0 {
		o.Timeout = f.Timeout
	}
	if f.Rendered {
		o.Strategy = sitecrawl.StrategyRendered
	}
	if len(f.Exclude) > 0 {
		o.Exclude = append(o.Exclude, f.Exclude...)
	}
	if len(f.ExcludePath) > 0 {
		o.ExcludePaths = append(o.ExcludePaths, f.ExcludePath...)
	}
	if len(f.Keyword) > 0 {
		o.ContactKeywords = f.Keyword
	}
	if f.Subdomains {
		o.IncludeSubdomains = true
	}
	if f.HTML {
		o.IncludeHTML = true
	}
	if f.Markdown {
		o.Markdown = true
	}
	if f.Region != "" {
		o.PhoneRegion = f.Region
	}
	return o
}

// OutputFlags control how a crawl result is reported.
type OutputFlags struct {
	Stream bool   `help:"Print records as JSON lines while the crawl runs"`
	NoSave bool   `name:"no-save" help:"Do not store the result"`
	Out    string `type:"path" help:"Also write page records as markdown files to this directory"`
}

// SitemapCmd is the "sitemap" subcommand.
type SitemapCmd struct {
	URL    string      `arg:"" help:"Website to crawl"`
	Crawl  CrawlFlags  `embed:""`
	Output OutputFlags `embed:""`
}

// LinksCmd is the "links" subcommand.
type LinksCmd struct {
	URL    string      `arg:"" help:"Page to audit"`
	Crawl  CrawlFlags  `embed:""`
	Output OutputFlags `embed:""`
}

// ContactCmd is the "contact" subcommand.
type ContactCmd struct {
	URL    string      `arg:"" help:"Website to search for contact details"`
	Crawl  CrawlFlags  `embed:""`
	Output OutputFlags `embed:""`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr  string     `help:"Listen address (default ${addr})"`
	Crawl CrawlFlags `embed:""`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID  string `arg:"" help:"Result ID"`
	Out string `type:"path" help:"Also write page records as markdown files to this directory"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Mode   string `help:"Only results of this mode (sitemap, links, contact)"`
	Seed   string `help:"Only results for this seed URL"`
	Limit  int    `short:"n" default:"20" help:"Maximum number of results"`
	Offset int    `help:"Number of results to skip"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID    string `arg:"" help:"Result ID"`
	Force bool   `short:"f" help:"Confirm deletion"`
}

// crawlFlags returns the job flags of the selected command, if it has any.
func (c *CLI) crawlFlags(command string) (CrawlFlags, bool) {
	switch command {
	case "sitemap":
		return c.Sitemap.Crawl, true
	case "links":
		return c.Links.Crawl, true
	case "contact":
		return c.Contact.Crawl, true
	case "serve":
		return c.Serve.Crawl, true
	}
	return CrawlFlags{}, false
}
