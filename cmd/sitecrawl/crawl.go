package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fwojciec/sitecrawl"
	"github.com/fwojciec/sitecrawl/fs"
)

// Run executes the sitemap command.
func (c *SitemapCmd) Run(deps *Dependencies) error {
	return runCrawl(deps, sitecrawl.ModeSitemap, c.URL, c.Crawl, c.Output)
}

// Run executes the links command.
func (c *LinksCmd) Run(deps *Dependencies) error {
	return runCrawl(deps, sitecrawl.ModeLinks, c.URL, c.Crawl, c.Output)
}

// Run executes the contact command.
func (c *ContactCmd) Run(deps *Dependencies) error {
	return runCrawl(deps, sitecrawl.ModeContact, c.URL, c.Crawl, c.Output)
}

// runCrawl runs one job and prints its result as JSON. With --stream each
// record is printed as a JSON line as soon as it is produced and a one-line
// summary goes to stderr.
func runCrawl(deps *Dependencies, mode sitecrawl.Mode, seed string, flags CrawlFlags, out OutputFlags) error {
	req := sitecrawl.CrawlRequest{
		Mode:    mode,
		SeedURL: seed,
		Options: flags.Apply(deps.Config.Options),
	}

	enc := json.NewEncoder(deps.Stdout)
	if out.Stream {
		req.Progress = func(rec sitecrawl.Record) {
			_ = enc.Encode(rec)
		}
	}

	result, err := deps.Crawler.Run(deps.Ctx, req)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitecrawl.ErrorMessage(err))
		return err
	}

	if deps.Results != nil && !out.NoSave {
		if err := deps.Results.CreateResult(deps.Ctx, result); err != nil {
			fmt.Fprintf(deps.Stderr, "error: failed to store result: %s\n", sitecrawl.ErrorMessage(err))
			return err
		}
	}

	if out.Out != "" {
		if err := exportPages(deps, result, out.Out); err != nil {
			return err
		}
	}

	if out.Stream {
		fmt.Fprintf(deps.Stderr, "%s %s: %d records in %s\n",
			result.ID, result.Status, len(result.Records),
			result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))
		return nil
	}

	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// exportPages writes the page records of result as markdown files into dir.
func exportPages(deps *Dependencies, result *sitecrawl.Result, dir string) error {
	dir = filepath.Clean(dir)
	store := fs.NewFileStore(filepath.Dir(dir), filepath.Base(dir))
	n, err := store.ExportPages(deps.Ctx, result)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: failed to export pages: %s\n", sitecrawl.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stderr, "Exported %d pages to %s\n", n, dir)
	return nil
}
