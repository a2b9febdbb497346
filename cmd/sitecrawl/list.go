package main

import (
	"fmt"

	"github.com/fwojciec/sitecrawl"
	"github.com/fwojciec/sitecrawl/crawl"
)

const (
	listTimeLayout = "2006-01-02 15:04:05"
	listSeedWidth  = 60
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	filter := sitecrawl.ResultFilter{Limit: c.Limit, Offset: c.Offset}
	if c.Mode != "" {
		mode := sitecrawl.Mode(c.Mode)
		if !mode.Valid() {
			fmt.Fprintf(deps.Stderr, "error: unknown mode %q\n", c.Mode)
			return sitecrawl.Errorf(sitecrawl.EINVALID, "unknown mode %q", c.Mode)
		}
		filter.Mode = &mode
	}
	if c.Seed != "" {
		seed, err := sitecrawl.NormalizeSeed(c.Seed)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", sitecrawl.ErrorMessage(err))
			return err
		}
		filter.SeedURL = &seed
	}

	results, err := deps.Results.FindResults(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitecrawl.ErrorMessage(err))
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No results found. Run 'sitecrawl sitemap', 'links' or 'contact' to create one.")
		return nil
	}

	for _, r := range results {
		fmt.Fprintf(deps.Stdout, "%s  %s  %-7s  %-9s  %4d  %s\n",
			r.ID, r.StartedAt.UTC().Format(listTimeLayout), r.Mode, r.Status, len(r.Records), crawl.TruncateURL(r.SeedURL, listSeedWidth))
	}
	return nil
}
