package main

import (
	sitecrawlhttp "github.com/fwojciec/sitecrawl/http"
)

// Run executes the serve command. It blocks until the context is canceled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	addr := c.Addr
	if addr == "" {
		addr = deps.Config.Addr
	}
	if addr == "" {
		addr = DefaultAddr
	}

	srv := sitecrawlhttp.NewServer(deps.Crawler)
	srv.Results = deps.Results
	srv.Options = c.Crawl.Apply(deps.Config.Options)
	if deps.Logger != nil {
		srv.Logger = deps.Logger
	}
	return srv.Serve(deps.Ctx, addr)
}
