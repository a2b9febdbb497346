package mock

import (
	"context"

	"github.com/fwojciec/sitecrawl"
)

var _ sitecrawl.ResultService = (*ResultService)(nil)

// ResultService is a mock implementation of sitecrawl.ResultService.
type ResultService struct {
	CreateResultFn   func(ctx context.Context, result *sitecrawl.Result) error
	FindResultByIDFn func(ctx context.Context, id string) (*sitecrawl.Result, error)
	FindResultsFn    func(ctx context.Context, filter sitecrawl.ResultFilter) ([]*sitecrawl.Result, error)
	DeleteResultFn   func(ctx context.Context, id string) error
}

func (s *ResultService) CreateResult(ctx context.Context, result *sitecrawl.Result) error {
	return s.CreateResultFn(ctx, result)
}

func (s *ResultService) FindResultByID(ctx context.Context, id string) (*sitecrawl.Result, error) {
	return s.FindResultByIDFn(ctx, id)
}

func (s *ResultService) FindResults(ctx context.Context, filter sitecrawl.ResultFilter) ([]*sitecrawl.Result, error) {
	return s.FindResultsFn(ctx, filter)
}

func (s *ResultService) DeleteResult(ctx context.Context, id string) error {
	return s.DeleteResultFn(ctx, id)
}

var _ sitecrawl.Crawler = (*Crawler)(nil)

// Crawler is a mock implementation of sitecrawl.Crawler.
type Crawler struct {
	RunFn func(ctx context.Context, req sitecrawl.CrawlRequest) (*sitecrawl.Result, error)
}

func (c *Crawler) Run(ctx context.Context, req sitecrawl.CrawlRequest) (*sitecrawl.Result, error) {
	return c.RunFn(ctx, req)
}
