package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/sitecrawl"
	"github.com/fwojciec/sitecrawl/crawl"
	"github.com/fwojciec/sitecrawl/etree"
	"github.com/fwojciec/sitecrawl/goquery"
	"github.com/fwojciec/sitecrawl/htmltomarkdown"
	sitecrawlhttp "github.com/fwojciec/sitecrawl/http"
	"github.com/fwojciec/sitecrawl/phonenumbers"
	"github.com/fwojciec/sitecrawl/rod"
	sitecrawlslog "github.com/fwojciec/sitecrawl/slog"
	"github.com/fwojciec/sitecrawl/sqlite"
)

// DefaultAddr is the listen address of serve.
const DefaultAddr = "127.0.0.1:9000"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Default database path, used when neither --db nor SITECRAWL_DB is set.
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Crawler overrides the crawler built from configuration. Used for
	// end-to-end testing.
	Crawler sitecrawl.Crawler

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		errs = append(errs, m.closers[i].Close())
	}
	m.closers = nil
	if m.DB != nil {
		errs = append(errs, m.DB.Close())
		m.DB = nil
	}
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("sitecrawl"),
		kong.Description("Crawl websites for page content, link audits and contact details."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Vars{"db": m.DBPath, "addr": DefaultAddr},
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'sitecrawl --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	command := strings.Fields(kongCtx.Command())[0]

	deps.Logger = newLogger(stderr, cli.Verbose)

	cfg, err := LoadConfig(cli.Config)
	if err != nil {
		return err
	}
	if cli.UserAgent != "" {
		cfg.UserAgent = cli.UserAgent
	}
	if cli.Robots {
		cfg.ObeyRobots = true
	}
	deps.Config = cfg

	m.DB = sqlite.NewDB(cli.DB)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SITECRAWL_DB or --db to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", cli.DB, err)
	}
	defer m.Close()
	deps.Results = sqlite.NewResultService(m.DB)

	if flags, ok := cli.crawlFlags(command); ok {
		opts := flags.Apply(cfg.Options)
		crawler, err := m.crawler(cfg, opts.Strategy == sitecrawl.StrategyRendered, deps.Logger)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed for --rendered")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		deps.Crawler = crawler
	}

	return kongCtx.Run(deps)
}

// crawler composes the crawl engine. The browser is launched only when a
// job may use the rendered strategy.
func (m *Main) crawler(cfg Config, rendered bool, logger *slog.Logger) (sitecrawl.Crawler, error) {
	if m.Crawler != nil {
		return m.Crawler, nil
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = sitecrawl.DefaultUserAgent
	}

	httpOpts := []sitecrawlhttp.Option{sitecrawlhttp.WithUserAgent(userAgent)}
	if cfg.FetchTimeout > 0 {
		httpOpts = append(httpOpts, sitecrawlhttp.WithTimeout(cfg.FetchTimeout))
	}
	if cfg.ObeyRobots {
		httpOpts = append(httpOpts, sitecrawlhttp.WithRobots())
	}
	static := sitecrawlhttp.NewFetcher(httpOpts...)
	m.closers = append(m.closers, static)

	router := &crawl.StrategyRouter{Static: static}
	if rendered {
		var managerOpts []rod.ManagerOption
		if cfg.BrowserBin != "" {
			managerOpts = append(managerOpts, rod.WithBrowserBin(cfg.BrowserBin))
		}
		if cfg.BrowserMaxPages > 0 {
			managerOpts = append(managerOpts, rod.WithMaxPages(cfg.BrowserMaxPages))
		}
		manager, err := rod.NewBrowserManager(managerOpts...)
		if err != nil {
			return nil, err
		}
		rodOpts := []rod.Option{rod.WithUserAgent(userAgent)}
		if cfg.FetchTimeout > 0 {
			rodOpts = append(rodOpts, rod.WithTimeout(cfg.FetchTimeout))
		}
		browser := rod.NewFetcher(manager, rodOpts...)
		m.closers = append(m.closers, browser)
		router.Rendered = browser
	}

	fetcher := sitecrawlslog.NewLoggingFetcher(router, logger)
	sitemaps := sitecrawlslog.NewLoggingSitemapService(etree.NewSitemapResolver(fetcher, logger), logger)

	scheduler := &crawl.Scheduler{
		Fetcher:   fetcher,
		Sitemaps:  sitemaps,
		Cleaner:   goquery.NewCleaner(),
		Links:     goquery.NewLinkExtractor(),
		Contacts:  goquery.NewContactExtractor(),
		Phones:    phonenumbers.NewExtractor(),
		Converter: htmltomarkdown.NewConverter(),
		Logger:    logger,
	}
	return sitecrawlslog.NewLoggingCrawler(scheduler, logger), nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
