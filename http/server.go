package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/sitecrawl"
)

// ShutdownTimeout is how long Serve waits for in-flight requests on shutdown.
const ShutdownTimeout = 5 * time.Second

// ServiceName identifies the API in health and index responses.
const ServiceName = "sitecrawl"

// Version is reported by the index endpoint.
const Version = "1.0.0"

// Server exposes the crawl modes over HTTP. Every request runs one crawl job
// to completion and answers with its records.
type Server struct {
	Crawler sitecrawl.Crawler

	// Results stores every finished result. Optional.
	Results sitecrawl.ResultService

	// Options are applied to every job.
	Options sitecrawl.Options

	Logger *slog.Logger
	Now    func() time.Time
}

// NewServer returns a Server running jobs on crawler.
func NewServer(crawler sitecrawl.Crawler) *Server {
	return &Server{
		Crawler: crawler,
		Logger:  slog.New(slog.DiscardHandler),
		Now:     time.Now,
	}
}

// endpoint describes one crawl route.
type endpoint struct {
	mode     sitecrawl.Mode
	param    string
	countKey string
	help     string
}

var endpoints = []endpoint{
	{sitecrawl.ModeSitemap, "project_url", "pages_found", "Crawl an entire website through its sitemaps"},
	{sitecrawl.ModeLinks, "url", "items_found", "Audit the links of a single page"},
	{sitecrawl.ModeContact, "url", "contact_info_found", "Find contact details (email, phone)"},
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)
	for _, e := range endpoints {
		mux.HandleFunc("GET /"+string(e.mode), s.handleCrawl(e))
	}
	return mux
}

// Serve listens on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.Logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	routes := make(map[string]string, len(endpoints))
	for _, e := range endpoints {
		routes["/"+string(e.mode)] = e.help
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Website crawler API",
		"version":   Version,
		"endpoints": routes,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": s.Now().Unix(),
		"service":   ServiceName,
	})
}

func (s *Server) handleCrawl(e endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := strings.TrimSpace(r.URL.Query().Get(e.param))
		if target == "" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("missing query parameter %q", e.param))
			return
		}

		result, err := s.Crawler.Run(r.Context(), sitecrawl.CrawlRequest{
			Mode:    e.mode,
			SeedURL: target,
			Options: s.Options,
		})
		if err != nil {
			status := http.StatusInternalServerError
			if sitecrawl.ErrorCode(err) == sitecrawl.EINVALID {
				status = http.StatusBadRequest
			}
			s.Logger.Error("crawl failed", "mode", e.mode, "url", target, "err", err)
			writeError(w, status, sitecrawl.ErrorMessage(err))
			return
		}
		if len(result.Records) == 0 {
			writeError(w, http.StatusInternalServerError, "no data returned")
			return
		}
		s.save(r.Context(), result)

		writeJSON(w, http.StatusOK, map[string]any{
			"status":       "success",
			"scraper_type": e.mode,
			"target_url":   result.SeedURL,
			e.countKey:     len(result.Records),
			"data":         result.Records,
		})
	}
}

// save stores result, logging failures; the response does not depend on it.
func (s *Server) save(ctx context.Context, result *sitecrawl.Result) {
	if s.Results == nil {
		return
	}
	if err := s.Results.CreateResult(context.WithoutCancel(ctx), result); err != nil {
		s.Logger.Error("failed to store result", "id", result.ID, "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"status":        "error",
		"error_message": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
