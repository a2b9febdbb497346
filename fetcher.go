package sitecrawl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Strategy selects how a page body is captured.
type Strategy string

// Fetch strategies.
const (
	// StrategyStatic returns the HTML as served.
	StrategyStatic Strategy = "static"

	// StrategyRendered executes page scripts in a browser before capturing the DOM.
	StrategyRendered Strategy = "rendered"
)

// Response is a successful fetch.
type Response struct {
	StatusCode int
	// FinalURL is the URL after redirects.
	FinalURL string
	Header   http.Header
	Body     string
}

// IsHTML reports whether the response declares an HTML body.
// A missing Content-Type is treated as HTML.
func (r *Response) IsHTML() bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	return ct == "" || strings.Contains(ct, "html")
}

// Fetcher retrieves pages over HTTP.
type Fetcher interface {
	// Fetch returns the response for url. Non-2xx responses, transport
	// failures and policy refusals are reported as *FetchError.
	Fetch(ctx context.Context, url string, strategy Strategy) (*Response, error)
}

// FetchErrorKind classifies a fetch failure.
type FetchErrorKind string

// Fetch error kinds.
const (
	FetchNetwork  FetchErrorKind = "network"
	FetchTimeout  FetchErrorKind = "timeout"
	FetchStatus   FetchErrorKind = "status"
	FetchRobots   FetchErrorKind = "robots"
	FetchCanceled FetchErrorKind = "canceled"
)

// FetchError is a typed fetch failure.
type FetchError struct {
	Kind       FetchErrorKind
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Kind == FetchStatus {
		return fmt.Sprintf("fetch failed: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("fetch failed (%s): %s", e.Kind, e.Message)
}

// retryableStatus lists the status codes worth another attempt.
var retryableStatus = map[int]bool{
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
	http.StatusRequestTimeout:      true,
	http.StatusTooManyRequests:     true,
}

// Retryable reports whether the failure may succeed on a later attempt.
func (e *FetchError) Retryable() bool {
	switch e.Kind {
	case FetchNetwork, FetchTimeout:
		return true
	case FetchStatus:
		return retryableStatus[e.StatusCode]
	}
	return false
}

// IsRetryable reports whether err is a retryable *FetchError.
func IsRetryable(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Retryable()
	}
	return false
}

// FetchErrorStatus returns the HTTP status carried by err, or 0.
func FetchErrorStatus(err error) int {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.StatusCode
	}
	return 0
}
