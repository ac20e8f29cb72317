package reporter

import (
	"log/slog"
	"net/http"
	"time"
)

// Result describes one delivery attempt.
type Result struct {
	Success    bool
	StatusCode int
	// Token is the token issued in this response, if any.
	Token    string
	Duration time.Duration
	Err      error
}

// ResultHook observes every finished delivery.
type ResultHook func(Result)

// Option configures a Reporter.
type Option func(*Reporter)

// WithTimeout bounds each delivery. Default is 10 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Reporter) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the default client. The client should carry a
// cookie jar so the collector's cookies are sent back.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Reporter) {
		if c != nil {
			r.client = c
		}
	}
}

// WithVendorID sets the vendor id used when a payload carries none.
func WithVendorID(id string) Option {
	return func(r *Reporter) { r.vendorID = id }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Reporter) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithOnResult registers a hook called after every delivery.
func WithOnResult(fn ResultHook) Option {
	return func(r *Reporter) { r.onResult = fn }
}

// WithTokenTTL sets how long an issued token is kept.
func WithTokenTTL(ttl time.Duration) Option {
	return func(r *Reporter) { r.tokenTTL = ttl }
}

// WithHeader adds a static header to every request.
func WithHeader(key, value string) Option {
	return func(r *Reporter) {
		if key != "" && value != "" {
			r.headers[key] = value
		}
	}
}
