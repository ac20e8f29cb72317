package devcollector

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/dmitrymomot/visitorid/pkg/fingerprint"
	"github.com/dmitrymomot/visitorid/pkg/logger"
	"github.com/dmitrymomot/visitorid/pkg/reporter"
	"github.com/dmitrymomot/visitorid/pkg/useragent"
)

// VisitPath is where reports are accepted.
const VisitPath = "/api/visit"

const maxBodySize = 64 * 1024

// Stats counts accepted reports. Nothing else about a report is kept.
type Stats struct {
	Reports int            `json:"reports"`
	Tokens  int            `json:"tokensIssued"`
	Pages   map[string]int `json:"pages"`
	Events  map[string]int `json:"events"`
}

// Collector is a development collection endpoint. It logs every report and
// issues session tokens to visitors that have none.
type Collector struct {
	logger   *slog.Logger
	newToken func() string

	mu    sync.Mutex
	stats Stats
}

// Option configures a Collector.
type Option func(*Collector)

func WithLogger(l *slog.Logger) Option {
	return func(c *Collector) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTokenGenerator replaces the UUID token generator.
func WithTokenGenerator(fn func() string) Option {
	return func(c *Collector) {
		if fn != nil {
			c.newToken = fn
		}
	}
}

func New(opts ...Option) *Collector {
	c := &Collector{
		logger:   logger.Nop(),
		newToken: func() string { return uuid.New().String() },
		stats:    Stats{Pages: map[string]int{}, Events: map[string]int{}},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Router returns the collector routes with request ids, real client IPs,
// panic recovery and permissive credentialed CORS.
func (c *Collector) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID, middleware.RealIP, middleware.Recoverer)
	// Storefront pages post with credentials from any origin.
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  func(*http.Request, string) bool { return true },
		AllowedMethods:   []string{http.MethodPost, http.MethodGet},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post(VisitPath, c.handleVisit)
	r.Get("/api/stats", c.handleStats)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ALIVE"))
	})
	return r
}

// Stats returns a copy of the counters.
func (c *Collector) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := Stats{
		Reports: c.stats.Reports,
		Tokens:  c.stats.Tokens,
		Pages:   make(map[string]int, len(c.stats.Pages)),
		Events:  make(map[string]int, len(c.stats.Events)),
	}
	for k, v := range c.stats.Pages {
		out.Pages[k] = v
	}
	for k, v := range c.stats.Events {
		out.Events[k] = v
	}
	return out
}

func (c *Collector) handleVisit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var p reporter.Payload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&p); err != nil {
		c.logger.WarnContext(ctx, "malformed report", logger.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed report"})
		return
	}
	if p.FingerPrint == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "fingerPrint is required"})
		return
	}

	// Errors only flag unusual agents; the parsed value is still useful.
	client, _ := useragent.Parse(r.UserAgent())

	attrs := []any{
		logger.Fingerprint(p.FingerPrint),
		logger.Page(p.Page),
		logger.Event(p.Event),
		slog.String("fp_version", p.FPVersion),
		slog.String("vendor_id", p.VendorID),
		slog.String("url", p.FullPageURL),
		slog.String("referrer", p.Referrer),
		slog.String("client_ip", r.RemoteAddr),
		slog.String("client", client.ShortIdentifier()),
		slog.String("request_id", RequestIDFromContext(ctx)),
	}
	if p.FPVersion == fingerprint.Version {
		parts, err := fingerprint.Parse(fingerprint.Fingerprint(p.FingerPrint))
		if err != nil {
			attrs = append(attrs, logger.Error(err))
		} else {
			attrs = append(attrs, slog.Group("parts",
				slog.String("os", parts.OS),
				slog.String("browser", parts.Browser),
				slog.String("screen", parts.Screen),
				slog.String("canvas", parts.Canvas),
				slog.String("gpu", parts.GPU),
			))
		}
	}

	token, issued := "", false
	if p.Token != nil && *p.Token != "" {
		token = *p.Token
	} else {
		token, issued = c.newToken(), true
	}
	attrs = append(attrs, logger.Token(token), slog.Bool("token_issued", issued))

	c.record(p, issued)
	c.logger.InfoContext(ctx, "report received", attrs...)

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (c *Collector) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, c.Stats())
}

func (c *Collector) record(p reporter.Payload, issued bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Reports++
	if issued {
		c.stats.Tokens++
	}
	c.stats.Pages[p.Page]++
	if p.Event != "" {
		c.stats.Events[p.Event]++
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
