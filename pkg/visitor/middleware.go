package visitor

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/visitorid/pkg/browserenv"
	"github.com/dmitrymomot/visitorid/pkg/identity"
	"github.com/dmitrymomot/visitorid/pkg/logger"
	"github.com/dmitrymomot/visitorid/pkg/reporter"
)

// MiddlewareConfig configures Middleware.
type MiddlewareConfig struct {
	// Secrets sign the identity cookies. The first one signs, all verify.
	Secrets []string
	// Reporter, when set, receives a page view for every identified request.
	Reporter *reporter.Reporter
	// AwaitReport is how long a request waits for the report so that an
	// issued token can still be set as a cookie. Zero dispatches without
	// waiting; the token is then picked up on a later request only if the
	// collector sets it by other means.
	AwaitReport time.Duration
	// TTL of the identity cookies. Zero means identity.DefaultTTL.
	TTL           time.Duration
	CookieOptions []identity.CookieOption
	// Skip excludes requests from identification, e.g. static assets.
	Skip   func(*http.Request) bool
	Logger *slog.Logger
}

// Middleware identifies the visitor behind each request from its headers and
// stores the Visit in the request context (see VisitFromContext). Identity
// values live in signed first-party cookies. It also asks browsers for the
// client hints it reads.
func Middleware(cfg MiddlewareConfig) (func(http.Handler) http.Handler, error) {
	secrets, err := identity.ValidateSecrets(cfg.Secrets)
	if err != nil {
		return nil, err
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = identity.DefaultTTL
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.With(logger.Component("visitor_middleware"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Accept-CH", browserenv.AcceptCH)

			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			store, err := identity.NewCookieStore(w, r, secrets, cfg.CookieOptions...)
			if err != nil {
				log.WarnContext(r.Context(), "identity cookie store unavailable", logger.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			tracker := New(browserenv.FromRequest(r), store, nil, WithTTL(ttl), WithLogger(log))
			v := tracker.Identify(r.Context())
			ctx := WithVisit(r.Context(), v)

			if cfg.Reporter != nil {
				p := Payload(v, "")
				p.Token = cfg.Reporter.ForStore(store).Token(ctx)
				// The detached delivery must never touch the response, so it
				// gets no store; tokens are written here, on the handler
				// goroutine, before next runs.
				pending := cfg.Reporter.ForStore(nil).Dispatch(ctx, p)
				if cfg.AwaitReport > 0 {
					res := pending.AwaitTimeout(cfg.AwaitReport)
					if res.Token != "" {
						if err := store.Set(ctx, identity.KeyToken, res.Token, ttl); err != nil {
							log.WarnContext(ctx, "failed to persist session token", logger.Error(err))
						}
					}
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}, nil
}
