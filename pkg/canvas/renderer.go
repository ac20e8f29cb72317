package canvas

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/dmitrymomot/visitorid/pkg/identity"
)

// Source provides a drawing surface and the user agent used for the
// deterministic fallback.
type Source interface {
	Canvas(width, height int) (Surface, error)
	UserAgent() (string, error)
}

// Renderer produces the persisted canvas component of the fingerprint.
type Renderer struct {
	store  identity.Store
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
	random func() uint64
}

// Option configures a Renderer.
type Option func(*Renderer)

func WithTTL(ttl time.Duration) Option {
	return func(r *Renderer) { r.ttl = ttl }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithEntropy overrides the clock and random source of the install suffix.
func WithEntropy(now func() time.Time, random func() uint64) Option {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
		if random != nil {
			r.random = random
		}
	}
}

// NewRenderer creates a renderer persisting into store. A nil store disables
// persistence and renders on every call.
func NewRenderer(store identity.Store, opts ...Option) *Renderer {
	r := &Renderer{
		store:  store,
		ttl:    identity.DefaultTTL,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
		random: rand.Uint64,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fingerprint returns the stored canvas value when present. Otherwise it
// draws the scene, hashes it, appends a per-install suffix and stores the
// result. Failures yield "canvas-error-<len(ua) in base 36>", which is never
// stored so a later visit can still succeed.
func (r *Renderer) Fingerprint(ctx context.Context, src Source) string {
	return identity.Remember(ctx, r.store, identity.KeyCanvas, r.ttl, func() (string, bool) {
		hash, err := r.render(src)
		if err != nil {
			r.logger.DebugContext(ctx, "canvas render failed", slog.String("error", err.Error()))
			return Fallback(src), false
		}
		return hash + "-" + r.suffix(), true
	})
}

// Measure renders and hashes the scene without touching the store.
func (r *Renderer) Measure(src Source) (string, error) {
	return r.render(src)
}

func (r *Renderer) render(src Source) (hash string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			hash, err = "", fmt.Errorf("%w: %v", ErrCanvasBlocked, rec)
		}
	}()

	surface, err := src.Canvas(SceneWidth, SceneHeight)
	if err != nil {
		return "", err
	}
	DrawScene(surface)

	data, err := surface.DataURL()
	if err != nil {
		return "", err
	}
	if data == "" {
		return "", ErrEmptyDataURL
	}
	return Hash(data), nil
}

func (r *Renderer) suffix() string {
	random := strconv.FormatUint(r.random(), 36)
	if len(random) > 7 {
		random = random[:7]
	}
	return random + strconv.FormatInt(r.now().UnixMilli(), 36)
}

// Fallback is the deterministic value used when the canvas is unusable.
func Fallback(src Source) (v string) {
	defer func() {
		if recover() != nil {
			v = "canvas-error-0"
		}
	}()
	ua, _ := src.UserAgent()
	return "canvas-error-" + strconv.FormatInt(int64(len(ua)), 36)
}
