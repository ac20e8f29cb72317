package visitor

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dmitrymomot/visitorid/pkg/browserenv"
	"github.com/dmitrymomot/visitorid/pkg/fingerprint"
	"github.com/dmitrymomot/visitorid/pkg/identity"
	"github.com/dmitrymomot/visitorid/pkg/logger"
	"github.com/dmitrymomot/visitorid/pkg/pageclass"
	"github.com/dmitrymomot/visitorid/pkg/reporter"
	"github.com/dmitrymomot/visitorid/pkg/signals"
	"github.com/dmitrymomot/visitorid/pkg/watcher"
)

// Visit is the outcome of one identification pass.
type Visit struct {
	Fingerprint fingerprint.Fingerprint
	Signals     signals.Bundle
	Page        pageclass.Label
	// URL is nil when the provider has no location.
	URL      *url.URL
	Referrer string
}

// Tracker runs the identification pipeline against one page.
type Tracker struct {
	env       browserenv.Provider
	store     identity.Store
	reporter  *reporter.Reporter
	collector *signals.Collector
	selectors []string
	ttl       time.Duration
	logger    *slog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithTTL sets the lifetime of persisted identity values.
func WithTTL(ttl time.Duration) Option {
	return func(t *Tracker) { t.ttl = ttl }
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithSelectors replaces the add-to-cart selectors used by Start.
func WithSelectors(selectors ...string) Option {
	return func(t *Tracker) { t.selectors = selectors }
}

// WithCollector replaces the signal collector built by New.
func WithCollector(c *signals.Collector) Option {
	return func(t *Tracker) { t.collector = c }
}

// New creates a tracker for env. store may be nil, in which case nothing is
// persisted. rep may be nil, in which case nothing is reported.
func New(env browserenv.Provider, store identity.Store, rep *reporter.Reporter, opts ...Option) *Tracker {
	t := &Tracker{
		env:       env,
		store:     store,
		reporter:  rep,
		selectors: watcher.DefaultSelectors,
		ttl:       identity.DefaultTTL,
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.collector == nil {
		t.collector = signals.NewCollector(store,
			signals.WithTTL(t.ttl),
			signals.WithLogger(t.logger.With(logger.Component("signals"))),
		)
	}
	return t
}

// Identify collects signals, composes the fingerprint and classifies the
// page. It never fails.
func (t *Tracker) Identify(ctx context.Context) Visit {
	b := t.collector.Collect(ctx, t.env)

	v := Visit{
		Fingerprint: fingerprint.Compose(b),
		Signals:     b,
		URL:         signals.Guard[*url.URL](nil, t.env.Location),
		Referrer:    signals.Guard("", t.env.Referrer),
	}
	v.Page = pageclass.Classify(v.URL, signals.Guard[*goquery.Document](nil, t.env.Document))

	t.logger.DebugContext(ctx, "visitor identified", logger.Fingerprint(v.Fingerprint), logger.Page(v.Page))
	return v
}

// ReportPageView identifies the visitor and dispatches a page view. The
// Pending is nil when the tracker has no reporter.
func (t *Tracker) ReportPageView(ctx context.Context) (Visit, *reporter.Pending) {
	v := t.Identify(ctx)
	return v, t.dispatch(ctx, v, "")
}

// ReportAddToCart recomputes the fingerprint and reports an add-to-cart
// event. The page is always reported as a product page since the
// interaction only happens there.
func (t *Tracker) ReportAddToCart(ctx context.Context) (Visit, *reporter.Pending) {
	v := t.Identify(ctx)
	v.Page = pageclass.Product
	return v, t.dispatch(ctx, v, reporter.EventAddToCart)
}

func (t *Tracker) dispatch(ctx context.Context, v Visit, event string) *reporter.Pending {
	if t.reporter == nil {
		return nil
	}
	return t.reporter.Dispatch(ctx, Payload(v, event))
}

// Start reports the initial page view, then re-reports on add-to-cart clicks
// and whenever the page becomes visible again. Hosts without an event source
// get the initial report only. The returned function removes all listeners.
func (t *Tracker) Start(ctx context.Context) (stop func()) {
	t.ReportPageView(ctx)
	return t.Watch(ctx)
}

// Watch installs the add-to-cart and visibility triggers without reporting
// the current page.
func (t *Tracker) Watch(ctx context.Context) (stop func()) {
	src, ok := t.env.(browserenv.EventSource)
	if !ok {
		t.logger.DebugContext(ctx, "provider has no event source, interaction triggers disabled")
		return func() {}
	}

	var removers []func()

	w := watcher.New(func(browserenv.ClickEvent) {
		t.ReportAddToCart(ctx)
	}, watcher.WithSelectors(t.selectors...), watcher.WithLogger(t.logger))
	if rm, err := w.Install(src); err != nil {
		t.logger.WarnContext(ctx, "failed to install interaction watcher", logger.Error(err))
	} else {
		removers = append(removers, rm)
	}

	rm, err := src.OnVisibilityChange(func(visible bool) {
		if visible {
			t.ReportPageView(ctx)
		}
	})
	if err != nil {
		t.logger.WarnContext(ctx, "failed to subscribe to visibility changes", logger.Error(err))
	} else {
		removers = append(removers, rm)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for _, rm := range removers {
				rm()
			}
		})
	}
}

// Payload builds the report for v. The token is left nil for the reporter
// to fill from its store.
func Payload(v Visit, event string) reporter.Payload {
	p := reporter.Payload{
		FingerPrint: v.Fingerprint.String(),
		FPVersion:   fingerprint.Version,
		Page:        v.Page.String(),
		Event:       event,
		Referrer:    v.Referrer,
	}
	if v.URL != nil {
		p.FullPageURL = v.URL.String()
		if v.URL.Scheme != "" && v.URL.Host != "" {
			p.WebsiteURL = v.URL.Scheme + "://" + v.URL.Host
		}
	}
	return p
}
