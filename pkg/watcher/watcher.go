package watcher

import (
	"errors"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"github.com/dmitrymomot/visitorid/pkg/browserenv"
)

// ErrNoEventSource is returned by Install when given a nil source.
var ErrNoEventSource = errors.New("watcher.no_event_source")

// DefaultSelectors match add-to-cart controls across common storefront
// themes. A click counts when the target or any ancestor matches one.
var DefaultSelectors = []string{
	// attribute based
	`button[name="add"]`,
	`input[name="add"]`,
	`[name="add-to-cart"]`,
	`[data-add-to-cart]`,
	`[data-action="add-to-cart"]`,
	`[data-testid="add-to-cart"]`,
	`[id^="AddToCart"]`,
	`#add-to-cart`,
	// class based
	`.add-to-cart`,
	`.add_to_cart`,
	`.add-to-cart-button`,
	`.btn-add-to-cart`,
	`.js-add-to-cart`,
	`.product-form__submit`,
	`.product-form__cart-submit`,
	`.single_add_to_cart_button`,
	// form action based
	`form[action*="/cart/add"] button[type="submit"]`,
	`form[action*="/cart/add"] input[type="submit"]`,
}

// Watcher detects add-to-cart clicks delivered to the document root.
type Watcher struct {
	selectors []string
	handler   func(browserenv.ClickEvent)
	logger    *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSelectors replaces DefaultSelectors.
func WithSelectors(selectors ...string) Option {
	return func(w *Watcher) { w.selectors = selectors }
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a watcher calling handler once per matching click.
func New(handler func(browserenv.ClickEvent), opts ...Option) *Watcher {
	w := &Watcher{
		selectors: DefaultSelectors,
		handler:   handler,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Match reports whether target or one of its ancestors matches a selector.
func (w *Watcher) Match(target *goquery.Selection) bool {
	if target == nil || target.Length() == 0 {
		return false
	}
	for _, sel := range w.selectors {
		if target.Closest(sel).Length() > 0 {
			return true
		}
	}
	return false
}

// Install registers a single delegated click listener on src. Matching clicks
// are not de-duplicated. The returned function removes the listener.
func (w *Watcher) Install(src browserenv.EventSource) (func(), error) {
	if src == nil {
		return nil, ErrNoEventSource
	}
	return src.OnClick(w.handle)
}

func (w *Watcher) handle(e browserenv.ClickEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			w.logger.Warn("interaction handler panicked", slog.Any("panic", rec))
		}
	}()
	if w.handler != nil && w.Match(e.Target) {
		w.handler(e)
	}
}
