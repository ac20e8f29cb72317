package visitor

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/visitorid/pkg/fingerprint"
	"github.com/dmitrymomot/visitorid/pkg/logger"
)

type contextKey struct{}

// WithVisit stores v in ctx. The fingerprint is stored alongside so
// fingerprint.FromContext works too.
func WithVisit(ctx context.Context, v Visit) context.Context {
	ctx = fingerprint.WithContext(ctx, v.Fingerprint)
	return context.WithValue(ctx, contextKey{}, v)
}

// VisitFromContext returns the visit stored by WithVisit.
func VisitFromContext(ctx context.Context) (Visit, bool) {
	if ctx == nil {
		return Visit{}, false
	}
	v, ok := ctx.Value(contextKey{}).(Visit)
	return v, ok
}

// LoggerExtractor adds the fingerprint and page of the current visit to log
// records.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		v, ok := VisitFromContext(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		return logger.Group("visit", logger.Fingerprint(v.Fingerprint), logger.Page(v.Page)), true
	}
}
