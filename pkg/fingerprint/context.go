package fingerprint

import (
	"context"
)

type fingerprintContextKey struct{}

// WithContext stores f in ctx.
func WithContext(ctx context.Context, f Fingerprint) context.Context {
	return context.WithValue(ctx, fingerprintContextKey{}, f)
}

// FromContext returns the fingerprint stored by WithContext, if any.
func FromContext(ctx context.Context) (Fingerprint, bool) {
	f, ok := ctx.Value(fingerprintContextKey{}).(Fingerprint)
	return f, ok
}
