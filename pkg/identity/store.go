package identity

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL keeps identity values for roughly a year.
const DefaultTTL = 365 * 24 * time.Hour

// Well-known keys used by the collectors and the reporter.
const (
	KeyCores  = "_vid_hw_cores"
	KeyMemory = "_vid_hw_memory"
	KeyCanvas = "_vid_canvas"
	KeyToken  = "_vid_token"
)

// Store is an origin-scoped durable key/value mechanism with expiry.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns ErrNotFound for missing or expired keys.
	Get(ctx context.Context, key string) (string, error)

	// Set overwrites the value and resets its expiry. A ttl <= 0 uses DefaultTTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Remember returns the stored value for key or computes, stores and returns a
// fresh one. Stored values are reused verbatim. Store failures never surface:
// a broken store degrades to computing on every call. compute reports ok=false
// for values that must not be persisted (sentinels).
func Remember(ctx context.Context, store Store, key string, ttl time.Duration, compute func() (value string, ok bool)) string {
	if store == nil {
		v, _ := compute()
		return v
	}

	if v, err := safeGet(ctx, store, key); err == nil {
		return v
	}

	v, ok := compute()
	if ok {
		_ = safeSet(ctx, store, key, v, ttl)
	}
	return v
}

// safeGet shields callers from panicking store implementations.
func safeGet(ctx context.Context, store Store, key string) (v string, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = "", ErrStoreUnavailable
		}
	}()
	return store.Get(ctx, key)
}

func safeSet(ctx context.Context, store Store, key, value string, ttl time.Duration) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrStoreUnavailable
		}
	}()
	return store.Set(ctx, key, value, ttl)
}

// IsMiss reports whether err means the key is simply not there.
func IsMiss(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func normalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}

// Prefixed scopes every key of an underlying store, typically by origin, so a
// shared backend keeps storefronts apart.
type Prefixed struct {
	prefix string
	next   Store
}

// WithPrefix wraps next so that every key becomes prefix + ":" + key.
func WithPrefix(next Store, prefix string) *Prefixed {
	return &Prefixed{prefix: prefix + ":", next: next}
}

func (p *Prefixed) Get(ctx context.Context, key string) (string, error) {
	return p.next.Get(ctx, p.prefix+key)
}

func (p *Prefixed) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return p.next.Set(ctx, p.prefix+key, value, ttl)
}

func (p *Prefixed) Delete(ctx context.Context, key string) error {
	return p.next.Delete(ctx, p.prefix+key)
}
