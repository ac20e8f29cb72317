package identity_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/visitorid/pkg/identity"
)

const testSecret = "this-is-a-very-long-secret-key-32-chars-long"

func storeContract(t *testing.T, store identity.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, identity.ErrNotFound)

	require.NoError(t, store.Set(ctx, identity.KeyCores, "8", time.Hour))
	v, err := store.Get(ctx, identity.KeyCores)
	require.NoError(t, err)
	assert.Equal(t, "8", v)

	require.NoError(t, store.Set(ctx, identity.KeyCores, "16", 0))
	v, err = store.Get(ctx, identity.KeyCores)
	require.NoError(t, err)
	assert.Equal(t, "16", v)

	require.NoError(t, store.Delete(ctx, identity.KeyCores))
	_, err = store.Get(ctx, identity.KeyCores)
	assert.ErrorIs(t, err, identity.ErrNotFound)

	assert.NoError(t, store.Delete(ctx, "never-set"))
	assert.ErrorIs(t, store.Set(ctx, "", "x", time.Hour), identity.ErrEmptyKey)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	storeContract(t, identity.NewMemoryStore())
}

func TestMemoryStoreExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := identity.NewMemoryStore(identity.WithClock(func() time.Time { return now }))

	require.NoError(t, store.Set(ctx, identity.KeyCanvas, "abc", time.Minute))
	now = now.Add(59 * time.Second)
	v, err := store.Get(ctx, identity.KeyCanvas)
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	now = now.Add(time.Second)
	_, err = store.Get(ctx, identity.KeyCanvas)
	assert.ErrorIs(t, err, identity.ErrNotFound)
}

func TestMemoryStoreExpiryKeepsConcurrentSet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var (
		store *identity.MemoryStore
		armed atomic.Bool
	)
	store = identity.NewMemoryStore(identity.WithClock(func() time.Time {
		// Lands between the expired read and the cleanup in Get.
		if armed.CompareAndSwap(true, false) {
			require.NoError(t, store.Set(ctx, identity.KeyCanvas, "fresh", time.Hour))
		}
		return now
	}))

	require.NoError(t, store.Set(ctx, identity.KeyCanvas, "stale", time.Minute))
	now = now.Add(time.Minute)
	armed.Store(true)

	v, err := store.Get(ctx, identity.KeyCanvas)
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)

	v, err = store.Get(ctx, identity.KeyCanvas)
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}

func TestRedisStore(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := identity.NewRedisStore(client)
	storeContract(t, store)
	require.NoError(t, store.Healthcheck(context.Background()))

	require.NoError(t, store.Set(context.Background(), identity.KeyToken, "tok", time.Minute))
	assert.Equal(t, time.Minute, mr.TTL(identity.KeyToken))
	mr.FastForward(time.Minute)
	_, err := store.Get(context.Background(), identity.KeyToken)
	assert.ErrorIs(t, err, identity.ErrNotFound)
}

func TestConnectRedis(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)
		client, err := identity.ConnectRedis(context.Background(), identity.RedisConfig{
			ConnectionURL:  "redis://" + mr.Addr() + "/0",
			RetryAttempts:  1,
			ConnectTimeout: time.Second,
		})
		require.NoError(t, err)
		assert.NoError(t, client.Close())
	})

	t.Run("invalid url", func(t *testing.T) {
		t.Parallel()
		_, err := identity.ConnectRedis(context.Background(), identity.RedisConfig{
			ConnectionURL: "not-a-url://",
		})
		assert.ErrorIs(t, err, identity.ErrInvalidRedisURL)
	})

	t.Run("unreachable", func(t *testing.T) {
		t.Parallel()
		_, err := identity.ConnectRedis(context.Background(), identity.RedisConfig{
			ConnectionURL:  "redis://127.0.0.1:1/0",
			RetryAttempts:  2,
			RetryInterval:  10 * time.Millisecond,
			ConnectTimeout: time.Second,
		})
		assert.ErrorIs(t, err, identity.ErrRedisNotReady)
	})
}

func TestBadgerStore(t *testing.T) {
	t.Parallel()
	store, err := identity.OpenBadger(identity.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	storeContract(t, store)
}

func TestBadgerStoreRequiresPath(t *testing.T) {
	t.Parallel()
	_, err := identity.OpenBadger(identity.BadgerConfig{})
	assert.Error(t, err)
}

func TestBadgerStorePersists(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	ctx := context.Background()

	store, err := identity.OpenBadger(identity.BadgerConfig{Path: dir})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, identity.KeyCanvas, "a1b2c3d4-xyz", time.Hour))
	require.NoError(t, store.Close())

	store, err = identity.OpenBadger(identity.BadgerConfig{Path: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	v, err := store.Get(ctx, identity.KeyCanvas)
	require.NoError(t, err)
	assert.Equal(t, "a1b2c3d4-xyz", v)
}

func TestNewCookieStore(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		secrets []string
		wantErr error
	}{
		{name: "no secrets", secrets: nil, wantErr: identity.ErrNoSecret},
		{name: "empty secrets", secrets: []string{"", ""}, wantErr: identity.ErrNoSecret},
		{name: "short secret", secrets: []string{"short"}, wantErr: identity.ErrSecretTooShort},
		{name: "valid", secrets: []string{testSecret}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			_, err := identity.NewCookieStore(httptest.NewRecorder(), r, tt.secrets)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCookieStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	store, err := identity.NewCookieStore(w, r, []string{testSecret}, identity.WithCookieSecure(true))
	require.NoError(t, err)
	storeContract(t, store)

	// A fresh exchange sees only what the browser sends back.
	w = httptest.NewRecorder()
	store, err = identity.NewCookieStore(w, r, []string{testSecret})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, identity.KeyCanvas, "a1b2c3d4-xyz", time.Hour))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, identity.KeyCanvas, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])

	rotated, err := identity.NewCookieStore(httptest.NewRecorder(), next, []string{
		"this-is-a-new-very-long-secret-key-32-chars",
		testSecret,
	})
	require.NoError(t, err)
	v, err := rotated.Get(ctx, identity.KeyCanvas)
	require.NoError(t, err)
	assert.Equal(t, "a1b2c3d4-xyz", v)

	foreign, err := identity.NewCookieStore(httptest.NewRecorder(), next, []string{
		"this-is-a-new-very-long-secret-key-32-chars",
	})
	require.NoError(t, err)
	_, err = foreign.Get(ctx, identity.KeyCanvas)
	assert.ErrorIs(t, err, identity.ErrNotFound)
}

func TestCookieStoreTampered(t *testing.T) {
	t.Parallel()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: identity.KeyCores, Value: "OTk5OTk5OTk5OTo4.bogus"})

	store, err := identity.NewCookieStore(httptest.NewRecorder(), r, []string{testSecret})
	require.NoError(t, err)
	_, err = store.Get(context.Background(), identity.KeyCores)
	assert.ErrorIs(t, err, identity.ErrNotFound)
}

func TestPrefixed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	base := identity.NewMemoryStore()
	a := identity.WithPrefix(base, "https://a.example")
	b := identity.WithPrefix(base, "https://b.example")

	storeContract(t, a)

	require.NoError(t, a.Set(ctx, identity.KeyToken, "ta", time.Hour))
	_, err := b.Get(ctx, identity.KeyToken)
	assert.ErrorIs(t, err, identity.ErrNotFound)

	v, err := base.Get(ctx, "https://a.example:"+identity.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "ta", v)
}

type brokenStore struct{ panics bool }

func (b brokenStore) Get(context.Context, string) (string, error) {
	if b.panics {
		panic("storage disabled")
	}
	return "", identity.ErrStoreUnavailable
}

func (b brokenStore) Set(context.Context, string, string, time.Duration) error {
	if b.panics {
		panic("storage disabled")
	}
	return identity.ErrStoreUnavailable
}

func (brokenStore) Delete(context.Context, string) error { return identity.ErrStoreUnavailable }

func TestRemember(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("computes once then reuses", func(t *testing.T) {
		t.Parallel()
		store := identity.NewMemoryStore()
		var calls atomic.Int32
		compute := func() (string, bool) {
			calls.Add(1)
			return "8", true
		}

		assert.Equal(t, "8", identity.Remember(ctx, store, identity.KeyCores, 0, compute))
		assert.Equal(t, "8", identity.Remember(ctx, store, identity.KeyCores, 0, compute))
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("stored value wins verbatim", func(t *testing.T) {
		t.Parallel()
		store := identity.NewMemoryStore()
		require.NoError(t, store.Set(ctx, identity.KeyMemory, "4", time.Hour))
		got := identity.Remember(ctx, store, identity.KeyMemory, 0, func() (string, bool) { return "16", true })
		assert.Equal(t, "4", got)
	})

	t.Run("sentinel not persisted", func(t *testing.T) {
		t.Parallel()
		store := identity.NewMemoryStore()
		got := identity.Remember(ctx, store, identity.KeyCanvas, 0, func() (string, bool) { return "canvas-error-1z", false })
		assert.Equal(t, "canvas-error-1z", got)
		_, err := store.Get(ctx, identity.KeyCanvas)
		assert.ErrorIs(t, err, identity.ErrNotFound)
	})

	t.Run("broken store degrades", func(t *testing.T) {
		t.Parallel()
		for _, store := range []identity.Store{brokenStore{}, brokenStore{panics: true}, nil} {
			got := identity.Remember(ctx, store, identity.KeyCores, 0, func() (string, bool) { return "2", true })
			assert.Equal(t, "2", got)
		}
	})
}
