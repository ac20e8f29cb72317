// Package identity persists the per-visitor values that must stay stable
// across visits: hardware readings, the canvas signature and the token issued
// by the collector.
//
// Every backend implements Store. Remember layers read-through/write-through
// caching on top of any Store and never lets a storage failure escape, so a
// visitor with storage disabled still gets a (non-persistent) value.
//
// Backends:
//
//   - MemoryStore for tests and one-shot CLI runs.
//   - CookieStore for server-side collection, using HMAC-signed first-party
//     cookies with the expiry inside the signed payload.
//   - RedisStore for shared collectors; ConnectRedis dials with retries.
//   - BadgerStore for crawlers that need identity to survive restarts.
//
// Prefixed scopes keys by origin when several storefronts share one backend.
package identity
