package identity

import "errors"

var (
	ErrNotFound         = errors.New("identity.not_found")
	ErrStoreUnavailable = errors.New("identity.store_unavailable")
	ErrEmptyKey         = errors.New("identity.empty_key")
	ErrNoSecret         = errors.New("identity.no_secret")
	ErrSecretTooShort   = errors.New("identity.secret_too_short")
	ErrInvalidSignature = errors.New("identity.invalid_signature")
	ErrInvalidFormat    = errors.New("identity.invalid_format")
	ErrRedisNotReady    = errors.New("identity.redis_not_ready")
	ErrInvalidRedisURL  = errors.New("identity.invalid_redis_url")
)
