package identity

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

const minSecretLength = 32

// CookieOptions controls the attributes of cookies written by CookieStore.
type CookieOptions struct {
	Path     string
	Domain   string
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite
}

// CookieOption mutates CookieOptions.
type CookieOption func(*CookieOptions)

func WithCookiePath(path string) CookieOption {
	return func(o *CookieOptions) { o.Path = path }
}

func WithCookieDomain(domain string) CookieOption {
	return func(o *CookieOptions) { o.Domain = domain }
}

func WithCookieSecure(secure bool) CookieOption {
	return func(o *CookieOptions) { o.Secure = secure }
}

func WithCookieHttpOnly(httpOnly bool) CookieOption {
	return func(o *CookieOptions) { o.HttpOnly = httpOnly }
}

func WithCookieSameSite(sameSite http.SameSite) CookieOption {
	return func(o *CookieOptions) { o.SameSite = sameSite }
}

// CookieStore persists identity values as signed first-party cookies on a
// single request/response pair. The expiry is part of the signed payload, so
// a client cannot extend a value's lifetime by editing the cookie.
//
// Values written during the request are visible to later Gets on the same
// store even though the browser has not echoed them back yet.
type CookieStore struct {
	w       http.ResponseWriter
	r       *http.Request
	secrets []string
	opts    CookieOptions
	now     func() time.Time

	mu      sync.Mutex
	pending map[string]*string // nil value marks a delete
}

// NewCookieStore binds a store to one HTTP exchange. The first secret signs;
// all of them verify, which allows rotation.
func NewCookieStore(w http.ResponseWriter, r *http.Request, secrets []string, opts ...CookieOption) (*CookieStore, error) {
	secrets, err := ValidateSecrets(secrets)
	if err != nil {
		return nil, err
	}

	o := CookieOptions{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &CookieStore{
		w:       w,
		r:       r,
		secrets: secrets,
		opts:    o,
		now:     time.Now,
		pending: make(map[string]*string),
	}, nil
}

// ValidateSecrets drops empty entries and checks the remaining secrets are
// long enough to sign with.
func ValidateSecrets(secrets []string) ([]string, error) {
	secrets = slices.DeleteFunc(slices.Clone(secrets), func(s string) bool { return s == "" })
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}
	for i, s := range secrets {
		if len(s) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d", ErrSecretTooShort, i, len(s), minSecretLength)
		}
	}
	return secrets, nil
}

func (s *CookieStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	if v, ok := s.pending[key]; ok {
		s.mu.Unlock()
		if v == nil {
			return "", ErrNotFound
		}
		return *v, nil
	}
	s.mu.Unlock()

	c, err := s.r.Cookie(key)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", err
	}

	payload, err := s.verify(c.Value)
	if err != nil {
		// Tampered or foreign cookies are treated like missing ones.
		return "", errors.Join(ErrNotFound, err)
	}

	expiry, value, ok := strings.Cut(payload, ":")
	if !ok {
		return "", errors.Join(ErrNotFound, ErrInvalidFormat)
	}
	exp, err := strconv.ParseInt(expiry, 10, 64)
	if err != nil {
		return "", errors.Join(ErrNotFound, ErrInvalidFormat)
	}
	if s.now().Unix() >= exp {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *CookieStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	ttl = normalizeTTL(ttl)
	exp := s.now().Add(ttl)

	http.SetCookie(s.w, &http.Cookie{
		Name:     key,
		Value:    s.sign(strconv.FormatInt(exp.Unix(), 10) + ":" + value),
		Path:     s.opts.Path,
		Domain:   s.opts.Domain,
		MaxAge:   int(ttl.Seconds()),
		Expires:  exp.UTC(),
		Secure:   s.opts.Secure,
		HttpOnly: s.opts.HttpOnly,
		SameSite: s.opts.SameSite,
	})

	s.mu.Lock()
	s.pending[key] = &value
	s.mu.Unlock()
	return nil
}

func (s *CookieStore) Delete(_ context.Context, key string) error {
	http.SetCookie(s.w, &http.Cookie{
		Name:     key,
		Value:    "",
		Path:     s.opts.Path,
		Domain:   s.opts.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   s.opts.Secure,
		HttpOnly: s.opts.HttpOnly,
		SameSite: s.opts.SameSite,
	})

	s.mu.Lock()
	s.pending[key] = nil
	s.mu.Unlock()
	return nil
}

func (s *CookieStore) sign(value string) string {
	mac := hmac.New(sha256.New, []byte(s.secrets[0]))
	mac.Write([]byte(value))
	signature := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	return base64.RawURLEncoding.EncodeToString([]byte(value)) + "." + signature
}

func (s *CookieStore) verify(signed string) (string, error) {
	encoded, signature, ok := strings.Cut(signed, ".")
	if !ok {
		return "", ErrInvalidFormat
	}

	value, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidFormat
	}

	for _, secret := range s.secrets {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(value)
		expected := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

		if subtle.ConstantTimeCompare([]byte(signature), []byte(expected)) == 1 {
			return string(value), nil
		}
	}

	return "", ErrInvalidSignature
}
