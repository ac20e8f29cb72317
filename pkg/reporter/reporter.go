package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/visitorid/pkg/identity"
)

const maxResponseSize = 64 * 1024

// Reporter delivers payloads to the collection endpoint. Deliveries are never
// retried; failures are logged and handed to the result hook.
type Reporter struct {
	endpoint string
	client   *http.Client
	store    identity.Store
	tokenTTL time.Duration
	timeout  time.Duration
	vendorID string
	headers  map[string]string
	logger   *slog.Logger
	onResult ResultHook
}

// New creates a reporter posting to endpoint. Issued tokens are kept in
// store, which may be nil.
func New(endpoint string, store identity.Store, opts ...Option) (*Reporter, error) {
	if err := validateEndpoint(endpoint); err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	r := &Reporter{
		endpoint: endpoint,
		client: &http.Client{
			Jar: jar,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		store:    store,
		tokenTTL: identity.DefaultTTL,
		timeout:  10 * time.Second,
		headers:  make(map[string]string),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func validateEndpoint(endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("%w: endpoint is required", ErrInvalidEndpoint)
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidEndpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidEndpoint)
	}
	return nil
}

// ForStore returns a copy of r that keeps issued tokens in store. The copy
// shares the HTTP client and options. A nil store disables persistence.
func (r *Reporter) ForStore(store identity.Store) *Reporter {
	cp := *r
	cp.store = store
	return &cp
}

// Endpoint returns the collection URL.
func (r *Reporter) Endpoint() string { return r.endpoint }

// Token returns the stored session token, or nil.
func (r *Reporter) Token(ctx context.Context) *string {
	if r.store == nil {
		return nil
	}
	v, err := r.store.Get(ctx, identity.KeyToken)
	if err != nil || v == "" {
		return nil
	}
	return &v
}

// Send posts p once and waits for the response. A nil Token is filled from
// the store and an empty VendorID from the reporter's default.
func (r *Reporter) Send(ctx context.Context, p Payload) Result {
	if p.Token == nil {
		p.Token = r.Token(ctx)
	}
	if p.VendorID == "" {
		p.VendorID = r.vendorID
	}

	result := r.deliver(ctx, p)

	if result.Err != nil {
		r.logger.WarnContext(ctx, "report delivery failed",
			slog.String("endpoint", r.endpoint),
			slog.String("page", p.Page),
			slog.String("event", p.Event),
			slog.Int("status", result.StatusCode),
			slog.String("error", result.Err.Error()),
		)
	}

	if result.Token != "" && r.store != nil {
		if err := r.store.Set(ctx, identity.KeyToken, result.Token, r.tokenTTL); err != nil {
			r.logger.WarnContext(ctx, "failed to persist session token", slog.String("error", err.Error()))
		}
	}

	if r.onResult != nil {
		r.onResult(result)
	}
	return result
}

// Dispatch sends p on its own goroutine and returns immediately. The
// delivery is detached from ctx cancellation (the page may be gone already)
// but keeps its values; the reporter timeout still applies.
func (r *Reporter) Dispatch(ctx context.Context, p Payload) *Pending {
	pending := newPending()
	detached := context.WithoutCancel(ctx)

	go func() {
		defer close(pending.done)
		defer func() {
			if rec := recover(); rec != nil {
				pending.result = Result{Err: fmt.Errorf("%w: panic: %v", ErrTransport, rec)}
			}
		}()
		pending.result = r.Send(detached, p)
	}()

	return pending
}

func (r *Reporter) deliver(ctx context.Context, p Payload) Result {
	start := time.Now()
	var result Result

	body, err := json.Marshal(p)
	if err != nil {
		result.Err = errors.Join(ErrInvalidPayload, err)
		return result
	}

	r.logger.DebugContext(ctx, "sending report",
		slog.String("endpoint", r.endpoint),
		slog.String("payload", string(body)),
	)

	reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		result.Duration = time.Since(start)
		result.Err = fmt.Errorf("%w: %w", ErrTransport, err)
		return result
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := r.client.Do(req)
	result.Duration = time.Since(start)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			result.Err = fmt.Errorf("%w: %w", ErrTimeout, err)
		} else {
			result.Err = fmt.Errorf("%w: %w", ErrTransport, err)
		}
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode
	result.Success = resp.StatusCode >= 200 && resp.StatusCode < 300

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))

	if !result.Success {
		msg := strings.ReplaceAll(string(data), "\n", " ")
		if len(msg) > 200 {
			msg = msg[:200] + "..."
		}
		result.Err = fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, msg)
		return result
	}

	var decoded response
	if len(data) > 0 && json.Unmarshal(data, &decoded) == nil {
		result.Token = decoded.Token
	}
	return result
}
