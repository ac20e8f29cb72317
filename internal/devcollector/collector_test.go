package devcollector_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/visitorid/internal/devcollector"
	"github.com/dmitrymomot/visitorid/pkg/identity"
	"github.com/dmitrymomot/visitorid/pkg/logger"
	"github.com/dmitrymomot/visitorid/pkg/reporter"
)

const fp = "Android|Chrome|90|360x760|8cores-4GB|1x2y3z-abc|SM-G973F|3.000|Adreno (TM) 640"

func newServer(t *testing.T, opts ...devcollector.Option) (*devcollector.Collector, *httptest.Server) {
	t.Helper()
	c := devcollector.New(opts...)
	srv := httptest.NewServer(c.Router())
	t.Cleanup(srv.Close)
	return c, srv
}

func TestCollectorIssuesAndKeepsTokens(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	c, srv := newServer(t,
		devcollector.WithLogger(logger.New(logger.WithOutput(buf))),
		devcollector.WithTokenGenerator(func() string { return "tok-00001234" }),
	)

	store := identity.NewMemoryStore()
	rep, err := reporter.New(srv.URL+devcollector.VisitPath, store)
	require.NoError(t, err)

	ctx := context.Background()
	res := rep.Send(ctx, reporter.Payload{FingerPrint: fp, FPVersion: "2", Page: "home"})
	require.NoError(t, res.Err)
	assert.Equal(t, "tok-00001234", res.Token)

	res = rep.Send(ctx, reporter.Payload{FingerPrint: fp, FPVersion: "2", Page: "product", Event: reporter.EventAddToCart})
	require.NoError(t, res.Err)
	assert.Equal(t, "tok-00001234", res.Token)

	stats := c.Stats()
	assert.Equal(t, 2, stats.Reports)
	assert.Equal(t, 1, stats.Tokens)
	assert.Equal(t, map[string]int{"home": 1, "product": 1}, stats.Pages)
	assert.Equal(t, map[string]int{reporter.EventAddToCart: 1}, stats.Events)

	logs := buf.String()
	assert.Contains(t, logs, `"msg":"report received"`)
	assert.Contains(t, logs, `"token":"****1234"`)
	assert.Contains(t, logs, `"gpu":"Adreno (TM) 640"`)
	assert.Contains(t, logs, `"request_id"`)
}

func TestCollectorRejects(t *testing.T) {
	t.Parallel()
	_, srv := newServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed", body: "{"},
		{name: "no fingerprint", body: `{"page":"home"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resp, err := http.Post(srv.URL+devcollector.VisitPath, "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestCollectorAcceptsUnknownLayout(t *testing.T) {
	t.Parallel()
	c, srv := newServer(t)

	resp, err := http.Post(srv.URL+devcollector.VisitPath, "application/json",
		strings.NewReader(`{"fingerPrint":"a|b","fpVersion":"2","page":"other","token":null}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, 1, c.Stats().Reports)
}

func TestCollectorCORSAndRequestID(t *testing.T) {
	t.Parallel()
	_, srv := newServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+devcollector.VisitPath, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set(devcollector.RequestIDHeader, "abc-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://shop.example", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "abc-123", resp.Header.Get(devcollector.RequestIDHeader))

	req.Header.Set(devcollector.RequestIDHeader, "bad id!")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.NotEqual(t, "bad id!", resp2.Header.Get(devcollector.RequestIDHeader))
	assert.NotEmpty(t, resp2.Header.Get(devcollector.RequestIDHeader))
}

func TestCollectorHealthAndStats(t *testing.T) {
	t.Parallel()
	_, srv := newServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(srv.URL + "/api/stats")
	require.NoError(t, err)
	defer resp2.Body.Close()
	var stats devcollector.Stats
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&stats))
	assert.Zero(t, stats.Reports)
}

func TestServe(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	addrCh := make(chan string, 1)
	errCh := make(chan error, 1)

	go func() {
		errCh <- devcollector.Serve(ctx, devcollector.ServerConfig{Addr: "127.0.0.1:0"},
			devcollector.New().Router(), func(addr string) { addrCh <- addr })
	}()

	var addr string
	select {
	case addr = <-addrCh:
	case err := <-errCh:
		t.Fatalf("serve failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeBadAddr(t *testing.T) {
	t.Parallel()
	err := devcollector.Serve(context.Background(), devcollector.ServerConfig{Addr: "256.0.0.1:bad"}, http.NotFoundHandler(), nil)
	assert.ErrorIs(t, err, devcollector.ErrStart)
}
