package visitor_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/visitorid/pkg/browserenv"
	"github.com/dmitrymomot/visitorid/pkg/canvas"
	"github.com/dmitrymomot/visitorid/pkg/fingerprint"
	"github.com/dmitrymomot/visitorid/pkg/identity"
	"github.com/dmitrymomot/visitorid/pkg/logger"
	"github.com/dmitrymomot/visitorid/pkg/pageclass"
	"github.com/dmitrymomot/visitorid/pkg/reporter"
	"github.com/dmitrymomot/visitorid/pkg/visitor"
)

const (
	androidUA  = "Mozilla/5.0 (Linux; Android 10; SM-G973F) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/90.0.4430.210 Mobile Safari/537.36"
	testSecret = "this-is-a-very-long-secret-key-32-chars-long"
)

const productHTML = `<html><head><meta property="og:type" content="product"></head><body>
<form action="/cart/add"><button name="add"><span class="label">Add to cart</span></button></form>
<a class="footer" href="/about">About</a>
</body></html>`

func snapshot(url, html string) browserenv.Snapshot {
	return browserenv.Snapshot{
		UserAgent:           androidUA,
		Platform:            "Linux armv8l",
		Screen:              browserenv.Screen{Width: 360, Height: 760, PixelRatio: 3},
		HardwareConcurrency: 8,
		DeviceMemory:        4,
		Timezone:            "Europe/Berlin",
		WebGL:               &browserenv.WebGLSnapshot{DebugInfo: true, Renderer: "Adreno (TM) 640"},
		URL:                 url,
		Referrer:            "https://search.example/",
		HTML:                html,
	}
}

func newStatic(t *testing.T, snap browserenv.Snapshot) *browserenv.Static {
	t.Helper()
	s, err := browserenv.NewStatic(snap, browserenv.WithRasterOptions(canvas.WithFontDirs()))
	require.NoError(t, err)
	return s
}

type collector struct {
	mu     sync.Mutex
	bodies []map[string]any
	token  string
}

func (c *collector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(data, &body)

	c.mu.Lock()
	c.bodies = append(c.bodies, body)
	token := c.token
	c.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
}

func (c *collector) reports() []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, len(c.bodies))
	copy(out, c.bodies)
	return out
}

func newReporter(t *testing.T, c *collector, store identity.Store) *reporter.Reporter {
	t.Helper()
	srv := httptest.NewServer(c)
	t.Cleanup(srv.Close)
	rep, err := reporter.New(srv.URL, store, reporter.WithVendorID("vendor-1"))
	require.NoError(t, err)
	return rep
}

func TestIdentify(t *testing.T) {
	t.Parallel()
	store := identity.NewMemoryStore()
	tr := visitor.New(newStatic(t, snapshot("https://shop.example/products/widget", productHTML)), store, nil)

	v := tr.Identify(context.Background())
	require.NoError(t, fingerprint.Validate(v.Fingerprint))

	segs := fingerprint.Segments(v.Fingerprint)
	assert.Equal(t, []string{"Android", "Chrome", "90", "360x760", "8cores-4GB"}, segs[:5])
	assert.Equal(t, []string{"SM-G973F", "3.000", "Adreno (TM) 640"}, segs[6:])
	assert.Equal(t, pageclass.Product, v.Page)
	assert.Equal(t, "https://search.example/", v.Referrer)
	require.NotNil(t, v.URL)
	assert.Equal(t, "shop.example", v.URL.Host)

	again := tr.Identify(context.Background())
	assert.Equal(t, v.Fingerprint, again.Fingerprint, "canvas and hardware come from the store")

	_, pending := tr.ReportPageView(context.Background())
	assert.Nil(t, pending)
}

func TestIdentifyWithoutLocation(t *testing.T) {
	t.Parallel()
	v := visitor.New(newStatic(t, snapshot("", "")), nil, nil).Identify(context.Background())
	assert.Nil(t, v.URL)
	assert.Equal(t, pageclass.Other, v.Page)

	p := visitor.Payload(v, "")
	assert.Empty(t, p.WebsiteURL)
	assert.Empty(t, p.FullPageURL)
}

func TestPayload(t *testing.T) {
	t.Parallel()
	store := identity.NewMemoryStore()
	v := visitor.New(newStatic(t, snapshot("https://shop.example/collections/all?page=2", "")), store, nil).Identify(context.Background())

	p := visitor.Payload(v, reporter.EventAddToCart)
	assert.Equal(t, v.Fingerprint.String(), p.FingerPrint)
	assert.Equal(t, fingerprint.Version, p.FPVersion)
	assert.Equal(t, "collection_or_search", p.Page)
	assert.Equal(t, "add_to_cart", p.Event)
	assert.Equal(t, "https://shop.example", p.WebsiteURL)
	assert.Equal(t, "https://shop.example/collections/all?page=2", p.FullPageURL)
	assert.Nil(t, p.Token)
}

func TestReportPageView(t *testing.T) {
	t.Parallel()
	store := identity.NewMemoryStore()
	c := &collector{token: "tok-1"}
	tr := visitor.New(newStatic(t, snapshot("https://shop.example/", "")), store, newReporter(t, c, store))

	v, pending := tr.ReportPageView(context.Background())
	require.NotNil(t, pending)
	res := pending.AwaitTimeout(5 * time.Second)
	require.NoError(t, res.Err)
	assert.Equal(t, "tok-1", res.Token)

	_, pending = tr.ReportPageView(context.Background())
	require.NoError(t, pending.AwaitTimeout(5*time.Second).Err)

	reports := c.reports()
	require.Len(t, reports, 2)
	first := reports[0]
	assert.Equal(t, v.Fingerprint.String(), first["fingerPrint"])
	assert.Equal(t, "2", first["fpVersion"])
	assert.Equal(t, "home", first["page"])
	assert.Equal(t, "vendor-1", first["vendorId"])
	assert.Contains(t, first, "token")
	assert.Nil(t, first["token"])
	assert.NotContains(t, first, "event")

	assert.Equal(t, "tok-1", reports[1]["token"])
}

func TestReportAddToCart(t *testing.T) {
	t.Parallel()
	store := identity.NewMemoryStore()
	c := &collector{}
	tr := visitor.New(newStatic(t, snapshot("https://shop.example/", "")), store, newReporter(t, c, store))

	v, pending := tr.ReportAddToCart(context.Background())
	assert.Equal(t, pageclass.Product, v.Page)
	require.NoError(t, pending.AwaitTimeout(5*time.Second).Err)

	reports := c.reports()
	require.Len(t, reports, 1)
	assert.Equal(t, "product", reports[0]["page"])
	assert.Equal(t, reporter.EventAddToCart, reports[0]["event"])
}

func countEvents(reports []map[string]any, event string) int {
	n := 0
	for _, r := range reports {
		e, _ := r["event"].(string)
		if e == event {
			n++
		}
	}
	return n
}

func TestStart(t *testing.T) {
	t.Parallel()
	store := identity.NewMemoryStore()
	c := &collector{}
	env := newStatic(t, snapshot("https://shop.example/products/widget", productHTML))
	tr := visitor.New(env, store, newReporter(t, c, store))

	stop := tr.Start(context.Background())
	require.Eventually(t, func() bool { return len(c.reports()) == 1 }, 5*time.Second, 10*time.Millisecond)

	n, err := env.DispatchClick("span.label")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Eventually(t, func() bool { return countEvents(c.reports(), reporter.EventAddToCart) == 1 }, 5*time.Second, 10*time.Millisecond)

	_, err = env.DispatchClick("a.footer")
	require.NoError(t, err)

	env.SetVisible(false)
	env.SetVisible(true)
	require.Eventually(t, func() bool { return countEvents(c.reports(), "") == 2 }, 5*time.Second, 10*time.Millisecond)

	stop()
	stop()
	_, err = env.DispatchClick("span.label")
	require.NoError(t, err)
	env.SetVisible(false)
	env.SetVisible(true)

	time.Sleep(100 * time.Millisecond)
	reports := c.reports()
	assert.Len(t, reports, 3)
	assert.Equal(t, 1, countEvents(reports, reporter.EventAddToCart))
}

func TestWatch(t *testing.T) {
	t.Parallel()
	store := identity.NewMemoryStore()
	c := &collector{}
	env := newStatic(t, snapshot("https://shop.example/products/widget", productHTML))
	tr := visitor.New(env, store, newReporter(t, c, store))

	stop := tr.Watch(context.Background())
	defer stop()

	_, err := env.DispatchClick("span.label")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(c.reports()) == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, countEvents(c.reports(), reporter.EventAddToCart))
}

// providerOnly hides the EventSource side of a Static.
type providerOnly struct{ browserenv.Provider }

func TestStartWithoutEventSource(t *testing.T) {
	t.Parallel()
	store := identity.NewMemoryStore()
	c := &collector{}
	env := newStatic(t, snapshot("https://shop.example/", ""))
	tr := visitor.New(providerOnly{env}, store, newReporter(t, c, store))

	stop := tr.Start(context.Background())
	defer stop()
	require.Eventually(t, func() bool { return len(c.reports()) == 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestVisitContext(t *testing.T) {
	t.Parallel()

	_, ok := visitor.VisitFromContext(context.Background())
	assert.False(t, ok)

	v := visitor.Visit{Fingerprint: "a|b", Page: pageclass.Cart}
	ctx := visitor.WithVisit(context.Background(), v)

	got, ok := visitor.VisitFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, v.Fingerprint, got.Fingerprint)

	fp, ok := fingerprint.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, v.Fingerprint, fp)

	buf := &bytes.Buffer{}
	log := logger.New(logger.WithOutput(buf), logger.WithContextExtractors(visitor.LoggerExtractor()))
	log.InfoContext(ctx, "hit")
	log.InfoContext(context.Background(), "anonymous")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, map[string]any{"fingerprint": "a|b", "page": "cart"}, entry["visit"])
	assert.NotContains(t, string(lines[1]), "visit")
}
