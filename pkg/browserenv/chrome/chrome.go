package chrome

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/dmitrymomot/visitorid/pkg/browserenv"
	"github.com/dmitrymomot/visitorid/pkg/canvas"
)

// ErrNavigate is returned when the target page cannot be loaded.
var ErrNavigate = errors.New("chrome.navigate_failed")

type options struct {
	headless  bool
	execPath  string
	userAgent string
	timeout   time.Duration
	logger    *slog.Logger
}

// Option configures Open.
type Option func(*options)

func WithHeadless(headless bool) Option {
	return func(o *options) { o.headless = headless }
}

// WithExecPath points at a specific Chrome/Chromium binary.
func WithExecPath(path string) Option {
	return func(o *options) { o.execPath = path }
}

// WithUserAgent overrides the browser's user agent.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithTimeout bounds navigation and every capability query.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Page is a browserenv.Provider backed by a live Chrome tab. Each query is a
// JavaScript evaluation inside the page. It is also a browserenv.EventSource;
// page listeners are installed on the first subscription.
type Page struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	logger  *slog.Logger

	clicks     browserenv.Listeners[browserenv.ClickEvent]
	visibility browserenv.Listeners[bool]
	listenOnce sync.Once
	listenErr  error
}

var _ browserenv.Provider = (*Page)(nil)

// Open starts Chrome, navigates to target and waits for the document body.
// Close releases the browser.
func Open(ctx context.Context, target string, opts ...Option) (*Page, error) {
	o := options{
		headless: true,
		timeout:  30 * time.Second,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(o)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			o.logger.Debug(fmt.Sprintf(format, args...))
		}),
		chromedp.WithErrorf(func(format string, args ...any) {
			o.logger.Warn(fmt.Sprintf(format, args...))
		}),
	)

	p := &Page{
		ctx: tabCtx,
		cancel: func() {
			tabCancel()
			allocCancel()
		},
		timeout: o.timeout,
		logger:  o.logger,
	}

	// The first Run starts the browser and must use the undecorated tab context.
	if err := chromedp.Run(tabCtx); err != nil {
		p.Close()
		return nil, errors.Join(ErrNavigate, err)
	}

	navCtx, cancel := context.WithTimeout(tabCtx, o.timeout)
	defer cancel()
	if err := chromedp.Run(navCtx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		p.Close()
		return nil, errors.Join(ErrNavigate, err)
	}

	return p, nil
}

func allocatorOptions(o options) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !o.headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	opts = append(opts,
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
	)
	if o.execPath != "" {
		opts = append(opts, chromedp.ExecPath(o.execPath))
	}
	if o.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(o.userAgent))
	}
	return opts
}

// Close shuts the tab and the browser process down.
func (p *Page) Close() {
	p.cancel()
}

// Evaluate runs expr in the page and decodes the result into out. A nil out
// discards the result.
func (p *Page) Evaluate(expr string, out any) error {
	return p.eval(expr, out)
}

func (p *Page) eval(expr string, out any) error {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()
	return chromedp.Run(ctx, chromedp.Evaluate(expr, out))
}

func (p *Page) evalString(expr string) (string, error) {
	var v string
	if err := p.eval(expr, &v); err != nil {
		return "", err
	}
	if v == "" {
		return "", browserenv.ErrUnsupported
	}
	return v, nil
}

func (p *Page) UserAgent() (string, error) {
	return p.evalString(`navigator.userAgent || ""`)
}

func (p *Page) Platform() (string, error) {
	return p.evalString(`navigator.platform || ""`)
}

const screenJS = `({
	width: screen.width || 0,
	height: screen.height || 0,
	availWidth: screen.availWidth || 0,
	availHeight: screen.availHeight || 0,
	colorDepth: screen.colorDepth || 0,
	pixelRatio: window.devicePixelRatio || 1,
	orientation: (screen.orientation && screen.orientation.type) || ""
})`

func (p *Page) Screen() (browserenv.Screen, error) {
	var s browserenv.Screen
	if err := p.eval(screenJS, &s); err != nil {
		return browserenv.Screen{}, err
	}
	return s, nil
}

func (p *Page) HardwareConcurrency() (int, error) {
	var n int
	if err := p.eval(`navigator.hardwareConcurrency || 0`, &n); err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, browserenv.ErrUnsupported
	}
	return n, nil
}

func (p *Page) DeviceMemory() (float64, error) {
	var n float64
	if err := p.eval(`navigator.deviceMemory || 0`, &n); err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, browserenv.ErrUnsupported
	}
	return n, nil
}

func (p *Page) MaxTouchPoints() (int, error) {
	var n int
	err := p.eval(`navigator.maxTouchPoints || 0`, &n)
	return n, err
}

func (p *Page) Timezone() (string, error) {
	return p.evalString(`(Intl.DateTimeFormat().resolvedOptions().timeZone) || ""`)
}

var featureJS = map[string]string{
	browserenv.FeatureLocalStorage:   `(() => { try { return !!window.localStorage; } catch (e) { return false; } })()`,
	browserenv.FeatureSessionStorage: `(() => { try { return !!window.sessionStorage; } catch (e) { return false; } })()`,
	browserenv.FeatureIndexedDB:      `!!window.indexedDB`,
	browserenv.FeatureWebWorker:      `typeof Worker !== "undefined"`,
	browserenv.FeatureServiceWorker:  `"serviceWorker" in navigator`,
	browserenv.FeatureWebGL:          `!!window.WebGLRenderingContext`,
	browserenv.FeatureWebRTC:         `!!(window.RTCPeerConnection || window.webkitRTCPeerConnection)`,
	browserenv.FeatureTouch:          `"ontouchstart" in window || navigator.maxTouchPoints > 0`,
	browserenv.FeatureAudio:          `!!document.createElement("audio").canPlayType`,
	browserenv.FeatureVideo:          `!!document.createElement("video").canPlayType`,
}

func (p *Page) Feature(name string) (bool, error) {
	expr, ok := featureJS[name]
	if !ok {
		return false, fmt.Errorf("%w: feature %s", browserenv.ErrUnsupported, name)
	}
	var v bool
	err := p.eval(expr, &v)
	return v, err
}

const glContextJS = `const el = document.createElement("canvas");
const gl = el.getContext("webgl") || el.getContext("experimental-webgl");`

func (p *Page) WebGL() (browserenv.WebGLContext, error) {
	var ok bool
	if err := p.eval("(() => { "+glContextJS+" return !!gl; })()", &ok); err != nil {
		return nil, err
	}
	if !ok {
		return nil, browserenv.ErrUnsupported
	}
	return webGL{page: p}, nil
}

// webGL opens a new throwaway context for every query.
type webGL struct {
	page *Page
}

func (g webGL) Extension(name string) bool {
	var ok bool
	expr := fmt.Sprintf("(() => { %s return !!(gl && gl.getExtension(%s)); })()", glContextJS, jsString(name))
	if err := g.page.eval(expr, &ok); err != nil {
		return false
	}
	return ok
}

func (g webGL) Parameter(name string) (string, error) {
	expr := fmt.Sprintf(`(() => { %s
const ext = gl.getExtension(%s);
const v = gl.getParameter(ext ? ext[%s] : gl[%s]);
return v == null ? "" : String(v); })()`,
		glContextJS, jsString(browserenv.DebugRendererExtension), jsString(name), jsString(name))
	var v string
	if err := g.page.eval(expr, &v); err != nil {
		return "", err
	}
	return v, nil
}

func (p *Page) Canvas(width, height int) (canvas.Surface, error) {
	s, err := canvas.NewScript(width, height, func(js string) (string, error) {
		var data string
		if err := p.eval(js, &data); err != nil {
			return "", err
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (p *Page) Location() (*url.URL, error) {
	href, err := p.evalString(`location.href`)
	if err != nil {
		return nil, err
	}
	return url.Parse(href)
}

func (p *Page) Referrer() (string, error) {
	var v string
	err := p.eval(`document.referrer || ""`, &v)
	return v, err
}

func (p *Page) Document() (*goquery.Document, error) {
	html, err := p.evalString(`document.documentElement.outerHTML`)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func jsString(v string) string {
	b, _ := json.Marshal(v)
	return string(b)
}
