package signals

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/visitorid/pkg/browserenv"
	"github.com/dmitrymomot/visitorid/pkg/canvas"
	"github.com/dmitrymomot/visitorid/pkg/identity"
	"github.com/dmitrymomot/visitorid/pkg/useragent"
)

// Guard runs a capability query, substituting fallback when it errors or
// panics.
func Guard[T any](fallback T, fn func() (T, error)) (out T) {
	defer func() {
		if recover() != nil {
			out = fallback
		}
	}()
	v, err := fn()
	if err != nil {
		return fallback
	}
	return v
}

// CollectUserAgent returns the raw user agent or "".
func CollectUserAgent(p browserenv.Provider) string {
	return Guard("", p.UserAgent)
}

// CollectPlatform returns navigator.platform or Unknown.
func CollectPlatform(p browserenv.Provider) string {
	v := Guard(Unknown, p.Platform)
	if strings.TrimSpace(v) == "" {
		return Unknown
	}
	return v
}

// CollectTimezone returns the IANA zone name or Unknown.
func CollectTimezone(p browserenv.Provider) string {
	v := Guard(Unknown, p.Timezone)
	if v == "" {
		return Unknown
	}
	return v
}

// CollectScreen reads display geometry. Missing geometry is zero, a missing
// pixel ratio is 1 and a missing orientation is Unknown.
func CollectScreen(p browserenv.Provider) browserenv.Screen {
	s := Guard(browserenv.Screen{}, p.Screen)
	if s.PixelRatio <= 0 {
		s.PixelRatio = defaultPixelRatio
	}
	if s.Orientation == "" {
		s.Orientation = Unknown
	}
	return s
}

// CollectCapabilities reads every feature flag; absent APIs are false.
func CollectCapabilities(p browserenv.Provider) Capabilities {
	has := func(name string) bool {
		return Guard(false, func() (bool, error) { return p.Feature(name) })
	}
	return Capabilities{
		LocalStorage:   has(browserenv.FeatureLocalStorage),
		SessionStorage: has(browserenv.FeatureSessionStorage),
		IndexedDB:      has(browserenv.FeatureIndexedDB),
		WebWorker:      has(browserenv.FeatureWebWorker),
		ServiceWorker:  has(browserenv.FeatureServiceWorker),
		WebGL:          has(browserenv.FeatureWebGL),
		WebRTC:         has(browserenv.FeatureWebRTC),
		Touch:          has(browserenv.FeatureTouch),
		Audio:          has(browserenv.FeatureAudio),
		Video:          has(browserenv.FeatureVideo),
	}
}

// CollectGPU returns the unmasked WebGL renderer or one of the GPU sentinels.
func CollectGPU(p browserenv.Provider) (renderer string) {
	defer func() {
		if recover() != nil {
			renderer = GPUError
		}
	}()

	gl, err := p.WebGL()
	switch {
	case errors.Is(err, browserenv.ErrUnsupported):
		return GPUNotSupported
	case err != nil:
		return GPUError
	case gl == nil:
		return GPUNotSupported
	}

	if !gl.Extension(browserenv.DebugRendererExtension) {
		return GPURendererNotAvailable
	}
	v, err := gl.Parameter(browserenv.UnmaskedRenderer)
	if err != nil {
		return GPUError
	}
	if v = strings.TrimSpace(v); v == "" {
		return GPURendererNotAvailable
	}
	return v
}

// CollectHardware reads concurrency and memory through the store so that
// browsers reporting them inconsistently still yield a stable value. Values
// the browser does not report are 0 and are not persisted.
func CollectHardware(ctx context.Context, p browserenv.Provider, store identity.Store, ttl time.Duration) Hardware {
	coresRaw := identity.Remember(ctx, store, identity.KeyCores, ttl, func() (string, bool) {
		n := Guard(0, p.HardwareConcurrency)
		return strconv.Itoa(n), n > 0
	})
	memRaw := identity.Remember(ctx, store, identity.KeyMemory, ttl, func() (string, bool) {
		v := Guard(0, p.DeviceMemory)
		return strconv.FormatFloat(v, 'f', -1, 64), v > 0
	})

	cores, _ := strconv.Atoi(coresRaw)
	mem, _ := strconv.ParseFloat(memRaw, 64)

	return Hardware{
		Cores:       max(cores, 0),
		MemoryGB:    max(mem, 0),
		TouchPoints: Guard(0, p.MaxTouchPoints),
		Platform:    CollectPlatform(p),
	}
}

// modelHinter is implemented by providers that know the device model
// directly, such as Client Hints on an HTTP request.
type modelHinter interface {
	Model() (string, error)
}

// CollectDevice classifies the device from the user agent, preferring a
// provider supplied model hint for Android.
func CollectDevice(p browserenv.Provider, ua string, os useragent.OS, platform string) Device {
	model := useragent.ParseDeviceModel(ua, os, platform)
	if hinter, ok := p.(modelHinter); ok && os.Name == useragent.OSAndroid {
		if hint := Guard("", hinter.Model); hint != "" {
			model = hint
		}
	}

	deviceType := useragent.ParseDeviceType(strings.ToLower(ua))
	if ua == "" {
		deviceType = useragent.DeviceTypeUnknown
	}

	return Device{
		Type:   deviceType,
		Model:  model,
		Mobile: os.Mobile,
	}
}

// Collector gathers a complete Bundle.
type Collector struct {
	store    identity.Store
	renderer *canvas.Renderer
	ttl      time.Duration
	logger   *slog.Logger
}

// Option configures a Collector.
type Option func(*Collector)

func WithTTL(ttl time.Duration) Option {
	return func(c *Collector) { c.ttl = ttl }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Collector) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRenderer replaces the default canvas renderer.
func WithRenderer(r *canvas.Renderer) Option {
	return func(c *Collector) {
		if r != nil {
			c.renderer = r
		}
	}
}

// NewCollector creates a collector persisting volatile signals in store.
func NewCollector(store identity.Store, opts ...Option) *Collector {
	c := &Collector{
		store:  store,
		ttl:    identity.DefaultTTL,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.renderer == nil {
		c.renderer = canvas.NewRenderer(store, canvas.WithTTL(c.ttl), canvas.WithLogger(c.logger))
	}
	return c
}

// Collect reads every signal from p. It never fails; unavailable signals
// carry their sentinel values.
func (c *Collector) Collect(ctx context.Context, p browserenv.Provider) Bundle {
	ua := CollectUserAgent(p)
	os := useragent.ParseOS(ua)
	hw := CollectHardware(ctx, p, c.store, c.ttl)

	b := Bundle{
		UserAgent:    ua,
		OS:           os,
		Browser:      useragent.ParseBrowser(ua),
		Device:       CollectDevice(p, ua, os, hw.Platform),
		Screen:       CollectScreen(p),
		Hardware:     hw,
		Timezone:     CollectTimezone(p),
		Capabilities: CollectCapabilities(p),
		CanvasHash:   c.renderer.Fingerprint(ctx, p),
		GPURenderer:  CollectGPU(p),
	}

	c.logger.DebugContext(ctx, "signals collected",
		slog.String("client", b.Client().ShortIdentifier()),
		slog.String("device_model", b.Device.Model),
	)
	return b
}
