package browserenv

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/dmitrymomot/visitorid/pkg/canvas"
)

// Feature names understood by Provider.Feature.
const (
	FeatureLocalStorage   = "localStorage"
	FeatureSessionStorage = "sessionStorage"
	FeatureIndexedDB      = "indexedDB"
	FeatureWebWorker      = "webWorker"
	FeatureServiceWorker  = "serviceWorker"
	FeatureWebGL          = "webGL"
	FeatureWebRTC         = "webRTC"
	FeatureTouch          = "touch"
	FeatureAudio          = "audio"
	FeatureVideo          = "video"
)

// Features lists every feature flag in reporting order.
var Features = []string{
	FeatureLocalStorage,
	FeatureSessionStorage,
	FeatureIndexedDB,
	FeatureWebWorker,
	FeatureServiceWorker,
	FeatureWebGL,
	FeatureWebRTC,
	FeatureTouch,
	FeatureAudio,
	FeatureVideo,
}

// WebGL names used with WebGLContext.
const (
	DebugRendererExtension = "WEBGL_debug_renderer_info"
	UnmaskedRenderer       = "UNMASKED_RENDERER_WEBGL"
	UnmaskedVendor         = "UNMASKED_VENDOR_WEBGL"
)

// Screen is the display geometry reported by the environment.
type Screen struct {
	Width       int     `json:"width" yaml:"width"`
	Height      int     `json:"height" yaml:"height"`
	AvailWidth  int     `json:"availWidth" yaml:"avail_width"`
	AvailHeight int     `json:"availHeight" yaml:"avail_height"`
	ColorDepth  int     `json:"colorDepth" yaml:"color_depth"`
	PixelRatio  float64 `json:"pixelRatio" yaml:"pixel_ratio"`
	Orientation string  `json:"orientation" yaml:"orientation"`
}

// WebGLContext is a throwaway rendering context used to read GPU details.
type WebGLContext interface {
	Extension(name string) bool
	Parameter(name string) (string, error)
}

// Provider exposes one capability query per visitor signal. Methods return
// ErrUnsupported when the environment lacks the API. Implementations may
// panic on broken environments; callers in this module recover.
type Provider interface {
	UserAgent() (string, error)
	Platform() (string, error)
	Screen() (Screen, error)
	HardwareConcurrency() (int, error)
	DeviceMemory() (float64, error)
	MaxTouchPoints() (int, error)
	Timezone() (string, error)
	Feature(name string) (bool, error)
	WebGL() (WebGLContext, error)
	Canvas(width, height int) (canvas.Surface, error)
	Location() (*url.URL, error)
	Referrer() (string, error)
	Document() (*goquery.Document, error)
}

// ClickEvent is a click delivered to the document root.
type ClickEvent struct {
	Target *goquery.Selection
}

// EventSource delivers document level notifications. Each On* call returns a
// function that removes the listener.
type EventSource interface {
	OnClick(fn func(ClickEvent)) (remove func(), err error)
	OnVisibilityChange(fn func(visible bool)) (remove func(), err error)
}
