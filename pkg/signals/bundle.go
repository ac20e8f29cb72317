package signals

import (
	"github.com/dmitrymomot/visitorid/pkg/browserenv"
	"github.com/dmitrymomot/visitorid/pkg/useragent"
)

// Sentinels substituted for signals the environment cannot provide.
const (
	Unknown                         = "Unknown"
	GPUNotSupported                 = "webgl-not-supported"
	GPURendererNotAvailable         = "renderer-info-not-available"
	GPUError                        = "webgl-error"
	defaultPixelRatio       float64 = 1
)

// Device is the physical device category and model.
type Device struct {
	Type   string `json:"type"`
	Model  string `json:"model"`
	Mobile bool   `json:"mobile"`
}

// Hardware holds concurrency and memory hints. Cores and MemoryGB are the
// persisted values, not necessarily what the browser reports right now.
type Hardware struct {
	Cores       int     `json:"cores"`
	MemoryGB    float64 `json:"memoryGB"`
	TouchPoints int     `json:"touchPoints"`
	Platform    string  `json:"platform"`
}

// Capabilities are boolean API presence flags.
type Capabilities struct {
	LocalStorage   bool `json:"localStorage"`
	SessionStorage bool `json:"sessionStorage"`
	IndexedDB      bool `json:"indexedDB"`
	WebWorker      bool `json:"webWorker"`
	ServiceWorker  bool `json:"serviceWorker"`
	WebGL          bool `json:"webGL"`
	WebRTC         bool `json:"webRTC"`
	Touch          bool `json:"touch"`
	Audio          bool `json:"audio"`
	Video          bool `json:"video"`
}

// Bundle is every signal collected for one visit.
type Bundle struct {
	UserAgent    string            `json:"userAgent"`
	OS           useragent.OS      `json:"os"`
	Browser      useragent.Browser `json:"browser"`
	Device       Device            `json:"device"`
	Screen       browserenv.Screen `json:"screen"`
	Hardware     Hardware          `json:"hardware"`
	Timezone     string            `json:"timezone"`
	Capabilities Capabilities      `json:"capabilities"`
	CanvasHash   string            `json:"canvasHash"`
	GPURenderer  string            `json:"gpuRenderer"`
}

// Client returns the parsed user agent view of the bundle.
func (b Bundle) Client() useragent.UserAgent {
	return useragent.New(b.UserAgent, b.Device.Type, b.Device.Model, b.OS, b.Browser)
}

// Map flattens the bundle into dotted keys, for diagnostics and logging.
func (b Bundle) Map() map[string]any {
	return map[string]any{
		"userAgent":                   b.UserAgent,
		"os.name":                     b.OS.Name,
		"os.version":                  b.OS.Version,
		"os.mobile":                   b.OS.Mobile,
		"browser.name":                b.Browser.Name,
		"browser.version":             b.Browser.Version,
		"browser.actual":              b.Browser.Actual,
		"device.type":                 b.Device.Type,
		"device.model":                b.Device.Model,
		"device.mobile":               b.Device.Mobile,
		"screen.width":                b.Screen.Width,
		"screen.height":               b.Screen.Height,
		"screen.availWidth":           b.Screen.AvailWidth,
		"screen.availHeight":          b.Screen.AvailHeight,
		"screen.colorDepth":           b.Screen.ColorDepth,
		"screen.pixelRatio":           b.Screen.PixelRatio,
		"screen.orientation":          b.Screen.Orientation,
		"hardware.cores":              b.Hardware.Cores,
		"hardware.memoryGB":           b.Hardware.MemoryGB,
		"hardware.touchPoints":        b.Hardware.TouchPoints,
		"hardware.platform":           b.Hardware.Platform,
		"timezone":                    b.Timezone,
		"capabilities.localStorage":   b.Capabilities.LocalStorage,
		"capabilities.sessionStorage": b.Capabilities.SessionStorage,
		"capabilities.indexedDB":      b.Capabilities.IndexedDB,
		"capabilities.webWorker":      b.Capabilities.WebWorker,
		"capabilities.serviceWorker":  b.Capabilities.ServiceWorker,
		"capabilities.webGL":          b.Capabilities.WebGL,
		"capabilities.webRTC":         b.Capabilities.WebRTC,
		"capabilities.touch":          b.Capabilities.Touch,
		"capabilities.audio":          b.Capabilities.Audio,
		"capabilities.video":          b.Capabilities.Video,
		"canvasHash":                  b.CanvasHash,
		"gpuRenderer":                 b.GPURenderer,
	}
}
