package browserenv

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WebGLSnapshot describes the GPU as a page would see it.
type WebGLSnapshot struct {
	// DebugInfo reports whether WEBGL_debug_renderer_info is exposed.
	DebugInfo bool   `json:"debugInfo" yaml:"debug_info"`
	Vendor    string `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	Renderer  string `json:"renderer,omitempty" yaml:"renderer,omitempty"`
	// Error makes parameter reads fail, mimicking a context lost mid-query.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Snapshot is a recorded set of browser capabilities. Zero values mean the
// API was absent when recorded.
type Snapshot struct {
	UserAgent           string          `json:"userAgent" yaml:"user_agent"`
	Platform            string          `json:"platform,omitempty" yaml:"platform,omitempty"`
	Screen              Screen          `json:"screen" yaml:"screen"`
	HardwareConcurrency int             `json:"hardwareConcurrency,omitempty" yaml:"hardware_concurrency,omitempty"`
	DeviceMemory        float64         `json:"deviceMemory,omitempty" yaml:"device_memory,omitempty"`
	MaxTouchPoints      int             `json:"maxTouchPoints,omitempty" yaml:"max_touch_points,omitempty"`
	Timezone            string          `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	Features            map[string]bool `json:"features,omitempty" yaml:"features,omitempty"`
	WebGL               *WebGLSnapshot  `json:"webgl,omitempty" yaml:"webgl,omitempty"`
	CanvasBlocked       bool            `json:"canvasBlocked,omitempty" yaml:"canvas_blocked,omitempty"`
	URL                 string          `json:"url,omitempty" yaml:"url,omitempty"`
	Referrer            string          `json:"referrer,omitempty" yaml:"referrer,omitempty"`
	HTML                string          `json:"html,omitempty" yaml:"html,omitempty"`
}

// ParseSnapshot decodes a YAML snapshot.
func ParseSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Snapshot{}, errors.Join(ErrInvalidSnapshot, err)
	}
	if s.UserAgent == "" {
		return Snapshot{}, fmt.Errorf("%w: user_agent is required", ErrInvalidSnapshot)
	}
	return s, nil
}

// LoadSnapshot reads and decodes a snapshot file.
func LoadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	return ParseSnapshot(data)
}

// Marshal encodes the snapshot as YAML.
func (s Snapshot) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Record queries every capability of p and stores the answers, so a live
// session can be replayed later through Static.
func Record(p Provider) Snapshot {
	var s Snapshot
	s.UserAgent, _ = p.UserAgent()
	s.Platform, _ = p.Platform()
	s.Screen, _ = p.Screen()
	s.HardwareConcurrency, _ = p.HardwareConcurrency()
	s.DeviceMemory, _ = p.DeviceMemory()
	s.MaxTouchPoints, _ = p.MaxTouchPoints()
	s.Timezone, _ = p.Timezone()
	s.Referrer, _ = p.Referrer()

	for _, name := range Features {
		if ok, err := p.Feature(name); err == nil && ok {
			if s.Features == nil {
				s.Features = make(map[string]bool)
			}
			s.Features[name] = true
		}
	}

	if gl, err := p.WebGL(); err == nil {
		w := &WebGLSnapshot{DebugInfo: gl.Extension(DebugRendererExtension)}
		if w.DebugInfo {
			w.Renderer, _ = gl.Parameter(UnmaskedRenderer)
			w.Vendor, _ = gl.Parameter(UnmaskedVendor)
		}
		s.WebGL = w
	}

	s.CanvasBlocked = !canvasReadable(p)
	if u, err := p.Location(); err == nil {
		s.URL = u.String()
	}
	if doc, err := p.Document(); err == nil {
		s.HTML, _ = doc.Html()
	}
	return s
}

// canvasReadable reports whether a surface can be both created and read
// back. Live pages only fail on readback.
func canvasReadable(p Provider) bool {
	surface, err := p.Canvas(1, 1)
	if err != nil || surface == nil {
		return false
	}
	_, err = surface.DataURL()
	return err == nil
}
