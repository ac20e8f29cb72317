package browserenv

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/dmitrymomot/visitorid/pkg/canvas"
)

// Static replays a Snapshot. It also acts as an EventSource whose events are
// triggered by DispatchClick and SetVisible.
type Static struct {
	snap       Snapshot
	location   *url.URL
	doc        *goquery.Document
	rasterOpts []canvas.RasterOption

	clicks     Listeners[ClickEvent]
	visibility Listeners[bool]

	mu      sync.Mutex
	visible bool
}

// StaticOption configures a Static provider.
type StaticOption func(*Static)

// WithRasterOptions passes options to the software canvas.
func WithRasterOptions(opts ...canvas.RasterOption) StaticOption {
	return func(s *Static) {
		s.rasterOpts = append(s.rasterOpts, opts...)
	}
}

// NewStatic validates the snapshot URL and parses its HTML.
func NewStatic(snap Snapshot, opts ...StaticOption) (*Static, error) {
	s := &Static{snap: snap, visible: true}

	if snap.URL != "" {
		u, err := url.Parse(snap.URL)
		if err != nil {
			return nil, fmt.Errorf("%w: url: %v", ErrInvalidSnapshot, err)
		}
		s.location = u
	}

	if snap.HTML != "" {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(snap.HTML))
		if err != nil {
			return nil, fmt.Errorf("%w: html: %v", ErrInvalidSnapshot, err)
		}
		s.doc = doc
	}

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Static) UserAgent() (string, error) {
	if s.snap.UserAgent == "" {
		return "", ErrUnsupported
	}
	return s.snap.UserAgent, nil
}

func (s *Static) Platform() (string, error) {
	if s.snap.Platform == "" {
		return "", ErrUnsupported
	}
	return s.snap.Platform, nil
}

func (s *Static) Screen() (Screen, error) {
	if s.snap.Screen.Width == 0 && s.snap.Screen.Height == 0 {
		return Screen{}, ErrUnsupported
	}
	return s.snap.Screen, nil
}

func (s *Static) HardwareConcurrency() (int, error) {
	if s.snap.HardwareConcurrency <= 0 {
		return 0, ErrUnsupported
	}
	return s.snap.HardwareConcurrency, nil
}

func (s *Static) DeviceMemory() (float64, error) {
	if s.snap.DeviceMemory <= 0 {
		return 0, ErrUnsupported
	}
	return s.snap.DeviceMemory, nil
}

func (s *Static) MaxTouchPoints() (int, error) {
	return s.snap.MaxTouchPoints, nil
}

func (s *Static) Timezone() (string, error) {
	if s.snap.Timezone == "" {
		return "", ErrUnsupported
	}
	return s.snap.Timezone, nil
}

func (s *Static) Feature(name string) (bool, error) {
	return s.snap.Features[name], nil
}

func (s *Static) WebGL() (WebGLContext, error) {
	if s.snap.WebGL == nil {
		return nil, ErrUnsupported
	}
	return staticWebGL{snap: *s.snap.WebGL}, nil
}

func (s *Static) Canvas(width, height int) (canvas.Surface, error) {
	if s.snap.CanvasBlocked {
		return nil, canvas.ErrCanvasBlocked
	}
	r, err := canvas.NewRaster(width, height, s.rasterOpts...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Static) Location() (*url.URL, error) {
	if s.location == nil {
		return nil, ErrUnsupported
	}
	u := *s.location
	return &u, nil
}

func (s *Static) Referrer() (string, error) {
	return s.snap.Referrer, nil
}

func (s *Static) Document() (*goquery.Document, error) {
	if s.doc == nil {
		return nil, ErrUnsupported
	}
	return s.doc, nil
}

func (s *Static) OnClick(fn func(ClickEvent)) (func(), error) {
	return s.clicks.Add(fn), nil
}

func (s *Static) OnVisibilityChange(fn func(bool)) (func(), error) {
	return s.visibility.Add(fn), nil
}

// DispatchClick delivers a click whose target is the first element matching
// selector. It returns the number of listeners notified.
func (s *Static) DispatchClick(selector string) (int, error) {
	if s.doc == nil {
		return 0, ErrUnsupported
	}
	target := s.doc.Find(selector).First()
	if target.Length() == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoMatch, selector)
	}
	return s.clicks.Emit(ClickEvent{Target: target}), nil
}

// SetVisible changes document visibility, notifying listeners on change.
func (s *Static) SetVisible(visible bool) {
	s.mu.Lock()
	changed := s.visible != visible
	s.visible = visible
	s.mu.Unlock()

	if changed {
		s.visibility.Emit(visible)
	}
}

type staticWebGL struct {
	snap WebGLSnapshot
}

func (g staticWebGL) Extension(name string) bool {
	return name == DebugRendererExtension && g.snap.DebugInfo
}

func (g staticWebGL) Parameter(name string) (string, error) {
	if g.snap.Error != "" {
		return "", errors.New(g.snap.Error)
	}
	switch name {
	case UnmaskedRenderer:
		return g.snap.Renderer, nil
	case UnmaskedVendor:
		return g.snap.Vendor, nil
	}
	return "", fmt.Errorf("%w: parameter %s", ErrUnsupported, name)
}
