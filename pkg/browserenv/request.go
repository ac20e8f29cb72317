package browserenv

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dmitrymomot/visitorid/pkg/canvas"
)

// Client hint headers read by Request. Browsers only send most of them after
// the server opted in through Accept-CH (see AcceptCH).
const (
	HeaderPlatform       = "Sec-CH-UA-Platform"
	HeaderMobile         = "Sec-CH-UA-Mobile"
	HeaderModel          = "Sec-CH-UA-Model"
	HeaderDeviceMemory   = "Sec-CH-Device-Memory"
	HeaderDPR            = "Sec-CH-DPR"
	HeaderViewportWidth  = "Sec-CH-Viewport-Width"
	HeaderViewportHeight = "Sec-CH-Viewport-Height"

	legacyDeviceMemory  = "Device-Memory"
	legacyDPR           = "DPR"
	legacyViewportWidth = "Viewport-Width"
)

// AcceptCH is the Accept-CH header value requesting every hint Request reads.
var AcceptCH = strings.Join([]string{
	HeaderPlatform, HeaderMobile, HeaderModel, HeaderDeviceMemory,
	HeaderDPR, HeaderViewportWidth, HeaderViewportHeight,
}, ", ")

// Request is a Provider built from an incoming HTTP request. Only what the
// headers carry is available; everything else reports ErrUnsupported.
type Request struct {
	r *http.Request
}

// FromRequest wraps r.
func FromRequest(r *http.Request) *Request {
	return &Request{r: r}
}

func (p *Request) UserAgent() (string, error) {
	ua := p.r.UserAgent()
	if ua == "" {
		return "", ErrUnsupported
	}
	return ua, nil
}

func (p *Request) Platform() (string, error) {
	v := unquote(p.r.Header.Get(HeaderPlatform))
	if v == "" {
		return "", ErrUnsupported
	}
	return v, nil
}

// Model returns the Sec-CH-UA-Model hint, which is empty on desktops.
func (p *Request) Model() (string, error) {
	v := unquote(p.r.Header.Get(HeaderModel))
	if v == "" {
		return "", ErrUnsupported
	}
	return v, nil
}

func (p *Request) Screen() (Screen, error) {
	width := p.intHeader(HeaderViewportWidth, legacyViewportWidth)
	height := p.intHeader(HeaderViewportHeight)
	dpr := p.floatHeader(HeaderDPR, legacyDPR)

	if width == 0 && height == 0 && dpr == 0 {
		return Screen{}, ErrUnsupported
	}

	s := Screen{
		Width:       width,
		Height:      height,
		AvailWidth:  width,
		AvailHeight: height,
		PixelRatio:  dpr,
	}
	switch {
	case width > 0 && height > width:
		s.Orientation = "portrait-primary"
	case width > 0 && height > 0:
		s.Orientation = "landscape-primary"
	}
	return s, nil
}

func (p *Request) HardwareConcurrency() (int, error) {
	return 0, ErrUnsupported
}

func (p *Request) DeviceMemory() (float64, error) {
	if v := p.floatHeader(HeaderDeviceMemory, legacyDeviceMemory); v > 0 {
		return v, nil
	}
	return 0, ErrUnsupported
}

func (p *Request) MaxTouchPoints() (int, error) {
	return 0, ErrUnsupported
}

func (p *Request) Timezone() (string, error) {
	return "", ErrUnsupported
}

func (p *Request) Feature(string) (bool, error) {
	return false, ErrUnsupported
}

func (p *Request) WebGL() (WebGLContext, error) {
	return nil, ErrUnsupported
}

func (p *Request) Canvas(int, int) (canvas.Surface, error) {
	return nil, ErrUnsupported
}

// Location reconstructs the absolute URL of the request, honoring
// X-Forwarded-Proto and X-Forwarded-Host from a fronting proxy.
func (p *Request) Location() (*url.URL, error) {
	u := *p.r.URL
	u.Scheme = "http"
	if p.r.TLS != nil {
		u.Scheme = "https"
	}
	if proto := p.r.Header.Get("X-Forwarded-Proto"); proto != "" {
		u.Scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	u.Host = p.r.Host
	if host := p.r.Header.Get("X-Forwarded-Host"); host != "" {
		u.Host = strings.TrimSpace(strings.Split(host, ",")[0])
	}
	if u.Host == "" {
		return nil, ErrUnsupported
	}
	return &u, nil
}

func (p *Request) Referrer() (string, error) {
	return p.r.Referer(), nil
}

func (p *Request) Document() (*goquery.Document, error) {
	return nil, ErrUnsupported
}

func (p *Request) intHeader(names ...string) int {
	for _, name := range names {
		if v, err := strconv.Atoi(strings.TrimSpace(p.r.Header.Get(name))); err == nil && v > 0 {
			return v
		}
	}
	return 0
}

func (p *Request) floatHeader(names ...string) float64 {
	for _, name := range names {
		if v, err := strconv.ParseFloat(strings.TrimSpace(p.r.Header.Get(name)), 64); err == nil && v > 0 {
			return v
		}
	}
	return 0
}

func unquote(v string) string {
	return strings.Trim(strings.TrimSpace(v), `"`)
}
