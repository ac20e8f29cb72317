package canvas

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
)

// DefaultFontDirs are searched for TrueType files when a Raster is asked for
// a font family.
var DefaultFontDirs = []string{
	"/usr/share/fonts/truetype/dejavu",
	"/usr/share/fonts/truetype/liberation",
	"/usr/share/fonts/TTF",
	"/Library/Fonts",
	"/System/Library/Fonts/Supplemental",
	`C:\Windows\Fonts`,
}

// Raster is a software Surface backed by fogleman/gg. It stands in for a
// browser canvas when the environment has none (snapshots, tests).
type Raster struct {
	dc       *gg.Context
	fontDirs []string
}

// RasterOption configures a Raster.
type RasterOption func(*Raster)

// WithFontDirs replaces the directories searched for font files.
func WithFontDirs(dirs ...string) RasterOption {
	return func(r *Raster) {
		r.fontDirs = dirs
	}
}

// NewRaster allocates a transparent w×h surface.
func NewRaster(w, h int, opts ...RasterOption) (*Raster, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}
	r := &Raster{
		dc:       gg.NewContext(w, h),
		fontDirs: DefaultFontDirs,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Raster) Width() int  { return r.dc.Width() }
func (r *Raster) Height() int { return r.dc.Height() }

func (r *Raster) SetFont(family string, size float64) error {
	for _, name := range strings.Split(family, ",") {
		path := r.findFont(name)
		if path == "" {
			continue
		}
		if err := r.dc.LoadFontFace(path, size); err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrFontUnavailable, family)
}

// findFont matches a family name against file names, ignoring case, spaces
// and quotes: "DejaVu Sans" finds DejaVuSans.ttf.
func (r *Raster) findFont(family string) string {
	want := normalizeFontName(family)
	if want == "" {
		return ""
	}
	for _, dir := range r.fontDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if e.IsDir() || (ext != ".ttf" && ext != ".otf") {
				continue
			}
			if normalizeFontName(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))) == want {
				return filepath.Join(dir, e.Name())
			}
		}
	}
	return ""
}

func normalizeFontName(s string) string {
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	return strings.ToLower(s)
}

func (r *Raster) SetFillColor(c color.Color) {
	r.dc.SetColor(c)
}

func (r *Raster) SetLinearGradient(x0, y0, x1, y1 float64, stops ...Stop) {
	grad := gg.NewLinearGradient(x0, y0, x1, y1)
	for _, s := range stops {
		grad.AddColorStop(s.Offset, s.Color)
	}
	r.dc.SetFillStyle(grad)
}

func (r *Raster) SetStrokeColor(c color.Color) {
	r.dc.SetStrokeStyle(gg.NewSolidPattern(c))
}

func (r *Raster) FillRect(x, y, w, h float64) {
	r.dc.DrawRectangle(x, y, w, h)
	r.dc.Fill()
}

func (r *Raster) FillText(text string, x, y float64) {
	r.dc.DrawString(text, x, y)
}

func (r *Raster) FillCircle(x, y, radius float64) {
	r.dc.DrawCircle(x, y, radius)
	r.dc.Fill()
}

func (r *Raster) StrokeLine(x1, y1, x2, y2, width float64) {
	r.dc.SetLineWidth(width)
	r.dc.DrawLine(x1, y1, x2, y2)
	r.dc.Stroke()
}

func (r *Raster) DataURL() (string, error) {
	var buf bytes.Buffer
	if err := r.dc.EncodePNG(&buf); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
