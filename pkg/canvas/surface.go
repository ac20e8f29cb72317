package canvas

import (
	"fmt"
	"image/color"
	"strconv"
)

// Stop is one color stop of a linear gradient.
type Stop struct {
	Offset float64
	Color  color.Color
}

// Surface is the subset of a 2D drawing context the fingerprint scene needs.
// Raster draws in process; browser-backed implementations replay the same
// calls on a real canvas so the result reflects the visitor's rasterizer.
type Surface interface {
	Width() int
	Height() int

	// SetFont selects a CSS-like font family list at the given pixel size.
	// A missing family is not fatal; the surface keeps its current face.
	SetFont(family string, size float64) error
	SetFillColor(c color.Color)
	SetLinearGradient(x0, y0, x1, y1 float64, stops ...Stop)
	SetStrokeColor(c color.Color)

	FillRect(x, y, w, h float64)
	FillText(text string, x, y float64)
	FillCircle(x, y, r float64)
	StrokeLine(x1, y1, x2, y2, width float64)

	// DataURL serializes the surface, e.g. "data:image/png;base64,...".
	DataURL() (string, error)
}

// CSSColor renders c as a CSS rgba() expression.
func CSSColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	alpha := strconv.FormatFloat(float64(n.A)/255, 'f', 3, 64)
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", n.R, n.G, n.B, alpha)
}
