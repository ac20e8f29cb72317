package canvas

import "image/color"

// Scene dimensions.
const (
	SceneWidth  = 280
	SceneHeight = 80
)

const pangram = "Cwm fjordbank glyphs vext quiz, \U0001F603 ♥"

// DrawScene paints the fixed fingerprint scene. Every element targets a part
// of the rendering stack that differs between devices: font fallback and
// hinting, emoji glyphs, gradient interpolation, alpha compositing of
// overlapping shapes and antialiasing of half-pixel lines.
func DrawScene(s Surface) {
	// Fonts that are missing simply fall back, which is itself a signal.
	_ = s.SetFont("no-real-font-123, Arial, DejaVu Sans", 14)
	s.SetFillColor(color.NRGBA{R: 0xff, G: 0x66, A: 0xff})
	s.FillRect(125, 1, 62, 20)

	s.SetFillColor(color.NRGBA{G: 0x66, B: 0x99, A: 0xff})
	s.FillText(pangram, 2, 15)

	_ = s.SetFont("Times New Roman, Liberation Serif, serif", 18)
	s.SetFillColor(color.NRGBA{R: 102, G: 204, A: 51})
	s.FillText(pangram, 4, 45)

	_ = s.SetFont("Courier New, DejaVu Sans Mono, monospace", 11)
	s.SetFillColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff})
	s.FillText("éßñ 你好 مرحبا", 190, 70)

	s.SetLinearGradient(0, 50, SceneWidth, 80,
		Stop{Offset: 0, Color: color.NRGBA{R: 255, A: 180}},
		Stop{Offset: 0.5, Color: color.NRGBA{G: 255, A: 120}},
		Stop{Offset: 1, Color: color.NRGBA{B: 255, A: 180}},
	)
	s.FillRect(0, 52, 180, 24)

	circles := []struct {
		x, y, r float64
		c       color.NRGBA
	}{
		{x: 210.25, y: 30.5, r: 18.75, c: color.NRGBA{R: 255, B: 255, A: 128}},
		{x: 228.5, y: 30.25, r: 18.75, c: color.NRGBA{G: 255, B: 255, A: 128}},
		{x: 219.75, y: 46.5, r: 18.75, c: color.NRGBA{R: 255, G: 255, A: 128}},
	}
	for _, c := range circles {
		s.SetFillColor(c.c)
		s.FillCircle(c.x, c.y, c.r)
	}

	s.SetStrokeColor(color.NRGBA{R: 0x80, G: 0x20, B: 0x60, A: 0xcc})
	for i := range 4 {
		off := float64(i)*7 + 0.5
		s.StrokeLine(off, 0.5, off+60.5, SceneHeight-0.5, 1)
	}
}
