package canvas

import (
	"encoding/json"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Executor runs a JavaScript expression in a page and returns its string
// result.
type Executor func(js string) (string, error)

// Script is a Surface that records drawing calls as canvas 2D JavaScript.
// DataURL replays them on a fresh <canvas> through the Executor, so the hash
// reflects the page's own rasterizer.
type Script struct {
	width, height int
	exec          Executor
	ops           []string
}

// NewScript creates a recording surface of the given size.
func NewScript(width, height int, exec Executor) (*Script, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return &Script{width: width, height: height, exec: exec}, nil
}

func (s *Script) Width() int  { return s.width }
func (s *Script) Height() int { return s.height }

func (s *Script) SetFont(family string, size float64) error {
	s.emit("c.font = %s;", jsString(num(size)+"px "+family))
	return nil
}

func (s *Script) SetFillColor(c color.Color) {
	s.emit("c.fillStyle = %s;", jsString(CSSColor(c)))
}

func (s *Script) SetLinearGradient(x0, y0, x1, y1 float64, stops ...Stop) {
	var b strings.Builder
	fmt.Fprintf(&b, "{ const g = c.createLinearGradient(%s, %s, %s, %s);", num(x0), num(y0), num(x1), num(y1))
	for _, st := range stops {
		fmt.Fprintf(&b, " g.addColorStop(%s, %s);", num(st.Offset), jsString(CSSColor(st.Color)))
	}
	b.WriteString(" c.fillStyle = g; }")
	s.ops = append(s.ops, b.String())
}

func (s *Script) SetStrokeColor(c color.Color) {
	s.emit("c.strokeStyle = %s;", jsString(CSSColor(c)))
}

func (s *Script) FillRect(x, y, w, h float64) {
	s.emit("c.fillRect(%s, %s, %s, %s);", num(x), num(y), num(w), num(h))
}

func (s *Script) FillText(text string, x, y float64) {
	s.emit("c.fillText(%s, %s, %s);", jsString(text), num(x), num(y))
}

func (s *Script) FillCircle(x, y, r float64) {
	s.emit("c.beginPath(); c.arc(%s, %s, %s, 0, Math.PI * 2, true); c.closePath(); c.fill();", num(x), num(y), num(r))
}

func (s *Script) StrokeLine(x1, y1, x2, y2, width float64) {
	s.emit("c.lineWidth = %s; c.beginPath(); c.moveTo(%s, %s); c.lineTo(%s, %s); c.stroke();",
		num(width), num(x1), num(y1), num(x2), num(y2))
}

// Source returns the self-contained expression DataURL evaluates.
func (s *Script) Source() string {
	var b strings.Builder
	b.WriteString("(() => {\n")
	b.WriteString("const el = document.createElement('canvas');\n")
	fmt.Fprintf(&b, "el.width = %d; el.height = %d;\n", s.width, s.height)
	b.WriteString("const c = el.getContext('2d');\n")
	b.WriteString("if (!c) { throw new Error('2d context unavailable'); }\n")
	for _, op := range s.ops {
		b.WriteString(op)
		b.WriteByte('\n')
	}
	b.WriteString("return el.toDataURL();\n})()")
	return b.String()
}

func (s *Script) DataURL() (string, error) {
	if s.exec == nil {
		return "", ErrCanvasBlocked
	}
	data, err := s.exec(s.Source())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCanvasBlocked, err)
	}
	return data, nil
}

func (s *Script) emit(format string, args ...any) {
	s.ops = append(s.ops, fmt.Sprintf(format, args...))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func jsString(v string) string {
	b, _ := json.Marshal(v)
	return string(b)
}
