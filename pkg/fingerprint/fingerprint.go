package fingerprint

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dmitrymomot/visitorid/pkg/signals"
	"github.com/dmitrymomot/visitorid/pkg/useragent"
)

// Version identifies the segment layout produced by Compose. It travels with
// every report so the collector never has to guess the shape.
const Version = "2"

// Delimiter separates segments.
const Delimiter = "|"

// SegmentCount is the number of segments in a Version 2 fingerprint.
const SegmentCount = 9

const maxGPULength = 20

// Fingerprint is a delimited visitor identifier:
//
//	os|browser|major|WxH|{cores}cores-{mem}GB|canvas|model|pixelratio|gpu
type Fingerprint string

func (f Fingerprint) String() string { return string(f) }

// Compose builds the fingerprint from a signal bundle. The output depends on
// nothing but the bundle.
func Compose(b signals.Bundle) Fingerprint {
	segments := []string{
		b.OS.Name,
		BrowserID(b.Browser),
		b.Browser.Major(),
		fmt.Sprintf("%dx%d", b.Screen.Width, b.Screen.Height),
		fmt.Sprintf("%dcores-%sGB", b.Hardware.Cores, strconv.FormatFloat(b.Hardware.MemoryGB, 'f', -1, 64)),
		b.CanvasHash,
		b.Device.Model,
		strconv.FormatFloat(b.Screen.PixelRatio, 'f', 3, 64),
		truncate(b.GPURenderer, maxGPULength),
	}
	for i, s := range segments {
		segments[i] = strings.ReplaceAll(s, Delimiter, "/")
	}
	return Fingerprint(strings.Join(segments, Delimiter))
}

// BrowserID names the browser for the fingerprint. On iOS the wrapping app
// is kept apart from genuine Safari: Chrome for iOS becomes "Chrome-WebKit".
func BrowserID(b useragent.Browser) string {
	if b.Actual != "" && b.Actual != useragent.BrowserUnknown && b.Actual != b.Name {
		return b.Actual + "-WebKit"
	}
	return b.Name
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Segments splits a fingerprint into its parts.
func Segments(f Fingerprint) []string {
	if f == "" {
		return nil
	}
	return strings.Split(string(f), Delimiter)
}

// Validate checks the segment layout of f.
func Validate(f Fingerprint) error {
	if f == "" {
		return ErrEmptyFingerprint
	}
	if n := len(Segments(f)); n != SegmentCount {
		return fmt.Errorf("%w: got %d segments, want %d", ErrInvalidFingerprint, n, SegmentCount)
	}
	return nil
}

// Equal reports whether two fingerprints identify the same browser state.
func Equal(a, b Fingerprint) bool {
	return a != "" && a == b
}

// Parts is a decoded fingerprint.
type Parts struct {
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	Major      string `json:"major"`
	Screen     string `json:"screen"`
	Hardware   string `json:"hardware"`
	Canvas     string `json:"canvas"`
	Model      string `json:"model"`
	PixelRatio string `json:"pixelRatio"`
	GPU        string `json:"gpu"`
}

// Parse validates f and names its segments.
func Parse(f Fingerprint) (Parts, error) {
	if err := Validate(f); err != nil {
		return Parts{}, err
	}
	s := Segments(f)
	return Parts{
		OS:         s[0],
		Browser:    s[1],
		Major:      s[2],
		Screen:     s[3],
		Hardware:   s[4],
		Canvas:     s[5],
		Model:      s[6],
		PixelRatio: s[7],
		GPU:        s[8],
	}, nil
}
