package canvas

import "strconv"

const (
	sampleSize = 100
	hashLength = 8
)

// Hash reduces an encoded surface to a short base-36 token. Only three
// windows are sampled (head, middle, tail) since the data URL prefix and PNG
// framing carry little entropy and the full string can be large.
func Hash(dataURL string) string {
	var h int32
	for _, b := range sample(dataURL) {
		h = (h << 5) - h + int32(b)
	}

	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}

	out := strconv.FormatInt(abs, 36)
	if len(out) > hashLength {
		out = out[:hashLength]
	}
	return out
}

func sample(s string) []byte {
	n := len(s)
	if n <= 3*sampleSize {
		return []byte(s)
	}

	out := make([]byte, 0, 3*sampleSize)
	out = append(out, s[:sampleSize]...)
	mid := n/2 - sampleSize/2
	out = append(out, s[mid:mid+sampleSize]...)
	out = append(out, s[n-sampleSize:]...)
	return out
}
