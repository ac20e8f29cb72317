package canvas

import "errors"

var (
	ErrCanvasBlocked   = errors.New("canvas.blocked")
	ErrFontUnavailable = errors.New("canvas.font_unavailable")
	ErrEmptyDataURL    = errors.New("canvas.empty_data_url")
	ErrInvalidSize     = errors.New("canvas.invalid_size")
)
