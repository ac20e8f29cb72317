package browserenv

import "errors"

var (
	ErrUnsupported     = errors.New("browserenv.unsupported")
	ErrNoMatch         = errors.New("browserenv.no_element_matches")
	ErrInvalidSnapshot = errors.New("browserenv.invalid_snapshot")
)
