package fingerprint

import "errors"

var (
	ErrEmptyFingerprint   = errors.New("fingerprint.empty")
	ErrInvalidFingerprint = errors.New("fingerprint.invalid_format")
)
