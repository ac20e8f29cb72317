package reporter

import "errors"

var (
	ErrInvalidEndpoint  = errors.New("reporter.invalid_endpoint")
	ErrInvalidPayload   = errors.New("reporter.invalid_payload")
	ErrTransport        = errors.New("reporter.transport_failure")
	ErrTimeout          = errors.New("reporter.timeout")
	ErrUnexpectedStatus = errors.New("reporter.unexpected_status")
)
