package checker

import "errors"

// Errors returned by checker adapters.
var (
	ErrDecodeResponse = errors.New("checker response is not decodable")
	ErrNoEndpoint     = errors.New("checker endpoint not configured")
	ErrClosed         = errors.New("checker is closed")
)
