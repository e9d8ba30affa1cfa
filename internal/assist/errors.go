package assist

import "errors"

// Errors returned by the assist service.
var (
	// ErrStaleSuggestion means the suggestion's text could not be located
	// in the live document; no edit was made.
	ErrStaleSuggestion = errors.New("suggestion is stale")

	// ErrUnknownSuggestion means the suggestion ID is not in the active set.
	ErrUnknownSuggestion = errors.New("unknown suggestion")

	// ErrServiceClosed is returned after Close.
	ErrServiceClosed = errors.New("assist service is closed")
)
