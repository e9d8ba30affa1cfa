package checker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dshills/prosecheck/internal/segment"
)

// DefaultHTTPTimeout bounds a single checker call so a slow service degrades
// to an empty result instead of stalling the analysis pass.
const DefaultHTTPTimeout = 10 * time.Second

// maxResponseBytes caps how much of a checker response is read.
const maxResponseBytes = 4 << 20

// HTTPChecker calls a remote checker service over HTTP/JSON.
// The request carries the submitted segments; the response is validated
// entry by entry before any suggestion reaches the caller.
type HTTPChecker struct {
	name     string
	kind     Kind
	endpoint string
	client   *http.Client
	timeout  time.Duration

	// DroppedEntries counts malformed response entries discarded since
	// construction; exposed for logging by the scheduler.
	dropped int
}

// HTTPOption configures an HTTPChecker.
type HTTPOption func(*HTTPChecker)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPChecker) {
		h.client = c
	}
}

// WithTimeout bounds each checker call.
func WithTimeout(d time.Duration) HTTPOption {
	return func(h *HTTPChecker) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// NewHTTPChecker creates a checker for a remote service endpoint.
func NewHTTPChecker(name string, kind Kind, endpoint string, opts ...HTTPOption) *HTTPChecker {
	h := &HTTPChecker{
		name:     name,
		kind:     kind,
		endpoint: endpoint,
		client:   &http.Client{},
		timeout:  DefaultHTTPTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Name implements Checker.
func (h *HTTPChecker) Name() string { return h.name }

// Kind implements Checker.
func (h *HTTPChecker) Kind() Kind { return h.kind }

// Check implements Checker.
func (h *HTTPChecker) Check(ctx context.Context, units []segment.Unit) ([]RawSuggestion, error) {
	if h.endpoint == "" {
		return nil, ErrNoEndpoint
	}
	if len(units) == 0 {
		return nil, nil
	}

	body, err := encodeRequest(units)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", h.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("call %s: unexpected status %d", h.name, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	suggestions, dropped, err := decodeResponse(data, units)
	if err != nil {
		return nil, err
	}
	h.dropped += dropped
	return suggestions, nil
}

// DroppedEntries returns how many malformed response entries have been
// discarded by this checker.
func (h *HTTPChecker) DroppedEntries() int { return h.dropped }
