package checker

import (
	"encoding/json"
	"fmt"

	"github.com/dshills/prosecheck/internal/segment"
)

// Wire types for the checker service protocol. Offsets are unit-relative.

type wireSegment struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
	Hash string `json:"hash"`
}

type wireRequest struct {
	Segments []wireSegment `json:"segments"`
}

// wireEntry uses pointer fields so that required fields can be distinguished
// from their zero values during validation.
type wireEntry struct {
	Segment     *int    `json:"segment"`
	Text        *string `json:"text"`
	Suggestion  *string `json:"suggestion"`
	Start       *int64  `json:"start"`
	End         *int64  `json:"end"`
	Type        *string `json:"type"`
	Description string  `json:"description"`
}

type wireResponse struct {
	Suggestions []wireEntry `json:"suggestions"`
}

func encodeRequest(units []segment.Unit) ([]byte, error) {
	req := wireRequest{Segments: make([]wireSegment, len(units))}
	for i, u := range units {
		req.Segments[i] = wireSegment{ID: u.ID, Text: u.Text, Hash: u.Hash}
	}
	return json.Marshal(req)
}

// decodeResponse parses a checker response body. A body that is not the
// documented shape is a decode failure; individually malformed entries are
// dropped and counted instead.
func decodeResponse(body []byte, units []segment.Unit) ([]RawSuggestion, int, error) {
	var resp wireResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrDecodeResponse, err)
	}
	suggestions, dropped := validateEntries(resp.Suggestions, units)
	return suggestions, dropped, nil
}

// validateEntries converts wire entries to RawSuggestions, dropping entries
// that fail any field check. The checks are strict on purpose: guessing at
// the intended structure of a malformed entry risks corrupting unrelated
// text when the suggestion is later applied.
func validateEntries(entries []wireEntry, units []segment.Unit) ([]RawSuggestion, int) {
	byID := make(map[int]segment.Unit, len(units))
	for _, u := range units {
		byID[u.ID] = u
	}

	var out []RawSuggestion
	dropped := 0
	for _, e := range entries {
		raw, ok := validateEntry(e, units, byID)
		if !ok {
			dropped++
			continue
		}
		out = append(out, raw)
	}
	return out, dropped
}

func validateEntry(e wireEntry, units []segment.Unit, byID map[int]segment.Unit) (RawSuggestion, bool) {
	if e.Text == nil || e.Suggestion == nil || e.Start == nil || e.End == nil || e.Type == nil {
		return RawSuggestion{}, false
	}

	kind := Kind(*e.Type)
	if !kind.IsValid() {
		return RawSuggestion{}, false
	}

	var unit segment.Unit
	switch {
	case e.Segment != nil:
		u, ok := byID[*e.Segment]
		if !ok {
			return RawSuggestion{}, false
		}
		unit = u
	case len(units) == 1:
		unit = units[0]
	default:
		// Ambiguous attribution across multiple segments.
		return RawSuggestion{}, false
	}

	start, end := *e.Start, *e.End
	if start < 0 || start >= end || end > int64(len(unit.Text)) {
		return RawSuggestion{}, false
	}
	if unit.Text[start:end] != *e.Text {
		// Offsets do not point at the flagged text.
		return RawSuggestion{}, false
	}

	return RawSuggestion{
		UnitID:      unit.ID,
		Text:        *e.Text,
		Replacement: *e.Suggestion,
		Start:       start,
		End:         end,
		Kind:        kind,
		Description: e.Description,
	}, true
}
