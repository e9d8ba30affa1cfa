package assist

import (
	"github.com/google/uuid"

	"github.com/dshills/prosecheck/internal/checker"
	"github.com/dshills/prosecheck/internal/engine/tracking"
	"github.com/dshills/prosecheck/internal/segment"
)

// Suggestion is an active, document-absolute suggestion.
// Offsets satisfy 0 <= Start < End <= len(document) while the suggestion is
// active; the service remaps or drops it on every buffer mutation.
type Suggestion struct {
	ID          string
	Text        string
	Replacement string
	Start       int64
	End         int64
	Kind        checker.Kind
	Description string
}

// Span returns the suggestion's document range.
func (s Suggestion) Span() tracking.Span {
	return tracking.Span{Start: s.Start, End: s.End}
}

// Mark is the 1:1 projection of an active Suggestion for the rendering
// surface. It stays in lockstep with its suggestion's offsets because both
// are derived from the same remapped state.
type Mark struct {
	ID       string
	From     int64
	To       int64
	ColorTag string
}

// DecorationSink receives the full set of highlight marks after every
// change to the active suggestion set.
type DecorationSink interface {
	UpdateDecorations(marks []Mark)
}

// DecorationSinkFunc adapts a function to the DecorationSink interface.
type DecorationSinkFunc func(marks []Mark)

// UpdateDecorations implements DecorationSink.
func (f DecorationSinkFunc) UpdateDecorations(marks []Mark) { f(marks) }

// colorTag maps a suggestion kind to its decoration color.
func colorTag(k checker.Kind) string {
	switch k {
	case checker.KindSpelling:
		return "red"
	case checker.KindGrammar:
		return "blue"
	default:
		return "purple"
	}
}

// mark projects a suggestion onto its highlight mark.
func (s Suggestion) mark() Mark {
	return Mark{
		ID:       s.ID,
		From:     s.Start,
		To:       s.End,
		ColorTag: colorTag(s.Kind),
	}
}

// absolute converts a unit-relative raw suggestion into a document-absolute
// Suggestion anchored at the unit's current offset.
func absolute(raw checker.RawSuggestion, u segment.Unit) Suggestion {
	return Suggestion{
		ID:          uuid.New().String(),
		Text:        raw.Text,
		Replacement: raw.Replacement,
		Start:       u.Start + raw.Start,
		End:         u.Start + raw.End,
		Kind:        raw.Kind,
		Description: raw.Description,
	}
}
