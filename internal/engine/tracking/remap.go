package tracking

import "fmt"

// Span is a half-open byte range [Start, End) in the document.
type Span struct {
	Start int64
	End   int64
}

// String returns a human-readable representation of the span.
func (s Span) String() string {
	return fmt.Sprintf("[%d:%d)", s.Start, s.End)
}

// Len returns the span length in bytes.
func (s Span) Len() int64 {
	return s.End - s.Start
}

// Contains reports whether the offset falls inside the span.
func (s Span) Contains(offset int64) bool {
	return offset >= s.Start && offset < s.End
}

// Overlaps reports whether two spans share at least one byte.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// Edit describes a buffer mutation: the byte range that was replaced and the
// length of the text that replaced it.
type Edit struct {
	Start  int64
	End    int64
	NewLen int64
}

// Delta returns the change in document length caused by the edit.
func (e Edit) Delta() int64 {
	return e.NewLen - (e.End - e.Start)
}

// Remap adjusts a span for an edit.
// The returned bool is false when the span overlapped the edited range and
// must be dropped.
func Remap(s Span, e Edit) (Span, bool) {
	switch {
	case s.End <= e.Start:
		// Entirely before the edit.
		return s, true
	case s.Start >= e.End:
		// Entirely after the edit; shift by the delta.
		d := e.Delta()
		return Span{Start: s.Start + d, End: s.End + d}, true
	default:
		// Overlap: the referenced text no longer exists verbatim.
		return Span{}, false
	}
}

// RemapAll applies an edit to a set of spans, returning the surviving spans
// and the indexes (into the input) of spans that were dropped.
func RemapAll(spans []Span, e Edit) (kept []Span, dropped []int) {
	kept = spans[:0]
	for i, s := range spans {
		remapped, ok := Remap(s, e)
		if !ok {
			dropped = append(dropped, i)
			continue
		}
		kept = append(kept, remapped)
	}
	return kept, dropped
}
