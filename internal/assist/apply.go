package assist

import (
	"strings"

	"github.com/dshills/prosecheck/internal/engine/tracking"
)

// driftWindow is how far around the expected offset Apply searches for the
// suggestion text before falling back to one full-document search.
const driftWindow = 64

// Apply commits a suggestion into the live buffer.
//
// The buffer text at the recorded offsets must equal the suggestion's text.
// If it does not (drift from an untracked mutation), a bounded window around
// the expected offset is searched, then the full document exactly once. If
// the text is still absent the suggestion is stale: it is removed, no edit
// is made, and ErrStaleSuggestion is returned. The engine never writes into
// unrelated text. On success every other pending suggestion and highlight
// mark shifts in the same operation and the caret lands after the
// replacement.
func (s *Service) Apply(id string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrServiceClosed
	}

	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrUnknownSuggestion
	}
	sug := s.suggestions[idx]

	document := s.buf.Text()
	start, ok := locate(document, sug)
	if !ok {
		s.suggestions = append(s.suggestions[:idx], s.suggestions[idx+1:]...)
		s.mu.Unlock()
		s.publishMarks()
		return ErrStaleSuggestion
	}
	end := start + int64(len(sug.Text))

	result, err := s.buf.Replace(start, end, sug.Replacement)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	s.suggestions = append(s.suggestions[:idx], s.suggestions[idx+1:]...)
	s.remapLocked(tracking.Edit{
		Start:  start,
		End:    end,
		NewLen: int64(len(result.Edit.NewText)),
	})
	caret := result.NewEnd
	s.mu.Unlock()

	s.buf.SetSelection(caret)
	s.publishMarks()
	return nil
}

// locate finds the byte offset of the suggestion's text in the document.
//
// Exact match at the recorded offsets wins. Otherwise a window of
// driftWindow bytes on each side is scanned, then the whole document once.
// A found index is used as-is: the search is over exact bytes, so no offset
// correction is ever applied to it.
func locate(document string, sug Suggestion) (int64, bool) {
	docLen := int64(len(document))
	if sug.Start >= 0 && sug.End <= docLen && sug.Start < sug.End &&
		document[sug.Start:sug.End] == sug.Text {
		return sug.Start, true
	}

	lo := sug.Start - driftWindow
	if lo < 0 {
		lo = 0
	}
	hi := sug.End + driftWindow
	if hi > docLen {
		hi = docLen
	}
	if lo < hi {
		if i := strings.Index(document[lo:hi], sug.Text); i >= 0 {
			return lo + int64(i), true
		}
	}

	if i := strings.Index(document, sug.Text); i >= 0 {
		return int64(i), true
	}
	return 0, false
}
