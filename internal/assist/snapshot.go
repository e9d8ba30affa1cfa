package assist

import (
	"context"
	"time"

	"github.com/dshills/prosecheck/internal/engine/buffer"
)

// AnalysisSnapshot is the state handed to the persistence collaborator.
// The collaborator is opaque to the engine: it stores and restores, it never
// drives analysis decisions.
type AnalysisSnapshot struct {
	Title       string
	Content     string
	Revision    buffer.RevisionID
	Suggestions []Suggestion
	Dismissals  int
	TakenAt     time.Time
}

// Saver persists analysis snapshots.
type Saver interface {
	Save(ctx context.Context, snap AnalysisSnapshot) error
}

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(ctx context.Context, snap AnalysisSnapshot) error

// Save implements Saver.
func (f SaverFunc) Save(ctx context.Context, snap AnalysisSnapshot) error { return f(ctx, snap) }

// Restore replaces the document with a snapshot's content and reinstates
// the suggestions that still match it, rebuilding the highlight marks.
// Dismissals are session-scoped and are not restored.
func (s *Service) Restore(snap AnalysisSnapshot) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrServiceClosed
	}
	if _, err := s.buf.Replace(0, s.buf.Len(), snap.Content); err != nil {
		s.mu.Unlock()
		return err
	}

	document := s.buf.Text()
	kept := make([]Suggestion, 0, len(snap.Suggestions))
	for _, sug := range snap.Suggestions {
		if sug.Start < 0 || sug.End > int64(len(document)) || sug.Start >= sug.End {
			continue
		}
		if document[sug.Start:sug.End] != sug.Text {
			continue
		}
		kept = append(kept, sug)
	}
	s.suggestions = kept
	s.wordsTyped = 0
	s.mu.Unlock()

	s.publishMarks()
	return nil
}

// Save hands the current document and active suggestions to the configured
// persistence collaborator.
func (s *Service) Save(ctx context.Context, title string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrServiceClosed
	}
	saver := s.saver
	snap := s.buf.Snapshot()
	out := AnalysisSnapshot{
		Title:       title,
		Content:     snap.Text,
		Revision:    snap.Revision,
		Suggestions: append([]Suggestion(nil), s.suggestions...),
		Dismissals:  s.dismissals.Len(),
		TakenAt:     time.Now(),
	}
	s.mu.Unlock()

	if saver == nil {
		return nil
	}
	return saver.Save(ctx, out)
}
