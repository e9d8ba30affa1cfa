package buffer

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
)

// RevisionID uniquely identifies a buffer revision.
// Each modification to the buffer creates a new revision.
type RevisionID uint64

var revisionCounter uint64

// NewRevisionID generates a new unique revision ID.
func NewRevisionID() RevisionID {
	return RevisionID(atomic.AddUint64(&revisionCounter, 1))
}

// Observer is notified after every buffer mutation, while the buffer lock is
// held. Observers must not call back into the buffer.
type Observer interface {
	OnEdit(result EditResult)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(result EditResult)

// OnEdit implements Observer.
func (f ObserverFunc) OnEdit(result EditResult) { f(result) }

// Buffer holds the live document text.
// All methods are thread-safe. Mutations go through ApplyEdit (or the
// Insert/Delete/Replace wrappers), which notify observers in order of
// registration before returning.
type Buffer struct {
	mu        sync.RWMutex
	text      string
	revision  RevisionID
	selection int64
	observers []Observer
}

// New creates an empty buffer.
func New() *Buffer {
	return &Buffer{revision: NewRevisionID()}
}

// NewFromString creates a buffer with initial content.
// Line endings are normalized to LF.
func NewFromString(s string) *Buffer {
	b := New()
	b.text = normalizeLineEndings(s)
	return b
}

// normalizeLineEndings converts CRLF and CR to LF.
func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// AddObserver registers an observer for buffer mutations.
func (b *Buffer) AddObserver(o Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, o)
}

// Text returns the full buffer content.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// TextRange returns text in the given byte range.
// Out-of-range bounds are clamped.
func (b *Buffer) TextRange(start, end int64) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return sliceClamped(b.text, start, end)
}

// Len returns the total byte length of the buffer.
func (b *Buffer) Len() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return int64(len(b.text))
}

// IsEmpty returns true if the buffer is empty.
func (b *Buffer) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.text) == 0
}

// Revision returns the current revision ID.
func (b *Buffer) Revision() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}

// Selection returns the caret offset.
func (b *Buffer) Selection() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.selection
}

// SetSelection moves the caret, clamped to the buffer bounds.
func (b *Buffer) SetSelection(offset int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selection = clamp(offset, 0, int64(len(b.text)))
}

// Insert inserts text at the given offset.
func (b *Buffer) Insert(offset int64, text string) (EditResult, error) {
	return b.ApplyEdit(NewInsert(offset, text))
}

// Delete removes text in the given range.
func (b *Buffer) Delete(start, end int64) (EditResult, error) {
	return b.ApplyEdit(NewDelete(start, end))
}

// Replace replaces text in the given range with new text.
func (b *Buffer) Replace(start, end int64, text string) (EditResult, error) {
	return b.ApplyEdit(NewReplace(start, end, text))
}

// ApplyEdit applies a single edit to the buffer.
// This is the only mutation path; observers see the result before the
// buffer lock is released, so offset remapping and the mutation are atomic
// with respect to readers.
func (b *Buffer) ApplyEdit(edit Edit) (EditResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if edit.Start < 0 || edit.Start > edit.End || edit.End > int64(len(b.text)) {
		return EditResult{}, ErrRangeInvalid
	}

	oldText := b.text[edit.Start:edit.End]
	newText := normalizeLineEndings(edit.NewText)
	edit.NewText = newText

	var sb strings.Builder
	sb.Grow(len(b.text) + len(newText) - len(oldText))
	sb.WriteString(b.text[:edit.Start])
	sb.WriteString(newText)
	sb.WriteString(b.text[edit.End:])
	b.text = sb.String()
	b.revision = NewRevisionID()

	result := EditResult{
		Edit:     edit,
		OldText:  oldText,
		NewEnd:   edit.Start + int64(len(newText)),
		Delta:    int64(len(newText)) - int64(len(oldText)),
		Revision: b.revision,
	}

	// Keep the caret tracking the edit the same way pending suggestions do.
	switch {
	case b.selection >= edit.End:
		b.selection += result.Delta
	case b.selection > edit.Start:
		b.selection = result.NewEnd
	}

	for _, o := range b.observers {
		o.OnEdit(result)
	}

	return result, nil
}

// Snapshot returns an immutable view of the current buffer state.
type Snapshot struct {
	Text     string
	Revision RevisionID
}

// Snapshot captures the current text and revision.
func (b *Buffer) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Snapshot{Text: b.text, Revision: b.revision}
}

func sliceClamped(s string, start, end int64) string {
	start = clamp(start, 0, int64(len(s)))
	end = clamp(end, start, int64(len(s)))
	return s[start:end]
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
