package buffer

import "fmt"

// Edit represents a text edit operation.
// It specifies a range to replace and the new text.
type Edit struct {
	Start   int64  // Start of the replaced range (bytes)
	End     int64  // End of the replaced range (exclusive)
	NewText string // The replacement text
}

// NewInsert creates an Edit that inserts text at an offset.
func NewInsert(offset int64, text string) Edit {
	return Edit{Start: offset, End: offset, NewText: text}
}

// NewDelete creates an Edit that deletes a range of text.
func NewDelete(start, end int64) Edit {
	return Edit{Start: start, End: end}
}

// NewReplace creates an Edit that replaces a range with new text.
func NewReplace(start, end int64, text string) Edit {
	return Edit{Start: start, End: end, NewText: text}
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	if e.Start == e.End {
		return fmt.Sprintf("Insert(%d, %q)", e.Start, e.NewText)
	}
	if e.NewText == "" {
		return fmt.Sprintf("Delete[%d:%d)", e.Start, e.End)
	}
	return fmt.Sprintf("Replace[%d:%d) with %q", e.Start, e.End, e.NewText)
}

// IsInsert returns true if this is a pure insertion (empty range).
func (e Edit) IsInsert() bool {
	return e.Start == e.End && e.NewText != ""
}

// IsDelete returns true if this is a pure deletion (empty replacement).
func (e Edit) IsDelete() bool {
	return e.Start < e.End && e.NewText == ""
}

// Delta returns the change in buffer length caused by this edit.
func (e Edit) Delta() int64 {
	return int64(len(e.NewText)) - (e.End - e.Start)
}

// EditResult contains information about an applied edit.
type EditResult struct {
	Edit     Edit       // The edit as applied
	OldText  string     // The text that was replaced (if any)
	NewEnd   int64      // End of the replacement text in the new buffer
	Delta    int64      // Change in buffer length
	Revision RevisionID // Revision after the edit
}
