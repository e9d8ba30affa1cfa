package segment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// ErrInvariant indicates that the concatenated unit texts did not
// reconstruct the original document.
var ErrInvariant = errors.New("segmentation does not reconstruct document")

// InvariantError carries a unified diff between the original document and
// the reconstruction, for diagnosing a broken strategy in development.
type InvariantError struct {
	Diff string
}

// Error implements error.
func (e *InvariantError) Error() string {
	return ErrInvariant.Error()
}

// Unwrap makes the error match ErrInvariant with errors.Is.
func (e *InvariantError) Unwrap() error {
	return ErrInvariant
}

// Verify checks the reconstruction invariant: units must be ordered,
// non-overlapping, and concatenate back to text byte-exactly.
func Verify(text string, units []Unit) error {
	var sb strings.Builder
	var prevEnd int64
	for _, u := range units {
		if u.Start != prevEnd || u.End < u.Start {
			return invariantError(text, units)
		}
		if int64(len(u.Text)) != u.End-u.Start {
			return invariantError(text, units)
		}
		sb.WriteString(u.Text)
		prevEnd = u.End
	}
	if sb.String() != text {
		return invariantError(text, units)
	}
	return nil
}

func invariantError(text string, units []Unit) error {
	var sb strings.Builder
	for _, u := range units {
		sb.WriteString(u.Text)
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(text),
		B:        difflib.SplitLines(sb.String()),
		FromFile: "document",
		ToFile:   "reconstruction",
		Context:  2,
	})
	if err != nil {
		diff = fmt.Sprintf("(diff unavailable: %v)", err)
	}
	return &InvariantError{Diff: diff}
}
