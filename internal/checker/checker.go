package checker

import (
	"context"

	"github.com/dshills/prosecheck/internal/segment"
)

// Kind categorizes a suggestion by the issue it addresses.
type Kind string

const (
	KindSpelling Kind = "spelling"
	KindGrammar  Kind = "grammar"
	KindStyle    Kind = "style"
)

// IsValid reports whether the kind is one of the known categories.
func (k Kind) IsValid() bool {
	switch k {
	case KindSpelling, KindGrammar, KindStyle:
		return true
	default:
		return false
	}
}

// Priority returns the presentation priority of the kind.
// Lower is more important: spelling > grammar > style.
func (k Kind) Priority() int {
	switch k {
	case KindSpelling:
		return 0
	case KindGrammar:
		return 1
	default:
		return 2
	}
}

// RawSuggestion is a suggestion as produced by a checker, with offsets
// relative to the submitted unit.
type RawSuggestion struct {
	UnitID      int    // ID of the unit the offsets are relative to
	Text        string // The flagged text
	Replacement string // The proposed replacement
	Start       int64  // Unit-relative start offset
	End         int64  // Unit-relative end offset (exclusive)
	Kind        Kind
	Description string
}

// Checker produces suggestions of one or more kinds from document units.
//
// Implementations must honor the context deadline and must not retain the
// units after returning. An error return is treated by the caller as an
// empty result: the failure is logged and the units are retried on the next
// scheduled trigger.
type Checker interface {
	// Name identifies the checker; it is also the scheduling category.
	Name() string

	// Kind is the primary kind of suggestion this checker produces.
	Kind() Kind

	// Check analyzes the units and returns raw suggestions.
	Check(ctx context.Context, units []segment.Unit) ([]RawSuggestion, error)
}
