package assist

import (
	"testing"

	"github.com/dshills/prosecheck/internal/checker"
)

func tehSuggestion() Suggestion {
	return Suggestion{
		ID:          "s1",
		Text:        "Teh",
		Replacement: "The",
		Start:       0,
		End:         3,
		Kind:        checker.KindSpelling,
	}
}

func TestDismissalStore(t *testing.T) {
	doc := "Teh cat sat on the mat beside the door."

	t.Run("dismiss suppresses exact repeat", func(t *testing.T) {
		d := NewDismissalStore(20)
		s := tehSuggestion()
		if d.IsDismissed(s, doc) {
			t.Error("fresh suggestion should not be dismissed")
		}
		d.Dismiss(s, doc)
		if !d.IsDismissed(s, doc) {
			t.Error("unchanged document should keep the suggestion dismissed")
		}
	})

	t.Run("context edit auto-expires suppression", func(t *testing.T) {
		d := NewDismissalStore(20)
		s := tehSuggestion()
		d.Dismiss(s, doc)

		edited := "Teh dog sat on the mat beside the door."
		if d.IsDismissed(s, edited) {
			t.Error("edited context should clear the dismissal")
		}
	})

	t.Run("edit outside context window keeps suppression", func(t *testing.T) {
		d := NewDismissalStore(10)
		s := tehSuggestion()
		d.Dismiss(s, doc)

		// The change is more than 10 bytes past the span end.
		edited := "Teh cat sat on the rug beside the door."
		if !d.IsDismissed(s, edited) {
			t.Error("edit outside the context window must not clear the dismissal")
		}
	})

	t.Run("fingerprint distinguishes replacement and kind", func(t *testing.T) {
		d := NewDismissalStore(20)
		s := tehSuggestion()
		d.Dismiss(s, doc)

		other := s
		other.Replacement = "Ten"
		if d.IsDismissed(other, doc) {
			t.Error("different replacement must not match")
		}

		other = s
		other.Kind = checker.KindGrammar
		if d.IsDismissed(other, doc) {
			t.Error("different kind must not match")
		}
	})

	t.Run("clear wipes everything", func(t *testing.T) {
		d := NewDismissalStore(20)
		s := tehSuggestion()
		d.Dismiss(s, doc)
		d.Clear()
		if d.Len() != 0 {
			t.Error("expected empty store after clear")
		}
		if d.IsDismissed(s, doc) {
			t.Error("cleared suggestion should not be dismissed")
		}
	})

	t.Run("window clamps at document boundaries", func(t *testing.T) {
		d := NewDismissalStore(100)
		s := tehSuggestion()
		short := "Teh cat"
		d.Dismiss(s, short)
		if !d.IsDismissed(s, short) {
			t.Error("clamped window should still match")
		}
	})
}
