package assist

import (
	"testing"

	"github.com/dshills/prosecheck/internal/checker"
)

func sug(id string, start, end int64, kind checker.Kind) Suggestion {
	return Suggestion{ID: id, Text: "t", Replacement: "r", Start: start, End: end, Kind: kind}
}

func TestMerge(t *testing.T) {
	t.Run("sorted by start", func(t *testing.T) {
		merged := Merge(
			[]Suggestion{sug("a", 30, 35, checker.KindStyle)},
			[]Suggestion{sug("b", 5, 8, checker.KindGrammar), sug("c", 20, 22, checker.KindSpelling)},
		)
		if len(merged) != 3 {
			t.Fatalf("expected 3, got %d", len(merged))
		}
		if merged[0].ID != "b" || merged[1].ID != "c" || merged[2].ID != "a" {
			t.Errorf("unexpected order: %s %s %s", merged[0].ID, merged[1].ID, merged[2].ID)
		}
	})

	t.Run("ties broken by kind priority", func(t *testing.T) {
		style := sug("style", 10, 15, checker.KindStyle)
		style.Text = "x"
		spelling := sug("spelling", 10, 15, checker.KindSpelling)
		grammar := sug("grammar", 10, 15, checker.KindGrammar)
		grammar.Text = "y"

		merged := Merge([]Suggestion{style, spelling, grammar})
		if merged[0].ID != "spelling" || merged[1].ID != "grammar" || merged[2].ID != "style" {
			t.Errorf("unexpected priority order: %s %s %s", merged[0].ID, merged[1].ID, merged[2].ID)
		}
	})

	t.Run("duplicates collapse keeping higher priority", func(t *testing.T) {
		a := sug("a", 10, 13, checker.KindStyle)
		b := sug("b", 10, 13, checker.KindSpelling)
		// Identical (start, end, text, replacement) from two checkers.
		merged := Merge([]Suggestion{a}, []Suggestion{b})
		if len(merged) != 1 {
			t.Fatalf("expected 1 after dedupe, got %d", len(merged))
		}
		if merged[0].Kind != checker.KindSpelling {
			t.Errorf("expected spelling kept, got %s", merged[0].Kind)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if Merge() != nil {
			t.Error("expected nil for no batches")
		}
		if Merge(nil, nil) != nil {
			t.Error("expected nil for empty batches")
		}
	})
}
