package assist

import (
	"testing"

	"github.com/dshills/prosecheck/internal/checker"
	"github.com/dshills/prosecheck/internal/segment"
)

func segmentAll(text string) []segment.Unit {
	return segment.NewSegmenter().Segment(text)
}

func TestCache(t *testing.T) {
	t.Run("miss on empty cache", func(t *testing.T) {
		c := NewCache()
		units := segmentAll("One. Two.")
		if _, ok := c.Lookup("spelling", units[0]); ok {
			t.Error("expected miss on empty cache")
		}
	})

	t.Run("hit only while hash matches", func(t *testing.T) {
		c := NewCache()
		units := segmentAll("One. Two.")
		raw := []checker.RawSuggestion{{UnitID: 0, Text: "One", Replacement: "Won", Start: 0, End: 3, Kind: checker.KindStyle}}
		c.Store("style", units[0], raw)

		entry, ok := c.Lookup("style", units[0])
		if !ok {
			t.Fatal("expected hit for unchanged unit")
		}
		if len(entry.Suggestions) != 1 {
			t.Errorf("expected cached suggestions, got %d", len(entry.Suggestions))
		}

		// Same ID, different content: the entry is invalid.
		changed := segmentAll("Off. Two.")
		if _, ok := c.Lookup("style", changed[0]); ok {
			t.Error("expected miss after unit content changed")
		}
	})

	t.Run("categories are independent", func(t *testing.T) {
		c := NewCache()
		units := segmentAll("One.")
		c.Store("style", units[0], nil)
		if _, ok := c.Lookup("grammar", units[0]); ok {
			t.Error("entry must not leak across categories")
		}
	})

	t.Run("partition separates dirty from clean", func(t *testing.T) {
		c := NewCache()
		units := segmentAll("One. Two. Three.")
		c.Store("style", units[0], nil)
		c.Store("style", units[2], nil)

		clean, dirty := c.Partition("style", units)
		if len(clean) != 2 || len(dirty) != 1 {
			t.Fatalf("expected 2 clean / 1 dirty, got %d/%d", len(clean), len(dirty))
		}
		if dirty[0].ID != 1 {
			t.Errorf("expected unit 1 dirty, got %d", dirty[0].ID)
		}
	})

	t.Run("clear", func(t *testing.T) {
		c := NewCache()
		units := segmentAll("One.")
		c.Store("style", units[0], nil)
		c.Store("grammar", units[0], nil)

		c.Clear("style")
		if c.Len("style") != 0 {
			t.Error("style entries should be gone")
		}
		if c.Len("grammar") != 1 {
			t.Error("grammar entries should remain")
		}

		c.Clear("")
		if c.Len("grammar") != 0 {
			t.Error("clear all should wipe everything")
		}
	})
}
