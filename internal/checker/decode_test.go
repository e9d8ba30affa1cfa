package checker

import (
	"strings"
	"testing"

	"github.com/dshills/prosecheck/internal/segment"
)

func unitsFor(t *testing.T, text string) []segment.Unit {
	t.Helper()
	return segment.NewSegmenter().Segment(text)
}

func TestDecodeResponse(t *testing.T) {
	units := unitsFor(t, "Teh cat sat.")

	t.Run("valid entry", func(t *testing.T) {
		body := `{"suggestions":[{"text":"Teh","suggestion":"The","start":0,"end":3,"type":"spelling"}]}`
		got, dropped, err := decodeResponse([]byte(body), units)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if dropped != 0 {
			t.Errorf("expected 0 dropped, got %d", dropped)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 suggestion, got %d", len(got))
		}
		s := got[0]
		if s.Text != "Teh" || s.Replacement != "The" || s.Start != 0 || s.End != 3 {
			t.Errorf("unexpected suggestion %+v", s)
		}
		if s.Kind != KindSpelling {
			t.Errorf("expected spelling kind, got %s", s.Kind)
		}
	})

	t.Run("missing field drops entry only", func(t *testing.T) {
		body := `{"suggestions":[
			{"suggestion":"The","start":0,"end":3,"type":"spelling"},
			{"text":"Teh","suggestion":"The","start":0,"end":3,"type":"spelling"}
		]}`
		got, dropped, err := decodeResponse([]byte(body), units)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if dropped != 1 {
			t.Errorf("expected 1 dropped, got %d", dropped)
		}
		if len(got) != 1 {
			t.Errorf("expected surviving entry, got %d", len(got))
		}
	})

	t.Run("unknown kind dropped", func(t *testing.T) {
		body := `{"suggestions":[{"text":"Teh","suggestion":"The","start":0,"end":3,"type":"vibes"}]}`
		got, dropped, err := decodeResponse([]byte(body), units)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if len(got) != 0 || dropped != 1 {
			t.Errorf("expected entry dropped, got %d kept %d dropped", len(got), dropped)
		}
	})

	t.Run("offsets out of unit bounds dropped", func(t *testing.T) {
		body := `{"suggestions":[{"text":"sat.","suggestion":"sat","start":8,"end":99,"type":"grammar"}]}`
		got, dropped, err := decodeResponse([]byte(body), units)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if len(got) != 0 || dropped != 1 {
			t.Errorf("expected out-of-bounds entry dropped")
		}
	})

	t.Run("text offset mismatch dropped", func(t *testing.T) {
		body := `{"suggestions":[{"text":"cat","suggestion":"dog","start":0,"end":3,"type":"grammar"}]}`
		got, dropped, err := decodeResponse([]byte(body), units)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if len(got) != 0 || dropped != 1 {
			t.Errorf("entry whose offsets do not point at its text must be dropped")
		}
	})

	t.Run("undecodable body is an error", func(t *testing.T) {
		if _, _, err := decodeResponse([]byte("not json"), units); err == nil {
			t.Error("expected decode error")
		}
	})

	t.Run("empty suggestions is the canonical no-issues response", func(t *testing.T) {
		got, dropped, err := decodeResponse([]byte(`{"suggestions":[]}`), units)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if len(got) != 0 || dropped != 0 {
			t.Errorf("expected empty result")
		}
	})
}

func TestDecodeMultiSegmentAttribution(t *testing.T) {
	units := unitsFor(t, "One. Two.")
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}

	t.Run("segment field resolves the unit", func(t *testing.T) {
		body := `{"suggestions":[{"segment":1,"text":"Two","suggestion":"Three","start":1,"end":4,"type":"style"}]}`
		got, _, err := decodeResponse([]byte(body), units)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if len(got) != 1 || got[0].UnitID != 1 {
			t.Fatalf("expected suggestion attributed to unit 1, got %+v", got)
		}
	})

	t.Run("missing segment with multiple units is ambiguous", func(t *testing.T) {
		body := `{"suggestions":[{"text":"Two","suggestion":"Three","start":1,"end":4,"type":"style"}]}`
		got, dropped, err := decodeResponse([]byte(body), units)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if len(got) != 0 || dropped != 1 {
			t.Errorf("ambiguous entry must be dropped")
		}
	})

	t.Run("unknown segment id dropped", func(t *testing.T) {
		body := `{"suggestions":[{"segment":7,"text":"Two","suggestion":"Three","start":1,"end":4,"type":"style"}]}`
		got, dropped, err := decodeResponse([]byte(body), units)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if len(got) != 0 || dropped != 1 {
			t.Errorf("unknown segment entry must be dropped")
		}
	})
}

func TestEncodeRequest(t *testing.T) {
	units := unitsFor(t, "One. Two.")
	body, err := encodeRequest(units)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	s := string(body)
	for _, want := range []string{`"segments"`, `"One."`, `" Two."`, `"hash"`} {
		if !strings.Contains(s, want) {
			t.Errorf("request %s missing %s", s, want)
		}
	}
}
