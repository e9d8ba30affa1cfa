package assist

import (
	"hash/fnv"
	"strconv"
	"sync"
	"time"
)

// DefaultContextWindow is how many bytes of surrounding document text are
// folded into a dismissal fingerprint on each side of the span.
const DefaultContextWindow = 20

// DismissalStore remembers which suggestions the user has suppressed.
//
// A dismissal is keyed by a content-derived fingerprint of the suggestion
// and the text around it, not by absolute position. Re-analyzing unchanged
// text therefore never reintroduces a dismissed suggestion, while editing
// inside the context window changes the recomputed fingerprint and
// auto-expires the suppression. Session-scoped only.
type DismissalStore struct {
	mu      sync.RWMutex
	records map[string]time.Time
	window  int64
	now     func() time.Time
}

// NewDismissalStore creates an empty dismissal store.
func NewDismissalStore(contextWindow int64) *DismissalStore {
	if contextWindow <= 0 {
		contextWindow = DefaultContextWindow
	}
	return &DismissalStore{
		records: make(map[string]time.Time),
		window:  contextWindow,
		now:     time.Now,
	}
}

// Dismiss records a suppression for the suggestion as it appears in the
// current document.
func (d *DismissalStore) Dismiss(s Suggestion, document string) {
	fp := d.fingerprint(s, document)
	d.mu.Lock()
	d.records[fp] = d.now()
	d.mu.Unlock()
}

// IsDismissed recomputes the fingerprint from the current document. A
// stored record only matches while the surrounding context is unchanged.
func (d *DismissalStore) IsDismissed(s Suggestion, document string) bool {
	fp := d.fingerprint(s, document)
	d.mu.RLock()
	_, ok := d.records[fp]
	d.mu.RUnlock()
	return ok
}

// Clear wipes every dismissal.
func (d *DismissalStore) Clear() {
	d.mu.Lock()
	d.records = make(map[string]time.Time)
	d.mu.Unlock()
}

// Len returns the number of stored dismissals.
func (d *DismissalStore) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records)
}

// fingerprint hashes the context window around the span together with the
// suggestion content. Field separators keep adjacent fields from bleeding
// into each other.
func (d *DismissalStore) fingerprint(s Suggestion, document string) string {
	lo := s.Start - d.window
	if lo < 0 {
		lo = 0
	}
	hi := s.End + d.window
	if hi > int64(len(document)) {
		hi = int64(len(document))
	}
	if lo > int64(len(document)) {
		lo = int64(len(document))
	}
	if hi < lo {
		hi = lo
	}

	h := fnv.New64a()
	h.Write([]byte(document[lo:hi]))
	h.Write([]byte{0})
	h.Write([]byte(s.Text))
	h.Write([]byte{0})
	h.Write([]byte(s.Replacement))
	h.Write([]byte{0})
	h.Write([]byte(s.Kind))
	return strconv.FormatUint(h.Sum64(), 16)
}
