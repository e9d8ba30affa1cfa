package assist

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dshills/prosecheck/internal/checker"
	"github.com/dshills/prosecheck/internal/engine/buffer"
	"github.com/dshills/prosecheck/internal/engine/tracking"
	"github.com/dshills/prosecheck/internal/segment"
)

// Logger is the logging surface the service needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// nopLogger discards everything.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// DefaultStructuralWords is the word-count threshold for an immediate
// structural trigger.
const DefaultStructuralWords = 10

// Service owns the suggestion lifecycle for one document buffer.
//
// All buffer mutations flow through two funnels, HandleEdit and Apply, and
// both remap every pending suggestion and highlight mark in the same
// operation, so the two collections cannot diverge under any mutation path.
type Service struct {
	mu sync.Mutex

	buf        *buffer.Buffer
	seg        *segment.Segmenter
	cache      *Cache
	dismissals *DismissalStore
	sink       DecorationSink
	saver      Saver
	log        Logger

	categories map[string]*category

	suggestions []Suggestion

	structuralWords int
	wordsTyped      int

	devMode bool
	closed  bool

	// checkDone is signalled whenever a category's in-flight slot frees up,
	// so synchronous passes can wait out a background request.
	checkDone *sync.Cond

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithSegmenter sets the segmentation strategy.
func WithSegmenter(sg *segment.Segmenter) ServiceOption {
	return func(s *Service) {
		s.seg = sg
	}
}

// WithChecker registers a checker with its debounce interval.
func WithChecker(c checker.Checker, debounce time.Duration) ServiceOption {
	return func(s *Service) {
		s.categories[c.Name()] = &category{checker: c, debounce: debounce}
	}
}

// WithDecorationSink sets the target for highlight mark updates.
func WithDecorationSink(sink DecorationSink) ServiceOption {
	return func(s *Service) {
		s.sink = sink
	}
}

// WithSaver sets the persistence collaborator.
func WithSaver(saver Saver) ServiceOption {
	return func(s *Service) {
		s.saver = saver
	}
}

// WithLogger sets the service logger.
func WithLogger(log Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithDismissalWindow sets the context window for dismissal fingerprints.
func WithDismissalWindow(bytes int64) ServiceOption {
	return func(s *Service) {
		s.dismissals = NewDismissalStore(bytes)
	}
}

// WithStructuralThreshold sets the word count that fires an immediate pass.
func WithStructuralThreshold(words int) ServiceOption {
	return func(s *Service) {
		if words > 0 {
			s.structuralWords = words
		}
	}
}

// WithDevMode makes segmentation invariant violations fatal instead of
// falling back to whole-document analysis.
func WithDevMode(dev bool) ServiceOption {
	return func(s *Service) {
		s.devMode = dev
	}
}

// NewService creates the suggestion service for a buffer.
func NewService(buf *buffer.Buffer, opts ...ServiceOption) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		buf:             buf,
		seg:             segment.NewSegmenter(),
		cache:           NewCache(),
		dismissals:      NewDismissalStore(DefaultContextWindow),
		log:             nopLogger{},
		categories:      make(map[string]*category),
		structuralWords: DefaultStructuralWords,
		ctx:             ctx,
		cancel:          cancel,
	}
	s.checkDone = sync.NewCond(&s.mu)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close stops timers, cancels outstanding checker calls, and waits for
// in-flight passes to drain.
func (s *Service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for _, cat := range s.categories {
		if cat.timer != nil {
			cat.timer.Stop()
			cat.timer = nil
		}
	}
	s.checkDone.Broadcast()
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

// HandleEdit is the user-edit funnel: it mutates the buffer, remaps all
// pending suggestions and marks, and schedules analysis.
func (s *Service) HandleEdit(start, end int64, text string) error {
	result, err := s.buf.Replace(start, end, text)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrServiceClosed
	}
	s.remapLocked(tracking.Edit{
		Start:  start,
		End:    end,
		NewLen: int64(len(result.Edit.NewText)),
	})
	structural := s.noteTypingLocked(result.Edit.NewText)
	if !structural {
		for name, cat := range s.categories {
			s.resetDebounceLocked(name, cat)
		}
	}
	names := s.categoryNamesLocked()
	s.mu.Unlock()

	s.publishMarks()

	if structural {
		for _, name := range names {
			s.trigger(name, TriggerStructural)
		}
	}
	return nil
}

// ForceCheck starts an immediate analysis pass for every category.
func (s *Service) ForceCheck() {
	s.mu.Lock()
	s.wordsTyped = 0
	names := s.categoryNamesLocked()
	s.mu.Unlock()

	for _, name := range names {
		s.trigger(name, TriggerForce)
	}
}

// CheckNow runs a full synchronous pass over every category and returns the
// merged active suggestions. Used by batch callers that have no event loop.
//
// It claims the same per-category in-flight slot as the background
// scheduler, so a category is never queried twice concurrently even when a
// structural trigger fired just before the call.
func (s *Service) CheckNow(ctx context.Context) ([]Suggestion, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrServiceClosed
	}
	names := s.categoryNamesLocked()
	s.mu.Unlock()

	for _, name := range names {
		if err := s.checkCategoryNow(ctx, name); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrServiceClosed
	}
	snap := s.buf.Snapshot()
	units := s.segmentUnits(snap.Text)
	s.rebuildLocked(snap.Text, units)
	out := append([]Suggestion(nil), s.suggestions...)
	s.mu.Unlock()

	s.publishMarks()
	return out, nil
}

// checkCategoryNow runs one category to a validated result. It waits for any
// outstanding background pass, holds the in-flight slot across its own
// checker call, and retries when an edit lands mid-request.
func (s *Service) checkCategoryNow(ctx context.Context, name string) error {
	for {
		s.mu.Lock()
		cat, ok := s.categories[name]
		if !ok {
			s.mu.Unlock()
			return nil
		}
		for cat.inFlight && !s.closed {
			s.checkDone.Wait()
		}
		if s.closed {
			s.mu.Unlock()
			return ErrServiceClosed
		}
		snap := s.buf.Snapshot()
		units := s.segmentUnits(snap.Text)
		_, dirty := s.cache.Partition(name, units)
		if len(dirty) == 0 {
			s.mu.Unlock()
			return nil
		}
		cat.inFlight = true
		s.mu.Unlock()

		raw, err := cat.checker.Check(ctx, dirty)

		s.mu.Lock()
		cat.inFlight = false
		// A pending rerun is subsumed: the result below is validated
		// against the live document before anything is stored.
		cat.rerun = false
		s.checkDone.Broadcast()
		if s.closed {
			s.mu.Unlock()
			return ErrServiceClosed
		}
		if err != nil {
			s.mu.Unlock()
			// Fail-open: the category contributes nothing this pass.
			s.log.Warn("assist: %s check failed: %v", name, err)
			return nil
		}
		cur := s.buf.Snapshot()
		curUnits := s.segmentUnits(cur.Text)
		if !unitsStillMatch(dirty, curUnits) {
			s.mu.Unlock()
			continue
		}
		byUnit := groupByUnit(raw)
		for _, u := range dirty {
			s.cache.Store(name, u, byUnit[u.ID])
		}
		s.mu.Unlock()
		return nil
	}
}

// SetDebounce updates a category's debounce interval. The new interval
// applies from the next edit; a timer already armed keeps its old deadline.
// It reports whether the named category exists.
func (s *Service) SetDebounce(name string, d time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cat, ok := s.categories[name]
	if !ok {
		return false
	}
	if d >= 0 {
		cat.debounce = d
	}
	return true
}

// Suggestions returns a copy of the active suggestion set.
func (s *Service) Suggestions() []Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Suggestion(nil), s.suggestions...)
}

// Dismiss suppresses a suggestion until the text around it changes.
func (s *Service) Dismiss(id string) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrUnknownSuggestion
	}
	sug := s.suggestions[idx]
	s.dismissals.Dismiss(sug, s.buf.Text())
	s.suggestions = append(s.suggestions[:idx], s.suggestions[idx+1:]...)
	s.mu.Unlock()

	s.publishMarks()
	return nil
}

// ClearDismissals wipes every suppression.
func (s *Service) ClearDismissals() {
	s.dismissals.Clear()
}

// noteTypingLocked tracks typing volume and reports whether the edit should
// fire an immediate structural trigger.
func (s *Service) noteTypingLocked(inserted string) bool {
	if strings.ContainsAny(inserted, ".!?") {
		s.wordsTyped = 0
		return true
	}
	s.wordsTyped += strings.Count(inserted, " ") + strings.Count(inserted, "\n")
	if s.wordsTyped >= s.structuralWords {
		s.wordsTyped = 0
		return true
	}
	return false
}

// remapLocked applies one edit to every pending suggestion and its mark.
// Overlapping suggestions are dropped; their referenced text is gone.
func (s *Service) remapLocked(e tracking.Edit) {
	kept := s.suggestions[:0]
	for _, sug := range s.suggestions {
		span, ok := tracking.Remap(sug.Span(), e)
		if !ok {
			continue
		}
		sug.Start, sug.End = span.Start, span.End
		kept = append(kept, sug)
	}
	s.suggestions = kept
}

// rebuildLocked reassembles the active suggestion set from the cache for
// the given fresh units, filtering dismissed entries and merging across
// categories.
func (s *Service) rebuildLocked(document string, units []segment.Unit) {
	var batches [][]Suggestion
	for name := range s.categories {
		var batch []Suggestion
		for _, u := range units {
			entry, ok := s.cache.Lookup(name, u)
			if !ok {
				continue
			}
			for _, raw := range entry.Suggestions {
				sug := absolute(raw, u)
				if s.dismissals.IsDismissed(sug, document) {
					continue
				}
				batch = append(batch, sug)
			}
		}
		batches = append(batches, batch)
	}
	s.suggestions = Merge(batches...)
}

// segmentUnits cuts the document, enforcing the reconstruction invariant.
func (s *Service) segmentUnits(text string) []segment.Unit {
	units := s.seg.Segment(text)
	if err := segment.Verify(text, units); err != nil {
		if s.devMode {
			var detail string
			if ie, ok := err.(*segment.InvariantError); ok {
				detail = ie.Diff
			}
			panic(fmt.Sprintf("segmentation invariant violated:\n%s", detail))
		}
		s.log.Error("assist: segmentation invariant violated, using whole-document unit: %v", err)
		return segment.WholeDocument(text)
	}
	return units
}

// publishMarks pushes the current highlight projection to the sink.
// The slice is built under the lock; the sink runs outside it.
func (s *Service) publishMarks() {
	s.mu.Lock()
	sink := s.sink
	marks := make([]Mark, len(s.suggestions))
	for i, sug := range s.suggestions {
		marks[i] = sug.mark()
	}
	s.mu.Unlock()

	if sink != nil {
		sink.UpdateDecorations(marks)
	}
}

func (s *Service) indexLocked(id string) int {
	for i, sug := range s.suggestions {
		if sug.ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) categoryNamesLocked() []string {
	names := make([]string, 0, len(s.categories))
	for name := range s.categories {
		names = append(names, name)
	}
	return names
}
