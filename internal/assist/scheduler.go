package assist

import (
	"time"

	"github.com/dshills/prosecheck/internal/checker"
	"github.com/dshills/prosecheck/internal/segment"
)

// Trigger identifies why an analysis pass was started.
type Trigger int

const (
	// TriggerForce is an explicit user-requested check.
	TriggerForce Trigger = iota
	// TriggerStructural fires immediately when a word-count threshold is
	// crossed or sentence-terminating punctuation was just typed.
	TriggerStructural
	// TriggerDebounce fires after typing has paused for the category's
	// debounce interval.
	TriggerDebounce
	// TriggerRerun re-runs a category whose previous pass completed with
	// the rerun flag set or whose results were discarded as stale.
	TriggerRerun
)

// String returns the trigger name for logging.
func (t Trigger) String() string {
	switch t {
	case TriggerForce:
		return "force"
	case TriggerStructural:
		return "structural"
	case TriggerDebounce:
		return "debounce"
	default:
		return "rerun"
	}
}

// category is the scheduling state for one checker.
// At most one request is in flight per category; a trigger arriving while
// one is outstanding sets rerun instead of enqueueing, so requests never
// stack up under fast typing.
type category struct {
	checker  checker.Checker
	debounce time.Duration
	timer    *time.Timer
	inFlight bool
	rerun    bool
}

// resetDebounceLocked restarts the category's debounce timer.
func (s *Service) resetDebounceLocked(name string, cat *category) {
	if cat.timer != nil {
		cat.timer.Stop()
	}
	cat.timer = time.AfterFunc(cat.debounce, func() {
		s.trigger(name, TriggerDebounce)
	})
}

// trigger starts an analysis pass for one category, or marks it for re-run
// if a request is already outstanding.
func (s *Service) trigger(name string, tr Trigger) {
	s.mu.Lock()
	cat, ok := s.categories[name]
	if !ok || s.closed {
		s.mu.Unlock()
		return
	}
	if cat.timer != nil {
		cat.timer.Stop()
		cat.timer = nil
	}
	if cat.inFlight {
		cat.rerun = true
		s.mu.Unlock()
		return
	}

	snap := s.buf.Snapshot()
	units := s.segmentUnits(snap.Text)
	_, dirty := s.cache.Partition(name, units)

	if len(dirty) == 0 {
		// Everything is clean: rebuild from cache, zero checker calls.
		s.rebuildLocked(snap.Text, units)
		s.mu.Unlock()
		s.publishMarks()
		return
	}

	cat.inFlight = true
	s.mu.Unlock()

	s.log.Debug("assist: %s pass (%s): %d dirty of %d units", name, tr, len(dirty), len(units))
	s.wg.Add(1)
	go s.runCheck(name, cat, dirty)
}

// runCheck performs the checker call off the scheduling lock, then re-enters
// the funnel to validate and integrate the results.
func (s *Service) runCheck(name string, cat *category, dirty []segment.Unit) {
	defer s.wg.Done()

	raw, err := cat.checker.Check(s.ctx, dirty)

	s.mu.Lock()
	cat.inFlight = false
	rerun := cat.rerun
	cat.rerun = false
	s.checkDone.Broadcast()

	if s.closed {
		s.mu.Unlock()
		return
	}

	if err != nil {
		// Fail-open: empty result now, retried on the next trigger.
		s.log.Warn("assist: %s check failed: %v", name, err)
		s.mu.Unlock()
		if rerun {
			s.trigger(name, TriggerRerun)
		}
		return
	}

	snap := s.buf.Snapshot()
	units := s.segmentUnits(snap.Text)
	if !unitsStillMatch(dirty, units) {
		// The document moved under the request; the batch is stale.
		s.log.Debug("assist: %s results stale, re-scheduling", name)
		s.mu.Unlock()
		s.trigger(name, TriggerRerun)
		return
	}

	byUnit := groupByUnit(raw)
	for _, u := range dirty {
		s.cache.Store(name, u, byUnit[u.ID])
	}
	s.rebuildLocked(snap.Text, units)
	s.mu.Unlock()

	s.publishMarks()
	if rerun {
		s.trigger(name, TriggerRerun)
	}
}

// unitsStillMatch reports whether every submitted unit still exists with the
// same ID and hash in the freshly recomputed unit list.
func unitsStillMatch(submitted, current []segment.Unit) bool {
	byID := make(map[int]segment.Unit, len(current))
	for _, u := range current {
		byID[u.ID] = u
	}
	for _, u := range submitted {
		cur, ok := byID[u.ID]
		if !ok || cur.Hash != u.Hash || cur.Start != u.Start {
			return false
		}
	}
	return true
}

// groupByUnit buckets raw suggestions by the unit they were computed for.
func groupByUnit(raw []checker.RawSuggestion) map[int][]checker.RawSuggestion {
	byUnit := make(map[int][]checker.RawSuggestion)
	for _, r := range raw {
		byUnit[r.UnitID] = append(byUnit[r.UnitID], r)
	}
	return byUnit
}
