// Package assist implements the incremental suggestion lifecycle: it
// schedules analysis passes over the document, caches per-unit checker
// results, filters dismissed suggestions, merges the remainder into one
// ordered list, projects highlight marks for the rendering surface, and
// applies chosen suggestions to the live buffer.
//
// The Service serializes every state transition behind one mutex; checker
// calls are the only suspension points and their results re-enter through
// the same funnel, revalidated against fresh unit hashes before they are
// applied. A batch computed against a snapshot whose units have since
// changed is discarded and a fresh pass is scheduled, which substitutes for
// cancelling requests already on the wire.
package assist
