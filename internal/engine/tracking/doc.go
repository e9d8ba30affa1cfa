// Package tracking keeps stored byte offsets correct as the document mutates.
//
// Every buffer mutation is described by the range it replaced and the length
// of the replacement. Spans entirely before the edit are unaffected, spans
// entirely after shift by the edit delta, and spans overlapping the edited
// range are dropped because the text they referenced no longer exists
// verbatim. The same rule is applied to suggestions and highlight marks in
// one operation so the two collections never diverge.
package tracking
