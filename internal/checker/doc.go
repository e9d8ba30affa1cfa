// Package checker defines the uniform contract for suggestion sources and
// the adapters that implement it.
//
// A checker takes one or more document units and returns raw suggestions
// with offsets relative to the submitted unit. Checkers are fail-open at the
// scheduling layer: a transport or parse failure degrades to an empty result
// and is retried on the next trigger, never surfaced to the user. Responses
// are validated field by field at the wire boundary; entries missing
// required fields are dropped individually rather than voiding the batch.
package checker
