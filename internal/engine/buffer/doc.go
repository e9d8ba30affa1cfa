// Package buffer provides the document text buffer for the suggestion engine.
//
// The buffer is the single shared mutable resource in the system. Every
// mutation goes through one funnel (ApplyEdit and its convenience wrappers),
// which notifies registered observers so that suggestion and highlight
// offsets can be remapped in the same operation.
package buffer
