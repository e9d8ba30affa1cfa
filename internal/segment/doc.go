// Package segment splits document text into offset-stable analyzable units.
//
// Units are the atomic granule for analysis and caching: they are
// non-overlapping, ordered, and their concatenated text reconstructs the
// document exactly. Smaller units bound re-analysis cost to the locality of
// an edit; sentence units align better with grammar semantics.
package segment
