// Package native provides the loosely-typed value model shared by every
// collaborator of the query pipeline, and the numeric codec that moves those
// values to and from canonical JSON text.
//
// Value is a sealed interface. Only Null, Bool, Int, Float, Decimal, String,
// List and Map implement it, so every switch over a Value can be exhaustive.
//
// Key design constraints:
//   - Decimal is arbitrary precision (cockroachdb/apd) and has no JSON
//     equivalent: integral decimals encode as integer literals, all others as
//     float literals. This is the only lossy edge of the codec.
//   - Map keeps insertion order for encoding; equality ignores order.
//   - Values are never mutated after construction.
//
// This package imports nothing internal.
package native
