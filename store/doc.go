// Package store merges prioritized configuration sources into one flat
// key-value store.
//
// Sources are registered in order; the first source to set a scalar for a
// key wins, later writes to the same key are dropped (and recorded, see
// Layered.Shadowed). Child segments are unioned across sources so that
// array lengths and map keys can be enumerated without building a tree:
// every key prefix owns a node holding an optional scalar plus a children
// descriptor (known name children and the highest seen index bound).
//
// Sources populate the store through a Sink, a cursor-based builder that
// flattens nested documents into canonical keys.
package store
