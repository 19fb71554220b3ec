// Package corpus holds the locally accumulated comparison pool: every
// segment of every ingested document, with its embedding, in insertion
// order.
//
// The store is append-only between explicit Clear or Restore calls.
// Queries scan the whole pool; determinism comes from fixed insertion
// order and first-inserted-wins tie-breaking.
package corpus
