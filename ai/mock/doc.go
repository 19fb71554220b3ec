// Package mock provides test doubles for the ai package interfaces.
//
// The mock embedder produces deterministic vectors derived from an FNV
// hash of the input text, so tests get stable similarity scores without
// a running embedding service. Behavior can be overridden per test via
// the exported function fields.
package mock
