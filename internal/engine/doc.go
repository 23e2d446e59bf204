// Package engine runs network generation: the fixed-point iteration that
// expands seed species into the complete reaction network implied by the
// model's rules.
//
// The generator is single-writer. All mutation of the growing network
// happens inside Generate on the calling goroutine; determinism comes from
// that plus stable iteration order everywhere (species in admission order,
// rules in declaration order, embeddings in search order). Two runs over
// the same compiled model produce byte-identical networks, which the
// network fingerprint makes checkable.
//
// Combinatorial explosion is handled by truncation, not failure: when a
// limit trips, generation stops and the partial network is returned with
// Truncated set and the reason recorded.
package engine
