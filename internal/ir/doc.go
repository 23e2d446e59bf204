// Package ir defines the compiled model intermediate representation.
//
// The CUE front end (internal/compiler) produces ir values; the runtime
// graph model (internal/model) and the generation engine (internal/engine)
// consume them. ir imports nothing internal, keeping it the foundational
// layer with no circular dependencies.
//
// ir also owns canonical JSON serialization and the content-addressed
// hashes derived from it: the model hash that keys stored runs, the network
// fingerprint that identifies a generated network, and the reaction key
// used for reaction deduplication.
package ir
