// Package store persists generation runs to SQLite: one row per run plus
// its species and reactions in admission order. Reads reproduce admission
// order exactly, so a stored network round-trips to the same fingerprint.
package store
