// Package export renders generated networks to interchange formats: a
// plain-text listing in the classic species/reactions block style, and a
// canonical JSON document whose bytes are stable across runs.
package export
