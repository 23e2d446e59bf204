// Package model implements the molecular species graph: typed molecules,
// named component sites carrying an optional state and an optional mutual
// bond, and species as bonded collections of molecule instances.
//
// Representation: an arena of molecules and components addressed by integer
// indices. Bonds are symmetric (mol, comp) index pairs mirrored on both
// endpoints, so there are no reference cycles and deep copies are plain
// slice copies.
//
// Patterns are species with the pattern flag set: they may carry wildcard
// markers (any-bond, any-state) and partial component lists, and are
// read-only by convention once built. Concrete species never carry
// wildcards; the parser enforces this.
//
// The text form follows the conventional flat syntax:
//
//	A(b~P!1,c).B(a!1)
//
// with ~state suffixes, !label bonds shared by exactly two components,
// !+ (some bond) and !? / ~? wildcards in patterns, and "." joining
// molecules of one complex.
package model
