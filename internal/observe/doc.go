// Package observe evaluates named observables over a finished network.
//
// An observable is a set of patterns plus a counting semantics: Molecules
// observables weight every species by its distinct pattern embeddings
// (automorphism-collapsed), Species observables count each matching
// species once. Evaluation is pure: it reads the network and never
// mutates it.
package observe
