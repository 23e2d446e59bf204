// Package match enumerates embeddings of pattern graphs into target
// species: subgraph monomorphisms respecting component identity, state
// constraints, bond constraints, and wildcard markers.
//
// The search returns ALL embeddings, not just one. Rate laws and rule
// firing counts depend on match multiplicity: a pattern that reaches a
// symmetric site two ways yields two matches, and collapsing them would
// silently halve reaction rates. Automorphic duplicates on the target side
// are therefore deliberately kept distinct; degeneracy-aware counting is
// the canon package's separate, opt-in concern.
//
// The backtracking search runs on an explicit frame stack rather than
// recursion, bounding memory and keeping the extension order (pattern
// connectivity, BFS from the first molecule) in one place.
package match
