// Package canon computes canonical certificates for species graphs:
// deterministic strings equal for, and only for, isomorphic graphs.
//
// The default strategy is individualization-refinement in the nauty
// tradition: molecules are partitioned by an isomorphism-invariant color
// (type, component multiset, bond neighborhood), the partition is refined
// to a fixed point, and remaining ties are broken by trying every
// permutation within tied cells and keeping the lexicographically minimal
// serialization. Refinement does the pruning; brute force only ever runs
// inside refined cells, which is what keeps symmetric binding sites
// tractable.
//
// The Strategy interface isolates the tie-breaking cost so a bounded
// heuristic can be substituted without touching callers. The correctness
// contract is independent of strategy: a strategy must NEVER equate
// non-isomorphic graphs; failing to equate isomorphic ones merely inflates
// the species set.
//
// Degeneracy counting (CountAutomorphicEmbeddings) is a separate, opt-in
// operation used by observable evaluation. The rewriting engine never
// collapses automorphic matches.
package canon
