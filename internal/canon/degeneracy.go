package canon

import (
	"sort"
	"strconv"
	"strings"

	"github.com/bionetgo/rxnet/internal/match"
	"github.com/bionetgo/rxnet/internal/model"
)

// CountAutomorphicEmbeddings counts how many embeddings of pattern into
// target share the image of one given match: the matches related to it by
// an automorphism of the pattern that fixes the image. The count is the
// degeneracy used to weight matches for concentration-style observables;
// the rewriting engine never calls this.
//
// The count is always at least 1 (the match itself).
func CountAutomorphicEmbeddings(pattern, target *model.Species, m match.Match) int {
	want := imageKey(m)
	count := 0
	for _, other := range match.FindEmbeddings(pattern, target) {
		if imageKey(other) == want {
			count++
		}
	}
	if count == 0 {
		// The supplied match did not come from this pattern/target pair;
		// treat it as its own orbit rather than reporting zero weight.
		return 1
	}
	return count
}

// DistinctImages counts the distinct images among all embeddings of
// pattern into target: the automorphism-collapsed match count. This is
// the per-species weight of a Molecules observable.
func DistinctImages(pattern, target *model.Species) int {
	seen := make(map[string]struct{})
	for _, m := range match.FindEmbeddings(pattern, target) {
		seen[imageKey(m)] = struct{}{}
	}
	return len(seen)
}

// imageKey renders the match's image, the set of matched target molecules
// and components, as an order-independent string. Molecule images matter
// on their own: a bare-molecule pattern matches with no component
// constraints, and its embeddings into distinct molecules are distinct
// images.
func imageKey(m match.Match) string {
	var parts []string
	for pm, tm := range m.Molecules {
		parts = append(parts, "m"+strconv.Itoa(tm))
		for _, tc := range m.Components[pm] {
			parts = append(parts, strconv.Itoa(tm)+":"+strconv.Itoa(tc))
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
