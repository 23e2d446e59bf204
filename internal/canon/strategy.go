package canon

import (
	"github.com/bionetgo/rxnet/internal/model"
)

// Strategy computes a canonical certificate for a concrete species graph.
//
// Contract: Certificate(g) == Certificate(h) for isomorphic g, h under any
// relabeling, and never for non-isomorphic graphs. Implementations may
// trade completeness of tie-breaking for speed only in the direction that
// splits isomorphic graphs, never in the direction that merges distinct
// ones.
type Strategy interface {
	Certificate(sp *model.Species) (string, error)
}

// RefinementStrategy is the default Strategy: color refinement to a fixed
// point, then exhaustive permutation of tied cells, keeping the minimal
// serialization.
type RefinementStrategy struct{}

// NewRefinementStrategy returns the default certificate strategy.
func NewRefinementStrategy() *RefinementStrategy {
	return &RefinementStrategy{}
}

// Certificate implements Strategy.
func (r *RefinementStrategy) Certificate(sp *model.Species) (string, error) {
	return certificate(sp)
}
