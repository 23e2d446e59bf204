package engine

import (
	"fmt"

	"github.com/bionetgo/rxnet/internal/ir"
	"github.com/bionetgo/rxnet/internal/model"
)

// Default limits applied when the model's config leaves a bound unset.
// Generation over an unbounded rule set diverges, so the defaults are
// finite; explicit negative values in the config disable a bound.
const (
	DefaultMaxSpecies    = 10000
	DefaultMaxReactions  = 50000
	DefaultMaxIterations = 100
)

// TruncationReason says which bound stopped generation early.
type TruncationReason string

const (
	TruncSpecies    TruncationReason = "max_species"
	TruncReactions  TruncationReason = "max_reactions"
	TruncIterations TruncationReason = "max_iterations"
)

// Limits is the resolved set of generation bounds. Zero-or-negative
// resolved values mean unbounded.
//
// MaxSpecies, MaxReactions, and MaxIterations truncate the whole run.
// MaxAgg and the stoichiometry caps reject individual candidate species
// without stopping generation; rejected candidates are counted, not fatal.
type Limits struct {
	MaxSpecies    int
	MaxReactions  int
	MaxIterations int

	maxAgg        int
	stoichDefault int
	stoich        map[string]int
}

// ResolveLimits applies defaults to a model's generation config.
// Convention: unset (0) takes the default, negative disables the bound.
func ResolveLimits(cfg ir.GenConfig) Limits {
	resolve := func(v, def int) int {
		if v == 0 {
			return def
		}
		if v < 0 {
			return 0
		}
		return v
	}
	return Limits{
		MaxSpecies:    resolve(cfg.MaxSpecies, DefaultMaxSpecies),
		MaxReactions:  resolve(cfg.MaxReactions, DefaultMaxReactions),
		MaxIterations: resolve(cfg.MaxIterations, DefaultMaxIterations),
		maxAgg:        resolve(cfg.MaxAgg, 0),
		stoichDefault: resolve(cfg.MaxStoichDefault, 0),
		stoich:        cfg.MaxStoich,
	}
}

// AdmitsSpeciesCount reports whether the network may grow to n species.
func (l Limits) AdmitsSpeciesCount(n int) bool {
	return l.MaxSpecies <= 0 || n <= l.MaxSpecies
}

// AdmitsReactionCount reports whether the network may grow to n reactions.
func (l Limits) AdmitsReactionCount(n int) bool {
	return l.MaxReactions <= 0 || n <= l.MaxReactions
}

// AdmitsIteration reports whether pass number iter may run.
func (l Limits) AdmitsIteration(iter int) bool {
	return l.MaxIterations <= 0 || iter <= l.MaxIterations
}

// CheckComplex validates one candidate species against the aggregate and
// stoichiometry bounds. A non-nil error names the violated bound; callers
// drop the candidate and keep generating.
func (l Limits) CheckComplex(sp *model.Species) error {
	if l.maxAgg > 0 && sp.Size() > l.maxAgg {
		return fmt.Errorf("complex of %d molecules exceeds max aggregate %d", sp.Size(), l.maxAgg)
	}
	if l.stoichDefault <= 0 && len(l.stoich) == 0 {
		return nil
	}
	for typ, count := range sp.TypeCounts() {
		limit := l.stoichDefault
		if override, ok := l.stoich[typ]; ok {
			limit = override
		}
		if limit > 0 && count > limit {
			return fmt.Errorf("%d copies of %s exceed max stoichiometry %d", count, typ, limit)
		}
	}
	return nil
}
