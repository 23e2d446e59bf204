package observe

import (
	"fmt"

	"github.com/bionetgo/rxnet/internal/canon"
	"github.com/bionetgo/rxnet/internal/engine"
	"github.com/bionetgo/rxnet/internal/ir"
	"github.com/bionetgo/rxnet/internal/match"
	"github.com/bionetgo/rxnet/internal/model"
)

// Observable is one compiled observable: parsed patterns plus counting
// semantics.
type Observable struct {
	Name     string
	Kind     ir.ObservableKind
	Patterns []*model.Species
}

// Weight is the contribution of one species to one observable.
type Weight struct {
	SpeciesIndex int // 1-based network index
	Factor       int // embedding count (Molecules) or 1 (Species)
}

// Result is one evaluated observable: its per-species weights in network
// order. The simulated value of the observable is the weighted sum of
// species amounts, which downstream tools compute from these factors.
type Result struct {
	Name    string
	Kind    ir.ObservableKind
	Weights []Weight
}

// Compile validates observable definitions against the type table and
// parses their patterns.
func Compile(tt *model.TypeTable, defs []ir.ObservableDef) ([]Observable, error) {
	seen := make(map[string]bool, len(defs))
	out := make([]Observable, 0, len(defs))
	for _, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("observable with empty name")
		}
		if seen[def.Name] {
			return nil, fmt.Errorf("observable %s declared twice", def.Name)
		}
		seen[def.Name] = true

		switch def.Kind {
		case ir.ObservableMolecules, ir.ObservableSpecies:
		default:
			return nil, fmt.Errorf("observable %s: unknown kind %q", def.Name, def.Kind)
		}
		if len(def.Patterns) == 0 {
			return nil, fmt.Errorf("observable %s: no patterns", def.Name)
		}

		obs := Observable{Name: def.Name, Kind: def.Kind}
		for _, text := range def.Patterns {
			p, err := model.ParsePattern(tt, text)
			if err != nil {
				return nil, fmt.Errorf("observable %s: %w", def.Name, err)
			}
			obs.Patterns = append(obs.Patterns, p)
		}
		out = append(out, obs)
	}
	return out, nil
}

// Evaluate computes every observable's per-species weights over the
// network. Species contribute in admission order; species with zero
// weight are omitted.
func Evaluate(observables []Observable, net *engine.Network) []Result {
	results := make([]Result, len(observables))
	for i, obs := range observables {
		results[i] = Result{Name: obs.Name, Kind: obs.Kind, Weights: []Weight{}}
		for _, entry := range net.Species {
			factor := weightOf(obs, entry.Graph)
			if factor > 0 {
				results[i].Weights = append(results[i].Weights, Weight{
					SpeciesIndex: entry.Index,
					Factor:       factor,
				})
			}
		}
	}
	return results
}

// weightOf computes one species' factor under one observable.
func weightOf(obs Observable, sp *model.Species) int {
	switch obs.Kind {
	case ir.ObservableMolecules:
		total := 0
		for _, p := range obs.Patterns {
			total += canon.DistinctImages(p, sp)
		}
		return total
	case ir.ObservableSpecies:
		for _, p := range obs.Patterns {
			if len(match.FindEmbeddings(p, sp)) > 0 {
				return 1
			}
		}
		return 0
	}
	return 0
}
