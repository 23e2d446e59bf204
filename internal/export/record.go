package export

import (
	"github.com/bionetgo/rxnet/internal/engine"
	"github.com/bionetgo/rxnet/internal/store"
)

// FromRecord rebuilds a network from its stored form so a persisted run
// can be re-rendered without regenerating it. Species graphs are not
// persisted, so the Graph fields stay nil; the writers only need the
// certificates and indices.
func FromRecord(rec *store.RunRecord) *engine.Network {
	net := &engine.Network{
		RunToken:         rec.Token,
		ModelName:        rec.ModelName,
		ModelHash:        rec.ModelHash,
		Iterations:       rec.Iterations,
		Converged:        rec.Converged,
		Truncated:        rec.Truncated,
		TruncationReason: engine.TruncationReason(rec.TruncationReason),
		DroppedOversize:  rec.DroppedOversize,
		Species:          make([]engine.SpeciesEntry, len(rec.Species)),
		Reactions:        make([]engine.Reaction, len(rec.Reactions)),
	}
	for i, sp := range rec.Species {
		net.Species[i] = engine.SpeciesEntry{
			Index:       sp.Index,
			Seq:         sp.Seq,
			Certificate: sp.Certificate,
			Quantity:    sp.Quantity,
			Constant:    sp.Constant,
			Compartment: sp.Compartment,
			Seed:        sp.Seed,
		}
	}
	for i, rx := range rec.Reactions {
		net.Reactions[i] = engine.Reaction{
			Index:        rx.Index,
			Seq:          rx.Seq,
			RuleName:     rx.Rule,
			Reactants:    rx.Reactants,
			Products:     rx.Products,
			Rate:         rx.Rate,
			RateExpr:     rx.RateExpr,
			Multiplicity: rx.Multiplicity,
		}
	}
	return net
}
