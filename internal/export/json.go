package export

import (
	"io"

	"github.com/bionetgo/rxnet/internal/engine"
	"github.com/bionetgo/rxnet/internal/ir"
	"github.com/bionetgo/rxnet/internal/observe"
)

// Document is the JSON network shape. Fields marshal through the
// canonical encoder, so the same network always yields the same bytes.
type Document struct {
	RunToken      string        `json:"runToken"`
	Model         string        `json:"model"`
	ModelHash     string        `json:"modelHash"`
	Fingerprint   string        `json:"fingerprint"`
	EngineVersion string        `json:"engineVersion"`
	IRVersion     string        `json:"irVersion"`
	Iterations    int           `json:"iterations"`
	Converged     bool          `json:"converged"`
	Truncated     bool          `json:"truncated,omitempty"`
	Reason        string        `json:"truncationReason,omitempty"`
	Dropped       int           `json:"droppedOversize,omitempty"`
	Species       []DocSpecies  `json:"species"`
	Reactions     []DocReaction `json:"reactions"`
	Groups        []DocGroup    `json:"groups,omitempty"`
}

// DocSpecies is one species row of the document.
type DocSpecies struct {
	Index       int     `json:"index"`
	Name        string  `json:"name"`
	Quantity    float64 `json:"quantity"`
	Constant    bool    `json:"constant,omitempty"`
	Compartment string  `json:"compartment,omitempty"`
	Seed        bool    `json:"seed,omitempty"`
}

// DocReaction is one reaction row of the document.
type DocReaction struct {
	Index        int     `json:"index"`
	Rule         string  `json:"rule"`
	Reactants    []int   `json:"reactants"`
	Products     []int   `json:"products"`
	Rate         float64 `json:"rate"`
	RateExpr     string  `json:"rateExpr,omitempty"`
	Multiplicity int     `json:"multiplicity"`
}

// DocGroup is one evaluated observable.
type DocGroup struct {
	Name    string    `json:"name"`
	Kind    string    `json:"kind"`
	Weights []DocTerm `json:"weights"`
}

// DocTerm weights one species within a group.
type DocTerm struct {
	Species int `json:"species"`
	Factor  int `json:"factor"`
}

// BuildDocument assembles the JSON shape from a generated network and
// optional observable results.
func BuildDocument(net *engine.Network, results []observe.Result) (*Document, error) {
	fp, err := net.Fingerprint()
	if err != nil {
		return nil, err
	}

	doc := &Document{
		RunToken:      net.RunToken,
		Model:         net.ModelName,
		ModelHash:     net.ModelHash,
		Fingerprint:   fp,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
		Iterations:    net.Iterations,
		Converged:     net.Converged,
		Truncated:     net.Truncated,
		Reason:        string(net.TruncationReason),
		Dropped:       net.DroppedOversize,
		Species:       make([]DocSpecies, len(net.Species)),
		Reactions:     make([]DocReaction, len(net.Reactions)),
	}

	for i, sp := range net.Species {
		doc.Species[i] = DocSpecies{
			Index:       sp.Index,
			Name:        sp.Certificate,
			Quantity:    sp.Quantity,
			Constant:    sp.Constant,
			Compartment: sp.Compartment,
			Seed:        sp.Seed,
		}
	}
	for i, rx := range net.Reactions {
		doc.Reactions[i] = DocReaction{
			Index:        rx.Index,
			Rule:         rx.RuleName,
			Reactants:    emptyNotNil(rx.Reactants),
			Products:     emptyNotNil(rx.Products),
			Rate:         rx.Rate,
			RateExpr:     rx.RateExpr,
			Multiplicity: rx.Multiplicity,
		}
	}
	for _, res := range results {
		g := DocGroup{Name: res.Name, Kind: string(res.Kind)}
		for _, wt := range res.Weights {
			g.Weights = append(g.Weights, DocTerm{Species: wt.SpeciesIndex, Factor: wt.Factor})
		}
		doc.Groups = append(doc.Groups, g)
	}
	return doc, nil
}

// canonicalMap converts the document to the plain map form the canonical
// encoder requires (it handles maps, slices, and primitives only).
// Omit-empty fields are dropped rather than emitted as zero values.
func (d *Document) canonicalMap() map[string]any {
	species := make([]any, len(d.Species))
	for i, sp := range d.Species {
		m := map[string]any{
			"index":    sp.Index,
			"name":     sp.Name,
			"quantity": sp.Quantity,
		}
		if sp.Constant {
			m["constant"] = true
		}
		if sp.Compartment != "" {
			m["compartment"] = sp.Compartment
		}
		if sp.Seed {
			m["seed"] = true
		}
		species[i] = m
	}

	reactions := make([]any, len(d.Reactions))
	for i, rx := range d.Reactions {
		m := map[string]any{
			"index":        rx.Index,
			"rule":         rx.Rule,
			"reactants":    intList(rx.Reactants),
			"products":     intList(rx.Products),
			"rate":         rx.Rate,
			"multiplicity": rx.Multiplicity,
		}
		if rx.RateExpr != "" {
			m["rateExpr"] = rx.RateExpr
		}
		reactions[i] = m
	}

	doc := map[string]any{
		"runToken":      d.RunToken,
		"model":         d.Model,
		"modelHash":     d.ModelHash,
		"fingerprint":   d.Fingerprint,
		"engineVersion": d.EngineVersion,
		"irVersion":     d.IRVersion,
		"iterations":    d.Iterations,
		"converged":     d.Converged,
		"species":       species,
		"reactions":     reactions,
	}
	if d.Truncated {
		doc["truncated"] = true
		doc["truncationReason"] = d.Reason
	}
	if d.Dropped > 0 {
		doc["droppedOversize"] = d.Dropped
	}
	if len(d.Groups) > 0 {
		groups := make([]any, len(d.Groups))
		for i, g := range d.Groups {
			weights := make([]any, len(g.Weights))
			for j, wt := range g.Weights {
				weights[j] = map[string]any{"species": wt.Species, "factor": wt.Factor}
			}
			groups[i] = map[string]any{"name": g.Name, "kind": g.Kind, "weights": weights}
		}
		doc["groups"] = groups
	}
	return doc
}

// WriteJSON renders the network as canonical JSON. Equal networks produce
// byte-identical output regardless of platform or run.
func WriteJSON(w io.Writer, net *engine.Network, results []observe.Result) error {
	doc, err := BuildDocument(net, results)
	if err != nil {
		return err
	}
	data, err := ir.MarshalCanonical(doc.canonicalMap())
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// intList widens index slices for the canonical encoder.
func intList(indices []int) []any {
	out := make([]any, len(indices))
	for i, idx := range indices {
		out[i] = idx
	}
	return out
}

// emptyNotNil keeps empty index lists as [] rather than null in JSON.
func emptyNotNil(indices []int) []int {
	if indices == nil {
		return []int{}
	}
	return indices
}
