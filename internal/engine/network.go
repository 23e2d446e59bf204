package engine

import (
	"github.com/bionetgo/rxnet/internal/ir"
	"github.com/bionetgo/rxnet/internal/model"
)

// SpeciesEntry is one admitted species. Index is 1-based and stable for the
// life of the network: species are append-only and never renumbered, so
// reactions can hold indices instead of pointers.
type SpeciesEntry struct {
	Index       int            // 1-based network index
	Seq         int64          // admission clock stamp
	Certificate string         // canonical text form; the dedup identity
	Graph       *model.Species // the concrete graph, immutable once admitted
	Quantity    float64        // initial amount; 0 for derived species
	Constant    bool           // boundary species, quantity held fixed
	Compartment string         // empty = default compartment
	Seed        bool           // installed from the seed list
}

// Reaction is one admitted reaction: rule provenance, participant species
// by network index, and the recorded rate.
type Reaction struct {
	Index        int   // 1-based network index
	Seq          int64 // admission clock stamp
	RuleName     string
	Reactants    []int // species indices, one per consumed complex
	Products     []int // species indices; empty for pure degradation
	Rate         float64
	RateExpr     string // symbolic rate, when the model used one
	Multiplicity int    // symmetric embeddings collapsed into this reaction
}

// Network is the result of one generation run.
type Network struct {
	RunToken  string
	ModelName string
	ModelHash string

	Species   []SpeciesEntry
	Reactions []Reaction

	Iterations int
	Converged  bool // fixed point reached: the last pass added nothing

	Truncated        bool
	TruncationReason TruncationReason

	// DroppedOversize counts candidate species rejected by the aggregate
	// or stoichiometry bounds. Informational; not a truncation.
	DroppedOversize int
}

// SpeciesCertificates returns the canonical species names in admission
// order.
func (n *Network) SpeciesCertificates() []string {
	certs := make([]string, len(n.Species))
	for i := range n.Species {
		certs[i] = n.Species[i].Certificate
	}
	return certs
}

// Fingerprint computes the network's content address from its species and
// reaction identities in admission order.
func (n *Network) Fingerprint() (string, error) {
	keys := make([]string, len(n.Reactions))
	for i, rx := range n.Reactions {
		certs := func(indices []int) []string {
			out := make([]string, len(indices))
			for j, idx := range indices {
				out[j] = n.Species[idx-1].Certificate
			}
			return out
		}
		key, err := ir.ReactionKey(rx.RuleName, certs(rx.Reactants), certs(rx.Products))
		if err != nil {
			return "", err
		}
		keys[i] = key
	}
	return ir.NetworkFingerprint(n.SpeciesCertificates(), keys)
}
