package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix
// enables future algorithm migration without silent collisions.
const (
	DomainModel    = "rxnet/model/v1"
	DomainNetwork  = "rxnet/network/v1"
	DomainReaction = "rxnet/reaction/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null separator prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ModelHash computes the content-addressed identity of a compiled model.
// Stable across restarts given the same compiled input; used by the store
// to key runs and detect model drift between generate and show.
func ModelHash(m Model) (string, error) {
	types := make([]any, len(m.Types))
	for i, t := range m.Types {
		comps := make([]any, len(t.Components))
		for j, c := range t.Components {
			comps[j] = map[string]any{"name": c.Name, "states": c.States}
		}
		types[i] = map[string]any{"name": t.Name, "components": comps}
	}
	seeds := make([]any, len(m.Seeds))
	for i, s := range m.Seeds {
		seeds[i] = map[string]any{
			"species":     s.Species,
			"quantity":    s.Quantity,
			"constant":    s.Constant,
			"compartment": s.Compartment,
		}
	}
	rules := make([]any, len(m.Rules))
	for i, r := range m.Rules {
		rules[i] = map[string]any{
			"name":      r.Name,
			"reactants": r.Reactants,
			"products":  r.Products,
			"rate":      r.Rate,
			"rate_expr": r.RateExpr,
		}
	}

	obj := map[string]any{
		"name":  m.Name,
		"types": types,
		"seeds": seeds,
		"rules": rules,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("ModelHash: marshal: %w", err)
	}
	return hashWithDomain(DomainModel, canonical), nil
}

// NetworkFingerprint computes the content address of a generated network
// from its canonical species names and reaction keys, both in admission
// order. Two generation runs that produced the same network byte-compare
// equal here regardless of internal search order.
func NetworkFingerprint(speciesCerts []string, reactionKeys []string) (string, error) {
	obj := map[string]any{
		"species":   speciesCerts,
		"reactions": reactionKeys,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("NetworkFingerprint: marshal: %w", err)
	}
	return hashWithDomain(DomainNetwork, canonical), nil
}

// ReactionKey computes the dedup identity of one recorded reaction: the
// firing rule plus the sorted reactant and product certificates. Two
// embeddings that produce the same species transformation under the same
// rule collapse to one reaction (with summed multiplicity), which is
// exactly the key's purpose.
func ReactionKey(ruleName string, reactantCerts, productCerts []string) (string, error) {
	obj := map[string]any{
		"rule":      ruleName,
		"reactants": reactantCerts,
		"products":  productCerts,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("ReactionKey: marshal: %w", err)
	}
	return hashWithDomain(DomainReaction, canonical), nil
}

// MustModelHash is like ModelHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustModelHash(m Model) string {
	h, err := ModelHash(m)
	if err != nil {
		panic(err)
	}
	return h
}
