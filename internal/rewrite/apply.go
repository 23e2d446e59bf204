package rewrite

import (
	"fmt"

	"github.com/bionetgo/rxnet/internal/match"
	"github.com/bionetgo/rxnet/internal/model"
)

// Apply executes the rule's operations against one embedding per reactant
// slot. sources[i] is the concrete species matched by rule.Reactants[i] and
// matches[i] is the embedding of that pattern into it; the same species may
// appear in more than one slot. Sources are never mutated: the rewrite runs
// on a merged deep copy and the result is re-partitioned by connectivity,
// so the returned slice holds one species per product complex regardless of
// how many the rule declared.
//
// A BondConflictError means this particular embedding cannot take the
// rule's bond addition; the caller should skip the candidate and continue.
func Apply(rule *Rule, matches []match.Match, sources []*model.Species) ([]*model.Species, error) {
	if len(matches) != rule.Arity() || len(sources) != rule.Arity() {
		return nil, &RuleError{Rule: rule.Name, Detail: fmt.Sprintf(
			"want %d matched reactants, got %d matches over %d species",
			rule.Arity(), len(matches), len(sources))}
	}

	// Merge every source complex into one working arena. Merge deep-copies,
	// so a species bound to two slots yields two independent copies.
	working := &model.Species{}
	offsets := make([]int, len(sources))
	for i, src := range sources {
		offsets[i] = working.Merge(src)
	}

	// newMol[i] is the working-arena index of the i-th synthesized molecule.
	newMol := make([]int, len(rule.additions))
	for i := range newMol {
		newMol[i] = -1
	}

	resolve := func(ref Ref) (model.BondRef, error) {
		if ref.Side == SideNew {
			if newMol[ref.Mol] < 0 {
				return model.NoBond, &RuleError{Rule: rule.Name, Detail: "bond references a molecule before its synthesis op"}
			}
			return model.BondRef{Mol: newMol[ref.Mol], Comp: ref.Comp}, nil
		}
		slot := rule.slotOf[ref.Mol]
		local := rule.localOf[ref.Mol]
		m := matches[slot]
		return model.BondRef{
			Mol:  offsets[slot] + m.Molecules[local],
			Comp: m.Components[local][ref.Comp],
		}, nil
	}

	var doomed []int
	for _, op := range rule.Ops {
		switch op.Kind {
		case OpChangeState:
			br, err := resolve(op.A)
			if err != nil {
				return nil, err
			}
			working.Component(br).State = op.State

		case OpAddMolecule:
			tpl := rule.additions[op.Add]
			mol := model.Molecule{
				Type:       tpl.Type,
				Components: append([]model.Component(nil), tpl.Components...),
			}
			newMol[op.Add] = len(working.Molecules)
			working.Molecules = append(working.Molecules, mol)

		case OpAddBond:
			a, err := resolve(op.A)
			if err != nil {
				return nil, err
			}
			b, err := resolve(op.B)
			if err != nil {
				return nil, err
			}
			if err := working.SetBond(a, b); err != nil {
				return nil, &BondConflictError{Rule: rule.Name, Detail: fmt.Sprintf(
					"cannot bond %s.%s to %s.%s: an endpoint is already bonded",
					working.Molecules[a.Mol].Type, working.Component(a).Name,
					working.Molecules[b.Mol].Type, working.Component(b).Name)}
			}

		case OpDeleteBond:
			a, err := resolve(op.A)
			if err != nil {
				return nil, err
			}
			if err := working.ClearBond(a); err != nil {
				return nil, &RuleError{Rule: rule.Name, Detail: fmt.Sprintf(
					"cannot unbind %s.%s: %v",
					working.Molecules[a.Mol].Type, working.Component(a).Name, err)}
			}

		case OpDeleteMolecule:
			br, err := resolve(op.A)
			if err != nil {
				return nil, err
			}
			// Sever every bond the doomed molecule holds, then drop it
			// during compaction so the other ops see stable indices.
			for ci := range working.Molecules[br.Mol].Components {
				end := model.BondRef{Mol: br.Mol, Comp: ci}
				if working.Component(end).Bonded() {
					if err := working.ClearBond(end); err != nil {
						return nil, &RuleError{Rule: rule.Name, Detail: err.Error()}
					}
				}
			}
			doomed = append(doomed, br.Mol)

		default:
			return nil, &RuleError{Rule: rule.Name, Detail: fmt.Sprintf("unknown op kind %d", op.Kind)}
		}
	}

	if len(doomed) > 0 {
		compact(working, doomed)
	}

	if len(working.Molecules) == 0 {
		// Pure degradation: no product species.
		return nil, nil
	}
	return working.Split(), nil
}

// compact removes the doomed molecules from the arena and remaps the
// surviving bonds. Doomed molecules must already be bond-free.
func compact(sp *model.Species, doomed []int) {
	drop := make(map[int]bool, len(doomed))
	for _, mi := range doomed {
		drop[mi] = true
	}
	remap := make([]int, len(sp.Molecules))
	kept := sp.Molecules[:0]
	next := 0
	for mi := range sp.Molecules {
		if drop[mi] {
			remap[mi] = -1
			continue
		}
		remap[mi] = next
		kept = append(kept, sp.Molecules[mi])
		next++
	}
	sp.Molecules = kept
	for mi := range sp.Molecules {
		for ci := range sp.Molecules[mi].Components {
			c := &sp.Molecules[mi].Components[ci]
			if c.Bonded() {
				c.Bond.Mol = remap[c.Bond.Mol]
			}
		}
	}
}
