package rewrite

import (
	"fmt"

	"github.com/bionetgo/rxnet/internal/ir"
	"github.com/bionetgo/rxnet/internal/model"
)

// OpKind enumerates the graph operations a rule can perform.
type OpKind uint8

const (
	// OpChangeState rewrites a matched component's state.
	OpChangeState OpKind = iota + 1
	// OpAddMolecule synthesizes a molecule not derived from any match.
	OpAddMolecule
	// OpAddBond bonds two free components.
	OpAddBond
	// OpDeleteBond removes an existing bond.
	OpDeleteBond
	// OpDeleteMolecule degrades a matched molecule; its bonds are severed.
	OpDeleteMolecule
)

// Side distinguishes the two molecule address spaces an Op can reference.
type Side uint8

const (
	// SideReactant addresses a matched molecule by its global index across
	// the rule's reactant patterns.
	SideReactant Side = iota
	// SideNew addresses a molecule synthesized by an OpAddMolecule, by its
	// position in the rule's addition list.
	SideNew
)

// Ref addresses one molecule, and for bond and state ops one component, in
// rule space.
type Ref struct {
	Side Side
	Mol  int
	Comp int
}

// Op is one primitive graph operation.
type Op struct {
	Kind  OpKind
	A, B  Ref    // A for unary ops; A and B for bond endpoints
	State string // OpChangeState
	Add   int    // OpAddMolecule: index into the rule's additions
}

// Rule is an executable rewriting rule: reactant patterns, the operation
// list derived from diffing them against the products, and the rate
// attached to recorded reactions. Build once, apply many times.
type Rule struct {
	Name      string
	Reactants []*model.Species
	Products  []*model.Species
	Rate      float64
	RateExpr  string
	Ops       []Op

	// additions holds template molecules for OpAddMolecule, fully
	// specified at build time and cloned per application.
	additions []model.Molecule

	// slotOf and localOf decompose a global reactant molecule index into
	// (reactant pattern slot, molecule index within that pattern).
	slotOf  []int
	localOf []int
}

// Arity returns the number of reactant patterns (the reaction order).
func (r *Rule) Arity() int { return len(r.Reactants) }

// BuildRule compiles a rule definition into patterns plus an operation
// list. The definition must be unidirectional; the compiler splits
// bidirectional rules before this point.
//
// The text form "0" denotes the null pattern on pure synthesis or
// degradation sides and contributes no pattern.
func BuildRule(tt *model.TypeTable, def ir.RuleDef) (*Rule, error) {
	if def.Bidirectional {
		return nil, &RuleError{Rule: def.Name, Detail: "bidirectional rule reached the rewrite layer unsplit"}
	}

	r := &Rule{Name: def.Name, Rate: def.Rate, RateExpr: def.RateExpr}

	for _, text := range def.Reactants {
		if text == "0" {
			continue
		}
		p, err := model.ParsePattern(tt, text)
		if err != nil {
			return nil, fmt.Errorf("rule %s: reactant: %w", def.Name, err)
		}
		slot := len(r.Reactants)
		for local := range p.Molecules {
			r.slotOf = append(r.slotOf, slot)
			r.localOf = append(r.localOf, local)
		}
		r.Reactants = append(r.Reactants, p)
	}

	for _, text := range def.Products {
		if text == "0" {
			continue
		}
		p, err := model.ParsePattern(tt, text)
		if err != nil {
			return nil, fmt.Errorf("rule %s: product: %w", def.Name, err)
		}
		r.Products = append(r.Products, p)
	}

	if err := deriveOps(tt, r); err != nil {
		return nil, err
	}
	return r, nil
}

// globalMolecules flattens pattern molecules across a pattern list.
func globalMolecules(patterns []*model.Species) []*model.Molecule {
	var out []*model.Molecule
	for _, p := range patterns {
		for i := range p.Molecules {
			out = append(out, &p.Molecules[i])
		}
	}
	return out
}

// deriveOps diffs the reactant side against the product side and fills
// r.Ops and r.additions. Execution order is fixed by OpKind: state changes,
// then molecule additions (so synthesis-with-bond has its endpoint before
// bonds form), then bond additions, bond removals, and molecule removals.
func deriveOps(tt *model.TypeTable, r *Rule) error {
	rmols := globalMolecules(r.Reactants)
	pmols := globalMolecules(r.Products)

	// Identity correspondence: each product molecule claims the first
	// unclaimed reactant molecule of the same type, in declaration order.
	rOf := make([]int, len(pmols)) // -1 = synthesized
	claimed := make([]bool, len(rmols))
	for pi, pm := range pmols {
		rOf[pi] = -1
		for ri, rm := range rmols {
			if !claimed[ri] && rm.Type == pm.Type {
				claimed[ri] = true
				rOf[pi] = ri
				break
			}
		}
	}

	// Component correspondence per matched pair, by name claim order.
	compOf := make([][]int, len(pmols))
	// newIndex[pi] indexes r.additions for synthesized molecules, and
	// slotIdx[pi][pci] gives the component slot in the instantiated
	// molecule for the pattern's pci-th component.
	newIndex := make([]int, len(pmols))
	slotIdx := make([][]int, len(pmols))

	for pi, pm := range pmols {
		newIndex[pi] = -1
		if ri := rOf[pi]; ri >= 0 {
			rm := rmols[ri]
			compOf[pi] = make([]int, len(pm.Components))
			used := make([]bool, len(rm.Components))
			for pci := range pm.Components {
				compOf[pi][pci] = -1
				for rci := range rm.Components {
					if !used[rci] && rm.Components[rci].Name == pm.Components[pci].Name {
						used[rci] = true
						compOf[pi][pci] = rci
						break
					}
				}
				if compOf[pi][pci] < 0 {
					return &RuleError{Rule: r.Name, Detail: fmt.Sprintf(
						"product component %s.%s has no reactant counterpart", pm.Type, pm.Components[pci].Name)}
				}
			}
			continue
		}

		// Synthesized molecule: instantiate the full type with default
		// states, then apply the states the product declares.
		mol, err := tt.Instantiate(pm.Type)
		if err != nil {
			return fmt.Errorf("rule %s: %w", r.Name, err)
		}
		slots := make([]int, len(pm.Components))
		usedSlot := make([]bool, len(mol.Components))
		for pci := range pm.Components {
			pc := &pm.Components[pci]
			if pc.Wild != model.WildNone || pc.State == model.StateAny {
				return &RuleError{Rule: r.Name, Detail: fmt.Sprintf(
					"synthesized molecule %s carries a wildcard; synthesis must be fully specified", pm.Type)}
			}
			slot := -1
			for si := range mol.Components {
				if !usedSlot[si] && mol.Components[si].Name == pc.Name {
					usedSlot[si] = true
					slot = si
					break
				}
			}
			if slot < 0 {
				return &RuleError{Rule: r.Name, Detail: fmt.Sprintf(
					"synthesized molecule %s lists unknown component %s", pm.Type, pc.Name)}
			}
			if pc.State != "" {
				mol.Components[slot].State = pc.State
			}
			slots[pci] = slot
		}
		slotIdx[pi] = slots
		newIndex[pi] = len(r.additions)
		r.additions = append(r.additions, mol)
	}

	pairKey := func(a, b Ref) [2]Ref {
		if refLess(b, a) {
			a, b = b, a
		}
		return [2]Ref{a, b}
	}

	// Bond sets on both sides, endpoints expressed in reactant/new space.
	reactantBonds := make(map[[2]Ref]bool)
	base := 0
	for _, p := range r.Reactants {
		for mi := range p.Molecules {
			for ci := range p.Molecules[mi].Components {
				c := &p.Molecules[mi].Components[ci]
				if !c.Bonded() {
					continue
				}
				a := Ref{Side: SideReactant, Mol: base + mi, Comp: ci}
				b := Ref{Side: SideReactant, Mol: base + c.Bond.Mol, Comp: c.Bond.Comp}
				reactantBonds[pairKey(a, b)] = true
			}
		}
		base += len(p.Molecules)
	}

	productBonds := make(map[[2]Ref]bool)
	base = 0
	for _, p := range r.Products {
		for mi := range p.Molecules {
			for ci := range p.Molecules[mi].Components {
				c := &p.Molecules[mi].Components[ci]
				if !c.Bonded() {
					continue
				}
				a := productEnd(base+mi, ci, rOf, compOf, newIndex, slotIdx)
				b := productEnd(base+c.Bond.Mol, c.Bond.Comp, rOf, compOf, newIndex, slotIdx)
				productBonds[pairKey(a, b)] = true
			}
		}
		base += len(p.Molecules)
	}

	// State changes on surviving matched molecules.
	for pi, pm := range pmols {
		ri := rOf[pi]
		if ri < 0 {
			continue
		}
		rm := rmols[ri]
		for pci := range pm.Components {
			pc := &pm.Components[pci]
			if pc.State == "" || pc.State == model.StateAny {
				continue
			}
			rci := compOf[pi][pci]
			if rm.Components[rci].State == pc.State {
				continue
			}
			r.Ops = append(r.Ops, Op{
				Kind:  OpChangeState,
				A:     Ref{Side: SideReactant, Mol: ri, Comp: rci},
				State: pc.State,
			})
		}
	}

	// Molecule additions.
	for pi := range pmols {
		if newIndex[pi] >= 0 {
			r.Ops = append(r.Ops, Op{Kind: OpAddMolecule, Add: newIndex[pi]})
		}
	}

	// Bond additions.
	for pair := range productBonds {
		if !reactantBonds[pair] {
			r.Ops = append(r.Ops, Op{Kind: OpAddBond, A: pair[0], B: pair[1]})
		}
	}

	// Bond removals: reactant bonds absent from the product side whose
	// endpoints both survive. Deleted molecules sever their own bonds.
	deleted := make(map[int]bool)
	for ri := range rmols {
		if !claimed[ri] {
			deleted[ri] = true
		}
	}
	for pair := range reactantBonds {
		if productBonds[pair] {
			continue
		}
		if deleted[pair[0].Mol] || deleted[pair[1].Mol] {
			continue
		}
		r.Ops = append(r.Ops, Op{Kind: OpDeleteBond, A: pair[0], B: pair[1]})
	}

	// Molecule removals.
	for ri := range rmols {
		if deleted[ri] {
			r.Ops = append(r.Ops, Op{Kind: OpDeleteMolecule, A: Ref{Side: SideReactant, Mol: ri}})
		}
	}

	sortOps(r.Ops)
	return nil
}

// productEnd maps a product-space bond endpoint into reactant/new space.
func productEnd(pMol, pComp int, rOf []int, compOf [][]int, newIndex []int, slotIdx [][]int) Ref {
	if ri := rOf[pMol]; ri >= 0 {
		return Ref{Side: SideReactant, Mol: ri, Comp: compOf[pMol][pComp]}
	}
	return Ref{Side: SideNew, Mol: newIndex[pMol], Comp: slotIdx[pMol][pComp]}
}

func refLess(a, b Ref) bool {
	if a.Side != b.Side {
		return a.Side < b.Side
	}
	if a.Mol != b.Mol {
		return a.Mol < b.Mol
	}
	return a.Comp < b.Comp
}

// sortOps orders operations by kind and then by operand, making the op
// list deterministic regardless of map iteration order during the diff.
func sortOps(ops []Op) {
	for i := 1; i < len(ops); i++ {
		for j := i; j > 0 && opLess(ops[j], ops[j-1]); j-- {
			ops[j], ops[j-1] = ops[j-1], ops[j]
		}
	}
}

func opLess(a, b Op) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	if a.A != b.A {
		return refLess(a.A, b.A)
	}
	return refLess(a.B, b.B)
}
