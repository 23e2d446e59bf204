package match

import (
	"github.com/bionetgo/rxnet/internal/model"
)

// Match is one embedding: a mapping from every pattern molecule (and,
// through Components, every pattern component) to a target molecule and
// component. Ephemeral: produced here, consumed immediately by the rewrite
// engine or observable evaluation, never persisted.
type Match struct {
	// Molecules maps pattern molecule index to target molecule index.
	Molecules []int
	// Components maps, per pattern molecule, pattern component index to
	// target component index.
	Components [][]int
}

// TargetComponent resolves the target component matched by a pattern ref.
func (m *Match) TargetComponent(ref model.BondRef) model.BondRef {
	return model.BondRef{
		Mol:  m.Molecules[ref.Mol],
		Comp: m.Components[ref.Mol][ref.Comp],
	}
}

// FindEmbeddings returns every embedding of pattern into target.
//
// Pattern graphs are finite and small (typically under ten molecules);
// worst-case exponential backtracking is bounded by real model sizes and
// no artificial cap is imposed here. Resource caps live in the generation
// engine, never in the matcher.
func FindEmbeddings(pattern, target *model.Species) []Match {
	if len(pattern.Molecules) == 0 || len(pattern.Molecules) > len(target.Molecules) {
		return nil
	}

	order := searchOrder(pattern)

	type frame struct {
		cands []candidate
		next  int
	}

	assigned := make([]candidate, 0, len(order))
	usedTarget := make([]bool, len(target.Molecules))
	// Current assignment indexed by pattern molecule (not search position).
	molOf := make([]int, len(pattern.Molecules))
	compOf := make([][]int, len(pattern.Molecules))
	for i := range molOf {
		molOf[i] = -1
	}

	var matches []Match
	stack := []frame{{cands: candidatesFor(pattern, target, order[0], molOf, compOf, usedTarget)}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(top.cands) {
			// Exhausted: backtrack.
			stack = stack[:len(stack)-1]
			if len(assigned) > 0 {
				last := assigned[len(assigned)-1]
				assigned = assigned[:len(assigned)-1]
				pm := order[len(assigned)]
				usedTarget[last.tmol] = false
				molOf[pm] = -1
				compOf[pm] = nil
			}
			continue
		}

		cand := top.cands[top.next]
		top.next++

		pm := order[len(assigned)]
		assigned = append(assigned, cand)
		usedTarget[cand.tmol] = true
		molOf[pm] = cand.tmol
		compOf[pm] = cand.comps

		if len(assigned) == len(order) {
			matches = append(matches, snapshot(molOf, compOf))
			// Undo immediately and continue with this frame's next candidate.
			assigned = assigned[:len(assigned)-1]
			usedTarget[cand.tmol] = false
			molOf[pm] = -1
			compOf[pm] = nil
			continue
		}

		nextPM := order[len(assigned)]
		stack = append(stack, frame{cands: candidatesFor(pattern, target, nextPM, molOf, compOf, usedTarget)})
	}

	return matches
}

func snapshot(molOf []int, compOf [][]int) Match {
	m := Match{
		Molecules:  append([]int(nil), molOf...),
		Components: make([][]int, len(compOf)),
	}
	for i, comps := range compOf {
		m.Components[i] = append([]int(nil), comps...)
	}
	return m
}

type candidate struct {
	tmol  int
	comps []int // pattern comp idx -> target comp idx
}

// searchOrder returns pattern molecule indices in BFS order over the
// pattern's own bonds, starting new roots for disconnected pieces. Matching
// along connectivity prunes impossible assignments early: every molecule
// after the first in a connected piece is constrained by an already-mapped
// bond.
func searchOrder(pattern *model.Species) []int {
	n := len(pattern.Molecules)
	seen := make([]bool, n)
	order := make([]int, 0, n)

	for root := 0; root < n; root++ {
		if seen[root] {
			continue
		}
		seen[root] = true
		order = append(order, root)
		for qi := len(order) - 1; qi < len(order); qi++ {
			mi := order[qi]
			for ci := range pattern.Molecules[mi].Components {
				bond := pattern.Molecules[mi].Components[ci].Bond
				if bond.Mol >= 0 && !seen[bond.Mol] {
					seen[bond.Mol] = true
					order = append(order, bond.Mol)
				}
			}
		}
	}
	return order
}

// candidatesFor enumerates every (target molecule, component bijection)
// consistent with the partial assignment for pattern molecule pm. Each
// distinct component assignment is a distinct candidate: symmetric sites
// multiply the match count by design.
func candidatesFor(pattern, target *model.Species, pm int, molOf []int, compOf [][]int, usedTarget []bool) []candidate {
	pmol := &pattern.Molecules[pm]
	var cands []candidate

	for tm := range target.Molecules {
		if usedTarget[tm] {
			continue
		}
		tmol := &target.Molecules[tm]
		if tmol.Type != pmol.Type {
			continue
		}
		for _, comps := range componentAssignments(pattern, target, pm, tm, molOf, compOf) {
			cands = append(cands, candidate{tmol: tm, comps: comps})
		}
	}
	return cands
}

// componentAssignments enumerates injective pattern-component to
// target-component mappings for one molecule pair, honoring name equality,
// state compatibility, wildcards, and bond consistency against molecules
// already assigned (including this one, for intra-molecule bonds).
func componentAssignments(pattern, target *model.Species, pm, tm int, molOf []int, compOf [][]int) [][]int {
	pcomps := pattern.Molecules[pm].Components
	tcomps := target.Molecules[tm].Components
	if len(pcomps) > len(tcomps) {
		return nil
	}

	usedComp := make([]bool, len(tcomps))
	current := make([]int, len(pcomps))
	var out [][]int

	var extend func(pi int)
	extend = func(pi int) {
		if pi == len(pcomps) {
			out = append(out, append([]int(nil), current...))
			return
		}
		pc := &pcomps[pi]
		for ti := range tcomps {
			if usedComp[ti] {
				continue
			}
			tc := &tcomps[ti]
			if tc.Name != pc.Name {
				continue
			}
			if !stateCompatible(pc.State, tc.State) {
				continue
			}
			if !bondCompatible(pattern, target, pc, tc, pm, tm, pi, ti, molOf, compOf, current) {
				continue
			}
			usedComp[ti] = true
			current[pi] = ti
			extend(pi + 1)
			usedComp[ti] = false
		}
	}
	extend(0)
	return out
}

// stateCompatible implements the state wildcard rules: an unset pattern
// state matches anything, StateAny ("~?") matches any defined state but
// not the absence of one, and a set state requires exact equality.
func stateCompatible(patternState, targetState string) bool {
	switch patternState {
	case "":
		return true
	case model.StateAny:
		return targetState != ""
	default:
		return patternState == targetState
	}
}

// bondCompatible checks a single pattern component's bond constraint
// against its proposed target component.
//
// Rules:
//   - no bond spec / "!?"  → don't care
//   - "!+"                 → target must have some bond
//   - explicit bond label  → if the pattern partner molecule is already
//     assigned (or is this molecule, earlier in the current bijection),
//     the target component must be bonded to exactly the mapped partner
//     component; otherwise the target component must at least be bonded.
func bondCompatible(pattern, target *model.Species, pc, tc *model.Component, pm, tm, pi, ti int, molOf []int, compOf [][]int, current []int) bool {
	switch pc.Wild {
	case model.WildBondAny:
		return tc.Bonded()
	case model.WildBondOpt:
		return true
	}
	if !pc.Bonded() {
		// Unset bond in a pattern is a don't-care, not "must be free".
		return true
	}

	if !tc.Bonded() {
		return false
	}

	partner := pc.Bond // pattern-space (mol, comp)
	var partnerTarget model.BondRef
	switch {
	case partner.Mol == pm && partner.Comp < pi:
		// Intra-molecule bond to a component already placed in this bijection.
		partnerTarget = model.BondRef{Mol: tm, Comp: current[partner.Comp]}
	case partner.Mol == pm:
		// Intra-molecule bond to a later component: defer to its turn.
		return true
	case molOf[partner.Mol] >= 0:
		partnerTarget = model.BondRef{
			Mol:  molOf[partner.Mol],
			Comp: compOf[partner.Mol][partner.Comp],
		}
	default:
		// Partner molecule not assigned yet: all we can require now is
		// that the target side is bonded at all.
		return true
	}

	return tc.Bond == partnerTarget
}
