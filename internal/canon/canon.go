package canon

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/bionetgo/rxnet/internal/model"
)

// certificate computes the canonical text form of a concrete species.
func certificate(sp *model.Species) (string, error) {
	if sp.IsPattern() {
		return "", fmt.Errorf("canon: cannot canonicalize a pattern graph")
	}
	n := len(sp.Molecules)
	if n == 0 {
		return "", nil
	}
	if n == 1 {
		return render(sp, []int{0}), nil
	}

	colors := refine(sp)

	// Group molecules into cells of equal color, cells ordered by color.
	byColor := make(map[string][]int)
	for mi, c := range colors {
		byColor[c] = append(byColor[c], mi)
	}
	colorKeys := make([]string, 0, len(byColor))
	for c := range byColor {
		colorKeys = append(colorKeys, c)
	}
	sort.Strings(colorKeys)

	cells := make([][]int, 0, len(colorKeys))
	for _, c := range colorKeys {
		cells = append(cells, byColor[c])
	}

	// Try every permutation within tied cells; keep the minimal rendering.
	best := ""
	permuteCells(cells, func(order []int) {
		s := render(sp, order)
		if best == "" || s < best {
			best = s
		}
	})
	return best, nil
}

// refine computes a stable isomorphism-invariant coloring of the
// molecules. The initial color is the molecule type plus the sorted
// multiset of component descriptors; each round folds in the sorted
// colors of bonded neighbors, annotated with the local and remote
// component names. Stops when the number of distinct colors stops growing
// (it can only grow: colors are extended, never replaced).
func refine(sp *model.Species) []string {
	n := len(sp.Molecules)
	colors := make([]string, n)
	for mi := range sp.Molecules {
		colors[mi] = initialColor(&sp.Molecules[mi])
	}

	distinct := countDistinct(colors)
	for round := 0; round < n; round++ {
		next := make([]string, n)
		for mi := range sp.Molecules {
			mol := &sp.Molecules[mi]
			var edges []string
			for ci := range mol.Components {
				c := &mol.Components[ci]
				if !c.Bonded() {
					continue
				}
				partner := sp.Component(c.Bond)
				edges = append(edges, c.Name+">"+partner.Name+">"+colors[c.Bond.Mol])
			}
			sort.Strings(edges)
			next[mi] = colors[mi] + "|" + strings.Join(edges, ";")
		}
		colors = next
		d := countDistinct(colors)
		if d == distinct {
			break
		}
		distinct = d
	}
	return colors
}

// initialColor describes one molecule without reference to its neighbors:
// type name plus the sorted multiset of (component name, state, bonded)
// descriptors. Sorting makes symmetric-slot order irrelevant, which is the
// whole point: A(b~P,b~U) and A(b~U,b~P) color identically.
func initialColor(mol *model.Molecule) string {
	descs := make([]string, len(mol.Components))
	for i := range mol.Components {
		c := &mol.Components[i]
		bonded := "0"
		if c.Bonded() {
			bonded = "1"
		}
		descs[i] = c.Name + "~" + c.State + "!" + bonded
	}
	sort.Strings(descs)
	return mol.Type + "(" + strings.Join(descs, ",") + ")"
}

func countDistinct(colors []string) int {
	set := make(map[string]struct{}, len(colors))
	for _, c := range colors {
		set[c] = struct{}{}
	}
	return len(set)
}

// permuteCells invokes fn with every total molecule order obtained by
// permuting each cell independently and concatenating cells in order.
// Cell sizes after refinement are the automorphism classes; the factorial
// cost is confined to genuinely symmetric molecules.
func permuteCells(cells [][]int, fn func(order []int)) {
	total := 0
	for _, cell := range cells {
		total += len(cell)
	}
	order := make([]int, 0, total)

	var walk func(ci int)
	walk = func(ci int) {
		if ci == len(cells) {
			fn(order)
			return
		}
		permute(cells[ci], func(perm []int) {
			order = append(order, perm...)
			walk(ci + 1)
			order = order[:len(order)-len(perm)]
		})
	}
	walk(0)
}

// permute enumerates permutations of xs in place (Heap's algorithm).
func permute(xs []int, fn func(perm []int)) {
	n := len(xs)
	if n <= 1 {
		fn(xs)
		return
	}
	work := append([]int(nil), xs...)
	counters := make([]int, n)
	fn(work)
	for i := 0; i < n; {
		if counters[i] < i {
			if i%2 == 0 {
				work[0], work[i] = work[i], work[0]
			} else {
				work[counters[i]], work[i] = work[i], work[counters[i]]
			}
			fn(work)
			counters[i]++
			i = 0
		} else {
			counters[i] = 0
			i++
		}
	}
}

// render serializes the species with molecules in the given order.
//
// Within each molecule, same-name components are reordered by an
// invariant key (state, partner position, partner name, partner state,
// already-assigned bond label) so that arena slot order of symmetric
// sites cannot leak into the certificate. Distinct component names keep
// their declared relative order. Bond labels are assigned by first
// encounter in the rendered order.
func render(sp *model.Species, order []int) string {
	pos := make([]int, len(sp.Molecules))
	for p, mi := range order {
		pos[mi] = p
	}

	labels := make(map[model.BondRef]int)
	next := 1
	var b strings.Builder

	for p, mi := range order {
		if p > 0 {
			b.WriteByte('.')
		}
		mol := &sp.Molecules[mi]
		b.WriteString(mol.Type)
		b.WriteByte('(')

		for i, ci := range renderOrder(sp, pos, labels, mi) {
			if i > 0 {
				b.WriteByte(',')
			}
			c := &mol.Components[ci]
			b.WriteString(c.Name)
			if c.State != "" {
				b.WriteByte('~')
				b.WriteString(c.State)
			}
			if c.Bonded() {
				here := model.BondRef{Mol: mi, Comp: ci}
				label, seen := labels[here]
				if !seen {
					label = next
					next++
					labels[c.Bond] = label
				}
				b.WriteByte('!')
				b.WriteString(strconv.Itoa(label))
			}
		}
		b.WriteByte(')')
	}
	return b.String()
}

// renderOrder returns the component indices of molecule mi in certificate
// order. Only same-name components may be permuted relative to the arena.
func renderOrder(sp *model.Species, pos []int, labels map[model.BondRef]int, mi int) []int {
	mol := &sp.Molecules[mi]
	idx := make([]int, len(mol.Components))
	for i := range idx {
		idx[i] = i
	}

	// First occurrence index per name preserves the declared order of
	// distinct names.
	nameRank := make(map[string]int)
	for i := range mol.Components {
		if _, ok := nameRank[mol.Components[i].Name]; !ok {
			nameRank[mol.Components[i].Name] = i
		}
	}

	key := func(ci int) (int, string, int, string, string, int) {
		c := &mol.Components[ci]
		if !c.Bonded() {
			return nameRank[c.Name], c.State, math.MaxInt32, "", "", math.MaxInt32
		}
		partner := sp.Component(c.Bond)
		label := math.MaxInt32
		if l, seen := labels[model.BondRef{Mol: mi, Comp: ci}]; seen {
			label = l
		}
		return nameRank[c.Name], c.State, pos[c.Bond.Mol], partner.Name, partner.State, label
	}

	sort.SliceStable(idx, func(a, b int) bool {
		r1, s1, p1, pn1, ps1, l1 := key(idx[a])
		r2, s2, p2, pn2, ps2, l2 := key(idx[b])
		switch {
		case r1 != r2:
			return r1 < r2
		case s1 != s2:
			return s1 < s2
		case p1 != p2:
			return p1 < p2
		case pn1 != pn2:
			return pn1 < pn2
		case ps1 != ps2:
			return ps1 < ps2
		default:
			return l1 < l2
		}
	})
	return idx
}
