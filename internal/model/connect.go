package model

import "sort"

// ConnectedComponents partitions the molecules into bond-connected groups
// and returns each group's molecule indices in ascending order, groups
// ordered by their smallest member.
func (s *Species) ConnectedComponents() [][]int {
	n := len(s.Molecules)
	seen := make([]bool, n)
	var groups [][]int

	for start := 0; start < n; start++ {
		if seen[start] {
			continue
		}
		// BFS over bonds from start.
		group := []int{start}
		seen[start] = true
		for qi := 0; qi < len(group); qi++ {
			mi := group[qi]
			for ci := range s.Molecules[mi].Components {
				bond := s.Molecules[mi].Components[ci].Bond
				if bond.Mol >= 0 && !seen[bond.Mol] {
					seen[bond.Mol] = true
					group = append(group, bond.Mol)
				}
			}
		}
		sort.Ints(group)
		groups = append(groups, group)
	}
	return groups
}

// Split re-partitions the species into disjoint connected complexes,
// returning one new Species per connected component. Bond indices are
// remapped into each component's own arena. Molecules keep their relative
// order. A bond removal can split one complex into two; the caller must
// not assume a 1:1 correspondence with any declared product count.
func (s *Species) Split() []*Species {
	groups := s.ConnectedComponents()
	if len(groups) == 1 {
		return []*Species{s.Clone()}
	}

	out := make([]*Species, 0, len(groups))
	for _, group := range groups {
		remap := make(map[int]int, len(group))
		for newIdx, oldIdx := range group {
			remap[oldIdx] = newIdx
		}
		part := &Species{pattern: s.pattern, Molecules: make([]Molecule, 0, len(group))}
		for _, oldIdx := range group {
			src := &s.Molecules[oldIdx]
			mol := Molecule{
				Type:       src.Type,
				Components: append([]Component(nil), src.Components...),
			}
			for ci := range mol.Components {
				if mol.Components[ci].Bonded() {
					mol.Components[ci].Bond.Mol = remap[mol.Components[ci].Bond.Mol]
				}
			}
			part.Molecules = append(part.Molecules, mol)
		}
		out = append(out, part)
	}
	return out
}
