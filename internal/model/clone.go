package model

// Clone returns a deep copy of the species. Required before any in-place
// rewrite: finalized species are immutable by convention.
func (s *Species) Clone() *Species {
	out := &Species{pattern: s.pattern, Molecules: make([]Molecule, len(s.Molecules))}
	for i := range s.Molecules {
		src := &s.Molecules[i]
		out.Molecules[i] = Molecule{
			Type:       src.Type,
			Components: append([]Component(nil), src.Components...),
		}
	}
	return out
}

// Merge concatenates other's molecules onto s, remapping other's bonds by
// the molecule index offset, and returns the offset. Both arenas stay
// internally consistent; callers own making deep copies first.
func (s *Species) Merge(other *Species) int {
	offset := len(s.Molecules)
	for i := range other.Molecules {
		src := &other.Molecules[i]
		mol := Molecule{
			Type:       src.Type,
			Components: append([]Component(nil), src.Components...),
		}
		for ci := range mol.Components {
			if mol.Components[ci].Bonded() {
				mol.Components[ci].Bond.Mol += offset
			}
		}
		s.Molecules = append(s.Molecules, mol)
	}
	return offset
}
