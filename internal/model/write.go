package model

import (
	"strconv"
	"strings"
)

// String renders the species in its flat text form, molecules in arena
// order, components in stored order, bond labels numbered by first
// encounter. For concrete species in canonical arena order this is the
// canonical certificate text; for arbitrary orders it is merely a faithful
// serialization.
func (s *Species) String() string {
	var b strings.Builder
	labels := make(map[BondRef]int)
	next := 1

	for mi := range s.Molecules {
		if mi > 0 {
			b.WriteByte('.')
		}
		mol := &s.Molecules[mi]
		b.WriteString(mol.Type)
		b.WriteByte('(')
		for ci := range mol.Components {
			if ci > 0 {
				b.WriteByte(',')
			}
			c := &mol.Components[ci]
			b.WriteString(c.Name)
			if c.State != "" {
				b.WriteByte('~')
				b.WriteString(c.State)
			}
			switch {
			case c.Wild == WildBondAny:
				b.WriteString("!+")
			case c.Wild == WildBondOpt:
				b.WriteString("!?")
			case c.Bonded():
				here := BondRef{Mol: mi, Comp: ci}
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
