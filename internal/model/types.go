package model

import (
	"github.com/bionetgo/rxnet/internal/ir"
)

// NoBond marks a free component. Any BondRef with Mol < 0 is free.
var NoBond = BondRef{Mol: -1, Comp: -1}

// BondRef addresses one component inside a species arena.
type BondRef struct {
	Mol  int // molecule index within the species
	Comp int // component index within the molecule
}

// Wildcard is a match-only bond marker. Meaningful on pattern components
// only; concrete species always carry WildNone.
type Wildcard uint8

const (
	// WildNone means no wildcard: the component's Bond field governs.
	WildNone Wildcard = iota
	// WildBondAny ("!+") requires the target component to have some bond.
	WildBondAny
	// WildBondOpt ("!?") explicitly ignores the target's bond status.
	// Equivalent to no bond spec at all; kept distinct so the writer can
	// round-trip pattern text.
	WildBondOpt
)

// StateAny is the pattern state wildcard ("~?"): matches any defined state
// but not the absence of state.
const StateAny = "?"

// Component is one attachment site on a molecule instance. The site name is
// not unique within a molecule: symmetric sites share a name.
type Component struct {
	Name  string
	State string   // "" = no state (stateless, or unconstrained in patterns)
	Bond  BondRef  // partner endpoint; NoBond when free
	Wild  Wildcard // pattern-only bond marker
}

// Bonded reports whether the component has a bond partner.
func (c *Component) Bonded() bool { return c.Bond.Mol >= 0 }

// Molecule is an instance of a declared molecule type with its ordered
// component list.
type Molecule struct {
	Type       string
	Components []Component
}

// Species is a connected-or-bounded complex of bonded molecule instances.
// Identity for deduplication is the canonical certificate computed by the
// canon package, never object identity or declaration order.
type Species struct {
	Molecules []Molecule

	// pattern marks a read-only pattern graph that may carry wildcards.
	pattern bool
}

// IsPattern reports whether the graph is a pattern (wildcards allowed,
// read-only by convention).
func (s *Species) IsPattern() bool { return s.pattern }

// Size returns the aggregate size: the number of molecule instances.
func (s *Species) Size() int { return len(s.Molecules) }

// Component returns the component addressed by ref. The ref must be in
// range; out-of-range refs are a programming error and panic like any
// slice access.
func (s *Species) Component(ref BondRef) *Component {
	return &s.Molecules[ref.Mol].Components[ref.Comp]
}

// TypeCounts returns the per-molecule-type stoichiometry of the complex.
func (s *Species) TypeCounts() map[string]int {
	counts := make(map[string]int, len(s.Molecules))
	for i := range s.Molecules {
		counts[s.Molecules[i].Type]++
	}
	return counts
}

// SetBond installs a mutual bond between two free components.
// Returns ErrAlreadyBonded if either endpoint has a bond.
func (s *Species) SetBond(a, b BondRef) error {
	ca, cb := s.Component(a), s.Component(b)
	if ca.Bonded() || cb.Bonded() {
		return ErrAlreadyBonded
	}
	ca.Bond = b
	cb.Bond = a
	return nil
}

// ClearBond removes the bond at ref from both endpoints.
// Returns ErrNotBonded if the component is free.
func (s *Species) ClearBond(ref BondRef) error {
	c := s.Component(ref)
	if !c.Bonded() {
		return ErrNotBonded
	}
	partner := s.Component(c.Bond)
	partner.Bond = NoBond
	c.Bond = NoBond
	return nil
}

// MoleculeType is a declared molecule type: a name plus the ordered
// component slots every instance carries.
type MoleculeType struct {
	Name  string
	Slots []ComponentSlot
}

// ComponentSlot declares one component: its name and allowed state set.
// An empty state set means the component is stateless.
type ComponentSlot struct {
	Name   string
	States []string
}

// DefaultState returns the slot's default state: the first declared state,
// or "" for stateless slots. Used when expanding bare molecule names.
func (cs *ComponentSlot) DefaultState() string {
	if len(cs.States) == 0 {
		return ""
	}
	return cs.States[0]
}

// AllowsState reports whether state is legal for the slot.
func (cs *ComponentSlot) AllowsState(state string) bool {
	for _, st := range cs.States {
		if st == state {
			return true
		}
	}
	return false
}

// TypeTable is the registry of declared molecule types, built once per
// model from the compiled IR and shared read-only afterwards.
type TypeTable struct {
	order []string
	types map[string]*MoleculeType
}

// NewTypeTable builds a registry from molecule type declarations.
// Duplicate type names are a definition error. Duplicate component names
// within one type are legal (symmetric sites) and must declare identical
// state sets; mismatched state sets on same-name slots are rejected because
// the text form cannot distinguish them.
func NewTypeTable(defs []ir.MoleculeTypeDef) (*TypeTable, error) {
	tt := &TypeTable{types: make(map[string]*MoleculeType, len(defs))}
	for _, def := range defs {
		if _, dup := tt.types[def.Name]; dup {
			return nil, defErr(ErrUnknownMoleculeType, def.Name, "molecule type declared twice")
		}
		mt := &MoleculeType{Name: def.Name, Slots: make([]ComponentSlot, len(def.Components))}
		byName := make(map[string][]string)
		for i, c := range def.Components {
			mt.Slots[i] = ComponentSlot{Name: c.Name, States: append([]string(nil), c.States...)}
			if prev, seen := byName[c.Name]; seen {
				if !equalStates(prev, c.States) {
					return nil, defErr(ErrUnknownState, def.Name,
						"symmetric sites %q declare different state sets", c.Name)
				}
			} else {
				byName[c.Name] = c.States
			}
		}
		tt.types[def.Name] = mt
		tt.order = append(tt.order, def.Name)
	}
	return tt, nil
}

func equalStates(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Lookup returns the declared molecule type, if any.
func (tt *TypeTable) Lookup(name string) (*MoleculeType, bool) {
	mt, ok := tt.types[name]
	return mt, ok
}

// Names returns the declared type names in declaration order.
func (tt *TypeTable) Names() []string {
	return append([]string(nil), tt.order...)
}

// Instantiate creates a fresh molecule of the named type with every
// component in its default state and free of bonds.
func (tt *TypeTable) Instantiate(name string) (Molecule, error) {
	mt, ok := tt.types[name]
	if !ok {
		return Molecule{}, defErr(ErrUnknownMoleculeType, name, "not declared")
	}
	mol := Molecule{Type: name, Components: make([]Component, len(mt.Slots))}
	for i := range mt.Slots {
		mol.Components[i] = Component{
			Name:  mt.Slots[i].Name,
			State: mt.Slots[i].DefaultState(),
			Bond:  NoBond,
		}
	}
	return mol, nil
}
