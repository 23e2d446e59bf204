package model

import (
	"strings"
)

// ParseSpecies parses the flat text form of a concrete species and
// validates it against the type table.
//
// Partial component lists are expanded: unlisted components are added in
// default state and free. A bare molecule name with no parenthesized list
// is therefore "all components in default/free state". Wildcard markers
// (~?, !+, !?) are rejected with ErrWildcardInSpecies.
func ParseSpecies(tt *TypeTable, text string) (*Species, error) {
	raw, err := scanComplex(text)
	if err != nil {
		return nil, err
	}
	sp := &Species{}
	for _, rm := range raw {
		mol, err := buildConcreteMolecule(tt, text, rm)
		if err != nil {
			return nil, err
		}
		sp.Molecules = append(sp.Molecules, mol)
	}
	if err := resolveBonds(sp, raw, text); err != nil {
		return nil, err
	}
	return sp, nil
}

// ParsePattern parses the flat text form of a pattern graph. Wildcards are
// allowed and component lists are NOT expanded: a listed component
// constrains the target, an unlisted one does not. A bare molecule name
// matches "molecule present" with no component constraints at all.
func ParsePattern(tt *TypeTable, text string) (*Species, error) {
	raw, err := scanComplex(text)
	if err != nil {
		return nil, err
	}
	sp := &Species{pattern: true}
	for _, rm := range raw {
		mol, err := buildPatternMolecule(tt, text, rm)
		if err != nil {
			return nil, err
		}
		sp.Molecules = append(sp.Molecules, mol)
	}
	if err := resolveBonds(sp, raw, text); err != nil {
		return nil, err
	}
	return sp, nil
}

// rawComp is the scanner's view of one component: name, optional ~state
// token ("?" for the wildcard), and an optional bond token (digits, "+",
// or "?").
type rawComp struct {
	name     string
	state    string
	bond     string
	hasState bool
	hasBond  bool
}

type rawMol struct {
	name  string
	comps []rawComp
}

// scanComplex tokenizes "Mol(comp~s!1,comp).Mol(...)" into raw molecules.
// Purely syntactic; semantic validation happens against the type table.
func scanComplex(text string) ([]rawMol, error) {
	s := &scanner{src: text}
	var mols []rawMol
	for {
		s.skipSpace()
		name := s.ident()
		if name == "" {
			return nil, defErr(ErrSyntax, text, "expected molecule name at offset %d", s.pos)
		}
		rm := rawMol{name: name}
		if s.accept('(') {
			for !s.accept(')') {
				if len(rm.comps) > 0 && !s.accept(',') {
					return nil, defErr(ErrSyntax, text, "expected ',' or ')' at offset %d", s.pos)
				}
				comp, err := s.component(text)
				if err != nil {
					return nil, err
				}
				rm.comps = append(rm.comps, comp)
			}
		}
		mols = append(mols, rm)
		s.skipSpace()
		if !s.accept('.') {
			break
		}
	}
	if s.pos != len(s.src) {
		return nil, defErr(ErrSyntax, text, "trailing input at offset %d", s.pos)
	}
	return mols, nil
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t') {
		s.pos++
	}
}

func (s *scanner) accept(ch byte) bool {
	s.skipSpace()
	if s.pos < len(s.src) && s.src[s.pos] == ch {
		s.pos++
		return true
	}
	return false
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}

func (s *scanner) ident() string {
	s.skipSpace()
	start := s.pos
	if s.pos < len(s.src) && isIdentStart(s.src[s.pos]) {
		s.pos++
		for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
			s.pos++
		}
	}
	return s.src[start:s.pos]
}

func (s *scanner) digits() string {
	start := s.pos
	for s.pos < len(s.src) && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
		s.pos++
	}
	return s.src[start:s.pos]
}

func (s *scanner) component(subject string) (rawComp, error) {
	name := s.ident()
	if name == "" {
		return rawComp{}, defErr(ErrSyntax, subject, "expected component name at offset %d", s.pos)
	}
	comp := rawComp{name: name}
	if s.accept('~') {
		comp.hasState = true
		if s.accept('?') {
			comp.state = StateAny
		} else {
			st := s.stateToken()
			if st == "" {
				return rawComp{}, defErr(ErrSyntax, subject, "expected state after '~' at offset %d", s.pos)
			}
			comp.state = st
		}
	}
	if s.accept('!') {
		comp.hasBond = true
		switch {
		case s.accept('+'):
			comp.bond = "+"
		case s.accept('?'):
			comp.bond = "?"
		default:
			d := s.digits()
			if d == "" {
				return rawComp{}, defErr(ErrSyntax, subject, "expected bond label after '!' at offset %d", s.pos)
			}
			comp.bond = d
		}
		if s.pos < len(s.src) && s.src[s.pos] == '!' {
			return rawComp{}, defErr(ErrSyntax, subject, "component %q carries more than one bond", name)
		}
	}
	return comp, nil
}

// stateToken reads a state name: identifiers or bare integers are both
// legal states ("P", "0", "pY118").
func (s *scanner) stateToken() string {
	s.skipSpace()
	start := s.pos
	for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
		s.pos++
	}
	return s.src[start:s.pos]
}

// buildConcreteMolecule validates raw tokens for a concrete species and
// expands unlisted components to default/free.
func buildConcreteMolecule(tt *TypeTable, subject string, rm rawMol) (Molecule, error) {
	mt, ok := tt.Lookup(rm.name)
	if !ok {
		return Molecule{}, defErr(ErrUnknownMoleculeType, subject, "molecule %q not declared", rm.name)
	}

	mol := Molecule{Type: rm.name, Components: make([]Component, len(mt.Slots))}
	used := make([]bool, len(mt.Slots))
	for i := range mt.Slots {
		mol.Components[i] = Component{
			Name:  mt.Slots[i].Name,
			State: mt.Slots[i].DefaultState(),
			Bond:  NoBond,
		}
	}

	for _, rc := range rm.comps {
		slot := claimSlot(mt, used, rc.name)
		if slot < 0 {
			return Molecule{}, defErr(ErrUnknownComponent, subject,
				"component %q not declared on %q (or listed too many times)", rc.name, rm.name)
		}
		if rc.hasState {
			if rc.state == StateAny {
				return Molecule{}, defErr(ErrWildcardInSpecies, subject,
					"state wildcard on %s.%s", rm.name, rc.name)
			}
			if !mt.Slots[slot].AllowsState(rc.state) {
				return Molecule{}, defErr(ErrUnknownState, subject,
					"state %q not allowed on %s.%s", rc.state, rm.name, rc.name)
			}
			mol.Components[slot].State = rc.state
		}
		if rc.hasBond && (rc.bond == "+" || rc.bond == "?") {
			return Molecule{}, defErr(ErrWildcardInSpecies, subject,
				"bond wildcard on %s.%s", rm.name, rc.name)
		}
	}
	return mol, nil
}

// buildPatternMolecule validates raw tokens for a pattern without
// expansion: only listed components constrain the match.
func buildPatternMolecule(tt *TypeTable, subject string, rm rawMol) (Molecule, error) {
	mt, ok := tt.Lookup(rm.name)
	if !ok {
		return Molecule{}, defErr(ErrUnknownMoleculeType, subject, "molecule %q not declared", rm.name)
	}

	mol := Molecule{Type: rm.name, Components: make([]Component, 0, len(rm.comps))}
	used := make([]bool, len(mt.Slots))
	for _, rc := range rm.comps {
		slot := claimSlot(mt, used, rc.name)
		if slot < 0 {
			return Molecule{}, defErr(ErrUnknownComponent, subject,
				"component %q not declared on %q (or listed too many times)", rc.name, rm.name)
		}
		comp := Component{Name: rc.name, Bond: NoBond}
		if rc.hasState {
			if rc.state != StateAny {
				if !mt.Slots[slot].AllowsState(rc.state) {
					return Molecule{}, defErr(ErrUnknownState, subject,
						"state %q not allowed on %s.%s", rc.state, rm.name, rc.name)
				}
			}
			comp.State = rc.state
		}
		switch {
		case rc.hasBond && rc.bond == "+":
			comp.Wild = WildBondAny
		case rc.hasBond && rc.bond == "?":
			comp.Wild = WildBondOpt
		}
		mol.Components = append(mol.Components, comp)
	}
	return mol, nil
}

// claimSlot finds the first unused type slot with the given name and marks
// it used. Returns -1 when none remains, which covers both undeclared names
// and over-listed symmetric sites.
func claimSlot(mt *MoleculeType, used []bool, name string) int {
	for i := range mt.Slots {
		if !used[i] && mt.Slots[i].Name == name {
			used[i] = true
			return i
		}
	}
	return -1
}

// resolveBonds pairs numeric bond labels across the parsed molecules and
// installs mutual BondRefs. Each label must appear exactly twice.
func resolveBonds(sp *Species, raw []rawMol, subject string) error {
	open := make(map[string]BondRef)
	closed := make(map[string]bool)

	for mi, rm := range raw {
		// Pattern molecules keep only the listed components, so the raw
		// component index equals the built component index on both paths:
		// concrete expansion appends to pre-sized slots matched by claim
		// order. Recompute the concrete index by claiming again.
		mt, _ := sp.lookupTypeFor(mi)
		used := make([]bool, lenSlots(mt))
		for ci, rc := range rm.comps {
			idx := ci
			if !sp.pattern {
				idx = claimSlot(mt, used, rc.name)
			}
			if !rc.hasBond || rc.bond == "+" || rc.bond == "?" {
				continue
			}
			ref := BondRef{Mol: mi, Comp: idx}
			if closed[rc.bond] {
				return defErr(ErrBondLabelReused, subject, "label !%s", rc.bond)
			}
			if other, seen := open[rc.bond]; seen {
				if err := sp.SetBond(other, ref); err != nil {
					return defErr(ErrBondLabelReused, subject, "label !%s: %v", rc.bond, err)
				}
				delete(open, rc.bond)
				closed[rc.bond] = true
			} else {
				open[rc.bond] = ref
			}
		}
	}

	if len(open) > 0 {
		var labels []string
		for l := range open {
			labels = append(labels, "!"+l)
		}
		return defErr(ErrDanglingBond, subject, "unpaired %s", strings.Join(labels, ", "))
	}
	return nil
}

func (s *Species) lookupTypeFor(mi int) (*MoleculeType, bool) {
	// The molecule was validated during build; reconstruct a slot view from
	// its own components. For concrete molecules the components ARE the
	// slots (full expansion), which is all claimSlot needs.
	mol := &s.Molecules[mi]
	mt := &MoleculeType{Name: mol.Type, Slots: make([]ComponentSlot, len(mol.Components))}
	for i := range mol.Components {
		mt.Slots[i] = ComponentSlot{Name: mol.Components[i].Name}
	}
	return mt, true
}

func lenSlots(mt *MoleculeType) int {
	if mt == nil {
		return 0
	}
	return len(mt.Slots)
}
