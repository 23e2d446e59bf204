package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bionetgo/rxnet/internal/ir"
)

func testTypes(t *testing.T) *TypeTable {
	t.Helper()
	tt, err := NewTypeTable([]ir.MoleculeTypeDef{
		{Name: "A", Components: []ir.ComponentDef{
			{Name: "b"},
			{Name: "s", States: []string{"u", "p"}},
		}},
		{Name: "B", Components: []ir.ComponentDef{
			{Name: "a"},
		}},
		{Name: "D", Components: []ir.ComponentDef{
			{Name: "x"},
			{Name: "x"},
		}},
	})
	require.NoError(t, err)
	return tt
}

// TestParseSpecies_RoundTrip parses and re-renders a bonded complex.
func TestParseSpecies_RoundTrip(t *testing.T) {
	tt := testTypes(t)

	sp, err := ParseSpecies(tt, "A(b!1,s~u).B(a!1)")
	require.NoError(t, err)

	assert.False(t, sp.IsPattern())
	assert.Equal(t, 2, sp.Size())
	assert.Equal(t, "A(b!1,s~u).B(a!1)", sp.String())
}

// TestParseSpecies_DefaultState fills unlisted stateful components with
// the first declared state.
func TestParseSpecies_DefaultState(t *testing.T) {
	tt := testTypes(t)

	sp, err := ParseSpecies(tt, "A(b)")
	require.NoError(t, err)
	assert.Equal(t, "A(b,s~u)", sp.String())
}

// TestParseSpecies_SymmetricSites claims duplicate component names in
// declaration order.
func TestParseSpecies_SymmetricSites(t *testing.T) {
	tt := testTypes(t)

	sp, err := ParseSpecies(tt, "D(x,x)")
	require.NoError(t, err)
	assert.Equal(t, "D(x,x)", sp.String())

	_, err = ParseSpecies(tt, "D(x,x,x)")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownComponent)
}

func TestParseSpecies_Errors(t *testing.T) {
	tt := testTypes(t)

	cases := []struct {
		name string
		text string
		want error
	}{
		{"unknown type", "Z(b)", ErrUnknownMoleculeType},
		{"unknown component", "A(z)", ErrUnknownComponent},
		{"unknown state", "A(s~x)", ErrUnknownState},
		{"state on stateless", "A(b~u)", ErrUnknownState},
		{"dangling bond", "A(b!1)", ErrDanglingBond},
		{"label thrice", "A(b!1).B(a!1).B(a!1)", ErrBondLabelReused},
		{"bond-any wildcard", "A(b!+)", ErrWildcardInSpecies},
		{"bond-opt wildcard", "A(b!?)", ErrWildcardInSpecies},
		{"state wildcard", "A(s~?)", ErrWildcardInSpecies},
		{"syntax", "A(b", ErrSyntax},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSpecies(tt, tc.text)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, IsDefinitionError(err))
		})
	}
}

// TestParsePattern_Wildcards keeps wildcard markers in pattern graphs.
func TestParsePattern_Wildcards(t *testing.T) {
	tt := testTypes(t)

	p, err := ParsePattern(tt, "A(b!+,s~?)")
	require.NoError(t, err)
	assert.True(t, p.IsPattern())
	assert.Equal(t, "A(b!+,s~?)", p.String())

	p, err = ParsePattern(tt, "A(b!?)")
	require.NoError(t, err)
	assert.Equal(t, "A(b!?)", p.String())
}

// TestParsePattern_OmittedComponents leaves unlisted components out of
// the pattern graph entirely.
func TestParsePattern_OmittedComponents(t *testing.T) {
	tt := testTypes(t)

	p, err := ParsePattern(tt, "A(b)")
	require.NoError(t, err)
	require.Len(t, p.Molecules, 1)
	assert.Len(t, p.Molecules[0].Components, 1)

	bare, err := ParsePattern(tt, "A")
	require.NoError(t, err)
	assert.Empty(t, bare.Molecules[0].Components)
}

func TestSetAndClearBond(t *testing.T) {
	tt := testTypes(t)

	sp, err := ParseSpecies(tt, "A(b)")
	require.NoError(t, err)
	other, err := ParseSpecies(tt, "B(a)")
	require.NoError(t, err)
	offset := sp.Merge(other)
	require.Equal(t, 1, offset)

	a := BondRef{Mol: 0, Comp: 0}
	b := BondRef{Mol: 1, Comp: 0}
	require.NoError(t, sp.SetBond(a, b))
	assert.True(t, sp.Molecules[0].Components[0].Bonded())

	err = sp.SetBond(a, b)
	assert.ErrorIs(t, err, ErrAlreadyBonded)

	require.NoError(t, sp.ClearBond(a))
	assert.False(t, sp.Molecules[1].Components[0].Bonded())

	err = sp.ClearBond(a)
	assert.ErrorIs(t, err, ErrNotBonded)
}

// TestSplit separates a merged arena into its connected complexes.
func TestSplit(t *testing.T) {
	tt := testTypes(t)

	bonded, err := ParseSpecies(tt, "A(b!1).B(a!1)")
	require.NoError(t, err)
	parts := bonded.Split()
	require.Len(t, parts, 1)
	assert.Equal(t, "A(b!1,s~u).B(a!1)", parts[0].String())

	free, err := ParseSpecies(tt, "A(b)")
	require.NoError(t, err)
	other, err := ParseSpecies(tt, "B(a)")
	require.NoError(t, err)
	free.Merge(other)

	parts = free.Split()
	require.Len(t, parts, 2)
	assert.Equal(t, "A(b,s~u)", parts[0].String())
	assert.Equal(t, "B(a)", parts[1].String())
}

// TestClone is a deep copy: bonds in the clone do not leak back.
func TestClone(t *testing.T) {
	tt := testTypes(t)

	sp, err := ParseSpecies(tt, "A(b)")
	require.NoError(t, err)
	cl := sp.Clone()
	cl.Molecules[0].Components[1].State = "p"

	assert.Equal(t, "u", sp.Molecules[0].Components[1].State)
	assert.Equal(t, "p", cl.Molecules[0].Components[1].State)
}

func TestTypeCounts(t *testing.T) {
	tt := testTypes(t)

	sp, err := ParseSpecies(tt, "A(b!1).B(a!1)")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 1, "B": 1}, sp.TypeCounts())
}

func TestTypeTable(t *testing.T) {
	tt := testTypes(t)

	mt, ok := tt.Lookup("A")
	require.True(t, ok)
	assert.Equal(t, "A", mt.Name)

	_, ok = tt.Lookup("Z")
	assert.False(t, ok)

	mol, err := tt.Instantiate("A")
	require.NoError(t, err)
	assert.Equal(t, "u", mol.Components[1].State)

	_, err = tt.Instantiate("Z")
	assert.ErrorIs(t, err, ErrUnknownMoleculeType)
}

// TestNewTypeTable_Duplicate rejects conflicting redeclarations.
func TestNewTypeTable_Duplicate(t *testing.T) {
	_, err := NewTypeTable([]ir.MoleculeTypeDef{
		{Name: "A"},
		{Name: "A", Components: []ir.ComponentDef{{Name: "b"}}},
	})
	require.Error(t, err)
}
