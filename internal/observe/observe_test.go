package observe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bionetgo/rxnet/internal/engine"
	"github.com/bionetgo/rxnet/internal/ir"
	"github.com/bionetgo/rxnet/internal/model"
)

func dimerNetwork(t *testing.T) (*model.TypeTable, *engine.Network) {
	t.Helper()
	m := ir.Model{
		Name: "binding",
		Types: []ir.MoleculeTypeDef{
			{Name: "A", Components: []ir.ComponentDef{{Name: "b"}}},
			{Name: "B", Components: []ir.ComponentDef{{Name: "a"}}},
		},
		Seeds: []ir.SeedDef{
			{Species: "A(b)", Quantity: 100},
			{Species: "B(a)", Quantity: 50},
		},
		Rules: []ir.RuleDef{
			{Name: "bind", Reactants: []string{"A(b)", "B(a)"}, Products: []string{"A(b!1).B(a!1)"}, Rate: 1},
		},
	}
	g, err := engine.New(m, engine.WithTokenGenerator(engine.NewFixedGenerator("run-1")))
	require.NoError(t, err)
	net, err := g.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, net.Species, 3)
	return g.Types(), net
}

// TestCompile_Validation rejects bad definitions.
func TestCompile_Validation(t *testing.T) {
	tt, _ := dimerNetwork(t)

	cases := []struct {
		name string
		defs []ir.ObservableDef
	}{
		{"empty name", []ir.ObservableDef{{Kind: ir.ObservableMolecules, Patterns: []string{"A"}}}},
		{"duplicate name", []ir.ObservableDef{
			{Name: "x", Kind: ir.ObservableMolecules, Patterns: []string{"A"}},
			{Name: "x", Kind: ir.ObservableSpecies, Patterns: []string{"B"}},
		}},
		{"unknown kind", []ir.ObservableDef{{Name: "x", Kind: "weighted", Patterns: []string{"A"}}}},
		{"no patterns", []ir.ObservableDef{{Name: "x", Kind: ir.ObservableMolecules}}},
		{"bad pattern", []ir.ObservableDef{{Name: "x", Kind: ir.ObservableMolecules, Patterns: []string{"Z(q)"}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compile(tt, tc.defs)
			require.Error(t, err)
		})
	}
}

// TestEvaluate_Molecules counts pattern embeddings per species.
func TestEvaluate_Molecules(t *testing.T) {
	tt, net := dimerNetwork(t)

	obs, err := Compile(tt, []ir.ObservableDef{
		{Name: "A_total", Kind: ir.ObservableMolecules, Patterns: []string{"A"}},
	})
	require.NoError(t, err)

	results := Evaluate(obs, net)
	require.Len(t, results, 1)

	// Free A and the dimer each contain one A molecule; B does not.
	require.Len(t, results[0].Weights, 2)
	assert.Equal(t, Weight{SpeciesIndex: 1, Factor: 1}, results[0].Weights[0])
	assert.Equal(t, Weight{SpeciesIndex: 3, Factor: 1}, results[0].Weights[1])
}

// TestEvaluate_Species counts matching species once each.
func TestEvaluate_Species(t *testing.T) {
	tt, net := dimerNetwork(t)

	obs, err := Compile(tt, []ir.ObservableDef{
		{Name: "bound", Kind: ir.ObservableSpecies, Patterns: []string{"A(b!+)"}},
	})
	require.NoError(t, err)

	results := Evaluate(obs, net)
	require.Len(t, results, 1)
	require.Len(t, results[0].Weights, 1)
	assert.Equal(t, Weight{SpeciesIndex: 3, Factor: 1}, results[0].Weights[0])
}

// TestEvaluate_SymmetricDegeneracy collapses automorphic embeddings but
// counts distinct sites.
func TestEvaluate_SymmetricDegeneracy(t *testing.T) {
	tt, err := model.NewTypeTable([]ir.MoleculeTypeDef{
		{Name: "D", Components: []ir.ComponentDef{
			{Name: "s", States: []string{"u", "p"}},
			{Name: "s", States: []string{"u", "p"}},
		}},
	})
	require.NoError(t, err)

	sp, err := model.ParseSpecies(tt, "D(s~p,s~p)")
	require.NoError(t, err)
	net := &engine.Network{Species: []engine.SpeciesEntry{
		{Index: 1, Certificate: sp.String(), Graph: sp},
	}}

	obs, err := Compile(tt, []ir.ObservableDef{
		{Name: "p_sites", Kind: ir.ObservableMolecules, Patterns: []string{"D(s~p)"}},
		{Name: "p_species", Kind: ir.ObservableSpecies, Patterns: []string{"D(s~p)"}},
	})
	require.NoError(t, err)

	results := Evaluate(obs, net)
	require.Len(t, results, 2)
	// Two phosphorylated sites: the Molecules observable sees both, the
	// Species observable sees one species.
	assert.Equal(t, 2, results[0].Weights[0].Factor)
	assert.Equal(t, 1, results[1].Weights[0].Factor)
}
