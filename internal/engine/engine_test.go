package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bionetgo/rxnet/internal/ir"
)

func bindingModel() ir.Model {
	return ir.Model{
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
			{Name: "bind", Reactants: []string{"A(b)", "B(a)"}, Products: []string{"A(b!1).B(a!1)"}, Rate: 1.0},
		},
	}
}

func generate(t *testing.T, m ir.Model, opts ...Option) *Network {
	t.Helper()
	opts = append([]Option{WithTokenGenerator(NewFixedGenerator("run-1"))}, opts...)
	g, err := New(m, opts...)
	require.NoError(t, err)
	net, err := g.Generate(context.Background())
	require.NoError(t, err)
	return net
}

// TestGenerate_Binding closes a simple two-species binding model: three
// species, one reaction, converged.
func TestGenerate_Binding(t *testing.T) {
	net := generate(t, bindingModel())

	require.Len(t, net.Species, 3)
	require.Len(t, net.Reactions, 1)
	assert.True(t, net.Converged)
	assert.False(t, net.Truncated)
	assert.Equal(t, "run-1", net.RunToken)

	rx := net.Reactions[0]
	assert.Equal(t, "bind", rx.RuleName)
	assert.ElementsMatch(t, []int{1, 2}, rx.Reactants)
	require.Len(t, rx.Products, 1)
	assert.Equal(t, 3, rx.Products[0])
	assert.Equal(t, 1.0, rx.Rate)
	assert.Equal(t, 1, rx.Multiplicity)

	// Seeds keep their declared quantities; the derived dimer has none.
	assert.Equal(t, 100.0, net.Species[0].Quantity)
	assert.Equal(t, 50.0, net.Species[1].Quantity)
	assert.Equal(t, 0.0, net.Species[2].Quantity)
	assert.True(t, net.Species[0].Seed)
	assert.False(t, net.Species[2].Seed)
}

// TestGenerate_Bidirectional splits a reversible rule into forward and
// reverse reactions.
func TestGenerate_Bidirectional(t *testing.T) {
	m := bindingModel()
	m.Rules = []ir.RuleDef{{
		Name:          "bind",
		Reactants:     []string{"A(b)", "B(a)"},
		Products:      []string{"A(b!1).B(a!1)"},
		Rate:          1.0,
		ReverseRate:   0.1,
		Bidirectional: true,
	}}

	net := generate(t, m)

	require.Len(t, net.Species, 3)
	require.Len(t, net.Reactions, 2)
	assert.Equal(t, "bind", net.Reactions[0].RuleName)
	assert.Equal(t, "bind_r", net.Reactions[1].RuleName)
	assert.Equal(t, 0.1, net.Reactions[1].Rate)
	assert.ElementsMatch(t, []int{1, 2}, net.Reactions[1].Products)
}

// TestGenerate_ReverseRateDefault inherits the forward rate when the
// config opts in and rejects the model otherwise.
func TestGenerate_ReverseRateDefault(t *testing.T) {
	m := bindingModel()
	m.Rules = []ir.RuleDef{{
		Name:          "bind",
		Reactants:     []string{"A(b)", "B(a)"},
		Products:      []string{"A(b!1).B(a!1)"},
		Rate:          2.5,
		Bidirectional: true,
	}}

	_, err := New(m)
	require.Error(t, err, "missing reverse rate should be rejected by default")

	m.Config.ReverseRateDefaultsForward = true
	net := generate(t, m)
	require.Len(t, net.Reactions, 2)
	assert.Equal(t, 2.5, net.Reactions[1].Rate)
}

// TestGenerate_StateCascade chains state changes to a fixed point.
func TestGenerate_StateCascade(t *testing.T) {
	m := ir.Model{
		Name: "cascade",
		Types: []ir.MoleculeTypeDef{
			{Name: "X", Components: []ir.ComponentDef{{Name: "p", States: []string{"U", "P", "PP"}}}},
		},
		Seeds: []ir.SeedDef{{Species: "X(p~U)", Quantity: 10}},
		Rules: []ir.RuleDef{
			{Name: "p1", Reactants: []string{"X(p~U)"}, Products: []string{"X(p~P)"}, Rate: 1},
			{Name: "p2", Reactants: []string{"X(p~P)"}, Products: []string{"X(p~PP)"}, Rate: 1},
		},
	}

	net := generate(t, m)

	require.Len(t, net.Species, 3)
	require.Len(t, net.Reactions, 2)
	assert.True(t, net.Converged)
}

// TestGenerate_Degradation records a reaction with no products.
func TestGenerate_Degradation(t *testing.T) {
	m := bindingModel()
	m.Rules = []ir.RuleDef{
		{Name: "deg", Reactants: []string{"A(b)"}, Products: []string{"0"}, Rate: 0.01},
	}

	net := generate(t, m)

	require.Len(t, net.Reactions, 1)
	assert.Empty(t, net.Reactions[0].Products)
	assert.Equal(t, []int{1}, net.Reactions[0].Reactants)
}

// TestGenerate_Synthesis fires a zero-order rule once and derives from its
// product.
func TestGenerate_Synthesis(t *testing.T) {
	m := bindingModel()
	m.Seeds = []ir.SeedDef{{Species: "B(a)", Quantity: 50}}
	m.Rules = append([]ir.RuleDef{
		{Name: "make-a", Reactants: []string{"0"}, Products: []string{"A(b)"}, Rate: 5},
	}, m.Rules...)

	net := generate(t, m)

	// B, A, A.B dimer.
	require.Len(t, net.Species, 3)
	require.Len(t, net.Reactions, 2)
	assert.Empty(t, net.Reactions[0].Reactants)
	assert.Equal(t, "make-a", net.Reactions[0].RuleName)
}

// TestGenerate_Multiplicity collapses symmetric embeddings into one
// reaction with a statistical factor.
func TestGenerate_Multiplicity(t *testing.T) {
	m := ir.Model{
		Name: "symmetric",
		Types: []ir.MoleculeTypeDef{
			{Name: "D", Components: []ir.ComponentDef{
				{Name: "s", States: []string{"u", "p"}},
				{Name: "s", States: []string{"u", "p"}},
			}},
		},
		Seeds: []ir.SeedDef{{Species: "D(s~u,s~u)", Quantity: 1}},
		Rules: []ir.RuleDef{
			{Name: "mark", Reactants: []string{"D(s~u)"}, Products: []string{"D(s~p)"}, Rate: 1},
		},
	}

	net := generate(t, m)

	// u,u -> u,p -> p,p: three species, two distinct reactions. The first
	// fires through two symmetric embeddings.
	require.Len(t, net.Species, 3)
	require.Len(t, net.Reactions, 2)
	assert.Equal(t, 2, net.Reactions[0].Multiplicity)
	assert.Equal(t, 1, net.Reactions[1].Multiplicity)
}

// TestGenerate_MaxSpecies truncates an unbounded polymer instead of
// diverging.
func TestGenerate_MaxSpecies(t *testing.T) {
	m := polymerModel()
	m.Config.MaxSpecies = 5

	net := generate(t, m)

	assert.True(t, net.Truncated)
	assert.Equal(t, TruncSpecies, net.TruncationReason)
	assert.LessOrEqual(t, len(net.Species), 5)
	assert.False(t, net.Converged)
}

// TestGenerate_MaxAgg caps complex size without truncating the run.
func TestGenerate_MaxAgg(t *testing.T) {
	m := polymerModel()
	m.Config.MaxAgg = 3
	m.Config.MaxSpecies = 100

	net := generate(t, m)

	assert.False(t, net.Truncated)
	assert.True(t, net.Converged)
	assert.Greater(t, net.DroppedOversize, 0)
	for _, sp := range net.Species {
		assert.LessOrEqual(t, sp.Graph.Size(), 3)
	}
}

// TestGenerate_MaxIterations stops mid-expansion with the frontier still
// live.
func TestGenerate_MaxIterations(t *testing.T) {
	m := polymerModel()
	m.Config.MaxIterations = 2
	m.Config.MaxSpecies = 1000

	net := generate(t, m)

	assert.True(t, net.Truncated)
	assert.Equal(t, TruncIterations, net.TruncationReason)
	assert.Equal(t, 2, net.Iterations)
}

func polymerModel() ir.Model {
	return ir.Model{
		Name: "polymer",
		Types: []ir.MoleculeTypeDef{
			{Name: "M", Components: []ir.ComponentDef{{Name: "l"}, {Name: "r"}}},
		},
		Seeds: []ir.SeedDef{{Species: "M(l,r)", Quantity: 1000}},
		Rules: []ir.RuleDef{
			{Name: "grow", Reactants: []string{"M(r)", "M(l)"}, Products: []string{"M(r!1).M(l!1)"}, Rate: 1},
		},
	}
}

// TestGenerate_CompartmentScaling divides bimolecular rates by the
// reaction volume.
func TestGenerate_CompartmentScaling(t *testing.T) {
	m := bindingModel()
	m.Compartments = []ir.CompartmentDef{{Name: "cyt", Dim: 3, Size: 2.0}}
	m.Seeds = []ir.SeedDef{
		{Species: "A(b)", Quantity: 100, Compartment: "cyt"},
		{Species: "B(a)", Quantity: 50, Compartment: "cyt"},
	}

	net := generate(t, m)

	require.Len(t, net.Reactions, 1)
	assert.InDelta(t, 0.5, net.Reactions[0].Rate, 1e-12)
}

// TestGenerate_DuplicateSeedsMerge folds canonically equal seeds into one
// entry with summed quantity.
func TestGenerate_DuplicateSeedsMerge(t *testing.T) {
	m := bindingModel()
	m.Seeds = append(m.Seeds, ir.SeedDef{Species: "A(b)", Quantity: 25})

	net := generate(t, m)

	require.Len(t, net.Species, 3)
	assert.Equal(t, 125.0, net.Species[0].Quantity)
}

// TestGenerate_Deterministic produces identical fingerprints across runs.
func TestGenerate_Deterministic(t *testing.T) {
	m := polymerModel()
	m.Config.MaxAgg = 4
	m.Config.MaxSpecies = 100

	a := generate(t, m)
	b := generate(t, m)

	fa, err := a.Fingerprint()
	require.NoError(t, err)
	fb, err := b.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
}

// TestGenerate_Progress reports one snapshot per iteration.
func TestGenerate_Progress(t *testing.T) {
	var snaps []Progress
	net := generate(t, bindingModel(), WithProgress(func(p Progress) {
		snaps = append(snaps, p)
	}))

	require.NotEmpty(t, snaps)
	assert.Equal(t, net.Iterations, snaps[len(snaps)-1].Iteration)
	assert.Equal(t, len(net.Species), snaps[len(snaps)-1].Species)
}

// TestGenerate_ContextCancelled returns the partial network with the
// context error.
func TestGenerate_ContextCancelled(t *testing.T) {
	g, err := New(bindingModel(), WithTokenGenerator(NewFixedGenerator("run-1")))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	net, err := g.Generate(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, net)
}

// TestNew_UnknownSeedCompartment rejects seeds referencing undeclared
// compartments.
func TestNew_UnknownSeedCompartment(t *testing.T) {
	m := bindingModel()
	m.Seeds[0].Compartment = "nucleus"

	_, err := New(m)
	require.Error(t, err)
}

// TestResolveLimits_Defaults applies defaults for unset bounds and
// disables explicitly negative ones.
func TestResolveLimits_Defaults(t *testing.T) {
	l := ResolveLimits(ir.GenConfig{})
	assert.Equal(t, DefaultMaxSpecies, l.MaxSpecies)
	assert.Equal(t, DefaultMaxReactions, l.MaxReactions)
	assert.Equal(t, DefaultMaxIterations, l.MaxIterations)

	l = ResolveLimits(ir.GenConfig{MaxSpecies: -1, MaxIterations: 7})
	assert.Equal(t, 0, l.MaxSpecies)
	assert.True(t, l.AdmitsSpeciesCount(1 << 30))
	assert.Equal(t, 7, l.MaxIterations)
}
