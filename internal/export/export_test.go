package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bionetgo/rxnet/internal/engine"
	"github.com/bionetgo/rxnet/internal/ir"
	"github.com/bionetgo/rxnet/internal/observe"
	"github.com/bionetgo/rxnet/internal/store"
)

func sampleNetwork() *engine.Network {
	return &engine.Network{
		RunToken:   "run-1",
		ModelName:  "binding",
		ModelHash:  "abc123",
		Iterations: 2,
		Converged:  true,
		Species: []engine.SpeciesEntry{
			{Index: 1, Certificate: "A(b)", Quantity: 100, Seed: true},
			{Index: 2, Certificate: "B(a~u)", Quantity: 50, Constant: true, Compartment: "cyt", Seed: true},
			{Index: 3, Certificate: "A(b!1).B(a~u!1)"},
		},
		Reactions: []engine.Reaction{
			{Index: 1, RuleName: "bind", Reactants: []int{1, 2}, Products: []int{3}, Rate: 0.5, Multiplicity: 2},
			{Index: 2, RuleName: "deg", Reactants: []int{3}, Products: nil, Rate: 1, Multiplicity: 1},
		},
	}
}

func sampleResults() []observe.Result {
	return []observe.Result{
		{
			Name: "A_total",
			Kind: ir.ObservableMolecules,
			Weights: []observe.Weight{
				{SpeciesIndex: 1, Factor: 1},
				{SpeciesIndex: 3, Factor: 2},
			},
		},
	}
}

// TestWriteNet renders the block-listing text form.
func TestWriteNet(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, WriteNet(&sb, sampleNetwork(), sampleResults()))

	want := `# model binding
# run run-1
begin species
    1 A(b) 100
    2 @cyt:B(a~u) $50
    3 A(b!1).B(a~u!1) 0
end species
begin reactions
    1 1,2 3 1 # bind (x2)
    2 3 0 1 # deg
end reactions
begin groups
    1 A_total 1,2*3
end groups
`
	assert.Equal(t, want, sb.String())
}

// TestWriteNet_Truncated notes the truncation reason in the header.
func TestWriteNet_Truncated(t *testing.T) {
	net := sampleNetwork()
	net.Converged = false
	net.Truncated = true
	net.TruncationReason = engine.TruncSpecies

	var sb strings.Builder
	require.NoError(t, WriteNet(&sb, net, nil))

	assert.Contains(t, sb.String(), "# truncated: max_species\n")
	assert.NotContains(t, sb.String(), "begin groups")
}

// TestBuildDocument fills every row and keeps empty product lists non-nil.
func TestBuildDocument(t *testing.T) {
	doc, err := BuildDocument(sampleNetwork(), sampleResults())
	require.NoError(t, err)

	assert.Equal(t, "run-1", doc.RunToken)
	assert.Equal(t, ir.EngineVersion, doc.EngineVersion)
	assert.NotEmpty(t, doc.Fingerprint)

	require.Len(t, doc.Species, 3)
	assert.Equal(t, "B(a~u)", doc.Species[1].Name)
	assert.True(t, doc.Species[1].Constant)

	require.Len(t, doc.Reactions, 2)
	assert.NotNil(t, doc.Reactions[1].Products)
	assert.Empty(t, doc.Reactions[1].Products)

	require.Len(t, doc.Groups, 1)
	assert.Equal(t, 2, doc.Groups[0].Weights[1].Factor)
}

// TestFromRecord rebuilds a renderable network from its stored rows.
func TestFromRecord(t *testing.T) {
	rec := &store.RunRecord{
		RunSummary: store.RunSummary{
			Token:            "run-1",
			ModelName:        "binding",
			ModelHash:        "abc123",
			Iterations:       2,
			Truncated:        true,
			TruncationReason: "max_species",
		},
		Species: []store.SpeciesRow{
			{Index: 1, Seq: 1, Certificate: "A(b)", Quantity: 100, Seed: true},
			{Index: 2, Seq: 2, Certificate: "B(a~u)", Quantity: 50, Constant: true, Compartment: "cyt", Seed: true},
		},
		Reactions: []store.ReactionRow{
			{Index: 1, Seq: 3, Rule: "bind", Reactants: []int{1, 2}, Products: []int{2}, Rate: 0.5, Multiplicity: 2},
		},
	}

	net := FromRecord(rec)
	assert.Equal(t, "run-1", net.RunToken)
	assert.Equal(t, engine.TruncSpecies, net.TruncationReason)
	require.Len(t, net.Species, 2)
	assert.Equal(t, "B(a~u)", net.Species[1].Certificate)
	require.Len(t, net.Reactions, 1)
	assert.Equal(t, []int{1, 2}, net.Reactions[0].Reactants)

	var sb strings.Builder
	require.NoError(t, WriteNet(&sb, net, nil))
	assert.Contains(t, sb.String(), "# truncated: max_species\n")
	assert.Contains(t, sb.String(), "    2 @cyt:B(a~u) $50\n")
}

// TestWriteJSON_Deterministic produces byte-identical output for equal
// networks.
func TestWriteJSON_Deterministic(t *testing.T) {
	var a, b strings.Builder
	require.NoError(t, WriteJSON(&a, sampleNetwork(), sampleResults()))
	require.NoError(t, WriteJSON(&b, sampleNetwork(), sampleResults()))

	assert.Equal(t, a.String(), b.String())
	assert.True(t, strings.HasSuffix(a.String(), "\n"))
	assert.Contains(t, a.String(), `"model":"binding"`)
}
