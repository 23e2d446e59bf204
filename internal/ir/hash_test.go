package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleModel() Model {
	return Model{
		Name: "binding",
		Types: []MoleculeTypeDef{
			{Name: "A", Components: []ComponentDef{{Name: "b"}}},
			{Name: "B", Components: []ComponentDef{{Name: "a", States: []string{"u", "p"}}}},
		},
		Seeds: []SeedDef{
			{Species: "A(b)", Quantity: 100},
		},
		Rules: []RuleDef{
			{Name: "bind", Reactants: []string{"A(b)", "B(a)"}, Products: []string{"A(b!1).B(a!1)"}, Rate: 1.0},
		},
	}
}

// TestModelHash_Stable: same model, same hash.
func TestModelHash_Stable(t *testing.T) {
	a, err := ModelHash(sampleModel())
	require.NoError(t, err)
	b, err := ModelHash(sampleModel())
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64) // hex SHA-256
}

// TestModelHash_Sensitive: any semantic change moves the hash.
func TestModelHash_Sensitive(t *testing.T) {
	base, err := ModelHash(sampleModel())
	require.NoError(t, err)

	renamed := sampleModel()
	renamed.Name = "binding2"
	h, err := ModelHash(renamed)
	require.NoError(t, err)
	assert.NotEqual(t, base, h)

	rerated := sampleModel()
	rerated.Rules[0].Rate = 2.0
	h, err = ModelHash(rerated)
	require.NoError(t, err)
	assert.NotEqual(t, base, h)
}

// TestModelHash_ConfigIgnored: generation limits are run parameters, not
// model identity.
func TestModelHash_ConfigIgnored(t *testing.T) {
	base, err := ModelHash(sampleModel())
	require.NoError(t, err)

	limited := sampleModel()
	limited.Config.MaxSpecies = 5
	h, err := ModelHash(limited)
	require.NoError(t, err)
	assert.Equal(t, base, h)
}

// TestReactionKey_Distinguishes: rule name and either side participate in
// the identity.
func TestReactionKey_Distinguishes(t *testing.T) {
	base, err := ReactionKey("bind", []string{"A(b)", "B(a)"}, []string{"A(b!1).B(a!1)"})
	require.NoError(t, err)

	same, err := ReactionKey("bind", []string{"A(b)", "B(a)"}, []string{"A(b!1).B(a!1)"})
	require.NoError(t, err)
	assert.Equal(t, base, same)

	otherRule, err := ReactionKey("bind2", []string{"A(b)", "B(a)"}, []string{"A(b!1).B(a!1)"})
	require.NoError(t, err)
	assert.NotEqual(t, base, otherRule)

	otherProducts, err := ReactionKey("bind", []string{"A(b)", "B(a)"}, nil)
	require.NoError(t, err)
	assert.NotEqual(t, base, otherProducts)
}

// TestNetworkFingerprint_OrderSensitive: admission order is part of the
// identity; domain separation keeps it distinct from reaction keys.
func TestNetworkFingerprint_OrderSensitive(t *testing.T) {
	a, err := NetworkFingerprint([]string{"A(b)", "B(a)"}, []string{"k1"})
	require.NoError(t, err)
	b, err := NetworkFingerprint([]string{"B(a)", "A(b)"}, []string{"k1"})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	again, err := NetworkFingerprint([]string{"A(b)", "B(a)"}, []string{"k1"})
	require.NoError(t, err)
	assert.Equal(t, a, again)
}

func TestMustModelHash(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = MustModelHash(sampleModel())
	})
}
