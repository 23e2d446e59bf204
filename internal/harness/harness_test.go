package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadScenario parses a scenario file and resolves the model path.
func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/binding.yaml")
	require.NoError(t, err)

	assert.Equal(t, "binding", s.Name)
	assert.Equal(t, "golden-binding", s.RunToken)
	assert.Equal(t, filepath.Join("testdata", "models", "binding.cue"), filepath.Clean(s.Model))
	require.Len(t, s.Assertions, 6)
	assert.Equal(t, AssertSpeciesCount, s.Assertions[0].Type)
}

// TestLoadScenario_UnknownField rejects typos via strict decoding.
func TestLoadScenario_UnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	src := `
name: bad
description: "typo in assertions key"
model: ` + mustAbs(t, "testdata/models/binding.cue") + `
assertion:
  - type: converged
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing scenario YAML")
}

// TestLoadScenario_MissingModel fails validation before running anything.
func TestLoadScenario_MissingModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	src := `
name: bad
description: "model file does not exist"
model: nope.cue
assertions:
  - type: converged
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model file not found")
}

// TestLoadScenario_BadAssertion rejects unknown assertion types.
func TestLoadScenario_BadAssertion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	src := `
name: bad
description: "unknown assertion type"
model: ` + mustAbs(t, "testdata/models/binding.cue") + `
assertions:
  - type: species_exists
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown assertion type")
}

// TestRun_Binding passes every assertion of the binding scenario.
func TestRun_Binding(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/binding.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)

	assert.True(t, result.Pass, "assertion failures: %v", result.Errors)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "golden-binding", result.Network.RunToken)
	require.Len(t, result.Observables, 1)
}

// TestRun_Truncated checks the truncation assertions on a polymerizing
// model.
func TestRun_Truncated(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/polymer.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "assertion failures: %v", result.Errors)
	assert.True(t, result.Network.Truncated)
}

// TestRun_FailingAssertions reports each failed assertion without
// aborting the rest.
func TestRun_FailingAssertions(t *testing.T) {
	s := &Scenario{
		Name:        "binding-wrong",
		Description: "deliberately wrong expectations",
		Model:       "testdata/models/binding.cue",
		Assertions: []Assertion{
			{Type: AssertSpeciesCount, Count: 99},
			{Type: AssertHasSpecies, Species: "C(x)"},
			{Type: AssertConverged},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0].Error(), "expected 99 species")
	assert.Contains(t, result.Errors[1].Error(), `species "C(x)" not in network`)
}

// TestRun_DefaultToken applies the default run token when the scenario
// does not pin one.
func TestRun_DefaultToken(t *testing.T) {
	s := &Scenario{
		Name:        "binding-default-token",
		Description: "default token",
		Model:       "testdata/models/binding.cue",
		Assertions:  []Assertion{{Type: AssertConverged}},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.Equal(t, DefaultRunToken, result.Network.RunToken)
}

func mustAbs(t *testing.T, path string) string {
	t.Helper()
	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	return abs
}
