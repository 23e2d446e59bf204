package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bionetgo/rxnet/internal/engine"
)

const bindingModel = `
model: {
	name: "binding"
	types: [
		{name: "A", components: [{name: "b"}]},
		{name: "B", components: [{name: "a"}]},
	]
	seeds: [
		{species: "A(b)", quantity: 100},
		{species: "B(a)", quantity: 50},
	]
	rules: [
		{
			name: "bind"
			reactants: ["A(b)", "B(a)"]
			products: ["A(b!1).B(a!1)"]
			rate: 1.0
		},
	]
	config: {maxSpecies: 100}
}
`

const invalidModel = `
model: {
	name: "  "
	types: [
		{name: "A"},
		{name: "A"},
	]
	rules: [
		{name: "r", reactants: ["A"], products: ["A"], rate: -1},
	]
}
`

func writeModelFixture(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.cue")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	return cmd, &out
}

// TestRootCommand_InvalidFormat rejects unknown output formats before any
// subcommand runs.
func TestRootCommand_InvalidFormat(t *testing.T) {
	root := NewRootCommand()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"--format", "xml", "compile", "nope.cue"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

// TestCompile_Text compiles a model and prints the summary.
func TestCompile_Text(t *testing.T) {
	path := writeModelFixture(t, bindingModel)
	cmd, out := newTestCommand()
	opts := &CompileOptions{RootOptions: &RootOptions{Format: "text"}}

	require.NoError(t, runCompile(opts, path, cmd))
	assert.Contains(t, out.String(), `Compiled model "binding"`)
	assert.Contains(t, out.String(), "hash:")
}

// TestCompile_Output writes the compiled IR to a file.
func TestCompile_Output(t *testing.T) {
	path := writeModelFixture(t, bindingModel)
	outPath := filepath.Join(t.TempDir(), "model.json")

	cmd, _ := newTestCommand()
	opts := &CompileOptions{RootOptions: &RootOptions{Format: "text"}, Output: outPath}
	require.NoError(t, runCompile(opts, path, cmd))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var result CompilationResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, "binding", result.Model.Name)
	assert.NotEmpty(t, result.ModelHash)
}

// TestCompile_MissingFile exits with a command error.
func TestCompile_MissingFile(t *testing.T) {
	cmd, out := newTestCommand()
	opts := &CompileOptions{RootOptions: &RootOptions{Format: "text"}}

	err := runCompile(opts, filepath.Join(t.TempDir(), "nope.cue"), cmd)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out.String(), ErrCodeNotFound)
}

// TestValidate_CollectsAllErrors reports every structural violation with
// its code and exits with a failure code.
func TestValidate_CollectsAllErrors(t *testing.T) {
	path := writeModelFixture(t, invalidModel)
	cmd, out := newTestCommand()
	opts := &ValidateOptions{RootOptions: &RootOptions{Format: "text"}}

	err := runValidate(opts, path, cmd)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out.String(), "E101") // empty name
	assert.Contains(t, out.String(), "E103") // duplicate type
	assert.Contains(t, out.String(), "E105") // negative rate
}

// TestValidate_ValidModel succeeds and mentions growth warnings when no
// bound is configured.
func TestValidate_ValidModel(t *testing.T) {
	src := `
model: {
	name: "poly"
	types: [{name: "M", components: [{name: "l"}, {name: "r"}]}]
	seeds: [{species: "M(l,r)", quantity: 10}]
	rules: [
		{name: "grow", reactants: ["M(r)", "M(l)"], products: ["M(r!1).M(l!1)"], rate: 1.0},
	]
}
`
	path := writeModelFixture(t, src)
	cmd, out := newTestCommand()
	opts := &ValidateOptions{RootOptions: &RootOptions{Format: "text"}}

	require.NoError(t, runValidate(opts, path, cmd))
	assert.Contains(t, out.String(), `Model "poly" is valid`)
	assert.Contains(t, out.String(), "Warnings:")
}

// TestGenerate_Summary runs end to end and prints the run summary.
func TestGenerate_Summary(t *testing.T) {
	path := writeModelFixture(t, bindingModel)
	cmd, out := newTestCommand()
	opts := &GenerateOptions{
		RootOptions:    &RootOptions{Format: "text"},
		TokenGenerator: engine.NewFixedGenerator("run-cli-1"),
	}

	require.NoError(t, runGenerate(opts, path, cmd))
	assert.Contains(t, out.String(), "3 species, 1 reactions")
	assert.Contains(t, out.String(), "run-cli-1")
	assert.Contains(t, out.String(), "fingerprint:")
}

// TestGenerate_WritesOutputs persists the run and writes both export
// formats.
func TestGenerate_WritesOutputs(t *testing.T) {
	path := writeModelFixture(t, bindingModel)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "runs.db")
	netPath := filepath.Join(dir, "out.net")
	jsonPath := filepath.Join(dir, "out.json")

	cmd, _ := newTestCommand()
	opts := &GenerateOptions{
		RootOptions:    &RootOptions{Format: "text"},
		Database:       dbPath,
		NetOut:         netPath,
		JSONOut:        jsonPath,
		TokenGenerator: engine.NewFixedGenerator("run-cli-2"),
	}
	require.NoError(t, runGenerate(opts, path, cmd))

	netData, err := os.ReadFile(netPath)
	require.NoError(t, err)
	assert.Contains(t, string(netData), "begin species")
	assert.Contains(t, string(netData), "A(b!1).B(a!1)")

	jsonData, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"runToken":"run-cli-2"`)

	// Stored run is visible to show.
	showCmd, showOut := newTestCommand()
	showOpts := &ShowOptions{RootOptions: &RootOptions{Format: "text"}, Database: dbPath}
	require.NoError(t, runShow(showOpts, "run-cli-2", showCmd))
	assert.Contains(t, showOut.String(), "Run run-cli-2")
	assert.Contains(t, showOut.String(), "bind")
}

// TestGenerate_ConfigOverride tightens limits via a YAML file.
func TestGenerate_ConfigOverride(t *testing.T) {
	src := `
model: {
	name: "poly"
	types: [{name: "M", components: [{name: "l"}, {name: "r"}]}]
	seeds: [{species: "M(l,r)", quantity: 10}]
	rules: [
		{name: "grow", reactants: ["M(r)", "M(l)"], products: ["M(r!1).M(l!1)"], rate: 1.0},
	]
}
`
	path := writeModelFixture(t, src)
	cfgPath := filepath.Join(t.TempDir(), "limits.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("maxSpecies: 4\n"), 0644))

	cmd, out := newTestCommand()
	opts := &GenerateOptions{
		RootOptions:    &RootOptions{Format: "text"},
		ConfigFile:     cfgPath,
		TokenGenerator: engine.NewFixedGenerator("run-cli-3"),
	}
	require.NoError(t, runGenerate(opts, path, cmd))
	assert.Contains(t, out.String(), "truncated (max_species)")
}

// TestGenerate_JSONFormat emits the summary as a JSON response.
func TestGenerate_JSONFormat(t *testing.T) {
	path := writeModelFixture(t, bindingModel)
	cmd, out := newTestCommand()
	opts := &GenerateOptions{
		RootOptions:    &RootOptions{Format: "json"},
		TokenGenerator: engine.NewFixedGenerator("run-cli-4"),
	}
	require.NoError(t, runGenerate(opts, path, cmd))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

// TestShow_ListEmpty reports an empty store.
func TestShow_ListEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	// Seed an empty database.
	genPath := writeModelFixture(t, bindingModel)
	genCmd, _ := newTestCommand()
	genOpts := &GenerateOptions{
		RootOptions:    &RootOptions{Format: "text"},
		Database:       dbPath,
		TokenGenerator: engine.NewFixedGenerator("run-cli-5"),
	}
	require.NoError(t, runGenerate(genOpts, genPath, genCmd))

	cmd, out := newTestCommand()
	opts := &ShowOptions{RootOptions: &RootOptions{Format: "text"}, Database: dbPath}
	require.NoError(t, runShow(opts, "", cmd))
	assert.Contains(t, out.String(), "run-cli-5")
	assert.Contains(t, out.String(), "binding")
}

// TestShow_RunNotFound exits with a failure code.
func TestShow_RunNotFound(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	genPath := writeModelFixture(t, bindingModel)
	genCmd, _ := newTestCommand()
	genOpts := &GenerateOptions{
		RootOptions:    &RootOptions{Format: "text"},
		Database:       dbPath,
		TokenGenerator: engine.NewFixedGenerator("run-cli-6"),
	}
	require.NoError(t, runGenerate(genOpts, genPath, genCmd))

	cmd, out := newTestCommand()
	opts := &ShowOptions{RootOptions: &RootOptions{Format: "text"}, Database: dbPath}
	err := runShow(opts, "missing-token", cmd)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out.String(), ErrCodeRunMissing)
}

// TestExport_Stdout re-renders a stored run as a network listing.
func TestExport_Stdout(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	genPath := writeModelFixture(t, bindingModel)
	genCmd, _ := newTestCommand()
	genOpts := &GenerateOptions{
		RootOptions:    &RootOptions{Format: "text"},
		Database:       dbPath,
		TokenGenerator: engine.NewFixedGenerator("run-cli-7"),
	}
	require.NoError(t, runGenerate(genOpts, genPath, genCmd))

	cmd, out := newTestCommand()
	opts := &ExportOptions{RootOptions: &RootOptions{Format: "text"}, Database: dbPath}
	require.NoError(t, runExport(opts, "run-cli-7", cmd))
	assert.Contains(t, out.String(), "# run run-cli-7")
	assert.Contains(t, out.String(), "begin species")
	assert.Contains(t, out.String(), "A(b!1).B(a!1)")
}

// TestExport_MatchesGenerateOutput: exporting a stored run reproduces the
// listing generate wrote.
func TestExport_MatchesGenerateOutput(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "runs.db")
	netPath := filepath.Join(dir, "out.net")

	genPath := writeModelFixture(t, bindingModel)
	genCmd, _ := newTestCommand()
	genOpts := &GenerateOptions{
		RootOptions:    &RootOptions{Format: "text"},
		Database:       dbPath,
		NetOut:         netPath,
		TokenGenerator: engine.NewFixedGenerator("run-cli-8"),
	}
	require.NoError(t, runGenerate(genOpts, genPath, genCmd))

	generated, err := os.ReadFile(netPath)
	require.NoError(t, err)

	cmd, out := newTestCommand()
	opts := &ExportOptions{RootOptions: &RootOptions{Format: "text"}, Database: dbPath}
	require.NoError(t, runExport(opts, "run-cli-8", cmd))
	assert.Equal(t, string(generated), out.String())
}

// TestExport_RunNotFound exits with a failure code.
func TestExport_RunNotFound(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	genPath := writeModelFixture(t, bindingModel)
	genCmd, _ := newTestCommand()
	genOpts := &GenerateOptions{
		RootOptions:    &RootOptions{Format: "text"},
		Database:       dbPath,
		TokenGenerator: engine.NewFixedGenerator("run-cli-9"),
	}
	require.NoError(t, runGenerate(genOpts, genPath, genCmd))

	cmd, out := newTestCommand()
	opts := &ExportOptions{RootOptions: &RootOptions{Format: "text"}, Database: dbPath}
	err := runExport(opts, "missing-token", cmd)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out.String(), ErrCodeRunMissing)
}

// TestShow_MissingDatabase exits with a command error.
func TestShow_MissingDatabase(t *testing.T) {
	cmd, _ := newTestCommand()
	opts := &ShowOptions{
		RootOptions: &RootOptions{Format: "text"},
		Database:    filepath.Join(t.TempDir(), "nope.db"),
	}
	err := runShow(opts, "", cmd)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
