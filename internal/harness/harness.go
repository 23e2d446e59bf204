package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bionetgo/rxnet/internal/compiler"
	"github.com/bionetgo/rxnet/internal/engine"
	"github.com/bionetgo/rxnet/internal/observe"
)

// Result holds the outcome of running a scenario.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool

	// Errors lists the assertion failures, one per failed assertion.
	Errors []error

	// Network is the generated network, available to callers for further
	// inspection or golden comparison.
	Network *engine.Network

	// Observables holds the evaluated observable results.
	Observables []observe.Result
}

// Run compiles the scenario's model, expands it, and checks every
// assertion. Execution errors (bad model, generation failure) are
// returned as an error; assertion failures land in Result.Errors with
// Pass false.
func Run(scenario *Scenario) (*Result, error) {
	src, err := os.ReadFile(scenario.Model)
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	m, err := compiler.CompileSource(string(src), filepath.Base(scenario.Model))
	if err != nil {
		return nil, fmt.Errorf("compiling model: %w", err)
	}

	token := scenario.RunToken
	if token == "" {
		token = DefaultRunToken
	}
	gen, err := engine.New(*m, engine.WithTokenGenerator(engine.NewFixedGenerator(token)))
	if err != nil {
		return nil, fmt.Errorf("building generator: %w", err)
	}

	observables, err := observe.Compile(gen.Types(), m.Observables)
	if err != nil {
		return nil, fmt.Errorf("compiling observables: %w", err)
	}

	net, err := gen.Generate(context.Background())
	if err != nil {
		return nil, fmt.Errorf("generating network: %w", err)
	}

	result := &Result{
		Pass:        true,
		Network:     net,
		Observables: observe.Evaluate(observables, net),
	}
	for i, a := range scenario.Assertions {
		if err := checkAssertion(&a, result); err != nil {
			result.Pass = false
			result.Errors = append(result.Errors, fmt.Errorf("assertions[%d] (%s): %w", i, a.Type, err))
		}
	}
	return result, nil
}
