package harness

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/bionetgo/rxnet/internal/export"
)

// RunWithGolden executes a scenario and compares the rendered network
// listing against a golden file in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// The listing is deterministic: the run token is pinned by the scenario
// and species/reactions appear in admission order, so golden files serve
// as the source of truth for expected network shape.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.WriteNet(&buf, result.Network, result.Observables); err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, buf.Bytes())

	return result, nil
}
