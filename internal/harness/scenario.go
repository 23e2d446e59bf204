package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: one model file plus
// assertions about the network its rules generate.
type Scenario struct {
	// Name uniquely identifies this scenario; it is also the golden file
	// name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Model is the path to the CUE model file, relative to the scenario
	// file location unless absolute.
	Model string `yaml:"model"`

	// RunToken is an optional fixed run token. If empty, defaults to
	// "test-run-default" for deterministic golden file comparison.
	RunToken string `yaml:"run_token,omitempty"`

	// Assertions validate the generated network.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one property of the generated network.
type Assertion struct {
	// Type selects the check: species_count, reaction_count, converged,
	// truncated, has_species, has_reaction, observable.
	Type string `yaml:"type"`

	// Count is the expected number (species_count, reaction_count) or,
	// when positive, the expected reaction multiplicity (has_reaction).
	Count int `yaml:"count,omitempty"`

	// Species is a canonical species name (has_species, observable).
	Species string `yaml:"species,omitempty"`

	// Rule is a rule name (has_reaction).
	Rule string `yaml:"rule,omitempty"`

	// Reason is the expected truncation reason (truncated); empty accepts
	// any reason.
	Reason string `yaml:"reason,omitempty"`

	// Name is an observable name (observable).
	Name string `yaml:"name,omitempty"`

	// Factor is the expected observable weight (observable).
	Factor int `yaml:"factor,omitempty"`
}

// Assertion type constants.
const (
	AssertSpeciesCount  = "species_count"
	AssertReactionCount = "reaction_count"
	AssertConverged     = "converged"
	AssertTruncated     = "truncated"
	AssertHasSpecies    = "has_species"
	AssertHasReaction   = "has_reaction"
	AssertObservable    = "observable"
)

// DefaultRunToken is used when a scenario does not pin its own token.
const DefaultRunToken = "test-run-default"

// LoadScenario reads and parses a scenario YAML file. The model path is
// resolved relative to the scenario file's directory. Unknown YAML fields
// are rejected, which catches typos like "assertion:" vs "assertions:".
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}

	if scenario.Model != "" && !filepath.IsAbs(scenario.Model) {
		scenario.Model = filepath.Join(filepath.Dir(path), scenario.Model)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Model == "" {
		return fmt.Errorf("model is required")
	}
	if _, err := os.Stat(s.Model); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", s.Model)
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertSpeciesCount, AssertReactionCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertConverged, AssertTruncated:
		// No required fields.
	case AssertHasSpecies:
		if a.Species == "" {
			return fmt.Errorf("assertions[%d]: species is required for has_species", index)
		}
	case AssertHasReaction:
		if a.Rule == "" {
			return fmt.Errorf("assertions[%d]: rule is required for has_reaction", index)
		}
	case AssertObservable:
		if a.Name == "" || a.Species == "" {
			return fmt.Errorf("assertions[%d]: name and species are required for observable", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
