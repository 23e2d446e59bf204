// Package harness provides conformance testing for rule-based models.
//
// The harness loads a model, expands it into a reaction network, and
// checks declarative assertions about the result. Scenarios live in YAML
// files:
//
//	name: binding
//	description: "A and B dimerize"
//	model: models/binding.cue
//	run_token: golden-binding
//	assertions:
//	  - type: species_count
//	    count: 3
//	  - type: converged
//	  - type: has_species
//	    species: A(b!1).B(a!1)
//	  - type: has_reaction
//	    rule: bind
//
// # Assertion Types
//
//   - species_count: the network holds exactly N species
//   - reaction_count: the network holds exactly N reactions
//   - converged: generation reached a fixed point
//   - truncated: generation stopped at a limit (optionally a specific reason)
//   - has_species: a species with this canonical name was admitted
//   - has_reaction: a reaction from this rule exists (optionally exactly N)
//   - observable: an observable weights a species with a given factor
//
// # Deterministic Testing
//
// Scenarios run with a fixed run token (scenario.run_token, defaulting to
// "test-run-default"), so the rendered network listing is byte-stable and
// suitable for golden snapshot comparison via RunWithGolden.
package harness
