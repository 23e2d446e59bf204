package harness

import (
	"fmt"
)

// checkAssertion evaluates one assertion against a run result.
func checkAssertion(a *Assertion, r *Result) error {
	net := r.Network
	switch a.Type {
	case AssertSpeciesCount:
		if len(net.Species) != a.Count {
			return fmt.Errorf("expected %d species, got %d", a.Count, len(net.Species))
		}

	case AssertReactionCount:
		if len(net.Reactions) != a.Count {
			return fmt.Errorf("expected %d reactions, got %d", a.Count, len(net.Reactions))
		}

	case AssertConverged:
		if !net.Converged {
			return fmt.Errorf("network did not converge (truncated: %s)", net.TruncationReason)
		}

	case AssertTruncated:
		if !net.Truncated {
			return fmt.Errorf("network converged; expected truncation")
		}
		if a.Reason != "" && string(net.TruncationReason) != a.Reason {
			return fmt.Errorf("expected truncation reason %q, got %q", a.Reason, net.TruncationReason)
		}

	case AssertHasSpecies:
		for i := range net.Species {
			if net.Species[i].Certificate == a.Species {
				return nil
			}
		}
		return fmt.Errorf("species %q not in network", a.Species)

	case AssertHasReaction:
		found := 0
		for i := range net.Reactions {
			if net.Reactions[i].RuleName == a.Rule {
				found++
				if a.Count > 0 && net.Reactions[i].Multiplicity != a.Count {
					return fmt.Errorf("reaction from rule %q has multiplicity %d, expected %d",
						a.Rule, net.Reactions[i].Multiplicity, a.Count)
				}
			}
		}
		if found == 0 {
			return fmt.Errorf("no reaction from rule %q in network", a.Rule)
		}

	case AssertObservable:
		return checkObservable(a, r)

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// checkObservable verifies that the named observable weights the named
// species with the expected factor.
func checkObservable(a *Assertion, r *Result) error {
	speciesIndex := 0
	for i := range r.Network.Species {
		if r.Network.Species[i].Certificate == a.Species {
			speciesIndex = r.Network.Species[i].Index
			break
		}
	}
	if speciesIndex == 0 {
		return fmt.Errorf("species %q not in network", a.Species)
	}

	for _, res := range r.Observables {
		if res.Name != a.Name {
			continue
		}
		for _, wt := range res.Weights {
			if wt.SpeciesIndex == speciesIndex {
				if a.Factor > 0 && wt.Factor != a.Factor {
					return fmt.Errorf("observable %q weights %q with factor %d, expected %d",
						a.Name, a.Species, wt.Factor, a.Factor)
				}
				return nil
			}
		}
		return fmt.Errorf("observable %q does not weight species %q", a.Name, a.Species)
	}
	return fmt.Errorf("observable %q not defined by the model", a.Name)
}
