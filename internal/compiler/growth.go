package compiler

import (
	"fmt"
	"strings"

	"github.com/bionetgo/rxnet/internal/ir"
)

// GrowthWarning flags a rule set likely to expand without bound.
type GrowthWarning struct {
	Rule    string
	Message string
}

func (w GrowthWarning) String() string {
	return fmt.Sprintf("rule %s: %s", w.Rule, w.Message)
}

// AnalyzeGrowth statically inspects the rule set for unbounded-expansion
// hazards before any generation runs: rules that join two complexes or
// synthesize molecules keep producing larger or additional species, and
// if no aggregate or species bound is configured the generation loop will
// only stop at the built-in defaults.
//
// The analysis is a coarse syntactic check (it counts pattern complexes
// and molecule tokens; it does not prove divergence); warnings are
// advisory and never block compilation.
func AnalyzeGrowth(m *ir.Model) []GrowthWarning {
	bounded := m.Config.MaxAgg > 0 || m.Config.MaxSpecies > 0 || m.Config.MaxStoichDefault > 0
	if bounded {
		return nil
	}

	var warnings []GrowthWarning
	for _, r := range m.Rules {
		if joinsComplexes(r) {
			warnings = append(warnings, GrowthWarning{
				Rule:    r.Name,
				Message: "joins two complexes with no maxAgg/maxSpecies bound configured; polymerizing rule sets diverge",
			})
		}
		if synthesizes(r) {
			warnings = append(warnings, GrowthWarning{
				Rule:    r.Name,
				Message: "synthesizes molecules with no maxSpecies bound configured",
			})
		}
	}
	return warnings
}

// joinsComplexes reports whether the rule's product side has fewer
// complexes than its reactant side while keeping all molecules: the shape
// of a binding rule.
func joinsComplexes(r ir.RuleDef) bool {
	reactants := realPatterns(r.Reactants)
	products := realPatterns(r.Products)
	if len(reactants) < 2 || len(products) >= len(reactants) {
		return false
	}
	return moleculeTokens(products) >= moleculeTokens(reactants)
}

// synthesizes reports whether the product side carries more molecule
// tokens than the reactant side.
func synthesizes(r ir.RuleDef) bool {
	return moleculeTokens(realPatterns(r.Products)) > moleculeTokens(realPatterns(r.Reactants))
}

func realPatterns(side []string) []string {
	out := side[:0:0]
	for _, p := range side {
		if p != "0" {
			out = append(out, p)
		}
	}
	return out
}

// moleculeTokens counts molecules across flat pattern texts: one per
// dot-separated segment.
func moleculeTokens(patterns []string) int {
	n := 0
	for _, p := range patterns {
		n += strings.Count(p, ".") + 1
	}
	return n
}
