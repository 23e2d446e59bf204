package engine

import (
	"fmt"

	"github.com/bionetgo/rxnet/internal/ir"
	"github.com/bionetgo/rxnet/internal/model"
	"github.com/bionetgo/rxnet/internal/rewrite"
)

// splitRules expands bidirectional rule definitions into forward/reverse
// pairs. The reverse direction gets the "_r" name suffix, swapped sides,
// and the declared reverse rate; when no reverse rate is declared the
// behavior depends on config: inherit the forward rate (reference-tool
// convention) or reject the model.
func splitRules(m ir.Model) ([]ir.RuleDef, error) {
	out := make([]ir.RuleDef, 0, len(m.Rules))
	for _, def := range m.Rules {
		if !def.Bidirectional {
			out = append(out, def)
			continue
		}

		fwd := def
		fwd.Bidirectional = false
		fwd.ReverseRate = 0
		fwd.ReverseExpr = ""
		out = append(out, fwd)

		rev := ir.RuleDef{
			Name:      def.Name + "_r",
			Reactants: def.Products,
			Products:  def.Reactants,
			Rate:      def.ReverseRate,
			RateExpr:  def.ReverseExpr,
		}
		if rev.Rate == 0 && rev.RateExpr == "" {
			if !m.Config.ReverseRateDefaultsForward {
				return nil, fmt.Errorf("rule %s: bidirectional but no reverse rate declared", def.Name)
			}
			rev.Rate = def.Rate
			rev.RateExpr = def.RateExpr
		}
		out = append(out, rev)
	}
	return out, nil
}

// buildRules compiles the split definitions into executable rules.
func buildRules(tt *model.TypeTable, defs []ir.RuleDef) ([]*rewrite.Rule, error) {
	rules := make([]*rewrite.Rule, 0, len(defs))
	for _, def := range defs {
		r, err := rewrite.BuildRule(tt, def)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}
