package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bionetgo/rxnet/internal/engine"
	"github.com/bionetgo/rxnet/internal/observe"
)

// WriteNet renders the network as a plain-text block listing:
//
//	# model binding
//	begin species
//	    1 A(b) 100
//	end species
//	begin reactions
//	    1 1,2 3 1 # bind
//	end reactions
//
// Species lines carry the canonical name and initial quantity ("$" prefix
// marks constant species). Reaction lines carry reactant indices, product
// indices ("0" when none), the effective rate (multiplicity folded in),
// and the originating rule as a comment. Observable results, when given,
// append a groups block of factor*index terms.
func WriteNet(w io.Writer, net *engine.Network, results []observe.Result) error {
	header := fmt.Sprintf("# model %s\n# run %s\n", net.ModelName, net.RunToken)
	if net.Truncated {
		header += fmt.Sprintf("# truncated: %s\n", net.TruncationReason)
	}
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("begin species\n")
	for _, sp := range net.Species {
		b.WriteString("    ")
		b.WriteString(strconv.Itoa(sp.Index))
		b.WriteString(" ")
		if sp.Compartment != "" {
			b.WriteString("@" + sp.Compartment + ":")
		}
		b.WriteString(sp.Certificate)
		b.WriteString(" ")
		if sp.Constant {
			b.WriteString("$")
		}
		b.WriteString(formatFloat(sp.Quantity))
		b.WriteString("\n")
	}
	b.WriteString("end species\n")

	b.WriteString("begin reactions\n")
	for _, rx := range net.Reactions {
		b.WriteString("    ")
		b.WriteString(strconv.Itoa(rx.Index))
		b.WriteString(" ")
		b.WriteString(indexList(rx.Reactants))
		b.WriteString(" ")
		b.WriteString(indexList(rx.Products))
		b.WriteString(" ")
		b.WriteString(formatFloat(rx.Rate * float64(rx.Multiplicity)))
		b.WriteString(" # ")
		b.WriteString(rx.RuleName)
		if rx.Multiplicity > 1 {
			b.WriteString(fmt.Sprintf(" (x%d)", rx.Multiplicity))
		}
		b.WriteString("\n")
	}
	b.WriteString("end reactions\n")

	if len(results) > 0 {
		b.WriteString("begin groups\n")
		for i, res := range results {
			b.WriteString("    ")
			b.WriteString(strconv.Itoa(i + 1))
			b.WriteString(" ")
			b.WriteString(res.Name)
			b.WriteString(" ")
			terms := make([]string, len(res.Weights))
			for j, wt := range res.Weights {
				if wt.Factor == 1 {
					terms[j] = strconv.Itoa(wt.SpeciesIndex)
				} else {
					terms[j] = strconv.Itoa(wt.Factor) + "*" + strconv.Itoa(wt.SpeciesIndex)
				}
			}
			b.WriteString(strings.Join(terms, ","))
			b.WriteString("\n")
		}
		b.WriteString("end groups\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// indexList renders species indices as a comma list, "0" when empty.
func indexList(indices []int) string {
	if len(indices) == 0 {
		return "0"
	}
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ",")
}

// formatFloat renders quantities and rates without trailing zero noise,
// matching canonical JSON's integral-float collapsing.
func formatFloat(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
