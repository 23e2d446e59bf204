package compiler

import (
	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/bionetgo/rxnet/internal/ir"
)

// CompileSource compiles CUE source text into a model. The source must
// define a top-level "model" struct:
//
//	model: {
//		name: "binding"
//		types: [{name: "A", components: [{name: "b"}]}]
//		seeds: [{species: "A(b)", quantity: 100}]
//		rules: [{name: "bind", reactants: [...], products: [...], rate: 1.0}]
//	}
//
// filename is used for error positions only.
func CompileSource(src, filename string) (*ir.Model, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	root := v.LookupPath(cue.ParsePath("model"))
	if !root.Exists() {
		return nil, &CompileError{
			Field:   "model",
			Message: "top-level model struct is required",
			Pos:     v.Pos(),
		}
	}
	return CompileModel(root)
}

// ParseSource compiles CUE source text into a model without running
// structural validation, so callers can collect every validation error
// themselves via Validate.
func ParseSource(src, filename string) (*ir.Model, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	root := v.LookupPath(cue.ParsePath("model"))
	if !root.Exists() {
		return nil, &CompileError{
			Field:   "model",
			Message: "top-level model struct is required",
			Pos:     v.Pos(),
		}
	}
	return parseModel(root)
}

// CompileModel parses a CUE value (the model struct itself) into the IR
// and validates it, returning the first structural error found.
// Uses the CUE SDK's Go API directly, not a CLI subprocess.
func CompileModel(v cue.Value) (*ir.Model, error) {
	m, err := parseModel(v)
	if err != nil {
		return nil, err
	}
	if errs := Validate(m); len(errs) > 0 {
		return nil, errs[0]
	}
	return m, nil
}

func parseModel(v cue.Value) (*ir.Model, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	m := &ir.Model{}

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return nil, &CompileError{
			Field:   "name",
			Message: "name is required",
			Pos:     v.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	m.Name = name

	if m.Types, err = parseTypes(v); err != nil {
		return nil, err
	}
	if m.Seeds, err = parseSeeds(v); err != nil {
		return nil, err
	}
	if m.Rules, err = parseRules(v); err != nil {
		return nil, err
	}
	if m.Compartments, err = parseCompartments(v); err != nil {
		return nil, err
	}
	if m.Observables, err = parseObservables(v); err != nil {
		return nil, err
	}
	if m.Config, err = parseConfig(v); err != nil {
		return nil, err
	}

	return m, nil
}

func parseTypes(v cue.Value) ([]ir.MoleculeTypeDef, error) {
	listVal := v.LookupPath(cue.ParsePath("types"))
	if !listVal.Exists() {
		return nil, &CompileError{
			Field:   "types",
			Message: "at least one molecule type is required",
			Pos:     v.Pos(),
		}
	}
	iter, err := listVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var types []ir.MoleculeTypeDef
	for iter.Next() {
		tv := iter.Value()
		def := ir.MoleculeTypeDef{}
		if def.Name, err = requiredString(tv, "name"); err != nil {
			return nil, err
		}
		compsVal := tv.LookupPath(cue.ParsePath("components"))
		if compsVal.Exists() {
			compIter, err := compsVal.List()
			if err != nil {
				return nil, formatCUEError(err)
			}
			for compIter.Next() {
				cv := compIter.Value()
				comp := ir.ComponentDef{}
				if comp.Name, err = requiredString(cv, "name"); err != nil {
					return nil, err
				}
				if comp.States, err = optionalStrings(cv, "states"); err != nil {
					return nil, err
				}
				def.Components = append(def.Components, comp)
			}
		}
		types = append(types, def)
	}
	return types, nil
}

func parseSeeds(v cue.Value) ([]ir.SeedDef, error) {
	listVal := v.LookupPath(cue.ParsePath("seeds"))
	if !listVal.Exists() {
		return nil, nil
	}
	iter, err := listVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var seeds []ir.SeedDef
	for iter.Next() {
		sv := iter.Value()
		def := ir.SeedDef{}
		if def.Species, err = requiredString(sv, "species"); err != nil {
			return nil, err
		}
		if def.Quantity, err = optionalFloat(sv, "quantity"); err != nil {
			return nil, err
		}
		if def.Constant, err = optionalBool(sv, "constant"); err != nil {
			return nil, err
		}
		if def.Compartment, err = optionalString(sv, "compartment"); err != nil {
			return nil, err
		}
		seeds = append(seeds, def)
	}
	return seeds, nil
}

func parseRules(v cue.Value) ([]ir.RuleDef, error) {
	listVal := v.LookupPath(cue.ParsePath("rules"))
	if !listVal.Exists() {
		return nil, nil
	}
	iter, err := listVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var rules []ir.RuleDef
	for iter.Next() {
		rv := iter.Value()
		def := ir.RuleDef{}
		if def.Name, err = requiredString(rv, "name"); err != nil {
			return nil, err
		}
		if def.Reactants, err = requiredStrings(rv, "reactants"); err != nil {
			return nil, err
		}
		if def.Products, err = requiredStrings(rv, "products"); err != nil {
			return nil, err
		}
		if def.Rate, err = optionalFloat(rv, "rate"); err != nil {
			return nil, err
		}
		if def.RateExpr, err = optionalString(rv, "rateExpr"); err != nil {
			return nil, err
		}
		if def.ReverseRate, err = optionalFloat(rv, "reverseRate"); err != nil {
			return nil, err
		}
		if def.ReverseExpr, err = optionalString(rv, "reverseExpr"); err != nil {
			return nil, err
		}
		if def.Bidirectional, err = optionalBool(rv, "bidirectional"); err != nil {
			return nil, err
		}
		rules = append(rules, def)
	}
	return rules, nil
}

func parseCompartments(v cue.Value) ([]ir.CompartmentDef, error) {
	listVal := v.LookupPath(cue.ParsePath("compartments"))
	if !listVal.Exists() {
		return nil, nil
	}
	iter, err := listVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var comps []ir.CompartmentDef
	for iter.Next() {
		cv := iter.Value()
		def := ir.CompartmentDef{}
		if def.Name, err = requiredString(cv, "name"); err != nil {
			return nil, err
		}
		if def.Dim, err = optionalInt(cv, "dim"); err != nil {
			return nil, err
		}
		if def.Size, err = optionalFloat(cv, "size"); err != nil {
			return nil, err
		}
		if def.Parent, err = optionalString(cv, "parent"); err != nil {
			return nil, err
		}
		comps = append(comps, def)
	}
	return comps, nil
}

func parseObservables(v cue.Value) ([]ir.ObservableDef, error) {
	listVal := v.LookupPath(cue.ParsePath("observables"))
	if !listVal.Exists() {
		return nil, nil
	}
	iter, err := listVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var observables []ir.ObservableDef
	for iter.Next() {
		ov := iter.Value()
		def := ir.ObservableDef{}
		if def.Name, err = requiredString(ov, "name"); err != nil {
			return nil, err
		}
		kind, err := requiredString(ov, "kind")
		if err != nil {
			return nil, err
		}
		def.Kind = ir.ObservableKind(kind)
		if def.Patterns, err = requiredStrings(ov, "patterns"); err != nil {
			return nil, err
		}
		observables = append(observables, def)
	}
	return observables, nil
}

func parseConfig(v cue.Value) (ir.GenConfig, error) {
	cfg := ir.GenConfig{}
	cfgVal := v.LookupPath(cue.ParsePath("config"))
	if !cfgVal.Exists() {
		return cfg, nil
	}
	var err error
	if cfg.MaxSpecies, err = optionalInt(cfgVal, "maxSpecies"); err != nil {
		return cfg, err
	}
	if cfg.MaxReactions, err = optionalInt(cfgVal, "maxReactions"); err != nil {
		return cfg, err
	}
	if cfg.MaxIterations, err = optionalInt(cfgVal, "maxIterations"); err != nil {
		return cfg, err
	}
	if cfg.MaxAgg, err = optionalInt(cfgVal, "maxAgg"); err != nil {
		return cfg, err
	}
	if cfg.MaxStoichDefault, err = optionalInt(cfgVal, "maxStoich"); err != nil {
		return cfg, err
	}
	if cfg.ReverseRateDefaultsForward, err = optionalBool(cfgVal, "reverseRateDefaultsForward"); err != nil {
		return cfg, err
	}

	perType := cfgVal.LookupPath(cue.ParsePath("maxStoichPerType"))
	if perType.Exists() {
		cfg.MaxStoich = make(map[string]int)
		iter, err := perType.Fields()
		if err != nil {
			return cfg, formatCUEError(err)
		}
		for iter.Next() {
			n, err := iter.Value().Int64()
			if err != nil {
				return cfg, formatCUEError(err)
			}
			cfg.MaxStoich[iter.Selector().Unquoted()] = int(n)
		}
	}
	return cfg, nil
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func requiredStrings(v cue.Value, field string) ([]string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	return stringList(fv)
}

func optionalStrings(v cue.Value, field string) ([]string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, nil
	}
	return stringList(fv)
}

func stringList(v cue.Value) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

func optionalFloat(v cue.Value, field string) (float64, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return 0, nil
	}
	f, err := fv.Float64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return f, nil
}

func optionalInt(v cue.Value, field string) (int, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return 0, nil
	}
	n, err := fv.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return int(n), nil
}

func optionalBool(v cue.Value, field string) (bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return false, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}
