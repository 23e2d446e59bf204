package compiler

import (
	"fmt"
	"strings"

	"github.com/bionetgo/rxnet/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// Model errors (E101-E109)
	ErrModelNameEmpty   = "E101" // model name is required
	ErrModelNoTypes     = "E102" // at least one molecule type required
	ErrDuplicateType    = "E103" // duplicate molecule type name
	ErrDuplicateRule    = "E104" // duplicate rule name
	ErrNegativeRate     = "E105" // rate must not be negative
	ErrEmptyRuleSide    = "E106" // rule side must list at least one pattern
	ErrNegativeQuantity = "E107" // seed quantity must not be negative

	// Compartment errors (E110-E119)
	ErrBadCompartmentDim    = "E110" // dim must be 2 or 3
	ErrBadCompartmentSize   = "E111" // size must be positive
	ErrUnknownParent        = "E112" // parent compartment not declared
	ErrDuplicateCompartment = "E113" // duplicate compartment name
)

// ValidationError represents a model validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled model against structural rules.
// Returns all errors found (does not fail-fast). Semantic validation of
// pattern text against the type table happens later, at generator
// construction.
func Validate(m *ir.Model) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(m.Name) == "" {
		errs = append(errs, ValidationError{
			Field: "name", Message: "model name is required", Code: ErrModelNameEmpty,
		})
	}
	if len(m.Types) == 0 {
		errs = append(errs, ValidationError{
			Field: "types", Message: "at least one molecule type is required", Code: ErrModelNoTypes,
		})
	}

	typeNames := make(map[string]bool, len(m.Types))
	for _, t := range m.Types {
		if typeNames[t.Name] {
			errs = append(errs, ValidationError{
				Field: "types", Message: fmt.Sprintf("molecule type %q declared twice", t.Name), Code: ErrDuplicateType,
			})
		}
		typeNames[t.Name] = true
	}

	ruleNames := make(map[string]bool, len(m.Rules))
	for _, r := range m.Rules {
		field := "rules." + r.Name
		if ruleNames[r.Name] {
			errs = append(errs, ValidationError{
				Field: "rules", Message: fmt.Sprintf("rule %q declared twice", r.Name), Code: ErrDuplicateRule,
			})
		}
		ruleNames[r.Name] = true

		if len(r.Reactants) == 0 {
			errs = append(errs, ValidationError{
				Field: field, Message: "reactants must list at least one pattern (use \"0\" for none)", Code: ErrEmptyRuleSide,
			})
		}
		if len(r.Products) == 0 {
			errs = append(errs, ValidationError{
				Field: field, Message: "products must list at least one pattern (use \"0\" for none)", Code: ErrEmptyRuleSide,
			})
		}
		if r.Rate < 0 {
			errs = append(errs, ValidationError{
				Field: field, Message: fmt.Sprintf("rate %v is negative", r.Rate), Code: ErrNegativeRate,
			})
		}
		if r.ReverseRate < 0 {
			errs = append(errs, ValidationError{
				Field: field, Message: fmt.Sprintf("reverse rate %v is negative", r.ReverseRate), Code: ErrNegativeRate,
			})
		}
	}

	for _, s := range m.Seeds {
		if s.Quantity < 0 {
			errs = append(errs, ValidationError{
				Field: "seeds." + s.Species, Message: fmt.Sprintf("quantity %v is negative", s.Quantity), Code: ErrNegativeQuantity,
			})
		}
	}

	compNames := make(map[string]bool, len(m.Compartments))
	for _, c := range m.Compartments {
		field := "compartments." + c.Name
		if compNames[c.Name] {
			errs = append(errs, ValidationError{
				Field: "compartments", Message: fmt.Sprintf("compartment %q declared twice", c.Name), Code: ErrDuplicateCompartment,
			})
		}
		compNames[c.Name] = true

		if c.Dim != 2 && c.Dim != 3 {
			errs = append(errs, ValidationError{
				Field: field, Message: fmt.Sprintf("dim must be 2 or 3, got %d", c.Dim), Code: ErrBadCompartmentDim,
			})
		}
		if c.Size <= 0 {
			errs = append(errs, ValidationError{
				Field: field, Message: fmt.Sprintf("size must be positive, got %v", c.Size), Code: ErrBadCompartmentSize,
			})
		}
	}
	for _, c := range m.Compartments {
		if c.Parent != "" && !compNames[c.Parent] {
			errs = append(errs, ValidationError{
				Field: "compartments." + c.Name, Message: fmt.Sprintf("parent %q not declared", c.Parent), Code: ErrUnknownParent,
			})
		}
	}

	return errs
}
