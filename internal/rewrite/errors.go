package rewrite

import (
	"errors"
	"fmt"
)

// BondConflictError reports a rule attempting to bond a component that
// already has a bond. It indicates an ill-formed rule relative to the
// matched pattern: fatal for that specific embedding only. The generation
// engine logs it, skips the candidate, and keeps going.
type BondConflictError struct {
	Rule   string // rule name
	Detail string // which endpoint conflicted
}

// Error implements the error interface.
func (e *BondConflictError) Error() string {
	return fmt.Sprintf("rule %s: %s", e.Rule, e.Detail)
}

// IsBondConflict returns true if the error is a bond conflict.
// Uses errors.As to handle wrapped errors.
func IsBondConflict(err error) bool {
	var be *BondConflictError
	return errors.As(err, &be)
}

// RuleError reports a structurally invalid rule definition: product
// components with no reactant counterpart, synthesis of under-specified
// molecules, and similar. Detected at build time, fatal for the model.
type RuleError struct {
	Rule   string
	Detail string
}

// Error implements the error interface.
func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s: %s", e.Rule, e.Detail)
}
