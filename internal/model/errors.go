package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for model definition and graph operations.
var (
	// ErrUnknownMoleculeType indicates a molecule name with no declaration.
	ErrUnknownMoleculeType = errors.New("model: unknown molecule type")

	// ErrUnknownComponent indicates a component name absent from the
	// molecule type's declared slots (or listed more times than declared).
	ErrUnknownComponent = errors.New("model: unknown component")

	// ErrUnknownState indicates a state outside the component's allowed set.
	ErrUnknownState = errors.New("model: unknown state")

	// ErrDanglingBond indicates a bond label with only one endpoint.
	ErrDanglingBond = errors.New("model: dangling bond label")

	// ErrBondLabelReused indicates a bond label with more than two endpoints.
	ErrBondLabelReused = errors.New("model: bond label used more than twice")

	// ErrWildcardInSpecies indicates a match-only wildcard in a concrete
	// species description.
	ErrWildcardInSpecies = errors.New("model: wildcard marker in concrete species")

	// ErrAlreadyBonded indicates a bond write to a component that already
	// has a bond.
	ErrAlreadyBonded = errors.New("model: component already bonded")

	// ErrNotBonded indicates a bond clear on a free component.
	ErrNotBonded = errors.New("model: component not bonded")

	// ErrSyntax indicates malformed species/pattern text.
	ErrSyntax = errors.New("model: syntax error")
)

// DefinitionError reports a model definition problem with the offending
// identity attached. Detected at parse/validation time, before generation
// starts; always fatal for the model load.
type DefinitionError struct {
	Subject string // offending species/pattern/rule text
	Detail  string // human-readable description
	Err     error  // sentinel category (ErrUnknownComponent, ...)
}

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s in %q: %s", e.Err, e.Subject, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Err, e.Detail)
}

// Unwrap exposes the sentinel category for errors.Is matching.
func (e *DefinitionError) Unwrap() error {
	return e.Err
}

// IsDefinitionError returns true if the error is a model definition error.
// Uses errors.As to handle wrapped errors.
func IsDefinitionError(err error) bool {
	var de *DefinitionError
	return errors.As(err, &de)
}

func defErr(sentinel error, subject, format string, args ...any) error {
	return &DefinitionError{
		Subject: subject,
		Detail:  fmt.Sprintf(format, args...),
		Err:     sentinel,
	}
}
