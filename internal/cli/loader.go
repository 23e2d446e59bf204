package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/token"

	"github.com/bionetgo/rxnet/internal/compiler"
	"github.com/bionetgo/rxnet/internal/ir"
)

// File-level error codes, distinct from the compiler's E1xx validation
// codes.
const (
	ErrCodeGeneric     = "E001" // generic/unknown error
	ErrCodeNotFound    = "E002" // model file not found
	ErrCodeNotCUE      = "E003" // not a .cue file
	ErrCodeCompile     = "E004" // CUE compilation failed
	ErrCodeWriteFailed = "E005" // file write error
	ErrCodeRunMissing  = "E006" // stored run not found
)

// LoadError is a file-level model loading failure with optional CUE
// position info.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadModel reads and compiles one CUE model file. Structural validation
// runs inside the compiler; the first failure is reported with position
// info when CUE provides it.
func LoadModel(path string) (*ir.Model, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("model file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing model file: %v", err)}
	}
	if info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotCUE, Message: fmt.Sprintf("%s is a directory; pass one .cue model file", path)}
	}
	if filepath.Ext(path) != ".cue" {
		return nil, &LoadError{Code: ErrCodeNotCUE, Message: fmt.Sprintf("%s is not a .cue file", path)}
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading model file: %v", err)}
	}

	m, err := compiler.CompileSource(string(src), filepath.Base(path))
	if err != nil {
		return nil, convertCompileError(err)
	}
	return m, nil
}

// convertCompileError maps compiler errors onto CLI load errors, keeping
// validation codes intact.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeCompile,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	var valErr compiler.ValidationError
	if errors.As(err, &valErr) {
		return &LoadError{
			Code:    valErr.Code,
			Message: fmt.Sprintf("%s: %s", valErr.Field, valErr.Message),
		}
	}
	return &LoadError{Code: ErrCodeCompile, Message: err.Error()}
}
