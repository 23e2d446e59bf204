package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bionetgo/rxnet/internal/compiler"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// ValidationReport is the JSON payload of a validate run.
type ValidationReport struct {
	Model    string                     `json:"model"`
	Valid    bool                       `json:"valid"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []string                   `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <model.cue>",
		Short: "Validate a CUE model without generating",
		Long: `Validate a CUE model file and report every structural error found.

Unlike compile, validation does not stop at the first error: all
violations are collected and reported together, each with a stable
error code.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return outputLoadError(formatter, &LoadError{
				Code: ErrCodeNotFound, Message: fmt.Sprintf("model file not found: %s", path),
			})
		}
		return outputLoadError(formatter, &LoadError{
			Code: ErrCodeNotFound, Message: fmt.Sprintf("reading model file: %v", err),
		})
	}

	m, err := compiler.ParseSource(string(src), filepath.Base(path))
	if err != nil {
		// Parse failures (bad CUE, missing required fields) are
		// command errors; there is no model to validate.
		var compileErr *compiler.CompileError
		if errors.As(err, &compileErr) {
			return outputLoadError(formatter, convertCompileError(err))
		}
		return outputLoadError(formatter, err)
	}

	verrs := compiler.Validate(m)
	var warnings []string
	for _, w := range compiler.AnalyzeGrowth(m) {
		warnings = append(warnings, w.String())
	}

	report := &ValidationReport{
		Model:    m.Name,
		Valid:    len(verrs) == 0,
		Errors:   verrs,
		Warnings: warnings,
	}

	if formatter.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return err
		}
		if !report.Valid {
			return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(verrs)))
		}
		return nil
	}

	if report.Valid {
		fmt.Fprintf(formatter.Writer, "✓ Model %q is valid\n", m.Name)
	} else {
		fmt.Fprintf(formatter.Writer, "✗ Model %q has %d error(s)\n\n", m.Name, len(verrs))
		for _, e := range verrs {
			fmt.Fprintf(formatter.Writer, "  [%s] %s: %s\n", e.Code, e.Field, e.Message)
		}
	}

	if len(warnings) > 0 {
		fmt.Fprintln(formatter.Writer)
		fmt.Fprintln(formatter.Writer, "Warnings:")
		for _, w := range warnings {
			fmt.Fprintf(formatter.Writer, "  %s\n", w)
		}
	}

	if !report.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(verrs)))
	}
	return nil
}
