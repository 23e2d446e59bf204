package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bionetgo/rxnet/internal/compiler"
	"github.com/bionetgo/rxnet/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult holds the compiled model plus its content hash and
// any growth warnings.
type CompilationResult struct {
	Model     *ir.Model `json:"model"`
	ModelHash string    `json:"modelHash"`
	Warnings  []string  `json:"warnings,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <model.cue>",
		Short: "Compile a CUE model to canonical IR",
		Long: `Compile a CUE rule-based model file to the canonical IR format.

The compiler parses the CUE source, validates it structurally, computes
the model's content hash, and flags rule sets likely to expand without
bound.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // we handle our own error output
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	m, err := LoadModel(path)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Compiled model %q: %d type(s), %d rule(s), %d seed(s)",
		m.Name, len(m.Types), len(m.Rules), len(m.Seeds))

	hash, err := ir.ModelHash(*m)
	if err != nil {
		return outputCompileError(formatter, ErrCodeGeneric, fmt.Sprintf("hashing model: %v", err))
	}

	var warnings []string
	for _, w := range compiler.AnalyzeGrowth(m) {
		warnings = append(warnings, w.String())
	}

	result := &CompilationResult{Model: m, ModelHash: hash, Warnings: warnings}

	if opts.Output != "" {
		if err := writeModelFile(result, opts.Output); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	m := result.Model
	fmt.Fprintf(formatter.Writer, "✓ Compiled model %q\n\n", m.Name)
	fmt.Fprintf(formatter.Writer, "  hash:         %s\n", result.ModelHash)
	fmt.Fprintf(formatter.Writer, "  types:        %d\n", len(m.Types))
	fmt.Fprintf(formatter.Writer, "  rules:        %d\n", len(m.Rules))
	fmt.Fprintf(formatter.Writer, "  seeds:        %d\n", len(m.Seeds))
	if len(m.Compartments) > 0 {
		fmt.Fprintf(formatter.Writer, "  compartments: %d\n", len(m.Compartments))
	}
	if len(m.Observables) > 0 {
		fmt.Fprintf(formatter.Writer, "  observables:  %d\n", len(m.Observables))
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintln(formatter.Writer)
		fmt.Fprintln(formatter.Writer, "Warnings:")
		for _, w := range result.Warnings {
			fmt.Fprintf(formatter.Writer, "  %s\n", w)
		}
	}

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "\nWrote canonical IR to %s\n", outputFile)
	}

	return nil
}

// outputCompileError outputs a single command-level error.
func outputCompileError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputLoadError reports a model loading failure with position info when
// available.
func outputLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		if loadErr.Pos.IsValid() && formatter.Format != "json" {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column())
		}
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return NewExitError(ExitCommandError, loadErr.Error())
	}
	_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitCommandError, "loading model", err)
}

// writeModelFile writes the compilation result as indented JSON. The
// canonical (unindented) encoding is used only for hashing.
func writeModelFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling model: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
