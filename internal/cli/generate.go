package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bionetgo/rxnet/internal/engine"
	"github.com/bionetgo/rxnet/internal/export"
	"github.com/bionetgo/rxnet/internal/ir"
	"github.com/bionetgo/rxnet/internal/observe"
	"github.com/bionetgo/rxnet/internal/store"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Database   string // optional SQLite path to persist the run
	NetOut     string // optional .net text output path
	JSONOut    string // optional canonical JSON output path
	ConfigFile string // optional YAML limits override file

	MaxSpecies    int
	MaxReactions  int
	MaxIterations int

	// TokenGenerator overrides the run token source (for testing).
	// Nil defaults to UUIDv7Generator.
	TokenGenerator engine.RunTokenGenerator
}

// GenerateSummary is the JSON payload of a generate run.
type GenerateSummary struct {
	RunToken         string `json:"runToken"`
	Model            string `json:"model"`
	Species          int    `json:"species"`
	Reactions        int    `json:"reactions"`
	Iterations       int    `json:"iterations"`
	Converged        bool   `json:"converged"`
	Truncated        bool   `json:"truncated,omitempty"`
	TruncationReason string `json:"truncationReason,omitempty"`
	DroppedOversize  int    `json:"droppedOversize,omitempty"`
	Fingerprint      string `json:"fingerprint"`
}

// configOverrides mirrors the model's generation limits with pointer
// fields, so a YAML override file only touches the keys it sets.
type configOverrides struct {
	MaxSpecies                 *int           `yaml:"maxSpecies"`
	MaxReactions               *int           `yaml:"maxReactions"`
	MaxIterations              *int           `yaml:"maxIterations"`
	MaxAgg                     *int           `yaml:"maxAgg"`
	MaxStoichDefault           *int           `yaml:"maxStoich"`
	MaxStoich                  map[string]int `yaml:"maxStoichPerType"`
	ReverseRateDefaultsForward *bool          `yaml:"reverseRateDefaultsForward"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <model.cue>",
		Short: "Expand a model into a concrete reaction network",
		Long: `Compile a CUE model and expand its rules into a concrete reaction
network by iterating rule application to a fixed point.

Limits from the model's config block apply by default; a YAML file given
with --config overrides them, and the --max-* flags override both.

Example:
  rxnet generate model.cue --net model.net
  rxnet generate model.cue --db runs.db --max-species 2000 --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database to persist the run")
	cmd.Flags().StringVar(&opts.NetOut, "net", "", "write the network listing to this file")
	cmd.Flags().StringVar(&opts.JSONOut, "json-out", "", "write the canonical JSON network to this file")
	cmd.Flags().StringVar(&opts.ConfigFile, "config", "", "YAML file overriding the model's generation limits")
	cmd.Flags().IntVar(&opts.MaxSpecies, "max-species", 0, "override the species limit")
	cmd.Flags().IntVar(&opts.MaxReactions, "max-reactions", 0, "override the reaction limit")
	cmd.Flags().IntVar(&opts.MaxIterations, "max-iterations", 0, "override the iteration limit")

	return cmd
}

func runGenerate(opts *GenerateOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))

	m, err := LoadModel(path)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	if opts.ConfigFile != "" {
		if err := applyConfigFile(m, opts.ConfigFile); err != nil {
			return outputCompileError(formatter, ErrCodeGeneric, err.Error())
		}
	}
	if opts.MaxSpecies > 0 {
		m.Config.MaxSpecies = opts.MaxSpecies
	}
	if opts.MaxReactions > 0 {
		m.Config.MaxReactions = opts.MaxReactions
	}
	if opts.MaxIterations > 0 {
		m.Config.MaxIterations = opts.MaxIterations
	}

	genOpts := []engine.Option{engine.WithLogger(log)}
	if opts.TokenGenerator != nil {
		genOpts = append(genOpts, engine.WithTokenGenerator(opts.TokenGenerator))
	}
	if opts.Verbose {
		genOpts = append(genOpts, engine.WithProgress(func(p engine.Progress) {
			formatter.VerboseLog("iteration %d: %d species (+%d), %d reactions (+%d)",
				p.Iteration, p.Species, p.NewSpecies, p.Reactions, p.NewReactions)
		}))
	}

	gen, err := engine.New(*m, genOpts...)
	if err != nil {
		return outputCompileError(formatter, ErrCodeGeneric, fmt.Sprintf("building generator: %v", err))
	}

	observables, err := observe.Compile(gen.Types(), m.Observables)
	if err != nil {
		return outputCompileError(formatter, ErrCodeGeneric, fmt.Sprintf("compiling observables: %v", err))
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	net, err := gen.Generate(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "generation failed", err)
	}

	results := observe.Evaluate(observables, net)

	if opts.Database != "" {
		if err := persistRun(ctx, opts.Database, net, log); err != nil {
			return WrapExitError(ExitCommandError, "persisting run", err)
		}
	}
	if opts.NetOut != "" {
		if err := writeFileWith(opts.NetOut, func(f *os.File) error {
			return export.WriteNet(f, net, results)
		}); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing network listing: %v", err))
		}
	}
	if opts.JSONOut != "" {
		if err := writeFileWith(opts.JSONOut, func(f *os.File) error {
			return export.WriteJSON(f, net, results)
		}); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing network JSON: %v", err))
		}
	}

	return outputGenerateSummary(formatter, net)
}

// applyConfigFile overlays a YAML limits file onto the model's config.
func applyConfigFile(m *ir.Model, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	var ov configOverrides
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if ov.MaxSpecies != nil {
		m.Config.MaxSpecies = *ov.MaxSpecies
	}
	if ov.MaxReactions != nil {
		m.Config.MaxReactions = *ov.MaxReactions
	}
	if ov.MaxIterations != nil {
		m.Config.MaxIterations = *ov.MaxIterations
	}
	if ov.MaxAgg != nil {
		m.Config.MaxAgg = *ov.MaxAgg
	}
	if ov.MaxStoichDefault != nil {
		m.Config.MaxStoichDefault = *ov.MaxStoichDefault
	}
	if ov.MaxStoich != nil {
		m.Config.MaxStoich = ov.MaxStoich
	}
	if ov.ReverseRateDefaultsForward != nil {
		m.Config.ReverseRateDefaultsForward = *ov.ReverseRateDefaultsForward
	}
	return nil
}

// persistRun writes the network to the SQLite store.
func persistRun(ctx context.Context, path string, net *engine.Network, log *slog.Logger) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			log.Error("closing database", "error", closeErr)
		}
	}()
	return st.WriteRun(ctx, net)
}

// writeFileWith creates the file, runs the writer, and keeps the first
// error including the close error.
func writeFileWith(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	werr := write(f)
	cerr := f.Close()
	if werr != nil {
		return werr
	}
	return cerr
}

// signalContext derives a context cancelled by SIGINT/SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// outputGenerateSummary prints the run summary in the configured format.
func outputGenerateSummary(formatter *OutputFormatter, net *engine.Network) error {
	fp, err := net.Fingerprint()
	if err != nil {
		return WrapExitError(ExitFailure, "computing fingerprint", err)
	}

	summary := &GenerateSummary{
		RunToken:         net.RunToken,
		Model:            net.ModelName,
		Species:          len(net.Species),
		Reactions:        len(net.Reactions),
		Iterations:       net.Iterations,
		Converged:        net.Converged,
		Truncated:        net.Truncated,
		TruncationReason: string(net.TruncationReason),
		DroppedOversize:  net.DroppedOversize,
		Fingerprint:      fp,
	}

	if formatter.Format == "json" {
		return formatter.Success(summary)
	}

	status := "converged"
	if net.Truncated {
		status = fmt.Sprintf("truncated (%s)", net.TruncationReason)
	}
	fmt.Fprintf(formatter.Writer, "✓ Generated network for %q: %d species, %d reactions in %d iteration(s), %s\n",
		summary.Model, summary.Species, summary.Reactions, summary.Iterations, status)
	if summary.DroppedOversize > 0 {
		fmt.Fprintf(formatter.Writer, "  dropped %d oversize candidate(s)\n", summary.DroppedOversize)
	}
	fmt.Fprintf(formatter.Writer, "  run:         %s\n", summary.RunToken)
	fmt.Fprintf(formatter.Writer, "  fingerprint: %s\n", summary.Fingerprint)
	return nil
}
