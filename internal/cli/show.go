package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bionetgo/rxnet/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database string

	Species         string
	SeedOnly        bool
	Compartment     string
	Rule            string
	Touching        int
	MinMultiplicity int
	Limit           int
}

// RunListing is the JSON payload when no token is given.
type RunListing struct {
	Runs []store.RunSummary `json:"runs"`
}

// RunDetail is the JSON payload for one stored run.
type RunDetail struct {
	Run       store.RunSummary    `json:"run"`
	Species   []store.SpeciesRow  `json:"species"`
	Reactions []store.ReactionRow `json:"reactions"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show [run-token]",
		Short: "Inspect stored generation runs",
		Long: `Inspect runs persisted by generate --db.

Without a token, lists all stored runs newest first. With a token,
prints the run's species and reactions; the filter flags narrow the
listing.

Example:
  rxnet show --db runs.db
  rxnet show --db runs.db 0190c6a2-... --rule bind --limit 20`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			token := ""
			if len(args) == 1 {
				token = args[0]
			}
			return runShow(opts, token, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Species, "species", "", "list the species with this canonical name only")
	cmd.Flags().BoolVar(&opts.SeedOnly, "seed-only", false, "list seed species only")
	cmd.Flags().StringVar(&opts.Compartment, "compartment", "", "list species in this compartment only")
	cmd.Flags().StringVar(&opts.Rule, "rule", "", "list reactions from this rule only")
	cmd.Flags().IntVar(&opts.Touching, "touching", 0, "list reactions involving this species index")
	cmd.Flags().IntVar(&opts.MinMultiplicity, "min-multiplicity", 0, "list reactions with at least this multiplicity")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "cap the number of rows listed per section")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runShow(opts *ShowOptions, token string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(opts.Database); os.IsNotExist(err) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.Database), nil)
		return NewExitError(ExitCommandError, "database not found")
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, fmt.Sprintf("opening database: %v", err), nil)
		return WrapExitError(ExitCommandError, "opening database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if token == "" {
		return showRunList(ctx, formatter, st)
	}
	return showRun(ctx, formatter, st, token, opts)
}

func showRunList(ctx context.Context, formatter *OutputFormatter, st *store.Store) error {
	runs, err := st.ListRuns(ctx)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, fmt.Sprintf("listing runs: %v", err), nil)
		return WrapExitError(ExitCommandError, "listing runs", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(&RunListing{Runs: runs})
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs stored.")
		return nil
	}
	fmt.Fprintf(formatter.Writer, "%d run(s):\n\n", len(runs))
	for _, r := range runs {
		status := "converged"
		if r.Truncated {
			status = "truncated (" + r.TruncationReason + ")"
		}
		fmt.Fprintf(formatter.Writer, "  %s  %s  %s  %s\n", r.Token, r.ModelName, status, r.CreatedAt)
	}
	return nil
}

func showRun(ctx context.Context, formatter *OutputFormatter, st *store.Store, token string, opts *ShowOptions) error {
	rec, err := st.ReadRun(ctx, token)
	if errors.Is(err, store.ErrRunNotFound) {
		_ = formatter.Error(ErrCodeRunMissing, fmt.Sprintf("run %s not found", token), nil)
		return NewExitError(ExitFailure, "run not found")
	}
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, fmt.Sprintf("reading run: %v", err), nil)
		return WrapExitError(ExitCommandError, "reading run", err)
	}

	species, err := st.QuerySpecies(ctx, token, store.SpeciesFilter{
		Certificate: opts.Species,
		SeedOnly:    opts.SeedOnly,
		Compartment: opts.Compartment,
		Limit:       opts.Limit,
	})
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, fmt.Sprintf("querying species: %v", err), nil)
		return WrapExitError(ExitCommandError, "querying species", err)
	}
	reactions, err := st.QueryReactions(ctx, token, store.ReactionFilter{
		Rule:            opts.Rule,
		Touching:        opts.Touching,
		MinMultiplicity: opts.MinMultiplicity,
		Limit:           opts.Limit,
	})
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, fmt.Sprintf("querying reactions: %v", err), nil)
		return WrapExitError(ExitCommandError, "querying reactions", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(&RunDetail{Run: rec.RunSummary, Species: species, Reactions: reactions})
	}

	r := rec.RunSummary
	status := "converged"
	if r.Truncated {
		status = "truncated (" + r.TruncationReason + ")"
	}
	fmt.Fprintf(formatter.Writer, "Run %s\n", r.Token)
	fmt.Fprintf(formatter.Writer, "  model:       %s (hash %s)\n", r.ModelName, r.ModelHash)
	fmt.Fprintf(formatter.Writer, "  status:      %s after %d iteration(s)\n", status, r.Iterations)
	fmt.Fprintf(formatter.Writer, "  fingerprint: %s\n", r.Fingerprint)
	fmt.Fprintf(formatter.Writer, "  created:     %s\n\n", r.CreatedAt)

	fmt.Fprintf(formatter.Writer, "Species (%d):\n", len(species))
	for _, sp := range species {
		flags := ""
		if sp.Seed {
			flags += " seed"
		}
		if sp.Constant {
			flags += " constant"
		}
		if sp.Compartment != "" {
			flags += " @" + sp.Compartment
		}
		fmt.Fprintf(formatter.Writer, "  %4d  %s  %v%s\n", sp.Index, sp.Certificate, sp.Quantity, flags)
	}

	fmt.Fprintf(formatter.Writer, "\nReactions (%d):\n", len(reactions))
	for _, rx := range reactions {
		fmt.Fprintf(formatter.Writer, "  %4d  %s: %s -> %s  rate %v", rx.Index, rx.Rule,
			joinIndices(rx.Reactants), joinIndices(rx.Products), rx.Rate)
		if rx.Multiplicity > 1 {
			fmt.Fprintf(formatter.Writer, " (x%d)", rx.Multiplicity)
		}
		fmt.Fprintln(formatter.Writer)
	}
	return nil
}

// joinIndices renders species indices as "+"-joined terms, "0" when
// empty.
func joinIndices(indices []int) string {
	if len(indices) == 0 {
		return "0"
	}
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = fmt.Sprintf("S%d", idx)
	}
	return strings.Join(parts, " + ")
}
