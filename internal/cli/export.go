package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bionetgo/rxnet/internal/export"
	"github.com/bionetgo/rxnet/internal/store"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Database string
	NetOut   string
	JSONOut  string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <run-token>",
		Short: "Re-render a stored run",
		Long: `Render a run persisted by generate --db without regenerating it.

With --net or --json-out the chosen renderings go to those files;
without either, the network listing goes to stdout.

Example:
  rxnet export --db runs.db 0190c6a2-...
  rxnet export --db runs.db 0190c6a2-... --json-out network.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.NetOut, "net", "", "write the network listing to this file")
	cmd.Flags().StringVar(&opts.JSONOut, "json-out", "", "write the canonical JSON network to this file")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runExport(opts *ExportOptions, token string, cmd *cobra.Command) error {
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
	rec, err := st.ReadRun(ctx, token)
	if errors.Is(err, store.ErrRunNotFound) {
		_ = formatter.Error(ErrCodeRunMissing, fmt.Sprintf("run %s not found", token), nil)
		return NewExitError(ExitFailure, "run not found")
	}
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, fmt.Sprintf("reading run: %v", err), nil)
		return WrapExitError(ExitCommandError, "reading run", err)
	}

	net := export.FromRecord(rec)

	if opts.NetOut == "" && opts.JSONOut == "" {
		return export.WriteNet(formatter.Writer, net, nil)
	}
	if opts.NetOut != "" {
		if err := writeFileWith(opts.NetOut, func(f *os.File) error {
			return export.WriteNet(f, net, nil)
		}); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing network listing: %v", err))
		}
		formatter.VerboseLog("wrote %s", opts.NetOut)
	}
	if opts.JSONOut != "" {
		if err := writeFileWith(opts.JSONOut, func(f *os.File) error {
			return export.WriteJSON(f, net, nil)
		}); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing network JSON: %v", err))
		}
		formatter.VerboseLog("wrote %s", opts.JSONOut)
	}
	return nil
}
