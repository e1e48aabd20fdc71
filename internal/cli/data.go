package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Maxsatbek/my-home/internal/kb"
	"github.com/Maxsatbek/my-home/internal/stats"
	"github.com/Maxsatbek/my-home/internal/store"
	"github.com/Maxsatbek/my-home/internal/transfer"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string
	As     string
}

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	As string
}

// DataResult reports the shape of a database written or replaced by a
// data command.
type DataResult struct {
	Path      string `json:"path,omitempty"`
	Format    string `json:"format,omitempty"`
	Seq       int64  `json:"seq,omitempty"`
	Sections  int    `json:"sections"`
	Topics    int    `json:"topics"`
	Questions int    `json:"questions"`
}

func dataResult(db *kb.Database) DataResult {
	g := stats.GlobalStats(db)
	return DataResult{Sections: g.Sections, Topics: g.Topics, Questions: g.Questions}
}

func (r DataResult) String() string {
	return fmt.Sprintf("%d sections, %d topics, %d questions", r.Sections, r.Topics, r.Questions)
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the knowledge base as JSON or YAML",
		Long: `Write the whole knowledge base, including answer history and
settings, in the import format.

Without -o the document goes to stdout. When -o names a directory, the file
is called pkb2-export-YYYY-MM-DD.<format>. The format comes from --as, then
the file extension, then defaults to JSON.

Examples:
  pkb export > backup.json
  pkb export -o backups/
  pkb export -o kb.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.report(cmd, runExport(opts, cmd))
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file or directory (default stdout)")
	cmd.Flags().StringVar(&opts.As, "as", "", "document format (json|yaml)")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	format := transfer.FormatJSON
	if opts.Output != "" {
		format = transfer.FormatForPath(opts.Output)
	}
	if opts.As != "" {
		f, err := transfer.ParseFormat(opts.As)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --as", err)
		}
		format = f
	}

	formatter := opts.formatter(cmd)
	return opts.withWorkspace(false, func(_ context.Context, ws *workspace) error {
		if opts.Output == "" {
			return transfer.Export(cmd.OutOrStdout(), ws.db, format)
		}

		path := opts.Output
		if info, err := os.Stat(path); (err == nil && info.IsDir()) || strings.HasSuffix(path, string(filepath.Separator)) {
			path = filepath.Join(path, transfer.ExportFileName(kb.Today(opts.clock()), format))
		}
		if err := writeExport(path, ws.db, format); err != nil {
			return WrapExitError(ExitCommandError, "failed to write export", err)
		}

		result := dataResult(ws.db)
		result.Path = path
		result.Format = string(format)
		if formatter.IsJSON() {
			return formatter.Success(result)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", result, path)
		return nil
	})
}

func writeExport(path string, db *kb.Database, format transfer.Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if err := transfer.Export(f, db, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the knowledge base with an exported document",
		Long: `Replace the whole knowledge base with a JSON or YAML document. Use -
to read stdin. The previous state stays available through history/restore.

The document must hold a "sections" list; a malformed document leaves the
knowledge base unchanged.

Examples:
  pkb import backup.json
  pkb import --as yaml - < kb.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.report(cmd, runImport(opts, cmd, args[0]))
		},
	}

	cmd.Flags().StringVar(&opts.As, "as", "", "document format (json|yaml, default from extension)")

	return cmd
}

func runImport(opts *ImportOptions, cmd *cobra.Command, path string) error {
	format := transfer.FormatForPath(path)
	if opts.As != "" {
		f, err := transfer.ParseFormat(opts.As)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --as", err)
		}
		format = f
	}

	var in io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open import file", err)
		}
		defer f.Close()
		in = f
	}

	// Decode before touching the store so a bad document changes nothing.
	imported, err := transfer.Import(in, format)
	if err != nil {
		return err
	}

	formatter := opts.formatter(cmd)
	err = opts.withWorkspace(true, func(_ context.Context, ws *workspace) error {
		ws.db = imported
		return nil
	})
	if err != nil {
		return err
	}

	result := dataResult(imported)
	result.Path = path
	result.Format = string(format)
	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %s\n", result)
	return nil
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	var confirmed bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Replace the knowledge base with the default dataset",
		Long: `Replace the knowledge base with the bundled default dataset (or the
configured defaults_file). Requires --yes. The previous state stays
available through history/restore.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return rootOpts.report(cmd, NewExitError(ExitCommandError, "reset discards the current state; pass --yes to confirm"))
			}
			return rootOpts.report(cmd, runReset(rootOpts, cmd))
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "confirm the reset")
	return cmd
}

func runReset(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	var result DataResult
	err := opts.withWorkspace(false, func(ctx context.Context, ws *workspace) error {
		db, err := ws.store.Reset(ctx)
		if err != nil {
			return err
		}
		result = dataResult(db)
		return nil
	})
	if err != nil {
		return err
	}
	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reset to defaults: %s\n", result)
	return nil
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored snapshots",
		Long: `List the retained snapshots of the knowledge base, newest first. Every
change stores a snapshot; keep_snapshots in the config bounds how many are
kept.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.report(cmd, runHistory(rootOpts, cmd))
		},
	}
	return cmd
}

func runHistory(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	return opts.withWorkspace(false, func(ctx context.Context, ws *workspace) error {
		revisions, err := ws.store.Revisions(ctx)
		if err != nil {
			return err
		}
		if formatter.IsJSON() {
			return formatter.Success(map[string][]store.Revision{"revisions": revisions})
		}

		now := opts.clock().Now()
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SEQ\tSAVED\tFINGERPRINT")
		for _, r := range revisions {
			fmt.Fprintf(tw, "%d\t%s\t%.12s\n", r.Seq, humanize.RelTime(r.SavedAt, now, "ago", "from now"), r.Fingerprint)
		}
		return tw.Flush()
	})
}

// NewRestoreCommand creates the restore command.
func NewRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <seq>",
		Short: "Restore a stored snapshot",
		Long: `Make an earlier snapshot (see history) the current state. The restore
itself is stored as a new snapshot.

Example:
  pkb restore 12`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.report(cmd, runRestore(rootOpts, cmd, args[0]))
		},
	}
	return cmd
}

func runRestore(opts *RootOptions, cmd *cobra.Command, arg string) error {
	seq, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("invalid snapshot number %q", arg), err)
	}

	formatter := opts.formatter(cmd)
	var result DataResult
	err = opts.withWorkspace(true, func(ctx context.Context, ws *workspace) error {
		db, err := ws.store.LoadRevision(ctx, seq)
		if err != nil {
			return err
		}
		ws.db = db
		result = dataResult(db)
		result.Seq = seq
		return nil
	})
	if err != nil {
		return err
	}
	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Restored snapshot %d: %s\n", seq, result)
	return nil
}
