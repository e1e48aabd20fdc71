package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/Maxsatbek/my-home/internal/config"
	"github.com/Maxsatbek/my-home/internal/kb"
	"github.com/Maxsatbek/my-home/internal/quiz"
	"github.com/Maxsatbek/my-home/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Database   string
	ConfigPath string

	// Clock, Source and IDs override the system implementations (for testing).
	Clock  kb.Clock
	Source quiz.Source
	IDs    kb.IDGenerator

	resolved *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the pkb CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pkb",
		Short: "pkb - personal knowledge base",
		Long: `A personal knowledge base for self-study: sections of topics with notes,
links and multiple-choice questions, quizzes and exams with answer history,
statistics and a spaced-repetition review list.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return WrapExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats), nil)
			}
			cfg, err := opts.config()
			if err != nil {
				return opts.report(cmd, err)
			}
			opts.configureLogging(cmd, cfg)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")

	// Add subcommands
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewDueCommand(opts))
	cmd.AddCommand(NewReviewedCommand(opts))
	cmd.AddCommand(NewDifficultCommand(opts))
	cmd.AddCommand(NewQuizCommand(opts))
	cmd.AddCommand(NewExamCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewRestoreCommand(opts))
	cmd.AddCommand(NewSectionCommand(opts))
	cmd.AddCommand(NewTopicCommand(opts))
	cmd.AddCommand(NewQuestionCommand(opts))
	cmd.AddCommand(NewLinkCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// config resolves defaults, config file and environment once, then applies
// the --db flag.
func (o *RootOptions) config() (config.Config, error) {
	if o.resolved != nil {
		return *o.resolved, nil
	}
	path := o.ConfigPath
	if path == "" {
		path = os.Getenv(config.EnvConfig)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.Database != "" {
		cfg.Database = o.Database
	}
	o.resolved = &cfg
	return cfg, nil
}

func (o *RootOptions) configureLogging(cmd *cobra.Command, cfg config.Config) {
	logLevel := cfg.Level()
	if o.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

func (o *RootOptions) clock() kb.Clock {
	if o.Clock != nil {
		return o.Clock
	}
	return kb.SystemClock{}
}

func (o *RootOptions) source() quiz.Source {
	if o.Source != nil {
		return o.Source
	}
	return quiz.SystemSource
}

func (o *RootOptions) ids() kb.IDGenerator {
	if o.IDs != nil {
		return o.IDs
	}
	return kb.UUIDGenerator{}
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// report turns err into an ExitError and, in JSON mode, writes it as an
// error response. A nil err stays nil.
func (o *RootOptions) report(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		exitErr = WrapExitError(classify(err).exit, "command failed", err)
	}
	if o.Format == "json" && !exitErr.Reported {
		var details any
		if kind := kb.CodeOf(err); kind != "" {
			details = map[string]string{"kind": string(kind)}
		}
		_ = o.formatter(cmd).Error(ErrorCodeFor(err), exitErr.Error(), details)
		exitErr.Reported = true
	}
	return exitErr
}

// workspace is an open store together with the snapshot loaded from it.
type workspace struct {
	cfg   config.Config
	store *store.Store
	db    *kb.Database
}

// openWorkspace opens the configured store and loads the latest snapshot.
// Read-only commands fall back to the defaults when the snapshot cannot be
// read; commands that will save surface the failure instead.
func (o *RootOptions) openWorkspace(ctx context.Context, mutate bool) (*workspace, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	storeOpts, err := cfg.StoreOptions()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load defaults", err)
	}
	storeOpts = append(storeOpts, store.WithClock(o.clock()), store.WithLogger(slog.Default()))

	slog.Debug("opening database", "path", cfg.Database)
	st, err := store.Open(cfg.Database, storeOpts...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	if !mutate {
		return &workspace{cfg: cfg, store: st, db: st.LoadOrDefault(ctx)}, nil
	}
	db, err := st.Load(ctx)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to load snapshot", err)
	}
	return &workspace{cfg: cfg, store: st, db: db}, nil
}

// save persists the current snapshot.
func (w *workspace) save(ctx context.Context) error {
	rev, written, err := w.store.Save(ctx, w.db)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to save snapshot", err)
	}
	slog.Debug("snapshot saved", "seq", rev.Seq, "written", written)
	return nil
}

func (w *workspace) Close() error {
	return w.store.Close()
}

// withWorkspace opens a workspace for fn and closes it afterwards. When
// mutate is true the snapshot is saved after fn succeeds.
func (o *RootOptions) withWorkspace(mutate bool, fn func(ctx context.Context, ws *workspace) error) error {
	ctx := context.Background()
	ws, err := o.openWorkspace(ctx, mutate)
	if err != nil {
		return err
	}
	defer ws.Close()

	if err := fn(ctx, ws); err != nil {
		return err
	}
	if mutate {
		return ws.save(ctx)
	}
	return nil
}
