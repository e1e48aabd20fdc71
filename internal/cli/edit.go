package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Maxsatbek/my-home/internal/kb"
)

// EditResult identifies the entity a CRUD command touched.
type EditResult struct {
	Action    string `json:"action"` // "added", "updated" or "removed"
	Kind      string `json:"kind"`
	ID        string `json:"id"`
	SectionID string `json:"sectionId,omitempty"`
	TopicID   string `json:"topicId,omitempty"`
	Title     string `json:"title,omitempty"`
}

func (r EditResult) String() string {
	if r.Title != "" {
		return fmt.Sprintf("%s %s %s (%s)", strings.ToUpper(r.Action[:1])+r.Action[1:], r.Kind, r.ID, r.Title)
	}
	return fmt.Sprintf("%s %s %s", strings.ToUpper(r.Action[:1])+r.Action[1:], r.Kind, r.ID)
}

// runEdit loads the snapshot, applies fn and saves. fn reports what it did.
func runEdit(opts *RootOptions, cmd *cobra.Command, fn func(db *kb.Database) (EditResult, error)) error {
	var result EditResult
	err := opts.withWorkspace(true, func(_ context.Context, ws *workspace) error {
		var err error
		result, err = fn(ws.db)
		return err
	})
	if err != nil {
		return err
	}
	return opts.formatter(cmd).Success(result)
}

// findTopic resolves a topic id to its section and topic.
func findTopic(db *kb.Database, op, topicID string) (*kb.Section, *kb.Topic, error) {
	s, t := db.FindTopic(topicID)
	if t == nil {
		return nil, nil, kb.NewError(kb.ErrCodeNotFound, op, fmt.Sprintf("topic %q not found", topicID))
	}
	return s, t, nil
}

// stringChange returns a Change for flag name, set only when the flag was
// given on the command line.
func stringChange(flags *pflag.FlagSet, name, value string) kb.Change[string] {
	if !flags.Changed(name) {
		return kb.Change[string]{}
	}
	return kb.Set(value)
}

// dateChange parses a YYYY-MM-DD flag; an empty value clears the date.
func dateChange(flags *pflag.FlagSet, name, value string) (kb.Change[*kb.Date], error) {
	if !flags.Changed(name) {
		return kb.Change[*kb.Date]{}, nil
	}
	if value == "" {
		return kb.Set[*kb.Date](nil), nil
	}
	d, err := kb.ParseDate(value)
	if err != nil {
		return kb.Change[*kb.Date]{}, WrapExitError(ExitCommandError, fmt.Sprintf("invalid --%s", name), err)
	}
	return kb.Set(kb.DatePtr(d)), nil
}

// --- sections ---

type sectionFlags struct {
	title, description, icon, color string
}

func (f *sectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "section title")
	cmd.Flags().StringVar(&f.description, "description", "", "section description")
	cmd.Flags().StringVar(&f.icon, "icon", "", "section icon")
	cmd.Flags().StringVar(&f.color, "color", "", "section color")
}

func (f *sectionFlags) edit(flags *pflag.FlagSet) kb.SectionEdit {
	return kb.SectionEdit{
		Title:       stringChange(flags, "title", f.title),
		Description: stringChange(flags, "description", f.description),
		Icon:        stringChange(flags, "icon", f.icon),
		Color:       stringChange(flags, "color", f.color),
	}
}

// NewSectionCommand creates the section command group.
func NewSectionCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "section",
		Short: "Add, edit or remove sections",
	}

	var addFlags sectionFlags
	add := &cobra.Command{
		Use:           "add",
		Short:         "Add a section",
		Example:       `  pkb section add --title "Databases" --description "SQL and storage"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.report(cmd, runEdit(rootOpts, cmd, func(db *kb.Database) (EditResult, error) {
				s, err := db.AddSection(rootOpts.ids(), addFlags.edit(cmd.Flags()))
				if err != nil {
					return EditResult{}, err
				}
				return EditResult{Action: "added", Kind: "section", ID: s.ID, Title: s.Title}, nil
			}))
		},
	}
	addFlags.register(add)
	_ = add.MarkFlagRequired("title")

	var editFlags sectionFlags
	edit := &cobra.Command{
		Use:           "edit <section-id>",
		Short:         "Edit a section",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.report(cmd, runEdit(rootOpts, cmd, func(db *kb.Database) (EditResult, error) {
				s := db.Section(args[0])
				if s == nil {
					return EditResult{}, kb.NewError(kb.ErrCodeNotFound, "section.edit", fmt.Sprintf("section %q not found", args[0]))
				}
				if err := editFlags.edit(cmd.Flags()).Apply(s); err != nil {
					return EditResult{}, err
				}
				return EditResult{Action: "updated", Kind: "section", ID: s.ID, Title: s.Title}, nil
			}))
		},
	}
	editFlags.register(edit)

	rm := &cobra.Command{
		Use:           "rm <section-id>",
		Short:         "Remove a section with all its topics",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.report(cmd, runEdit(rootOpts, cmd, func(db *kb.Database) (EditResult, error) {
				if err := db.DeleteSection(args[0]); err != nil {
					return EditResult{}, err
				}
				return EditResult{Action: "removed", Kind: "section", ID: args[0]}, nil
			}))
		},
	}

	cmd.AddCommand(add, edit, rm)
	return cmd
}

// --- topics ---

type topicFlags struct {
	title, status, priority string
	difficulty              int
	difficult               bool
	tags                    []string
	lastReview, deadline    string
	notes, notesFile        string
}

func (f *topicFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "topic title")
	cmd.Flags().StringVar(&f.status, "status", "", "learning|review|done")
	cmd.Flags().StringVar(&f.priority, "priority", "", "low|medium|high")
	cmd.Flags().IntVar(&f.difficulty, "difficulty", 0, "difficulty 1-5")
	cmd.Flags().BoolVar(&f.difficult, "difficult", false, "flag as difficult")
	cmd.Flags().StringSliceVar(&f.tags, "tags", nil, "comma-separated tags (replaces existing)")
	cmd.Flags().StringVar(&f.lastReview, "last-review", "", "last review date YYYY-MM-DD (empty clears)")
	cmd.Flags().StringVar(&f.deadline, "deadline", "", "deadline YYYY-MM-DD (empty clears)")
	cmd.Flags().StringVar(&f.notes, "notes", "", "notes text")
	cmd.Flags().StringVar(&f.notesFile, "notes-file", "", "read notes from a file")
	cmd.MarkFlagsMutuallyExclusive("notes", "notes-file")
}

func (f *topicFlags) edit(flags *pflag.FlagSet) (kb.TopicEdit, error) {
	e := kb.TopicEdit{
		Title: stringChange(flags, "title", f.title),
		Notes: stringChange(flags, "notes", f.notes),
	}
	if flags.Changed("status") {
		e.Status = kb.Set(kb.Status(f.status))
	}
	if flags.Changed("priority") {
		e.Priority = kb.Set(kb.Priority(f.priority))
	}
	if flags.Changed("difficulty") {
		e.Difficulty = kb.Set(f.difficulty)
	}
	if flags.Changed("difficult") {
		e.IsDifficult = kb.Set(f.difficult)
	}
	if flags.Changed("tags") {
		e.Tags = kb.Set(f.tags)
	}
	if f.notesFile != "" {
		data, err := os.ReadFile(f.notesFile)
		if err != nil {
			return kb.TopicEdit{}, WrapExitError(ExitCommandError, "failed to read notes file", err)
		}
		e.Notes = kb.Set(string(data))
	}

	var err error
	if e.LastReview, err = dateChange(flags, "last-review", f.lastReview); err != nil {
		return kb.TopicEdit{}, err
	}
	if e.Deadline, err = dateChange(flags, "deadline", f.deadline); err != nil {
		return kb.TopicEdit{}, err
	}
	return e, nil
}

// NewTopicCommand creates the topic command group.
func NewTopicCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topic",
		Short: "Add, edit or remove topics",
	}

	var addFlags topicFlags
	add := &cobra.Command{
		Use:   "add <section-id>",
		Short: "Add a topic to a section",
		Long: `Add a topic. Unless given, status is learning, priority medium and
difficulty 1.`,
		Example:       `  pkb topic add go --title "Channels" --tags concurrency,runtime`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.report(cmd, runEdit(rootOpts, cmd, func(db *kb.Database) (EditResult, error) {
				e, err := addFlags.edit(cmd.Flags())
				if err != nil {
					return EditResult{}, err
				}
				t, err := db.AddTopic(rootOpts.ids(), args[0], e)
				if err != nil {
					return EditResult{}, err
				}
				return EditResult{Action: "added", Kind: "topic", ID: t.ID, SectionID: args[0], Title: t.Title}, nil
			}))
		},
	}
	addFlags.register(add)
	_ = add.MarkFlagRequired("title")

	var editFlags topicFlags
	edit := &cobra.Command{
		Use:           "edit <topic-id>",
		Short:         "Edit a topic",
		Example:       `  pkb topic edit channels --status done --deadline ""`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.report(cmd, runEdit(rootOpts, cmd, func(db *kb.Database) (EditResult, error) {
				s, t, err := findTopic(db, "topic.edit", args[0])
				if err != nil {
					return EditResult{}, err
				}
				e, err := editFlags.edit(cmd.Flags())
				if err != nil {
					return EditResult{}, err
				}
				if err := e.Apply(t); err != nil {
					return EditResult{}, err
				}
				return EditResult{Action: "updated", Kind: "topic", ID: t.ID, SectionID: s.ID, Title: t.Title}, nil
			}))
		},
	}
	editFlags.register(edit)

	rm := &cobra.Command{
		Use:           "rm <topic-id>",
		Short:         "Remove a topic with its links and questions",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.report(cmd, runEdit(rootOpts, cmd, func(db *kb.Database) (EditResult, error) {
				s, _, err := findTopic(db, "topic.delete", args[0])
				if err != nil {
					return EditResult{}, err
				}
				if err := db.DeleteTopic(s.ID, args[0]); err != nil {
					return EditResult{}, err
				}
				return EditResult{Action: "removed", Kind: "topic", ID: args[0], SectionID: s.ID}, nil
			}))
		},
	}

	cmd.AddCommand(add, edit, rm)
	return cmd
}

// --- questions ---

type questionFlags struct {
	text, correct, explanation string
	options                    []string
}

func (f *questionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.text, "text", "", "question text")
	cmd.Flags().StringArrayVar(&f.options, "option", nil, "answer option, repeat 4 times in order A-D")
	cmd.Flags().StringVar(&f.correct, "correct", "", "correct option letter (a-d)")
	cmd.Flags().StringVar(&f.explanation, "explanation", "", "explanation shown after answering")
}

func (f *questionFlags) edit(flags *pflag.FlagSet) (kb.QuestionEdit, error) {
	e := kb.QuestionEdit{
		Text:        stringChange(flags, "text", f.text),
		Explanation: stringChange(flags, "explanation", f.explanation),
	}
	if flags.Changed("option") {
		if len(f.options) != kb.OptionCount {
			return kb.QuestionEdit{}, kb.NewError(kb.ErrCodeInvalidEdit, "question.edit",
				fmt.Sprintf("want %d --option values, got %d", kb.OptionCount, len(f.options)))
		}
		var opts kb.Options
		copy(opts[:], f.options)
		e.Options = kb.Set(opts)
	}
	if flags.Changed("correct") {
		idx, ok := letterIndex(strings.ToLower(strings.TrimSpace(f.correct)))
		if !ok {
			return kb.QuestionEdit{}, kb.NewError(kb.ErrCodeInvalidEdit, "question.edit",
				fmt.Sprintf("--correct must be a letter a-d, got %q", f.correct))
		}
		e.Correct = kb.Set(idx)
	}
	return e, nil
}

// NewQuestionCommand creates the question command group.
func NewQuestionCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "question",
		Short: "Add, edit or remove test questions",
	}

	var addFlags questionFlags
	add := &cobra.Command{
		Use:   "add <topic-id>",
		Short: "Add a multiple-choice question to a topic",
		Example: `  pkb question add channels --text "Unbuffered send blocks until?" \
    --option "a receiver is ready" --option "the buffer fills" \
    --option "the channel is closed" --option "never" --correct a`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.report(cmd, runEdit(rootOpts, cmd, func(db *kb.Database) (EditResult, error) {
				s, _, err := findTopic(db, "question.add", args[0])
				if err != nil {
					return EditResult{}, err
				}
				e, err := addFlags.edit(cmd.Flags())
				if err != nil {
					return EditResult{}, err
				}
				q, err := db.AddQuestion(rootOpts.ids(), s.ID, args[0], e)
				if err != nil {
					return EditResult{}, err
				}
				return EditResult{Action: "added", Kind: "question", ID: q.ID, SectionID: s.ID, TopicID: args[0]}, nil
			}))
		},
	}
	addFlags.register(add)
	_ = add.MarkFlagRequired("text")
	_ = add.MarkFlagRequired("option")
	_ = add.MarkFlagRequired("correct")

	var editFlags questionFlags
	edit := &cobra.Command{
		Use:           "edit <topic-id> <question-id>",
		Short:         "Edit a question (history is kept)",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.report(cmd, runEdit(rootOpts, cmd, func(db *kb.Database) (EditResult, error) {
				s, t, err := findTopic(db, "question.edit", args[0])
				if err != nil {
					return EditResult{}, err
				}
				q := t.Question(args[1])
				if q == nil {
					return EditResult{}, kb.NewError(kb.ErrCodeNotFound, "question.edit", fmt.Sprintf("question %q not found", args[1]))
				}
				e, err := editFlags.edit(cmd.Flags())
				if err != nil {
					return EditResult{}, err
				}
				if err := e.Apply(q); err != nil {
					return EditResult{}, err
				}
				return EditResult{Action: "updated", Kind: "question", ID: q.ID, SectionID: s.ID, TopicID: t.ID}, nil
			}))
		},
	}
	editFlags.register(edit)

	rm := &cobra.Command{
		Use:           "rm <topic-id> <question-id>",
		Short:         "Remove a question with its answer history",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.report(cmd, runEdit(rootOpts, cmd, func(db *kb.Database) (EditResult, error) {
				s, _, err := findTopic(db, "question.delete", args[0])
				if err != nil {
					return EditResult{}, err
				}
				if err := db.DeleteQuestion(s.ID, args[0], args[1]); err != nil {
					return EditResult{}, err
				}
				return EditResult{Action: "removed", Kind: "question", ID: args[1], SectionID: s.ID, TopicID: args[0]}, nil
			}))
		},
	}

	cmd.AddCommand(add, edit, rm)
	return cmd
}

// --- links ---

// NewLinkCommand creates the link command group.
func NewLinkCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Add or remove topic links",
	}

	var title, url, note string
	add := &cobra.Command{
		Use:           "add <topic-id>",
		Short:         "Attach a link to a topic",
		Example:       `  pkb link add channels --title "Go spec" --url https://go.dev/ref/spec#Channel_types`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.report(cmd, runEdit(rootOpts, cmd, func(db *kb.Database) (EditResult, error) {
				s, _, err := findTopic(db, "link.add", args[0])
				if err != nil {
					return EditResult{}, err
				}
				l, err := db.AddLink(rootOpts.ids(), s.ID, args[0], kb.LinkEdit{
					Title: kb.Set(title),
					URL:   kb.Set(url),
					Note:  kb.Set(note),
				})
				if err != nil {
					return EditResult{}, err
				}
				return EditResult{Action: "added", Kind: "link", ID: l.ID, SectionID: s.ID, TopicID: args[0], Title: l.Title}, nil
			}))
		},
	}
	add.Flags().StringVar(&title, "title", "", "link title")
	add.Flags().StringVar(&url, "url", "", "link URL")
	add.Flags().StringVar(&note, "note", "", "optional note")
	_ = add.MarkFlagRequired("title")
	_ = add.MarkFlagRequired("url")

	rm := &cobra.Command{
		Use:           "rm <topic-id> <link-id>",
		Short:         "Remove a link",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.report(cmd, runEdit(rootOpts, cmd, func(db *kb.Database) (EditResult, error) {
				s, _, err := findTopic(db, "link.delete", args[0])
				if err != nil {
					return EditResult{}, err
				}
				if err := db.DeleteLink(s.ID, args[0], args[1]); err != nil {
					return EditResult{}, err
				}
				return EditResult{Action: "removed", Kind: "link", ID: args[1], SectionID: s.ID, TopicID: args[0]}, nil
			}))
		},
	}

	cmd.AddCommand(add, rm)
	return cmd
}
