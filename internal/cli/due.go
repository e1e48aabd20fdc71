package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Maxsatbek/my-home/internal/kb"
	"github.com/Maxsatbek/my-home/internal/review"
)

// DueOptions holds flags for the due command.
type DueOptions struct {
	*RootOptions
	Days int
}

// DueItem is one topic on the review list.
type DueItem struct {
	SectionID    string    `json:"sectionId"`
	SectionTitle string    `json:"sectionTitle"`
	TopicID      string    `json:"topicId"`
	TopicTitle   string    `json:"topicTitle"`
	Status       kb.Status `json:"status"`
	IsDifficult  bool      `json:"isDifficult"`
	LastReview   *kb.Date  `json:"lastReview"`
}

// DueResult is the review list output.
type DueResult struct {
	IntervalDays int       `json:"intervalDays"`
	Items        []DueItem `json:"items"`
}

// TopicFlags is the output of commands that change a topic's review state.
type TopicFlags struct {
	TopicID     string    `json:"topicId"`
	Title       string    `json:"title"`
	Status      kb.Status `json:"status"`
	IsDifficult bool      `json:"isDifficult"`
	LastReview  *kb.Date  `json:"lastReview"`
}

// NewDueCommand creates the due command.
func NewDueCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DueOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "due",
		Short: "List topics due for review",
		Long: `List topics that need another pass, oldest review first.

A topic is due when it is not done, when it is flagged difficult, or when
its last review is older than the review interval. The interval comes from
--days, then interval_days in the config, then the database settings.

Examples:
  pkb due
  pkb due --days 7`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.report(cmd, runDue(opts, cmd))
		},
	}

	cmd.Flags().IntVar(&opts.Days, "days", 0, "review interval in days (overrides config and settings)")

	return cmd
}

func runDue(opts *DueOptions, cmd *cobra.Command) error {
	if opts.Days < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--days must not be negative, got %d", opts.Days))
	}
	formatter := opts.formatter(cmd)
	return opts.withWorkspace(false, func(_ context.Context, ws *workspace) error {
		override := opts.Days
		if override == 0 {
			override = ws.cfg.IntervalDays
		}
		interval := review.Interval(ws.db.Settings, override)
		now := opts.clock().Now()

		result := DueResult{IntervalDays: interval, Items: []DueItem{}}
		for _, it := range review.DueForReview(ws.db, interval, now) {
			result.Items = append(result.Items, DueItem{
				SectionID:    it.Section.ID,
				SectionTitle: it.Section.Title,
				TopicID:      it.Topic.ID,
				TopicTitle:   it.Topic.Title,
				Status:       it.Topic.Status,
				IsDifficult:  it.Topic.IsDifficult,
				LastReview:   it.Topic.LastReview,
			})
		}

		if formatter.IsJSON() {
			return formatter.Success(result)
		}
		return outputDueText(cmd.OutOrStdout(), result, now)
	})
}

func outputDueText(w io.Writer, result DueResult, now time.Time) error {
	if len(result.Items) == 0 {
		fmt.Fprintf(w, "Nothing due (interval %d days)\n", result.IntervalDays)
		return nil
	}
	fmt.Fprintf(w, "%d topics due (interval %d days)\n\n", len(result.Items), result.IntervalDays)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TOPIC\tTITLE\tSECTION\tSTATUS\tLAST REVIEW")
	for _, it := range result.Items {
		status := string(it.Status)
		if it.IsDifficult {
			status += " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", it.TopicID, it.TopicTitle, it.SectionTitle, status, lastReviewText(it.LastReview, now))
	}
	return tw.Flush()
}

func lastReviewText(d *kb.Date, now time.Time) string {
	if d == nil || d.IsZero() {
		return "never"
	}
	return fmt.Sprintf("%s (%s)", d, humanize.RelTime(d.Time(), now, "ago", "from now"))
}

// NewReviewedCommand creates the reviewed command.
func NewReviewedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviewed <topic-id>",
		Short: "Mark a topic as reviewed today",
		Long: `Mark a topic as reviewed: its last review becomes today. A topic still
in "learning" moves to "review"; a done topic stays done and leaves the due
list until the review interval has passed again.

Example:
  pkb reviewed goroutines`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.report(cmd, updateTopicFlags(rootOpts, cmd, "reviewed", args[0], func(t *kb.Topic) {
				review.MarkReviewed(t, kb.Today(rootOpts.clock()))
			}))
		},
	}
	return cmd
}

// NewDifficultCommand creates the difficult command.
func NewDifficultCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "difficult <topic-id>",
		Short: "Toggle the difficult flag of a topic",
		Long: `Toggle the difficult flag. Difficult topics stay on the review list
regardless of status and last review.

Example:
  pkb difficult goroutines`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.report(cmd, updateTopicFlags(rootOpts, cmd, "difficult", args[0], func(t *kb.Topic) {
				review.ToggleDifficult(t)
			}))
		},
	}
	return cmd
}

func updateTopicFlags(opts *RootOptions, cmd *cobra.Command, op, topicID string, apply func(*kb.Topic)) error {
	formatter := opts.formatter(cmd)
	var result TopicFlags
	err := opts.withWorkspace(true, func(_ context.Context, ws *workspace) error {
		_, t := ws.db.FindTopic(topicID)
		if t == nil {
			return kb.NewError(kb.ErrCodeNotFound, op, fmt.Sprintf("topic %q not found", topicID))
		}
		apply(t)
		result = TopicFlags{
			TopicID:     t.ID,
			Title:       t.Title,
			Status:      t.Status,
			IsDifficult: t.IsDifficult,
			LastReview:  t.LastReview,
		}
		return nil
	})
	if err != nil {
		return err
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s: status %s", result.Title, result.Status)
	if result.LastReview != nil {
		fmt.Fprintf(w, ", last review %s", result.LastReview)
	}
	if result.IsDifficult {
		fmt.Fprint(w, ", difficult")
	}
	fmt.Fprintln(w)
	return nil
}
