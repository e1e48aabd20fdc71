package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/mitchellh/go-wordwrap"
	"github.com/spf13/cobra"

	"github.com/Maxsatbek/my-home/internal/kb"
	"github.com/Maxsatbek/my-home/internal/stats"
)

// ListSection is one section of the list output.
type ListSection struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	Topics []ListTopic `json:"topics"`
}

// ListTopic is one topic of the list output.
type ListTopic struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Status    kb.Status   `json:"status"`
	Priority  kb.Priority `json:"priority"`
	Questions int         `json:"questions"`
}

// TopicDetail is the show output.
type TopicDetail struct {
	SectionID string           `json:"sectionId"`
	Section   string           `json:"section"`
	Topic     kb.Topic         `json:"topic"`
	Accuracy  stats.Percent    `json:"accuracy"`
	Questions []stats.Question `json:"questionStats"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List sections and their topics",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.report(cmd, runList(rootOpts, cmd))
		},
	}
	return cmd
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	return opts.withWorkspace(false, func(_ context.Context, ws *workspace) error {
		sections := make([]ListSection, 0, len(ws.db.Sections))
		for _, s := range ws.db.Sections {
			ls := ListSection{ID: s.ID, Title: s.Title, Topics: make([]ListTopic, 0, len(s.Topics))}
			for _, t := range s.Topics {
				ls.Topics = append(ls.Topics, ListTopic{
					ID:        t.ID,
					Title:     t.Title,
					Status:    t.Status,
					Priority:  t.Priority,
					Questions: len(t.Questions),
				})
			}
			sections = append(sections, ls)
		}
		if formatter.IsJSON() {
			return formatter.Success(map[string][]ListSection{"sections": sections})
		}

		w := cmd.OutOrStdout()
		for _, s := range sections {
			fmt.Fprintf(w, "%s  %s\n", s.ID, s.Title)
			for _, t := range s.Topics {
				fmt.Fprintf(w, "  %s  %s [%s, %s, %d questions]\n", t.ID, t.Title, t.Status, t.Priority, t.Questions)
			}
		}
		return nil
	})
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "show <topic-id>",
		Short:         "Show a topic with notes, links and question stats",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.report(cmd, runShow(rootOpts, cmd, args[0]))
		},
	}
	return cmd
}

func runShow(opts *RootOptions, cmd *cobra.Command, topicID string) error {
	formatter := opts.formatter(cmd)
	return opts.withWorkspace(false, func(_ context.Context, ws *workspace) error {
		s, t, err := findTopic(ws.db, "show", topicID)
		if err != nil {
			return err
		}
		detail := TopicDetail{
			SectionID: s.ID,
			Section:   s.Title,
			Topic:     *t,
			Accuracy:  stats.TopicAccuracy(t),
			Questions: make([]stats.Question, 0, len(t.Questions)),
		}
		for i := range t.Questions {
			detail.Questions = append(detail.Questions, stats.QuestionSummary(&t.Questions[i]))
		}
		if formatter.IsJSON() {
			return formatter.Success(detail)
		}
		outputTopicText(cmd.OutOrStdout(), detail)
		return nil
	})
}

func outputTopicText(w io.Writer, d TopicDetail) {
	t := d.Topic
	fmt.Fprintf(w, "%s / %s\n", d.Section, t.Title)
	fmt.Fprintf(w, "status %s, priority %s, difficulty %d", t.Status, t.Priority, t.Difficulty)
	if t.IsDifficult {
		fmt.Fprint(w, ", difficult")
	}
	fmt.Fprintln(w)
	if len(t.Tags) > 0 {
		fmt.Fprintf(w, "tags: %v\n", t.Tags)
	}
	if t.LastReview != nil {
		fmt.Fprintf(w, "last review: %s\n", t.LastReview)
	}
	if t.Deadline != nil {
		fmt.Fprintf(w, "deadline: %s\n", t.Deadline)
	}
	if t.Notes != "" {
		fmt.Fprintf(w, "\n%s\n", wordwrap.WrapString(t.Notes, wrapWidth))
	}
	if len(t.Links) > 0 {
		fmt.Fprintln(w, "\nLinks:")
		for _, l := range t.Links {
			fmt.Fprintf(w, "  %s  %s <%s>\n", l.ID, l.Title, l.URL)
		}
	}
	if len(t.Questions) > 0 {
		fmt.Fprintf(w, "\nQuestions (accuracy %s):\n", d.Accuracy)
		for i, q := range t.Questions {
			qs := d.Questions[i]
			fmt.Fprintf(w, "  %s  %s  %s %s\n", q.ID, q.Text, qs.Accuracy, recentMarks(qs.Recent))
		}
	}
}
