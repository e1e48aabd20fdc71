package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Maxsatbek/my-home/internal/kb"
	"github.com/Maxsatbek/my-home/internal/stats"
)

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	*RootOptions
	Section string
}

// StatsResult is the database-wide statistics output.
type StatsResult struct {
	Global   stats.Global    `json:"global"`
	Sections []stats.Section `json:"sections"`
}

// SectionStatsResult is the per-section statistics output.
type SectionStatsResult struct {
	Section stats.Section `json:"section"`
	Topics  []TopicStats  `json:"topics"`
}

// TopicStats is one topic row of a section report.
type TopicStats struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Status    kb.Status        `json:"status"`
	Accuracy  stats.Percent    `json:"accuracy"`
	Questions []stats.Question `json:"questions"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show learning statistics",
		Long: `Show progress and answer accuracy.

Without flags, prints database totals and one row per section. With
--section, prints the section's topics with their accuracy and the
latest attempts of every question.

Examples:
  pkb stats
  pkb stats --section go
  pkb stats --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.report(cmd, runStats(opts, cmd))
		},
	}

	cmd.Flags().StringVar(&opts.Section, "section", "", "report a single section by id")

	return cmd
}

func runStats(opts *StatsOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	return opts.withWorkspace(false, func(_ context.Context, ws *workspace) error {
		if opts.Section == "" {
			result := StatsResult{
				Global:   stats.GlobalStats(ws.db),
				Sections: stats.SectionStats(ws.db),
			}
			if formatter.IsJSON() {
				return formatter.Success(result)
			}
			return outputStatsText(cmd.OutOrStdout(), result)
		}

		s := ws.db.Section(opts.Section)
		if s == nil {
			return kb.NewError(kb.ErrCodeNotFound, "stats", fmt.Sprintf("section %q not found", opts.Section))
		}
		result := sectionStats(s)
		if formatter.IsJSON() {
			return formatter.Success(result)
		}
		return outputSectionStatsText(cmd.OutOrStdout(), result)
	})
}

func sectionStats(s *kb.Section) SectionStatsResult {
	result := SectionStatsResult{
		Section: stats.SectionSummary(s),
		Topics:  make([]TopicStats, 0, len(s.Topics)),
	}
	for ti := range s.Topics {
		t := &s.Topics[ti]
		row := TopicStats{
			ID:        t.ID,
			Title:     t.Title,
			Status:    t.Status,
			Accuracy:  stats.TopicAccuracy(t),
			Questions: make([]stats.Question, 0, len(t.Questions)),
		}
		for qi := range t.Questions {
			row.Questions = append(row.Questions, stats.QuestionSummary(&t.Questions[qi]))
		}
		result.Topics = append(result.Topics, row)
	}
	return result
}

func outputStatsText(w io.Writer, result StatsResult) error {
	g := result.Global
	fmt.Fprintf(w, "Sections: %d  Topics: %d  Done: %d  Questions: %d\n", g.Sections, g.Topics, g.Done, g.Questions)
	fmt.Fprintf(w, "Attempts: %d  Correct: %d  Accuracy: %s\n", g.Attempts, g.Correct, g.Accuracy)
	if len(result.Sections) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSECTION\tDONE\tPROGRESS\tAVG SCORE")
	for _, s := range result.Sections {
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%d%%\t%s\n", s.ID, s.Title, s.Done, s.Topics, s.Progress, s.AvgScore)
	}
	return tw.Flush()
}

func outputSectionStatsText(w io.Writer, result SectionStatsResult) error {
	s := result.Section
	fmt.Fprintf(w, "%s: %d/%d topics done (%d%%), avg score %s\n", s.Title, s.Done, s.Topics, s.Progress, s.AvgScore)
	for _, t := range result.Topics {
		fmt.Fprintf(w, "\n%s [%s] accuracy %s\n", t.Title, t.Status, t.Accuracy)
		for _, q := range t.Questions {
			fmt.Fprintf(w, "  %s: %d attempts, %s %s\n", q.ID, q.Attempts, q.Accuracy, recentMarks(q.Recent))
		}
	}
	return nil
}

// recentMarks renders attempts as a row of + (correct) and - (wrong).
func recentMarks(attempts []kb.Attempt) string {
	marks := make([]byte, 0, len(attempts))
	for _, a := range attempts {
		if a.Correct {
			marks = append(marks, '+')
		} else {
			marks = append(marks, '-')
		}
	}
	return "[" + string(marks) + "]"
}
