package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Maxsatbek/my-home/internal/quiz"
)

// ExamOptions holds flags for the exam command.
type ExamOptions struct {
	*RootOptions
	Section string
	Count   int
}

// ExamResult is the output of an exam run. Result is nil when the exam
// was cancelled.
type ExamResult struct {
	State    string       `json:"state"`
	Answered int          `json:"answered"`
	Result   *quiz.Result `json:"result,omitempty"`
}

// NewExamCommand creates the exam command.
func NewExamCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExamOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exam",
		Short: "Take an exam over random questions",
		Long: `Draw random questions from the whole knowledge base (or one section)
and answer them one by one.

Input, one key per line:
  a-d   answer the current question (recorded in its history)
  n     next question (the current one must be answered)
  p     previous question
  f     finish and show the score (the current one must be answered)
  q     cancel; answers already given stay recorded

Examples:
  pkb exam
  pkb exam --section go --count 5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.report(cmd, runExam(opts, cmd))
		},
	}

	cmd.Flags().StringVar(&opts.Section, "section", "", "restrict the exam to one section by id")
	cmd.Flags().IntVar(&opts.Count, "count", quiz.DefaultExamCount, fmt.Sprintf("number of questions, usually one of %v", quiz.ExamCounts))

	return cmd
}

func runExam(opts *ExamOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	w := formatter.Prompter()
	keys := newKeyReader(cmd.InOrStdin())

	var result ExamResult
	err := opts.withWorkspace(true, func(_ context.Context, ws *workspace) error {
		exam := quiz.NewExam(ws.db, opts.source(), opts.clock())
		if err := exam.Start(quiz.ExamConfig{SectionID: opts.Section, Count: opts.Count}); err != nil {
			return err
		}
		formatter.VerboseLog("exam started with %d questions", exam.Len())

		for exam.State() == quiz.StateInProgress {
			slot, err := exam.Current()
			if err != nil {
				return err
			}
			header := fmt.Sprintf("[%d/%d] %s / %s", slot.Index+1, slot.Total, slot.SectionTitle, slot.TopicTitle)
			printQuestion(w, header, slot.Text, slot.Options, slot.Revealed, slot.Answer, slot.CorrectDisplay)
			if slot.Revealed && slot.Explanation != "" {
				fmt.Fprintln(w, slot.Explanation)
			}
			fmt.Fprint(w, "answer (a-d), n next, p prev, f finish, q cancel> ")

			key, ok := keys.next()
			if !ok {
				key = "q"
			}
			switch key {
			case "n":
				err = exam.Next()
			case "p":
				err = exam.Prev()
			case "f":
				var res quiz.Result
				if res, err = exam.Finish(); err == nil {
					result.Result = &res
				}
			case "q":
				fmt.Fprintln(w)
				err = exam.Cancel()
			default:
				idx, isLetter := letterIndex(key)
				if !isLetter {
					fmt.Fprintf(w, "Unknown input %q.\n", key)
					continue
				}
				var out quiz.Outcome
				if out, err = exam.Answer(idx); err == nil {
					printOutcome(w, out)
					result.Answered++
				}
			}
			if err != nil {
				// Out-of-order keys are reported and the exam goes on.
				fmt.Fprintf(w, "%v\n", err)
			}
		}
		result.State = exam.State().String()
		return nil
	})
	if err != nil {
		return err
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	out := cmd.OutOrStdout()
	if result.Result == nil {
		fmt.Fprintf(out, "Exam cancelled after %d answers\n", result.Answered)
		return nil
	}
	r := result.Result
	fmt.Fprintf(out, "\nScore: %d/%d (%d%%) %s\n", r.Score, r.Total, r.Percent, r.Grade)
	return nil
}
