package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Maxsatbek/my-home/internal/kb"
	"github.com/Maxsatbek/my-home/internal/quiz"
	"github.com/Maxsatbek/my-home/internal/stats"
)

// QuizAnswer is one answer committed during a quiz.
type QuizAnswer struct {
	QuestionID string `json:"questionId"`
	Chosen     string `json:"chosen"`
	Correct    bool   `json:"correct"`
}

// QuizResult summarizes a quiz run.
type QuizResult struct {
	TopicID  string        `json:"topicId"`
	Total    int           `json:"total"`
	Answered int           `json:"answered"`
	Correct  int           `json:"correct"`
	Accuracy stats.Percent `json:"accuracy"`
	Answers  []QuizAnswer  `json:"answers"`
}

// NewQuizCommand creates the quiz command.
func NewQuizCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz <topic-id>",
		Short: "Self-test the questions of one topic",
		Long: `Run the questions of a topic in order, each with shuffled options.

Input, one key per line:
  a-d   answer the current question (recorded in its history)
  r     reset: unlock every question and start over with the same shuffle
  q     quit

Every answer is saved, including those given before a reset or quit.

Example:
  pkb quiz goroutines`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.report(cmd, runQuiz(rootOpts, cmd, args[0]))
		},
	}
	return cmd
}

func runQuiz(opts *RootOptions, cmd *cobra.Command, topicID string) error {
	formatter := opts.formatter(cmd)
	w := formatter.Prompter()
	keys := newKeyReader(cmd.InOrStdin())

	result := QuizResult{TopicID: topicID, Answers: []QuizAnswer{}}
	err := opts.withWorkspace(true, func(_ context.Context, ws *workspace) error {
		_, topic := ws.db.FindTopic(topicID)
		if topic == nil {
			return kb.NewError(kb.ErrCodeNotFound, "quiz", fmt.Sprintf("topic %q not found", topicID))
		}
		if len(topic.Questions) == 0 {
			return kb.NewError(kb.ErrCodeNoQuestionsAvailable, "quiz", fmt.Sprintf("topic %q has no questions", topicID))
		}
		sheet, err := quiz.NewSheet(topic, opts.source(), opts.clock())
		if err != nil {
			return err
		}
		result.Total = sheet.Len()

		for i := 0; i < sheet.Len(); {
			card, err := sheet.Card(i)
			if err != nil {
				return err
			}
			printQuestion(w, fmt.Sprintf("%s [%d/%d]", topic.Title, i+1, sheet.Len()),
				card.Text, card.Options, card.Locked, card.Chosen, card.CorrectDisplay)
			fmt.Fprint(w, "answer (a-d), r reset, q quit> ")

			key, ok := keys.next()
			if !ok || key == "q" {
				fmt.Fprintln(w)
				break
			}
			if key == "r" {
				sheet.Reset()
				i = 0
				fmt.Fprintln(w, "Reset.")
				continue
			}
			idx, ok := letterIndex(key)
			if !ok {
				fmt.Fprintf(w, "Unknown input %q.\n", key)
				continue
			}
			out, err := sheet.Answer(i, idx)
			if err != nil {
				return err
			}
			printOutcome(w, out)
			result.Answered++
			if out.Correct {
				result.Correct++
			}
			result.Answers = append(result.Answers, QuizAnswer{
				QuestionID: card.QuestionID,
				Chosen:     quiz.Letter(idx),
				Correct:    out.Correct,
			})
			i++
		}
		return nil
	})
	if err != nil {
		return err
	}

	result.Accuracy = stats.PercentOf(result.Correct, result.Answered)
	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nAnswered %d of %d, %d correct (%s)\n",
		result.Answered, result.Total, result.Correct, result.Accuracy)
	return nil
}
