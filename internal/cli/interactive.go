package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mitchellh/go-wordwrap"

	"github.com/Maxsatbek/my-home/internal/kb"
	"github.com/Maxsatbek/my-home/internal/quiz"
)

// wrapWidth is the column question text and explanations are wrapped at.
const wrapWidth = 76

// keyReader reads one command key per input line.
type keyReader struct {
	sc *bufio.Scanner
}

func newKeyReader(r io.Reader) *keyReader {
	return &keyReader{sc: bufio.NewScanner(r)}
}

// next returns the next non-empty line, lower-cased and trimmed. ok is
// false at end of input.
func (k *keyReader) next() (key string, ok bool) {
	for k.sc.Scan() {
		key = strings.ToLower(strings.TrimSpace(k.sc.Text()))
		if key != "" {
			return key, true
		}
	}
	return "", false
}

// letterIndex maps "a".."d" to a display index.
func letterIndex(key string) (int, bool) {
	if len(key) != 1 || key[0] < 'a' || key[0] >= 'a'+kb.OptionCount {
		return 0, false
	}
	return int(key[0] - 'a'), true
}

// printQuestion writes the question text and its options in display order.
// Once revealed, the correct option is marked with * and a wrong choice with x.
func printQuestion(w io.Writer, header, text string, options kb.Options, revealed bool, chosen, correct int) {
	fmt.Fprintf(w, "\n%s\n%s\n", header, wordwrap.WrapString(text, wrapWidth))
	for i, opt := range options {
		mark := " "
		if revealed {
			switch i {
			case correct:
				mark = "*"
			case chosen:
				mark = "x"
			}
		}
		fmt.Fprintf(w, " %s %s) %s\n", mark, quiz.Letter(i), opt)
	}
}

func printOutcome(w io.Writer, out quiz.Outcome) {
	if out.Correct {
		fmt.Fprintln(w, "Correct!")
	} else {
		fmt.Fprintf(w, "Wrong, the answer is %s.\n", quiz.Letter(out.CorrectDisplay))
	}
	if out.Explanation != "" {
		fmt.Fprintln(w, wordwrap.WrapString(out.Explanation, wrapWidth))
	}
}
