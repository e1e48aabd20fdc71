package kb

import (
	"fmt"
	"slices"
	"strings"
)

// Change is an optional field update. The zero value leaves the field as is.
type Change[T any] struct {
	Value T
	Set   bool
}

// Set returns a Change that assigns v.
func Set[T any](v T) Change[T] {
	return Change[T]{Value: v, Set: true}
}

func (c Change[T]) applyTo(dst *T) {
	if c.Set {
		*dst = c.Value
	}
}

// SectionEdit is a partial update of a Section.
type SectionEdit struct {
	Title       Change[string]
	Description Change[string]
	Icon        Change[string]
	Color       Change[string]
}

// Apply validates the edit against s and assigns it. On error s is unchanged.
func (e SectionEdit) Apply(s *Section) error {
	next := *s
	e.Title.applyTo(&next.Title)
	e.Description.applyTo(&next.Description)
	e.Icon.applyTo(&next.Icon)
	e.Color.applyTo(&next.Color)

	next.Title = strings.TrimSpace(next.Title)
	next.Description = strings.TrimSpace(next.Description)
	if next.Title == "" {
		return invalidEdit("section.edit", "title is required")
	}

	*s = next
	return nil
}

// TopicEdit is a partial update of a Topic. LastReview and Deadline accept
// Set(nil) to clear the date.
type TopicEdit struct {
	Title       Change[string]
	Status      Change[Status]
	Priority    Change[Priority]
	Difficulty  Change[int]
	IsDifficult Change[bool]
	Tags        Change[[]string]
	LastReview  Change[*Date]
	Deadline    Change[*Date]
	Notes       Change[string]
}

// Apply validates the edit against t and assigns it. On error t is unchanged.
// Title, priority and difficulty are checked only when the edit sets them, so
// a topic stored with those fields unset stays editable.
func (e TopicEdit) Apply(t *Topic) error {
	next := *t
	e.Title.applyTo(&next.Title)
	e.Status.applyTo(&next.Status)
	e.Priority.applyTo(&next.Priority)
	e.Difficulty.applyTo(&next.Difficulty)
	e.IsDifficult.applyTo(&next.IsDifficult)
	e.Notes.applyTo(&next.Notes)
	if e.Tags.Set {
		next.Tags = NormalizeTags(e.Tags.Value)
	}
	if e.LastReview.Set {
		next.LastReview = cloneDate(e.LastReview.Value)
	}
	if e.Deadline.Set {
		next.Deadline = cloneDate(e.Deadline.Value)
	}

	next.Title = strings.TrimSpace(next.Title)
	if e.Title.Set && next.Title == "" {
		return invalidEdit("topic.edit", "title is required")
	}
	if !next.Status.IsValid() {
		return invalidEdit("topic.edit", fmt.Sprintf("invalid status %q", next.Status))
	}
	if e.Priority.Set && !next.Priority.IsValid() {
		return invalidEdit("topic.edit", fmt.Sprintf("invalid priority %q", next.Priority))
	}
	if e.Difficulty.Set && (next.Difficulty < MinDifficulty || next.Difficulty > MaxDifficulty) {
		return invalidEdit("topic.edit", fmt.Sprintf("difficulty %d out of range [%d, %d]", next.Difficulty, MinDifficulty, MaxDifficulty))
	}

	*t = next
	return nil
}

// NormalizeTags trims tags, strips commas, drops empties and duplicates while
// keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.ReplaceAll(tag, ",", ""))
		if tag == "" || slices.Contains(out, tag) {
			continue
		}
		out = append(out, tag)
	}
	return out
}

// QuestionEdit is a partial update of a Question. History is never part of
// an edit.
type QuestionEdit struct {
	Text        Change[string]
	Options     Change[Options]
	Correct     Change[int]
	Explanation Change[string]
}

// Apply validates the edit against q and assigns it. On error q is unchanged.
func (e QuestionEdit) Apply(q *Question) error {
	next := *q
	e.Text.applyTo(&next.Text)
	e.Options.applyTo(&next.Options)
	e.Correct.applyTo(&next.Correct)
	e.Explanation.applyTo(&next.Explanation)

	next.Text = strings.TrimSpace(next.Text)
	next.Explanation = strings.TrimSpace(next.Explanation)
	if next.Text == "" {
		return invalidEdit("question.edit", "question text is required")
	}
	for i := range next.Options {
		next.Options[i] = strings.TrimSpace(next.Options[i])
		if next.Options[i] == "" {
			return invalidEdit("question.edit", fmt.Sprintf("option %c is required", 'A'+i))
		}
	}
	if next.Correct < 0 || next.Correct >= OptionCount {
		return invalidEdit("question.edit", fmt.Sprintf("correct index %d out of range [0, %d]", next.Correct, OptionCount-1))
	}

	*q = next
	return nil
}

// LinkEdit is a partial update of a Link.
type LinkEdit struct {
	Title Change[string]
	URL   Change[string]
	Note  Change[string]
}

// Apply validates the edit against l and assigns it. On error l is unchanged.
func (e LinkEdit) Apply(l *Link) error {
	next := *l
	e.Title.applyTo(&next.Title)
	e.URL.applyTo(&next.URL)
	e.Note.applyTo(&next.Note)

	next.Title = strings.TrimSpace(next.Title)
	next.URL = strings.TrimSpace(next.URL)
	next.Note = strings.TrimSpace(next.Note)
	if next.Title == "" || next.URL == "" {
		return invalidEdit("link.edit", "title and url are required")
	}

	*l = next
	return nil
}

func cloneDate(d *Date) *Date {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
