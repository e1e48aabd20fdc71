package quiz

import (
	"fmt"

	"github.com/Maxsatbek/my-home/internal/kb"
)

// Outcome is the result of committing one answer.
type Outcome struct {
	Correct        bool
	CorrectDisplay int
	Explanation    string
	Attempt        kb.Attempt
}

// Card is a read-only view of one rendered question.
type Card struct {
	Index      int
	QuestionID string
	Text       string
	Options    kb.Options // display order
	Locked     bool
	Chosen     int // display index chosen, -1 while unlocked

	// CorrectDisplay and Explanation are filled once the card is locked.
	CorrectDisplay int
	Explanation    string
}

type sheetCard struct {
	question *kb.Question
	mapping  Mapping
	locked   bool
	chosen   int
}

// Sheet is the inline self-test of one topic. Each question keeps its own
// mapping for the lifetime of the sheet; building a new Sheet reshuffles.
type Sheet struct {
	cards []sheetCard
	clock kb.Clock
}

// NewSheet renders every question of topic with a fresh shuffle. The sheet
// holds pointers into topic.Questions; see the package concurrency note.
func NewSheet(topic *kb.Topic, src Source, clock kb.Clock) (*Sheet, error) {
	s := &Sheet{
		cards: make([]sheetCard, 0, len(topic.Questions)),
		clock: clock,
	}
	for i := range topic.Questions {
		q := &topic.Questions[i]
		m, err := NewMapping(q, src)
		if err != nil {
			return nil, fmt.Errorf("question %q: %w", q.ID, err)
		}
		s.cards = append(s.cards, sheetCard{question: q, mapping: m, chosen: -1})
	}
	return s, nil
}

// Len returns the number of rendered questions.
func (s *Sheet) Len() int { return len(s.cards) }

// Card returns the view of card i.
func (s *Sheet) Card(i int) (Card, error) {
	if i < 0 || i >= len(s.cards) {
		return Card{}, kb.NewError(kb.ErrCodeInvalidPrecondition, "sheet.card", fmt.Sprintf("no question at index %d", i))
	}
	c := &s.cards[i]
	view := Card{
		Index:          i,
		QuestionID:     c.question.ID,
		Text:           c.question.Text,
		Options:        c.mapping.Options(c.question),
		Locked:         c.locked,
		Chosen:         c.chosen,
		CorrectDisplay: -1,
	}
	if c.locked {
		view.CorrectDisplay = c.mapping.CorrectDisplay()
		view.Explanation = c.question.Explanation
	}
	return view, nil
}

// Mapping returns the display mapping of card i. It panics when i is out of
// range; use Len to bound it.
func (s *Sheet) Mapping(i int) Mapping { return s.cards[i].mapping }

// Answer commits displayIdx for card i: judges it, appends one attempt dated
// today to the question's history and locks the card. A locked card rejects
// further answers with an INVALID_PRECONDITION error and writes nothing.
func (s *Sheet) Answer(i, displayIdx int) (Outcome, error) {
	const op = "sheet.answer"
	if i < 0 || i >= len(s.cards) {
		return Outcome{}, kb.NewError(kb.ErrCodeInvalidPrecondition, op, fmt.Sprintf("no question at index %d", i))
	}
	if err := checkDisplayIndex(op, displayIdx); err != nil {
		return Outcome{}, err
	}
	c := &s.cards[i]
	if c.locked {
		return Outcome{}, kb.NewError(kb.ErrCodeInvalidPrecondition, op, "question already answered")
	}

	correct := c.mapping.IsCorrect(displayIdx)
	attempt := c.question.Record(kb.Today(s.clock), correct)
	c.locked = true
	c.chosen = displayIdx

	return Outcome{
		Correct:        correct,
		CorrectDisplay: c.mapping.CorrectDisplay(),
		Explanation:    c.question.Explanation,
		Attempt:        attempt,
	}, nil
}

// Reset unlocks every card so the same rendering can be retried. Mappings
// and history are left alone.
func (s *Sheet) Reset() {
	for i := range s.cards {
		s.cards[i].locked = false
		s.cards[i].chosen = -1
	}
}
