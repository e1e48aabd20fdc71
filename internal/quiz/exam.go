package quiz

import (
	"fmt"

	"github.com/Maxsatbek/my-home/internal/kb"
)

// State is the lifecycle state of an Exam.
type State int

const (
	StateSetup State = iota
	StateInProgress
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateSetup:
		return "setup"
	case StateInProgress:
		return "in_progress"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// DefaultExamCount is the question count used when none is configured.
const DefaultExamCount = 10

// ExamCounts are the counts offered by the setup screen. Any positive count
// is accepted by Start.
var ExamCounts = []int{5, 10, 15, 20}

// ExamConfig selects the question pool of an exam.
type ExamConfig struct {
	// SectionID restricts the pool to one section. Empty means all sections.
	SectionID string
	// Count is the desired number of questions.
	Count int
}

// Slot is a read-only view of one exam question.
type Slot struct {
	Index        int
	Total        int
	SectionTitle string
	TopicTitle   string
	QuestionID   string
	Text         string
	Options      kb.Options // display order
	Revealed     bool
	Answer       int // display index answered, -1 while unrevealed

	// CorrectDisplay and Explanation are filled once the slot is revealed.
	CorrectDisplay int
	Explanation    string
}

type examSlot struct {
	sectionID, topicID string
	sectionTitle       string
	topicTitle         string
	question           kb.Question // copy taken at start
	mapping            Mapping
	answer             int
	revealed           bool
}

// Exam is the multi-question session. It moves linearly through
// setup, in progress and finished; a cancelled exam returns to setup.
//
// Answers are recorded into the canonical question in the Database the exam
// was created with, resolved by ID at answer time.
type Exam struct {
	db    *kb.Database
	src   Source
	clock kb.Clock

	state   State
	slots   []examSlot
	current int
	score   int
}

// NewExam returns an exam in setup over db.
func NewExam(db *kb.Database, src Source, clock kb.Clock) *Exam {
	return &Exam{db: db, src: src, clock: clock, state: StateSetup}
}

// State returns the current lifecycle state.
func (e *Exam) State() State { return e.state }

// Len returns the number of selected questions (0 in setup).
func (e *Exam) Len() int { return len(e.slots) }

// Position returns the current slot index.
func (e *Exam) Position() int { return e.current }

// Score returns the running count of correct answers.
func (e *Exam) Score() int { return e.score }

type poolEntry struct {
	section *kb.Section
	topic   *kb.Topic
	index   int
}

func (e *Exam) pool(sectionID string) []poolEntry {
	var pool []poolEntry
	for si := range e.db.Sections {
		s := &e.db.Sections[si]
		if sectionID != "" && s.ID != sectionID {
			continue
		}
		for ti := range s.Topics {
			t := &s.Topics[ti]
			for qi := range t.Questions {
				pool = append(pool, poolEntry{section: s, topic: t, index: qi})
			}
		}
	}
	return pool
}

// Start collects the pool, shuffles it and selects min(Count, len(pool))
// questions, each with its own display mapping.
//
// Start fails with NO_QUESTIONS_AVAILABLE when the pool is empty and with
// INVALID_PRECONDITION when the exam is not in setup or Count is not
// positive. On failure the exam stays in setup.
func (e *Exam) Start(cfg ExamConfig) error {
	const op = "exam.start"
	if e.state != StateSetup {
		return kb.NewError(kb.ErrCodeInvalidPrecondition, op, "exam already "+e.state.String())
	}
	if cfg.Count <= 0 {
		return kb.NewError(kb.ErrCodeInvalidPrecondition, op, fmt.Sprintf("question count must be positive, got %d", cfg.Count))
	}

	pool := e.pool(cfg.SectionID)
	if len(pool) == 0 {
		msg := "no questions in the knowledge base"
		if cfg.SectionID != "" {
			msg = fmt.Sprintf("no questions in section %q", cfg.SectionID)
		}
		return kb.NewError(kb.ErrCodeNoQuestionsAvailable, op, msg)
	}

	Shuffle(e.src, pool)
	pool = pool[:min(cfg.Count, len(pool))]

	slots := make([]examSlot, 0, len(pool))
	for _, p := range pool {
		q := p.topic.Questions[p.index]
		m, err := NewMapping(&q, e.src)
		if err != nil {
			return kb.WrapError(kb.ErrCodeInvalidPrecondition, op, fmt.Sprintf("question %q", q.ID), err)
		}
		slots = append(slots, examSlot{
			sectionID:    p.section.ID,
			topicID:      p.topic.ID,
			sectionTitle: p.section.Title,
			topicTitle:   p.topic.Title,
			question:     q,
			mapping:      m,
			answer:       -1,
		})
	}

	e.slots = slots
	e.current = 0
	e.score = 0
	e.state = StateInProgress
	return nil
}

func (e *Exam) requireInProgress(op string) error {
	if e.state != StateInProgress {
		return kb.NewError(kb.ErrCodeInvalidPrecondition, op, "exam is "+e.state.String())
	}
	return nil
}

// Current returns the active slot.
func (e *Exam) Current() (Slot, error) {
	if err := e.requireInProgress("exam.current"); err != nil {
		return Slot{}, err
	}
	return e.slotView(e.current), nil
}

// Mapping returns the display mapping of the active slot. It must only be
// called while the exam is in progress.
func (e *Exam) Mapping() Mapping { return e.slots[e.current].mapping }

func (e *Exam) slotView(i int) Slot {
	s := &e.slots[i]
	v := Slot{
		Index:          i,
		Total:          len(e.slots),
		SectionTitle:   s.sectionTitle,
		TopicTitle:     s.topicTitle,
		QuestionID:     s.question.ID,
		Text:           s.question.Text,
		Options:        s.mapping.Options(&s.question),
		Revealed:       s.revealed,
		Answer:         s.answer,
		CorrectDisplay: -1,
	}
	if s.revealed {
		v.CorrectDisplay = s.mapping.CorrectDisplay()
		v.Explanation = s.question.Explanation
	}
	return v
}

// Answer reveals the active slot with displayIdx, updates the score and
// appends one attempt to the canonical question's history. If the question
// was deleted from the database since Start, the answer is scored but no
// history is written.
func (e *Exam) Answer(displayIdx int) (Outcome, error) {
	const op = "exam.answer"
	if err := e.requireInProgress(op); err != nil {
		return Outcome{}, err
	}
	if err := checkDisplayIndex(op, displayIdx); err != nil {
		return Outcome{}, err
	}
	s := &e.slots[e.current]
	if s.revealed {
		return Outcome{}, kb.NewError(kb.ErrCodeInvalidPrecondition, op, "question already answered")
	}

	correct := s.mapping.IsCorrect(displayIdx)
	today := kb.Today(e.clock)
	attempt := kb.Attempt{Date: today, Correct: correct}
	if t := e.db.Topic(s.sectionID, s.topicID); t != nil {
		if q := t.Question(s.question.ID); q != nil {
			attempt = q.Record(today, correct)
		}
	}

	s.answer = displayIdx
	s.revealed = true
	if correct {
		e.score++
	}
	return Outcome{
		Correct:        correct,
		CorrectDisplay: s.mapping.CorrectDisplay(),
		Explanation:    s.question.Explanation,
		Attempt:        attempt,
	}, nil
}

// Next advances to the following slot. The active slot must be revealed and
// must not be the last one.
func (e *Exam) Next() error {
	const op = "exam.next"
	if err := e.requireInProgress(op); err != nil {
		return err
	}
	if !e.slots[e.current].revealed {
		return kb.NewError(kb.ErrCodeInvalidPrecondition, op, "answer the current question first")
	}
	if e.current == len(e.slots)-1 {
		return kb.NewError(kb.ErrCodeInvalidPrecondition, op, "already at the last question")
	}
	e.current++
	return nil
}

// Prev moves back one slot. Revealed slots keep their answer.
func (e *Exam) Prev() error {
	const op = "exam.prev"
	if err := e.requireInProgress(op); err != nil {
		return err
	}
	if e.current == 0 {
		return kb.NewError(kb.ErrCodeInvalidPrecondition, op, "already at the first question")
	}
	e.current--
	return nil
}

// Finish ends the exam and returns its result. The active slot must be
// revealed; unanswered slots elsewhere count as wrong.
func (e *Exam) Finish() (Result, error) {
	const op = "exam.finish"
	if err := e.requireInProgress(op); err != nil {
		return Result{}, err
	}
	if !e.slots[e.current].revealed {
		return Result{}, kb.NewError(kb.ErrCodeInvalidPrecondition, op, "answer the current question first")
	}
	e.state = StateFinished
	return e.Result()
}

// Cancel discards the running exam and returns it to setup. Attempts already
// recorded stay recorded.
func (e *Exam) Cancel() error {
	if err := e.requireInProgress("exam.cancel"); err != nil {
		return err
	}
	e.slots = nil
	e.current = 0
	e.score = 0
	e.state = StateSetup
	return nil
}

// Result returns the final score. Only available once finished.
func (e *Exam) Result() (Result, error) {
	if e.state != StateFinished {
		return Result{}, kb.NewError(kb.ErrCodeInvalidPrecondition, "exam.result", "exam is "+e.state.String())
	}
	return NewResult(e.score, len(e.slots)), nil
}

// Grade buckets an exam percentage.
type Grade string

const (
	GradeExcellent Grade = "excellent"
	GradeGood      Grade = "good"
	GradePoor      Grade = "poor"
)

// GradeFor returns the grade of a percentage: excellent from 80, good from 50.
func GradeFor(percent int) Grade {
	switch {
	case percent >= 80:
		return GradeExcellent
	case percent >= 50:
		return GradeGood
	default:
		return GradePoor
	}
}

// Result is the outcome of a finished exam.
type Result struct {
	Score   int   `json:"score"`
	Total   int   `json:"total"`
	Percent int   `json:"percent"`
	Grade   Grade `json:"grade"`
}

// NewResult computes the percentage and grade of score out of total.
func NewResult(score, total int) Result {
	r := Result{Score: score, Total: total}
	if total > 0 {
		r.Percent = kb.RoundPercent(score, total)
	}
	r.Grade = GradeFor(r.Percent)
	return r
}
