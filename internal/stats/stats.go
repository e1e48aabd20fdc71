// Package stats computes accuracy and progress views over a Database
// snapshot. Every function is pure: it reads the snapshot and never
// mutates it.
package stats

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/Maxsatbek/my-home/internal/kb"
)

// RecentAttempts is the number of attempts reported by QuestionSummary.
const RecentAttempts = 5

// Percent is a rounded percentage that may be undefined. Accuracy over zero
// attempts is undefined rather than 0.
type Percent struct {
	Value int
	Valid bool
}

// Undefined is the "no data" percentage.
var Undefined = Percent{}

// PercentOf returns round(100*part/total), or Undefined when total is 0.
func PercentOf(part, total int) Percent {
	if total <= 0 {
		return Undefined
	}
	return Percent{Value: kb.RoundPercent(part, total), Valid: true}
}

// String renders "67%" or "no data".
func (p Percent) String() string {
	if !p.Valid {
		return "no data"
	}
	return strconv.Itoa(p.Value) + "%"
}

// MarshalJSON encodes an undefined percentage as null.
func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(p.Value)), nil
}

// UnmarshalJSON accepts null or an integer.
func (p *Percent) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = Undefined
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Percent{Value: v, Valid: true}
	return nil
}

// tally counts attempts.
type tally struct {
	correct, total int
}

func (t *tally) addQuestion(q *kb.Question) {
	for _, a := range q.History {
		t.total++
		if a.Correct {
			t.correct++
		}
	}
}

func (t *tally) addTopic(topic *kb.Topic) {
	for i := range topic.Questions {
		t.addQuestion(&topic.Questions[i])
	}
}

func (t *tally) addSection(s *kb.Section) {
	for i := range s.Topics {
		t.addTopic(&s.Topics[i])
	}
}

func (t tally) percent() Percent { return PercentOf(t.correct, t.total) }

// Global is the database-wide summary.
type Global struct {
	Sections  int     `json:"sections"`
	Topics    int     `json:"topics"`
	Done      int     `json:"done"`
	Questions int     `json:"questions"`
	Attempts  int     `json:"attempts"`
	Correct   int     `json:"correct"`
	Accuracy  Percent `json:"accuracy"`
}

// GlobalStats summarizes the whole database.
func GlobalStats(db *kb.Database) Global {
	g := Global{Sections: len(db.Sections)}
	var t tally
	for si := range db.Sections {
		s := &db.Sections[si]
		for ti := range s.Topics {
			topic := &s.Topics[ti]
			g.Topics++
			if topic.Status == kb.StatusDone {
				g.Done++
			}
			g.Questions += len(topic.Questions)
			t.addTopic(topic)
		}
	}
	g.Attempts = t.total
	g.Correct = t.correct
	g.Accuracy = t.percent()
	return g
}

// SectionProgress returns the share of done topics, rounded. A section
// without topics has 0 progress.
func SectionProgress(s *kb.Section) int {
	if len(s.Topics) == 0 {
		return 0
	}
	done := 0
	for i := range s.Topics {
		if s.Topics[i].Status == kb.StatusDone {
			done++
		}
	}
	return kb.RoundPercent(done, len(s.Topics))
}

// SectionAvgScore returns the accuracy over every attempt in the section.
func SectionAvgScore(s *kb.Section) Percent {
	var t tally
	t.addSection(s)
	return t.percent()
}

// TopicAccuracy returns the accuracy over every attempt in the topic.
func TopicAccuracy(topic *kb.Topic) Percent {
	var t tally
	t.addTopic(topic)
	return t.percent()
}

// Section is the per-section summary row.
type Section struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Topics   int     `json:"topics"`
	Done     int     `json:"done"`
	Progress int     `json:"progress"`
	AvgScore Percent `json:"avgScore"`
}

// SectionStats summarizes every section in database order.
func SectionStats(db *kb.Database) []Section {
	out := make([]Section, 0, len(db.Sections))
	for i := range db.Sections {
		out = append(out, SectionSummary(&db.Sections[i]))
	}
	return out
}

// SectionSummary summarizes one section.
func SectionSummary(s *kb.Section) Section {
	done := 0
	for i := range s.Topics {
		if s.Topics[i].Status == kb.StatusDone {
			done++
		}
	}
	return Section{
		ID:       s.ID,
		Title:    s.Title,
		Topics:   len(s.Topics),
		Done:     done,
		Progress: SectionProgress(s),
		AvgScore: SectionAvgScore(s),
	}
}

// Question is the per-question footer: accuracy and the latest attempts.
type Question struct {
	ID       string       `json:"id"`
	Attempts int          `json:"attempts"`
	Accuracy Percent      `json:"accuracy"`
	Recent   []kb.Attempt `json:"recent"`
}

// QuestionSummary reports q's accuracy and its last RecentAttempts
// attempts, oldest first.
func QuestionSummary(q *kb.Question) Question {
	var t tally
	t.addQuestion(q)
	start := max(0, len(q.History)-RecentAttempts)
	recent := make([]kb.Attempt, len(q.History)-start)
	copy(recent, q.History[start:])
	return Question{
		ID:       q.ID,
		Attempts: t.total,
		Accuracy: t.percent(),
		Recent:   recent,
	}
}
