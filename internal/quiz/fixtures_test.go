package quiz

import (
	"time"

	"github.com/Maxsatbek/my-home/internal/kb"
	"github.com/Maxsatbek/my-home/internal/testutil"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func question(id string, correct int) kb.Question {
	return kb.Question{
		ID:          id,
		Text:        "Question " + id,
		Options:     kb.Options{id + "-a", id + "-b", id + "-c", id + "-d"},
		Correct:     correct,
		Explanation: "because " + id,
		History:     []kb.Attempt{},
	}
}

// twoSectionDatabase has three questions in section "s1" and one in "s2".
func twoSectionDatabase() *kb.Database {
	db := kb.NewDatabase()
	db.Sections = []kb.Section{
		{
			ID: "s1", Title: "Go",
			Topics: []kb.Topic{
				{ID: "t1", Title: "Channels", Status: kb.StatusLearning, Questions: []kb.Question{question("q1", 0), question("q2", 1)}},
				{ID: "t2", Title: "Maps", Status: kb.StatusDone, Questions: []kb.Question{question("q3", 3)}},
			},
		},
		{
			ID: "s2", Title: "SQL",
			Topics: []kb.Topic{
				{ID: "t1", Title: "Joins", Status: kb.StatusReview, Questions: []kb.Question{question("q4", 2)}},
			},
		},
	}
	return db
}

func historyOf(db *kb.Database, questionID string) []kb.Attempt {
	for _, s := range db.Sections {
		for _, t := range s.Topics {
			for _, q := range t.Questions {
				if q.ID == questionID {
					return q.History
				}
			}
		}
	}
	return nil
}

func totalAttempts(db *kb.Database) int {
	n := 0
	for _, s := range db.Sections {
		for _, t := range s.Topics {
			for _, q := range t.Questions {
				n += len(q.History)
			}
		}
	}
	return n
}

func newFixedClock() *testutil.FixedClock { return testutil.NewFixedClock(t0) }
