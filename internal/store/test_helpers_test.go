package store

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/Maxsatbek/my-home/internal/kb"
	"github.com/Maxsatbek/my-home/internal/testutil"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

// createTestStore creates a new store in a temp directory for testing.
// Log output is captured in the returned buffer.
func createTestStore(t *testing.T, opts ...Option) (*Store, *testutil.FixedClock, *bytes.Buffer) {
	t.Helper()
	clock := testutil.NewFixedClock(t0)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	path := filepath.Join(t.TempDir(), "test.db")
	all := append([]Option{WithClock(clock), WithLogger(logger)}, opts...)
	s, err := Open(path, all...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, clock, &logs
}

// createTestDatabase returns a small valid database.
func createTestDatabase() *kb.Database {
	db := kb.NewDatabase()
	db.Sections = []kb.Section{{
		ID: "s1", Title: "Test", Topics: []kb.Topic{{
			ID: "t1", Title: "Topic", Status: kb.StatusLearning, Priority: kb.PriorityMedium, Difficulty: 1,
			Tags: []string{}, Links: []kb.Link{},
			Questions: []kb.Question{{
				ID: "q1", Text: "?", Options: kb.Options{"a", "b", "c", "d"}, Correct: 1,
				History: []kb.Attempt{},
			}},
		}},
	}}
	return db
}

func countSnapshots(t *testing.T, s *Store) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&n); err != nil {
		t.Fatalf("count snapshots: %v", err)
	}
	return n
}
