package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/Maxsatbek/my-home/internal/config"
	"github.com/Maxsatbek/my-home/internal/kb"
	"github.com/Maxsatbek/my-home/internal/store"
	"github.com/Maxsatbek/my-home/internal/testutil"
	"github.com/Maxsatbek/my-home/internal/transfer"
)

var testNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

// lastSource always draws the largest value, which makes every
// Fisher-Yates pass the identity: options keep canonical order and exam
// pools keep database order.
type lastSource struct{}

func (lastSource) IntN(n int) int { return n - 1 }

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// fixtureDatabase: two sections, three topics, three questions, three
// attempts (two correct).
func fixtureDatabase() *kb.Database {
	db := kb.NewDatabase()
	db.Sections = []kb.Section{
		{
			ID: "go", Title: "Go", Description: "Language and runtime",
			Topics: []kb.Topic{
				{
					ID: "goroutines", Title: "Goroutines", Status: kb.StatusLearning, Priority: kb.PriorityHigh, Difficulty: 3,
					Tags:  []string{"concurrency"},
					Notes: "Goroutines are multiplexed onto OS threads by the runtime scheduler.",
					Links: []kb.Link{{ID: "l1", Title: "Tour", URL: "https://go.dev/tour"}},
					Questions: []kb.Question{
						{
							ID: "q1", Text: "Which keyword starts a goroutine?",
							Options: kb.Options{"go", "defer", "chan", "select"}, Correct: 0,
							Explanation: "The go statement starts a goroutine.",
							History: []kb.Attempt{
								{Date: kb.NewDate(2026, time.October, 10), Correct: true},
								{Date: kb.NewDate(2026, time.October, 11), Correct: false},
							},
						},
						{
							ID: "q2", Text: "What does an unbuffered send wait for?",
							Options: kb.Options{"A receiver", "A buffer slot", "A close", "Nothing"}, Correct: 0,
							History: []kb.Attempt{},
						},
					},
				},
				{
					ID: "maps", Title: "Maps", Status: kb.StatusDone, Priority: kb.PriorityMedium, Difficulty: 2,
					LastReview: kb.DatePtr(kb.NewDate(2026, time.October, 1)),
					Tags:       []string{"collections"},
					Links:      []kb.Link{},
					Questions: []kb.Question{{
						ID: "q3", Text: "Is map iteration order stable?",
						Options: kb.Options{"No", "Yes", "Only for ints", "Only when sorted"}, Correct: 0,
						History: []kb.Attempt{{Date: kb.NewDate(2026, time.October, 1), Correct: true}},
					}},
				},
			},
		},
		{
			ID: "sql", Title: "SQL",
			Topics: []kb.Topic{{
				ID: "joins", Title: "Joins", Status: kb.StatusDone, Priority: kb.PriorityLow, Difficulty: 1,
				LastReview: kb.DatePtr(kb.NewDate(2026, time.October, 15)),
				Tags:       []string{"queries"},
				Links:      []kb.Link{},
				Questions:  []kb.Question{},
			}},
		},
	}
	return db
}

// testEnv is a database file plus deterministic collaborators.
type testEnv struct {
	dbPath string
	clock  *testutil.FixedClock
}

// newTestEnv clears PKB_* variables and seeds a database file with seed
// (nothing is stored when seed is nil).
func newTestEnv(t *testing.T, seed *kb.Database) *testEnv {
	t.Helper()
	for _, k := range []string{
		config.EnvConfig, config.EnvDatabase, config.EnvDefaultsFile,
		config.EnvKeepSnapshots, config.EnvLogLevel, config.EnvIntervalDays,
	} {
		t.Setenv(k, "")
	}

	env := &testEnv{
		dbPath: filepath.Join(t.TempDir(), "pkb.db"),
		clock:  testutil.NewFixedClock(testNow),
	}
	if seed != nil {
		st, err := store.Open(env.dbPath, store.WithClock(env.clock))
		require.NoError(t, err)
		_, _, err = st.Save(context.Background(), seed)
		require.NoError(t, err)
		require.NoError(t, st.Close())
	}
	return env
}

// run executes the root command with --db and the given stdin. It returns
// stdout, stderr and the command error.
func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	opts := &RootOptions{
		Clock:  e.clock,
		Source: lastSource{},
		IDs:    testutil.NewSequenceIDs("new"),
	}
	cmd := newRootCommand(opts)
	out := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errBuf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--db", e.dbPath}, args...))

	err := cmd.Execute()
	return out.String(), errBuf.String(), err
}

// load reads the current snapshot back.
func (e *testEnv) load(t *testing.T) *kb.Database {
	t.Helper()
	st, err := store.Open(e.dbPath, store.WithClock(e.clock))
	require.NoError(t, err)
	defer st.Close()
	db, err := st.Load(context.Background())
	require.NoError(t, err)
	return db
}

func (e *testEnv) revisions(t *testing.T) []store.Revision {
	t.Helper()
	st, err := store.Open(e.dbPath, store.WithClock(e.clock))
	require.NoError(t, err)
	defer st.Close()
	revs, err := st.Revisions(context.Background())
	require.NoError(t, err)
	return revs
}

// requireSameDatabase compares two databases by their export encoding.
func requireSameDatabase(t *testing.T, want, got *kb.Database) {
	t.Helper()
	wantJSON, err := transfer.MarshalJSON(want)
	require.NoError(t, err)
	gotJSON, err := transfer.MarshalJSON(got)
	require.NoError(t, err)
	require.JSONEq(t, string(wantJSON), string(gotJSON))
}

// decodeData unmarshals the data payload of a JSON success response.
func decodeData(t *testing.T, out string, data any) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	require.Equal(t, "ok", resp.Status)
	require.NoError(t, json.Unmarshal(resp.Data, data))
}

// decodeError unmarshals a JSON error response.
func decodeError(t *testing.T, out string) CLIError {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	require.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	return *resp.Error
}
