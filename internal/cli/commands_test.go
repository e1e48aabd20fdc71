package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Maxsatbek/my-home/internal/kb"
	"github.com/Maxsatbek/my-home/internal/search"
)

func TestStats_Text(t *testing.T) {
	env := newTestEnv(t, fixtureDatabase())

	out, _, err := env.run(t, "", "stats")
	require.NoError(t, err)
	newGoldie(t).Assert(t, "stats_text", []byte(out))
}

func TestStats_SectionText(t *testing.T) {
	env := newTestEnv(t, fixtureDatabase())

	out, _, err := env.run(t, "", "stats", "--section", "go")
	require.NoError(t, err)
	newGoldie(t).Assert(t, "stats_section_text", []byte(out))
}

func TestStats_JSON(t *testing.T) {
	env := newTestEnv(t, fixtureDatabase())

	out, _, err := env.run(t, "", "--format", "json", "stats")
	require.NoError(t, err)

	var result StatsResult
	decodeData(t, out, &result)
	assert.Equal(t, 3, result.Global.Topics)
	assert.Equal(t, 67, result.Global.Accuracy.Value)
	require.Len(t, result.Sections, 2)
	assert.Equal(t, 50, result.Sections[0].Progress)
	assert.False(t, result.Sections[1].AvgScore.Valid)
}

func TestStats_UnknownSection(t *testing.T) {
	env := newTestEnv(t, fixtureDatabase())

	out, _, err := env.run(t, "", "--format", "json", "stats", "--section", "rust")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, IsReported(err))
	assert.Equal(t, ErrCodeNotFound, decodeError(t, out).Code)
}

func TestDue(t *testing.T) {
	env := newTestEnv(t, fixtureDatabase())

	out, _, err := env.run(t, "", "--format", "json", "due")
	require.NoError(t, err)
	var due DueResult
	decodeData(t, out, &due)
	assert.Equal(t, kb.DefaultSpacedRepetitionDays, due.IntervalDays)
	require.Len(t, due.Items, 2)
	assert.Equal(t, "goroutines", due.Items[0].TopicID) // never reviewed sorts first
	assert.Equal(t, "maps", due.Items[1].TopicID)

	out, _, err = env.run(t, "", "--format", "json", "due", "--days", "20")
	require.NoError(t, err)
	decodeData(t, out, &due)
	require.Len(t, due.Items, 1)
	assert.Equal(t, "goroutines", due.Items[0].TopicID)
}

func TestDue_Text(t *testing.T) {
	env := newTestEnv(t, fixtureDatabase())

	out, _, err := env.run(t, "", "due")
	require.NoError(t, err)
	assert.Contains(t, out, "2 topics due (interval 3 days)")
	assert.Contains(t, out, "never")
	assert.Contains(t, out, "2026-10-01 (2 weeks ago)")
}

func TestDue_NegativeDays(t *testing.T) {
	env := newTestEnv(t, fixtureDatabase())

	_, _, err := env.run(t, "", "due", "--days", "-1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReviewed(t *testing.T) {
	env := newTestEnv(t, fixtureDatabase())

	out, _, err := env.run(t, "", "--format", "json", "reviewed", "goroutines")
	require.NoError(t, err)
	var flags TopicFlags
	decodeData(t, out, &flags)
	assert.Equal(t, kb.StatusReview, flags.Status)
	require.NotNil(t, flags.LastReview)
	assert.Equal(t, "2026-10-16", flags.LastReview.String())

	_, topic := env.load(t).FindTopic("goroutines")
	require.NotNil(t, topic)
	assert.Equal(t, kb.StatusReview, topic.Status)
	assert.Equal(t, "2026-10-16", topic.LastReview.String())
}

func TestReviewed_DoneTopicLeavesDueList(t *testing.T) {
	env := newTestEnv(t, fixtureDatabase())

	_, _, err := env.run(t, "", "reviewed", "maps")
	require.NoError(t, err)

	_, topic := env.load(t).FindTopic("maps")
	require.NotNil(t, topic)
	assert.Equal(t, kb.StatusDone, topic.Status)
	assert.Equal(t, "2026-10-16", topic.LastReview.String())

	out, _, err := env.run(t, "", "--format", "json", "due")
	require.NoError(t, err)
	var due DueResult
	decodeData(t, out, &due)
	require.Len(t, due.Items, 1)
	assert.Equal(t, "goroutines", due.Items[0].TopicID)
}

func TestReviewed_UnknownTopic(t *testing.T) {
	env := newTestEnv(t, fixtureDatabase())

	_, _, err := env.run(t, "", "reviewed", "nope")
	require.Error(t, err)
	assert.True(t, kb.IsCode(err, kb.ErrCodeNotFound))
	assert.Len(t, env.revisions(t), 1)
}

func TestDifficult_Toggles(t *testing.T) {
	env := newTestEnv(t, fixtureDatabase())

	out, _, err := env.run(t, "", "difficult", "joins")
	require.NoError(t, err)
	assert.Contains(t, out, "Joins: status done")
	assert.Contains(t, out, "difficult")

	out, _, err = env.run(t, "", "--format", "json", "due")
	require.NoError(t, err)
	var due DueResult
	decodeData(t, out, &due)
	assert.Len(t, due.Items, 3)

	_, _, err = env.run(t, "", "difficult", "joins")
	require.NoError(t, err)
	_, topic := env.load(t).FindTopic("joins")
	assert.False(t, topic.IsDifficult)
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t, fixtureDatabase())

	out, _, err := env.run(t, "", "--format", "json", "search", "GOROUTINE")
	require.NoError(t, err)
	var result SearchResult
	decodeData(t, out, &result)
	require.Len(t, result.Results, 3)
	assert.Equal(t, search.KindTopic, result.Results[0].Kind)
	assert.Equal(t, search.KindNote, result.Results[1].Kind)
	assert.Equal(t, search.KindQuestion, result.Results[2].Kind)
	assert.Equal(t, "q1", result.Results[2].QuestionID)
	assert.Equal(t, "Goroutines · Go", result.Results[2].Context)
}

func TestSearch_Text(t *testing.T) {
	env := newTestEnv(t, fixtureDatabase())

	out, _, err := env.run(t, "", "search", "iteration")
	require.NoError(t, err)
	assert.Contains(t, out, "question Is map iteration order stable?  (go/maps/q3)")

	out, _, err = env.run(t, "", "search", "kubernetes")
	require.NoError(t, err)
	assert.Equal(t, "No matches\n", out)
}

func TestSearch_Tags(t *testing.T) {
	env := newTestEnv(t, fixtureDatabase())

	out, _, err := env.run(t, "", "--format", "json", "search", "--tag", "#Concurrency")
	require.NoError(t, err)
	var result SearchResult
	decodeData(t, out, &result)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "goroutines", result.Results[0].TopicID)

	out, _, err = env.run(t, "", "search", "--tags")
	require.NoError(t, err)
	assert.Equal(t, "concurrency\ncollections\nqueries\n", out)
}

func TestSearch_RequiresOneMode(t *testing.T) {
	env := newTestEnv(t, fixtureDatabase())

	_, _, err := env.run(t, "", "search")
	require.Error(t, err)
	_, _, err = env.run(t, "", "search", "go", "--tag", "x")
	require.Error(t, err)
}

func TestList(t *testing.T) {
	env := newTestEnv(t, fixtureDatabase())

	out, _, err := env.run(t, "", "list")
	require.NoError(t, err)
	assert.Equal(t, `go  Go
  goroutines  Goroutines [learning, high, 2 questions]
  maps  Maps [done, medium, 1 questions]
sql  SQL
  joins  Joins [done, low, 0 questions]
`, out)
}

func TestShow(t *testing.T) {
	env := newTestEnv(t, fixtureDatabase())

	out, _, err := env.run(t, "", "show", "goroutines")
	require.NoError(t, err)
	assert.Contains(t, out, "Go / Goroutines")
	assert.Contains(t, out, "status learning, priority high, difficulty 3")
	assert.Contains(t, out, "tags: [concurrency]")
	assert.Contains(t, out, "l1  Tour <https://go.dev/tour>")
	assert.Contains(t, out, "Questions (accuracy 50%):")
	assert.Contains(t, out, "q1  Which keyword starts a goroutine?  50% [+-]")

	out, _, err = env.run(t, "", "--format", "json", "show", "maps")
	require.NoError(t, err)
	var detail TopicDetail
	decodeData(t, out, &detail)
	assert.Equal(t, "go", detail.SectionID)
	assert.Equal(t, 100, detail.Accuracy.Value)
	require.Len(t, detail.Questions, 1)
	assert.Equal(t, 1, detail.Questions[0].Attempts)
}
