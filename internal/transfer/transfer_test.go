package transfer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Maxsatbek/my-home/internal/kb"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func smallDatabase() *kb.Database {
	db := kb.NewDatabase()
	db.Sections = []kb.Section{{
		ID:    "s1",
		Title: "Go",
		Topics: []kb.Topic{{
			ID:          "t1",
			Title:       "Channels <sync>",
			Status:      kb.StatusLearning,
			Priority:    kb.PriorityHigh,
			Difficulty:  3,
			IsDifficult: true,
			Tags:        []string{"go"},
			LastReview:  kb.DatePtr(kb.NewDate(2025, 6, 10)),
			Notes:       "a & b",
			Links:       []kb.Link{{ID: "l1", Title: "Tour", URL: "https://go.dev/tour"}},
			Questions: []kb.Question{{
				ID:      "q1",
				Text:    "Close twice?",
				Options: kb.Options{"panic", "no-op", "error", "block"},
				Correct: 0,
				History: []kb.Attempt{{Date: kb.NewDate(2025, 6, 14), Correct: true}},
			}},
		}},
	}}
	return db
}

func richDatabase() *kb.Database {
	db := smallDatabase()
	db.Settings = kb.Settings{DarkMode: false, SidebarCollapsed: true, SpacedRepetitionDays: 7}
	db.Sections = append(db.Sections, kb.Section{
		ID: "s2", Title: "Базы данных", Description: "SQL: joins & indexes", Icon: "🗄", Color: "#3b82f6",
		Topics: []kb.Topic{
			{
				ID: "t1", Title: "Joins", Status: kb.StatusDone, Priority: kb.PriorityLow, Difficulty: 5,
				Tags:       []string{},
				LastReview: kb.DatePtr(kb.NewDate(2025, 1, 2)),
				Deadline:   kb.DatePtr(kb.NewDate(2025, 12, 31)),
				Notes:      "# Joins\n\n```sql\nSELECT 1;\n```\n- true\n- 'quoted'\n",
				Links:      []kb.Link{{ID: "l1", Title: "Docs", URL: "https://example.com/?a=1&b=2", Note: "yes"}},
				Questions: []kb.Question{
					{
						ID: "q1", Text: "Which join keeps unmatched left rows?",
						Options: kb.Options{"INNER", "LEFT", "CROSS", "null"}, Correct: 1,
						Explanation: "LEFT keeps them: 100%",
						History: []kb.Attempt{
							{Date: kb.NewDate(2025, 1, 1), Correct: false},
							{Date: kb.NewDate(2025, 1, 2), Correct: true},
						},
					},
					{ID: "q2", Text: "", Options: kb.Options{"1", "2", "3", "4"}, Correct: 3, History: []kb.Attempt{}},
				},
			},
			{ID: "t2", Title: "Bare", Status: kb.StatusReview},
		},
	})
	return db
}

func TestMarshalJSON_Golden(t *testing.T) {
	data, err := MarshalJSON(smallDatabase())
	require.NoError(t, err)

	g := newGoldie(t)
	g.Assert(t, "export_small", data)
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(f), func(t *testing.T) {
			want := richDatabase()

			var buf bytes.Buffer
			require.NoError(t, Export(&buf, want, f))

			got, err := Import(&buf, f)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestMarshalYAML_BlockStyle(t *testing.T) {
	data, err := MarshalYAML(smallDatabase())
	require.NoError(t, err)

	out := string(data)
	assert.True(t, strings.HasPrefix(out, "sections:\n  - id: s1\n"), out)
	assert.Contains(t, out, "title: Channels <sync>\n")
	assert.Contains(t, out, "spacedRepetitionDays: 3\n")
	assert.NotContains(t, out, "{")
}

func TestDecodeYAML_HandWritten(t *testing.T) {
	doc := `
sections:
  - id: s1
    title: Go
    topics:
      - id: t1
        title: Maps
        status: review
        priority: medium
        difficulty: 2
        isDifficult: false
        tags: [go]
        lastReview: 2025-06-01
        notes: ""
        links: []
        tests:
          - id: q1
            question: Are maps ordered?
            options: ["yes", "no", "sometimes", "only small ones"]
            correct: 1
            history:
              - {date: 2025-06-02, correct: true}
`
	db, err := DecodeYAML([]byte(doc))
	require.NoError(t, err)

	topic := db.Topic("s1", "t1")
	require.NotNil(t, topic)
	assert.Equal(t, "2025-06-01", topic.LastReview.String())
	q := topic.Question("q1")
	require.NotNil(t, q)
	assert.Equal(t, kb.Options{"yes", "no", "sometimes", "only small ones"}, q.Options)
	assert.Equal(t, []kb.Attempt{{Date: kb.NewDate(2025, 6, 2), Correct: true}}, q.History)
	assert.Equal(t, kb.DefaultSettings(), db.Settings)
}

func TestDecodeJSON_MissingSettingsUseDefaults(t *testing.T) {
	db, err := DecodeJSON([]byte(`{"sections": []}`))
	require.NoError(t, err)
	assert.Empty(t, db.Sections)
	assert.Equal(t, kb.DefaultSettings(), db.Settings)

	db, err = DecodeJSON([]byte(`{"sections": [], "settings": {"spacedRepetitionDays": 9}}`))
	require.NoError(t, err)
	assert.Equal(t, kb.Settings{DarkMode: true, SpacedRepetitionDays: 9}, db.Settings)
}

func TestDecodeJSON_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `sections: [`},
		{"array", `[]`},
		{"null", `null`},
		{"missing sections", `{"settings": {}}`},
		{"null sections", `{"sections": null}`},
		{"sections object", `{"sections": {}}`},
		{"sections of numbers", `{"sections": [1, 2]}`},
		{"three options", `{"sections": [{"id": "s", "title": "S", "topics": [{"id": "t", "title": "T", "status": "learning",
			"tests": [{"id": "q", "question": "?", "options": ["a", "b", "c"], "correct": 0, "history": []}]}]}]}`},
		{"bad status", `{"sections": [{"id": "s", "title": "S", "topics": [{"id": "t", "title": "T", "status": "bogus"}]}]}`},
		{"bad correct", `{"sections": [{"id": "s", "title": "S", "topics": [{"id": "t", "title": "T", "status": "done",
			"tests": [{"id": "q", "question": "?", "options": ["a", "b", "c", "d"], "correct": 4, "history": []}]}]}]}`},
		{"duplicate section", `{"sections": [{"id": "s", "title": "A", "topics": []}, {"id": "s", "title": "B", "topics": []}]}`},
		{"bad date", `{"sections": [{"id": "s", "title": "S", "topics": [{"id": "t", "title": "T", "status": "done", "lastReview": "yesterday"}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := DecodeJSON([]byte(tt.doc))
			require.Error(t, err)
			assert.Nil(t, db)
			assert.True(t, kb.IsCode(err, kb.ErrCodeMalformedImport), "got %v", err)
		})
	}
}

func TestDecodeYAML_Rejects(t *testing.T) {
	_, err := DecodeYAML([]byte("settings:\n  darkMode: true\n"))
	assert.True(t, kb.IsCode(err, kb.ErrCodeMalformedImport))

	_, err = DecodeYAML([]byte("sections: [\n"))
	assert.True(t, kb.IsCode(err, kb.ErrCodeMalformedImport))
}

func TestFormats(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)

	assert.Equal(t, FormatYAML, FormatForPath("backup.yaml"))
	assert.Equal(t, FormatJSON, FormatForPath("backup.json"))
	assert.Equal(t, FormatJSON, FormatForPath("backup"))
}

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "pkb2-export-2025-06-15.json", ExportFileName(kb.NewDate(2025, 6, 15), FormatJSON))
	assert.Equal(t, "pkb2-export-2025-06-15.yaml", ExportFileName(kb.NewDate(2025, 6, 15), FormatYAML))
}
