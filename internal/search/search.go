// Package search finds sections, topics, notes and questions by substring.
//
// Matching is case-insensitive under Unicode case folding and NFC
// normalization, so "STRASSE" finds "Straße" and composed and decomposed
// accents compare equal.
package search

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/Maxsatbek/my-home/internal/kb"
)

// Kind is the kind of matched entity.
type Kind string

const (
	KindSection  Kind = "section"
	KindTopic    Kind = "topic"
	KindNote     Kind = "note"
	KindQuestion Kind = "question"
)

// Note snippets show this many runes around the first match.
const (
	snippetBefore = 40
	snippetAfter  = 80
)

// Result is one search hit.
type Result struct {
	Kind       Kind   `json:"kind"`
	SectionID  string `json:"sectionId"`
	TopicID    string `json:"topicId,omitempty"`
	QuestionID string `json:"questionId,omitempty"`
	Title      string `json:"title"`
	Context    string `json:"context"`
}

// folded is a case-folded rendering of a text with, for every folded rune,
// the index of the source rune it came from.
type folded struct {
	runes  []rune
	source []int
	text   []rune
}

func fold(caser cases.Caser, s string) folded {
	text := []rune(norm.NFC.String(s))
	f := folded{text: text}
	for i, r := range text {
		for _, fr := range caser.String(string(r)) {
			f.runes = append(f.runes, fr)
			f.source = append(f.source, i)
		}
	}
	return f
}

// index returns the source rune index of the first occurrence of needle,
// or -1.
func (f folded) index(needle []rune) int {
	if len(needle) == 0 || len(needle) > len(f.runes) {
		return -1
	}
	for i := 0; i+len(needle) <= len(f.runes); i++ {
		if slices.Equal(f.runes[i:i+len(needle)], needle) {
			return f.source[i]
		}
	}
	return -1
}

type matcher struct {
	caser  cases.Caser
	needle []rune
}

func newMatcher(query string) *matcher {
	m := &matcher{caser: cases.Fold()}
	m.needle = fold(m.caser, strings.TrimSpace(query)).runes
	return m
}

func (m *matcher) find(s string) (folded, int) {
	f := fold(m.caser, s)
	return f, f.index(m.needle)
}

func (m *matcher) contains(s string) bool {
	_, i := m.find(s)
	return i >= 0
}

// Search returns every hit for query in database order. Within a topic the
// order is topic title, notes, then questions. A blank query finds nothing.
func Search(db *kb.Database, query string) []Result {
	m := newMatcher(query)
	if len(m.needle) == 0 {
		return nil
	}

	var results []Result
	for si := range db.Sections {
		s := &db.Sections[si]
		if m.contains(s.Title) {
			results = append(results, Result{Kind: KindSection, SectionID: s.ID, Title: s.Title, Context: s.Description})
		}
		for ti := range s.Topics {
			t := &s.Topics[ti]
			if m.contains(t.Title) {
				results = append(results, Result{Kind: KindTopic, SectionID: s.ID, TopicID: t.ID, Title: t.Title, Context: s.Title})
			}
			if f, i := m.find(t.Notes); i >= 0 {
				results = append(results, Result{Kind: KindNote, SectionID: s.ID, TopicID: t.ID, Title: t.Title, Context: snippet(f.text, i)})
			}
			for qi := range t.Questions {
				q := &t.Questions[qi]
				if m.contains(q.Text) {
					results = append(results, Result{
						Kind:       KindQuestion,
						SectionID:  s.ID,
						TopicID:    t.ID,
						QuestionID: q.ID,
						Title:      q.Text,
						Context:    t.Title + " · " + s.Title,
					})
				}
			}
		}
	}
	return results
}

func snippet(text []rune, at int) string {
	start := max(0, at-snippetBefore)
	end := min(len(text), at+snippetAfter)
	ctx := strings.ReplaceAll(string(text[start:end]), "\r\n", " ")
	ctx = strings.ReplaceAll(ctx, "\n", " ")
	return "..." + ctx + "..."
}

// ByTag returns every topic carrying tag, compared case-insensitively, in
// database order.
func ByTag(db *kb.Database, tag string) []Result {
	caser := cases.Fold()
	want := string(fold(caser, strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#"))).runes)
	if want == "" {
		return nil
	}

	var results []Result
	for si := range db.Sections {
		s := &db.Sections[si]
		for ti := range s.Topics {
			t := &s.Topics[ti]
			for _, have := range t.Tags {
				if string(fold(caser, have).runes) == want {
					results = append(results, Result{Kind: KindTopic, SectionID: s.ID, TopicID: t.ID, Title: t.Title, Context: s.Title})
					break
				}
			}
		}
	}
	return results
}

// Tags returns every distinct tag in first-seen order.
func Tags(db *kb.Database) []string {
	var out []string
	for _, s := range db.Sections {
		for _, t := range s.Topics {
			for _, tag := range t.Tags {
				if !slices.Contains(out, tag) {
					out = append(out, tag)
				}
			}
		}
	}
	return out
}
