package kb

import (
	"encoding/json"
	"fmt"
)

// OptionCount is the fixed number of answer options per question.
const OptionCount = 4

// Difficulty bounds for Topic.Difficulty.
const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// DefaultSpacedRepetitionDays is used when settings carry no usable interval.
const DefaultSpacedRepetitionDays = 3

// Database is the root aggregate persisted as one snapshot.
type Database struct {
	Sections []Section `json:"sections"`
	Settings Settings  `json:"settings"`
}

// Settings holds the review interval and display preferences.
// Display preferences are carried for round-tripping only.
type Settings struct {
	DarkMode             bool `json:"darkMode"`
	SidebarCollapsed     bool `json:"sidebarCollapsed"`
	SpacedRepetitionDays int  `json:"spacedRepetitionDays"`
}

// DefaultSettings returns the settings of a fresh database.
func DefaultSettings() Settings {
	return Settings{
		DarkMode:             true,
		SidebarCollapsed:     false,
		SpacedRepetitionDays: DefaultSpacedRepetitionDays,
	}
}

// Section is a top-level knowledge category.
type Section struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Icon        string  `json:"icon,omitempty"`
	Color       string  `json:"color,omitempty"`
	Topics      []Topic `json:"topics"`
}

// Topic is a single learning unit with notes, links and a question bank.
type Topic struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	Difficulty  int        `json:"difficulty"`
	IsDifficult bool       `json:"isDifficult"`
	Tags        []string   `json:"tags"`
	LastReview  *Date      `json:"lastReview,omitempty"`
	Deadline    *Date      `json:"deadline,omitempty"`
	Notes       string     `json:"notes"`
	Links       []Link     `json:"links"`
	Questions   []Question `json:"tests"`
}

// Link is an external resource attached to a topic.
type Link struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Note  string `json:"note,omitempty"`
}

// Question is a multiple-choice self-test item.
//
// Correct indexes Options in canonical (authored) order. The shuffle code in
// package quiz depends on this index-to-permutation contract.
type Question struct {
	ID          string    `json:"id"`
	Text        string    `json:"question"`
	Options     Options   `json:"options"`
	Correct     int       `json:"correct"`
	Explanation string    `json:"explanation,omitempty"`
	History     []Attempt `json:"history"`
}

// Attempt is one immutable answer record.
type Attempt struct {
	Date    Date `json:"date"`
	Correct bool `json:"correct"`
}

// Options are the answer texts in canonical order.
type Options [OptionCount]string

// UnmarshalJSON rejects arrays that do not hold exactly OptionCount strings.
func (o *Options) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("options: %w", err)
	}
	if len(raw) != OptionCount {
		return fmt.Errorf("options: want %d entries, got %d", OptionCount, len(raw))
	}
	copy(o[:], raw)
	return nil
}

// Record appends an attempt to the question's history and returns it.
// This is the only place history grows.
func (q *Question) Record(date Date, correct bool) Attempt {
	a := Attempt{Date: date, Correct: correct}
	q.History = append(q.History, a)
	return a
}

// NewDatabase returns an empty database with default settings.
func NewDatabase() *Database {
	return &Database{
		Sections: []Section{},
		Settings: DefaultSettings(),
	}
}

// IntervalDays returns the configured review interval, falling back to
// DefaultSpacedRepetitionDays when unset or not positive.
func (s Settings) IntervalDays() int {
	if s.SpacedRepetitionDays <= 0 {
		return DefaultSpacedRepetitionDays
	}
	return s.SpacedRepetitionDays
}
