// Package review selects topics that are due for another pass.
package review

import (
	"slices"
	"time"

	"github.com/Maxsatbek/my-home/internal/kb"
)

// Item is one due topic together with its owning section.
type Item struct {
	Section *kb.Section
	Topic   *kb.Topic
}

// Interval returns the review interval in days: override when positive,
// otherwise the database setting (which itself falls back to
// kb.DefaultSpacedRepetitionDays).
func Interval(settings kb.Settings, override int) int {
	if override > 0 {
		return override
	}
	return settings.IntervalDays()
}

// IsDue reports whether topic needs review at now. A topic is due when it is
// not done, when its last review is strictly older than intervalDays before
// now, or when it is flagged difficult. A done topic without a review date
// is never due.
func IsDue(topic *kb.Topic, intervalDays int, now time.Time) bool {
	if topic.Status != kb.StatusDone || topic.IsDifficult {
		return true
	}
	if topic.LastReview == nil || topic.LastReview.IsZero() {
		return false
	}
	cutoff := now.AddDate(0, 0, -intervalDays)
	return topic.LastReview.Time().Before(cutoff)
}

// DueForReview lists the due topics of db ordered by last review, oldest
// first. Topics without a review date sort as the epoch. Ties keep section
// and topic order.
func DueForReview(db *kb.Database, intervalDays int, now time.Time) []Item {
	var items []Item
	for si := range db.Sections {
		s := &db.Sections[si]
		for ti := range s.Topics {
			t := &s.Topics[ti]
			if IsDue(t, intervalDays, now) {
				items = append(items, Item{Section: s, Topic: t})
			}
		}
	}
	slices.SortStableFunc(items, func(a, b Item) int {
		return reviewKey(a.Topic).Compare(reviewKey(b.Topic))
	})
	return items
}

var epoch = time.Unix(0, 0).UTC()

func reviewKey(t *kb.Topic) time.Time {
	if t.LastReview == nil || t.LastReview.IsZero() {
		return epoch
	}
	return t.LastReview.Time()
}

// MarkReviewed stamps topic as reviewed today. A learning topic moves to
// review; review and done topics keep their status, so a done topic waits
// out the interval again.
func MarkReviewed(topic *kb.Topic, today kb.Date) {
	topic.LastReview = kb.DatePtr(today)
	if topic.Status == kb.StatusLearning {
		topic.Status = kb.StatusReview
	}
}

// ToggleDifficult flips the manual difficulty flag and returns the new value.
func ToggleDifficult(topic *kb.Topic) bool {
	topic.IsDifficult = !topic.IsDifficult
	return topic.IsDifficult
}
