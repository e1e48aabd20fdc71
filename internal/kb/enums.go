package kb

import "fmt"

// Status is the learning stage of a topic.
type Status string

const (
	StatusLearning Status = "learning"
	StatusReview   Status = "review"
	StatusDone     Status = "done"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusLearning, StatusReview, StatusDone}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusLearning, StatusReview, StatusDone:
		return true
	}
	return false
}

// ParseStatus converts a string to a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid status %q: must be one of %v", s, Statuses)
	}
	return st, nil
}

// Priority orders topics for study.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every valid priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// IsValid reports whether p is one of the known priorities.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority converts a string to a Priority.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid priority %q: must be one of %v", s, Priorities)
	}
	return p, nil
}
