package kb

import "fmt"

// Validate checks the structural invariants the core relies on:
//   - section ids are non-empty and unique in the database
//   - topic ids are non-empty and unique within their section
//   - question ids are unique within their topic
//   - statuses are known; priorities are known or empty
//   - difficulty is 0 (unset) or within [MinDifficulty, MaxDifficulty]
//   - every question's correct index addresses one of its options
//
// Option arity is enforced by the Options type itself.
func (db *Database) Validate() error {
	seenSections := make(map[string]bool, len(db.Sections))
	for si, s := range db.Sections {
		if s.ID == "" {
			return fmt.Errorf("sections[%d]: id is required", si)
		}
		if seenSections[s.ID] {
			return fmt.Errorf("sections[%d]: duplicate section id %q", si, s.ID)
		}
		seenSections[s.ID] = true

		seenTopics := make(map[string]bool, len(s.Topics))
		for ti, t := range s.Topics {
			path := fmt.Sprintf("sections[%d].topics[%d]", si, ti)
			if t.ID == "" {
				return fmt.Errorf("%s: id is required", path)
			}
			if seenTopics[t.ID] {
				return fmt.Errorf("%s: duplicate topic id %q", path, t.ID)
			}
			seenTopics[t.ID] = true
			if err := validateTopic(path, t); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateTopic(path string, t Topic) error {
	if !t.Status.IsValid() {
		return fmt.Errorf("%s: invalid status %q", path, t.Status)
	}
	if t.Priority != "" && !t.Priority.IsValid() {
		return fmt.Errorf("%s: invalid priority %q", path, t.Priority)
	}
	if t.Difficulty != 0 && (t.Difficulty < MinDifficulty || t.Difficulty > MaxDifficulty) {
		return fmt.Errorf("%s: difficulty %d out of range", path, t.Difficulty)
	}

	seen := make(map[string]bool, len(t.Questions))
	for qi, q := range t.Questions {
		if q.ID == "" {
			return fmt.Errorf("%s.tests[%d]: id is required", path, qi)
		}
		if seen[q.ID] {
			return fmt.Errorf("%s.tests[%d]: duplicate question id %q", path, qi, q.ID)
		}
		seen[q.ID] = true
		if q.Correct < 0 || q.Correct >= OptionCount {
			return fmt.Errorf("%s.tests[%d]: correct index %d out of range", path, qi, q.Correct)
		}
	}
	return nil
}
