package kb

import "slices"

// Section returns the section with the given id, or nil.
func (db *Database) Section(id string) *Section {
	for i := range db.Sections {
		if db.Sections[i].ID == id {
			return &db.Sections[i]
		}
	}
	return nil
}

// Topic returns the topic with topicID inside section sectionID, or nil.
func (db *Database) Topic(sectionID, topicID string) *Topic {
	s := db.Section(sectionID)
	if s == nil {
		return nil
	}
	return s.Topic(topicID)
}

// FindTopic scans every section for a topic id. Topic ids are only unique
// per section, so the first match in section order wins.
func (db *Database) FindTopic(topicID string) (*Section, *Topic) {
	for i := range db.Sections {
		if t := db.Sections[i].Topic(topicID); t != nil {
			return &db.Sections[i], t
		}
	}
	return nil, nil
}

// Topic returns the topic with the given id, or nil.
func (s *Section) Topic(id string) *Topic {
	for i := range s.Topics {
		if s.Topics[i].ID == id {
			return &s.Topics[i]
		}
	}
	return nil
}

// Question returns the question with the given id, or nil.
func (t *Topic) Question(id string) *Question {
	for i := range t.Questions {
		if t.Questions[i].ID == id {
			return &t.Questions[i]
		}
	}
	return nil
}

// Link returns the link with the given id, or nil.
func (t *Topic) Link(id string) *Link {
	for i := range t.Links {
		if t.Links[i].ID == id {
			return &t.Links[i]
		}
	}
	return nil
}

// AddSection creates a section from e and appends it.
func (db *Database) AddSection(ids IDGenerator, e SectionEdit) (*Section, error) {
	s := Section{ID: ids.NewID(), Topics: []Topic{}}
	if err := e.Apply(&s); err != nil {
		return nil, err
	}
	db.Sections = append(db.Sections, s)
	return &db.Sections[len(db.Sections)-1], nil
}

// NewTopic returns a topic with the defaults of a freshly created one:
// learning, medium priority, difficulty 1 and empty collections.
func NewTopic(id string) Topic {
	return Topic{
		ID:         id,
		Status:     StatusLearning,
		Priority:   PriorityMedium,
		Difficulty: MinDifficulty,
		Tags:       []string{},
		Links:      []Link{},
		Questions:  []Question{},
	}
}

// AddTopic creates a topic from e inside the given section.
func (db *Database) AddTopic(ids IDGenerator, sectionID string, e TopicEdit) (*Topic, error) {
	s := db.Section(sectionID)
	if s == nil {
		return nil, notFound("topic.add", "section", sectionID)
	}
	if !e.Title.Set {
		return nil, invalidEdit("topic.add", "title is required")
	}
	t := NewTopic(ids.NewID())
	if err := e.Apply(&t); err != nil {
		return nil, err
	}
	s.Topics = append(s.Topics, t)
	return &s.Topics[len(s.Topics)-1], nil
}

// AddQuestion creates a question from e inside the given topic. The edit
// must supply text and all options.
func (db *Database) AddQuestion(ids IDGenerator, sectionID, topicID string, e QuestionEdit) (*Question, error) {
	t := db.Topic(sectionID, topicID)
	if t == nil {
		return nil, notFound("question.add", "topic", topicID)
	}
	q := Question{ID: ids.NewID(), History: []Attempt{}}
	if err := e.Apply(&q); err != nil {
		return nil, err
	}
	t.Questions = append(t.Questions, q)
	return &t.Questions[len(t.Questions)-1], nil
}

// AddLink creates a link from e inside the given topic.
func (db *Database) AddLink(ids IDGenerator, sectionID, topicID string, e LinkEdit) (*Link, error) {
	t := db.Topic(sectionID, topicID)
	if t == nil {
		return nil, notFound("link.add", "topic", topicID)
	}
	l := Link{ID: ids.NewID()}
	if err := e.Apply(&l); err != nil {
		return nil, err
	}
	t.Links = append(t.Links, l)
	return &t.Links[len(t.Links)-1], nil
}

// DeleteSection removes a section with all of its topics.
func (db *Database) DeleteSection(id string) error {
	i := slices.IndexFunc(db.Sections, func(s Section) bool { return s.ID == id })
	if i < 0 {
		return notFound("section.delete", "section", id)
	}
	db.Sections = slices.Delete(db.Sections, i, i+1)
	return nil
}

// DeleteTopic removes a topic with its links and questions.
func (db *Database) DeleteTopic(sectionID, topicID string) error {
	s := db.Section(sectionID)
	if s == nil {
		return notFound("topic.delete", "section", sectionID)
	}
	i := slices.IndexFunc(s.Topics, func(t Topic) bool { return t.ID == topicID })
	if i < 0 {
		return notFound("topic.delete", "topic", topicID)
	}
	s.Topics = slices.Delete(s.Topics, i, i+1)
	return nil
}

// DeleteQuestion removes a question together with its attempt history.
func (db *Database) DeleteQuestion(sectionID, topicID, questionID string) error {
	t := db.Topic(sectionID, topicID)
	if t == nil {
		return notFound("question.delete", "topic", topicID)
	}
	i := slices.IndexFunc(t.Questions, func(q Question) bool { return q.ID == questionID })
	if i < 0 {
		return notFound("question.delete", "question", questionID)
	}
	t.Questions = slices.Delete(t.Questions, i, i+1)
	return nil
}

// DeleteLink removes a link from a topic.
func (db *Database) DeleteLink(sectionID, topicID, linkID string) error {
	t := db.Topic(sectionID, topicID)
	if t == nil {
		return notFound("link.delete", "topic", topicID)
	}
	i := slices.IndexFunc(t.Links, func(l Link) bool { return l.ID == linkID })
	if i < 0 {
		return notFound("link.delete", "link", linkID)
	}
	t.Links = slices.Delete(t.Links, i, i+1)
	return nil
}
