package domain

import (
	"strings"
	"time"
)

// Subject is a top-level exam subject owning an ordered list of topics.
type Subject struct {
	ID            string
	Name          string
	Code          string
	Description   string
	Syllabus      string
	IsCore        bool
	Topics        []string
	QuestionCount int
	Weightage     float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewSubject creates a new Subject instance
func NewSubject(name, code string) *Subject {
	now := time.Now()
	return &Subject{
		Name:      strings.TrimSpace(name),
		Code:      NormalizeCode(code),
		IsCore:    true,
		Topics:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddTopic appends topicID to the subject's topic list if absent.
func (s *Subject) AddTopic(topicID string) bool {
	var added bool
	s.Topics, added = appendUnique(s.Topics, topicID)
	return added
}

// RemoveTopic drops topicID from the subject's topic list.
func (s *Subject) RemoveTopic(topicID string) bool {
	var removed bool
	s.Topics, removed = removeID(s.Topics, topicID)
	return removed
}

// NormalizeCode trims and upper-cases subject and topic codes.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func appendUnique(ids []string, id string) ([]string, bool) {
	for _, existing := range ids {
		if existing == id {
			return ids, false
		}
	}
	return append(ids, id), true
}

func removeID(ids []string, id string) ([]string, bool) {
	out := make([]string, 0, len(ids))
	removed := false
	for _, existing := range ids {
		if existing == id {
			removed = true
			continue
		}
		out = append(out, existing)
	}
	return out, removed
}
