package domain

import (
	"strings"
	"time"
)

// ResourceType classifies a study resource attached to a topic.
type ResourceType string

const (
	ResourcePDF     ResourceType = "pdf"
	ResourceVideo   ResourceType = "video"
	ResourceArticle ResourceType = "article"
	ResourceOther   ResourceType = "other"
)

// Resource is a study link attached to a topic.
type Resource struct {
	Title  string       `json:"title"`
	URL    string       `json:"url"`
	Type   ResourceType `json:"type"`
	IsFree bool         `json:"isFree"`
}

// Topic is a node in a subject's topic tree. ParentTopicID is empty for roots.
type Topic struct {
	ID            string
	Name          string
	Code          string
	Description   string
	SubjectID     string
	ParentTopicID string
	SubTopics     []string
	QuestionCount int
	Weightage     float64
	IsActive      bool
	Resources     []Resource
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewTopic creates a new active root Topic under subjectID.
func NewTopic(subjectID, name, code string) *Topic {
	now := time.Now()
	return &Topic{
		Name:      strings.TrimSpace(name),
		Code:      NormalizeCode(code),
		SubjectID: subjectID,
		SubTopics: []string{},
		IsActive:  true,
		Resources: []Resource{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsRoot reports whether the topic has no parent.
func (t *Topic) IsRoot() bool {
	return t.ParentTopicID == ""
}

// AddSubTopic appends childID to the topic's children if absent.
func (t *Topic) AddSubTopic(childID string) bool {
	var added bool
	t.SubTopics, added = appendUnique(t.SubTopics, childID)
	return added
}

// RemoveSubTopic drops childID from the topic's children.
func (t *Topic) RemoveSubTopic(childID string) bool {
	var removed bool
	t.SubTopics, removed = removeID(t.SubTopics, childID)
	return removed
}

// TopicFilter narrows topic listings. RootsOnly wins over ParentID.
type TopicFilter struct {
	SubjectID string
	ParentID  string
	RootsOnly bool
}
