package dto

import (
	"time"

	"exam-hub/internal/domain"
)

// ResourceRequest is a study resource attached to a topic.
type ResourceRequest struct {
	Title  string `json:"title" validate:"required,max=255"`
	URL    string `json:"url" validate:"required,url"`
	Type   string `json:"type" validate:"omitempty,oneof=pdf video article other"`
	IsFree *bool  `json:"isFree"`
}

// ToDomain applies the resource defaults: type "other" and free access.
func (r ResourceRequest) ToDomain() domain.Resource {
	res := domain.Resource{
		Title:  r.Title,
		URL:    r.URL,
		Type:   domain.ResourceType(r.Type),
		IsFree: true,
	}
	if res.Type == "" {
		res.Type = domain.ResourceOther
	}
	if r.IsFree != nil {
		res.IsFree = *r.IsFree
	}
	return res
}

// ResourcesToDomain converts a request list; nil stays nil.
func ResourcesToDomain(in []ResourceRequest) []domain.Resource {
	if in == nil {
		return nil
	}
	out := make([]domain.Resource, len(in))
	for i, r := range in {
		out[i] = r.ToDomain()
	}
	return out
}

// CreateTopicRequest represents the body of POST /api/topics
// @Description Request body for creating a topic
type CreateTopicRequest struct {
	Name        string            `json:"name" validate:"required,max=255"`
	Code        string            `json:"code" validate:"required,max=64"`
	Description string            `json:"description" validate:"max=4000"`
	Subject     string            `json:"subject" validate:"required"`
	ParentTopic string            `json:"parentTopic"`
	Weightage   *float64          `json:"weightage" validate:"omitempty,gte=0,lte=100"`
	IsActive    *bool             `json:"isActive"`
	Resources   []ResourceRequest `json:"resources" validate:"omitempty,dive"`
}

// UpdateTopicRequest only overwrites the fields that are present. Subject and
// parentTopic move the topic within the hierarchy.
// @Description Request body for updating a topic
type UpdateTopicRequest struct {
	Name        *string           `json:"name" validate:"omitempty,min=1,max=255"`
	Code        *string           `json:"code" validate:"omitempty,min=1,max=64"`
	Description *string           `json:"description" validate:"omitempty,max=4000"`
	Subject     *string           `json:"subject" validate:"omitempty,min=1"`
	ParentTopic NullableID        `json:"parentTopic" swaggertype:"string"`
	Weightage   *float64          `json:"weightage" validate:"omitempty,gte=0,lte=100"`
	IsActive    *bool             `json:"isActive"`
	Resources   []ResourceRequest `json:"resources" validate:"omitempty,dive"`
}

// TopicListQuery holds the filters of GET /api/topics and /api/subjects/:id/topics.
// Parent "null" selects root topics.
type TopicListQuery struct {
	Subject string `query:"subject"`
	Parent  string `query:"parent"`
}

// TopicSearchQuery holds the filters of GET /api/topics/search.
type TopicSearchQuery struct {
	Q       string `query:"q" validate:"required"`
	Subject string `query:"subject"`
}

// TopicResponse represents a topic in the API response
// @Description Topic information
type TopicResponse struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Code          string            `json:"code"`
	Description   string            `json:"description"`
	Subject       *RefSummary       `json:"subject"`
	ParentTopic   *RefSummary       `json:"parentTopic"`
	SubTopics     []TopicSummary    `json:"subTopics"`
	QuestionCount int               `json:"questionCount"`
	Weightage     float64           `json:"weightage"`
	IsActive      bool              `json:"isActive"`
	Resources     []domain.Resource `json:"resources"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// TopicStatsHeader is the topic block of a stats response.
type TopicStatsHeader struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Code          string      `json:"code"`
	Description   string      `json:"description"`
	Subject       *RefSummary `json:"subject"`
	QuestionCount int         `json:"questionCount"`
	Weightage     float64     `json:"weightage"`
}

// TopicStatsResponse aggregates questions over a topic and all its descendants.
// @Description Topic subtree statistics
type TopicStatsResponse struct {
	Topic                 TopicStatsHeader         `json:"topic"`
	Subtopics             []TopicSummary           `json:"subtopics"`
	QuestionsByYear       []domain.YearCount       `json:"questionsByYear"`
	QuestionsByDifficulty []domain.DifficultyCount `json:"questionsByDifficulty"`
	TotalQuestions        int                      `json:"totalQuestions"`
}

// NewTopicSummary converts a domain topic to its short form.
func NewTopicSummary(t *domain.Topic) TopicSummary {
	return TopicSummary{ID: t.ID, Name: t.Name, Code: t.Code, QuestionCount: t.QuestionCount}
}

// NewTopicResponse converts a domain topic. References are left for the caller to resolve.
func NewTopicResponse(t *domain.Topic) TopicResponse {
	resources := t.Resources
	if resources == nil {
		resources = []domain.Resource{}
	}
	return TopicResponse{
		ID:            t.ID,
		Name:          t.Name,
		Code:          t.Code,
		Description:   t.Description,
		SubTopics:     []TopicSummary{},
		QuestionCount: t.QuestionCount,
		Weightage:     t.Weightage,
		IsActive:      t.IsActive,
		Resources:     resources,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}
