package dto

import (
	"time"

	"exam-hub/internal/domain"
)

// CreateSubjectRequest represents the body of POST /api/subjects
// @Description Request body for creating a subject
type CreateSubjectRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Code        string   `json:"code" validate:"required,max=64"`
	Description string   `json:"description" validate:"max=4000"`
	Syllabus    string   `json:"syllabus"`
	IsCore      *bool    `json:"isCore"`
	Weightage   *float64 `json:"weightage" validate:"omitempty,gte=0,lte=100"`
}

// UpdateSubjectRequest only overwrites the fields that are present.
// @Description Request body for updating a subject
type UpdateSubjectRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=255"`
	Code        *string  `json:"code" validate:"omitempty,min=1,max=64"`
	Description *string  `json:"description" validate:"omitempty,max=4000"`
	Syllabus    *string  `json:"syllabus"`
	IsCore      *bool    `json:"isCore"`
	Weightage   *float64 `json:"weightage" validate:"omitempty,gte=0,lte=100"`
}

// SubjectResponse represents a subject in the API response
// @Description Subject information
type SubjectResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Code          string    `json:"code"`
	Description   string    `json:"description"`
	Syllabus      string    `json:"syllabus"`
	IsCore        bool      `json:"isCore"`
	Topics        []string  `json:"topics"`
	QuestionCount int       `json:"questionCount"`
	Weightage     float64   `json:"weightage"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// SubjectStatsResponse aggregates the questions filed under a subject.
// @Description Subject statistics
type SubjectStatsResponse struct {
	QuestionCount         int                      `json:"questionCount"`
	TopicCount            int                      `json:"topicCount"`
	Topics                []TopicSummary           `json:"topics"`
	QuestionsByYear       []domain.YearCount       `json:"questionsByYear"`
	QuestionsByDifficulty []domain.DifficultyCount `json:"questionsByDifficulty"`
}

// NewSubjectResponse converts a domain subject.
func NewSubjectResponse(s *domain.Subject) SubjectResponse {
	topics := s.Topics
	if topics == nil {
		topics = []string{}
	}
	return SubjectResponse{
		ID:            s.ID,
		Name:          s.Name,
		Code:          s.Code,
		Description:   s.Description,
		Syllabus:      s.Syllabus,
		IsCore:        s.IsCore,
		Topics:        topics,
		QuestionCount: s.QuestionCount,
		Weightage:     s.Weightage,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
