package dto

import (
	"time"

	"exam-hub/internal/domain"
)

// OptionRequest is one answer choice.
type OptionRequest struct {
	Text        string `json:"text" validate:"required"`
	IsCorrect   bool   `json:"isCorrect"`
	Explanation string `json:"explanation"`
}

// OptionsToDomain converts a request list; nil stays nil.
func OptionsToDomain(in []OptionRequest) []domain.Option {
	if in == nil {
		return nil
	}
	out := make([]domain.Option, len(in))
	for i, o := range in {
		out[i] = domain.Option{Text: o.Text, IsCorrect: o.IsCorrect, Explanation: o.Explanation}
	}
	return out
}

// CreateQuestionRequest represents the body of POST /api/questions
// @Description Request body for creating a question
type CreateQuestionRequest struct {
	QuestionText          string          `json:"questionText" validate:"required"`
	Options               []OptionRequest `json:"options" validate:"required,min=2,max=10,dive"`
	CorrectOption         *int            `json:"correctOption" validate:"required,gte=0"`
	Explanation           string          `json:"explanation"`
	Difficulty            string          `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Subject               string          `json:"subject" validate:"required"`
	Topic                 string          `json:"topic" validate:"required"`
	Year                  int             `json:"year" validate:"required,gte=1900,lte=2100"`
	Month                 string          `json:"month" validate:"required,oneof=June December"`
	Paper                 string          `json:"paper" validate:"required,oneof='Paper 1' 'Paper 2' 'Paper 3'"`
	QuestionNumber        int             `json:"questionNumber" validate:"required,gte=1"`
	OfficialAnswerKey     string          `json:"officialAnswerKey"`
	OfficialAnswerKeyLink string          `json:"officialAnswerKeyLink" validate:"omitempty,url"`
	Tags                  []string        `json:"tags" validate:"omitempty,dive,max=64"`
}

// UpdateQuestionRequest only overwrites the fields that are present.
// @Description Request body for updating a question
type UpdateQuestionRequest struct {
	QuestionText          *string         `json:"questionText" validate:"omitempty,min=1"`
	Options               []OptionRequest `json:"options" validate:"omitempty,min=2,max=10,dive"`
	CorrectOption         *int            `json:"correctOption" validate:"omitempty,gte=0"`
	Explanation           *string         `json:"explanation"`
	Difficulty            *string         `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Subject               *string         `json:"subject" validate:"omitempty,min=1"`
	Topic                 *string         `json:"topic" validate:"omitempty,min=1"`
	Year                  *int            `json:"year" validate:"omitempty,gte=1900,lte=2100"`
	Month                 *string         `json:"month" validate:"omitempty,oneof=June December"`
	Paper                 *string         `json:"paper" validate:"omitempty,oneof='Paper 1' 'Paper 2' 'Paper 3'"`
	QuestionNumber        *int            `json:"questionNumber" validate:"omitempty,gte=1"`
	OfficialAnswerKey     *string         `json:"officialAnswerKey"`
	OfficialAnswerKeyLink *string         `json:"officialAnswerKeyLink" validate:"omitempty,url"`
	Tags                  []string        `json:"tags" validate:"omitempty,dive,max=64"`
	IsVerified            *bool           `json:"isVerified"`
}

// QuestionListQuery holds the filters of GET /api/questions.
type QuestionListQuery struct {
	Subject    string `query:"subject"`
	Topic      string `query:"topic"`
	Year       int    `query:"year" validate:"omitempty,gte=1900,lte=2100"`
	Month      string `query:"month" validate:"omitempty,oneof=June December"`
	Paper      string `query:"paper"`
	Difficulty string `query:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Limit      int    `query:"limit" validate:"omitempty,gte=1"`
	Page       int    `query:"page" validate:"omitempty,gte=1"`
}

// PracticeQuery holds the filters of GET /api/questions/practice/random.
type PracticeQuery struct {
	Subject    string `query:"subject"`
	Topic      string `query:"topic"`
	Difficulty string `query:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Limit      int    `query:"limit" validate:"omitempty,gte=1"`
}

// SubmitAnswerRequest represents the body of POST /api/questions/:id/answer
// @Description Request body for answering a question
type SubmitAnswerRequest struct {
	Answer *int `json:"answer" validate:"required,gte=0"`
}

// StatsResponse mirrors the attempt counters of a question.
type StatsResponse struct {
	TotalAttempts   int     `json:"totalAttempts"`
	CorrectAttempts int     `json:"correctAttempts"`
	Accuracy        float64 `json:"accuracy"`
}

// SubmitAnswerResponse reports the outcome of an answer. CorrectAnswer is
// only present when the submission was wrong.
// @Description Answer evaluation result
type SubmitAnswerResponse struct {
	IsCorrect     bool          `json:"isCorrect"`
	CorrectAnswer *int          `json:"correctAnswer,omitempty"`
	Explanation   string        `json:"explanation"`
	Stats         StatsResponse `json:"stats"`
}

// QuestionResponse is the full view of a question.
// @Description Question information
type QuestionResponse struct {
	ID                    string          `json:"id"`
	QuestionText          string          `json:"questionText"`
	Options               []domain.Option `json:"options"`
	CorrectOption         int             `json:"correctOption"`
	Explanation           string          `json:"explanation"`
	Difficulty            string          `json:"difficulty"`
	Subject               *RefSummary     `json:"subject"`
	Topic                 *RefSummary     `json:"topic"`
	Year                  int             `json:"year"`
	Month                 string          `json:"month"`
	Paper                 string          `json:"paper"`
	QuestionNumber        int             `json:"questionNumber"`
	OfficialAnswerKey     string          `json:"officialAnswerKey"`
	OfficialAnswerKeyLink string          `json:"officialAnswerKeyLink"`
	IsVerified            bool            `json:"isVerified"`
	AddedBy               *UserRef        `json:"addedBy"`
	Tags                  []string        `json:"tags"`
	Stats                 StatsResponse   `json:"stats"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

// PracticeOption hides which choice is correct.
type PracticeOption struct {
	Text string `json:"text"`
}

// PracticeQuestionResponse carries no answer-revealing, authorship or audit fields.
// @Description Practice question
type PracticeQuestionResponse struct {
	ID             string           `json:"id"`
	QuestionText   string           `json:"questionText"`
	Options        []PracticeOption `json:"options"`
	Difficulty     string           `json:"difficulty"`
	Subject        string           `json:"subject"`
	Topic          string           `json:"topic"`
	Year           int              `json:"year"`
	Month          string           `json:"month"`
	Paper          string           `json:"paper"`
	QuestionNumber int              `json:"questionNumber"`
	Tags           []string         `json:"tags"`
	Stats          StatsResponse    `json:"stats"`
}

// QuestionListResponse is the paginated listing envelope.
// @Description Paginated questions
type QuestionListResponse struct {
	Questions []QuestionResponse `json:"questions"`
	Page      int                `json:"page"`
	Pages     int                `json:"pages"`
	Total     int                `json:"total"`
}

// NewStatsResponse converts domain stats.
func NewStatsResponse(s domain.QuestionStats) StatsResponse {
	return StatsResponse{TotalAttempts: s.TotalAttempts, CorrectAttempts: s.CorrectAttempts, Accuracy: s.Accuracy}
}

// NewQuestionResponse converts a domain question with unresolved references.
func NewQuestionResponse(q *domain.Question) QuestionResponse {
	tags := q.Tags
	if tags == nil {
		tags = []string{}
	}
	options := q.Options
	if options == nil {
		options = []domain.Option{}
	}
	resp := QuestionResponse{
		ID:                    q.ID,
		QuestionText:          q.QuestionText,
		Options:               options,
		CorrectOption:         q.CorrectOption,
		Explanation:           q.Explanation,
		Difficulty:            q.Difficulty,
		Subject:               &RefSummary{ID: q.SubjectID},
		Topic:                 &RefSummary{ID: q.TopicID},
		Year:                  q.Year,
		Month:                 q.Month,
		Paper:                 q.Paper,
		QuestionNumber:        q.QuestionNumber,
		OfficialAnswerKey:     q.OfficialAnswerKey,
		OfficialAnswerKeyLink: q.OfficialAnswerKeyLink,
		IsVerified:            q.IsVerified,
		Tags:                  tags,
		Stats:                 NewStatsResponse(q.Stats),
		CreatedAt:             q.CreatedAt,
		UpdatedAt:             q.UpdatedAt,
	}
	if q.AddedBy != "" {
		resp.AddedBy = &UserRef{ID: q.AddedBy}
	}
	return resp
}

// NewPracticeQuestionResponse strips everything that would reveal the answer.
func NewPracticeQuestionResponse(q *domain.Question) PracticeQuestionResponse {
	options := make([]PracticeOption, len(q.Options))
	for i, o := range q.Options {
		options[i] = PracticeOption{Text: o.Text}
	}
	tags := q.Tags
	if tags == nil {
		tags = []string{}
	}
	return PracticeQuestionResponse{
		ID:             q.ID,
		QuestionText:   q.QuestionText,
		Options:        options,
		Difficulty:     q.Difficulty,
		Subject:        q.SubjectID,
		Topic:          q.TopicID,
		Year:           q.Year,
		Month:          q.Month,
		Paper:          q.Paper,
		QuestionNumber: q.QuestionNumber,
		Tags:           tags,
		Stats:          NewStatsResponse(q.Stats),
	}
}
