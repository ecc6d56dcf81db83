package domain

import "time"

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Option is one answer choice of a multiple-choice question.
type Option struct {
	Text        string `json:"text"`
	IsCorrect   bool   `json:"isCorrect"`
	Explanation string `json:"explanation"`
}

// QuestionStats holds answer counters for a question. Accuracy is derived.
type QuestionStats struct {
	TotalAttempts   int
	CorrectAttempts int
	Accuracy        float64
}

// Recalculate derives Accuracy as a percentage of correct attempts.
func (s *QuestionStats) Recalculate() {
	if s.TotalAttempts <= 0 {
		s.Accuracy = 0
		return
	}
	s.Accuracy = float64(s.CorrectAttempts) / float64(s.TotalAttempts) * 100
}

// Record counts one attempt and refreshes Accuracy.
func (s *QuestionStats) Record(correct bool) {
	s.TotalAttempts++
	if correct {
		s.CorrectAttempts++
	}
	s.Recalculate()
}

// Question is a past-paper multiple-choice question.
type Question struct {
	ID                    string
	QuestionText          string
	Options               []Option
	CorrectOption         int
	Explanation           string
	Difficulty            string
	SubjectID             string
	TopicID               string
	Year                  int
	Month                 string
	Paper                 string
	QuestionNumber        int
	OfficialAnswerKey     string
	OfficialAnswerKeyLink string
	IsVerified            bool
	AddedBy               string
	Tags                  []string
	Stats                 QuestionStats
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// NewQuestion creates a new Question with zeroed stats and medium difficulty.
func NewQuestion(text string, options []Option, correctOption int) *Question {
	now := time.Now()
	return &Question{
		QuestionText:  text,
		Options:       options,
		CorrectOption: correctOption,
		Difficulty:    DifficultyMedium,
		Tags:          []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// HasOption reports whether index addresses one of the question's options.
func (q *Question) HasOption(index int) bool {
	return index >= 0 && index < len(q.Options)
}

// IsCorrectAnswer compares a chosen option index with the answer key.
func (q *Question) IsCorrectAnswer(index int) bool {
	return index == q.CorrectOption
}

// QuestionOrder selects the sort applied by question listings.
type QuestionOrder int

const (
	// OrderYearDescNumberAsc sorts newest papers first, then by question number.
	OrderYearDescNumberAsc QuestionOrder = iota
	// OrderPaperAscNumberAsc sorts by paper name, then by question number.
	OrderPaperAscNumberAsc
	// OrderCreation keeps insertion order (ids are ULIDs).
	OrderCreation
)

// QuestionFilter holds exact-match question filters. Zero values are ignored.
type QuestionFilter struct {
	SubjectID    string
	TopicIDs     []string
	Year         int
	Month        string
	Paper        string
	Difficulty   string
	VerifiedOnly bool
}

// Page bounds a listing. A zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}

// YearCount is one bucket of a questions-by-year breakdown.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// DifficultyCount is one bucket of a questions-by-difficulty breakdown.
type DifficultyCount struct {
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}
