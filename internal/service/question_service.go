package service

import (
	"context"
	"math/rand/v2"
	"strings"

	"exam-hub/internal/config"
	"exam-hub/internal/domain"
	"exam-hub/internal/dto"
	"exam-hub/internal/logger"

	"go.uber.org/zap"
)

// QuestionService defines the interface for question bank operations
type QuestionService interface {
	ListQuestions(ctx context.Context, q dto.QuestionListQuery) (*dto.QuestionListResponse, error)
	ListBySubject(ctx context.Context, subjectID string) ([]dto.QuestionResponse, error)
	ListByTopic(ctx context.Context, topicID string) ([]dto.QuestionResponse, error)
	ListByYear(ctx context.Context, year int, month string) ([]dto.QuestionResponse, error)
	GetQuestion(ctx context.Context, id string) (*dto.QuestionResponse, error)
	GetOwnerID(ctx context.Context, id string) (string, bool, error)
	SubmitAnswer(ctx context.Context, id string, answer int) (*dto.SubmitAnswerResponse, error)
	RandomPractice(ctx context.Context, q dto.PracticeQuery) ([]dto.PracticeQuestionResponse, error)
	CreateQuestion(ctx context.Context, req *dto.CreateQuestionRequest, caller *domain.User) (*dto.QuestionResponse, error)
	UpdateQuestion(ctx context.Context, id string, req *dto.UpdateQuestionRequest, caller *domain.User) (*dto.QuestionResponse, error)
	DeleteQuestion(ctx context.Context, id string) error
}

type questionService struct {
	store *domain.Store
	stats *StatsCache
	cfg   config.QuestionsConfig
	// randIntn returns a value in [0, n).
	randIntn func(n int) int
}

// NewQuestionService creates a new instance of questionService
func NewQuestionService(store *domain.Store, stats *StatsCache, cfg config.QuestionsConfig) QuestionService {
	return &questionService{store: store, stats: stats, cfg: cfg, randIntn: rand.IntN}
}

// clampLimit applies def when requested is unset and caps it at max.
func clampLimit(requested, def, max int) int {
	if requested <= 0 {
		requested = def
	}
	if max > 0 && requested > max {
		requested = max
	}
	return requested
}

func (s *questionService) ListQuestions(ctx context.Context, q dto.QuestionListQuery) (*dto.QuestionListResponse, error) {
	limit := clampLimit(q.Limit, s.cfg.DefaultPageSize, s.cfg.MaxPageSize)
	page := q.Page
	if page < 1 {
		page = 1
	}

	filter := domain.QuestionFilter{
		SubjectID:  q.Subject,
		Year:       q.Year,
		Month:      q.Month,
		Paper:      q.Paper,
		Difficulty: q.Difficulty,
	}
	if q.Topic != "" {
		filter.TopicIDs = []string{q.Topic}
	}

	total, err := s.store.Questions.Count(ctx, filter)
	if err != nil {
		return nil, domain.NewInternalError("failed to count questions", err)
	}
	resp := &dto.QuestionListResponse{
		Questions: []dto.QuestionResponse{},
		Page:      page,
		Pages:     (total + limit - 1) / limit,
		Total:     total,
	}
	// Pages past the end are empty and never reach the store.
	if page > resp.Pages {
		return resp, nil
	}

	questions, err := s.store.Questions.Find(ctx, filter, domain.OrderYearDescNumberAsc,
		domain.Page{Limit: limit, Offset: (page - 1) * limit})
	if err != nil {
		return nil, domain.NewInternalError("failed to list questions", err)
	}
	if resp.Questions, err = s.render(ctx, questions); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *questionService) render(ctx context.Context, questions []*domain.Question) ([]dto.QuestionResponse, error) {
	refs := newRefResolver(s.store)
	out := make([]dto.QuestionResponse, 0, len(questions))
	for _, q := range questions {
		resp, err := refs.question(ctx, q, false)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *questionService) listAll(ctx context.Context, filter domain.QuestionFilter, order domain.QuestionOrder) ([]dto.QuestionResponse, error) {
	questions, err := s.store.Questions.Find(ctx, filter, order, domain.Page{})
	if err != nil {
		return nil, domain.NewInternalError("failed to list questions", err)
	}
	return s.render(ctx, questions)
}

func (s *questionService) ListBySubject(ctx context.Context, subjectID string) ([]dto.QuestionResponse, error) {
	return s.listAll(ctx, domain.QuestionFilter{SubjectID: subjectID}, domain.OrderYearDescNumberAsc)
}

func (s *questionService) ListByTopic(ctx context.Context, topicID string) ([]dto.QuestionResponse, error) {
	return s.listAll(ctx, domain.QuestionFilter{TopicIDs: []string{topicID}}, domain.OrderYearDescNumberAsc)
}

// ListByYear lists one exam session, or the whole year when month is empty.
func (s *questionService) ListByYear(ctx context.Context, year int, month string) ([]dto.QuestionResponse, error) {
	return s.listAll(ctx, domain.QuestionFilter{Year: year, Month: month}, domain.OrderPaperAscNumberAsc)
}

func (s *questionService) mustGet(ctx context.Context, id string) (*domain.Question, error) {
	question, err := s.store.Questions.GetByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to get question", err)
	}
	if question == nil {
		return nil, domain.NewNotFoundError("question not found").WithContext("id", id)
	}
	return question, nil
}

// GetQuestion returns the full question. When views count as attempts the
// read also records an incorrect attempt.
func (s *questionService) GetQuestion(ctx context.Context, id string) (*dto.QuestionResponse, error) {
	question, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cfg.CountViewsAsAttempts {
		stats, err := s.store.Questions.IncrementAttempts(ctx, id, false)
		if err != nil {
			return nil, wrapStoreError("failed to record view", err)
		}
		question.Stats = *stats
	}
	resp, err := newRefResolver(s.store).question(ctx, question, true)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetOwnerID reports who added the question.
func (s *questionService) GetOwnerID(ctx context.Context, id string) (string, bool, error) {
	question, err := s.store.Questions.GetByID(ctx, id)
	if err != nil {
		return "", false, domain.NewInternalError("failed to get question", err)
	}
	if question == nil {
		return "", false, nil
	}
	return question.AddedBy, true, nil
}

// SubmitAnswer grades answer and records the attempt. The correct index is
// only returned when the answer was wrong.
func (s *questionService) SubmitAnswer(ctx context.Context, id string, answer int) (*dto.SubmitAnswerResponse, error) {
	var resp *dto.SubmitAnswerResponse
	err := s.store.Transactions.WithTransaction(ctx, func(ctx context.Context) error {
		question, err := s.mustGet(ctx, id)
		if err != nil {
			return err
		}
		if !question.HasOption(answer) {
			return domain.ValidationErrors{domain.NewOutOfRangeError("answer", answer, 0, len(question.Options)-1)}
		}

		correct := question.IsCorrectAnswer(answer)
		stats, err := s.store.Questions.IncrementAttempts(ctx, id, correct)
		if err != nil {
			return wrapStoreError("failed to record answer", err)
		}

		resp = &dto.SubmitAnswerResponse{
			IsCorrect:   correct,
			Explanation: question.Explanation,
			Stats:       dto.NewStatsResponse(*stats),
		}
		if !correct {
			key := question.CorrectOption
			resp.CorrectAnswer = &key
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// RandomPractice returns up to limit consecutive verified questions from a
// random offset. This is not a uniform sample over all matches.
func (s *questionService) RandomPractice(ctx context.Context, q dto.PracticeQuery) ([]dto.PracticeQuestionResponse, error) {
	limit := clampLimit(q.Limit, s.cfg.PracticeLimit, s.cfg.MaxPracticeLimit)
	filter := domain.QuestionFilter{
		SubjectID:    q.Subject,
		Difficulty:   q.Difficulty,
		VerifiedOnly: true,
	}
	if q.Topic != "" {
		filter.TopicIDs = []string{q.Topic}
	}

	count, err := s.store.Questions.Count(ctx, filter)
	if err != nil {
		return nil, domain.NewInternalError("failed to count questions", err)
	}
	offset := 0
	if count > limit {
		offset = s.randIntn(count - limit)
	}

	questions, err := s.store.Questions.Find(ctx, filter, domain.OrderCreation, domain.Page{Limit: limit, Offset: offset})
	if err != nil {
		return nil, domain.NewInternalError("failed to list practice questions", err)
	}
	out := make([]dto.PracticeQuestionResponse, len(questions))
	for i, question := range questions {
		out[i] = dto.NewPracticeQuestionResponse(question)
	}
	return out, nil
}

// checkRefs verifies the subject exists and owns the topic.
func (s *questionService) checkRefs(ctx context.Context, subjectID, topicID string) error {
	subject, err := s.store.Subjects.GetByID(ctx, subjectID)
	if err != nil {
		return domain.NewInternalError("failed to get subject", err)
	}
	if subject == nil {
		return domain.NewInvalidReferenceError("subject not found").WithContext("subject", subjectID)
	}
	topic, err := s.store.Topics.GetByID(ctx, topicID)
	if err != nil {
		return domain.NewInternalError("failed to get topic", err)
	}
	if topic == nil {
		return domain.NewInvalidReferenceError("topic not found").WithContext("topic", topicID)
	}
	if topic.SubjectID != subjectID {
		return domain.NewInvalidReferenceError("topic belongs to a different subject").
			WithContext("topic", topicID).WithContext("subject", subjectID)
	}
	return nil
}

// checkAnswerKey validates correctOption and marks the matching option correct.
func checkAnswerKey(q *domain.Question) error {
	if len(q.Options) < 2 {
		return domain.ValidationErrors{domain.NewOutOfRangeError("options", len(q.Options), 2, 10)}
	}
	if !q.HasOption(q.CorrectOption) {
		return domain.ValidationErrors{domain.NewOutOfRangeError("correctOption", q.CorrectOption, 0, len(q.Options)-1)}
	}
	for i := range q.Options {
		q.Options[i].IsCorrect = i == q.CorrectOption
	}
	return nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (s *questionService) CreateQuestion(ctx context.Context, req *dto.CreateQuestionRequest, caller *domain.User) (*dto.QuestionResponse, error) {
	correct := 0
	if req.CorrectOption != nil {
		correct = *req.CorrectOption
	}
	question := domain.NewQuestion(strings.TrimSpace(req.QuestionText), dto.OptionsToDomain(req.Options), correct)
	question.Explanation = req.Explanation
	if req.Difficulty != "" {
		question.Difficulty = req.Difficulty
	}
	question.SubjectID = strings.TrimSpace(req.Subject)
	question.TopicID = strings.TrimSpace(req.Topic)
	question.Year = req.Year
	question.Month = req.Month
	question.Paper = req.Paper
	question.QuestionNumber = req.QuestionNumber
	question.OfficialAnswerKey = req.OfficialAnswerKey
	question.OfficialAnswerKeyLink = req.OfficialAnswerKeyLink
	question.Tags = cleanTags(req.Tags)
	if caller != nil {
		question.AddedBy = caller.ID
		question.IsVerified = caller.IsAdmin()
	}
	if err := checkAnswerKey(question); err != nil {
		return nil, err
	}

	err := s.store.Transactions.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkRefs(ctx, question.SubjectID, question.TopicID); err != nil {
			return err
		}
		if err := s.store.Questions.Create(ctx, question); err != nil {
			return wrapStoreError("failed to create question", err)
		}
		return s.refreshCounters(ctx, []string{question.SubjectID}, []string{question.TopicID})
	})
	if err != nil {
		return nil, err
	}
	s.stats.Invalidate(ctx)

	logger.Get().Info("Question created",
		zap.String("id", question.ID), zap.String("topic", question.TopicID), zap.Bool("verified", question.IsVerified))
	resp, err := newRefResolver(s.store).question(ctx, question, true)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateQuestion overwrites the present fields. Only admins may change isVerified.
func (s *questionService) UpdateQuestion(ctx context.Context, id string, req *dto.UpdateQuestionRequest, caller *domain.User) (*dto.QuestionResponse, error) {
	if req.IsVerified != nil && !caller.IsAdmin() {
		return nil, domain.NewForbiddenError("only admins can change verification").WithContext("id", id)
	}

	var question *domain.Question
	err := s.store.Transactions.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		if question, err = s.mustGet(ctx, id); err != nil {
			return err
		}
		prevSubject, prevTopic := question.SubjectID, question.TopicID

		if req.QuestionText != nil {
			question.QuestionText = strings.TrimSpace(*req.QuestionText)
		}
		if req.Options != nil {
			question.Options = dto.OptionsToDomain(req.Options)
		}
		if req.CorrectOption != nil {
			question.CorrectOption = *req.CorrectOption
		}
		if req.Explanation != nil {
			question.Explanation = *req.Explanation
		}
		if req.Difficulty != nil {
			question.Difficulty = *req.Difficulty
		}
		if req.Subject != nil {
			question.SubjectID = strings.TrimSpace(*req.Subject)
		}
		if req.Topic != nil {
			question.TopicID = strings.TrimSpace(*req.Topic)
		}
		if req.Year != nil {
			question.Year = *req.Year
		}
		if req.Month != nil {
			question.Month = *req.Month
		}
		if req.Paper != nil {
			question.Paper = *req.Paper
		}
		if req.QuestionNumber != nil {
			question.QuestionNumber = *req.QuestionNumber
		}
		if req.OfficialAnswerKey != nil {
			question.OfficialAnswerKey = *req.OfficialAnswerKey
		}
		if req.OfficialAnswerKeyLink != nil {
			question.OfficialAnswerKeyLink = *req.OfficialAnswerKeyLink
		}
		if req.Tags != nil {
			question.Tags = cleanTags(req.Tags)
		}
		if req.IsVerified != nil {
			question.IsVerified = *req.IsVerified
		}
		if err := checkAnswerKey(question); err != nil {
			return err
		}

		moved := question.SubjectID != prevSubject || question.TopicID != prevTopic
		if moved {
			if err := s.checkRefs(ctx, question.SubjectID, question.TopicID); err != nil {
				return err
			}
		}
		if err := s.store.Questions.Update(ctx, question); err != nil {
			return wrapStoreError("failed to update question", err)
		}
		if moved {
			return s.refreshCounters(ctx,
				[]string{prevSubject, question.SubjectID}, []string{prevTopic, question.TopicID})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.stats.Invalidate(ctx)

	resp, err := newRefResolver(s.store).question(ctx, question, true)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *questionService) DeleteQuestion(ctx context.Context, id string) error {
	err := s.store.Transactions.WithTransaction(ctx, func(ctx context.Context) error {
		question, err := s.mustGet(ctx, id)
		if err != nil {
			return err
		}
		if err := s.store.Questions.Delete(ctx, id); err != nil {
			return wrapStoreError("failed to delete question", err)
		}
		return s.refreshCounters(ctx, []string{question.SubjectID}, []string{question.TopicID})
	})
	if err != nil {
		return err
	}
	s.stats.Invalidate(ctx)

	logger.Get().Info("Question deleted", zap.String("id", id))
	return nil
}

// refreshCounters recomputes the cached questionCount of the given subjects
// and topics. Missing entities are skipped.
func (s *questionService) refreshCounters(ctx context.Context, subjectIDs, topicIDs []string) error {
	for _, id := range dedupe(subjectIDs) {
		subject, err := s.store.Subjects.GetByID(ctx, id)
		if err != nil {
			return domain.NewInternalError("failed to get subject", err)
		}
		if subject == nil {
			continue
		}
		n, err := s.store.Questions.Count(ctx, domain.QuestionFilter{SubjectID: id})
		if err != nil {
			return domain.NewInternalError("failed to count questions", err)
		}
		if subject.QuestionCount == n {
			continue
		}
		subject.QuestionCount = n
		if err := s.store.Subjects.Update(ctx, subject); err != nil {
			return wrapStoreError("failed to refresh subject counter", err)
		}
	}
	for _, id := range dedupe(topicIDs) {
		topic, err := s.store.Topics.GetByID(ctx, id)
		if err != nil {
			return domain.NewInternalError("failed to get topic", err)
		}
		if topic == nil {
			continue
		}
		n, err := s.store.Questions.Count(ctx, domain.QuestionFilter{TopicIDs: []string{id}})
		if err != nil {
			return domain.NewInternalError("failed to count questions", err)
		}
		if topic.QuestionCount == n {
			continue
		}
		topic.QuestionCount = n
		if err := s.store.Topics.Update(ctx, topic); err != nil {
			return wrapStoreError("failed to refresh topic counter", err)
		}
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
