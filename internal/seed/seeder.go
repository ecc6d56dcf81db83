package seed

import (
	"context"
	"fmt"

	"exam-hub/internal/domain"
	"exam-hub/internal/dto"
	"exam-hub/internal/logger"
	"exam-hub/internal/service"
	"exam-hub/internal/validation"

	"go.uber.org/zap"
)

// Seeder writes a Bundle through the service layer so seeded content obeys
// the same rules as content created over HTTP.
type Seeder struct {
	store     *domain.Store
	auth      service.AuthService
	subjects  service.SubjectService
	topics    service.TopicService
	questions service.QuestionService
	validator *validation.Validator
}

func NewSeeder(store *domain.Store, auth service.AuthService, subjects service.SubjectService, topics service.TopicService, questions service.QuestionService) *Seeder {
	return &Seeder{
		store:     store,
		auth:      auth,
		subjects:  subjects,
		topics:    topics,
		questions: questions,
		validator: validation.NewValidator(),
	}
}

// Apply creates the admin account and every subject whose code is not yet
// stored, one transaction per subject. Subjects that already exist are
// skipped together with their topics and questions.
func (s *Seeder) Apply(ctx context.Context, bundle *Bundle) (*Report, error) {
	report := &Report{}

	admin, err := s.ensureAdmin(ctx, bundle.Admin, report)
	if err != nil {
		return report, err
	}

	for _, subject := range bundle.Subjects {
		existing, err := s.store.Subjects.GetByCode(ctx, domain.NormalizeCode(subject.Code))
		if err != nil {
			return report, fmt.Errorf("looking up subject %s: %w", subject.Code, err)
		}
		if existing != nil {
			logger.Get().Info("Seed: subject exists, skipping", zap.String("code", existing.Code))
			report.SubjectsSkipped++
			continue
		}
		if admin == nil && hasQuestions(subject.Topics) {
			return report, fmt.Errorf("subject %s has questions but the bundle names no admin", subject.Code)
		}
		err = s.store.Transactions.WithTransaction(ctx, func(ctx context.Context) error {
			return s.createSubject(ctx, subject, admin, report)
		})
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

// ensureAdmin registers the bundle's admin or promotes an existing account.
func (s *Seeder) ensureAdmin(ctx context.Context, seed *Admin, report *Report) (*domain.User, error) {
	if seed == nil {
		return nil, nil
	}
	user, err := s.store.Users.GetByEmail(ctx, domain.NormalizeEmail(seed.Email))
	if err != nil {
		return nil, fmt.Errorf("looking up admin: %w", err)
	}
	if user == nil {
		req := &dto.RegisterRequest{Name: seed.Name, Email: seed.Email, Password: seed.Password}
		if err := s.validator.Struct(req); err != nil {
			return nil, fmt.Errorf("admin: %w", err)
		}
		created, err := s.auth.Register(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("registering admin: %w", err)
		}
		if user, err = s.store.Users.GetByID(ctx, created.ID); err != nil {
			return nil, fmt.Errorf("reloading admin: %w", err)
		}
		if user == nil {
			return nil, fmt.Errorf("admin %s vanished after registration", created.ID)
		}
		report.AdminCreated = true
	}
	if user.Role != domain.RoleAdmin {
		user.Role = domain.RoleAdmin
		if err := s.store.Users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("promoting admin: %w", err)
		}
		logger.Get().Info("Seed: promoted user to admin", zap.String("email", user.Email))
	}
	return user, nil
}

func (s *Seeder) createSubject(ctx context.Context, seed Subject, admin *domain.User, report *Report) error {
	req := &dto.CreateSubjectRequest{
		Name:        seed.Name,
		Code:        seed.Code,
		Description: seed.Description,
		Syllabus:    seed.Syllabus,
		IsCore:      seed.Core,
		Weightage:   seed.Weightage,
	}
	if err := s.validator.Struct(req); err != nil {
		return fmt.Errorf("subject %s: %w", seed.Code, err)
	}
	created, err := s.subjects.CreateSubject(ctx, req)
	if err != nil {
		return fmt.Errorf("creating subject %s: %w", seed.Code, err)
	}
	report.SubjectsCreated++
	logger.Get().Info("Seed: created subject", zap.String("id", created.ID), zap.String("code", created.Code))

	for _, topic := range seed.Topics {
		if err := s.createTopic(ctx, created.ID, "", topic, admin, report); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) createTopic(ctx context.Context, subjectID, parentID string, seed Topic, admin *domain.User, report *Report) error {
	req := &dto.CreateTopicRequest{
		Name:        seed.Name,
		Code:        seed.Code,
		Description: seed.Description,
		Subject:     subjectID,
		ParentTopic: parentID,
		Weightage:   seed.Weightage,
		Resources:   make([]dto.ResourceRequest, len(seed.Resources)),
	}
	for i, r := range seed.Resources {
		req.Resources[i] = dto.ResourceRequest{Title: r.Title, URL: r.URL, Type: r.Type, IsFree: r.Free}
	}
	if err := s.validator.Struct(req); err != nil {
		return fmt.Errorf("topic %s: %w", seed.Code, err)
	}
	created, err := s.topics.CreateTopic(ctx, req)
	if err != nil {
		return fmt.Errorf("creating topic %s: %w", seed.Code, err)
	}
	report.TopicsCreated++

	for _, q := range seed.Questions {
		if err := s.createQuestion(ctx, subjectID, created.ID, q, admin); err != nil {
			return err
		}
		report.QuestionsCreated++
	}
	for _, child := range seed.Topics {
		if err := s.createTopic(ctx, subjectID, created.ID, child, admin, report); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) createQuestion(ctx context.Context, subjectID, topicID string, seed Question, admin *domain.User) error {
	options := make([]dto.OptionRequest, len(seed.Options))
	for i, o := range seed.Options {
		options[i] = dto.OptionRequest{Text: o.Text, Explanation: o.Explanation}
	}
	correct := seed.CorrectOption
	req := &dto.CreateQuestionRequest{
		QuestionText:          seed.Text,
		Options:               options,
		CorrectOption:         &correct,
		Explanation:           seed.Explanation,
		Difficulty:            seed.Difficulty,
		Subject:               subjectID,
		Topic:                 topicID,
		Year:                  seed.Year,
		Month:                 seed.Month,
		Paper:                 seed.Paper,
		QuestionNumber:        seed.Number,
		OfficialAnswerKey:     seed.AnswerKey,
		OfficialAnswerKeyLink: seed.AnswerKeyLink,
		Tags:                  seed.Tags,
	}
	label := fmt.Sprintf("%d %s %s Q%d", seed.Year, seed.Month, seed.Paper, seed.Number)
	if err := s.validator.Struct(req); err != nil {
		return fmt.Errorf("question %s: %w", label, err)
	}
	if _, err := s.questions.CreateQuestion(ctx, req, admin); err != nil {
		return fmt.Errorf("creating question %s: %w", label, err)
	}
	return nil
}

func hasQuestions(topics []Topic) bool {
	for _, t := range topics {
		if len(t.Questions) > 0 || hasQuestions(t.Topics) {
			return true
		}
	}
	return false
}
