package service

import (
	"context"
	"errors"
	"strings"

	"exam-hub/internal/cache"
	"exam-hub/internal/domain"
	"exam-hub/internal/dto"
	"exam-hub/internal/logger"

	"go.uber.org/zap"
)

// SubjectService defines the interface for subject operations
type SubjectService interface {
	ListSubjects(ctx context.Context, isCore *bool) ([]dto.SubjectResponse, error)
	GetSubject(ctx context.Context, id string) (*dto.SubjectResponse, error)
	CreateSubject(ctx context.Context, req *dto.CreateSubjectRequest) (*dto.SubjectResponse, error)
	UpdateSubject(ctx context.Context, id string, req *dto.UpdateSubjectRequest) (*dto.SubjectResponse, error)
	DeleteSubject(ctx context.Context, id string) error
	GetSubjectStats(ctx context.Context, id string) (*dto.SubjectStatsResponse, error)
}

type subjectService struct {
	store *domain.Store
	stats *StatsCache
}

// NewSubjectService creates a new instance of subjectService
func NewSubjectService(store *domain.Store, stats *StatsCache) SubjectService {
	return &subjectService{store: store, stats: stats}
}

func (s *subjectService) ListSubjects(ctx context.Context, isCore *bool) ([]dto.SubjectResponse, error) {
	subjects, err := s.store.Subjects.List(ctx, isCore)
	if err != nil {
		return nil, domain.NewInternalError("failed to list subjects", err)
	}
	out := make([]dto.SubjectResponse, len(subjects))
	for i, subject := range subjects {
		out[i] = dto.NewSubjectResponse(subject)
	}
	return out, nil
}

func (s *subjectService) GetSubject(ctx context.Context, id string) (*dto.SubjectResponse, error) {
	subject, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewSubjectResponse(subject)
	return &resp, nil
}

func (s *subjectService) mustGet(ctx context.Context, id string) (*domain.Subject, error) {
	subject, err := s.store.Subjects.GetByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to get subject", err)
	}
	if subject == nil {
		return nil, domain.NewNotFoundError("subject not found").WithContext("id", id)
	}
	return subject, nil
}

// ensureUnique rejects a name or code already used by another subject.
func (s *subjectService) ensureUnique(ctx context.Context, selfID, name, code string) error {
	byName, err := s.store.Subjects.GetByName(ctx, name)
	if err != nil {
		return domain.NewInternalError("failed to check subject name", err)
	}
	if byName != nil && byName.ID != selfID {
		return domain.NewConflictError("subject with this name already exists").WithContext("name", name)
	}
	byCode, err := s.store.Subjects.GetByCode(ctx, code)
	if err != nil {
		return domain.NewInternalError("failed to check subject code", err)
	}
	if byCode != nil && byCode.ID != selfID {
		return domain.NewConflictError("subject with this code already exists").WithContext("code", code)
	}
	return nil
}

func (s *subjectService) CreateSubject(ctx context.Context, req *dto.CreateSubjectRequest) (*dto.SubjectResponse, error) {
	subject := domain.NewSubject(req.Name, req.Code)
	subject.Description = strings.TrimSpace(req.Description)
	subject.Syllabus = req.Syllabus
	if req.IsCore != nil {
		subject.IsCore = *req.IsCore
	}
	if req.Weightage != nil {
		subject.Weightage = *req.Weightage
	}

	if err := s.ensureUnique(ctx, "", subject.Name, subject.Code); err != nil {
		return nil, err
	}
	if err := s.store.Subjects.Create(ctx, subject); err != nil {
		return nil, wrapStoreError("failed to create subject", err)
	}
	s.stats.Invalidate(ctx)

	logger.Get().Info("Subject created", zap.String("id", subject.ID), zap.String("code", subject.Code))
	resp := dto.NewSubjectResponse(subject)
	return &resp, nil
}

func (s *subjectService) UpdateSubject(ctx context.Context, id string, req *dto.UpdateSubjectRequest) (*dto.SubjectResponse, error) {
	subject, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		subject.Name = strings.TrimSpace(*req.Name)
	}
	if req.Code != nil {
		subject.Code = domain.NormalizeCode(*req.Code)
	}
	if req.Description != nil {
		subject.Description = strings.TrimSpace(*req.Description)
	}
	if req.Syllabus != nil {
		subject.Syllabus = *req.Syllabus
	}
	if req.IsCore != nil {
		subject.IsCore = *req.IsCore
	}
	if req.Weightage != nil {
		subject.Weightage = *req.Weightage
	}

	if req.Name != nil || req.Code != nil {
		if err := s.ensureUnique(ctx, subject.ID, subject.Name, subject.Code); err != nil {
			return nil, err
		}
	}
	if err := s.store.Subjects.Update(ctx, subject); err != nil {
		return nil, wrapStoreError("failed to update subject", err)
	}
	s.stats.Invalidate(ctx)

	resp := dto.NewSubjectResponse(subject)
	return &resp, nil
}

// DeleteSubject refuses while any topic still belongs to the subject.
func (s *subjectService) DeleteSubject(ctx context.Context, id string) error {
	err := s.store.Transactions.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.mustGet(ctx, id); err != nil {
			return err
		}
		n, err := s.store.Topics.CountBySubject(ctx, id)
		if err != nil {
			return domain.NewInternalError("failed to count topics", err)
		}
		if n > 0 {
			return domain.NewHasDependentsError("cannot delete subject with existing topics").WithContext("topics", n)
		}
		if err := s.store.Subjects.Delete(ctx, id); err != nil {
			return wrapStoreError("failed to delete subject", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.stats.Invalidate(ctx)

	logger.Get().Info("Subject deleted", zap.String("id", id))
	return nil
}

func (s *subjectService) GetSubjectStats(ctx context.Context, id string) (*dto.SubjectStatsResponse, error) {
	if _, err := s.mustGet(ctx, id); err != nil {
		return nil, err
	}
	return loadStats(ctx, s.stats, cache.StatsKindSubject, id, func(ctx context.Context) (*dto.SubjectStatsResponse, error) {
		return s.computeStats(ctx, id)
	})
}

func (s *subjectService) computeStats(ctx context.Context, id string) (*dto.SubjectStatsResponse, error) {
	filter := domain.QuestionFilter{SubjectID: id}

	total, err := s.store.Questions.Count(ctx, filter)
	if err != nil {
		return nil, domain.NewInternalError("failed to count questions", err)
	}
	topics, err := s.store.Topics.Find(ctx, domain.TopicFilter{SubjectID: id})
	if err != nil {
		return nil, domain.NewInternalError("failed to list topics", err)
	}
	byYear, err := s.store.Questions.CountByYear(ctx, filter)
	if err != nil {
		return nil, domain.NewInternalError("failed to group questions by year", err)
	}
	byDifficulty, err := s.store.Questions.CountByDifficulty(ctx, filter)
	if err != nil {
		return nil, domain.NewInternalError("failed to group questions by difficulty", err)
	}

	summaries := make([]dto.TopicSummary, len(topics))
	for i, t := range topics {
		summaries[i] = dto.NewTopicSummary(t)
	}
	return &dto.SubjectStatsResponse{
		QuestionCount:         total,
		TopicCount:            len(topics),
		Topics:                summaries,
		QuestionsByYear:       byYear,
		QuestionsByDifficulty: byDifficulty,
	}, nil
}

// wrapStoreError passes domain errors through and hides anything else behind INTERNAL_ERROR.
func wrapStoreError(msg string, err error) error {
	var de *domain.DomainError
	if errors.As(err, &de) {
		return de
	}
	return domain.NewInternalError(msg, err)
}
