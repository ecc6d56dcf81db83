package service

import (
	"context"
	"strings"

	"exam-hub/internal/cache"
	"exam-hub/internal/domain"
	"exam-hub/internal/dto"
	"exam-hub/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	searchLimit = 10
	// parentNull selects root topics in list filters.
	parentNull = "null"
	// statsFanOut bounds concurrent per-child subtree counts.
	statsFanOut = 8
)

// TopicService defines the interface for topic hierarchy operations
type TopicService interface {
	ListTopics(ctx context.Context, q dto.TopicListQuery) ([]dto.TopicResponse, error)
	ListSubjectTopics(ctx context.Context, subjectID, parent string) ([]dto.TopicResponse, error)
	GetTopic(ctx context.Context, id string) (*dto.TopicResponse, error)
	CreateTopic(ctx context.Context, req *dto.CreateTopicRequest) (*dto.TopicResponse, error)
	UpdateTopic(ctx context.Context, id string, req *dto.UpdateTopicRequest) (*dto.TopicResponse, error)
	DeleteTopic(ctx context.Context, id string) error
	SearchTopics(ctx context.Context, q dto.TopicSearchQuery) ([]dto.TopicResponse, error)
	GetTopicStats(ctx context.Context, id string) (*dto.TopicStatsResponse, error)
	DescendantIDs(ctx context.Context, id string) ([]string, error)
}

type topicService struct {
	store *domain.Store
	stats *StatsCache
}

// NewTopicService creates a new instance of topicService
func NewTopicService(store *domain.Store, stats *StatsCache) TopicService {
	return &topicService{store: store, stats: stats}
}

func topicFilter(subjectID, parent string) domain.TopicFilter {
	filter := domain.TopicFilter{SubjectID: subjectID}
	switch parent {
	case "":
	case parentNull:
		filter.RootsOnly = true
	default:
		filter.ParentID = parent
	}
	return filter
}

// ListTopics returns topics sorted by name with subject and parent resolved.
func (s *topicService) ListTopics(ctx context.Context, q dto.TopicListQuery) ([]dto.TopicResponse, error) {
	topics, err := s.store.Topics.Find(ctx, topicFilter(q.Subject, q.Parent))
	if err != nil {
		return nil, domain.NewInternalError("failed to list topics", err)
	}
	return s.render(ctx, topics, false)
}

// ListSubjectTopics returns a subject's topics with subtopic summaries.
func (s *topicService) ListSubjectTopics(ctx context.Context, subjectID, parent string) ([]dto.TopicResponse, error) {
	subject, err := s.store.Subjects.GetByID(ctx, subjectID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get subject", err)
	}
	if subject == nil {
		return nil, domain.NewNotFoundError("subject not found").WithContext("id", subjectID)
	}
	topics, err := s.store.Topics.Find(ctx, topicFilter(subjectID, parent))
	if err != nil {
		return nil, domain.NewInternalError("failed to list topics", err)
	}
	return s.render(ctx, topics, true)
}

func (s *topicService) render(ctx context.Context, topics []*domain.Topic, withSubTopics bool) ([]dto.TopicResponse, error) {
	refs := newRefResolver(s.store)
	out := make([]dto.TopicResponse, 0, len(topics))
	for _, t := range topics {
		resp, err := s.renderOne(ctx, refs, t, withSubTopics)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *topicService) renderOne(ctx context.Context, refs *refResolver, t *domain.Topic, withSubTopics bool) (dto.TopicResponse, error) {
	resp := dto.NewTopicResponse(t)
	var err error
	if resp.Subject, err = refs.subject(ctx, t.SubjectID); err != nil {
		return resp, err
	}
	if resp.ParentTopic, err = refs.topic(ctx, t.ParentTopicID); err != nil {
		return resp, err
	}
	if resp.ParentTopic != nil {
		resp.ParentTopic.Code = ""
	}
	if withSubTopics {
		if resp.SubTopics, err = refs.subTopics(ctx, t.SubTopics); err != nil {
			return resp, err
		}
	}
	return resp, nil
}

func (s *topicService) GetTopic(ctx context.Context, id string) (*dto.TopicResponse, error) {
	topic, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	resp, err := s.renderOne(ctx, newRefResolver(s.store), topic, true)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *topicService) mustGet(ctx context.Context, id string) (*domain.Topic, error) {
	topic, err := s.store.Topics.GetByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to get topic", err)
	}
	if topic == nil {
		return nil, domain.NewNotFoundError("topic not found").WithContext("id", id)
	}
	return topic, nil
}

// referencedSubject loads a subject named by a request; a dangling id is INVALID_REFERENCE.
func (s *topicService) referencedSubject(ctx context.Context, id string) (*domain.Subject, error) {
	subject, err := s.store.Subjects.GetByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to get subject", err)
	}
	if subject == nil {
		return nil, domain.NewInvalidReferenceError("subject not found").WithContext("subject", id)
	}
	return subject, nil
}

// referencedParent loads a proposed parent and checks it lives in subjectID.
func (s *topicService) referencedParent(ctx context.Context, id, subjectID string) (*domain.Topic, error) {
	parent, err := s.store.Topics.GetByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to get parent topic", err)
	}
	if parent == nil {
		return nil, domain.NewInvalidReferenceError("parent topic not found").WithContext("parentTopic", id)
	}
	if parent.SubjectID != subjectID {
		return nil, domain.NewInvalidReferenceError("parent topic belongs to a different subject").
			WithContext("parentTopic", id).WithContext("subject", subjectID)
	}
	return parent, nil
}

func (s *topicService) CreateTopic(ctx context.Context, req *dto.CreateTopicRequest) (*dto.TopicResponse, error) {
	topic := domain.NewTopic(strings.TrimSpace(req.Subject), req.Name, req.Code)
	topic.Description = strings.TrimSpace(req.Description)
	if req.Weightage != nil {
		topic.Weightage = *req.Weightage
	}
	if req.IsActive != nil {
		topic.IsActive = *req.IsActive
	}
	if req.Resources != nil {
		topic.Resources = dto.ResourcesToDomain(req.Resources)
	}
	parentID := strings.TrimSpace(req.ParentTopic)

	err := s.store.Transactions.WithTransaction(ctx, func(ctx context.Context) error {
		subject, err := s.referencedSubject(ctx, topic.SubjectID)
		if err != nil {
			return err
		}
		var parent *domain.Topic
		if parentID != "" {
			if parent, err = s.referencedParent(ctx, parentID, subject.ID); err != nil {
				return err
			}
			topic.ParentTopicID = parent.ID
		}

		if err := s.store.Topics.Create(ctx, topic); err != nil {
			return wrapStoreError("failed to create topic", err)
		}
		if parent != nil && parent.AddSubTopic(topic.ID) {
			if err := s.store.Topics.Update(ctx, parent); err != nil {
				return wrapStoreError("failed to link parent topic", err)
			}
		}
		if subject.AddTopic(topic.ID) {
			if err := s.store.Subjects.Update(ctx, subject); err != nil {
				return wrapStoreError("failed to link subject", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.stats.Invalidate(ctx)

	logger.Get().Info("Topic created",
		zap.String("id", topic.ID), zap.String("subject", topic.SubjectID), zap.String("parent", topic.ParentTopicID))
	return s.GetTopic(ctx, topic.ID)
}

// UpdateTopic patches the present fields and moves the topic when subject or
// parentTopic change. The topic ends up in exactly one parent's subTopics.
func (s *topicService) UpdateTopic(ctx context.Context, id string, req *dto.UpdateTopicRequest) (*dto.TopicResponse, error) {
	err := s.store.Transactions.WithTransaction(ctx, func(ctx context.Context) error {
		topic, err := s.mustGet(ctx, id)
		if err != nil {
			return err
		}

		if req.Name != nil {
			topic.Name = strings.TrimSpace(*req.Name)
		}
		if req.Code != nil {
			topic.Code = domain.NormalizeCode(*req.Code)
		}
		if req.Description != nil {
			topic.Description = strings.TrimSpace(*req.Description)
		}
		if req.Weightage != nil {
			topic.Weightage = *req.Weightage
		}
		if req.IsActive != nil {
			topic.IsActive = *req.IsActive
		}
		if req.Resources != nil {
			topic.Resources = dto.ResourcesToDomain(req.Resources)
		}

		subjectID := topic.SubjectID
		if req.Subject != nil {
			subjectID = strings.TrimSpace(*req.Subject)
		}
		parentID := topic.ParentTopicID
		if req.ParentTopic.Set {
			parentID = req.ParentTopic.ID
		}
		subjectChanged := subjectID != topic.SubjectID
		parentChanged := parentID != topic.ParentTopicID

		if subjectChanged {
			if err := s.moveSubject(ctx, topic, subjectID); err != nil {
				return err
			}
		}
		if parentChanged {
			if err := s.moveParent(ctx, topic, parentID); err != nil {
				return err
			}
		} else if subjectChanged && parentID != "" {
			// the current parent must follow the subject
			if _, err := s.referencedParent(ctx, parentID, subjectID); err != nil {
				return err
			}
		}

		if err := s.store.Topics.Update(ctx, topic); err != nil {
			return wrapStoreError("failed to update topic", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.stats.Invalidate(ctx)

	return s.GetTopic(ctx, id)
}

// moveSubject relinks topic from its subject to subjectID. A topic that
// still has subtopics or questions cannot change subject.
func (s *topicService) moveSubject(ctx context.Context, topic *domain.Topic, subjectID string) error {
	next, err := s.referencedSubject(ctx, subjectID)
	if err != nil {
		return err
	}
	if err := s.ensureNoDependents(ctx, topic.ID, "cannot move a topic with %s to another subject"); err != nil {
		return err
	}

	prev, err := s.store.Subjects.GetByID(ctx, topic.SubjectID)
	if err != nil {
		return domain.NewInternalError("failed to get subject", err)
	}
	if prev != nil && prev.RemoveTopic(topic.ID) {
		if err := s.store.Subjects.Update(ctx, prev); err != nil {
			return wrapStoreError("failed to unlink subject", err)
		}
	}
	if next.AddTopic(topic.ID) {
		if err := s.store.Subjects.Update(ctx, next); err != nil {
			return wrapStoreError("failed to link subject", err)
		}
	}
	topic.SubjectID = next.ID
	return nil
}

// moveParent reparents topic under parentID ("" makes it a root).
func (s *topicService) moveParent(ctx context.Context, topic *domain.Topic, parentID string) error {
	var next *domain.Topic
	if parentID != "" {
		if err := s.checkCycle(ctx, topic.ID, parentID); err != nil {
			return err
		}
		var err error
		if next, err = s.referencedParent(ctx, parentID, topic.SubjectID); err != nil {
			return err
		}
	}

	if topic.ParentTopicID != "" {
		prev, err := s.store.Topics.GetByID(ctx, topic.ParentTopicID)
		if err != nil {
			return domain.NewInternalError("failed to get parent topic", err)
		}
		if prev != nil && prev.RemoveSubTopic(topic.ID) {
			if err := s.store.Topics.Update(ctx, prev); err != nil {
				return wrapStoreError("failed to unlink parent topic", err)
			}
		}
	}
	if next != nil && next.AddSubTopic(topic.ID) {
		if err := s.store.Topics.Update(ctx, next); err != nil {
			return wrapStoreError("failed to link parent topic", err)
		}
	}
	topic.ParentTopicID = parentID
	return nil
}

// checkCycle walks up from parentID and fails if it meets topicID. A loop
// that does not pass through topicID means the stored tree is already
// corrupt; it is reported as a cycle too.
func (s *topicService) checkCycle(ctx context.Context, topicID, parentID string) error {
	visited := make(map[string]bool)
	for cur := parentID; cur != ""; {
		if cur == topicID {
			if cur == parentID {
				return domain.NewCycleError("topic cannot be its own parent").WithContext("id", topicID)
			}
			return domain.NewCycleError("parent topic is a descendant of this topic").
				WithContext("id", topicID).WithContext("parentTopic", parentID)
		}
		if visited[cur] {
			return domain.NewCycleError("topic hierarchy already contains a cycle").WithContext("at", cur)
		}
		visited[cur] = true

		ancestor, err := s.store.Topics.GetByID(ctx, cur)
		if err != nil {
			return domain.NewInternalError("failed to walk topic ancestors", err)
		}
		if ancestor == nil {
			return nil
		}
		cur = ancestor.ParentTopicID
	}
	return nil
}

// ensureNoDependents fails when any question or child topic references topicID.
// format receives "questions" or "subtopics".
func (s *topicService) ensureNoDependents(ctx context.Context, topicID, format string) error {
	questions, err := s.store.Questions.Count(ctx, domain.QuestionFilter{TopicIDs: []string{topicID}})
	if err != nil {
		return domain.NewInternalError("failed to count questions", err)
	}
	if questions > 0 {
		return domain.NewHasDependentsError(strings.Replace(format, "%s", "questions", 1)).WithContext("questions", questions)
	}
	children, err := s.store.Topics.CountChildren(ctx, topicID)
	if err != nil {
		return domain.NewInternalError("failed to count subtopics", err)
	}
	if children > 0 {
		return domain.NewHasDependentsError(strings.Replace(format, "%s", "subtopics", 1)).WithContext("subtopics", children)
	}
	return nil
}

// DeleteTopic refuses while questions or child topics reference the topic,
// then unlinks it from its subject and parent.
func (s *topicService) DeleteTopic(ctx context.Context, id string) error {
	err := s.store.Transactions.WithTransaction(ctx, func(ctx context.Context) error {
		topic, err := s.mustGet(ctx, id)
		if err != nil {
			return err
		}
		if err := s.ensureNoDependents(ctx, id, "cannot delete topic with existing %s"); err != nil {
			return err
		}
		if err := s.store.Topics.Delete(ctx, id); err != nil {
			return wrapStoreError("failed to delete topic", err)
		}

		subject, err := s.store.Subjects.GetByID(ctx, topic.SubjectID)
		if err != nil {
			return domain.NewInternalError("failed to get subject", err)
		}
		if subject != nil && subject.RemoveTopic(id) {
			if err := s.store.Subjects.Update(ctx, subject); err != nil {
				return wrapStoreError("failed to unlink subject", err)
			}
		}
		if topic.ParentTopicID != "" {
			parent, err := s.store.Topics.GetByID(ctx, topic.ParentTopicID)
			if err != nil {
				return domain.NewInternalError("failed to get parent topic", err)
			}
			if parent != nil && parent.RemoveSubTopic(id) {
				if err := s.store.Topics.Update(ctx, parent); err != nil {
					return wrapStoreError("failed to unlink parent topic", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.stats.Invalidate(ctx)

	logger.Get().Info("Topic deleted", zap.String("id", id))
	return nil
}

// SearchTopics matches names case-insensitively and literally, at most 10 results.
func (s *topicService) SearchTopics(ctx context.Context, q dto.TopicSearchQuery) ([]dto.TopicResponse, error) {
	query := strings.TrimSpace(q.Q)
	if query == "" {
		return nil, domain.ValidationErrors{domain.NewMissingFieldError("q")}
	}
	topics, err := s.store.Topics.Search(ctx, query, q.Subject, searchLimit)
	if err != nil {
		return nil, domain.NewInternalError("failed to search topics", err)
	}
	return s.render(ctx, topics, false)
}

// DescendantIDs walks the children of id breadth first. id itself is excluded.
func (s *topicService) DescendantIDs(ctx context.Context, id string) ([]string, error) {
	out := []string{}
	seen := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		children, err := s.store.Topics.ChildIDs(ctx, cur)
		if err != nil {
			return nil, domain.NewInternalError("failed to list child topics", err)
		}
		for _, child := range children {
			if seen[child] {
				continue
			}
			seen[child] = true
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out, nil
}

// subtreeCount counts the questions filed under id or any of its descendants.
func (s *topicService) subtreeCount(ctx context.Context, id string) (int, error) {
	ids, err := s.DescendantIDs(ctx, id)
	if err != nil {
		return 0, err
	}
	n, err := s.store.Questions.Count(ctx, domain.QuestionFilter{TopicIDs: append([]string{id}, ids...)})
	if err != nil {
		return 0, domain.NewInternalError("failed to count questions", err)
	}
	return n, nil
}

func (s *topicService) GetTopicStats(ctx context.Context, id string) (*dto.TopicStatsResponse, error) {
	if _, err := s.mustGet(ctx, id); err != nil {
		return nil, err
	}
	return loadStats(ctx, s.stats, cache.StatsKindTopic, id, func(ctx context.Context) (*dto.TopicStatsResponse, error) {
		return s.computeStats(ctx, id)
	})
}

func (s *topicService) computeStats(ctx context.Context, id string) (*dto.TopicStatsResponse, error) {
	topic, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	descendants, err := s.DescendantIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	filter := domain.QuestionFilter{TopicIDs: append([]string{id}, descendants...)}

	total, err := s.store.Questions.Count(ctx, filter)
	if err != nil {
		return nil, domain.NewInternalError("failed to count questions", err)
	}
	byYear, err := s.store.Questions.CountByYear(ctx, filter)
	if err != nil {
		return nil, domain.NewInternalError("failed to group questions by year", err)
	}
	byDifficulty, err := s.store.Questions.CountByDifficulty(ctx, filter)
	if err != nil {
		return nil, domain.NewInternalError("failed to group questions by difficulty", err)
	}

	children, err := s.store.Topics.Find(ctx, domain.TopicFilter{ParentID: id})
	if err != nil {
		return nil, domain.NewInternalError("failed to list subtopics", err)
	}
	subtopics := make([]dto.TopicSummary, len(children))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statsFanOut)
	for i, child := range children {
		g.Go(func() error {
			n, err := s.subtreeCount(gctx, child.ID)
			if err != nil {
				return err
			}
			summary := dto.NewTopicSummary(child)
			summary.QuestionCount = n
			subtopics[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	subject, err := newRefResolver(s.store).subject(ctx, topic.SubjectID)
	if err != nil {
		return nil, err
	}
	return &dto.TopicStatsResponse{
		Topic: dto.TopicStatsHeader{
			ID:            topic.ID,
			Name:          topic.Name,
			Code:          topic.Code,
			Description:   topic.Description,
			Subject:       subject,
			QuestionCount: topic.QuestionCount,
			Weightage:     topic.Weightage,
		},
		Subtopics:             subtopics,
		QuestionsByYear:       byYear,
		QuestionsByDifficulty: byDifficulty,
		TotalQuestions:        total,
	}, nil
}
