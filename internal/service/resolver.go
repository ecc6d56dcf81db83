package service

import (
	"context"

	"exam-hub/internal/domain"
	"exam-hub/internal/dto"
)

// refResolver looks up subject, topic and user names for responses. Lookups
// are memoised for the lifetime of one request.
type refResolver struct {
	store    *domain.Store
	subjects map[string]*domain.Subject
	topics   map[string]*domain.Topic
	users    map[string]*domain.User
}

func newRefResolver(store *domain.Store) *refResolver {
	return &refResolver{
		store:    store,
		subjects: make(map[string]*domain.Subject),
		topics:   make(map[string]*domain.Topic),
		users:    make(map[string]*domain.User),
	}
}

func (r *refResolver) subject(ctx context.Context, id string) (*dto.RefSummary, error) {
	if id == "" {
		return nil, nil
	}
	s, ok := r.subjects[id]
	if !ok {
		var err error
		if s, err = r.store.Subjects.GetByID(ctx, id); err != nil {
			return nil, domain.NewInternalError("failed to resolve subject", err)
		}
		r.subjects[id] = s
	}
	if s == nil {
		return &dto.RefSummary{ID: id}, nil
	}
	return &dto.RefSummary{ID: s.ID, Name: s.Name, Code: s.Code}, nil
}

func (r *refResolver) topic(ctx context.Context, id string) (*dto.RefSummary, error) {
	if id == "" {
		return nil, nil
	}
	t, ok := r.topics[id]
	if !ok {
		var err error
		if t, err = r.store.Topics.GetByID(ctx, id); err != nil {
			return nil, domain.NewInternalError("failed to resolve topic", err)
		}
		r.topics[id] = t
	}
	if t == nil {
		return &dto.RefSummary{ID: id}, nil
	}
	return &dto.RefSummary{ID: t.ID, Name: t.Name, Code: t.Code}, nil
}

func (r *refResolver) user(ctx context.Context, id string) (*dto.UserRef, error) {
	if id == "" {
		return nil, nil
	}
	u, ok := r.users[id]
	if !ok {
		var err error
		if u, err = r.store.Users.GetByID(ctx, id); err != nil {
			return nil, domain.NewInternalError("failed to resolve user", err)
		}
		r.users[id] = u
	}
	if u == nil {
		return &dto.UserRef{ID: id}, nil
	}
	return &dto.UserRef{ID: u.ID, Name: u.Name}, nil
}

// subTopics returns summaries of ids in list order, skipping dangling ids.
func (r *refResolver) subTopics(ctx context.Context, ids []string) ([]dto.TopicSummary, error) {
	out := []dto.TopicSummary{}
	if len(ids) == 0 {
		return out, nil
	}
	topics, err := r.store.Topics.GetByIDs(ctx, ids)
	if err != nil {
		return nil, domain.NewInternalError("failed to resolve subtopics", err)
	}
	byID := make(map[string]*domain.Topic, len(topics))
	for _, t := range topics {
		byID[t.ID] = t
		r.topics[t.ID] = t
	}
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			out = append(out, dto.NewTopicSummary(t))
		}
	}
	return out, nil
}

// question fills the subject, topic and author references of a response.
func (r *refResolver) question(ctx context.Context, q *domain.Question, withAuthor bool) (dto.QuestionResponse, error) {
	resp := dto.NewQuestionResponse(q)
	var err error
	if resp.Subject, err = r.subject(ctx, q.SubjectID); err != nil {
		return resp, err
	}
	if resp.Topic, err = r.topic(ctx, q.TopicID); err != nil {
		return resp, err
	}
	if withAuthor {
		if resp.AddedBy, err = r.user(ctx, q.AddedBy); err != nil {
			return resp, err
		}
	}
	return resp, nil
}
