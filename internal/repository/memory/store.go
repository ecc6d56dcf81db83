// Package memory is an in-process content store used for local development
// and tests. It honours the same contracts as the Oracle repositories.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"exam-hub/internal/domain"
	"exam-hub/internal/util"
)

type data struct {
	mu        sync.RWMutex
	subjects  map[string]*domain.Subject
	topics    map[string]*domain.Topic
	questions map[string]*domain.Question
	users     map[string]*domain.User
}

// NewStore creates an empty in-memory store.
func NewStore() *domain.Store {
	d := &data{
		subjects:  make(map[string]*domain.Subject),
		topics:    make(map[string]*domain.Topic),
		questions: make(map[string]*domain.Question),
		users:     make(map[string]*domain.User),
	}
	return &domain.Store{
		Subjects:     &SubjectStore{d: d},
		Topics:       &TopicStore{d: d},
		Questions:    &QuestionStore{d: d},
		Users:        &UserStore{d: d},
		Transactions: &TransactionManager{},
		Ping:         func(context.Context) error { return nil },
		Close:        func() error { return nil },
	}
}

type txKey struct{}

// TransactionManager serialises transactional blocks. Nested calls join the
// outer block. Writes are not rolled back on error.
type TransactionManager struct {
	mu sync.Mutex
}

func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, true))
}

func notFound(entity, id string) error {
	return domain.NewNotFoundError(entity+" not found").WithContext("id", id)
}

// --- subjects ---

type SubjectStore struct {
	d *data
}

func (s *SubjectStore) Create(ctx context.Context, subject *domain.Subject) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()

	if s.conflicts(subject) {
		return domain.NewConflictError("subject with this name or code already exists")
	}
	if subject.ID == "" {
		subject.ID = util.NewULID()
	}
	now := time.Now()
	subject.CreatedAt = now
	subject.UpdatedAt = now
	s.d.subjects[subject.ID] = cloneSubject(subject)
	return nil
}

func (s *SubjectStore) conflicts(subject *domain.Subject) bool {
	for _, existing := range s.d.subjects {
		if existing.ID == subject.ID {
			continue
		}
		if existing.Name == subject.Name || existing.Code == subject.Code {
			return true
		}
	}
	return false
}

func (s *SubjectStore) GetByID(ctx context.Context, id string) (*domain.Subject, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()

	if subject, ok := s.d.subjects[id]; ok {
		return cloneSubject(subject), nil
	}
	return nil, nil
}

func (s *SubjectStore) GetByCode(ctx context.Context, code string) (*domain.Subject, error) {
	code = domain.NormalizeCode(code)
	return s.findOne(func(subject *domain.Subject) bool { return subject.Code == code }), nil
}

func (s *SubjectStore) GetByName(ctx context.Context, name string) (*domain.Subject, error) {
	return s.findOne(func(subject *domain.Subject) bool { return subject.Name == name }), nil
}

func (s *SubjectStore) findOne(match func(*domain.Subject) bool) *domain.Subject {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()

	for _, subject := range s.d.subjects {
		if match(subject) {
			return cloneSubject(subject)
		}
	}
	return nil
}

func (s *SubjectStore) List(ctx context.Context, isCore *bool) ([]*domain.Subject, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()

	out := []*domain.Subject{}
	for _, subject := range s.d.subjects {
		if isCore != nil && subject.IsCore != *isCore {
			continue
		}
		out = append(out, cloneSubject(subject))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *SubjectStore) Update(ctx context.Context, subject *domain.Subject) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()

	existing, ok := s.d.subjects[subject.ID]
	if !ok {
		return notFound("subject", subject.ID)
	}
	if s.conflicts(subject) {
		return domain.NewConflictError("subject with this name or code already exists")
	}
	subject.CreatedAt = existing.CreatedAt
	subject.UpdatedAt = time.Now()
	s.d.subjects[subject.ID] = cloneSubject(subject)
	return nil
}

func (s *SubjectStore) Delete(ctx context.Context, id string) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()

	if _, ok := s.d.subjects[id]; !ok {
		return notFound("subject", id)
	}
	delete(s.d.subjects, id)
	return nil
}

// --- topics ---

type TopicStore struct {
	d *data
}

func (s *TopicStore) Create(ctx context.Context, topic *domain.Topic) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()

	if topic.ID == "" {
		topic.ID = util.NewULID()
	}
	now := time.Now()
	topic.CreatedAt = now
	topic.UpdatedAt = now
	s.d.topics[topic.ID] = cloneTopic(topic)
	return nil
}

func (s *TopicStore) GetByID(ctx context.Context, id string) (*domain.Topic, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()

	if topic, ok := s.d.topics[id]; ok {
		return cloneTopic(topic), nil
	}
	return nil, nil
}

func (s *TopicStore) GetByIDs(ctx context.Context, ids []string) ([]*domain.Topic, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()

	out := []*domain.Topic{}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if topic, ok := s.d.topics[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, cloneTopic(topic))
		}
	}
	sortTopics(out)
	return out, nil
}

func (s *TopicStore) Find(ctx context.Context, filter domain.TopicFilter) ([]*domain.Topic, error) {
	return s.collect(func(topic *domain.Topic) bool {
		if filter.SubjectID != "" && topic.SubjectID != filter.SubjectID {
			return false
		}
		if filter.RootsOnly {
			return topic.IsRoot()
		}
		return filter.ParentID == "" || topic.ParentTopicID == filter.ParentID
	}), nil
}

func (s *TopicStore) ChildIDs(ctx context.Context, parentID string) ([]string, error) {
	children := s.collect(func(topic *domain.Topic) bool { return topic.ParentTopicID == parentID })
	ids := make([]string, len(children))
	for i, child := range children {
		ids[i] = child.ID
	}
	return ids, nil
}

func (s *TopicStore) CountBySubject(ctx context.Context, subjectID string) (int, error) {
	return len(s.collect(func(topic *domain.Topic) bool { return topic.SubjectID == subjectID })), nil
}

func (s *TopicStore) CountChildren(ctx context.Context, parentID string) (int, error) {
	return len(s.collect(func(topic *domain.Topic) bool { return topic.ParentTopicID == parentID })), nil
}

func (s *TopicStore) Search(ctx context.Context, query, subjectID string, limit int) ([]*domain.Topic, error) {
	needle := strings.ToLower(query)
	out := s.collect(func(topic *domain.Topic) bool {
		if subjectID != "" && topic.SubjectID != subjectID {
			return false
		}
		return strings.Contains(strings.ToLower(topic.Name), needle)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *TopicStore) collect(match func(*domain.Topic) bool) []*domain.Topic {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()

	out := []*domain.Topic{}
	for _, topic := range s.d.topics {
		if match(topic) {
			out = append(out, cloneTopic(topic))
		}
	}
	sortTopics(out)
	return out
}

func (s *TopicStore) Update(ctx context.Context, topic *domain.Topic) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()

	existing, ok := s.d.topics[topic.ID]
	if !ok {
		return notFound("topic", topic.ID)
	}
	topic.CreatedAt = existing.CreatedAt
	topic.UpdatedAt = time.Now()
	s.d.topics[topic.ID] = cloneTopic(topic)
	return nil
}

func (s *TopicStore) Delete(ctx context.Context, id string) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()

	if _, ok := s.d.topics[id]; !ok {
		return notFound("topic", id)
	}
	delete(s.d.topics, id)
	return nil
}

func sortTopics(topics []*domain.Topic) {
	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Name != topics[j].Name {
			return topics[i].Name < topics[j].Name
		}
		return topics[i].ID < topics[j].ID
	})
}

// --- users ---

type UserStore struct {
	d *data
}

func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()

	if s.emailTaken(user) {
		return domain.NewConflictError("user with this email already exists")
	}
	if user.ID == "" {
		user.ID = util.NewULID()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	u := *user
	s.d.users[user.ID] = &u
	return nil
}

func (s *UserStore) emailTaken(user *domain.User) bool {
	for _, existing := range s.d.users {
		if existing.ID != user.ID && existing.Email == user.Email {
			return true
		}
	}
	return false
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()

	if user, ok := s.d.users[id]; ok {
		u := *user
		return &u, nil
	}
	return nil, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()

	email = domain.NormalizeEmail(email)
	for _, user := range s.d.users {
		if user.Email == email {
			u := *user
			return &u, nil
		}
	}
	return nil, nil
}

func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()

	existing, ok := s.d.users[user.ID]
	if !ok {
		return notFound("user", user.ID)
	}
	if s.emailTaken(user) {
		return domain.NewConflictError("user with this email already exists")
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now()
	u := *user
	s.d.users[user.ID] = &u
	return nil
}

func cloneStrings(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func cloneSubject(s *domain.Subject) *domain.Subject {
	c := *s
	c.Topics = cloneStrings(s.Topics)
	return &c
}

func cloneTopic(t *domain.Topic) *domain.Topic {
	c := *t
	c.SubTopics = cloneStrings(t.SubTopics)
	c.Resources = append([]domain.Resource{}, t.Resources...)
	return &c
}
