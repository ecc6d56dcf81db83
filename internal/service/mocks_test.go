package service

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"exam-hub/internal/domain"
	"exam-hub/internal/dto"
	"exam-hub/internal/repository/memory"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- MockUserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// --- fakeCache ---

// fakeCache is an in-process domain.Cache that counts reads and writes.
type fakeCache struct {
	mu      sync.Mutex
	values  map[string]string
	sets    int
	deletes int
	err     error
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return "", c.err
	}
	v, ok := c.values[key]
	if !ok {
		return "", domain.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.values[key] = value
	c.sets++
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	c.deletes++
	return nil
}

func (c *fakeCache) Incr(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	n, _ := strconv.ParseInt(c.values[key], 10, 64)
	n++
	c.values[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (c *fakeCache) Ping(ctx context.Context) error {
	return c.err
}

// --- fixtures ---

func newTestSubject(t *testing.T, store *domain.Store, code string) *domain.Subject {
	t.Helper()
	subject := domain.NewSubject("Subject "+code, code)
	require.NoError(t, store.Subjects.Create(context.Background(), subject))
	return subject
}

func newTestTopic(t *testing.T, svc TopicService, subjectID, parentID, code string) *dto.TopicResponse {
	t.Helper()
	topic, err := svc.CreateTopic(context.Background(), &dto.CreateTopicRequest{
		Name:        "Topic " + code,
		Code:        code,
		Subject:     subjectID,
		ParentTopic: parentID,
	})
	require.NoError(t, err)
	return topic
}

// seedQuestion stores a question directly, bypassing counter maintenance.
func seedQuestion(t *testing.T, store *domain.Store, subjectID, topicID string, year, number int, difficulty string, verified bool) *domain.Question {
	t.Helper()
	q := domain.NewQuestion("Question "+strconv.Itoa(year)+"/"+strconv.Itoa(number), []domain.Option{
		{Text: "A", IsCorrect: true, Explanation: "because A"},
		{Text: "B"},
		{Text: "C"},
		{Text: "D"},
	}, 0)
	q.SubjectID = subjectID
	q.TopicID = topicID
	q.Year = year
	q.Month = "June"
	q.Paper = "Paper 2"
	q.QuestionNumber = number
	q.Difficulty = difficulty
	q.IsVerified = verified
	q.Explanation = "A is correct"
	q.OfficialAnswerKey = "A"
	q.OfficialAnswerKeyLink = "https://example.org/key.pdf"
	require.NoError(t, store.Questions.Create(context.Background(), q))
	return q
}

func newMemoryStore() *domain.Store {
	return memory.NewStore()
}
