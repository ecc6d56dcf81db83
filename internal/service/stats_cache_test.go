package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"exam-hub/internal/cache"
	"exam-hub/internal/domain"
	"exam-hub/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStats_CachesUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	c := newFakeCache()
	stats := NewStatsCache(c, time.Minute)

	calls := 0
	compute := func(ctx context.Context) (*dto.SubjectStatsResponse, error) {
		calls++
		return &dto.SubjectStatsResponse{QuestionCount: calls}, nil
	}

	first, err := loadStats(ctx, stats, cache.StatsKindSubject, "s1", compute)
	require.NoError(t, err)
	second, err := loadStats(ctx, stats, cache.StatsKindSubject, "s1", compute)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.Contains(t, c.values, cache.StatsKey(cache.StatsKindSubject, "s1", 0))

	stats.Invalidate(ctx)
	third, err := loadStats(ctx, stats, cache.StatsKindSubject, "s1", compute)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, third.QuestionCount)
	assert.Contains(t, c.values, cache.StatsKey(cache.StatsKindSubject, "s1", 1))
}

func TestLoadStats_CacheFaultFallsThrough(t *testing.T) {
	ctx := context.Background()
	c := newFakeCache()
	c.err = errors.New("connection refused")
	stats := NewStatsCache(c, time.Minute)

	got, err := loadStats(ctx, stats, cache.StatsKindTopic, "t1", func(ctx context.Context) (*dto.TopicStatsResponse, error) {
		return &dto.TopicStatsResponse{TotalQuestions: 4}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 4, got.TotalQuestions)

	stats.Invalidate(ctx)
}

func TestLoadStats_NilCache(t *testing.T) {
	var stats *StatsCache
	got, err := loadStats(context.Background(), stats, cache.StatsKindTopic, "t1", func(ctx context.Context) (*dto.TopicStatsResponse, error) {
		return &dto.TopicStatsResponse{TotalQuestions: 1}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalQuestions)
	stats.Invalidate(context.Background())
}

func TestLoadStats_UndecodableEntryDeleted(t *testing.T) {
	ctx := context.Background()
	c := newFakeCache()
	key := cache.StatsKey(cache.StatsKindTopic, "t1", 0)
	c.values[key] = "{not json"
	stats := NewStatsCache(c, time.Minute)

	calls := 0
	compute := func(ctx context.Context) (*dto.TopicStatsResponse, error) {
		calls++
		return &dto.TopicStatsResponse{TotalQuestions: 3}, nil
	}

	got, err := loadStats(ctx, stats, cache.StatsKindTopic, "t1", compute)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalQuestions)
	assert.Equal(t, 1, c.deletes)
	assert.NotContains(t, c.values, key)

	got, err = loadStats(ctx, stats, cache.StatsKindTopic, "t1", compute)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalQuestions)
	assert.Equal(t, 2, calls)
	assert.Contains(t, c.values, key)
}

func TestLoadStats_ComputeErrorNotCached(t *testing.T) {
	ctx := context.Background()
	c := newFakeCache()
	stats := NewStatsCache(c, time.Minute)

	_, err := loadStats(ctx, stats, cache.StatsKindTopic, "t1", func(ctx context.Context) (*dto.TopicStatsResponse, error) {
		return nil, domain.NewNotFoundError("topic not found")
	})
	assert.True(t, domain.HasCode(err, domain.CodeNotFound))
	assert.Zero(t, c.sets)
}

func TestLoadStats_ConcurrentCallersGetOwnCopy(t *testing.T) {
	ctx := context.Background()
	stats := NewStatsCache(newFakeCache(), time.Minute)
	compute := func(ctx context.Context) (*dto.SubjectStatsResponse, error) {
		return &dto.SubjectStatsResponse{Topics: []dto.TopicSummary{{ID: "a"}}}, nil
	}

	var wg sync.WaitGroup
	results := make([]*dto.SubjectStatsResponse, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := loadStats(ctx, stats, cache.StatsKindSubject, "s1", compute)
			assert.NoError(t, err)
			results[i] = got
		}()
	}
	wg.Wait()

	results[0].Topics[0].ID = "mutated"
	for _, r := range results[1:] {
		assert.Equal(t, "a", r.Topics[0].ID)
	}
}

func TestTopicService_StatsInvalidatedByMutation(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	statsCache := NewStatsCache(newFakeCache(), time.Minute)
	topics := NewTopicService(store, statsCache)
	questions := NewQuestionService(store, statsCache, testQuestionsConfig())
	subject := newTestSubject(t, store, "ECO")
	topic := newTestTopic(t, topics, subject.ID, "", "A")

	before, err := topics.GetTopicStats(ctx, topic.ID)
	require.NoError(t, err)
	assert.Zero(t, before.TotalQuestions)

	_, err = questions.CreateQuestion(ctx, &dto.CreateQuestionRequest{
		QuestionText:   "Q",
		Options:        []dto.OptionRequest{{Text: "a"}, {Text: "b"}},
		CorrectOption:  intPtr(1),
		Subject:        subject.ID,
		Topic:          topic.ID,
		Year:           2020,
		Month:          "June",
		Paper:          "Paper 1",
		QuestionNumber: 1,
	}, nil)
	require.NoError(t, err)

	after, err := topics.GetTopicStats(ctx, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, after.TotalQuestions)
}
