package service

import (
	"context"
	"testing"

	"exam-hub/internal/domain"
	"exam-hub/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectService_CreateSubject(t *testing.T) {
	ctx := context.Background()
	svc := NewSubjectService(newMemoryStore(), nil)

	created, err := svc.CreateSubject(ctx, &dto.CreateSubjectRequest{Name: " Economics ", Code: " eco "})
	require.NoError(t, err)
	assert.Equal(t, "Economics", created.Name)
	assert.Equal(t, "ECO", created.Code)
	assert.True(t, created.IsCore)
	assert.Equal(t, []string{}, created.Topics)

	_, err = svc.CreateSubject(ctx, &dto.CreateSubjectRequest{Name: "Economics", Code: "ECO2"})
	assert.True(t, domain.HasCode(err, domain.CodeConflict))
	_, err = svc.CreateSubject(ctx, &dto.CreateSubjectRequest{Name: "Other", Code: "Eco"})
	assert.True(t, domain.HasCode(err, domain.CodeConflict))
}

func TestSubjectService_ListSubjects_IsCoreFilter(t *testing.T) {
	ctx := context.Background()
	svc := NewSubjectService(newMemoryStore(), nil)
	elective := false
	_, err := svc.CreateSubject(ctx, &dto.CreateSubjectRequest{Name: "Politics", Code: "POL"})
	require.NoError(t, err)
	_, err = svc.CreateSubject(ctx, &dto.CreateSubjectRequest{Name: "Anthropology", Code: "ANT", IsCore: &elective})
	require.NoError(t, err)
	_, err = svc.CreateSubject(ctx, &dto.CreateSubjectRequest{Name: "Economics", Code: "ECO"})
	require.NoError(t, err)

	all, err := svc.ListSubjects(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Anthropology", all[0].Name)
	assert.Equal(t, "Economics", all[1].Name)

	core := true
	onlyCore, err := svc.ListSubjects(ctx, &core)
	require.NoError(t, err)
	assert.Len(t, onlyCore, 2)
}

func TestSubjectService_UpdateSubject(t *testing.T) {
	ctx := context.Background()
	svc := NewSubjectService(newMemoryStore(), nil)
	eco, err := svc.CreateSubject(ctx, &dto.CreateSubjectRequest{Name: "Economics", Code: "ECO"})
	require.NoError(t, err)
	_, err = svc.CreateSubject(ctx, &dto.CreateSubjectRequest{Name: "Politics", Code: "POL"})
	require.NoError(t, err)

	notCore := false
	zero := 0.0
	updated, err := svc.UpdateSubject(ctx, eco.ID, &dto.UpdateSubjectRequest{IsCore: &notCore, Weightage: &zero})
	require.NoError(t, err)
	assert.False(t, updated.IsCore)
	assert.Equal(t, "Economics", updated.Name)

	pol := "pol"
	_, err = svc.UpdateSubject(ctx, eco.ID, &dto.UpdateSubjectRequest{Code: &pol})
	assert.True(t, domain.HasCode(err, domain.CodeConflict))

	_, err = svc.UpdateSubject(ctx, "missing", &dto.UpdateSubjectRequest{})
	assert.True(t, domain.HasCode(err, domain.CodeNotFound))
}

func TestSubjectService_DeleteSubject_HasDependents(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	svc := NewSubjectService(store, nil)
	topics := NewTopicService(store, nil)
	subject := newTestSubject(t, store, "ECO")
	topic := newTestTopic(t, topics, subject.ID, "", "A")

	err := svc.DeleteSubject(ctx, subject.ID)
	assert.True(t, domain.HasCode(err, domain.CodeHasDependents))

	require.NoError(t, topics.DeleteTopic(ctx, topic.ID))
	require.NoError(t, svc.DeleteSubject(ctx, subject.ID))

	_, err = svc.GetSubject(ctx, subject.ID)
	assert.True(t, domain.HasCode(err, domain.CodeNotFound))
}

func TestSubjectService_GetSubjectStats(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	svc := NewSubjectService(store, nil)
	topics := NewTopicService(store, nil)
	subject := newTestSubject(t, store, "ECO")
	other := newTestSubject(t, store, "POL")
	a := newTestTopic(t, topics, subject.ID, "", "A")
	b := newTestTopic(t, topics, subject.ID, a.ID, "B")
	p := newTestTopic(t, topics, other.ID, "", "P")

	seedQuestion(t, store, subject.ID, a.ID, 2021, 1, domain.DifficultyHard, true)
	seedQuestion(t, store, subject.ID, b.ID, 2020, 2, domain.DifficultyHard, false)
	seedQuestion(t, store, subject.ID, b.ID, 2021, 3, domain.DifficultyEasy, true)
	seedQuestion(t, store, other.ID, p.ID, 2021, 1, domain.DifficultyEasy, true)

	stats, err := svc.GetSubjectStats(ctx, subject.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.QuestionCount)
	assert.Equal(t, 2, stats.TopicCount)
	require.Len(t, stats.Topics, 2)
	assert.Equal(t, "A", stats.Topics[0].Code)
	assert.Equal(t, []domain.YearCount{{Year: 2020, Count: 1}, {Year: 2021, Count: 2}}, stats.QuestionsByYear)
	assert.Equal(t, []domain.DifficultyCount{{Difficulty: "easy", Count: 1}, {Difficulty: "hard", Count: 2}}, stats.QuestionsByDifficulty)

	_, err = svc.GetSubjectStats(ctx, "missing")
	assert.True(t, domain.HasCode(err, domain.CodeNotFound))
}
