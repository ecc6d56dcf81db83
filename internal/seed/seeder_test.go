package seed

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"exam-hub/internal/config"
	"exam-hub/internal/domain"
	"exam-hub/internal/repository/memory"
	"exam-hub/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSeeder(t *testing.T) (*Seeder, *domain.Store) {
	t.Helper()
	store := memory.NewStore()
	auth, err := service.NewAuthService(store.Users, config.JWTConfig{
		SecretKey:      "seed-test-secret-key-at-least-32-bytes",
		AccessTokenTTL: time.Hour,
		Issuer:         "exam-hub-test",
	})
	require.NoError(t, err)

	questionsCfg := config.QuestionsConfig{DefaultPageSize: 10, MaxPageSize: 100, PracticeLimit: 10, MaxPracticeLimit: 50}
	return NewSeeder(store, auth,
		service.NewSubjectService(store, nil),
		service.NewTopicService(store, nil),
		service.NewQuestionService(store, nil, questionsCfg),
	), store
}

func loadTestBundle(t *testing.T) *Bundle {
	t.Helper()
	bundle, err := LoadFile(filepath.Join("testdata", "economics.yaml"))
	require.NoError(t, err)
	return bundle
}

func TestSeeder_Apply(t *testing.T) {
	ctx := context.Background()
	seeder, store := newTestSeeder(t)

	report, err := seeder.Apply(ctx, loadTestBundle(t))
	require.NoError(t, err)
	assert.True(t, report.AdminCreated)
	assert.Equal(t, 2, report.SubjectsCreated)
	assert.Equal(t, 0, report.SubjectsSkipped)
	assert.Equal(t, 2, report.TopicsCreated)
	assert.Equal(t, 2, report.QuestionsCreated)

	admin, err := store.Users.GetByEmail(ctx, "admin@examhub.local")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	eco, err := store.Subjects.GetByCode(ctx, "ECO")
	require.NoError(t, err)
	require.NotNil(t, eco)
	assert.Equal(t, 2, eco.QuestionCount)
	assert.Len(t, eco.Topics, 2)

	com, err := store.Subjects.GetByCode(ctx, "COM")
	require.NoError(t, err)
	require.NotNil(t, com)
	assert.False(t, com.IsCore)

	questions, err := store.Questions.Find(ctx, domain.QuestionFilter{SubjectID: eco.ID}, domain.OrderYearDescNumberAsc, domain.Page{})
	require.NoError(t, err)
	require.Len(t, questions, 2)
	for _, q := range questions {
		assert.Equal(t, admin.ID, q.AddedBy)
		assert.True(t, q.IsVerified)
	}
	assert.Equal(t, "medium", questions[1].Difficulty)
}

func TestSeeder_ApplyTwiceSkipsExistingSubjects(t *testing.T) {
	ctx := context.Background()
	seeder, _ := newTestSeeder(t)
	bundle := loadTestBundle(t)

	_, err := seeder.Apply(ctx, bundle)
	require.NoError(t, err)

	report, err := seeder.Apply(ctx, bundle)
	require.NoError(t, err)
	assert.False(t, report.AdminCreated)
	assert.Equal(t, 0, report.SubjectsCreated)
	assert.Equal(t, 2, report.SubjectsSkipped)
	assert.Equal(t, 0, report.QuestionsCreated)
}

func TestSeeder_PromotesExistingUser(t *testing.T) {
	ctx := context.Background()
	seeder, store := newTestSeeder(t)

	existing := domain.NewUser("Existing", "admin@examhub.local")
	require.NoError(t, store.Users.Create(ctx, existing))

	report, err := seeder.Apply(ctx, loadTestBundle(t))
	require.NoError(t, err)
	assert.False(t, report.AdminCreated)

	got, err := store.Users.GetByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got.Role)
}

func TestSeeder_QuestionsWithoutAdmin(t *testing.T) {
	seeder, _ := newTestSeeder(t)
	bundle := loadTestBundle(t)
	bundle.Admin = nil

	_, err := seeder.Apply(context.Background(), bundle)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no admin")
}

func TestSeeder_InvalidAnswerKey(t *testing.T) {
	seeder, _ := newTestSeeder(t)
	bundle := loadTestBundle(t)
	bundle.Subjects[0].Topics[0].Questions[0].CorrectOption = 7

	_, err := seeder.Apply(context.Background(), bundle)
	require.Error(t, err)

	var verrs domain.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}
