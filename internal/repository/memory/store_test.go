package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"exam-hub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectStore_UniqueNameAndCode(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	require.NoError(t, store.Subjects.Create(ctx, domain.NewSubject("Computer Science", "cs")))

	err := store.Subjects.Create(ctx, domain.NewSubject("Other", "CS"))
	assert.True(t, domain.HasCode(err, domain.CodeConflict))

	err = store.Subjects.Create(ctx, domain.NewSubject("Computer Science", "CS2"))
	assert.True(t, domain.HasCode(err, domain.CodeConflict))

	got, err := store.Subjects.GetByCode(ctx, "cs")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Computer Science", got.Name)
}

func TestSubjectStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	subject := domain.NewSubject("Maths", "MA")
	require.NoError(t, store.Subjects.Create(ctx, subject))

	got, _ := store.Subjects.GetByID(ctx, subject.ID)
	got.AddTopic("t1")

	again, _ := store.Subjects.GetByID(ctx, subject.ID)
	assert.Empty(t, again.Topics)
}

func TestSubjectStore_ListFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	b := domain.NewSubject("B", "B")
	a := domain.NewSubject("A", "A")
	c := domain.NewSubject("C", "C")
	c.IsCore = false
	for _, s := range []*domain.Subject{b, a, c} {
		require.NoError(t, store.Subjects.Create(ctx, s))
	}

	all, err := store.Subjects.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "A", all[0].Name)

	core := true
	onlyCore, _ := store.Subjects.List(ctx, &core)
	assert.Len(t, onlyCore, 2)
}

func TestTopicStore_TreeQueries(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	root := domain.NewTopic("s1", "Networks", "NW")
	require.NoError(t, store.Topics.Create(ctx, root))
	child := domain.NewTopic("s1", "Routing", "RT")
	child.ParentTopicID = root.ID
	require.NoError(t, store.Topics.Create(ctx, child))
	other := domain.NewTopic("s2", "Routing Tables", "RTT")
	require.NoError(t, store.Topics.Create(ctx, other))

	roots, err := store.Topics.Find(ctx, domain.TopicFilter{SubjectID: "s1", RootsOnly: true})
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, root.ID, roots[0].ID)

	ids, _ := store.Topics.ChildIDs(ctx, root.ID)
	assert.Equal(t, []string{child.ID}, ids)

	n, _ := store.Topics.CountChildren(ctx, root.ID)
	assert.Equal(t, 1, n)

	found, _ := store.Topics.Search(ctx, "ROUT", "", 10)
	assert.Len(t, found, 2)
	found, _ = store.Topics.Search(ctx, "rout", "s2", 10)
	require.Len(t, found, 1)
	assert.Equal(t, other.ID, found[0].ID)
	found, _ = store.Topics.Search(ctx, "rout", "", 1)
	assert.Len(t, found, 1)
}

func TestQuestionStore_FindOrdersAndPages(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	for i, spec := range []struct{ year, number int }{{2020, 2}, {2022, 5}, {2020, 1}, {2022, 3}} {
		q := domain.NewQuestion("q", []domain.Option{{Text: "a"}, {Text: "b"}}, 0)
		q.Year = spec.year
		q.QuestionNumber = spec.number
		q.TopicID = []string{"t1", "t2"}[i%2]
		require.NoError(t, store.Questions.Create(ctx, q))
	}

	all, err := store.Questions.Find(ctx, domain.QuestionFilter{}, domain.OrderYearDescNumberAsc, domain.Page{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []int{3, 5, 1, 2}, []int{all[0].QuestionNumber, all[1].QuestionNumber, all[2].QuestionNumber, all[3].QuestionNumber})

	page, _ := store.Questions.Find(ctx, domain.QuestionFilter{}, domain.OrderYearDescNumberAsc, domain.Page{Limit: 3, Offset: 3})
	assert.Len(t, page, 1)

	past, _ := store.Questions.Find(ctx, domain.QuestionFilter{}, domain.OrderYearDescNumberAsc, domain.Page{Limit: 3, Offset: 9})
	assert.Empty(t, past)

	negative, err := store.Questions.Find(ctx, domain.QuestionFilter{}, domain.OrderYearDescNumberAsc, domain.Page{Limit: 3, Offset: -10})
	require.NoError(t, err)
	assert.Empty(t, negative)

	n, _ := store.Questions.Count(ctx, domain.QuestionFilter{TopicIDs: []string{"t2"}})
	assert.Equal(t, 2, n)

	years, _ := store.Questions.CountByYear(ctx, domain.QuestionFilter{})
	assert.Equal(t, []domain.YearCount{{Year: 2020, Count: 2}, {Year: 2022, Count: 2}}, years)
}

func TestQuestionStore_IncrementAttemptsConcurrent(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	q := domain.NewQuestion("q", []domain.Option{{Text: "a"}, {Text: "b"}}, 0)
	require.NoError(t, store.Questions.Create(ctx, q))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(correct bool) {
			defer wg.Done()
			_, err := store.Questions.IncrementAttempts(ctx, q.ID, correct)
			assert.NoError(t, err)
		}(i%2 == 0)
	}
	wg.Wait()

	got, _ := store.Questions.GetByID(ctx, q.ID)
	assert.Equal(t, 50, got.Stats.TotalAttempts)
	assert.Equal(t, 25, got.Stats.CorrectAttempts)
	assert.Equal(t, 50.0, got.Stats.Accuracy)
}

func TestQuestionStore_UpdateKeepsStats(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	q := domain.NewQuestion("q", []domain.Option{{Text: "a"}, {Text: "b"}}, 0)
	require.NoError(t, store.Questions.Create(ctx, q))
	_, err := store.Questions.IncrementAttempts(ctx, q.ID, true)
	require.NoError(t, err)

	edited := *q
	edited.QuestionText = "edited"
	edited.Stats = domain.QuestionStats{}
	require.NoError(t, store.Questions.Update(ctx, &edited))

	got, _ := store.Questions.GetByID(ctx, q.ID)
	assert.Equal(t, "edited", got.QuestionText)
	assert.Equal(t, 1, got.Stats.TotalAttempts)

	err = store.Questions.Delete(ctx, "ghost")
	assert.True(t, domain.HasCode(err, domain.CodeNotFound))
}

func TestUserStore_EmailUnique(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Users.Create(ctx, domain.NewUser("A", "a@example.com")))

	err := store.Users.Create(ctx, domain.NewUser("B", "A@example.com"))
	assert.True(t, domain.HasCode(err, domain.CodeConflict))

	got, err := store.Users.GetByEmail(ctx, "A@EXAMPLE.COM")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "A", got.Name)
}

func TestTransactionManager_NestedAndError(t *testing.T) {
	store := NewStore()
	boom := errors.New("boom")
	calls := 0

	err := store.Transactions.WithTransaction(context.Background(), func(ctx context.Context) error {
		return store.Transactions.WithTransaction(ctx, func(ctx context.Context) error {
			calls++
			return boom
		})
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
