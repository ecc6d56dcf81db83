package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"exam-hub/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var topicRowColumns = []string{"ID", "NAME", "CODE", "DESCRIPTION", "SUBJECT_ID", "PARENT_TOPIC_ID", "SUB_TOPICS", "QUESTION_COUNT", "WEIGHTAGE", "IS_ACTIVE", "RESOURCES", "CREATED_AT", "UPDATED_AT"}

func TestTopicRepository_Create(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewTopicRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO topics")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	topic := domain.NewTopic("s1", "Graphs", "gr")
	err := repo.Create(context.Background(), topic)

	assert.NoError(t, err)
	assert.NotEmpty(t, topic.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicRepository_GetByID(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewTopicRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows(topicRowColumns).AddRow(
		"t2", "Trees", "TR", nil, "s1", "t1", `["t3"]`, 7, 2.0, 1,
		`[{"title":"Notes","url":"http://example.com/trees.pdf","type":"pdf","isFree":true}]`, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM topics WHERE ID = ?")).
		WithArgs("t2").
		WillReturnRows(rows)

	topic, err := repo.GetByID(context.Background(), "t2")

	require.NoError(t, err)
	require.NotNil(t, topic)
	assert.Equal(t, "t1", topic.ParentTopicID)
	assert.False(t, topic.IsRoot())
	assert.Equal(t, []string{"t3"}, topic.SubTopics)
	assert.True(t, topic.IsActive)
	require.Len(t, topic.Resources, 1)
	assert.Equal(t, domain.ResourcePDF, topic.Resources[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicRepository_FindRoots(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewTopicRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows(topicRowColumns).
		AddRow("t1", "Algorithms", "AL", nil, "s1", nil, nil, 0, 0.0, 1, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM topics WHERE SUBJECT_ID = ? AND PARENT_TOPIC_ID IS NULL ORDER BY NAME")).
		WithArgs("s1").
		WillReturnRows(rows)

	topics, err := repo.Find(context.Background(), domain.TopicFilter{SubjectID: "s1", RootsOnly: true})

	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.True(t, topics[0].IsRoot())
	assert.Empty(t, topics[0].Resources)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicRepository_GetByIDs(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewTopicRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM topics WHERE ID IN (?, ?) ORDER BY NAME")).
		WithArgs("t1", "t2").
		WillReturnRows(sqlmock.NewRows(topicRowColumns))

	topics, err := repo.GetByIDs(context.Background(), []string{"t1", "t2"})
	assert.NoError(t, err)
	assert.Empty(t, topics)

	topics, err = repo.GetByIDs(context.Background(), nil)
	assert.NoError(t, err)
	assert.NotNil(t, topics)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicRepository_ChildIDs(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewTopicRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT ID FROM topics WHERE PARENT_TOPIC_ID = ?")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"ID"}).AddRow("t2").AddRow("t3"))

	ids, err := repo.ChildIDs(context.Background(), "t1")

	assert.NoError(t, err)
	assert.Equal(t, []string{"t2", "t3"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicRepository_Counts(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewTopicRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM topics WHERE SUBJECT_ID = ?")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM topics WHERE PARENT_TOPIC_ID = ?")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(0))

	n, err := repo.CountBySubject(context.Background(), "s1")
	assert.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = repo.CountChildren(context.Background(), "t1")
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicRepository_Search_EscapesWildcards(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewTopicRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE LOWER(NAME) LIKE ? ESCAPE '\' AND SUBJECT_ID = ? ORDER BY NAME FETCH FIRST ? ROWS ONLY`)).
		WithArgs(`%100\%\_c++%`, "s1", 10).
		WillReturnRows(sqlmock.NewRows(topicRowColumns))

	_, err := repo.Search(context.Background(), "100%_C++", "s1", 10)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicRepository_Delete_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewTopicRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM topics WHERE ID = ?")).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "ghost")

	assert.True(t, domain.HasCode(err, domain.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
