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

var questionRowColumns = []string{"ID", "QUESTION_TEXT", "OPTIONS", "CORRECT_OPTION", "EXPLANATION", "DIFFICULTY",
	"SUBJECT_ID", "TOPIC_ID", "EXAM_YEAR", "EXAM_MONTH", "PAPER", "QUESTION_NUMBER", "OFFICIAL_ANSWER_KEY",
	"OFFICIAL_ANSWER_KEY_LINK", "IS_VERIFIED", "ADDED_BY", "TAGS", "TOTAL_ATTEMPTS", "CORRECT_ATTEMPTS", "ACCURACY",
	"CREATED_AT", "UPDATED_AT"}

func TestQuestionRepository_Create_RecalculatesAccuracy(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewQuestionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO questions")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	q := domain.NewQuestion("2+2?", []domain.Option{{Text: "3"}, {Text: "4", IsCorrect: true}}, 1)
	q.Stats = domain.QuestionStats{TotalAttempts: 4, CorrectAttempts: 1, Accuracy: 99}
	err := repo.Create(context.Background(), q)

	assert.NoError(t, err)
	assert.NotEmpty(t, q.ID)
	assert.Equal(t, 25.0, q.Stats.Accuracy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionRepository_GetByID(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewQuestionRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows(questionRowColumns).AddRow(
		"q1", "Which layer routes packets?", `[{"text":"Network","isCorrect":true,"explanation":""},{"text":"Link","isCorrect":false,"explanation":""}]`,
		0, "Layer 3", "easy", "s1", "t1", 2023, "June", "Paper 2", 14, nil, nil, 1, "u1", `["osi"]`,
		10, 5, 50.0, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM questions WHERE ID = ?")).
		WithArgs("q1").
		WillReturnRows(rows)

	q, err := repo.GetByID(context.Background(), "q1")

	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Len(t, q.Options, 2)
	assert.True(t, q.Options[0].IsCorrect)
	assert.Equal(t, 2023, q.Year)
	assert.Equal(t, "June", q.Month)
	assert.True(t, q.IsVerified)
	assert.Equal(t, "u1", q.AddedBy)
	assert.Equal(t, "", q.OfficialAnswerKey)
	assert.Equal(t, domain.QuestionStats{TotalAttempts: 10, CorrectAttempts: 5, Accuracy: 50}, q.Stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionRepository_Find_FilterOrderPage(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewQuestionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM questions WHERE SUBJECT_ID = ? AND TOPIC_ID IN (?, ?, ?) AND EXAM_YEAR = ? AND IS_VERIFIED = 1 ORDER BY EXAM_YEAR DESC, QUESTION_NUMBER ASC, ID OFFSET ? ROWS FETCH NEXT ? ROWS ONLY")).
		WithArgs("s1", "t1", "t2", "t3", 2022, 10, 10).
		WillReturnRows(sqlmock.NewRows(questionRowColumns))

	filter := domain.QuestionFilter{SubjectID: "s1", TopicIDs: []string{"t1", "t2", "t3"}, Year: 2022, VerifiedOnly: true}
	questions, err := repo.Find(context.Background(), filter, domain.OrderYearDescNumberAsc, domain.Page{Limit: 10, Offset: 10})

	assert.NoError(t, err)
	assert.Empty(t, questions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionRepository_Find_PaperOrderNoPaging(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewQuestionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM questions WHERE EXAM_YEAR = ? AND EXAM_MONTH = ? ORDER BY PAPER ASC, QUESTION_NUMBER ASC, ID")).
		WithArgs(2021, "December").
		WillReturnRows(sqlmock.NewRows(questionRowColumns))

	filter := domain.QuestionFilter{Year: 2021, Month: "December"}
	_, err := repo.Find(context.Background(), filter, domain.OrderPaperAscNumberAsc, domain.Page{})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionRepository_Count(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewQuestionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM questions WHERE TOPIC_ID = ? AND DIFFICULTY = ?")).
		WithArgs("t1", "hard").
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(25))

	n, err := repo.Count(context.Background(), domain.QuestionFilter{TopicIDs: []string{"t1"}, Difficulty: "hard"})

	assert.NoError(t, err)
	assert.Equal(t, 25, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionRepository_Breakdowns(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewQuestionRepository(db)
	filter := domain.QuestionFilter{SubjectID: "s1"}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXAM_YEAR, COUNT(*) AS CNT FROM questions WHERE SUBJECT_ID = ? GROUP BY EXAM_YEAR ORDER BY EXAM_YEAR")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"EXAM_YEAR", "CNT"}).AddRow(2019, 3).AddRow(2020, 5))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DIFFICULTY, COUNT(*) AS CNT FROM questions WHERE SUBJECT_ID = ? GROUP BY DIFFICULTY ORDER BY DIFFICULTY")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"DIFFICULTY", "CNT"}).AddRow("easy", 6).AddRow("hard", 2))

	years, err := repo.CountByYear(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, []domain.YearCount{{Year: 2019, Count: 3}, {Year: 2020, Count: 5}}, years)

	levels, err := repo.CountByDifficulty(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, []domain.DifficultyCount{{Difficulty: "easy", Count: 6}, {Difficulty: "hard", Count: 2}}, levels)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionRepository_IncrementAttempts(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewQuestionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE questions SET TOTAL_ATTEMPTS = TOTAL_ATTEMPTS + 1")).
		WithArgs(1, 1, "q1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT TOTAL_ATTEMPTS, CORRECT_ATTEMPTS, ACCURACY FROM questions WHERE ID = ?")).
		WithArgs("q1").
		WillReturnRows(sqlmock.NewRows([]string{"TOTAL_ATTEMPTS", "CORRECT_ATTEMPTS", "ACCURACY"}).AddRow(4, 3, 75.0))

	stats, err := repo.IncrementAttempts(context.Background(), "q1", true)

	require.NoError(t, err)
	assert.Equal(t, &domain.QuestionStats{TotalAttempts: 4, CorrectAttempts: 3, Accuracy: 75}, stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionRepository_IncrementAttempts_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewQuestionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE questions SET TOTAL_ATTEMPTS")).
		WithArgs(0, 0, "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	stats, err := repo.IncrementAttempts(context.Background(), "ghost", false)

	assert.Nil(t, stats)
	assert.True(t, domain.HasCode(err, domain.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionRepository_Update_LeavesCounters(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewQuestionRepository(db)

	mock.ExpectExec(`UPDATE questions SET QUESTION_TEXT = \?.*TAGS = \?, UPDATED_AT = \? WHERE ID = \?`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	q := domain.NewQuestion("edited", []domain.Option{{Text: "a"}, {Text: "b"}}, 0)
	q.ID = "q1"
	err := repo.Update(context.Background(), q)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
