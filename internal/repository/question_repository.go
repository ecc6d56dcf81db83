package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"exam-hub/internal/domain"
	"exam-hub/internal/repository/models"
	"exam-hub/internal/util"

	"github.com/jmoiron/sqlx"
)

const questionColumns = `ID, QUESTION_TEXT, OPTIONS, CORRECT_OPTION, EXPLANATION, DIFFICULTY, SUBJECT_ID, TOPIC_ID,
	EXAM_YEAR, EXAM_MONTH, PAPER, QUESTION_NUMBER, OFFICIAL_ANSWER_KEY, OFFICIAL_ANSWER_KEY_LINK, IS_VERIFIED,
	ADDED_BY, TAGS, TOTAL_ATTEMPTS, CORRECT_ATTEMPTS, ACCURACY, CREATED_AT, UPDATED_AT`

// QuestionDatabaseAdapter stores questions in the QUESTIONS table.
type QuestionDatabaseAdapter struct {
	db *sqlx.DB
}

func NewQuestionRepository(db *sqlx.DB) domain.QuestionRepository {
	return &QuestionDatabaseAdapter{db: db}
}

func (r *QuestionDatabaseAdapter) Create(ctx context.Context, question *domain.Question) error {
	if question.ID == "" {
		question.ID = util.NewULID()
	}
	now := time.Now()
	question.CreatedAt = now
	question.UpdatedAt = now
	question.Stats.Recalculate()

	query := `INSERT INTO questions (` + questionColumns + `)
	          VALUES (:ID, :QUESTION_TEXT, :OPTIONS, :CORRECT_OPTION, :EXPLANATION, :DIFFICULTY, :SUBJECT_ID, :TOPIC_ID,
	          :EXAM_YEAR, :EXAM_MONTH, :PAPER, :QUESTION_NUMBER, :OFFICIAL_ANSWER_KEY, :OFFICIAL_ANSWER_KEY_LINK,
	          :IS_VERIFIED, :ADDED_BY, :TAGS, :TOTAL_ATTEMPTS, :CORRECT_ATTEMPTS, :ACCURACY, :CREATED_AT, :UPDATED_AT)`
	if _, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, toModelQuestion(question)); err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

// GetByID returns nil, nil when the question does not exist.
func (r *QuestionDatabaseAdapter) GetByID(ctx context.Context, id string) (*domain.Question, error) {
	db := GetExecutor(ctx, r.db)
	var row models.Question
	query := db.Rebind(`SELECT ` + questionColumns + ` FROM questions WHERE ID = ?`)
	if err := db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return toDomainQuestion(&row), nil
}

// Find returns one page of matching questions. A zero page limit returns every match.
func (r *QuestionDatabaseAdapter) Find(ctx context.Context, filter domain.QuestionFilter, order domain.QuestionOrder, page domain.Page) ([]*domain.Question, error) {
	db := GetExecutor(ctx, r.db)
	where := questionWhere(filter)
	query := `SELECT ` + questionColumns + ` FROM questions` + where.String() + orderBy(order)
	args := where.args
	if page.Limit > 0 {
		query += ` OFFSET ? ROWS FETCH NEXT ? ROWS ONLY`
		args = append(args, page.Offset, page.Limit)
	}

	query, args, err := expandIn(db, query, args)
	if err != nil {
		return nil, err
	}

	var rows []models.Question
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find questions: %w", err)
	}
	questions := make([]*domain.Question, len(rows))
	for i := range rows {
		questions[i] = toDomainQuestion(&rows[i])
	}
	return questions, nil
}

func (r *QuestionDatabaseAdapter) Count(ctx context.Context, filter domain.QuestionFilter) (int, error) {
	db := GetExecutor(ctx, r.db)
	where := questionWhere(filter)
	query, args, err := expandIn(db, `SELECT COUNT(*) FROM questions`+where.String(), where.args)
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return n, nil
}

// CountByYear groups matching questions by exam year, ascending.
func (r *QuestionDatabaseAdapter) CountByYear(ctx context.Context, filter domain.QuestionFilter) ([]domain.YearCount, error) {
	db := GetExecutor(ctx, r.db)
	where := questionWhere(filter)
	query, args, err := expandIn(db, `SELECT EXAM_YEAR, COUNT(*) AS CNT FROM questions`+where.String()+
		` GROUP BY EXAM_YEAR ORDER BY EXAM_YEAR`, where.args)
	if err != nil {
		return nil, err
	}
	var rows []models.YearBucket
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to group questions by year: %w", err)
	}
	counts := make([]domain.YearCount, len(rows))
	for i, row := range rows {
		counts[i] = domain.YearCount{Year: row.Year, Count: row.Count}
	}
	return counts, nil
}

// CountByDifficulty groups matching questions by difficulty, ascending.
func (r *QuestionDatabaseAdapter) CountByDifficulty(ctx context.Context, filter domain.QuestionFilter) ([]domain.DifficultyCount, error) {
	db := GetExecutor(ctx, r.db)
	where := questionWhere(filter)
	query, args, err := expandIn(db, `SELECT DIFFICULTY, COUNT(*) AS CNT FROM questions`+where.String()+
		` GROUP BY DIFFICULTY ORDER BY DIFFICULTY`, where.args)
	if err != nil {
		return nil, err
	}
	var rows []models.DifficultyBucket
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to group questions by difficulty: %w", err)
	}
	counts := make([]domain.DifficultyCount, len(rows))
	for i, row := range rows {
		counts[i] = domain.DifficultyCount{Difficulty: row.Difficulty, Count: row.Count}
	}
	return counts, nil
}

// Update rewrites the content columns. Attempt counters are owned by IncrementAttempts.
func (r *QuestionDatabaseAdapter) Update(ctx context.Context, question *domain.Question) error {
	question.UpdatedAt = time.Now()
	query := `UPDATE questions SET QUESTION_TEXT = :QUESTION_TEXT, OPTIONS = :OPTIONS, CORRECT_OPTION = :CORRECT_OPTION,
	          EXPLANATION = :EXPLANATION, DIFFICULTY = :DIFFICULTY, SUBJECT_ID = :SUBJECT_ID, TOPIC_ID = :TOPIC_ID,
	          EXAM_YEAR = :EXAM_YEAR, EXAM_MONTH = :EXAM_MONTH, PAPER = :PAPER, QUESTION_NUMBER = :QUESTION_NUMBER,
	          OFFICIAL_ANSWER_KEY = :OFFICIAL_ANSWER_KEY, OFFICIAL_ANSWER_KEY_LINK = :OFFICIAL_ANSWER_KEY_LINK,
	          IS_VERIFIED = :IS_VERIFIED, TAGS = :TAGS, UPDATED_AT = :UPDATED_AT
	          WHERE ID = :ID`
	result, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, toModelQuestion(question))
	if err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	return expectAffected(result, "question", question.ID)
}

// IncrementAttempts bumps the counters and accuracy in one UPDATE so concurrent
// submissions cannot lose increments, then reads the new values back.
func (r *QuestionDatabaseAdapter) IncrementAttempts(ctx context.Context, id string, correct bool) (*domain.QuestionStats, error) {
	db := GetExecutor(ctx, r.db)
	inc := models.BoolToNumber(correct)
	update := db.Rebind(`UPDATE questions SET TOTAL_ATTEMPTS = TOTAL_ATTEMPTS + 1,
	          CORRECT_ATTEMPTS = CORRECT_ATTEMPTS + ?,
	          ACCURACY = (CORRECT_ATTEMPTS + ?) * 100 / (TOTAL_ATTEMPTS + 1)
	          WHERE ID = ?`)
	result, err := db.ExecContext(ctx, update, inc, inc, id)
	if err != nil {
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}
	if err := expectAffected(result, "question", id); err != nil {
		return nil, err
	}

	var row models.QuestionStats
	query := db.Rebind(`SELECT TOTAL_ATTEMPTS, CORRECT_ATTEMPTS, ACCURACY FROM questions WHERE ID = ?`)
	if err := db.GetContext(ctx, &row, query, id); err != nil {
		return nil, fmt.Errorf("failed to read question stats: %w", err)
	}
	return &domain.QuestionStats{
		TotalAttempts:   row.TotalAttempts,
		CorrectAttempts: row.CorrectAttempts,
		Accuracy:        row.Accuracy,
	}, nil
}

func (r *QuestionDatabaseAdapter) Delete(ctx context.Context, id string) error {
	db := GetExecutor(ctx, r.db)
	result, err := db.ExecContext(ctx, db.Rebind(`DELETE FROM questions WHERE ID = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	return expectAffected(result, "question", id)
}

func questionWhere(filter domain.QuestionFilter) *whereClause {
	where := &whereClause{}
	if filter.SubjectID != "" {
		where.add("SUBJECT_ID = ?", filter.SubjectID)
	}
	switch len(filter.TopicIDs) {
	case 0:
	case 1:
		where.add("TOPIC_ID = ?", filter.TopicIDs[0])
	default:
		where.add("TOPIC_ID IN (?)", filter.TopicIDs)
	}
	if filter.Year != 0 {
		where.add("EXAM_YEAR = ?", filter.Year)
	}
	if filter.Month != "" {
		where.add("EXAM_MONTH = ?", filter.Month)
	}
	if filter.Paper != "" {
		where.add("PAPER = ?", filter.Paper)
	}
	if filter.Difficulty != "" {
		where.add("DIFFICULTY = ?", filter.Difficulty)
	}
	if filter.VerifiedOnly {
		where.add("IS_VERIFIED = 1")
	}
	return where
}

func orderBy(order domain.QuestionOrder) string {
	switch order {
	case domain.OrderPaperAscNumberAsc:
		return ` ORDER BY PAPER ASC, QUESTION_NUMBER ASC, ID`
	case domain.OrderCreation:
		return ` ORDER BY CREATED_AT, ID`
	default:
		return ` ORDER BY EXAM_YEAR DESC, QUESTION_NUMBER ASC, ID`
	}
}

// expandIn expands slice arguments into IN lists and rebinds for the driver.
func expandIn(db DBTX, query string, args []interface{}) (string, []interface{}, error) {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, fmt.Errorf("failed to expand query arguments: %w", err)
	}
	return db.Rebind(query), args, nil
}

func toDomainQuestion(m *models.Question) *domain.Question {
	options := []domain.Option(m.Options)
	if options == nil {
		options = []domain.Option{}
	}
	tags := []string(m.Tags)
	if tags == nil {
		tags = []string{}
	}
	return &domain.Question{
		ID:                    m.ID,
		QuestionText:          m.QuestionText,
		Options:               options,
		CorrectOption:         m.CorrectOption,
		Explanation:           util.NullStringToString(m.Explanation),
		Difficulty:            m.Difficulty,
		SubjectID:             m.SubjectID,
		TopicID:               m.TopicID,
		Year:                  m.Year,
		Month:                 m.Month,
		Paper:                 m.Paper,
		QuestionNumber:        m.QuestionNumber,
		OfficialAnswerKey:     util.NullStringToString(m.OfficialAnswerKey),
		OfficialAnswerKeyLink: util.NullStringToString(m.OfficialAnswerKeyLink),
		IsVerified:            m.IsVerified != 0,
		AddedBy:               util.NullStringToString(m.AddedBy),
		Tags:                  tags,
		Stats: domain.QuestionStats{
			TotalAttempts:   m.TotalAttempts,
			CorrectAttempts: m.CorrectAttempts,
			Accuracy:        m.Accuracy,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toModelQuestion(q *domain.Question) *models.Question {
	return &models.Question{
		ID:                    q.ID,
		QuestionText:          q.QuestionText,
		Options:               models.OptionList(q.Options),
		CorrectOption:         q.CorrectOption,
		Explanation:           util.StringToNullString(q.Explanation),
		Difficulty:            q.Difficulty,
		SubjectID:             q.SubjectID,
		TopicID:               q.TopicID,
		Year:                  q.Year,
		Month:                 q.Month,
		Paper:                 q.Paper,
		QuestionNumber:        q.QuestionNumber,
		OfficialAnswerKey:     util.StringToNullString(q.OfficialAnswerKey),
		OfficialAnswerKeyLink: util.StringToNullString(q.OfficialAnswerKeyLink),
		IsVerified:            models.BoolToNumber(q.IsVerified),
		AddedBy:               util.StringToNullString(q.AddedBy),
		Tags:                  models.StringSlice(q.Tags),
		TotalAttempts:         q.Stats.TotalAttempts,
		CorrectAttempts:       q.Stats.CorrectAttempts,
		Accuracy:              q.Stats.Accuracy,
		CreatedAt:             q.CreatedAt,
		UpdatedAt:             q.UpdatedAt,
	}
}
