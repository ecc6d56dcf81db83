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

const subjectColumns = `ID, NAME, CODE, DESCRIPTION, SYLLABUS, IS_CORE, TOPICS, QUESTION_COUNT, WEIGHTAGE, CREATED_AT, UPDATED_AT`

// SubjectDatabaseAdapter stores subjects in the SUBJECTS table.
type SubjectDatabaseAdapter struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new instance of SubjectDatabaseAdapter
func NewSubjectRepository(db *sqlx.DB) domain.SubjectRepository {
	return &SubjectDatabaseAdapter{db: db}
}

// Create persists a new subject and assigns its ID.
func (r *SubjectDatabaseAdapter) Create(ctx context.Context, subject *domain.Subject) error {
	if subject.ID == "" {
		subject.ID = util.NewULID()
	}
	now := time.Now()
	subject.CreatedAt = now
	subject.UpdatedAt = now

	query := `INSERT INTO subjects (` + subjectColumns + `)
	          VALUES (:ID, :NAME, :CODE, :DESCRIPTION, :SYLLABUS, :IS_CORE, :TOPICS, :QUESTION_COUNT, :WEIGHTAGE, :CREATED_AT, :UPDATED_AT)`
	if _, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, toModelSubject(subject)); err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("subject with this name or code already exists")
		}
		return fmt.Errorf("failed to create subject: %w", err)
	}
	return nil
}

// GetByID returns nil, nil when the subject does not exist.
func (r *SubjectDatabaseAdapter) GetByID(ctx context.Context, id string) (*domain.Subject, error) {
	return r.getOne(ctx, "ID = ?", id)
}

func (r *SubjectDatabaseAdapter) GetByCode(ctx context.Context, code string) (*domain.Subject, error) {
	return r.getOne(ctx, "CODE = ?", domain.NormalizeCode(code))
}

func (r *SubjectDatabaseAdapter) GetByName(ctx context.Context, name string) (*domain.Subject, error) {
	return r.getOne(ctx, "NAME = ?", name)
}

func (r *SubjectDatabaseAdapter) getOne(ctx context.Context, cond string, arg interface{}) (*domain.Subject, error) {
	db := GetExecutor(ctx, r.db)
	var row models.Subject
	query := db.Rebind(`SELECT ` + subjectColumns + ` FROM subjects WHERE ` + cond)
	if err := db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	return toDomainSubject(&row), nil
}

// List returns subjects sorted by name, optionally filtered by the core flag.
func (r *SubjectDatabaseAdapter) List(ctx context.Context, isCore *bool) ([]*domain.Subject, error) {
	db := GetExecutor(ctx, r.db)
	var where whereClause
	if isCore != nil {
		where.add("IS_CORE = ?", models.BoolToNumber(*isCore))
	}

	var rows []models.Subject
	query := db.Rebind(`SELECT ` + subjectColumns + ` FROM subjects` + where.String() + ` ORDER BY NAME`)
	if err := db.SelectContext(ctx, &rows, query, where.args...); err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}

	subjects := make([]*domain.Subject, len(rows))
	for i := range rows {
		subjects[i] = toDomainSubject(&rows[i])
	}
	return subjects, nil
}

// Update overwrites every mutable column of the subject.
func (r *SubjectDatabaseAdapter) Update(ctx context.Context, subject *domain.Subject) error {
	subject.UpdatedAt = time.Now()
	query := `UPDATE subjects SET NAME = :NAME, CODE = :CODE, DESCRIPTION = :DESCRIPTION, SYLLABUS = :SYLLABUS,
	          IS_CORE = :IS_CORE, TOPICS = :TOPICS, QUESTION_COUNT = :QUESTION_COUNT, WEIGHTAGE = :WEIGHTAGE,
	          UPDATED_AT = :UPDATED_AT WHERE ID = :ID`
	result, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, toModelSubject(subject))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("subject with this name or code already exists")
		}
		return fmt.Errorf("failed to update subject: %w", err)
	}
	return expectAffected(result, "subject", subject.ID)
}

func (r *SubjectDatabaseAdapter) Delete(ctx context.Context, id string) error {
	db := GetExecutor(ctx, r.db)
	result, err := db.ExecContext(ctx, db.Rebind(`DELETE FROM subjects WHERE ID = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete subject: %w", err)
	}
	return expectAffected(result, "subject", id)
}

// expectAffected turns a zero-row write into a NOT_FOUND error.
func expectAffected(result sql.Result, entity, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.NewNotFoundError(entity+" not found").WithContext("id", id)
	}
	return nil
}

func toDomainSubject(m *models.Subject) *domain.Subject {
	topics := []string(m.Topics)
	if topics == nil {
		topics = []string{}
	}
	return &domain.Subject{
		ID:            m.ID,
		Name:          m.Name,
		Code:          m.Code,
		Description:   util.NullStringToString(m.Description),
		Syllabus:      util.NullStringToString(m.Syllabus),
		IsCore:        m.IsCore != 0,
		Topics:        topics,
		QuestionCount: m.QuestionCount,
		Weightage:     m.Weightage,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toModelSubject(s *domain.Subject) *models.Subject {
	return &models.Subject{
		ID:            s.ID,
		Name:          s.Name,
		Code:          s.Code,
		Description:   util.StringToNullString(s.Description),
		Syllabus:      util.StringToNullString(s.Syllabus),
		IsCore:        models.BoolToNumber(s.IsCore),
		Topics:        models.StringSlice(s.Topics),
		QuestionCount: s.QuestionCount,
		Weightage:     s.Weightage,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
