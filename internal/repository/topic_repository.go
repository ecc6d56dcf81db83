package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"exam-hub/internal/domain"
	"exam-hub/internal/repository/models"
	"exam-hub/internal/util"

	"github.com/jmoiron/sqlx"
)

const topicColumns = `ID, NAME, CODE, DESCRIPTION, SUBJECT_ID, PARENT_TOPIC_ID, SUB_TOPICS, QUESTION_COUNT, WEIGHTAGE, IS_ACTIVE, RESOURCES, CREATED_AT, UPDATED_AT`

// TopicDatabaseAdapter stores topics in the TOPICS table. The tree is kept
// through PARENT_TOPIC_ID; SUB_TOPICS mirrors the children for reads.
type TopicDatabaseAdapter struct {
	db *sqlx.DB
}

func NewTopicRepository(db *sqlx.DB) domain.TopicRepository {
	return &TopicDatabaseAdapter{db: db}
}

func (r *TopicDatabaseAdapter) Create(ctx context.Context, topic *domain.Topic) error {
	if topic.ID == "" {
		topic.ID = util.NewULID()
	}
	now := time.Now()
	topic.CreatedAt = now
	topic.UpdatedAt = now

	query := `INSERT INTO topics (` + topicColumns + `)
	          VALUES (:ID, :NAME, :CODE, :DESCRIPTION, :SUBJECT_ID, :PARENT_TOPIC_ID, :SUB_TOPICS, :QUESTION_COUNT,
	          :WEIGHTAGE, :IS_ACTIVE, :RESOURCES, :CREATED_AT, :UPDATED_AT)`
	if _, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, toModelTopic(topic)); err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}
	return nil
}

// GetByID returns nil, nil when the topic does not exist.
func (r *TopicDatabaseAdapter) GetByID(ctx context.Context, id string) (*domain.Topic, error) {
	db := GetExecutor(ctx, r.db)
	var row models.Topic
	query := db.Rebind(`SELECT ` + topicColumns + ` FROM topics WHERE ID = ?`)
	if err := db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	return toDomainTopic(&row), nil
}

// GetByIDs returns the existing topics among ids, sorted by name.
func (r *TopicDatabaseAdapter) GetByIDs(ctx context.Context, ids []string) ([]*domain.Topic, error) {
	if len(ids) == 0 {
		return []*domain.Topic{}, nil
	}
	db := GetExecutor(ctx, r.db)
	query, args, err := sqlx.In(`SELECT `+topicColumns+` FROM topics WHERE ID IN (?) ORDER BY NAME`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build topic lookup: %w", err)
	}
	return r.selectTopics(ctx, db, db.Rebind(query), args...)
}

// Find returns topics matching the filter, sorted by name.
func (r *TopicDatabaseAdapter) Find(ctx context.Context, filter domain.TopicFilter) ([]*domain.Topic, error) {
	db := GetExecutor(ctx, r.db)
	var where whereClause
	if filter.SubjectID != "" {
		where.add("SUBJECT_ID = ?", filter.SubjectID)
	}
	if filter.RootsOnly {
		where.add("PARENT_TOPIC_ID IS NULL")
	} else if filter.ParentID != "" {
		where.add("PARENT_TOPIC_ID = ?", filter.ParentID)
	}
	query := db.Rebind(`SELECT ` + topicColumns + ` FROM topics` + where.String() + ` ORDER BY NAME`)
	return r.selectTopics(ctx, db, query, where.args...)
}

// ChildIDs lists the direct children of parentID.
func (r *TopicDatabaseAdapter) ChildIDs(ctx context.Context, parentID string) ([]string, error) {
	db := GetExecutor(ctx, r.db)
	ids := []string{}
	if err := db.SelectContext(ctx, &ids, db.Rebind(`SELECT ID FROM topics WHERE PARENT_TOPIC_ID = ?`), parentID); err != nil {
		return nil, fmt.Errorf("failed to list child topics: %w", err)
	}
	return ids, nil
}

func (r *TopicDatabaseAdapter) CountBySubject(ctx context.Context, subjectID string) (int, error) {
	return r.count(ctx, "SUBJECT_ID = ?", subjectID)
}

func (r *TopicDatabaseAdapter) CountChildren(ctx context.Context, parentID string) (int, error) {
	return r.count(ctx, "PARENT_TOPIC_ID = ?", parentID)
}

func (r *TopicDatabaseAdapter) count(ctx context.Context, cond string, arg interface{}) (int, error) {
	db := GetExecutor(ctx, r.db)
	var n int
	if err := db.GetContext(ctx, &n, db.Rebind(`SELECT COUNT(*) FROM topics WHERE `+cond), arg); err != nil {
		return 0, fmt.Errorf("failed to count topics: %w", err)
	}
	return n, nil
}

// Search matches name substrings case-insensitively. Wildcards in query are literal.
func (r *TopicDatabaseAdapter) Search(ctx context.Context, query, subjectID string, limit int) ([]*domain.Topic, error) {
	db := GetExecutor(ctx, r.db)
	var where whereClause
	where.add(`LOWER(NAME) LIKE ? ESCAPE '\'`, "%"+util.EscapeLike(strings.ToLower(query))+"%")
	if subjectID != "" {
		where.add("SUBJECT_ID = ?", subjectID)
	}
	args := append(where.args, limit)
	q := db.Rebind(`SELECT ` + topicColumns + ` FROM topics` + where.String() + ` ORDER BY NAME FETCH FIRST ? ROWS ONLY`)
	return r.selectTopics(ctx, db, q, args...)
}

func (r *TopicDatabaseAdapter) Update(ctx context.Context, topic *domain.Topic) error {
	topic.UpdatedAt = time.Now()
	query := `UPDATE topics SET NAME = :NAME, CODE = :CODE, DESCRIPTION = :DESCRIPTION, SUBJECT_ID = :SUBJECT_ID,
	          PARENT_TOPIC_ID = :PARENT_TOPIC_ID, SUB_TOPICS = :SUB_TOPICS, QUESTION_COUNT = :QUESTION_COUNT,
	          WEIGHTAGE = :WEIGHTAGE, IS_ACTIVE = :IS_ACTIVE, RESOURCES = :RESOURCES, UPDATED_AT = :UPDATED_AT
	          WHERE ID = :ID`
	result, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, toModelTopic(topic))
	if err != nil {
		return fmt.Errorf("failed to update topic: %w", err)
	}
	return expectAffected(result, "topic", topic.ID)
}

func (r *TopicDatabaseAdapter) Delete(ctx context.Context, id string) error {
	db := GetExecutor(ctx, r.db)
	result, err := db.ExecContext(ctx, db.Rebind(`DELETE FROM topics WHERE ID = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete topic: %w", err)
	}
	return expectAffected(result, "topic", id)
}

func (r *TopicDatabaseAdapter) selectTopics(ctx context.Context, db DBTX, query string, args ...interface{}) ([]*domain.Topic, error) {
	var rows []models.Topic
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	topics := make([]*domain.Topic, len(rows))
	for i := range rows {
		topics[i] = toDomainTopic(&rows[i])
	}
	return topics, nil
}

func toDomainTopic(m *models.Topic) *domain.Topic {
	subTopics := []string(m.SubTopics)
	if subTopics == nil {
		subTopics = []string{}
	}
	resources := []domain.Resource(m.Resources)
	if resources == nil {
		resources = []domain.Resource{}
	}
	return &domain.Topic{
		ID:            m.ID,
		Name:          m.Name,
		Code:          m.Code,
		Description:   util.NullStringToString(m.Description),
		SubjectID:     m.SubjectID,
		ParentTopicID: util.NullStringToString(m.ParentTopicID),
		SubTopics:     subTopics,
		QuestionCount: m.QuestionCount,
		Weightage:     m.Weightage,
		IsActive:      m.IsActive != 0,
		Resources:     resources,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toModelTopic(t *domain.Topic) *models.Topic {
	return &models.Topic{
		ID:            t.ID,
		Name:          t.Name,
		Code:          t.Code,
		Description:   util.StringToNullString(t.Description),
		SubjectID:     t.SubjectID,
		ParentTopicID: util.StringToNullString(t.ParentTopicID),
		SubTopics:     models.StringSlice(t.SubTopics),
		QuestionCount: t.QuestionCount,
		Weightage:     t.Weightage,
		IsActive:      models.BoolToNumber(t.IsActive),
		Resources:     models.ResourceList(t.Resources),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}
