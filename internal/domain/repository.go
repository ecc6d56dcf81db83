package domain

import "context"

// Repositories return (nil, nil) from GetByID-style lookups when nothing matches.

// SubjectRepository persists subjects.
type SubjectRepository interface {
	Create(ctx context.Context, subject *Subject) error
	GetByID(ctx context.Context, id string) (*Subject, error)
	GetByCode(ctx context.Context, code string) (*Subject, error)
	GetByName(ctx context.Context, name string) (*Subject, error)
	// List returns subjects sorted by name. A nil isCore matches all.
	List(ctx context.Context, isCore *bool) ([]*Subject, error)
	Update(ctx context.Context, subject *Subject) error
	Delete(ctx context.Context, id string) error
}

// TopicRepository persists topics.
type TopicRepository interface {
	Create(ctx context.Context, topic *Topic) error
	GetByID(ctx context.Context, id string) (*Topic, error)
	// GetByIDs returns the topics found, in the order of ids.
	GetByIDs(ctx context.Context, ids []string) ([]*Topic, error)
	// Find returns topics sorted by name.
	Find(ctx context.Context, filter TopicFilter) ([]*Topic, error)
	// ChildIDs returns the ids of topics whose parent is parentID.
	ChildIDs(ctx context.Context, parentID string) ([]string, error)
	CountBySubject(ctx context.Context, subjectID string) (int, error)
	CountChildren(ctx context.Context, parentID string) (int, error)
	// Search matches name case-insensitively as a literal substring.
	Search(ctx context.Context, query, subjectID string, limit int) ([]*Topic, error)
	Update(ctx context.Context, topic *Topic) error
	Delete(ctx context.Context, id string) error
}

// QuestionRepository persists questions.
type QuestionRepository interface {
	Create(ctx context.Context, question *Question) error
	GetByID(ctx context.Context, id string) (*Question, error)
	Find(ctx context.Context, filter QuestionFilter, order QuestionOrder, page Page) ([]*Question, error)
	Count(ctx context.Context, filter QuestionFilter) (int, error)
	// CountByYear and CountByDifficulty return buckets sorted by key ascending.
	CountByYear(ctx context.Context, filter QuestionFilter) ([]YearCount, error)
	CountByDifficulty(ctx context.Context, filter QuestionFilter) ([]DifficultyCount, error)
	Update(ctx context.Context, question *Question) error
	// IncrementAttempts atomically records one attempt and returns the new stats.
	IncrementAttempts(ctx context.Context, id string, correct bool) (*QuestionStats, error)
	Delete(ctx context.Context, id string) error
}

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
}

// TransactionManager runs fn so that the repository calls it makes commit or roll back together.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store bundles the repositories of one backing content store.
type Store struct {
	Subjects     SubjectRepository
	Topics       TopicRepository
	Questions    QuestionRepository
	Users        UserRepository
	Transactions TransactionManager
	// Ping checks the backing store is reachable.
	Ping func(ctx context.Context) error
	// Close releases the backing connection.
	Close func() error
}
