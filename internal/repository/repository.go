package repository

import (
	"context"
	"database/sql"
	"strings"

	"exam-hub/internal/domain"

	"github.com/jmoiron/sqlx"
)

// DBTX is an interface abstracting *sqlx.DB and *sqlx.Tx for repository use.
type DBTX interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Rebind(query string) string
}

var (
	_ DBTX = (*sqlx.DB)(nil)
	_ DBTX = (*sqlx.Tx)(nil)
)

// NewOracleStore wires every sqlx repository onto one connection pool.
func NewOracleStore(db *sqlx.DB) *domain.Store {
	return &domain.Store{
		Subjects:     NewSubjectRepository(db),
		Topics:       NewTopicRepository(db),
		Questions:    NewQuestionRepository(db),
		Users:        NewUserRepository(db),
		Transactions: NewTransactionManagerAdapter(db),
		Ping:         db.PingContext,
		Close:        db.Close,
	}
}

// isUniqueViolation reports an ORA-00001 unique constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "ORA-00001")
}

// whereClause accumulates AND-ed predicates with positional args.
type whereClause struct {
	conds []string
	args  []interface{}
}

func (w *whereClause) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}
