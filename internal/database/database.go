package database

import (
	"context"
	"fmt"
	"time"

	"exam-hub/internal/config"
	"exam-hub/internal/domain"
	"exam-hub/internal/logger"
	"exam-hub/internal/repository"
	"exam-hub/internal/repository/memory"

	"github.com/jmoiron/sqlx"
	_ "github.com/sijms/go-ora/v2" // Oracle driver
	"go.uber.org/zap"
)

const driverName = "oracle"

func init() {
	// go-ora binds :name placeholders; Rebind turns ? into :arg1, :arg2, ...
	sqlx.BindDriver(driverName, sqlx.NAMED)
}

// NewSQLXOracleDB opens a pooled connection and verifies it with a ping.
func NewSQLXOracleDB(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverName, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open Oracle database: %w", err)
	}
	if cfg.DB.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	}
	if cfg.DB.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping Oracle database: %w", err)
	}

	logger.Get().Info("Successfully connected to Oracle database",
		zap.String("host", cfg.DB.Host), zap.Int("port", cfg.DB.Port), zap.String("service", cfg.DB.DBName))
	return db, nil
}

// OpenStore builds the content store selected by db.driver.
func OpenStore(ctx context.Context, cfg *config.Config) (*domain.Store, error) {
	switch cfg.DB.Driver {
	case config.DriverMemory:
		logger.Get().Warn("Using in-memory content store; data is lost on exit")
		return memory.NewStore(), nil
	case config.DriverOracle:
		db, err := NewSQLXOracleDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return repository.NewOracleStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DB.Driver)
	}
}
