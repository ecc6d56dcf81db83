package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"exam-hub/internal/logger"

	"go.uber.org/zap"
)

//go:embed migrations/*.up.sql
var migrationFiles embed.FS

const migrationsTable = `CREATE TABLE schema_migrations (
	VERSION    VARCHAR2(255) PRIMARY KEY,
	APPLIED_AT TIMESTAMP DEFAULT SYSTIMESTAMP NOT NULL
)`

// RunMigrations applies the embedded *.up.sql files in name order. Applied
// versions are recorded in SCHEMA_MIGRATIONS and skipped on later runs.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("could not open migrations: %w", err)
	}
	return runMigrations(ctx, db, sub)
}

func runMigrations(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	if err := ensureMigrationsTable(ctx, db); err != nil {
		return err
	}

	names, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return fmt.Errorf("could not list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		version := strings.TrimSuffix(name, ".up.sql")

		var applied int
		if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE VERSION = :1`, version).Scan(&applied); err != nil {
			return fmt.Errorf("could not check migration %s: %w", version, err)
		}
		if applied > 0 {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("could not read migration file %s: %w", name, err)
		}
		for _, stmt := range SplitStatements(string(content)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("could not execute migration %s: %w", name, err)
			}
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_migrations (VERSION) VALUES (:1)`, version); err != nil {
			return fmt.Errorf("could not record migration %s: %w", version, err)
		}

		logger.Get().Info("Executed migration", zap.String("file", name))
	}

	logger.Get().Info("Migrations completed successfully", zap.Int("files", len(names)))
	return nil
}

func ensureMigrationsTable(ctx context.Context, db *sql.DB) error {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_tables WHERE TABLE_NAME = 'SCHEMA_MIGRATIONS'`).Scan(&n)
	if err != nil {
		return fmt.Errorf("could not inspect schema: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := db.ExecContext(ctx, migrationsTable); err != nil {
		return fmt.Errorf("could not create schema_migrations: %w", err)
	}
	return nil
}

// SplitStatements splits a script on ';' at line end. Oracle executes one
// statement per call and rejects a trailing ';'. Lines starting with "--" are dropped.
func SplitStatements(script string) []string {
	var (
		stmts []string
		cur   strings.Builder
	)
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		if strings.HasSuffix(trimmed, ";") {
			cur.WriteString(strings.TrimSuffix(trimmed, ";"))
			stmts = append(stmts, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteString(trimmed)
		cur.WriteString("\n")
	}
	if rest := strings.TrimSpace(cur.String()); rest != "" {
		stmts = append(stmts, rest)
	}
	return stmts
}
