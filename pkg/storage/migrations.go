package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// Migrations returns all schema migrations in order
func Migrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create accounts table",
			SQL: `
				CREATE TABLE IF NOT EXISTS accounts (
					id BIGSERIAL PRIMARY KEY,
					username VARCHAR(150) NOT NULL UNIQUE,
					email VARCHAR(254) NOT NULL DEFAULT '',
					password_hash VARCHAR(255) NOT NULL,
					is_staff BOOLEAN NOT NULL DEFAULT FALSE,
					is_superuser BOOLEAN NOT NULL DEFAULT FALSE,
					joined_at TIMESTAMP NOT NULL DEFAULT NOW(),
					last_login_at TIMESTAMP,
					CHECK (NOT is_superuser OR is_staff)
				);

				CREATE INDEX IF NOT EXISTS idx_accounts_username ON accounts(username);
				CREATE INDEX IF NOT EXISTS idx_accounts_is_superuser ON accounts(is_superuser);
			`,
		},
		{
			Version:     2,
			Description: "Create records table",
			SQL: `
				CREATE TABLE IF NOT EXISTS records (
					id BIGSERIAL PRIMARY KEY,
					title VARCHAR(200) NOT NULL,
					description TEXT,
					created_by BIGINT NOT NULL REFERENCES accounts(id),
					created_at TIMESTAMP NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_records_created_by ON records(created_by);
				CREATE INDEX IF NOT EXISTS idx_records_created_at ON records(created_at);
			`,
		},
		{
			Version:     3,
			Description: "Create sessions table",
			SQL: `
				CREATE TABLE IF NOT EXISTS sessions (
					id BIGSERIAL PRIMARY KEY,
					account_id BIGINT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
					token_hash VARCHAR(64) NOT NULL UNIQUE,
					token_prefix VARCHAR(16) NOT NULL,
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					expires_at TIMESTAMP NOT NULL
				);

				CREATE INDEX IF NOT EXISTS idx_sessions_account_id ON sessions(account_id);
				CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
			`,
		},
	}
}

// Migrate applies all pending migrations in order, tracking progress in the
// schema_migrations table.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	for _, migration := range Migrations() {
		var exists bool
		err := db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`,
			migration.Version,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration %d: %w", migration.Version, err)
		}
		if exists {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", migration.Version, err)
		}

		if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Description, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, description) VALUES ($1, $2)`,
			migration.Version, migration.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}
