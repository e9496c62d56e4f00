package auth

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// openTestDB opens an in-memory SQLite database with the accounts and
// sessions schema. SQLite accepts the $N placeholders the store uses.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE accounts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			is_staff BOOLEAN NOT NULL DEFAULT FALSE,
			is_superuser BOOLEAN NOT NULL DEFAULT FALSE,
			joined_at TIMESTAMP NOT NULL,
			last_login_at TIMESTAMP,
			CHECK (NOT is_superuser OR is_staff)
		);

		CREATE TABLE sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			token_hash TEXT NOT NULL UNIQUE,
			token_prefix TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			expires_at TIMESTAMP NOT NULL
		);
	`)
	require.NoError(t, err)

	return db
}

// createTestAccount inserts an account through the store and returns it
func createTestAccount(t *testing.T, store *Store, username string, staff, super bool) *Account {
	t.Helper()

	account := &Account{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "not-a-real-hash",
		IsStaff:      staff,
		IsSuperuser:  super,
	}
	require.NoError(t, store.CreateAccount(context.Background(), account))
	return account
}
