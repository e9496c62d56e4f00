package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Store handles account persistence
type Store struct {
	db *sql.DB
}

// NewStore creates a new account store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateAccount inserts a new account. The username must be unique;
// ErrUsernameTaken is returned if it is already in use.
func (s *Store) CreateAccount(ctx context.Context, account *Account) error {
	account.Username = strings.TrimSpace(account.Username)

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1)`,
		account.Username,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return ErrUsernameTaken
	}

	// Superuser implies staff, even if the caller forgot to set it
	if account.IsSuperuser {
		account.IsStaff = true
	}

	query := `
		INSERT INTO accounts (username, email, password_hash, is_staff, is_superuser, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	now := time.Now().UTC()
	err = s.db.QueryRowContext(ctx, query,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.IsStaff,
		account.IsSuperuser,
		now,
	).Scan(&account.ID)
	if err != nil {
		// The EXISTS check above is not atomic with the insert; a
		// concurrent registration can still trip the unique constraint
		if isUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	account.JoinedAt = now
	return nil
}

// isUniqueViolation reports whether err is a postgres unique-constraint error
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// GetAccount retrieves an account by ID
func (s *Store) GetAccount(ctx context.Context, id int64) (*Account, error) {
	return s.getAccount(ctx, `WHERE id = $1`, id)
}

// GetAccountByUsername retrieves an account by username
func (s *Store) GetAccountByUsername(ctx context.Context, username string) (*Account, error) {
	return s.getAccount(ctx, `WHERE username = $1`, username)
}

func (s *Store) getAccount(ctx context.Context, where string, arg interface{}) (*Account, error) {
	query := `
		SELECT id, username, email, password_hash, is_staff, is_superuser, joined_at, last_login_at
		FROM accounts
	` + where

	var account Account
	var lastLogin sql.NullTime

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.IsStaff,
		&account.IsSuperuser,
		&account.JoinedAt,
		&lastLogin,
	)
	if err == sql.ErrNoRows {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if lastLogin.Valid {
		t := lastLogin.Time
		account.LastLoginAt = &t
	}

	return &account, nil
}

// ListAccounts lists all accounts ordered by join date
func (s *Store) ListAccounts(ctx context.Context) ([]Account, error) {
	query := `
		SELECT id, username, email, password_hash, is_staff, is_superuser, joined_at, last_login_at
		FROM accounts
		ORDER BY joined_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var account Account
		var lastLogin sql.NullTime

		err := rows.Scan(
			&account.ID,
			&account.Username,
			&account.Email,
			&account.PasswordHash,
			&account.IsStaff,
			&account.IsSuperuser,
			&account.JoinedAt,
			&lastLogin,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}

		if lastLogin.Valid {
			t := lastLogin.Time
			account.LastLoginAt = &t
		}

		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// UpdateLastLogin stamps the account's last successful login time
func (s *Store) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET last_login_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// CountSuperusers returns the number of superuser accounts
func (s *Store) CountSuperusers(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE is_superuser = TRUE`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count superusers: %w", err)
	}
	return count, nil
}

// AccountStats holds aggregate account counts
type AccountStats struct {
	Total      int `json:"total"`
	Staff      int `json:"staff"`
	Superusers int `json:"superusers"`
}

// Stats returns aggregate account counts in a single query
func (s *Store) Stats(ctx context.Context) (AccountStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_staff),
		       COUNT(*) FILTER (WHERE is_superuser)
		FROM accounts
	`

	var stats AccountStats
	err := s.db.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.Staff, &stats.Superusers)
	if err != nil {
		return AccountStats{}, fmt.Errorf("failed to count accounts: %w", err)
	}
	return stats, nil
}
