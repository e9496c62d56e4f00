package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/opsdesk/opsdesk/pkg/validation"
)

// Directory is the account directory: registration and credential checks.
// It owns no authorization logic; it only mints and verifies identities.
type Directory struct {
	store *Store
}

// NewDirectory creates an account directory over the given store
func NewDirectory(store *Store) *Directory {
	return &Directory{store: store}
}

// Register creates a new member-level account with the given credentials.
// Newly registered accounts have no staff or superuser access.
func (d *Directory) Register(ctx context.Context, username, email, password string) (*Account, error) {
	if err := validation.RequireNonBlank("username", username); err != nil {
		return nil, err
	}
	if err := validation.RequireMaxLength("username", username, 150); err != nil {
		return nil, err
	}
	if err := validation.RequireMinLength("password", password, MinPasswordLength); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	account := &Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := d.store.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// Authenticate verifies a username/password pair and stamps the login time.
// Returns ErrInvalidCredentials on any mismatch.
func (d *Directory) Authenticate(ctx context.Context, username, password string) (*Account, error) {
	account, err := d.store.GetAccountByUsername(ctx, username)
	if err == ErrAccountNotFound {
		// Burn a hash comparison anyway so the timing looks the same
		CheckPassword("$2a$10$0000000000000000000000000000000000000000000000000000", password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !CheckPassword(account.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := d.store.UpdateLastLogin(ctx, account.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	account.LastLoginAt = &now

	return account, nil
}
