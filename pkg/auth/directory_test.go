package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/opsdesk/pkg/validation"
)

func newTestDirectory(t *testing.T) (*Directory, *Store) {
	t.Helper()

	store := NewStore(openTestDB(t))
	return NewDirectory(store), store
}

func TestRegister(t *testing.T) {
	directory, store := newTestDirectory(t)

	account, err := directory.Register(context.Background(), "alice", "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.NotZero(t, account.ID)
	assert.Equal(t, "alice", account.Username)
	assert.Equal(t, LevelMember, account.Level())
	assert.NotEqual(t, "hunter2hunter2", account.PasswordHash)

	stored, err := store.GetAccountByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, stored.IsStaff)
	assert.False(t, stored.IsSuperuser)
}

func TestRegisterValidation(t *testing.T) {
	directory, _ := newTestDirectory(t)

	var fieldErr *validation.Error

	_, err := directory.Register(context.Background(), "  ", "", "longenoughpassword")
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "username", fieldErr.Field)

	_, err = directory.Register(context.Background(), "bob", "", "short")
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "password", fieldErr.Field)

	_, err = directory.Register(context.Background(), "alice", "", "longenoughpassword")
	require.NoError(t, err)
	_, err = directory.Register(context.Background(), "alice", "", "longenoughpassword")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestAuthenticate(t *testing.T) {
	directory, store := newTestDirectory(t)

	_, err := directory.Register(context.Background(), "alice", "alice@example.com", "correct password")
	require.NoError(t, err)

	account, err := directory.Authenticate(context.Background(), "alice", "correct password")
	require.NoError(t, err)
	assert.Equal(t, "alice", account.Username)
	require.NotNil(t, account.LastLoginAt)

	stored, err := store.GetAccountByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestAuthenticateRejections(t *testing.T) {
	directory, _ := newTestDirectory(t)

	_, err := directory.Register(context.Background(), "alice", "", "correct password")
	require.NoError(t, err)

	_, err = directory.Authenticate(context.Background(), "alice", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown usernames get the same error as bad passwords
	_, err = directory.Authenticate(context.Background(), "nobody", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
