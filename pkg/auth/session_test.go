package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionManager(t *testing.T) (*SessionManager, *Store) {
	t.Helper()

	db := openTestDB(t)
	store := NewStore(db)
	manager, err := NewSessionManager(db, nil)
	require.NoError(t, err)
	return manager, store
}

func TestStartAndValidateSession(t *testing.T) {
	manager, store := newTestSessionManager(t)
	account := createTestAccount(t, store, "alice", false, false)

	token, session, err := manager.StartSession(context.Background(), account.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotZero(t, session.ID)
	assert.Equal(t, account.ID, session.AccountID)
	assert.True(t, session.ExpiresAt.After(session.CreatedAt))

	validated, err := manager.ValidateSession(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, validated.ID)
	assert.Equal(t, account.ID, validated.AccountID)
}

func TestValidateSessionCacheMiss(t *testing.T) {
	manager, store := newTestSessionManager(t)
	account := createTestAccount(t, store, "bob", false, false)

	token, session, err := manager.StartSession(context.Background(), account.ID)
	require.NoError(t, err)

	// Drop the cache entry to force the database path
	manager.cache.Purge()

	validated, err := manager.ValidateSession(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, validated.ID)
}

func TestValidateSessionRejectsBadTokens(t *testing.T) {
	manager, _ := newTestSessionManager(t)

	_, err := manager.ValidateSession(context.Background(), "")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = manager.ValidateSession(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Well-formed but never issued
	_, err = manager.ValidateSession(context.Background(), "odsk_AAAAAAAAAAAAAAAAAAAAAA")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestValidateSessionExpiry(t *testing.T) {
	manager, store := newTestSessionManager(t)
	manager.ttl = -time.Minute // Sessions are born expired

	account := createTestAccount(t, store, "carol", false, false)
	token, _, err := manager.StartSession(context.Background(), account.ID)
	require.NoError(t, err)

	_, err = manager.ValidateSession(context.Background(), token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// The expired cache entry is dropped; the database path agrees
	_, err = manager.ValidateSession(context.Background(), token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestEndSession(t *testing.T) {
	manager, store := newTestSessionManager(t)
	account := createTestAccount(t, store, "dave", false, false)

	token, _, err := manager.StartSession(context.Background(), account.ID)
	require.NoError(t, err)

	require.NoError(t, manager.EndSession(context.Background(), token))

	_, err = manager.ValidateSession(context.Background(), token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Revoking again, or revoking garbage, is a no-op
	assert.NoError(t, manager.EndSession(context.Background(), token))
	assert.NoError(t, manager.EndSession(context.Background(), "garbage"))
}

func TestCountActiveAndPurgeExpired(t *testing.T) {
	manager, store := newTestSessionManager(t)
	account := createTestAccount(t, store, "erin", false, false)

	_, _, err := manager.StartSession(context.Background(), account.ID)
	require.NoError(t, err)

	manager.ttl = -time.Minute
	_, _, err = manager.StartSession(context.Background(), account.ID)
	require.NoError(t, err)

	active, err := manager.CountActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, active)

	purged, err := manager.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	purged, err = manager.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, purged)
}
