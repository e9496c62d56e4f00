package auth

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/opsdesk/opsdesk/pkg/observability"
)

const (
	// DefaultSessionTTL is how long a session lives without re-login
	DefaultSessionTTL = 14 * 24 * time.Hour
	// sessionCacheSize bounds the validated-token cache
	sessionCacheSize = 4096
)

// SessionManager issues, validates, and revokes login sessions.
// Validated token lookups are cached in an LRU keyed by token hash; the
// cache holds sessions only, never account role flags, so permission
// changes take effect on the next request.
type SessionManager struct {
	db        *sql.DB
	generator *TokenGenerator
	cache     *lru.Cache[string, *Session]
	metrics   *observability.Metrics
	ttl       time.Duration
}

// NewSessionManager creates a session manager. metrics may be nil.
func NewSessionManager(db *sql.DB, metrics *observability.Metrics) (*SessionManager, error) {
	cache, err := lru.New[string, *Session](sessionCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}

	return &SessionManager{
		db:        db,
		generator: NewTokenGenerator(),
		cache:     cache,
		metrics:   metrics,
		ttl:       DefaultSessionTTL,
	}, nil
}

// StartSession creates a new session for an account and returns the
// plaintext bearer token. The token is not recoverable afterwards.
func (m *SessionManager) StartSession(ctx context.Context, accountID int64) (string, *Session, error) {
	token, tokenHash, tokenPrefix, err := m.generator.GenerateToken()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	session := &Session{
		AccountID:   accountID,
		TokenHash:   tokenHash,
		TokenPrefix: tokenPrefix,
	}

	query := `
		INSERT INTO sessions (account_id, token_hash, token_prefix, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	now := time.Now().UTC()
	session.CreatedAt = now
	session.ExpiresAt = now.Add(m.ttl)

	err = m.db.QueryRowContext(ctx, query,
		session.AccountID,
		session.TokenHash,
		session.TokenPrefix,
		session.CreatedAt,
		session.ExpiresAt,
	).Scan(&session.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	m.cache.Add(tokenHash, session)
	return token, session, nil
}

// ValidateSession resolves a bearer token to a live session.
// Returns ErrSessionNotFound for unknown or expired tokens.
func (m *SessionManager) ValidateSession(ctx context.Context, token string) (*Session, error) {
	if err := m.generator.ValidateTokenFormat(token); err != nil {
		return nil, ErrSessionNotFound
	}

	tokenHash := m.generator.HashToken(token)

	if session, ok := m.cache.Get(tokenHash); ok {
		if m.metrics != nil {
			m.metrics.SessionCacheHitsTotal.Inc()
		}
		if session.Expired(time.Now().UTC()) {
			m.cache.Remove(tokenHash)
			return nil, ErrSessionNotFound
		}
		return session, nil
	}
	if m.metrics != nil {
		m.metrics.SessionCacheMissesTotal.Inc()
	}

	query := `
		SELECT id, account_id, token_hash, token_prefix, created_at, expires_at
		FROM sessions
		WHERE token_hash = $1
	`

	var session Session
	err := m.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&session.ID,
		&session.AccountID,
		&session.TokenHash,
		&session.TokenPrefix,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	if session.Expired(time.Now().UTC()) {
		return nil, ErrSessionNotFound
	}

	m.cache.Add(tokenHash, &session)
	return &session, nil
}

// EndSession revokes the session for a bearer token. Revoking an unknown
// token is a no-op.
func (m *SessionManager) EndSession(ctx context.Context, token string) error {
	if err := m.generator.ValidateTokenFormat(token); err != nil {
		return nil
	}

	tokenHash := m.generator.HashToken(token)
	m.cache.Remove(tokenHash)

	_, err := m.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}

// CountActive returns the number of unexpired sessions
func (m *SessionManager) CountActive(ctx context.Context) (int, error) {
	var count int
	err := m.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE expires_at > $1`, time.Now().UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

// PurgeExpired deletes expired sessions and returns how many were removed
func (m *SessionManager) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := m.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= $1`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}
