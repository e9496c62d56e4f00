package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/opsdesk/opsdesk/pkg/auth"
	"github.com/opsdesk/opsdesk/pkg/contextkeys"
	"github.com/opsdesk/opsdesk/pkg/guard"
	"github.com/opsdesk/opsdesk/pkg/httputil"
)

// SessionMiddleware resolves the session bearer token to an account.
// The account is loaded fresh on every request so role changes take effect
// immediately; only the session lookup itself is cached.
type SessionMiddleware struct {
	sessions *auth.SessionManager
	accounts *auth.Store
	optional bool // If true, allow requests without a session
}

// NewSessionMiddleware creates a new session middleware
func NewSessionMiddleware(sessions *auth.SessionManager, accounts *auth.Store, optional bool) *SessionMiddleware {
	return &SessionMiddleware{
		sessions: sessions,
		accounts: accounts,
		optional: optional,
	}
}

// Handler wraps an HTTP handler with session authentication
func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			if m.optional {
				next.ServeHTTP(w, r)
				return
			}
			httputil.WriteUnauthorized(w, "authentication required")
			return
		}

		session, err := m.sessions.ValidateSession(r.Context(), token)
		if err != nil {
			httputil.WriteUnauthorized(w, "invalid or expired session")
			return
		}

		account, err := m.accounts.GetAccount(r.Context(), session.AccountID)
		if err != nil {
			httputil.WriteUnauthorized(w, "invalid or expired session")
			return
		}

		ctx := contextkeys.WithAccount(r.Context(), account)
		ctx = context.WithValue(ctx, contextkeys.UserIDKey, strconv.FormatInt(account.ID, 10))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// GetAccount extracts the authenticated account from a request, or nil
func GetAccount(r *http.Request) *auth.Account {
	account, ok := contextkeys.Account(r.Context()).(*auth.Account)
	if !ok {
		return nil
	}
	return account
}

// RequireStaff creates middleware rejecting callers without staff access
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !guard.CanAccessStaffArea(GetAccount(r)) {
			httputil.WriteForbidden(w, "staff access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSuperuser creates middleware rejecting callers who cannot manage roles
func RequireSuperuser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !guard.CanManageRoles(GetAccount(r)) {
			httputil.WriteForbidden(w, "superuser access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
