// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All context keys used across the application must be defined here.
// This prevents typos, documents dependencies, and makes key usage discoverable.
//
// USAGE PATTERN:
//   import "github.com/opsdesk/opsdesk/pkg/contextkeys"
//   ctx = contextkeys.WithAccount(ctx, account)
//   account, ok := contextkeys.Account(ctx).(*auth.Account)
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// AccountKey contains the authenticated *auth.Account
	// Set by: middleware.SessionMiddleware (pkg/middleware/auth.go)
	// Required by: all /manage endpoints
	AccountKey Key = "account"

	// RequestIDKey contains request ID string (UUID)
	// Set by: httputil.RequestIDMiddleware
	// Used by: logger
	RequestIDKey Key = "request_id"

	// UserIDKey contains the acting account ID string
	// Set by: middleware.SessionMiddleware after session validation
	// Used by: logger
	UserIDKey Key = "user_id"

	// LoggerKey contains *observability.Logger
	// Set by: observability layer
	// Used by: handlers that need structured logging with request context
	LoggerKey Key = "logger"
)

// WithAccount stores the authenticated account in the context.
// The value is stored untyped to avoid an import cycle with pkg/auth.
func WithAccount(ctx context.Context, account interface{}) context.Context {
	return context.WithValue(ctx, AccountKey, account)
}

// Account retrieves the authenticated account from the context, or nil.
func Account(ctx context.Context) interface{} {
	return ctx.Value(AccountKey)
}
