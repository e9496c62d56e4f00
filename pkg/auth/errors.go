package auth

import "errors"

var (
	// ErrAccountNotFound is returned when the referenced account does not exist
	ErrAccountNotFound = errors.New("account not found")

	// ErrUsernameTaken is returned when registering a username that already exists
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials is returned when authentication fails. The same
	// error covers unknown usernames and wrong passwords so callers cannot
	// probe for valid usernames.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrSessionNotFound is returned for unknown, revoked, or expired session tokens
	ErrSessionNotFound = errors.New("session not found or expired")
)
