package auth

import "time"

// Level is an ordered permission level. Higher levels include all access
// granted by lower ones.
type Level int

const (
	// LevelMember is a regular authenticated account with no management access
	LevelMember Level = iota
	// LevelStaff can access the administrative record and account views
	LevelStaff
	// LevelSuperuser can additionally mutate other accounts' permission levels
	LevelSuperuser
)

// String returns a human-readable level name
func (l Level) String() string {
	switch l {
	case LevelStaff:
		return "staff"
	case LevelSuperuser:
		return "superuser"
	default:
		return "member"
	}
}

// AtLeast reports whether the level grants everything min does
func (l Level) AtLeast(min Level) bool {
	return l >= min
}

// Account represents a user account in the identity store
type Account struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email,omitempty"`
	PasswordHash string     `json:"-"` // Never expose the hash
	IsStaff      bool       `json:"is_staff"`
	IsSuperuser  bool       `json:"is_superuser"`
	JoinedAt     time.Time  `json:"joined_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// Level collapses the role flags into the ordered permission level.
// The store never persists a superuser without the staff flag, so the
// superuser check wins.
func (a *Account) Level() Level {
	switch {
	case a.IsSuperuser:
		return LevelSuperuser
	case a.IsStaff:
		return LevelStaff
	default:
		return LevelMember
	}
}

// Session represents a persisted login session
type Session struct {
	ID          int64     `json:"id"`
	AccountID   int64     `json:"account_id"`
	TokenHash   string    `json:"-"`
	TokenPrefix string    `json:"token_prefix"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
