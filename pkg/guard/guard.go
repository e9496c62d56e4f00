// Package guard holds the pure authorization predicates. It has no
// persistence and no side effects; callers pass the acting account and get
// a decision back.
package guard

import (
	"errors"

	"github.com/opsdesk/opsdesk/pkg/auth"
)

// ErrUnauthorized is returned when the caller lacks the required level for
// an operation. Handlers surface it as 403.
var ErrUnauthorized = errors.New("unauthorized")

// CanAccessStaffArea reports whether the account may use the administrative
// record and account views.
func CanAccessStaffArea(account *auth.Account) bool {
	return account != nil && account.Level().AtLeast(auth.LevelStaff)
}

// CanManageRoles reports whether the account may change other accounts'
// permission levels.
func CanManageRoles(account *auth.Account) bool {
	return account != nil && account.Level().AtLeast(auth.LevelSuperuser)
}

// RequireStaff returns ErrUnauthorized unless the account has staff access
func RequireStaff(account *auth.Account) error {
	if !CanAccessStaffArea(account) {
		return ErrUnauthorized
	}
	return nil
}

// RequireSuperuser returns ErrUnauthorized unless the account is a superuser
func RequireSuperuser(account *auth.Account) error {
	if !CanManageRoles(account) {
		return ErrUnauthorized
	}
	return nil
}
