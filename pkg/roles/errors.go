package roles

import "errors"

var (
	// ErrSelfModificationDenied is returned when an account tries to toggle
	// its own staff flag. Changing your own staff access through the
	// management surface is never allowed.
	ErrSelfModificationDenied = errors.New("cannot change your own staff access")

	// ErrSelfDemotionDenied is returned when a superuser tries to demote itself
	ErrSelfDemotionDenied = errors.New("cannot revoke your own superuser access")

	// ErrLastSuperuserProtected is returned when demoting the target would
	// leave the store with zero superusers
	ErrLastSuperuserProtected = errors.New("cannot demote the last superuser")

	// ErrSuperuserStaffRequired is returned when toggling staff off for a
	// superuser. Superusers always hold staff access; demote first.
	ErrSuperuserStaffRequired = errors.New("superusers always have staff access; demote first")
)
