package api

import (
	"errors"
	"net/http"

	"github.com/opsdesk/opsdesk/pkg/auth"
	"github.com/opsdesk/opsdesk/pkg/guard"
	"github.com/opsdesk/opsdesk/pkg/httputil"
	"github.com/opsdesk/opsdesk/pkg/records"
	"github.com/opsdesk/opsdesk/pkg/roles"
	"github.com/opsdesk/opsdesk/pkg/validation"
)

// writeServiceError maps domain errors onto HTTP statuses. Denials never
// leave partial state behind, so every branch is safe to surface directly.
func writeServiceError(w http.ResponseWriter, err error) {
	var fieldErr *validation.Error
	if errors.As(err, &fieldErr) {
		httputil.WriteValidationError(w, fieldErr.Field, fieldErr.Message)
		return
	}

	switch {
	case errors.Is(err, guard.ErrUnauthorized):
		httputil.WriteForbidden(w, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		httputil.WriteUnauthorized(w, err.Error())
	case errors.Is(err, auth.ErrSessionNotFound):
		httputil.WriteUnauthorized(w, err.Error())
	case errors.Is(err, auth.ErrAccountNotFound),
		errors.Is(err, records.ErrNotFound):
		httputil.WriteNotFoundError(w, err.Error())
	case errors.Is(err, auth.ErrUsernameTaken),
		errors.Is(err, records.ErrNotCreator),
		errors.Is(err, roles.ErrSelfModificationDenied),
		errors.Is(err, roles.ErrSelfDemotionDenied),
		errors.Is(err, roles.ErrLastSuperuserProtected),
		errors.Is(err, roles.ErrSuperuserStaffRequired):
		httputil.WriteConflict(w, err.Error())
	default:
		httputil.WriteInternalError(w, err)
	}
}
