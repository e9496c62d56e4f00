package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/opsdesk/opsdesk/pkg/auth"
	"github.com/opsdesk/opsdesk/pkg/guard"
	"github.com/opsdesk/opsdesk/pkg/httputil"
	"github.com/opsdesk/opsdesk/pkg/middleware"
	"github.com/opsdesk/opsdesk/pkg/roles"
	"github.com/opsdesk/opsdesk/pkg/validation"
)

// AccountHandlers handles account listing, creation, and role toggles
type AccountHandlers struct {
	store *auth.Store
	roles *roles.Service
}

// NewAccountHandlers creates a new account handlers instance
func NewAccountHandlers(store *auth.Store, roleService *roles.Service) *AccountHandlers {
	return &AccountHandlers{
		store: store,
		roles: roleService,
	}
}

// RegisterRoutes registers account management routes on the staff subrouter.
// The role toggles are additionally gated on superuser before the service
// runs its own guard.
func (h *AccountHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/users", h.list).Methods("GET")
	router.HandleFunc("/users", h.create).Methods("POST")
	router.Handle("/users/{id}/toggle-staff",
		middleware.RequireSuperuser(http.HandlerFunc(h.toggleStaff))).Methods("POST")
	router.Handle("/users/{id}/toggle-superuser",
		middleware.RequireSuperuser(http.HandlerFunc(h.toggleSuperuser))).Methods("POST")
}

// list handles GET /manage/users
func (h *AccountHandlers) list(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.store.ListAccounts(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{
		"accounts": accounts,
		"count":    len(accounts),
	})
}

// create handles POST /manage/users. Any staff caller may create accounts
// and grant staff access; granting superuser requires a superuser caller.
func (h *AccountHandlers) create(w http.ResponseWriter, r *http.Request) {
	acting := middleware.GetAccount(r)

	var req struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		IsStaff     bool   `json:"is_staff"`
		IsSuperuser bool   `json:"is_superuser"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if req.IsSuperuser && !guard.CanManageRoles(acting) {
		httputil.WriteForbidden(w, "superuser access required to create superusers")
		return
	}

	if err := validation.RequireNonBlank("username", req.Username); err != nil {
		writeServiceError(w, err)
		return
	}
	if err := validation.RequireMinLength("password", req.Password, auth.MinPasswordLength); err != nil {
		writeServiceError(w, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	account := &auth.Account{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		IsStaff:      req.IsStaff,
		IsSuperuser:  req.IsSuperuser,
	}
	if err := h.store.CreateAccount(r.Context(), account); err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteCreated(w, account)
}

// toggleStaff handles POST /manage/users/{id}/toggle-staff
func (h *AccountHandlers) toggleStaff(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	isStaff, err := h.roles.ToggleStaff(r.Context(), middleware.GetAccount(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"id":       id,
		"is_staff": isStaff,
	})
}

// toggleSuperuser handles POST /manage/users/{id}/toggle-superuser
func (h *AccountHandlers) toggleSuperuser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	isSuperuser, err := h.roles.ToggleSuperuser(r.Context(), middleware.GetAccount(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"id":           id,
		"is_superuser": isSuperuser,
	})
}
