package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/opsdesk/opsdesk/pkg/auth"
	"github.com/opsdesk/opsdesk/pkg/httputil"
)

// AuthHandlers handles registration, login, and logout
type AuthHandlers struct {
	directory *auth.Directory
	sessions  *auth.SessionManager
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(directory *auth.Directory, sessions *auth.SessionManager) *AuthHandlers {
	return &AuthHandlers{
		directory: directory,
		sessions:  sessions,
	}
}

// RegisterRoutes registers the session lifecycle routes
func (h *AuthHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth/register", h.register).Methods("POST")
	router.HandleFunc("/auth/login", h.login).Methods("POST")
	router.HandleFunc("/auth/logout", h.logout).Methods("POST")
}

// register handles POST /auth/register
func (h *AuthHandlers) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	account, err := h.directory.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteCreated(w, account)
}

// login handles POST /auth/login
func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	account, err := h.directory.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	token, session, err := h.sessions.StartSession(r.Context(), account.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"token":      token,
		"expires_at": session.ExpiresAt,
		"account":    account,
	})
}

// logout handles POST /auth/logout. Revoking an unknown token succeeds;
// the outcome is the same either way.
func (h *AuthHandlers) logout(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		httputil.WriteUnauthorized(w, "missing bearer token")
		return
	}

	if err := h.sessions.EndSession(r.Context(), parts[1]); err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}
