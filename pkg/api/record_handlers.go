package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/opsdesk/opsdesk/pkg/httputil"
	"github.com/opsdesk/opsdesk/pkg/middleware"
	"github.com/opsdesk/opsdesk/pkg/records"
)

// RecordHandlers handles record listing, search, and CRUD
type RecordHandlers struct {
	service *records.Service
}

// NewRecordHandlers creates a new record handlers instance
func NewRecordHandlers(service *records.Service) *RecordHandlers {
	return &RecordHandlers{service: service}
}

// RegisterRoutes registers record management routes on the staff subrouter
func (h *RecordHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/records", h.list).Methods("GET")
	router.HandleFunc("/records", h.create).Methods("POST")
	router.HandleFunc("/records/{id}", h.get).Methods("GET")
	router.HandleFunc("/records/{id}", h.update).Methods("PUT")
	router.HandleFunc("/records/{id}", h.delete).Methods("DELETE")
}

// list handles GET /manage/records?q=
func (h *RecordHandlers) list(w http.ResponseWriter, r *http.Request) {
	listing, err := h.service.List(r.Context(), middleware.GetAccount(r), httputil.QueryParam(r, "q"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, listing)
}

// get handles GET /manage/records/{id}
func (h *RecordHandlers) get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	record, err := h.service.Get(r.Context(), middleware.GetAccount(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, record)
}

// create handles POST /manage/records
func (h *RecordHandlers) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	record, err := h.service.Create(r.Context(), middleware.GetAccount(r), req.Title, req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteCreated(w, record)
}

// update handles PUT /manage/records/{id}
func (h *RecordHandlers) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	record, err := h.service.Update(r.Context(), middleware.GetAccount(r), id, req.Title, req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, record)
}

// delete handles DELETE /manage/records/{id}
func (h *RecordHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), middleware.GetAccount(r), id); err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}
