package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/opsdesk/opsdesk/pkg/auth"
	"github.com/opsdesk/opsdesk/pkg/httputil"
	"github.com/opsdesk/opsdesk/pkg/middleware"
	"github.com/opsdesk/opsdesk/pkg/observability"
	"github.com/opsdesk/opsdesk/pkg/records"
	"github.com/opsdesk/opsdesk/pkg/roles"
)

// Server is the opsdesk API server
type Server struct {
	db       *sql.DB
	router   *mux.Router
	logger   *observability.Logger
	metrics  *observability.Metrics
	accounts *auth.Store
	sessions *auth.SessionManager
	records  *records.Service
}

// NewServer creates the API server and wires up all routes.
// metrics may be nil to disable instrumentation.
func NewServer(db *sql.DB, policy records.Policy, logger *observability.Logger, metrics *observability.Metrics) (*Server, error) {
	sessions, err := auth.NewSessionManager(db, metrics)
	if err != nil {
		return nil, err
	}

	s := &Server{
		db:       db,
		router:   mux.NewRouter(),
		logger:   logger,
		metrics:  metrics,
		accounts: auth.NewStore(db),
		sessions: sessions,
		records:  records.NewService(db, policy, metrics),
	}

	s.setupRoutes()
	return s, nil
}

// setupRoutes configures middleware and all API routes
func (s *Server) setupRoutes() {
	s.router.Use(httputil.RequestIDMiddleware)
	s.router.Use(httputil.LoggingMiddleware(s.logger))
	s.router.Use(httputil.RecoveryMiddleware)
	if s.metrics != nil {
		s.router.Use(s.metrics.HTTPMiddleware(routeTemplate))
	}

	s.router.HandleFunc("/health", s.health).Methods("GET")
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}

	// Session lifecycle routes are public; logout reads its own token
	authHandlers := NewAuthHandlers(auth.NewDirectory(s.accounts), s.sessions)
	authHandlers.RegisterRoutes(s.router)

	// Everything under /manage requires a valid session and staff access
	manage := s.router.PathPrefix("/manage").Subrouter()
	sessionMW := middleware.NewSessionMiddleware(s.sessions, s.accounts, false)
	manage.Use(sessionMW.Handler)
	manage.Use(middleware.RequireStaff)

	NewAccountHandlers(s.accounts, roles.NewService(s.db)).RegisterRoutes(manage)
	NewRecordHandlers(s.records).RegisterRoutes(manage)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routeTemplate resolves the matched mux route template for metric labels
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}

// health handles GET /health. It pings the database and refreshes the
// business gauges as a side effect.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	s.refreshGauges(ctx)

	httputil.WriteSuccess(w, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().UTC(),
	})
}

// refreshGauges updates the business metrics from current row counts.
// Failures are logged and skipped; health does not depend on them.
func (s *Server) refreshGauges(ctx context.Context) {
	if s.metrics == nil {
		return
	}

	if stats, err := s.accounts.Stats(ctx); err != nil {
		s.logger.WithError(err).Warn("failed to refresh account gauges")
	} else {
		s.metrics.AccountsTotal.Set(float64(stats.Total))
		s.metrics.StaffTotal.Set(float64(stats.Staff))
		s.metrics.SuperusersTotal.Set(float64(stats.Superusers))
	}

	if active, err := s.sessions.CountActive(ctx); err != nil {
		s.logger.WithError(err).Warn("failed to refresh session gauge")
	} else {
		s.metrics.SessionsActive.Set(float64(active))
	}

	if total, err := s.records.Count(ctx); err != nil {
		s.logger.WithError(err).Warn("failed to refresh record gauge")
	} else {
		s.metrics.RecordsTotal.Set(float64(total))
	}
}
