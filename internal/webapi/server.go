// Package webapi exposes analyzed workspaces over a plain HTTP/JSON API.
// It replaces a gqlgen GraphQL façade the teacher's own repository never
// finished committing (see DESIGN.md) with the simplest thing that can
// serve the same read-only purpose: one handler per resource, bearer-token
// gated, JSON in and out.
package webapi

import (
	"encoding/json"
	"net/http"

	"github.com/dbaworks/awr-advisor/internal/middleware"
	"github.com/dbaworks/awr-advisor/internal/store"
	"github.com/dbaworks/awr-advisor/pkg/logger"
)

// Server wires the workspace store behind an authenticated HTTP mux.
type Server struct {
	store *store.Store
	log   logger.Logger
}

// New builds a Server around an already-open Store.
func New(st *store.Store, log logger.Logger) *Server {
	return &Server{store: st, log: log}
}

// Handler returns the fully wrapped HTTP handler: CORS, request logging,
// bearer-token auth, then routing.
func (s *Server) Handler(jwtSecret string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /workspaces", s.listWorkspaces)
	mux.HandleFunc("GET /workspaces/{id}", s.getWorkspace)
	mux.HandleFunc("GET /healthz", s.healthz)

	auth := NewAuthMiddleware(jwtSecret, s.log)
	cors := middleware.NewCORSMiddleware()
	logging := middleware.NewLoggingMiddleware(s.log)

	protected := auth.Middleware(mux)

	root := http.NewServeMux()
	root.Handle("/healthz", cors.Middleware(logging.Middleware(http.HandlerFunc(s.healthz))))
	root.Handle("/", cors.Middleware(logging.Middleware(protected)))
	return root
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Health(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "store unhealthy")
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) listWorkspaces(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.ListWorkspaces(r.Context())
	if err != nil {
		s.log.Error("list workspaces failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "list workspaces failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"workspaces": ids})
}

func (s *Server) getWorkspace(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, err := s.store.GetEnvelope(r.Context(), id)
	if err != nil {
		s.log.Error("get workspace failed", logger.String("workspace_id", id), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "get workspace failed")
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "workspace not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
