package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"log/slog"

	"github.com/aldaque/storyloom"
	"github.com/aldaque/storyloom/api"
	"github.com/aldaque/storyloom/pkg/domain"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ExecuteRequest is the transport mapping of the enqueue/execute cycle: the
// whole batch (plus optional create options) is submitted in one request and
// executed atomically with respect to other batches on the same story.
type ExecuteRequest struct {
	Options  *domain.StoryOptions `json:"options,omitempty"`
	Commands []domain.Command     `json:"commands"`
}

// Server exposes a storyloom Session over HTTP.
type Server struct {
	session *storyloom.Session
	logger  *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for the session. The embedded OpenAPI
// document is parsed and validated once so a drifting spec fails loudly at
// startup rather than in a client.
func NewHandler(session *storyloom.Session, opts ...Option) (http.Handler, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(api.Spec)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded openapi spec: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("embedded openapi spec is invalid: %w", err)
	}

	s := &Server{session: session, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/stories", s.listStories)
	r.Delete("/stories/{name}", s.deleteStory)
	r.Post("/stories/{name}/execute", s.executeBatch)
	r.Get("/healthz", s.getHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(api.Spec)
	})

	return r, nil
}

// listStories handles GET /stories.
func (s *Server) listStories(w http.ResponseWriter, r *http.Request) {
	stories, err := s.session.GetStories(r.Context())
	if err != nil {
		s.logger.Error("list stories failed", "err", err)
		http.Error(w, "failed to list stories", http.StatusInternalServerError)
		return
	}
	if stories == nil {
		stories = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"stories": stories})
}

// deleteStory handles DELETE /stories/{name}. Idempotent: deleting a story
// that never existed is still a 204.
func (s *Server) deleteStory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.session.DeleteStory(r.Context(), name); err != nil {
		s.logger.Error("delete story failed", "story", name, "err", err)
		http.Error(w, "failed to delete story", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// executeBatch handles POST /stories/{name}/execute.
func (s *Server) executeBatch(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var body ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctrl, err := s.session.ControlStory(name)
	if err != nil {
		// Control denial is an explicit outcome, not an internal fault.
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	if body.Options != nil {
		ctrl.SetCreateOptions(*body.Options)
	}
	ctrl.Enqueue(body.Commands...)
	result := ctrl.Execute(r.Context())

	writeJSON(w, statusCode(result.Status), result)
}

// getHealth handles GET /healthz.
func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": storyloom.Version,
	})
}

// statusCode maps an ExecuteStatus to an HTTP status. The body always
// carries the full ExecuteResult; the code is a convenience for plain HTTP
// clients.
func statusCode(status domain.ExecuteStatus) int {
	switch status {
	case domain.StatusOK:
		return http.StatusOK
	case domain.StatusInvalidCommand:
		return http.StatusBadRequest
	case domain.StatusInvalidStoryID, domain.StatusInvalidMod:
		return http.StatusNotFound
	case domain.StatusStoryMustHaveMods:
		return http.StatusConflict
	case domain.StatusNoModulesFound:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("response encode failed", "err", err)
	}
}
