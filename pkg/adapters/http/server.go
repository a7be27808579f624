package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/souqra"
	"github.com/aretw0/souqra/api"
	"github.com/aretw0/souqra/internal/logging"
	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/ports"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/rs/cors"
)

// Controller is the session API served over HTTP.
type Controller interface {
	ports.Controller
	Report(ctx context.Context, sessionID string) (string, error)
}

// DefaultOrigins are the browser origins allowed when none are configured.
var DefaultOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

// Server serves a Controller.
type Server struct {
	Engine  Controller
	Streams *StreamManager

	doc     *openapi3.T
	metrics http.Handler
	origins []string
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithStreams shares a StreamManager fed by the engine's lifecycle hooks.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithOrigins sets the CORS allow-list.
func WithOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.origins = origins
		}
	}
}

// WithLogger configures the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Controller, opts ...Option) (http.Handler, error) {
	doc, err := loadSpec()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Engine:  engine,
		doc:     doc,
		origins: DefaultOrigins,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.With(s.validate("/start")).Post("/start", s.Start)
	r.With(s.validate("/feedback/persona")).Post("/feedback/persona", s.feedback(domain.FieldSelectedPersona))
	r.With(s.validate("/feedback/creative")).Post("/feedback/creative", s.feedback(domain.FieldSelectedCreativeDraft))

	r.Get("/sessions", s.ListSessions)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", s.GetSession)
		r.Delete("/", s.DeleteSession)
		r.Post("/resume", s.ResumeSession)
		r.Post("/retry", s.RetrySession)
		r.Get("/report", s.GetReport)
	})
	r.Get("/kits", s.ListKits)
	r.Get("/events", s.SubscribeEvents)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	// Swagger UI
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(api.Spec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(r), nil
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Souqra API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// SessionResponse is a snapshot plus the wire aliases clients expect.
// Step outputs are always present, null until produced.
type SessionResponse struct {
	*domain.State
	MarketResearch  *domain.MarketResearch  `json:"market_maven_output"`
	KeywordStrategy *domain.KeywordStrategy `json:"seo_sage_output"`
	CreativeDrafts  []domain.CreativeDraft  `json:"creative_drafts"`
	CampaignPlan    *domain.CampaignPlan    `json:"campaign_architect_output"`
	ThreadID        string                  `json:"thread_id"`
	Status          string                  `json:"status"`
}

func newSessionResponse(state *domain.State) SessionResponse {
	status := state.CurrentStep
	if len(state.Failures) > 0 {
		status = "failed"
	}
	return SessionResponse{
		State:           state,
		MarketResearch:  state.MarketResearch,
		KeywordStrategy: state.KeywordStrategy,
		CreativeDrafts:  state.CreativeDrafts,
		CampaignPlan:    state.CampaignPlan,
		ThreadID:        state.SessionID,
		Status:          status,
	}
}

type startRequest struct {
	UserInput domain.Brief `json:"user_input"`
	Owner     string       `json:"owner"`
}

type feedbackRequest struct {
	SessionID             string          `json:"session_id"`
	ThreadID              string          `json:"thread_id"`
	SelectedPersona       json.RawMessage `json:"selected_persona"`
	SelectedCreativeDraft json.RawMessage `json:"selected_creative_draft"`
	SelectedData          json.RawMessage `json:"selected_data"`
}

// Start handles POST /start.
func (s *Server) Start(w http.ResponseWriter, r *http.Request) {
	var body startRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.fail(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	state, err := s.Engine.Start(r.Context(), ports.StartRequest{Brief: body.UserInput, Owner: body.Owner})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.session(w, state)
}

// feedback handles POST /feedback/persona and /feedback/creative.
func (s *Server) feedback(field domain.Field) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body feedbackRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.fail(w, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}

		id := body.SessionID
		if id == "" {
			id = body.ThreadID
		}
		if id == "" {
			s.fail(w, fmt.Errorf("%w: session_id is required", errBadRequest))
			return
		}

		raw := body.SelectedData
		switch field {
		case domain.FieldSelectedPersona:
			if len(body.SelectedPersona) > 0 {
				raw = body.SelectedPersona
			}
		case domain.FieldSelectedCreativeDraft:
			if len(body.SelectedCreativeDraft) > 0 {
				raw = body.SelectedCreativeDraft
			}
		}
		if len(raw) == 0 || string(raw) == "null" {
			s.fail(w, fmt.Errorf("%w: %s is required", domain.ErrInvalidSelection, field))
			return
		}

		state, err := s.Engine.SubmitFeedback(r.Context(), id, field, raw)
		if err != nil {
			s.fail(w, err)
			return
		}
		s.session(w, state)
	}
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Engine.Sessions(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.json(w, http.StatusOK, ids)
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.Engine.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.session(w, state)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResumeSession handles POST /sessions/{id}/resume.
func (s *Server) ResumeSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.Engine.Resume(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.session(w, state)
}

// RetrySession handles POST /sessions/{id}/retry.
func (s *Server) RetrySession(w http.ResponseWriter, r *http.Request) {
	state, err := s.Engine.Retry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.session(w, state)
}

// GetReport handles GET /sessions/{id}/report.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	md, err := s.Engine.Report(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(md))
}

// ListKits handles GET /kits.
func (s *Server) ListKits(w http.ResponseWriter, r *http.Request) {
	var owner *string
	if err := runtime.BindQueryParameter("form", true, false, "owner", r.URL.Query(), &owner); err != nil {
		s.fail(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	filter := ""
	if owner != nil {
		filter = strings.TrimSpace(*owner)
	}
	kits, err := s.Engine.Kits(r.Context(), filter)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.json(w, http.StatusOK, kits)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.doc.Info != nil {
		apiVersion = s.doc.Info.Version
	}
	s.json(w, http.StatusOK, map[string]string{
		"app":         "souqra-http",
		"version":     strings.TrimSpace(souqra.Version),
		"api_version": apiVersion,
	})
}

// -- Helpers --

var errBadRequest = errors.New("bad request")

func (s *Server) session(w http.ResponseWriter, state *domain.State) {
	s.json(w, http.StatusOK, newSessionResponse(state))
}

func (s *Server) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

// fail maps err to a status code.
func (s *Server) fail(w http.ResponseWriter, err error) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("Request failed", "err", err)
	} else {
		s.logger.Debug("Request rejected", "status", code, "err", err)
	}
	s.json(w, code, map[string]string{"error": err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrOutputAlreadySet),
		errors.Is(err, domain.ErrSessionExists):
		return http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, domain.ErrInvalidSelection),
		errors.Is(err, domain.ErrInvalidBrief):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		return 499
	}
	return http.StatusInternalServerError
}
