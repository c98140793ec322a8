package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dagenius007/pr-reviewer/internal/ai"
	"github.com/dagenius007/pr-reviewer/internal/logging"
	"github.com/dagenius007/pr-reviewer/internal/review"
	"github.com/dagenius007/pr-reviewer/internal/types"
	"github.com/dagenius007/pr-reviewer/internal/webhook"
	"github.com/dagenius007/pr-reviewer/internal/worker"
)

const serviceName = "pr-reviewer"

// Queue accepts background jobs without blocking.
type Queue interface {
	Submit(job worker.Job) bool
	Stats() worker.Stats
}

// Processor reviews one pull request end to end.
type Processor interface {
	Process(ctx context.Context, pr webhook.PRInfo) review.Outcome
}

// AIStatus reports the configured AI backend.
type AIStatus interface {
	Status() ai.Status
}

type Options struct {
	Verifier  *webhook.Verifier
	Filter    *webhook.EventFilter
	Queue     Queue
	Processor Processor
	AI        AIStatus
	// GitHubConfigured is false when no API token was provided.
	GitHubConfigured bool
	AllowedOrigin    string
	Version          string
	Log              logging.Logger
}

type Server struct {
	router  *chi.Mux
	opts    Options
	log     logging.Logger
	started time.Time
}

func NewServer(opts Options) *Server {
	r := chi.NewRouter()
	log := opts.Log.WithName("http")
	s := &Server{router: r, opts: opts, log: log, started: time.Now()}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(s.recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{opts.AllowedOrigin},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", webhook.HeaderEvent, webhook.HeaderDelivery, webhook.HeaderSignature},
		MaxAge:         300,
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/", s.handleRoot)
	s.router.Post("/webhooks/github", s.handleGitHubWebhook)
	s.router.Get("/webhooks/health", s.handleHealth)
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.ServiceInfo{
		Name:    serviceName,
		Version: s.opts.Version,
		Endpoints: []string{
			"POST /webhooks/github",
			"GET /webhooks/health",
		},
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, types.ErrorResponse{Error: msg})
}
