package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/secmon-lab/briareos/pkg/usecase"
	"github.com/secmon-lab/briareos/pkg/utils/errutil"
	"github.com/secmon-lab/briareos/pkg/utils/logging"
)

type Server struct {
	router   *chi.Mux
	uc       *usecase.UseCases
	gatherer prometheus.Gatherer
	apiToken string

	autoGenerate bool
}

type Options func(*Server)

// WithAutoGenerateDefault sets auto_generate for ticket requests that omit it
func WithAutoGenerateDefault(enabled bool) Options {
	return func(s *Server) {
		s.autoGenerate = enabled
	}
}

// WithMetrics exposes the registry on /metrics
func WithMetrics(gatherer prometheus.Gatherer) Options {
	return func(s *Server) {
		s.gatherer = gatherer
	}
}

// WithAPIToken requires "Authorization: Bearer <token>" on every /api route
func WithAPIToken(token string) Options {
	return func(s *Server) {
		s.apiToken = token
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:       r,
		uc:           uc,
		autoGenerate: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		if s.apiToken != "" {
			r.Use(tokenMiddleware(s.apiToken))
		}

		r.Route("/tickets", func(r chi.Router) {
			r.Post("/", createTicketHandler(uc, s.autoGenerate))
			r.Get("/", listTicketsHandler(uc))
			r.Get("/{ticketID}", getTicketHandler(uc))
			r.Post("/{ticketID}/generate-draft", generateDraftHandler(uc))
			r.Get("/{ticketID}/generation", generationStatusHandler(uc))
		})

		r.Route("/drafts", func(r chi.Router) {
			r.Get("/{ticketID}", getLatestDraftHandler(uc))
			r.Patch("/{draftID}", updateDraftHandler(uc))
		})

		r.Post("/knowledge/ingest", ingestKnowledgeHandler(uc))

		r.Route("/customers/{customerID}", func(r chi.Router) {
			r.Get("/memories", listMemoriesHandler(uc))
			r.Get("/memory-search", searchMemoriesHandler(uc))
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	errutil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
