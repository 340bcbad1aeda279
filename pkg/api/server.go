// Package api serves the survey and card renderer over HTTP.
//
// Routes:
//
//	GET  /health
//	GET  /api/questions/latest
//	GET  /api/questions/{id}/results.png?kind=main|avatar&option=Option3
//	POST /api/responses                 {"question_id": "...", "choice": "Option2"}
//	POST /api/render?kind=main|avatar   card request JSON, returns PNG
//
// Errors are JSON objects {"code": "...", "message": "..."} with the status
// derived from the error code.
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/pollcard/pkg/pipeline"
	"github.com/matzehuels/pollcard/pkg/render/effects"
	"github.com/matzehuels/pollcard/pkg/survey"
)

// maxBodyBytes bounds request bodies; a card request is a few kilobytes.
const maxBodyBytes = 1 << 20

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	survey *survey.Service
	runner *pipeline.Runner
	logger *log.Logger

	// RenderTimeout bounds a single render request. Zero disables it.
	RenderTimeout time.Duration
	// Glitch is applied to every rendered image when enabled.
	Glitch effects.Glitch
	// Persist also writes every served image to the runner's output
	// directory.
	Persist bool
}

// NewServer creates a server. A nil logger selects the default logger.
func NewServer(svc *survey.Service, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{survey: svc, runner: runner, logger: logger}
}

// Handler returns the router with all routes and middleware mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/questions", func(r chi.Router) {
			r.Get("/latest", s.latestQuestion)
			r.With(s.renderDeadline).Get("/{id}/results.png", s.resultsImage)
		})
		r.Post("/responses", s.createResponse)
		r.With(s.renderDeadline).Post("/render", s.render)
	})
	return r
}

// requestLogger logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) renderDeadline(next http.Handler) http.Handler {
	if s.RenderTimeout <= 0 {
		return next
	}
	return middleware.Timeout(s.RenderTimeout)(next)
}
