package rest

import (
	"CivicPulse/internal/adapters/metrics"
	"CivicPulse/internal/core/services"
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Server is the HTTP transport over the report and notification services.
type Server struct {
	reports *services.ReportService
	notes   *services.NotificationService
	auth    *Authenticator
	metrics *metrics.Metrics
	ready   func(ctx context.Context) error
	log     zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records request latency and serves /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithReadiness makes /healthz report the result of check.
func WithReadiness(check func(ctx context.Context) error) Option {
	return func(s *Server) { s.ready = check }
}

// NewServer creates a Server.
func NewServer(
	reports *services.ReportService,
	notes *services.NotificationService,
	auth *Authenticator,
	baseLogger *zerolog.Logger,
	opts ...Option,
) *Server {
	s := &Server{
		reports: reports,
		notes:   notes,
		auth:    auth,
		log:     baseLogger.With().Str("component", "http").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes wires all endpoints.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(s.auth.Middleware)

		r.Route("/reports", func(r chi.Router) {
			r.Post("/submit", s.handleSubmit)
			r.Get("/all", s.handleListAll)
			r.Get("/my-reports", s.handleListMine)
			r.Get("/assigned", s.handleListAssigned)
			r.Get("/staff", s.handleListStaff)
			r.Get("/{id}", s.handleGet)
			r.Patch("/{id}/assign", s.handleAssign)
			r.Patch("/{id}/resolve", s.handleResolve)
			r.Patch("/{id}/verify", s.handleVerify)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.handleListNotifications)
			r.Delete("/", s.handleDeleteAllNotifications)
			r.Put("/{id}/read", s.handleMarkRead)
			r.Delete("/{id}", s.handleDeleteNotification)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.log.Warn().Err(err).Msg("Readiness check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// instrument logs each request and feeds the latency histogram.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		if s.metrics != nil {
			s.metrics.ObserveRequest(r.Method, route, status, start)
		}
		s.log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("route", route).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}
