package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/txingest/internal/adapter/http/handler"
	"github.com/iho/txingest/internal/adapter/http/middleware"
	"github.com/iho/txingest/internal/domain"
	"github.com/iho/txingest/internal/infrastructure/metrics"
	"github.com/iho/txingest/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	PipelineHandler    *handler.PipelineHandler
	TransactionHandler *handler.TransactionHandler
	HealthHandler      *handler.HealthHandler
	AuthHandler        *handler.AuthHandler // optional, requires TokenVerifier

	Logger         zerolog.Logger
	Metrics        *metrics.Metrics // optional
	MetricsHandler http.Handler     // optional, served at /metrics

	// Manual trigger protection, each optional.
	RateLimiter      *middleware.RateLimiter
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	TokenVerifier    middleware.TokenVerifier // nil disables authentication
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.TokenVerifier != nil {
			r.Use(middleware.AuthMiddleware(cfg.TokenVerifier, cfg.Metrics))
		}

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", cfg.TransactionHandler.List)
			r.Get("/summary", cfg.TransactionHandler.Summary)
			r.Get("/count", cfg.TransactionHandler.Count)
		})

		r.Group(func(r chi.Router) {
			if cfg.RateLimiter != nil {
				r.Use(cfg.RateLimiter.Limit)
			}
			if cfg.TokenVerifier != nil {
				r.Use(middleware.RequireRole(domain.RoleOperator))
			}
			if cfg.IdempotencyStore != nil {
				r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger).Wrap)
			}

			r.Post("/pipeline/run", cfg.PipelineHandler.Run)
		})

		if cfg.TokenVerifier != nil && cfg.AuthHandler != nil {
			r.With(middleware.RequireRole(domain.RoleAdmin)).Post("/auth/token", cfg.AuthHandler.IssueToken)
		}
	})

	return r
}
