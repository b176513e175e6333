package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/helios/fss/internal/adapter/http/handler"
	"github.com/helios/fss/internal/adapter/http/middleware"
	"github.com/helios/fss/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	SnapshotHandler   *handler.SnapshotHandler
	GoalHandler       *handler.GoalHandler
	CommitmentHandler *handler.CommitmentHandler
	HealthHandler     *handler.HealthHandler
	IdempotencyStore  usecase.IdempotencyStore
	RateLimiter       *middleware.RateLimiter
	Logger            zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Snapshots and evaluation
		r.Route("/snapshots", func(r chi.Router) {
			r.Get("/", cfg.SnapshotHandler.ListDates)
			r.Get("/latest", cfg.SnapshotHandler.GetLatest)
			r.Get("/{date}", cfg.SnapshotHandler.GetByDate)
			r.Post("/run", cfg.SnapshotHandler.Run)
			r.Post("/whatif", cfg.SnapshotHandler.WhatIf)
		})

		// Savings goals
		r.Route("/goals", func(r chi.Router) {
			r.Post("/", cfg.GoalHandler.Create)
			r.Get("/", cfg.GoalHandler.List)
			r.Get("/{id}", cfg.GoalHandler.Get)
			r.Put("/{id}", cfg.GoalHandler.Update)
		})

		// Commitments
		r.Route("/commitments", func(r chi.Router) {
			r.Post("/", cfg.CommitmentHandler.Create)
			r.Get("/", cfg.CommitmentHandler.List)
			r.Delete("/{id}", cfg.CommitmentHandler.Delete)
		})
	})

	return r
}
