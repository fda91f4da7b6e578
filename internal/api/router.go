// Package api provides the HTTP API for MandiRoute.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/mandiroute/mandiroute/internal/api/handler"
	"github.com/mandiroute/mandiroute/internal/api/middleware"
	"github.com/mandiroute/mandiroute/internal/directory"
	"github.com/mandiroute/mandiroute/internal/market"
	"github.com/mandiroute/mandiroute/internal/pricefeed"
	"github.com/mandiroute/mandiroute/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version          string
	BuildTime        string
	Logger           zerolog.Logger
	ServiceName      string
	Metrics          *middleware.Metrics
	DirectoryService *directory.Service
	MarketService    *market.Service
	PriceService     *pricefeed.Service
	Registry         *resilience.Registry
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "mandiroute-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type
	r.Use(middleware.RequireJSON)          // Reject non-JSON bodies

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.DirectoryService, cfg.PriceService, cfg.Registry)
	marketHandler := handler.NewMarketHandler(cfg.MarketService, cfg.DirectoryService)

	// The rank/recommend endpoints fan out per-mandi evaluations, so
	// they get the tighter budget.
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Market selection endpoints
		r.Route("/market", func(r chi.Router) {
			r.With(standardRateLimit).Get("/commodities", marketHandler.ListCommodities)
			r.With(expensiveRateLimit).Post("/rank", marketHandler.Rank)
			r.With(expensiveRateLimit).Post("/recommend", marketHandler.Recommend)
		})
	})

	return r
}
