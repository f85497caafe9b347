// Package api provides the loopback HTTP bridge the host plugin talks to.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/chargespot/chargespot/internal/api/handler"
	"github.com/chargespot/chargespot/internal/api/middleware"
	"github.com/chargespot/chargespot/internal/api/models"
	"github.com/chargespot/chargespot/internal/api/response"
	"github.com/chargespot/chargespot/internal/provider/resilience"
	"github.com/chargespot/chargespot/internal/station"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version   string
	BuildTime string
	Logger    zerolog.Logger
	Metrics   *middleware.Metrics

	Searcher handler.Searcher
	Session  *station.Session
	Exporter handler.Exporter

	// Registry is optional; without it the status endpoint lists no providers.
	Registry *resilience.Registry

	// SearchRateLimit caps searches per minute (default: middleware.SearchRateLimit).
	SearchRateLimit int

	// AllowRemote disables the loopback-only guard. Only for bridges bound to
	// a non-loopback address on purpose.
	AllowRemote bool
}

// NewRouter creates a new chi router with all bridge routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	session := cfg.Session
	if session == nil {
		session = station.NewSession()
	}

	searchLimit := middleware.SearchRateLimit
	if cfg.SearchRateLimit > 0 {
		searchLimit.RequestLimit = cfg.SearchRateLimit
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID) // Generate/propagate request ID first
	r.Use(middleware.Tracing()) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	if !cfg.AllowRemote {
		r.Use(middleware.LoopbackOnly) // Local host plugin only
	}
	r.Use(middleware.SecurityHeaders) // Security headers (CSP, no-store, etc.)
	r.Use(middleware.ContentTypeJSON) // JSON content type
	r.Use(middleware.RequireJSON)     // JSON request bodies

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry, session)
	searchHandler := handler.NewSearchHandler(cfg.Searcher, session, cfg.Logger)
	resultsHandler := handler.NewResultsHandler(session)
	reportHandler := handler.NewReportHandler(session, cfg.Exporter, cfg.Logger)

	searchRateLimit := middleware.RateLimitByIP(searchLimit)                    // upstream-bound
	exportRateLimit := middleware.RateLimitByIP(middleware.ExportRateLimit)     // 20 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 600 req/min

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		response.NotFound(w, req, "no such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		traceID := middleware.GetRequestID(req.Context())
		response.Error(w, req, models.NewProblem(models.ProblemTypeNotFound, "Method not allowed", http.StatusMethodNotAllowed, traceID))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		r.With(searchRateLimit).Post("/searches", searchHandler.Search)

		r.Group(func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/results", resultsHandler.ListResults)
			r.Delete("/results", resultsHandler.ClearResults)
			r.Post("/results:filter", resultsHandler.FilterResults)
			r.Get("/results/facets", resultsHandler.GetFacets)
			r.Get("/results/layer", resultsHandler.GetLayer)
			r.Get("/stations/{stationId}", resultsHandler.GetStation)
		})

		r.With(exportRateLimit).Post("/reports", reportHandler.CreateReport)
	})

	return r
}
