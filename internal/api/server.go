// Package api provides the HTTP API server and handlers for the Kanine application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kanineapp/kanine-server/internal/http/response"
	"github.com/kanineapp/kanine-server/internal/metrics"
	"github.com/kanineapp/kanine-server/internal/ratelimit"
	"github.com/kanineapp/kanine-server/internal/store"
)

// Options holds the server settings that come from configuration.
type Options struct {
	Version        string
	AllowedOrigins []string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store       store.Store
	services    *Services
	router      *chi.Mux
	api         huma.API
	metrics     *metrics.Metrics
	authLimiter *ratelimit.KeyedRateLimiter
	options     Options
	logger      *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// metrics and authLimiter may be nil.
func NewServer(
	st store.Store,
	services *Services,
	m *metrics.Metrics,
	authLimiter *ratelimit.KeyedRateLimiter,
	opts Options,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	s := &Server{
		store:       st,
		services:    services,
		router:      chi.NewRouter(),
		metrics:     m,
		authLimiter: authLimiter,
		options:     opts,
		logger:      logger,
	}

	s.setupMiddleware()
	s.setupAPI()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, mainly for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	origins := s.options.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RealIP)
	s.router.Use(requestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.metrics.Middleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader, "Content-Disposition", "ETag", "Retry-After"},
		MaxAge:         300,
	}))
	// Page files are already compressed formats.
	s.router.Use(middleware.Compress(5, "application/json"))
}

// setupAPI creates the huma API on top of the chi router.
func (s *Server) setupAPI() {
	config := huma.DefaultConfig("Kanine API", s.options.Version)
	config.Info.Description = "Personal page notes, stars and page scans for your books."
	config.OpenAPIPath = "/api/openapi"
	config.DocsPath = "/api/docs"
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	// Bodies are wrapped in the envelope, so no $schema links.
	config.CreateHooks = nil
	config.Transformers = append(config.Transformers, EnvelopeTransformer)

	RegisterErrorHandler(s.logger)
	s.api = humachi.New(s.router, config)
	s.api.UseMiddleware(s.rateLimitAuth)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "route not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil, s.logger)
	})

	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerBookRoutes()
	s.registerStarRoutes()
	s.registerCategoryRoutes()
	s.registerNoteRoutes()
	s.registerSearchRoutes()
	s.registerTagRoutes()

	// Multipart upload and binary download bypass huma's JSON handling.
	s.router.Post("/api/v1/books/{id}/upload", s.handleUploadPageFile)
	s.router.Get("/api/v1/books/{id}/file/{page}", s.handleDownloadPageFile)
	s.router.Delete("/api/v1/books/{id}/file/{page}", s.handleDeletePageFile)
}
