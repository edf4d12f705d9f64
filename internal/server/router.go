package server

import (
	"net/http"
	"strings"

	"github.com/enjojoy/fredagent/internal/server/handlers"
	"github.com/enjojoy/fredagent/internal/server/middleware"
	"github.com/enjojoy/fredagent/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(
		s.processor,
		s.finder,
		s.jobs,
		s.cache,
		s.metrics,
		s.logger,
		s.config.QueryTimeout,
	)

	s.registerRoutes(mux, h)

	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	// Favicon handler (return 204 No Content to avoid 404 logs)
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Public health endpoints (no auth required)
	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/ready", h.HandleReady)

	// Agent metadata
	mux.HandleFunc(prefix+"/availability", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		h.HandleAvailability(w, r)
	})
	mux.HandleFunc(prefix+"/input_schema", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		h.HandleInputSchema(w, r)
	})

	// Synchronous query
	mux.HandleFunc(prefix+"/query", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		h.HandleQuery(w, r)
	})

	// Async jobs
	mux.HandleFunc(prefix+"/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		h.HandleStartJob(w, r)
	})
	mux.HandleFunc(prefix+"/jobs/", func(w http.ResponseWriter, r *http.Request) {
		jobID := extractPathParam(r.URL.Path, prefix+"/jobs/")
		if jobID == "" {
			response.NotFound(w, "Job ID required", "")
			return
		}
		if r.Method != http.MethodGet {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		h.HandleGetJob(w, r, jobID)
	})

	// FRED lookups
	mux.HandleFunc(prefix+"/search", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		h.HandleSearch(w, r)
	})
	mux.HandleFunc(prefix+"/series/", func(w http.ResponseWriter, r *http.Request) {
		seriesID := extractPathParam(r.URL.Path, prefix+"/series/")
		if seriesID == "" {
			response.NotFound(w, "Series ID required", "")
			return
		}
		if r.Method != http.MethodGet {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		h.HandleGetSeries(w, r, seriesID)
	})

	// Metrics endpoint (optional)
	if s.config.MetricsEnabled {
		mux.Handle("/metrics", s.metrics.Handler())
	}
}

// applyMiddleware wraps handler with middleware chain.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config

	// Rate limiting (if enabled)
	if s.limiter != nil {
		handler = middleware.RateLimit(s.limiter)(handler)
	}

	// Authentication (if enabled)
	if cfg.AuthEnabled {
		authConfig := middleware.DefaultAuthConfig()
		authConfig.Enabled = true
		authConfig.HeaderName = cfg.AuthHeader
		if cfg.AuthAPIKey != "" {
			authConfig.APIKey = cfg.AuthAPIKey
		}
		handler = middleware.Auth(authConfig, s.logger)(handler)
	}

	// CORS (if enabled)
	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
			corsConfig.AllowAll = false
		} else {
			corsConfig.AllowAll = true
		}
		handler = middleware.CORS(corsConfig)(handler)
	}

	// Logging, request IDs, and recovery (always enabled)
	handler = middleware.Logger(s.logger)(handler)
	handler = middleware.RequestID()(handler)
	handler = middleware.Recovery(s.logger)(handler)

	return handler
}

// extractPathParam extracts the first path segment after prefix.
func extractPathParam(path, prefix string) string {
	trimmed := strings.TrimPrefix(path, prefix)
	parts := strings.Split(trimmed, "/")
	if len(parts) > 0 {
		return parts[0]
	}
	return ""
}
