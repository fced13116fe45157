package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"buildwatch/internal/api/handlers"
	"buildwatch/internal/api/middleware"
	"buildwatch/internal/config"
	"buildwatch/internal/engine"
	"buildwatch/internal/logger"
	"buildwatch/internal/storage"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router represents the API router
type Router struct {
	mux            *http.ServeMux
	allowedOrigins []string
	maxBodySize    int64
}

// NewRouter creates a new Router instance
func NewRouter(
	cfg config.Config,
	ciEngine engine.CIEngine,
) *Router {
	mux := http.NewServeMux()

	jenkinsHandler := handlers.NewJenkinsHandler(ciEngine)
	auditHandler := handlers.NewAuditHandler()

	authMiddleware := middleware.NewAuthMiddleware(cfg.API)

	// Public routes
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "buildwatch API",
			"version": "1.0.0",
			"endpoints": []string{
				"/health - Health check",
				"/metrics - Prometheus metrics",
				"/api/v1/trigger/jenkins - Trigger Jenkins build",
				"/api/v1/status/jenkins - Find builds matching a parameter set",
				"/api/v1/audit - Get audit logs",
			},
		}); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if err := storage.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			if encodeErr := json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"error":  "database connection failed",
			}); encodeErr != nil {
				logger.Error("Failed to encode health check error", "error", encodeErr)
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "healthy",
		}); err != nil {
			logger.Error("Failed to encode health check response", "error", err)
		}
	})

	mux.Handle("/metrics", promhttp.Handler())

	// Protected routes
	mux.Handle("/api/v1/trigger/jenkins", authMiddleware.Middleware(http.HandlerFunc(jenkinsHandler.TriggerJenkinsBuild)))
	mux.Handle("/api/v1/status/jenkins", authMiddleware.Middleware(http.HandlerFunc(jenkinsHandler.MatchingStatuses)))
	mux.Handle("/api/v1/audit", authMiddleware.Middleware(http.HandlerFunc(auditHandler.GetAuditLogs)))

	return &Router{
		mux:            mux,
		allowedOrigins: cfg.Server.AllowedOrigins,
		maxBodySize:    cfg.Server.MaxBodySize,
	}
}

// ServeHTTP implements the http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	handler := chainMiddleware(
		r.mux,
		middleware.RequestIDMiddleware,
		middleware.MetricsMiddleware,
		middleware.LimitBodySize(r.maxBodySize),
		r.corsMiddleware,
	)
	handler.ServeHTTP(w, req)
}

// chainMiddleware chains multiple middleware functions together
func chainMiddleware(handler http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

// corsMiddleware handles CORS headers and preflight requests
func (r *Router) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		origin := req.Header.Get("Origin")

		if len(r.allowedOrigins) == 0 {
			// Empty allowed origins means allow all
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else if origin != "" {
			if !r.isValidOrigin(origin) {
				logger.Warn("Invalid origin format", "origin", origin, "request_id", middleware.GetRequestID(req))
			} else if r.isOriginAllowed(origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			} else {
				logger.Warn("Origin not allowed", "origin", origin, "request_id", middleware.GetRequestID(req))
			}
		}
		// Same-origin requests carry no Origin header and need no CORS headers

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, req)
	})
}

// isValidOrigin validates the origin format (must be http:// or https://)
func (r *Router) isValidOrigin(origin string) bool {
	return strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://")
}

// isOriginAllowed checks if the given origin is in the allowed list
func (r *Router) isOriginAllowed(origin string) bool {
	for _, allowed := range r.allowedOrigins {
		if strings.EqualFold(origin, allowed) {
			return true
		}
	}
	return false
}
