package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORSConfig describes the cross-origin policy for browser clients.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// DefaultCORS returns the policy the public endpoints are served with.
func DefaultCORS(origins []string) CORSConfig {
	return CORSConfig{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Authorization", "Accept", "Content-Type"},
		MaxAge:         3600,
	}
}

// CORS answers preflight requests and decorates responses for allowed
// origins. An origin of "*" allows any caller; an empty list allows none.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: cfg.AllowedMethods,
		AllowedHeaders: cfg.AllowedHeaders,
		MaxAge:         cfg.MaxAge,
	}
	if len(cfg.AllowedOrigins) == 0 {
		// cors treats an empty list as allow-all.
		opts.AllowOriginFunc = func(*http.Request, string) bool { return false }
	}
	return cors.Handler(opts)
}
