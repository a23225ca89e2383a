package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORSConfig lists what browsers on other origins may do.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	ExposedHeaders []string
	MaxAge         int
}

// NewCORS wraps an http.Handler with CORS handling. Preflight requests are
// answered here and never reach the wrapped handler.
func NewCORS(cfg CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: cfg.AllowedMethods,
		AllowedHeaders: cfg.AllowedHeaders,
		ExposedHeaders: cfg.ExposedHeaders,
		MaxAge:         cfg.MaxAge,
	})
}
