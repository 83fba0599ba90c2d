package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"

	"github.com/lastros/pos-backend/pkg/config"
)

// CORS returns middleware that applies the configured origin policy. Tokens
// travel in headers, so credentials are only allowed for explicit origins.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origins := make([]string, 0, len(cfg.AllowedOrigins))
	wildcard := false
	for _, origin := range cfg.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			wildcard = true
		}
		origins = append(origins, origin)
	}
	if len(origins) == 0 {
		origins = []string{"*"}
		wildcard = true
	}
	maxAge := cfg.MaxAgeSeconds
	if maxAge <= 0 {
		maxAge = 300
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Refresh-Token", "X-Request-Id", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: !wildcard,
		MaxAge:           maxAge,
	}).Handler
}
