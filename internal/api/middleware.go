package api

import (
	"net/http"
	"strings"

	"github.com/ocrflow/ocrflow/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// AuthMiddleware validates API key authentication via Bearer token or
// X-API-Key header, with an optional basic-auth fallback verified against a
// bcrypt hash.
func AuthMiddleware(cfg config.AuthConfig) func(http.Handler) http.Handler {
	keySet := make(map[string]bool, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		if k != "" {
			keySet[k] = true
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Check Bearer token
			auth := r.Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				token := strings.TrimPrefix(auth, "Bearer ")
				if keySet[token] {
					next.ServeHTTP(w, r)
					return
				}
			}

			// Check X-API-Key header
			if keySet[r.Header.Get("X-API-Key")] {
				next.ServeHTTP(w, r)
				return
			}

			// Check basic auth against the configured bcrypt hash
			if user, pass, ok := r.BasicAuth(); ok &&
				cfg.BasicAuthUser != "" && user == cfg.BasicAuthUser &&
				bcrypt.CompareHashAndPassword([]byte(cfg.BasicAuthPassHash), []byte(pass)) == nil {
				next.ServeHTTP(w, r)
				return
			}

			http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
		})
	}
}

// CORSMiddleware adds CORS headers for cross-origin requests.
func CORSMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-API-Key")
			w.Header().Set("Access-Control-Max-Age", "3600")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
