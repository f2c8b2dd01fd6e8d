package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/JonMunkholm/csvfilter/internal/config"
	"github.com/JonMunkholm/csvfilter/internal/logging"
)

// Auth error codes returned in the JSON body.
const (
	CodeMissingKey = "AUTH001"
	CodeInvalidKey = "AUTH002"
)

// APIKeyAuth returns middleware that validates the API key of JSON API
// requests against cfg.APIKeys. The key is read from X-API-Key or from an
// "Authorization: Bearer" header.
// If RequireAPIKey is false, all requests pass through.
// If RequireAPIKey is true but no keys are configured, all requests are rejected.
func APIKeyAuth(cfg config.SecurityConfig) func(http.Handler) http.Handler {
	keys := make([][]byte, len(cfg.APIKeys))
	for i, k := range cfg.APIKeys {
		keys[i] = []byte(k)
	}

	return func(next http.Handler) http.Handler {
		if !cfg.RequireAPIKey {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logging.FromContext(r.Context()).With(
				"path", r.URL.Path,
				"method", r.Method,
				"ip", ClientIP(r),
			)

			apiKey := requestAPIKey(r)
			if apiKey == "" {
				log.Warn("auth: missing API key")
				writeAuthError(w, http.StatusUnauthorized, "missing API key", CodeMissingKey)
				return
			}
			if !isValidAPIKey([]byte(apiKey), keys) {
				log.Warn("auth: invalid API key")
				writeAuthError(w, http.StatusForbidden, "invalid API key", CodeInvalidKey)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// requestAPIKey returns the key sent by the client, or "".
func requestAPIKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get("X-API-Key")); key != "" {
		return key
	}
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// isValidAPIKey checks if the provided key matches any configured key.
// Every key is compared in constant time so the duration does not reveal
// which key matched.
func isValidAPIKey(key []byte, validKeys [][]byte) bool {
	valid := 0
	for _, validKey := range validKeys {
		valid |= subtle.ConstantTimeCompare(key, validKey)
	}
	return valid == 1
}

func writeAuthError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   message,
		"message": message,
		"code":    code,
	})
}
