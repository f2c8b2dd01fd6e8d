package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JonMunkholm/csvfilter/internal/config"
	"github.com/JonMunkholm/csvfilter/internal/logging"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(r.RemoteAddr))
})

func TestAPIKeyAuth(t *testing.T) {
	cfg := config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"alpha", "beta"}}
	h := APIKeyAuth(cfg)(okHandler)

	tests := []struct {
		name   string
		header string
		value  string
		want   int
		code   string
	}{
		{"missing", "", "", http.StatusUnauthorized, CodeMissingKey},
		{"invalid", "X-API-Key", "gamma", http.StatusForbidden, CodeInvalidKey},
		{"first key", "X-API-Key", "alpha", http.StatusOK, ""},
		{"second key", "X-API-Key", "beta", http.StatusOK, ""},
		{"bearer", "Authorization", "Bearer beta", http.StatusOK, ""},
		{"bearer invalid", "Authorization", "Bearer nope", http.StatusForbidden, CodeInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/datasets/x", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.code != "" && !strings.Contains(rec.Body.String(), tt.code) {
				t.Errorf("body should carry %s: %s", tt.code, rec.Body.String())
			}
		})
	}
}

func TestAPIKeyAuth_Disabled(t *testing.T) {
	h := APIKeyAuth(config.SecurityConfig{})(okHandler)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/datasets/x", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestAPIKeyAuth_NoKeysRejectsAll(t *testing.T) {
	h := APIKeyAuth(config.SecurityConfig{RequireAPIKey: true})(okHandler)
	req := httptest.NewRequest(http.MethodGet, "/api/datasets/x", nil)
	req.Header.Set("X-API-Key", "anything")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestTrustedRealIP(t *testing.T) {
	h := TrustedRealIP([]string{"10.0.0.0/8", "192.168.1.5", "not-a-cidr"})(okHandler)

	tests := []struct {
		name   string
		remote string
		header string
		value  string
		want   string
	}{
		{"untrusted ignores header", "203.0.113.9:4000", "X-Real-IP", "1.2.3.4", "203.0.113.9:4000"},
		{"trusted cidr real ip", "10.1.2.3:4000", "X-Real-IP", "1.2.3.4", "1.2.3.4"},
		{"trusted single ip", "192.168.1.5:4000", "X-Real-IP", "1.2.3.4", "1.2.3.4"},
		{"forwarded first hop", "10.1.2.3:4000", "X-Forwarded-For", "5.6.7.8, 10.1.2.3", "5.6.7.8"},
		{"invalid header kept out", "10.1.2.3:4000", "X-Real-IP", "garbage", "10.1.2.3:4000"},
		{"no header", "10.1.2.3:4000", "", "", "10.1.2.3:4000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if got := rec.Body.String(); got != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	tests := map[string]string{
		"203.0.113.9:4000": "203.0.113.9",
		"[::1]:8080":       "::1",
		"1.2.3.4":          "1.2.3.4",
		"pipe":             "pipe",
	}
	for remote, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		if got := ClientIP(req); got != want {
			t.Errorf("ClientIP(%q) = %q, want %q", remote, got, want)
		}
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	defer slog.SetDefault(prev)
	logging.SetupWriter(&buf, "info", "text")

	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("missing"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/datasets/x", nil))

	out := buf.String()
	for _, want := range []string{"level=WARN", "status=404", "bytes=7", "path=/datasets/x"} {
		if !strings.Contains(out, want) {
			t.Errorf("log entry should contain %q: %s", want, out)
		}
	}
}
