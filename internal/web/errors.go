package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls s.respondError(w, r, err, statusFor(err))
//  3. Error is mapped via core.MapError to get user-friendly message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is rendered as an HTML page or JSON, by request type

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/csvfilter/internal/core"
	"github.com/JonMunkholm/csvfilter/internal/logging"
	"github.com/JonMunkholm/csvfilter/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Detail  string `json:"detail,omitempty"`
}

// statusFor maps a service error to an HTTP status code.
func statusFor(err error) int {
	var (
		loadErr *core.LoadError
		sizeErr *http.MaxBytesError
	)
	switch {
	case errors.As(err, &sizeErr), errors.Is(err, core.ErrDecompressedTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrDatasetNotFound), errors.Is(err, core.ErrUnknownFormat):
		return http.StatusNotFound
	case errors.As(err, &loadErr), errors.Is(err, core.ErrEmptyFile):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNoFile):
		return http.StatusBadRequest
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrTooManyLoads):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError handles error responses with user-friendly messages.
// It logs the technical error server-side and returns an HTML page or JSON
// depending on the request.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	log := logging.FromContext(r.Context()).With(
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)
	if statusCode >= http.StatusInternalServerError {
		log.Error("request error")
	} else {
		log.Warn("request rejected")
	}

	if wantsJSON(r) {
		writeJSON(w, statusCode, ErrorResponse{
			Error:   userMsg.Message,
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
			Detail:  userMsg.Detail,
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	page := templates.ErrorPage(statusCode, userMsg.Message, userMsg.Action, userMsg.Code, userMsg.Detail)
	if err := page.Render(r.Context(), w); err != nil {
		log.Error("render error page", "render_error", err)
	}
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
