package web

// errors.go turns handler errors into responses.
//
// The technical error is logged with the request id; the client only sees
// the coded message from core.MapError, as JSON for API callers and as an
// HTML fragment otherwise.

import (
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/florasheet/internal/core"
	"github.com/JonMunkholm/florasheet/internal/logging"
)

// errNoFile is returned when an upload has no "file" part.
var errNoFile = errors.New("no file provided")

// errHistoryDisabled is returned by the history endpoint without a store.
var errHistoryDisabled = errors.New("run history is not configured")

// ErrorResponse is the JSON body of an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if wantsJSON(r) {
		writeJSON(w, r, statusCode, ErrorResponse{
			Error:   userMsg.Message,
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := errorAlert(userMsg).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render error alert", "error", err)
	}
}

// statusFor picks the HTTP status for a pipeline error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrTooManyRuns):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrMissingColumns), errors.Is(err, core.ErrCapacity):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// wantsJSON reports whether the client should get a JSON error.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
