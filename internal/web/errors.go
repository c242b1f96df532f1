package web

// errors.go turns handler errors into HTTP replies.
//
// Every error is logged server-side with the request id and rendered to
// the client as {"detail", "code", "action"} via core.MapError, so the
// body never depends on which store backend produced the error.

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/procspec/internal/core"
	"github.com/JonMunkholm/procspec/internal/logging"
	mw "github.com/JonMunkholm/procspec/internal/web/middleware"
)

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case core.IsValidation(err):
		return http.StatusBadRequest
	case core.IsTransient(err), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the mapped error response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logger := logging.FromContext(r.Context())

	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", core.MapError(err).Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", attrs...)
	} else {
		logger.Debug("request rejected", attrs...)
	}

	mw.WriteError(w, r, status, err)
}
