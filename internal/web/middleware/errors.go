package middleware

import (
	"net/http"

	"github.com/JonMunkholm/procspec/internal/core"
	"github.com/go-chi/render"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
	Action string `json:"action,omitempty"`

	// Error carries the technical reason for client errors (4xx) only.
	Error string `json:"error,omitempty"`
}

// WriteError renders err as an ErrorResponse with the given status.
func WriteError(w http.ResponseWriter, r *http.Request, status int, err error) {
	msg := core.MapError(err)
	resp := ErrorResponse{
		Detail: msg.Message,
		Code:   msg.Code,
		Action: msg.Action,
	}
	if status >= 400 && status < 500 && err != nil {
		resp.Error = err.Error()
	}

	render.Status(r, status)
	render.JSON(w, r, resp)
}
