package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sayedsafi2000/pixelsbee/internal/common"
)

const msgInternal = "Internal server error"

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// statusOf maps a service error kind to its HTTP status. Zero means the
// error is not client-facing.
func statusOf(err error) int {
	switch {
	case errors.Is(err, common.ErrorInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return 0
	}
}

var fallbackMessages = map[int]string{
	http.StatusBadRequest:         "Invalid request",
	http.StatusUnauthorized:       "Unauthorized",
	http.StatusForbidden:          "Forbidden",
	http.StatusNotFound:           "Not found",
	http.StatusConflict:           "Conflict",
	http.StatusServiceUnavailable: "Service unavailable",
}

// writeError never leaks the text of unexpected errors; those are logged
// and answered with a generic 500.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == 0 {
		a.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, msgInternal)
		return
	}
	if status == http.StatusServiceUnavailable {
		a.logger.Warn(r.Context(), "request timed out", "method", r.Method, "path", r.URL.Path)
	}
	writeMessage(w, status, common.Message(err, fallbackMessages[status]))
}

// decodeJSON reads a JSON body into v. Malformed bodies are InvalidInput.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return common.NewError(common.ErrorInvalidInput, "Invalid request body")
	}
	return nil
}
