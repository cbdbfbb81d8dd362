package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/habiliai/inbox/errors"
	"github.com/habiliai/inbox/internal/mylog"
)

type ErrorResponse struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// writeError maps err onto a status code and JSON body. Details of
// unexpected errors are logged and never returned to the client.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		status int
		body   ErrorResponse
		verr   *errors.ValidationError
	)

	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		body = ErrorResponse{Code: "validation_error", Message: "invalid request", Errors: verr.Fields}
	case errors.Is(err, errors.ErrInvalidParams):
		status = http.StatusBadRequest
		body = ErrorResponse{Code: "validation_error", Message: err.Error()}
	case errors.Is(err, errors.ErrUnauthenticated):
		status = http.StatusUnauthorized
		body = ErrorResponse{Code: "unauthenticated", Message: "authentication required"}
	case errors.Is(err, errors.ErrForbidden):
		status = http.StatusForbidden
		body = ErrorResponse{Code: "forbidden", Message: "you are not a participant of this thread"}
	case errors.Is(err, errors.ErrNotFound):
		status = http.StatusNotFound
		body = ErrorResponse{Code: "not_found", Message: "not found"}
	default:
		status = http.StatusInternalServerError
		body = ErrorResponse{Code: "internal_error", Message: "internal server error"}
		logger.Error("request failed", mylog.Err(err))
	}

	writeJSON(w, logger, status, body)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to write response", mylog.Err(err))
	}
}
