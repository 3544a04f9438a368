package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/mud-engine/internal/errors"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// writeError maps coded errors to their HTTP status. Uncoded errors are
// reported as 500 without leaking their text.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	code := errors.GetCode(err)
	status := code.HTTPStatus()
	msg := errors.GetMessage(err)
	if status == http.StatusInternalServerError {
		log.Error("Request failed", "error", err)
		msg = "Internal server error"
	}
	writeJSON(w, log, status, ErrorResponse{Error: msg, Code: code.String()})
}
