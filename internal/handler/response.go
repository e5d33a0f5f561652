// Package handler provides the HTTP surface of the Sunset marketplace.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/domain"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/service"
)

// errorResponse is the JSON body of every failure. Message is always
// present; Error carries the underlying error text when available.
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError writes a JSON failure body.
func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := errorResponse{Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError translates a service failure into the error
// taxonomy: 400 for malformed input, 404 for missing resources, 500
// for store failures.
func writeServiceError(w http.ResponseWriter, message string, err error) {
	writeError(w, statusFromError(err), message, err)
}

// statusFromError maps an error to its HTTP status.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrNoDownloadableAsset),
		errors.Is(err, domain.ErrObjectNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
