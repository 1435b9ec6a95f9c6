// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
)

// errorResponse is the JSON error body.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// statusForError maps the domain error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	var (
		validation     errs.Validation
		notFound       errs.NotFound
		conflict       errs.Conflict
		unauthorized   errs.Unauthorized
		notImplemented errs.NotImplemented
		unavailable    errs.ServiceUnavailable
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &notImplemented):
		return http.StatusNotImplemented
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a domain error as JSON. Internal details are logged but
// not leaked for 5xx responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	body := errorResponse{Error: err.Error()}

	var provider errs.Provider
	if errors.As(err, &provider) {
		body.Code = provider.Code()
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
		if status == http.StatusInternalServerError {
			body.Error = "internal server error"
		}
	}

	writeJSON(w, status, body)
}

// writeJSON renders a response body with the given status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}
