// Package handlers implements the JSON HTTP handlers of the blog API.
// Handlers decode and validate input, call a service and write either the
// result or an apperror as JSON.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"blogapi/internal/apperror"
	"blogapi/internal/middleware"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

type messageResponse struct {
	Message string `json:"message"`
}

// writeJSON writes data as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// writeError writes err as {"error": ..., "fields": ...}. Errors that are
// not AppErrors are reported as 500 without exposing their text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.From(err)
	if !ok {
		appErr = apperror.NewInternalError("internal server error", err)
	}
	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"request_id", middleware.RequestIDFrom(r.Context()),
			"error", err,
		)
	}
	writeJSON(w, status, appErr.ToResponse())
}

// decodeJSON reads the request body into dst. An empty, oversized or
// malformed body is a BadRequest.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}

	var maxErr *http.MaxBytesError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return apperror.NewBadRequestError("request body is required", err)
	case errors.As(err, &maxErr):
		return apperror.NewBadRequestError("request body is too large", err)
	case errors.As(err, &typeErr):
		return apperror.NewBadRequestError("field "+typeErr.Field+" has the wrong type", err)
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return apperror.NewBadRequestError("malformed JSON body", err)
	default:
		return apperror.NewBadRequestError("invalid request body", err)
	}
}

// parseID reads a positive integer URL parameter.
func parseID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NewBadRequestError(name+" must be a positive integer", err)
	}
	return id, nil
}
