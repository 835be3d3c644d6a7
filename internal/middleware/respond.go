package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"blogapi/internal/apperror"
)

// writeError writes err as the standard JSON error body. Middleware cannot
// import the handlers package, so it keeps its own copy of this helper.
func writeError(w http.ResponseWriter, err error) {
	appErr, ok := apperror.From(err)
	if !ok {
		appErr = apperror.NewInternalError("internal server error", err)
	}
	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "status", status, "error", err)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(appErr.ToResponse())
}
