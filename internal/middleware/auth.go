// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"net/http"

	"blogapi/internal/apperror"
	"blogapi/internal/auth"
)

// Authenticate runs strategy on every request and stores the resulting
// principal in the request context. A failed authentication ends the
// request with the strategy's error, normally 401.
func Authenticate(strategy auth.Strategy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := strategy.Authenticate(r)
			if err != nil {
				if !apperror.IsAuth(err) {
					slog.Warn("authentication failed", "path", r.URL.Path, "error", err)
				}
				writeError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	}
}
