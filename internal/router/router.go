// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router assembles the chi router: global middleware, CORS and
// the public and bearer-guarded route groups of the blog API.
package router

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"blogapi/internal/auth"
	"blogapi/internal/handlers"
	"blogapi/internal/middleware"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps holds everything the routes are built from. Media is nil when
// object storage is not configured, and the /media route is not mounted.
type Deps struct {
	Users      *handlers.Users
	Categories *handlers.Categories
	Posts      *handlers.Posts
	Auth       *handlers.Auth
	Media      *handlers.Media

	Local  auth.Strategy
	Bearer auth.Strategy

	LoginLimiter   *middleware.RateLimiter
	AllowedOrigins []string
	DB             Pinger
}

// New returns the configured router.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusNotFound, map[string]string{"error": "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})

	r.Get("/health", healthHandler(d.DB))

	bearer := middleware.Authenticate(d.Bearer)

	r.Route("/auth", func(r chi.Router) {
		r.With(d.LoginLimiter.Middleware, middleware.Authenticate(d.Local)).Post("/login", d.Auth.Login)
		r.With(bearer).Get("/me", d.Auth.Me)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", d.Users.List)
		r.Post("/", d.Users.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", d.Users.Get)
			r.Put("/", d.Users.Update)
			r.Delete("/", d.Users.Delete)
			r.Post("/profile", d.Users.CreateProfile)
			r.Get("/profile", d.Users.GetProfile)
			r.With(bearer).Put("/profile", d.Users.UpdateProfile)
			r.With(bearer).Get("/profile/posts", d.Users.ProfilePosts)
		})
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", d.Categories.List)
		r.With(bearer).Post("/", d.Categories.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", d.Categories.Get)
			r.Get("/posts", d.Categories.Posts)
			r.With(bearer).Put("/", d.Categories.Update)
			r.With(bearer).Delete("/", d.Categories.Delete)
		})
	})

	r.Route("/post", func(r chi.Router) {
		r.Use(bearer)
		r.Get("/", d.Posts.List)
		r.Post("/", d.Posts.Create)
		r.Get("/{id}", d.Posts.Get)
		r.Put("/{id}", d.Posts.Update)
		r.Delete("/{id}", d.Posts.Delete)
	})

	if d.Media != nil {
		r.With(bearer).Post("/media", d.Media.Upload)
		r.With(bearer).Delete("/media/*", d.Media.Delete)
	}

	return r
}

// healthHandler reports ok, or 503 when the database does not answer.
func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				slog.Warn("health check: database unreachable", "error", err)
				writeStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeStatus(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func writeStatus(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
