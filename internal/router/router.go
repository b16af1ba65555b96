// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// Viva Bem na Estrada backend: the JSON-RPC endpoint, the admin CSV export,
// health and metrics, and the single-page client.
package router

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"vivabem/internal/middleware"
)

// Check reports whether a backing service is healthy.
type Check func(ctx context.Context) error

// Options holds the handlers and settings the router wires together.
// Metrics, Export and Static may be nil.
type Options struct {
	Sessions      middleware.SessionGetter
	RPC           http.Handler
	Export        http.HandlerFunc
	Metrics       http.Handler
	Static        fs.FS
	CORSOrigins   []string
	SecureCookies bool
	Checks        map[string]Check
}

// New creates and returns the configured Chi router with all middleware
// and routes wired up.
func New(opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.CSRFHeaderName, middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.LoadSession(opts.Sessions))
	r.Use(middleware.CSRF(opts.SecureCookies))

	r.Get("/health", healthHandler(opts.Checks))
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}

	r.Post("/rpc", opts.RPC.ServeHTTP)

	if opts.Export != nil {
		r.With(middleware.RequireAdmin).Get("/admin/newsletter/export.csv", opts.Export)
	}

	if opts.Static != nil {
		spa := spaHandler(opts.Static)
		r.With(middleware.RequireAdminPage).Get("/admin", spa.ServeHTTP)
		r.With(middleware.RequireAdminPage).Get("/admin/*", spa.ServeHTTP)
		r.Get("/*", spa.ServeHTTP)
	}

	return r
}

// healthHandler reports {"status":"ok"} when every check passes and 503
// with the failing checks otherwise.
func healthHandler(checks map[string]Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		failed := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				failed[name] = err.Error()
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if len(failed) > 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]any{"status": "degraded", "checks": failed})
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}

// spaHandler serves files from fsys and falls back to index.html for any
// path that is not a file, so client-side routes load the app.
func spaHandler(fsys fs.FS) http.Handler {
	files := http.FileServer(http.FS(fsys))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name != "" && name != "index.html" {
			if info, err := fs.Stat(fsys, name); err == nil && !info.IsDir() {
				files.ServeHTTP(w, r)
				return
			}
		}

		index, err := fs.ReadFile(fsys, "index.html")
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(index)
	})
}
