// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package api assembles the HTTP surface: the player-facing stream and
// file routes, scan control, and operational endpoints.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/CAFxX/httpcompression"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/vidra-media/vidra/internal/api/handlers"
	"github.com/vidra-media/vidra/internal/config"
	"github.com/vidra-media/vidra/internal/metrics"
	"github.com/vidra-media/vidra/internal/models"
	"github.com/vidra-media/vidra/internal/scheduler"
	"github.com/vidra-media/vidra/internal/streaming"
)

// Dependencies carries everything the router needs.
type Dependencies struct {
	Config    *config.AppConfig
	Folders   *models.WatchFolderStore
	Files     *models.MediaFileStore
	History   *models.ScanHistoryStore
	Scheduler *scheduler.Scheduler
	Streamer  *streaming.Streamer
	Metrics   *metrics.Collector
}

type Server struct {
	deps *Dependencies
	http *http.Server
}

func NewServer(deps *Dependencies) *Server {
	return &Server{deps: deps}
}

// Handler builds the full route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type", "Range"},
		ExposedHeaders: []string{"Content-Length", "Content-Range", "Accept-Ranges", "ETag"},
		MaxAge:         300,
	})
	r.Use(corsHandler.Handler)

	// Media payloads are already compressed containers; compressing the
	// stream would only burn CPU.
	compress, err := httpcompression.DefaultAdapter()
	if err != nil {
		log.Error().Err(err).Msg("api: compression adapter unavailable, responses stay uncompressed")
	} else {
		r.Use(skipPrefix("/stream", compress))
	}

	health := handlers.NewHealthHandler()
	r.Get("/healthz", health.Liveness)
	r.Get("/version", health.Version)

	if s.deps.Config.Config.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/watchfolders", func(r chi.Router) {
			handlers.NewWatchFoldersHandler(s.deps.Folders, s.deps.Files).Routes(r)
			handlers.NewScansHandler(s.deps.Scheduler, s.deps.History).Routes(r)
		})
		r.Route("/files", handlers.NewFilesHandler(s.deps.Files, s.deps.Folders).Routes)
	})

	r.Route("/stream", handlers.NewStreamHandler(s.deps.Streamer).Routes)

	return r
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	cfg := s.deps.Config.Config
	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))

	s.http = &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		ReadTimeout: 30 * time.Second,
		// No write timeout: streams legitimately run for hours.
		IdleTimeout: 2 * time.Minute,
	}

	log.Info().Str("addr", addr).Msg("api: listening")

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// skipPrefix bypasses mw for request paths under prefix.
func skipPrefix(prefix string, mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("api: request")
	})
}
