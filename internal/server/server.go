// Package server exposes the recorder over HTTP: the JSON control
// surface, the transcription endpoint, the event websocket, and the
// static UI assets.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/voxtake/voxtake/internal/config"
	"github.com/voxtake/voxtake/internal/observability"
)

// Server is the HTTP front of the service.
type Server struct {
	httpServer *http.Server
	logger     zerolog.Logger
}

// New builds the router and the HTTP server around it.
func New(
	cfg *config.Config,
	api *API,
	transcribe *TranscribeHandler,
	hub *Hub,
	readinessChecks []observability.Check,
	logger zerolog.Logger,
) *Server {
	router := mux.NewRouter()

	router.Handle("/transcribe", transcribe).Methods(http.MethodPost)
	router.HandleFunc("/ws", hub.HandleWS)
	api.Register(router)

	router.HandleFunc("/health", observability.HealthCheckHandler()).Methods(http.MethodGet)
	router.HandleFunc("/ready", observability.ReadinessHandler(readinessChecks...)).Methods(http.MethodGet)
	if cfg.MetricsEnabled {
		router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
		logger.Info().Msg("Prometheus metrics enabled at /metrics")
	}

	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		router.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir)))
	} else {
		logger.Warn().Str("dir", cfg.StaticDir).Msg("Static asset directory not found, UI not served")
	}

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.Port),
			Handler: router,
			// Transcription requests hold the connection while the remote
			// provider works, so the write timeout must outlast the
			// pipeline client's own 5-minute cap.
			ReadTimeout:       6 * time.Minute,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      6 * time.Minute,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
	}
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("Server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
