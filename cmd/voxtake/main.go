package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voxtake/voxtake/internal/app"
	"github.com/voxtake/voxtake/internal/capture"
	"github.com/voxtake/voxtake/internal/config"
	"github.com/voxtake/voxtake/internal/history"
	"github.com/voxtake/voxtake/internal/observability"
	"github.com/voxtake/voxtake/internal/server"
	"github.com/voxtake/voxtake/internal/settings"
	"github.com/voxtake/voxtake/internal/store"
	"github.com/voxtake/voxtake/internal/transcribe"
	"github.com/voxtake/voxtake/internal/waveform"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	logger.Info().
		Str("port", cfg.Port).
		Str("provider_base_url", cfg.ProviderBaseURL).
		Str("data_file", cfg.DataFile).
		Str("log_level", cfg.LogLevel).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Msg("Voxtake service starting")

	// Audio subsystem
	if err := capture.Initialize(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize audio subsystem")
	}
	defer func() {
		if err := capture.Terminate(); err != nil {
			logger.Error().Err(err).Msg("Failed to terminate audio subsystem")
		}
	}()

	// Persistence
	kv, err := store.Open(cfg.DataFile)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.DataFile).Msg("Failed to open data store")
	}
	hist, err := history.New(kv, observability.ComponentLogger("history"))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load transcription history")
	}
	set, err := settings.New(kv, observability.ComponentLogger("settings"))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load settings")
	}

	// Event fanout and waveform rendering reference each other, so the
	// canvas target is attached after both exist.
	hub := server.NewHub(nil, observability.ComponentLogger("ws"))
	visualizer := waveform.New(hub, observability.ComponentLogger("waveform"))
	hub.SetCanvasTarget(visualizer)

	// Recording pipeline
	client := transcribe.NewClient(cfg.TranscribeEndpoint(), observability.ComponentLogger("transcribe-client"))
	source := capture.NewPortAudioSource(observability.ComponentLogger("portaudio"))
	controller := app.NewController(
		source,
		visualizer,
		client,
		hist,
		set,
		app.SystemClipboard{},
		hub,
		observability.ComponentLogger("controller"),
	)

	// Server half of the pipeline
	provider := transcribe.NewOpenAIProvider(cfg.ProviderBaseURL, observability.ComponentLogger("provider"))
	transcribeHandler := server.NewTranscribeHandler(provider, cfg.UploadDir, cfg.MaxUploadBytes(), observability.ComponentLogger("transcribe-server"))

	api := server.NewAPI(controller, hist, set, app.SystemClipboard{}, func() []capture.Device {
		return capture.ListInputDevices(observability.ComponentLogger("devices"))
	}, observability.ComponentLogger("api"))

	// Readiness probes: the data store must accept writes and the audio
	// subsystem must expose at least one usable input path.
	checks := []observability.Check{
		{Name: "datastore", Fn: func(ctx context.Context) (bool, error) {
			var probe string
			if _, err := kv.Get("credential", &probe); err != nil {
				return false, err
			}
			return true, nil
		}},
		{Name: "capture", Fn: func(ctx context.Context) (bool, error) {
			ok, err := capture.HasInputDevice()
			if err != nil {
				return false, err
			}
			if !ok {
				return false, fmt.Errorf("no usable input device")
			}
			return true, nil
		}},
	}

	srv := server.New(cfg, api, transcribeHandler, hub, checks, observability.ComponentLogger("server"))

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down...")

	// A live recording is stopped so the stream is released and any
	// finished clip still reaches the pipeline.
	controller.Stop()
	visualizer.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited gracefully")
}
