// Package app wires the capture session, waveform visualizer,
// transcription pipeline, clipboard, and history into one controller.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/voxtake/voxtake/internal/audio"
	"github.com/voxtake/voxtake/internal/capture"
	"github.com/voxtake/voxtake/internal/history"
	"github.com/voxtake/voxtake/internal/observability"
	"github.com/voxtake/voxtake/internal/settings"
	"github.com/voxtake/voxtake/internal/transcribe"
	"github.com/voxtake/voxtake/internal/waveform"
)

// Messages shown in the result display.
const (
	inProgressMessage   = "Transcribing..."
	noCredentialMessage = "Please enter and save your API key before transcribing."
	transportMessage    = "Error: Failed to get transcription."
)

// Controller owns the single live recording session and drives the
// whole flow from start-intent to an accepted transcript.
type Controller struct {
	session    *capture.Session
	visualizer *waveform.Visualizer
	client     *transcribe.Client
	history    *history.Store
	settings   *settings.Store
	clipboard  Clipboard
	events     EventSink
	logger     zerolog.Logger

	mu     sync.Mutex
	result string
	prompt string
}

// NewController builds the controller and its capture session.
func NewController(
	source capture.Source,
	visualizer *waveform.Visualizer,
	client *transcribe.Client,
	hist *history.Store,
	set *settings.Store,
	clip Clipboard,
	events EventSink,
	logger zerolog.Logger,
) *Controller {
	c := &Controller{
		visualizer: visualizer,
		client:     client,
		history:    hist,
		settings:   set,
		clipboard:  clip,
		events:     events,
		logger:     logger,
	}
	c.session = capture.NewSession(source, c.finalizeClip, logger.With().Str("component", "session").Logger())
	return c
}

// Toggle maps to Stop while recording, Start otherwise. It backs the
// record button and its keyboard shortcut.
func (c *Controller) Toggle(deviceID, prompt string) error {
	if c.session.State() == capture.StateRecording {
		c.Stop()
		return nil
	}
	return c.Start(deviceID, prompt)
}

// Start begins a new recording session. The result display is cleared
// synchronously before any asynchronous work so no stale transcription
// is ever visible during a new take.
func (c *Controller) Start(deviceID, prompt string) error {
	// A start against a live session is rejected before the display or
	// the in-flight take's prompt is touched.
	if c.session.State() != capture.StateIdle {
		return capture.ErrSessionLive
	}

	c.setResult("")

	if err := c.session.Start(deviceID); err != nil {
		if errors.Is(err, capture.ErrSessionLive) {
			return err
		}
		c.logger.Error().Err(err).Msg("Failed to start recording")
		c.setResult("Error: " + err.Error())
		return err
	}

	c.mu.Lock()
	c.prompt = prompt
	c.mu.Unlock()

	c.visualizer.Start(c.session.Window())
	c.events.StateChanged(capture.StateRecording)
	return nil
}

// Stop ends the live recording, if any.
func (c *Controller) Stop() {
	c.session.Stop()
}

// State returns the session lifecycle state.
func (c *Controller) State() capture.State {
	return c.session.State()
}

// Result returns the current result display text.
func (c *Controller) Result() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Visualizer exposes the waveform visualizer for canvas resync.
func (c *Controller) Visualizer() *waveform.Visualizer {
	return c.visualizer
}

// finalizeClip runs once per completed recording: it tears down the
// redraw loop, submits the clip, and publishes the outcome. The session
// returns to Idle when this returns, so no failure leaves it stuck.
func (c *Controller) finalizeClip(clip audio.Clip, encodeErr error) {
	c.visualizer.Stop()
	c.events.StateChanged(capture.StateFinalizing)

	if encodeErr != nil {
		c.logger.Error().Err(encodeErr).Msg("Failed to assemble clip")
		c.setResult("Error: " + encodeErr.Error())
		c.events.StateChanged(capture.StateIdle)
		return
	}

	c.logger.Info().
		Float64("clip_seconds", clip.Duration()).
		Int("clip_bytes", len(clip.Data)).
		Msg("Clip assembled")

	c.setResult(inProgressMessage)

	c.mu.Lock()
	prompt := c.prompt
	c.mu.Unlock()

	req := transcribe.Request{
		Audio:      clip.Data,
		MIMEType:   clip.MIMEType,
		Extension:  clip.Extension,
		Model:      c.settings.Model(),
		Prompt:     prompt,
		Credential: c.settings.Credential(),
	}

	start := time.Now()
	text, err := c.client.Transcribe(context.Background(), req)
	if err != nil {
		observability.RecordTranscription(statusFor(err), time.Since(start))
		c.logger.Warn().Err(err).Msg("Transcription attempt failed")
		c.setResult(displayMessage(err))
		c.events.StateChanged(capture.StateIdle)
		return
	}
	observability.RecordTranscription("success", time.Since(start))

	c.setResult(text)

	if err := c.clipboard.SetText(text); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to copy transcript to clipboard")
	}

	if err := c.history.Append(text); err != nil {
		c.logger.Error().Err(err).Msg("Failed to persist transcript to history")
	} else {
		c.events.HistoryChanged()
	}

	c.events.StateChanged(capture.StateIdle)
}

func (c *Controller) setResult(text string) {
	c.mu.Lock()
	c.result = text
	c.mu.Unlock()
	c.events.ResultUpdated(text)
}

// displayMessage maps a pipeline error to its user-visible message.
func displayMessage(err error) string {
	var provErr *transcribe.ProviderError
	switch {
	case errors.Is(err, transcribe.ErrNoCredential):
		return noCredentialMessage
	case errors.As(err, &provErr):
		return "Error: " + provErr.Message
	case errors.Is(err, transcribe.ErrTransport):
		return transportMessage
	default:
		return "Error: " + err.Error()
	}
}

// statusFor maps a pipeline error to its metrics label.
func statusFor(err error) string {
	var provErr *transcribe.ProviderError
	switch {
	case errors.Is(err, transcribe.ErrNoCredential):
		return "config_error"
	case errors.As(err, &provErr):
		return "provider_error"
	default:
		return "transport_error"
	}
}
