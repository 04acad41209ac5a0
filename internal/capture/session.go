// Package capture owns the recording lifecycle: device enumeration,
// stream acquisition, sample accumulation, and the hard duration cap.
package capture

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/voxtake/voxtake/internal/audio"
	"github.com/voxtake/voxtake/internal/observability"
)

const (
	SampleRate      = audio.SampleRate
	Channels        = audio.Channels
	FramesPerBuffer = 1024

	// WindowSize is the fixed analysis window the visualizer reads.
	WindowSize = 2048

	// MaxDuration is the hard cap on a single recording.
	MaxDuration = 20 * time.Minute
)

// State is the capture session lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRequestingDevice
	StateRecording
	StateFinalizing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequestingDevice:
		return "requesting-device"
	case StateRecording:
		return "recording"
	case StateFinalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}

// ErrSessionLive is returned by Start while a session is already live.
var ErrSessionLive = errors.New("a recording session is already live")

// FinalizeFunc receives the assembled clip once recording stops. The
// session returns to Idle when it returns, success or failure alike.
type FinalizeFunc func(clip audio.Clip, err error)

// Session is the single live recording session. At most one recording
// is in flight; Start while live is rejected, never silently aborted.
type Session struct {
	source   Source
	finalize FinalizeFunc
	logger   zerolog.Logger

	mu          sync.Mutex
	state       State
	startedAt   time.Time
	chunks      [][]int16
	deadline    *time.Timer
	maxDuration time.Duration

	window *Window
}

// NewSession creates a session over the given capture source. finalize
// is invoked exactly once per completed recording.
func NewSession(source Source, finalize FinalizeFunc, logger zerolog.Logger) *Session {
	return &Session{
		source:      source,
		finalize:    finalize,
		logger:      logger,
		maxDuration: MaxDuration,
		window:      NewWindow(WindowSize),
	}
}

// Start acquires a capture stream constrained to deviceID (empty means
// the platform default) and begins recording. Valid only from Idle.
func (s *Session) Start(deviceID string) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrSessionLive
	}
	s.state = StateRequestingDevice
	s.mu.Unlock()

	if err := s.source.Start(deviceID, s.onSamples); err != nil {
		s.mu.Lock()
		s.state = StateIdle
		s.mu.Unlock()
		return fmt.Errorf("failed to acquire capture stream: %w", err)
	}

	s.mu.Lock()
	s.state = StateRecording
	s.startedAt = time.Now()
	s.chunks = nil
	s.window.Reset()
	s.deadline = time.AfterFunc(s.maxDuration, s.onDeadline)
	s.mu.Unlock()

	observability.RecordRecordingStart()
	s.logger.Info().Str("device", deviceID).Msg("Recording started")
	return nil
}

// Stop ends recording and hands the clip to the finalize hook. Calling
// it outside Recording is a harmless no-op; the deadline timer and a
// manual stop may race, and both funnel through here.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.state != StateRecording {
		state := s.state
		s.mu.Unlock()
		s.logger.Debug().Stringer("state", state).Msg("Stop ignored outside recording")
		return
	}
	s.state = StateFinalizing
	if s.deadline != nil {
		s.deadline.Stop()
		s.deadline = nil
	}
	startedAt := s.startedAt
	chunks := s.chunks
	s.chunks = nil
	s.mu.Unlock()

	// The Recording -> Finalizing transition above happens once, so the
	// stream is released exactly once on every exit path.
	if err := s.source.Stop(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to release capture stream")
	}

	observability.RecordRecordingEnd(startedAt)
	s.logger.Info().
		Dur("duration", time.Since(startedAt)).
		Int("chunks", len(chunks)).
		Msg("Recording stopped, finalizing")

	go func() {
		clip, err := audio.EncodeClip(chunks)
		s.finalize(clip, err)

		s.mu.Lock()
		s.state = StateIdle
		s.mu.Unlock()
		s.logger.Debug().Msg("Session returned to idle")
	}()
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Window returns the live analysis window for the visualizer.
func (s *Session) Window() *Window {
	return s.window
}

// onDeadline fires when a recording hits the duration cap. Equivalent
// to a manual stop; logged as a condition, not an error.
func (s *Session) onDeadline() {
	s.mu.Lock()
	recording := s.state == StateRecording
	s.mu.Unlock()
	if !recording {
		return
	}

	s.logger.Info().Dur("max_duration", s.maxDuration).Msg("Recording reached duration cap, stopping")
	observability.RecordRecordingTimeout()
	s.Stop()
}

// onSamples receives chunks from the capture callback. The incoming
// slice is reused by the driver, so it is copied before accumulation.
func (s *Session) onSamples(in []int16) {
	s.mu.Lock()
	if s.state != StateRecording {
		s.mu.Unlock()
		return
	}
	chunk := make([]int16, len(in))
	copy(chunk, in)
	s.chunks = append(s.chunks, chunk)
	s.mu.Unlock()

	s.window.Write(chunk)
	observability.RecordAudioSamples(len(chunk))
}
