// Package waveform renders live capture audio as a time-domain
// amplitude trace pushed to UI clients frame by frame.
package waveform

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/voxtake/voxtake/internal/capture"
	"github.com/voxtake/voxtake/internal/observability"
)

// frameInterval approximates a display refresh cadence.
const frameInterval = time.Second / 60

// Frame is one rendered waveform: y pixel coordinates of a connected
// line plot, evenly spaced across the canvas width, vertically centered
// at the midpoint amplitude.
type Frame struct {
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Points []int `json:"points"`
}

// Sink receives rendered frames.
type Sink interface {
	SendFrame(Frame)
}

// Visualizer runs the per-frame redraw loop for the duration of a
// recording. Start and Stop are idempotent; every recording-exit path
// must land in Stop so no redraw loop outlives its session.
type Visualizer struct {
	sink   Sink
	logger zerolog.Logger

	mu      sync.Mutex
	window  *capture.Window
	width   int
	height  int
	running bool
	stop    chan struct{}
}

// New creates a visualizer pushing frames into sink.
func New(sink Sink, logger zerolog.Logger) *Visualizer {
	return &Visualizer{
		sink:   sink,
		logger: logger,
		width:  640,
		height: 120,
	}
}

// SetCanvasSize resynchronizes the render target to the element's
// displayed pixel size. Called on viewport resize and recording start.
func (v *Visualizer) SetCanvasSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	v.mu.Lock()
	v.width = width
	v.height = height
	v.mu.Unlock()
}

// Start begins the redraw loop over the given live sample window.
// Calling Start while running is a no-op.
func (v *Visualizer) Start(window *capture.Window) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.running {
		return
	}
	v.window = window
	v.running = true
	v.stop = make(chan struct{})

	go v.loop(window, v.stop)
	v.logger.Debug().Msg("Waveform loop started")
}

// Stop ends the redraw loop and releases the analysis window. Safe to
// call repeatedly and from any recording-exit path.
func (v *Visualizer) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.running {
		return
	}
	v.running = false
	close(v.stop)
	v.window = nil
	v.logger.Debug().Msg("Waveform loop stopped")
}

// Running reports whether the redraw loop is active.
func (v *Visualizer) Running() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.running
}

func (v *Visualizer) loop(window *capture.Window, stop chan struct{}) {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			v.sink.SendFrame(v.render(window))
			observability.RecordWaveformFrame()
		}
	}
}

// render scales the latest sample window to the canvas: each sample maps
// to y = (amplitude + 1) * height/2, so silence draws the midline.
func (v *Visualizer) render(window *capture.Window) Frame {
	v.mu.Lock()
	width, height := v.width, v.height
	v.mu.Unlock()

	samples := window.Snapshot()
	points := make([]int, len(samples))
	for i, s := range samples {
		norm := float64(s)/32768.0 + 1.0
		points[i] = int(norm * float64(height) / 2.0)
	}

	return Frame{Width: width, Height: height, Points: points}
}
